package catalog

import (
	"gorm.io/gorm"

	types "github.com/pinlore/pinlore-backend/internal/domain"
	"github.com/pinlore/pinlore-backend/internal/platform/dbctx"
	"github.com/pinlore/pinlore-backend/internal/platform/logger"
)

type MachineGroupRepo interface {
	Create(dbc dbctx.Context, g *types.MachineGroup) error
	GetBySlug(dbc dbctx.Context, slug string) (*types.MachineGroup, error)
	All(dbc dbctx.Context) ([]*types.MachineGroup, error)
	SlugTaken(dbc dbctx.Context, slug string) (bool, error)
}

type machineGroupRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMachineGroupRepo(db *gorm.DB, baseLog *logger.Logger) MachineGroupRepo {
	return &machineGroupRepo{db: db, log: baseLog.With("repo", "MachineGroupRepo")}
}

func (r *machineGroupRepo) Create(dbc dbctx.Context, g *types.MachineGroup) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).Create(g).Error
}

func (r *machineGroupRepo) GetBySlug(dbc dbctx.Context, slug string) (*types.MachineGroup, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out types.MachineGroup
	err := t.WithContext(dbc.Ctx).Where("slug = ?", slug).First(&out).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *machineGroupRepo) All(dbc dbctx.Context) ([]*types.MachineGroup, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.MachineGroup
	if err := t.WithContext(dbc.Ctx).Order("id").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *machineGroupRepo) SlugTaken(dbc dbctx.Context, slug string) (bool, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var n int64
	if err := t.WithContext(dbc.Ctx).
		Model(&types.MachineGroup{}).
		Where("slug = ?", slug).
		Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}
