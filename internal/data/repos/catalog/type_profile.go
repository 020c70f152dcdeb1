package catalog

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/pinlore/pinlore-backend/internal/domain"
	"github.com/pinlore/pinlore-backend/internal/platform/dbctx"
	"github.com/pinlore/pinlore-backend/internal/platform/logger"
)

type TypeProfileRepo interface {
	UpsertMachineTypeProfile(dbc dbctx.Context, p *types.MachineTypeProfile) error
	UpsertDisplayTypeProfile(dbc dbctx.Context, p *types.DisplayTypeProfile) error
	ListMachineTypeProfiles(dbc dbctx.Context) ([]*types.MachineTypeProfile, error)
	ListDisplayTypeProfiles(dbc dbctx.Context) ([]*types.DisplayTypeProfile, error)
	GetMachineTypeProfileBySlug(dbc dbctx.Context, slug string) (*types.MachineTypeProfile, error)
	GetDisplayTypeProfileBySlug(dbc dbctx.Context, slug string) (*types.DisplayTypeProfile, error)
}

type typeProfileRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTypeProfileRepo(db *gorm.DB, baseLog *logger.Logger) TypeProfileRepo {
	return &typeProfileRepo{db: db, log: baseLog.With("repo", "TypeProfileRepo")}
}

func (r *typeProfileRepo) UpsertMachineTypeProfile(dbc dbctx.Context, p *types.MachineTypeProfile) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "machine_type"}},
			DoUpdates: clause.AssignmentColumns([]string{"slug", "title", "display_order", "description", "updated_at"}),
		}).
		Create(p).Error
}

func (r *typeProfileRepo) UpsertDisplayTypeProfile(dbc dbctx.Context, p *types.DisplayTypeProfile) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "display_type"}},
			DoUpdates: clause.AssignmentColumns([]string{"slug", "title", "display_order", "description", "updated_at"}),
		}).
		Create(p).Error
}

func (r *typeProfileRepo) ListMachineTypeProfiles(dbc dbctx.Context) ([]*types.MachineTypeProfile, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.MachineTypeProfile
	if err := t.WithContext(dbc.Ctx).Order("display_order, id").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *typeProfileRepo) ListDisplayTypeProfiles(dbc dbctx.Context) ([]*types.DisplayTypeProfile, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.DisplayTypeProfile
	if err := t.WithContext(dbc.Ctx).Order("display_order, id").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *typeProfileRepo) GetMachineTypeProfileBySlug(dbc dbctx.Context, slug string) (*types.MachineTypeProfile, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out types.MachineTypeProfile
	err := t.WithContext(dbc.Ctx).Where("slug = ?", slug).First(&out).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *typeProfileRepo) GetDisplayTypeProfileBySlug(dbc dbctx.Context, slug string) (*types.DisplayTypeProfile, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out types.DisplayTypeProfile
	err := t.WithContext(dbc.Ctx).Where("slug = ?", slug).First(&out).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}
