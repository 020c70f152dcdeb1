package catalog

import (
	"gorm.io/gorm"

	types "github.com/pinlore/pinlore-backend/internal/domain"
	"github.com/pinlore/pinlore-backend/internal/platform/dbctx"
	"github.com/pinlore/pinlore-backend/internal/platform/logger"
)

type MachineThemeRepo interface {
	CreateBatch(dbc dbctx.Context, rows []*types.MachineTheme) error
	DeleteByIDs(dbc dbctx.Context, ids []uint) error
	ListByMachineID(dbc dbctx.Context, machineID uint) ([]*types.MachineTheme, error)
	ListByMachineIDs(dbc dbctx.Context, machineIDs []uint) ([]*types.MachineTheme, error)
}

type machineThemeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMachineThemeRepo(db *gorm.DB, baseLog *logger.Logger) MachineThemeRepo {
	return &machineThemeRepo{db: db, log: baseLog.With("repo", "MachineThemeRepo")}
}

func (r *machineThemeRepo) CreateBatch(dbc dbctx.Context, rows []*types.MachineTheme) error {
	if len(rows) == 0 {
		return nil
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).Create(rows).Error
}

func (r *machineThemeRepo) DeleteByIDs(dbc dbctx.Context, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).Delete(&types.MachineTheme{}, ids).Error
}

func (r *machineThemeRepo) ListByMachineID(dbc dbctx.Context, machineID uint) ([]*types.MachineTheme, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.MachineTheme
	if err := t.WithContext(dbc.Ctx).
		Where("machine_id = ?", machineID).
		Order("id").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *machineThemeRepo) ListByMachineIDs(dbc dbctx.Context, machineIDs []uint) ([]*types.MachineTheme, error) {
	if len(machineIDs) == 0 {
		return nil, nil
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.MachineTheme
	if err := t.WithContext(dbc.Ctx).
		Where("machine_id IN ?", machineIDs).
		Order("id").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
