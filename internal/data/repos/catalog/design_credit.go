package catalog

import (
	"gorm.io/gorm"

	types "github.com/pinlore/pinlore-backend/internal/domain"
	"github.com/pinlore/pinlore-backend/internal/platform/dbctx"
	"github.com/pinlore/pinlore-backend/internal/platform/logger"
)

type DesignCreditRepo interface {
	CreateBatch(dbc dbctx.Context, rows []*types.DesignCredit) error
	DeleteByIDs(dbc dbctx.Context, ids []uint) error
	ListByMachineID(dbc dbctx.Context, machineID uint) ([]*types.DesignCredit, error)
	ListByMachineIDs(dbc dbctx.Context, machineIDs []uint) ([]*types.DesignCredit, error)
	ListByPersonID(dbc dbctx.Context, personID uint) ([]*types.DesignCredit, error)
}

type designCreditRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDesignCreditRepo(db *gorm.DB, baseLog *logger.Logger) DesignCreditRepo {
	return &designCreditRepo{db: db, log: baseLog.With("repo", "DesignCreditRepo")}
}

func (r *designCreditRepo) CreateBatch(dbc dbctx.Context, rows []*types.DesignCredit) error {
	if len(rows) == 0 {
		return nil
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).Create(rows).Error
}

func (r *designCreditRepo) DeleteByIDs(dbc dbctx.Context, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).Delete(&types.DesignCredit{}, ids).Error
}

func (r *designCreditRepo) ListByMachineID(dbc dbctx.Context, machineID uint) ([]*types.DesignCredit, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.DesignCredit
	if err := t.WithContext(dbc.Ctx).
		Where("machine_id = ?", machineID).
		Order("id").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *designCreditRepo) ListByMachineIDs(dbc dbctx.Context, machineIDs []uint) ([]*types.DesignCredit, error) {
	if len(machineIDs) == 0 {
		return nil, nil
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.DesignCredit
	if err := t.WithContext(dbc.Ctx).
		Where("machine_id IN ?", machineIDs).
		Order("id").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *designCreditRepo) ListByPersonID(dbc dbctx.Context, personID uint) ([]*types.DesignCredit, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.DesignCredit
	if err := t.WithContext(dbc.Ctx).
		Preload("Machine").
		Where("person_id = ?", personID).
		Order("id").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
