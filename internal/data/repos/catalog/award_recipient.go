package catalog

import (
	"gorm.io/gorm"

	types "github.com/pinlore/pinlore-backend/internal/domain"
	"github.com/pinlore/pinlore-backend/internal/platform/dbctx"
	"github.com/pinlore/pinlore-backend/internal/platform/logger"
)

type AwardRecipientRepo interface {
	CreateBatch(dbc dbctx.Context, rows []*types.AwardRecipient) error
	DeleteByIDs(dbc dbctx.Context, ids []uint) error
	ListByAwardID(dbc dbctx.Context, awardID uint) ([]*types.AwardRecipient, error)
	ListByAwardIDs(dbc dbctx.Context, awardIDs []uint) ([]*types.AwardRecipient, error)
	ListByPersonID(dbc dbctx.Context, personID uint) ([]*types.AwardRecipient, error)
}

type awardRecipientRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAwardRecipientRepo(db *gorm.DB, baseLog *logger.Logger) AwardRecipientRepo {
	return &awardRecipientRepo{db: db, log: baseLog.With("repo", "AwardRecipientRepo")}
}

func (r *awardRecipientRepo) CreateBatch(dbc dbctx.Context, rows []*types.AwardRecipient) error {
	if len(rows) == 0 {
		return nil
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).Create(rows).Error
}

func (r *awardRecipientRepo) DeleteByIDs(dbc dbctx.Context, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).Delete(&types.AwardRecipient{}, ids).Error
}

func (r *awardRecipientRepo) ListByAwardID(dbc dbctx.Context, awardID uint) ([]*types.AwardRecipient, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.AwardRecipient
	if err := t.WithContext(dbc.Ctx).
		Where("award_id = ?", awardID).
		Order("id").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *awardRecipientRepo) ListByAwardIDs(dbc dbctx.Context, awardIDs []uint) ([]*types.AwardRecipient, error) {
	if len(awardIDs) == 0 {
		return nil, nil
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.AwardRecipient
	if err := t.WithContext(dbc.Ctx).
		Where("award_id IN ?", awardIDs).
		Order("id").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *awardRecipientRepo) ListByPersonID(dbc dbctx.Context, personID uint) ([]*types.AwardRecipient, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.AwardRecipient
	if err := t.WithContext(dbc.Ctx).
		Preload("Award").
		Where("person_id = ?", personID).
		Order("id").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
