package catalog

import (
	"time"

	"gorm.io/gorm"

	types "github.com/pinlore/pinlore-backend/internal/domain"
	"github.com/pinlore/pinlore-backend/internal/platform/dbctx"
	"github.com/pinlore/pinlore-backend/internal/platform/logger"
)

type AwardRepo interface {
	Create(dbc dbctx.Context, a *types.Award) error
	GetByID(dbc dbctx.Context, id uint) (*types.Award, error)
	GetBySlug(dbc dbctx.Context, slug string) (*types.Award, error)
	GetDetailBySlug(dbc dbctx.Context, slug string) (*types.Award, error)
	All(dbc dbctx.Context) ([]*types.Award, error)
	UpdateColumns(dbc dbctx.Context, id uint, updates map[string]interface{}) error
	SlugTaken(dbc dbctx.Context, slug string) (bool, error)
}

type awardRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAwardRepo(db *gorm.DB, baseLog *logger.Logger) AwardRepo {
	return &awardRepo{db: db, log: baseLog.With("repo", "AwardRepo")}
}

func (r *awardRepo) Create(dbc dbctx.Context, a *types.Award) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).Create(a).Error
}

func (r *awardRepo) GetByID(dbc dbctx.Context, id uint) (*types.Award, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out types.Award
	err := t.WithContext(dbc.Ctx).First(&out, id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *awardRepo) GetBySlug(dbc dbctx.Context, slug string) (*types.Award, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out types.Award
	err := t.WithContext(dbc.Ctx).Where("slug = ?", slug).First(&out).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *awardRepo) GetDetailBySlug(dbc dbctx.Context, slug string) (*types.Award, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out types.Award
	err := t.WithContext(dbc.Ctx).
		Preload("Recipients.Person").
		Where("slug = ?", slug).
		First(&out).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *awardRepo) All(dbc dbctx.Context) ([]*types.Award, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Award
	if err := t.WithContext(dbc.Ctx).Order("id").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *awardRepo) UpdateColumns(dbc dbctx.Context, id uint, updates map[string]interface{}) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(updates) == 0 {
		return nil
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now().UTC()
	}
	return t.WithContext(dbc.Ctx).
		Model(&types.Award{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *awardRepo) SlugTaken(dbc dbctx.Context, slug string) (bool, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var n int64
	if err := t.WithContext(dbc.Ctx).
		Model(&types.Award{}).
		Where("slug = ?", slug).
		Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}
