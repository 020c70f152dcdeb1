package catalog

import (
	"time"

	"gorm.io/gorm"

	types "github.com/pinlore/pinlore-backend/internal/domain"
	"github.com/pinlore/pinlore-backend/internal/platform/dbctx"
	"github.com/pinlore/pinlore-backend/internal/platform/logger"
)

type ManufacturerRepo interface {
	Create(dbc dbctx.Context, m *types.Manufacturer) error
	GetByID(dbc dbctx.Context, id uint) (*types.Manufacturer, error)
	GetBySlug(dbc dbctx.Context, slug string) (*types.Manufacturer, error)
	All(dbc dbctx.Context) ([]*types.Manufacturer, error)
	UpdateColumns(dbc dbctx.Context, id uint, updates map[string]interface{}) error
	SlugTaken(dbc dbctx.Context, slug string) (bool, error)
}

type manufacturerRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewManufacturerRepo(db *gorm.DB, baseLog *logger.Logger) ManufacturerRepo {
	return &manufacturerRepo{db: db, log: baseLog.With("repo", "ManufacturerRepo")}
}

func (r *manufacturerRepo) Create(dbc dbctx.Context, m *types.Manufacturer) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).Create(m).Error
}

func (r *manufacturerRepo) GetByID(dbc dbctx.Context, id uint) (*types.Manufacturer, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out types.Manufacturer
	err := t.WithContext(dbc.Ctx).First(&out, id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *manufacturerRepo) GetBySlug(dbc dbctx.Context, slug string) (*types.Manufacturer, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out types.Manufacturer
	err := t.WithContext(dbc.Ctx).Where("slug = ?", slug).First(&out).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// All returns every manufacturer ordered by id. Resolution builds its
// name and opdb id lookup maps from this.
func (r *manufacturerRepo) All(dbc dbctx.Context) ([]*types.Manufacturer, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Manufacturer
	if err := t.WithContext(dbc.Ctx).Order("id").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *manufacturerRepo) UpdateColumns(dbc dbctx.Context, id uint, updates map[string]interface{}) error {
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
		Model(&types.Manufacturer{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *manufacturerRepo) SlugTaken(dbc dbctx.Context, slug string) (bool, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var n int64
	if err := t.WithContext(dbc.Ctx).
		Model(&types.Manufacturer{}).
		Where("slug = ?", slug).
		Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

type ManufacturerEntityRepo interface {
	Create(dbc dbctx.Context, e *types.ManufacturerEntity) error
	All(dbc dbctx.Context) ([]*types.ManufacturerEntity, error)
	ListByManufacturerID(dbc dbctx.Context, manufacturerID uint) ([]*types.ManufacturerEntity, error)
	UpdateColumns(dbc dbctx.Context, id uint, updates map[string]interface{}) error
}

type manufacturerEntityRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewManufacturerEntityRepo(db *gorm.DB, baseLog *logger.Logger) ManufacturerEntityRepo {
	return &manufacturerEntityRepo{db: db, log: baseLog.With("repo", "ManufacturerEntityRepo")}
}

func (r *manufacturerEntityRepo) Create(dbc dbctx.Context, e *types.ManufacturerEntity) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).Create(e).Error
}

func (r *manufacturerEntityRepo) All(dbc dbctx.Context) ([]*types.ManufacturerEntity, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.ManufacturerEntity
	if err := t.WithContext(dbc.Ctx).Order("id").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *manufacturerEntityRepo) ListByManufacturerID(dbc dbctx.Context, manufacturerID uint) ([]*types.ManufacturerEntity, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.ManufacturerEntity
	if err := t.WithContext(dbc.Ctx).
		Where("manufacturer_id = ?", manufacturerID).
		Order("id").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *manufacturerEntityRepo) UpdateColumns(dbc dbctx.Context, id uint, updates map[string]interface{}) error {
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
		Model(&types.ManufacturerEntity{}).
		Where("id = ?", id).
		Updates(updates).Error
}
