package catalog

import (
	"time"

	"gorm.io/gorm"

	types "github.com/pinlore/pinlore-backend/internal/domain"
	"github.com/pinlore/pinlore-backend/internal/platform/dbctx"
	"github.com/pinlore/pinlore-backend/internal/platform/logger"
)

type PersonRepo interface {
	Create(dbc dbctx.Context, p *types.Person) error
	GetByID(dbc dbctx.Context, id uint) (*types.Person, error)
	GetBySlug(dbc dbctx.Context, slug string) (*types.Person, error)
	All(dbc dbctx.Context) ([]*types.Person, error)
	List(dbc dbctx.Context, limit, offset int) ([]*types.Person, int64, error)
	UpdateColumns(dbc dbctx.Context, id uint, updates map[string]interface{}) error
	SlugTaken(dbc dbctx.Context, slug string) (bool, error)
}

type personRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPersonRepo(db *gorm.DB, baseLog *logger.Logger) PersonRepo {
	return &personRepo{db: db, log: baseLog.With("repo", "PersonRepo")}
}

func (r *personRepo) Create(dbc dbctx.Context, p *types.Person) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(dbc.Ctx).Create(p).Error
}

func (r *personRepo) GetByID(dbc dbctx.Context, id uint) (*types.Person, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out types.Person
	err := t.WithContext(dbc.Ctx).First(&out, id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *personRepo) GetBySlug(dbc dbctx.Context, slug string) (*types.Person, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out types.Person
	err := t.WithContext(dbc.Ctx).Where("slug = ?", slug).First(&out).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *personRepo) All(dbc dbctx.Context) ([]*types.Person, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Person
	if err := t.WithContext(dbc.Ctx).Order("id").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *personRepo) List(dbc dbctx.Context, limit, offset int) ([]*types.Person, int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	q := t.WithContext(dbc.Ctx).Model(&types.Person{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var out []*types.Person
	if err := q.Order("name, id").Limit(limit).Offset(offset).Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *personRepo) UpdateColumns(dbc dbctx.Context, id uint, updates map[string]interface{}) error {
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
		Model(&types.Person{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *personRepo) SlugTaken(dbc dbctx.Context, slug string) (bool, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var n int64
	if err := t.WithContext(dbc.Ctx).
		Model(&types.Person{}).
		Where("slug = ?", slug).
		Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}
