package catalog

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/pinlore/pinlore-backend/internal/domain"
	"github.com/pinlore/pinlore-backend/internal/platform/dbctx"
	"github.com/pinlore/pinlore-backend/internal/platform/logger"
)

type ThemeRepo interface {
	Ensure(dbc dbctx.Context, slug, name string) (*types.Theme, error)
	GetBySlug(dbc dbctx.Context, slug string) (*types.Theme, error)
	All(dbc dbctx.Context) ([]*types.Theme, error)
}

type themeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewThemeRepo(db *gorm.DB, baseLog *logger.Logger) ThemeRepo {
	return &themeRepo{db: db, log: baseLog.With("repo", "ThemeRepo")}
}

// Ensure inserts the theme if its slug is new and returns the stored row
// either way. Existing names are left alone.
func (r *themeRepo) Ensure(dbc dbctx.Context, slug, name string) (*types.Theme, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	row := types.Theme{Slug: slug, Name: name}
	if err := t.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "slug"}},
			DoNothing: true,
		}).
		Create(&row).Error; err != nil {
		return nil, err
	}
	var out types.Theme
	if err := t.WithContext(dbc.Ctx).Where("slug = ?", slug).First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *themeRepo) GetBySlug(dbc dbctx.Context, slug string) (*types.Theme, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out types.Theme
	err := t.WithContext(dbc.Ctx).Where("slug = ?", slug).First(&out).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *themeRepo) All(dbc dbctx.Context) ([]*types.Theme, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Theme
	if err := t.WithContext(dbc.Ctx).Order("id").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
