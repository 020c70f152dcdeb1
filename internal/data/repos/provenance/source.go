package provenance

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/pinlore/pinlore-backend/internal/domain"
	"github.com/pinlore/pinlore-backend/internal/platform/dbctx"
	"github.com/pinlore/pinlore-backend/internal/platform/logger"
)

// ErrSourceInUse is returned when deleting a source that still has
// claims attributed to it.
var ErrSourceInUse = errors.New("source has claims and cannot be deleted")

type SourceRepo interface {
	Upsert(dbc dbctx.Context, src *types.Source) error
	GetBySlug(dbc dbctx.Context, slug string) (*types.Source, error)
	GetByIDs(dbc dbctx.Context, ids []uint) ([]*types.Source, error)
	All(dbc dbctx.Context) ([]*types.Source, error)
	Delete(dbc dbctx.Context, id uint) error
}

type sourceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSourceRepo(db *gorm.DB, baseLog *logger.Logger) SourceRepo {
	return &sourceRepo{
		db:  db,
		log: baseLog.With("repo", "SourceRepo"),
	}
}

// Upsert creates or updates a source keyed by slug. Priorities edited
// here affect the next resolution pass only; stored claims are untouched.
func (r *sourceRepo) Upsert(dbc dbctx.Context, src *types.Source) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if src == nil || src.Slug == "" {
		return fmt.Errorf("source slug is required")
	}
	src.UpdatedAt = time.Now().UTC()
	return t.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "slug"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"name",
				"source_type",
				"priority",
				"url",
				"description",
				"updated_at",
			}),
		}).
		Create(src).Error
}

func (r *sourceRepo) GetBySlug(dbc dbctx.Context, slug string) (*types.Source, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out types.Source
	err := t.WithContext(dbc.Ctx).Where("slug = ?", slug).First(&out).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *sourceRepo) GetByIDs(dbc dbctx.Context, ids []uint) ([]*types.Source, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Source
	if len(ids) == 0 {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *sourceRepo) All(dbc dbctx.Context) ([]*types.Source, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Source
	if err := t.WithContext(dbc.Ctx).
		Order("priority DESC, name").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *sourceRepo) Delete(dbc dbctx.Context, id uint) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var n int64
	if err := t.WithContext(dbc.Ctx).
		Model(&types.Claim{}).
		Where("source_id = ?", id).
		Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("source %d: %w", id, ErrSourceInUse)
	}
	return t.WithContext(dbc.Ctx).Delete(&types.Source{}, id).Error
}
