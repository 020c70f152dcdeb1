package provenance

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/pinlore/pinlore-backend/internal/domain"
	"github.com/pinlore/pinlore-backend/internal/platform/dbctx"
	"github.com/pinlore/pinlore-backend/internal/platform/logger"
)

type IngestRunRepo interface {
	Start(dbc dbctx.Context, kind, sourceSlug string) (*types.IngestRun, error)
	Finish(dbc dbctx.Context, id uuid.UUID, stats []byte, runErr error) error
	ListRecent(dbc dbctx.Context, limit int) ([]*types.IngestRun, error)
}

type ingestRunRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewIngestRunRepo(db *gorm.DB, baseLog *logger.Logger) IngestRunRepo {
	return &ingestRunRepo{
		db:  db,
		log: baseLog.With("repo", "IngestRunRepo"),
	}
}

func (r *ingestRunRepo) Start(dbc dbctx.Context, kind, sourceSlug string) (*types.IngestRun, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	run := &types.IngestRun{
		ID:         uuid.New(),
		Kind:       kind,
		SourceSlug: sourceSlug,
		StartedAt:  time.Now().UTC(),
	}
	if err := t.WithContext(dbc.Ctx).Create(run).Error; err != nil {
		return nil, err
	}
	return run, nil
}

func (r *ingestRunRepo) Finish(dbc dbctx.Context, id uuid.UUID, stats []byte, runErr error) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	now := time.Now().UTC()
	updates := map[string]interface{}{
		"finished_at": now,
	}
	if len(stats) > 0 {
		updates["stats"] = stats
	}
	if runErr != nil {
		updates["error"] = runErr.Error()
	}
	return t.WithContext(dbc.Ctx).
		Model(&types.IngestRun{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *ingestRunRepo) ListRecent(dbc dbctx.Context, limit int) ([]*types.IngestRun, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if limit <= 0 {
		limit = 50
	}
	var out []*types.IngestRun
	if err := t.WithContext(dbc.Ctx).
		Order("started_at DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
