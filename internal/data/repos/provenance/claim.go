package provenance

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/pinlore/pinlore-backend/internal/domain"
	"github.com/pinlore/pinlore-backend/internal/platform/dbctx"
	"github.com/pinlore/pinlore-backend/internal/platform/logger"
)

const createBatchSize = 500

// ClaimRepo owns reads and the two legal writes on the claim ledger:
// inserting new rows and clearing is_active. Nothing else ever updates a
// claim.
type ClaimRepo interface {
	Create(dbc dbctx.Context, claims []*types.Claim) error
	DeactivateByIDs(dbc dbctx.Context, ids []uint) error
	DeactivateActive(dbc dbctx.Context, subject types.Subject, claimKey string, sourceID *uint, authorID *uuid.UUID) error
	GetByID(dbc dbctx.Context, id uint) (*types.Claim, error)
	ListActiveBySubject(dbc dbctx.Context, subject types.Subject) ([]*types.Claim, error)
	ListActiveByKind(dbc dbctx.Context, kind types.EntityKind) ([]*types.Claim, error)
	ListActiveByKindAndField(dbc dbctx.Context, kind types.EntityKind, fieldName string) ([]*types.Claim, error)
	ListActiveBySourceAndKinds(dbc dbctx.Context, sourceID uint, kinds []types.EntityKind) ([]*types.Claim, error)
	CountBySource(dbc dbctx.Context, sourceID uint) (int64, error)
}

type claimRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewClaimRepo(db *gorm.DB, baseLog *logger.Logger) ClaimRepo {
	return &claimRepo{
		db:  db,
		log: baseLog.With("repo", "ClaimRepo"),
	}
}

func (r *claimRepo) Create(dbc dbctx.Context, claims []*types.Claim) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(claims) == 0 {
		return nil
	}
	now := time.Now().UTC()
	for _, c := range claims {
		c.IsActive = true
		if c.CreatedAt.IsZero() {
			c.CreatedAt = now
		}
	}
	return t.WithContext(dbc.Ctx).CreateInBatches(claims, createBatchSize).Error
}

func (r *claimRepo) DeactivateByIDs(dbc dbctx.Context, ids []uint) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if len(ids) == 0 {
		return nil
	}
	return t.WithContext(dbc.Ctx).
		Model(&types.Claim{}).
		Where("id IN ?", ids).
		Update("is_active", false).Error
}

// DeactivateActive clears the single active claim one attributor holds
// for (subject, claimKey), if any.
func (r *claimRepo) DeactivateActive(dbc dbctx.Context, subject types.Subject, claimKey string, sourceID *uint, authorID *uuid.UUID) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	q := t.WithContext(dbc.Ctx).
		Model(&types.Claim{}).
		Where("subject_kind = ? AND subject_id = ? AND claim_key = ? AND is_active", subject.Kind, subject.ID, claimKey)
	if sourceID != nil {
		q = q.Where("source_id = ?", *sourceID)
	} else {
		q = q.Where("author_id = ?", *authorID)
	}
	return q.Update("is_active", false).Error
}

func (r *claimRepo) GetByID(dbc dbctx.Context, id uint) (*types.Claim, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out types.Claim
	err := t.WithContext(dbc.Ctx).First(&out, id).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ListActiveBySubject preloads Source and Author because the single
// entity paths (resolution, activity feed) want attributor rows without
// a second query.
func (r *claimRepo) ListActiveBySubject(dbc dbctx.Context, subject types.Subject) ([]*types.Claim, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Claim
	if err := t.WithContext(dbc.Ctx).
		Preload("Source").
		Preload("Author").
		Where("subject_kind = ? AND subject_id = ? AND is_active", subject.Kind, subject.ID).
		Order("id").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *claimRepo) ListActiveByKind(dbc dbctx.Context, kind types.EntityKind) ([]*types.Claim, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Claim
	if err := t.WithContext(dbc.Ctx).
		Where("subject_kind = ? AND is_active", kind).
		Order("id").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *claimRepo) ListActiveByKindAndField(dbc dbctx.Context, kind types.EntityKind, fieldName string) ([]*types.Claim, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Claim
	if err := t.WithContext(dbc.Ctx).
		Where("subject_kind = ? AND field_name = ? AND is_active", kind, fieldName).
		Order("id").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *claimRepo) ListActiveBySourceAndKinds(dbc dbctx.Context, sourceID uint, kinds []types.EntityKind) ([]*types.Claim, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*types.Claim
	if len(kinds) == 0 {
		return out, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("source_id = ? AND subject_kind IN ? AND is_active", sourceID, kinds).
		Order("id").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *claimRepo) CountBySource(dbc dbctx.Context, sourceID uint) (int64, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var n int64
	if err := t.WithContext(dbc.Ctx).
		Model(&types.Claim{}).
		Where("source_id = ?", sourceID).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}
