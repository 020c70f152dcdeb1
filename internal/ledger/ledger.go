// Package ledger implements the provenance claim store: single-fact
// assertion and the bulk assertion engine ingestion runs on. It knows
// nothing about what the claims mean; resolution and the catalog layer
// interpret them.
package ledger

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/pinlore/pinlore-backend/internal/data/repos"
	types "github.com/pinlore/pinlore-backend/internal/domain"
	"github.com/pinlore/pinlore-backend/internal/platform/dbctx"
	"github.com/pinlore/pinlore-backend/internal/platform/logger"
)

// ErrAttribution is returned when a claim is not attributed to exactly
// one source or one author.
var ErrAttribution = errors.New("exactly one of source or author must be set")

type AssertInput struct {
	Subject   types.Subject
	FieldName string
	// ClaimKey defaults to FieldName. Relationship claims pass the key
	// built from their identity fields.
	ClaimKey string
	Value    Value
	Citation string
	SourceID *uint
	AuthorID *uuid.UUID
}

// Candidate is one fact in a bulk assertion batch.
type Candidate struct {
	Subject   types.Subject
	FieldName string
	ClaimKey  string
	Value     Value
	Citation  string
}

type BulkOptions struct {
	// SweepField enables full-sync retraction for one field name: the
	// source's active claims on that field which are absent from the
	// batch get deactivated.
	SweepField string
	// Scope lists the subjects the source is authoritative for in this
	// run. When empty the scope is derived from the candidate set.
	// Sweeping with a partial batch and no explicit scope would retract
	// facts the run simply did not mention, so incremental ingests must
	// leave SweepField unset.
	Scope []types.Subject
}

type BulkResult struct {
	Unchanged         int `json:"unchanged"`
	Created           int `json:"created"`
	Superseded        int `json:"superseded"`
	Swept             int `json:"swept"`
	DuplicatesRemoved int `json:"duplicates_removed"`
}

type Service interface {
	// Assert writes one claim, deactivating any active claim for the
	// same (subject, claim key, attributor) in the same transaction.
	Assert(dbc dbctx.Context, in AssertInput) (*types.Claim, error)
	// BulkAssert diffs a candidate batch against the source's active
	// claims and writes only the delta. Running the same batch twice
	// writes nothing the second time.
	BulkAssert(dbc dbctx.Context, sourceID uint, candidates []Candidate, opts BulkOptions) (*BulkResult, error)
}

type service struct {
	db        *gorm.DB
	log       *logger.Logger
	claimRepo repos.ClaimRepo
}

func NewService(db *gorm.DB, log *logger.Logger, claimRepo repos.ClaimRepo) Service {
	return &service{
		db:        db,
		log:       log.With("service", "LedgerService"),
		claimRepo: claimRepo,
	}
}

func (s *service) Assert(dbc dbctx.Context, in AssertInput) (*types.Claim, error) {
	if (in.SourceID == nil) == (in.AuthorID == nil) {
		return nil, ErrAttribution
	}
	claimKey := in.ClaimKey
	if claimKey == "" {
		var err error
		claimKey, err = MakeClaimKey(in.FieldName, nil)
		if err != nil {
			return nil, err
		}
	}
	raw, err := in.Value.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("marshal claim value: %w", err)
	}

	claim := &types.Claim{
		SubjectKind: in.Subject.Kind,
		SubjectID:   in.Subject.ID,
		SourceID:    in.SourceID,
		AuthorID:    in.AuthorID,
		FieldName:   in.FieldName,
		ClaimKey:    claimKey,
		Value:       datatypes.JSON(raw),
		Citation:    in.Citation,
	}

	write := func(inner dbctx.Context) error {
		if err := s.claimRepo.DeactivateActive(inner, in.Subject, claimKey, in.SourceID, in.AuthorID); err != nil {
			return fmt.Errorf("deactivate prior claim: %w", err)
		}
		return s.claimRepo.Create(inner, []*types.Claim{claim})
	}

	if dbc.Tx != nil {
		if err := write(dbc); err != nil {
			return nil, err
		}
		return claim, nil
	}
	if err := s.db.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
		return write(dbctx.Context{Ctx: dbc.Ctx, Tx: tx})
	}); err != nil {
		return nil, err
	}
	return claim, nil
}

type bulkKey struct {
	subject  types.Subject
	claimKey string
}

func (s *service) BulkAssert(dbc dbctx.Context, sourceID uint, candidates []Candidate, opts BulkOptions) (*BulkResult, error) {
	// Deduplicate per (subject, claim key): the last candidate wins,
	// matching repeated single assertions, but the batch keeps its
	// original ordering.
	order := make([]bulkKey, 0, len(candidates))
	deduped := make(map[bulkKey]Candidate, len(candidates))
	for _, cand := range candidates {
		key := cand.ClaimKey
		if key == "" {
			built, err := MakeClaimKey(cand.FieldName, nil)
			if err != nil {
				return nil, err
			}
			key = built
		}
		cand.ClaimKey = key
		bk := bulkKey{subject: cand.Subject, claimKey: key}
		if _, ok := deduped[bk]; !ok {
			order = append(order, bk)
		}
		deduped[bk] = cand
	}
	result := &BulkResult{DuplicatesRemoved: len(candidates) - len(deduped)}

	kindSet := map[types.EntityKind]struct{}{}
	for bk := range deduped {
		kindSet[bk.subject.Kind] = struct{}{}
	}
	for _, sub := range opts.Scope {
		kindSet[sub.Kind] = struct{}{}
	}
	if len(kindSet) == 0 {
		return result, nil
	}
	kinds := make([]types.EntityKind, 0, len(kindSet))
	for k := range kindSet {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })

	existingRows, err := s.claimRepo.ListActiveBySourceAndKinds(dbc, sourceID, kinds)
	if err != nil {
		return nil, fmt.Errorf("load active claims: %w", err)
	}
	existing := make(map[bulkKey]*types.Claim, len(existingRows))
	for _, row := range existingRows {
		existing[bulkKey{subject: row.Subject(), claimKey: row.ClaimKey}] = row
	}

	// Diff: identical value and citation means no write at all.
	sid := sourceID
	now := time.Now().UTC()
	var toDeactivate []uint
	var toCreate []*types.Claim
	for _, bk := range order {
		cand := deduped[bk]
		if old := existing[bk]; old != nil {
			oldVal, parseErr := FromJSON([]byte(old.Value))
			if parseErr == nil && oldVal.Equal(cand.Value) && old.Citation == cand.Citation {
				result.Unchanged++
				continue
			}
			toDeactivate = append(toDeactivate, old.ID)
			result.Superseded++
		}
		raw, err := cand.Value.MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("marshal claim value for %s %s: %w", bk.subject, bk.claimKey, err)
		}
		toCreate = append(toCreate, &types.Claim{
			SubjectKind: cand.Subject.Kind,
			SubjectID:   cand.Subject.ID,
			SourceID:    &sid,
			FieldName:   cand.FieldName,
			ClaimKey:    cand.ClaimKey,
			Value:       datatypes.JSON(raw),
			Citation:    cand.Citation,
			IsActive:    true,
			CreatedAt:   now,
		})
	}
	result.Created = len(toCreate)

	// Sweep: the source no longer asserts these, so retract them.
	var sweptIDs []uint
	if opts.SweepField != "" {
		scope := map[types.Subject]struct{}{}
		if len(opts.Scope) > 0 {
			for _, sub := range opts.Scope {
				scope[sub] = struct{}{}
			}
		} else {
			for bk := range deduped {
				scope[bk.subject] = struct{}{}
			}
		}
		for _, row := range existingRows {
			if row.FieldName != opts.SweepField {
				continue
			}
			sub := row.Subject()
			if _, ok := scope[sub]; !ok {
				continue
			}
			if _, ok := deduped[bulkKey{subject: sub, claimKey: row.ClaimKey}]; ok {
				continue
			}
			sweptIDs = append(sweptIDs, row.ID)
		}
	}
	result.Swept = len(sweptIDs)

	if len(toDeactivate)+len(sweptIDs)+len(toCreate) > 0 {
		deactivateIDs := append(append([]uint{}, toDeactivate...), sweptIDs...)
		apply := func(inner dbctx.Context) error {
			if err := s.claimRepo.DeactivateByIDs(inner, deactivateIDs); err != nil {
				return fmt.Errorf("deactivate claims: %w", err)
			}
			return s.claimRepo.Create(inner, toCreate)
		}
		if dbc.Tx != nil {
			if err := apply(dbc); err != nil {
				return nil, err
			}
		} else if err := s.db.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
			return apply(dbctx.Context{Ctx: dbc.Ctx, Tx: tx})
		}); err != nil {
			return nil, err
		}
	}

	s.log.Info("Bulk assert complete",
		"source_id", sourceID,
		"created", result.Created,
		"superseded", result.Superseded,
		"swept", result.Swept,
		"unchanged", result.Unchanged,
		"duplicates_removed", result.DuplicatesRemoved,
	)
	return result, nil
}
