package ingest

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pinlore/pinlore-backend/internal/catalog"
	types "github.com/pinlore/pinlore-backend/internal/domain"
	"github.com/pinlore/pinlore-backend/internal/ledger"
	"github.com/pinlore/pinlore-backend/internal/platform/dbctx"
)

type IngestOptions struct {
	// DryRun validates the dump and resolves entity references without
	// writing anything: no rows, no claims, no run record.
	DryRun bool
}

// ClaimIngestResult is returned from a claim dump run and stored as the
// run's stats payload.
type ClaimIngestResult struct {
	Source           string            `json:"source"`
	DryRun           bool              `json:"dry_run,omitempty"`
	EntitiesDeclared int               `json:"entities_declared"`
	EntitiesCreated  map[string]int    `json:"entities_created,omitempty"`
	Candidates       int               `json:"candidates"`
	SkippedEmpty     int               `json:"skipped_empty,omitempty"`
	Bulk             ledger.BulkResult `json:"bulk"`

	RunID uuid.UUID `json:"-"`
}

// IngestClaims runs a claim dump: validate, ensure entities, build
// candidates, bulk-assert with the dump's sweep settings. Validation
// failures abort before anything is written; a run record brackets the
// writing phase.
func (s *service) IngestClaims(dbc dbctx.Context, dump *Dump, opts IngestOptions) (*ClaimIngestResult, error) {
	if dump == nil {
		return nil, fmt.Errorf("no dump")
	}

	src, err := s.sourceRepo.GetBySlug(dbc, dump.Source)
	if err != nil {
		return nil, fmt.Errorf("look up source %q: %w", dump.Source, err)
	}
	if src == nil {
		return nil, fmt.Errorf("source %q is not registered; sync sources first", dump.Source)
	}
	if err := validateDump(dump); err != nil {
		return nil, err
	}

	if opts.DryRun {
		return s.runClaims(dbc, dump, src, true)
	}

	run, err := s.runRepo.Start(dbc, types.RunKindClaims, dump.Source)
	if err != nil {
		return nil, fmt.Errorf("start ingest run: %w", err)
	}

	var result *ClaimIngestResult
	runErr := func() error {
		if dbc.Tx != nil {
			result, err = s.runClaims(dbc, dump, src, false)
			return err
		}
		return s.db.WithContext(dbc.Ctx).Transaction(func(tx *gorm.DB) error {
			result, err = s.runClaims(dbctx.Context{Ctx: dbc.Ctx, Tx: tx}, dump, src, false)
			return err
		})
	}()

	var stats []byte
	if result != nil {
		stats, _ = json.Marshal(result)
	}
	if ferr := s.runRepo.Finish(dbc, run.ID, stats, runErr); ferr != nil {
		s.log.Warn("finish ingest run", "run_id", run.ID, "error", ferr)
	}
	if runErr != nil {
		return nil, runErr
	}
	result.RunID = run.ID
	return result, nil
}

// validateDump is the blocking pre-write pass: every claim's subject
// kind must parse, relationship claims must target a kind that
// materializes the namespace, and every enumerated classification code
// must map. All unmapped codes are reported together.
func validateDump(dump *Dump) error {
	var mapErrs MappingErrors
	for i, c := range dump.Claims {
		kind, err := types.ParseKind(c.Kind)
		if err != nil {
			return fmt.Errorf("claim %d (%s): %w", i, c.Entity, err)
		}
		desc, ok := catalog.DescriptorFor(kind)
		if !ok {
			return fmt.Errorf("claim %d (%s): no descriptor for kind %q", i, c.Entity, kind)
		}
		if catalog.IsRelationshipField(c.Field) {
			if !desc.HasRelationship(c.Field) {
				return fmt.Errorf("claim %d (%s): kind %q has no %q relationship", i, c.Entity, kind, c.Field)
			}
			if _, err := c.identityValues(); err != nil {
				return fmt.Errorf("claim %d (%s %s): %w", i, c.Entity, c.Field, err)
			}
			continue
		}
		if len(c.Value) == 0 {
			return fmt.Errorf("claim %d (%s %s): scalar claim without a value", i, c.Entity, c.Field)
		}
		if !IsEnumField(c.Field) {
			continue
		}
		v, err := ledger.FromJSON(c.Value)
		if err != nil {
			return fmt.Errorf("claim %d (%s %s): %w", i, c.Entity, c.Field, err)
		}
		if v.Empty() {
			continue
		}
		code, ok := v.AsString()
		if !ok {
			mapErrs.Add(fmt.Errorf("%s code for %q is not a string", c.Field, c.Entity))
			continue
		}
		if _, err := MapEnumCode(dump.Source, c.Field, code); err != nil {
			mapErrs.Add(err)
		}
	}
	if !mapErrs.Empty() {
		return &mapErrs
	}
	return nil
}

func (s *service) runClaims(dbc dbctx.Context, dump *Dump, src *types.Source, dry bool) (*ClaimIngestResult, error) {
	e, err := newEnsurer(dbc, s.ensureDeps(), s.log, dry)
	if err != nil {
		return nil, err
	}

	subjects := map[types.EntityKind]map[types.Subject]struct{}{}
	note := func(sub types.Subject) {
		if sub.Kind == "" {
			return
		}
		set := subjects[sub.Kind]
		if set == nil {
			set = map[types.Subject]struct{}{}
			subjects[sub.Kind] = set
		}
		set[sub] = struct{}{}
	}

	for i, ent := range dump.Entities {
		sub, err := e.EnsureEntity(dbc, ent)
		if err != nil {
			return nil, fmt.Errorf("entity %d: %w", i, err)
		}
		note(sub)
	}

	result := &ClaimIngestResult{
		Source:           dump.Source,
		DryRun:           dry,
		EntitiesDeclared: len(dump.Entities),
	}

	var candidates []ledger.Candidate
	for i, c := range dump.Claims {
		kind, _ := types.ParseKind(c.Kind)
		subject, err := e.ResolveSubject(dbc, kind, c.Entity)
		if err != nil {
			return nil, fmt.Errorf("claim %d: %w", i, err)
		}
		note(subject)

		cand, skip, err := s.buildCandidate(dbc, e, dump.Source, subject, c)
		if err != nil {
			return nil, fmt.Errorf("claim %d (%s %s): %w", i, c.Entity, c.Field, err)
		}
		if skip {
			result.SkippedEmpty++
			continue
		}
		candidates = append(candidates, cand)
	}
	result.Candidates = len(candidates)
	result.EntitiesCreated = e.created

	if dry {
		return result, nil
	}

	// One bulk call per sweep field so each field gets its own
	// authoritative scope, plus one call for everything else. A sweep
	// field with zero candidates still runs: an empty batch with an
	// explicit scope retracts everything the source asserted there.
	sweeping := map[string]bool{}
	byField := map[string][]ledger.Candidate{}
	var rest []ledger.Candidate
	for _, f := range dump.SweepFields {
		sweeping[f] = true
	}
	for _, cand := range candidates {
		if sweeping[cand.FieldName] {
			byField[cand.FieldName] = append(byField[cand.FieldName], cand)
		} else {
			rest = append(rest, cand)
		}
	}

	seen := map[string]bool{}
	for _, f := range dump.SweepFields {
		if seen[f] {
			continue
		}
		seen[f] = true
		res, err := s.ledger.BulkAssert(dbc, src.ID, byField[f], ledger.BulkOptions{
			SweepField: f,
			Scope:      sweepScope(f, subjects),
		})
		if err != nil {
			return result, fmt.Errorf("bulk assert %q: %w", f, err)
		}
		mergeBulk(&result.Bulk, res)
	}
	if len(rest) > 0 {
		res, err := s.ledger.BulkAssert(dbc, src.ID, rest, ledger.BulkOptions{})
		if err != nil {
			return result, fmt.Errorf("bulk assert: %w", err)
		}
		mergeBulk(&result.Bulk, res)
	}

	s.log.Info("claim dump ingested",
		"source", dump.Source,
		"entities", result.EntitiesDeclared,
		"candidates", result.Candidates,
		"created", result.Bulk.Created,
		"superseded", result.Bulk.Superseded,
		"swept", result.Bulk.Swept,
		"unchanged", result.Bulk.Unchanged,
	)
	return result, nil
}

// buildCandidate turns one dump claim into a bulk candidate. skip means
// the claim carries no usable value and the sweep, when enabled, is the
// retraction mechanism.
func (s *service) buildCandidate(dbc dbctx.Context, e *ensurer, sourceSlug string, subject types.Subject, c DumpClaim) (ledger.Candidate, bool, error) {
	if catalog.IsRelationshipField(c.Field) {
		identity, err := c.identityValues()
		if err != nil {
			return ledger.Candidate{}, false, err
		}
		if v, ok := identity["person_slug"]; ok {
			ref, strOK := v.AsString()
			if !strOK || ref == "" {
				return ledger.Candidate{}, false, fmt.Errorf("person reference must be a non-empty string")
			}
			slug, err := e.ResolvePersonSlug(dbc, ref)
			if err != nil {
				return ledger.Candidate{}, false, err
			}
			identity["person_slug"] = ledger.String(slug)
		}
		if v, ok := identity["theme_slug"]; ok {
			ref, strOK := v.AsString()
			if !strOK || ref == "" {
				return ledger.Candidate{}, false, fmt.Errorf("theme reference must be a non-empty string")
			}
			slug, err := e.ResolveThemeSlug(dbc, ref)
			if err != nil {
				return ledger.Candidate{}, false, err
			}
			identity["theme_slug"] = ledger.String(slug)
		}
		if v, ok := identity["role"]; ok {
			if role, strOK := v.AsString(); strOK {
				identity["role"] = ledger.String(strings.ToLower(strings.TrimSpace(role)))
			}
		}
		exists := c.Exists == nil || *c.Exists
		key, value, err := catalog.BuildRelationshipClaim(c.Field, identity, exists)
		if err != nil {
			return ledger.Candidate{}, false, err
		}
		return ledger.Candidate{
			Subject:   subject,
			FieldName: c.Field,
			ClaimKey:  key,
			Value:     value,
			Citation:  c.Citation,
		}, false, nil
	}

	v, err := ledger.FromJSON(c.Value)
	if err != nil {
		return ledger.Candidate{}, false, err
	}
	if v.Empty() {
		return ledger.Candidate{}, true, nil
	}
	if IsEnumField(c.Field) {
		code, _ := v.AsString()
		mapped, err := MapEnumCode(sourceSlug, c.Field, code)
		if err != nil {
			return ledger.Candidate{}, false, err
		}
		v = ledger.String(mapped)
	}
	if c.Field == "group" {
		if str, ok := v.AsString(); ok {
			v = ledger.String(GroupKeyFromOPDBID(str))
		}
	}
	return ledger.Candidate{
		Subject:   subject,
		FieldName: c.Field,
		Value:     v,
		Citation:  c.Citation,
	}, false, nil
}

// sweepScope lists every subject this dump touched whose kind declares
// the sweep field as a scalar, reference or relationship, in stable
// order.
func sweepScope(field string, subjects map[types.EntityKind]map[types.Subject]struct{}) []types.Subject {
	var out []types.Subject
	for _, desc := range catalog.Descriptors() {
		_, isField := desc.FieldByName(field)
		_, isRef := desc.ReferenceByName(field)
		if !isField && !isRef && !desc.HasRelationship(field) {
			continue
		}
		set := subjects[desc.Kind]
		ids := make([]types.Subject, 0, len(set))
		for sub := range set {
			ids = append(ids, sub)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i].ID < ids[j].ID })
		out = append(out, ids...)
	}
	return out
}

func mergeBulk(into *ledger.BulkResult, from *ledger.BulkResult) {
	into.Unchanged += from.Unchanged
	into.Created += from.Created
	into.Superseded += from.Superseded
	into.Swept += from.Swept
	into.DuplicatesRemoved += from.DuplicatesRemoved
}
