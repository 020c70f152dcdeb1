// Package resolve turns active claims into authoritative entity rows.
// One generic engine serves every entity kind; the per-kind field
// tables in internal/catalog are its only configuration. Resolution is
// always explicit: nothing here runs as a side effect of a write to the
// ledger.
package resolve

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/pinlore/pinlore-backend/internal/catalog"
	"github.com/pinlore/pinlore-backend/internal/data/repos"
	types "github.com/pinlore/pinlore-backend/internal/domain"
	"github.com/pinlore/pinlore-backend/internal/platform/dbctx"
	"github.com/pinlore/pinlore-backend/internal/platform/logger"
)

type Service interface {
	// ResolveEntity re-resolves one entity from its active claims.
	ResolveEntity(ctx context.Context, subject types.Subject) error
	// ResolveKind re-resolves every entity of one kind, returning the
	// number of entities written.
	ResolveKind(ctx context.Context, kind types.EntityKind) (int, error)
	// ResolveAll re-resolves every entity of every kind.
	ResolveAll(ctx context.Context) (int, error)
}

type service struct {
	db  *gorm.DB
	log *logger.Logger

	claims  repos.ClaimRepo
	sources repos.SourceRepo
	users   repos.UserRepo

	machines      repos.MachineRepo
	manufacturers repos.ManufacturerRepo
	mfrEntities   repos.ManufacturerEntityRepo
	groups        repos.MachineGroupRepo
	people        repos.PersonRepo
	themes        repos.ThemeRepo
	awards        repos.AwardRepo

	credits       repos.DesignCreditRepo
	machineThemes repos.MachineThemeRepo
	recipients    repos.AwardRecipientRepo

	locks subjectLocks
}

func NewService(
	db *gorm.DB,
	baseLog *logger.Logger,
	claimRepo repos.ClaimRepo,
	sourceRepo repos.SourceRepo,
	userRepo repos.UserRepo,
	machineRepo repos.MachineRepo,
	manufacturerRepo repos.ManufacturerRepo,
	manufacturerEntityRepo repos.ManufacturerEntityRepo,
	machineGroupRepo repos.MachineGroupRepo,
	personRepo repos.PersonRepo,
	themeRepo repos.ThemeRepo,
	awardRepo repos.AwardRepo,
	designCreditRepo repos.DesignCreditRepo,
	machineThemeRepo repos.MachineThemeRepo,
	awardRecipientRepo repos.AwardRecipientRepo,
) Service {
	return &service{
		db:            db,
		log:           baseLog.With("service", "ResolveService"),
		claims:        claimRepo,
		sources:       sourceRepo,
		users:         userRepo,
		machines:      machineRepo,
		manufacturers: manufacturerRepo,
		mfrEntities:   manufacturerEntityRepo,
		groups:        machineGroupRepo,
		people:        personRepo,
		themes:        themeRepo,
		awards:        awardRepo,
		credits:       designCreditRepo,
		machineThemes: machineThemeRepo,
		recipients:    awardRecipientRepo,
	}
}

// subjectLocks serializes in-process resolution per entity, so two
// concurrent passes over the same subject cannot interleave their
// read-compute-write cycles.
type subjectLocks struct {
	mu sync.Mutex
	m  map[types.Subject]*sync.Mutex
}

func (l *subjectLocks) lock(subject types.Subject) func() {
	l.mu.Lock()
	if l.m == nil {
		l.m = map[types.Subject]*sync.Mutex{}
	}
	mu, ok := l.m[subject]
	if !ok {
		mu = &sync.Mutex{}
		l.m[subject] = mu
	}
	l.mu.Unlock()
	mu.Lock()
	return mu.Unlock
}

func (s *service) ResolveEntity(ctx context.Context, subject types.Subject) error {
	d, ok := catalog.DescriptorFor(subject.Kind)
	if !ok {
		return fmt.Errorf("no descriptor for entity kind %q", subject.Kind)
	}

	unlock := s.locks.lock(subject)
	defer unlock()

	dbc := dbctx.Context{Ctx: ctx}
	lk, err := s.buildLookups(dbc)
	if err != nil {
		return fmt.Errorf("build lookups: %w", err)
	}
	claims, err := s.claims.ListActiveBySubject(dbc, subject)
	if err != nil {
		return fmt.Errorf("load active claims: %w", err)
	}

	winners := PickWinners(claims, lk.prio)
	updates := s.scalarUpdates(d, winners, lk)

	for _, f := range d.Fields {
		if !f.Unique || updates[f.Column] == nil {
			continue
		}
		ownerID, ownerName, err := s.ownerOfUnique(dbc, subject.Kind, f.Column, updates[f.Column], subject.ID)
		if err != nil {
			return err
		}
		if ownerID != 0 {
			s.log.Warn("unique external id already owned, clearing",
				"kind", string(subject.Kind), "field", f.Name,
				"value", fmt.Sprint(updates[f.Column]),
				"owner_id", ownerID, "owner", ownerName, "entity_id", subject.ID)
			updates[f.Column] = nil
		}
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inner := dbctx.Context{Ctx: ctx, Tx: tx}
		return s.applyEntity(inner, d, subject.ID, updates, winners, lk)
	})
}

// entityState is one entity's computed resolution, held until the
// cross-entity uniqueness guard has run.
type entityState struct {
	id      uint
	winners map[string]*types.Claim
	updates map[string]interface{}
}

func (s *service) ResolveKind(ctx context.Context, kind types.EntityKind) (int, error) {
	d, ok := catalog.DescriptorFor(kind)
	if !ok {
		return 0, fmt.Errorf("no descriptor for entity kind %q", kind)
	}

	dbc := dbctx.Context{Ctx: ctx}
	lk, err := s.buildLookups(dbc)
	if err != nil {
		return 0, fmt.Errorf("build lookups: %w", err)
	}
	ids, err := s.entityIDs(dbc, kind)
	if err != nil {
		return 0, fmt.Errorf("load entities: %w", err)
	}
	claims, err := s.claims.ListActiveByKind(dbc, kind)
	if err != nil {
		return 0, fmt.Errorf("load active claims: %w", err)
	}
	bySubject := map[uint][]*types.Claim{}
	for _, c := range claims {
		bySubject[c.SubjectID] = append(bySubject[c.SubjectID], c)
	}

	// Every entity of the kind resolves, including ones with no active
	// claims: those reset to blank rather than keeping stale values.
	states := make([]*entityState, 0, len(ids))
	for _, id := range ids {
		winners := PickWinners(bySubject[id], lk.prio)
		states = append(states, &entityState{
			id:      id,
			winners: winners,
			updates: s.scalarUpdates(d, winners, lk),
		})
	}

	s.clearUniqueConflicts(d, states)

	for _, st := range states {
		unlock := s.locks.lock(types.Subject{Kind: kind, ID: st.id})
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			inner := dbctx.Context{Ctx: ctx, Tx: tx}
			return s.applyEntity(inner, d, st.id, st.updates, st.winners, lk)
		})
		unlock()
		if err != nil {
			return 0, fmt.Errorf("apply %s %d: %w", kind, st.id, err)
		}
	}

	s.log.Info("resolved entities", "kind", string(kind), "count", len(states))
	return len(states), nil
}

func (s *service) ResolveAll(ctx context.Context) (int, error) {
	var total int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(2)
	for _, kind := range types.AllKinds() {
		kind := kind
		g.Go(func() error {
			n, err := s.ResolveKind(gctx, kind)
			if err != nil {
				return fmt.Errorf("resolve %s: %w", kind, err)
			}
			atomic.AddInt64(&total, int64(n))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	return int(atomic.LoadInt64(&total)), nil
}

func (s *service) entityIDs(dbc dbctx.Context, kind types.EntityKind) ([]uint, error) {
	switch kind {
	case types.KindMachine:
		rows, err := s.machines.All(dbc)
		if err != nil {
			return nil, err
		}
		ids := make([]uint, len(rows))
		for i, r := range rows {
			ids[i] = r.ID
		}
		return ids, nil
	case types.KindManufacturer:
		rows, err := s.manufacturers.All(dbc)
		if err != nil {
			return nil, err
		}
		ids := make([]uint, len(rows))
		for i, r := range rows {
			ids[i] = r.ID
		}
		return ids, nil
	case types.KindPerson:
		rows, err := s.people.All(dbc)
		if err != nil {
			return nil, err
		}
		ids := make([]uint, len(rows))
		for i, r := range rows {
			ids[i] = r.ID
		}
		return ids, nil
	case types.KindAward:
		rows, err := s.awards.All(dbc)
		if err != nil {
			return nil, err
		}
		ids := make([]uint, len(rows))
		for i, r := range rows {
			ids[i] = r.ID
		}
		return ids, nil
	}
	return nil, fmt.Errorf("unknown entity kind %q", kind)
}

// applyEntity writes one entity's resolution: scalar columns first,
// then each relationship namespace's join-row delta. Runs inside one
// transaction so readers never see a half-applied entity.
func (s *service) applyEntity(dbc dbctx.Context, d *catalog.Descriptor, id uint, updates map[string]interface{}, winners map[string]*types.Claim, lk *lookups) error {
	var err error
	switch d.Kind {
	case types.KindMachine:
		err = s.machines.UpdateColumns(dbc, id, updates)
	case types.KindManufacturer:
		err = s.manufacturers.UpdateColumns(dbc, id, updates)
	case types.KindPerson:
		err = s.people.UpdateColumns(dbc, id, updates)
	case types.KindAward:
		err = s.awards.UpdateColumns(dbc, id, updates)
	default:
		err = fmt.Errorf("unknown entity kind %q", d.Kind)
	}
	if err != nil {
		return err
	}
	for _, ns := range d.Relationships {
		if err := s.applyRelationship(dbc, d.Kind, id, ns, winners, lk); err != nil {
			return err
		}
	}
	return nil
}

// ownerOfUnique finds another row of kind already holding value in
// column. Only kinds that declare unique fields need a branch here.
func (s *service) ownerOfUnique(dbc dbctx.Context, kind types.EntityKind, column string, value interface{}, excludeID uint) (uint, string, error) {
	switch kind {
	case types.KindMachine:
		m, err := s.machines.GetOtherByColumn(dbc, column, value, excludeID)
		if err != nil || m == nil {
			return 0, "", err
		}
		return m.ID, m.Name, nil
	}
	return 0, "", nil
}

// clearUniqueConflicts nulls duplicate unique external ids across the
// computed states. States arrive ordered by entity id, so the earliest
// row keeps the value and later claimants lose it with a warning.
func (s *service) clearUniqueConflicts(d *catalog.Descriptor, states []*entityState) {
	for _, f := range d.Fields {
		if !f.Unique {
			continue
		}
		seen := map[string]uint{}
		for _, st := range states {
			raw, ok := st.updates[f.Column]
			if !ok || raw == nil {
				continue
			}
			key := fmt.Sprint(raw)
			if key == "" {
				continue
			}
			if ownerID, dup := seen[key]; dup {
				s.log.Warn("duplicate unique external id, clearing",
					"kind", string(d.Kind), "field", f.Name, "value", key,
					"owner_id", ownerID, "cleared_id", st.id)
				st.updates[f.Column] = nil
				continue
			}
			seen[key] = st.id
		}
	}
}
