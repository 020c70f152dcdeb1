package resolve

import (
	"strings"

	"github.com/google/uuid"

	"github.com/pinlore/pinlore-backend/internal/platform/dbctx"
)

// lookups carries every table a resolution pass needs in memory:
// reference-target indexes, slug indexes for relationship identities,
// and the priority tables for ranking claims. Built once per pass.
type lookups struct {
	mfrByIPDBID  map[int64]uint
	mfrByOPDBID  map[int64]uint
	mfrByName    map[string]uint
	mfrByTrade   map[string]uint
	groupByOPDB  map[string]uint
	personBySlug map[string]uint
	themeBySlug  map[string]uint

	sourceSlug map[uint]string
	prio       Priorities
}

func (s *service) buildLookups(dbc dbctx.Context) (*lookups, error) {
	lk := &lookups{
		mfrByIPDBID:  map[int64]uint{},
		mfrByOPDBID:  map[int64]uint{},
		mfrByName:    map[string]uint{},
		mfrByTrade:   map[string]uint{},
		groupByOPDB:  map[string]uint{},
		personBySlug: map[string]uint{},
		themeBySlug:  map[string]uint{},
		sourceSlug:   map[uint]string{},
		prio: Priorities{
			Source: map[uint]int{},
			Author: map[uuid.UUID]int{},
		},
	}

	entities, err := s.mfrEntities.All(dbc)
	if err != nil {
		return nil, err
	}
	for _, e := range entities {
		if e.IPDBManufacturerID != nil {
			lk.mfrByIPDBID[*e.IPDBManufacturerID] = e.ManufacturerID
		}
	}

	mfrs, err := s.manufacturers.All(dbc)
	if err != nil {
		return nil, err
	}
	for _, m := range mfrs {
		if m.OPDBManufacturerID != nil {
			lk.mfrByOPDBID[*m.OPDBManufacturerID] = m.ID
		}
		if m.Name != "" {
			lk.mfrByName[strings.ToLower(m.Name)] = m.ID
		}
		if m.TradeName != "" {
			lk.mfrByTrade[strings.ToLower(m.TradeName)] = m.ID
		}
	}

	groups, err := s.groups.All(dbc)
	if err != nil {
		return nil, err
	}
	for _, g := range groups {
		lk.groupByOPDB[g.OPDBGroupID] = g.ID
	}

	people, err := s.people.All(dbc)
	if err != nil {
		return nil, err
	}
	for _, p := range people {
		lk.personBySlug[p.Slug] = p.ID
	}

	themes, err := s.themes.All(dbc)
	if err != nil {
		return nil, err
	}
	for _, t := range themes {
		lk.themeBySlug[t.Slug] = t.ID
	}

	sources, err := s.sources.All(dbc)
	if err != nil {
		return nil, err
	}
	for _, src := range sources {
		lk.sourceSlug[src.ID] = src.Slug
		lk.prio.Source[src.ID] = src.Priority
	}

	users, err := s.users.All(dbc)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		lk.prio.Author[u.ID] = u.Priority
	}

	return lk, nil
}
