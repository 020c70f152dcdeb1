package ingest

import (
	"fmt"
	"strings"

	"github.com/pinlore/pinlore-backend/internal/catalog"
	"github.com/pinlore/pinlore-backend/internal/data/repos"
	types "github.com/pinlore/pinlore-backend/internal/domain"
	"github.com/pinlore/pinlore-backend/internal/platform/dbctx"
	"github.com/pinlore/pinlore-backend/internal/platform/logger"
)

// Dump entity kinds beyond the four claim-subject kinds.
const (
	kindTheme              = "theme"
	kindMachineGroup       = "machine_group"
	kindManufacturerEntity = "manufacturer_entity"
)

// ensurer resolves dump entity references against the database and
// creates what is missing. All existing rows are prefetched into
// by-slug and by-lowercased-name indexes up front, so a dump of any
// size costs a fixed number of lookup queries.
//
// Dry mode resolves without writing: rows that would be created are
// represented by placeholder records with id 0 and only counted.
type ensurer struct {
	log *logger.Logger
	dry bool

	machineRepo      repos.MachineRepo
	manufacturerRepo repos.ManufacturerRepo
	entityRepo       repos.ManufacturerEntityRepo
	groupRepo        repos.MachineGroupRepo
	personRepo       repos.PersonRepo
	awardRepo        repos.AwardRepo
	themeRepo        repos.ThemeRepo

	machineBySlug map[string]*types.Machine
	machineByName map[string]*types.Machine

	manufacturerBySlug  map[string]*types.Manufacturer
	manufacturerByName  map[string]*types.Manufacturer
	manufacturerByTrade map[string]*types.Manufacturer

	entityByIPDBID map[int64]*types.ManufacturerEntity

	groupByOPDBID map[string]*types.MachineGroup

	personBySlug map[string]*types.Person
	personByName map[string]*types.Person

	awardBySlug map[string]*types.Award
	awardByName map[string]*types.Award

	themeBySlug map[string]*types.Theme

	// dumpKeys maps (kind, declared slug or lowercased name) to the
	// ensured row's slug, so claims can reference entities by whichever
	// key their DumpEntity used.
	dumpKeys map[string]string

	created map[string]int
}

type ensureDeps struct {
	machines             repos.MachineRepo
	manufacturers        repos.ManufacturerRepo
	manufacturerEntities repos.ManufacturerEntityRepo
	groups               repos.MachineGroupRepo
	persons              repos.PersonRepo
	awards               repos.AwardRepo
	themes               repos.ThemeRepo
}

func newEnsurer(dbc dbctx.Context, deps ensureDeps, log *logger.Logger, dry bool) (*ensurer, error) {
	e := &ensurer{
		log:              log,
		dry:              dry,
		machineRepo:      deps.machines,
		manufacturerRepo: deps.manufacturers,
		entityRepo:       deps.manufacturerEntities,
		groupRepo:        deps.groups,
		personRepo:       deps.persons,
		awardRepo:        deps.awards,
		themeRepo:        deps.themes,

		machineBySlug:       map[string]*types.Machine{},
		machineByName:       map[string]*types.Machine{},
		manufacturerBySlug:  map[string]*types.Manufacturer{},
		manufacturerByName:  map[string]*types.Manufacturer{},
		manufacturerByTrade: map[string]*types.Manufacturer{},
		entityByIPDBID:      map[int64]*types.ManufacturerEntity{},
		groupByOPDBID:       map[string]*types.MachineGroup{},
		personBySlug:        map[string]*types.Person{},
		personByName:        map[string]*types.Person{},
		awardBySlug:         map[string]*types.Award{},
		awardByName:         map[string]*types.Award{},
		themeBySlug:         map[string]*types.Theme{},

		dumpKeys: map[string]string{},
		created:  map[string]int{},
	}

	machines, err := deps.machines.All(dbc)
	if err != nil {
		return nil, fmt.Errorf("load machines: %w", err)
	}
	for _, m := range machines {
		e.machineBySlug[m.Slug] = m
		if m.Name != "" {
			e.machineByName[strings.ToLower(m.Name)] = m
		}
	}

	manufacturers, err := deps.manufacturers.All(dbc)
	if err != nil {
		return nil, fmt.Errorf("load manufacturers: %w", err)
	}
	for _, m := range manufacturers {
		e.manufacturerBySlug[m.Slug] = m
		if m.Name != "" {
			e.manufacturerByName[strings.ToLower(m.Name)] = m
		}
		if m.TradeName != "" {
			e.manufacturerByTrade[strings.ToLower(m.TradeName)] = m
		}
	}

	entities, err := deps.manufacturerEntities.All(dbc)
	if err != nil {
		return nil, fmt.Errorf("load manufacturer entities: %w", err)
	}
	for _, ent := range entities {
		if ent.IPDBManufacturerID != nil {
			e.entityByIPDBID[*ent.IPDBManufacturerID] = ent
		}
	}

	groups, err := deps.groups.All(dbc)
	if err != nil {
		return nil, fmt.Errorf("load machine groups: %w", err)
	}
	for _, g := range groups {
		e.groupByOPDBID[g.OPDBGroupID] = g
	}

	persons, err := deps.persons.All(dbc)
	if err != nil {
		return nil, fmt.Errorf("load persons: %w", err)
	}
	for _, p := range persons {
		e.personBySlug[p.Slug] = p
		if p.Name != "" {
			e.personByName[strings.ToLower(p.Name)] = p
		}
	}

	awards, err := deps.awards.All(dbc)
	if err != nil {
		return nil, fmt.Errorf("load awards: %w", err)
	}
	for _, a := range awards {
		e.awardBySlug[a.Slug] = a
		if a.Name != "" {
			e.awardByName[strings.ToLower(a.Name)] = a
		}
	}

	themes, err := deps.themes.All(dbc)
	if err != nil {
		return nil, fmt.Errorf("load themes: %w", err)
	}
	for _, th := range themes {
		e.themeBySlug[th.Slug] = th
	}

	return e, nil
}

func (e *ensurer) countCreate(kind string) {
	e.created[kind]++
}

// uniqueSlug derives a collision-safe slug probing the in-memory index
// first and the table second. Newly ensured rows land in the index, so
// within one run two same-named creations diverge without touching the
// database twice.
func (e *ensurer) uniqueSlug(dbc dbctx.Context, base string, inIndex func(slug string) bool, taken func(dbctx.Context, string) (bool, error)) (string, error) {
	return catalog.UniqueSlug(base, func(slug string) (bool, error) {
		if inIndex(slug) {
			return true, nil
		}
		if e.dry {
			return false, nil
		}
		return taken(dbc, slug)
	})
}

// rememberKeys records the lookup keys a DumpEntity is addressable by.
func (e *ensurer) rememberKeys(ent DumpEntity, slug string) {
	if ent.Slug != "" {
		e.dumpKeys[ent.Kind+"\x00"+ent.Slug] = slug
	}
	if ent.Name != "" {
		e.dumpKeys[ent.Kind+"\x00"+strings.ToLower(ent.Name)] = slug
	}
}

// dumpKey resolves a claim's entity reference through the keys declared
// by this dump's entities.
func (e *ensurer) dumpKey(kind, key string) (string, bool) {
	if slug, ok := e.dumpKeys[kind+"\x00"+key]; ok {
		return slug, true
	}
	slug, ok := e.dumpKeys[kind+"\x00"+strings.ToLower(key)]
	return slug, ok
}

// EnsureEntity materializes one dump entity declaration. Claim-subject
// kinds return the row's subject; reference kinds return a zero
// subject.
func (e *ensurer) EnsureEntity(dbc dbctx.Context, ent DumpEntity) (types.Subject, error) {
	switch ent.Kind {
	case string(types.KindMachine):
		m, err := e.ensureMachine(dbc, ent.Slug, ent.Name)
		if err != nil {
			return types.Subject{}, err
		}
		e.rememberKeys(ent, m.Slug)
		return types.Subject{Kind: types.KindMachine, ID: m.ID}, nil
	case string(types.KindManufacturer):
		m, err := e.ensureManufacturer(dbc, ent)
		if err != nil {
			return types.Subject{}, err
		}
		e.rememberKeys(ent, m.Slug)
		return types.Subject{Kind: types.KindManufacturer, ID: m.ID}, nil
	case string(types.KindPerson):
		p, err := e.ensurePerson(dbc, ent.Slug, ent.Name)
		if err != nil {
			return types.Subject{}, err
		}
		e.rememberKeys(ent, p.Slug)
		return types.Subject{Kind: types.KindPerson, ID: p.ID}, nil
	case string(types.KindAward):
		a, err := e.ensureAward(dbc, ent.Slug, ent.Name)
		if err != nil {
			return types.Subject{}, err
		}
		e.rememberKeys(ent, a.Slug)
		return types.Subject{Kind: types.KindAward, ID: a.ID}, nil
	case kindTheme:
		th, err := e.ensureTheme(dbc, ent.Slug, ent.Name)
		if err != nil {
			return types.Subject{}, err
		}
		e.rememberKeys(ent, th.Slug)
		return types.Subject{}, nil
	case kindMachineGroup:
		g, err := e.ensureGroup(dbc, ent)
		if err != nil {
			return types.Subject{}, err
		}
		e.rememberKeys(ent, g.Slug)
		return types.Subject{}, nil
	case kindManufacturerEntity:
		if err := e.ensureManufacturerEntity(dbc, ent); err != nil {
			return types.Subject{}, err
		}
		return types.Subject{}, nil
	default:
		return types.Subject{}, fmt.Errorf("entity kind %q is not ensurable", ent.Kind)
	}
}

func (e *ensurer) ensureMachine(dbc dbctx.Context, slug, name string) (*types.Machine, error) {
	if slug != "" {
		if m, ok := e.machineBySlug[slug]; ok {
			return m, nil
		}
	}
	if name != "" {
		if m, ok := e.machineByName[strings.ToLower(name)]; ok {
			return m, nil
		}
	}

	base := name
	if base == "" {
		base = slug
	}
	newSlug, err := e.uniqueSlug(dbc, base,
		func(s string) bool { _, ok := e.machineBySlug[s]; return ok },
		e.machineRepo.SlugTaken)
	if err != nil {
		return nil, err
	}
	m := &types.Machine{Slug: newSlug, Name: name}
	if !e.dry {
		if err := e.machineRepo.Create(dbc, m); err != nil {
			return nil, fmt.Errorf("create machine %q: %w", newSlug, err)
		}
	}
	e.machineBySlug[m.Slug] = m
	if m.Name != "" {
		e.machineByName[strings.ToLower(m.Name)] = m
	}
	e.countCreate(string(types.KindMachine))
	return m, nil
}

func (e *ensurer) ensureManufacturer(dbc dbctx.Context, ent DumpEntity) (*types.Manufacturer, error) {
	m := e.findManufacturer(ent.Slug, ent.Name)
	if m == nil && ent.TradeName != "" {
		m = e.manufacturerByTrade[strings.ToLower(ent.TradeName)]
	}
	if m != nil {
		// Cross-reference ids attach once; a dump disagreeing with a
		// stored id is reported, never applied.
		if ent.OPDBManufacturerID != nil {
			switch {
			case m.OPDBManufacturerID == nil:
				if !e.dry {
					err := e.manufacturerRepo.UpdateColumns(dbc, m.ID, map[string]interface{}{
						"opdb_manufacturer_id": *ent.OPDBManufacturerID,
					})
					if err != nil {
						return nil, fmt.Errorf("set opdb id on manufacturer %q: %w", m.Slug, err)
					}
				}
				id := *ent.OPDBManufacturerID
				m.OPDBManufacturerID = &id
			case *m.OPDBManufacturerID != *ent.OPDBManufacturerID:
				e.log.Warn("manufacturer opdb id mismatch",
					"slug", m.Slug,
					"stored", *m.OPDBManufacturerID,
					"dump", *ent.OPDBManufacturerID)
			}
		}
		return m, nil
	}

	base := ent.Name
	if base == "" {
		base = ent.Slug
	}
	newSlug, err := e.uniqueSlug(dbc, base,
		func(s string) bool { _, ok := e.manufacturerBySlug[s]; return ok },
		e.manufacturerRepo.SlugTaken)
	if err != nil {
		return nil, err
	}
	m = &types.Manufacturer{
		Slug:               newSlug,
		Name:               ent.Name,
		TradeName:          ent.TradeName,
		OPDBManufacturerID: ent.OPDBManufacturerID,
	}
	if !e.dry {
		if err := e.manufacturerRepo.Create(dbc, m); err != nil {
			return nil, fmt.Errorf("create manufacturer %q: %w", newSlug, err)
		}
	}
	e.manufacturerBySlug[m.Slug] = m
	if m.Name != "" {
		e.manufacturerByName[strings.ToLower(m.Name)] = m
	}
	if m.TradeName != "" {
		e.manufacturerByTrade[strings.ToLower(m.TradeName)] = m
	}
	e.countCreate(string(types.KindManufacturer))
	return m, nil
}

func (e *ensurer) findManufacturer(slug, name string) *types.Manufacturer {
	if slug != "" {
		if m, ok := e.manufacturerBySlug[slug]; ok {
			return m
		}
	}
	if name != "" {
		lower := strings.ToLower(name)
		if m, ok := e.manufacturerByName[lower]; ok {
			return m
		}
		if m, ok := e.manufacturerByTrade[lower]; ok {
			return m
		}
	}
	return nil
}

func (e *ensurer) ensureManufacturerEntity(dbc dbctx.Context, ent DumpEntity) error {
	if ent.Manufacturer == "" {
		return fmt.Errorf("manufacturer entity %q: no parent brand", ent.Name)
	}
	parent := e.findManufacturer(ent.Manufacturer, ent.Manufacturer)
	if parent == nil {
		return fmt.Errorf("manufacturer entity %q: unknown brand %q", ent.Name, ent.Manufacturer)
	}

	if ent.IPDBManufacturerID != nil {
		if existing, ok := e.entityByIPDBID[*ent.IPDBManufacturerID]; ok {
			updates := map[string]interface{}{}
			if ent.Name != "" && ent.Name != existing.Name {
				updates["name"] = ent.Name
			}
			if ent.YearsActive != "" && ent.YearsActive != existing.YearsActive {
				updates["years_active"] = ent.YearsActive
			}
			if existing.ManufacturerID != parent.ID {
				e.log.Warn("manufacturer entity brand mismatch",
					"ipdb_manufacturer_id", *ent.IPDBManufacturerID,
					"stored_manufacturer_id", existing.ManufacturerID,
					"dump_brand", ent.Manufacturer)
			}
			if len(updates) > 0 && !e.dry {
				if err := e.entityRepo.UpdateColumns(dbc, existing.ID, updates); err != nil {
					return fmt.Errorf("update manufacturer entity %d: %w", existing.ID, err)
				}
			}
			if name, ok := updates["name"].(string); ok {
				existing.Name = name
			}
			if ya, ok := updates["years_active"].(string); ok {
				existing.YearsActive = ya
			}
			return nil
		}
	}

	row := &types.ManufacturerEntity{
		ManufacturerID:     parent.ID,
		Name:               ent.Name,
		IPDBManufacturerID: ent.IPDBManufacturerID,
		YearsActive:        ent.YearsActive,
	}
	if !e.dry {
		if err := e.entityRepo.Create(dbc, row); err != nil {
			return fmt.Errorf("create manufacturer entity %q: %w", ent.Name, err)
		}
	}
	if row.IPDBManufacturerID != nil {
		e.entityByIPDBID[*row.IPDBManufacturerID] = row
	}
	e.countCreate(kindManufacturerEntity)
	return nil
}

func (e *ensurer) ensureGroup(dbc dbctx.Context, ent DumpEntity) (*types.MachineGroup, error) {
	if ent.OPDBGroupID == "" {
		return nil, fmt.Errorf("machine group %q: no opdb group id", ent.Name)
	}
	if g, ok := e.groupByOPDBID[ent.OPDBGroupID]; ok {
		return g, nil
	}

	base := ent.Name
	if base == "" {
		base = ent.OPDBGroupID
	}
	newSlug, err := e.uniqueSlug(dbc, base,
		func(s string) bool {
			for _, g := range e.groupByOPDBID {
				if g.Slug == s {
					return true
				}
			}
			return false
		},
		e.groupRepo.SlugTaken)
	if err != nil {
		return nil, err
	}
	g := &types.MachineGroup{
		OPDBGroupID: ent.OPDBGroupID,
		Name:        ent.Name,
		Slug:        newSlug,
		ShortName:   ent.ShortName,
	}
	if !e.dry {
		if err := e.groupRepo.Create(dbc, g); err != nil {
			return nil, fmt.Errorf("create machine group %q: %w", ent.OPDBGroupID, err)
		}
	}
	e.groupByOPDBID[g.OPDBGroupID] = g
	e.countCreate(kindMachineGroup)
	return g, nil
}

func (e *ensurer) ensurePerson(dbc dbctx.Context, slug, name string) (*types.Person, error) {
	if slug != "" {
		if p, ok := e.personBySlug[slug]; ok {
			return p, nil
		}
	}
	if name != "" {
		if p, ok := e.personByName[strings.ToLower(name)]; ok {
			return p, nil
		}
	}

	base := name
	if base == "" {
		base = slug
	}
	newSlug, err := e.uniqueSlug(dbc, base,
		func(s string) bool { _, ok := e.personBySlug[s]; return ok },
		e.personRepo.SlugTaken)
	if err != nil {
		return nil, err
	}
	p := &types.Person{Slug: newSlug, Name: name}
	if !e.dry {
		if err := e.personRepo.Create(dbc, p); err != nil {
			return nil, fmt.Errorf("create person %q: %w", newSlug, err)
		}
	}
	e.personBySlug[p.Slug] = p
	if p.Name != "" {
		e.personByName[strings.ToLower(p.Name)] = p
	}
	e.countCreate(string(types.KindPerson))
	return p, nil
}

func (e *ensurer) ensureAward(dbc dbctx.Context, slug, name string) (*types.Award, error) {
	if slug != "" {
		if a, ok := e.awardBySlug[slug]; ok {
			return a, nil
		}
	}
	if name != "" {
		if a, ok := e.awardByName[strings.ToLower(name)]; ok {
			return a, nil
		}
	}

	base := name
	if base == "" {
		base = slug
	}
	newSlug, err := e.uniqueSlug(dbc, base,
		func(s string) bool { _, ok := e.awardBySlug[s]; return ok },
		e.awardRepo.SlugTaken)
	if err != nil {
		return nil, err
	}
	a := &types.Award{Slug: newSlug, Name: name}
	if !e.dry {
		if err := e.awardRepo.Create(dbc, a); err != nil {
			return nil, fmt.Errorf("create award %q: %w", newSlug, err)
		}
	}
	e.awardBySlug[a.Slug] = a
	if a.Name != "" {
		e.awardByName[strings.ToLower(a.Name)] = a
	}
	e.countCreate(string(types.KindAward))
	return a, nil
}

func (e *ensurer) ensureTheme(dbc dbctx.Context, slug, name string) (*types.Theme, error) {
	if slug == "" {
		slug = catalog.Slugify(name)
	}
	if slug == "" {
		return nil, fmt.Errorf("theme %q: cannot derive a slug", name)
	}
	if th, ok := e.themeBySlug[slug]; ok {
		return th, nil
	}
	if name == "" {
		name = slug
	}
	th := &types.Theme{Slug: slug, Name: name}
	if !e.dry {
		stored, err := e.themeRepo.Ensure(dbc, slug, name)
		if err != nil {
			return nil, fmt.Errorf("ensure theme %q: %w", slug, err)
		}
		th = stored
	}
	e.themeBySlug[slug] = th
	e.countCreate(kindTheme)
	return th, nil
}

// ResolveSubject turns a claim's entity reference into a subject,
// creating the row when nothing matches. Keys resolve through the
// dump's own entity declarations first, then stored slugs, then
// stored names.
func (e *ensurer) ResolveSubject(dbc dbctx.Context, kind types.EntityKind, key string) (types.Subject, error) {
	slug := key
	if s, ok := e.dumpKey(string(kind), key); ok {
		slug = s
	}

	switch kind {
	case types.KindMachine:
		if m, ok := e.machineBySlug[slug]; ok {
			return types.Subject{Kind: kind, ID: m.ID}, nil
		}
		m, err := e.ensureMachine(dbc, "", key)
		if err != nil {
			return types.Subject{}, err
		}
		return types.Subject{Kind: kind, ID: m.ID}, nil
	case types.KindManufacturer:
		if m, ok := e.manufacturerBySlug[slug]; ok {
			return types.Subject{Kind: kind, ID: m.ID}, nil
		}
		m, err := e.ensureManufacturer(dbc, DumpEntity{Kind: string(kind), Name: key})
		if err != nil {
			return types.Subject{}, err
		}
		return types.Subject{Kind: kind, ID: m.ID}, nil
	case types.KindPerson:
		if p, ok := e.personBySlug[slug]; ok {
			return types.Subject{Kind: kind, ID: p.ID}, nil
		}
		p, err := e.ensurePerson(dbc, "", key)
		if err != nil {
			return types.Subject{}, err
		}
		return types.Subject{Kind: kind, ID: p.ID}, nil
	case types.KindAward:
		if a, ok := e.awardBySlug[slug]; ok {
			return types.Subject{Kind: kind, ID: a.ID}, nil
		}
		a, err := e.ensureAward(dbc, "", key)
		if err != nil {
			return types.Subject{}, err
		}
		return types.Subject{Kind: kind, ID: a.ID}, nil
	default:
		return types.Subject{}, fmt.Errorf("kind %q cannot be a claim subject", kind)
	}
}

// ResolvePersonSlug maps a relationship identity's person reference to
// a stored person slug, ensuring the person when unknown. References
// resolve through dump declarations, then stored slugs, then stored
// names, matching how credit strings name people.
func (e *ensurer) ResolvePersonSlug(dbc dbctx.Context, ref string) (string, error) {
	if slug, ok := e.dumpKey(string(types.KindPerson), ref); ok {
		return slug, nil
	}
	if p, ok := e.personBySlug[ref]; ok {
		return p.Slug, nil
	}
	if p, ok := e.personByName[strings.ToLower(ref)]; ok {
		return p.Slug, nil
	}
	p, err := e.ensurePerson(dbc, "", ref)
	if err != nil {
		return "", err
	}
	return p.Slug, nil
}

// ResolveThemeSlug maps a relationship identity's theme reference to a
// stored theme slug, ensuring the theme when unknown.
func (e *ensurer) ResolveThemeSlug(dbc dbctx.Context, ref string) (string, error) {
	if slug, ok := e.dumpKey(kindTheme, ref); ok {
		return slug, nil
	}
	if _, ok := e.themeBySlug[ref]; ok {
		return ref, nil
	}
	th, err := e.ensureTheme(dbc, "", ref)
	if err != nil {
		return "", err
	}
	return th.Slug, nil
}
