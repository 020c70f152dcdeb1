package services

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/pinlore/pinlore-backend/internal/data/repos"
	types "github.com/pinlore/pinlore-backend/internal/domain"
	"github.com/pinlore/pinlore-backend/internal/platform/apierr"
	"github.com/pinlore/pinlore-backend/internal/platform/dbctx"
	"github.com/pinlore/pinlore-backend/internal/platform/logger"
)

// CatalogService is the read surface over materialized records. Everything
// it returns was produced by resolution; it never touches the claim ledger.
type CatalogService interface {
	ListMachines(dbc dbctx.Context, f repos.MachineFilter) ([]*types.Machine, int64, error)
	GetMachine(dbc dbctx.Context, slug string) (*types.Machine, error)

	ListManufacturers(dbc dbctx.Context) ([]*types.Manufacturer, error)
	GetManufacturer(dbc dbctx.Context, slug string) (*ManufacturerDetail, error)

	ListPeople(dbc dbctx.Context, limit, offset int) ([]*types.Person, int64, error)
	GetPerson(dbc dbctx.Context, slug string) (*PersonDetail, error)

	ListAwards(dbc dbctx.Context) ([]*types.Award, error)
	GetAward(dbc dbctx.Context, slug string) (*types.Award, error)

	ListSources(dbc dbctx.Context) ([]*types.Source, error)

	ListMachineTypes(dbc dbctx.Context) ([]*types.MachineTypeProfile, error)
	GetMachineType(dbc dbctx.Context, slug string) (*types.MachineTypeProfile, error)
	ListDisplayTypes(dbc dbctx.Context) ([]*types.DisplayTypeProfile, error)
	GetDisplayType(dbc dbctx.Context, slug string) (*types.DisplayTypeProfile, error)

	// SubjectBySlug resolves a (kind, slug) pair to a claim subject, for
	// the activity and edit surfaces.
	SubjectBySlug(dbc dbctx.Context, kind types.EntityKind, slug string) (types.Subject, error)
	// Detail returns the kind-appropriate detail payload for a subject
	// already known to exist.
	Detail(dbc dbctx.Context, kind types.EntityKind, slug string) (interface{}, error)
}

type ManufacturerDetail struct {
	*types.Manufacturer
	MachineCount int64                       `json:"machine_count"`
	Entities     []*types.ManufacturerEntity `json:"entities"`
}

type PersonDetail struct {
	*types.Person
	Credits []*types.DesignCredit   `json:"credits"`
	Awards  []*types.AwardRecipient `json:"awards"`
}

type catalogService struct {
	db  *gorm.DB
	log *logger.Logger

	machineRepo            repos.MachineRepo
	manufacturerRepo       repos.ManufacturerRepo
	manufacturerEntityRepo repos.ManufacturerEntityRepo
	personRepo             repos.PersonRepo
	awardRepo              repos.AwardRepo
	sourceRepo             repos.SourceRepo
	typeProfileRepo        repos.TypeProfileRepo
	designCreditRepo       repos.DesignCreditRepo
	awardRecipientRepo     repos.AwardRecipientRepo
}

func NewCatalogService(
	db *gorm.DB,
	log *logger.Logger,
	machineRepo repos.MachineRepo,
	manufacturerRepo repos.ManufacturerRepo,
	manufacturerEntityRepo repos.ManufacturerEntityRepo,
	personRepo repos.PersonRepo,
	awardRepo repos.AwardRepo,
	sourceRepo repos.SourceRepo,
	typeProfileRepo repos.TypeProfileRepo,
	designCreditRepo repos.DesignCreditRepo,
	awardRecipientRepo repos.AwardRecipientRepo,
) CatalogService {
	serviceLog := log.With("service", "CatalogService")
	return &catalogService{
		db:                     db,
		log:                    serviceLog,
		machineRepo:            machineRepo,
		manufacturerRepo:       manufacturerRepo,
		manufacturerEntityRepo: manufacturerEntityRepo,
		personRepo:             personRepo,
		awardRepo:              awardRepo,
		sourceRepo:             sourceRepo,
		typeProfileRepo:        typeProfileRepo,
		designCreditRepo:       designCreditRepo,
		awardRecipientRepo:     awardRecipientRepo,
	}
}

func (s *catalogService) ListMachines(dbc dbctx.Context, f repos.MachineFilter) ([]*types.Machine, int64, error) {
	return s.machineRepo.List(dbc, f)
}

func (s *catalogService) GetMachine(dbc dbctx.Context, slug string) (*types.Machine, error) {
	m, err := s.machineRepo.GetDetailBySlug(dbc, slug)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, apierr.NotFound("machine_not_found", fmt.Errorf("no machine %q", slug))
	}
	return m, nil
}

func (s *catalogService) ListManufacturers(dbc dbctx.Context) ([]*types.Manufacturer, error) {
	return s.manufacturerRepo.All(dbc)
}

func (s *catalogService) GetManufacturer(dbc dbctx.Context, slug string) (*ManufacturerDetail, error) {
	m, err := s.manufacturerRepo.GetBySlug(dbc, slug)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, apierr.NotFound("manufacturer_not_found", fmt.Errorf("no manufacturer %q", slug))
	}
	count, err := s.machineRepo.CountByManufacturer(dbc, m.ID)
	if err != nil {
		return nil, fmt.Errorf("count machines: %w", err)
	}
	entities, err := s.manufacturerEntityRepo.ListByManufacturerID(dbc, m.ID)
	if err != nil {
		return nil, fmt.Errorf("list entities: %w", err)
	}
	return &ManufacturerDetail{Manufacturer: m, MachineCount: count, Entities: entities}, nil
}

func (s *catalogService) ListPeople(dbc dbctx.Context, limit, offset int) ([]*types.Person, int64, error) {
	return s.personRepo.List(dbc, limit, offset)
}

func (s *catalogService) GetPerson(dbc dbctx.Context, slug string) (*PersonDetail, error) {
	p, err := s.personRepo.GetBySlug(dbc, slug)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apierr.NotFound("person_not_found", fmt.Errorf("no person %q", slug))
	}
	credits, err := s.designCreditRepo.ListByPersonID(dbc, p.ID)
	if err != nil {
		return nil, fmt.Errorf("list credits: %w", err)
	}
	awards, err := s.awardRecipientRepo.ListByPersonID(dbc, p.ID)
	if err != nil {
		return nil, fmt.Errorf("list awards: %w", err)
	}
	return &PersonDetail{Person: p, Credits: credits, Awards: awards}, nil
}

func (s *catalogService) ListAwards(dbc dbctx.Context) ([]*types.Award, error) {
	return s.awardRepo.All(dbc)
}

func (s *catalogService) GetAward(dbc dbctx.Context, slug string) (*types.Award, error) {
	a, err := s.awardRepo.GetDetailBySlug(dbc, slug)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, apierr.NotFound("award_not_found", fmt.Errorf("no award %q", slug))
	}
	return a, nil
}

func (s *catalogService) ListSources(dbc dbctx.Context) ([]*types.Source, error) {
	return s.sourceRepo.All(dbc)
}

func (s *catalogService) ListMachineTypes(dbc dbctx.Context) ([]*types.MachineTypeProfile, error) {
	return s.typeProfileRepo.ListMachineTypeProfiles(dbc)
}

func (s *catalogService) GetMachineType(dbc dbctx.Context, slug string) (*types.MachineTypeProfile, error) {
	p, err := s.typeProfileRepo.GetMachineTypeProfileBySlug(dbc, slug)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apierr.NotFound("machine_type_not_found", fmt.Errorf("no machine type %q", slug))
	}
	return p, nil
}

func (s *catalogService) ListDisplayTypes(dbc dbctx.Context) ([]*types.DisplayTypeProfile, error) {
	return s.typeProfileRepo.ListDisplayTypeProfiles(dbc)
}

func (s *catalogService) GetDisplayType(dbc dbctx.Context, slug string) (*types.DisplayTypeProfile, error) {
	p, err := s.typeProfileRepo.GetDisplayTypeProfileBySlug(dbc, slug)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apierr.NotFound("display_type_not_found", fmt.Errorf("no display type %q", slug))
	}
	return p, nil
}

func (s *catalogService) SubjectBySlug(dbc dbctx.Context, kind types.EntityKind, slug string) (types.Subject, error) {
	var id uint
	switch kind {
	case types.KindMachine:
		m, err := s.machineRepo.GetBySlug(dbc, slug)
		if err != nil {
			return types.Subject{}, err
		}
		if m != nil {
			id = m.ID
		}
	case types.KindManufacturer:
		m, err := s.manufacturerRepo.GetBySlug(dbc, slug)
		if err != nil {
			return types.Subject{}, err
		}
		if m != nil {
			id = m.ID
		}
	case types.KindPerson:
		p, err := s.personRepo.GetBySlug(dbc, slug)
		if err != nil {
			return types.Subject{}, err
		}
		if p != nil {
			id = p.ID
		}
	case types.KindAward:
		a, err := s.awardRepo.GetBySlug(dbc, slug)
		if err != nil {
			return types.Subject{}, err
		}
		if a != nil {
			id = a.ID
		}
	default:
		return types.Subject{}, apierr.BadRequest("unknown_kind", fmt.Errorf("unknown entity kind %q", kind))
	}
	if id == 0 {
		return types.Subject{}, apierr.NotFound("entity_not_found", fmt.Errorf("no %s %q", kind, slug))
	}
	return types.Subject{Kind: kind, ID: id}, nil
}

func (s *catalogService) Detail(dbc dbctx.Context, kind types.EntityKind, slug string) (interface{}, error) {
	switch kind {
	case types.KindMachine:
		return s.GetMachine(dbc, slug)
	case types.KindManufacturer:
		return s.GetManufacturer(dbc, slug)
	case types.KindPerson:
		return s.GetPerson(dbc, slug)
	case types.KindAward:
		return s.GetAward(dbc, slug)
	}
	return nil, apierr.BadRequest("unknown_kind", fmt.Errorf("unknown entity kind %q", kind))
}
