package domain

import (
	"github.com/pinlore/pinlore-backend/internal/domain/catalog"
	"github.com/pinlore/pinlore-backend/internal/domain/provenance"
	"github.com/pinlore/pinlore-backend/internal/domain/user"
)

// Re-exports so callers can import one package as `types` instead of
// juggling the per-area model packages.

type User = user.User

const DefaultUserPriority = user.DefaultPriority

type Source = provenance.Source
type Claim = provenance.Claim
type IngestRun = provenance.IngestRun
type Subject = provenance.Subject
type EntityKind = provenance.EntityKind

const (
	KindMachine      = provenance.KindMachine
	KindManufacturer = provenance.KindManufacturer
	KindPerson       = provenance.KindPerson
	KindAward        = provenance.KindAward
)

var (
	AllKinds  = provenance.AllKinds
	ParseKind = provenance.ParseKind
)

type Machine = catalog.Machine
type Manufacturer = catalog.Manufacturer
type ManufacturerEntity = catalog.ManufacturerEntity
type MachineGroup = catalog.MachineGroup
type Person = catalog.Person
type Award = catalog.Award
type Theme = catalog.Theme
type DesignCredit = catalog.DesignCredit
type MachineTheme = catalog.MachineTheme
type AwardRecipient = catalog.AwardRecipient
type MachineTypeProfile = catalog.MachineTypeProfile
type DisplayTypeProfile = catalog.DisplayTypeProfile

const (
	SourceTypeDatabase  = provenance.SourceTypeDatabase
	SourceTypeBook      = provenance.SourceTypeBook
	SourceTypeEditorial = provenance.SourceTypeEditorial
	SourceTypeOther     = provenance.SourceTypeOther
)

const (
	RunKindSources = provenance.RunKindSources
	RunKindClaims  = provenance.RunKindClaims
	RunKindResolve = provenance.RunKindResolve
)
