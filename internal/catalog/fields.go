package catalog

import (
	types "github.com/pinlore/pinlore-backend/internal/domain"
)

// FieldType selects the coercion applied to a winning claim value
// before it is written to the field's column.
type FieldType int

const (
	FieldString FieldType = iota
	FieldInt
	FieldDecimal
	FieldJSON
)

// Field is one claim-resolvable scalar column on an entity kind.
type Field struct {
	// Name is the claim field name, which doubles as the claim key
	// for scalar claims.
	Name string
	// Column is the database column the winning value lands in.
	Column string
	Type   FieldType
	// Unique marks external identifiers that must stay globally
	// unique across resolved rows of this kind.
	Unique bool
}

// Reference is a claim-resolved link column. The claim value names the
// target entity by external id or name rather than carrying a row id,
// so resolution has to look the target up.
type Reference struct {
	Name   string
	Column string
}

// Descriptor drives generic resolution for one entity kind. The
// resolver itself is kind-agnostic; everything it needs to know about
// machines versus people lives in these tables.
type Descriptor struct {
	Kind       types.EntityKind
	Fields     []Field
	References []Reference
	// ExtraColumn, when set, is a JSON column that collects winning
	// scalar claims whose field has no dedicated column. Kinds
	// without one ignore such claims.
	ExtraColumn string
	// Relationships lists the relationship namespaces materialized
	// for this kind.
	Relationships []string
}

// FieldByName returns the scalar field declared under the claim field
// name, if any.
func (d *Descriptor) FieldByName(name string) (Field, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// ReferenceByName returns the reference declared under the claim field
// name, if any.
func (d *Descriptor) ReferenceByName(name string) (Reference, bool) {
	for _, r := range d.References {
		if r.Name == name {
			return r, true
		}
	}
	return Reference{}, false
}

// EditableFields lists the claim field names a human editor may assert
// through the edit API, in declaration order. Only scalar fields are
// editable; references and relationships go through ingestion.
func (d *Descriptor) EditableFields() []string {
	out := make([]string, len(d.Fields))
	for i, f := range d.Fields {
		out[i] = f.Name
	}
	return out
}

// IsEditable reports whether a human edit may assert fieldName on this
// kind.
func (d *Descriptor) IsEditable(fieldName string) bool {
	_, ok := d.FieldByName(fieldName)
	return ok
}

// HasRelationship reports whether this kind materializes the given
// relationship namespace.
func (d *Descriptor) HasRelationship(ns string) bool {
	for _, r := range d.Relationships {
		if r == ns {
			return true
		}
	}
	return false
}

// Machine resolves the most claim surface of any kind: scalar columns,
// two looked-up references, a catch-all extra bag, and two
// materialized relationships.
var Machine = &Descriptor{
	Kind: types.KindMachine,
	Fields: []Field{
		{Name: "name", Column: "name", Type: FieldString},
		{Name: "year", Column: "year", Type: FieldInt},
		{Name: "month", Column: "month", Type: FieldInt},
		{Name: "machine_type", Column: "machine_type", Type: FieldString},
		{Name: "display_type", Column: "display_type", Type: FieldString},
		{Name: "player_count", Column: "player_count", Type: FieldInt},
		{Name: "production_quantity", Column: "production_quantity", Type: FieldString},
		{Name: "mpu", Column: "mpu", Type: FieldString},
		{Name: "flipper_count", Column: "flipper_count", Type: FieldInt},
		{Name: "ipdb_rating", Column: "ipdb_rating", Type: FieldDecimal},
		{Name: "pinside_rating", Column: "pinside_rating", Type: FieldDecimal},
		{Name: "educational_text", Column: "educational_text", Type: FieldString},
		{Name: "sources_notes", Column: "sources_notes", Type: FieldString},
		{Name: "ipdb_id", Column: "ipdb_id", Type: FieldInt, Unique: true},
		{Name: "opdb_id", Column: "opdb_id", Type: FieldString, Unique: true},
		{Name: "pinside_id", Column: "pinside_id", Type: FieldInt, Unique: true},
	},
	References: []Reference{
		{Name: "manufacturer", Column: "manufacturer_id"},
		{Name: "group", Column: "machine_group_id"},
	},
	ExtraColumn:   "extra",
	Relationships: []string{"credit", "theme"},
}

var Manufacturer = &Descriptor{
	Kind: types.KindManufacturer,
	Fields: []Field{
		{Name: "name", Column: "name", Type: FieldString},
		{Name: "trade_name", Column: "trade_name", Type: FieldString},
		{Name: "description", Column: "description", Type: FieldString},
		{Name: "founded_year", Column: "founded_year", Type: FieldInt},
		{Name: "dissolved_year", Column: "dissolved_year", Type: FieldInt},
		{Name: "country", Column: "country", Type: FieldString},
		{Name: "headquarters", Column: "headquarters", Type: FieldString},
		{Name: "logo_url", Column: "logo_url", Type: FieldString},
		{Name: "website", Column: "website", Type: FieldString},
	},
}

var Person = &Descriptor{
	Kind: types.KindPerson,
	Fields: []Field{
		{Name: "name", Column: "name", Type: FieldString},
		{Name: "bio", Column: "bio", Type: FieldString},
		{Name: "birth_year", Column: "birth_year", Type: FieldInt},
		{Name: "birth_month", Column: "birth_month", Type: FieldInt},
		{Name: "birth_day", Column: "birth_day", Type: FieldInt},
		{Name: "death_year", Column: "death_year", Type: FieldInt},
		{Name: "death_month", Column: "death_month", Type: FieldInt},
		{Name: "death_day", Column: "death_day", Type: FieldInt},
		{Name: "birth_place", Column: "birth_place", Type: FieldString},
		{Name: "nationality", Column: "nationality", Type: FieldString},
		{Name: "photo_url", Column: "photo_url", Type: FieldString},
	},
}

var Award = &Descriptor{
	Kind: types.KindAward,
	Fields: []Field{
		{Name: "name", Column: "name", Type: FieldString},
		{Name: "description", Column: "description", Type: FieldString},
		{Name: "image_urls", Column: "image_urls", Type: FieldJSON},
	},
	Relationships: []string{"recipient"},
}

var byKind = map[types.EntityKind]*Descriptor{
	types.KindMachine:      Machine,
	types.KindManufacturer: Manufacturer,
	types.KindPerson:       Person,
	types.KindAward:        Award,
}

// DescriptorFor returns the descriptor for kind.
func DescriptorFor(kind types.EntityKind) (*Descriptor, bool) {
	d, ok := byKind[kind]
	return d, ok
}

// Descriptors returns every descriptor in a fixed order.
func Descriptors() []*Descriptor {
	return []*Descriptor{Machine, Manufacturer, Person, Award}
}
