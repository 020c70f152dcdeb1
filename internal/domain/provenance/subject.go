package provenance

import "fmt"

// EntityKind tags which catalog table a claim subject lives in. Claims
// store the kind alongside a numeric row id instead of a polymorphic
// foreign key, so the ledger stays entity-agnostic without reflection.
type EntityKind string

const (
	KindMachine      EntityKind = "machine"
	KindManufacturer EntityKind = "manufacturer"
	KindPerson       EntityKind = "person"
	KindAward        EntityKind = "award"
)

var allKinds = []EntityKind{KindMachine, KindManufacturer, KindPerson, KindAward}

func AllKinds() []EntityKind {
	out := make([]EntityKind, len(allKinds))
	copy(out, allKinds)
	return out
}

func ParseKind(s string) (EntityKind, error) {
	for _, k := range allKinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown entity kind %q", s)
}

// Subject identifies one catalog row across entity tables.
type Subject struct {
	Kind EntityKind `json:"kind"`
	ID   uint       `json:"id"`
}

func (s Subject) String() string {
	return fmt.Sprintf("%s:%d", s.Kind, s.ID)
}
