package ingest

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pinlore/pinlore-backend/internal/domain/catalog"
)

// Classification codes arrive in each source's own vocabulary. The maps
// below translate them to the canonical slugs; canonical slugs always
// pass through, for sources that emit them directly. A non-empty code
// with no mapping is a configuration error that aborts the run before
// any claim is written: silently dropping it would misclassify every
// affected machine.

var canonicalMachineTypes = map[string]bool{
	catalog.MachineTypeEM: true,
	catalog.MachineTypeSS: true,
	catalog.MachineTypePM: true,
}

var canonicalDisplayTypes = map[string]bool{
	catalog.DisplayScoreReels:      true,
	catalog.DisplayBackglassLights: true,
	catalog.DisplayAlphanumeric:    true,
	catalog.DisplayDotMatrix:       true,
	catalog.DisplayCGA:             true,
	catalog.DisplayLCD:             true,
}

// machineTypeCodes: source slug -> source code -> canonical slug.
// IPDB uses short type names; pure mechanicals carry the full type
// string instead. OPDB uses lowercase two-letter codes.
var machineTypeCodes = map[string]map[string]string{
	"ipdb": {
		"EM":              catalog.MachineTypeEM,
		"SS":              catalog.MachineTypeSS,
		"Pure Mechanical": catalog.MachineTypePM,
	},
	"opdb": {
		"em": catalog.MachineTypeEM,
		"ss": catalog.MachineTypeSS,
		"me": catalog.MachineTypePM,
	},
}

var displayTypeCodes = map[string]map[string]string{
	"opdb": {
		"reels":        catalog.DisplayScoreReels,
		"alphanumeric": catalog.DisplayAlphanumeric,
		"dmd":          catalog.DisplayDotMatrix,
		"lcd":          catalog.DisplayLCD,
		"lights":       catalog.DisplayBackglassLights,
		"cga":          catalog.DisplayCGA,
	},
}

// MapEnumCode translates one classification code for a source. Empty
// codes map to empty (the claim is skipped upstream); unknown codes
// return an error naming the gap.
func MapEnumCode(sourceSlug, field, code string) (string, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return "", nil
	}

	var canonical map[string]bool
	var perSource map[string]map[string]string
	switch field {
	case "machine_type":
		canonical, perSource = canonicalMachineTypes, machineTypeCodes
	case "display_type":
		canonical, perSource = canonicalDisplayTypes, displayTypeCodes
	default:
		return "", fmt.Errorf("field %q has no enum mapping", field)
	}

	if canonical[code] {
		return code, nil
	}
	if m := perSource[sourceSlug]; m != nil {
		if slug, ok := m[code]; ok {
			return slug, nil
		}
	}
	return "", fmt.Errorf("no %s mapping for source %q code %q", field, sourceSlug, code)
}

// IsEnumField reports whether claims on this field go through the code
// mapping before assertion.
func IsEnumField(field string) bool {
	return field == "machine_type" || field == "display_type"
}

// GroupKeyFromOPDBID extracts the group prefix from an OPDB machine or
// alias id. OPDB ids follow G{group}-M{machine}[-A{alias}]; a bare
// group id passes through unchanged.
func GroupKeyFromOPDBID(id string) string {
	id = strings.TrimSpace(id)
	if i := strings.IndexByte(id, '-'); i >= 0 {
		return id[:i]
	}
	return id
}

// MappingErrors collects every unmapped code found during validation so
// the operator sees the full gap list in one failed run.
type MappingErrors struct {
	errs []string
}

func (m *MappingErrors) Add(err error) {
	msg := err.Error()
	for _, e := range m.errs {
		if e == msg {
			return
		}
	}
	m.errs = append(m.errs, msg)
}

func (m *MappingErrors) Empty() bool { return len(m.errs) == 0 }

func (m *MappingErrors) Error() string {
	sorted := make([]string, len(m.errs))
	copy(sorted, m.errs)
	sort.Strings(sorted)
	return fmt.Sprintf("%d unmapped enum codes: %s", len(sorted), strings.Join(sorted, "; "))
}
