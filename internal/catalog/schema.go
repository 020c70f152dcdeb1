// Package catalog holds the domain knowledge the generic provenance and
// resolution machinery is parameterized with: which relationship claim
// types exist and how their identities are laid out, and which scalar
// fields each entity kind resolves into which columns. Keeping these
// tables here keeps the ledger and the resolver free of per-kind code.
package catalog

import (
	"fmt"
	"sort"

	"github.com/pinlore/pinlore-backend/internal/ledger"
)

// RelationshipSchemas maps each relationship field name to its identity
// layout. Map keys are the names used inside claim values, map values
// are the segment names used when the identity is rendered into a
// claim key.
var RelationshipSchemas = map[string]map[string]string{
	"credit":    {"person_slug": "person", "role": "role"},
	"recipient": {"person_slug": "person", "year": "year"},
	"theme":     {"theme_slug": "theme"},
}

// IsRelationshipField reports whether claims under fieldName carry
// relationship instances rather than a scalar value.
func IsRelationshipField(fieldName string) bool {
	_, ok := RelationshipSchemas[fieldName]
	return ok
}

// BuildRelationshipClaim renders the claim key and claim value for one
// relationship assertion. identity must carry exactly the keys the
// field's schema names. The value is the identity plus an "exists"
// flag, so a source can retract a relationship it previously asserted
// by re-asserting the same identity with exists=false.
func BuildRelationshipClaim(fieldName string, identity map[string]ledger.Value, exists bool) (string, ledger.Value, error) {
	schema, ok := RelationshipSchemas[fieldName]
	if !ok {
		return "", ledger.Null(), fmt.Errorf("unknown relationship field %q", fieldName)
	}

	var missing []string
	for k := range schema {
		if _, ok := identity[k]; !ok {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return "", ledger.Null(), fmt.Errorf("relationship %q missing identity keys %v", fieldName, missing)
	}
	var extra []string
	for k := range identity {
		if _, ok := schema[k]; !ok {
			extra = append(extra, k)
		}
	}
	if len(extra) > 0 {
		sort.Strings(extra)
		return "", ledger.Null(), fmt.Errorf("relationship %q has unknown identity keys %v", fieldName, extra)
	}

	keyIdentity := make(map[string]ledger.Value, len(schema))
	for valueKey, segment := range schema {
		keyIdentity[segment] = identity[valueKey]
	}
	claimKey, err := ledger.MakeClaimKey(fieldName, keyIdentity)
	if err != nil {
		return "", ledger.Null(), err
	}

	fields := make(map[string]ledger.Value, len(identity)+1)
	for k, v := range identity {
		fields[k] = v
	}
	fields["exists"] = ledger.Bool(exists)
	return claimKey, ledger.Object(fields), nil
}
