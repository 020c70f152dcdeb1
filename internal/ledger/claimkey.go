package ledger

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

const (
	segmentSep = "|"
	pairSep    = ":"
)

// ErrReservedCharacter is returned when a field name or identity part
// contains one of the characters claim keys are assembled from.
var ErrReservedCharacter = errors.New("claim key part contains a reserved character")

// MakeClaimKey builds the identity key a claim competes under. Scalar
// claims pass a nil identity and get the bare field name back.
// Relationship claims get "field|k1:v1|k2:v2" with identity keys sorted,
// so the same identity always produces the same key.
func MakeClaimKey(fieldName string, identity map[string]Value) (string, error) {
	if fieldName == "" {
		return "", errors.New("field name is required")
	}
	if err := checkReserved(fieldName); err != nil {
		return "", err
	}
	if len(identity) == 0 {
		return fieldName, nil
	}

	keys := make([]string, 0, len(identity))
	for k := range identity {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(identity)+1)
	parts = append(parts, fieldName)
	for _, k := range keys {
		if err := checkReserved(k); err != nil {
			return "", err
		}
		rendered, err := renderIdentity(identity[k])
		if err != nil {
			return "", fmt.Errorf("identity %q: %w", k, err)
		}
		if err := checkReserved(rendered); err != nil {
			return "", err
		}
		parts = append(parts, k+pairSep+rendered)
	}
	return strings.Join(parts, segmentSep), nil
}

func renderIdentity(v Value) (string, error) {
	switch v.kind {
	case KindNull:
		return "null", nil
	case KindString:
		return v.str, nil
	case KindNumber:
		return formatNumber(v.num), nil
	case KindBool:
		if v.flag {
			return "true", nil
		}
		return "false", nil
	}
	return "", errors.New("identity values must be scalar")
}

func checkReserved(part string) error {
	if strings.ContainsAny(part, segmentSep+pairSep) {
		return fmt.Errorf("%w: %q", ErrReservedCharacter, part)
	}
	return nil
}
