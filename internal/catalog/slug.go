package catalog

import (
	"fmt"
	"strings"
	"unicode"
)

// Slugify lowercases s and collapses every run of characters that are
// neither letters nor digits into a single hyphen. Leading and trailing
// hyphens are dropped.
func Slugify(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	pending := false
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pending && b.Len() > 0 {
				b.WriteByte('-')
			}
			pending = false
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		pending = true
	}
	return b.String()
}

// UniqueSlug slugifies base and probes taken until a free slug is
// found, suffixing -2, -3, ... on collisions.
func UniqueSlug(base string, taken func(slug string) (bool, error)) (string, error) {
	slug := Slugify(base)
	if slug == "" {
		return "", fmt.Errorf("cannot derive a slug from %q", base)
	}
	candidate := slug
	for n := 2; ; n++ {
		inUse, err := taken(candidate)
		if err != nil {
			return "", err
		}
		if !inUse {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", slug, n)
	}
}
