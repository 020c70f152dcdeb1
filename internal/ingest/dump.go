package ingest

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pinlore/pinlore-backend/internal/ledger"
)

// Dump is the claim dump format adapters produce: one source, the
// entities it speaks about, and its claim candidates. Adapters parse
// third-party formats (IPDB, OPDB, wiki scrapes) outside this module;
// the pipeline only sees this shape.
type Dump struct {
	// Source is the slug of a registered Source. Unknown slugs abort
	// the run: priorities live in the source config, not in dumps.
	Source string `json:"source"`

	// SweepFields lists claim fields this dump is authoritative for:
	// the source's active claims on these fields for the dump's
	// subjects that are absent from the candidates get retracted.
	// Partial dumps must leave this empty.
	SweepFields []string `json:"sweep_fields,omitempty"`

	Entities []DumpEntity `json:"entities,omitempty"`
	Claims   []DumpClaim  `json:"claims,omitempty"`
}

// DumpEntity declares a row the dump needs to exist. Claim subjects
// (machine, manufacturer, person, award) are matched by slug when
// given, else by case-insensitive name, and created with a generated
// collision-safe slug. Reference kinds (theme, machine_group,
// manufacturer_entity) are matched by their natural keys.
type DumpEntity struct {
	Kind string `json:"kind"`
	Slug string `json:"slug,omitempty"`
	Name string `json:"name"`

	// Manufacturer brand extras.
	TradeName          string `json:"trade_name,omitempty"`
	OPDBManufacturerID *int64 `json:"opdb_manufacturer_id,omitempty"`

	// Corporate entity extras (kind manufacturer_entity). Manufacturer
	// names the parent brand by slug or name.
	Manufacturer       string `json:"manufacturer,omitempty"`
	IPDBManufacturerID *int64 `json:"ipdb_manufacturer_id,omitempty"`
	YearsActive        string `json:"years_active,omitempty"`

	// Group extras (kind machine_group).
	OPDBGroupID string `json:"opdb_group_id,omitempty"`
	ShortName   string `json:"short_name,omitempty"`
}

// DumpClaim is one candidate fact. Entity references the subject by the
// same key its DumpEntity used (slug, or name when the entity was
// declared without one); subjects already in the database may be
// referenced directly. Scalar claims carry Value; relationship claims
// carry Identity plus Exists (defaulting to true).
type DumpClaim struct {
	Kind     string                     `json:"kind"`
	Entity   string                     `json:"entity"`
	Field    string                     `json:"field"`
	Value    json.RawMessage            `json:"value,omitempty"`
	Identity map[string]json.RawMessage `json:"identity,omitempty"`
	Exists   *bool                      `json:"exists,omitempty"`
	Citation string                     `json:"citation,omitempty"`
}

// ReadDump loads and structurally validates a dump file. Semantic
// validation (enum codes, entity references) happens in the pipeline,
// where the database is in reach.
func ReadDump(path string) (*Dump, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dump: %w", err)
	}
	var d Dump
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("parse dump: %w", err)
	}
	if d.Source == "" {
		return nil, fmt.Errorf("dump has no source slug")
	}
	for i, e := range d.Entities {
		if e.Kind == "" {
			return nil, fmt.Errorf("entity %d: missing kind", i)
		}
		if e.Slug == "" && e.Name == "" && e.OPDBGroupID == "" && e.IPDBManufacturerID == nil {
			return nil, fmt.Errorf("entity %d (%s): no identifying key", i, e.Kind)
		}
	}
	for i, c := range d.Claims {
		if c.Kind == "" || c.Entity == "" || c.Field == "" {
			return nil, fmt.Errorf("claim %d: kind, entity and field are required", i)
		}
		if len(c.Identity) == 0 && len(c.Value) == 0 {
			return nil, fmt.Errorf("claim %d (%s %s): neither value nor identity", i, c.Entity, c.Field)
		}
	}
	return &d, nil
}

// identityValues decodes a claim's identity map into ledger values.
func (c DumpClaim) identityValues() (map[string]ledger.Value, error) {
	out := make(map[string]ledger.Value, len(c.Identity))
	for k, raw := range c.Identity {
		v, err := ledger.FromJSON(raw)
		if err != nil {
			return nil, fmt.Errorf("identity %q: %w", k, err)
		}
		out[k] = v
	}
	return out, nil
}
