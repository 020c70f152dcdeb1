package resolve

import (
	"encoding/json"
	"strings"

	"gorm.io/datatypes"

	"github.com/pinlore/pinlore-backend/internal/catalog"
	types "github.com/pinlore/pinlore-backend/internal/domain"
	"github.com/pinlore/pinlore-backend/internal/ledger"
)

// zeroValue is what a column resets to when no active claim covers it.
// Unique external ids always reset to NULL; an empty string would
// collide with every other claim-less row under the unique index.
func zeroValue(f catalog.Field) interface{} {
	if f.Unique {
		return nil
	}
	if f.Type == catalog.FieldString {
		return ""
	}
	return nil
}

// scalarUpdates computes the full column update map for one entity:
// every declared column reset to its zero, then the winning claims
// applied over the top. Claims are the sole source of truth here, so a
// field whose claims were all deactivated goes blank.
func (s *service) scalarUpdates(d *catalog.Descriptor, winners map[string]*types.Claim, lk *lookups) map[string]interface{} {
	updates := make(map[string]interface{}, len(d.Fields)+len(d.References)+1)
	for _, f := range d.Fields {
		updates[f.Column] = zeroValue(f)
	}
	for _, ref := range d.References {
		updates[ref.Column] = nil
	}
	var extra map[string]interface{}
	if d.ExtraColumn != "" {
		extra = map[string]interface{}{}
	}

	for _, c := range winners {
		if catalog.IsRelationshipField(c.FieldName) {
			continue
		}
		value, err := ledger.FromJSON(c.Value)
		if err != nil {
			s.log.Warn("claim value is not valid JSON",
				"claim_id", c.ID, "field", c.FieldName, "error", err.Error())
			continue
		}
		if ref, ok := d.ReferenceByName(c.FieldName); ok {
			updates[ref.Column] = s.resolveReference(ref.Name, value, c, lk)
			continue
		}
		if f, ok := d.FieldByName(c.FieldName); ok {
			updates[f.Column] = s.coerce(d.Kind, f, value)
			continue
		}
		if extra != nil {
			extra[c.FieldName] = value.Interface()
		}
	}

	if d.ExtraColumn != "" {
		updates[d.ExtraColumn] = datatypes.JSONMap(extra)
	}
	return updates
}

// coerce converts a winning claim value to the column's type. A value
// that cannot be coerced resolves to the column's zero with a warning;
// the rest of the entity still resolves.
func (s *service) coerce(kind types.EntityKind, f catalog.Field, v ledger.Value) interface{} {
	if v.Empty() {
		return zeroValue(f)
	}
	switch f.Type {
	case catalog.FieldInt:
		n, ok := v.AsInt()
		if !ok {
			s.warnCoerce(kind, f, "int")
			return nil
		}
		return n
	case catalog.FieldDecimal:
		fl, ok := v.AsFloat()
		if !ok {
			s.warnCoerce(kind, f, "decimal")
			return nil
		}
		return fl
	case catalog.FieldJSON:
		raw, err := json.Marshal(v)
		if err != nil {
			s.warnCoerce(kind, f, "json")
			return nil
		}
		return datatypes.JSON(raw)
	default:
		str, ok := v.AsString()
		if !ok {
			s.warnCoerce(kind, f, "text")
			return zeroValue(f)
		}
		return str
	}
}

func (s *service) warnCoerce(kind types.EntityKind, f catalog.Field, want string) {
	s.log.Warn("cannot coerce claim value, field resolves to null",
		"kind", string(kind), "field", f.Name, "want", want)
}

func (s *service) resolveReference(name string, v ledger.Value, c *types.Claim, lk *lookups) interface{} {
	switch name {
	case "manufacturer":
		sourceSlug := ""
		if c.SourceID != nil {
			sourceSlug = lk.sourceSlug[*c.SourceID]
		}
		return s.resolveManufacturerRef(v, sourceSlug, lk)
	case "group":
		return s.resolveGroupRef(v, lk)
	}
	s.log.Warn("no lookup for reference field", "field", name)
	return nil
}

// resolveManufacturerRef maps a manufacturer claim value to a row id.
// The value may be a numeric external id or a name. sourceSlug scopes
// numeric lookups: "ipdb" ids live on ManufacturerEntity, "opdb" ids on
// Manufacturer; an unknown source tries both, IPDB first.
func (s *service) resolveManufacturerRef(v ledger.Value, sourceSlug string, lk *lookups) interface{} {
	if v.Empty() {
		return nil
	}

	if n, ok := v.AsInt(); ok {
		if sourceSlug != "opdb" {
			if id, ok := lk.mfrByIPDBID[n]; ok {
				return id
			}
		}
		if sourceSlug != "ipdb" {
			if id, ok := lk.mfrByOPDBID[n]; ok {
				return id
			}
		}
	}

	name, ok := v.AsString()
	if !ok {
		s.log.Warn("unmatched manufacturer claim value")
		return nil
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	if id, ok := lk.mfrByName[strings.ToLower(name)]; ok {
		return id
	}
	if id, ok := lk.mfrByTrade[strings.ToLower(name)]; ok {
		return id
	}
	s.log.Warn("unmatched manufacturer claim value", "value", name)
	return nil
}

// resolveGroupRef maps a group claim value, an OPDB group id string, to
// a MachineGroup row id.
func (s *service) resolveGroupRef(v ledger.Value, lk *lookups) interface{} {
	if v.Empty() {
		return nil
	}
	key, ok := v.AsString()
	if !ok {
		s.log.Warn("unmatched machine group claim value")
		return nil
	}
	if id, ok := lk.groupByOPDB[key]; ok {
		return id
	}
	s.log.Warn("unmatched machine group claim value", "value", key)
	return nil
}
