package resolve

import (
	"fmt"

	types "github.com/pinlore/pinlore-backend/internal/domain"
	"github.com/pinlore/pinlore-backend/internal/ledger"
	"github.com/pinlore/pinlore-backend/internal/platform/dbctx"
)

// applyRelationship materializes the winning claims of one relationship
// namespace into join rows, inserting and deleting only the delta
// against what is already stored.
func (s *service) applyRelationship(dbc dbctx.Context, kind types.EntityKind, id uint, ns string, winners map[string]*types.Claim, lk *lookups) error {
	switch ns {
	case "credit":
		return s.applyCredits(dbc, id, winners, lk)
	case "theme":
		return s.applyThemes(dbc, id, winners, lk)
	case "recipient":
		return s.applyRecipients(dbc, id, winners, lk)
	}
	return fmt.Errorf("no materializer for relationship %q on kind %q", ns, kind)
}

// relationshipValue decodes a winning relationship claim and applies
// the exists veto. Returns ok=false when the instance should be
// skipped.
func (s *service) relationshipValue(c *types.Claim) (ledger.Value, bool) {
	v, err := ledger.FromJSON(c.Value)
	if err != nil {
		s.log.Warn("relationship claim value is not valid JSON",
			"claim_id", c.ID, "field", c.FieldName, "error", err.Error())
		return ledger.Null(), false
	}
	if !v.Exists() {
		return ledger.Null(), false
	}
	return v, true
}

type creditKey struct {
	personID uint
	role     string
}

func (s *service) applyCredits(dbc dbctx.Context, machineID uint, winners map[string]*types.Claim, lk *lookups) error {
	desired := map[creditKey]bool{}
	for _, c := range winners {
		if c.FieldName != "credit" {
			continue
		}
		v, ok := s.relationshipValue(c)
		if !ok {
			continue
		}
		slugVal, _ := v.Get("person_slug")
		slug, _ := slugVal.AsString()
		personID, ok := lk.personBySlug[slug]
		if !ok {
			s.log.Warn("unresolved person slug in credit claim",
				"slug", slug, "machine_id", machineID)
			continue
		}
		roleVal, _ := v.Get("role")
		role, ok := roleVal.AsString()
		if !ok {
			s.log.Warn("credit claim has no usable role", "claim_id", c.ID)
			continue
		}
		desired[creditKey{personID: personID, role: role}] = true
	}

	existing, err := s.credits.ListByMachineID(dbc, machineID)
	if err != nil {
		return err
	}
	var deleteIDs []uint
	have := map[creditKey]bool{}
	for _, row := range existing {
		k := creditKey{personID: row.PersonID, role: row.Role}
		if !desired[k] {
			deleteIDs = append(deleteIDs, row.ID)
			continue
		}
		have[k] = true
	}
	var create []*types.DesignCredit
	for k := range desired {
		if !have[k] {
			create = append(create, &types.DesignCredit{
				MachineID: machineID,
				PersonID:  k.personID,
				Role:      k.role,
			})
		}
	}

	if err := s.credits.DeleteByIDs(dbc, deleteIDs); err != nil {
		return err
	}
	return s.credits.CreateBatch(dbc, create)
}

func (s *service) applyThemes(dbc dbctx.Context, machineID uint, winners map[string]*types.Claim, lk *lookups) error {
	desired := map[uint]bool{}
	for _, c := range winners {
		if c.FieldName != "theme" {
			continue
		}
		v, ok := s.relationshipValue(c)
		if !ok {
			continue
		}
		slugVal, _ := v.Get("theme_slug")
		slug, _ := slugVal.AsString()
		themeID, ok := lk.themeBySlug[slug]
		if !ok {
			s.log.Warn("unresolved theme slug in theme claim",
				"slug", slug, "machine_id", machineID)
			continue
		}
		desired[themeID] = true
	}

	existing, err := s.machineThemes.ListByMachineID(dbc, machineID)
	if err != nil {
		return err
	}
	var deleteIDs []uint
	have := map[uint]bool{}
	for _, row := range existing {
		if !desired[row.ThemeID] {
			deleteIDs = append(deleteIDs, row.ID)
			continue
		}
		have[row.ThemeID] = true
	}
	var create []*types.MachineTheme
	for themeID := range desired {
		if !have[themeID] {
			create = append(create, &types.MachineTheme{
				MachineID: machineID,
				ThemeID:   themeID,
			})
		}
	}

	if err := s.machineThemes.DeleteByIDs(dbc, deleteIDs); err != nil {
		return err
	}
	return s.machineThemes.CreateBatch(dbc, create)
}

type recipientKey struct {
	personID uint
	year     int
	hasYear  bool
}

func (s *service) applyRecipients(dbc dbctx.Context, awardID uint, winners map[string]*types.Claim, lk *lookups) error {
	type yearEntry struct {
		year    int
		hasYear bool
	}

	byPerson := map[string][]yearEntry{}
	for _, c := range winners {
		if c.FieldName != "recipient" {
			continue
		}
		v, ok := s.relationshipValue(c)
		if !ok {
			continue
		}
		slugVal, _ := v.Get("person_slug")
		slug, ok := slugVal.AsString()
		if !ok || slug == "" {
			s.log.Warn("recipient claim has no usable person slug", "claim_id", c.ID)
			continue
		}
		entry := yearEntry{}
		if yv, ok := v.Get("year"); ok && !yv.IsNull() {
			n, ok := yv.AsInt()
			if !ok {
				s.log.Warn("recipient claim year does not coerce", "claim_id", c.ID)
				continue
			}
			entry = yearEntry{year: int(n), hasYear: true}
		}
		byPerson[slug] = append(byPerson[slug], entry)
	}

	desired := map[recipientKey]bool{}
	for slug, years := range byPerson {
		personID, ok := lk.personBySlug[slug]
		if !ok {
			s.log.Warn("unresolved person slug in recipient claim",
				"slug", slug, "award_id", awardID)
			continue
		}
		hasSpecific := false
		hasNull := false
		for _, y := range years {
			if y.hasYear {
				hasSpecific = true
			} else {
				hasNull = true
			}
		}
		for _, y := range years {
			// A known-year win subsumes the same person's unknown-year win.
			if !y.hasYear && hasSpecific && hasNull {
				continue
			}
			desired[recipientKey{personID: personID, year: y.year, hasYear: y.hasYear}] = true
		}
	}

	existing, err := s.recipients.ListByAwardID(dbc, awardID)
	if err != nil {
		return err
	}
	var deleteIDs []uint
	have := map[recipientKey]bool{}
	for _, row := range existing {
		k := recipientKey{personID: row.PersonID}
		if row.Year != nil {
			k.year = *row.Year
			k.hasYear = true
		}
		if !desired[k] {
			deleteIDs = append(deleteIDs, row.ID)
			continue
		}
		have[k] = true
	}
	var create []*types.AwardRecipient
	for k := range desired {
		if have[k] {
			continue
		}
		row := &types.AwardRecipient{AwardID: awardID, PersonID: k.personID}
		if k.hasYear {
			year := k.year
			row.Year = &year
		}
		create = append(create, row)
	}

	if err := s.recipients.DeleteByIDs(dbc, deleteIDs); err != nil {
		return err
	}
	return s.recipients.CreateBatch(dbc, create)
}
