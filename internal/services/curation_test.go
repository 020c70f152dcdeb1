package services

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"gorm.io/gorm"

	"github.com/pinlore/pinlore-backend/internal/data/repos"
	"github.com/pinlore/pinlore-backend/internal/data/repos/testutil"
	types "github.com/pinlore/pinlore-backend/internal/domain"
	"github.com/pinlore/pinlore-backend/internal/invalidation"
	"github.com/pinlore/pinlore-backend/internal/ledger"
	"github.com/pinlore/pinlore-backend/internal/platform/apierr"
	"github.com/pinlore/pinlore-backend/internal/platform/ctxutil"
	"github.com/pinlore/pinlore-backend/internal/platform/dbctx"
	"github.com/pinlore/pinlore-backend/internal/resolve"
)

type capturePublisher struct {
	events []invalidation.Event
}

func (p *capturePublisher) Publish(_ context.Context, ev invalidation.Event) error {
	p.events = append(p.events, ev)
	return nil
}

type serviceEnv struct {
	db       *gorm.DB
	catalog  CatalogService
	activity ActivityService
	curation CurationService
	pub      *capturePublisher
}

func newServiceEnv(t *testing.T) *serviceEnv {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)

	claimRepo := repos.NewClaimRepo(db, log)
	sourceRepo := repos.NewSourceRepo(db, log)
	userRepo := repos.NewUserRepo(db, log)
	machineRepo := repos.NewMachineRepo(db, log)
	manufacturerRepo := repos.NewManufacturerRepo(db, log)
	manufacturerEntityRepo := repos.NewManufacturerEntityRepo(db, log)
	machineGroupRepo := repos.NewMachineGroupRepo(db, log)
	personRepo := repos.NewPersonRepo(db, log)
	themeRepo := repos.NewThemeRepo(db, log)
	awardRepo := repos.NewAwardRepo(db, log)
	typeProfileRepo := repos.NewTypeProfileRepo(db, log)
	designCreditRepo := repos.NewDesignCreditRepo(db, log)
	machineThemeRepo := repos.NewMachineThemeRepo(db, log)
	awardRecipientRepo := repos.NewAwardRecipientRepo(db, log)

	ledgerService := ledger.NewService(db, log, claimRepo)
	resolveService := resolve.NewService(
		db, log,
		claimRepo, sourceRepo, userRepo,
		machineRepo, manufacturerRepo, manufacturerEntityRepo, machineGroupRepo,
		personRepo, themeRepo, awardRepo,
		designCreditRepo, machineThemeRepo, awardRecipientRepo,
	)
	catalogService := NewCatalogService(
		db, log,
		machineRepo, manufacturerRepo, manufacturerEntityRepo,
		personRepo, awardRepo, sourceRepo, typeProfileRepo,
		designCreditRepo, awardRecipientRepo,
	)
	activityService := NewActivityService(db, log, claimRepo, sourceRepo, userRepo)
	pub := &capturePublisher{}
	curationService := NewCurationService(db, log, ledgerService, resolveService, catalogService, activityService, pub)

	return &serviceEnv{
		db:       db,
		catalog:  catalogService,
		activity: activityService,
		curation: curationService,
		pub:      pub,
	}
}

func TestEditClaimsAppliesAndResolves(t *testing.T) {
	env := newServiceEnv(t)
	ctx := context.Background()

	source := testutil.SeedSource(t, ctx, env.db, "ipdb", 100)
	editor := testutil.SeedUser(t, ctx, env.db, "casey@pinlore.dev", 10000)
	machine := testutil.SeedMachine(t, ctx, env.db, "Twilight Zone", "twilight-zone")
	subject := types.Subject{Kind: types.KindMachine, ID: machine.ID}

	testutil.SeedSourceClaim(t, ctx, env.db, source.ID, subject, "year", "year", `1992`)

	editorCtx := ctxutil.WithRequestData(ctx, &ctxutil.RequestData{UserID: editor.ID, DisplayName: editor.DisplayName})
	dbc := dbctx.Context{Ctx: editorCtx}

	result, err := env.curation.EditClaims(dbc, EditClaimsInput{
		Kind:     "machine",
		Slug:     "twilight-zone",
		Claims:   map[string]json.RawMessage{"year": json.RawMessage(`1993`)},
		Citation: "service bulletin correction",
	})
	if err != nil {
		t.Fatalf("EditClaims: %v", err)
	}

	got, ok := result.Entity.(*types.Machine)
	if !ok {
		t.Fatalf("entity type = %T, want *types.Machine", result.Entity)
	}
	if got.Year == nil || *got.Year != 1993 {
		t.Fatalf("resolved year = %v, want 1993", got.Year)
	}

	if len(result.Activity) != 2 {
		t.Fatalf("activity entries = %d, want 2", len(result.Activity))
	}
	newest := result.Activity[0]
	if newest.AttributorKind != "editor" || newest.AttributedTo != "Editor" {
		t.Fatalf("newest entry attribution = %s/%s, want editor/Editor", newest.AttributorKind, newest.AttributedTo)
	}
	if !newest.IsWinner {
		t.Fatalf("editor claim should win over source priority %d", source.Priority)
	}
	if newest.Citation != "service bulletin correction" {
		t.Fatalf("citation = %q", newest.Citation)
	}
	for _, e := range result.Activity[1:] {
		if e.IsWinner {
			t.Fatalf("source claim still marked winner: %+v", e)
		}
	}

	var stored types.Machine
	if err := env.db.First(&stored, machine.ID).Error; err != nil {
		t.Fatalf("load machine: %v", err)
	}
	if stored.Year == nil || *stored.Year != 1993 {
		t.Fatalf("materialized year = %v, want 1993", stored.Year)
	}

	if len(env.pub.events) != 1 {
		t.Fatalf("invalidation events = %d, want 1", len(env.pub.events))
	}
	ev := env.pub.events[0]
	if ev.Kind != "machine" || ev.Slug != "twilight-zone" || ev.Changed != 1 {
		t.Fatalf("unexpected event %+v", ev)
	}
}

func TestEditClaimsSupersedesOwnPriorEdit(t *testing.T) {
	env := newServiceEnv(t)
	ctx := context.Background()

	editor := testutil.SeedUser(t, ctx, env.db, "casey@pinlore.dev", 10000)
	machine := testutil.SeedMachine(t, ctx, env.db, "Whirlwind", "whirlwind")

	editorCtx := ctxutil.WithRequestData(ctx, &ctxutil.RequestData{UserID: editor.ID})
	dbc := dbctx.Context{Ctx: editorCtx}

	for _, year := range []string{`1989`, `1990`} {
		if _, err := env.curation.EditClaims(dbc, EditClaimsInput{
			Kind:   "machine",
			Slug:   "whirlwind",
			Claims: map[string]json.RawMessage{"year": json.RawMessage(year)},
		}); err != nil {
			t.Fatalf("EditClaims(%s): %v", year, err)
		}
	}

	var active int64
	if err := env.db.Model(&types.Claim{}).
		Where("subject_kind = ? AND subject_id = ? AND is_active = ?", types.KindMachine, machine.ID, true).
		Count(&active).Error; err != nil {
		t.Fatalf("count claims: %v", err)
	}
	if active != 1 {
		t.Fatalf("active claims = %d, want 1 (second edit supersedes the first)", active)
	}

	var stored types.Machine
	if err := env.db.First(&stored, machine.ID).Error; err != nil {
		t.Fatalf("load machine: %v", err)
	}
	if stored.Year == nil || *stored.Year != 1990 {
		t.Fatalf("materialized year = %v, want 1990", stored.Year)
	}
}

func TestEditClaimsRejectsUneditableFields(t *testing.T) {
	env := newServiceEnv(t)
	ctx := context.Background()

	editor := testutil.SeedUser(t, ctx, env.db, "casey@pinlore.dev", 10000)
	testutil.SeedMachine(t, ctx, env.db, "Firepower", "firepower")

	editorCtx := ctxutil.WithRequestData(ctx, &ctxutil.RequestData{UserID: editor.ID})
	dbc := dbctx.Context{Ctx: editorCtx}

	_, err := env.curation.EditClaims(dbc, EditClaimsInput{
		Kind: "machine",
		Slug: "firepower",
		Claims: map[string]json.RawMessage{
			"year":         json.RawMessage(`1980`),
			"manufacturer": json.RawMessage(`"Williams"`),
			"credit":       json.RawMessage(`{}`),
		},
	})
	if err == nil {
		t.Fatalf("expected rejection for uneditable fields")
	}
	ae := apierr.From(err)
	if ae.Status != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", ae.Status)
	}
	// Offending names are listed sorted; the editable field is not.
	msg := ae.Error()
	if want := "credit, manufacturer"; !strings.Contains(msg, want) {
		t.Fatalf("error %q does not list %q", msg, want)
	}
	if strings.Contains(msg, "year") {
		t.Fatalf("error %q should not mention the editable field", msg)
	}

	var count int64
	if err := env.db.Model(&types.Claim{}).Count(&count).Error; err != nil {
		t.Fatalf("count claims: %v", err)
	}
	if count != 0 {
		t.Fatalf("claims written despite rejection: %d", count)
	}
	if len(env.pub.events) != 0 {
		t.Fatalf("invalidation published despite rejection")
	}
}

func TestEditClaimsUnknownEntity(t *testing.T) {
	env := newServiceEnv(t)
	ctx := context.Background()

	editor := testutil.SeedUser(t, ctx, env.db, "casey@pinlore.dev", 10000)
	editorCtx := ctxutil.WithRequestData(ctx, &ctxutil.RequestData{UserID: editor.ID})
	dbc := dbctx.Context{Ctx: editorCtx}

	_, err := env.curation.EditClaims(dbc, EditClaimsInput{
		Kind:   "machine",
		Slug:   "no-such-machine",
		Claims: map[string]json.RawMessage{"year": json.RawMessage(`1980`)},
	})
	if err == nil {
		t.Fatalf("expected not found")
	}
	if ae := apierr.From(err); ae.Status != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", ae.Status)
	}
}

func TestEditClaimsRequiresEditor(t *testing.T) {
	env := newServiceEnv(t)
	ctx := context.Background()
	testutil.SeedMachine(t, ctx, env.db, "Firepower", "firepower")

	_, err := env.curation.EditClaims(dbctx.Context{Ctx: ctx}, EditClaimsInput{
		Kind:   "machine",
		Slug:   "firepower",
		Claims: map[string]json.RawMessage{"year": json.RawMessage(`1980`)},
	})
	if err == nil {
		t.Fatalf("expected unauthorized")
	}
	if ae := apierr.From(err); ae.Status != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", ae.Status)
	}
}

func TestActivityFeedRanksByPriority(t *testing.T) {
	env := newServiceEnv(t)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}

	high := testutil.SeedSource(t, ctx, env.db, "ipdb", 100)
	low := testutil.SeedSource(t, ctx, env.db, "opdb", 50)
	machine := testutil.SeedMachine(t, ctx, env.db, "Black Knight", "black-knight")
	subject := types.Subject{Kind: types.KindMachine, ID: machine.ID}

	// The lower-priority claim is newer; priority still decides the winner.
	testutil.SeedSourceClaim(t, ctx, env.db, high.ID, subject, "year", "year", `1980`)
	testutil.SeedSourceClaim(t, ctx, env.db, low.ID, subject, "year", "year", `1981`)

	feed, err := env.activity.Feed(dbc, subject)
	if err != nil {
		t.Fatalf("Feed: %v", err)
	}
	if len(feed) != 2 {
		t.Fatalf("feed length = %d, want 2", len(feed))
	}

	var winners int
	for _, e := range feed {
		if e.AttributorKind != "source" {
			t.Fatalf("attributor kind = %q, want source", e.AttributorKind)
		}
		if e.IsWinner {
			winners++
			if e.AttributedTo != "ipdb" {
				t.Fatalf("winner attributed to %q, want ipdb", e.AttributedTo)
			}
			if e.Priority != 100 {
				t.Fatalf("winner priority = %d, want 100", e.Priority)
			}
		}
	}
	if winners != 1 {
		t.Fatalf("winners = %d, want exactly 1", winners)
	}
}
