package provenance

import (
	"context"
	"errors"
	"testing"

	"github.com/pinlore/pinlore-backend/internal/data/repos/testutil"
	types "github.com/pinlore/pinlore-backend/internal/domain"
	"github.com/pinlore/pinlore-backend/internal/platform/dbctx"
)

func TestSourceRepoUpsertKeyedOnSlug(t *testing.T) {
	db := testutil.DB(t)
	repo := NewSourceRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background()}

	first := &types.Source{
		Slug:       "ipdb",
		Name:       "Internet Pinball Database",
		SourceType: types.SourceTypeDatabase,
		Priority:   100,
	}
	if err := repo.Upsert(dbc, first); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	again := &types.Source{
		Slug:       "ipdb",
		Name:       "Internet Pinball Database",
		SourceType: types.SourceTypeDatabase,
		Priority:   250,
		URL:        "https://www.ipdb.org",
	}
	if err := repo.Upsert(dbc, again); err != nil {
		t.Fatalf("Upsert (update): %v", err)
	}

	got, err := repo.GetBySlug(dbc, "ipdb")
	if err != nil {
		t.Fatalf("GetBySlug: %v", err)
	}
	if got == nil || got.Priority != 250 || got.URL != "https://www.ipdb.org" {
		t.Fatalf("GetBySlug = %+v, want the updated priority and url", got)
	}

	var n int64
	if err := db.Model(&types.Source{}).Count(&n).Error; err != nil {
		t.Fatalf("count sources: %v", err)
	}
	if n != 1 {
		t.Fatalf("sources = %d rows, want 1", n)
	}
}

func TestSourceRepoAllOrdersByPriority(t *testing.T) {
	db := testutil.DB(t)
	repo := NewSourceRepo(db, testutil.Logger(t))
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}

	testutil.SeedSource(t, ctx, db, "fan-wiki", 10)
	testutil.SeedSource(t, ctx, db, "opdb", 50)
	testutil.SeedSource(t, ctx, db, "ipdb", 100)

	all, err := repo.All(dbc)
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("All = %d sources, want 3", len(all))
	}
	if all[0].Slug != "ipdb" || all[1].Slug != "opdb" || all[2].Slug != "fan-wiki" {
		t.Fatalf("order = [%s %s %s], want highest priority first",
			all[0].Slug, all[1].Slug, all[2].Slug)
	}
}

func TestSourceRepoDeleteRefusedWhileClaimsExist(t *testing.T) {
	db := testutil.DB(t)
	repo := NewSourceRepo(db, testutil.Logger(t))
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}

	src := testutil.SeedSource(t, ctx, db, "ipdb", 100)
	subject := types.Subject{Kind: types.KindMachine, ID: 1}
	testutil.SeedSourceClaim(t, ctx, db, src.ID, subject, "year", "year", `1992`)

	if err := repo.Delete(dbc, src.ID); !errors.Is(err, ErrSourceInUse) {
		t.Fatalf("Delete = %v, want ErrSourceInUse", err)
	}
	still, err := repo.GetBySlug(dbc, "ipdb")
	if err != nil {
		t.Fatalf("GetBySlug: %v", err)
	}
	if still == nil {
		t.Fatalf("source vanished despite the refusal")
	}

	// A claim-free source deletes cleanly.
	spare := testutil.SeedSource(t, ctx, db, "opdb", 50)
	if err := repo.Delete(dbc, spare.ID); err != nil {
		t.Fatalf("Delete (claim-free): %v", err)
	}
	gone, err := repo.GetBySlug(dbc, "opdb")
	if err != nil {
		t.Fatalf("GetBySlug: %v", err)
	}
	if gone != nil {
		t.Fatalf("source still present after delete: %+v", gone)
	}
}
