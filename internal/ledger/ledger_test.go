package ledger

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"

	"github.com/pinlore/pinlore-backend/internal/data/repos"
	"github.com/pinlore/pinlore-backend/internal/data/repos/testutil"
	types "github.com/pinlore/pinlore-backend/internal/domain"
	"github.com/pinlore/pinlore-backend/internal/platform/dbctx"
)

func newTestService(t *testing.T) (Service, *gorm.DB, repos.ClaimRepo) {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	claimRepo := repos.NewClaimRepo(db, log)
	return NewService(db, log, claimRepo), db, claimRepo
}

func TestAssertSupersedesPerAttributor(t *testing.T) {
	svc, db, claimRepo := newTestService(t)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}

	src := testutil.SeedSource(t, ctx, db, "ipdb", 100)
	subject := types.Subject{Kind: types.KindMachine, ID: 1}

	first, err := svc.Assert(dbc, AssertInput{
		Subject:   subject,
		FieldName: "year",
		Value:     Int(1996),
		SourceID:  &src.ID,
	})
	if err != nil {
		t.Fatalf("Assert (first): %v", err)
	}
	second, err := svc.Assert(dbc, AssertInput{
		Subject:   subject,
		FieldName: "year",
		Value:     Int(1997),
		Citation:  "https://www.ipdb.org/machine.cgi?id=2684",
		SourceID:  &src.ID,
	})
	if err != nil {
		t.Fatalf("Assert (second): %v", err)
	}

	active, err := claimRepo.ListActiveBySubject(dbc, subject)
	if err != nil {
		t.Fatalf("ListActiveBySubject: %v", err)
	}
	if len(active) != 1 || active[0].ID != second.ID {
		t.Fatalf("expected the second claim to be the only active one, got %+v", active)
	}

	old, err := claimRepo.GetByID(dbc, first.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if old == nil || old.IsActive {
		t.Fatalf("first claim should survive as an inactive row, got %+v", old)
	}

	var total int64
	if err := db.Model(&types.Claim{}).Count(&total).Error; err != nil {
		t.Fatalf("count claims: %v", err)
	}
	if total != 2 {
		t.Fatalf("expected 2 rows in the ledger, got %d", total)
	}
}

func TestAssertRejectsBadAttribution(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}

	subject := types.Subject{Kind: types.KindMachine, ID: 1}
	if _, err := svc.Assert(dbc, AssertInput{Subject: subject, FieldName: "year", Value: Int(1996)}); !errors.Is(err, ErrAttribution) {
		t.Fatalf("no attribution: got %v", err)
	}

	src := testutil.SeedSource(t, ctx, db, "ipdb", 100)
	editor := testutil.SeedUser(t, ctx, db, "editor@example.com", 10000)
	if _, err := svc.Assert(dbc, AssertInput{
		Subject:   subject,
		FieldName: "year",
		Value:     Int(1996),
		SourceID:  &src.ID,
		AuthorID:  &editor.ID,
	}); !errors.Is(err, ErrAttribution) {
		t.Fatalf("double attribution: got %v", err)
	}
}

func TestAssertKeepsAttributorsIndependent(t *testing.T) {
	svc, db, claimRepo := newTestService(t)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}

	src := testutil.SeedSource(t, ctx, db, "ipdb", 100)
	editor := testutil.SeedUser(t, ctx, db, "editor@example.com", 10000)
	subject := types.Subject{Kind: types.KindMachine, ID: 1}

	if _, err := svc.Assert(dbc, AssertInput{Subject: subject, FieldName: "year", Value: Int(1996), SourceID: &src.ID}); err != nil {
		t.Fatalf("Assert (source): %v", err)
	}
	if _, err := svc.Assert(dbc, AssertInput{Subject: subject, FieldName: "year", Value: Int(1997), AuthorID: &editor.ID}); err != nil {
		t.Fatalf("Assert (author): %v", err)
	}

	active, err := claimRepo.ListActiveBySubject(dbc, subject)
	if err != nil {
		t.Fatalf("ListActiveBySubject: %v", err)
	}
	if len(active) != 2 {
		t.Fatalf("source and author claims should coexist, got %d active", len(active))
	}
}

func TestBulkAssertIdempotent(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}

	src := testutil.SeedSource(t, ctx, db, "opdb", 50)
	subject := types.Subject{Kind: types.KindMachine, ID: 7}
	batch := []Candidate{
		{Subject: subject, FieldName: "name", Value: String("Theatre of Magic"), Citation: "https://opdb.org/machines/123"},
		{Subject: subject, FieldName: "year", Value: Int(1995), Citation: "https://opdb.org/machines/123"},
	}

	res, err := svc.BulkAssert(dbc, src.ID, batch, BulkOptions{})
	if err != nil {
		t.Fatalf("BulkAssert (first): %v", err)
	}
	if res.Created != 2 || res.Unchanged != 0 || res.Superseded != 0 {
		t.Fatalf("first run: %+v", res)
	}

	res, err = svc.BulkAssert(dbc, src.ID, batch, BulkOptions{})
	if err != nil {
		t.Fatalf("BulkAssert (second): %v", err)
	}
	if res.Created != 0 || res.Unchanged != 2 || res.Superseded != 0 {
		t.Fatalf("second run should write nothing: %+v", res)
	}

	var total int64
	if err := db.Model(&types.Claim{}).Count(&total).Error; err != nil {
		t.Fatalf("count claims: %v", err)
	}
	if total != 2 {
		t.Fatalf("expected 2 ledger rows, got %d", total)
	}
}

func TestBulkAssertSupersedesChanges(t *testing.T) {
	svc, db, claimRepo := newTestService(t)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}

	src := testutil.SeedSource(t, ctx, db, "ipdb", 100)
	subject := types.Subject{Kind: types.KindMachine, ID: 3}

	if _, err := svc.BulkAssert(dbc, src.ID, []Candidate{
		{Subject: subject, FieldName: "year", Value: Int(1996), Citation: "c1"},
	}, BulkOptions{}); err != nil {
		t.Fatalf("BulkAssert (seed): %v", err)
	}

	res, err := svc.BulkAssert(dbc, src.ID, []Candidate{
		{Subject: subject, FieldName: "year", Value: Int(1997), Citation: "c1"},
	}, BulkOptions{})
	if err != nil {
		t.Fatalf("BulkAssert (new value): %v", err)
	}
	if res.Superseded != 1 || res.Created != 1 || res.Unchanged != 0 {
		t.Fatalf("value change: %+v", res)
	}

	// Same value but a different citation still supersedes.
	res, err = svc.BulkAssert(dbc, src.ID, []Candidate{
		{Subject: subject, FieldName: "year", Value: Int(1997), Citation: "c2"},
	}, BulkOptions{})
	if err != nil {
		t.Fatalf("BulkAssert (new citation): %v", err)
	}
	if res.Superseded != 1 || res.Created != 1 {
		t.Fatalf("citation change: %+v", res)
	}

	active, err := claimRepo.ListActiveBySubject(dbc, subject)
	if err != nil {
		t.Fatalf("ListActiveBySubject: %v", err)
	}
	if len(active) != 1 || active[0].Citation != "c2" {
		t.Fatalf("expected one active claim with the new citation, got %+v", active)
	}
}

func TestBulkAssertDuplicatesLastWins(t *testing.T) {
	svc, db, claimRepo := newTestService(t)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}

	src := testutil.SeedSource(t, ctx, db, "ipdb", 100)
	subject := types.Subject{Kind: types.KindMachine, ID: 9}

	res, err := svc.BulkAssert(dbc, src.ID, []Candidate{
		{Subject: subject, FieldName: "year", Value: Int(1990)},
		{Subject: subject, FieldName: "year", Value: Int(1991)},
		{Subject: subject, FieldName: "year", Value: Int(1992)},
	}, BulkOptions{})
	if err != nil {
		t.Fatalf("BulkAssert: %v", err)
	}
	if res.DuplicatesRemoved != 2 || res.Created != 1 {
		t.Fatalf("expected 2 duplicates removed and 1 created: %+v", res)
	}

	active, err := claimRepo.ListActiveBySubject(dbc, subject)
	if err != nil {
		t.Fatalf("ListActiveBySubject: %v", err)
	}
	if len(active) != 1 {
		t.Fatalf("expected 1 active claim, got %d", len(active))
	}
	val, err := FromJSON([]byte(active[0].Value))
	if err != nil {
		t.Fatalf("parse value: %v", err)
	}
	if n, _ := val.AsInt(); n != 1992 {
		t.Fatalf("last candidate should win, got %d", n)
	}
}

func creditCandidate(t *testing.T, subject types.Subject, person, role string) Candidate {
	t.Helper()
	key, err := MakeClaimKey("credit", map[string]Value{"person": String(person), "role": String(role)})
	if err != nil {
		t.Fatalf("MakeClaimKey: %v", err)
	}
	return Candidate{
		Subject:   subject,
		FieldName: "credit",
		ClaimKey:  key,
		Value: Object(map[string]Value{
			"person_slug": String(person),
			"role":        String(role),
			"exists":      Bool(true),
		}),
	}
}

func TestBulkAssertSweep(t *testing.T) {
	svc, db, claimRepo := newTestService(t)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}

	src := testutil.SeedSource(t, ctx, db, "ipdb", 100)
	subject := types.Subject{Kind: types.KindMachine, ID: 4}

	if _, err := svc.BulkAssert(dbc, src.ID, []Candidate{
		creditCandidate(t, subject, "pat-lawlor", "design"),
		creditCandidate(t, subject, "john-youssi", "art"),
	}, BulkOptions{SweepField: "credit"}); err != nil {
		t.Fatalf("BulkAssert (seed): %v", err)
	}

	// The source now only asserts one credit; the other gets retracted.
	res, err := svc.BulkAssert(dbc, src.ID, []Candidate{
		creditCandidate(t, subject, "pat-lawlor", "design"),
	}, BulkOptions{SweepField: "credit"})
	if err != nil {
		t.Fatalf("BulkAssert (shrunk): %v", err)
	}
	if res.Unchanged != 1 || res.Swept != 1 || res.Created != 0 || res.Superseded != 0 {
		t.Fatalf("shrunk run: %+v", res)
	}

	active, err := claimRepo.ListActiveBySubject(dbc, subject)
	if err != nil {
		t.Fatalf("ListActiveBySubject: %v", err)
	}
	if len(active) != 1 || active[0].ClaimKey != "credit|person:pat-lawlor|role:design" {
		t.Fatalf("expected only the surviving credit, got %+v", active)
	}
}

func TestBulkAssertSweepHonorsScope(t *testing.T) {
	svc, db, claimRepo := newTestService(t)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}

	src := testutil.SeedSource(t, ctx, db, "ipdb", 100)
	machineA := types.Subject{Kind: types.KindMachine, ID: 10}
	machineB := types.Subject{Kind: types.KindMachine, ID: 11}

	if _, err := svc.BulkAssert(dbc, src.ID, []Candidate{
		creditCandidate(t, machineA, "pat-lawlor", "design"),
		creditCandidate(t, machineB, "steve-ritchie", "design"),
	}, BulkOptions{}); err != nil {
		t.Fatalf("BulkAssert (seed): %v", err)
	}

	// Scope covers only machine A, so machine B's claim must survive
	// even though it is absent from the batch.
	res, err := svc.BulkAssert(dbc, src.ID, nil, BulkOptions{
		SweepField: "credit",
		Scope:      []types.Subject{machineA},
	})
	if err != nil {
		t.Fatalf("BulkAssert (sweep A): %v", err)
	}
	if res.Swept != 1 {
		t.Fatalf("sweep A: %+v", res)
	}

	activeB, err := claimRepo.ListActiveBySubject(dbc, machineB)
	if err != nil {
		t.Fatalf("ListActiveBySubject: %v", err)
	}
	if len(activeB) != 1 {
		t.Fatalf("machine B claim should survive an out-of-scope sweep, got %d", len(activeB))
	}

	activeA, err := claimRepo.ListActiveBySubject(dbc, machineA)
	if err != nil {
		t.Fatalf("ListActiveBySubject: %v", err)
	}
	if len(activeA) != 0 {
		t.Fatalf("machine A claim should be swept, got %d", len(activeA))
	}
}
