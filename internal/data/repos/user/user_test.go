package user

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/pinlore/pinlore-backend/internal/data/repos/testutil"
	types "github.com/pinlore/pinlore-backend/internal/domain"
	userdomain "github.com/pinlore/pinlore-backend/internal/domain/user"
	"github.com/pinlore/pinlore-backend/internal/platform/dbctx"
)

func TestUserRepoCreateAndLookup(t *testing.T) {
	db := testutil.DB(t)
	repo := NewUserRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background()}

	u := &types.User{
		Email:       "editor@pinlore.dev",
		Password:    "hashed",
		DisplayName: "Editor",
	}
	if err := repo.Create(dbc, u); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if u.ID == uuid.Nil {
		t.Fatalf("Create did not assign an id")
	}
	if u.Priority != userdomain.DefaultPriority {
		t.Fatalf("Priority = %d, want default %d", u.Priority, userdomain.DefaultPriority)
	}

	byID, err := repo.GetByID(dbc, u.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if byID == nil || byID.Email != "editor@pinlore.dev" {
		t.Fatalf("GetByID = %+v", byID)
	}

	byEmail, err := repo.GetByEmail(dbc, "editor@pinlore.dev")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if byEmail == nil || byEmail.ID != u.ID {
		t.Fatalf("GetByEmail = %+v", byEmail)
	}

	exists, err := repo.EmailExists(dbc, "editor@pinlore.dev")
	if err != nil {
		t.Fatalf("EmailExists: %v", err)
	}
	if !exists {
		t.Fatalf("EmailExists = false for seeded email")
	}
	exists, err = repo.EmailExists(dbc, "nobody@pinlore.dev")
	if err != nil {
		t.Fatalf("EmailExists: %v", err)
	}
	if exists {
		t.Fatalf("EmailExists = true for unknown email")
	}
}

func TestUserRepoMissingRowsAreNil(t *testing.T) {
	db := testutil.DB(t)
	repo := NewUserRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background()}

	got, err := repo.GetByID(dbc, uuid.New())
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got != nil {
		t.Fatalf("GetByID = %+v, want nil", got)
	}

	got, err = repo.GetByEmail(dbc, "ghost@pinlore.dev")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if got != nil {
		t.Fatalf("GetByEmail = %+v, want nil", got)
	}
}

func TestUserRepoGetByIDs(t *testing.T) {
	db := testutil.DB(t)
	repo := NewUserRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background()}

	a := testutil.SeedUser(t, dbc.Ctx, db, "a@pinlore.dev", 10000)
	testutil.SeedUser(t, dbc.Ctx, db, "b@pinlore.dev", 10000)

	got, err := repo.GetByIDs(dbc, []uuid.UUID{a.ID})
	if err != nil {
		t.Fatalf("GetByIDs: %v", err)
	}
	if len(got) != 1 || got[0].ID != a.ID {
		t.Fatalf("GetByIDs = %+v, want just %s", got, a.ID)
	}

	got, err = repo.GetByIDs(dbc, nil)
	if err != nil {
		t.Fatalf("GetByIDs(nil): %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("GetByIDs(nil) = %d rows, want 0", len(got))
	}
}
