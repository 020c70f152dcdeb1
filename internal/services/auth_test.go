package services

import (
	"context"
	"net/http"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/pinlore/pinlore-backend/internal/data/repos"
	"github.com/pinlore/pinlore-backend/internal/data/repos/testutil"
	types "github.com/pinlore/pinlore-backend/internal/domain"
	"github.com/pinlore/pinlore-backend/internal/platform/apierr"
	"github.com/pinlore/pinlore-backend/internal/platform/ctxutil"
	"github.com/pinlore/pinlore-backend/internal/platform/dbctx"
)

func newAuthEnv(t *testing.T) AuthService {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	userRepo := repos.NewUserRepo(db, log)
	return NewAuthService(db, log, userRepo, "test-secret", time.Hour)
}

func TestRegisterLoginRoundTrip(t *testing.T) {
	svc := newAuthEnv(t)
	dbc := dbctx.Context{Ctx: context.Background()}

	user, token, err := svc.Register(dbc, "Casey@PinLore.dev", "hunter2hunter2", "Casey")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.Email != "casey@pinlore.dev" {
		t.Fatalf("email not normalized: %q", user.Email)
	}
	if token == "" {
		t.Fatalf("no access token issued")
	}
	if user.Password == "hunter2hunter2" {
		t.Fatalf("password stored in plaintext")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("hunter2hunter2")); err != nil {
		t.Fatalf("stored hash does not verify: %v", err)
	}
	if user.Priority != types.DefaultUserPriority {
		t.Fatalf("priority = %d, want %d", user.Priority, types.DefaultUserPriority)
	}

	_, loginToken, err := svc.Login(dbc, "casey@pinlore.dev", "hunter2hunter2")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	ctx, err := svc.SetContextFromToken(context.Background(), loginToken)
	if err != nil {
		t.Fatalf("SetContextFromToken: %v", err)
	}
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID != user.ID {
		t.Fatalf("request data = %+v, want user %s", rd, user.ID)
	}
	if rd.DisplayName != "Casey" {
		t.Fatalf("display name = %q", rd.DisplayName)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := newAuthEnv(t)
	dbc := dbctx.Context{Ctx: context.Background()}

	if _, _, err := svc.Register(dbc, "casey@pinlore.dev", "hunter2hunter2", ""); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if _, _, err := svc.Login(dbc, "casey@pinlore.dev", "wrong-password"); err == nil {
		t.Fatalf("expected login failure")
	} else if ae := apierr.From(err); ae.Status != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", ae.Status)
	}

	if _, _, err := svc.Login(dbc, "nobody@pinlore.dev", "hunter2hunter2"); err == nil {
		t.Fatalf("expected unknown-user failure")
	} else if ae := apierr.From(err); ae.Status != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", ae.Status)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc := newAuthEnv(t)
	dbc := dbctx.Context{Ctx: context.Background()}

	if _, _, err := svc.Register(dbc, "not-an-email", "hunter2hunter2", ""); err == nil {
		t.Fatalf("expected invalid email rejection")
	}
	if _, _, err := svc.Register(dbc, "casey@pinlore.dev", "short", ""); err == nil {
		t.Fatalf("expected weak password rejection")
	}

	if _, _, err := svc.Register(dbc, "casey@pinlore.dev", "hunter2hunter2", ""); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, _, err := svc.Register(dbc, "casey@pinlore.dev", "hunter2hunter2", ""); err == nil {
		t.Fatalf("expected duplicate email rejection")
	} else if ae := apierr.From(err); ae.Status != http.StatusConflict {
		t.Fatalf("status = %d, want 409", ae.Status)
	}
}

func TestSetContextFromTokenRejectsGarbage(t *testing.T) {
	svc := newAuthEnv(t)

	if _, err := svc.SetContextFromToken(context.Background(), "not.a.token"); err == nil {
		t.Fatalf("expected parse failure")
	} else if ae := apierr.From(err); ae.Status != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", ae.Status)
	}
}
