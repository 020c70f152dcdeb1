package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pinlore/pinlore-backend/internal/data/repos"
	"github.com/pinlore/pinlore-backend/internal/data/repos/testutil"
	types "github.com/pinlore/pinlore-backend/internal/domain"
	httpH "github.com/pinlore/pinlore-backend/internal/http/handlers"
	httpMW "github.com/pinlore/pinlore-backend/internal/http/middleware"
	"github.com/pinlore/pinlore-backend/internal/invalidation"
	"github.com/pinlore/pinlore-backend/internal/ledger"
	"github.com/pinlore/pinlore-backend/internal/resolve"
	"github.com/pinlore/pinlore-backend/internal/services"
)

type apiEnv struct {
	db     *gorm.DB
	router *gin.Engine
}

func newAPIEnv(t *testing.T) *apiEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

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
	catalogService := services.NewCatalogService(
		db, log,
		machineRepo, manufacturerRepo, manufacturerEntityRepo,
		personRepo, awardRepo, sourceRepo, typeProfileRepo,
		designCreditRepo, awardRecipientRepo,
	)
	activityService := services.NewActivityService(db, log, claimRepo, sourceRepo, userRepo)
	curationService := services.NewCurationService(
		db, log, ledgerService, resolveService, catalogService, activityService,
		invalidation.NewNopPublisher(),
	)
	authService := services.NewAuthService(db, log, userRepo, "router-test-secret", time.Hour)

	router := NewRouter(RouterConfig{
		Log:             log,
		AuthHandler:     httpH.NewAuthHandler(authService),
		AuthMiddleware:  httpMW.NewAuthMiddleware(log, authService),
		MachineHandler:  httpH.NewMachineHandler(catalogService, activityService),
		CatalogHandler:  httpH.NewCatalogHandler(catalogService),
		CurationHandler: httpH.NewCurationHandler(curationService),
		HealthHandler:   httpH.NewHealthHandler(db),
	})
	return &apiEnv{db: db, router: router}
}

func (e *apiEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var envelope struct {
		Data map[string]interface{} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return envelope.Data
}

func TestEditFlowOverHTTP(t *testing.T) {
	env := newAPIEnv(t)
	ctx := context.Background()

	source := testutil.SeedSource(t, ctx, env.db, "ipdb", 100)
	machine := testutil.SeedMachine(t, ctx, env.db, "Twilight Zone", "twilight-zone")
	subject := types.Subject{Kind: types.KindMachine, ID: machine.ID}
	testutil.SeedSourceClaim(t, ctx, env.db, source.ID, subject, "year", "year", `1992`)

	// Register an editor and capture the access token.
	rec := env.do(t, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"email":        "casey@pinlore.dev",
		"password":     "hunter2hunter2",
		"display_name": "Casey",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d, body %s", rec.Code, rec.Body.String())
	}
	token, _ := decodeData(t, rec)["access_token"].(string)
	if token == "" {
		t.Fatalf("no access token in register response")
	}

	// Claims cannot be edited anonymously.
	rec = env.do(t, http.MethodPatch, "/api/v1/machine/twilight-zone/claims", "", gin.H{
		"claims": gin.H{"year": 1993},
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous edit status = %d, want 401", rec.Code)
	}

	// Authenticated edit lands, re-resolves, and returns fresh state.
	rec = env.do(t, http.MethodPatch, "/api/v1/machine/twilight-zone/claims", token, gin.H{
		"claims":   gin.H{"year": 1993},
		"citation": "service bulletin",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("edit status = %d, body %s", rec.Code, rec.Body.String())
	}
	data := decodeData(t, rec)
	entity, _ := data["entity"].(map[string]interface{})
	if got, _ := entity["year"].(float64); got != 1993 {
		t.Fatalf("entity year = %v, want 1993", entity["year"])
	}
	activity, _ := data["activity"].([]interface{})
	if len(activity) != 2 {
		t.Fatalf("activity entries = %d, want 2", len(activity))
	}

	// Uneditable fields are rejected with the offending names.
	rec = env.do(t, http.MethodPatch, "/api/v1/machine/twilight-zone/claims", token, gin.H{
		"claims": gin.H{"credit": gin.H{}, "year": 1994},
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("whitelist status = %d, body %s", rec.Code, rec.Body.String())
	}

	// The read surface reflects the resolved edit.
	rec = env.do(t, http.MethodGet, "/api/v1/machines/twilight-zone", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("detail status = %d", rec.Code)
	}
	detail := decodeData(t, rec)
	if got, _ := detail["year"].(float64); got != 1993 {
		t.Fatalf("detail year = %v, want 1993", detail["year"])
	}

	rec = env.do(t, http.MethodGet, "/api/v1/machines/twilight-zone/activity", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("activity status = %d", rec.Code)
	}
	feedData := decodeData(t, rec)
	feed, _ := feedData["activity"].([]interface{})
	if len(feed) != 2 {
		t.Fatalf("activity feed = %d entries, want 2", len(feed))
	}
	head, _ := feed[0].(map[string]interface{})
	if head["attributor_kind"] != "editor" || head["is_winner"] != true {
		t.Fatalf("newest activity entry = %+v, want winning editor claim", head)
	}

	rec = env.do(t, http.MethodGet, "/api/v1/machines?year=1993", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	list := decodeData(t, rec)
	if got, _ := list["total"].(float64); got != 1 {
		t.Fatalf("list total = %v, want 1", list["total"])
	}
}

func TestReadEndpointsAndHealth(t *testing.T) {
	env := newAPIEnv(t)
	ctx := context.Background()

	testutil.SeedSource(t, ctx, env.db, "opdb", 50)
	man := testutil.SeedManufacturer(t, ctx, env.db, "Williams", "williams")
	for i := 0; i < 3; i++ {
		m := testutil.SeedMachine(t, ctx, env.db, fmt.Sprintf("Game %d", i), fmt.Sprintf("game-%d", i))
		if err := env.db.Model(&types.Machine{}).Where("id = ?", m.ID).
			Update("manufacturer_id", man.ID).Error; err != nil {
			t.Fatalf("link manufacturer: %v", err)
		}
	}

	rec := env.do(t, http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("healthz = %d %q", rec.Code, rec.Body.String())
	}

	rec = env.do(t, http.MethodGet, "/api/v1/manufacturers/williams", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("manufacturer status = %d", rec.Code)
	}
	detail := decodeData(t, rec)
	if got, _ := detail["machine_count"].(float64); got != 3 {
		t.Fatalf("machine_count = %v, want 3", detail["machine_count"])
	}

	rec = env.do(t, http.MethodGet, "/api/v1/machines?manufacturer=williams&limit=2", "", nil)
	list := decodeData(t, rec)
	if got, _ := list["total"].(float64); got != 3 {
		t.Fatalf("filtered total = %v, want 3", list["total"])
	}
	machines, _ := list["machines"].([]interface{})
	if len(machines) != 2 {
		t.Fatalf("page size = %d, want 2", len(machines))
	}

	rec = env.do(t, http.MethodGet, "/api/v1/machines/nope", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing machine status = %d, want 404", rec.Code)
	}
	var envlp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envlp); err != nil {
		t.Fatalf("decode error envelope: %v", err)
	}
	if envlp.Error.Code != "machine_not_found" {
		t.Fatalf("error code = %q", envlp.Error.Code)
	}

	rec = env.do(t, http.MethodGet, "/api/v1/sources", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("sources status = %d", rec.Code)
	}
	sources := decodeData(t, rec)
	if items, _ := sources["sources"].([]interface{}); len(items) != 1 {
		t.Fatalf("sources = %d, want 1", len(items))
	}
}
