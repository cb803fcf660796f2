package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"budgetry/internal/calendar"
	"budgetry/internal/config"
	"budgetry/internal/logger"
	"budgetry/internal/middleware"
	"budgetry/internal/recurring"
	"budgetry/internal/server"
	"budgetry/internal/store"
	"budgetry/internal/testutil"
	"budgetry/internal/uuid"
	"budgetry/internal/validator"
)

const testSyncKey = "test-sync-key"

// testApp holds the full application stack for integration tests.
type testApp struct {
	DB     *gorm.DB
	Router *gin.Engine
}

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test", "error")
	validator.Register()
}

// setupApp creates a full application stack backed by an isolated in-memory
// SQLite database, with today fixed at 2024-03-15.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.TeardownTestDB(t, db) })

	cfg := &config.Config{
		Env:               "test",
		DataMode:          config.DataModeDatabase,
		SyncAPIKey:        testSyncKey,
		Timezone:          time.UTC,
		PayAheadMax:       24,
		HeuristicMatching: true,
	}
	app := server.NewApp(cfg, store.NewGormStore(db), server.Options{
		AuditDB: db,
		Clock:   recurring.FixedClock(calendar.New(2024, 3, 15)),
	})

	return &testApp{DB: db, Router: app.Router}
}

// newOwner returns a fresh owner id and an access token for it.
func newOwner(t *testing.T) (ownerID, token string) {
	t.Helper()
	ownerID = uuid.New()
	token, err := middleware.GenerateAccessToken(ownerID, time.Hour)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return ownerID, token
}

// request makes an HTTP request to the test router and returns the recorder.
func (app *testApp) request(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// parseJSON parses the response body into a map.
func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

// createObligation creates an obligation through the API and returns its id.
func (app *testApp) createObligation(t *testing.T, token, body string) string {
	t.Helper()
	rec := app.request("POST", "/api/v1/obligations", body, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create obligation failed: %d %s", rec.Code, rec.Body.String())
	}
	ob := parseJSON(t, rec)["obligation"].(map[string]interface{})
	return ob["id"].(string)
}

// openPeriod fetches a period view through the API.
func (app *testApp) openPeriod(t *testing.T, token string, year, month int) map[string]interface{} {
	t.Helper()
	rec := app.request("GET", fmt.Sprintf("/api/v1/periods/%d/%d", year, month), "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("open period failed: %d %s", rec.Code, rec.Body.String())
	}
	return parseJSON(t, rec)["period"].(map[string]interface{})
}

// categoryCap returns the cap of the named category in a period view, or
// false when it is absent.
func categoryCap(view map[string]interface{}, name string) (string, bool) {
	for _, c := range view["categories"].([]interface{}) {
		cat := c.(map[string]interface{})
		if cat["name"] == name {
			return cat["budget_cap"].(string), true
		}
	}
	return "", false
}

// entriesNamed returns the entries in a period view with the given name.
func entriesNamed(view map[string]interface{}, name string) []map[string]interface{} {
	var out []map[string]interface{}
	for _, e := range view["entries"].([]interface{}) {
		entry := e.(map[string]interface{})
		if entry["name"] == name {
			out = append(out, entry)
		}
	}
	return out
}

// obligationView returns the annotated obligation with the given id.
func obligationView(t *testing.T, view map[string]interface{}, id string) map[string]interface{} {
	t.Helper()
	for _, o := range view["obligations"].([]interface{}) {
		ob := o.(map[string]interface{})
		if ob["id"] == id {
			return ob
		}
	}
	t.Fatalf("obligation %s missing from period view", id)
	return nil
}

// assertDecimal compares a JSON decimal string with want numerically.
func assertDecimal(t *testing.T, got interface{}, want string) {
	t.Helper()
	s, ok := got.(string)
	if !ok {
		t.Fatalf("expected decimal string, got %T %v", got, got)
	}
	if !decimal.RequireFromString(s).Equal(decimal.RequireFromString(want)) {
		t.Errorf("expected %s, got %s", want, s)
	}
}
