package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"budgetry/internal/logger"
	"budgetry/internal/middleware"
	"budgetry/internal/models"
	"budgetry/internal/pagination"
	"budgetry/internal/recurring"
	"budgetry/internal/services"
	"budgetry/internal/validator"
)

const (
	testOwnerID      = "0190f3a2-7c4e-7b1a-9d35-2f1e8c6a4b01"
	testObligationID = "0190f3a2-7c4e-7b1a-9d35-2f1e8c6a4b10"
)

// --- mock services ---

type mockAuditService struct {
	actions []string
}

func (m *mockAuditService) Log(_, action, _, _, _ string, _ map[string]interface{}) {
	m.actions = append(m.actions, action)
}

type mockPeriodService struct {
	openPeriodFn        func(ctx context.Context, ownerID string, year, month int) (*services.PeriodView, error)
	syncCurrentPeriodFn func(ctx context.Context, ownerID string) (*recurring.SyncResult, error)
}

func (m *mockPeriodService) OpenPeriod(ctx context.Context, ownerID string, year, month int) (*services.PeriodView, error) {
	if m.openPeriodFn != nil {
		return m.openPeriodFn(ctx, ownerID, year, month)
	}
	return &services.PeriodView{}, nil
}

func (m *mockPeriodService) SyncCurrentPeriod(ctx context.Context, ownerID string) (*recurring.SyncResult, error) {
	if m.syncCurrentPeriodFn != nil {
		return m.syncCurrentPeriodFn(ctx, ownerID)
	}
	return &recurring.SyncResult{Period: &models.BudgetPeriod{}}, nil
}

var _ services.PeriodServicer = (*mockPeriodService)(nil)

type mockObligationService struct {
	createFn func(ctx context.Context, ownerID string, in services.ObligationInput) (*models.Obligation, error)
	getFn    func(ctx context.Context, ownerID, obligationID string) (*models.Obligation, error)
	listFn   func(ctx context.Context, ownerID string, filter recurring.ObligationFilter, page pagination.PageRequest) (*pagination.PageResponse[models.Obligation], error)
	updateFn func(ctx context.Context, ownerID, obligationID string, in services.ObligationUpdate) (*models.Obligation, error)
	toggleFn func(ctx context.Context, ownerID, obligationID string, active bool) (*models.Obligation, error)
	deleteFn func(ctx context.Context, ownerID, obligationID string) error
	payFn    func(ctx context.Context, ownerID, obligationID string, count int) (*recurring.PayResult, error)
}

func (m *mockObligationService) CreateObligation(ctx context.Context, ownerID string, in services.ObligationInput) (*models.Obligation, error) {
	if m.createFn != nil {
		return m.createFn(ctx, ownerID, in)
	}
	return &models.Obligation{}, nil
}

func (m *mockObligationService) GetObligation(ctx context.Context, ownerID, obligationID string) (*models.Obligation, error) {
	if m.getFn != nil {
		return m.getFn(ctx, ownerID, obligationID)
	}
	return &models.Obligation{}, nil
}

func (m *mockObligationService) ListObligations(ctx context.Context, ownerID string, filter recurring.ObligationFilter, page pagination.PageRequest) (*pagination.PageResponse[models.Obligation], error) {
	if m.listFn != nil {
		return m.listFn(ctx, ownerID, filter, page)
	}
	resp := pagination.NewPageResponse([]models.Obligation{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockObligationService) UpdateObligation(ctx context.Context, ownerID, obligationID string, in services.ObligationUpdate) (*models.Obligation, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, ownerID, obligationID, in)
	}
	return &models.Obligation{}, nil
}

func (m *mockObligationService) ToggleObligation(ctx context.Context, ownerID, obligationID string, active bool) (*models.Obligation, error) {
	if m.toggleFn != nil {
		return m.toggleFn(ctx, ownerID, obligationID, active)
	}
	return &models.Obligation{IsActive: active}, nil
}

func (m *mockObligationService) DeleteObligation(ctx context.Context, ownerID, obligationID string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, ownerID, obligationID)
	}
	return nil
}

func (m *mockObligationService) PayFutureOccurrences(ctx context.Context, ownerID, obligationID string, count int) (*recurring.PayResult, error) {
	if m.payFn != nil {
		return m.payFn(ctx, ownerID, obligationID, count)
	}
	return &recurring.PayResult{}, nil
}

var _ services.ObligationServicer = (*mockObligationService)(nil)

// --- test helpers ---

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test", "error")
	validator.Register()
}

func injectUserID(uid string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDKey, uid)
		c.Next()
	}
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func assertErrorCode(t *testing.T, result map[string]interface{}, code string) {
	t.Helper()
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object in response, got: %v", result)
	}
	if errObj["code"] != code {
		t.Errorf("expected error code %q, got %q", code, errObj["code"])
	}
}
