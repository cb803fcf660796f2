package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "budgetry/internal/errors"
	"budgetry/internal/models"
	"budgetry/internal/recurring"
)

const otherOwnerID = "0190f3a2-7c4e-7b1a-9d35-2f1e8c6a4b02"

func setupSyncRouter(handler *SyncHandler) *gin.Engine {
	r := gin.New()
	r.POST("/pipeline/sync", handler.SyncOwners)
	return r
}

func TestSyncHandler_SyncOwners(t *testing.T) {
	t.Run("reports each owner separately", func(t *testing.T) {
		svc := &mockPeriodService{
			syncCurrentPeriodFn: func(_ context.Context, ownerID string) (*recurring.SyncResult, error) {
				if ownerID == otherOwnerID {
					return nil, apperrors.ErrPersistence
				}
				return &recurring.SyncResult{
					Period:  &models.BudgetPeriod{Base: models.Base{ID: "p1"}},
					Created: []models.Transaction{{}, {}},
				}, nil
			},
		}
		r := setupSyncRouter(NewSyncHandler(svc))

		rec := doRequest(r, "POST", "/pipeline/sync",
			`{"owner_ids":["`+testOwnerID+`","`+otherOwnerID+`"]}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		results := parseJSON(t, rec)["results"].([]interface{})
		if len(results) != 2 {
			t.Fatalf("expected 2 results, got %d", len(results))
		}
		first := results[0].(map[string]interface{})
		if first["period_id"] != "p1" || first["created"].(float64) != 2 {
			t.Errorf("unexpected first result %v", first)
		}
		second := results[1].(map[string]interface{})
		errObj := second["error"].(map[string]interface{})
		if errObj["code"] != "PERSISTENCE_ERROR" {
			t.Errorf("expected PERSISTENCE_ERROR, got %v", errObj["code"])
		}
	})

	t.Run("returns 400 on empty owner list", func(t *testing.T) {
		r := setupSyncRouter(NewSyncHandler(&mockPeriodService{}))

		rec := doRequest(r, "POST", "/pipeline/sync", `{"owner_ids":[]}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("returns 400 on malformed owner id", func(t *testing.T) {
		r := setupSyncRouter(NewSyncHandler(&mockPeriodService{}))

		rec := doRequest(r, "POST", "/pipeline/sync", `{"owner_ids":["not-a-uuid"]}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}
