package governance

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type stubService struct {
	Service
	updateAssetStage func(ctx context.Context, req UpdateAssetStageRequest) (*AssetInstance, error)
}

func (s *stubService) UpdateAssetStage(ctx context.Context, req UpdateAssetStageRequest) (*AssetInstance, error) {
	return s.updateAssetStage(ctx, req)
}

func newTestRouter(service Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	principalID := uuid.New()
	router.Use(func(c *gin.Context) {
		c.Set("principal_id", principalID)
	})
	api := router.Group("/api/v1")
	NewHandler(service, zap.NewNop()).RegisterRoutes(api)
	return router
}

func TestHandlerRejectsMalformedBody(t *testing.T) {
	called := false
	router := newTestRouter(&stubService{
		updateAssetStage: func(context.Context, UpdateAssetStageRequest) (*AssetInstance, error) {
			called = true
			return nil, nil
		},
	})

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/categories/5/assets/12/stage", strings.NewReader(`{"stage": "damage"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// Missing action fails binding before the orchestrator is reached.
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, called)
}

func TestHandlerRejectsNonNumericID(t *testing.T) {
	router := newTestRouter(&stubService{})

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/categories/abc/assets/12/stage", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandlerMapsErrorKinds(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{errInvalidTransition("nope"), http.StatusBadRequest},
		{errForbidden("nope"), http.StatusForbidden},
		{errNotFound("nope"), http.StatusNotFound},
		{errInternal("nope", nil), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		router := newTestRouter(&stubService{
			updateAssetStage: func(context.Context, UpdateAssetStageRequest) (*AssetInstance, error) {
				return nil, tc.err
			},
		})

		body := `{"action": "DamageApprove", "stage": "damage"}`
		req := httptest.NewRequest(http.MethodPatch, "/api/v1/categories/5/assets/12/stage", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, tc.status, w.Code)
	}
}

func TestHandlerCommitsTransition(t *testing.T) {
	var got UpdateAssetStageRequest
	router := newTestRouter(&stubService{
		updateAssetStage: func(_ context.Context, req UpdateAssetStageRequest) (*AssetInstance, error) {
			got = req
			return &AssetInstance{ID: req.AssetID, CategoryID: req.CategoryID, Status: AssetInventory, Stage: req.Stage}, nil
		},
	})

	body := `{"action": "DamageApprove", "stage": "damage"}`
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/categories/5/assets/12/stage", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(5), got.CategoryID)
	assert.Equal(t, int64(12), got.AssetID)
	assert.Equal(t, ActionDamageApprove, got.Action)
	assert.Equal(t, AssetStageDamage, got.Stage)
	assert.NotEqual(t, uuid.Nil, got.Principal)
}
