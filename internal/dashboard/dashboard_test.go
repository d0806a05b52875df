package dashboard

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"item_catalog/internal/apperror"
	"item_catalog/internal/item"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type brokenCounter struct{}

func (brokenCounter) Count(context.Context) (int64, error) {
	return 0, errors.New("connection refused")
}

func serve(service DashboardServiceInterface) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/dashboard", NewDashboardController(service).GetDashboard)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	return w
}

func TestItemCount(t *testing.T) {
	repo := item.NewMemoryRepository()
	require.NoError(t, repo.Create(context.Background(), &item.Item{ID: "a"}))
	require.NoError(t, repo.Create(context.Background(), &item.Item{ID: "b"}))

	n, err := NewDashboardService(repo, nil).ItemCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestItemCount_StoreFailure(t *testing.T) {
	_, err := NewDashboardService(brokenCounter{}, nil).ItemCount(context.Background())

	assert.Equal(t, apperror.KindStore, apperror.KindOf(err))
}

func TestGetDashboardHandler(t *testing.T) {
	w := serve(NewDashboardService(item.NewMemoryRepository(), nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"itemCount":0}`, w.Body.String())
}

func TestGetDashboardHandler_StoreFailure(t *testing.T) {
	w := serve(NewDashboardService(brokenCounter{}, nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"message":"Error counting items"}`, w.Body.String())
}
