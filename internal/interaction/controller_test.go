package interaction

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"item_catalog/internal/apperror"
	"item_catalog/internal/item"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockInteractionService struct {
	mock.Mock
}

func (m *MockInteractionService) AddComment(ctx context.Context, itemID, comment string) (*item.Item, error) {
	args := m.Called(itemID, comment)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*item.Item), args.Error(1)
}

func (m *MockInteractionService) AddRating(ctx context.Context, itemID string, rating float64) (*item.Item, error) {
	args := m.Called(itemID, rating)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*item.Item), args.Error(1)
}

func setupTestRouter(service InteractionServiceInterface) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	controller := NewInteractionController(service)
	router.POST("/items/:id/comments", controller.AddComment)
	router.POST("/items/:id/ratings", controller.AddRating)
	return router
}

func post(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAddCommentHandler(t *testing.T) {
	mockService := new(MockInteractionService)
	mockService.On("AddComment", "i1", "nice").Return(&item.Item{
		ID:       "i1",
		Comments: []string{"nice"},
		Ratings:  []float64{},
	}, nil)

	w := post(setupTestRouter(mockService), "/items/i1/comments", `{"comment":"nice"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"comments":["nice"]`)
	mockService.AssertExpectations(t)
}

func TestAddCommentHandler_MissingComment(t *testing.T) {
	mockService := new(MockInteractionService)

	w := post(setupTestRouter(mockService), "/items/i1/comments", `{}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "AddComment", mock.Anything, mock.Anything)
}

func TestAddRatingHandler_WrongType(t *testing.T) {
	mockService := new(MockInteractionService)

	w := post(setupTestRouter(mockService), "/items/i1/ratings", `{"rating":"five"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAddRatingHandler_ZeroIsAccepted(t *testing.T) {
	mockService := new(MockInteractionService)
	mockService.On("AddRating", "i1", float64(0)).Return(&item.Item{ID: "i1", Ratings: []float64{0}}, nil)

	w := post(setupTestRouter(mockService), "/items/i1/ratings", `{"rating":0}`)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAddRatingHandler_NotFound(t *testing.T) {
	mockService := new(MockInteractionService)
	mockService.On("AddRating", "i1", 5.0).Return(nil, apperror.NotFound("Item not found"))

	w := post(setupTestRouter(mockService), "/items/i1/ratings", `{"rating":5}`)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
