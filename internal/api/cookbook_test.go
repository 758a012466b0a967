package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pageza/recipe-remix/backend/internal/mocks"
)

func TestCookbookHandler_SaveAndList(t *testing.T) {
	env := setupTestRouter(t, false)

	w := PerformRequest(env.router, http.MethodGet, "/api/v1/cookbook", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"recipes":[]}`, w.Body.String())

	// Saving the same recipe twice keeps both copies
	for i := 0; i < 2; i++ {
		w = PerformRequest(env.router, http.MethodPost, "/api/v1/cookbook", testRecipes[0])
		require.Equal(t, http.StatusCreated, w.Code)
	}
	w = PerformRequest(env.router, http.MethodPost, "/api/v1/cookbook", testRecipes[1])
	require.Equal(t, http.StatusCreated, w.Code)

	w = PerformRequest(env.router, http.MethodGet, "/api/v1/cookbook", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp CookbookResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Recipes, 3)
	assert.Equal(t, testRecipes[0], resp.Recipes[0])
	assert.Equal(t, testRecipes[0], resp.Recipes[1])
	assert.Equal(t, testRecipes[1], resp.Recipes[2])
}

func TestCookbookHandler_BadBody(t *testing.T) {
	env := setupTestRouter(t, false)

	w := PerformRequest(env.router, http.MethodPost, "/api/v1/cookbook", []string{"not", "a", "recipe"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	saved, err := env.cookbook.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, saved)
}

func TestCookbookHandler_StoreErrors(t *testing.T) {
	store := &mocks.MockCookbookStore{}
	store.On("Save", mock.Anything, testRecipes[0]).Return(errors.New("redis: connection refused"))
	store.On("List", mock.Anything).Return(nil, errors.New("redis: connection refused"))

	router := gin.New()
	NewCookbookHandler(store, nil, zap.NewNop()).RegisterRoutes(router.Group("/api/v1"))

	w := PerformRequest(router, http.MethodPost, "/api/v1/cookbook", testRecipes[0])
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Failed to save recipe"}`, w.Body.String())

	w = PerformRequest(router, http.MethodGet, "/api/v1/cookbook", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	store.AssertExpectations(t)
}
