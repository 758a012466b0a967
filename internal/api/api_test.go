package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pageza/recipe-remix/backend/internal/metrics"
	"github.com/pageza/recipe-remix/backend/internal/mocks"
	"github.com/pageza/recipe-remix/backend/internal/model"
	"github.com/pageza/recipe-remix/backend/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var testRecipes = []model.Recipe{
	{
		Title:       "Chicken Fried Rice",
		Description: "Quick weeknight rice",
		Ingredients: []string{"chicken", "rice", "egg"},
		Steps:       []string{"Cook rice", "Fry chicken", "Combine"},
	},
	{
		Title:       "Spinach Salad",
		Description: "Fresh and green",
		Ingredients: []string{"spinach", "lemon"},
		Steps:       []string{"Toss"},
	},
}

type testEnv struct {
	router   *gin.Engine
	board    *service.Board
	fetcher  *mocks.MockRecipeFetcher
	cookbook *service.MemoryCookbook
	store    *mocks.MockObjectStore
}

func passThrough(c *gin.Context) { c.Next() }

// setupTestRouter wires the handlers the same way the router package does,
// with a mocked chat-completion client and an in-memory cookbook
func setupTestRouter(t *testing.T, publish bool) *testEnv {
	t.Helper()

	log := zap.NewNop()
	m := metrics.New()
	env := &testEnv{
		fetcher:  &mocks.MockRecipeFetcher{},
		cookbook: service.NewMemoryCookbook(),
		store:    &mocks.MockObjectStore{},
	}
	env.board = service.NewBoard(env.fetcher, m, log)

	var exporter *service.Exporter
	if publish {
		exporter = service.NewExporter(env.store, 0, log)
	} else {
		exporter = service.NewExporter(nil, 0, log)
	}

	templates, err := Templates()
	require.NoError(t, err)

	router := gin.New()
	router.SetHTMLTemplate(templates)

	cookbookHandler := NewCookbookHandler(env.cookbook, m, log)
	exportHandler := NewExportHandler(exporter, m, log)
	NewPageHandler(env.board, cookbookHandler, exportHandler, log).RegisterRoutes(router, passThrough)

	v1 := router.Group("/api/v1")
	NewBoardHandler(env.board, log).RegisterRoutes(v1, passThrough)
	cookbookHandler.RegisterRoutes(v1)
	exportHandler.RegisterRoutes(v1)

	env.router = router
	return env
}

// PerformRequest sends a JSON request through the router
func PerformRequest(router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// PerformForm sends a url-encoded form through the router
func PerformForm(router http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeState(t *testing.T, w *httptest.ResponseRecorder) service.BoardState {
	t.Helper()
	var state service.BoardState
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	return state
}
