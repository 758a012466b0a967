package api

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestHealthCheck(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		router := gin.New()
		router.GET("/health", NewHealthHandler(map[string]HealthCheckFunc{
			"redis": func(context.Context) error { return nil },
		}, zap.NewNop()).HealthCheck)

		w := PerformRequest(router, http.MethodGet, "/health", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status":"healthy","message":"Recipe Remix API is running","checks":{"redis":"ok"}}`, w.Body.String())
	})

	t.Run("backend down", func(t *testing.T) {
		router := gin.New()
		router.GET("/health", NewHealthHandler(map[string]HealthCheckFunc{
			"redis":    func(context.Context) error { return nil },
			"database": func(context.Context) error { return errors.New("connection refused") },
		}, zap.NewNop()).HealthCheck)

		w := PerformRequest(router, http.MethodGet, "/health", nil)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.JSONEq(t, `{"status":"unhealthy","message":"Recipe Remix API is running","checks":{"redis":"ok","database":"connection refused"}}`, w.Body.String())
	})

	t.Run("no backends", func(t *testing.T) {
		router := gin.New()
		router.GET("/health", NewHealthHandler(nil, zap.NewNop()).HealthCheck)

		w := PerformRequest(router, http.MethodGet, "/health", nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
