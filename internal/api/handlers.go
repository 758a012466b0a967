package api

import (
	"context"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HealthCheckFunc probes one backend
type HealthCheckFunc func(ctx context.Context) error

// HealthHandler reports the health of the service and its backends
type HealthHandler struct {
	checks map[string]HealthCheckFunc
	logger *zap.Logger
}

// NewHealthHandler creates a HealthHandler running the given checks
func NewHealthHandler(checks map[string]HealthCheckFunc, log *zap.Logger) *HealthHandler {
	return &HealthHandler{checks: checks, logger: log}
}

// HealthCheck returns the health status of the API
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := http.StatusOK
	resp := HealthResponse{
		Status:  "healthy",
		Message: "Recipe Remix API is running",
		Checks:  make(map[string]string, len(names)),
	}
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			h.logger.Warn("[Health] backend check failed", zap.String("backend", name), zap.Error(err))
			resp.Checks[name] = err.Error()
			resp.Status = "unhealthy"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "ok"
	}

	c.JSON(status, resp)
}

// parseIndex reads the :index card parameter. It answers 400 itself when the
// parameter is not a number.
func parseIndex(c *gin.Context) (int, bool) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipe index"})
		return 0, false
	}
	return index, true
}
