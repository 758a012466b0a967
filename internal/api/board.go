package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pageza/recipe-remix/backend/internal/service"
)

// BoardHandler exposes the recipe board over JSON and server-sent events
type BoardHandler struct {
	board  *service.Board
	logger *zap.Logger
}

// NewBoardHandler creates a BoardHandler
func NewBoardHandler(board *service.Board, log *zap.Logger) *BoardHandler {
	return &BoardHandler{board: board, logger: log}
}

// RegisterRoutes mounts the board endpoints. limit guards the endpoints that
// call the chat-completion API.
func (h *BoardHandler) RegisterRoutes(router *gin.RouterGroup, limit gin.HandlerFunc) {
	router.GET("/state", h.State)
	router.PUT("/query", h.SetQuery)
	router.POST("/search", limit, h.Search)
	router.POST("/remix", limit, h.Remix)
	router.GET("/events", h.Events)
}

// State returns the current query, loading flag and recipes
func (h *BoardHandler) State(c *gin.Context) {
	c.JSON(http.StatusOK, h.board.Snapshot())
}

// SetQuery captures the ingredient query without searching
func (h *BoardHandler) SetQuery(c *gin.Context) {
	var req QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Query == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query is required"})
		return
	}

	h.board.SetQuery(*req.Query)
	c.JSON(http.StatusOK, h.board.Snapshot())
}

// Search optionally replaces the query, then fetches recipes for it. An
// empty body, chunked or not, keeps the stored query. Fetch failures are
// logged by the board and the previous recipes are returned.
func (h *BoardHandler) Search(c *gin.Context) {
	var req QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Query != nil {
		h.board.SetQuery(*req.Query)
	}

	if !h.board.Search(c.Request.Context()) {
		h.logger.Debug("[BoardHandler] search skipped, query is empty")
	}
	c.JSON(http.StatusOK, h.board.Snapshot())
}

// Remix fetches recipes for the current query made spicier
func (h *BoardHandler) Remix(c *gin.Context) {
	h.board.Remix(c.Request.Context())
	c.JSON(http.StatusOK, h.board.Snapshot())
}

// Events streams a "state" event with the current board and one after every change
func (h *BoardHandler) Events(c *gin.Context) {
	subscriber := uuid.NewString()
	updates := h.board.Subscribe()
	defer h.board.Unsubscribe(updates)

	h.logger.Debug("[BoardHandler] event stream opened", zap.String("subscriber", subscriber))
	defer h.logger.Debug("[BoardHandler] event stream closed", zap.String("subscriber", subscriber))

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	c.SSEvent("state", h.board.Snapshot())
	c.Writer.Flush()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case state, ok := <-updates:
			if !ok {
				return
			}
			c.SSEvent("state", state)
			c.Writer.Flush()
		}
	}
}
