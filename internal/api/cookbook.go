package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/recipe-remix/backend/internal/metrics"
	"github.com/pageza/recipe-remix/backend/internal/model"
	"github.com/pageza/recipe-remix/backend/internal/service"
)

// CookbookHandler appends to and lists the saved recipes
type CookbookHandler struct {
	store   service.CookbookStore
	metrics *metrics.Collector
	logger  *zap.Logger
}

// NewCookbookHandler creates a CookbookHandler
func NewCookbookHandler(store service.CookbookStore, m *metrics.Collector, log *zap.Logger) *CookbookHandler {
	return &CookbookHandler{store: store, metrics: m, logger: log}
}

func (h *CookbookHandler) RegisterRoutes(router *gin.RouterGroup) {
	cookbook := router.Group("/cookbook")
	{
		cookbook.GET("", h.ListRecipes)
		cookbook.POST("", h.SaveRecipe)
	}
}

// ListRecipes returns every saved recipe in save order
func (h *CookbookHandler) ListRecipes(c *gin.Context) {
	recipes, err := h.store.List(c.Request.Context())
	if err != nil {
		h.logger.Error("[CookbookHandler] failed to list cookbook", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cookbook"})
		return
	}
	c.JSON(http.StatusOK, CookbookResponse{Recipes: recipes})
}

// SaveRecipe appends the posted recipe. Duplicates are kept.
func (h *CookbookHandler) SaveRecipe(c *gin.Context) {
	var recipe model.Recipe
	if err := c.ShouldBindJSON(&recipe); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.save(c.Request.Context(), recipe); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save recipe"})
		return
	}
	c.JSON(http.StatusCreated, recipe)
}

func (h *CookbookHandler) save(ctx context.Context, recipe model.Recipe) error {
	err := h.store.Save(ctx, recipe)
	h.metrics.ObserveCookbookSave(err)
	if err != nil {
		h.logger.Error("[CookbookHandler] failed to save recipe",
			zap.String("title", recipe.Title),
			zap.Error(err))
		return err
	}
	h.logger.Info("[CookbookHandler] recipe saved", zap.String("title", recipe.Title))
	return nil
}
