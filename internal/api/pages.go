package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/recipe-remix/backend/internal/model"
	"github.com/pageza/recipe-remix/backend/internal/service"
)

// PageHandler serves the form-based HTML board
type PageHandler struct {
	board    *service.Board
	cookbook *CookbookHandler
	export   *ExportHandler
	logger   *zap.Logger
}

// NewPageHandler creates a PageHandler reusing the JSON handlers for saving and exporting
func NewPageHandler(board *service.Board, cookbook *CookbookHandler, export *ExportHandler, log *zap.Logger) *PageHandler {
	return &PageHandler{board: board, cookbook: cookbook, export: export, logger: log}
}

// RegisterRoutes mounts the HTML pages. limit guards the fetching actions.
func (h *PageHandler) RegisterRoutes(router gin.IRoutes, limit gin.HandlerFunc) {
	router.GET("/", h.Index)
	router.POST("/search", limit, h.Search)
	router.POST("/remix", limit, h.Remix)
	router.POST("/recipes/:index/save", h.SaveCard)
	router.GET("/recipes/:index/pdf", h.DownloadCard)
	router.GET("/cookbook", h.Cookbook)
}

// Index renders the board
func (h *PageHandler) Index(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", h.board.Snapshot())
}

// Search stores the submitted query and fetches in the background. The
// board is loading before the redirect so the next render polls for results.
func (h *PageHandler) Search(c *gin.Context) {
	h.board.SetQuery(c.PostForm("query"))
	h.board.StartSearch(c.Request.Context())
	c.Redirect(http.StatusSeeOther, "/")
}

// Remix fetches spicier recipes in the background
func (h *PageHandler) Remix(c *gin.Context) {
	h.board.StartRemix(c.Request.Context())
	c.Redirect(http.StatusSeeOther, "/")
}

// SaveCard appends the card at :index to the cookbook
func (h *PageHandler) SaveCard(c *gin.Context) {
	recipe, ok := h.card(c, c.PostForm("version"))
	if !ok {
		return
	}

	if err := h.cookbook.save(c.Request.Context(), recipe); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save recipe"})
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// DownloadCard returns the card at :index as a PDF attachment
func (h *PageHandler) DownloadCard(c *gin.Context) {
	recipe, ok := h.card(c, c.Query("version"))
	if !ok {
		return
	}
	h.export.writePDF(c, recipe)
}

// card resolves the :index parameter against the board version the page was
// rendered from. Without a version the current recipes are used. It answers
// the request itself when the card cannot be resolved.
func (h *PageHandler) card(c *gin.Context, version string) (model.Recipe, bool) {
	index, ok := parseIndex(c)
	if !ok {
		return model.Recipe{}, false
	}

	if version == "" {
		recipe, found := h.board.Recipe(index)
		if !found {
			c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
		}
		return recipe, found
	}

	v, err := strconv.ParseUint(version, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid board version"})
		return model.Recipe{}, false
	}
	recipe, err := h.board.RecipeAt(index, v)
	switch {
	case errors.Is(err, service.ErrBoardChanged):
		c.JSON(http.StatusConflict, gin.H{"error": "Recipes changed since the page was loaded, reload and try again"})
		return model.Recipe{}, false
	case errors.Is(err, service.ErrCardNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
		return model.Recipe{}, false
	}
	return recipe, true
}

// Cookbook renders the saved recipes
func (h *PageHandler) Cookbook(c *gin.Context) {
	recipes, err := h.cookbook.store.List(c.Request.Context())
	if err != nil {
		h.logger.Error("[PageHandler] failed to list cookbook", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cookbook"})
		return
	}
	c.HTML(http.StatusOK, "cookbook.html", CookbookResponse{Recipes: recipes})
}
