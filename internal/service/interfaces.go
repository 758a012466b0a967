package service

import (
	"context"
	"time"

	"github.com/pageza/recipe-remix/backend/internal/model"
)

// RecipeFetcher produces recipes for an ingredient prompt
type RecipeFetcher interface {
	FetchRecipes(ctx context.Context, prompt string) ([]model.Recipe, error)
}

// CookbookStore is the append-only list of saved recipes
type CookbookStore interface {
	Save(ctx context.Context, recipe model.Recipe) error
	List(ctx context.Context) ([]model.Recipe, error)
}

// ObjectStore is where published exports are uploaded
type ObjectStore interface {
	PutObject(ctx context.Context, key string, data []byte, contentType string) error
	GeneratePresignedURL(ctx context.Context, key string, expiration time.Duration) (string, error)
}

var (
	_ RecipeFetcher = (*RecipeClient)(nil)
	_ CookbookStore = (*RedisCookbook)(nil)
	_ CookbookStore = (*DatabaseCookbook)(nil)
	_ CookbookStore = (*MemoryCookbook)(nil)
)
