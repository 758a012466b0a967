package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/pageza/recipe-remix/backend/config"
	"github.com/pageza/recipe-remix/backend/internal/model"
)

// maxSaveAttempts bounds optimistic-lock retries on the redis cookbook key
const maxSaveAttempts = 5

// NewCookbookStore returns the cookbook backend selected by kind
func NewCookbookStore(kind string, rdb *redis.Client, db *gorm.DB, key string) (CookbookStore, error) {
	switch kind {
	case config.CookbookRedis:
		if rdb == nil {
			return nil, fmt.Errorf("redis cookbook requires a redis client")
		}
		return NewRedisCookbook(rdb, key), nil
	case config.CookbookDatabase:
		if db == nil {
			return nil, fmt.Errorf("database cookbook requires a database")
		}
		return NewDatabaseCookbook(db), nil
	case config.CookbookMemory:
		return NewMemoryCookbook(), nil
	default:
		return nil, fmt.Errorf("unknown cookbook store %q", kind)
	}
}

// RedisCookbook keeps the whole cookbook as a JSON array under one key
type RedisCookbook struct {
	redis *redis.Client
	key   string
}

// NewRedisCookbook creates a RedisCookbook
func NewRedisCookbook(rdb *redis.Client, key string) *RedisCookbook {
	if key == "" {
		key = "cookbook"
	}
	return &RedisCookbook{redis: rdb, key: key}
}

// Save appends a recipe to the stored array
func (s *RedisCookbook) Save(ctx context.Context, recipe model.Recipe) error {
	txf := func(tx *redis.Tx) error {
		saved, err := s.read(ctx, tx.Get)
		if err != nil {
			return err
		}
		data, err := json.Marshal(append(saved, recipe))
		if err != nil {
			return fmt.Errorf("failed to marshal cookbook: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, s.key, data, 0)
			return nil
		})
		return err
	}

	for attempt := 0; attempt < maxSaveAttempts; attempt++ {
		err := s.redis.Watch(ctx, txf, s.key)
		if err == nil {
			return nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return fmt.Errorf("failed to save recipe to cookbook: %w", err)
	}
	return fmt.Errorf("failed to save recipe to cookbook: key %q kept changing", s.key)
}

// List returns every saved recipe in append order
func (s *RedisCookbook) List(ctx context.Context) ([]model.Recipe, error) {
	return s.read(ctx, s.redis.Get)
}

func (s *RedisCookbook) read(ctx context.Context, get func(context.Context, string) *redis.StringCmd) ([]model.Recipe, error) {
	data, err := get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return []model.Recipe{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cookbook from Redis: %w", err)
	}

	saved := []model.Recipe{}
	if err := json.Unmarshal(data, &saved); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cookbook: %w", err)
	}
	return saved, nil
}

// DatabaseCookbook stores each saved recipe as a row
type DatabaseCookbook struct {
	db *gorm.DB
}

// NewDatabaseCookbook creates a DatabaseCookbook
func NewDatabaseCookbook(db *gorm.DB) *DatabaseCookbook {
	return &DatabaseCookbook{db: db}
}

// Save inserts a row for the recipe
func (s *DatabaseCookbook) Save(ctx context.Context, recipe model.Recipe) error {
	if err := s.db.WithContext(ctx).Create(model.NewCookbookEntry(recipe)).Error; err != nil {
		return fmt.Errorf("failed to save recipe to cookbook: %w", err)
	}
	return nil
}

// List returns the rows in insertion order
func (s *DatabaseCookbook) List(ctx context.Context) ([]model.Recipe, error) {
	var entries []model.CookbookEntry
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to list cookbook: %w", err)
	}

	recipes := make([]model.Recipe, len(entries))
	for i := range entries {
		recipes[i] = entries[i].Recipe()
	}
	return recipes, nil
}

// MemoryCookbook is a process-local cookbook
type MemoryCookbook struct {
	mu      sync.Mutex
	recipes []model.Recipe
}

// NewMemoryCookbook creates an empty MemoryCookbook
func NewMemoryCookbook() *MemoryCookbook {
	return &MemoryCookbook{recipes: []model.Recipe{}}
}

// Save appends the recipe
func (s *MemoryCookbook) Save(_ context.Context, recipe model.Recipe) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recipes = append(s.recipes, recipe.Clone())
	return nil
}

// List returns a copy of the saved recipes
func (s *MemoryCookbook) List(_ context.Context) ([]model.Recipe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.CloneRecipes(s.recipes), nil
}
