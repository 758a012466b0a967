package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/pageza/recipe-remix/backend/internal/logger"
	"github.com/pageza/recipe-remix/backend/internal/metrics"
	"github.com/pageza/recipe-remix/backend/internal/model"
)

// RemixSuffix is appended to the current query by Remix
const RemixSuffix = " but spicier"

// ErrBoardChanged is returned when a card is addressed against a version
// of the board that has since been replaced
var ErrBoardChanged = errors.New("board has changed since the card was rendered")

// ErrCardNotFound is returned for an index outside the current recipes
var ErrCardNotFound = errors.New("recipe card not found")

// BoardState is a point-in-time copy of the board. Version increases every
// time the recipes are replaced.
type BoardState struct {
	Query   string         `json:"query"`
	Loading bool           `json:"loading"`
	Version uint64         `json:"version"`
	Recipes []model.Recipe `json:"recipes"`
}

// Board holds the single recipe board: the current query, the rendered
// recipes and the loading flag. Fetches run outside the lock; overlapping
// fetches are neither cancelled nor de-duplicated and the board stays
// loading until the last one finishes.
type Board struct {
	fetcher RecipeFetcher
	metrics *metrics.Collector
	logger  *zap.Logger

	mu      sync.Mutex
	query   string
	recipes []model.Recipe
	version uint64
	pending int

	subMu       sync.Mutex
	subscribers map[chan BoardState]struct{}
}

// NewBoard creates a board showing the placeholder recipes
func NewBoard(fetcher RecipeFetcher, m *metrics.Collector, log *zap.Logger) *Board {
	if log == nil {
		log = logger.Nop()
	}
	return &Board{
		fetcher:     fetcher,
		metrics:     m,
		logger:      log,
		recipes:     model.DefaultRecipes(),
		subscribers: make(map[chan BoardState]struct{}),
	}
}

// SetQuery captures the free-text ingredient query
func (b *Board) SetQuery(query string) {
	b.mu.Lock()
	b.query = query
	b.mu.Unlock()
	b.broadcast()
}

// Search fetches recipes for the current query. An empty query is a no-op
// and Search reports false.
func (b *Board) Search(ctx context.Context) bool {
	query := b.currentQuery()
	if query == "" {
		return false
	}
	b.setLoading(true)
	b.fetch(ctx, "search", query)
	return true
}

// StartSearch is Search in the background. The board is already loading
// when StartSearch returns true.
func (b *Board) StartSearch(ctx context.Context) bool {
	query := b.currentQuery()
	if query == "" {
		return false
	}
	b.setLoading(true)
	go b.fetch(ctx, "search", query)
	return true
}

// Remix fetches recipes for the current query with RemixSuffix appended
func (b *Board) Remix(ctx context.Context) {
	b.setLoading(true)
	b.fetch(ctx, "remix", b.currentQuery()+RemixSuffix)
}

// StartRemix is Remix in the background. The board is already loading when
// StartRemix returns.
func (b *Board) StartRemix(ctx context.Context) {
	b.setLoading(true)
	go b.fetch(ctx, "remix", b.currentQuery()+RemixSuffix)
}

func (b *Board) currentQuery() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.query
}

// fetch runs one request and clears the loading flag raised by its caller.
// Failures are logged and leave the recipes as they were.
func (b *Board) fetch(ctx context.Context, kind, prompt string) {
	ctx = context.WithoutCancel(ctx)
	defer b.setLoading(false)

	start := time.Now()
	recipes, err := b.fetcher.FetchRecipes(ctx, prompt)
	b.metrics.ObserveLLMRequest(kind, err, time.Since(start).Seconds())
	if err != nil {
		b.logger.Error("[Board] failed to fetch recipes",
			zap.String("kind", kind),
			zap.String("prompt", prompt),
			zap.Error(err))
		return
	}

	b.mu.Lock()
	b.recipes = model.CloneRecipes(recipes)
	b.version++
	b.mu.Unlock()

	b.logger.Info("[Board] recipes updated",
		zap.String("kind", kind),
		zap.Int("count", len(recipes)))
}

func (b *Board) setLoading(loading bool) {
	b.mu.Lock()
	if loading {
		b.pending++
	} else if b.pending > 0 {
		b.pending--
	}
	b.mu.Unlock()
	b.broadcast()
}

// Snapshot returns a copy of the current state
func (b *Board) Snapshot() BoardState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return BoardState{
		Query:   b.query,
		Loading: b.pending > 0,
		Version: b.version,
		Recipes: model.CloneRecipes(b.recipes),
	}
}

// Recipe returns the card at index i
func (b *Board) Recipe(i int) (model.Recipe, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if i < 0 || i >= len(b.recipes) {
		return model.Recipe{}, false
	}
	return b.recipes[i].Clone(), true
}

// RecipeAt returns the card at index i as it was rendered at version.
// ErrBoardChanged means the recipes were replaced after that render.
func (b *Board) RecipeAt(i int, version uint64) (model.Recipe, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if version != b.version {
		return model.Recipe{}, ErrBoardChanged
	}
	if i < 0 || i >= len(b.recipes) {
		return model.Recipe{}, ErrCardNotFound
	}
	return b.recipes[i].Clone(), nil
}

// Subscribe returns a channel receiving a snapshot after every change.
// Updates are dropped for subscribers that fall behind.
func (b *Board) Subscribe() chan BoardState {
	ch := make(chan BoardState, 8)
	b.subMu.Lock()
	b.subscribers[ch] = struct{}{}
	b.subMu.Unlock()
	return ch
}

// Unsubscribe removes and closes a subscriber channel
func (b *Board) Unsubscribe(ch chan BoardState) {
	b.subMu.Lock()
	defer b.subMu.Unlock()
	if _, ok := b.subscribers[ch]; ok {
		delete(b.subscribers, ch)
		close(ch)
	}
}

// broadcast holds subMu while taking the snapshot so concurrent
// broadcasts deliver states in the order they were taken.
func (b *Board) broadcast() {
	b.subMu.Lock()
	defer b.subMu.Unlock()

	state := b.Snapshot()
	for ch := range b.subscribers {
		select {
		case ch <- state:
		default:
			b.logger.Debug("[Board] subscriber is behind, dropping update")
		}
	}
}
