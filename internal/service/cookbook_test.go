package service

import (
	"context"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/pageza/recipe-remix/backend/config"
	"github.com/pageza/recipe-remix/backend/internal/model"
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func setupCookbookDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every pooled connection would get its own empty :memory: database
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&model.CookbookEntry{}))
	return db
}

func cookbookStores(t *testing.T) map[string]CookbookStore {
	_, rdb := setupRedis(t)
	return map[string]CookbookStore{
		"redis":    NewRedisCookbook(rdb, "cookbook"),
		"database": NewDatabaseCookbook(setupCookbookDB(t)),
		"memory":   NewMemoryCookbook(),
	}
}

func TestCookbookStores(t *testing.T) {
	soup := model.Recipe{Title: "Soup", Description: "Warm", Ingredients: []string{"water"}, Steps: []string{"boil"}}
	salad := model.Recipe{Title: "Salad", Description: "Cold", Ingredients: []string{"lettuce"}, Steps: []string{"toss"}}

	for name, store := range cookbookStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			saved, err := store.List(ctx)
			require.NoError(t, err)
			assert.Empty(t, saved)

			require.NoError(t, store.Save(ctx, soup))
			require.NoError(t, store.Save(ctx, salad))
			// no dedup
			require.NoError(t, store.Save(ctx, soup))

			saved, err = store.List(ctx)
			require.NoError(t, err)
			assert.Equal(t, []model.Recipe{soup, salad, soup}, saved)
		})
	}
}

func TestRedisCookbook_StoresJSONArray(t *testing.T) {
	mr, rdb := setupRedis(t)
	store := NewRedisCookbook(rdb, "cookbook")

	require.NoError(t, store.Save(context.Background(), model.Recipe{
		Title:       "Toast",
		Description: "Crunchy",
		Ingredients: []string{"bread"},
		Steps:       []string{"toast"},
	}))

	raw, err := mr.Get("cookbook")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"title":"Toast","description":"Crunchy","ingredients":["bread"],"steps":["toast"]}]`, raw)
}

func TestRedisCookbook_AppendsToExistingEntry(t *testing.T) {
	mr, rdb := setupRedis(t)
	require.NoError(t, mr.Set("cookbook", `[{"title":"Old","description":"","ingredients":[],"steps":[]}]`))
	store := NewRedisCookbook(rdb, "cookbook")

	require.NoError(t, store.Save(context.Background(), model.Recipe{Title: "New"}))

	saved, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, saved, 2)
	assert.Equal(t, "Old", saved[0].Title)
	assert.Equal(t, "New", saved[1].Title)
}

func TestRedisCookbook_CorruptEntry(t *testing.T) {
	mr, rdb := setupRedis(t)
	require.NoError(t, mr.Set("cookbook", `not json`))
	store := NewRedisCookbook(rdb, "cookbook")

	assert.ErrorContains(t, store.Save(context.Background(), model.Recipe{Title: "x"}), "unmarshal")
	_, err := store.List(context.Background())
	assert.Error(t, err)
}

func TestRedisCookbook_ConcurrentSaves(t *testing.T) {
	_, rdb := setupRedis(t)
	store := NewRedisCookbook(rdb, "cookbook")

	const n = 4
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- store.Save(context.Background(), model.Recipe{Title: "same"})
		}()
	}
	wg.Wait()
	close(errs)

	saved := 0
	for err := range errs {
		if err == nil {
			saved++
		}
	}

	list, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, saved)
}

func TestNewCookbookStore(t *testing.T) {
	_, rdb := setupRedis(t)
	db := setupCookbookDB(t)

	store, err := NewCookbookStore(config.CookbookRedis, rdb, nil, "")
	require.NoError(t, err)
	assert.IsType(t, &RedisCookbook{}, store)

	store, err = NewCookbookStore(config.CookbookDatabase, nil, db, "")
	require.NoError(t, err)
	assert.IsType(t, &DatabaseCookbook{}, store)

	store, err = NewCookbookStore(config.CookbookMemory, nil, nil, "")
	require.NoError(t, err)
	assert.IsType(t, &MemoryCookbook{}, store)

	_, err = NewCookbookStore(config.CookbookRedis, nil, nil, "")
	assert.Error(t, err)
	_, err = NewCookbookStore(config.CookbookDatabase, nil, nil, "")
	assert.Error(t, err)
	_, err = NewCookbookStore("tape", nil, nil, "")
	assert.Error(t, err)
}
