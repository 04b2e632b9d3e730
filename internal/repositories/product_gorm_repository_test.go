package repositories_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"products/internal/expression"
	"products/internal/models"
	"products/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupGORMRepository opens a private in-memory SQLite database per test.
func setupGORMRepository(t *testing.T) *repositories.GORMProductRepository {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	repo := repositories.NewGORMProductRepository(db)
	require.NoError(t, repo.Migrate("products"))
	return repo
}

func TestGORMProductRepository_PutAndGet(t *testing.T) {
	repo := setupGORMRepository(t)
	ctx := context.Background()

	product := &models.Product{ID: "abc", Name: "Kettle", Price: 30, Tags: []string{"kitchen", "steel", "kitchen"}}
	require.NoError(t, repo.Put(ctx, "products", product))

	got, err := repo.Get(ctx, "products", "abc")
	require.NoError(t, err)
	assert.Equal(t, product, got)
}

func TestGORMProductRepository_PutWithoutTags(t *testing.T) {
	repo := setupGORMRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, "products", &models.Product{ID: "bare", Name: "Bare", Price: 0}))

	got, err := repo.Get(ctx, "products", "bare")
	require.NoError(t, err)
	assert.Empty(t, got.Tags)
}

func TestGORMProductRepository_PutReplacesTags(t *testing.T) {
	repo := setupGORMRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, "products", &models.Product{ID: "1", Name: "A", Tags: []string{"old"}}))
	require.NoError(t, repo.Put(ctx, "products", &models.Product{ID: "1", Name: "A", Tags: []string{"new"}}))

	got, err := repo.Scan(ctx, "products", expression.ContainsAll("tags", []string{"old"}))
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = repo.Scan(ctx, "products", expression.ContainsAll("tags", []string{"new"}))
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestGORMProductRepository_GetNotFound(t *testing.T) {
	repo := setupGORMRepository(t)

	_, err := repo.Get(context.Background(), "products", "missing")
	assert.ErrorIs(t, err, repositories.ErrProductNotFound)
}

func TestGORMProductRepository_Scan(t *testing.T) {
	repo := setupGORMRepository(t)
	ctx := context.Background()

	first := models.Product{ID: "1", Name: "Shirt", Price: 10, Tags: []string{"red", "blue", "green"}}
	second := models.Product{ID: "2", Name: "Hat", Price: 5, Tags: []string{"red"}}
	require.NoError(t, repo.Put(ctx, "products", &first))
	require.NoError(t, repo.Put(ctx, "products", &second))

	got, err := repo.Scan(ctx, "products", expression.ContainsAll("tags", []string{"red", "blue"}))
	require.NoError(t, err)
	assert.Equal(t, []models.Product{first}, got)

	got, err = repo.Scan(ctx, "products", expression.ContainsAll("tags", []string{"red"}))
	require.NoError(t, err)
	assert.Equal(t, []models.Product{first, second}, got)

	got, err = repo.Scan(ctx, "products", expression.ContainsAll("tags", []string{"red", "red"}))
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = repo.Scan(ctx, "products", expression.ContainsAll("tags", []string{"purple"}))
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestGORMProductRepository_RejectsInvalidTableName(t *testing.T) {
	repo := setupGORMRepository(t)
	ctx := context.Background()

	err := repo.Put(ctx, "products; DROP TABLE products", &models.Product{ID: "1"})
	assert.Error(t, err)

	_, err = repo.Get(ctx, "bad-name", "1")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, repositories.ErrProductNotFound)

	_, err = repo.Scan(ctx, "", expression.Filter{})
	assert.Error(t, err)
}

func TestGORMProductRepository_MissingTableIsAnError(t *testing.T) {
	repo := setupGORMRepository(t)

	_, err := repo.Get(context.Background(), "never_migrated", "1")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, repositories.ErrProductNotFound)
}
