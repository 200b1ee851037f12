package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"wardrobe/internal/domain/wardrobe"
)

func startPostgres(t *testing.T) string {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping postgres container test in short mode")
	}

	ctx := context.Background()
	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("wardrobe"),
		postgres.WithUsername("wardrobe"),
		postgres.WithPassword("wardrobe"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	return dsn
}

func TestItemRepository_Postgres(t *testing.T) {
	dsn := startPostgres(t)
	ctx := context.Background()

	db, err := NewConnection(ctx, dsn)
	require.NoError(t, err)
	defer db.Close()

	applied, err := RunMigrations(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, []string{"001", "002"}, applied)

	// Running again is a no-op
	applied, err = RunMigrations(ctx, db)
	require.NoError(t, err)
	assert.Empty(t, applied)

	repo := NewItemRepository(db)

	items := []*wardrobe.Item{
		{Filename: "tee_00000001.jpg", StoragePath: "tee_00000001.jpg", ContentType: "image/jpeg", FileSize: 10, Category: wardrobe.CategoryTop, Label: "t-shirt", Colors: []string{"#ffffff"}},
		{Filename: "jeans_00000002.png", StoragePath: "jeans_00000002.png", ContentType: "image/png", FileSize: 20, Category: wardrobe.CategoryBottom, Label: "jeans", Colors: []string{"#1f2a44", "#000000"}},
	}
	for _, item := range items {
		require.NoError(t, repo.Create(ctx, item))
		assert.Positive(t, item.ID)
		assert.False(t, item.CreatedAt.IsZero())
	}

	// Unique filenames are enforced
	dup := *items[0]
	assert.ErrorIs(t, repo.Create(ctx, &dup), ErrDuplicateFilename)

	listed, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, items[0].ID, listed[0].ID)
	assert.Equal(t, []string{"#1f2a44", "#000000"}, listed[1].Colors)

	got, err := repo.GetByFilename(ctx, "jeans_00000002.png")
	require.NoError(t, err)
	assert.Equal(t, "jeans", got.Label)

	_, err = repo.GetByFilename(ctx, "missing.jpg")
	assert.ErrorIs(t, err, wardrobe.ErrItemNotFound)
}
