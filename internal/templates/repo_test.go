//go:build integration_test || all_tests

package templates

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/mkovacek/traindiary/internal/db"
	"github.com/mkovacek/traindiary/pkg"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRepoSetup(t *testing.T) (*Repo, func()) {
	t.Helper()

	timeoutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	host := os.Getenv("POSTGRES_HOST")
	if host == "" {
		host = "localhost"
	}

	dbPool, err := db.NewDBPool(timeoutCtx, db.NewDBPoolParams{
		DBHost:         host,
		DBPort:         "5432",
		DBName:         "traindiary",
		TracingEnabled: false,
	})
	require.NoError(t, err)

	return NewRepo(dbPool), func() {
		dbPool.Close()
	}
}

func TestRepo_TemplateCRUD(t *testing.T) {
	repo, shutdown := testRepoSetup(t)
	defer shutdown()

	ctx := context.Background()

	name := fmt.Sprintf("test-template-%d", time.Now().UnixNano())
	added, err := repo.Add(ctx, Template{
		Name:      name,
		Category:  "test",
		Equipment: "barbell",
	})
	require.NoError(t, err)
	require.NotZero(t, added.ID)
	defer func() {
		_ = repo.Delete(ctx, added.ID)
	}()

	// names are unique
	_, err = repo.Add(ctx, Template{Name: name, Category: "test"})
	require.Error(t, err)
	assert.True(t, pkg.IsUniqueViolationError(err))

	fetched, err := repo.Get(ctx, added.ID)
	require.NoError(t, err)
	assert.Equal(t, name, fetched.Name)
	assert.Equal(t, "barbell", fetched.Equipment)

	fetched.Description = "a test template"
	require.NoError(t, repo.Update(ctx, *fetched))

	// updates move updated_at past the insert-time value
	var updatedAfterCreated bool
	require.NoError(t, repo.db.QueryRow(ctx,
		`SELECT updated_at > created_at FROM exercise_templates WHERE id = $1`, added.ID,
	).Scan(&updatedAfterCreated))
	assert.True(t, updatedAfterCreated)

	listed, err := repo.List(ctx, "test")
	require.NoError(t, err)
	require.NotEmpty(t, listed)

	require.NoError(t, repo.Delete(ctx, added.ID))
	_, err = repo.Get(ctx, added.ID)
	assert.ErrorIs(t, err, ErrTemplateNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, added.ID), ErrTemplateNotFound)
}
