package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thebooleanin/techstory-weaver/internal/services"
	"github.com/thebooleanin/techstory-weaver/internal/testutil"
)

func newRepo(t *testing.T) *services.SQLiteSettingsRepository {
	t.Helper()
	repo, err := services.NewSQLiteSettingsRepository(context.Background(), testutil.NewStore(t))
	require.NoError(t, err)
	return repo
}

func TestSettingsRepository_SetGet(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	_, err := repo.Get(ctx, "themeConfig")
	require.ErrorIs(t, err, services.ErrNotFound)

	require.NoError(t, repo.Set(ctx, "themeConfig", `{"name":"a"}`))
	require.NoError(t, repo.Set(ctx, "themeConfig", `{"name":"b"}`))

	s, err := repo.Get(ctx, "themeConfig")
	require.NoError(t, err)
	assert.Equal(t, `{"name":"b"}`, s.Value)
	assert.False(t, s.UpdatedAt.IsZero())
}

func TestSettingsRepository_GetAllDelete(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "siteConfig", "{}"))
	require.NoError(t, repo.Set(ctx, "themeConfig", "{}"))

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "siteConfig", all[0].Key)

	require.NoError(t, repo.Delete(ctx, "siteConfig"))
	require.ErrorIs(t, repo.Delete(ctx, "siteConfig"), services.ErrNotFound)
}
