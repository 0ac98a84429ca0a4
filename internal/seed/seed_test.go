package seed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thebooleanin/techstory-weaver/internal/content"
	"github.com/thebooleanin/techstory-weaver/internal/testutil"
	"github.com/thebooleanin/techstory-weaver/pkg/models"
)

func testStores(t *testing.T) Stores {
	t.Helper()
	db := testutil.NewStore(t)
	require.NoError(t, content.Migrate(context.Background(), db))

	stores := Stores{}
	for _, kind := range models.ContentKinds {
		stores[kind] = content.NewStore(db.DB(), kind)
	}
	return stores
}

func TestSeedDemoContent(t *testing.T) {
	ctx := context.Background()
	stores := testStores(t)

	added, err := SeedDemoContent(ctx, stores)
	require.NoError(t, err)
	assert.Equal(t, 7, added)

	items, total, err := stores[models.KindArticles].List(ctx, content.ListParams{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, items, 3)

	story, err := stores[models.KindStories].GetBySlug(ctx, "from-garage-to-global")
	require.NoError(t, err)
	assert.Equal(t, models.KindStories, story.Kind)
	assert.Equal(t, "24:13", story.Attributes["duration"])
}

func TestSeedDemoContent_Idempotent(t *testing.T) {
	ctx := context.Background()
	stores := testStores(t)

	_, err := SeedDemoContent(ctx, stores)
	require.NoError(t, err)

	added, err := SeedDemoContent(ctx, stores)
	require.NoError(t, err)
	assert.Zero(t, added)
}

func TestSeedDemoContent_SkipsMissingKinds(t *testing.T) {
	ctx := context.Background()
	stores := testStores(t)
	delete(stores, models.KindAds)

	added, err := SeedDemoContent(ctx, stores)
	require.NoError(t, err)
	assert.Equal(t, 5, added)
}
