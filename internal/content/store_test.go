package content

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thebooleanin/techstory-weaver/internal/testutil"
	"github.com/thebooleanin/techstory-weaver/pkg/models"
)

func testStore(t *testing.T, kind models.ContentKind) *ContentStore {
	t.Helper()
	db := testutil.NewStore(t)
	require.NoError(t, db.Migrate(context.Background(), "content", migrations()))
	return NewStore(db.DB(), kind)
}

func TestStore_InsertAndGet(t *testing.T) {
	s := testStore(t, models.KindArticles)
	ctx := context.Background()

	item := testutil.NewContentItem(func(i *models.ContentItem) {
		i.Attributes = map[string]string{"readTime": "5 min"}
	})
	require.NoError(t, s.Insert(ctx, &item))
	assert.Equal(t, "designing-with-hsl", item.Slug)

	got, err := s.Get(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, item.Title, got.Title)
	assert.Equal(t, []string{"color", "css"}, got.Tags)
	assert.Equal(t, "5 min", got.Attributes["readTime"])
	assert.Equal(t, models.KindArticles, got.Kind)

	bySlug, err := s.GetBySlug(ctx, "designing-with-hsl")
	require.NoError(t, err)
	assert.Equal(t, item.ID, bySlug.ID)
}

func TestStore_GetMissing(t *testing.T) {
	s := testStore(t, models.KindArticles)
	_, err := s.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.GetBySlug(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_GeneratedSlugsGetSuffixes(t *testing.T) {
	s := testStore(t, models.KindArticles)
	ctx := context.Background()

	var slugs []string
	for range 3 {
		item := testutil.NewContentItem(testutil.WithTitle("Same Title"))
		require.NoError(t, s.Insert(ctx, &item))
		slugs = append(slugs, item.Slug)
	}
	assert.Equal(t, []string{"same-title", "same-title-2", "same-title-3"}, slugs)
}

func TestStore_ExplicitSlugConflict(t *testing.T) {
	s := testStore(t, models.KindArticles)
	ctx := context.Background()

	first := testutil.NewContentItem(func(i *models.ContentItem) { i.Slug = "taken" })
	require.NoError(t, s.Insert(ctx, &first))

	second := testutil.NewContentItem(func(i *models.ContentItem) { i.Slug = "taken" })
	assert.ErrorIs(t, s.Insert(ctx, &second), ErrSlugConflict)

	// Updating an item with its own slug is not a conflict.
	first.Title = "Renamed"
	assert.NoError(t, s.Update(ctx, &first))
}

func TestStore_SlugsAreScopedByKind(t *testing.T) {
	db := testutil.NewStore(t)
	require.NoError(t, db.Migrate(context.Background(), "content", migrations()))
	articles := NewStore(db.DB(), models.KindArticles)
	stories := NewStore(db.DB(), models.KindStories)
	ctx := context.Background()

	a := testutil.NewContentItem()
	s := testutil.NewContentItem(testutil.WithKind(models.KindStories))
	require.NoError(t, articles.Insert(ctx, &a))
	require.NoError(t, stories.Insert(ctx, &s))
	assert.Equal(t, a.Slug, s.Slug)

	_, err := stories.Get(ctx, a.ID)
	assert.ErrorIs(t, err, ErrNotFound, "stories store must not see articles")
}

func TestStore_UpdateAndDelete(t *testing.T) {
	s := testStore(t, models.KindAds)
	ctx := context.Background()

	item := testutil.NewContentItem(testutil.WithKind(models.KindAds))
	require.NoError(t, s.Insert(ctx, &item))

	item.Title = "Spring sale"
	item.Slug = "spring-sale"
	item.Featured = true
	require.NoError(t, s.Update(ctx, &item))

	got, err := s.Get(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "spring-sale", got.Slug)
	assert.True(t, got.Featured)

	require.NoError(t, s.Delete(ctx, item.ID))
	assert.ErrorIs(t, s.Delete(ctx, item.ID), ErrNotFound)

	missing := testutil.NewContentItem()
	assert.ErrorIs(t, s.Update(ctx, &missing), ErrNotFound)
}

func TestStore_ListFiltersAndPages(t *testing.T) {
	s := testStore(t, models.KindArticles)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	seed := []models.ContentItem{
		testutil.NewContentItem(testutil.WithTitle("Tokens in CSS"), testutil.WithCategory("design"), testutil.WithFeatured()),
		testutil.NewContentItem(testutil.WithTitle("100% coverage"), testutil.WithCategory("engineering")),
		testutil.NewContentItem(testutil.WithTitle("Draft notes"), testutil.WithCategory("notes"), testutil.WithStatus(models.StatusDraft)),
		testutil.NewContentItem(testutil.WithTitle("Dark mode"), testutil.WithCategory("design")),
	}
	for i := range seed {
		seed[i].CreatedAt = base.Add(time.Duration(i) * time.Hour)
		require.NoError(t, s.Insert(ctx, &seed[i]))
	}

	featured := true
	tests := []struct {
		name      string
		params    ListParams
		wantTotal int
		wantFirst string
	}{
		{"all newest first", ListParams{Page: 1, PageSize: 10}, 4, "Dark mode"},
		{"published only", ListParams{Status: models.StatusPublished, Page: 1, PageSize: 10}, 3, "Dark mode"},
		{"category", ListParams{Category: "design", Page: 1, PageSize: 10}, 2, "Dark mode"},
		{"featured", ListParams{Featured: &featured, Page: 1, PageSize: 10}, 1, "Tokens in CSS"},
		{"query", ListParams{Query: "css", Page: 1, PageSize: 10}, 1, "Tokens in CSS"},
		{"literal percent", ListParams{Query: "100%", Page: 1, PageSize: 10}, 1, "100% coverage"},
		{"second page", ListParams{Page: 2, PageSize: 3}, 4, "Tokens in CSS"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, total, err := s.List(ctx, tt.params)
			require.NoError(t, err)
			assert.Equal(t, tt.wantTotal, total)
			require.NotEmpty(t, items)
			assert.Equal(t, tt.wantFirst, items[0].Title)
		})
	}

	items, total, err := s.List(ctx, ListParams{Page: 5, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	assert.Empty(t, items)
	assert.NotNil(t, items)
}

func TestStore_Categories(t *testing.T) {
	s := testStore(t, models.KindArticles)
	ctx := context.Background()

	for _, item := range []models.ContentItem{
		testutil.NewContentItem(testutil.WithTitle("a"), testutil.WithCategory("engineering")),
		testutil.NewContentItem(testutil.WithTitle("b"), testutil.WithCategory("design")),
		testutil.NewContentItem(testutil.WithTitle("c"), testutil.WithCategory("design")),
		testutil.NewContentItem(testutil.WithTitle("d"), testutil.WithCategory("hidden"), testutil.WithStatus(models.StatusDraft)),
		testutil.NewContentItem(testutil.WithTitle("e"), testutil.WithCategory("")),
	} {
		require.NoError(t, s.Insert(ctx, &item))
	}

	cats, err := s.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"design", "engineering"}, cats)
}
