package content

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thebooleanin/techstory-weaver/internal/auth"
	"github.com/thebooleanin/techstory-weaver/internal/event"
	"github.com/thebooleanin/techstory-weaver/pkg/models"
	"github.com/thebooleanin/techstory-weaver/pkg/plugin"
	"github.com/thebooleanin/techstory-weaver/pkg/plugin/plugintest"
)

type handlerEnv struct {
	m   *Module
	mux *http.ServeMux
}

func newHandlerEnv(t *testing.T, kind models.ContentKind) *handlerEnv {
	t.Helper()
	m := New(kind)
	require.NoError(t, m.Init(context.Background(), plugintest.Deps(t, string(kind))))

	mux := http.NewServeMux()
	for _, r := range m.Routes() {
		mux.HandleFunc(fmt.Sprintf("%s /api/v1/%s%s", r.Method, kind, r.Path), r.Handler)
	}
	return &handlerEnv{m: m, mux: mux}
}

// do sends a request as role; an empty role sends it anonymously.
func (e *handlerEnv) do(method, path string, role auth.Role, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		req = req.WithContext(auth.WithClaims(req.Context(), &auth.Claims{UserID: "u1", Username: "editor", Role: string(role)}))
	}
	w := httptest.NewRecorder()
	e.mux.ServeHTTP(w, req)
	return w
}

func (e *handlerEnv) create(t *testing.T, req ItemRequest) models.ContentItem {
	t.Helper()
	w := e.do("POST", "/api/v1/"+string(e.m.kind), auth.RoleEditor, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[models.ContentItem](t, w)
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(w.Body).Decode(&v), w.Body.String())
	return v
}

func TestCreate_ThenGet(t *testing.T) {
	env := newHandlerEnv(t, models.KindArticles)

	item := env.create(t, ItemRequest{
		Title:    "Café Über Alles",
		Category: "culture",
		Tags:     []string{"travel"},
		Status:   models.StatusPublished,
	})
	assert.Equal(t, "cafe-uber-alles", item.Slug)
	assert.Equal(t, models.KindArticles, item.Kind)
	assert.NotEmpty(t, item.ID)
	assert.False(t, item.CreatedAt.IsZero())

	w := env.do("GET", "/api/v1/articles/"+item.ID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, item.ID, decode[models.ContentItem](t, w).ID)

	w = env.do("GET", "/api/v1/articles/slug/cafe-uber-alles", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Café Über Alles", decode[models.ContentItem](t, w).Title)
}

func TestCreate_DefaultsToDraft(t *testing.T) {
	env := newHandlerEnv(t, models.KindStories)

	item := env.create(t, ItemRequest{Title: "Episode one", MediaURL: "https://cdn.example.com/ep1.mp3"})
	assert.Equal(t, models.StatusDraft, item.Status)
	assert.Equal(t, []string{}, item.Tags)
}

func TestCreate_Validation(t *testing.T) {
	env := newHandlerEnv(t, models.KindArticles)

	tests := []struct {
		name string
		req  ItemRequest
	}{
		{"missing title", ItemRequest{Title: "  "}},
		{"bad slug", ItemRequest{Title: "ok", Slug: "Not A Slug"}},
		{"bad status", ItemRequest{Title: "ok", Status: "archived"}},
		{"bad media url", ItemRequest{Title: "ok", MediaURL: "ftp://example.com/file"}},
		{"relative media path", ItemRequest{Title: "ok", MediaURL: "images/a.png"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do("POST", "/api/v1/articles", auth.RoleEditor, tt.req)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))
		})
	}

	w := env.do("POST", "/api/v1/articles", auth.RoleEditor, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreate_SlugConflict(t *testing.T) {
	env := newHandlerEnv(t, models.KindArticles)

	env.create(t, ItemRequest{Title: "First", Slug: "launch"})
	w := env.do("POST", "/api/v1/articles", auth.RoleEditor, ItemRequest{Title: "Second", Slug: "launch"})
	assert.Equal(t, http.StatusConflict, w.Code)

	second := env.create(t, ItemRequest{Title: "Launch"})
	assert.Equal(t, "launch-2", second.Slug)
}

func TestWrites_RequireEditor(t *testing.T) {
	env := newHandlerEnv(t, models.KindAds)
	item := env.create(t, ItemRequest{Title: "Banner"})

	tests := []struct {
		name   string
		method string
		path   string
		role   auth.Role
		want   int
	}{
		{"anonymous create", "POST", "/api/v1/ads", "", http.StatusUnauthorized},
		{"viewer create", "POST", "/api/v1/ads", auth.RoleViewer, http.StatusForbidden},
		{"viewer update", "PUT", "/api/v1/ads/" + item.ID, auth.RoleViewer, http.StatusForbidden},
		{"viewer delete", "DELETE", "/api/v1/ads/" + item.ID, auth.RoleViewer, http.StatusForbidden},
		{"admin create", "POST", "/api/v1/ads", auth.RoleAdmin, http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(tt.method, tt.path, tt.role, ItemRequest{Title: "Another banner"})
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestUpdate(t *testing.T) {
	env := newHandlerEnv(t, models.KindArticles)
	item := env.create(t, ItemRequest{Title: "Old title"})

	w := env.do("PUT", "/api/v1/articles/"+item.ID, auth.RoleEditor, ItemRequest{
		Title:  "New title",
		Slug:   "new-title",
		Status: models.StatusPublished,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	got := decode[models.ContentItem](t, w)
	assert.Equal(t, "new-title", got.Slug)
	assert.Equal(t, item.CreatedAt.Unix(), got.CreatedAt.Unix())
	assert.False(t, got.UpdatedAt.Before(got.CreatedAt))

	w = env.do("PUT", "/api/v1/articles/missing", auth.RoleEditor, ItemRequest{Title: "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdate_GeneratedLongSlugRoundTrips(t *testing.T) {
	env := newHandlerEnv(t, models.KindArticles)
	title := strings.Repeat("Designing accessible color systems ", 5)

	for range 2 {
		item := env.create(t, ItemRequest{Title: title})
		require.LessOrEqual(t, len(item.Slug), maxSlugLen)

		w := env.do("PUT", "/api/v1/articles/"+item.ID, auth.RoleEditor, ItemRequest{
			Title: item.Title,
			Slug:  item.Slug,
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, item.Slug, decode[models.ContentItem](t, w).Slug)
	}
}

func TestDelete(t *testing.T) {
	env := newHandlerEnv(t, models.KindArticles)
	item := env.create(t, ItemRequest{Title: "Short lived"})

	w := env.do("DELETE", "/api/v1/articles/"+item.ID, auth.RoleEditor, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = env.do("DELETE", "/api/v1/articles/"+item.ID, auth.RoleEditor, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDrafts_HiddenFromAnonymous(t *testing.T) {
	env := newHandlerEnv(t, models.KindArticles)
	draft := env.create(t, ItemRequest{Title: "Work in progress"})
	env.create(t, ItemRequest{Title: "Live", Status: models.StatusPublished})

	w := env.do("GET", "/api/v1/articles/"+draft.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = env.do("GET", "/api/v1/articles/slug/"+draft.Slug, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = env.do("GET", "/api/v1/articles/"+draft.ID, auth.RoleViewer, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// Anonymous callers cannot ask for drafts via the status filter.
	w = env.do("GET", "/api/v1/articles?status=draft", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decode[models.Page[models.ContentItem]](t, w)
	assert.Equal(t, 1, page.Total)
	assert.Equal(t, "Live", page.Items[0].Title)

	w = env.do("GET", "/api/v1/articles", auth.RoleViewer, nil)
	assert.Equal(t, 2, decode[models.Page[models.ContentItem]](t, w).Total)
}

func TestList_Pagination(t *testing.T) {
	env := newHandlerEnv(t, models.KindArticles)
	for i := range 12 {
		env.create(t, ItemRequest{Title: fmt.Sprintf("Post %d", i), Status: models.StatusPublished})
	}

	tests := []struct {
		name         string
		query        string
		wantPage     int
		wantPageSize int
		wantItems    int
	}{
		{"defaults", "", 1, 10, 10},
		{"second page", "?page=2", 2, 10, 2},
		{"page below one", "?page=0", 1, 10, 10},
		{"size clamped up", "?page_size=0", 1, 1, 1},
		{"size clamped down", "?page_size=1000", 1, 100, 12},
		{"past the end", "?page=9&page_size=5", 9, 5, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do("GET", "/api/v1/articles"+tt.query, "", nil)
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			page := decode[models.Page[models.ContentItem]](t, w)
			assert.Equal(t, 12, page.Total)
			assert.Equal(t, tt.wantPage, page.Page)
			assert.Equal(t, tt.wantPageSize, page.PageSize)
			assert.Len(t, page.Items, tt.wantItems)
		})
	}
}

func TestList_BadQuery(t *testing.T) {
	env := newHandlerEnv(t, models.KindArticles)

	for _, q := range []string{"?page=x", "?page_size=x", "?featured=maybe", "?status=archived"} {
		w := env.do("GET", "/api/v1/articles"+q, auth.RoleEditor, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, q)
	}
}

func TestList_FeaturedAndCategories(t *testing.T) {
	env := newHandlerEnv(t, models.KindStories)
	env.create(t, ItemRequest{Title: "Pinned", Category: "audio", Featured: true, Status: models.StatusPublished})
	env.create(t, ItemRequest{Title: "Regular", Category: "written", Status: models.StatusPublished})

	w := env.do("GET", "/api/v1/stories?featured=true", "", nil)
	page := decode[models.Page[models.ContentItem]](t, w)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Pinned", page.Items[0].Title)

	w = env.do("GET", "/api/v1/stories/categories", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"audio", "written"}, decode[[]string](t, w))
}

func TestWrites_PublishChangeEvents(t *testing.T) {
	env := newHandlerEnv(t, models.KindArticles)

	var (
		mu     sync.Mutex
		events []ChangeEvent
	)
	env.m.bus.Subscribe(event.TopicContentChanged, func(_ context.Context, e plugin.Event) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, e.Payload.(ChangeEvent))
	})

	item := env.create(t, ItemRequest{Title: "Evented"})
	env.do("PUT", "/api/v1/articles/"+item.ID, auth.RoleEditor, ItemRequest{Title: "Evented"})
	env.do("DELETE", "/api/v1/articles/"+item.ID, auth.RoleEditor, nil)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(events) == 3
	}, time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	actions := map[string]bool{}
	for _, e := range events {
		assert.Equal(t, "articles", e.Kind)
		assert.Equal(t, item.ID, e.ID)
		actions[e.Action] = true
	}
	assert.Equal(t, map[string]bool{ActionCreated: true, ActionUpdated: true, ActionDeleted: true}, actions)
}
