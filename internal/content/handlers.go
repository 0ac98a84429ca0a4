package content

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/thebooleanin/techstory-weaver/internal/auth"
	"github.com/thebooleanin/techstory-weaver/pkg/models"
	"github.com/thebooleanin/techstory-weaver/pkg/plugin"
	"go.uber.org/zap"
)

// ItemRequest is the body of create and update calls.
// @Description Editable fields of an article, story or ad.
type ItemRequest struct {
	Title      string               `json:"title" example:"Shipping a design system"`
	Slug       string               `json:"slug,omitempty" example:"shipping-a-design-system"`
	Summary    string               `json:"summary,omitempty"`
	Body       string               `json:"body,omitempty"`
	Category   string               `json:"category,omitempty" example:"engineering"`
	Tags       []string             `json:"tags,omitempty"`
	MediaURL   string               `json:"mediaUrl,omitempty"`
	Status     models.ContentStatus `json:"status,omitempty" example:"draft"`
	Featured   bool                 `json:"featured"`
	Attributes map[string]string    `json:"attributes,omitempty"`
}

// Routes implements plugin.HTTPProvider.
func (m *Module) Routes() []plugin.Route {
	return []plugin.Route{
		{Method: "GET", Path: "", Handler: m.handleList},
		{Method: "GET", Path: "/categories", Handler: m.handleCategories},
		{Method: "GET", Path: "/slug/{slug}", Handler: m.handleGetBySlug},
		{Method: "GET", Path: "/{id}", Handler: m.handleGet},
		{Method: "POST", Path: "", Handler: m.handleCreate},
		{Method: "PUT", Path: "/{id}", Handler: m.handleUpdate},
		{Method: "DELETE", Path: "/{id}", Handler: m.handleDelete},
	}
}

// handleList returns one page of items. Anonymous callers only see
// published items.
//
//	@Summary		List content
//	@Description	Returns a page of articles, stories or ads, newest first.
//	@Tags			content
//	@Produce		json
//	@Param			kind		path		string	true	"Content kind"	Enums(articles, stories, ads)
//	@Param			page		query		int		false	"Page number"	default(1)
//	@Param			page_size	query		int		false	"Page size"		default(10)	maximum(100)
//	@Param			q			query		string	false	"Substring of title or summary"
//	@Param			category	query		string	false	"Category"
//	@Param			status		query		string	false	"draft or published (authenticated callers only)"
//	@Param			featured	query		bool	false	"Featured flag"
//	@Success		200			{object}	models.Page[models.ContentItem]
//	@Failure		400			{object}	models.APIProblem
//	@Router			/{kind} [get]
func (m *Module) handleList(w http.ResponseWriter, r *http.Request) {
	if m.store == nil {
		contentWriteError(w, http.StatusServiceUnavailable, "content store not available")
		return
	}

	params, err := m.listParams(r)
	if err != nil {
		contentWriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	items, total, err := m.store.List(r.Context(), params)
	if err != nil {
		m.logger.Warn("failed to list content", zap.String("kind", string(m.kind)), zap.Error(err))
		contentWriteError(w, http.StatusInternalServerError, "failed to list "+string(m.kind))
		return
	}
	contentWriteJSON(w, http.StatusOK, models.Page[models.ContentItem]{
		Items:    items,
		Total:    total,
		Page:     params.Page,
		PageSize: params.PageSize,
	})
}

// listParams reads the query string. Page numbers below 1 and sizes
// outside [1, max] are clamped; malformed numbers are rejected.
func (m *Module) listParams(r *http.Request) (ListParams, error) {
	q := r.URL.Query()
	p := ListParams{
		Query:    strings.TrimSpace(q.Get("q")),
		Category: q.Get("category"),
		Page:     1,
		PageSize: m.cfg.DefaultPageSize,
	}

	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return p, errors.New("page must be an integer")
		}
		p.Page = max(n, 1)
	}
	if v := q.Get("page_size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return p, errors.New("page_size must be an integer")
		}
		p.PageSize = min(max(n, 1), m.cfg.MaxPageSize)
	}
	if v := q.Get("featured"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return p, errors.New("featured must be true or false")
		}
		p.Featured = &b
	}

	status := models.ContentStatus(q.Get("status"))
	if status != "" && !status.Valid() {
		return p, errors.New("status must be draft or published")
	}
	if auth.UserFromContext(r.Context()) == nil {
		status = models.StatusPublished
	}
	p.Status = status
	return p, nil
}

// handleCategories lists the categories in use by published items.
//
//	@Summary		List content categories
//	@Tags			content
//	@Produce		json
//	@Param			kind	path	string	true	"Content kind"	Enums(articles, stories, ads)
//	@Success		200		{array}	string
//	@Router			/{kind}/categories [get]
func (m *Module) handleCategories(w http.ResponseWriter, r *http.Request) {
	if m.store == nil {
		contentWriteError(w, http.StatusServiceUnavailable, "content store not available")
		return
	}
	cats, err := m.store.Categories(r.Context())
	if err != nil {
		m.logger.Warn("failed to list categories", zap.Error(err))
		contentWriteError(w, http.StatusInternalServerError, "failed to list categories")
		return
	}
	contentWriteJSON(w, http.StatusOK, cats)
}

// handleGet returns a single item by ID.
//
//	@Summary		Get content item
//	@Tags			content
//	@Produce		json
//	@Param			kind	path		string	true	"Content kind"	Enums(articles, stories, ads)
//	@Param			id		path		string	true	"Item ID"
//	@Success		200		{object}	models.ContentItem
//	@Failure		404		{object}	models.APIProblem
//	@Router			/{kind}/{id} [get]
func (m *Module) handleGet(w http.ResponseWriter, r *http.Request) {
	if m.store == nil {
		contentWriteError(w, http.StatusServiceUnavailable, "content store not available")
		return
	}
	m.writeItem(w, r, func() (*models.ContentItem, error) {
		return m.store.Get(r.Context(), r.PathValue("id"))
	})
}

// handleGetBySlug returns a single item by slug.
//
//	@Summary		Get content item by slug
//	@Tags			content
//	@Produce		json
//	@Param			kind	path		string	true	"Content kind"	Enums(articles, stories, ads)
//	@Param			slug	path		string	true	"Item slug"
//	@Success		200		{object}	models.ContentItem
//	@Failure		404		{object}	models.APIProblem
//	@Router			/{kind}/slug/{slug} [get]
func (m *Module) handleGetBySlug(w http.ResponseWriter, r *http.Request) {
	if m.store == nil {
		contentWriteError(w, http.StatusServiceUnavailable, "content store not available")
		return
	}
	m.writeItem(w, r, func() (*models.ContentItem, error) {
		return m.store.GetBySlug(r.Context(), r.PathValue("slug"))
	})
}

// writeItem hides drafts from anonymous callers behind a 404.
func (m *Module) writeItem(w http.ResponseWriter, r *http.Request, load func() (*models.ContentItem, error)) {
	item, err := load()
	if errors.Is(err, ErrNotFound) ||
		(err == nil && item.Status != models.StatusPublished && auth.UserFromContext(r.Context()) == nil) {
		contentWriteError(w, http.StatusNotFound, string(m.kind)+" item not found")
		return
	}
	if err != nil {
		m.logger.Warn("failed to get content", zap.String("kind", string(m.kind)), zap.Error(err))
		contentWriteError(w, http.StatusInternalServerError, "failed to get item")
		return
	}
	contentWriteJSON(w, http.StatusOK, item)
}

// handleCreate adds an item.
//
//	@Summary		Create content item
//	@Description	Creates an item. A missing slug is derived from the title; a taken slug is a conflict.
//	@Tags			content
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			kind	path		string		true	"Content kind"	Enums(articles, stories, ads)
//	@Param			request	body		ItemRequest	true	"Item"
//	@Success		201		{object}	models.ContentItem
//	@Failure		400		{object}	models.APIProblem
//	@Failure		401		{object}	models.APIProblem
//	@Failure		403		{object}	models.APIProblem
//	@Failure		409		{object}	models.APIProblem
//	@Router			/{kind} [post]
func (m *Module) handleCreate(w http.ResponseWriter, r *http.Request) {
	if !auth.RequireRole(w, r, auth.RoleEditor) {
		return
	}
	if m.store == nil {
		contentWriteError(w, http.StatusServiceUnavailable, "content store not available")
		return
	}

	var req ItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		contentWriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.validate(); err != nil {
		contentWriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	now := m.now().UTC()
	item := req.apply(models.ContentItem{
		ID:        uuid.New().String(),
		Kind:      m.kind,
		CreatedAt: now,
	})
	item.UpdatedAt = now

	if err := m.store.Insert(r.Context(), &item); err != nil {
		m.writeStoreError(w, err, "create")
		return
	}

	m.publishChange(r.Context(), item.ID, item.Slug, ActionCreated)
	contentWriteJSON(w, http.StatusCreated, item)
}

// handleUpdate replaces an item's editable fields.
//
//	@Summary		Update content item
//	@Tags			content
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			kind	path		string		true	"Content kind"	Enums(articles, stories, ads)
//	@Param			id		path		string		true	"Item ID"
//	@Param			request	body		ItemRequest	true	"Item"
//	@Success		200		{object}	models.ContentItem
//	@Failure		400		{object}	models.APIProblem
//	@Failure		404		{object}	models.APIProblem
//	@Failure		409		{object}	models.APIProblem
//	@Router			/{kind}/{id} [put]
func (m *Module) handleUpdate(w http.ResponseWriter, r *http.Request) {
	if !auth.RequireRole(w, r, auth.RoleEditor) {
		return
	}
	if m.store == nil {
		contentWriteError(w, http.StatusServiceUnavailable, "content store not available")
		return
	}

	existing, err := m.store.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		m.writeStoreError(w, err, "update")
		return
	}

	var req ItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		contentWriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.validate(); err != nil {
		contentWriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	item := req.apply(*existing)
	item.UpdatedAt = m.now().UTC()
	if err := m.store.Update(r.Context(), &item); err != nil {
		m.writeStoreError(w, err, "update")
		return
	}

	m.publishChange(r.Context(), item.ID, item.Slug, ActionUpdated)
	contentWriteJSON(w, http.StatusOK, item)
}

// handleDelete removes an item.
//
//	@Summary		Delete content item
//	@Tags			content
//	@Security		BearerAuth
//	@Param			kind	path	string	true	"Content kind"	Enums(articles, stories, ads)
//	@Param			id		path	string	true	"Item ID"
//	@Success		204		"No Content"
//	@Failure		404		{object}	models.APIProblem
//	@Router			/{kind}/{id} [delete]
func (m *Module) handleDelete(w http.ResponseWriter, r *http.Request) {
	if !auth.RequireRole(w, r, auth.RoleEditor) {
		return
	}
	if m.store == nil {
		contentWriteError(w, http.StatusServiceUnavailable, "content store not available")
		return
	}

	id := r.PathValue("id")
	if err := m.store.Delete(r.Context(), id); err != nil {
		m.writeStoreError(w, err, "delete")
		return
	}

	m.publishChange(r.Context(), id, "", ActionDeleted)
	w.WriteHeader(http.StatusNoContent)
}

func (m *Module) writeStoreError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, ErrNotFound):
		contentWriteError(w, http.StatusNotFound, string(m.kind)+" item not found")
	case errors.Is(err, ErrSlugConflict):
		contentWriteError(w, http.StatusConflict, err.Error())
	default:
		m.logger.Error("content store error", zap.String("kind", string(m.kind)), zap.String("op", op), zap.Error(err))
		contentWriteError(w, http.StatusInternalServerError, "failed to "+op+" item")
	}
}

func (req *ItemRequest) validate() error {
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return errors.New("title is required")
	}
	if req.Slug != "" && !ValidSlug(req.Slug) {
		return errors.New("slug must be lowercase letters, digits and single hyphens")
	}
	if req.Status == "" {
		req.Status = models.StatusDraft
	}
	if !req.Status.Valid() {
		return errors.New("status must be draft or published")
	}
	if req.MediaURL != "" {
		u, err := url.Parse(req.MediaURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https" && u.Scheme != "") || (u.Scheme == "" && !strings.HasPrefix(u.Path, "/")) {
			return errors.New("mediaUrl must be an http(s) URL or an absolute path")
		}
	}
	return nil
}

// apply copies the request's fields onto item.
func (req *ItemRequest) apply(item models.ContentItem) models.ContentItem {
	item.Title = req.Title
	item.Slug = req.Slug
	item.Summary = req.Summary
	item.Body = req.Body
	item.Category = strings.TrimSpace(req.Category)
	item.Tags = req.Tags
	if item.Tags == nil {
		item.Tags = []string{}
	}
	item.MediaURL = req.MediaURL
	item.Status = req.Status
	item.Featured = req.Featured
	item.Attributes = req.Attributes
	return item
}

func contentWriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func contentWriteError(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"type":   "https://theboolean.in/problems/content-error",
		"title":  http.StatusText(status),
		"status": status,
		"detail": detail,
	})
}
