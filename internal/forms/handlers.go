package forms

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/thebooleanin/techstory-weaver/internal/auth"
	"github.com/thebooleanin/techstory-weaver/internal/event"
	"github.com/thebooleanin/techstory-weaver/pkg/models"
	"github.com/thebooleanin/techstory-weaver/pkg/plugin"
	"go.uber.org/zap"
)

const (
	maxNameLen   = 200
	maxFieldLen  = 500
	maxExtraKeys = 20
	maxBodyBytes = 64 << 10
)

// SubmitRequest is the body of a public form submission.
// @Description Contact or registration form entry.
type SubmitRequest struct {
	Name    string            `json:"name" example:"Ada Lovelace"`
	Email   string            `json:"email" example:"ada@example.com"`
	Phone   string            `json:"phone,omitempty" example:"+91 98765 43210"`
	Company string            `json:"company,omitempty" example:"Analytical Engines"`
	Message string            `json:"message,omitempty" example:"We would like a quote."`
	Fields  map[string]string `json:"fields,omitempty"`
}

// SubmitResponse acknowledges an accepted submission.
// @Description Accepted submission reference.
type SubmitResponse struct {
	ID     string                  `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Status models.SubmissionStatus `json:"status" example:"new"`
}

// StatusRequest changes a submission's triage status.
// @Description New triage status.
type StatusRequest struct {
	Status models.SubmissionStatus `json:"status" example:"read"`
}

// Routes implements plugin.HTTPProvider.
func (m *Module) Routes() []plugin.Route {
	return []plugin.Route{
		{Method: "POST", Path: "/{form}", Handler: m.handleSubmit},
		{Method: "GET", Path: "/submissions", Handler: m.handleList},
		{Method: "GET", Path: "/submissions/{id}", Handler: m.handleGet},
		{Method: "PATCH", Path: "/submissions/{id}", Handler: m.handleSetStatus},
		{Method: "DELETE", Path: "/submissions/{id}", Handler: m.handleDelete},
	}
}

// handleSubmit accepts a public form submission.
//
//	@Summary		Submit form
//	@Description	Stores a contact or registration submission and notifies subscribers. Rate limited per client IP.
//	@Tags			forms
//	@Accept			json
//	@Produce		json
//	@Param			form	path		string			true	"Form name"	Enums(contact, registration)
//	@Param			request	body		SubmitRequest	true	"Submission"
//	@Success		201		{object}	SubmitResponse
//	@Failure		400		{object}	models.APIProblem
//	@Failure		404		{object}	models.APIProblem
//	@Failure		429		{object}	models.APIProblem
//	@Router			/forms/{form} [post]
func (m *Module) handleSubmit(w http.ResponseWriter, r *http.Request) {
	form := models.FormName(r.PathValue("form"))
	if !form.Valid() {
		formsWriteError(w, http.StatusNotFound, "unknown form "+strconv.Quote(string(form)))
		return
	}

	ip := m.clientIP(r)
	if !m.limiter.Allow(ip) {
		submissions.WithLabelValues(string(form), "limited").Inc()
		w.Header().Set("Retry-After", "60")
		formsWriteError(w, http.StatusTooManyRequests, "too many submissions, try again later")
		return
	}

	if m.store == nil {
		formsWriteError(w, http.StatusServiceUnavailable, "submission store not available")
		return
	}

	var req SubmitRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		submissions.WithLabelValues(string(form), "invalid").Inc()
		formsWriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.validate(m.cfg.MaxMessageLen); err != nil {
		submissions.WithLabelValues(string(form), "invalid").Inc()
		formsWriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	sub := models.Submission{
		ID:        uuid.New().String(),
		Form:      form,
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Company:   req.Company,
		Message:   req.Message,
		Fields:    req.Fields,
		Status:    models.SubmissionNew,
		RemoteIP:  ip,
		CreatedAt: m.now().UTC(),
	}
	if err := m.store.Insert(r.Context(), &sub); err != nil {
		submissions.WithLabelValues(string(form), "error").Inc()
		m.logger.Error("failed to store submission", zap.String("form", string(form)), zap.Error(err))
		formsWriteError(w, http.StatusInternalServerError, "failed to store submission")
		return
	}
	submissions.WithLabelValues(string(form), "accepted").Inc()

	m.logger.Info("form submitted",
		zap.String("form", string(form)),
		zap.String("id", sub.ID),
		zap.String("remote_ip", ip),
	)

	if m.bus != nil {
		m.bus.PublishAsync(context.WithoutCancel(r.Context()), plugin.Event{
			Topic:     event.TopicFormsSubmitted,
			Source:    "forms",
			Timestamp: sub.CreatedAt,
			Payload:   sub,
		})
	}

	formsWriteJSON(w, http.StatusCreated, SubmitResponse{ID: sub.ID, Status: sub.Status})
}

// handleList returns submissions for the admin panel.
//
//	@Summary		List submissions
//	@Tags			forms
//	@Produce		json
//	@Security		BearerAuth
//	@Param			form		query		string	false	"Form name"
//	@Param			status		query		string	false	"new, read or archived"
//	@Param			page		query		int		false	"Page number"	default(1)
//	@Param			page_size	query		int		false	"Page size"		default(20)	maximum(100)
//	@Success		200			{object}	models.Page[models.Submission]
//	@Failure		400			{object}	models.APIProblem
//	@Failure		403			{object}	models.APIProblem
//	@Router			/forms/submissions [get]
func (m *Module) handleList(w http.ResponseWriter, r *http.Request) {
	if !auth.RequireRole(w, r, auth.RoleAdmin) {
		return
	}
	if m.store == nil {
		formsWriteError(w, http.StatusServiceUnavailable, "submission store not available")
		return
	}

	q := r.URL.Query()
	p := ListParams{
		Form:     models.FormName(q.Get("form")),
		Status:   models.SubmissionStatus(q.Get("status")),
		Page:     1,
		PageSize: m.cfg.DefaultPageSize,
	}
	if p.Form != "" && !p.Form.Valid() {
		formsWriteError(w, http.StatusBadRequest, "form must be contact or registration")
		return
	}
	if p.Status != "" && !p.Status.Valid() {
		formsWriteError(w, http.StatusBadRequest, "status must be new, read or archived")
		return
	}
	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			formsWriteError(w, http.StatusBadRequest, "page must be an integer")
			return
		}
		p.Page = max(n, 1)
	}
	if v := q.Get("page_size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			formsWriteError(w, http.StatusBadRequest, "page_size must be an integer")
			return
		}
		p.PageSize = min(max(n, 1), m.cfg.MaxPageSize)
	}

	subs, total, err := m.store.List(r.Context(), p)
	if err != nil {
		m.logger.Warn("failed to list submissions", zap.Error(err))
		formsWriteError(w, http.StatusInternalServerError, "failed to list submissions")
		return
	}
	formsWriteJSON(w, http.StatusOK, models.Page[models.Submission]{
		Items:    subs,
		Total:    total,
		Page:     p.Page,
		PageSize: p.PageSize,
	})
}

// handleGet returns one submission.
//
//	@Summary		Get submission
//	@Tags			forms
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Submission ID"
//	@Success		200	{object}	models.Submission
//	@Failure		404	{object}	models.APIProblem
//	@Router			/forms/submissions/{id} [get]
func (m *Module) handleGet(w http.ResponseWriter, r *http.Request) {
	if !auth.RequireRole(w, r, auth.RoleAdmin) {
		return
	}
	if m.store == nil {
		formsWriteError(w, http.StatusServiceUnavailable, "submission store not available")
		return
	}
	sub, err := m.store.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		m.writeStoreError(w, err, "get")
		return
	}
	formsWriteJSON(w, http.StatusOK, sub)
}

// handleSetStatus moves a submission between new, read and archived.
//
//	@Summary		Set submission status
//	@Tags			forms
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string			true	"Submission ID"
//	@Param			request	body		StatusRequest	true	"New status"
//	@Success		200		{object}	models.Submission
//	@Failure		400		{object}	models.APIProblem
//	@Failure		404		{object}	models.APIProblem
//	@Router			/forms/submissions/{id} [patch]
func (m *Module) handleSetStatus(w http.ResponseWriter, r *http.Request) {
	if !auth.RequireRole(w, r, auth.RoleAdmin) {
		return
	}
	if m.store == nil {
		formsWriteError(w, http.StatusServiceUnavailable, "submission store not available")
		return
	}

	var req StatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		formsWriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !req.Status.Valid() {
		formsWriteError(w, http.StatusBadRequest, "status must be new, read or archived")
		return
	}

	id := r.PathValue("id")
	if err := m.store.SetStatus(r.Context(), id, req.Status); err != nil {
		m.writeStoreError(w, err, "update")
		return
	}
	sub, err := m.store.Get(r.Context(), id)
	if err != nil {
		m.writeStoreError(w, err, "get")
		return
	}
	formsWriteJSON(w, http.StatusOK, sub)
}

// handleDelete removes a submission.
//
//	@Summary		Delete submission
//	@Tags			forms
//	@Security		BearerAuth
//	@Param			id	path	string	true	"Submission ID"
//	@Success		204	"No Content"
//	@Failure		404	{object}	models.APIProblem
//	@Router			/forms/submissions/{id} [delete]
func (m *Module) handleDelete(w http.ResponseWriter, r *http.Request) {
	if !auth.RequireRole(w, r, auth.RoleAdmin) {
		return
	}
	if m.store == nil {
		formsWriteError(w, http.StatusServiceUnavailable, "submission store not available")
		return
	}
	if err := m.store.Delete(r.Context(), r.PathValue("id")); err != nil {
		m.writeStoreError(w, err, "delete")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (m *Module) writeStoreError(w http.ResponseWriter, err error, op string) {
	if errors.Is(err, ErrNotFound) {
		formsWriteError(w, http.StatusNotFound, "submission not found")
		return
	}
	m.logger.Error("submission store error", zap.String("op", op), zap.Error(err))
	formsWriteError(w, http.StatusInternalServerError, "failed to "+op+" submission")
}

// validate trims and checks the request in place.
func (req *SubmitRequest) validate(maxMessage int) error {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)
	req.Company = strings.TrimSpace(req.Company)
	req.Message = strings.TrimSpace(req.Message)

	if req.Name == "" {
		return errors.New("name is required")
	}
	if len(req.Name) > maxNameLen {
		return errors.New("name is too long")
	}
	if req.Email == "" {
		return errors.New("email is required")
	}
	addr, err := mail.ParseAddress(req.Email)
	if err != nil || addr.Address != req.Email {
		return errors.New("email is not a valid address")
	}
	if len(req.Phone) > maxFieldLen || len(req.Company) > maxFieldLen {
		return errors.New("phone and company must be at most 500 characters")
	}
	if len(req.Message) > maxMessage {
		return errors.New("message must be at most " + strconv.Itoa(maxMessage) + " characters")
	}
	if len(req.Fields) > maxExtraKeys {
		return errors.New("too many extra fields")
	}
	for k, v := range req.Fields {
		if k == "" || len(k) > 64 || len(v) > maxFieldLen {
			return errors.New("extra fields must have keys up to 64 and values up to 500 characters")
		}
	}
	return nil
}

func formsWriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func formsWriteError(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"type":   "https://theboolean.in/problems/forms-error",
		"title":  http.StatusText(status),
		"status": status,
		"detail": detail,
	})
}
