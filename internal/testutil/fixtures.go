// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/thebooleanin/techstory-weaver/internal/store"
	"github.com/thebooleanin/techstory-weaver/pkg/models"
)

// NewStore opens an in-memory database closed at test cleanup.
func NewStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	s, err := store.New(":memory:")
	if err != nil {
		t.Fatalf("open in-memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// NewContentItem returns a published article with sensible defaults.
// Override individual fields with the With* options.
func NewContentItem(opts ...func(*models.ContentItem)) models.ContentItem {
	now := time.Now().UTC()
	item := models.ContentItem{
		ID:        uuid.New().String(),
		Kind:      models.KindArticles,
		Title:     "Designing with HSL",
		Summary:   "Why hue, saturation and lightness make theming easier.",
		Body:      "Long form body.",
		Category:  "design",
		Tags:      []string{"color", "css"},
		Status:    models.StatusPublished,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(&item)
	}
	return item
}

// WithTitle sets the item title and clears the slug so it is regenerated.
func WithTitle(title string) func(*models.ContentItem) {
	return func(i *models.ContentItem) { i.Title = title; i.Slug = "" }
}

// WithKind sets the item kind.
func WithKind(k models.ContentKind) func(*models.ContentItem) {
	return func(i *models.ContentItem) { i.Kind = k }
}

// WithStatus sets the publication status.
func WithStatus(s models.ContentStatus) func(*models.ContentItem) {
	return func(i *models.ContentItem) { i.Status = s }
}

// WithCategory sets the category.
func WithCategory(c string) func(*models.ContentItem) {
	return func(i *models.ContentItem) { i.Category = c }
}

// WithFeatured marks the item featured.
func WithFeatured() func(*models.ContentItem) {
	return func(i *models.ContentItem) { i.Featured = true }
}

// NewSubmission returns a new contact form submission.
func NewSubmission(opts ...func(*models.Submission)) models.Submission {
	s := models.Submission{
		ID:        uuid.New().String(),
		Form:      models.FormContact,
		Name:      "Ada Lovelace",
		Email:     "ada@example.com",
		Message:   "We would like a quote.",
		Status:    models.SubmissionNew,
		CreatedAt: time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// WithForm sets the submission form.
func WithForm(f models.FormName) func(*models.Submission) {
	return func(s *models.Submission) { s.Form = f }
}

// WithSubmissionStatus sets the triage status.
func WithSubmissionStatus(st models.SubmissionStatus) func(*models.Submission) {
	return func(s *models.Submission) { s.Status = st }
}
