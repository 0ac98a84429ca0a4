package models

import "time"

// ContentKind names a content collection; each kind is served by its own
// module under /api/v1/{kind}.
type ContentKind string

const (
	KindArticles ContentKind = "articles"
	KindStories  ContentKind = "stories"
	KindAds      ContentKind = "ads"
)

// ContentKinds lists every kind in dashboard tab order.
var ContentKinds = []ContentKind{KindArticles, KindStories, KindAds}

// Valid reports whether k is a known kind.
func (k ContentKind) Valid() bool {
	for _, known := range ContentKinds {
		if k == known {
			return true
		}
	}
	return false
}

// ContentStatus is the publication state of an item.
type ContentStatus string

const (
	StatusDraft     ContentStatus = "draft"
	StatusPublished ContentStatus = "published"
)

// Valid reports whether s is a known status.
func (s ContentStatus) Valid() bool {
	return s == StatusDraft || s == StatusPublished
}

// ContentItem is an article, story or ad as managed by the admin panels.
type ContentItem struct {
	ID         string            `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Kind       ContentKind       `json:"kind" example:"articles"`
	Title      string            `json:"title" example:"Shipping a design system"`
	Slug       string            `json:"slug" example:"shipping-a-design-system"`
	Summary    string            `json:"summary,omitempty"`
	Body       string            `json:"body,omitempty"`
	Category   string            `json:"category,omitempty" example:"engineering"`
	Tags       []string          `json:"tags"`
	MediaURL   string            `json:"mediaUrl,omitempty" example:"https://cdn.example.com/audio/ep1.mp3"`
	Status     ContentStatus     `json:"status" example:"published"`
	Featured   bool              `json:"featured"`
	Attributes map[string]string `json:"attributes,omitempty"`
	CreatedAt  time.Time         `json:"createdAt"`
	UpdatedAt  time.Time         `json:"updatedAt"`
}

// Page is one page of a paginated listing.
type Page[T any] struct {
	Items    []T `json:"items"`
	Total    int `json:"total"`
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
}
