// Package seed fills an empty site with demo content for local development
// and screenshots.
package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/thebooleanin/techstory-weaver/internal/content"
	"github.com/thebooleanin/techstory-weaver/pkg/models"
)

// Stores maps each content kind to its store. Kinds without a store are
// skipped.
type Stores map[models.ContentKind]*content.ContentStore

// SeedDemoContent inserts the demo articles, stories and ads and returns
// how many were added. It is idempotent: items whose slug already exists
// are left alone, so re-running is safe.
func SeedDemoContent(ctx context.Context, stores Stores) (int, error) {
	now := time.Now().UTC()
	added := 0

	for _, kind := range models.ContentKinds {
		store, ok := stores[kind]
		if !ok {
			continue
		}
		for _, item := range demoItems(kind, now) {
			_, err := store.GetBySlug(ctx, item.Slug)
			switch {
			case err == nil:
				continue
			case !errors.Is(err, content.ErrNotFound):
				return added, fmt.Errorf("seed %s %q: %w", kind, item.Slug, err)
			}

			item.ID = uuid.New().String()
			item.Kind = kind
			if err := store.Insert(ctx, &item); err != nil {
				return added, fmt.Errorf("seed %s %q: %w", kind, item.Slug, err)
			}
			added++
		}
	}
	return added, nil
}

// demoItems returns the demo set for kind, newest first.
func demoItems(kind models.ContentKind, now time.Time) []models.ContentItem {
	day := 24 * time.Hour
	at := func(daysAgo int) time.Time { return now.Add(-time.Duration(daysAgo) * day) }

	switch kind {
	case models.KindArticles:
		return []models.ContentItem{
			{
				Title: "Shipping a design system in six weeks", Slug: "shipping-a-design-system",
				Summary:  "How a five-person team replaced three UI kits with one token-driven library.",
				Body:     "We started from the color tokens and worked outwards...",
				Category: "Engineering", Tags: []string{"design-systems", "frontend"},
				Status: models.StatusPublished, Featured: true,
				CreatedAt: at(2), UpdatedAt: at(2),
			},
			{
				Title: "Edge caching for dynamic pages", Slug: "edge-caching-dynamic-pages",
				Summary:  "Stale-while-revalidate patterns that kept our p95 under 80ms.",
				Body:     "Most of the site is dynamic only in theory...",
				Category: "Infrastructure", Tags: []string{"performance", "cdn"},
				Status:    models.StatusPublished,
				CreatedAt: at(9), UpdatedAt: at(7),
			},
			{
				Title: "Notes on our hiring loop", Slug: "notes-on-our-hiring-loop",
				Summary:  "Draft: what changed after a year of take-home-free interviews.",
				Category: "Culture", Tags: []string{"hiring"},
				Status:    models.StatusDraft,
				CreatedAt: at(1), UpdatedAt: at(1),
			},
		}
	case models.KindStories:
		return []models.ContentItem{
			{
				Title: "From garage to global", Slug: "from-garage-to-global",
				Summary:  "A founder on taking a two-person studio to clients in nine countries.",
				Category: "Founders", Tags: []string{"podcast"},
				MediaURL: "/media/stories/from-garage-to-global.mp3",
				Status:   models.StatusPublished, Featured: true,
				Attributes: map[string]string{"duration": "24:13", "guest": "Meera Rao"},
				CreatedAt:  at(4), UpdatedAt: at(4),
			},
			{
				Title: "Rebuilding after an outage", Slug: "rebuilding-after-an-outage",
				Summary:  "An SRE lead walks through the week after a regional failure.",
				Category: "Operations", Tags: []string{"podcast", "sre"},
				MediaURL:   "/media/stories/rebuilding-after-an-outage.mp3",
				Status:     models.StatusPublished,
				Attributes: map[string]string{"duration": "31:40", "guest": "Daniel Okafor"},
				CreatedAt:  at(18), UpdatedAt: at(18),
			},
		}
	case models.KindAds:
		return []models.ContentItem{
			{
				Title: "Cloud migration workshop", Slug: "cloud-migration-workshop",
				Summary:  "Two days, your workloads, our architects.",
				MediaURL: "/media/ads/cloud-workshop.png",
				Category: "Services", Status: models.StatusPublished, Featured: true,
				Attributes: map[string]string{"placement": "homepage-hero", "ctaUrl": "/contact"},
				CreatedAt:  at(3), UpdatedAt: at(3),
			},
			{
				Title: "Security review", Slug: "security-review",
				Summary:  "A fixed-price audit of your web stack.",
				Category: "Services", Status: models.StatusDraft,
				Attributes: map[string]string{"placement": "sidebar", "ctaUrl": "/contact"},
				CreatedAt:  at(1), UpdatedAt: at(1),
			},
		}
	}
	return nil
}
