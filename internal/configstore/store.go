// Package configstore persists named configuration documents (theme, site)
// as opaque JSON blobs.
package configstore

import (
	"context"
	"errors"
)

// Well-known keys. Each key holds an independent schema.
const (
	KeyTheme = "themeConfig"
	KeySite  = "siteConfig"
)

// ErrNotFound is returned by Load when the key has never been saved.
var ErrNotFound = errors.New("config key not found")

// Store loads and saves configuration documents. Save replaces the whole
// value or fails without changing it.
type Store interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte) error
}
