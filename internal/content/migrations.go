package content

import (
	"context"
	"database/sql"

	"github.com/thebooleanin/techstory-weaver/pkg/plugin"
)

// Migrate applies the content schema to store. Tools that open the
// database without the plugins, such as the demo seeder, call it directly.
func Migrate(ctx context.Context, store plugin.Store) error {
	return store.Migrate(ctx, "content", migrations())
}

// All kinds share one table; every content module runs the same
// migrations under the "content" key, so whichever initializes first
// creates it.
func migrations() []plugin.Migration {
	return []plugin.Migration{
		{
			Version:     1,
			Description: "create content_items table",
			Up: func(tx *sql.Tx) error {
				stmts := []string{
					`CREATE TABLE IF NOT EXISTS content_items (
						id          TEXT PRIMARY KEY,
						kind        TEXT NOT NULL,
						title       TEXT NOT NULL,
						slug        TEXT NOT NULL,
						summary     TEXT NOT NULL DEFAULT '',
						body        TEXT NOT NULL DEFAULT '',
						category    TEXT NOT NULL DEFAULT '',
						tags        TEXT NOT NULL DEFAULT '[]',
						media_url   TEXT NOT NULL DEFAULT '',
						status      TEXT NOT NULL DEFAULT 'draft',
						featured    INTEGER NOT NULL DEFAULT 0,
						attributes  TEXT NOT NULL DEFAULT '{}',
						created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
						updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
						UNIQUE (kind, slug)
					)`,
					`CREATE INDEX IF NOT EXISTS idx_content_items_kind_status ON content_items(kind, status, created_at)`,
					`CREATE INDEX IF NOT EXISTS idx_content_items_kind_category ON content_items(kind, category)`,
				}
				for _, stmt := range stmts {
					if _, err := tx.Exec(stmt); err != nil {
						return err
					}
				}
				return nil
			},
		},
	}
}
