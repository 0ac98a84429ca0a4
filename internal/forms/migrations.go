package forms

import (
	"database/sql"

	"github.com/thebooleanin/techstory-weaver/pkg/plugin"
)

func migrations() []plugin.Migration {
	return []plugin.Migration{
		{
			Version:     1,
			Description: "create form_submissions table",
			Up: func(tx *sql.Tx) error {
				stmts := []string{
					`CREATE TABLE form_submissions (
						id          TEXT PRIMARY KEY,
						form        TEXT NOT NULL,
						name        TEXT NOT NULL,
						email       TEXT NOT NULL,
						phone       TEXT NOT NULL DEFAULT '',
						company     TEXT NOT NULL DEFAULT '',
						message     TEXT NOT NULL DEFAULT '',
						fields      TEXT NOT NULL DEFAULT '{}',
						status      TEXT NOT NULL DEFAULT 'new',
						remote_ip   TEXT NOT NULL DEFAULT '',
						created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
					)`,
					`CREATE INDEX idx_form_submissions_form_status ON form_submissions(form, status, created_at)`,
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
