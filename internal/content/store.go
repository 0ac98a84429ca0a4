package content

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/thebooleanin/techstory-weaver/pkg/models"
)

// Store errors.
var (
	ErrNotFound     = errors.New("content item not found")
	ErrSlugConflict = errors.New("slug already in use")
)

// ListParams filters and paginates a listing. Zero values mean "any".
type ListParams struct {
	Query    string
	Category string
	Status   models.ContentStatus
	Featured *bool
	Page     int
	PageSize int
}

// ContentStore provides database access for one content kind.
type ContentStore struct {
	db   *sql.DB
	kind models.ContentKind
}

// NewStore creates a ContentStore scoped to kind.
func NewStore(db *sql.DB, kind models.ContentKind) *ContentStore {
	return &ContentStore{db: db, kind: kind}
}

const itemColumns = `id, kind, title, slug, summary, body, category, tags, media_url,
	status, featured, attributes, created_at, updated_at`

// Insert stores a new item. An empty slug is derived from the title and
// made unique with a numeric suffix; an explicit slug that is taken
// returns ErrSlugConflict.
func (s *ContentStore) Insert(ctx context.Context, item *models.ContentItem) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if item.Slug == "" {
		if item.Slug, err = s.freeSlug(ctx, tx, Slugify(item.Title), ""); err != nil {
			return err
		}
	} else if err := s.checkSlug(ctx, tx, item.Slug, ""); err != nil {
		return err
	}

	tags, attrs, err := encodeCollections(item)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO content_items (`+itemColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID, s.kind, item.Title, item.Slug, item.Summary, item.Body, item.Category,
		tags, item.MediaURL, item.Status, item.Featured, attrs, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert %s item: %w", s.kind, mapUnique(err))
	}
	return tx.Commit()
}

// Update overwrites an existing item. The slug rules match Insert, except
// the item may keep its own slug.
func (s *ContentStore) Update(ctx context.Context, item *models.ContentItem) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if item.Slug == "" {
		if item.Slug, err = s.freeSlug(ctx, tx, Slugify(item.Title), item.ID); err != nil {
			return err
		}
	} else if err := s.checkSlug(ctx, tx, item.Slug, item.ID); err != nil {
		return err
	}

	tags, attrs, err := encodeCollections(item)
	if err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `
		UPDATE content_items SET
			title = ?, slug = ?, summary = ?, body = ?, category = ?, tags = ?,
			media_url = ?, status = ?, featured = ?, attributes = ?, updated_at = ?
		WHERE id = ? AND kind = ?`,
		item.Title, item.Slug, item.Summary, item.Body, item.Category, tags,
		item.MediaURL, item.Status, item.Featured, attrs, item.UpdatedAt,
		item.ID, s.kind,
	)
	if err != nil {
		return fmt.Errorf("update %s item: %w", s.kind, mapUnique(err))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

// Get returns the item with id.
func (s *ContentStore) Get(ctx context.Context, id string) (*models.ContentItem, error) {
	return s.getOne(ctx, "id = ?", id)
}

// GetBySlug returns the item with slug.
func (s *ContentStore) GetBySlug(ctx context.Context, slug string) (*models.ContentItem, error) {
	return s.getOne(ctx, "slug = ?", slug)
}

func (s *ContentStore) getOne(ctx context.Context, cond string, arg string) (*models.ContentItem, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+itemColumns+" FROM content_items WHERE kind = ? AND "+cond, s.kind, arg) //nolint:gosec // cond is a constant
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return item, err
}

// Delete removes the item with id.
func (s *ContentStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM content_items WHERE id = ? AND kind = ?", id, s.kind)
	if err != nil {
		return fmt.Errorf("delete %s item: %w", s.kind, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns one page of items, newest first, and the total match count.
func (s *ContentStore) List(ctx context.Context, p ListParams) ([]models.ContentItem, int, error) {
	where := "kind = ?"
	args := []any{s.kind}
	if p.Query != "" {
		like := "%" + escapeLike(p.Query) + "%"
		where += ` AND (title LIKE ? ESCAPE '\' OR summary LIKE ? ESCAPE '\')`
		args = append(args, like, like)
	}
	if p.Category != "" {
		where += " AND category = ?"
		args = append(args, p.Category)
	}
	if p.Status != "" {
		where += " AND status = ?"
		args = append(args, p.Status)
	}
	if p.Featured != nil {
		where += " AND featured = ?"
		args = append(args, *p.Featured)
	}

	var total int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM content_items WHERE "+where, args..., //nolint:gosec // where uses parameterized placeholders only
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count %s items: %w", s.kind, err)
	}

	queryArgs := append(args[:len(args):len(args)], p.PageSize, (p.Page-1)*p.PageSize)
	//nolint:gosec // where uses parameterized placeholders only
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+itemColumns+" FROM content_items WHERE "+where+
			" ORDER BY created_at DESC, id LIMIT ? OFFSET ?",
		queryArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("list %s items: %w", s.kind, err)
	}
	defer rows.Close()

	items := []models.ContentItem{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, *item)
	}
	return items, total, rows.Err()
}

// Categories returns the distinct non-empty categories of published items.
func (s *ContentStore) Categories(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT category FROM content_items
		WHERE kind = ? AND status = ? AND category != ''
		ORDER BY category`, s.kind, models.StatusPublished)
	if err != nil {
		return nil, fmt.Errorf("list %s categories: %w", s.kind, err)
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// checkSlug returns ErrSlugConflict when slug belongs to an item other
// than selfID.
func (s *ContentStore) checkSlug(ctx context.Context, tx *sql.Tx, slug, selfID string) error {
	var owner string
	err := tx.QueryRowContext(ctx,
		"SELECT id FROM content_items WHERE kind = ? AND slug = ?", s.kind, slug,
	).Scan(&owner)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil
	case err != nil:
		return fmt.Errorf("check slug: %w", err)
	case owner != selfID:
		return fmt.Errorf("%w: %q", ErrSlugConflict, slug)
	}
	return nil
}

// freeSlug returns base, or base-2, base-3, ... whichever is free first.
func (s *ContentStore) freeSlug(ctx context.Context, tx *sql.Tx, base, selfID string) (string, error) {
	if base == "" {
		base = string(s.kind)
	}
	candidate := base
	for n := 2; ; n++ {
		err := s.checkSlug(ctx, tx, candidate, selfID)
		if err == nil {
			return candidate, nil
		}
		if !errors.Is(err, ErrSlugConflict) {
			return "", err
		}
		candidate = suffixSlug(base, n)
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*models.ContentItem, error) {
	var (
		item  models.ContentItem
		tags  string
		attrs string
	)
	err := row.Scan(
		&item.ID, &item.Kind, &item.Title, &item.Slug, &item.Summary, &item.Body,
		&item.Category, &tags, &item.MediaURL, &item.Status, &item.Featured, &attrs,
		&item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(tags), &item.Tags); err != nil {
		return nil, fmt.Errorf("decode tags of %s: %w", item.ID, err)
	}
	if err := json.Unmarshal([]byte(attrs), &item.Attributes); err != nil {
		return nil, fmt.Errorf("decode attributes of %s: %w", item.ID, err)
	}
	if item.Tags == nil {
		item.Tags = []string{}
	}
	return &item, nil
}

func encodeCollections(item *models.ContentItem) (tags, attrs string, err error) {
	t := item.Tags
	if t == nil {
		t = []string{}
	}
	tb, err := json.Marshal(t)
	if err != nil {
		return "", "", fmt.Errorf("encode tags: %w", err)
	}
	a := item.Attributes
	if a == nil {
		a = map[string]string{}
	}
	ab, err := json.Marshal(a)
	if err != nil {
		return "", "", fmt.Errorf("encode attributes: %w", err)
	}
	return string(tb), string(ab), nil
}

// mapUnique turns a lost race on the (kind, slug) index into ErrSlugConflict.
func mapUnique(err error) error {
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return fmt.Errorf("%w: %w", ErrSlugConflict, err)
	}
	return err
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
