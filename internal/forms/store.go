package forms

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/thebooleanin/techstory-weaver/pkg/models"
)

// ErrNotFound is returned when a submission does not exist.
var ErrNotFound = errors.New("submission not found")

// ListParams filters and paginates submissions. Zero values mean "any".
type ListParams struct {
	Form     models.FormName
	Status   models.SubmissionStatus
	Page     int
	PageSize int
}

// SubmissionStore provides database access for form submissions.
type SubmissionStore struct {
	db *sql.DB
}

// NewStore creates a SubmissionStore backed by db.
func NewStore(db *sql.DB) *SubmissionStore {
	return &SubmissionStore{db: db}
}

const submissionColumns = `id, form, name, email, phone, company, message, fields, status, remote_ip, created_at`

// Insert stores a submission.
func (s *SubmissionStore) Insert(ctx context.Context, sub *models.Submission) error {
	fields := sub.Fields
	if fields == nil {
		fields = map[string]string{}
	}
	fb, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encode fields: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO form_submissions (`+submissionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sub.ID, sub.Form, sub.Name, sub.Email, sub.Phone, sub.Company, sub.Message,
		string(fb), sub.Status, sub.RemoteIP, sub.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert submission: %w", err)
	}
	return nil
}

// Get returns the submission with id.
func (s *SubmissionStore) Get(ctx context.Context, id string) (*models.Submission, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+submissionColumns+" FROM form_submissions WHERE id = ?", id)
	sub, err := scanSubmission(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return sub, err
}

// List returns one page of submissions, newest first, and the total count.
func (s *SubmissionStore) List(ctx context.Context, p ListParams) ([]models.Submission, int, error) {
	where := "1 = 1"
	var args []any
	if p.Form != "" {
		where += " AND form = ?"
		args = append(args, p.Form)
	}
	if p.Status != "" {
		where += " AND status = ?"
		args = append(args, p.Status)
	}

	var total int
	//nolint:gosec // where uses parameterized placeholders only
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM form_submissions WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count submissions: %w", err)
	}

	args = append(args, p.PageSize, (p.Page-1)*p.PageSize)
	//nolint:gosec // where uses parameterized placeholders only
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+submissionColumns+" FROM form_submissions WHERE "+where+
			" ORDER BY created_at DESC, id LIMIT ? OFFSET ?", args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()

	subs := []models.Submission{}
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, 0, err
		}
		subs = append(subs, *sub)
	}
	return subs, total, rows.Err()
}

// SetStatus updates the triage status of a submission.
func (s *SubmissionStore) SetStatus(ctx context.Context, id string, status models.SubmissionStatus) error {
	res, err := s.db.ExecContext(ctx, "UPDATE form_submissions SET status = ? WHERE id = ?", status, id)
	if err != nil {
		return fmt.Errorf("update submission status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a submission.
func (s *SubmissionStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM form_submissions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete submission: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubmission(row rowScanner) (*models.Submission, error) {
	var (
		sub    models.Submission
		fields string
	)
	err := row.Scan(&sub.ID, &sub.Form, &sub.Name, &sub.Email, &sub.Phone, &sub.Company,
		&sub.Message, &fields, &sub.Status, &sub.RemoteIP, &sub.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(fields), &sub.Fields); err != nil {
		return nil, fmt.Errorf("decode fields of %s: %w", sub.ID, err)
	}
	return &sub, nil
}
