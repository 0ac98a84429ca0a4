package models

import "time"

// FormName identifies a public form.
type FormName string

const (
	FormContact      FormName = "contact"
	FormRegistration FormName = "registration"
)

// Valid reports whether f is an accepted form.
func (f FormName) Valid() bool {
	return f == FormContact || f == FormRegistration
}

// SubmissionStatus tracks admin triage of a submission.
type SubmissionStatus string

const (
	SubmissionNew      SubmissionStatus = "new"
	SubmissionRead     SubmissionStatus = "read"
	SubmissionArchived SubmissionStatus = "archived"
)

// Valid reports whether s is a known status.
func (s SubmissionStatus) Valid() bool {
	switch s {
	case SubmissionNew, SubmissionRead, SubmissionArchived:
		return true
	}
	return false
}

// Submission is one contact or registration form entry.
type Submission struct {
	ID        string            `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Form      FormName          `json:"form" example:"contact"`
	Name      string            `json:"name" example:"Ada Lovelace"`
	Email     string            `json:"email" example:"ada@example.com"`
	Phone     string            `json:"phone,omitempty"`
	Company   string            `json:"company,omitempty"`
	Message   string            `json:"message,omitempty"`
	Fields    map[string]string `json:"fields,omitempty"`
	Status    SubmissionStatus  `json:"status" example:"new"`
	RemoteIP  string            `json:"-"`
	CreatedAt time.Time         `json:"createdAt"`
}
