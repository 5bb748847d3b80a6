package application

import (
	"errors"
	"time"
)

type Status string

const (
	StatusSaved         Status = "saved"
	StatusApplied       Status = "applied"
	StatusInterviewing  Status = "interviewing"
	StatusOfferReceived Status = "offer_received"
	StatusRejected      Status = "rejected"
	StatusArchived      Status = "archived"
)

// Any status may follow any other; no transition order is enforced.
func (s Status) Valid() bool {
	switch s {
	case StatusSaved, StatusApplied, StatusInterviewing, StatusOfferReceived, StatusRejected, StatusArchived:
		return true
	}
	return false
}

var (
	ErrNotFound         = errors.New("job application not found")
	ErrFieldNotNullable = errors.New("field cannot be null")
)

type Application struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	JobTitle    string     `json:"job_title"`
	CompanyName string     `json:"company_name"`
	JobURL      *string    `json:"job_url"`
	Status      Status     `json:"status"`
	Notes       *string    `json:"notes"`
	AppliedAt   *time.Time `json:"applied_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Page is an owner-scoped offset window.
type Page struct {
	Skip  int
	Limit int
}

type CreateRequest struct {
	JobTitle    string     `json:"job_title" binding:"required,max=255"`
	CompanyName string     `json:"company_name" binding:"required,max=255"`
	JobURL      *string    `json:"job_url" binding:"omitempty,max=2048"`
	Status      Status     `json:"status" binding:"omitempty,oneof=saved applied interviewing offer_received rejected archived"`
	Notes       *string    `json:"notes"`
	AppliedAt   *time.Time `json:"applied_at"`
}

// UpdateRequest is a partial update: nil pointers leave the stored value alone,
// Clear* flags null out optional columns.
type UpdateRequest struct {
	JobTitle    *string    `json:"job_title" binding:"omitempty,min=1,max=255"`
	CompanyName *string    `json:"company_name" binding:"omitempty,min=1,max=255"`
	JobURL      *string    `json:"job_url" binding:"omitempty,max=2048"`
	Status      *Status    `json:"status" binding:"omitempty,oneof=saved applied interviewing offer_received rejected archived"`
	Notes       *string    `json:"notes"`
	AppliedAt   *time.Time `json:"applied_at"`

	ClearJobURL    bool `json:"-"`
	ClearNotes     bool `json:"-"`
	ClearAppliedAt bool `json:"-"`
}

// MarkNull records that the payload carried an explicit null for the given JSON key.
func (r *UpdateRequest) MarkNull(key string) error {
	switch key {
	case "job_url":
		r.ClearJobURL = true
	case "notes":
		r.ClearNotes = true
	case "applied_at":
		r.ClearAppliedAt = true
	case "job_title", "company_name", "status":
		return ErrFieldNotNullable
	}
	return nil
}
