package application

import (
	"time"

	"github.com/google/uuid"
)

func NewFromCreateRequest(userID string, req CreateRequest) Application {
	// postgres keeps microseconds; match it so responses equal stored rows
	now := time.Now().UTC().Truncate(time.Microsecond)

	status := req.Status
	if status == "" {
		status = StatusSaved
	}

	return Application{
		ID:          uuid.NewString(),
		UserID:      userID,
		JobTitle:    req.JobTitle,
		CompanyName: req.CompanyName,
		JobURL:      req.JobURL,
		Status:      status,
		Notes:       req.Notes,
		AppliedAt:   req.AppliedAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Merge returns a copy of a with the fields present in req applied.
// updated_at always moves forward, even when the clock has not.
func (a Application) Merge(req UpdateRequest, now time.Time) Application {
	out := a

	if req.JobTitle != nil {
		out.JobTitle = *req.JobTitle
	}
	if req.CompanyName != nil {
		out.CompanyName = *req.CompanyName
	}
	if req.Status != nil {
		out.Status = *req.Status
	}

	switch {
	case req.JobURL != nil:
		out.JobURL = req.JobURL
	case req.ClearJobURL:
		out.JobURL = nil
	}

	switch {
	case req.Notes != nil:
		out.Notes = req.Notes
	case req.ClearNotes:
		out.Notes = nil
	}

	switch {
	case req.AppliedAt != nil:
		out.AppliedAt = req.AppliedAt
	case req.ClearAppliedAt:
		out.AppliedAt = nil
	}

	if !now.After(a.UpdatedAt) {
		now = a.UpdatedAt.Add(time.Microsecond)
	}
	out.UpdatedAt = now

	return out
}
