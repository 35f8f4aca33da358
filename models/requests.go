package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// CreateComplaintRequest carries a citizen complaint submission. PhotoPath
// is filled by the handler after the blob store accepts the upload.
type CreateComplaintRequest struct {
	Category    string `json:"category"`
	Location    string `json:"location"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	IsUrgent    bool   `json:"is_urgent"`
	PhotoPath   string `json:"-"`
}

// OptionalInt64 distinguishes three JSON states for a field: absent,
// explicit null, and a value. Omitted fields are left untouched by partial
// updates; explicit null clears them.
type OptionalInt64 struct {
	Present bool
	Value   *int64
}

// UnmarshalJSON is only invoked when the key is present in the payload.
func (o *OptionalInt64) UnmarshalJSON(b []byte) error {
	o.Present = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		o.Value = nil
		return nil
	}
	var v int64
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("invalid id value: %w", err)
	}
	o.Value = &v
	return nil
}

// MarshalJSON round-trips the tri-state for logging and tests.
func (o OptionalInt64) MarshalJSON() ([]byte, error) {
	if !o.Present || o.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*o.Value)
}

// AdminUpdateRequest is the combined admin operation: any subset of status,
// priority, and assignment may be supplied in one call.
type AdminUpdateRequest struct {
	Status     *string       `json:"status"`
	Priority   *string       `json:"priority"`
	AssignedTo OptionalInt64 `json:"assigned_to"`
	Comment    string        `json:"comment"`
}

// AssignRequest assigns a complaint to a staff member.
type AssignRequest struct {
	StaffID int64 `json:"staff_id"`
}

// ToggleUrgentRequest flips the urgency override.
type ToggleUrgentRequest struct {
	IsUrgent bool `json:"is_urgent"`
}

// WorkerStatusRequest is the assigned worker's status update. ProofPath is
// filled by the handler after the blob store accepts the upload.
type WorkerStatusRequest struct {
	Status    string `json:"status"`
	Comment   string `json:"comment"`
	ProofPath string `json:"-"`
}

// CommentRequest appends a citizen comment.
type CommentRequest struct {
	Comment string `json:"comment"`
}

// FeedbackRequest submits the one-time rating for a resolved complaint.
type FeedbackRequest struct {
	Rating   int    `json:"rating"`
	Feedback string `json:"feedback"`
}

// RegisterRequest creates a citizen account.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// LoginRequest verifies credentials and issues a token.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// CreateStaffRequest is the admin operation that creates a staff account.
type CreateStaffRequest struct {
	StaffID  string `json:"staff_id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// UpdateProfileRequest updates the caller's own profile fields.
type UpdateProfileRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	City    string `json:"city"`
	Pincode string `json:"pincode"`
}

// ComplaintSummary is the list-view projection of a complaint, enriched
// with display names resolved from the identity store.
type ComplaintSummary struct {
	ID             string    `json:"id"`
	Code           string    `json:"complaint_id"`
	Category       string    `json:"category"`
	Location       string    `json:"location"`
	Description    string    `json:"description"`
	Status         Status    `json:"status"`
	Priority       Priority  `json:"priority"`
	IsUrgent       bool      `json:"is_urgent"`
	Department     string    `json:"department"`
	DepartmentCode string    `json:"department_code"`
	CreatedAt      time.Time `json:"created_at"`
	SLADeadline    time.Time `json:"sla_deadline"`
	SLABreached    bool      `json:"sla_breached"`
	AgeDays        int       `json:"age_days"`
	UserName       string    `json:"user_name,omitempty"`
	UserEmail      string    `json:"user_email,omitempty"`
	AssignedTo     *int64    `json:"assigned_to"`
	AssignedToName string    `json:"assigned_to_name,omitempty"`
}

// ComplaintDetail is the full single-complaint view including the audit
// trail and resolved display names.
type ComplaintDetail struct {
	Complaint
	IDHex          string          `json:"id"`
	SLABreachedNow bool            `json:"sla_breached"`
	AgeDaysNow     int             `json:"age_days"`
	UserName       string          `json:"user_name"`
	UserEmail      string          `json:"user_email"`
	AssignedToName string          `json:"assigned_to_name,omitempty"`
	Activities     []ActivityEntry `json:"activities"`
}

// Page wraps a list response with single-logical-collection pagination.
type Page[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	TotalPages int   `json:"total_pages"`
}

// ErrorResponse is the uniform error payload.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}
