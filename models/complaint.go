package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Status represents the workflow status of a complaint
type Status string

const (
	StatusPending      Status = "Pending"
	StatusAcknowledged Status = "Acknowledged"
	StatusInProgress   Status = "In Progress"
	StatusUnderReview  Status = "Under Review"
	StatusResolved     Status = "Resolved"
	StatusClosed       Status = "Closed"
	StatusRejected     Status = "Rejected"
)

// Statuses lists every workflow status in display order.
var Statuses = []Status{
	StatusPending,
	StatusAcknowledged,
	StatusInProgress,
	StatusUnderReview,
	StatusResolved,
	StatusClosed,
	StatusRejected,
}

// ValidStatus reports whether s is one of the fixed workflow statuses.
func ValidStatus(s Status) bool {
	for _, v := range Statuses {
		if v == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether a complaint in status s is finished.
// The SLA breach flag is only meaningful while the status is non-terminal.
func (s Status) IsTerminal() bool {
	return s == StatusResolved || s == StatusClosed
}

// Priority represents complaint priority levels
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityNormal Priority = "Normal"
	PriorityHigh   Priority = "High"
	PriorityUrgent Priority = "Urgent"
)

// Priorities lists every priority level.
var Priorities = []Priority{PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent}

// slaDays maps each priority to its resolution window in days.
var slaDays = map[Priority]int{
	PriorityLow:    7,
	PriorityNormal: 5,
	PriorityHigh:   3,
	PriorityUrgent: 1,
}

// ValidPriority reports whether p is one of the fixed priority levels.
func ValidPriority(p Priority) bool {
	_, ok := slaDays[p]
	return ok
}

// PriorityOrDefault returns p when valid, otherwise Normal.
func PriorityOrDefault(p Priority) Priority {
	if ValidPriority(p) {
		return p
	}
	return PriorityNormal
}

// SLADays returns the resolution window in days for a priority.
func SLADays(p Priority) int {
	if d, ok := slaDays[p]; ok {
		return d
	}
	return slaDays[PriorityNormal]
}

// SLADeadline computes the deadline for a complaint created at createdAt with
// the given priority. Deadlines are always anchored to the creation time,
// including after a priority change.
func SLADeadline(p Priority, createdAt time.Time) time.Time {
	return createdAt.AddDate(0, 0, SLADays(p))
}

// Categories lists every complaint category. The order is fixed: the
// partition router enumerates partitions and the lookup resolver searches
// them in this order.
var Categories = []string{
	"Garbage Collection",
	"Road Damage",
	"Water Leakage",
	"Drainage Problems",
	"Streetlight Malfunction",
	"Potholes",
	"Tree Maintenance",
	"Public Toilets",
	"Parks & Recreation",
	"Noise Complaints",
	"Parking Issues",
	"Other",
}

// ValidCategory reports whether c is one of the fixed categories.
func ValidCategory(c string) bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}

// Department identifies the municipal department responsible for a category.
type Department struct {
	Name  string
	Code  string
	Email string
}

var departments = map[string]Department{
	"Garbage Collection":      {Name: "Sanitation Department", Code: "SAN", Email: "sanitation@municipal.gov"},
	"Road Damage":             {Name: "Public Works Department", Code: "PWD", Email: "publicworks@municipal.gov"},
	"Potholes":                {Name: "Public Works Department", Code: "PWD", Email: "publicworks@municipal.gov"},
	"Water Leakage":           {Name: "Water Department", Code: "WTR", Email: "water@municipal.gov"},
	"Drainage Problems":       {Name: "Public Works Department", Code: "PWD", Email: "publicworks@municipal.gov"},
	"Streetlight Malfunction": {Name: "Electrical Department", Code: "ELC", Email: "electrical@municipal.gov"},
	"Tree Maintenance":        {Name: "Parks & Recreation Department", Code: "PRK", Email: "parks@municipal.gov"},
	"Parks & Recreation":      {Name: "Parks & Recreation Department", Code: "PRK", Email: "parks@municipal.gov"},
	"Public Toilets":          {Name: "Public Facilities Department", Code: "PFD", Email: "facilities@municipal.gov"},
	"Noise Complaints":        {Name: "Public Safety Department", Code: "PSD", Email: "safety@municipal.gov"},
	"Parking Issues":          {Name: "Traffic & Parking Department", Code: "TPD", Email: "traffic@municipal.gov"},
	"Other":                   {Name: "General Services Department", Code: "GSD", Email: "general@municipal.gov"},
}

// DepartmentFor maps a category to its responsible department. Unknown
// categories fall back to the catch-all department for "Other".
func DepartmentFor(category string) Department {
	if d, ok := departments[category]; ok {
		return d
	}
	return departments["Other"]
}

// Comment is one entry in a complaint's append-only comment list.
type Comment struct {
	Comment   string    `bson:"comment" json:"comment"`
	UserName  string    `bson:"user_name" json:"user_name"`
	UserRole  string    `bson:"user_role" json:"user_role"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
}

// ProgressEntry is one entry in the append-only progress log written by the
// assigned worker. Every worker status update appends exactly one entry,
// whether or not the status actually changed.
type ProgressEntry struct {
	Status     Status    `bson:"status" json:"status"`
	UpdatedBy  int64     `bson:"updated_by" json:"updated_by"`
	UpdatedAt  time.Time `bson:"updated_at" json:"updated_at"`
	Comment    string    `bson:"comment,omitempty" json:"comment,omitempty"`
	ProofImage string    `bson:"proof_image,omitempty" json:"proof_image,omitempty"`
}

// ProofImage references a proof upload stored by the blob store.
type ProofImage struct {
	Path       string    `bson:"path" json:"path"`
	UploadedBy int64     `bson:"uploaded_by" json:"uploaded_by"`
	UploadedAt time.Time `bson:"uploaded_at" json:"uploaded_at"`
}

// Feedback is the citizen's one-time rating of a resolved complaint.
// Write-once: there is no update path.
type Feedback struct {
	Rating      int       `bson:"rating" json:"rating"`
	Comments    string    `bson:"comments" json:"comments"`
	SubmittedAt time.Time `bson:"submitted_at" json:"submitted_at"`
	UserID      int64     `bson:"user_id" json:"user_id"`
}

// Complaint is the central entity. Each complaint lives in the partition
// (collection) of its category for its entire lifetime; Category is
// immutable after creation.
type Complaint struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Code           string             `bson:"complaint_id" json:"complaint_id"`
	UserID         int64              `bson:"user_id" json:"user_id"`
	Category       string             `bson:"category" json:"category"`
	Location       string             `bson:"location" json:"location"`
	Description    string             `bson:"description" json:"description"`
	Status         Status             `bson:"status" json:"status"`
	Priority       Priority           `bson:"priority" json:"priority"`
	IsUrgent       bool               `bson:"is_urgent" json:"is_urgent"`
	Department     string             `bson:"department" json:"department"`
	DepartmentCode string             `bson:"department_code" json:"department_code"`
	AssignedTo     *int64             `bson:"assigned_to" json:"assigned_to"`
	AssignedAt     *time.Time         `bson:"assigned_at,omitempty" json:"assigned_at,omitempty"`
	Photo          string             `bson:"photo,omitempty" json:"photo,omitempty"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at" json:"updated_at"`
	SLADeadline    time.Time          `bson:"sla_deadline" json:"sla_deadline"`
	Comments       []Comment          `bson:"comments" json:"comments"`
	Progress       []ProgressEntry    `bson:"progress" json:"progress"`
	ProofImages    []ProofImage       `bson:"proof_images" json:"proof_images"`
	Feedback       *Feedback          `bson:"feedback" json:"feedback"`
}

// SLABreached reports whether the complaint has outlived its deadline.
// Never stored: recomputed on every read, and only meaningful while the
// complaint is not yet Resolved or Closed.
func (c *Complaint) SLABreached(now time.Time) bool {
	if c.Status.IsTerminal() {
		return false
	}
	return now.After(c.SLADeadline)
}

// AgeDays returns the complaint age in whole days.
func (c *Complaint) AgeDays(now time.Time) int {
	return int(now.Sub(c.CreatedAt).Hours() / 24)
}

// ComplaintUpdate is a partial field update applied to a complaint. Nil
// pointers leave the field untouched. SetAssignee distinguishes "assignment
// not supplied" from "assignment explicitly cleared" (SetAssignee true with
// Assignee nil).
type ComplaintUpdate struct {
	Status      *Status
	Priority    *Priority
	SetAssignee bool
	Assignee    *int64
	AssignedAt  *time.Time
	IsUrgent    *bool
	SLADeadline *time.Time
	Photo       *string
	UpdatedAt   time.Time
}
