package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Activity log action tags. Free-form in storage but drawn from this set.
const (
	ActionCreated            = "complaint_created"
	ActionAssigned           = "complaint_assigned"
	ActionStatusUpdated      = "status_updated"
	ActionUrgentToggled      = "urgent_toggled"
	ActionCommentAdded       = "comment_added"
	ActionWorkerStatusUpdate = "worker_status_update"
	ActionFeedbackSubmitted  = "feedback_submitted"
	ActionStaffCreated       = "staff_created"
)

// ActivityEntry is one record in the append-only audit trail. Entries are
// written synchronously by every lifecycle-mutating operation and never
// mutated or deleted. The log is an audit aid, not a source of truth for
// complaint state.
// ComplaintID holds the hex object id, or the raw legacy key for documents
// imported from the old system.
type ActivityEntry struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ComplaintID string             `bson:"complaint_id" json:"complaint_id"`
	Action      string             `bson:"action" json:"action"`
	UserID      int64              `bson:"user_id" json:"user_id"`
	Details     map[string]any     `bson:"details" json:"details"`
	Timestamp   time.Time          `bson:"timestamp" json:"timestamp"`
	IPAddress   string             `bson:"ip_address" json:"ip_address"`
}
