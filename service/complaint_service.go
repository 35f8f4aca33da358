package service

import (
	"context"
	"log"
	"strings"
	"time"

	"civictrack/models"
	"civictrack/notification"
	"civictrack/repository"
	"civictrack/utils"
)

// ComplaintStore is the partitioned complaint storage the service runs on.
// Implemented by repository.ComplaintRepository.
type ComplaintStore interface {
	Insert(ctx context.Context, c *models.Complaint) error
	Query(ctx context.Context, f repository.Filter, sort repository.SortSpec, skip, limit int) ([]models.Complaint, int64, error)
	Count(ctx context.Context, f repository.Filter) (int64, error)
	FindByRef(ctx context.Context, ref string) (*models.Complaint, repository.DocRef, error)
	ApplyUpdate(ctx context.Context, ref repository.DocRef, upd models.ComplaintUpdate) error
	PushComment(ctx context.Context, ref repository.DocRef, c models.Comment) error
	PushProgress(ctx context.Context, ref repository.DocRef, p models.ProgressEntry) error
	PushProofImage(ctx context.Context, ref repository.DocRef, img models.ProofImage) error
	SetFeedback(ctx context.Context, ref repository.DocRef, fb models.Feedback) (bool, error)
	StatusCounts(ctx context.Context, f repository.Filter) (map[models.Status]int64, error)
	PriorityCounts(ctx context.Context, f repository.Filter) (map[models.Priority]int64, error)
	CategoryCounts(ctx context.Context, f repository.Filter) (map[string]int64, error)
	MonthlyTrend(ctx context.Context) (map[string]int64, error)
	ResolutionStats(ctx context.Context) (float64, int64, error)
	RatingStats(ctx context.Context) (float64, int64, error)
}

// ActivityStore is the append-only audit trail.
type ActivityStore interface {
	Record(ctx context.Context, entry models.ActivityEntry) error
	ListByComplaint(ctx context.Context, complaintID string) ([]models.ActivityEntry, error)
}

// IdentityStore is the slice of the user store the complaint service needs.
type IdentityStore interface {
	GetByID(userID int64) (*models.User, error)
}

// ComplaintService implements the complaint lifecycle.
type ComplaintService struct {
	complaints ComplaintStore
	activity   ActivityStore
	users      IdentityStore
	notifier   notification.Notifier
}

// NewComplaintService creates a complaint service.
func NewComplaintService(complaints ComplaintStore, activity ActivityStore, users IdentityStore, notifier notification.Notifier) *ComplaintService {
	return &ComplaintService{complaints: complaints, activity: activity, users: users, notifier: notifier}
}

// workerStatuses are the statuses an assigned worker may set directly.
// Closing and rejecting stay with admins.
var workerStatuses = map[models.Status]bool{
	models.StatusInProgress:  true,
	models.StatusUnderReview: true,
	models.StatusResolved:    true,
}

// Create registers a new complaint for the acting citizen and routes it to
// the department of its category.
func (s *ComplaintService) Create(ctx context.Context, actor *models.User, req models.CreateComplaintRequest, ip string) (*models.Complaint, error) {
	if !models.ValidCategory(req.Category) {
		return nil, Invalid("unknown category")
	}
	if len(strings.TrimSpace(req.Location)) < 3 {
		return nil, Invalid("location must be at least 3 characters")
	}
	if len(strings.TrimSpace(req.Description)) < 10 {
		return nil, Invalid("description must be at least 10 characters")
	}

	priority := models.PriorityOrDefault(models.Priority(req.Priority))
	if req.IsUrgent {
		priority = models.PriorityUrgent
	}
	now := time.Now()
	dept := models.DepartmentFor(req.Category)
	c := &models.Complaint{
		Code:           utils.GenerateComplaintCode(now),
		UserID:         actor.ID,
		Category:       req.Category,
		Location:       strings.TrimSpace(req.Location),
		Description:    strings.TrimSpace(req.Description),
		Status:         models.StatusPending,
		Priority:       priority,
		IsUrgent:       req.IsUrgent,
		Department:     dept.Name,
		DepartmentCode: dept.Code,
		Photo:          req.PhotoPath,
		CreatedAt:      now,
		UpdatedAt:      now,
		SLADeadline:    models.SLADeadline(priority, now),
		Comments:       []models.Comment{},
		Progress:       []models.ProgressEntry{},
		ProofImages:    []models.ProofImage{},
	}
	if err := s.complaints.Insert(ctx, c); err != nil {
		return nil, err
	}

	s.logActivity(ctx, c.ID.Hex(), models.ActionCreated, actor.ID, ip, map[string]any{
		"category": c.Category,
		"priority": string(c.Priority),
	})
	s.notifier.Notify(ctx, notification.Event{
		Kind:      notification.KindSubmitted,
		Recipient: actor.Email,
		Data: map[string]string{
			"complaint_id": c.Code,
			"category":     c.Category,
			"department":   c.Department,
			"sla_deadline": c.SLADeadline.Format(time.RFC1123),
		},
	})
	return c, nil
}

// resolve finds a complaint by any of its identity forms and maps a miss to
// ErrNotFound.
func (s *ComplaintService) resolve(ctx context.Context, ref string) (*models.Complaint, repository.DocRef, error) {
	c, docRef, err := s.complaints.FindByRef(ctx, ref)
	if err != nil {
		return nil, repository.DocRef{}, err
	}
	if c == nil {
		return nil, repository.DocRef{}, ErrNotFound
	}
	return c, docRef, nil
}

// canView reports whether the actor may read this complaint. Citizens only
// see their own; staff and admins see everything.
func canView(actor *models.User, c *models.Complaint) bool {
	return actor.IsStaffOrAdmin() || c.UserID == actor.ID
}

// Get returns one complaint after an ownership check.
func (s *ComplaintService) Get(ctx context.Context, actor *models.User, ref string) (*models.Complaint, error) {
	c, _, err := s.resolve(ctx, ref)
	if err != nil {
		return nil, err
	}
	if !canView(actor, c) {
		return nil, ErrForbidden
	}
	return c, nil
}

// GetDetail returns the full complaint view with resolved display names and
// the audit trail.
func (s *ComplaintService) GetDetail(ctx context.Context, actor *models.User, ref string) (*models.ComplaintDetail, error) {
	c, docRef, err := s.resolve(ctx, ref)
	if err != nil {
		return nil, err
	}
	if !canView(actor, c) {
		return nil, ErrForbidden
	}

	detail := &models.ComplaintDetail{
		Complaint:      *c,
		IDHex:          complaintKey(c, docRef),
		SLABreachedNow: c.SLABreached(time.Now()),
		AgeDaysNow:     c.AgeDays(time.Now()),
	}
	if owner, err := s.users.GetByID(c.UserID); err == nil && owner != nil {
		detail.UserName = owner.Name
		detail.UserEmail = owner.Email
	}
	if c.AssignedTo != nil {
		if worker, err := s.users.GetByID(*c.AssignedTo); err == nil && worker != nil {
			detail.AssignedToName = worker.Name
		}
	}
	activities, err := s.activity.ListByComplaint(ctx, complaintKey(c, docRef))
	if err != nil {
		log.Printf("[complaint-service] loading activity for %s failed: %v", docRef.Key, err)
		activities = []models.ActivityEntry{}
	}
	detail.Activities = activities
	return detail, nil
}

// complaintKey is the canonical reference string used for audit entries and
// detail views: the hex object id, or the legacy key when there is none.
func complaintKey(c *models.Complaint, ref repository.DocRef) string {
	if !c.ID.IsZero() {
		return c.ID.Hex()
	}
	return ref.Key
}

// ListOwn pages the acting citizen's complaints.
func (s *ComplaintService) ListOwn(ctx context.Context, actor *models.User, f repository.Filter, page, pageSize int) (*models.Page[models.ComplaintSummary], error) {
	f.UserID = actor.ID
	f.AssignedTo = nil
	return s.list(ctx, f, repository.DefaultSort, page, pageSize, false)
}

// ListAssigned pages the complaints assigned to the acting staff member.
func (s *ComplaintService) ListAssigned(ctx context.Context, actor *models.User, f repository.Filter, page, pageSize int) (*models.Page[models.ComplaintSummary], error) {
	id := actor.ID
	f.AssignedTo = &id
	f.UserID = 0
	return s.list(ctx, f, repository.DefaultSort, page, pageSize, true)
}

// AdminList pages all complaints with an unrestricted filter.
func (s *ComplaintService) AdminList(ctx context.Context, actor *models.User, f repository.Filter, sort repository.SortSpec, page, pageSize int) (*models.Page[models.ComplaintSummary], error) {
	if actor.Role != models.RoleAdmin {
		return nil, ErrForbidden
	}
	return s.list(ctx, f, sort, page, pageSize, true)
}

func (s *ComplaintService) list(ctx context.Context, f repository.Filter, sort repository.SortSpec, page, pageSize int, withNames bool) (*models.Page[models.ComplaintSummary], error) {
	if page < 1 {
		page = 1
	}
	skip := (page - 1) * pageSize
	items, total, err := s.complaints.Query(ctx, f, sort, skip, pageSize)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	names := map[int64]string{}
	emails := map[int64]string{}
	lookup := func(id int64) (string, string) {
		if n, ok := names[id]; ok {
			return n, emails[id]
		}
		name, email := "", ""
		if u, err := s.users.GetByID(id); err == nil && u != nil {
			name, email = u.Name, u.Email
		}
		names[id], emails[id] = name, email
		return name, email
	}

	summaries := make([]models.ComplaintSummary, 0, len(items))
	for i := range items {
		c := &items[i]
		summary := models.ComplaintSummary{
			ID:             c.ID.Hex(),
			Code:           c.Code,
			Category:       c.Category,
			Location:       c.Location,
			Description:    c.Description,
			Status:         c.Status,
			Priority:       c.Priority,
			IsUrgent:       c.IsUrgent,
			Department:     c.Department,
			DepartmentCode: c.DepartmentCode,
			CreatedAt:      c.CreatedAt,
			SLADeadline:    c.SLADeadline,
			SLABreached:    c.SLABreached(now),
			AgeDays:        c.AgeDays(now),
			AssignedTo:     c.AssignedTo,
		}
		if withNames {
			summary.UserName, summary.UserEmail = lookup(c.UserID)
			if c.AssignedTo != nil {
				summary.AssignedToName, _ = lookup(*c.AssignedTo)
			}
		}
		summaries = append(summaries, summary)
	}

	totalPages := 0
	if pageSize > 0 {
		totalPages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	return &models.Page[models.ComplaintSummary]{
		Items:      summaries,
		Total:      total,
		Page:       page,
		TotalPages: totalPages,
	}, nil
}

// Assign assigns a complaint to a staff member. A Pending complaint is
// acknowledged by the act of assignment; any later status is left alone.
func (s *ComplaintService) Assign(ctx context.Context, actor *models.User, ref string, staffID int64, ip string) (*models.Complaint, error) {
	if actor.Role != models.RoleAdmin {
		return nil, ErrForbidden
	}
	c, docRef, err := s.resolve(ctx, ref)
	if err != nil {
		return nil, err
	}
	staff, err := s.validStaff(staffID)
	if err != nil {
		return nil, err
	}
	assigneeChanged := c.AssignedTo == nil || *c.AssignedTo != staffID

	now := time.Now()
	upd := models.ComplaintUpdate{
		SetAssignee: true,
		Assignee:    &staffID,
		AssignedAt:  &now,
		UpdatedAt:   now,
	}
	if c.Status == models.StatusPending {
		ack := models.StatusAcknowledged
		upd.Status = &ack
	}
	if err := s.complaints.ApplyUpdate(ctx, docRef, upd); err != nil {
		return nil, err
	}
	applyUpdateLocally(c, upd)

	comment := models.Comment{
		Comment:   "Complaint assigned to " + staff.Name,
		UserName:  actor.Name,
		UserRole:  string(actor.Role),
		Timestamp: now,
	}
	if err := s.complaints.PushComment(ctx, docRef, comment); err != nil {
		log.Printf("[complaint-service] appending assignment comment to %s failed: %v", docRef.Key, err)
	} else {
		c.Comments = append(c.Comments, comment)
	}

	s.logActivity(ctx, complaintKey(c, docRef), models.ActionAssigned, actor.ID, ip, map[string]any{
		"assigned_to": staffID,
		"staff_name":  staff.Name,
	})
	// Reassigning the same person again is a no-op for notification purposes.
	if assigneeChanged {
		s.notifier.Notify(ctx, notification.Event{
			Kind:      notification.KindAssigned,
			Recipient: staff.Email,
			Data: map[string]string{
				"complaint_id": c.Code,
				"category":     c.Category,
				"location":     c.Location,
				"sla_deadline": c.SLADeadline.Format(time.RFC1123),
			},
		})
	}
	return c, nil
}

// validStaff checks that the id names an active staff account.
func (s *ComplaintService) validStaff(staffID int64) (*models.User, error) {
	staff, err := s.users.GetByID(staffID)
	if err != nil {
		return nil, err
	}
	if staff == nil || staff.Role != models.RoleStaff {
		return nil, Invalid("staff member not found")
	}
	if !staff.IsActive {
		return nil, Invalid("staff member is not active")
	}
	return staff, nil
}

// AdminUpdate applies any subset of status, priority and assignment in one
// operation. A priority change recomputes the deadline from the original
// creation time, so raising priority on an old complaint can mark it
// breached immediately.
func (s *ComplaintService) AdminUpdate(ctx context.Context, actor *models.User, ref string, req models.AdminUpdateRequest, ip string) (*models.Complaint, error) {
	if actor.Role != models.RoleAdmin {
		return nil, ErrForbidden
	}
	c, docRef, err := s.resolve(ctx, ref)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	upd := models.ComplaintUpdate{UpdatedAt: now}
	details := map[string]any{}
	var newAssignee *models.User

	if req.Status != nil {
		status := models.Status(*req.Status)
		if !models.ValidStatus(status) {
			return nil, Invalid("unknown status")
		}
		upd.Status = &status
		details["old_status"] = string(c.Status)
		details["new_status"] = string(status)
	}
	if req.Priority != nil {
		priority := models.Priority(*req.Priority)
		if !models.ValidPriority(priority) {
			return nil, Invalid("unknown priority")
		}
		deadline := models.SLADeadline(priority, c.CreatedAt)
		upd.Priority = &priority
		upd.SLADeadline = &deadline
		details["priority"] = string(priority)
	}
	if req.AssignedTo.Present {
		upd.SetAssignee = true
		if req.AssignedTo.Value != nil {
			staff, err := s.validStaff(*req.AssignedTo.Value)
			if err != nil {
				return nil, err
			}
			if c.AssignedTo == nil || *c.AssignedTo != staff.ID {
				newAssignee = staff
			}
			upd.Assignee = req.AssignedTo.Value
			upd.AssignedAt = &now
			if upd.Status == nil && c.Status == models.StatusPending {
				ack := models.StatusAcknowledged
				upd.Status = &ack
			}
			details["assigned_to"] = *req.AssignedTo.Value
		} else {
			details["assigned_to"] = nil
		}
	}
	if upd.Status == nil && upd.Priority == nil && !upd.SetAssignee && strings.TrimSpace(req.Comment) == "" {
		return nil, Invalid("nothing to update")
	}

	if err := s.complaints.ApplyUpdate(ctx, docRef, upd); err != nil {
		return nil, err
	}
	oldStatus := c.Status
	applyUpdateLocally(c, upd)

	if comment := strings.TrimSpace(req.Comment); comment != "" {
		entry := models.Comment{
			Comment:   comment,
			UserName:  actor.Name,
			UserRole:  string(actor.Role),
			Timestamp: now,
		}
		if err := s.complaints.PushComment(ctx, docRef, entry); err != nil {
			log.Printf("[complaint-service] appending admin comment to %s failed: %v", docRef.Key, err)
		} else {
			c.Comments = append(c.Comments, entry)
		}
	}

	s.logActivity(ctx, complaintKey(c, docRef), models.ActionStatusUpdated, actor.ID, ip, details)
	s.notifyStatusOutcome(ctx, c, oldStatus, newAssignee)
	return c, nil
}

// applyUpdateLocally mirrors a stored update onto the in-memory copy so the
// caller gets the post-update state without a second read.
func applyUpdateLocally(c *models.Complaint, upd models.ComplaintUpdate) {
	if upd.Status != nil {
		c.Status = *upd.Status
	}
	if upd.Priority != nil {
		c.Priority = *upd.Priority
	}
	if upd.SetAssignee {
		c.AssignedTo = upd.Assignee
		c.AssignedAt = upd.AssignedAt
	}
	if upd.IsUrgent != nil {
		c.IsUrgent = *upd.IsUrgent
	}
	if upd.SLADeadline != nil {
		c.SLADeadline = *upd.SLADeadline
	}
	c.UpdatedAt = upd.UpdatedAt
}

// notifyStatusOutcome sends the notifications an admin update triggers: the
// citizen hears about status changes, a new assignee hears about the work.
func (s *ComplaintService) notifyStatusOutcome(ctx context.Context, c *models.Complaint, oldStatus models.Status, newAssignee *models.User) {
	if newAssignee != nil {
		s.notifier.Notify(ctx, notification.Event{
			Kind:      notification.KindAssigned,
			Recipient: newAssignee.Email,
			Data: map[string]string{
				"complaint_id": c.Code,
				"category":     c.Category,
				"location":     c.Location,
				"sla_deadline": c.SLADeadline.Format(time.RFC1123),
			},
		})
	}
	if c.Status == oldStatus {
		return
	}
	owner, err := s.users.GetByID(c.UserID)
	if err != nil || owner == nil {
		return
	}
	kind := notification.KindStatusChanged
	if c.Status == models.StatusResolved {
		kind = notification.KindResolved
	}
	s.notifier.Notify(ctx, notification.Event{
		Kind:      kind,
		Recipient: owner.Email,
		Data: map[string]string{
			"complaint_id": c.Code,
			"status":       string(c.Status),
		},
	})
}

// ToggleUrgent flips the urgency override. Urgent forces priority Urgent;
// clearing it drops the complaint back to Normal. Both directions recompute
// the deadline from the creation time.
func (s *ComplaintService) ToggleUrgent(ctx context.Context, actor *models.User, ref string, isUrgent bool, ip string) (*models.Complaint, error) {
	if actor.Role != models.RoleAdmin {
		return nil, ErrForbidden
	}
	c, docRef, err := s.resolve(ctx, ref)
	if err != nil {
		return nil, err
	}

	priority := models.PriorityNormal
	if isUrgent {
		priority = models.PriorityUrgent
	}
	deadline := models.SLADeadline(priority, c.CreatedAt)
	now := time.Now()
	upd := models.ComplaintUpdate{
		IsUrgent:    &isUrgent,
		Priority:    &priority,
		SLADeadline: &deadline,
		UpdatedAt:   now,
	}
	if err := s.complaints.ApplyUpdate(ctx, docRef, upd); err != nil {
		return nil, err
	}
	applyUpdateLocally(c, upd)

	s.logActivity(ctx, complaintKey(c, docRef), models.ActionUrgentToggled, actor.ID, ip, map[string]any{
		"is_urgent": isUrgent,
		"priority":  string(priority),
	})
	return c, nil
}

// WorkerUpdateStatus is the assigned worker's progress update. Only the
// assignee may call it, admins included: substitution would corrupt the
// progress trail. Every call appends a progress entry, whether or not the
// status changed.
func (s *ComplaintService) WorkerUpdateStatus(ctx context.Context, actor *models.User, ref string, req models.WorkerStatusRequest, ip string) (*models.Complaint, error) {
	c, docRef, err := s.resolve(ctx, ref)
	if err != nil {
		return nil, err
	}
	if c.AssignedTo == nil || *c.AssignedTo != actor.ID {
		return nil, ErrForbidden
	}
	status := models.Status(req.Status)
	if !workerStatuses[status] {
		return nil, Invalid("status not allowed for worker updates")
	}

	now := time.Now()
	entry := models.ProgressEntry{
		Status:     status,
		UpdatedBy:  actor.ID,
		UpdatedAt:  now,
		Comment:    strings.TrimSpace(req.Comment),
		ProofImage: req.ProofPath,
	}
	if err := s.complaints.PushProgress(ctx, docRef, entry); err != nil {
		return nil, err
	}
	if entry.Comment != "" {
		// The note also goes into the comment history the citizen reads.
		comment := models.Comment{
			Comment:   entry.Comment,
			UserName:  actor.Name,
			UserRole:  string(actor.Role),
			Timestamp: now,
		}
		if err := s.complaints.PushComment(ctx, docRef, comment); err != nil {
			log.Printf("[complaint-service] appending worker comment to %s failed: %v", docRef.Key, err)
		} else {
			c.Comments = append(c.Comments, comment)
		}
	}
	if req.ProofPath != "" {
		img := models.ProofImage{Path: req.ProofPath, UploadedBy: actor.ID, UploadedAt: now}
		if err := s.complaints.PushProofImage(ctx, docRef, img); err != nil {
			log.Printf("[complaint-service] recording proof image on %s failed: %v", docRef.Key, err)
		} else {
			c.ProofImages = append(c.ProofImages, img)
		}
	}
	oldStatus := c.Status
	upd := models.ComplaintUpdate{Status: &status, UpdatedAt: now}
	if err := s.complaints.ApplyUpdate(ctx, docRef, upd); err != nil {
		return nil, err
	}
	applyUpdateLocally(c, upd)
	c.Progress = append(c.Progress, entry)

	s.logActivity(ctx, complaintKey(c, docRef), models.ActionWorkerStatusUpdate, actor.ID, ip, map[string]any{
		"old_status": string(oldStatus),
		"new_status": string(status),
	})
	// The citizen hears from this path only when the work is done;
	// intermediate transitions stay internal.
	if status == models.StatusResolved && oldStatus != models.StatusResolved {
		if owner, err := s.users.GetByID(c.UserID); err == nil && owner != nil {
			s.notifier.Notify(ctx, notification.Event{
				Kind:      notification.KindResolved,
				Recipient: owner.Email,
				Data: map[string]string{
					"complaint_id": c.Code,
					"status":       string(c.Status),
				},
			})
		}
	}
	return c, nil
}

// AddComment appends a comment from the complaint's owner. Staff and admin
// remarks travel through the worker and admin update paths instead.
func (s *ComplaintService) AddComment(ctx context.Context, actor *models.User, ref string, comment string, ip string) error {
	c, docRef, err := s.resolve(ctx, ref)
	if err != nil {
		return err
	}
	if c.UserID != actor.ID {
		return ErrForbidden
	}
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return Invalid("comment must not be empty")
	}

	entry := models.Comment{
		Comment:   comment,
		UserName:  actor.Name,
		UserRole:  string(actor.Role),
		Timestamp: time.Now(),
	}
	if err := s.complaints.PushComment(ctx, docRef, entry); err != nil {
		return err
	}
	s.logActivity(ctx, complaintKey(c, docRef), models.ActionCommentAdded, actor.ID, ip, nil)
	return nil
}

// SubmitFeedback stores the owner's one-time rating of a resolved complaint.
func (s *ComplaintService) SubmitFeedback(ctx context.Context, actor *models.User, ref string, req models.FeedbackRequest, ip string) error {
	c, docRef, err := s.resolve(ctx, ref)
	if err != nil {
		return err
	}
	if c.UserID != actor.ID {
		return ErrForbidden
	}
	if !c.Status.IsTerminal() {
		return ErrFeedbackNotAvailable
	}
	if req.Rating < 1 || req.Rating > 5 {
		return Invalid("rating must be between 1 and 5")
	}
	if c.Feedback != nil {
		return ErrFeedbackAlreadySubmitted
	}

	fb := models.Feedback{
		Rating:      req.Rating,
		Comments:    strings.TrimSpace(req.Feedback),
		SubmittedAt: time.Now(),
		UserID:      actor.ID,
	}
	ok, err := s.complaints.SetFeedback(ctx, docRef, fb)
	if err != nil {
		return err
	}
	if !ok {
		// Lost a race with another submission.
		return ErrFeedbackAlreadySubmitted
	}
	s.logActivity(ctx, complaintKey(c, docRef), models.ActionFeedbackSubmitted, actor.ID, ip, map[string]any{
		"rating": req.Rating,
	})
	return nil
}

// StatsReport summarizes complaint volumes for a dashboard.
type StatsReport struct {
	Total      int64                     `json:"total"`
	ByStatus   map[models.Status]int64   `json:"by_status"`
	ByPriority map[models.Priority]int64 `json:"by_priority"`
	Open       int64                     `json:"open"`
	Breached   int64                     `json:"sla_breached"`
	Urgent     int64                     `json:"urgent"`
}

// Stats builds a dashboard summary for the given filter scope. Handlers
// narrow the filter to the caller: own complaints for citizens, assigned
// complaints for staff, everything for admins.
func (s *ComplaintService) Stats(ctx context.Context, f repository.Filter) (*StatsReport, error) {
	byStatus, err := s.complaints.StatusCounts(ctx, f)
	if err != nil {
		return nil, err
	}
	byPriority, err := s.complaints.PriorityCounts(ctx, f)
	if err != nil {
		return nil, err
	}
	var total int64
	for _, n := range byStatus {
		total += n
	}
	open := total - byStatus[models.StatusResolved] - byStatus[models.StatusClosed]

	breachedFilter := f
	breachedFilter.BreachedOnly = true
	breached, err := s.complaints.Count(ctx, breachedFilter)
	if err != nil {
		return nil, err
	}
	urgentFilter := f
	urgentFilter.UrgentOnly = true
	urgent, err := s.complaints.Count(ctx, urgentFilter)
	if err != nil {
		return nil, err
	}

	return &StatsReport{
		Total:      total,
		ByStatus:   byStatus,
		ByPriority: byPriority,
		Open:       open,
		Breached:   breached,
		Urgent:     urgent,
	}, nil
}

// AnalyticsReport extends the dashboard with per-category volumes and
// citizen satisfaction.
type AnalyticsReport struct {
	ByCategory        map[string]int64 `json:"by_category"`
	ByDepartment      map[string]int64 `json:"by_department"`
	MonthlyTrend      map[string]int64 `json:"monthly_trend"`
	AvgResolutionDays float64          `json:"avg_resolution_days"`
	ResolvedCount     int64            `json:"resolved_count"`
	AvgRating         float64          `json:"avg_rating"`
	RatingCount       int64            `json:"rating_count"`
}

// Analytics builds the admin analytics view.
func (s *ComplaintService) Analytics(ctx context.Context) (*AnalyticsReport, error) {
	byCategory, err := s.complaints.CategoryCounts(ctx, repository.Filter{})
	if err != nil {
		return nil, err
	}
	byDepartment := make(map[string]int64)
	for category, n := range byCategory {
		byDepartment[models.DepartmentFor(category).Name] += n
	}
	trend, err := s.complaints.MonthlyTrend(ctx)
	if err != nil {
		return nil, err
	}
	avgResolution, resolved, err := s.complaints.ResolutionStats(ctx)
	if err != nil {
		return nil, err
	}
	avgRating, ratings, err := s.complaints.RatingStats(ctx)
	if err != nil {
		return nil, err
	}
	return &AnalyticsReport{
		ByCategory:        byCategory,
		ByDepartment:      byDepartment,
		MonthlyTrend:      trend,
		AvgResolutionDays: avgResolution,
		ResolvedCount:     resolved,
		AvgRating:         avgRating,
		RatingCount:       ratings,
	}, nil
}

// logActivity records an audit entry, logging but never propagating failure.
func (s *ComplaintService) logActivity(ctx context.Context, complaintID, action string, userID int64, ip string, details map[string]any) {
	entry := models.ActivityEntry{
		ComplaintID: complaintID,
		Action:      action,
		UserID:      userID,
		Details:     details,
		Timestamp:   time.Now(),
		IPAddress:   ip,
	}
	if err := s.activity.Record(ctx, entry); err != nil {
		log.Printf("[complaint-service] recording %s activity failed: %v", action, err)
	}
}
