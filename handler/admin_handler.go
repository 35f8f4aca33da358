package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"civictrack/middleware"
	"civictrack/models"
	"civictrack/repository"
	"civictrack/service"

	"github.com/gorilla/mux"
)

// AdminHandler handles the administrative endpoints.
type AdminHandler struct {
	complaints *service.ComplaintService
	users      *service.UserService
	pageSize   int
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(complaints *service.ComplaintService, users *service.UserService, pageSize int) *AdminHandler {
	return &AdminHandler{complaints: complaints, users: users, pageSize: pageSize}
}

// ListComplaints handles GET /api/v1/admin/complaints with the full filter
// surface and optional sort=updated_at|sla_deadline|created_at.
func (h *AdminHandler) ListComplaints(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	f := filterFromQuery(r)
	if v := r.URL.Query().Get("user_id"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			f.UserID = id
		}
	}
	sort := repository.DefaultSort
	if field := r.URL.Query().Get("sort"); field != "" {
		sort = repository.SortSpec{Field: field, Desc: r.URL.Query().Get("order") != "asc"}
	}
	page, err := h.complaints.AdminList(r.Context(), user, f, sort, pageParam(r), h.pageSize)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, page)
}

// ComplaintDetail handles GET /api/v1/admin/complaints/{id}.
func (h *AdminHandler) ComplaintDetail(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	detail, err := h.complaints.GetDetail(r.Context(), user, mux.Vars(r)["id"])
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, detail)
}

// Assign handles POST /api/v1/admin/complaints/{id}/assign.
func (h *AdminHandler) Assign(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	var req models.AssignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request", "Failed to parse request body")
		return
	}
	c, err := h.complaints.Assign(r.Context(), user, mux.Vars(r)["id"], req.StaffID, getClientIP(r))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message":     "Complaint assigned",
		"status":      c.Status,
		"assigned_to": c.AssignedTo,
	})
}

// Update handles PUT /api/v1/admin/complaints/{id}: any subset of status,
// priority and assignment in one call.
func (h *AdminHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	var req models.AdminUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request", "Failed to parse request body")
		return
	}
	c, err := h.complaints.AdminUpdate(r.Context(), user, mux.Vars(r)["id"], req, getClientIP(r))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message":      "Complaint updated",
		"status":       c.Status,
		"priority":     c.Priority,
		"assigned_to":  c.AssignedTo,
		"sla_deadline": c.SLADeadline,
	})
}

// ToggleUrgent handles PUT /api/v1/admin/complaints/{id}/urgent.
func (h *AdminHandler) ToggleUrgent(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	var req models.ToggleUrgentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request", "Failed to parse request body")
		return
	}
	c, err := h.complaints.ToggleUrgent(r.Context(), user, mux.Vars(r)["id"], req.IsUrgent, getClientIP(r))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message":      "Urgency updated",
		"is_urgent":    c.IsUrgent,
		"priority":     c.Priority,
		"sla_deadline": c.SLADeadline,
	})
}

// Stats handles GET /api/v1/admin/stats: the system-wide dashboard.
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	report, err := h.complaints.Stats(r.Context(), repository.Filter{})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, report)
}

// Analytics handles GET /api/v1/admin/analytics.
func (h *AdminHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	report, err := h.complaints.Analytics(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, report)
}

// CreateStaff handles POST /api/v1/admin/staff.
func (h *AdminHandler) CreateStaff(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	var req models.CreateStaffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request", "Failed to parse request body")
		return
	}
	staff, err := h.users.CreateStaff(r.Context(), user, req, getClientIP(r))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Staff account created",
		"user":    staff,
	})
}

// ListStaff handles GET /api/v1/admin/staff: the roster with open workload.
func (h *AdminHandler) ListStaff(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	page, err := h.users.ListStaff(r.Context(), user, pageParam(r), h.pageSize)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, page)
}

// ListUsers handles GET /api/v1/admin/users with role and search filters.
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	role := models.Role(r.URL.Query().Get("role"))
	search := r.URL.Query().Get("search")
	page, err := h.users.ListUsers(user, role, search, pageParam(r), h.pageSize)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, page)
}

// SetUserActive handles PUT /api/v1/admin/users/{id}/active.
func (h *AdminHandler) SetUserActive(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	targetID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request", "Invalid user id")
		return
	}
	var req struct {
		IsActive bool `json:"is_active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request", "Failed to parse request body")
		return
	}
	if err := h.users.SetUserActive(user, targetID, req.IsActive); err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"message": "User updated"})
}
