package handler

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"civictrack/middleware"
	"civictrack/models"
	"civictrack/repository"
	"civictrack/service"
	"civictrack/storage"

	"github.com/gorilla/mux"
)

// StaffHandler handles the field-staff endpoints.
type StaffHandler struct {
	service  *service.ComplaintService
	uploads  *storage.DiskStore
	pageSize int
}

// NewStaffHandler creates a new staff handler
func NewStaffHandler(svc *service.ComplaintService, uploads *storage.DiskStore, pageSize int) *StaffHandler {
	return &StaffHandler{service: svc, uploads: uploads, pageSize: pageSize}
}

// Assigned handles GET /api/v1/staff/complaints: work assigned to the caller.
func (h *StaffHandler) Assigned(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	f := filterFromQuery(r)
	page, err := h.service.ListAssigned(r.Context(), user, f, pageParam(r), h.pageSize)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, page)
}

// Stats handles GET /api/v1/staff/stats: the caller's workload dashboard.
func (h *StaffHandler) Stats(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	id := user.ID
	report, err := h.service.Stats(r.Context(), repository.Filter{AssignedTo: &id})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, report)
}

// UpdateStatus handles PUT /api/v1/staff/complaints/{id}/status. Accepts
// multipart form data with an optional proof file, or a plain JSON body.
func (h *StaffHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	ref := mux.Vars(r)["id"]

	var req models.WorkerStatusRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid request", "Failed to parse multipart form")
			return
		}
		req.Status = r.FormValue("status")
		req.Comment = r.FormValue("comment")

		if file, header, err := r.FormFile("proof"); err == nil {
			defer file.Close()
			path, ok, serr := h.uploads.Save(file, header)
			if serr != nil {
				log.Printf("[handler] storing proof upload failed: %v", serr)
			} else if ok {
				req.ProofPath = path
			}
		}
	} else {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid request", "Failed to parse request body")
			return
		}
	}

	c, err := h.service.WorkerUpdateStatus(r.Context(), user, ref, req, getClientIP(r))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Status updated",
		"status":  c.Status,
	})
}
