package handler

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"

	"civictrack/middleware"
	"civictrack/models"
	"civictrack/repository"
	"civictrack/service"
	"civictrack/storage"

	"github.com/gorilla/mux"
)

// maxMultipartMemory bounds in-memory buffering of multipart submissions.
const maxMultipartMemory = 32 << 20

// ComplaintHandler handles the citizen-facing complaint endpoints.
type ComplaintHandler struct {
	service  *service.ComplaintService
	uploads  *storage.DiskStore
	pageSize int
}

// NewComplaintHandler creates a new complaint handler
func NewComplaintHandler(svc *service.ComplaintService, uploads *storage.DiskStore, pageSize int) *ComplaintHandler {
	return &ComplaintHandler{service: svc, uploads: uploads, pageSize: pageSize}
}

// Create handles POST /api/v1/complaints. Accepts multipart form data with
// an optional photo, or a plain JSON body.
func (h *ComplaintHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)

	var req models.CreateComplaintRequest
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid request", "Failed to parse multipart form")
			return
		}
		req.Category = r.FormValue("category")
		req.Location = r.FormValue("location")
		req.Description = r.FormValue("description")
		req.Priority = r.FormValue("priority")
		req.IsUrgent = r.FormValue("is_urgent") == "true"

		if file, header, err := r.FormFile("photo"); err == nil {
			defer file.Close()
			path, ok, serr := h.uploads.Save(file, header)
			if serr != nil {
				log.Printf("[handler] storing complaint photo failed: %v", serr)
			} else if ok {
				req.PhotoPath = path
			}
			// A disallowed file type is skipped; the complaint still goes in.
		}
	} else {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid request", "Failed to parse request body")
			return
		}
	}

	c, err := h.service.Create(r.Context(), user, req, getClientIP(r))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"message":      "Complaint registered",
		"id":           c.ID.Hex(),
		"complaint_id": c.Code,
		"department":   c.Department,
		"sla_deadline": c.SLADeadline,
	})
}

// List handles GET /api/v1/complaints: the caller's own complaints.
func (h *ComplaintHandler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	f := filterFromQuery(r)
	page, err := h.service.ListOwn(r.Context(), user, f, pageParam(r), h.pageSize)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, page)
}

// Detail handles GET /api/v1/complaints/{id}.
func (h *ComplaintHandler) Detail(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	ref := mux.Vars(r)["id"]
	detail, err := h.service.GetDetail(r.Context(), user, ref)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, detail)
}

// AddComment handles POST /api/v1/complaints/{id}/comments.
func (h *ComplaintHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	ref := mux.Vars(r)["id"]
	var req models.CommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request", "Failed to parse request body")
		return
	}
	if err := h.service.AddComment(r.Context(), user, ref, req.Comment, getClientIP(r)); err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, map[string]interface{}{"message": "Comment added"})
}

// SubmitFeedback handles POST /api/v1/complaints/{id}/feedback.
func (h *ComplaintHandler) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	ref := mux.Vars(r)["id"]
	var req models.FeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request", "Failed to parse request body")
		return
	}
	if err := h.service.SubmitFeedback(r.Context(), user, ref, req, getClientIP(r)); err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, map[string]interface{}{"message": "Feedback submitted"})
}

// Stats handles GET /api/v1/complaints/stats: the caller's own dashboard.
func (h *ComplaintHandler) Stats(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r)
	report, err := h.service.Stats(r.Context(), repository.Filter{UserID: user.ID})
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, report)
}

// Categories handles GET /api/v1/complaints/categories: the fixed category
// list with departments, for submission forms.
func (h *ComplaintHandler) Categories(w http.ResponseWriter, r *http.Request) {
	type categoryInfo struct {
		Category   string `json:"category"`
		Department string `json:"department"`
		Code       string `json:"department_code"`
	}
	out := make([]categoryInfo, 0, len(models.Categories))
	for _, c := range models.Categories {
		dept := models.DepartmentFor(c)
		out = append(out, categoryInfo{Category: c, Department: dept.Name, Code: dept.Code})
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"categories": out})
}

// filterFromQuery parses the shared list-filter query parameters.
func filterFromQuery(r *http.Request) repository.Filter {
	q := r.URL.Query()
	f := repository.Filter{
		Category: q.Get("category"),
		Status:   models.Status(q.Get("status")),
		Priority: models.Priority(q.Get("priority")),
		Search:   q.Get("search"),
	}
	if q.Get("urgent") == "true" {
		f.UrgentOnly = true
	}
	if q.Get("open") == "true" {
		f.OpenOnly = true
	}
	if q.Get("breached") == "true" {
		f.BreachedOnly = true
	}
	if v := q.Get("assigned_to"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			f.AssignedTo = &id
		}
	}
	return f
}
