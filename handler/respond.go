package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"civictrack/models"
	"civictrack/service"
)

// respondWithJSON sends a JSON response
func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

// respondWithError sends an error response
func respondWithError(w http.ResponseWriter, statusCode int, errorType, message string) {
	response := models.ErrorResponse{
		Error:   errorType,
		Message: message,
		Code:    statusCode,
	}
	respondWithJSON(w, statusCode, response)
}

// respondServiceError maps the service error taxonomy onto HTTP statuses.
// Authorization failures surface as 403, never disguised as 404.
func respondServiceError(w http.ResponseWriter, err error) {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		respondWithError(w, http.StatusBadRequest, "Validation error", ve.Reason)
	case errors.Is(err, service.ErrNotFound):
		respondWithError(w, http.StatusNotFound, "Not Found", "Resource not found")
	case errors.Is(err, service.ErrForbidden):
		respondWithError(w, http.StatusForbidden, "Forbidden", "You do not have access to this resource")
	case errors.Is(err, service.ErrEmailTaken):
		respondWithError(w, http.StatusConflict, "Conflict", "Email already registered")
	case errors.Is(err, service.ErrStaffIDTaken):
		respondWithError(w, http.StatusConflict, "Conflict", "Staff ID already in use")
	case errors.Is(err, service.ErrInvalidCredentials):
		respondWithError(w, http.StatusUnauthorized, "Unauthorized", "Invalid email or password")
	case errors.Is(err, service.ErrAccountDisabled):
		respondWithError(w, http.StatusForbidden, "Forbidden", "Account is disabled")
	case errors.Is(err, service.ErrFeedbackAlreadySubmitted):
		respondWithError(w, http.StatusConflict, "Conflict", "Feedback has already been submitted")
	case errors.Is(err, service.ErrFeedbackNotAvailable):
		respondWithError(w, http.StatusBadRequest, "Validation error", "Feedback is only available for resolved complaints")
	default:
		respondWithError(w, http.StatusInternalServerError, "Internal Server Error", err.Error())
	}
}

// getClientIP extracts the caller address for audit logging.
func getClientIP(r *http.Request) string {
	// Check X-Forwarded-For header (for proxies)
	forwarded := r.Header.Get("X-Forwarded-For")
	if forwarded != "" {
		return forwarded
	}
	realIP := r.Header.Get("X-Real-IP")
	if realIP != "" {
		return realIP
	}
	return r.RemoteAddr
}

// pageParam parses ?page=, defaulting to 1.
func pageParam(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}
