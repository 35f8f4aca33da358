package routes

import (
	"net/http"

	"civictrack/config"
	"civictrack/handler"
	"civictrack/middleware"
	"civictrack/models"
	"civictrack/service"
	"civictrack/storage"

	"github.com/gorilla/mux"
)

// SetupRoutes configures all API routes
func SetupRoutes(
	cfg *config.Config,
	complaintService *service.ComplaintService,
	userService *service.UserService,
	uploads *storage.DiskStore,
) *mux.Router {
	router := mux.NewRouter()

	authHandler := handler.NewAuthHandler(userService)
	complaintHandler := handler.NewComplaintHandler(complaintService, uploads, cfg.Paging.ItemsPerPage)
	staffHandler := handler.NewStaffHandler(complaintService, uploads, cfg.Paging.ItemsPerPage)
	adminHandler := handler.NewAdminHandler(complaintService, userService, cfg.Paging.AdminItemsPerPage)

	authMiddleware := middleware.NewAuthMiddleware(userService, cfg.Auth.JWTSecret)
	staffOnly := authMiddleware.RequireRole(models.RoleStaff, models.RoleAdmin)
	adminOnly := authMiddleware.RequireRole(models.RoleAdmin)

	apiV1 := router.PathPrefix("/api/v1").Subrouter()

	// Public auth routes
	auth := apiV1.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/register", authHandler.Register).Methods("POST")
	auth.HandleFunc("/login", authHandler.Login).Methods("POST")

	// Profile routes
	apiV1.Handle("/profile", authMiddleware.RequireAuth(http.HandlerFunc(authHandler.Me))).Methods("GET")
	apiV1.Handle("/profile", authMiddleware.RequireAuth(http.HandlerFunc(authHandler.UpdateProfile))).Methods("PUT")

	// Citizen complaint routes
	complaints := apiV1.PathPrefix("/complaints").Subrouter()
	complaints.Handle("", authMiddleware.RequireAuth(http.HandlerFunc(complaintHandler.Create))).Methods("POST")
	complaints.Handle("", authMiddleware.RequireAuth(http.HandlerFunc(complaintHandler.List))).Methods("GET")
	complaints.Handle("/categories", authMiddleware.RequireAuth(http.HandlerFunc(complaintHandler.Categories))).Methods("GET")
	complaints.Handle("/stats", authMiddleware.RequireAuth(http.HandlerFunc(complaintHandler.Stats))).Methods("GET")
	complaints.Handle("/{id}", authMiddleware.RequireAuth(http.HandlerFunc(complaintHandler.Detail))).Methods("GET")
	complaints.Handle("/{id}/comments", authMiddleware.RequireAuth(http.HandlerFunc(complaintHandler.AddComment))).Methods("POST")
	complaints.Handle("/{id}/feedback", authMiddleware.RequireAuth(http.HandlerFunc(complaintHandler.SubmitFeedback))).Methods("POST")

	// Staff routes
	staff := apiV1.PathPrefix("/staff").Subrouter()
	staff.Handle("/complaints", authMiddleware.RequireAuth(staffOnly(http.HandlerFunc(staffHandler.Assigned)))).Methods("GET")
	staff.Handle("/stats", authMiddleware.RequireAuth(staffOnly(http.HandlerFunc(staffHandler.Stats)))).Methods("GET")
	staff.Handle("/complaints/{id}/status", authMiddleware.RequireAuth(staffOnly(http.HandlerFunc(staffHandler.UpdateStatus)))).Methods("PUT")

	// Admin routes
	admin := apiV1.PathPrefix("/admin").Subrouter()
	admin.Handle("/complaints", authMiddleware.RequireAuth(adminOnly(http.HandlerFunc(adminHandler.ListComplaints)))).Methods("GET")
	admin.Handle("/complaints/{id}", authMiddleware.RequireAuth(adminOnly(http.HandlerFunc(adminHandler.ComplaintDetail)))).Methods("GET")
	admin.Handle("/complaints/{id}", authMiddleware.RequireAuth(adminOnly(http.HandlerFunc(adminHandler.Update)))).Methods("PUT")
	admin.Handle("/complaints/{id}/assign", authMiddleware.RequireAuth(adminOnly(http.HandlerFunc(adminHandler.Assign)))).Methods("POST")
	admin.Handle("/complaints/{id}/urgent", authMiddleware.RequireAuth(adminOnly(http.HandlerFunc(adminHandler.ToggleUrgent)))).Methods("PUT")
	admin.Handle("/stats", authMiddleware.RequireAuth(adminOnly(http.HandlerFunc(adminHandler.Stats)))).Methods("GET")
	admin.Handle("/analytics", authMiddleware.RequireAuth(adminOnly(http.HandlerFunc(adminHandler.Analytics)))).Methods("GET")
	admin.Handle("/staff", authMiddleware.RequireAuth(adminOnly(http.HandlerFunc(adminHandler.CreateStaff)))).Methods("POST")
	admin.Handle("/staff", authMiddleware.RequireAuth(adminOnly(http.HandlerFunc(adminHandler.ListStaff)))).Methods("GET")
	admin.Handle("/users", authMiddleware.RequireAuth(adminOnly(http.HandlerFunc(adminHandler.ListUsers)))).Methods("GET")
	admin.Handle("/users/{id}/active", authMiddleware.RequireAuth(adminOnly(http.HandlerFunc(adminHandler.SetUserActive)))).Methods("PUT")

	// Uploaded files (complaint photos, proof images)
	router.PathPrefix("/static/uploads/").Handler(
		http.StripPrefix("/static/uploads/", http.FileServer(http.Dir(uploads.BaseDir()))))

	// Health check endpoint
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")

	return router
}
