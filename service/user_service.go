package service

import (
	"context"
	"log"
	"strings"
	"time"

	"civictrack/config"
	"civictrack/models"
	"civictrack/repository"
	"civictrack/utils"
)

// UserStore is the identity storage the service runs on. Implemented by
// repository.UserRepository.
type UserStore interface {
	GetByID(userID int64) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByStaffID(staffID string) (*models.User, error)
	Create(user *models.User) (int64, error)
	UpdateLastLogin(userID int64) error
	UpdateProfile(userID int64, name, phone string, profile models.Profile) error
	List(role models.Role, search string, offset, limit int) ([]models.User, int64, error)
	CountByRole(role models.Role) (int64, error)
	SetActive(userID int64, active bool) error
}

// AssignedCounter counts complaints matching a filter. Used to annotate
// staff listings with open workload.
type AssignedCounter interface {
	Count(ctx context.Context, f repository.Filter) (int64, error)
}

// UserService implements registration, login and account management.
type UserService struct {
	users    UserStore
	counter  AssignedCounter
	activity ActivityStore
	auth     config.AuthConfig
}

// NewUserService creates a user service.
func NewUserService(users UserStore, counter AssignedCounter, activity ActivityStore, auth config.AuthConfig) *UserService {
	return &UserService{users: users, counter: counter, activity: activity, auth: auth}
}

// Register creates a citizen account.
func (s *UserService) Register(req models.RegisterRequest) (*models.User, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if name == "" {
		return nil, Invalid("name is required")
	}
	if !strings.Contains(email, "@") {
		return nil, Invalid("invalid email address")
	}
	if len(req.Password) < 8 {
		return nil, Invalid("password must be at least 8 characters")
	}
	existing, err := s.users.GetByEmail(email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		Phone:        strings.TrimSpace(req.Phone),
		Role:         models.RoleCitizen,
		IsActive:     true,
		CreatedAt:    time.Now(),
	}
	id, err := s.users.Create(user)
	if err != nil {
		return nil, err
	}
	user.ID = id
	return user, nil
}

// Login verifies credentials and issues a signed token. Unknown email and
// wrong password are reported identically.
func (s *UserService) Login(req models.LoginRequest) (string, *models.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, err := s.users.GetByEmail(email)
	if err != nil {
		return "", nil, err
	}
	if user == nil {
		return "", nil, ErrInvalidCredentials
	}
	if err := utils.CheckPassword(req.Password, user.PasswordHash); err != nil {
		return "", nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return "", nil, ErrAccountDisabled
	}
	if err := s.users.UpdateLastLogin(user.ID); err != nil {
		log.Printf("[user-service] updating last login for %d failed: %v", user.ID, err)
	}
	token, err := utils.GenerateJWT(user.ID, string(user.Role), []byte(s.auth.JWTSecret), s.auth.TokenTTLHours)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// GetProfile returns a user's account view.
func (s *UserService) GetProfile(userID int64) (*models.User, error) {
	user, err := s.users.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}

// UpdateProfile updates the caller's own editable fields.
func (s *UserService) UpdateProfile(actor *models.User, req models.UpdateProfileRequest) (*models.User, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = actor.Name
	}
	phone := strings.TrimSpace(req.Phone)
	if phone == "" {
		phone = actor.Phone
	}
	profile := models.Profile{
		Address: strings.TrimSpace(req.Address),
		City:    strings.TrimSpace(req.City),
		Pincode: strings.TrimSpace(req.Pincode),
	}
	if err := s.users.UpdateProfile(actor.ID, name, phone, profile); err != nil {
		return nil, err
	}
	return s.GetProfile(actor.ID)
}

// CreateStaff creates a staff account. Admin only; both the email and the
// staff id must be unused.
func (s *UserService) CreateStaff(ctx context.Context, actor *models.User, req models.CreateStaffRequest, ip string) (*models.User, error) {
	if actor.Role != models.RoleAdmin {
		return nil, ErrForbidden
	}
	staffID := strings.TrimSpace(req.StaffID)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if staffID == "" {
		return nil, Invalid("staff id is required")
	}
	if strings.TrimSpace(req.Name) == "" {
		return nil, Invalid("name is required")
	}
	if !strings.Contains(email, "@") {
		return nil, Invalid("invalid email address")
	}
	if len(req.Password) < 8 {
		return nil, Invalid("password must be at least 8 characters")
	}
	if existing, err := s.users.GetByEmail(email); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, ErrEmailTaken
	}
	if existing, err := s.users.GetByStaffID(staffID); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, ErrStaffIDTaken
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		Name:         strings.TrimSpace(req.Name),
		Phone:        strings.TrimSpace(req.Phone),
		Role:         models.RoleStaff,
		StaffID:      staffID,
		IsActive:     true,
		CreatedAt:    time.Now(),
	}
	id, err := s.users.Create(user)
	if err != nil {
		return nil, err
	}
	user.ID = id

	entry := models.ActivityEntry{
		Action:    models.ActionStaffCreated,
		UserID:    actor.ID,
		Details:   map[string]any{"staff_id": staffID, "staff_user_id": id},
		Timestamp: time.Now(),
		IPAddress: ip,
	}
	if err := s.activity.Record(ctx, entry); err != nil {
		log.Printf("[user-service] recording staff creation failed: %v", err)
	}
	return user, nil
}

// ListUsers pages accounts, optionally narrowed by role and search. Admin only.
func (s *UserService) ListUsers(actor *models.User, role models.Role, search string, page, pageSize int) (*models.Page[models.User], error) {
	if actor.Role != models.RoleAdmin {
		return nil, ErrForbidden
	}
	if role != "" && !models.ValidRole(role) {
		return nil, Invalid("unknown role")
	}
	if page < 1 {
		page = 1
	}
	users, total, err := s.users.List(role, search, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, err
	}
	totalPages := 0
	if pageSize > 0 {
		totalPages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	return &models.Page[models.User]{Items: users, Total: total, Page: page, TotalPages: totalPages}, nil
}

// StaffSummary is one row of the staff roster with current workload.
type StaffSummary struct {
	models.User
	OpenAssigned int64 `json:"open_assigned"`
}

// ListStaff returns the staff roster annotated with each member's open
// workload. Admin only.
func (s *UserService) ListStaff(ctx context.Context, actor *models.User, page, pageSize int) (*models.Page[StaffSummary], error) {
	if actor.Role != models.RoleAdmin {
		return nil, ErrForbidden
	}
	if page < 1 {
		page = 1
	}
	users, total, err := s.users.List(models.RoleStaff, "", (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, err
	}
	summaries := make([]StaffSummary, 0, len(users))
	for i := range users {
		id := users[i].ID
		n, err := s.counter.Count(ctx, repository.Filter{AssignedTo: &id, OpenOnly: true})
		if err != nil {
			log.Printf("[user-service] counting workload for staff %d failed: %v", id, err)
		}
		summaries = append(summaries, StaffSummary{User: users[i], OpenAssigned: n})
	}
	totalPages := 0
	if pageSize > 0 {
		totalPages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	return &models.Page[StaffSummary]{Items: summaries, Total: total, Page: page, TotalPages: totalPages}, nil
}

// SetUserActive enables or disables an account. Admin only; admins cannot
// disable themselves.
func (s *UserService) SetUserActive(actor *models.User, userID int64, active bool) error {
	if actor.Role != models.RoleAdmin {
		return ErrForbidden
	}
	if actor.ID == userID && !active {
		return Invalid("cannot disable your own account")
	}
	user, err := s.users.GetByID(userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrNotFound
	}
	return s.users.SetActive(userID, active)
}

// EnsureAdmin seeds the default admin account on first startup so a fresh
// deployment is reachable. No-op when any admin exists.
func (s *UserService) EnsureAdmin(email, password, name string) error {
	n, err := s.users.CountByRole(models.RoleAdmin)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		return err
	}
	admin := &models.User{
		Email:        strings.ToLower(email),
		PasswordHash: hash,
		Name:         name,
		Role:         models.RoleAdmin,
		IsActive:     true,
		CreatedAt:    time.Now(),
	}
	id, err := s.users.Create(admin)
	if err != nil {
		return err
	}
	log.Printf("[user-service] seeded default admin account %s (id %d)", admin.Email, id)
	return nil
}
