package service

import (
	"context"
	"strings"
	"testing"

	"civictrack/config"
	"civictrack/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeUserStore keeps accounts in memory.
type fakeUserStore struct {
	users  map[int64]*models.User
	nextID int64
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[int64]*models.User{}, nextID: 1}
}

func (s *fakeUserStore) GetByID(userID int64) (*models.User, error) {
	u, ok := s.users[userID]
	if !ok {
		return nil, nil
	}
	clone := *u
	return &clone, nil
}

func (s *fakeUserStore) GetByEmail(email string) (*models.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, nil
}

func (s *fakeUserStore) GetByStaffID(staffID string) (*models.User, error) {
	for _, u := range s.users {
		if u.StaffID == staffID {
			clone := *u
			return &clone, nil
		}
	}
	return nil, nil
}

func (s *fakeUserStore) Create(user *models.User) (int64, error) {
	id := s.nextID
	s.nextID++
	clone := *user
	clone.ID = id
	s.users[id] = &clone
	return id, nil
}

func (s *fakeUserStore) UpdateLastLogin(userID int64) error {
	return nil
}

func (s *fakeUserStore) UpdateProfile(userID int64, name, phone string, profile models.Profile) error {
	u := s.users[userID]
	u.Name, u.Phone, u.Profile = name, phone, profile
	return nil
}

func (s *fakeUserStore) List(role models.Role, search string, offset, limit int) ([]models.User, int64, error) {
	var out []models.User
	for _, u := range s.users {
		if role != "" && u.Role != role {
			continue
		}
		if search != "" && !strings.Contains(u.Name, search) && !strings.Contains(u.Email, search) {
			continue
		}
		out = append(out, *u)
	}
	return out, int64(len(out)), nil
}

func (s *fakeUserStore) CountByRole(role models.Role) (int64, error) {
	var n int64
	for _, u := range s.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

func (s *fakeUserStore) SetActive(userID int64, active bool) error {
	s.users[userID].IsActive = active
	return nil
}

func newUserService(store *fakeUserStore) *UserService {
	auth := config.AuthConfig{JWTSecret: "test-secret", TokenTTLHours: 1}
	return NewUserService(store, newFakeComplaintStore(), &fakeActivityStore{}, auth)
}

func TestRegisterValidation(t *testing.T) {
	svc := newUserService(newFakeUserStore())

	tests := []struct {
		name string
		req  models.RegisterRequest
	}{
		{"missing name", models.RegisterRequest{Email: "a@b.com", Password: "password1"}},
		{"bad email", models.RegisterRequest{Name: "A", Email: "not-an-email", Password: "password1"}},
		{"short password", models.RegisterRequest{Name: "A", Email: "a@b.com", Password: "short"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(tc.req)
			assert.True(t, IsValidation(err), "expected validation error, got %v", err)
		})
	}
}

func TestRegisterAndLogin(t *testing.T) {
	store := newFakeUserStore()
	svc := newUserService(store)

	user, err := svc.Register(models.RegisterRequest{Name: "Asha", Email: "Asha@Example.com", Password: "password1"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleCitizen, user.Role)
	assert.Equal(t, "asha@example.com", user.Email, "email should be normalized")
	assert.True(t, user.IsActive)

	// Duplicate email.
	_, err = svc.Register(models.RegisterRequest{Name: "B", Email: "asha@example.com", Password: "password1"})
	assert.ErrorIs(t, err, ErrEmailTaken)

	token, loggedIn, err := svc.Login(models.LoginRequest{Email: "asha@example.com", Password: "password1"})
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, user.ID, loggedIn.ID)

	_, _, err = svc.Login(models.LoginRequest{Email: "asha@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login(models.LoginRequest{Email: "nobody@example.com", Password: "password1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginDisabledAccount(t *testing.T) {
	store := newFakeUserStore()
	svc := newUserService(store)

	user, err := svc.Register(models.RegisterRequest{Name: "Asha", Email: "asha@example.com", Password: "password1"})
	require.NoError(t, err)
	store.users[user.ID].IsActive = false

	_, _, err = svc.Login(models.LoginRequest{Email: "asha@example.com", Password: "password1"})
	assert.ErrorIs(t, err, ErrAccountDisabled)
}

func TestCreateStaff(t *testing.T) {
	store := newFakeUserStore()
	svc := newUserService(store)
	admin := &models.User{ID: 100, Role: models.RoleAdmin, Name: "Admin"}
	citizen := &models.User{ID: 101, Role: models.RoleCitizen}

	req := models.CreateStaffRequest{StaffID: "PWD-007", Name: "Ravi", Email: "ravi@municipal.gov", Password: "password1"}

	_, err := svc.CreateStaff(context.Background(), citizen, req, "")
	assert.ErrorIs(t, err, ErrForbidden)

	staff, err := svc.CreateStaff(context.Background(), admin, req, "")
	require.NoError(t, err)
	assert.Equal(t, models.RoleStaff, staff.Role)
	assert.Equal(t, "PWD-007", staff.StaffID)

	// Duplicate staff id with a fresh email.
	req.Email = "ravi2@municipal.gov"
	_, err = svc.CreateStaff(context.Background(), admin, req, "")
	assert.ErrorIs(t, err, ErrStaffIDTaken)

	// Duplicate email.
	req.StaffID = "PWD-008"
	req.Email = "ravi@municipal.gov"
	_, err = svc.CreateStaff(context.Background(), admin, req, "")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestEnsureAdmin(t *testing.T) {
	store := newFakeUserStore()
	svc := newUserService(store)

	require.NoError(t, svc.EnsureAdmin("admin@municipal.gov", "password1", "System Administrator"))
	n, _ := store.CountByRole(models.RoleAdmin)
	assert.Equal(t, int64(1), n)

	// Second call is a no-op.
	require.NoError(t, svc.EnsureAdmin("other@municipal.gov", "password1", "Second Admin"))
	n, _ = store.CountByRole(models.RoleAdmin)
	assert.Equal(t, int64(1), n)
}

func TestSetUserActive(t *testing.T) {
	store := newFakeUserStore()
	svc := newUserService(store)
	adminID, err := store.Create(&models.User{Email: "admin@municipal.gov", Role: models.RoleAdmin, IsActive: true})
	require.NoError(t, err)
	admin := store.users[adminID]

	userID, err := store.Create(&models.User{Email: "asha@example.com", Role: models.RoleCitizen, IsActive: true})
	require.NoError(t, err)

	require.NoError(t, svc.SetUserActive(admin, userID, false))
	assert.False(t, store.users[userID].IsActive)

	// Admins cannot disable themselves.
	err = svc.SetUserActive(admin, adminID, false)
	assert.True(t, IsValidation(err))

	err = svc.SetUserActive(admin, 999, true)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListStaffWorkload(t *testing.T) {
	store := newFakeUserStore()
	complaints := newFakeComplaintStore()
	svc := NewUserService(store, complaints, &fakeActivityStore{}, config.AuthConfig{JWTSecret: "s", TokenTTLHours: 1})

	adminID, err := store.Create(&models.User{Email: "admin@municipal.gov", Role: models.RoleAdmin, IsActive: true})
	require.NoError(t, err)
	staffID, err := store.Create(&models.User{Email: "ravi@municipal.gov", Role: models.RoleStaff, StaffID: "PWD-001", IsActive: true})
	require.NoError(t, err)

	open := &models.Complaint{Code: "COM-1", Category: "Potholes", Status: models.StatusInProgress, AssignedTo: &staffID}
	closed := &models.Complaint{Code: "COM-2", Category: "Potholes", Status: models.StatusResolved, AssignedTo: &staffID}
	complaints.byKey[open.Code] = open
	complaints.byKey[closed.Code] = closed

	page, err := svc.ListStaff(context.Background(), store.users[adminID], 1, 20)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, int64(1), page.Items[0].OpenAssigned, "only non-terminal complaints count as workload")
}
