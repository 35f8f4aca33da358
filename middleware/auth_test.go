package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"civictrack/models"
	"civictrack/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLoader struct {
	users map[int64]*models.User
}

func (l *fakeLoader) GetProfile(userID int64) (*models.User, error) {
	u, ok := l.users[userID]
	if !ok {
		return nil, fmt.Errorf("user %d not found", userID)
	}
	return u, nil
}

const testSecret = "test-secret"

func newTestMiddleware() (*AuthMiddleware, *fakeLoader) {
	loader := &fakeLoader{users: map[int64]*models.User{
		1: {ID: 1, Role: models.RoleCitizen, IsActive: true},
		2: {ID: 2, Role: models.RoleAdmin, IsActive: true},
		3: {ID: 3, Role: models.RoleCitizen, IsActive: false},
	}}
	return NewAuthMiddleware(loader, testSecret), loader
}

func doRequest(m *AuthMiddleware, wrap func(http.Handler) http.Handler, token string) (*httptest.ResponseRecorder, *models.User) {
	var seen *models.User
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = UserFromContext(r)
		w.WriteHeader(http.StatusOK)
	})
	var h http.Handler = inner
	if wrap != nil {
		h = wrap(inner)
	}
	h = m.RequireAuth(h)

	req := httptest.NewRequest("GET", "/protected", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec, seen
}

func TestRequireAuth(t *testing.T) {
	m, _ := newTestMiddleware()

	t.Run("missing header", func(t *testing.T) {
		rec, _ := doRequest(m, nil, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		rec, _ := doRequest(m, nil, "not-a-jwt")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid token loads user", func(t *testing.T) {
		token, err := utils.GenerateJWT(1, "citizen", []byte(testSecret), 1)
		require.NoError(t, err)
		rec, user := doRequest(m, nil, token)
		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, user)
		assert.Equal(t, int64(1), user.ID)
	})

	t.Run("disabled account rejected", func(t *testing.T) {
		token, err := utils.GenerateJWT(3, "citizen", []byte(testSecret), 1)
		require.NoError(t, err)
		rec, _ := doRequest(m, nil, token)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("unknown user rejected", func(t *testing.T) {
		token, err := utils.GenerateJWT(99, "citizen", []byte(testSecret), 1)
		require.NoError(t, err)
		rec, _ := doRequest(m, nil, token)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRequireRole(t *testing.T) {
	m, _ := newTestMiddleware()
	adminOnly := m.RequireRole(models.RoleAdmin)

	citizenToken, err := utils.GenerateJWT(1, "citizen", []byte(testSecret), 1)
	require.NoError(t, err)
	adminToken, err := utils.GenerateJWT(2, "admin", []byte(testSecret), 1)
	require.NoError(t, err)

	rec, _ := doRequest(m, adminOnly, citizenToken)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = doRequest(m, adminOnly, adminToken)
	assert.Equal(t, http.StatusOK, rec.Code)
}
