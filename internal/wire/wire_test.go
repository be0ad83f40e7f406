package wire

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"admin-backend/internal/data/entity"
	"admin-backend/internal/data/repository"
	"admin-backend/internal/data/store"
	"admin-backend/pkg/security"
	"admin-backend/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type envelope struct {
	Status  bool              `json:"status"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Errors  map[string]string `json:"errors"`
}

type tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	Username     string `json:"username"`
}

type testServer struct {
	router http.Handler
	repo   *repository.Repository
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	config := &utils.Config{
		App: utils.AppConfig{Name: "admin-backend"},
		JWT: utils.JWTConfig{
			AccessSecret:  "access-secret",
			RefreshSecret: "refresh-secret",
			AccessTTL:     15 * time.Minute,
			RefreshTTL:    time.Hour,
		},
		Auth:  utils.AuthConfig{ReleaseDeviceOnLogout: true, BcryptCost: bcrypt.MinCost},
		Query: utils.QueryConfig{DefaultPageSize: 20, MaxPageSize: 100},
	}
	repo := repository.NewRepository(repository.Stores{User: store.NewMemoryStore[entity.User]()}, time.Second, zap.NewNop())

	hasher := security.NewBcryptHasher(bcrypt.MinCost)
	for _, u := range []struct {
		username string
		role     entity.UserRole
	}{{"admin", entity.RoleAdmin}, {"alice", entity.RoleUser}, {"bob", entity.RoleUser}} {
		hash, err := hasher.Hash("s3cret!")
		require.NoError(t, err)
		_, err = repo.User.Create(context.Background(), &entity.User{
			Role:         u.role,
			AccountName:  u.username,
			Username:     u.username,
			PasswordHash: hash,
			IsActive:     true,
		})
		require.NoError(t, err)
	}

	app := Wiring(repo, config, zap.NewNop())
	return &testServer{router: app.Router, repo: repo}
}

func (s *testServer) do(t *testing.T, method, target, device, bearer string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	if device != "" {
		req.Header.Set(utils.DeviceIDHeader, device)
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 && rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func (s *testServer) login(t *testing.T, username, device string) tokens {
	t.Helper()

	rec, env := s.do(t, http.MethodPost, "/api/auth/login", device, "", map[string]string{
		"username": username,
		"password": "s3cret!",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var tk tokens
	require.NoError(t, json.Unmarshal(env.Data, &tk))
	return tk
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestUnknownRoute(t *testing.T) {
	s := newTestServer(t)

	rec, env := s.do(t, http.MethodGet, "/api/nope", "", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Route not found", env.Message)
}

func TestLoginAndProfile(t *testing.T) {
	s := newTestServer(t)
	tk := s.login(t, "alice", "device-A")
	assert.Equal(t, "alice", tk.Username)

	rec, env := s.do(t, http.MethodGet, "/api/auth/profile", "device-A", tk.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var profile map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &profile))
	assert.Equal(t, "alice", profile["username"])
	assert.Equal(t, "device-A", profile["deviceId"])
	assert.NotContains(t, profile, "password")
	assert.NotContains(t, profile, "passwordHash")
}

func TestLogin_Failures(t *testing.T) {
	s := newTestServer(t)

	rec, env := s.do(t, http.MethodPost, "/api/auth/login", "device-A", "", map[string]string{"username": "alice", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "INVALID_CREDENTIALS", env.Errors["kind"])

	rec, _ = s.do(t, http.MethodPost, "/api/auth/login", "", "", map[string]string{"username": "alice", "password": "s3cret!"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewBufferString("{not json"))
	req.Header.Set(utils.DeviceIDHeader, "device-A")
	raw := httptest.NewRecorder()
	s.router.ServeHTTP(raw, req)
	assert.Equal(t, http.StatusBadRequest, raw.Code)
}

func TestLogin_SecondDeviceConflicts(t *testing.T) {
	s := newTestServer(t)
	s.login(t, "alice", "device-A")

	rec, env := s.do(t, http.MethodPost, "/api/auth/login", "device-B", "", map[string]string{"username": "alice", "password": "s3cret!"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "DEVICE_CONFLICT", env.Errors["kind"])
	assert.False(t, env.Status)
}

func TestProtectedRoutes_RejectMissingTokenAndWrongDevice(t *testing.T) {
	s := newTestServer(t)
	tk := s.login(t, "alice", "device-A")

	rec, env := s.do(t, http.MethodGet, "/api/auth/profile", "device-A", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHORIZED", env.Errors["kind"])

	rec, _ = s.do(t, http.MethodGet, "/api/auth/profile", "device-B", tk.AccessToken, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminRoutes_RequireAdminRole(t *testing.T) {
	s := newTestServer(t)
	tk := s.login(t, "alice", "device-A")

	rec, env := s.do(t, http.MethodGet, "/api/users", "device-A", tk.AccessToken, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHORIZED", env.Errors["kind"])
}

func TestAdminListUsers_FilterSortPaginate(t *testing.T) {
	s := newTestServer(t)
	tk := s.login(t, "admin", "admin-device")

	q := url.Values{}
	q.Set("filter", `["role:eq:user"]`)
	q.Set("sort", "username:desc")
	q.Set("pageSize", "1")

	rec, env := s.do(t, http.MethodGet, "/api/users?"+q.Encode(), "admin-device", tk.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var page struct {
		Pagination struct {
			Page         int   `json:"page"`
			PageSize     int   `json:"pageSize"`
			TotalPages   int   `json:"totalPages"`
			TotalRecords int64 `json:"totalRecords"`
		} `json:"pagination"`
		Data []map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.Equal(t, int64(2), page.Pagination.TotalRecords)
	assert.Equal(t, 2, page.Pagination.TotalPages)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "bob", page.Data[0]["username"])

	q.Set("filter", `["nope:eq:x"]`)
	rec, env = s.do(t, http.MethodGet, "/api/users?"+q.Encode(), "admin-device", tk.AccessToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_FAILED", env.Errors["kind"])

	rec, _ = s.do(t, http.MethodGet, "/api/users?filter=notjson", "admin-device", tk.AccessToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminUserLifecycle(t *testing.T) {
	s := newTestServer(t)
	tk := s.login(t, "admin", "admin-device")

	rec, env := s.do(t, http.MethodPost, "/api/users", "admin-device", tk.AccessToken, map[string]any{
		"role":        "user",
		"accountName": "Carol",
		"username":    "carol",
		"password":    "s3cret!",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &created))
	id := created["id"].(string)
	assert.Equal(t, true, created["isActive"])

	rec, _ = s.do(t, http.MethodPost, "/api/users", "admin-device", tk.AccessToken, map[string]any{
		"role":        "user",
		"accountName": "Carol again",
		"username":    "carol",
		"password":    "s3cret!",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, env = s.do(t, http.MethodPut, "/api/users/"+id, "admin-device", tk.AccessToken, map[string]any{"accountName": "Carol C."})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, "Carol C.", updated["accountName"])

	carol := s.login(t, "carol", "carol-device")
	rec, _ = s.do(t, http.MethodDelete, "/api/users/"+id+"/device", "admin-device", tk.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// binding gone, old access token no longer admitted
	rec, _ = s.do(t, http.MethodGet, "/api/auth/profile", "carol-device", carol.AccessToken, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = s.do(t, http.MethodDelete, "/api/users/"+id, "admin-device", tk.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, env = s.do(t, http.MethodGet, "/api/users/"+id, "admin-device", tk.AccessToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", env.Errors["kind"])

	rec, _ = s.do(t, http.MethodGet, "/api/users/not-a-uuid", "admin-device", tk.AccessToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRefreshAndLogout(t *testing.T) {
	s := newTestServer(t)
	tk := s.login(t, "alice", "device-A")

	rec, env := s.do(t, http.MethodPost, "/api/auth/refresh", "device-A", "", map[string]string{"refresh_token": tk.RefreshToken})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var refreshed tokens
	require.NoError(t, json.Unmarshal(env.Data, &refreshed))
	assert.NotEmpty(t, refreshed.AccessToken)

	rec, _ = s.do(t, http.MethodPost, "/api/auth/refresh", "device-B", "", map[string]string{"refresh_token": tk.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, env = s.do(t, http.MethodPost, "/api/auth/logout", "device-A", refreshed.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Logout successfully", env.Message)

	// device released, so another device can now log in
	s.login(t, "alice", "device-B")
}
