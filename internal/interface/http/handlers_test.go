package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/KBabraunichy/LibraryWebApiUT-Kiryl/internal/application"
	"github.com/KBabraunichy/LibraryWebApiUT-Kiryl/internal/domain/entity"
	"github.com/KBabraunichy/LibraryWebApiUT-Kiryl/internal/interface/middleware"
	"github.com/KBabraunichy/LibraryWebApiUT-Kiryl/pkg/helpers"
	"github.com/KBabraunichy/LibraryWebApiUT-Kiryl/pkg/validation"
)

func init() {
	gin.SetMode(gin.TestMode)
	validation.Init()
}

type mockService struct{ mock.Mock }

func (m *mockService) Authenticate(ctx context.Context, cred entity.LoginCredential) (*entity.User, error) {
	args := m.Called(ctx, cred)
	u, _ := args.Get(0).(*entity.User)
	return u, args.Error(1)
}

func (m *mockService) IssueToken(u *entity.User) (string, time.Time, error) {
	args := m.Called(u)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *mockService) RecordAudit(ctx context.Context, e entity.AuditEntry) {
	m.Called(ctx, e)
}

func (m *mockService) RegistrationCheck(ctx context.Context, candidate entity.User) (bool, error) {
	args := m.Called(ctx, candidate)
	return args.Bool(0), args.Error(1)
}

func (m *mockService) Register(ctx context.Context, candidate entity.User) (*entity.User, error) {
	args := m.Called(ctx, candidate)
	u, _ := args.Get(0).(*entity.User)
	return u, args.Error(1)
}

func (m *mockService) GetUser(ctx context.Context, id string) (*entity.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*entity.User)
	return u, args.Error(1)
}

func auditAction(action string) any {
	return mock.MatchedBy(func(e entity.AuditEntry) bool { return e.Action == action })
}

var testJWT = helpers.NewJWTManager("test-key", "library-web-api", "library-web-api-clients", 15*time.Minute)

func newEngine(svc *mockService) *gin.Engine {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	lh := NewLoginHandler(svc, logger)
	uh := NewUserHandler(svc, logger)

	r := gin.New()
	api := r.Group("/api")
	api.POST("/login", lh.Login)
	api.GET("/login/role", middleware.BearerClaims(testJWT), lh.GetRole)
	api.POST("/user", uh.Register)
	api.GET("/user/:id", middleware.BearerClaims(testJWT), uh.GetByID)
	return r
}

type envelope struct {
	Status  int             `json:"status"`
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Meta    map[string]any  `json:"meta"`
	Error   json.RawMessage `json:"error"`
}

func do(t *testing.T, r *gin.Engine, method, path, body string, header map[string]string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

func bearer(t *testing.T, role string) map[string]string {
	t.Helper()
	tok, _, err := testJWT.GenerateAccessToken("alice", "alice@x.io", role)
	require.NoError(t, err)
	return map[string]string{"Authorization": "Bearer " + tok}
}

func TestLogin_NoData(t *testing.T) {
	for name, body := range map[string]string{
		"empty":            "",
		"null":             "null",
		"not json":         "username=alice",
		"missing password": `{"username":"alice"}`,
	} {
		t.Run(name, func(t *testing.T) {
			svc := new(mockService)
			w, env := do(t, newEngine(svc), http.MethodPost, "/api/login", body, nil)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "No data provided", env.Message)
			svc.AssertNotCalled(t, "Authenticate", mock.Anything, mock.Anything)
		})
	}
}

func TestLogin_UserNotFound(t *testing.T) {
	svc := new(mockService)
	svc.On("Authenticate", mock.Anything, entity.LoginCredential{Username: "bob", Password: "wrong"}).
		Return(nil, application.ErrUserNotFound)
	svc.On("RecordAudit", mock.Anything, auditAction(entity.AuditLoginFailure)).Return()

	w, env := do(t, newEngine(svc), http.MethodPost, "/api/login", `{"username":"bob","password":"wrong"}`, nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "User not found", env.Message)
	svc.AssertNotCalled(t, "IssueToken", mock.Anything)
	svc.AssertExpectations(t)
}

func TestLogin_Success(t *testing.T) {
	u := &entity.User{ID: "1", Username: "testuser", Email: "t@x.io", Role: entity.RoleReader}
	exp := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	svc := new(mockService)
	svc.On("Authenticate", mock.Anything, entity.LoginCredential{Username: "TestUser ", Password: "pw"}).Return(u, nil)
	svc.On("IssueToken", u).Return("signed.jwt.token", exp, nil)
	svc.On("RecordAudit", mock.Anything, auditAction(entity.AuditLoginSuccess)).Return()

	w, env := do(t, newEngine(svc), http.MethodPost, "/api/login", `{"username":"TestUser ","password":"pw"}`, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
	assert.JSONEq(t, `"signed.jwt.token"`, string(env.Data))
	assert.Equal(t, "Bearer", env.Meta["token_type"])
	assert.Equal(t, "2026-03-01T10:00:00Z", env.Meta["expires_at"])
	svc.AssertExpectations(t)
}

func TestLogin_StoreFailure(t *testing.T) {
	svc := new(mockService)
	svc.On("Authenticate", mock.Anything, mock.Anything).Return(nil, errors.New("db down"))

	w, env := do(t, newEngine(svc), http.MethodPost, "/api/login", `{"username":"bob","password":"pw"}`, nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal server error", env.Message)
}

func TestGetRole(t *testing.T) {
	expired, _, err := helpers.NewJWTManager("test-key", "library-web-api", "library-web-api-clients", 15*time.Minute).
		WithClock(func() time.Time { return time.Now().Add(-time.Hour) }).
		GenerateAccessToken("alice", "a@x.io", "reader")
	require.NoError(t, err)
	forged, _, err := helpers.NewJWTManager("other-key", "library-web-api", "library-web-api-clients", 15*time.Minute).
		GenerateAccessToken("alice", "a@x.io", "admin")
	require.NoError(t, err)

	r := newEngine(new(mockService))

	w, env := do(t, r, http.MethodGet, "/api/login/role", "", bearer(t, entity.RoleLibrarian))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `"librarian"`, string(env.Data))

	for name, header := range map[string]map[string]string{
		"no token": nil,
		"expired":  {"Authorization": "Bearer " + expired},
		"forged":   {"Authorization": "Bearer " + forged},
	} {
		t.Run(name, func(t *testing.T) {
			w, env := do(t, r, http.MethodGet, "/api/login/role", "", header)
			assert.Equal(t, http.StatusNotFound, w.Code)
			assert.Equal(t, "The token has expired or an invalid request has been sent", env.Message)
		})
	}
}

func TestRegister_Created(t *testing.T) {
	created := &entity.User{ID: "0b7f4a8e-3f3c-4d0e-9a53-7a1c6d1f0a11", Username: "carol", Email: "carol@x.io", Role: entity.RoleReader, Password: "$argon2id$hash"}
	candidate := entity.User{Username: "carol", Password: "password1", Email: "carol@x.io"}

	svc := new(mockService)
	svc.On("RegistrationCheck", mock.Anything, candidate).Return(false, nil)
	svc.On("Register", mock.Anything, candidate).Return(created, nil)
	svc.On("RecordAudit", mock.Anything, auditAction(entity.AuditRegisterSuccess)).Return()

	w, env := do(t, newEngine(svc), http.MethodPost, "/api/user", `{"username":"carol","password":"password1","email":"carol@x.io"}`, nil)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "/api/user/"+created.ID, w.Header().Get("Location"))
	var data map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, created.ID, data["id"])
	assert.Equal(t, "reader", data["role"])
	assert.NotContains(t, data, "password")
	assert.NotContains(t, w.Body.String(), "argon2id")
	svc.AssertExpectations(t)
}

func TestRegister_Duplicate(t *testing.T) {
	svc := new(mockService)
	svc.On("RegistrationCheck", mock.Anything, mock.MatchedBy(func(u entity.User) bool { return u.Username == "alice" })).Return(true, nil)
	svc.On("RecordAudit", mock.Anything, auditAction(entity.AuditRegisterDuplicate)).Return()

	w, env := do(t, newEngine(svc), http.MethodPost, "/api/user", `{"username":"alice","password":"password1","email":"new@x.io"}`, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "User with this username or email already exists", env.Message)
	svc.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
}

func TestRegister_DuplicateFromStore(t *testing.T) {
	svc := new(mockService)
	svc.On("RegistrationCheck", mock.Anything, mock.Anything).Return(false, nil)
	svc.On("Register", mock.Anything, mock.Anything).Return(nil, application.ErrDuplicateUser)
	svc.On("RecordAudit", mock.Anything, auditAction(entity.AuditRegisterDuplicate)).Return()

	w, env := do(t, newEngine(svc), http.MethodPost, "/api/user", `{"username":"alice","password":"password1","email":"a@x.io"}`, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "User with this username or email already exists", env.Message)
}

func TestRegister_InvalidPayload(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		message string
		field   string
	}{
		{"empty", "", "No data provided", ""},
		{"bad email", `{"username":"carol","password":"password1","email":"nope"}`, "invalid payload", "email"},
		{"short password", `{"username":"carol","password":"pw","email":"c@x.io"}`, "invalid payload", "password"},
		{"admin role", `{"username":"carol","password":"password1","email":"c@x.io","role":"admin"}`, "invalid payload", "role"},
		{"blank username", `{"username":"    ","password":"password1","email":"c@x.io"}`, "invalid payload", "username"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := new(mockService)
			w, env := do(t, newEngine(svc), http.MethodPost, "/api/user", tc.body, nil)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tc.message, env.Message)
			if tc.field != "" {
				var details map[string]string
				require.NoError(t, json.Unmarshal(env.Error, &details))
				assert.Contains(t, details, tc.field)
			}
			svc.AssertNotCalled(t, "RegistrationCheck", mock.Anything, mock.Anything)
		})
	}
}

func TestRegister_CheckFailure(t *testing.T) {
	svc := new(mockService)
	svc.On("RegistrationCheck", mock.Anything, mock.Anything).Return(false, errors.New("timeout"))

	w, _ := do(t, newEngine(svc), http.MethodPost, "/api/user", `{"username":"carol","password":"password1","email":"c@x.io"}`, nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	svc.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
}

func TestGetByID(t *testing.T) {
	const id = "0b7f4a8e-3f3c-4d0e-9a53-7a1c6d1f0a11"
	const missing = "5c0a1d2e-0000-4000-8000-000000000000"
	svc := new(mockService)
	svc.On("GetUser", mock.Anything, id).Return(&entity.User{ID: id, Username: "carol", Password: "$argon2id$hash"}, nil)
	svc.On("GetUser", mock.Anything, missing).Return(nil, application.ErrUserNotFound)
	r := newEngine(svc)
	auth := bearer(t, entity.RoleReader)

	w, env := do(t, r, http.MethodGet, "/api/user/"+id, "", auth)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"username":"carol"`)
	assert.NotContains(t, w.Body.String(), "argon2id")

	w, _ = do(t, r, http.MethodGet, "/api/user/"+missing, "", auth)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = do(t, r, http.MethodGet, "/api/user/not-a-uuid", "", auth)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = do(t, r, http.MethodGet, "/api/user/"+id, "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	svc.AssertNumberOfCalls(t, "GetUser", 2)
}
