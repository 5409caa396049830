package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Bhaskar-scientist/Valut-Craft/internal/apperr"
	"github.com/Bhaskar-scientist/Valut-Craft/internal/cqrs"
	"github.com/Bhaskar-scientist/Valut-Craft/internal/models"
)

// ---- mock implementations ----

type mockAuthCommander struct {
	registerFn func(cqrs.RegisterCommand) (*models.User, *models.Organization, error)
}

func (m *mockAuthCommander) Register(_ context.Context, cmd cqrs.RegisterCommand) (*models.User, *models.Organization, error) {
	if m.registerFn != nil {
		return m.registerFn(cmd)
	}
	return nil, nil, fmt.Errorf("not configured")
}

type mockAuthQuerier struct {
	loginFn   func(cqrs.LoginCommand) (string, error)
	refreshFn func(cqrs.RefreshTokenCommand) (string, error)
	getUserFn func(cqrs.GetUserQuery) (*models.UserView, *models.Organization, error)
}

func (m *mockAuthQuerier) Login(_ context.Context, cmd cqrs.LoginCommand) (string, error) {
	if m.loginFn != nil {
		return m.loginFn(cmd)
	}
	return "", fmt.Errorf("not configured")
}
func (m *mockAuthQuerier) RefreshToken(_ context.Context, cmd cqrs.RefreshTokenCommand) (string, error) {
	if m.refreshFn != nil {
		return m.refreshFn(cmd)
	}
	return "", fmt.Errorf("not configured")
}
func (m *mockAuthQuerier) TokenTTL() time.Duration {
	return 30 * time.Minute
}
func (m *mockAuthQuerier) GetUser(_ context.Context, q cqrs.GetUserQuery) (*models.UserView, *models.Organization, error) {
	if m.getUserFn != nil {
		return m.getUserFn(q)
	}
	return nil, nil, fmt.Errorf("not configured")
}

// ---- helpers ----

func newAuthTestRouter(cmds AuthCommander, qrys AuthQuerier) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewAuthHandler(cmds, qrys)
	v1 := r.Group("/v1/auth")
	v1.POST("/signup", h.Signup)
	v1.POST("/login", h.Login)
	v1.POST("/refresh", h.RefreshToken)
	v1.GET("/me", fakeAuth("usr-001", "org-001"), h.Me)
	return r
}

func authDoRequest(router *gin.Engine, method, url string, body interface{}) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, url, nil)
	if body != nil {
		b, _ := json.Marshal(body)
		req, _ = http.NewRequest(method, url, strings.NewReader(string(b)))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// ---- test data ----

var aTestUser = &models.User{
	ID:        "usr-001",
	OrgID:     "org-001",
	Email:     "finance@acme.example",
	CreatedAt: time.Now().UTC(),
}

var aTestOrg = &models.Organization{
	ID:        "org-001",
	Name:      "Acme Payments",
	CreatedAt: time.Now().UTC(),
}

func aValidSignupBody() map[string]interface{} {
	return map[string]interface{}{
		"organizationName": "Acme Payments",
		"email":            "finance@acme.example",
		"password":         "s3cret-pass",
	}
}

// ---- tests ----

func TestSignup(t *testing.T) {
	registerOK := func(cmd cqrs.RegisterCommand) (*models.User, *models.Organization, error) {
		return aTestUser, aTestOrg, nil
	}
	loginOK := func(cmd cqrs.LoginCommand) (string, error) { return "signed.jwt.token", nil }

	tests := []struct {
		name           string
		body           interface{}
		registerFn     func(cqrs.RegisterCommand) (*models.User, *models.Organization, error)
		loginFn        func(cqrs.LoginCommand) (string, error)
		expectedStatus int
	}{
		{
			name:           "success - organization and first user created",
			body:           aValidSignupBody(),
			registerFn:     registerOK,
			loginFn:        loginOK,
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "bad request - missing required fields",
			body:           map[string]interface{}{"email": "finance@acme.example"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "bad request - password too short",
			body: map[string]interface{}{
				"organizationName": "Acme Payments",
				"email":            "finance@acme.example",
				"password":         "short",
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "bad request - invalid email",
			body: map[string]interface{}{
				"organizationName": "Acme Payments",
				"email":            "not-an-email",
				"password":         "s3cret-pass",
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "conflict - email already registered",
			body: aValidSignupBody(),
			registerFn: func(cmd cqrs.RegisterCommand) (*models.User, *models.Organization, error) {
				return nil, nil, apperr.StateConflict("email", "email already registered")
			},
			expectedStatus: http.StatusConflict,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmds := &mockAuthCommander{registerFn: tt.registerFn}
			qrys := &mockAuthQuerier{loginFn: tt.loginFn}
			router := newAuthTestRouter(cmds, qrys)
			w := authDoRequest(router, http.MethodPost, "/v1/auth/signup", tt.body)
			if w.Code != tt.expectedStatus {
				t.Errorf("[%s] expected %d got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestSignupResponseShape(t *testing.T) {
	cmds := &mockAuthCommander{registerFn: func(cmd cqrs.RegisterCommand) (*models.User, *models.Organization, error) {
		return aTestUser, aTestOrg, nil
	}}
	qrys := &mockAuthQuerier{loginFn: func(cmd cqrs.LoginCommand) (string, error) { return "signed.jwt.token", nil }}
	router := newAuthTestRouter(cmds, qrys)

	w := authDoRequest(router, http.MethodPost, "/v1/auth/signup", aValidSignupBody())
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d; body: %s", w.Code, w.Body.String())
	}

	var resp SignupResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.AccessToken != "signed.jwt.token" {
		t.Errorf("accessToken = %q, want the issued token", resp.AccessToken)
	}
	if resp.TokenType != "bearer" {
		t.Errorf("tokenType = %q, want bearer", resp.TokenType)
	}
	if resp.ExpiresIn != 30 {
		t.Errorf("expiresIn = %d, want 30 minutes", resp.ExpiresIn)
	}
	if resp.User == nil || resp.Organization == nil {
		t.Errorf("signup response must include the created user and organization; body: %s", w.Body.String())
	}
}

func TestLogin(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		loginFn        func(cqrs.LoginCommand) (string, error)
		expectedStatus int
	}{
		{
			name: "success - valid credentials",
			body: map[string]interface{}{"email": "finance@acme.example", "password": "s3cret-pass"},
			loginFn: func(cmd cqrs.LoginCommand) (string, error) {
				return "signed.jwt.token", nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "unauthorized - wrong password",
			body: map[string]interface{}{"email": "finance@acme.example", "password": "wrong-pass"},
			loginFn: func(cmd cqrs.LoginCommand) (string, error) {
				return "", fmt.Errorf("invalid credentials")
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "bad request - missing password",
			body:           map[string]interface{}{"email": "finance@acme.example"},
			expectedStatus: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			qrys := &mockAuthQuerier{loginFn: tt.loginFn}
			router := newAuthTestRouter(&mockAuthCommander{}, qrys)
			w := authDoRequest(router, http.MethodPost, "/v1/auth/login", tt.body)
			if w.Code != tt.expectedStatus {
				t.Errorf("[%s] expected %d got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestRefreshToken(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		refreshFn      func(cqrs.RefreshTokenCommand) (string, error)
		expectedStatus int
	}{
		{
			name: "success - token refreshed",
			body: map[string]interface{}{"token": "old.jwt.token"},
			refreshFn: func(cmd cqrs.RefreshTokenCommand) (string, error) {
				return "new.jwt.token", nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "unauthorized - expired token",
			body: map[string]interface{}{"token": "expired.jwt.token"},
			refreshFn: func(cmd cqrs.RefreshTokenCommand) (string, error) {
				return "", fmt.Errorf("invalid token")
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "bad request - missing token",
			body:           map[string]interface{}{},
			expectedStatus: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			qrys := &mockAuthQuerier{refreshFn: tt.refreshFn}
			router := newAuthTestRouter(&mockAuthCommander{}, qrys)
			w := authDoRequest(router, http.MethodPost, "/v1/auth/refresh", tt.body)
			if w.Code != tt.expectedStatus {
				t.Errorf("[%s] expected %d got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestMe(t *testing.T) {
	qrys := &mockAuthQuerier{getUserFn: func(q cqrs.GetUserQuery) (*models.UserView, *models.Organization, error) {
		if q.UserID != "usr-001" {
			return nil, nil, apperr.NotFound("user_id", "user not found")
		}
		view := &models.UserView{ID: "usr-001", OrgID: "org-001", Email: "finance@acme.example"}
		return view, aTestOrg, nil
	}}
	router := newAuthTestRouter(&mockAuthCommander{}, qrys)

	w := authDoRequest(router, http.MethodGet, "/v1/auth/me", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d; body: %s", w.Code, w.Body.String())
	}

	var resp struct {
		User         *models.UserView     `json:"user"`
		Organization *models.Organization `json:"organization"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.User == nil || resp.User.ID != "usr-001" {
		t.Errorf("me response must carry the caller's profile; body: %s", w.Body.String())
	}
	if resp.Organization == nil || resp.Organization.Name != "Acme Payments" {
		t.Errorf("me response must carry the caller's organization; body: %s", w.Body.String())
	}
}
