package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/homeward-pm/homeward/internal/auth"
	"github.com/homeward-pm/homeward/internal/authz"
	"github.com/homeward-pm/homeward/internal/shared"
	_ "github.com/homeward-pm/homeward/testing"
)

type stubRepo struct {
	user  *auth.User
	roles []authz.Role
}

func (s *stubRepo) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	if s.user == nil || s.user.Email != email {
		return nil, shared.ErrInvalidCredentials
	}
	return s.user, nil
}

func (s *stubRepo) RolesOfUser(ctx context.Context, userID int64) ([]authz.Role, error) {
	return s.roles, nil
}

func (s *stubRepo) CreateSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	return nil
}

func (s *stubRepo) DeleteSession(ctx context.Context, id string) error {
	return nil
}

func newAuthHandler(t *testing.T, repo auth.Repository) (*auth.Handler, *shared.SessionManager) {
	t.Helper()
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sessionManager := shared.NewSessionManager(redisClient, "test_session", "secret", time.Hour, false)
	handler := auth.NewHandler(nil, auth.NewService(repo), sessionManager, shared.NewCSRFManager("csrf-secret"))
	return handler, sessionManager
}

func performLogin(t *testing.T, handler *auth.Handler, sessionManager *shared.SessionManager, body string) (*httptest.ResponseRecorder, *shared.Session) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	sess, err := sessionManager.Load(context.Background(), req)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	req = req.WithContext(shared.ContextWithSession(req.Context(), sess))
	res := httptest.NewRecorder()
	handler.LoginForTest(res, req)
	return res, sess
}

func TestLoginSuccessStoresPrincipal(t *testing.T) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	repo := &stubRepo{
		user: &auth.User{
			ID:           42,
			Email:        "manager@test.local",
			PasswordHash: string(hashed),
			CompanyID:    7,
			IsActive:     true,
		},
		roles: []authz.Role{authz.RolePortfolioManager},
	}
	handler, sessionManager := newAuthHandler(t, repo)

	res, sess := performLogin(t, handler, sessionManager, `{"email":"manager@test.local","password":"correct-horse"}`)
	if res.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", res.Code, res.Body.String())
	}

	var payload struct {
		UserID    int64    `json:"user_id"`
		CompanyID int64    `json:"company_id"`
		Roles     []string `json:"roles"`
		CSRFToken string   `json:"csrf_token"`
	}
	if err := json.Unmarshal(res.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.UserID != 42 || payload.CompanyID != 7 {
		t.Fatalf("unexpected payload: %+v", payload)
	}
	if payload.CSRFToken == "" {
		t.Fatal("expected csrf token in login response")
	}

	if sess.User() != "42" {
		t.Fatalf("session user = %q, want 42", sess.User())
	}
	if sess.CompanyID() != 7 {
		t.Fatalf("session company = %d, want 7", sess.CompanyID())
	}
	if len(sess.Roles()) != 1 || sess.Roles()[0] != "portfolio_manager" {
		t.Fatalf("session roles = %v", sess.Roles())
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	repo := &stubRepo{
		user: &auth.User{ID: 1, Email: "user@test.local", PasswordHash: string(hashed), IsActive: true},
	}
	handler, sessionManager := newAuthHandler(t, repo)

	res, _ := performLogin(t, handler, sessionManager, `{"email":"user@test.local","password":"wrong-password"}`)
	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", res.Code)
	}
}

func TestLoginInactiveUser(t *testing.T) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	repo := &stubRepo{
		user: &auth.User{ID: 1, Email: "user@test.local", PasswordHash: string(hashed), IsActive: false},
	}
	handler, sessionManager := newAuthHandler(t, repo)

	res, _ := performLogin(t, handler, sessionManager, `{"email":"user@test.local","password":"correct-horse"}`)
	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", res.Code)
	}
}

func TestRequirePrincipalRebuildsSnapshot(t *testing.T) {
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sessionManager := shared.NewSessionManager(redisClient, "test_session", "secret", time.Hour, false)

	var got authz.Principal
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, ok := authz.PrincipalFromContext(r.Context())
		if !ok {
			t.Fatal("principal missing from context")
		}
		got = principal
		w.WriteHeader(http.StatusNoContent)
	})
	protected := auth.RequirePrincipal(nil)(next)

	req := httptest.NewRequest(http.MethodGet, "/team/members", nil)
	sess, err := sessionManager.Load(context.Background(), req)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	sess.SetPrincipal("42", 7, []string{"portfolio_manager", "leasing_specialist"})
	req = req.WithContext(shared.ContextWithSession(req.Context(), sess))

	res := httptest.NewRecorder()
	protected.ServeHTTP(res, req)
	if res.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", res.Code)
	}
	if got.ID != 42 || got.CompanyID != 7 || len(got.Roles) != 2 {
		t.Fatalf("unexpected principal: %+v", got)
	}
}

func TestRequirePrincipalRejectsAnonymous(t *testing.T) {
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sessionManager := shared.NewSessionManager(redisClient, "test_session", "secret", time.Hour, false)

	protected := auth.RequirePrincipal(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler reached without principal")
	}))

	req := httptest.NewRequest(http.MethodGet, "/team/members", nil)
	sess, err := sessionManager.Load(context.Background(), req)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	req = req.WithContext(shared.ContextWithSession(req.Context(), sess))

	res := httptest.NewRecorder()
	protected.ServeHTTP(res, req)
	if res.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", res.Code)
	}
}
