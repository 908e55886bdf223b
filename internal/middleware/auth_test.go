package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dayplanhq/dayplan/internal/config"
	"github.com/dayplanhq/dayplan/internal/domain"
	"github.com/dayplanhq/dayplan/internal/domain/task"
	"github.com/dayplanhq/dayplan/internal/domain/user"
	"github.com/dayplanhq/dayplan/internal/service"
)

// stubStore serves a single user; task methods are never reached here.
type stubStore struct {
	user user.User
}

func (s *stubStore) CreateTask(context.Context, *task.Task) error { return nil }
func (s *stubStore) GetTask(context.Context, string, string) (*task.Task, error) {
	return nil, domain.ErrNotFound
}
func (s *stubStore) ListTasks(context.Context, string, *task.State) ([]task.Task, error) {
	return nil, nil
}
func (s *stubStore) UpdateTask(context.Context, *task.Task) error   { return nil }
func (s *stubStore) DeleteTask(context.Context, string, string) error { return nil }
func (s *stubStore) SearchTasksByTitle(context.Context, string, string) ([]task.Task, error) {
	return nil, nil
}

func (s *stubStore) CreateUser(context.Context, *user.User) error { return nil }
func (s *stubStore) GetUser(_ context.Context, id string) (*user.User, error) {
	if id == s.user.ID {
		u := s.user
		return &u, nil
	}
	return nil, domain.ErrNotFound
}
func (s *stubStore) GetUserByUsername(_ context.Context, username string) (*user.User, error) {
	if username == s.user.Username {
		u := s.user
		return &u, nil
	}
	return nil, domain.ErrNotFound
}
func (s *stubStore) ListUsers(context.Context) ([]user.User, error) {
	return []user.User{s.user}, nil
}
func (s *stubStore) UpdateUserPassword(context.Context, string, string) error { return nil }

func testAuthService(t *testing.T) *service.AuthService {
	t.Helper()
	store := &stubStore{user: user.User{ID: "u1", Username: "alice"}}
	return service.NewAuthService(store, nil, &config.Auth{
		JWTSecret:         "middleware-test-secret",
		AccessTokenExpiry: time.Minute,
		BcryptCost:        4,
	})
}

func TestAuthPublicPath(t *testing.T) {
	svc := testAuthService(t)
	called := false
	h := Auth(svc)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if !called || rec.Code != http.StatusOK {
		t.Fatalf("public path blocked: code=%d called=%v", rec.Code, called)
	}
}

func TestAuthMissingHeader(t *testing.T) {
	svc := testAuthService(t)
	h := Auth(svc)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler reached without credentials")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("code = %d, want 401", rec.Code)
	}
}

func TestAuthMalformedHeader(t *testing.T) {
	svc := testAuthService(t)
	h := Auth(svc)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler reached with malformed header")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks", nil)
	req.Header.Set("Authorization", "Basic abc123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("code = %d, want 401", rec.Code)
	}
}

func TestAuthInvalidToken(t *testing.T) {
	svc := testAuthService(t)
	h := Auth(svc)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler reached with bad token")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks", nil)
	req.Header.Set("Authorization", "Bearer not.a.token")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("code = %d, want 401", rec.Code)
	}
}

func TestUserFromContext(t *testing.T) {
	u := &user.User{ID: "u1", Username: "alice"}
	ctx := WithUser(context.Background(), u)
	if got := UserFromContext(ctx); got == nil || got.ID != "u1" {
		t.Fatalf("got %+v", got)
	}
	if got := UserFromContext(context.Background()); got != nil {
		t.Fatalf("expected nil, got %+v", got)
	}
}
