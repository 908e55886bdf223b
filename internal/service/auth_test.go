package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dayplanhq/dayplan/internal/config"
	"github.com/dayplanhq/dayplan/internal/domain"
	"github.com/dayplanhq/dayplan/internal/domain/user"
)

func testAuthConfig() *config.Auth {
	return &config.Auth{
		JWTSecret:         "test-secret-for-auth-tests",
		AccessTokenExpiry: 30 * time.Minute,
		BcryptCost:        4, // fast hashing in tests
		UserCacheTTL:      time.Minute,
	}
}

func TestAuthRegisterAndLogin(t *testing.T) {
	store := &mockStore{}
	svc := NewAuthService(store, nil, testAuthConfig())
	ctx := context.Background()

	u, err := svc.Register(ctx, &user.CreateRequest{Username: "alice", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if u.PasswordHash == "correct-horse" {
		t.Fatal("password stored in plain text")
	}

	resp, err := svc.Login(ctx, user.LoginRequest{Username: "alice", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.TokenType != "bearer" {
		t.Fatalf("token_type = %q, want bearer", resp.TokenType)
	}
	if resp.AccessToken == "" {
		t.Fatal("empty access token")
	}
	if resp.User.Username != "alice" {
		t.Fatalf("user = %+v", resp.User)
	}

	claims, err := svc.ValidateAccessToken(resp.AccessToken)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != u.ID || claims.Username != "alice" {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestAuthRegisterDuplicateUsername(t *testing.T) {
	store := &mockStore{}
	svc := NewAuthService(store, nil, testAuthConfig())
	ctx := context.Background()

	if _, err := svc.Register(ctx, &user.CreateRequest{Username: "alice", Password: "password1"}); err != nil {
		t.Fatalf("first register: %v", err)
	}
	_, err := svc.Register(ctx, &user.CreateRequest{Username: "alice", Password: "password2"})
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
}

func TestAuthRegisterValidation(t *testing.T) {
	svc := NewAuthService(&mockStore{}, nil, testAuthConfig())

	_, err := svc.Register(context.Background(), &user.CreateRequest{Username: "bob", Password: "short"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation for short password", err)
	}
}

func TestAuthLoginBadCredentials(t *testing.T) {
	store := &mockStore{}
	svc := NewAuthService(store, nil, testAuthConfig())
	ctx := context.Background()

	if _, err := svc.Register(ctx, &user.CreateRequest{Username: "alice", Password: "correct-horse"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, wrongPass := svc.Login(ctx, user.LoginRequest{Username: "alice", Password: "wrong"})
	_, noUser := svc.Login(ctx, user.LoginRequest{Username: "nobody", Password: "whatever1"})

	// Wrong password and unknown username must be indistinguishable.
	if wrongPass == nil || noUser == nil {
		t.Fatal("expected errors for bad credentials")
	}
	if wrongPass.Error() != noUser.Error() {
		t.Fatalf("credential errors differ: %q vs %q", wrongPass, noUser)
	}
}

func TestAuthTokenTampering(t *testing.T) {
	svc := NewAuthService(&mockStore{}, nil, testAuthConfig())
	ctx := context.Background()

	if _, err := svc.Register(ctx, &user.CreateRequest{Username: "alice", Password: "correct-horse"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	resp, err := svc.Login(ctx, user.LoginRequest{Username: "alice", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if _, err := svc.ValidateAccessToken(resp.AccessToken + "x"); err == nil {
		t.Fatal("tampered token accepted")
	}
	if _, err := svc.ValidateAccessToken("not.a.token"); err == nil {
		t.Fatal("garbage token accepted")
	}

	other := NewAuthService(&mockStore{}, nil, &config.Auth{
		JWTSecret:         "different-secret",
		AccessTokenExpiry: time.Minute,
		BcryptCost:        4,
	})
	if _, err := other.ValidateAccessToken(resp.AccessToken); err == nil {
		t.Fatal("token signed with another secret accepted")
	}
}

func TestAuthTokenExpiry(t *testing.T) {
	cfg := testAuthConfig()
	cfg.AccessTokenExpiry = -time.Minute // already expired
	svc := NewAuthService(&mockStore{}, nil, cfg)
	ctx := context.Background()

	if _, err := svc.Register(ctx, &user.CreateRequest{Username: "alice", Password: "correct-horse"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	resp, err := svc.Login(ctx, user.LoginRequest{Username: "alice", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if _, err := svc.ValidateAccessToken(resp.AccessToken); err == nil {
		t.Fatal("expired token accepted")
	}
}

func TestAuthCurrentUserCaching(t *testing.T) {
	store := &mockStore{}
	cache := newMockCache()
	svc := NewAuthService(store, cache, testAuthConfig())
	ctx := context.Background()

	u, err := svc.Register(ctx, &user.CreateRequest{Username: "alice", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	resp, err := svc.Login(ctx, user.LoginRequest{Username: "alice", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	got, err := svc.CurrentUser(ctx, resp.AccessToken)
	if err != nil {
		t.Fatalf("current user: %v", err)
	}
	if got.ID != u.ID {
		t.Fatalf("user = %+v", got)
	}
	if _, ok := cache.entries["user:"+u.ID]; !ok {
		t.Fatal("user not cached after lookup")
	}

	// Second call resolves from cache even if the store entry disappears.
	store.users = nil
	got, err = svc.CurrentUser(ctx, resp.AccessToken)
	if err != nil {
		t.Fatalf("cached current user: %v", err)
	}
	if got.ID != u.ID {
		t.Fatalf("cached user = %+v", got)
	}
}

func TestAuthResetPassword(t *testing.T) {
	store := &mockStore{}
	cache := newMockCache()
	svc := NewAuthService(store, cache, testAuthConfig())
	ctx := context.Background()

	u, err := svc.Register(ctx, &user.CreateRequest{Username: "alice", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	cache.entries["user:"+u.ID] = []byte("{}")

	if err := svc.ResetPassword(ctx, "alice", "new-password-1"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if _, ok := cache.entries["user:"+u.ID]; ok {
		t.Fatal("cached user not evicted on password reset")
	}

	if _, err := svc.Login(ctx, user.LoginRequest{Username: "alice", Password: "correct-horse"}); err == nil {
		t.Fatal("old password still valid")
	}
	if _, err := svc.Login(ctx, user.LoginRequest{Username: "alice", Password: "new-password-1"}); err != nil {
		t.Fatalf("new password rejected: %v", err)
	}

	if err := svc.ResetPassword(ctx, "alice", "short"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation for short password", err)
	}
}
