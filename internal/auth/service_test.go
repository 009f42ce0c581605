package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestService(t *testing.T, sessions SessionStore) *Service {
	t.Helper()
	users := NewInMemoryUserStore()
	hash, err := HashPassword("hunter22")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if _, err := users.Create(context.Background(), "admin@example.com", hash); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return NewService(users, sessions, "test-secret", time.Hour)
}

func TestLoginAndVerify(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	token, err := svc.Login(ctx, "admin@example.com", "hunter22")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token == "" {
		t.Fatal("expected a token")
	}

	subject, err := svc.Verify(ctx, token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if subject == "" {
		t.Fatal("expected a subject user id")
	}
}

func TestLoginEmailCaseInsensitive(t *testing.T) {
	svc := newTestService(t, nil)
	if _, err := svc.Login(context.Background(), "Admin@Example.com", "hunter22"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"wrong password", "admin@example.com", "wrong"},
		{"unknown email", "nobody@example.com", "hunter22"},
		{"empty password", "admin@example.com", ""},
		{"empty email", "", "hunter22"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Login(ctx, tt.email, tt.password); !errors.Is(err, ErrInvalidCredentials) {
				t.Fatalf("expected ErrInvalidCredentials, got %v", err)
			}
		})
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	for _, token := range []string{"", "not-a-jwt", "aaa.bbb.ccc"} {
		if _, err := svc.Verify(ctx, token); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("expected ErrInvalidToken for %q, got %v", token, err)
		}
	}
}

func TestVerifyRejectsForeignSignature(t *testing.T) {
	svc := newTestService(t, nil)

	// Token signed by a service with a different secret must not verify.
	users := NewInMemoryUserStore()
	hash, _ := HashPassword("pw123456")
	_, _ = users.Create(context.Background(), "eve@example.com", hash)
	foreign := NewService(users, nil, "other-secret", time.Hour)
	token, err := foreign.Login(context.Background(), "eve@example.com", "pw123456")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := svc.Verify(context.Background(), token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func newTestSessions(t *testing.T) SessionStore {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisSessionStore(client)
}

func TestLogoutRevokesSession(t *testing.T) {
	svc := newTestService(t, newTestSessions(t))
	ctx := context.Background()

	token, err := svc.Login(ctx, "admin@example.com", "hunter22")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Verify(ctx, token); err != nil {
		t.Fatalf("token should verify before logout: %v", err)
	}

	if err := svc.Logout(ctx, token); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Verify(ctx, token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken after logout, got %v", err)
	}
}

func TestSessionStoreRoundtrip(t *testing.T) {
	sessions := newTestSessions(t)
	ctx := context.Background()

	if err := sessions.Save(ctx, "sid-1", "user-1", time.Now().Add(time.Minute)); err != nil {
		t.Fatalf("save: %v", err)
	}
	ok, err := sessions.Exists(ctx, "sid-1")
	if err != nil || !ok {
		t.Fatalf("expected session to exist, ok=%v err=%v", ok, err)
	}
	if err := sessions.Delete(ctx, "sid-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	ok, err = sessions.Exists(ctx, "sid-1")
	if err != nil || ok {
		t.Fatalf("expected session gone, ok=%v err=%v", ok, err)
	}

	// Deleting an absent session is a no-op.
	if err := sessions.Delete(ctx, "never-existed"); err != nil {
		t.Fatalf("delete absent: %v", err)
	}
}
