package session

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/Aworminator/Project-Tracker/identity"
)

func TestJWTStrategyRoundtrip(t *testing.T) {
	strategy := NewHS256Strategy("test-secret", time.Hour)

	sess, err := strategy.Create("user-1")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if sess.Token == "" {
		t.Fatal("expected a signed token")
	}

	got, err := strategy.Validate(sess.Token)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if got.IdentityID != "user-1" {
		t.Errorf("expected identity user-1, got %q", got.IdentityID)
	}
	if got.ID != sess.ID {
		t.Errorf("session id mismatch: %q vs %q", got.ID, sess.ID)
	}
}

func TestJWTStrategyRejectsWrongSecret(t *testing.T) {
	a := NewHS256Strategy("secret-a", time.Hour)
	b := NewHS256Strategy("secret-b", time.Hour)

	sess, err := a.Create("user-1")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, err := b.Validate(sess.Token); err == nil {
		t.Error("token signed with another secret must not validate")
	}
}

func TestJWTStrategyRejectsExpired(t *testing.T) {
	strategy := NewHS256Strategy("test-secret", -time.Minute)

	sess, err := strategy.Create("user-1")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := strategy.Validate(sess.Token); err == nil {
		t.Error("expired token must not validate")
	}
}

type mockSessionStorage struct {
	items map[string]*Session
}

func (m *mockSessionStorage) CreateSession(s *Session) error {
	m.items[s.ID] = s
	return nil
}

func (m *mockSessionStorage) GetSession(id string) (*Session, error) {
	if s, ok := m.items[id]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("session not found")
}

func (m *mockSessionStorage) DeleteSession(id string) error {
	delete(m.items, id)
	return nil
}

func TestDatabaseStrategy(t *testing.T) {
	storage := &mockSessionStorage{items: make(map[string]*Session)}
	strategy := NewDatabaseStrategy(storage, time.Hour)

	sess, err := strategy.Create("user-1")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	got, err := strategy.Validate(sess.Token)
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if got.IdentityID != "user-1" {
		t.Errorf("expected identity user-1, got %q", got.IdentityID)
	}

	// Deleting the row revokes the token immediately.
	if err := strategy.Delete(sess.Token); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := strategy.Validate(sess.Token); err == nil {
		t.Error("revoked session must not validate")
	}
}

func TestDatabaseStrategyExpiry(t *testing.T) {
	storage := &mockSessionStorage{items: make(map[string]*Session)}
	strategy := NewDatabaseStrategy(storage, time.Hour)

	sess, err := strategy.Create("user-1")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	storage.items[sess.ID].ExpiresAt = time.Now().Add(-time.Minute)
	if _, err := strategy.Validate(sess.Token); err == nil {
		t.Error("expired session must not validate")
	}
}

func TestIdentityContext(t *testing.T) {
	ctx := context.Background()

	if got := FromContext(ctx); got != nil {
		t.Error("empty context should yield no identity")
	}

	ident := &identity.Identity{ID: "u1", Role: identity.RoleMember}
	ctx = WithIdentity(ctx, ident)

	got := FromContext(ctx)
	if got == nil || got.ID != "u1" {
		t.Errorf("expected identity u1, got %+v", got)
	}
}
