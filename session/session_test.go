package session

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestSessionSetAndClear(t *testing.T) {
	s := New(nil)
	if s.Present() {
		t.Fatalf("expected new session to be logged out")
	}

	if err := s.Set("abc", "alice"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if !s.Present() || s.Token() != "abc" || s.Username() != "alice" {
		t.Fatalf("unexpected session state %+v", s.Current())
	}

	if err := s.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if s.Present() {
		t.Fatalf("expected cleared session")
	}
}

func TestSessionSetEmptyClears(t *testing.T) {
	s := New(nil)
	_ = s.Set("abc", "alice")
	if err := s.Set("   ", "alice"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if s.Present() {
		t.Fatalf("expected blank token to clear the session")
	}
}

func TestZeroSessionIsUsable(t *testing.T) {
	var s Session
	if err := s.Set("abc", ""); err != nil {
		t.Fatalf("set: %v", err)
	}
	if s.Token() != "abc" {
		t.Fatalf("expected token to be held")
	}
}

func TestFileStorePersistsAcrossSessions(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "state")
	store := NewFileStore(dir)

	first, err := Open(store)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if first.Present() {
		t.Fatalf("expected no token before login")
	}
	if err := first.Set("tok", "bob"); err != nil {
		t.Fatalf("set: %v", err)
	}

	info, err := os.Stat(store.Path())
	if err != nil {
		t.Fatalf("stat session file: %v", err)
	}
	if info.Mode().Perm() != filePerms {
		t.Fatalf("expected mode %o, got %o", filePerms, info.Mode().Perm())
	}

	second, err := Open(store)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if second.Token() != "tok" || second.Username() != "bob" {
		t.Fatalf("expected persisted token, got %+v", second.Current())
	}
	if second.Current().SavedAt.IsZero() {
		t.Fatalf("expected saved_at to be recorded")
	}

	if err := second.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, err := os.Stat(store.Path()); !os.IsNotExist(err) {
		t.Fatalf("expected session file to be removed, got %v", err)
	}
	if err := second.Clear(); err != nil {
		t.Fatalf("second clear should be a no-op: %v", err)
	}
}

func TestFileStoreRejectsCorruptFile(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(dir)
	if err := os.WriteFile(store.Path(), []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Open(store); err == nil {
		t.Fatalf("expected error for corrupt session file")
	}
}

type failingStore struct{}

func (failingStore) Load() (Token, error) { return Token{Value: "old"}, nil }
func (failingStore) Save(Token) error     { return errors.New("disk full") }
func (failingStore) Clear() error         { return errors.New("disk full") }

func TestSessionPersistenceFailures(t *testing.T) {
	s, err := Open(failingStore{})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := s.Set("new", ""); err == nil {
		t.Fatalf("expected save error")
	}
	if s.Token() != "old" {
		t.Fatalf("expected failed save to keep the previous token, got %q", s.Token())
	}
	if err := s.Clear(); err == nil {
		t.Fatalf("expected clear error")
	}
	if s.Present() {
		t.Fatalf("expected in-memory token to be cleared regardless")
	}
}

func TestParseClaims(t *testing.T) {
	expires := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "alice",
		Issuer:    "todo-api",
		ExpiresAt: jwt.NewNumericDate(expires),
	}).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	claims, err := ParseClaims(signed)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Subject != "alice" || claims.Issuer != "todo-api" {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if !claims.ExpiresAt.Equal(expires) {
		t.Fatalf("expected expiry %v, got %v", expires, claims.ExpiresAt)
	}
	if claims.Expired(expires.Add(-time.Hour)) {
		t.Fatalf("expected token to be valid before expiry")
	}
	if !claims.Expired(expires) {
		t.Fatalf("expected token to be expired at expiry")
	}
}

func TestParseClaimsOpaqueToken(t *testing.T) {
	if _, err := ParseClaims("not-a-jwt"); !errors.Is(err, ErrOpaqueToken) {
		t.Fatalf("expected ErrOpaqueToken, got %v", err)
	}
}

func TestClaimsWithoutExpiryNeverExpire(t *testing.T) {
	if (Claims{}).Expired(time.Now()) {
		t.Fatalf("expected no expiry to mean not expired")
	}
}
