package account

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"todo/internal/service"
	"todo/internal/storage"
	"todo/internal/storage/memstore"
	"todo/internal/testutil"
)

func newTestStore(t *testing.T) (*Store, *testutil.FlakyRepo) {
	t.Helper()
	repo := testutil.NewFlakyRepo()
	s := New(repo, nil)
	s.HashCost = bcrypt.MinCost
	n := 0
	s.NewID = func() string {
		n++
		return fmt.Sprintf("user-%d", n)
	}
	return s, repo
}

func TestRegister_SetsSession(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	u, err := s.Register(ctx, " Alice ", " Alice@Example.com ", "hunter2")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if u.ID != "user-1" || u.Name != "Alice" || u.Email != "alice@example.com" {
		t.Errorf("unexpected user %+v", u)
	}

	cur, err := s.CurrentUser(ctx)
	if err != nil {
		t.Fatalf("CurrentUser: %v", err)
	}
	if cur == nil || *cur != u {
		t.Errorf("expected session %+v, got %+v", u, cur)
	}
}

func TestRegister_Validation(t *testing.T) {
	tests := []struct {
		name, uname, email, password, field string
	}{
		{"missing name", "  ", "a@b.co", "pw", "name"},
		{"missing email", "A", "", "pw", "email"},
		{"bad email", "A", "not-an-email", "pw", "email"},
		{"display form email", "A", "A <a@b.co>", "pw", "email"},
		{"missing password", "A", "a@b.co", "", "password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, repo := newTestStore(t)
			_, err := s.Register(context.Background(), tt.uname, tt.email, tt.password)
			var ve *service.ValidationError
			if !errors.As(err, &ve) || ve.Field != tt.field {
				t.Fatalf("expected ValidationError on %s, got %v", tt.field, err)
			}
			if repo.PutCount() != 0 {
				t.Errorf("expected no writes, got %d", repo.PutCount())
			}
		})
	}
}

func TestRegister_DuplicateEmailLeavesStorageUnchanged(t *testing.T) {
	s, repo := newTestStore(t)
	ctx := context.Background()

	if _, err := s.Register(ctx, "Alice", "alice@example.com", "pw1"); err != nil {
		t.Fatal(err)
	}
	before := snapshot(t, repo)
	puts := repo.PutCount()

	_, err := s.Register(ctx, "Other Alice", "ALICE@example.com", "pw2")
	if !errors.Is(err, service.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
	if repo.PutCount() != puts {
		t.Errorf("expected no writes after duplicate, got %d more", repo.PutCount()-puts)
	}
	after := snapshot(t, repo)
	for k, v := range before {
		if after[k] != v {
			t.Errorf("key %s changed:\nbefore %s\nafter  %s", k, v, after[k])
		}
	}
}

func TestLogin(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	alice, err := s.Register(ctx, "Alice", "alice@example.com", "correct horse")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Register(ctx, "Bob", "bob@example.com", "battery staple"); err != nil {
		t.Fatal(err)
	}

	got, err := s.Login(ctx, "  ALICE@example.com", "correct horse")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if got != alice {
		t.Errorf("expected %+v, got %+v", alice, got)
	}
	cur, _ := s.CurrentUser(ctx)
	if cur == nil || cur.ID != alice.ID {
		t.Errorf("expected session to switch to alice, got %+v", cur)
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	if _, err := s.Register(ctx, "Alice", "alice@example.com", "right"); err != nil {
		t.Fatal(err)
	}
	if err := s.Logout(ctx); err != nil {
		t.Fatal(err)
	}

	tests := []struct{ name, email, password string }{
		{"wrong password", "alice@example.com", "wrong"},
		{"unknown email", "nobody@example.com", "right"},
		{"empty password", "alice@example.com", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Login(ctx, tt.email, tt.password)
			if !errors.Is(err, service.ErrInvalidCredentials) {
				t.Fatalf("expected ErrInvalidCredentials, got %v", err)
			}
			if cur, _ := s.CurrentUser(ctx); cur != nil {
				t.Errorf("failed login must not set a session, got %+v", cur)
			}
		})
	}
}

func TestLogin_LegacyUserWithoutCredential(t *testing.T) {
	s, repo := newTestStore(t)
	ctx := context.Background()
	if err := repo.Put(ctx, storage.KeyUsers, []byte(`[{"id":"1","email":"old@example.com","name":"Old"}]`)); err != nil {
		t.Fatal(err)
	}

	_, err := s.Login(ctx, "old@example.com", "anything")
	if !errors.Is(err, service.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLogout(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	// Logging out with no session is fine.
	if err := s.Logout(ctx); err != nil {
		t.Fatalf("Logout without session: %v", err)
	}

	if _, err := s.Register(ctx, "Alice", "alice@example.com", "pw"); err != nil {
		t.Fatal(err)
	}
	if err := s.Logout(ctx); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	cur, err := s.CurrentUser(ctx)
	if err != nil || cur != nil {
		t.Errorf("expected no session, got %+v, %v", cur, err)
	}
	if err := s.Logout(ctx); err != nil {
		t.Errorf("second Logout: %v", err)
	}
}

func TestStorageFailures(t *testing.T) {
	s, repo := newTestStore(t)
	ctx := context.Background()

	repo.FailPuts(testutil.ErrInjected)
	if _, err := s.Register(ctx, "Alice", "alice@example.com", "pw"); !errors.Is(err, service.ErrStorage) {
		t.Errorf("Register: expected ErrStorage, got %v", err)
	}
	repo.FailPuts(nil)

	repo.FailGets(testutil.ErrInjected)
	if _, err := s.CurrentUser(ctx); !errors.Is(err, service.ErrStorage) {
		t.Errorf("CurrentUser: expected ErrStorage, got %v", err)
	}
	if _, err := s.Login(ctx, "alice@example.com", "pw"); !errors.Is(err, service.ErrStorage) {
		t.Errorf("Login: expected ErrStorage, got %v", err)
	}
	repo.FailGets(nil)

	repo.DeleteErr = testutil.ErrInjected
	if err := s.Logout(ctx); !errors.Is(err, service.ErrStorage) {
		t.Errorf("Logout: expected ErrStorage, got %v", err)
	}
}

func TestRegister_CorruptUsers(t *testing.T) {
	s, repo := newTestStore(t)
	ctx := context.Background()
	repo.Put(ctx, storage.KeyUsers, []byte(`{"not":"a list"}`))

	_, err := s.Register(ctx, "Alice", "alice@example.com", "pw")
	if !errors.Is(err, service.ErrStorage) {
		t.Fatalf("expected ErrStorage, got %v", err)
	}
}

func snapshot(t *testing.T, repo storage.Repository) map[string]string {
	t.Helper()
	ctx := context.Background()
	keys, err := repo.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	out := make(map[string]string, len(keys))
	for _, k := range keys {
		v, err := repo.Get(ctx, k)
		if err != nil {
			t.Fatal(err)
		}
		out[k] = string(v)
	}
	return out
}

func TestRegister_CommitsAfterCancel(t *testing.T) {
	s := New(storage.WithLatency(memstore.New(), 30*time.Millisecond), nil)
	s.HashCost = bcrypt.MinCost

	// Lands after both reads, while the credentials write is pausing.
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(75*time.Millisecond, cancel)
	defer cancel()

	if _, err := s.Register(ctx, "Alice", "alice@example.com", "hunter2"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	bg := context.Background()
	if err := s.Logout(bg); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Login(bg, "alice@example.com", "hunter2"); err != nil {
		t.Errorf("expected user and credential both committed, login failed: %v", err)
	}
}
