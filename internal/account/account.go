// Package account implements service.AccountStore over a storage.Repository.
//
// Users live under todo_app_users, the session under todo_app_user and the
// bcrypt password hashes under todo_app_credentials, keyed by user id.
package account

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"todo/internal/logging"
	"todo/internal/service"
	"todo/internal/storage"
)

// Store is the account store. Safe for concurrent use. Like tasks.Store it
// ignores cancellation once an operation has started.
type Store struct {
	repo   storage.Repository
	logger *log.Logger

	// NewID generates user ids. Defaults to uuid.NewString.
	NewID func() string

	// HashCost is the bcrypt cost for new passwords.
	HashCost int

	mu sync.Mutex
}

var _ service.AccountStore = (*Store)(nil)

// New creates an account store. A nil logger discards output.
func New(repo storage.Repository, logger *log.Logger) *Store {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Store{
		repo:     repo,
		logger:   logger,
		NewID:    uuid.NewString,
		HashCost: bcrypt.DefaultCost,
	}
}

// NormalizeEmail trims and lowercases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register implements service.AccountStore.
func (s *Store) Register(ctx context.Context, name, email, password string) (service.User, error) {
	name = strings.TrimSpace(name)
	email = NormalizeEmail(email)
	if name == "" {
		return service.User{}, &service.ValidationError{Field: "name", Msg: "required"}
	}
	if email == "" {
		return service.User{}, &service.ValidationError{Field: "email", Msg: "required"}
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return service.User{}, &service.ValidationError{Field: "email", Msg: "not a valid address"}
	}
	if password == "" {
		return service.User{}, &service.ValidationError{Field: "password", Msg: "required"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	ctx = context.WithoutCancel(ctx)

	users, err := s.loadUsers(ctx)
	if err != nil {
		return service.User{}, err
	}
	for _, u := range users {
		if NormalizeEmail(u.Email) == email {
			return service.User{}, service.ErrDuplicateEmail
		}
	}

	creds, err := s.loadCredentials(ctx)
	if err != nil {
		return service.User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.HashCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return service.User{}, &service.ValidationError{Field: "password", Msg: "too long (max 72 bytes)"}
		}
		return service.User{}, err
	}

	user := service.User{ID: s.NewID(), Email: email, Name: name}
	creds[user.ID] = string(hash)

	// Credentials first: an orphaned hash is harmless, a user without one
	// could never log in.
	if err := storage.SaveJSON(ctx, s.repo, storage.KeyCredentials, creds); err != nil {
		return service.User{}, err
	}
	if err := storage.SaveJSON(ctx, s.repo, storage.KeyUsers, append(users, user)); err != nil {
		return service.User{}, err
	}
	if err := storage.SaveJSON(ctx, s.repo, storage.KeySession, user); err != nil {
		return service.User{}, err
	}

	s.logger.Debug("registered user", "id", user.ID, "email", user.Email)
	return user, nil
}

// Login implements service.AccountStore. Unknown email, wrong password and a
// missing stored credential all fail the same way.
func (s *Store) Login(ctx context.Context, email, password string) (service.User, error) {
	email = NormalizeEmail(email)

	s.mu.Lock()
	defer s.mu.Unlock()
	ctx = context.WithoutCancel(ctx)

	users, err := s.loadUsers(ctx)
	if err != nil {
		return service.User{}, err
	}
	var user *service.User
	for i := range users {
		if NormalizeEmail(users[i].Email) == email {
			user = &users[i]
			break
		}
	}
	if user == nil {
		s.logger.Debug("login: unknown email", "email", email)
		return service.User{}, service.ErrInvalidCredentials
	}

	creds, err := s.loadCredentials(ctx)
	if err != nil {
		return service.User{}, err
	}
	hash, ok := creds[user.ID]
	if !ok {
		s.logger.Warn("login: user has no stored credential", "id", user.ID)
		return service.User{}, service.ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		s.logger.Debug("login: wrong password", "id", user.ID)
		return service.User{}, service.ErrInvalidCredentials
	}

	if err := storage.SaveJSON(ctx, s.repo, storage.KeySession, *user); err != nil {
		return service.User{}, err
	}
	s.logger.Debug("logged in", "id", user.ID)
	return *user, nil
}

// Logout implements service.AccountStore.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ctx = context.WithoutCancel(ctx)
	if err := storage.Remove(ctx, s.repo, storage.KeySession); err != nil {
		return err
	}
	s.logger.Debug("logged out")
	return nil
}

// CurrentUser implements service.AccountStore.
func (s *Store) CurrentUser(ctx context.Context) (*service.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ctx = context.WithoutCancel(ctx)
	var u service.User
	found, err := storage.LoadJSON(ctx, s.repo, storage.KeySession, &u)
	if err != nil || !found {
		return nil, err
	}
	return &u, nil
}

func (s *Store) loadUsers(ctx context.Context) ([]service.User, error) {
	var users []service.User
	if _, err := storage.LoadJSON(ctx, s.repo, storage.KeyUsers, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Store) loadCredentials(ctx context.Context) (map[string]string, error) {
	creds := make(map[string]string)
	if _, err := storage.LoadJSON(ctx, s.repo, storage.KeyCredentials, &creds); err != nil {
		return nil, err
	}
	return creds, nil
}
