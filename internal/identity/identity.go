// Package identity manages the registered account list and the single active
// session pointer. Both live in the shared store under the keys the frontend
// has always used, so an existing deployment keeps its accounts.
package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"sync"

	"github.com/holymotion/holymotion/internal/store"
	"golang.org/x/crypto/bcrypt"
)

const (
	usersKey   = "hm_users"
	sessionKey = "hm_session"
)

var (
	ErrDuplicateUser   = errors.New("user already exists")
	ErrInvalidPassword = errors.New("password must be 6+ characters, letters and digits only")
	ErrNoSuchAccount   = errors.New("no account with this email")
	ErrWrongPassword   = errors.New("wrong password")
)

// passwordPattern mirrors the registration form: alphanumeric, minimum 6.
var passwordPattern = regexp.MustCompile(`^[A-Za-z0-9]{6,}$`)

type Identity struct {
	Email        string `json:"email"`
	PasswordHash string `json:"passwordHash,omitempty"`
}

type session struct {
	Email string `json:"email"`
}

// Service gates everything behind authentication. The owner bootstrap pair
// authenticates without a stored account so a fresh deployment is reachable.
type Service struct {
	store         store.Store
	ownerEmail    string
	ownerPassword string

	mu      sync.Mutex
	current *Identity
}

func NewService(st store.Store, ownerEmail, ownerPassword string) *Service {
	return &Service{store: st, ownerEmail: ownerEmail, ownerPassword: ownerPassword}
}

func (s *Service) Owner() string {
	return s.ownerEmail
}

func (s *Service) Register(ctx context.Context, email, password string) (*Identity, error) {
	if !passwordPattern.MatchString(password) {
		return nil, ErrInvalidPassword
	}

	users, err := s.loadUsers(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if u.Email == email {
			return nil, ErrDuplicateUser
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	id := Identity{Email: email, PasswordHash: string(hash)}
	users = append(users, id)
	if err := store.PutJSON(ctx, s.store, usersKey, users); err != nil {
		return nil, err
	}

	if err := s.establishSession(ctx, email); err != nil {
		return nil, err
	}
	return &Identity{Email: email}, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (*Identity, error) {
	// Bootstrap owner pair bypasses the stored account list.
	if email == s.ownerEmail && password == s.ownerPassword {
		if err := s.establishSession(ctx, email); err != nil {
			return nil, err
		}
		return &Identity{Email: email}, nil
	}

	users, err := s.loadUsers(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if u.Email != email {
			continue
		}
		if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
			return nil, ErrWrongPassword
		}
		if err := s.establishSession(ctx, email); err != nil {
			return nil, err
		}
		return &Identity{Email: email}, nil
	}
	return nil, ErrNoSuchAccount
}

func (s *Service) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()
	return s.store.Delete(ctx, sessionKey)
}

// Current reads the session pointer through the store so that a write by
// another process is observed even without a change subscription.
func (s *Service) Current(ctx context.Context) (*Identity, error) {
	var sess session
	err := store.GetJSON(ctx, s.store, sessionKey, &sess)
	if errors.Is(err, store.ErrNotFound) {
		s.mu.Lock()
		s.current = nil
		s.mu.Unlock()
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	id := &Identity{Email: sess.Email}
	s.mu.Lock()
	s.current = id
	s.mu.Unlock()
	return id, nil
}

// WatchSessions follows store change events and refreshes the cached session
// pointer whenever another process touches it. Blocks until ctx is done.
func (s *Service) WatchSessions(ctx context.Context, notifier store.Notifier) error {
	events, err := notifier.Subscribe(ctx)
	if err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if ev.Key != sessionKey {
				continue
			}
			if _, err := s.Current(ctx); err != nil {
				slog.Warn("session refresh failed", "error", err)
			}
		}
	}
}

func (s *Service) establishSession(ctx context.Context, email string) error {
	if err := store.PutJSON(ctx, s.store, sessionKey, session{Email: email}); err != nil {
		return err
	}
	s.mu.Lock()
	s.current = &Identity{Email: email}
	s.mu.Unlock()
	return nil
}

func (s *Service) loadUsers(ctx context.Context) ([]Identity, error) {
	var users []Identity
	err := store.GetJSON(ctx, s.store, usersKey, &users)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return users, nil
}
