package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Apurer/go-shop-api-server/internal/domains/users/domain"
	"github.com/Apurer/go-shop-api-server/internal/domains/users/ports"
	"github.com/Apurer/go-shop-api-server/internal/notifications"
)

// DefaultSessionTTL bounds how long a login token stays valid.
const DefaultSessionTTL = 24 * time.Hour

// Service exposes user bounded context use cases.
type Service struct {
	repo       ports.Repository
	sessions   ports.SessionStore
	notifier   notifications.Notifier
	sessionTTL time.Duration
	now        func() time.Time
}

type Option func(*Service)

// WithNotifier wires asynchronous email notification on account events.
func WithNotifier(notifier notifications.Notifier) Option {
	return func(s *Service) {
		if notifier != nil {
			s.notifier = notifier
		}
	}
}

// WithSessionTTL overrides the session lifetime.
func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.sessionTTL = ttl
		}
	}
}

func NewService(repo ports.Repository, sessions ports.SessionStore, opts ...Option) *Service {
	if sessions == nil {
		sessions = ports.NoopSessionStore
	}
	s := &Service{
		repo:       repo,
		sessions:   sessions,
		notifier:   notifications.NoopNotifier,
		sessionTTL: DefaultSessionTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *Service) CreateUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	if user == nil {
		return nil, errors.New("user is nil")
	}
	if len(user.Roles) == 0 {
		user.Roles = []string{domain.RoleCustomer}
	}
	if err := user.Validate(); err != nil {
		return nil, mapError(err)
	}
	return s.repo.Save(ctx, user)
}

func (s *Service) CreateUsers(ctx context.Context, users []*domain.User) ([]*domain.User, error) {
	var saved []*domain.User
	for _, u := range users {
		persisted, err := s.CreateUser(ctx, u)
		if err != nil {
			return nil, err
		}
		saved = append(saved, persisted)
	}
	return saved, nil
}

func (s *Service) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.repo.GetByUsername(ctx, username)
}

func (s *Service) Delete(ctx context.Context, username string) error {
	_ = s.sessions.Delete(ctx, username)
	return s.repo.Delete(ctx, username)
}

func (s *Service) Update(ctx context.Context, username string, updated *domain.User) (*domain.User, error) {
	if updated == nil {
		return nil, errors.New("user is nil")
	}
	existing, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	updated.ID = existing.ID
	updated.LastSeen = existing.LastSeen
	if len(updated.Roles) == 0 {
		updated.Roles = existing.Roles
	}
	if err := updated.SetUsername(username); err != nil {
		return nil, mapError(err)
	}
	if err := updated.Validate(); err != nil {
		return nil, mapError(err)
	}
	return s.repo.Save(ctx, updated)
}

// Login verifies credentials, issues an opaque session token, and
// enqueues the welcome email. Notification failures never fail the
// login.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" || strings.TrimSpace(password) == "" {
		return "", mapError(ports.ErrInvalidCredentials)
	}
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return "", mapError(ports.ErrInvalidCredentials)
		}
		return "", err
	}
	if !user.CheckPassword(password) {
		return "", mapError(ports.ErrInvalidCredentials)
	}
	token := uuid.NewString()
	if err := s.sessions.Save(ctx, username, token, s.now().Add(s.sessionTTL)); err != nil {
		return "", err
	}
	user.Touch(s.now())
	if _, err := s.repo.Save(ctx, user); err != nil {
		return "", err
	}
	_ = s.notifier.Enqueue(ctx, notifications.Event{
		Kind:     notifications.KindWelcome,
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
	})
	return token, nil
}

func (s *Service) Logout(ctx context.Context, username string) {
	if strings.TrimSpace(username) == "" {
		return
	}
	_ = s.sessions.Delete(ctx, username)
}

// Authenticate resolves a session token to its account and records the
// activity.
func (s *Service) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, mapError(ports.ErrSessionNotFound)
	}
	username, err := s.sessions.Lookup(ctx, token)
	if err != nil {
		return nil, mapError(err)
	}
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	user.Touch(s.now())
	if _, err := s.repo.Save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Service) ListInactiveSince(ctx context.Context, cutoff time.Time) ([]*domain.User, error) {
	return s.repo.ListInactiveSince(ctx, cutoff)
}

var _ ports.Service = (*Service)(nil)
