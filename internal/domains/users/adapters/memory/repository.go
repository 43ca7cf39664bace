package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Apurer/go-shop-api-server/internal/domains/users/domain"
	"github.com/Apurer/go-shop-api-server/internal/domains/users/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory user persistence adapter.
type Repository struct {
	mu     sync.RWMutex
	users  map[string]*domain.User
	nextID int64
}

func NewRepository() *Repository {
	return &Repository{users: map[string]*domain.User{}}
}

func (r *Repository) Save(_ context.Context, user *domain.User) (*domain.User, error) {
	if user == nil {
		return nil, errors.New("user is nil")
	}
	clone := cloneUser(user)
	if err := clone.Validate(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.users[clone.Username]; ok {
		clone.ID = existing.ID
		clone.CreatedAt = existing.CreatedAt
	} else {
		if clone.ID == 0 {
			r.nextID++
			clone.ID = r.nextID
		} else if clone.ID > r.nextID {
			r.nextID = clone.ID
		}
		clone.CreatedAt = time.Now()
	}
	clone.UpdatedAt = time.Now()
	r.users[clone.Username] = clone
	return cloneUser(clone), nil
}

func (r *Repository) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[username]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return cloneUser(user), nil
}

func (r *Repository) Delete(_ context.Context, username string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[username]; !ok {
		return ports.ErrNotFound
	}
	delete(r.users, username)
	return nil
}

func (r *Repository) List(_ context.Context) ([]*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*domain.User, 0, len(r.users))
	for _, user := range r.users {
		list = append(list, cloneUser(user))
	}
	return list, nil
}

func (r *Repository) ListInactiveSince(_ context.Context, cutoff time.Time) ([]*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var list []*domain.User
	for _, user := range r.users {
		if user.LastSeen.Before(cutoff) {
			list = append(list, cloneUser(user))
		}
	}
	return list, nil
}

func cloneUser(user *domain.User) *domain.User {
	clone := *user
	clone.Roles = append([]string(nil), user.Roles...)
	return &clone
}
