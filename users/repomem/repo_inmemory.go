package repomem

import (
	"fmt"
	"sort"
	"sync"

	apperrors "github.com/jrsteele09/go-dbgate/internal/errors"
	"github.com/jrsteele09/go-dbgate/users"
)

var _ users.Repo = (*InMemoryUserRepo)(nil)

// InMemoryUserRepo is an in-memory implementation of users.Repo
type InMemoryUserRepo struct {
	mu    sync.RWMutex
	users map[string]*users.User
}

// NewInMemoryUserRepo creates a new in-memory user repository
func NewInMemoryUserRepo() *InMemoryUserRepo {
	return &InMemoryUserRepo{
		users: make(map[string]*users.User),
	}
}

// Upsert creates or updates a user record
func (r *InMemoryUserRepo) Upsert(user *users.User) error {
	if user == nil || user.Identity == "" {
		return fmt.Errorf("identity is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Store a copy to avoid external modifications
	stored := *user
	r.users[user.Identity] = &stored
	return nil
}

// Delete removes a user record
func (r *InMemoryUserRepo) Delete(identity string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[identity]; !ok {
		return apperrors.ErrUserNotFound
	}
	delete(r.users, identity)
	return nil
}

// GetByIdentity retrieves a user record by its identity key
func (r *InMemoryUserRepo) GetByIdentity(identity string) (*users.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[identity]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

// List returns all user records ordered by identity
func (r *InMemoryUserRepo) List() ([]*users.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]*users.User, 0, len(r.users))
	for _, user := range r.users {
		copied := *user
		all = append(all, &copied)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Identity < all[j].Identity })
	return all, nil
}
