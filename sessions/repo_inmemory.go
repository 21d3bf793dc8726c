package sessions

import (
	"fmt"
	"sync"

	apperrors "github.com/jrsteele09/go-dbgate/internal/errors"
)

var _ Repo = (*InMemorySessionRepo)(nil)

// InMemorySessionRepo is an in-memory implementation of Repo. Sessions are
// not persisted; process termination destroys them.
type InMemorySessionRepo struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

// NewInMemorySessionRepo creates a new in-memory session repository
func NewInMemorySessionRepo() *InMemorySessionRepo {
	return &InMemorySessionRepo{
		sessions: make(map[string]Session),
	}
}

// Upsert creates or updates a session
func (r *InMemorySessionRepo) Upsert(token string, session Session) error {
	if token == "" {
		return fmt.Errorf("token is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[token] = session
	return nil
}

// Get retrieves a session by its token
func (r *InMemorySessionRepo) Get(token string) (Session, error) {
	if token == "" {
		return Session{}, fmt.Errorf("token is required")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[token]
	if !ok {
		return Session{}, apperrors.ErrSessionNotFound
	}
	return session, nil
}

// Delete removes a session. Deleting an absent session is not an error.
func (r *InMemorySessionRepo) Delete(token string) error {
	if token == "" {
		return fmt.Errorf("token is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, token)
	return nil
}
