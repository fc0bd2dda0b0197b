package identity

import (
	"context"
	"strings"
	"sync"
	"time"

	"corecms/cmd/identity/ids"
)

// MemoryStore is a dev/test Store used when no database is configured.
type MemoryStore struct {
	mu     sync.RWMutex
	byID   map[string]User
	byName map[string]string // username_norm -> id

	now func() time.Time
}

// NewMemoryStore constructs an empty in-memory Store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:   make(map[string]User),
		byName: make(map[string]string),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Create stores u and assigns its ID.
func (s *MemoryStore) Create(ctx context.Context, u *User) error {
	const op = "identity.Create"

	if u == nil {
		return invalid(op, "nil user")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if u.Persisted() {
		return invalid(op, "user already has an id")
	}
	norm := NormalizeUsername(u.Username)
	if norm == "" {
		return invalid(op, "username is required")
	}

	now := s.now()
	id, err := ids.NewULID(now)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byName[norm]; taken {
		return ConflictError{Op: op, Field: "username"}
	}

	u.ID = id
	u.Username = strings.TrimSpace(u.Username)
	u.CreatedAt = now
	s.byID[id] = *u
	s.byName[norm] = id
	return nil
}

// Delete removes the user; missing users are ignored.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byID[id]
	if !ok {
		return nil
	}
	delete(s.byID, id)
	delete(s.byName, NormalizeUsername(u.Username))
	return nil
}

// GetByID returns the user with the given ID.
func (s *MemoryStore) GetByID(ctx context.Context, id string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.byID[id]
	if !ok {
		return User{}, NotFoundError{Op: "identity.GetByID", Resource: "user"}
	}
	return u, nil
}

// GetByUsername returns the user whose normalized username matches.
func (s *MemoryStore) GetByUsername(ctx context.Context, username string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byName[NormalizeUsername(username)]
	if !ok {
		return User{}, NotFoundError{Op: "identity.GetByUsername", Resource: "user"}
	}
	return s.byID[id], nil
}
