package session

import (
	"context"
	"errors"
	"sync"

	"corecms/cmd/security/token"
)

// MemoryStore is a dev/test Store used when no database is configured.
type MemoryStore struct {
	mu   sync.RWMutex
	byID map[token.ID]LoginToken
}

// NewMemoryStore constructs an empty in-memory Store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[token.ID]LoginToken)}
}

// Create stores t. An existing token with the same ID is an error.
func (s *MemoryStore) Create(ctx context.Context, t LoginToken) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if t.ID.IsZero() {
		return errors.New("session.Create: zero token id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, dup := s.byID[t.ID]; dup {
		return errors.New("session.Create: duplicate token id")
	}
	s.byID[t.ID] = t
	return nil
}

// Delete removes the token; missing tokens are ignored.
func (s *MemoryStore) Delete(ctx context.Context, id token.ID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.byID, id)
	s.mu.Unlock()
	return nil
}

// GetByID returns the token with the given ID.
func (s *MemoryStore) GetByID(ctx context.Context, id token.ID) (LoginToken, error) {
	if err := ctx.Err(); err != nil {
		return LoginToken{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.byID[id]
	if !ok {
		return LoginToken{}, ErrTokenNotFound
	}
	return t, nil
}

// Len returns the number of stored tokens.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}
