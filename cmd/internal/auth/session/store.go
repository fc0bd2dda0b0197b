package session

import (
	"context"

	"corecms/cmd/security/token"
)

// Store persists login tokens.
//
// Implementations must make Delete idempotent: two concurrent reaps of the
// same expired token both succeed. GetByID returns ErrTokenNotFound (possibly
// wrapped) when the ID is unknown.
type Store interface {
	Create(ctx context.Context, t LoginToken) error
	Delete(ctx context.Context, id token.ID) error
	GetByID(ctx context.Context, id token.ID) (LoginToken, error)
}
