package identity

import "context"

// Store is the identity persistence boundary.
//
// Contract:
//   - Create assigns ID and CreatedAt on success; the username must be unique
//     after NormalizeUsername (ConflictError otherwise).
//   - Delete is idempotent: deleting a missing user is not an error.
//   - GetByID and GetByUsername return an error wrapping ErrNotFound when
//     there is no such user.
//
// Returned users are snapshots; callers may not assume they stay current.
type Store interface {
	Create(ctx context.Context, u *User) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (User, error)
	GetByUsername(ctx context.Context, username string) (User, error)
}
