package identity

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"corecms/cmd/identity/ids"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements Store over PostgreSQL (<schema>.users).
//
// The pgx pool is owned by the caller; this store never closes it.
// Schema identifiers are validated and quoted.
type PostgresStore struct {
	pool   *pgxpool.Pool
	schema string
}

// PostgresOption configures the store.
type PostgresOption func(*PostgresStore) error

var pgIdentRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// WithSchema sets the Postgres schema used by the store (default "corecms").
func WithSchema(schema string) PostgresOption {
	return func(s *PostgresStore) error {
		schema = strings.TrimSpace(schema)
		if schema == "" {
			return fmt.Errorf("identity: empty schema")
		}
		if !pgIdentRe.MatchString(schema) {
			return fmt.Errorf("identity: invalid schema identifier")
		}
		s.schema = schema
		return nil
	}
}

// NewPostgresStore constructs a PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool, opts ...PostgresOption) (*PostgresStore, error) {
	st := &PostgresStore{
		pool:   pool,
		schema: "corecms",
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(st); err != nil {
			return nil, err
		}
	}
	if st.pool == nil {
		return nil, fmt.Errorf("identity: nil pool")
	}
	return st, nil
}

// Create inserts u and assigns its ID and CreatedAt.
func (s *PostgresStore) Create(ctx context.Context, u *User) error {
	const op = "identity.Create"

	if u == nil {
		return invalid(op, "nil user")
	}
	if u.Persisted() {
		return invalid(op, "user already has an id")
	}
	username := strings.TrimSpace(u.Username)
	if username == "" {
		return invalid(op, "username is required")
	}
	if u.PasswordHash == "" || u.PasswordSalt == "" {
		return invalid(op, "password is required")
	}

	now := time.Now().UTC()
	id, err := ids.NewULID(now)
	if err != nil {
		return err
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO `+s.table()+` (
		     id, username, username_norm, password_salt, password_hash, access_level, created_at
		   ) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id,
		username,
		NormalizeUsername(username),
		u.PasswordSalt,
		u.PasswordHash,
		u.AccessLevel,
		now,
	)
	if err != nil {
		if pgIsUniqueViolation(err) {
			return ConflictError{Op: op, Field: "username"}
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	u.ID = id
	u.Username = username
	u.CreatedAt = now
	return nil
}

// Delete removes the user row. Missing rows are not an error.
func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM `+s.table()+` WHERE id = $1`, id); err != nil {
		return fmt.Errorf("identity.Delete: %w", err)
	}
	return nil
}

// GetByID loads a user by ID.
func (s *PostgresStore) GetByID(ctx context.Context, id string) (User, error) {
	const op = "identity.GetByID"

	// Anything that is not a ULID cannot be a stored id.
	if !ids.Valid(id) {
		return User{}, NotFoundError{Op: op, Resource: "user"}
	}
	return s.getOne(ctx, op, `WHERE id = $1`, id)
}

// GetByUsername loads a user by normalized username.
func (s *PostgresStore) GetByUsername(ctx context.Context, username string) (User, error) {
	const op = "identity.GetByUsername"

	norm := NormalizeUsername(username)
	if norm == "" {
		return User{}, NotFoundError{Op: op, Resource: "user"}
	}
	return s.getOne(ctx, op, `WHERE username_norm = $1`, norm)
}

func (s *PostgresStore) getOne(ctx context.Context, op, where string, arg any) (User, error) {
	var u User
	err := s.pool.QueryRow(ctx, `
		SELECT id, username, password_salt, password_hash, access_level, created_at
		FROM `+s.table()+` `+where, arg).Scan(
		&u.ID,
		&u.Username,
		&u.PasswordSalt,
		&u.PasswordHash,
		&u.AccessLevel,
		&u.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, NotFoundError{Op: op, Resource: "user"}
	}
	if err != nil {
		return User{}, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// table returns the quoted "schema"."users" identifier.
func (s *PostgresStore) table() string {
	return pgx.Identifier{s.schema, "users"}.Sanitize()
}

func pgIsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "23505" // unique_violation
}
