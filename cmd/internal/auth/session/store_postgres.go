package session

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"corecms/cmd/security/token"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements Store using PostgreSQL (<schema>.login_tokens).
//
// Rows are keyed by token.Digest(id); the raw token ID is never written.
// user_id deliberately has no foreign key: deleting a user leaves orphan
// tokens that resolve to nothing.
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
		if !pgIdentRe.MatchString(schema) {
			return fmt.Errorf("session: invalid schema identifier %q", schema)
		}
		s.schema = schema
		return nil
	}
}

// NewPostgresStore creates a Postgres-backed token store.
func NewPostgresStore(pool *pgxpool.Pool, opts ...PostgresOption) (*PostgresStore, error) {
	st := &PostgresStore{pool: pool, schema: "corecms"}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(st); err != nil {
			return nil, err
		}
	}
	if st.pool == nil {
		return nil, fmt.Errorf("session: nil pool")
	}
	return st, nil
}

// Create inserts a new token row.
func (s *PostgresStore) Create(ctx context.Context, t LoginToken) error {
	if t.ID.IsZero() {
		return fmt.Errorf("session.Create: zero token id")
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO `+s.table()+` (id_hash, user_id, access_ip, expire_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, token.Digest(t.ID), t.UserID, t.AccessIP, t.ExpireAt.UTC(), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("session.Create: %w", err)
	}
	return nil
}

// Delete removes the token row. Missing rows are not an error.
func (s *PostgresStore) Delete(ctx context.Context, id token.ID) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM `+s.table()+` WHERE id_hash = $1`, token.Digest(id)); err != nil {
		return fmt.Errorf("session.Delete: %w", err)
	}
	return nil
}

// GetByID loads a token row by ID.
func (s *PostgresStore) GetByID(ctx context.Context, id token.ID) (LoginToken, error) {
	t := LoginToken{ID: id}

	err := s.pool.QueryRow(ctx, `
		SELECT user_id, access_ip, expire_at
		FROM `+s.table()+`
		WHERE id_hash = $1
	`, token.Digest(id)).Scan(&t.UserID, &t.AccessIP, &t.ExpireAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return LoginToken{}, ErrTokenNotFound
	}
	if err != nil {
		return LoginToken{}, fmt.Errorf("session.GetByID: %w", err)
	}
	return t, nil
}

// table returns the quoted "schema"."login_tokens" identifier.
func (s *PostgresStore) table() string {
	return pgx.Identifier{s.schema, "login_tokens"}.Sanitize()
}
