package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"corecms/cmd/identity"
	"corecms/cmd/internal/clientip"
	"corecms/cmd/security/password"
	"corecms/cmd/security/token"
)

// IPResolver extracts the client address a token is pinned to.
type IPResolver interface {
	Resolve(r *http.Request) string
}

// Engine implements login, identity resolution and logout on top of a user
// store and a token store.
//
// It is safe for concurrent use. All state lives in the stores.
type Engine struct {
	cfg       Config
	users     identity.Store
	tokens    Store
	ips       IPResolver
	transport Transport

	log     *slog.Logger
	now     func() time.Time
	reaper  *Reaper
	metrics *Metrics

	dummyOnce sync.Once
	dummy     identity.User
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the logger (default slog.Default()).
func WithLogger(log *slog.Logger) EngineOption {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// WithClock overrides the time source used for expiry decisions.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithReaper routes rejected tokens through r. Without a reaper each
// rejection spawns a detached delete.
func WithReaper(r *Reaper) EngineOption {
	return func(e *Engine) { e.reaper = r }
}

// WithMetrics enables counters.
func WithMetrics(m *Metrics) EngineOption {
	return func(e *Engine) { e.metrics = m }
}

// NewEngine constructs an Engine. A nil ips falls back to a resolver that
// does not trust proxy headers; a nil transport falls back to the cookie
// described by cfg.
func NewEngine(cfg Config, users identity.Store, tokens Store, ips IPResolver, transport Transport, opts ...EngineOption) *Engine {
	if cfg.SessionLifetime <= 0 {
		cfg.SessionLifetime = DefaultConfig().SessionLifetime
	}
	if cfg.Reap.Timeout <= 0 {
		cfg.Reap.Timeout = DefaultConfig().Reap.Timeout
	}
	if ips == nil {
		ips = clientip.Resolver{}
	}
	if transport == nil {
		transport = NewCookieTransport(cfg)
	}

	e := &Engine{
		cfg:       cfg,
		users:     users,
		tokens:    tokens,
		ips:       ips,
		transport: transport,
		log:       slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// Login authenticates username/password and, on success, issues a token and
// sets the credential on w.
//
// Unknown usernames and wrong passwords both yield ErrInvalidCredentials.
func (e *Engine) Login(w http.ResponseWriter, r *http.Request, username, plain string) error {
	u, err := e.users.GetByUsername(r.Context(), username)
	if err != nil {
		if !identity.IsNotFound(err) {
			e.metrics.login("storage_error")
			e.log.Error("auth.login.lookup.fail", "err", err)
			return fmt.Errorf("%w: %w", ErrStorage, err)
		}
		// Spend the same hashing work as a real verification.
		e.dummyUser().VerifyPassword(plain)
		e.metrics.login("invalid_credentials")
		return ErrInvalidCredentials
	}

	if !u.VerifyPassword(plain) {
		e.metrics.login("invalid_credentials")
		return ErrInvalidCredentials
	}

	return e.LoginUser(w, r, u)
}

// LoginUser issues a token for an already authenticated user and sets the
// credential on w. On any failure no credential is set.
func (e *Engine) LoginUser(w http.ResponseWriter, r *http.Request, u identity.User) error {
	if !u.Persisted() {
		e.metrics.login("invalid_user_state")
		e.log.Error("auth.login.user_state.fail", "username", u.Username)
		return ErrInvalidUserState
	}

	id, err := token.NewID()
	if err != nil {
		e.metrics.login("storage_error")
		return fmt.Errorf("session: new token id: %w", err)
	}

	t := LoginToken{
		ID:       id,
		UserID:   u.ID,
		AccessIP: e.ips.Resolve(r),
		ExpireAt: e.now().Add(e.cfg.SessionLifetime),
	}

	if err := e.tokens.Create(r.Context(), t); err != nil {
		e.metrics.login("storage_error")
		e.log.Error("auth.login.token_create.fail", "err", err, "user_id", u.ID)
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}

	e.transport.Set(w, t.ID.String(), t.ExpireAt)
	e.metrics.login("success")
	e.log.Info("auth.login.ok", "user_id", u.ID)
	return nil
}

// ResolveIdentity returns the user bound to the request's credential.
//
// A credential resolves only if its token exists, was issued to the same
// client IP, and has not expired. Tokens failing the IP or expiry check are
// scheduled for deletion. Every failure, including storage errors, resolves
// to no identity.
func (e *Engine) ResolveIdentity(r *http.Request) (identity.User, bool) {
	raw, ok := e.transport.Read(r)
	if !ok {
		e.metrics.resolution("anonymous")
		return identity.User{}, false
	}

	id, err := token.Parse(raw)
	if err != nil {
		e.metrics.resolution("malformed")
		return identity.User{}, false
	}

	ctx := r.Context()

	t, err := e.tokens.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrTokenNotFound) {
			e.metrics.resolution("not_found")
		} else {
			e.metrics.resolution("storage_error")
			e.log.Warn("auth.resolve.token_lookup.fail", "err", err)
		}
		return identity.User{}, false
	}

	if !t.BoundTo(e.ips.Resolve(r)) {
		e.metrics.resolution("ip_mismatch")
		e.reap(t.ID)
		return identity.User{}, false
	}
	if !t.LiveAt(e.now()) {
		e.metrics.resolution("expired")
		e.reap(t.ID)
		return identity.User{}, false
	}

	u, err := e.users.GetByID(ctx, t.UserID)
	if err != nil {
		// Orphan tokens are not reaped.
		if identity.IsNotFound(err) {
			e.metrics.resolution("orphan")
		} else {
			e.metrics.resolution("storage_error")
			e.log.Warn("auth.resolve.user_lookup.fail", "err", err)
		}
		return identity.User{}, false
	}

	e.metrics.resolution("ok")
	return materialize(u), true
}

// Resolve is ResolveIdentity followed by a caller supplied construction of a
// richer user type.
func Resolve[T any](e *Engine, r *http.Request, build func(identity.User) T) (T, bool) {
	u, ok := e.ResolveIdentity(r)
	if !ok {
		var zero T
		return zero, false
	}
	return build(u), true
}

// DeleteToken removes the token with the given ID. Deleting an unknown token
// succeeds.
func (e *Engine) DeleteToken(ctx context.Context, id token.ID) error {
	if err := e.tokens.Delete(ctx, id); err != nil {
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return nil
}

// Logout deletes the token presented by r and clears the credential on w.
// The credential is cleared only if the delete succeeded.
func (e *Engine) Logout(w http.ResponseWriter, r *http.Request) error {
	raw, ok := e.transport.Read(r)
	if !ok {
		e.metrics.logout("anonymous")
		return ErrNotAuthenticated
	}

	id, err := token.Parse(raw)
	if err != nil {
		e.metrics.logout("malformed")
		return ErrNotAuthenticated
	}

	if err := e.DeleteToken(r.Context(), id); err != nil {
		e.metrics.logout("storage_error")
		e.log.Error("auth.logout.fail", "err", err)
		return err
	}

	e.transport.Clear(w)
	e.metrics.logout("success")
	return nil
}

// CreateUser persists u through the user store and assigns its ID.
func (e *Engine) CreateUser(ctx context.Context, u *identity.User) error {
	return e.users.Create(ctx, u)
}

// UserByID loads a user through the user store.
func (e *Engine) UserByID(ctx context.Context, id string) (identity.User, error) {
	u, err := e.users.GetByID(ctx, id)
	if err != nil {
		return identity.User{}, err
	}
	return materialize(u), nil
}

// DeleteUser removes u from the user store. Tokens issued to u stay in the
// token store and no longer resolve.
func (e *Engine) DeleteUser(ctx context.Context, u identity.User) error {
	if !u.Persisted() {
		return ErrInvalidUserState
	}
	return e.users.Delete(ctx, u.ID)
}

// Config returns the engine configuration.
func (e *Engine) Config() Config { return e.cfg }

func (e *Engine) reap(id token.ID) {
	if e.reaper != nil {
		e.reaper.Enqueue(id)
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), e.cfg.Reap.Timeout)
		defer cancel()

		if err := e.tokens.Delete(ctx, id); err != nil {
			e.metrics.reap("failed")
			e.log.Warn("auth.reap.fail", "err", err)
			return
		}
		e.metrics.reap("deleted")
	}()
}

const dummyPassword = "corecms-unknown-user-placeholder"

// dummyUser returns a user with valid credential material that no real
// password is expected to match. The digest uses the configured argon2 cost
// but not the length policy, so a short max length cannot skip the hashing.
func (e *Engine) dummyUser() identity.User {
	e.dummyOnce.Do(func() {
		cfg, err := password.FromEnv()
		if err != nil {
			cfg = password.DefaultConfig()
		}
		cfg.Policy = password.Policy{MinLength: 0, MaxLength: len(dummyPassword)}

		d, err := cfg.Hash(dummyPassword)
		if err != nil {
			e.log.Warn("auth.login.dummy_hash.fail", "err", err)
			return
		}
		e.dummy = identity.User{PasswordSalt: d.Salt, PasswordHash: d.Hash}
	})
	return e.dummy
}

// materialize copies u field by field so callers never share store memory.
func materialize(u identity.User) identity.User {
	return identity.User{
		ID:           u.ID,
		Username:     u.Username,
		PasswordSalt: u.PasswordSalt,
		PasswordHash: u.PasswordHash,
		AccessLevel:  u.AccessLevel,
		CreatedAt:    u.CreatedAt,
	}
}
