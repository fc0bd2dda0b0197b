package authapi

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"corecms/cmd/identity"
	"corecms/cmd/internal/auth/session"
	"corecms/cmd/internal/clientip"
	"corecms/cmd/security/password"
)

// Handler wires HTTP auth endpoints to the session engine.
type Handler struct {
	log   *slog.Logger
	audit *slog.Logger
	cfg   Config

	engine *session.Engine
	ips    session.IPResolver
}

// NewHandler constructs an auth Handler. ips should be the resolver the engine
// uses so audit records carry the address tokens are pinned to.
func NewHandler(log *slog.Logger, engine *session.Engine, ips session.IPResolver, cfg Config) (*Handler, error) {
	if engine == nil {
		return nil, errors.New("auth: nil session engine")
	}
	if log == nil {
		log = slog.Default()
	}
	if ips == nil {
		ips = clientip.Resolver{}
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 64 << 10
	}

	return &Handler{
		log:    log,
		audit:  log.With("component", "audit"),
		cfg:    cfg,
		engine: engine,
		ips:    ips,
	}, nil
}

// Register wires auth routes onto the provided mux.
func (h *Handler) Register(mux *http.ServeMux) {
	if h == nil || mux == nil {
		return
	}
	mux.HandleFunc("POST /auth/login", h.handleLogin)
	mux.HandleFunc("POST /auth/logout", h.handleLogout)
	if h.cfg.OpenRegistration {
		mux.HandleFunc("POST /auth/register", h.handleRegister)
	}
	mux.HandleFunc("GET /me", h.handleMe)
	mux.HandleFunc("POST /users", h.handleUserCreate)
	mux.HandleFunc("DELETE /users/{id}", h.handleUserDelete)
}

// ---- handlers ----

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	// Already signed in: keep the current session.
	if _, ok := h.engine.ResolveIdentity(r); ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	var req credentialsRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}

	username, pw, ok := normalizeCredentials(req.Username, req.Password)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_request", "username and password are required")
		return
	}

	if err := h.engine.Login(w, r, username, pw); err != nil {
		switch {
		case errors.Is(err, session.ErrInvalidCredentials):
			h.auditLoginFailed(r, username, "invalid_credentials")
			writeError(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials")
		default:
			h.log.Error("auth.login.fail", "err", err)
			writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		}
		return
	}

	h.auditLoginSuccess(r, username)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}

	u, ok := h.createUser(w, r, req.Username, req.Password, 0)
	if !ok {
		return
	}
	h.auditRegistered(r, u.ID)

	// The account exists even if auto-login fails; the client can log in again.
	if err := h.engine.LoginUser(w, r, u); err != nil {
		h.log.Error("auth.register.login.fail", "err", err, "user_id", u.ID)
	}

	writeJSON(w, http.StatusCreated, userCreatedResponse{User: toUserResponse(u)})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.Logout(w, r); err != nil {
		switch {
		case errors.Is(err, session.ErrNotAuthenticated):
			writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		default:
			h.log.Error("auth.logout.fail", "err", err)
			writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		}
		return
	}

	h.auditLogout(r)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	u, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, meResponse{User: toUserResponse(u)})
}

func (h *Handler) handleUserCreate(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireAdmin(w, r)
	if !ok {
		return
	}

	var req createUserRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}
	if req.AccessLevel < 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "access_level must not be negative")
		return
	}
	if req.AccessLevel > actor.AccessLevel {
		writeError(w, http.StatusForbidden, "forbidden", "cannot grant a higher access level than your own")
		return
	}

	u, ok := h.createUser(w, r, req.Username, req.Password, req.AccessLevel)
	if !ok {
		return
	}

	h.auditUserCreated(r, actor.ID, u.ID)
	writeJSON(w, http.StatusCreated, userCreatedResponse{User: toUserResponse(u)})
}

func (h *Handler) handleUserDelete(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.requireAdmin(w, r)
	if !ok {
		return
	}

	id := strings.TrimSpace(r.PathValue("id"))
	ctx := r.Context()

	target, err := h.engine.UserByID(ctx, id)
	if err != nil {
		if identity.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "not_found", "user not found")
			return
		}
		h.log.Error("users.delete.lookup.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}

	if target.AccessLevel > actor.AccessLevel {
		writeError(w, http.StatusForbidden, "forbidden", "cannot delete a user with a higher access level than your own")
		return
	}

	if err := h.engine.DeleteUser(ctx, target); err != nil {
		h.log.Error("users.delete.fail", "err", err, "user_id", target.ID)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}

	h.auditUserDeleted(r, actor.ID, target.ID)
	w.WriteHeader(http.StatusNoContent)
}

// ---- helpers ----

func (h *Handler) requireUser(w http.ResponseWriter, r *http.Request) (identity.User, bool) {
	u, ok := h.engine.ResolveIdentity(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return identity.User{}, false
	}
	return u, true
}

func (h *Handler) requireAdmin(w http.ResponseWriter, r *http.Request) (identity.User, bool) {
	u, ok := h.requireUser(w, r)
	if !ok {
		return identity.User{}, false
	}
	if u.AccessLevel < h.cfg.AdminAccessLevel {
		writeError(w, http.StatusForbidden, "forbidden", "insufficient access level")
		return identity.User{}, false
	}
	return u, true
}

// createUser hashes the password, persists the user and writes the error
// response on failure.
func (h *Handler) createUser(w http.ResponseWriter, r *http.Request, username, pw string, level int) (identity.User, bool) {
	username, pw, ok := normalizeCredentials(username, pw)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_request", "username and password are required")
		return identity.User{}, false
	}

	u := identity.User{Username: username, AccessLevel: level}
	if err := u.SetPassword(pw); err != nil {
		switch {
		case errors.Is(err, password.ErrPasswordTooShort), errors.Is(err, password.ErrPasswordTooLong):
			writeError(w, http.StatusBadRequest, "weak_password", err.Error())
		default:
			h.log.Error("users.create.hash.fail", "err", err)
			writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		}
		return identity.User{}, false
	}

	if err := h.engine.CreateUser(r.Context(), &u); err != nil {
		switch {
		case identity.IsConflict(err):
			writeError(w, http.StatusConflict, "username_taken", "username already taken")
		case identity.IsInvalidInput(err):
			writeError(w, http.StatusBadRequest, "invalid_request", "invalid user")
		default:
			h.log.Error("users.create.fail", "err", err)
			writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		}
		return identity.User{}, false
	}
	return u, true
}
