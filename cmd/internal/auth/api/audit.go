package authapi

import (
	"log/slog"
	"net/http"
	"strings"
)

// Audit records are plain log lines on a dedicated "audit" logger so they can
// be routed separately from operational logs.

func (h *Handler) auditLoginFailed(r *http.Request, username, reason string) {
	h.writeAudit(r, "auth.login.failed", "",
		slog.String("username", username),
		slog.String("reason", reason),
	)
}

func (h *Handler) auditLoginSuccess(r *http.Request, username string) {
	h.writeAudit(r, "auth.login.success", "", slog.String("username", username))
}

func (h *Handler) auditLogout(r *http.Request) {
	h.writeAudit(r, "auth.logout", "")
}

func (h *Handler) auditRegistered(r *http.Request, userID string) {
	h.writeAudit(r, "auth.register", userID)
}

func (h *Handler) auditUserCreated(r *http.Request, actorID, userID string) {
	h.writeAudit(r, "users.create", actorID, slog.String("target_user_id", userID))
}

func (h *Handler) auditUserDeleted(r *http.Request, actorID, userID string) {
	h.writeAudit(r, "users.delete", actorID, slog.String("target_user_id", userID))
}

func (h *Handler) writeAudit(r *http.Request, action, userID string, attrs ...slog.Attr) {
	if h == nil || h.audit == nil {
		return
	}

	base := []slog.Attr{
		slog.String("action", action),
		slog.String("ip", h.ips.Resolve(r)),
	}
	if userID != "" {
		base = append(base, slog.String("user_id", userID))
	}
	if ua := strings.TrimSpace(r.UserAgent()); ua != "" {
		base = append(base, slog.String("user_agent", ua))
	}

	h.audit.LogAttrs(r.Context(), slog.LevelInfo, "audit", append(base, attrs...)...)
}
