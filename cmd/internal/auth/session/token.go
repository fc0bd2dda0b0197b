package session

import (
	"time"

	"corecms/cmd/security/token"
)

// LoginToken is the server-side record behind a session cookie.
type LoginToken struct {
	ID       token.ID
	UserID   string
	AccessIP string
	ExpireAt time.Time
}

// LiveAt reports whether the token is still valid at now (strictly before ExpireAt).
func (t LoginToken) LiveAt(now time.Time) bool {
	return now.Before(t.ExpireAt)
}

// BoundTo reports whether ip is the address the token was issued to.
func (t LoginToken) BoundTo(ip string) bool {
	return token.Equal(ip, t.AccessIP)
}
