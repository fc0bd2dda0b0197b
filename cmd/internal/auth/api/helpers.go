package authapi

import (
	"strings"

	"corecms/cmd/identity"
)

func toUserResponse(u identity.User) userResponse {
	return userResponse{
		ID:          u.ID,
		Username:    u.Username,
		AccessLevel: u.AccessLevel,
		CreatedAt:   u.CreatedAt,
	}
}

// normalizeCredentials trims the username and reports whether both fields are present.
// Passwords are taken verbatim.
func normalizeCredentials(username, password string) (string, string, bool) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return "", "", false
	}
	return username, password, true
}
