package session

import (
	"net/http"
	"time"
)

// Transport moves the token ID between server and client.
type Transport interface {
	// Read returns the raw credential presented by the request, if any.
	Read(r *http.Request) (string, bool)
	// Set instructs the client to store value until expires.
	Set(w http.ResponseWriter, value string, expires time.Time)
	// Clear instructs the client to drop the credential.
	Clear(w http.ResponseWriter)
}

// CookieTransport carries the token ID in an HttpOnly, Secure,
// SameSite=Strict cookie.
type CookieTransport struct {
	Name   string
	Path   string
	Domain string
}

// NewCookieTransport builds a CookieTransport from cfg.
func NewCookieTransport(cfg Config) CookieTransport {
	name := cfg.CookieName
	if name == "" {
		name = DefaultCookieName
	}
	path := cfg.CookiePath
	if path == "" {
		path = "/"
	}
	return CookieTransport{Name: name, Path: path, Domain: cfg.CookieDomain}
}

func (c CookieTransport) Read(r *http.Request) (string, bool) {
	ck, err := r.Cookie(c.Name)
	if err != nil || ck.Value == "" {
		return "", false
	}
	return ck.Value, true
}

func (c CookieTransport) Set(w http.ResponseWriter, value string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.Name,
		Value:    value,
		Path:     c.Path,
		Domain:   c.Domain,
		Expires:  expires.UTC(),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
}

func (c CookieTransport) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.Name,
		Value:    "",
		Path:     c.Path,
		Domain:   c.Domain,
		Expires:  time.Unix(0, 0).UTC(),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
}
