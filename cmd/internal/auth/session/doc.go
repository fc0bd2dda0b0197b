// Package session implements CoreCMS login sessions.
//
// A successful login stores a LoginToken (random ID, user ID, client IP,
// absolute expiry) and hands its ID to the client in a cookie. Every request
// presenting the cookie is checked for existence, IP match and expiry before
// the user is loaded. Tokens that fail the IP or expiry check are deleted in
// the background (lazy reap); there is no periodic sweep.
//
// Storage is behind Store (memory, PostgreSQL, Redis). Cookie handling is
// behind Transport and client IP extraction behind IPResolver.
package session
