// Package identity owns CoreCMS user records.
//
// It defines the User model, the Store persistence boundary (with in-memory
// and PostgreSQL implementations) and the password capability used by login.
// The session engine only reads users through Store; it never writes
// credential material.
package identity
