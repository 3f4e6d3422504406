// Package userstore implements auth.UserStorage over an in-memory map,
// MongoDB, PostgreSQL and SQLite. Every backend enforces email uniqueness in
// storage and reports violations as auth.ErrEmailAlreadyExists.
package userstore

import (
	"time"

	"github.com/dmitrymomot/authsvc/pkg/auth"
)

// withDefaults fills the storage-level defaults for a new account.
func withDefaults(u *auth.User) {
	if u.Role == "" {
		u.Role = auth.DefaultRole
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
}

// nullable maps an empty string to SQL NULL.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
