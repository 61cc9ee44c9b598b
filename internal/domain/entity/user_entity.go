package entity

import (
	"strings"
	"time"
)

// User is the aggregate root for the credential store.
// Password holds an argon2id (or legacy bcrypt) hash, never the raw password.
type User struct {
	ID        string
	Username  string
	Password  string
	Email     string
	Role      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// LoginCredential is the transient input of a login attempt.
type LoginCredential struct {
	Username string
	Password string
}

// NormalizeKey folds a username or email into the form uniqueness is checked on.
func NormalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
