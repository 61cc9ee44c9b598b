package repository

import (
	"context"
	"errors"

	"github.com/KBabraunichy/LibraryWebApiUT-Kiryl/internal/domain/entity"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate")
)

// UserRepository defines the credential store operations.
// Username and email lookups compare lower-cased, trimmed values.
type UserRepository interface {
	Repository[entity.User, string]

	// FindByUsername returns every user whose normalized username matches,
	// in store order. More than one row means the uniqueness invariant was broken.
	FindByUsername(ctx context.Context, username string) ([]*entity.User, error)
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
}

// AuditRepository persists authentication audit entries.
type AuditRepository interface {
	Record(ctx context.Context, e *entity.AuditEntry) error
}
