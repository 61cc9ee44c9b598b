package repository

import "context"

// Repository is the capability set shared by every entity store.
// The book and author controllers rely on the same contract.
type Repository[T any, ID comparable] interface {
	GetObject(ctx context.Context, id ID) (*T, error)
	Create(ctx context.Context, entity *T) (*T, error)
	Update(ctx context.Context, entity *T) error
	Delete(ctx context.Context, id ID) error
}
