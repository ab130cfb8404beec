package users

import (
	"context"

	"github.com/google/uuid"
)

// System defines the public contract for account operations.
type System interface {
	Handler() *Handler

	List(ctx context.Context) ([]User, error)
	Find(ctx context.Context, id uuid.UUID) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	Create(ctx context.Context, cmd CreateCommand) (*User, error)
	Deactivate(ctx context.Context, id uuid.UUID) (*User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
