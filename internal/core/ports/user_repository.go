package ports

import (
	"context"

	"github.com/99minutos/ticketing-system/internal/core/domain"
)

// UserRepository persists users. Every lookup is scoped to active
// (non-deleted) records except ListDeleted.
type UserRepository interface {
	FindActiveByUsername(ctx context.Context, username string) (*domain.User, error)
	// ListActive returns active users ordered by first name, descending.
	ListActive(ctx context.Context) ([]*domain.User, error)
	// ListActiveByRole matches the role description case-insensitively.
	ListActiveByRole(ctx context.Context, role string) ([]*domain.User, error)
	// ListDeleted returns soft-deleted users. It is the only accessor that
	// sees the historical projection and must not back uniqueness checks.
	ListDeleted(ctx context.Context) ([]*domain.User, error)
	// Save inserts the user when ID is zero (assigning a fresh ID) and
	// replaces the row with the same ID otherwise.
	Save(ctx context.Context, user *domain.User) (*domain.User, error)
}

// MirrorFailureLog tracks users whose Identity Directory account is missing.
type MirrorFailureLog interface {
	Record(ctx context.Context, username string, cause error) error
	Resolve(ctx context.Context, username string) error
	List(ctx context.Context) ([]domain.MirrorFailure, error)
}
