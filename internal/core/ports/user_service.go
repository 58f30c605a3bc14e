package ports

import (
	"context"

	"github.com/99minutos/ticketing-system/internal/core/domain"
)

// UserInput is the DTO passed from the transport layer to UserService for
// create and update. ID is ignored: creates get a fresh ID and updates keep
// the ID of the active row matching Username.
type UserInput struct {
	ID        int64
	Username  string
	FirstName string
	LastName  string
	Password  string // plaintext
	Enabled   bool
	Role      string
	Gender    string
}

// PasswordEncoder is a one-way password encoding function.
type PasswordEncoder interface {
	Encode(plain string) (string, error)
}

// UserService mediates every mutation of a user record.
type UserService interface {
	CreateUser(ctx context.Context, input UserInput) (*domain.User, error)
	UpdateUser(ctx context.Context, input UserInput) (*domain.User, error)
	DeleteUser(ctx context.Context, username string) error
	ListUsers(ctx context.Context) ([]*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	ListByRole(ctx context.Context, role string) ([]*domain.User, error)
	ListDeletedUsers(ctx context.Context) ([]*domain.User, error)
	ListMirrorFailures(ctx context.Context) ([]domain.MirrorFailure, error)
}
