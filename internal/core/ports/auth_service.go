package ports

import (
	"context"

	"github.com/hyceate/moody-sub000/internal/core/domain"
)

// RegisterInput carries the data needed to open an account.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// AuthService registers and authenticates users.
type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	// Login accepts an email address or a username as identifier.
	Login(ctx context.Context, identifier, password string) (string, *domain.User, error)
	ChangePassword(ctx context.Context, actorID, currentPassword, newPassword string) error
}

// UserService resolves and mutates profiles.
type UserService interface {
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	UpdateAvatar(ctx context.Context, actorID, avatar string) (*domain.User, error)
	// DeleteAccount removes the user with all owned boards, pins and comments.
	// actorID must be the user itself unless asAdmin is set.
	DeleteAccount(ctx context.Context, actorID, userID string, asAdmin bool) error
}
