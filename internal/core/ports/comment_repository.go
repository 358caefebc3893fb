package ports

import (
	"context"

	"github.com/hyceate/moody-sub000/internal/core/domain"
)

// CommentRepository defines persistence operations for comments.
type CommentRepository interface {
	Create(ctx context.Context, c *domain.Comment) (*domain.Comment, error)
	RestoreMany(ctx context.Context, comments []*domain.Comment) error
	FindByID(ctx context.Context, id string) (*domain.Comment, error)
	// ListByPin returns the pin's comments, oldest first.
	ListByPin(ctx context.Context, pinID string) ([]*domain.Comment, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Comment, error)
	Delete(ctx context.Context, id string) error
	DeleteByPin(ctx context.Context, pinID string) (int64, error)
}
