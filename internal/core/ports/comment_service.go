package ports

import (
	"context"

	"github.com/hyceate/moody-sub000/internal/core/domain"
)

// CommentService defines use-case operations for comments.
type CommentService interface {
	AddComment(ctx context.Context, actorID, pinID, text string) (*domain.Comment, error)
	// DeleteComment is allowed for the comment author and the pin owner.
	DeleteComment(ctx context.Context, actorID, pinID, commentID string) error
	ListComments(ctx context.Context, viewerID, pinID string) ([]*domain.Comment, error)
}
