package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/hyceate/moody-sub000/internal/core/domain"
)

// CommentService implements comment use cases. A comment is only reachable
// through a pin the actor may see.
type CommentService struct {
	repos Repositories
	now   func() time.Time
	log   zerolog.Logger
}

func NewCommentService(repos Repositories, log zerolog.Logger) *CommentService {
	return &CommentService{
		repos: repos,
		now:   func() time.Time { return time.Now().UTC() },
		log:   log,
	}
}

func (s *CommentService) AddComment(ctx context.Context, actorID, pinID, text string) (*domain.Comment, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}
	text, err := domain.NormalizeCommentText(text)
	if err != nil {
		return nil, err
	}
	pin, err := s.repos.Pins.FindByID(ctx, pinID, domain.VisibleTo(actorID))
	if err != nil {
		return nil, err
	}

	var created *domain.Comment
	sg := newSaga("add_comment", s.log)
	sg.add("create comment",
		func(ctx context.Context) (err error) {
			created, err = s.repos.Comments.Create(ctx, &domain.Comment{
				PinID:     pin.ID,
				UserID:    actorID,
				Text:      text,
				CreatedAt: s.now(),
			})
			return err
		},
		func(ctx context.Context) error { return s.repos.Comments.Delete(ctx, created.ID) },
	)
	sg.add("link comment to pin",
		func(ctx context.Context) error { return s.repos.Pins.AddComment(ctx, pin.ID, created.ID) },
		nil,
	)
	if err := s.repos.Tx.WithTransaction(ctx, sg.run); err != nil {
		return nil, err
	}
	return created, nil
}

// DeleteComment is allowed for the comment's author and the pin's owner.
func (s *CommentService) DeleteComment(ctx context.Context, actorID, pinID, commentID string) error {
	if err := requireActor(actorID); err != nil {
		return err
	}
	pin, err := s.repos.Pins.FindByID(ctx, pinID, domain.VisibleTo(actorID))
	if err != nil {
		return err
	}
	comment, err := s.repos.Comments.FindByID(ctx, commentID)
	if err != nil {
		return err
	}
	if !domain.SameID(comment.PinID, pin.ID) {
		return domain.ErrCommentNotFound
	}
	if !domain.SameID(actorID, comment.UserID) && !domain.SameID(actorID, pin.UserID) {
		return domain.ErrForbidden
	}

	sg := newSaga("delete_comment", s.log)
	sg.add("unlink comment from pin",
		func(ctx context.Context) error { return s.repos.Pins.RemoveComment(ctx, pin.ID, comment.ID) },
		func(ctx context.Context) error { return s.repos.Pins.AddComment(ctx, pin.ID, comment.ID) },
	)
	sg.add("delete comment",
		func(ctx context.Context) error { return s.repos.Comments.Delete(ctx, comment.ID) },
		nil,
	)
	return s.repos.Tx.WithTransaction(ctx, sg.run)
}

func (s *CommentService) ListComments(ctx context.Context, viewerID, pinID string) ([]*domain.Comment, error) {
	pin, err := s.repos.Pins.FindByID(ctx, pinID, domain.VisibleTo(viewerID))
	if err != nil {
		return nil, err
	}
	return s.repos.Comments.ListByPin(ctx, pin.ID)
}
