package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/hyceate/moody-sub000/internal/core/domain"
	"github.com/hyceate/moody-sub000/internal/core/ports"
)

// AvatarImagePrefix is the storage prefix of avatars uploaded by userID.
func AvatarImagePrefix(userID string) string {
	return "avatars/" + strings.ToLower(strings.TrimSpace(userID)) + "/"
}

// UserService resolves profiles and runs the account lifecycle.
type UserService struct {
	repos   Repositories
	cascade *Cascade
	images  ports.ImageRemover
	now     func() time.Time
	log     zerolog.Logger
}

func NewUserService(repos Repositories, cascade *Cascade, images ports.ImageRemover, log zerolog.Logger) *UserService {
	return &UserService{
		repos:   repos,
		cascade: cascade,
		images:  images,
		now:     func() time.Time { return time.Now().UTC() },
		log:     log,
	}
}

func (s *UserService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return s.repos.Users.FindByID(ctx, id)
}

func (s *UserService) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.repos.Users.FindByUsername(ctx, strings.TrimSpace(username))
}

// UpdateAvatar points the actor's profile at an uploaded image. The previous
// avatar is deleted best-effort.
func (s *UserService) UpdateAvatar(ctx context.Context, actorID, avatar string) (*domain.User, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}
	if !strings.HasPrefix(avatar, AvatarImagePrefix(actorID)) {
		return nil, domain.Invalid("avatar must be an image uploaded by you")
	}
	user, err := s.repos.Users.FindByID(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if err := s.repos.Users.UpdateAvatar(ctx, user.ID, avatar, s.now()); err != nil {
		return nil, err
	}
	if user.Avatar != "" && user.Avatar != avatar {
		if err := s.images.Delete(ctx, user.Avatar); err != nil {
			s.log.Warn().Err(err).Str("user_id", user.ID).Msg("failed to delete previous avatar")
		}
	}
	return s.repos.Users.FindByID(ctx, user.ID)
}

// DeleteAccount removes every pin and board the user owns through the cascade
// engine, then the comments they left on other pins, then the user record.
func (s *UserService) DeleteAccount(ctx context.Context, actorID, userID string, asAdmin bool) error {
	if err := requireActor(actorID); err != nil {
		return err
	}
	if !asAdmin {
		if err := requireOwner(actorID, userID); err != nil {
			return err
		}
	}
	user, err := s.repos.Users.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	pins, err := s.repos.Pins.List(ctx, ports.PinFilter{UserID: user.ID, Visibility: domain.Unrestricted})
	if err != nil {
		return err
	}
	for _, pin := range pins {
		if err := s.cascade.DeletePin(ctx, pin.ID, reasonAccount); err != nil {
			return err
		}
	}

	boards, err := s.repos.Boards.List(ctx, ports.BoardFilter{UserID: user.ID, Visibility: domain.Unrestricted})
	if err != nil {
		return err
	}
	for _, board := range boards {
		if _, err := s.cascade.deleteBoard(ctx, board, user.ID); err != nil {
			return err
		}
	}

	comments, err := s.repos.Comments.ListByUser(ctx, user.ID)
	if err != nil {
		return err
	}
	for _, c := range comments {
		if err := s.repos.Pins.RemoveComment(ctx, c.PinID, c.ID); err != nil {
			return err
		}
		if err := s.repos.Comments.Delete(ctx, c.ID); err != nil {
			return err
		}
	}

	if err := s.repos.Users.Delete(ctx, user.ID); err != nil {
		return err
	}
	if user.Avatar != "" {
		if err := s.images.Delete(ctx, user.Avatar); err != nil {
			s.log.Warn().Err(err).Str("user_id", user.ID).Msg("failed to delete avatar")
		}
	}

	s.log.Info().
		Str("user_id", user.ID).
		Str("actor_id", actorID).
		Int("pins", len(pins)).
		Int("boards", len(boards)).
		Msg("account deleted")
	return nil
}
