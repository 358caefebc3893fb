package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/hyceate/moody-sub000/internal/core/domain"
	"github.com/hyceate/moody-sub000/internal/core/ports"
	"github.com/hyceate/moody-sub000/internal/pkg/metrics"
)

// PinImagePrefix is the storage prefix of images uploaded by userID for pins.
func PinImagePrefix(userID string) string { return "pins/" + strings.ToLower(strings.TrimSpace(userID)) + "/" }

// PinService implements pin use cases. Memberships go through Membership and
// deletes through Cascade.
type PinService struct {
	repos      Repositories
	membership *Membership
	cascade    *Cascade
	images     ports.ImageStore
	now        func() time.Time
	log        zerolog.Logger
}

func NewPinService(repos Repositories, membership *Membership, cascade *Cascade, images ports.ImageStore, log zerolog.Logger) *PinService {
	return &PinService{
		repos:      repos,
		membership: membership,
		cascade:    cascade,
		images:     images,
		now:        func() time.Time { return time.Now().UTC() },
		log:        log,
	}
}

// CreatePin stores a pin for an already uploaded image. When a board is given
// the pin inherits its privacy and is saved to it.
func (s *PinService) CreatePin(ctx context.Context, input ports.CreatePinInput) (*domain.Pin, error) {
	if err := requireActor(input.ActorID); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(input.Title)
	if len(title) > domain.MaxPinTitle {
		return nil, domain.Invalid("title must be at most %d characters", domain.MaxPinTitle)
	}
	if len(input.Description) > domain.MaxDescription {
		return nil, domain.Invalid("description must be at most %d characters", domain.MaxDescription)
	}
	tags, err := domain.NormalizeTags(input.Tags)
	if err != nil {
		return nil, err
	}
	if err := domain.ValidateImageSize(input.ImageWidth, input.ImageHeight); err != nil {
		return nil, err
	}
	if !strings.HasPrefix(input.ImagePath, PinImagePrefix(input.ActorID)) {
		return nil, domain.Invalid("image path must reference one of your uploads")
	}
	ok, err := s.images.Exists(ctx, input.ImagePath)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrImageNotFound
	}

	var board *domain.Board
	if input.BoardID != "" {
		if board, err = s.repos.Boards.FindByID(ctx, input.BoardID, domain.Unrestricted); err != nil {
			return nil, err
		}
		if err := requireOwner(input.ActorID, board.UserID); err != nil {
			return nil, err
		}
	}

	now := s.now()
	pin := &domain.Pin{
		UserID:      input.ActorID,
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		ImagePath:   input.ImagePath,
		ImageWidth:  input.ImageWidth,
		ImageHeight: input.ImageHeight,
		Link:        strings.TrimSpace(input.Link),
		Tags:        tags,
		Comments:    []string{},
		Boards:      []domain.Membership{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if board != nil {
		pin.IsPrivate = board.IsPrivate
	}

	created, err := s.repos.Pins.Create(ctx, pin)
	if err != nil {
		return nil, err
	}
	metrics.PinsCreatedTotal.Inc()
	s.log.Info().Str("pin_id", created.ID).Str("user_id", created.UserID).Msg("pin created")

	if board == nil {
		return created, nil
	}
	saved, err := s.membership.SaveToBoard(ctx, input.ActorID, created.ID, board.ID)
	if err != nil {
		// The pin has no membership yet, so deleting the record is enough.
		if derr := s.repos.Pins.Delete(context.WithoutCancel(ctx), created.ID); derr != nil {
			s.log.Error().Err(derr).Str("pin_id", created.ID).Msg("failed to remove pin after save failure")
		}
		return nil, err
	}
	return saved, nil
}

// UpdatePin applies an owner edit and, when NewBoardID is set, moves the pin.
func (s *PinService) UpdatePin(ctx context.Context, input ports.UpdatePinInput) (*domain.Pin, error) {
	if err := requireActor(input.ActorID); err != nil {
		return nil, err
	}
	// Owner mutations report Forbidden for private pins too.
	pin, err := s.repos.Pins.FindByID(ctx, input.PinID, domain.Unrestricted)
	if err != nil {
		return nil, err
	}
	if err := requireOwner(input.ActorID, pin.UserID); err != nil {
		return nil, err
	}

	patch := domain.PinPatch{}
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if len(title) > domain.MaxPinTitle {
			return nil, domain.Invalid("title must be at most %d characters", domain.MaxPinTitle)
		}
		patch.Title = &title
	}
	if input.Description != nil {
		desc := strings.TrimSpace(*input.Description)
		if len(desc) > domain.MaxDescription {
			return nil, domain.Invalid("description must be at most %d characters", domain.MaxDescription)
		}
		patch.Description = &desc
	}
	if input.Link != nil {
		link := strings.TrimSpace(*input.Link)
		patch.Link = &link
	}
	if input.Tags != nil {
		tags, err := domain.NormalizeTags(*input.Tags)
		if err != nil {
			return nil, err
		}
		patch.Tags = &tags
	}

	if input.NewBoardID != "" {
		return s.membership.EditAndMove(ctx, input.ActorID, pin.ID, patch, input.CurrentBoardID, input.NewBoardID)
	}
	if patch.Empty() {
		return pin, nil
	}
	return s.repos.Pins.Update(ctx, pin.ID, patch)
}

func (s *PinService) DeletePin(ctx context.Context, actorID, pinID string) error {
	if err := requireActor(actorID); err != nil {
		return err
	}
	pin, err := s.repos.Pins.FindByID(ctx, pinID, domain.Unrestricted)
	if err != nil {
		return err
	}
	if err := requireOwner(actorID, pin.UserID); err != nil {
		return err
	}
	return s.cascade.DeletePin(ctx, pin.ID, reasonExplicit)
}

func (s *PinService) GetPin(ctx context.Context, viewerID, pinID string) (*domain.Pin, error) {
	return s.repos.Pins.FindByID(ctx, pinID, domain.VisibleTo(viewerID))
}

// ListPins returns the feed page visible to the viewer, newest first.
func (s *PinService) ListPins(ctx context.Context, input ports.ListPinsInput) ([]*domain.Pin, error) {
	limit := input.Limit
	switch {
	case limit <= 0:
		limit = domain.DefaultFeedPageSize
	case limit > domain.MaxFeedPageSize:
		limit = domain.MaxFeedPageSize
	}
	offset := input.Offset
	if offset < 0 {
		offset = 0
	}
	tags, err := domain.NormalizeTags(input.Tags)
	if err != nil {
		return nil, err
	}
	return s.repos.Pins.List(ctx, ports.PinFilter{
		Search:     strings.TrimSpace(input.Search),
		Tags:       tags,
		Visibility: domain.VisibleTo(input.ViewerID),
		Offset:     offset,
		Limit:      limit,
	})
}

func (s *PinService) PinsByUser(ctx context.Context, viewerID, userID string) ([]*domain.Pin, error) {
	return s.repos.Pins.List(ctx, ports.PinFilter{UserID: userID, Visibility: domain.VisibleTo(viewerID)})
}

func (s *PinService) SavePinToBoard(ctx context.Context, actorID, pinID, boardID string) (*domain.Pin, error) {
	return s.membership.SaveToBoard(ctx, actorID, pinID, boardID)
}

// DeletePinFromBoard removes the membership on behalf of the board owner. The
// pin itself is kept even when it is left without boards.
func (s *PinService) DeletePinFromBoard(ctx context.Context, actorID, pinID, boardID string) (*domain.Pin, bool, error) {
	if err := requireActor(actorID); err != nil {
		return nil, false, err
	}
	board, err := s.repos.Boards.FindByID(ctx, boardID, domain.Unrestricted)
	if err != nil {
		return nil, false, err
	}
	if err := requireOwner(actorID, board.UserID); err != nil {
		return nil, false, err
	}
	orphaned, err := s.membership.RemoveFromBoard(ctx, pinID, board.ID)
	if err != nil {
		return nil, false, err
	}
	pin, err := s.repos.Pins.FindByID(ctx, pinID, domain.Unrestricted)
	if err != nil {
		return nil, false, err
	}
	return pin, orphaned, nil
}

func (s *PinService) ImageURL(path string) string {
	if path == "" {
		return ""
	}
	return s.images.URL(path)
}
