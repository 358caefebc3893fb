package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/hyceate/moody-sub000/internal/core/domain"
	"github.com/hyceate/moody-sub000/internal/core/ports"
)

// BoardService implements board use cases.
type BoardService struct {
	repos   Repositories
	cascade *Cascade
	now     func() time.Time
	log     zerolog.Logger
}

func NewBoardService(repos Repositories, cascade *Cascade, log zerolog.Logger) *BoardService {
	return &BoardService{
		repos:   repos,
		cascade: cascade,
		now:     func() time.Time { return time.Now().UTC() },
		log:     log,
	}
}

func (s *BoardService) CreateBoard(ctx context.Context, input ports.CreateBoardInput) (*domain.Board, error) {
	if err := requireActor(input.ActorID); err != nil {
		return nil, err
	}
	title, err := normalizeBoardTitle(input.Title)
	if err != nil {
		return nil, err
	}
	if len(input.Description) > domain.MaxDescription {
		return nil, domain.Invalid("description must be at most %d characters", domain.MaxDescription)
	}
	if err := s.ensureTitleFree(ctx, input.ActorID, title, ""); err != nil {
		return nil, err
	}

	now := s.now()
	board, err := s.repos.Boards.Create(ctx, &domain.Board{
		UserID:      input.ActorID,
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		IsPrivate:   input.IsPrivate,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("board_id", board.ID).Str("user_id", board.UserID).Bool("is_private", board.IsPrivate).Msg("board created")
	return board, nil
}

// UpdateBoard applies an owner patch. Changing the board's privacy does not
// rewrite the privacy of pins already on it; pins pick up a board's privacy
// when they are created on or moved to it.
func (s *BoardService) UpdateBoard(ctx context.Context, input ports.UpdateBoardInput) (*domain.Board, error) {
	if err := requireActor(input.ActorID); err != nil {
		return nil, err
	}
	board, err := s.repos.Boards.FindByID(ctx, input.BoardID, domain.Unrestricted)
	if err != nil {
		return nil, err
	}
	if err := requireOwner(input.ActorID, board.UserID); err != nil {
		return nil, err
	}

	patch := domain.BoardPatch{IsPrivate: input.IsPrivate}
	if input.Title != nil {
		title, err := normalizeBoardTitle(*input.Title)
		if err != nil {
			return nil, err
		}
		if title != board.Title {
			if err := s.ensureTitleFree(ctx, board.UserID, title, board.ID); err != nil {
				return nil, err
			}
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
	if patch.Empty() {
		return board, nil
	}

	return s.repos.Boards.Update(ctx, board.ID, patch)
}

func (s *BoardService) DeleteBoard(ctx context.Context, actorID, boardID string) (*ports.BoardDeletion, error) {
	return s.cascade.DeleteBoard(ctx, actorID, boardID)
}

// GetBoard returns the board when viewerID may see it; invisible boards are
// reported as not found.
func (s *BoardService) GetBoard(ctx context.Context, viewerID, boardID string) (*domain.Board, error) {
	return s.repos.Boards.FindByID(ctx, boardID, domain.VisibleTo(viewerID))
}

func (s *BoardService) BoardsByUser(ctx context.Context, viewerID, userID string) ([]*domain.Board, error) {
	return s.repos.Boards.List(ctx, ports.BoardFilter{UserID: userID, Visibility: domain.VisibleTo(viewerID)})
}

// PinsOnBoard returns the board's pins that viewerID may see, most recently
// saved first.
func (s *BoardService) PinsOnBoard(ctx context.Context, viewerID string, board *domain.Board) ([]*domain.Pin, error) {
	ids := board.PinIDs()
	if len(ids) == 0 {
		return []*domain.Pin{}, nil
	}
	pins, err := s.repos.Pins.List(ctx, ports.PinFilter{IDs: ids, Visibility: domain.VisibleTo(viewerID)})
	if err != nil {
		return nil, err
	}
	return orderByIDs(pins, ids), nil
}

func (s *BoardService) PinsByUserBoards(ctx context.Context, viewerID, userID string) ([]ports.BoardWithPins, error) {
	boards, err := s.BoardsByUser(ctx, viewerID, userID)
	if err != nil {
		return nil, err
	}
	out := make([]ports.BoardWithPins, 0, len(boards))
	for _, b := range boards {
		pins, err := s.PinsOnBoard(ctx, viewerID, b)
		if err != nil {
			return nil, err
		}
		out = append(out, ports.BoardWithPins{Board: b, Pins: pins})
	}
	return out, nil
}

func (s *BoardService) ensureTitleFree(ctx context.Context, userID, title, exceptID string) error {
	existing, err := s.repos.Boards.FindByTitle(ctx, userID, title)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return nil
	case err != nil:
		return err
	case exceptID != "" && domain.SameID(existing.ID, exceptID):
		return nil
	default:
		return domain.ErrBoardTitleTaken
	}
}

func normalizeBoardTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", domain.Invalid("board title is required")
	}
	if len(title) > domain.MaxBoardTitle {
		return "", domain.Invalid("board title must be at most %d characters", domain.MaxBoardTitle)
	}
	return title, nil
}

// orderByIDs arranges pins in the order of ids, dropping ids without a pin.
func orderByIDs(pins []*domain.Pin, ids []string) []*domain.Pin {
	byID := make(map[string]*domain.Pin, len(pins))
	for _, p := range pins {
		byID[strings.ToLower(p.ID)] = p
	}
	out := make([]*domain.Pin, 0, len(pins))
	for _, id := range ids {
		if p, ok := byID[strings.ToLower(strings.TrimSpace(id))]; ok {
			out = append(out, p)
		}
	}
	return out
}
