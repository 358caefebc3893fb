package ports

import (
	"context"

	"github.com/hyceate/moody-sub000/internal/core/domain"
)

// CreateBoardInput carries a new board's attributes.
type CreateBoardInput struct {
	ActorID     string
	Title       string
	Description string
	IsPrivate   bool
}

// UpdateBoardInput carries a board patch; nil fields are untouched.
type UpdateBoardInput struct {
	ActorID     string
	BoardID     string
	Title       *string
	Description *string
	IsPrivate   *bool
}

// BoardWithPins is a board together with the member pins its viewer may see,
// most recently saved first.
type BoardWithPins struct {
	Board *domain.Board
	Pins  []*domain.Pin
}

// BoardDeletion summarises a completed board deletion cascade.
type BoardDeletion struct {
	BoardID      string
	DetachedPins int // pins whose membership list lost the board
	PurgedPins   int // pins deleted because they were left private and boardless
}

// BoardService defines use-case operations for boards.
type BoardService interface {
	CreateBoard(ctx context.Context, input CreateBoardInput) (*domain.Board, error)
	UpdateBoard(ctx context.Context, input UpdateBoardInput) (*domain.Board, error)
	// DeleteBoard runs the board deletion cascade.
	DeleteBoard(ctx context.Context, actorID, boardID string) (*BoardDeletion, error)
	GetBoard(ctx context.Context, viewerID, boardID string) (*domain.Board, error)
	BoardsByUser(ctx context.Context, viewerID, userID string) ([]*domain.Board, error)
	// PinsOnBoard returns the board's pins visible to viewerID.
	PinsOnBoard(ctx context.Context, viewerID string, board *domain.Board) ([]*domain.Pin, error)
	PinsByUserBoards(ctx context.Context, viewerID, userID string) ([]BoardWithPins, error)
}
