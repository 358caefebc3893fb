package ports

import (
	"context"

	"github.com/hyceate/moody-sub000/internal/core/domain"
)

// CreatePinInput carries a new pin's attributes. ImagePath must reference an
// image already stored under the actor's upload prefix.
type CreatePinInput struct {
	ActorID     string
	Title       string
	Description string
	Link        string
	Tags        []string
	ImagePath   string
	ImageWidth  int
	ImageHeight int
	BoardID     string // optional: board to save the new pin to
}

// UpdatePinInput carries an owner edit. When NewBoardID is set the pin is
// moved from CurrentBoardID (optional) to NewBoardID.
type UpdatePinInput struct {
	ActorID        string
	PinID          string
	Title          *string
	Description    *string
	Link           *string
	Tags           *[]string
	CurrentBoardID string
	NewBoardID     string
}

// ListPinsInput carries feed parameters.
type ListPinsInput struct {
	ViewerID string
	Search   string
	Tags     []string
	Limit    int
	Offset   int
}

// PinService defines use-case operations for pins and memberships.
type PinService interface {
	CreatePin(ctx context.Context, input CreatePinInput) (*domain.Pin, error)
	UpdatePin(ctx context.Context, input UpdatePinInput) (*domain.Pin, error)
	DeletePin(ctx context.Context, actorID, pinID string) error
	GetPin(ctx context.Context, viewerID, pinID string) (*domain.Pin, error)
	ListPins(ctx context.Context, input ListPinsInput) ([]*domain.Pin, error)
	PinsByUser(ctx context.Context, viewerID, userID string) ([]*domain.Pin, error)
	SavePinToBoard(ctx context.Context, actorID, pinID, boardID string) (*domain.Pin, error)
	// DeletePinFromBoard removes the membership and reports whether the pin is
	// left without boards.
	DeletePinFromBoard(ctx context.Context, actorID, pinID, boardID string) (*domain.Pin, bool, error)
	ImageURL(path string) string
}
