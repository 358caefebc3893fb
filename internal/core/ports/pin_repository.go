package ports

import (
	"context"

	"github.com/hyceate/moody-sub000/internal/core/domain"
)

// PinFilter carries all query parameters for listing pins.
type PinFilter struct {
	UserID     string   // optional: owner
	BoardID    string   // optional: pins holding a membership for this board
	IDs        []string // optional: restrict to these ids
	Search     string   // optional: case-insensitive match on title or description
	Tags       []string // optional: pins carrying any of these tags
	Visibility domain.Visibility
	Offset     int
	Limit      int // 0 = no limit
}

// PinRepository defines persistence operations for pins and the pin side of
// memberships.
type PinRepository interface {
	Create(ctx context.Context, p *domain.Pin) (*domain.Pin, error)
	Restore(ctx context.Context, p *domain.Pin) error
	FindByID(ctx context.Context, id string, vis domain.Visibility) (*domain.Pin, error)
	// List returns matching pins, newest first.
	List(ctx context.Context, filter PinFilter) ([]*domain.Pin, error)
	Update(ctx context.Context, id string, patch domain.PinPatch) (*domain.Pin, error)
	SetPrivate(ctx context.Context, id string, private bool) error
	Delete(ctx context.Context, id string) error

	// AddBoard appends m unless the pin already holds a membership for the board.
	AddBoard(ctx context.Context, pinID string, m domain.Membership) (added bool, err error)
	// RemoveBoard pulls the membership and reports how many remain.
	RemoveBoard(ctx context.Context, pinID, boardID string) (removed bool, remaining int, err error)
	AddComment(ctx context.Context, pinID, commentID string) error
	RemoveComment(ctx context.Context, pinID, commentID string) error
}
