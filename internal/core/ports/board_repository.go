package ports

import (
	"context"

	"github.com/hyceate/moody-sub000/internal/core/domain"
)

// BoardFilter narrows a board listing. Visibility is always applied by the
// store query itself.
type BoardFilter struct {
	UserID     string // optional: owner
	PinID      string // optional: boards referencing this pin
	Visibility domain.Visibility
}

// BoardRepository defines persistence operations for boards and the board side
// of memberships.
type BoardRepository interface {
	Create(ctx context.Context, b *domain.Board) (*domain.Board, error)
	// Restore re-inserts a previously deleted board with its original id.
	Restore(ctx context.Context, b *domain.Board) error
	FindByID(ctx context.Context, id string, vis domain.Visibility) (*domain.Board, error)
	// FindByTitle looks up the board of userID carrying exactly title.
	FindByTitle(ctx context.Context, userID, title string) (*domain.Board, error)
	List(ctx context.Context, filter BoardFilter) ([]*domain.Board, error)
	Update(ctx context.Context, id string, patch domain.BoardPatch) (*domain.Board, error)
	Delete(ctx context.Context, id string) error

	// AddPin appends ref unless the board already references the pin. The
	// check and the append are one conditional write.
	AddPin(ctx context.Context, boardID string, ref domain.BoardPin) (added bool, err error)
	// RemovePin pulls the pin reference; absent references are not an error.
	RemovePin(ctx context.Context, boardID, pinID string) (removed bool, err error)
	// RemovePinEverywhere pulls the pin from every board referencing it.
	RemovePinEverywhere(ctx context.Context, pinID string) (int64, error)
}
