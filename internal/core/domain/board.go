package domain

import "time"

// BoardPin is the board side of a membership: a pin reference stamped with the
// time it was saved. Board.Pins keeps insertion order.
type BoardPin struct {
	PinID   string    `json:"pin"`
	SavedAt time.Time `json:"saved_at"`
}

// Board is a titled collection of pins owned by one user.
type Board struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	IsPrivate   bool       `json:"is_private"`
	Pins        []BoardPin `json:"pins"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// PinCount is always derived from the live pin list; it is never stored.
func (b *Board) PinCount() int {
	return len(b.Pins)
}

// HasPin reports whether pinID is referenced by the board.
func (b *Board) HasPin(pinID string) bool {
	for _, ref := range b.Pins {
		if SameID(ref.PinID, pinID) {
			return true
		}
	}
	return false
}

// PinRef returns the reference for pinID, if present.
func (b *Board) PinRef(pinID string) (BoardPin, bool) {
	for _, ref := range b.Pins {
		if SameID(ref.PinID, pinID) {
			return ref, true
		}
	}
	return BoardPin{}, false
}

// PinIDs returns member pin ids, most recently saved first.
func (b *Board) PinIDs() []string {
	ids := make([]string, 0, len(b.Pins))
	for i := len(b.Pins) - 1; i >= 0; i-- {
		ids = append(ids, b.Pins[i].PinID)
	}
	return ids
}

// BoardPatch carries the mutable board attributes; nil fields are untouched.
type BoardPatch struct {
	Title       *string
	Description *string
	IsPrivate   *bool
}

// Empty reports whether the patch changes nothing.
func (p BoardPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.IsPrivate == nil
}
