package domain

import "time"

// Membership is the pin side of the pin/board relation.
type Membership struct {
	BoardID string    `json:"board"`
	SavedAt time.Time `json:"saved_at"`
}

// Pin is an image post. IsPrivate is a cached value owned by the membership
// service: it is set at creation from the target board and refreshed only when
// a pin is moved between boards.
type Pin struct {
	ID          string       `json:"id"`
	UserID      string       `json:"user"`
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	ImagePath   string       `json:"image_path"`
	ImageWidth  int          `json:"image_width"`
	ImageHeight int          `json:"image_height"`
	Link        string       `json:"link,omitempty"`
	Tags        []string     `json:"tags"`
	IsPrivate   bool         `json:"is_private"`
	Comments    []string     `json:"comments"`
	Boards      []Membership `json:"boards"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// InBoard reports whether the pin holds a membership for boardID.
func (p *Pin) InBoard(boardID string) bool {
	_, ok := p.Membership(boardID)
	return ok
}

// Membership returns the membership record for boardID, if present.
func (p *Pin) Membership(boardID string) (Membership, bool) {
	for _, m := range p.Boards {
		if SameID(m.BoardID, boardID) {
			return m, true
		}
	}
	return Membership{}, false
}

// PinPatch carries the owner-editable pin attributes; nil fields are untouched.
type PinPatch struct {
	Title       *string
	Description *string
	Link        *string
	Tags        *[]string
}

func (p PinPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Link == nil && p.Tags == nil
}

// ValidateImageSize requires positive pixel dimensions within MaxImageDimension.
func ValidateImageSize(width, height int) error {
	if width <= 0 || height <= 0 {
		return Invalid("image width and height must be positive")
	}
	if width > MaxImageDimension || height > MaxImageDimension {
		return Invalid("image dimensions must be at most %d pixels", MaxImageDimension)
	}
	return nil
}
