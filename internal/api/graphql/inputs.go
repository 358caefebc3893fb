package graphql

import (
	"bytes"
	"encoding/json"

	"github.com/hyceate/moody-sub000/internal/core/domain"
	"github.com/hyceate/moody-sub000/internal/pkg/validation"
)

// Inputs are closed structs: arguments are decoded with unknown fields
// rejected and validated before any service call.

type createBoardInput struct {
	Title       string `json:"title"       validate:"required,max=50"`
	Description string `json:"description" validate:"max=500"`
	IsPrivate   bool   `json:"isPrivate"`
}

type updateBoardInput struct {
	ID          string  `json:"id"          validate:"required"`
	Title       *string `json:"title"       validate:"omitempty,max=50"`
	Description *string `json:"description" validate:"omitempty,max=500"`
	IsPrivate   *bool   `json:"isPrivate"`
}

type createPinInput struct {
	Title       string   `json:"title"       validate:"max=100"`
	Description string   `json:"description" validate:"max=500"`
	Link        string   `json:"link"        validate:"omitempty,url,max=2048"`
	Tags        []string `json:"tags"        validate:"max=20"`
	ImagePath   string   `json:"imagePath"   validate:"required"`
	ImageWidth  int      `json:"imageWidth"  validate:"gt=0"`
	ImageHeight int      `json:"imageHeight" validate:"gt=0"`
	BoardID     string   `json:"boardId"`
}

type updatePinInput struct {
	ID             string    `json:"id"             validate:"required"`
	Title          *string   `json:"title"          validate:"omitempty,max=100"`
	Description    *string   `json:"description"    validate:"omitempty,max=500"`
	Link           *string   `json:"link"           validate:"omitempty,url,max=2048"`
	Tags           *[]string `json:"tags"           validate:"omitempty,max=20"`
	CurrentBoardID string    `json:"currentBoardId"`
	NewBoardID     string    `json:"newBoardId"`
}

type pinFilterInput struct {
	Search string   `json:"search" validate:"max=100"`
	Tags   []string `json:"tags"   validate:"max=20"`
	Limit  int      `json:"limit"  validate:"gte=0,lte=100"`
	Offset int      `json:"offset" validate:"gte=0"`
}

type addCommentInput struct {
	PinID string `json:"pinId" validate:"required"`
	Text  string `json:"text"  validate:"required,max=500"`
}

type deleteCommentInput struct {
	PinID     string `json:"pinId"     validate:"required"`
	CommentID string `json:"commentId" validate:"required"`
}

var validate = validation.New()

// decodeInput converts a GraphQL argument map into dst and validates it.
func decodeInput(arg interface{}, dst interface{}) error {
	if arg == nil {
		return domain.Invalid("input is required")
	}
	raw, err := json.Marshal(arg)
	if err != nil {
		return domain.Invalid("malformed input")
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return domain.Invalid("malformed input: %v", err)
	}
	return validate.Validate(dst)
}
