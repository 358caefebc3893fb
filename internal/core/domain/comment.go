package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Comment is a text reply on exactly one pin.
type Comment struct {
	ID        string    `json:"id"`
	PinID     string    `json:"pin"`
	UserID    string    `json:"user"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Validation limits shared by the service layer and the API boundary.
const (
	MaxBoardTitle       = 50
	MaxDescription      = 500
	MaxPinTitle         = 100
	MaxImageDimension   = 16384
	MaxTags             = 20
	MaxTagLength        = 30
	MaxCommentLength    = 500
	MinPasswordLength   = 8
	DefaultFeedPageSize = 30
	MaxFeedPageSize     = 100
)

// NormalizeCommentText trims the text and enforces the comment length rules.
func NormalizeCommentText(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", Invalid("comment text is required")
	}
	if utf8.RuneCountInString(text) > MaxCommentLength {
		return "", Invalid("comment must be at most %d characters", MaxCommentLength)
	}
	return text, nil
}

// NormalizeTags trims, lower-cases and de-duplicates tags, dropping empties.
func NormalizeTags(tags []string) ([]string, error) {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if utf8.RuneCountInString(t) > MaxTagLength {
			return nil, Invalid("tag %q must be at most %d characters", t, MaxTagLength)
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	if len(out) > MaxTags {
		return nil, Invalid("a pin can carry at most %d tags", MaxTags)
	}
	return out, nil
}
