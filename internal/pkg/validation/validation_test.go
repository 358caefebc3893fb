package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/hyceate/moody-sub000/internal/core/domain"
)

type sample struct {
	Name   string `json:"name"   validate:"required,max=5"`
	Email  string `json:"email"  validate:"omitempty,email"`
	Link   string `json:"link"   validate:"omitempty,url"`
	Width  int    `json:"width"  validate:"gt=0"`
	Limit  int    `json:"limit"  validate:"gte=0,lte=100"`
	Hidden string `json:"-"      validate:"omitempty,min=2"`
}

func TestValidate_Valid(t *testing.T) {
	v := New()
	if err := v.Validate(&sample{Name: "ok", Width: 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_Messages(t *testing.T) {
	tests := []struct {
		name string
		in   sample
		want string
	}{
		{"required", sample{Width: 1}, "name is required"},
		{"max", sample{Name: "toolong", Width: 1}, "name must be at most 5"},
		{"email", sample{Name: "a", Email: "nope", Width: 1}, "email must be a valid email"},
		{"url", sample{Name: "a", Link: "nope", Width: 1}, "link must be a valid URL"},
		{"gt", sample{Name: "a"}, "width must be greater than 0"},
		{"lte", sample{Name: "a", Width: 1, Limit: 101}, "limit must be at most 100"},
		{"untagged field name", sample{Name: "a", Width: 1, Hidden: "x"}, "Hidden must be at least 2"},
	}
	v := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := tt.in
			err := v.Validate(&in)
			if !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected %q in %q", tt.want, err.Error())
			}
		})
	}
}
