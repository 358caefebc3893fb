package service

import (
	"testing"

	"github.com/hyceate/moody-sub000/internal/core/domain"
)

func TestRequireOwner(t *testing.T) {
	cases := []struct {
		name    string
		actor   string
		owner   string
		wantErr error
	}{
		{"owner", "64b7f0c2a1e4d3b2c1a09f8e", "64b7f0c2a1e4d3b2c1a09f8e", nil},
		{"normalized owner", " 64B7F0C2A1E4D3B2C1A09F8E", "64b7f0c2a1e4d3b2c1a09f8e", nil},
		{"stranger", "64b7f0c2a1e4d3b2c1a09f8f", "64b7f0c2a1e4d3b2c1a09f8e", domain.ErrForbidden},
		{"anonymous", "", "64b7f0c2a1e4d3b2c1a09f8e", domain.ErrUnauthenticated},
		{"blank session", "   ", "64b7f0c2a1e4d3b2c1a09f8e", domain.ErrUnauthenticated},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := requireOwner(tc.actor, tc.owner); err != tc.wantErr {
				t.Fatalf("requireOwner(%q, %q) = %v, want %v", tc.actor, tc.owner, err, tc.wantErr)
			}
		})
	}
}
