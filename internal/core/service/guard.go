package service

import (
	"strings"

	"github.com/hyceate/moody-sub000/internal/core/domain"
)

// requireActor fails with ErrUnauthenticated when there is no session identity.
func requireActor(actorID string) error {
	if strings.TrimSpace(actorID) == "" {
		return domain.ErrUnauthenticated
	}
	return nil
}

// requireOwner checks the acting user against a resource owner. A missing
// identity is ErrUnauthenticated, a mismatch ErrForbidden.
func requireOwner(actorID, ownerID string) error {
	if err := requireActor(actorID); err != nil {
		return err
	}
	if !domain.SameID(actorID, ownerID) {
		return domain.ErrForbidden
	}
	return nil
}
