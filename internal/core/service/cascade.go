package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/hyceate/moody-sub000/internal/core/domain"
	"github.com/hyceate/moody-sub000/internal/core/ports"
	"github.com/hyceate/moody-sub000/internal/pkg/metrics"
)

// Pin deletion reasons, used as metric labels.
const (
	reasonExplicit = "explicit"
	reasonBoard    = "board_cascade"
	reasonAccount  = "account"
)

// Cascade keeps references consistent when boards and pins are deleted.
type Cascade struct {
	repos  Repositories
	images ports.ImageRemover
	locker ports.Locker
	log    zerolog.Logger
}

func NewCascade(repos Repositories, images ports.ImageRemover, locker ports.Locker, log zerolog.Logger) *Cascade {
	return &Cascade{repos: repos, images: images, locker: locker, log: log}
}

// DeletePin removes the pin from every board, deletes its comments and record,
// then deletes the stored image on a best-effort basis.
func (c *Cascade) DeletePin(ctx context.Context, pinID, reason string) error {
	unlock, err := c.locker.Lock(ctx, pinLockKey(pinID))
	if err != nil {
		return err
	}
	defer unlock()

	pin, err := c.repos.Pins.FindByID(ctx, pinID, domain.Unrestricted)
	if err != nil {
		return err
	}

	sg := newSaga("delete_pin", c.log)
	if err := c.pinDeletionSteps(ctx, sg, pin, func() bool { return true }); err != nil {
		return err
	}
	if err := c.repos.Tx.WithTransaction(ctx, sg.run); err != nil {
		return err
	}

	c.removeImage(ctx, pin)
	metrics.PinsDeletedTotal.WithLabelValues(reason).Inc()
	c.log.Info().Str("pin_id", pin.ID).Str("reason", reason).Msg("pin deleted")
	return nil
}

// DeleteBoard runs the board deletion cascade for actorID, who must own the
// board. Every member pin loses its membership; a pin owned by the deleting
// user that is left with no board and is private is purged entirely.
func (c *Cascade) DeleteBoard(ctx context.Context, actorID, boardID string) (*ports.BoardDeletion, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}
	board, err := c.repos.Boards.FindByID(ctx, boardID, domain.Unrestricted)
	if err != nil {
		return nil, err
	}
	if err := requireOwner(actorID, board.UserID); err != nil {
		return nil, err
	}
	return c.deleteBoard(ctx, board, actorID)
}

func (c *Cascade) deleteBoard(ctx context.Context, board *domain.Board, deleterID string) (*ports.BoardDeletion, error) {
	members, err := c.repos.Pins.List(ctx, ports.PinFilter{BoardID: board.ID, Visibility: domain.Unrestricted})
	if err != nil {
		return nil, err
	}

	result := &ports.BoardDeletion{BoardID: board.ID}
	sg := newSaga("delete_board", c.log)
	var purged []*domain.Pin
	orphaned := make(map[string]bool, len(members))

	for _, pin := range members {
		pin := pin
		membership, _ := pin.Membership(board.ID)
		sg.add("detach pin "+pin.ID,
			func(ctx context.Context) error {
				removed, remaining, err := c.repos.Pins.RemoveBoard(ctx, pin.ID, board.ID)
				if err != nil {
					return err
				}
				if removed {
					result.DetachedPins++
				}
				orphaned[pin.ID] = remaining == 0
				return nil
			},
			func(ctx context.Context) error {
				_, err := c.repos.Pins.AddBoard(ctx, pin.ID, membership)
				return err
			},
		)

		if !purgeCandidate(pin, board.ID, deleterID) {
			continue
		}
		purged = append(purged, pin)
		if err := c.pinDeletionSteps(ctx, sg, pin, func() bool { return orphaned[pin.ID] }); err != nil {
			return nil, err
		}
	}

	sg.add("delete board record",
		func(ctx context.Context) error { return c.repos.Boards.Delete(ctx, board.ID) },
		func(ctx context.Context) error { return c.repos.Boards.Restore(ctx, board) },
	)

	if err := c.repos.Tx.WithTransaction(ctx, sg.run); err != nil {
		return nil, err
	}

	for _, pin := range purged {
		if !orphaned[pin.ID] {
			continue
		}
		result.PurgedPins++
		c.removeImage(ctx, pin)
		metrics.PinsDeletedTotal.WithLabelValues(reasonBoard).Inc()
	}
	metrics.BoardsDeletedTotal.Inc()

	c.log.Info().
		Str("board_id", board.ID).
		Int("detached", result.DetachedPins).
		Int("purged", result.PurgedPins).
		Msg("board deleted")

	return result, nil
}

// purgeCandidate applies the cascade rule to the pre-image: the pin belongs to
// the deleting user, is private, and the deleted board is its only membership.
func purgeCandidate(pin *domain.Pin, boardID, deleterID string) bool {
	if !domain.SameID(pin.UserID, deleterID) || !pin.IsPrivate {
		return false
	}
	for _, m := range pin.Boards {
		if !domain.SameID(m.BoardID, boardID) {
			return false
		}
	}
	return true
}

// pinDeletionSteps appends the pin deletion procedure to sg. The pre-images
// of the boards and comments are loaded now so every step can be reverted.
func (c *Cascade) pinDeletionSteps(ctx context.Context, sg *saga, pin *domain.Pin, cond func() bool) error {
	boards, err := c.repos.Boards.List(ctx, ports.BoardFilter{PinID: pin.ID, Visibility: domain.Unrestricted})
	if err != nil {
		return fmt.Errorf("load boards of pin %s: %w", pin.ID, err)
	}
	comments, err := c.repos.Comments.ListByPin(ctx, pin.ID)
	if err != nil {
		return fmt.Errorf("load comments of pin %s: %w", pin.ID, err)
	}

	sg.addWhen("pull pin "+pin.ID+" from boards", cond,
		func(ctx context.Context) error {
			_, err := c.repos.Boards.RemovePinEverywhere(ctx, pin.ID)
			return err
		},
		func(ctx context.Context) error {
			for _, b := range boards {
				ref, ok := b.PinRef(pin.ID)
				if !ok {
					continue
				}
				if _, err := c.repos.Boards.AddPin(ctx, b.ID, ref); err != nil {
					return err
				}
			}
			return nil
		},
	)
	sg.addWhen("delete comments of pin "+pin.ID, cond,
		func(ctx context.Context) error {
			_, err := c.repos.Comments.DeleteByPin(ctx, pin.ID)
			return err
		},
		func(ctx context.Context) error { return c.repos.Comments.RestoreMany(ctx, comments) },
	)
	sg.addWhen("delete pin record "+pin.ID, cond,
		func(ctx context.Context) error { return c.repos.Pins.Delete(ctx, pin.ID) },
		func(ctx context.Context) error { return c.repos.Pins.Restore(ctx, pin) },
	)
	return nil
}

// removeImage deletes the stored image. The record deletion is authoritative,
// so a failure here is only logged.
func (c *Cascade) removeImage(ctx context.Context, pin *domain.Pin) {
	if pin.ImagePath == "" {
		return
	}
	if err := c.images.Delete(ctx, pin.ImagePath); err != nil {
		metrics.ImageDeleteErrorsTotal.Inc()
		c.log.Warn().Err(err).
			Str("pin_id", pin.ID).
			Str("image", pin.ImagePath).
			Msg("failed to delete pin image")
	}
}
