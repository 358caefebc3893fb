package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/hyceate/moody-sub000/internal/core/domain"
	"github.com/hyceate/moody-sub000/internal/core/ports"
	"github.com/hyceate/moody-sub000/internal/pkg/metrics"
)

// Repositories groups the entity store collaborators shared by the services.
type Repositories struct {
	Users    ports.UserRepository
	Boards   ports.BoardRepository
	Pins     ports.PinRepository
	Comments ports.CommentRepository
	Tx       ports.Transactor
}

// Membership keeps both sides of the pin/board relation in sync. Every
// mutation holds the pin's lock and runs as a saga, so a failed second write
// reverts the first.
type Membership struct {
	repos  Repositories
	locker ports.Locker
	now    func() time.Time
	log    zerolog.Logger
}

func NewMembership(repos Repositories, locker ports.Locker, log zerolog.Logger) *Membership {
	return &Membership{
		repos:  repos,
		locker: locker,
		now:    func() time.Time { return time.Now().UTC() },
		log:    log,
	}
}

func pinLockKey(pinID string) string { return "lock:pin:" + pinID }

// SaveToBoard adds pinID to boardID on behalf of actorID, who must own the
// board and be able to see the pin. Saving an existing membership is a no-op.
func (m *Membership) SaveToBoard(ctx context.Context, actorID, pinID, boardID string) (*domain.Pin, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}
	board, err := m.repos.Boards.FindByID(ctx, boardID, domain.Unrestricted)
	if err != nil {
		return nil, err
	}
	if _, err := m.repos.Pins.FindByID(ctx, pinID, domain.VisibleTo(actorID)); err != nil {
		return nil, err
	}
	if err := requireOwner(actorID, board.UserID); err != nil {
		return nil, err
	}

	unlock, err := m.locker.Lock(ctx, pinLockKey(pinID))
	if err != nil {
		return nil, err
	}
	defer unlock()

	sg := newSaga("save_to_board", m.log)
	m.saveSteps(sg, pinID, board.ID)
	if err := m.repos.Tx.WithTransaction(ctx, sg.run); err != nil {
		return nil, err
	}
	metrics.MembershipChangesTotal.WithLabelValues("save").Inc()

	return m.repos.Pins.FindByID(ctx, pinID, domain.Unrestricted)
}

// RemoveFromBoard pulls the membership from both sides. It is idempotent and
// reports whether the pin is left without any board.
func (m *Membership) RemoveFromBoard(ctx context.Context, pinID, boardID string) (bool, error) {
	unlock, err := m.locker.Lock(ctx, pinLockKey(pinID))
	if err != nil {
		return false, err
	}
	defer unlock()

	return m.removeLocked(ctx, pinID, boardID)
}

func (m *Membership) removeLocked(ctx context.Context, pinID, boardID string) (bool, error) {
	pin, err := m.repos.Pins.FindByID(ctx, pinID, domain.Unrestricted)
	if err != nil {
		return false, err
	}
	board, err := m.findBoardIfExists(ctx, boardID)
	if err != nil {
		return false, err
	}

	var remaining int
	sg := newSaga("remove_from_board", m.log)
	m.removeSteps(sg, pin, board, boardID, &remaining)
	if err := m.repos.Tx.WithTransaction(ctx, sg.run); err != nil {
		return false, err
	}
	metrics.MembershipChangesTotal.WithLabelValues("remove").Inc()
	return remaining == 0, nil
}

// MoveBoard moves the pin from fromBoardID (optional) to toBoardID and
// refreshes the pin's cached privacy from the destination board.
func (m *Membership) MoveBoard(ctx context.Context, actorID, pinID, fromBoardID, toBoardID string) (*domain.Pin, error) {
	return m.EditAndMove(ctx, actorID, pinID, domain.PinPatch{}, fromBoardID, toBoardID)
}

// EditAndMove applies edit and moves the pin in one saga. Every board is
// authorized before anything is written, and a failed move reverts the edit.
func (m *Membership) EditAndMove(ctx context.Context, actorID, pinID string, edit domain.PinPatch, fromBoardID, toBoardID string) (*domain.Pin, error) {
	if err := requireActor(actorID); err != nil {
		return nil, err
	}
	pin, err := m.repos.Pins.FindByID(ctx, pinID, domain.Unrestricted)
	if err != nil {
		return nil, err
	}
	if err := requireOwner(actorID, pin.UserID); err != nil {
		return nil, err
	}
	to, err := m.repos.Boards.FindByID(ctx, toBoardID, domain.Unrestricted)
	if err != nil {
		return nil, err
	}
	if err := requireOwner(actorID, to.UserID); err != nil {
		return nil, err
	}
	var from *domain.Board
	if fromBoardID != "" && !domain.SameID(fromBoardID, toBoardID) {
		if from, err = m.findBoardIfExists(ctx, fromBoardID); err != nil {
			return nil, err
		}
		if from != nil {
			if err := requireOwner(actorID, from.UserID); err != nil {
				return nil, err
			}
		}
	}

	unlock, err := m.locker.Lock(ctx, pinLockKey(pinID))
	if err != nil {
		return nil, err
	}
	defer unlock()

	// Re-read under the lock so compensations restore the current state.
	if pin, err = m.repos.Pins.FindByID(ctx, pinID, domain.Unrestricted); err != nil {
		return nil, err
	}

	var remaining int
	sg := newSaga("move_board", m.log)
	if !edit.Empty() {
		previous := revertPatch(pin, edit)
		sg.add("apply pin edit",
			func(ctx context.Context) error {
				_, err := m.repos.Pins.Update(ctx, pin.ID, edit)
				return err
			},
			func(ctx context.Context) error {
				_, err := m.repos.Pins.Update(ctx, pin.ID, previous)
				return err
			},
		)
	}
	if fromBoardID != "" && !domain.SameID(fromBoardID, toBoardID) {
		m.removeSteps(sg, pin, from, fromBoardID, &remaining)
	}
	m.saveSteps(sg, pin.ID, to.ID)
	wasPrivate := pin.IsPrivate
	sg.add("refresh pin privacy",
		func(ctx context.Context) error { return m.repos.Pins.SetPrivate(ctx, pin.ID, to.IsPrivate) },
		func(ctx context.Context) error { return m.repos.Pins.SetPrivate(ctx, pin.ID, wasPrivate) },
	)
	if err := m.repos.Tx.WithTransaction(ctx, sg.run); err != nil {
		return nil, err
	}
	metrics.MembershipChangesTotal.WithLabelValues("move").Inc()

	m.log.Info().
		Str("pin_id", pin.ID).
		Str("from_board", fromBoardID).
		Str("to_board", to.ID).
		Bool("is_private", to.IsPrivate).
		Msg("pin moved")

	return m.repos.Pins.FindByID(ctx, pin.ID, domain.Unrestricted)
}

// saveSteps appends the two guarded pushes of a save. Each undo only reverts a
// push that actually happened.
func (m *Membership) saveSteps(sg *saga, pinID, boardID string) {
	savedAt := m.now()
	var pinAdded, boardAdded bool
	sg.add("add membership to pin",
		func(ctx context.Context) (err error) {
			pinAdded, err = m.repos.Pins.AddBoard(ctx, pinID, domain.Membership{BoardID: boardID, SavedAt: savedAt})
			return err
		},
		func(ctx context.Context) error {
			if !pinAdded {
				return nil
			}
			_, _, err := m.repos.Pins.RemoveBoard(ctx, pinID, boardID)
			return err
		},
	)
	sg.add("add pin to board",
		func(ctx context.Context) (err error) {
			boardAdded, err = m.repos.Boards.AddPin(ctx, boardID, domain.BoardPin{PinID: pinID, SavedAt: savedAt})
			return err
		},
		func(ctx context.Context) error {
			if !boardAdded {
				return nil
			}
			_, err := m.repos.Boards.RemovePin(ctx, boardID, pinID)
			return err
		},
	)
}

// removeSteps appends the two pulls of a removal. pin and board are the
// pre-images used by the compensations; board may be nil when it no longer
// exists.
func (m *Membership) removeSteps(sg *saga, pin *domain.Pin, board *domain.Board, boardID string, remaining *int) {
	membership, hadMembership := pin.Membership(boardID)
	var pinRemoved, boardRemoved bool
	sg.add("remove membership from pin",
		func(ctx context.Context) (err error) {
			pinRemoved, *remaining, err = m.repos.Pins.RemoveBoard(ctx, pin.ID, boardID)
			return err
		},
		func(ctx context.Context) error {
			if !pinRemoved || !hadMembership {
				return nil
			}
			_, err := m.repos.Pins.AddBoard(ctx, pin.ID, membership)
			return err
		},
	)
	if board == nil {
		return
	}
	ref, hadRef := board.PinRef(pin.ID)
	sg.add("remove pin from board",
		func(ctx context.Context) (err error) {
			boardRemoved, err = m.repos.Boards.RemovePin(ctx, board.ID, pin.ID)
			return err
		},
		func(ctx context.Context) error {
			if !boardRemoved || !hadRef {
				return nil
			}
			_, err := m.repos.Boards.AddPin(ctx, board.ID, ref)
			return err
		},
	)
}

func (m *Membership) findBoardIfExists(ctx context.Context, boardID string) (*domain.Board, error) {
	board, err := m.repos.Boards.FindByID(ctx, boardID, domain.Unrestricted)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	return board, err
}

// revertPatch captures pin's current values for every field edit touches.
func revertPatch(pin *domain.Pin, edit domain.PinPatch) domain.PinPatch {
	var prev domain.PinPatch
	if edit.Title != nil {
		title := pin.Title
		prev.Title = &title
	}
	if edit.Description != nil {
		desc := pin.Description
		prev.Description = &desc
	}
	if edit.Link != nil {
		link := pin.Link
		prev.Link = &link
	}
	if edit.Tags != nil {
		tags := append([]string{}, pin.Tags...)
		prev.Tags = &tags
	}
	return prev
}
