package service

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/hyceate/moody-sub000/internal/core/domain"
	"github.com/hyceate/moody-sub000/internal/core/ports"
)

func TestCreatePin_WithoutBoardIsPublicAndUnattached(t *testing.T) {
	f := newFixture(t)
	u1 := f.register(t, "u1")

	p := f.pin(t, u1, "")
	if p.IsPrivate {
		t.Errorf("expected public pin")
	}
	if len(p.Boards) != 0 {
		t.Errorf("expected no memberships, got %v", p.Boards)
	}
}

func TestCreatePin_OnPrivateBoardInheritsPrivacy(t *testing.T) {
	f := newFixture(t)
	u1 := f.register(t, "u1")
	b1 := f.board(t, u1, "B1", true)

	p := f.pin(t, u1, b1.ID)
	if !p.IsPrivate {
		t.Errorf("expected private pin")
	}
	if len(p.Boards) != 1 || p.Boards[0].BoardID != b1.ID {
		t.Fatalf("unexpected memberships: %v", p.Boards)
	}
	if !f.findBoard(t, b1.ID).HasPin(p.ID) {
		t.Errorf("board must list the pin")
	}
	assertBidirectional(t, f.store.Snapshot())
}

func TestUpdatePin_MoveToPublicBoard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u1 := f.register(t, "u1")
	b1 := f.board(t, u1, "B1", true)
	b2 := f.board(t, u1, "B2", false)
	p := f.pin(t, u1, b1.ID)

	moved, err := f.pins.UpdatePin(ctx, ports.UpdatePinInput{
		ActorID:        u1.ID,
		PinID:          p.ID,
		CurrentBoardID: b1.ID,
		NewBoardID:     b2.ID,
	})
	if err != nil {
		t.Fatalf("UpdatePin: %v", err)
	}
	if moved.IsPrivate {
		t.Errorf("moved pin must take the public board's privacy")
	}
	if len(moved.Boards) != 1 || moved.Boards[0].BoardID != b2.ID {
		t.Errorf("unexpected memberships: %v", moved.Boards)
	}
	if f.findBoard(t, b1.ID).HasPin(p.ID) {
		t.Errorf("B1 must no longer list the pin")
	}
	if !f.findBoard(t, b2.ID).HasPin(p.ID) {
		t.Errorf("B2 must list the pin")
	}
	assertBidirectional(t, f.store.Snapshot())
}

func TestSaveToBoard_IsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u1 := f.register(t, "u1")
	b1 := f.board(t, u1, "B1", false)
	p := f.pin(t, u1, "")

	for i := 0; i < 2; i++ {
		if _, err := f.membership.SaveToBoard(ctx, u1.ID, p.ID, b1.ID); err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}
	if got := len(f.findPin(t, p.ID).Boards); got != 1 {
		t.Errorf("expected one membership, got %d", got)
	}
	if got := f.findBoard(t, b1.ID).PinCount(); got != 1 {
		t.Errorf("expected pin count 1, got %d", got)
	}
}

func TestSaveToBoard_ConcurrentSavesLeaveOneMembership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u1 := f.register(t, "u1")
	b1 := f.board(t, u1, "B1", false)
	p := f.pin(t, u1, "")

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.pins.SavePinToBoard(ctx, u1.ID, p.ID, b1.ID)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent save failed: %v", err)
		}
	}

	if got := len(f.findPin(t, p.ID).Boards); got != 1 {
		t.Errorf("expected exactly one membership, got %d", got)
	}
	if got := f.findBoard(t, b1.ID).PinCount(); got != 1 {
		t.Errorf("expected exactly one board reference, got %d", got)
	}
	assertBidirectional(t, f.store.Snapshot())
}

func TestSaveToBoard_OtherUsersPublicPin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u1 := f.register(t, "u1")
	u2 := f.register(t, "u2")
	b2 := f.board(t, u2, "Inspiration", false)
	p := f.pin(t, u1, "")

	saved, err := f.pins.SavePinToBoard(ctx, u2.ID, p.ID, b2.ID)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !saved.InBoard(b2.ID) {
		t.Errorf("pin must hold a membership for the saver's board")
	}
	assertBidirectional(t, f.store.Snapshot())
}

func TestSaveToBoard_Authorization(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u1 := f.register(t, "u1")
	u2 := f.register(t, "u2")
	b1 := f.board(t, u1, "B1", false)
	priv := f.board(t, u1, "Secret", true)
	p := f.pin(t, u1, "")
	hidden := f.pin(t, u1, priv.ID)
	b2 := f.board(t, u2, "Mine", false)

	before := f.store.Snapshot()

	_, err := f.membership.SaveToBoard(ctx, "", p.ID, b1.ID)
	expectErr(t, err, domain.ErrUnauthenticated)

	_, err = f.membership.SaveToBoard(ctx, u2.ID, p.ID, b1.ID)
	expectErr(t, err, domain.ErrForbidden)

	_, err = f.membership.SaveToBoard(ctx, u2.ID, hidden.ID, b2.ID)
	expectErr(t, err, domain.ErrNotFound)

	if !reflect.DeepEqual(before, f.store.Snapshot()) {
		t.Errorf("rejected saves must not mutate the store")
	}
}

func TestRemoveFromBoard_IsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u1 := f.register(t, "u1")
	b1 := f.board(t, u1, "B1", false)
	p := f.pin(t, u1, b1.ID)

	orphaned, err := f.membership.RemoveFromBoard(ctx, p.ID, b1.ID)
	if err != nil {
		t.Fatalf("first remove: %v", err)
	}
	if !orphaned {
		t.Errorf("pin must be reported as left without boards")
	}
	once := f.store.Snapshot()

	if _, err := f.membership.RemoveFromBoard(ctx, p.ID, b1.ID); err != nil {
		t.Fatalf("second remove: %v", err)
	}
	if !reflect.DeepEqual(once, f.store.Snapshot()) {
		t.Errorf("second remove changed the store")
	}
}

func TestRemoveFromBoard_MissingPin(t *testing.T) {
	f := newFixture(t)
	u1 := f.register(t, "u1")
	b1 := f.board(t, u1, "B1", false)

	_, err := f.membership.RemoveFromBoard(context.Background(), "000000000000000000000000", b1.ID)
	expectErr(t, err, domain.ErrNotFound)
}

func TestDeletePinFromBoard_KeepsPin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u1 := f.register(t, "u1")
	b1 := f.board(t, u1, "B1", true)
	p := f.pin(t, u1, b1.ID)

	pin, orphaned, err := f.pins.DeletePinFromBoard(ctx, u1.ID, p.ID, b1.ID)
	if err != nil {
		t.Fatalf("DeletePinFromBoard: %v", err)
	}
	if !orphaned || len(pin.Boards) != 0 {
		t.Errorf("expected orphaned pin, got %v / %v", orphaned, pin.Boards)
	}
	f.findPin(t, p.ID)
}

func TestSaveToBoard_CompensatesFailedBoardWrite(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u1 := f.register(t, "u1")
	b1 := f.board(t, u1, "B1", false)
	p := f.pin(t, u1, "")
	before := f.store.Snapshot()

	f.store.FailOn("boards.AddPin", errors.New("disk full"))
	_, err := f.membership.SaveToBoard(ctx, u1.ID, p.ID, b1.ID)
	expectErr(t, err, domain.ErrStore)
	f.store.FailOn("boards.AddPin", nil)

	if !reflect.DeepEqual(before, f.store.Snapshot()) {
		t.Errorf("failed save must leave the store unchanged")
	}
}

func TestMoveBoard_CompensatesFailedPrivacyRefresh(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u1 := f.register(t, "u1")
	b1 := f.board(t, u1, "B1", true)
	b2 := f.board(t, u1, "B2", false)
	p := f.pin(t, u1, b1.ID)
	before := f.store.Snapshot()

	f.store.FailOn("pins.SetPrivate", errors.New("timeout"))
	_, err := f.membership.MoveBoard(ctx, u1.ID, p.ID, b1.ID, b2.ID)
	expectErr(t, err, domain.ErrStore)
	f.store.FailOn("pins.SetPrivate", nil)

	after := f.store.Snapshot()
	assertBidirectional(t, after)
	if !f.findBoard(t, b1.ID).HasPin(p.ID) || f.findBoard(t, b2.ID).HasPin(p.ID) {
		t.Errorf("memberships must be restored after a failed move")
	}
	if len(after.Pins) != len(before.Pins) || !f.findPin(t, p.ID).IsPrivate {
		t.Errorf("pin must keep its privacy after a failed move")
	}
}

func TestMoveBoard_RequiresOwnershipOfBothBoards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u1 := f.register(t, "u1")
	u2 := f.register(t, "u2")
	b1 := f.board(t, u1, "B1", false)
	foreign := f.board(t, u2, "Theirs", false)
	p := f.pin(t, u1, b1.ID)
	before := f.store.Snapshot()

	_, err := f.membership.MoveBoard(ctx, u1.ID, p.ID, b1.ID, foreign.ID)
	expectErr(t, err, domain.ErrForbidden)
	_, err = f.membership.MoveBoard(ctx, u2.ID, p.ID, b1.ID, foreign.ID)
	expectErr(t, err, domain.ErrForbidden)

	if !reflect.DeepEqual(before, f.store.Snapshot()) {
		t.Errorf("rejected moves must not mutate the store")
	}
}
