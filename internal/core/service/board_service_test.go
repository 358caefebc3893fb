package service

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/hyceate/moody-sub000/internal/core/domain"
	"github.com/hyceate/moody-sub000/internal/core/ports"
)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func TestCreateBoard_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u1 := f.register(t, "u1")

	cases := []struct {
		name  string
		input ports.CreateBoardInput
		kind  error
	}{
		{"no session", ports.CreateBoardInput{Title: "x"}, domain.ErrUnauthenticated},
		{"blank title", ports.CreateBoardInput{ActorID: u1.ID, Title: "  "}, domain.ErrValidation},
		{"long title", ports.CreateBoardInput{ActorID: u1.ID, Title: strings.Repeat("t", domain.MaxBoardTitle+1)}, domain.ErrValidation},
		{"duplicate title", ports.CreateBoardInput{ActorID: u1.ID, Title: domain.DefaultBoardTitle}, domain.ErrConflict},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.boards.CreateBoard(ctx, tc.input)
			expectErr(t, err, tc.kind)
		})
	}
}

func TestCreateBoard_SameTitleForDifferentUsers(t *testing.T) {
	f := newFixture(t)
	u1 := f.register(t, "u1")
	u2 := f.register(t, "u2")

	f.board(t, u1, "Travel", false)
	f.board(t, u2, "Travel", false)
}

func TestUpdateBoard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u1 := f.register(t, "u1")
	b := f.board(t, u1, "Travel", false)
	f.board(t, u1, "Food", false)

	updated, err := f.boards.UpdateBoard(ctx, ports.UpdateBoardInput{
		ActorID:     u1.ID,
		BoardID:     b.ID,
		Title:       strPtr("Trips"),
		Description: strPtr("places"),
		IsPrivate:   boolPtr(true),
	})
	if err != nil {
		t.Fatalf("UpdateBoard: %v", err)
	}
	if updated.Title != "Trips" || updated.Description != "places" || !updated.IsPrivate {
		t.Fatalf("unexpected board: %+v", updated)
	}

	_, err = f.boards.UpdateBoard(ctx, ports.UpdateBoardInput{ActorID: u1.ID, BoardID: b.ID, Title: strPtr("Food")})
	expectErr(t, err, domain.ErrBoardTitleTaken)

	if _, err := f.boards.UpdateBoard(ctx, ports.UpdateBoardInput{ActorID: u1.ID, BoardID: b.ID, Title: strPtr("Trips")}); err != nil {
		t.Fatalf("keeping the current title must not conflict: %v", err)
	}
}

func TestUpdateBoard_PrivacyDoesNotRewritePins(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u1 := f.register(t, "u1")
	b := f.board(t, u1, "Open", false)
	p := f.pin(t, u1, b.ID)

	if _, err := f.boards.UpdateBoard(ctx, ports.UpdateBoardInput{ActorID: u1.ID, BoardID: b.ID, IsPrivate: boolPtr(true)}); err != nil {
		t.Fatalf("UpdateBoard: %v", err)
	}
	if f.findPin(t, p.ID).IsPrivate {
		t.Errorf("pin privacy changes only through moves")
	}
}

func TestUpdateBoard_ForbiddenLeavesStoreUnchanged(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u1 := f.register(t, "u1")
	u2 := f.register(t, "u2")
	b := f.board(t, u1, "Travel", false)
	before := f.store.Snapshot()

	_, err := f.boards.UpdateBoard(ctx, ports.UpdateBoardInput{ActorID: u2.ID, BoardID: b.ID, Title: strPtr("Mine")})
	expectErr(t, err, domain.ErrForbidden)

	if !reflect.DeepEqual(before, f.store.Snapshot()) {
		t.Errorf("forbidden update must not mutate the store")
	}
}

func TestUpdatePin_ForbiddenLeavesStoreUnchanged(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u1 := f.register(t, "u1")
	u2 := f.register(t, "u2")
	p := f.pin(t, u1, "")
	before := f.store.Snapshot()

	_, err := f.pins.UpdatePin(ctx, ports.UpdatePinInput{ActorID: u2.ID, PinID: p.ID, Title: strPtr("stolen")})
	expectErr(t, err, domain.ErrForbidden)

	if !reflect.DeepEqual(before, f.store.Snapshot()) {
		t.Errorf("forbidden update must not mutate the store")
	}
}

func TestPrivacy_PrivatePinsHiddenFromOthers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u1 := f.register(t, "u1")
	u2 := f.register(t, "u2")
	secret := f.board(t, u1, "Secret", true)
	hidden := f.pin(t, u1, secret.ID)
	public := f.pin(t, u1, "")

	for _, viewer := range []string{"", u2.ID} {
		feed, err := f.pins.ListPins(ctx, ports.ListPinsInput{ViewerID: viewer})
		if err != nil {
			t.Fatalf("ListPins: %v", err)
		}
		if containsPin(feed, hidden.ID) || !containsPin(feed, public.ID) {
			t.Errorf("viewer %q: feed must show only the public pin", viewer)
		}

		byUser, err := f.pins.PinsByUser(ctx, viewer, u1.ID)
		if err != nil {
			t.Fatalf("PinsByUser: %v", err)
		}
		if containsPin(byUser, hidden.ID) {
			t.Errorf("viewer %q: pinsByUser leaked a private pin", viewer)
		}

		_, err = f.pins.GetPin(ctx, viewer, hidden.ID)
		expectErr(t, err, domain.ErrNotFound)

		boards, err := f.boards.BoardsByUser(ctx, viewer, u1.ID)
		if err != nil {
			t.Fatalf("BoardsByUser: %v", err)
		}
		for _, b := range boards {
			if b.IsPrivate {
				t.Errorf("viewer %q: private board %s listed", viewer, b.ID)
			}
		}

		grouped, err := f.boards.PinsByUserBoards(ctx, viewer, u1.ID)
		if err != nil {
			t.Fatalf("PinsByUserBoards: %v", err)
		}
		for _, g := range grouped {
			if containsPin(g.Pins, hidden.ID) {
				t.Errorf("viewer %q: board %s leaked a private pin", viewer, g.Board.ID)
			}
		}
	}

	own, err := f.pins.PinsByUser(ctx, u1.ID, u1.ID)
	if err != nil {
		t.Fatalf("PinsByUser: %v", err)
	}
	if !containsPin(own, hidden.ID) {
		t.Errorf("owner must see their private pin")
	}
}

func TestPrivacy_PublicBoardHidesOthersPrivatePins(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u1 := f.register(t, "u1")
	u2 := f.register(t, "u2")
	open := f.board(t, u1, "Open", false)
	secret := f.board(t, u1, "Secret", true)
	p := f.pin(t, u1, secret.ID)
	if _, err := f.pins.SavePinToBoard(ctx, u1.ID, p.ID, open.ID); err != nil {
		t.Fatalf("save: %v", err)
	}

	board := f.findBoard(t, open.ID)
	pins, err := f.boards.PinsOnBoard(ctx, u2.ID, board)
	if err != nil {
		t.Fatalf("PinsOnBoard: %v", err)
	}
	if len(pins) != 0 {
		t.Errorf("private pin leaked through a public board")
	}
}

func TestPinsOnBoard_MostRecentlySavedFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u1 := f.register(t, "u1")
	b := f.board(t, u1, "Ordered", false)
	first := f.pin(t, u1, "")
	second := f.pin(t, u1, "")
	if _, err := f.pins.SavePinToBoard(ctx, u1.ID, second.ID, b.ID); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := f.pins.SavePinToBoard(ctx, u1.ID, first.ID, b.ID); err != nil {
		t.Fatalf("save: %v", err)
	}

	pins, err := f.boards.PinsOnBoard(ctx, u1.ID, f.findBoard(t, b.ID))
	if err != nil {
		t.Fatalf("PinsOnBoard: %v", err)
	}
	if len(pins) != 2 || pins[0].ID != first.ID || pins[1].ID != second.ID {
		t.Fatalf("unexpected order: %v", pinIDs(pins))
	}
}

func TestListPins_Paging(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u1 := f.register(t, "u1")
	for i := 0; i < 5; i++ {
		f.pin(t, u1, "")
	}

	page, err := f.pins.ListPins(ctx, ports.ListPinsInput{Limit: 2, Offset: 1})
	if err != nil {
		t.Fatalf("ListPins: %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("expected 2 pins, got %d", len(page))
	}
	all, _ := f.pins.ListPins(ctx, ports.ListPinsInput{Limit: 1000})
	if len(all) != 5 {
		t.Fatalf("expected every pin within the cap, got %d", len(all))
	}
	if page[0].ID != all[1].ID {
		t.Errorf("offset must skip the newest pin")
	}
}

func TestCreatePin_RejectsForeignImage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u1 := f.register(t, "u1")
	u2 := f.register(t, "u2")
	path := PinImagePrefix(u2.ID) + "theirs.jpg"
	f.images.put(path)

	_, err := f.pins.CreatePin(ctx, ports.CreatePinInput{ActorID: u1.ID, ImagePath: path, ImageWidth: 640, ImageHeight: 480})
	expectErr(t, err, domain.ErrValidation)

	_, err = f.pins.CreatePin(ctx, ports.CreatePinInput{ActorID: u1.ID, ImagePath: PinImagePrefix(u1.ID) + "missing.jpg", ImageWidth: 640, ImageHeight: 480})
	expectErr(t, err, domain.ErrNotFound)
}

func TestComments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u1 := f.register(t, "u1")
	u2 := f.register(t, "u2")
	u3 := f.register(t, "u3")
	p := f.pin(t, u1, "")

	_, err := f.comments.AddComment(ctx, u2.ID, p.ID, "   ")
	expectErr(t, err, domain.ErrValidation)
	_, err = f.comments.AddComment(ctx, "", p.ID, "hi")
	expectErr(t, err, domain.ErrUnauthenticated)

	c, err := f.comments.AddComment(ctx, u2.ID, p.ID, " lovely ")
	if err != nil {
		t.Fatalf("AddComment: %v", err)
	}
	if c.Text != "lovely" {
		t.Errorf("expected trimmed text, got %q", c.Text)
	}
	if got := f.findPin(t, p.ID).Comments; len(got) != 1 || got[0] != c.ID {
		t.Errorf("pin must reference the comment, got %v", got)
	}

	expectErr(t, f.comments.DeleteComment(ctx, u3.ID, p.ID, c.ID), domain.ErrForbidden)
	if err := f.comments.DeleteComment(ctx, u1.ID, p.ID, c.ID); err != nil {
		t.Fatalf("pin owner must be able to delete comments: %v", err)
	}
	list, err := f.comments.ListComments(ctx, "", p.ID)
	if err != nil {
		t.Fatalf("ListComments: %v", err)
	}
	if len(list) != 0 || len(f.findPin(t, p.ID).Comments) != 0 {
		t.Errorf("comment must be gone from both sides")
	}
}

func TestComments_PrivatePinIsNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u1 := f.register(t, "u1")
	u2 := f.register(t, "u2")
	secret := f.board(t, u1, "Secret", true)
	p := f.pin(t, u1, secret.ID)

	_, err := f.comments.AddComment(ctx, u2.ID, p.ID, "peek")
	expectErr(t, err, domain.ErrNotFound)
	_, err = f.comments.ListComments(ctx, u2.ID, p.ID)
	expectErr(t, err, domain.ErrNotFound)
}

func containsPin(pins []*domain.Pin, id string) bool {
	for _, p := range pins {
		if p.ID == id {
			return true
		}
	}
	return false
}

func pinIDs(pins []*domain.Pin) []string {
	ids := make([]string, 0, len(pins))
	for _, p := range pins {
		ids = append(ids, p.ID)
	}
	return ids
}
