package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/hyceate/moody-sub000/internal/core/domain"
	"github.com/hyceate/moody-sub000/internal/core/ports"
	"github.com/hyceate/moody-sub000/internal/infrastructure/db/memory"
)

// stubImages is an in-memory image store recording deletions.
type stubImages struct {
	mu        sync.Mutex
	stored    map[string]bool
	deleted   []string
	deleteErr error
}

func newStubImages() *stubImages { return &stubImages{stored: make(map[string]bool)} }

func (s *stubImages) put(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stored[key] = true
}

func (s *stubImages) Save(_ context.Context, key string, _ io.Reader, _ string) error {
	s.put(key)
	return nil
}

func (s *stubImages) Exists(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stored[key], nil
}

func (s *stubImages) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteErr != nil {
		return s.deleteErr
	}
	delete(s.stored, key)
	s.deleted = append(s.deleted, key)
	return nil
}

func (s *stubImages) URL(key string) string { return "/uploads/" + key }

type fixture struct {
	store      *memory.Store
	images     *stubImages
	membership *Membership
	cascade    *Cascade
	auth       *AuthService
	users      *UserService
	boards     *BoardService
	pins       *PinService
	comments   *CommentService
	seq        int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	repos := Repositories{
		Users:    store.Users(),
		Boards:   store.Boards(),
		Pins:     store.Pins(),
		Comments: store.Comments(),
		Tx:       store,
	}
	images := newStubImages()
	locker := memory.NewLocker()
	log := zerolog.Nop()

	membership := NewMembership(repos, locker, log)
	cascade := NewCascade(repos, images, locker, log)
	return &fixture{
		store:      store,
		images:     images,
		membership: membership,
		cascade:    cascade,
		auth:       NewAuthService(repos, "secret", time.Hour, log),
		users:      NewUserService(repos, cascade, images, log),
		boards:     NewBoardService(repos, cascade, log),
		pins:       NewPinService(repos, membership, cascade, images, log),
		comments:   NewCommentService(repos, log),
	}
}

func (f *fixture) register(t *testing.T, name string) *domain.User {
	t.Helper()
	u, err := f.auth.Register(context.Background(), ports.RegisterInput{
		Username: name,
		Email:    name + "@example.com",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("register %s: %v", name, err)
	}
	return u
}

func (f *fixture) board(t *testing.T, owner *domain.User, title string, private bool) *domain.Board {
	t.Helper()
	b, err := f.boards.CreateBoard(context.Background(), ports.CreateBoardInput{
		ActorID:   owner.ID,
		Title:     title,
		IsPrivate: private,
	})
	if err != nil {
		t.Fatalf("create board %s: %v", title, err)
	}
	return b
}

func (f *fixture) pin(t *testing.T, owner *domain.User, boardID string) *domain.Pin {
	t.Helper()
	f.seq++
	path := fmt.Sprintf("%simg-%d.jpg", PinImagePrefix(owner.ID), f.seq)
	f.images.put(path)
	p, err := f.pins.CreatePin(context.Background(), ports.CreatePinInput{
		ActorID:     owner.ID,
		Title:       "pin",
		ImagePath:   path,
		ImageWidth:  640,
		ImageHeight: 480,
		BoardID:     boardID,
	})
	if err != nil {
		t.Fatalf("create pin: %v", err)
	}
	return p
}

func (f *fixture) findPin(t *testing.T, id string) *domain.Pin {
	t.Helper()
	p, err := f.store.Pins().FindByID(context.Background(), id, domain.Unrestricted)
	if err != nil {
		t.Fatalf("find pin %s: %v", id, err)
	}
	return p
}

func (f *fixture) findBoard(t *testing.T, id string) *domain.Board {
	t.Helper()
	b, err := f.store.Boards().FindByID(context.Background(), id, domain.Unrestricted)
	if err != nil {
		t.Fatalf("find board %s: %v", id, err)
	}
	return b
}

// assertBidirectional checks that every membership has a matching board
// reference and vice versa, across the whole store.
func assertBidirectional(t *testing.T, snap memory.Snapshot) {
	t.Helper()
	for _, p := range snap.Pins {
		for _, m := range p.Boards {
			b, ok := snap.Boards[strings.ToLower(m.BoardID)]
			if !ok {
				t.Errorf("pin %s references missing board %s", p.ID, m.BoardID)
				continue
			}
			if !b.HasPin(p.ID) {
				t.Errorf("board %s does not list pin %s", b.ID, p.ID)
			}
		}
	}
	for _, b := range snap.Boards {
		for _, ref := range b.Pins {
			p, ok := snap.Pins[strings.ToLower(ref.PinID)]
			if !ok {
				t.Errorf("board %s references missing pin %s", b.ID, ref.PinID)
				continue
			}
			if !p.InBoard(b.ID) {
				t.Errorf("pin %s has no membership for board %s", p.ID, b.ID)
			}
		}
	}
}

func expectErr(t *testing.T, err, kind error) {
	t.Helper()
	if !errors.Is(err, kind) {
		t.Fatalf("expected %v, got %v", kind, err)
	}
}
