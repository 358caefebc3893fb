// Package memory is an in-process Entity Store. It backs STORE_DRIVER=memory
// and the service and GraphQL tests, and can be told to fail specific
// operations to exercise compensation paths.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/hyceate/moody-sub000/internal/core/domain"
)

// Store holds every collection behind one mutex.
type Store struct {
	mu       sync.RWMutex
	users    map[string]*domain.User
	boards   map[string]*domain.Board
	pins     map[string]*domain.Pin
	comments map[string]*domain.Comment

	failMu   sync.Mutex
	failures map[string]error
}

func NewStore() *Store {
	return &Store{
		users:    make(map[string]*domain.User),
		boards:   make(map[string]*domain.Board),
		pins:     make(map[string]*domain.Pin),
		comments: make(map[string]*domain.Comment),
		failures: make(map[string]error),
	}
}

// FailOn makes every later call of op return err, with op named
// "<collection>.<Method>", e.g. "boards.AddPin". A nil err clears it.
func (s *Store) FailOn(op string, err error) {
	s.failMu.Lock()
	defer s.failMu.Unlock()
	if err == nil {
		delete(s.failures, op)
		return
	}
	s.failures[op] = err
}

func (s *Store) fail(op string) error {
	s.failMu.Lock()
	defer s.failMu.Unlock()
	if err, ok := s.failures[op]; ok {
		return domain.WrapStore(op, err)
	}
	return nil
}

func (s *Store) Users() *UserRepository       { return &UserRepository{s: s} }
func (s *Store) Boards() *BoardRepository     { return &BoardRepository{s: s} }
func (s *Store) Pins() *PinRepository         { return &PinRepository{s: s} }
func (s *Store) Comments() *CommentRepository { return &CommentRepository{s: s} }

// WithTransaction calls fn directly; the memory store has no transactions.
func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func newID() string { return primitive.NewObjectID().Hex() }

func key(id string) string { return strings.ToLower(strings.TrimSpace(id)) }

func cloneUser(u *domain.User) *domain.User {
	c := *u
	return &c
}

func cloneBoard(b *domain.Board) *domain.Board {
	c := *b
	c.Pins = append([]domain.BoardPin{}, b.Pins...)
	return &c
}

func clonePin(p *domain.Pin) *domain.Pin {
	c := *p
	c.Tags = append([]string{}, p.Tags...)
	c.Comments = append([]string{}, p.Comments...)
	c.Boards = append([]domain.Membership{}, p.Boards...)
	return &c
}

func cloneComment(c *domain.Comment) *domain.Comment {
	cc := *c
	return &cc
}

// Snapshot is a deep copy of the store contents, for test assertions.
type Snapshot struct {
	Users    map[string]domain.User
	Boards   map[string]domain.Board
	Pins     map[string]domain.Pin
	Comments map[string]domain.Comment
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := Snapshot{
		Users:    make(map[string]domain.User, len(s.users)),
		Boards:   make(map[string]domain.Board, len(s.boards)),
		Pins:     make(map[string]domain.Pin, len(s.pins)),
		Comments: make(map[string]domain.Comment, len(s.comments)),
	}
	for k, v := range s.users {
		snap.Users[k] = *cloneUser(v)
	}
	for k, v := range s.boards {
		snap.Boards[k] = *cloneBoard(v)
	}
	for k, v := range s.pins {
		snap.Pins[k] = *clonePin(v)
	}
	for k, v := range s.comments {
		snap.Comments[k] = *cloneComment(v)
	}
	return snap
}

// newestFirst orders pins by creation time, most recent first.
func newestFirst(pins []*domain.Pin) {
	sort.SliceStable(pins, func(i, j int) bool {
		if pins[i].CreatedAt.Equal(pins[j].CreatedAt) {
			return pins[i].ID > pins[j].ID
		}
		return pins[i].CreatedAt.After(pins[j].CreatedAt)
	})
}
