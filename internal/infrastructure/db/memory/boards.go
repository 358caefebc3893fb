package memory

import (
	"context"
	"sort"

	"github.com/hyceate/moody-sub000/internal/core/domain"
	"github.com/hyceate/moody-sub000/internal/core/ports"
)

// BoardRepository implements ports.BoardRepository.
type BoardRepository struct{ s *Store }

func (r *BoardRepository) Create(_ context.Context, b *domain.Board) (*domain.Board, error) {
	if err := r.s.fail("boards.Create"); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := cloneBoard(b)
	if c.ID == "" {
		c.ID = newID()
	}
	r.s.boards[key(c.ID)] = c
	return cloneBoard(c), nil
}

func (r *BoardRepository) Restore(_ context.Context, b *domain.Board) error {
	if err := r.s.fail("boards.Restore"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.boards[key(b.ID)]; ok {
		return domain.ErrConflict
	}
	r.s.boards[key(b.ID)] = cloneBoard(b)
	return nil
}

func (r *BoardRepository) FindByID(_ context.Context, id string, vis domain.Visibility) (*domain.Board, error) {
	if err := r.s.fail("boards.FindByID"); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	b, ok := r.s.boards[key(id)]
	if !ok || !vis.Allows(b.UserID, b.IsPrivate) {
		return nil, domain.ErrBoardNotFound
	}
	return cloneBoard(b), nil
}

func (r *BoardRepository) FindByTitle(_ context.Context, userID, title string) (*domain.Board, error) {
	if err := r.s.fail("boards.FindByTitle"); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, b := range r.s.boards {
		if domain.SameID(b.UserID, userID) && b.Title == title {
			return cloneBoard(b), nil
		}
	}
	return nil, domain.ErrBoardNotFound
}

func (r *BoardRepository) List(_ context.Context, f ports.BoardFilter) ([]*domain.Board, error) {
	if err := r.s.fail("boards.List"); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []*domain.Board{}
	for _, b := range r.s.boards {
		if f.UserID != "" && !domain.SameID(b.UserID, f.UserID) {
			continue
		}
		if f.PinID != "" && !b.HasPin(f.PinID) {
			continue
		}
		if !f.Visibility.Allows(b.UserID, b.IsPrivate) {
			continue
		}
		out = append(out, cloneBoard(b))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *BoardRepository) Update(_ context.Context, id string, patch domain.BoardPatch) (*domain.Board, error) {
	if err := r.s.fail("boards.Update"); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.boards[key(id)]
	if !ok {
		return nil, domain.ErrBoardNotFound
	}
	if patch.Title != nil {
		b.Title = *patch.Title
	}
	if patch.Description != nil {
		b.Description = *patch.Description
	}
	if patch.IsPrivate != nil {
		b.IsPrivate = *patch.IsPrivate
	}
	return cloneBoard(b), nil
}

func (r *BoardRepository) Delete(_ context.Context, id string) error {
	if err := r.s.fail("boards.Delete"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.boards[key(id)]; !ok {
		return domain.ErrBoardNotFound
	}
	delete(r.s.boards, key(id))
	return nil
}

func (r *BoardRepository) AddPin(_ context.Context, boardID string, ref domain.BoardPin) (bool, error) {
	if err := r.s.fail("boards.AddPin"); err != nil {
		return false, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.boards[key(boardID)]
	if !ok {
		return false, domain.ErrBoardNotFound
	}
	if b.HasPin(ref.PinID) {
		return false, nil
	}
	b.Pins = append(b.Pins, ref)
	return true, nil
}

func (r *BoardRepository) RemovePin(_ context.Context, boardID, pinID string) (bool, error) {
	if err := r.s.fail("boards.RemovePin"); err != nil {
		return false, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.boards[key(boardID)]
	if !ok {
		return false, nil
	}
	return pullBoardPin(b, pinID), nil
}

func (r *BoardRepository) RemovePinEverywhere(_ context.Context, pinID string) (int64, error) {
	if err := r.s.fail("boards.RemovePinEverywhere"); err != nil {
		return 0, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, b := range r.s.boards {
		if pullBoardPin(b, pinID) {
			n++
		}
	}
	return n, nil
}

func pullBoardPin(b *domain.Board, pinID string) bool {
	kept := b.Pins[:0]
	removed := false
	for _, ref := range b.Pins {
		if domain.SameID(ref.PinID, pinID) {
			removed = true
			continue
		}
		kept = append(kept, ref)
	}
	b.Pins = kept
	return removed
}
