package memory

import (
	"context"
	"errors"
	"strings"

	"github.com/hyceate/moody-sub000/internal/core/domain"
	"github.com/hyceate/moody-sub000/internal/core/ports"
)

// PinRepository implements ports.PinRepository.
type PinRepository struct{ s *Store }

func (r *PinRepository) Create(_ context.Context, p *domain.Pin) (*domain.Pin, error) {
	if err := r.s.fail("pins.Create"); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c := clonePin(p)
	if c.ID == "" {
		c.ID = newID()
	}
	r.s.pins[key(c.ID)] = c
	return clonePin(c), nil
}

func (r *PinRepository) Restore(_ context.Context, p *domain.Pin) error {
	if err := r.s.fail("pins.Restore"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.pins[key(p.ID)]; ok {
		return domain.ErrConflict
	}
	r.s.pins[key(p.ID)] = clonePin(p)
	return nil
}

func (r *PinRepository) FindByID(_ context.Context, id string, vis domain.Visibility) (*domain.Pin, error) {
	if err := r.s.fail("pins.FindByID"); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.pins[key(id)]
	if !ok || !vis.Allows(p.UserID, p.IsPrivate) {
		return nil, domain.ErrPinNotFound
	}
	return clonePin(p), nil
}

func (r *PinRepository) List(_ context.Context, f ports.PinFilter) ([]*domain.Pin, error) {
	if err := r.s.fail("pins.List"); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	var ids map[string]struct{}
	if f.IDs != nil {
		ids = make(map[string]struct{}, len(f.IDs))
		for _, id := range f.IDs {
			ids[key(id)] = struct{}{}
		}
	}
	search := strings.ToLower(f.Search)
	out := []*domain.Pin{}
	for k, p := range r.s.pins {
		if ids != nil {
			if _, ok := ids[k]; !ok {
				continue
			}
		}
		if f.UserID != "" && !domain.SameID(p.UserID, f.UserID) {
			continue
		}
		if f.BoardID != "" && !p.InBoard(f.BoardID) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Title), search) &&
			!strings.Contains(strings.ToLower(p.Description), search) {
			continue
		}
		if len(f.Tags) > 0 && !hasAnyTag(p.Tags, f.Tags) {
			continue
		}
		if !f.Visibility.Allows(p.UserID, p.IsPrivate) {
			continue
		}
		out = append(out, clonePin(p))
	}
	r.s.mu.RUnlock()

	newestFirst(out)
	if f.Offset > 0 {
		if f.Offset >= len(out) {
			return []*domain.Pin{}, nil
		}
		out = out[f.Offset:]
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func hasAnyTag(have, want []string) bool {
	for _, w := range want {
		for _, h := range have {
			if h == w {
				return true
			}
		}
	}
	return false
}

func (r *PinRepository) Update(_ context.Context, id string, patch domain.PinPatch) (*domain.Pin, error) {
	if err := r.s.fail("pins.Update"); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.pins[key(id)]
	if !ok {
		return nil, domain.ErrPinNotFound
	}
	if patch.Title != nil {
		p.Title = *patch.Title
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Link != nil {
		p.Link = *patch.Link
	}
	if patch.Tags != nil {
		p.Tags = append([]string{}, (*patch.Tags)...)
	}
	return clonePin(p), nil
}

func (r *PinRepository) SetPrivate(_ context.Context, id string, private bool) error {
	return r.mutate("pins.SetPrivate", id, func(p *domain.Pin) { p.IsPrivate = private })
}

func (r *PinRepository) Delete(_ context.Context, id string) error {
	if err := r.s.fail("pins.Delete"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.pins[key(id)]; !ok {
		return domain.ErrPinNotFound
	}
	delete(r.s.pins, key(id))
	return nil
}

func (r *PinRepository) AddBoard(_ context.Context, pinID string, m domain.Membership) (bool, error) {
	if err := r.s.fail("pins.AddBoard"); err != nil {
		return false, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.pins[key(pinID)]
	if !ok {
		return false, domain.ErrPinNotFound
	}
	if p.InBoard(m.BoardID) {
		return false, nil
	}
	p.Boards = append(p.Boards, m)
	return true, nil
}

func (r *PinRepository) RemoveBoard(_ context.Context, pinID, boardID string) (bool, int, error) {
	if err := r.s.fail("pins.RemoveBoard"); err != nil {
		return false, 0, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.pins[key(pinID)]
	if !ok {
		return false, 0, domain.ErrPinNotFound
	}
	kept := p.Boards[:0]
	removed := false
	for _, m := range p.Boards {
		if domain.SameID(m.BoardID, boardID) {
			removed = true
			continue
		}
		kept = append(kept, m)
	}
	p.Boards = kept
	return removed, len(p.Boards), nil
}

func (r *PinRepository) AddComment(_ context.Context, pinID, commentID string) error {
	return r.mutate("pins.AddComment", pinID, func(p *domain.Pin) {
		for _, id := range p.Comments {
			if domain.SameID(id, commentID) {
				return
			}
		}
		p.Comments = append(p.Comments, commentID)
	})
}

// RemoveComment is a no-op when the pin no longer exists.
func (r *PinRepository) RemoveComment(_ context.Context, pinID, commentID string) error {
	err := r.mutate("pins.RemoveComment", pinID, func(p *domain.Pin) {
		kept := p.Comments[:0]
		for _, id := range p.Comments {
			if !domain.SameID(id, commentID) {
				kept = append(kept, id)
			}
		}
		p.Comments = kept
	})
	if errors.Is(err, domain.ErrPinNotFound) {
		return nil
	}
	return err
}

func (r *PinRepository) mutate(op, id string, fn func(*domain.Pin)) error {
	if err := r.s.fail(op); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.pins[key(id)]
	if !ok {
		return domain.ErrPinNotFound
	}
	fn(p)
	return nil
}
