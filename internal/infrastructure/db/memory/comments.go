package memory

import (
	"context"
	"sort"

	"github.com/hyceate/moody-sub000/internal/core/domain"
)

// CommentRepository implements ports.CommentRepository.
type CommentRepository struct{ s *Store }

func (r *CommentRepository) Create(_ context.Context, c *domain.Comment) (*domain.Comment, error) {
	if err := r.s.fail("comments.Create"); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cc := cloneComment(c)
	if cc.ID == "" {
		cc.ID = newID()
	}
	r.s.comments[key(cc.ID)] = cc
	return cloneComment(cc), nil
}

func (r *CommentRepository) RestoreMany(_ context.Context, comments []*domain.Comment) error {
	if len(comments) == 0 {
		return nil
	}
	if err := r.s.fail("comments.RestoreMany"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range comments {
		r.s.comments[key(c.ID)] = cloneComment(c)
	}
	return nil
}

func (r *CommentRepository) FindByID(_ context.Context, id string) (*domain.Comment, error) {
	if err := r.s.fail("comments.FindByID"); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.comments[key(id)]
	if !ok {
		return nil, domain.ErrCommentNotFound
	}
	return cloneComment(c), nil
}

func (r *CommentRepository) ListByPin(_ context.Context, pinID string) ([]*domain.Comment, error) {
	return r.list("comments.ListByPin", func(c *domain.Comment) bool { return domain.SameID(c.PinID, pinID) })
}

func (r *CommentRepository) ListByUser(_ context.Context, userID string) ([]*domain.Comment, error) {
	return r.list("comments.ListByUser", func(c *domain.Comment) bool { return domain.SameID(c.UserID, userID) })
}

func (r *CommentRepository) list(op string, match func(*domain.Comment) bool) ([]*domain.Comment, error) {
	if err := r.s.fail(op); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []*domain.Comment{}
	for _, c := range r.s.comments {
		if match(c) {
			out = append(out, cloneComment(c))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *CommentRepository) Delete(_ context.Context, id string) error {
	if err := r.s.fail("comments.Delete"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.comments[key(id)]; !ok {
		return domain.ErrCommentNotFound
	}
	delete(r.s.comments, key(id))
	return nil
}

func (r *CommentRepository) DeleteByPin(_ context.Context, pinID string) (int64, error) {
	if err := r.s.fail("comments.DeleteByPin"); err != nil {
		return 0, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for k, c := range r.s.comments {
		if domain.SameID(c.PinID, pinID) {
			delete(r.s.comments, k)
			n++
		}
	}
	return n, nil
}
