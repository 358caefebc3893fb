package memory

import (
	"context"
	"strings"
	"time"

	"github.com/hyceate/moody-sub000/internal/core/domain"
)

// UserRepository implements ports.UserRepository.
type UserRepository struct{ s *Store }

func (r *UserRepository) Create(_ context.Context, u *domain.User) (*domain.User, error) {
	if err := r.s.fail("users.Create"); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if existing.Username == u.Username || strings.EqualFold(existing.Email, u.Email) {
			return nil, domain.ErrUserExists
		}
	}
	c := cloneUser(u)
	if c.ID == "" {
		c.ID = newID()
	}
	r.s.users[key(c.ID)] = c
	return cloneUser(c), nil
}

func (r *UserRepository) FindByID(_ context.Context, id string) (*domain.User, error) {
	if err := r.s.fail("users.FindByID"); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[key(id)]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	return r.findBy("users.FindByEmail", func(u *domain.User) bool { return strings.EqualFold(u.Email, email) })
}

func (r *UserRepository) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	return r.findBy("users.FindByUsername", func(u *domain.User) bool { return u.Username == username })
}

func (r *UserRepository) findBy(op string, match func(*domain.User) bool) (*domain.User, error) {
	if err := r.s.fail(op); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if match(u) {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *UserRepository) UpdatePassword(_ context.Context, id, hash string, at time.Time) error {
	return r.update("users.UpdatePassword", id, func(u *domain.User) {
		u.PasswordHash = hash
		u.UpdatedAt = at
	})
}

func (r *UserRepository) UpdateAvatar(_ context.Context, id, avatar string, at time.Time) error {
	return r.update("users.UpdateAvatar", id, func(u *domain.User) {
		u.Avatar = avatar
		u.UpdatedAt = at
	})
}

func (r *UserRepository) update(op, id string, fn func(*domain.User)) error {
	if err := r.s.fail(op); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[key(id)]
	if !ok {
		return domain.ErrUserNotFound
	}
	fn(u)
	return nil
}

func (r *UserRepository) Delete(_ context.Context, id string) error {
	if err := r.s.fail("users.Delete"); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[key(id)]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.s.users, key(id))
	return nil
}
