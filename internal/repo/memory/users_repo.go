package memory

import (
	"context"
	"sync"

	"github.com/geocoder89/careerloop/internal/domain/user"
)

// UsersRepo keeps users in insertion order; emails are unique.
type UsersRepo struct {
	mu      sync.RWMutex
	items   map[string]user.User
	byEmail map[string]string
	order   []string
}

func NewUsersRepo() *UsersRepo {
	return &UsersRepo{
		items:   make(map[string]user.User),
		byEmail: make(map[string]string),
	}
}

func (r *UsersRepo) Create(_ context.Context, u user.User) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byEmail[u.Email]; taken {
		return user.User{}, user.ErrEmailTaken
	}

	r.insertLocked(u)
	return u, nil
}

func (r *UsersRepo) CreateIfAbsent(_ context.Context, u user.User) (user.User, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id, taken := r.byEmail[u.Email]; taken {
		return r.items[id], false, nil
	}

	r.insertLocked(u)
	return u, true, nil
}

func (r *UsersRepo) First(_ context.Context) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.order) == 0 {
		return user.User{}, user.ErrNotFound
	}
	return r.items[r.order[0]], nil
}

func (r *UsersRepo) GetByID(_ context.Context, id string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.items[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (r *UsersRepo) GetByEmail(_ context.Context, email string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return r.items[id], nil
}

func (r *UsersRepo) exists(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.items[id]
	return ok
}

func (r *UsersRepo) insertLocked(u user.User) {
	r.items[u.ID] = u
	r.byEmail[u.Email] = u.ID
	r.order = append(r.order, u.ID)
}
