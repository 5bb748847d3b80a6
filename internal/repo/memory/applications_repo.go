package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/geocoder89/careerloop/internal/domain/application"
	"github.com/geocoder89/careerloop/internal/domain/user"
)

// ApplicationsRepo is the in-process twin of the postgres repo. When built
// with a UsersRepo it enforces the owner reference the way the foreign key does.
type ApplicationsRepo struct {
	mu    sync.RWMutex
	users *UsersRepo
	items map[string]application.Application
	order []string
}

func NewApplicationsRepo(users *UsersRepo) *ApplicationsRepo {
	return &ApplicationsRepo{
		users: users,
		items: make(map[string]application.Application),
	}
}

func (r *ApplicationsRepo) Create(_ context.Context, userID string, req application.CreateRequest) (application.Application, error) {
	if r.users != nil && !r.users.exists(userID) {
		return application.Application{}, fmt.Errorf("insert job application: owner %s: %w", userID, user.ErrNotFound)
	}

	a := application.NewFromCreateRequest(userID, req)

	r.mu.Lock()
	r.items[a.ID] = a
	r.order = append(r.order, a.ID)
	r.mu.Unlock()

	return a, nil
}

func (r *ApplicationsRepo) List(_ context.Context, userID string, page application.Page) ([]application.Application, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	output := make([]application.Application, 0)
	skipped := 0

	for _, id := range r.order {
		if len(output) >= page.Limit {
			break
		}

		a := r.items[id]
		if a.UserID != userID {
			continue
		}

		if skipped < page.Skip {
			skipped++
			continue
		}

		output = append(output, a)
	}

	return output, nil
}

func (r *ApplicationsRepo) GetByID(_ context.Context, userID, id string) (application.Application, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.items[id]
	if !ok || a.UserID != userID {
		return application.Application{}, application.ErrNotFound
	}
	return a, nil
}

func (r *ApplicationsRepo) Update(_ context.Context, userID, id string, req application.UpdateRequest) (application.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.items[id]
	if !ok || a.UserID != userID {
		return application.Application{}, application.ErrNotFound
	}

	updated := a.Merge(req, time.Now().UTC().Truncate(time.Microsecond))
	r.items[id] = updated

	return updated, nil
}

func (r *ApplicationsRepo) Delete(_ context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.items[id]
	if !ok || a.UserID != userID {
		return application.ErrNotFound
	}

	delete(r.items, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}

	return nil
}
