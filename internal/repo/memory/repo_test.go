package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/geocoder89/careerloop/internal/domain/application"
	"github.com/geocoder89/careerloop/internal/domain/user"
)

func seedUser(t *testing.T, users *UsersRepo, email string) user.User {
	t.Helper()

	u, err := users.Create(context.Background(), user.New(email, "hash", nil))
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func TestUsersRepoEmailUniqueness(t *testing.T) {
	ctx := context.Background()
	users := NewUsersRepo()

	first := seedUser(t, users, "a@example.com")

	if _, err := users.Create(ctx, user.New("a@example.com", "hash", nil)); !errors.Is(err, user.ErrEmailTaken) {
		t.Fatalf("duplicate create err = %v, want ErrEmailTaken", err)
	}

	got, created, err := users.CreateIfAbsent(ctx, user.New("a@example.com", "other", nil))
	if err != nil {
		t.Fatalf("CreateIfAbsent: %v", err)
	}
	if created || got.ID != first.ID {
		t.Fatalf("CreateIfAbsent should return the existing row, got created=%v id=%s", created, got.ID)
	}
}

func TestUsersRepoFirst(t *testing.T) {
	ctx := context.Background()
	users := NewUsersRepo()

	if _, err := users.First(ctx); !errors.Is(err, user.ErrNotFound) {
		t.Fatalf("First on empty store = %v, want ErrNotFound", err)
	}

	first := seedUser(t, users, "a@example.com")
	seedUser(t, users, "b@example.com")

	got, err := users.First(ctx)
	if err != nil || got.ID != first.ID {
		t.Fatalf("First = %v, %v; want %s", got.ID, err, first.ID)
	}
}

func TestUsersRepoConcurrentCreateIfAbsent(t *testing.T) {
	ctx := context.Background()
	users := NewUsersRepo()

	var wg sync.WaitGroup
	ids := make([]string, 16)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			u, _, err := users.CreateIfAbsent(ctx, user.New("same@example.com", "hash", nil))
			if err != nil {
				t.Errorf("CreateIfAbsent: %v", err)
				return
			}
			ids[i] = u.ID
		}(i)
	}
	wg.Wait()

	for _, id := range ids {
		if id != ids[0] {
			t.Fatalf("concurrent callers saw different users: %v", ids)
		}
	}
}

func TestApplicationsRepoOwnerScoping(t *testing.T) {
	ctx := context.Background()
	users := NewUsersRepo()
	apps := NewApplicationsRepo(users)

	owner := seedUser(t, users, "owner@example.com")
	other := seedUser(t, users, "other@example.com")

	a, err := apps.Create(ctx, owner.ID, application.CreateRequest{JobTitle: "Engineer", CompanyName: "Acme"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := apps.GetByID(ctx, other.ID, a.ID); !errors.Is(err, application.ErrNotFound) {
		t.Fatalf("GetByID by non-owner = %v, want ErrNotFound", err)
	}

	title := "Hijacked"
	if _, err := apps.Update(ctx, other.ID, a.ID, application.UpdateRequest{JobTitle: &title}); !errors.Is(err, application.ErrNotFound) {
		t.Fatalf("Update by non-owner = %v, want ErrNotFound", err)
	}

	if err := apps.Delete(ctx, other.ID, a.ID); !errors.Is(err, application.ErrNotFound) {
		t.Fatalf("Delete by non-owner = %v, want ErrNotFound", err)
	}

	list, err := apps.List(ctx, other.ID, application.Page{Limit: 100})
	if err != nil || len(list) != 0 {
		t.Fatalf("List for non-owner = %v, %v; want empty", list, err)
	}

	got, err := apps.GetByID(ctx, owner.ID, a.ID)
	if err != nil || got.JobTitle != "Engineer" {
		t.Fatalf("owner read = %+v, %v", got, err)
	}
}

func TestApplicationsRepoCreateRequiresExistingOwner(t *testing.T) {
	apps := NewApplicationsRepo(NewUsersRepo())

	_, err := apps.Create(context.Background(), "missing-user", application.CreateRequest{JobTitle: "x", CompanyName: "y"})
	if !errors.Is(err, user.ErrNotFound) {
		t.Fatalf("Create with unknown owner = %v, want wrapped ErrNotFound", err)
	}
}

func TestApplicationsRepoListWindow(t *testing.T) {
	ctx := context.Background()
	users := NewUsersRepo()
	apps := NewApplicationsRepo(users)
	owner := seedUser(t, users, "owner@example.com")
	other := seedUser(t, users, "other@example.com")

	var ids []string
	for i := 0; i < 5; i++ {
		a, err := apps.Create(ctx, owner.ID, application.CreateRequest{JobTitle: "Engineer", CompanyName: "Acme"})
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		ids = append(ids, a.ID)

		if _, err := apps.Create(ctx, other.ID, application.CreateRequest{JobTitle: "Other", CompanyName: "Else"}); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	page, err := apps.List(ctx, owner.ID, application.Page{Skip: 1, Limit: 3})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(page) != 3 {
		t.Fatalf("len = %d, want 3", len(page))
	}
	for i, a := range page {
		if a.ID != ids[i+1] {
			t.Fatalf("page[%d] = %s, want %s", i, a.ID, ids[i+1])
		}
	}

	tail, err := apps.List(ctx, owner.ID, application.Page{Skip: 4, Limit: 100})
	if err != nil || len(tail) != 1 {
		t.Fatalf("tail = %d items, err %v; want 1", len(tail), err)
	}
}

func TestApplicationsRepoDeleteThenGet(t *testing.T) {
	ctx := context.Background()
	users := NewUsersRepo()
	apps := NewApplicationsRepo(users)
	owner := seedUser(t, users, "owner@example.com")

	a, err := apps.Create(ctx, owner.ID, application.CreateRequest{JobTitle: "Engineer", CompanyName: "Acme"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := apps.Delete(ctx, owner.ID, a.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := apps.GetByID(ctx, owner.ID, a.ID); !errors.Is(err, application.ErrNotFound) {
		t.Fatalf("GetByID after delete = %v, want ErrNotFound", err)
	}
	if err := apps.Delete(ctx, owner.ID, a.ID); !errors.Is(err, application.ErrNotFound) {
		t.Fatalf("second Delete = %v, want ErrNotFound", err)
	}
}
