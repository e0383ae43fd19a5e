package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sakhike1/officeboard/internal/domain"
	"github.com/sakhike1/officeboard/internal/repository"
)

func seedUser(t *testing.T, store *Store, id, email string) {
	t.Helper()
	err := store.CreateUser(context.Background(), &domain.User{ID: id, Email: email, PasswordHash: []byte("hash"), CreatedAt: time.Now()})
	require.NoError(t, err)
}

func TestCreateUserRejectsDuplicateEmail(t *testing.T) {
	store := New()
	seedUser(t, store, "u1", "Ann@Example.com")

	err := store.CreateUser(context.Background(), &domain.User{ID: "u2", Email: "ann@example.com"})
	require.ErrorIs(t, err, repository.ErrConflict)

	user, err := store.GetUserByEmail(context.Background(), "ANN@example.com")
	require.NoError(t, err)
	require.Equal(t, "u1", user.ID)
}

func TestOfficesAreScopedToOwnerAndNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := New()
	seedUser(t, store, "u1", "a@example.com")
	seedUser(t, store, "u2", "b@example.com")

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.CreateOffice(ctx, &domain.Office{ID: "o1", OwnerID: "u1", Name: "HQ", Capacity: 5, CreatedAt: base}))
	require.NoError(t, store.CreateOffice(ctx, &domain.Office{ID: "o2", OwnerID: "u1", Name: "Annex", Capacity: 5, CreatedAt: base.Add(time.Hour)}))
	require.NoError(t, store.CreateOffice(ctx, &domain.Office{ID: "o3", OwnerID: "u2", Name: "Other", Capacity: 5, CreatedAt: base}))

	offices, err := store.ListOfficesByOwner(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, offices, 2)
	require.Equal(t, "o2", offices[0].ID)
	require.Equal(t, "o1", offices[1].ID)

	_, err = store.GetOffice(ctx, "u2", "o1")
	require.ErrorIs(t, err, repository.ErrNotFound)

	err = store.DeleteOffice(ctx, "u2", "o1")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCreateOfficeRequiresOwner(t *testing.T) {
	store := New()
	err := store.CreateOffice(context.Background(), &domain.Office{ID: "o1", OwnerID: "missing"})
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestDeleteOfficeRemovesWorkers(t *testing.T) {
	ctx := context.Background()
	store := New()
	seedUser(t, store, "u1", "a@example.com")
	require.NoError(t, store.CreateOffice(ctx, &domain.Office{ID: "o1", OwnerID: "u1", Capacity: 3}))
	require.NoError(t, store.CreateWorker(ctx, &domain.Worker{ID: "w1", OfficeID: "o1", OwnerID: "u1", Name: "Ann"}))
	require.NoError(t, store.CreateWorker(ctx, &domain.Worker{ID: "w2", OfficeID: "o1", OwnerID: "u1", Name: "Bob"}))

	count, err := store.CountWorkers(ctx, "o1")
	require.NoError(t, err)
	require.Equal(t, 2, count)

	require.NoError(t, store.DeleteOffice(ctx, "u1", "o1"))

	count, err = store.CountWorkers(ctx, "o1")
	require.NoError(t, err)
	require.Zero(t, count)

	_, err = store.GetWorker(ctx, "o1", "w1")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUpdateWorkerOnlyTouchesEditableFields(t *testing.T) {
	ctx := context.Background()
	store := New()
	seedUser(t, store, "u1", "a@example.com")
	require.NoError(t, store.CreateOffice(ctx, &domain.Office{ID: "o1", OwnerID: "u1", Capacity: 3}))
	created := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.CreateWorker(ctx, &domain.Worker{
		ID: "w1", OfficeID: "o1", OwnerID: "u1", Name: "Ann", Position: "Dev",
		Email: "ann@example.com", AvatarURL: "/a.svg", CreatedAt: created,
	}))

	err := store.UpdateWorker(ctx, &domain.Worker{
		ID: "w1", OfficeID: "o1", OwnerID: "someone-else", Name: "Ann Lee", Position: "Lead",
		Email: "lee@example.com", AvatarURL: "/b.svg",
	})
	require.NoError(t, err)

	worker, err := store.GetWorker(ctx, "o1", "w1")
	require.NoError(t, err)
	require.Equal(t, "Ann Lee", worker.Name)
	require.Equal(t, "Lead", worker.Position)
	require.Equal(t, "lee@example.com", worker.Email)
	require.Equal(t, "u1", worker.OwnerID)
	require.Equal(t, "/a.svg", worker.AvatarURL)
	require.True(t, created.Equal(worker.CreatedAt))
}

func TestWorkerCallsAreScopedToOffice(t *testing.T) {
	ctx := context.Background()
	store := New()
	seedUser(t, store, "u1", "a@example.com")
	require.NoError(t, store.CreateOffice(ctx, &domain.Office{ID: "o1", OwnerID: "u1", Capacity: 3}))
	require.NoError(t, store.CreateOffice(ctx, &domain.Office{ID: "o2", OwnerID: "u1", Capacity: 3}))
	require.NoError(t, store.CreateWorker(ctx, &domain.Worker{ID: "w1", OfficeID: "o1", OwnerID: "u1"}))

	require.ErrorIs(t, store.DeleteWorker(ctx, "o2", "w1"), repository.ErrNotFound)
	require.ErrorIs(t, store.UpdateWorker(ctx, &domain.Worker{ID: "w1", OfficeID: "o2"}), repository.ErrNotFound)
	require.ErrorIs(t, store.CreateWorker(ctx, &domain.Worker{ID: "w9", OfficeID: "nope"}), repository.ErrNotFound)

	require.NoError(t, store.DeleteWorker(ctx, "o1", "w1"))
	workers, err := store.ListWorkersByOffice(ctx, "o1")
	require.NoError(t, err)
	require.Empty(t, workers)
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().ListOfficesByOwner(ctx, "u1")
	require.ErrorIs(t, err, context.Canceled)
}

func TestCreateWorkerStopsAtCapacity(t *testing.T) {
	ctx := context.Background()
	store := New()
	seedUser(t, store, "u1", "a@example.com")
	require.NoError(t, store.CreateOffice(ctx, &domain.Office{ID: "o1", OwnerID: "u1", Capacity: 3}))

	var wg sync.WaitGroup
	errs := make([]error, 10)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = store.CreateWorker(ctx, &domain.Worker{ID: fmt.Sprintf("w%d", i), OfficeID: "o1", OwnerID: "u1"})
		}(i)
	}
	wg.Wait()

	created := 0
	for _, err := range errs {
		if err == nil {
			created++
			continue
		}
		require.ErrorIs(t, err, repository.ErrCapacity)
	}
	require.Equal(t, 3, created)

	count, err := store.CountWorkers(ctx, "o1")
	require.NoError(t, err)
	require.Equal(t, 3, count)
}
