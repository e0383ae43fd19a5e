// Package memory implements the repository interfaces in process memory.
// Data is lost on restart; it backs tests and local runs without PostgreSQL.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/sakhike1/officeboard/internal/domain"
	"github.com/sakhike1/officeboard/internal/repository"
)

// Store keeps users, offices and workers in maps guarded by a single RWMutex.
type Store struct {
	mu sync.RWMutex

	users        map[string]domain.User
	usersByEmail map[string]string // lower(email) -> user id
	offices      map[string]domain.Office
	workers      map[string]domain.Worker
}

var _ repository.Store = (*Store)(nil)

// New creates an empty Store.
func New() *Store {
	return &Store{
		users:        make(map[string]domain.User),
		usersByEmail: make(map[string]string),
		offices:      make(map[string]domain.Office),
		workers:      make(map[string]domain.Worker),
	}
}

// Ping always succeeds.
func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

// CreateUser stores a user; emails are unique case-insensitively.
func (s *Store) CreateUser(ctx context.Context, user *domain.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(user.Email)
	if _, exists := s.usersByEmail[key]; exists {
		return repository.ErrConflict
	}
	if _, exists := s.users[user.ID]; exists {
		return repository.ErrConflict
	}
	clone := *user
	clone.PasswordHash = append([]byte(nil), user.PasswordHash...)
	s.users[user.ID] = clone
	s.usersByEmail[key] = user.ID
	return nil
}

// GetUserByEmail looks a user up by email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.usersByEmail[strings.ToLower(email)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	user := s.users[id]
	return &user, nil
}

// GetUserByID looks a user up by id.
func (s *Store) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &user, nil
}

// CreateOffice stores an office. The owner must exist.
func (s *Store) CreateOffice(ctx context.Context, office *domain.Office) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[office.OwnerID]; !ok {
		return repository.ErrNotFound
	}
	if _, exists := s.offices[office.ID]; exists {
		return repository.ErrConflict
	}
	if office.Capacity < 0 {
		return repository.ErrInvalidArgument
	}
	s.offices[office.ID] = *office
	return nil
}

// GetOffice returns the office when ownerID owns it.
func (s *Store) GetOffice(ctx context.Context, ownerID, officeID string) (*domain.Office, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	office, ok := s.offices[officeID]
	if !ok || office.OwnerID != ownerID {
		return nil, repository.ErrNotFound
	}
	return &office, nil
}

// ListOfficesByOwner returns offices newest first.
func (s *Store) ListOfficesByOwner(ctx context.Context, ownerID string) ([]domain.Office, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	offices := make([]domain.Office, 0)
	for _, office := range s.offices {
		if office.OwnerID == ownerID {
			offices = append(offices, office)
		}
	}
	sort.Slice(offices, func(i, j int) bool {
		if offices[i].CreatedAt.Equal(offices[j].CreatedAt) {
			return offices[i].ID > offices[j].ID
		}
		return offices[i].CreatedAt.After(offices[j].CreatedAt)
	})
	return offices, nil
}

// DeleteOffice removes an office and, mirroring the SQL schema's
// ON DELETE CASCADE, its workers.
func (s *Store) DeleteOffice(ctx context.Context, ownerID, officeID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	office, ok := s.offices[officeID]
	if !ok || office.OwnerID != ownerID {
		return repository.ErrNotFound
	}
	delete(s.offices, officeID)
	for id, worker := range s.workers {
		if worker.OfficeID == officeID {
			delete(s.workers, id)
		}
	}
	return nil
}

// CountWorkers counts workers in an office.
func (s *Store) CountWorkers(ctx context.Context, officeID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, worker := range s.workers {
		if worker.OfficeID == officeID {
			count++
		}
	}
	return count, nil
}

// CreateWorker stores a worker. The office must exist and have room.
func (s *Store) CreateWorker(ctx context.Context, worker *domain.Worker) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	office, ok := s.offices[worker.OfficeID]
	if !ok {
		return repository.ErrNotFound
	}
	if _, exists := s.workers[worker.ID]; exists {
		return repository.ErrConflict
	}
	count := 0
	for _, existing := range s.workers {
		if existing.OfficeID == worker.OfficeID {
			count++
		}
	}
	if count >= office.Capacity {
		return repository.ErrCapacity
	}
	s.workers[worker.ID] = *worker
	return nil
}

// GetWorker returns a worker within an office.
func (s *Store) GetWorker(ctx context.Context, officeID, workerID string) (*domain.Worker, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	worker, ok := s.workers[workerID]
	if !ok || worker.OfficeID != officeID {
		return nil, repository.ErrNotFound
	}
	return &worker, nil
}

// ListWorkersByOffice returns workers newest first.
func (s *Store) ListWorkersByOffice(ctx context.Context, officeID string) ([]domain.Worker, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	workers := make([]domain.Worker, 0)
	for _, worker := range s.workers {
		if worker.OfficeID == officeID {
			workers = append(workers, worker)
		}
	}
	sort.Slice(workers, func(i, j int) bool {
		if workers[i].CreatedAt.Equal(workers[j].CreatedAt) {
			return workers[i].ID > workers[j].ID
		}
		return workers[i].CreatedAt.After(workers[j].CreatedAt)
	})
	return workers, nil
}

// UpdateWorker rewrites name, position and email only.
func (s *Store) UpdateWorker(ctx context.Context, worker *domain.Worker) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.workers[worker.ID]
	if !ok || stored.OfficeID != worker.OfficeID {
		return repository.ErrNotFound
	}
	stored.Name = worker.Name
	stored.Position = worker.Position
	stored.Email = worker.Email
	s.workers[worker.ID] = stored
	return nil
}

// DeleteWorker removes a worker from an office.
func (s *Store) DeleteWorker(ctx context.Context, officeID, workerID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	worker, ok := s.workers[workerID]
	if !ok || worker.OfficeID != officeID {
		return repository.ErrNotFound
	}
	delete(s.workers, workerID)
	return nil
}
