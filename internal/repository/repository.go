package repository

import (
	"context"

	"github.com/sakhike1/officeboard/internal/domain"
)

// UserRepository persists users.
type UserRepository interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
}

// OfficeRepository manages offices. Every read and delete is scoped to an owner.
type OfficeRepository interface {
	CreateOffice(ctx context.Context, office *domain.Office) error
	GetOffice(ctx context.Context, ownerID, officeID string) (*domain.Office, error)
	ListOfficesByOwner(ctx context.Context, ownerID string) ([]domain.Office, error)
	DeleteOffice(ctx context.Context, ownerID, officeID string) error
	CountWorkers(ctx context.Context, officeID string) (int, error)
}

// WorkerRepository manages workers. Every call is scoped to an office.
// CreateWorker checks the office capacity and inserts in one atomic step,
// failing with ErrCapacity when the office is full.
type WorkerRepository interface {
	CreateWorker(ctx context.Context, worker *domain.Worker) error
	GetWorker(ctx context.Context, officeID, workerID string) (*domain.Worker, error)
	ListWorkersByOffice(ctx context.Context, officeID string) ([]domain.Worker, error)
	UpdateWorker(ctx context.Context, worker *domain.Worker) error
	DeleteWorker(ctx context.Context, officeID, workerID string) error
}

// Store bundles every repository a backend offers.
type Store interface {
	UserRepository
	OfficeRepository
	WorkerRepository
	Ping(ctx context.Context) error
}
