package worker

import (
	"context"
	"errors"
	"strings"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"github.com/sakhike1/officeboard/internal/domain"
	"github.com/sakhike1/officeboard/internal/repository"
	"github.com/sakhike1/officeboard/pkg/validate"
)

// ErrOfficeFull is returned when an office already holds capacity workers.
var ErrOfficeFull = errors.New("office is at capacity")

// Input carries the editable worker fields.
type Input struct {
	Name      string `json:"name" validate:"required"`
	Position  string `json:"position" validate:"required"`
	Email     string `json:"email" validate:"required,contact_email"`
	AvatarURL string `json:"avatar_url,omitempty" validate:"omitempty,url"`
}

// Normalize trims whitespace from every field.
func (in Input) Normalize() Input {
	in.Name = strings.TrimSpace(in.Name)
	in.Position = strings.TrimSpace(in.Position)
	in.Email = strings.TrimSpace(in.Email)
	in.AvatarURL = strings.TrimSpace(in.AvatarURL)
	return in
}

// Validate reports field problems as validate.FieldErrors.
func (in Input) Validate() error {
	return validate.Struct(in.Normalize())
}

// Service manages workers inside offices owned by the caller.
type Service struct {
	offices repository.OfficeRepository
	workers repository.WorkerRepository
	logger  *slog.Logger
}

// New constructs a Service.
func New(offices repository.OfficeRepository, workers repository.WorkerRepository, logger *slog.Logger) Service {
	return Service{offices: offices, workers: workers, logger: logger}
}

// List returns the office's workers, newest first.
func (s Service) List(ctx context.Context, userID, officeID string) ([]domain.Worker, error) {
	if _, err := s.offices.GetOffice(ctx, userID, officeID); err != nil {
		return nil, err
	}
	return s.workers.ListWorkersByOffice(ctx, officeID)
}

// Create adds a worker unless the office is already full.
func (s Service) Create(ctx context.Context, userID, officeID string, input Input) (*domain.Worker, error) {
	input = input.Normalize()
	if err := validate.Struct(input); err != nil {
		return nil, err
	}
	if _, err := s.offices.GetOffice(ctx, userID, officeID); err != nil {
		return nil, err
	}
	worker := &domain.Worker{
		ID:        uuid.NewString(),
		OfficeID:  officeID,
		OwnerID:   userID,
		Name:      input.Name,
		Position:  input.Position,
		Email:     input.Email,
		AvatarURL: input.AvatarURL,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.workers.CreateWorker(ctx, worker); err != nil {
		if errors.Is(err, repository.ErrCapacity) {
			return nil, ErrOfficeFull
		}
		return nil, err
	}
	s.logger.Info("worker created", "worker_id", worker.ID, "office_id", officeID)
	return worker, nil
}

// Update rewrites name, position and email. The avatar is not editable here.
func (s Service) Update(ctx context.Context, userID, officeID, workerID string, input Input) (*domain.Worker, error) {
	input = input.Normalize()
	input.AvatarURL = ""
	if err := validate.Struct(input); err != nil {
		return nil, err
	}
	if _, err := s.offices.GetOffice(ctx, userID, officeID); err != nil {
		return nil, err
	}
	patch := &domain.Worker{ID: workerID, OfficeID: officeID, Name: input.Name, Position: input.Position, Email: input.Email}
	if err := s.workers.UpdateWorker(ctx, patch); err != nil {
		return nil, err
	}
	s.logger.Info("worker updated", "worker_id", workerID, "office_id", officeID)
	return s.workers.GetWorker(ctx, officeID, workerID)
}

// Delete removes a worker.
func (s Service) Delete(ctx context.Context, userID, officeID, workerID string) error {
	if _, err := s.offices.GetOffice(ctx, userID, officeID); err != nil {
		return err
	}
	if err := s.workers.DeleteWorker(ctx, officeID, workerID); err != nil {
		return err
	}
	s.logger.Info("worker deleted", "worker_id", workerID, "office_id", officeID)
	return nil
}

// Filter keeps workers whose name, position or email contains term,
// ignoring case. A blank term keeps everyone.
func Filter(workers []domain.Worker, term string) []domain.Worker {
	out := make([]domain.Worker, 0, len(workers))
	for _, w := range workers {
		if Matches(term, w.Name, w.Position, w.Email) {
			out = append(out, w)
		}
	}
	return out
}

// Matches reports whether term is a case-insensitive substring of any field.
func Matches(term string, fields ...string) bool {
	needle := strings.ToLower(strings.TrimSpace(term))
	if needle == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}
