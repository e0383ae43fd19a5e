package office

import (
	"context"
	"strings"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"github.com/sakhike1/officeboard/internal/domain"
	"github.com/sakhike1/officeboard/internal/repository"
	"github.com/sakhike1/officeboard/pkg/validate"
)

// CreateInput carries the fields of the office creation form.
type CreateInput struct {
	Name     string `json:"name" validate:"required"`
	Location string `json:"location" validate:"required"`
	Capacity int    `json:"capacity" validate:"min=1"`
	Color    string `json:"color" validate:"omitempty,hexcolor_short"`
	Email    string `json:"email" validate:"required,contact_email"`
	Phone    string `json:"phone" validate:"max=32"`
}

// Normalize trims whitespace from every text field.
func (in CreateInput) Normalize() CreateInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Location = strings.TrimSpace(in.Location)
	in.Color = strings.TrimSpace(in.Color)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	return in
}

// Validate reports field problems as validate.FieldErrors.
func (in CreateInput) Validate() error {
	return validate.Struct(in.Normalize())
}

// Service manages offices on behalf of their owner.
type Service struct {
	repo   repository.OfficeRepository
	logger *slog.Logger
}

// New constructs a Service.
func New(repo repository.OfficeRepository, logger *slog.Logger) Service {
	return Service{repo: repo, logger: logger}
}

// List returns the user's offices, newest first.
func (s Service) List(ctx context.Context, userID string) ([]domain.Office, error) {
	return s.repo.ListOfficesByOwner(ctx, userID)
}

// Get returns one office. Offices of other users are reported as not found.
func (s Service) Get(ctx context.Context, userID, officeID string) (*domain.Office, error) {
	return s.repo.GetOffice(ctx, userID, officeID)
}

// Create validates input and stores a new office stamped with userID.
func (s Service) Create(ctx context.Context, userID string, input CreateInput) (*domain.Office, error) {
	input = input.Normalize()
	if err := validate.Struct(input); err != nil {
		return nil, err
	}
	color := input.Color
	if color == "" {
		color = domain.DefaultOfficeColor
	}
	office := &domain.Office{
		ID:        uuid.NewString(),
		OwnerID:   userID,
		Name:      input.Name,
		Location:  input.Location,
		Capacity:  input.Capacity,
		Color:     color,
		Email:     input.Email,
		Phone:     input.Phone,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.CreateOffice(ctx, office); err != nil {
		return nil, err
	}
	s.logger.Info("office created", "office_id", office.ID, "owner_id", userID)
	return office, nil
}

// Delete removes an office. Worker cleanup is left to the store schema.
func (s Service) Delete(ctx context.Context, userID, officeID string) error {
	if err := s.repo.DeleteOffice(ctx, userID, officeID); err != nil {
		return err
	}
	s.logger.Info("office deleted", "office_id", officeID, "owner_id", userID)
	return nil
}

// CountWorkers counts the workers of an office the user owns.
func (s Service) CountWorkers(ctx context.Context, userID, officeID string) (int, error) {
	if _, err := s.repo.GetOffice(ctx, userID, officeID); err != nil {
		return 0, err
	}
	return s.repo.CountWorkers(ctx, officeID)
}
