package office

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/sakhike1/officeboard/internal/domain"
	"github.com/sakhike1/officeboard/internal/repository"
	"github.com/sakhike1/officeboard/pkg/validate"
)

type stubOfficeRepository struct {
	created []domain.Office
	offices map[string]domain.Office
	counts  map[string]int
	deleted []string
}

func newStub() *stubOfficeRepository {
	return &stubOfficeRepository{offices: make(map[string]domain.Office), counts: make(map[string]int)}
}

func (s *stubOfficeRepository) CreateOffice(ctx context.Context, office *domain.Office) error {
	s.created = append(s.created, *office)
	s.offices[office.ID] = *office
	return nil
}

func (s *stubOfficeRepository) GetOffice(ctx context.Context, ownerID, officeID string) (*domain.Office, error) {
	office, ok := s.offices[officeID]
	if !ok || office.OwnerID != ownerID {
		return nil, repository.ErrNotFound
	}
	return &office, nil
}

func (s *stubOfficeRepository) ListOfficesByOwner(ctx context.Context, ownerID string) ([]domain.Office, error) {
	var out []domain.Office
	for _, o := range s.offices {
		if o.OwnerID == ownerID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (s *stubOfficeRepository) DeleteOffice(ctx context.Context, ownerID, officeID string) error {
	if _, err := s.GetOffice(ctx, ownerID, officeID); err != nil {
		return err
	}
	delete(s.offices, officeID)
	s.deleted = append(s.deleted, officeID)
	return nil
}

func (s *stubOfficeRepository) CountWorkers(ctx context.Context, officeID string) (int, error) {
	return s.counts[officeID], nil
}

func newService(repo repository.OfficeRepository) Service {
	return New(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestCreateAppliesDefaultsAndOwner(t *testing.T) {
	repo := newStub()
	svc := newService(repo)

	office, err := svc.Create(context.Background(), "u1", CreateInput{
		Name: " HQ ", Location: "NYC", Capacity: 10, Email: "hq@x.com",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if office.OwnerID != "u1" || office.Name != "HQ" {
		t.Fatalf("unexpected office %+v", office)
	}
	if office.Color != domain.DefaultOfficeColor {
		t.Fatalf("expected default color, got %q", office.Color)
	}
	if office.ID == "" || office.CreatedAt.IsZero() {
		t.Fatalf("expected id and timestamp to be assigned")
	}
}

func TestCreateInvalidEmailSkipsStore(t *testing.T) {
	repo := newStub()
	svc := newService(repo)

	_, err := svc.Create(context.Background(), "u1", CreateInput{
		Name: "HQ", Location: "NYC", Capacity: 10, Email: "not-an-email",
	})
	var fields validate.FieldErrors
	if !errors.As(err, &fields) {
		t.Fatalf("expected field errors, got %v", err)
	}
	if fields["email"] != "Please enter a valid email address" {
		t.Fatalf("unexpected email message %q", fields["email"])
	}
	if len(repo.created) != 0 {
		t.Fatalf("store must not be called on invalid input")
	}
}

func TestCreateRejectsZeroCapacity(t *testing.T) {
	svc := newService(newStub())
	_, err := svc.Create(context.Background(), "u1", CreateInput{Name: "HQ", Location: "NYC", Email: "hq@x.com"})
	var fields validate.FieldErrors
	if !errors.As(err, &fields) || fields["capacity"] == "" {
		t.Fatalf("expected capacity error, got %v", err)
	}
}

func TestOwnershipIsolation(t *testing.T) {
	repo := newStub()
	repo.offices["o1"] = domain.Office{ID: "o1", OwnerID: "u1", Capacity: 5}
	repo.counts["o1"] = 3
	svc := newService(repo)
	ctx := context.Background()

	if _, err := svc.Get(ctx, "u2", "o1"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected not found for foreign office, got %v", err)
	}
	if _, err := svc.CountWorkers(ctx, "u2", "o1"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected not found for foreign count, got %v", err)
	}
	if err := svc.Delete(ctx, "u2", "o1"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected not found for foreign delete, got %v", err)
	}

	count, err := svc.CountWorkers(ctx, "u1", "o1")
	if err != nil || count != 3 {
		t.Fatalf("expected 3 workers, got %d (%v)", count, err)
	}
	if err := svc.Delete(ctx, "u1", "o1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	offices, _ := svc.List(ctx, "u1")
	if len(offices) != 0 {
		t.Fatalf("expected no offices after delete")
	}
}
