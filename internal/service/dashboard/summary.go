// Package dashboard aggregates office occupancy for the overview page.
package dashboard

import (
	"context"
	"log/slog"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/sakhike1/officeboard/internal/domain"
	"github.com/sakhike1/officeboard/internal/repository"
)

// maxConcurrentCounts bounds the per-office count fan-out.
const maxConcurrentCounts = 8

// WorkerCounter counts the workers of one office.
type WorkerCounter interface {
	CountWorkers(ctx context.Context, officeID string) (int, error)
}

// CounterFunc adapts a function to WorkerCounter.
type CounterFunc func(ctx context.Context, officeID string) (int, error)

// CountWorkers calls f.
func (f CounterFunc) CountWorkers(ctx context.Context, officeID string) (int, error) {
	return f(ctx, officeID)
}

// OfficeSummary pairs an office with its current headcount.
type OfficeSummary struct {
	Office      domain.Office `json:"office"`
	WorkerCount int           `json:"worker_count"`
	Occupancy   int           `json:"occupancy"`
}

// Summary is the dashboard overview.
type Summary struct {
	Offices       []OfficeSummary `json:"offices"`
	TotalOffices  int             `json:"total_offices"`
	TotalWorkers  int             `json:"total_workers"`
	TotalCapacity int             `json:"total_capacity"`
	OccupancyRate int             `json:"occupancy_rate"`
}

// WorkerCounts maps office id to headcount.
func (s Summary) WorkerCounts() map[string]int {
	counts := make(map[string]int, len(s.Offices))
	for _, o := range s.Offices {
		counts[o.Office.ID] = o.WorkerCount
	}
	return counts
}

// OccupancyRate returns round(100*workers/capacity) clamped to [0,100].
// A zero capacity yields 0.
func OccupancyRate(workers, capacity int) int {
	if capacity <= 0 || workers <= 0 {
		return 0
	}
	rate := int(math.Round(100 * float64(workers) / float64(capacity)))
	if rate > 100 {
		return 100
	}
	return rate
}

// Summarize counts workers for every office concurrently and aggregates the
// totals. A failed count is logged and treated as zero. The only error
// returned is the context's, in which case the partial result is discarded.
func Summarize(ctx context.Context, offices []domain.Office, counter WorkerCounter, logger *slog.Logger) (Summary, error) {
	if logger == nil {
		logger = slog.Default()
	}
	counts := make([]int, len(offices))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentCounts)
	for i := range offices {
		g.Go(func() error {
			n, err := counter.CountWorkers(gctx, offices[i].ID)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				logger.Warn("worker count failed", "office_id", offices[i].ID, "error", err)
				return nil
			}
			counts[i] = n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Summary{}, err
	}
	if err := ctx.Err(); err != nil {
		return Summary{}, err
	}

	summary := Summary{Offices: make([]OfficeSummary, len(offices)), TotalOffices: len(offices)}
	for i, office := range offices {
		summary.Offices[i] = OfficeSummary{
			Office:      office,
			WorkerCount: counts[i],
			Occupancy:   OccupancyRate(counts[i], office.Capacity),
		}
		summary.TotalWorkers += counts[i]
		summary.TotalCapacity += office.Capacity
	}
	summary.OccupancyRate = OccupancyRate(summary.TotalWorkers, summary.TotalCapacity)
	return summary, nil
}

// Service builds summaries straight from the store.
type Service struct {
	offices repository.OfficeRepository
	logger  *slog.Logger
}

// New constructs a Service.
func New(offices repository.OfficeRepository, logger *slog.Logger) Service {
	return Service{offices: offices, logger: logger}
}

// Summary lists the user's offices and aggregates their headcounts.
func (s Service) Summary(ctx context.Context, userID string) (Summary, error) {
	offices, err := s.offices.ListOfficesByOwner(ctx, userID)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(ctx, offices, s.offices, s.logger)
}
