package dashboard

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sakhike1/officeboard/internal/domain"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestOccupancyRate(t *testing.T) {
	cases := []struct {
		workers, capacity, want int
	}{
		{0, 0, 0},
		{5, 0, 0},
		{0, 10, 0},
		{1, 10, 10},
		{1, 3, 33},
		{2, 3, 67},
		{10, 10, 100},
		{12, 10, 100},
	}
	for _, tc := range cases {
		if got := OccupancyRate(tc.workers, tc.capacity); got != tc.want {
			t.Fatalf("OccupancyRate(%d,%d) = %d, want %d", tc.workers, tc.capacity, got, tc.want)
		}
	}
}

func TestSummarizeAggregates(t *testing.T) {
	offices := []domain.Office{
		{ID: "a", Capacity: 10},
		{ID: "b", Capacity: 5},
		{ID: "c", Capacity: 5},
	}
	counts := map[string]int{"a": 1, "b": 2, "c": 0}
	counter := CounterFunc(func(_ context.Context, id string) (int, error) {
		return counts[id], nil
	})

	summary, err := Summarize(context.Background(), offices, counter, discard)
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if summary.TotalWorkers != 3 || summary.TotalCapacity != 20 || summary.TotalOffices != 3 {
		t.Fatalf("unexpected totals %+v", summary)
	}
	if summary.OccupancyRate != 15 {
		t.Fatalf("expected 15%%, got %d", summary.OccupancyRate)
	}
	if summary.Offices[1].WorkerCount != 2 || summary.Offices[1].Occupancy != 40 {
		t.Fatalf("unexpected office b summary %+v", summary.Offices[1])
	}
	if got := summary.WorkerCounts(); got["a"] != 1 || got["b"] != 2 {
		t.Fatalf("unexpected count map %v", got)
	}
}

func TestSummarizeTreatsFailedCountAsZero(t *testing.T) {
	offices := []domain.Office{{ID: "a", Capacity: 10}, {ID: "b", Capacity: 10}}
	counter := CounterFunc(func(_ context.Context, id string) (int, error) {
		if id == "a" {
			return 0, errors.New("boom")
		}
		return 4, nil
	})
	summary, err := Summarize(context.Background(), offices, counter, discard)
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if summary.TotalWorkers != 4 || summary.Offices[0].WorkerCount != 0 {
		t.Fatalf("unexpected summary %+v", summary)
	}
}

func TestSummarizeCountsConcurrently(t *testing.T) {
	offices := make([]domain.Office, 4)
	for i := range offices {
		offices[i] = domain.Office{ID: string(rune('a' + i)), Capacity: 1}
	}
	var inFlight, peak int32
	counter := CounterFunc(func(_ context.Context, _ string) (int, error) {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		return 1, nil
	})
	summary, err := Summarize(context.Background(), offices, counter, discard)
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if summary.OccupancyRate != 100 {
		t.Fatalf("expected 100%%, got %d", summary.OccupancyRate)
	}
	if atomic.LoadInt32(&peak) < 2 {
		t.Fatalf("expected concurrent counts, peak was %d", peak)
	}
}

func TestSummarizeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	counter := CounterFunc(func(ctx context.Context, _ string) (int, error) {
		return 0, ctx.Err()
	})
	_, err := Summarize(ctx, []domain.Office{{ID: "a", Capacity: 1}}, counter, discard)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	summary, err := Summarize(context.Background(), nil, CounterFunc(func(context.Context, string) (int, error) { return 0, nil }), discard)
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if summary.OccupancyRate != 0 || len(summary.Offices) != 0 {
		t.Fatalf("unexpected summary %+v", summary)
	}
}
