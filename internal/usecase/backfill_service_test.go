package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/riskibarqy/matchday/internal/platform/logging"
)

type countingRefresher struct {
	mu     sync.Mutex
	calls  []int64
	failOn map[int64]error
}

func (s *countingRefresher) Refresh(_ context.Context, fixtureID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, fixtureID)
	return s.failOn[fixtureID]
}

func TestBackfillService_RefreshesEveryFixture(t *testing.T) {
	t.Parallel()

	refresher := &countingRefresher{}
	svc := NewBackfillService(refresher, logging.NewNop())

	result, err := svc.Backfill(context.Background(), BackfillInput{
		FixtureIDs: []int64{3, 1, 2, 1},
		MaxWorkers: 2,
	})
	if err != nil {
		t.Fatalf("Backfill: %v", err)
	}

	if result.TaskCount != 3 {
		t.Fatalf("duplicates must collapse, got %d tasks", result.TaskCount)
	}
	if result.SuccessCount != 3 || result.FailedCount != 0 {
		t.Fatalf("unexpected tallies: %+v", result)
	}
	if len(result.Tasks) != 3 || result.Tasks[0].FixtureID != 1 {
		t.Fatalf("tasks should be sorted by fixture id: %+v", result.Tasks)
	}
}

func TestBackfillService_TalliesFailures(t *testing.T) {
	t.Parallel()

	refresher := &countingRefresher{failOn: map[int64]error{2: errors.New("provider down")}}
	svc := NewBackfillService(refresher, logging.NewNop())

	result, err := svc.Backfill(context.Background(), BackfillInput{FixtureIDs: []int64{1, 2, 3}})
	if err != nil {
		t.Fatalf("Backfill: %v", err)
	}

	if result.SuccessCount != 2 || result.FailedCount != 1 {
		t.Fatalf("unexpected tallies: %+v", result)
	}
	for _, row := range result.Tasks {
		if row.FixtureID == 2 && row.Status != backfillStatusFailed {
			t.Fatalf("fixture 2 should be failed: %+v", row)
		}
	}
}

func TestBackfillService_RequiresFixtureIDs(t *testing.T) {
	t.Parallel()

	svc := NewBackfillService(&countingRefresher{}, logging.NewNop())

	if _, err := svc.Backfill(context.Background(), BackfillInput{}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if _, err := svc.Backfill(context.Background(), BackfillInput{FixtureIDs: []int64{0}}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input for zero id, got %v", err)
	}
}

// failingSubmitPool runs the first task on a goroutine and rejects every
// later submission, so in-flight work exists when Submit starts failing.
type failingSubmitPool struct {
	wg        sync.WaitGroup
	submitted int
	released  bool
}

func (p *failingSubmitPool) Submit(task func()) error {
	p.submitted++
	if p.submitted > 1 {
		return errors.New("pool is closed")
	}
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		task()
	}()
	return nil
}

func (p *failingSubmitPool) Release() {
	p.wg.Wait()
	p.released = true
}

func TestBackfillService_SubmitFailureDrainsInFlightTasks(t *testing.T) {
	t.Parallel()

	refresher := &countingRefresher{}
	pool := &failingSubmitPool{}
	svc := NewBackfillService(refresher, logging.NewNop())
	svc.newPool = func(int) (backfillPool, error) { return pool, nil }

	_, err := svc.Backfill(context.Background(), BackfillInput{FixtureIDs: []int64{1, 2, 3}})
	if err == nil {
		t.Fatal("expected submit failure to surface")
	}

	refresher.mu.Lock()
	defer refresher.mu.Unlock()
	if len(refresher.calls) != 1 {
		t.Fatalf("the in-flight task must finish before Backfill returns, got calls %v", refresher.calls)
	}
	if !pool.released {
		t.Fatal("pool must still be released on the error path")
	}
}

func TestNormalizeBackfillWorkerCount(t *testing.T) {
	t.Parallel()

	if got := normalizeBackfillWorkerCount(0, 5); got != 1 {
		t.Fatalf("zero workers should default to 1, got %d", got)
	}
	if got := normalizeBackfillWorkerCount(8, 5); got != 2 {
		t.Fatalf("workers should cap at 2, got %d", got)
	}
	if got := normalizeBackfillWorkerCount(2, 1); got != 1 {
		t.Fatalf("workers should not exceed task count, got %d", got)
	}
}
