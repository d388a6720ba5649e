package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/riskibarqy/matchday/internal/platform/logging"
)

type BackfillInput struct {
	FixtureIDs []int64
	MaxWorkers int
}

type BackfillResult struct {
	TaskCount    int                  `json:"task_count"`
	SuccessCount int                  `json:"success_count"`
	FailedCount  int                  `json:"failed_count"`
	WorkerCount  int                  `json:"worker_count"`
	Tasks        []BackfillTaskResult `json:"tasks"`
}

type BackfillTaskResult struct {
	FixtureID  int64  `json:"fixture_id"`
	Status     string `json:"status"`
	DurationMs int64  `json:"duration_ms"`
	Message    string `json:"message,omitempty"`
}

const (
	backfillStatusSuccess = "success"
	backfillStatusFailed  = "failed"
)

// backfillPool is the slice of ants.Pool the backfill loop uses.
type backfillPool interface {
	Submit(task func()) error
	Release()
}

// BackfillService re-ingests an explicit set of fixtures through a small
// worker pool. Callers name the fixture ids; nothing is inferred from
// previous runs.
type BackfillService struct {
	refresher FixtureRefresher
	logger    *logging.Logger

	newPool func(size int) (backfillPool, error)
}

func NewBackfillService(refresher FixtureRefresher, logger *logging.Logger) *BackfillService {
	if logger == nil {
		logger = logging.Default()
	}
	return &BackfillService{
		refresher: refresher,
		logger:    logger,
		newPool: func(size int) (backfillPool, error) {
			return ants.NewPool(size)
		},
	}
}

func (s *BackfillService) Backfill(ctx context.Context, input BackfillInput) (BackfillResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.BackfillService.Backfill")
	defer span.End()

	if s.refresher == nil {
		return BackfillResult{}, fmt.Errorf("%w: backfill is not fully configured", ErrDependencyUnavailable)
	}

	fixtureIDs, err := normalizeBackfillFixtureIDs(input.FixtureIDs)
	if err != nil {
		return BackfillResult{}, err
	}

	workerCount := normalizeBackfillWorkerCount(input.MaxWorkers, len(fixtureIDs))
	result := BackfillResult{
		TaskCount:   len(fixtureIDs),
		WorkerCount: workerCount,
		Tasks:       make([]BackfillTaskResult, 0, len(fixtureIDs)),
	}

	rows := make(chan BackfillTaskResult, len(fixtureIDs))

	var successCount atomic.Int32
	var failedCount atomic.Int32

	workerPool, err := s.newPool(workerCount)
	if err != nil {
		return BackfillResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer workerPool.Release()

	var workers sync.WaitGroup
	for _, fixtureID := range fixtureIDs {
		fixtureID := fixtureID
		workers.Add(1)
		if err := workerPool.Submit(func() {
			defer workers.Done()

			start := time.Now()
			row := BackfillTaskResult{FixtureID: fixtureID}

			if err := s.refresher.Refresh(ctx, fixtureID); err != nil {
				row.Status = backfillStatusFailed
				row.Message = err.Error()
				failedCount.Add(1)
			} else {
				row.Status = backfillStatusSuccess
				successCount.Add(1)
			}
			row.DurationMs = time.Since(start).Milliseconds()

			rows <- row
		}); err != nil {
			workers.Done()
			// Already-submitted tasks are still running; wait them out
			// before the deferred Release tears down the pool.
			workers.Wait()
			return BackfillResult{}, fmt.Errorf("submit task to worker pool: %w", err)
		}
	}

	workers.Wait()
	close(rows)

	for row := range rows {
		result.Tasks = append(result.Tasks, row)
	}
	sort.SliceStable(result.Tasks, func(i, j int) bool {
		return result.Tasks[i].FixtureID < result.Tasks[j].FixtureID
	})

	result.SuccessCount = int(successCount.Load())
	result.FailedCount = int(failedCount.Load())

	s.logger.InfoContext(ctx, "backfill finished",
		"tasks", result.TaskCount,
		"success", result.SuccessCount,
		"failed", result.FailedCount,
	)
	return result, nil
}

func normalizeBackfillFixtureIDs(raw []int64) ([]int64, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: fixture_ids is required", ErrInvalidInput)
	}

	seen := make(map[int64]struct{}, len(raw))
	out := make([]int64, 0, len(raw))
	for _, fixtureID := range raw {
		if fixtureID <= 0 {
			return nil, fmt.Errorf("%w: fixture_ids must be greater than zero", ErrInvalidInput)
		}
		if _, exists := seen[fixtureID]; exists {
			continue
		}
		seen[fixtureID] = struct{}{}
		out = append(out, fixtureID)
	}
	return out, nil
}

// Worker count stays low on purpose: every task fans out into four
// provider calls and the provider rate-limits aggressively.
func normalizeBackfillWorkerCount(value int, taskCount int) int {
	if taskCount <= 0 {
		return 1
	}
	if value <= 0 {
		value = 1
	}
	if value > 2 {
		value = 2
	}
	if value > taskCount {
		value = taskCount
	}
	return value
}
