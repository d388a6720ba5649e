package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/matchday/internal/domain/matchrecord"
	"github.com/riskibarqy/matchday/internal/platform/logging"
)

// FixtureRefresher is the slice of IngestService the freshness check
// depends on.
type FixtureRefresher interface {
	Refresh(ctx context.Context, fixtureID int64) error
}

type FreshnessConfig struct {
	TeamID int64
	Season int

	// StalenessWindow bounds how long a finished fixture is still the one
	// worth checking. A last fixture exactly this old is still the
	// candidate; anything older yields to the next fixture.
	StalenessWindow time.Duration

	// RefreshWindow bounds how close to kickoff (either side) a fixture
	// must be to warrant a refresh. A fixture exactly at the bound is
	// refreshed.
	RefreshWindow time.Duration
}

const (
	defaultStalenessWindow = 24 * time.Hour
	defaultRefreshWindow   = time.Hour
)

// FreshnessService decides which fixture is worth looking at and whether
// its stored data is likely out of date.
type FreshnessService struct {
	store     matchrecord.Store
	refresher FixtureRefresher
	logger    *logging.Logger
	cfg       FreshnessConfig

	now func() time.Time
}

// CheckResult is the outcome of one freshness cycle, shaped for the
// trigger endpoints: a verdict plus the log lines explaining it.
type CheckResult struct {
	Success   bool     `json:"success"`
	Message   string   `json:"message"`
	Logs      []string `json:"logs"`
	FixtureID int64    `json:"fixture_id,omitempty"`
	Refreshed bool     `json:"refreshed"`
}

func NewFreshnessService(store matchrecord.Store, refresher FixtureRefresher, logger *logging.Logger, cfg FreshnessConfig) *FreshnessService {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.StalenessWindow <= 0 {
		cfg.StalenessWindow = defaultStalenessWindow
	}
	if cfg.RefreshWindow <= 0 {
		cfg.RefreshWindow = defaultRefreshWindow
	}
	return &FreshnessService{
		store:     store,
		refresher: refresher,
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
	}
}

// SelectCandidate picks the fixture the freshness check should inspect:
// the most recent past fixture while it is still fresh enough to matter,
// otherwise the next upcoming one. Both sides of the timeline must exist;
// with only one of them there is not enough history to decide, and the
// selector deliberately yields nothing rather than guessing.
func (s *FreshnessService) SelectCandidate(ctx context.Context) (matchrecord.Record, bool, error) {
	return s.selectCandidateAt(ctx, s.now())
}

func (s *FreshnessService) selectCandidateAt(ctx context.Context, now time.Time) (matchrecord.Record, bool, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FreshnessService.SelectCandidate")
	defer span.End()

	last, lastOK, err := s.store.LastFixture(ctx, s.cfg.Season, s.cfg.TeamID, now)
	if err != nil {
		return matchrecord.Record{}, false, fmt.Errorf("select candidate fixture: %w", err)
	}
	next, nextOK, err := s.store.NextFixture(ctx, s.cfg.Season, s.cfg.TeamID, now)
	if err != nil {
		return matchrecord.Record{}, false, fmt.Errorf("select candidate fixture: %w", err)
	}
	if !lastOK || !nextOK {
		return matchrecord.Record{}, false, nil
	}

	staleness := now.Sub(time.Unix(last.MatchDate, 0))
	if staleness > s.cfg.StalenessWindow {
		return next, true, nil
	}
	return last, true, nil
}

// ShouldRefresh reports whether the record's stored data is likely to be
// moving: either kickoff is within the refresh window on either side, or
// the stored status says the match is underway.
func (s *FreshnessService) ShouldRefresh(record matchrecord.Record, now time.Time) bool {
	delta := now.Unix() - record.MatchDate
	if delta < 0 {
		delta = -delta
	}
	if delta <= int64(s.cfg.RefreshWindow/time.Second) {
		return true
	}
	return matchrecord.IsInPlayStatus(record.Fixture.Status.Long)
}

// RunOnce executes a full freshness cycle. Refresh failures are reported
// in the result rather than returned, so a flaky provider does not abort
// the polling loop; store errors still surface as errors.
func (s *FreshnessService) RunOnce(ctx context.Context) (CheckResult, error) {
	return s.RunOnceAt(ctx, s.now())
}

// RunOnceAt runs the cycle as if the wall clock read at. The callable job
// endpoint uses it to replay the decision for an arbitrary date.
func (s *FreshnessService) RunOnceAt(ctx context.Context, at time.Time) (CheckResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FreshnessService.RunOnce")
	defer span.End()

	if s.store == nil || s.refresher == nil {
		return CheckResult{}, fmt.Errorf("%w: freshness check is not fully configured", ErrDependencyUnavailable)
	}

	result := CheckResult{Success: true}
	result.addLog("freshness check started for team=%d season=%d", s.cfg.TeamID, s.cfg.Season)

	candidate, ok, err := s.selectCandidateAt(ctx, at)
	if err != nil {
		return CheckResult{}, err
	}
	if !ok {
		result.Message = "no fixture to check"
		result.addLog("no stored fixture matched the selection window")
		s.logger.InfoContext(ctx, "freshness check found no candidate", "team_id", s.cfg.TeamID, "season", s.cfg.Season)
		return result, nil
	}

	if candidate.Fixture.ID <= 0 {
		result.Message = "no fixture to check"
		result.addLog("stored candidate has no fixture id, skipping")
		s.logger.WarnContext(ctx, "candidate record without fixture id", "team_id", s.cfg.TeamID, "season", s.cfg.Season)
		return result, nil
	}

	result.FixtureID = candidate.Fixture.ID
	result.addLog("candidate fixture=%d matchDate=%d status=%q", candidate.Fixture.ID, candidate.MatchDate, candidate.Fixture.Status.Long)

	if !s.ShouldRefresh(candidate, at) {
		result.Message = fmt.Sprintf("fixture %d is fresh", candidate.Fixture.ID)
		result.addLog("outside refresh window and not in play, skipping")
		return result, nil
	}

	result.addLog("refreshing fixture=%d", candidate.Fixture.ID)
	if err := s.refresher.Refresh(ctx, candidate.Fixture.ID); err != nil {
		result.Success = false
		result.Message = fmt.Sprintf("refresh of fixture %d failed", candidate.Fixture.ID)
		result.addLog("refresh failed: %v", err)
		s.logger.ErrorContext(ctx, "fixture refresh failed", "fixture_id", candidate.Fixture.ID, "error", err)
		return result, nil
	}

	result.Refreshed = true
	result.Message = fmt.Sprintf("fixture %d refreshed", candidate.Fixture.ID)
	return result, nil
}

func (r *CheckResult) addLog(format string, args ...any) {
	r.Logs = append(r.Logs, fmt.Sprintf(format, args...))
}
