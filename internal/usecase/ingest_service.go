package usecase

import (
	"context"
	"fmt"

	"github.com/sourcegraph/conc/pool"

	"github.com/riskibarqy/matchday/internal/domain/matchrecord"
	"github.com/riskibarqy/matchday/internal/platform/logging"
)

// FixtureProvider is the slice of the football data API the ingest flow
// needs. external/apifootball implements it.
type FixtureProvider interface {
	FixtureByID(ctx context.Context, fixtureID int64) (matchrecord.Core, error)
	FixturesByTeamSeason(ctx context.Context, teamID int64, season int) ([]matchrecord.Core, error)
	FixtureStatistics(ctx context.Context, fixtureID int64) ([]map[string]any, error)
	FixtureEvents(ctx context.Context, fixtureID int64) ([]map[string]any, error)
	FixtureLineups(ctx context.Context, fixtureID int64) ([]map[string]any, error)
}

// IngestService assembles full fixture records from the provider and
// merge-writes them into the store.
type IngestService struct {
	provider FixtureProvider
	store    matchrecord.Store
	logger   *logging.Logger
}

func NewIngestService(provider FixtureProvider, store matchrecord.Store, logger *logging.Logger) *IngestService {
	if logger == nil {
		logger = logging.Default()
	}
	return &IngestService{provider: provider, store: store, logger: logger}
}

// Assemble fetches the fixture core and its three sub-resources in
// parallel and combines them into one record. The record is validated but
// not persisted; Refresh does both.
func (s *IngestService) Assemble(ctx context.Context, fixtureID int64) (matchrecord.Record, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestService.Assemble")
	defer span.End()

	if s.provider == nil {
		return matchrecord.Record{}, fmt.Errorf("%w: fixture provider is not configured", ErrDependencyUnavailable)
	}
	if fixtureID <= 0 {
		return matchrecord.Record{}, fmt.Errorf("%w: fixture id must be greater than zero", ErrInvalidInput)
	}

	var core matchrecord.Core
	var statistics, events, lineups []map[string]any

	group := pool.New().WithErrors().WithFirstError().WithContext(ctx)
	group.Go(func(ctx context.Context) error {
		var err error
		core, err = s.provider.FixtureByID(ctx, fixtureID)
		return err
	})
	group.Go(func(ctx context.Context) error {
		var err error
		statistics, err = s.provider.FixtureStatistics(ctx, fixtureID)
		return err
	})
	group.Go(func(ctx context.Context) error {
		var err error
		events, err = s.provider.FixtureEvents(ctx, fixtureID)
		return err
	})
	group.Go(func(ctx context.Context) error {
		var err error
		lineups, err = s.provider.FixtureLineups(ctx, fixtureID)
		return err
	})
	if err := group.Wait(); err != nil {
		return matchrecord.Record{}, fmt.Errorf("assemble fixture id=%d: %w", fixtureID, err)
	}

	record := matchrecord.NewRecord(core)
	record.Statistics = statistics
	record.Events = events
	record.Lineups = lineups

	if !record.HasSeason() {
		return matchrecord.Record{}, fmt.Errorf("assemble fixture id=%d: %w", fixtureID, ErrMissingSeason)
	}
	return record, nil
}

// Refresh assembles the fixture and merge-writes the full document.
func (s *IngestService) Refresh(ctx context.Context, fixtureID int64) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestService.Refresh")
	defer span.End()

	record, err := s.Assemble(ctx, fixtureID)
	if err != nil {
		return err
	}

	doc, err := record.Document()
	if err != nil {
		return fmt.Errorf("refresh fixture id=%d: %w", fixtureID, err)
	}
	if err := s.store.Upsert(ctx, record.Season(), record.Fixture.ID, doc); err != nil {
		return fmt.Errorf("refresh fixture id=%d: %w: %v", fixtureID, ErrStoreWrite, err)
	}

	s.logger.InfoContext(ctx, "fixture refreshed",
		"fixture_id", record.Fixture.ID,
		"season", record.Season(),
		"status", record.Fixture.Status.Long,
	)
	return nil
}

// SyncSeason pulls the full season schedule of one team and writes the
// core fields of every fixture. Sub-resources are left to later refreshes;
// the schedule is what the freshness check needs to find candidates.
func (s *IngestService) SyncSeason(ctx context.Context, teamID int64, season int) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestService.SyncSeason")
	defer span.End()

	if s.provider == nil {
		return 0, fmt.Errorf("%w: fixture provider is not configured", ErrDependencyUnavailable)
	}

	fixtures, err := s.provider.FixturesByTeamSeason(ctx, teamID, season)
	if err != nil {
		return 0, fmt.Errorf("sync season team=%d season=%d: %w", teamID, season, err)
	}

	written := 0
	for _, core := range fixtures {
		record := matchrecord.NewRecord(core)
		if !record.HasSeason() {
			s.logger.WarnContext(ctx, "skip fixture without season", "fixture_id", record.Fixture.ID)
			continue
		}
		doc, err := record.Document()
		if err != nil {
			return written, fmt.Errorf("sync season team=%d season=%d fixture=%d: %w", teamID, season, record.Fixture.ID, err)
		}
		if err := s.store.Upsert(ctx, record.Season(), record.Fixture.ID, doc); err != nil {
			return written, fmt.Errorf("sync season team=%d season=%d fixture=%d: %w: %v", teamID, season, record.Fixture.ID, ErrStoreWrite, err)
		}
		written++
	}

	s.logger.InfoContext(ctx, "season synced", "team_id", teamID, "season", season, "fixtures", written)
	return written, nil
}
