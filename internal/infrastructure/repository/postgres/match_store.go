package postgres

import (
	"context"
	"fmt"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/matchday/internal/domain/matchrecord"
	qb "github.com/riskibarqy/matchday/internal/platform/querybuilder"
)

// MatchStore persists fixture documents in the fixture_documents table.
// The document column is JSONB; Upsert relies on the || operator for the
// top-level merge, so concurrent partial writes never clobber each other.
type MatchStore struct {
	db *sqlx.DB
}

func NewMatchStore(db *sqlx.DB) *MatchStore {
	return &MatchStore{db: db}
}

func (r *MatchStore) Upsert(ctx context.Context, season int, fixtureID int64, doc matchrecord.Document) error {
	if season <= 0 {
		return fmt.Errorf("season must be greater than zero")
	}
	if fixtureID <= 0 {
		return fmt.Errorf("fixture id must be greater than zero")
	}
	if len(doc) == 0 {
		return nil
	}

	raw, err := sonic.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode fixture document: %w", err)
	}

	matchDate, homeTeamID, awayTeamID := extractQueryColumns(doc)

	query, args, err := qb.InsertInto("fixture_documents").
		Columns("season", "fixture_id", "match_date", "home_team_id", "away_team_id", "doc", "updated_at").
		Values(season, fixtureID, matchDate, homeTeamID, awayTeamID, raw, time.Now().UTC()).
		Suffix(`ON CONFLICT (season, fixture_id) DO UPDATE SET
    doc = fixture_documents.doc || EXCLUDED.doc,
    match_date = CASE WHEN EXCLUDED.match_date > 0 THEN EXCLUDED.match_date ELSE fixture_documents.match_date END,
    home_team_id = CASE WHEN EXCLUDED.home_team_id > 0 THEN EXCLUDED.home_team_id ELSE fixture_documents.home_team_id END,
    away_team_id = CASE WHEN EXCLUDED.away_team_id > 0 THEN EXCLUDED.away_team_id ELSE fixture_documents.away_team_id END,
    updated_at = EXCLUDED.updated_at`).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build upsert fixture document query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert fixture document season=%d fixture=%d: %w", season, fixtureID, err)
	}
	return nil
}

func (r *MatchStore) Get(ctx context.Context, season int, fixtureID int64) (matchrecord.Record, bool, error) {
	query, args, err := qb.Select("doc").From("fixture_documents").
		Where(qb.Eq("season", season), qb.Eq("fixture_id", fixtureID)).
		ToSQL()
	if err != nil {
		return matchrecord.Record{}, false, fmt.Errorf("build get fixture document query: %w", err)
	}

	var raw []byte
	if err := r.db.GetContext(ctx, &raw, query, args...); err != nil {
		if isNotFound(err) {
			return matchrecord.Record{}, false, nil
		}
		return matchrecord.Record{}, false, fmt.Errorf("get fixture document season=%d fixture=%d: %w", season, fixtureID, err)
	}

	record, err := decodeRecord(raw)
	if err != nil {
		return matchrecord.Record{}, false, err
	}
	return record, true, nil
}

func (r *MatchStore) NextFixture(ctx context.Context, season int, teamID int64, now time.Time) (matchrecord.Record, bool, error) {
	query, args, err := qb.Select("doc").From("fixture_documents").
		Where(
			qb.Eq("season", season),
			qb.Gte("match_date", now.Unix()),
			qb.Expr("(home_team_id = ? OR away_team_id = ?)", teamID, teamID),
		).
		OrderBy("match_date ASC").
		Limit(1).
		ToSQL()
	if err != nil {
		return matchrecord.Record{}, false, fmt.Errorf("build next fixture query: %w", err)
	}
	return r.queryOne(ctx, query, args)
}

func (r *MatchStore) LastFixture(ctx context.Context, season int, teamID int64, now time.Time) (matchrecord.Record, bool, error) {
	query, args, err := qb.Select("doc").From("fixture_documents").
		Where(
			qb.Eq("season", season),
			qb.Lte("match_date", now.Unix()),
			qb.Expr("(home_team_id = ? OR away_team_id = ?)", teamID, teamID),
		).
		OrderBy("match_date DESC").
		Limit(1).
		ToSQL()
	if err != nil {
		return matchrecord.Record{}, false, fmt.Errorf("build last fixture query: %w", err)
	}
	return r.queryOne(ctx, query, args)
}

func (r *MatchStore) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *MatchStore) queryOne(ctx context.Context, query string, args []any) (matchrecord.Record, bool, error) {
	var raw []byte
	if err := r.db.GetContext(ctx, &raw, query, args...); err != nil {
		if isNotFound(err) {
			return matchrecord.Record{}, false, nil
		}
		return matchrecord.Record{}, false, fmt.Errorf("query fixture document: %w", err)
	}

	record, err := decodeRecord(raw)
	if err != nil {
		return matchrecord.Record{}, false, err
	}
	return record, true, nil
}

func decodeRecord(raw []byte) (matchrecord.Record, error) {
	var doc matchrecord.Document
	if err := sonic.Unmarshal(raw, &doc); err != nil {
		return matchrecord.Record{}, fmt.Errorf("decode fixture document: %w", err)
	}
	return matchrecord.FromDocument(doc)
}

// extractQueryColumns pulls the denormalized sort and filter columns out
// of the document. Partial documents (statistics-only writes) legitimately
// carry none of them; the CASE guards in the upsert keep the existing
// values in that case.
func extractQueryColumns(doc matchrecord.Document) (matchDate int64, homeTeamID int64, awayTeamID int64) {
	matchDate = asInt64(doc["matchDate"])

	teams, ok := doc["teams"].(map[string]any)
	if !ok {
		return matchDate, 0, 0
	}
	if home, ok := teams["home"].(map[string]any); ok {
		homeTeamID = asInt64(home["id"])
	}
	if away, ok := teams["away"].(map[string]any); ok {
		awayTeamID = asInt64(away["id"])
	}
	return matchDate, homeTeamID, awayTeamID
}

func asInt64(value any) int64 {
	switch v := value.(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	default:
		return 0
	}
}
