package memory

import (
	"context"
	"testing"
	"time"

	"github.com/riskibarqy/matchday/internal/domain/matchrecord"
)

func fixtureDoc(t *testing.T, fixtureID int64, teamID int64, matchDate int64, statusLong string) matchrecord.Document {
	t.Helper()
	record := matchrecord.NewRecord(matchrecord.Core{
		Fixture: matchrecord.Fixture{
			ID:        fixtureID,
			Timestamp: matchDate,
			Status:    matchrecord.Status{Long: statusLong},
		},
		League: matchrecord.League{ID: 39, Season: 2025},
		Teams:  matchrecord.Teams{Home: matchrecord.TeamSide{ID: teamID}, Away: matchrecord.TeamSide{ID: 999}},
	})
	doc, err := record.Document()
	if err != nil {
		t.Fatalf("build document: %v", err)
	}
	return doc
}

func TestMatchStore_UpsertMergesPartialDocuments(t *testing.T) {
	store := NewMatchStore()
	ctx := context.Background()

	if err := store.Upsert(ctx, 2025, 100, fixtureDoc(t, 100, 33, 1758378600, "Not Started")); err != nil {
		t.Fatalf("full upsert: %v", err)
	}
	partial := matchrecord.Document{"events": []any{map[string]any{"type": "Goal"}}}
	if err := store.Upsert(ctx, 2025, 100, partial); err != nil {
		t.Fatalf("partial upsert: %v", err)
	}

	record, ok, err := store.Get(ctx, 2025, 100)
	if err != nil || !ok {
		t.Fatalf("get: ok=%t err=%v", ok, err)
	}
	if record.Fixture.ID != 100 {
		t.Fatalf("core fields lost after partial merge: %+v", record.Fixture)
	}
	if len(record.Events) != 1 {
		t.Fatalf("merged events missing: %v", record.Events)
	}
}

func TestMatchStore_UpsertIsIdempotent(t *testing.T) {
	store := NewMatchStore()
	ctx := context.Background()
	doc := fixtureDoc(t, 100, 33, 1758378600, "Match Finished")

	if err := store.Upsert(ctx, 2025, 100, doc); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if err := store.Upsert(ctx, 2025, 100, doc); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	record, ok, err := store.Get(ctx, 2025, 100)
	if err != nil || !ok {
		t.Fatalf("get: ok=%t err=%v", ok, err)
	}
	if record.MatchDate != 1758378600 {
		t.Fatalf("record changed on repeat write: %+v", record)
	}
}

func TestMatchStore_RejectsInvalidKeys(t *testing.T) {
	store := NewMatchStore()
	doc := matchrecord.Document{"matchDate": float64(1)}

	if err := store.Upsert(context.Background(), 0, 100, doc); err == nil {
		t.Fatal("expected error for zero season")
	}
	if err := store.Upsert(context.Background(), 2025, 0, doc); err == nil {
		t.Fatal("expected error for zero fixture id")
	}
}

func TestMatchStore_NextAndLastFixture(t *testing.T) {
	store := NewMatchStore()
	ctx := context.Background()
	now := time.Date(2025, 9, 20, 12, 0, 0, 0, time.UTC)

	past := now.Add(-48 * time.Hour).Unix()
	recent := now.Add(-2 * time.Hour).Unix()
	upcoming := now.Add(24 * time.Hour).Unix()
	later := now.Add(72 * time.Hour).Unix()

	for id, matchDate := range map[int64]int64{
		1: past,
		2: recent,
		3: upcoming,
		4: later,
	} {
		if err := store.Upsert(ctx, 2025, id, fixtureDoc(t, id, 33, matchDate, "Not Started")); err != nil {
			t.Fatalf("upsert fixture %d: %v", id, err)
		}
	}
	// Other team in the same season must never be picked.
	if err := store.Upsert(ctx, 2025, 5, fixtureDoc(t, 5, 77, upcoming, "Not Started")); err != nil {
		t.Fatalf("upsert foreign fixture: %v", err)
	}

	next, ok, err := store.NextFixture(ctx, 2025, 33, now)
	if err != nil || !ok {
		t.Fatalf("next fixture: ok=%t err=%v", ok, err)
	}
	if next.Fixture.ID != 3 {
		t.Fatalf("expected fixture 3 as next, got %d", next.Fixture.ID)
	}

	last, ok, err := store.LastFixture(ctx, 2025, 33, now)
	if err != nil || !ok {
		t.Fatalf("last fixture: ok=%t err=%v", ok, err)
	}
	if last.Fixture.ID != 2 {
		t.Fatalf("expected fixture 2 as last, got %d", last.Fixture.ID)
	}
}

func TestMatchStore_ExactKickoffVisibleFromBothSides(t *testing.T) {
	store := NewMatchStore()
	ctx := context.Background()
	now := time.Date(2025, 9, 20, 15, 0, 0, 0, time.UTC)

	if err := store.Upsert(ctx, 2025, 1, fixtureDoc(t, 1, 33, now.Unix(), "First Half")); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	next, ok, err := store.NextFixture(ctx, 2025, 33, now)
	if err != nil || !ok || next.Fixture.ID != 1 {
		t.Fatalf("fixture starting exactly now should be next: ok=%t err=%v", ok, err)
	}

	last, ok, err := store.LastFixture(ctx, 2025, 33, now)
	if err != nil || !ok || last.Fixture.ID != 1 {
		t.Fatalf("fixture starting exactly now should also be last: ok=%t err=%v", ok, err)
	}
}

func TestMatchStore_NoFixturesFound(t *testing.T) {
	store := NewMatchStore()
	if _, ok, err := store.NextFixture(context.Background(), 2025, 33, time.Now()); ok || err != nil {
		t.Fatalf("expected no next fixture: ok=%t err=%v", ok, err)
	}
	if _, ok, err := store.LastFixture(context.Background(), 2025, 33, time.Now()); ok || err != nil {
		t.Fatalf("expected no last fixture: ok=%t err=%v", ok, err)
	}
}
