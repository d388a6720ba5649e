package querybuilder

import "testing"

func TestSelectBuilder_ToSQL(t *testing.T) {
	query, args, err := Select("doc").From("fixture_documents").
		Where(
			Eq("season", 2024),
			Gte("match_date", int64(1700000000)),
			Expr("(home_team_id = ? OR away_team_id = ?)", int64(33), int64(33)),
		).
		OrderBy("match_date ASC").
		Limit(1).
		ToSQL()
	if err != nil {
		t.Fatalf("ToSQL error: %v", err)
	}

	want := "SELECT doc FROM fixture_documents WHERE season = $1 AND match_date >= $2 AND (home_team_id = $3 OR away_team_id = $4) ORDER BY match_date ASC LIMIT 1"
	if query != want {
		t.Fatalf("unexpected query:\n got %s\nwant %s", query, want)
	}
	if len(args) != 4 {
		t.Fatalf("expected 4 args, got %d", len(args))
	}
}

func TestSelectBuilder_RequiresTable(t *testing.T) {
	if _, _, err := Select("doc").ToSQL(); err == nil {
		t.Fatal("expected error for missing table")
	}
}

func TestInsertBuilder_SuffixPlaceholdersUntouched(t *testing.T) {
	query, args, err := InsertInto("fixture_documents").
		Columns("season", "fixture_id", "doc").
		Values(2024, int64(9001), []byte(`{}`)).
		Suffix("ON CONFLICT (season, fixture_id) DO UPDATE SET doc = fixture_documents.doc || EXCLUDED.doc").
		ToSQL()
	if err != nil {
		t.Fatalf("ToSQL error: %v", err)
	}

	want := "INSERT INTO fixture_documents (season, fixture_id, doc) VALUES ($1, $2, $3) ON CONFLICT (season, fixture_id) DO UPDATE SET doc = fixture_documents.doc || EXCLUDED.doc"
	if query != want {
		t.Fatalf("unexpected query:\n got %s\nwant %s", query, want)
	}
	if len(args) != 3 {
		t.Fatalf("expected 3 args, got %d", len(args))
	}
}

func TestInsertBuilder_RowArityMismatch(t *testing.T) {
	_, _, err := InsertInto("fixture_documents").
		Columns("season", "fixture_id").
		Values(2024).
		ToSQL()
	if err == nil {
		t.Fatal("expected arity error")
	}
}
