package httpapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/riskibarqy/matchday/internal/platform/logging"
	"github.com/riskibarqy/matchday/internal/usecase"
)

type stubFreshness struct {
	result usecase.CheckResult
	err    error
	ranAt  time.Time
}

func (s *stubFreshness) RunOnce(context.Context) (usecase.CheckResult, error) {
	return s.result, s.err
}

func (s *stubFreshness) RunOnceAt(_ context.Context, at time.Time) (usecase.CheckResult, error) {
	s.ranAt = at
	return s.result, s.err
}

type stubIngester struct {
	refreshErr  error
	refreshedID int64
	syncCount   int
	syncErr     error
	syncTeamID  int64
	syncSeason  int
}

func (s *stubIngester) Refresh(_ context.Context, fixtureID int64) error {
	s.refreshedID = fixtureID
	return s.refreshErr
}

func (s *stubIngester) SyncSeason(_ context.Context, teamID int64, season int) (int, error) {
	s.syncTeamID = teamID
	s.syncSeason = season
	return s.syncCount, s.syncErr
}

type stubBackfill struct {
	result usecase.BackfillResult
	err    error
	input  usecase.BackfillInput
}

func (s *stubBackfill) Backfill(_ context.Context, input usecase.BackfillInput) (usecase.BackfillResult, error) {
	s.input = input
	return s.result, s.err
}

func newTestRouter(freshness FreshnessRunner, ingester FixtureIngester, backfill BackfillRunner) http.Handler {
	handler := NewHandler(freshness, ingester, backfill, nil, logging.NewNop(), HandlerConfig{
		DefaultTeamID: 33,
		DefaultSeason: 2025,
	})
	return NewRouter(handler, logging.NewNop(), nil)
}

func TestHandler_Healthz(t *testing.T) {
	router := newTestRouter(&stubFreshness{}, &stubIngester{}, &stubBackfill{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestHandler_TriggerCheckWritesPlainText(t *testing.T) {
	freshness := &stubFreshness{result: usecase.CheckResult{
		Success: true,
		Message: "fixture 7 refreshed",
		Logs:    []string{"candidate fixture=7"},
	}}
	router := newTestRouter(freshness, &stubIngester{}, &stubBackfill{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/jobs/check", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Type"); !strings.HasPrefix(got, "text/plain") {
		t.Fatalf("content type = %q", got)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "fixture 7 refreshed") || !strings.Contains(body, "candidate fixture=7") {
		t.Fatalf("unexpected body: %s", body)
	}
}

func TestHandler_TriggerRefreshValidatesFixtureID(t *testing.T) {
	ingester := &stubIngester{}
	router := newTestRouter(&stubFreshness{}, ingester, &stubBackfill{})

	for _, query := range []string{"", "?fixture_id=abc", "?fixture_id=0", "?fixture_id=-5"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/jobs/refresh"+query, nil))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("query %q: status = %d", query, rec.Code)
		}
	}
	if ingester.refreshedID != 0 {
		t.Fatalf("refresh must not run on invalid input, got %d", ingester.refreshedID)
	}
}

func TestHandler_TriggerRefreshRunsIngestion(t *testing.T) {
	ingester := &stubIngester{}
	router := newTestRouter(&stubFreshness{}, ingester, &stubBackfill{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/jobs/refresh?fixture_id=215662", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	if ingester.refreshedID != 215662 {
		t.Fatalf("refreshed id = %d", ingester.refreshedID)
	}
}

func TestHandler_TriggerSyncSeasonUsesDefaults(t *testing.T) {
	ingester := &stubIngester{syncCount: 38}
	router := newTestRouter(&stubFreshness{}, ingester, &stubBackfill{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/jobs/sync-season", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	if ingester.syncTeamID != 33 || ingester.syncSeason != 2025 {
		t.Fatalf("defaults not applied: team=%d season=%d", ingester.syncTeamID, ingester.syncSeason)
	}
	if !strings.Contains(rec.Body.String(), "synced 38 fixtures") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestHandler_RunCheckJobReturnsResultShape(t *testing.T) {
	freshness := &stubFreshness{result: usecase.CheckResult{
		Success:   true,
		Message:   "fixture 7 is fresh",
		Logs:      []string{"outside refresh window"},
		FixtureID: 7,
	}}
	router := newTestRouter(freshness, &stubIngester{}, &stubBackfill{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/jobs/check", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}

	var result usecase.CheckResult
	if err := sonic.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if !result.Success || result.Message != "fixture 7 is fresh" || len(result.Logs) != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestHandler_RunCheckJobWithDate(t *testing.T) {
	freshness := &stubFreshness{result: usecase.CheckResult{Success: true, Message: "no fixture to check"}}
	router := newTestRouter(freshness, &stubIngester{}, &stubBackfill{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/jobs/check", strings.NewReader(`{"date":"2025-09-21"}`))
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	want := time.Date(2025, 9, 21, 0, 0, 0, 0, time.UTC)
	if !freshness.ranAt.Equal(want) {
		t.Fatalf("ran at %s, want %s", freshness.ranAt, want)
	}
}

func TestHandler_RunCheckJobRejectsBadDate(t *testing.T) {
	router := newTestRouter(&stubFreshness{}, &stubIngester{}, &stubBackfill{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/jobs/check", strings.NewReader(`{"date":"yesterday"}`))
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestHandler_RunCheckJobMapsStoreError(t *testing.T) {
	freshness := &stubFreshness{err: usecase.ErrDependencyUnavailable}
	router := newTestRouter(freshness, &stubIngester{}, &stubBackfill{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/jobs/check", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "UNAVAILABLE") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestHandler_RunBackfillJobValidatesBody(t *testing.T) {
	backfill := &stubBackfill{}
	router := newTestRouter(&stubFreshness{}, &stubIngester{}, backfill)

	cases := []string{
		``,
		`{}`,
		`{"fixture_ids": []}`,
		`{"fixture_ids": [0]}`,
		`{"fixture_ids": [1], "max_workers": 99}`,
		`not json`,
	}
	for _, body := range cases {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/v1/jobs/backfill", strings.NewReader(body))
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("body %q: status = %d", body, rec.Code)
		}
	}
}

func TestHandler_RunBackfillJob(t *testing.T) {
	backfill := &stubBackfill{result: usecase.BackfillResult{TaskCount: 2, SuccessCount: 2, WorkerCount: 2}}
	router := newTestRouter(&stubFreshness{}, &stubIngester{}, backfill)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/jobs/backfill", strings.NewReader(`{"fixture_ids":[100,200],"max_workers":2}`))
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	if len(backfill.input.FixtureIDs) != 2 || backfill.input.MaxWorkers != 2 {
		t.Fatalf("input not forwarded: %+v", backfill.input)
	}
	if !strings.Contains(rec.Body.String(), `"apiVersion":"2.0"`) {
		t.Fatalf("expected envelope, got %s", rec.Body.String())
	}
}

func TestHandler_RunSyncSeasonJobOverrides(t *testing.T) {
	ingester := &stubIngester{syncCount: 10}
	router := newTestRouter(&stubFreshness{}, ingester, &stubBackfill{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/jobs/sync-season", strings.NewReader(`{"team_id":50,"season":2024}`))
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	if ingester.syncTeamID != 50 || ingester.syncSeason != 2024 {
		t.Fatalf("overrides not applied: team=%d season=%d", ingester.syncTeamID, ingester.syncSeason)
	}
}

func TestHandler_TriggerFailuresMapToServerError(t *testing.T) {
	cases := []struct {
		name string
		err  error
	}{
		{"upstream empty", usecase.ErrUpstreamEmpty},
		{"dependency unavailable", usecase.ErrDependencyUnavailable},
		{"missing season", usecase.ErrMissingSeason},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ingester := &stubIngester{refreshErr: tc.err, syncErr: tc.err}
			freshness := &stubFreshness{err: tc.err}
			router := newTestRouter(freshness, ingester, &stubBackfill{})

			for _, target := range []string{"/jobs/check", "/jobs/refresh?fixture_id=7", "/jobs/sync-season"} {
				rec := httptest.NewRecorder()
				router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
				if rec.Code != http.StatusInternalServerError {
					t.Fatalf("%s: status = %d, want 500", target, rec.Code)
				}
			}
		})
	}
}

func TestHandler_TriggerCheckReportsUpstreamFailure(t *testing.T) {
	freshness := &stubFreshness{err: errors.New("connection refused")}
	router := newTestRouter(freshness, &stubIngester{}, &stubBackfill{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/jobs/check", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "check failed") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}
