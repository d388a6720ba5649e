package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"

	"github.com/riskibarqy/matchday/internal/domain/matchrecord"
	"github.com/riskibarqy/matchday/internal/platform/logging"
	"github.com/riskibarqy/matchday/internal/usecase"
)

// FreshnessRunner runs one freshness cycle, either against the wall clock
// or replayed at a caller-supplied instant.
type FreshnessRunner interface {
	RunOnce(ctx context.Context) (usecase.CheckResult, error)
	RunOnceAt(ctx context.Context, at time.Time) (usecase.CheckResult, error)
}

// FixtureIngester refreshes single fixtures and syncs season schedules.
type FixtureIngester interface {
	Refresh(ctx context.Context, fixtureID int64) error
	SyncSeason(ctx context.Context, teamID int64, season int) (int, error)
}

// BackfillRunner re-ingests an explicit fixture set.
type BackfillRunner interface {
	Backfill(ctx context.Context, input usecase.BackfillInput) (usecase.BackfillResult, error)
}

type HandlerConfig struct {
	// DefaultTeamID and DefaultSeason back the trigger endpoints, which a
	// cron hits without parameters.
	DefaultTeamID int64
	DefaultSeason int
}

type Handler struct {
	freshness FreshnessRunner
	ingester  FixtureIngester
	backfill  BackfillRunner
	store     matchrecord.Store
	logger    *logging.Logger
	validate  *validator.Validate
	cfg       HandlerConfig
}

func NewHandler(
	freshness FreshnessRunner,
	ingester FixtureIngester,
	backfill BackfillRunner,
	store matchrecord.Store,
	logger *logging.Logger,
	cfg HandlerConfig,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		freshness: freshness,
		ingester:  ingester,
		backfill:  backfill,
		store:     store,
		logger:    logger,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		cfg:       cfg,
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	if h.store != nil {
		if err := h.store.Ping(ctx); err != nil {
			writeJSON(ctx, w, http.StatusServiceUnavailable, googleResponseEnvelope{
				APIVersion: googleAPIVersion,
				Data:       map[string]string{"status": "degraded", "store": err.Error()},
			})
			return
		}
	}
	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

// TriggerCheck runs a freshness cycle for an external scheduler. The body
// is plain text so a cron log stays readable.
func (h *Handler) TriggerCheck(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.TriggerCheck")
	defer span.End()

	if h.freshness == nil {
		writeText(w, http.StatusServiceUnavailable, "freshness check is not configured\n")
		return
	}

	result, err := h.freshness.RunOnce(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "trigger check failed", "error", err)
		writeText(w, triggerStatus(err), "check failed: "+err.Error()+"\n")
		return
	}

	var body strings.Builder
	body.WriteString(result.Message)
	body.WriteString("\n")
	for _, line := range result.Logs {
		body.WriteString(line)
		body.WriteString("\n")
	}
	writeText(w, http.StatusOK, body.String())
}

// TriggerRefresh force-refreshes one fixture: GET /jobs/refresh?fixture_id=N.
func (h *Handler) TriggerRefresh(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.TriggerRefresh")
	defer span.End()

	if h.ingester == nil {
		writeText(w, http.StatusServiceUnavailable, "ingestion is not configured\n")
		return
	}

	fixtureID, err := strconv.ParseInt(strings.TrimSpace(r.URL.Query().Get("fixture_id")), 10, 64)
	if err != nil || fixtureID <= 0 {
		writeText(w, http.StatusBadRequest, "fixture_id must be a positive integer\n")
		return
	}

	if err := h.ingester.Refresh(ctx, fixtureID); err != nil {
		h.logger.ErrorContext(ctx, "trigger refresh failed", "fixture_id", fixtureID, "error", err)
		writeText(w, triggerStatus(err), fmt.Sprintf("refresh of fixture %d failed: %v\n", fixtureID, err))
		return
	}
	writeText(w, http.StatusOK, fmt.Sprintf("fixture %d refreshed\n", fixtureID))
}

// TriggerSyncSeason pulls the configured team's season schedule. team_id
// and season query params override the configured defaults.
func (h *Handler) TriggerSyncSeason(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.TriggerSyncSeason")
	defer span.End()

	if h.ingester == nil {
		writeText(w, http.StatusServiceUnavailable, "ingestion is not configured\n")
		return
	}

	teamID := h.cfg.DefaultTeamID
	if raw := strings.TrimSpace(r.URL.Query().Get("team_id")); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed <= 0 {
			writeText(w, http.StatusBadRequest, "team_id must be a positive integer\n")
			return
		}
		teamID = parsed
	}
	season := h.cfg.DefaultSeason
	if raw := strings.TrimSpace(r.URL.Query().Get("season")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeText(w, http.StatusBadRequest, "season must be a positive integer\n")
			return
		}
		season = parsed
	}

	count, err := h.ingester.SyncSeason(ctx, teamID, season)
	if err != nil {
		h.logger.ErrorContext(ctx, "trigger sync season failed", "team_id", teamID, "season", season, "error", err)
		writeText(w, triggerStatus(err), fmt.Sprintf("season sync failed: %v\n", err))
		return
	}
	writeText(w, http.StatusOK, fmt.Sprintf("synced %d fixtures for team %d season %d\n", count, teamID, season))
}

// triggerStatus maps errors on the plain-text trigger endpoints, which
// know only success, bad request, and failure. Any pipeline failure is a
// 500 there; the finer taxonomy of mapError is for the JSON surface.
func triggerStatus(err error) int {
	if errors.Is(err, usecase.ErrInvalidInput) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

type checkRequest struct {
	// Date replays the freshness decision as of this instant; empty means
	// now. Accepts RFC 3339 or a bare YYYY-MM-DD.
	Date string `json:"date" validate:"omitempty,max=64"`
}

// RunCheckJob is the JSON twin of TriggerCheck. The response body is the
// check result itself, so callers get {success, message, logs} directly.
func (h *Handler) RunCheckJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunCheckJob")
	defer span.End()

	if h.freshness == nil {
		writeError(ctx, w, fmt.Errorf("%w: freshness check is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	var req checkRequest
	if err := h.decodeJSONBody(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	var result usecase.CheckResult
	var err error
	if req.Date == "" {
		result, err = h.freshness.RunOnce(ctx)
	} else {
		at, parseErr := parseCheckDate(req.Date)
		if parseErr != nil {
			writeError(ctx, w, fmt.Errorf("%w: %v", usecase.ErrInvalidInput, parseErr))
			return
		}
		result, err = h.freshness.RunOnceAt(ctx, at)
	}
	if err != nil {
		h.logger.ErrorContext(ctx, "run check job failed", "error", err)
		writeError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, result)
}

func parseCheckDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if at, err := time.Parse(time.RFC3339, raw); err == nil {
		return at, nil
	}
	if at, err := time.Parse("2006-01-02", raw); err == nil {
		return at, nil
	}
	return time.Time{}, fmt.Errorf("date must be RFC 3339 or YYYY-MM-DD, got %q", raw)
}

type backfillRequest struct {
	FixtureIDs []int64 `json:"fixture_ids" validate:"required,min=1,dive,gt=0"`
	MaxWorkers int     `json:"max_workers" validate:"gte=0,lte=16"`
}

func (h *Handler) RunBackfillJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunBackfillJob")
	defer span.End()

	if h.backfill == nil {
		writeError(ctx, w, fmt.Errorf("%w: backfill is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	var req backfillRequest
	if err := h.decodeJSONBody(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.backfill.Backfill(ctx, usecase.BackfillInput{
		FixtureIDs: req.FixtureIDs,
		MaxWorkers: req.MaxWorkers,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "run backfill job failed", "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, result)
}

type syncSeasonRequest struct {
	TeamID int64 `json:"team_id" validate:"gte=0"`
	Season int   `json:"season" validate:"gte=0"`
}

type syncSeasonResponse struct {
	TeamID         int64 `json:"team_id"`
	Season         int   `json:"season"`
	FixturesSynced int   `json:"fixtures_synced"`
}

func (h *Handler) RunSyncSeasonJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunSyncSeasonJob")
	defer span.End()

	if h.ingester == nil {
		writeError(ctx, w, fmt.Errorf("%w: ingestion is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	var req syncSeasonRequest
	if err := h.decodeJSONBody(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if req.TeamID == 0 {
		req.TeamID = h.cfg.DefaultTeamID
	}
	if req.Season == 0 {
		req.Season = h.cfg.DefaultSeason
	}

	count, err := h.ingester.SyncSeason(ctx, req.TeamID, req.Season)
	if err != nil {
		h.logger.ErrorContext(ctx, "run sync season job failed", "team_id", req.TeamID, "season", req.Season, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, syncSeasonResponse{
		TeamID:         req.TeamID,
		Season:         req.Season,
		FixturesSynced: count,
	})
}

func (h *Handler) decodeJSONBody(r *http.Request, target any) error {
	defer func() {
		_, _ = io.Copy(io.Discard, r.Body)
	}()

	raw, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%w: read request body", usecase.ErrInvalidInput)
	}
	if len(raw) == 0 {
		raw = []byte("{}")
	}
	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("%w: malformed JSON body", usecase.ErrInvalidInput)
	}
	if err := h.validate.Struct(target); err != nil {
		return fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}
