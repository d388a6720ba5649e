package httpapi

import (
	"net/http"

	"github.com/riskibarqy/matchday/internal/platform/logging"
)

func NewRouter(handler *Handler, logger *logging.Logger, corsAllowedOrigins []string) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}

	mux := http.NewServeMux()
	registerSystemRoutes(mux, handler)
	registerTriggerRoutes(mux, handler)
	registerJobRoutes(mux, handler)

	return RequestTracing(RequestLogging(logger, CORS(corsAllowedOrigins, recoverPanic(logger, mux))))
}

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

// Trigger routes are what an external cron hits; they answer plain text.
func registerTriggerRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /jobs/check", handler.TriggerCheck)
	mux.HandleFunc("GET /jobs/refresh", handler.TriggerRefresh)
	mux.HandleFunc("GET /jobs/sync-season", handler.TriggerSyncSeason)
}

// Job routes are the JSON API used by operators and tooling.
func registerJobRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("POST /v1/jobs/check", handler.RunCheckJob)
	mux.HandleFunc("POST /v1/jobs/backfill", handler.RunBackfillJob)
	mux.HandleFunc("POST /v1/jobs/sync-season", handler.RunSyncSeasonJob)
}

func recoverPanic(logger *logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := startSpan(r.Context(), "httpapi.recoverPanic")
		defer span.End()

		defer func() {
			if rec := recover(); rec != nil {
				logger.ErrorContext(ctx, "panic recovered", "panic", rec)
				writeInternalError(ctx, w)
			}
		}()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
