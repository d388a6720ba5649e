package app

import (
	"fmt"
	"net/http"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	otelsql "github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"

	"github.com/riskibarqy/matchday/external/apifootball"
	"github.com/riskibarqy/matchday/internal/config"
	"github.com/riskibarqy/matchday/internal/domain/matchrecord"
	"github.com/riskibarqy/matchday/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/matchday/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/matchday/internal/interfaces/httpapi"
	"github.com/riskibarqy/matchday/internal/platform/logging"
	"github.com/riskibarqy/matchday/internal/platform/resilience"
	"github.com/riskibarqy/matchday/internal/poller"
	"github.com/riskibarqy/matchday/internal/usecase"
)

// App owns the wired components of one service instance.
type App struct {
	Server *http.Server
	Poller *poller.Poller

	db *sqlx.DB
}

func New(cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}

	store, db, err := newStore(cfg, logger)
	if err != nil {
		return nil, err
	}

	client := apifootball.NewClient(apifootball.ClientConfig{
		BaseURL: cfg.APIFootballBaseURL,
		APIKey:  cfg.APIFootballKey,
		Timeout: cfg.APIFootballTimeout,
		Logger:  logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.APIFootballCircuitEnabled,
			FailureThreshold: cfg.APIFootballCircuitFailureCount,
			OpenTimeout:      cfg.APIFootballCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.APIFootballCircuitHalfOpenMaxReq,
		},
	})

	ingestSvc := usecase.NewIngestService(client, store, logger)
	freshnessSvc := usecase.NewFreshnessService(store, ingestSvc, logger, usecase.FreshnessConfig{
		TeamID: cfg.TeamID,
		Season: cfg.Season,
	})
	backfillSvc := usecase.NewBackfillService(ingestSvc, logger)

	handler := httpapi.NewHandler(freshnessSvc, ingestSvc, backfillSvc, store, logger, httpapi.HandlerConfig{
		DefaultTeamID: cfg.TeamID,
		DefaultSeason: cfg.Season,
	})
	router := httpapi.NewRouter(handler, logger, cfg.CORSAllowedOrigins)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	if server.Addr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	var loop *poller.Poller
	if cfg.PollEnabled {
		loop = poller.New(freshnessSvc, logger, cfg.PollInterval)
	}

	return &App{
		Server: server,
		Poller: loop,
		db:     db,
	}, nil
}

// Close releases resources not tied to the HTTP server lifecycle.
func (a *App) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

// newStore picks the document store backend: Postgres when DB_URL is
// configured, an in-process store otherwise. The in-process store loses
// data on restart and exists for local runs and tests.
func newStore(cfg config.Config, logger *logging.Logger) (matchrecord.Store, *sqlx.DB, error) {
	if cfg.DBURL == "" {
		logger.Info("using in-memory fixture store", "reason", "DB_URL empty")
		return memory.NewMatchStore(), nil, nil
	}

	db, err := otelsqlx.Connect("postgres", cfg.DBURL,
		otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("connect postgres: %w", err)
	}

	logger.Info("using postgres fixture store", "db", dbNameFromURL(cfg.DBURL))
	return postgres.NewMatchStore(db), db, nil
}
