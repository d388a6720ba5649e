package apifootball

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/riskibarqy/matchday/internal/platform/logging"
	"github.com/riskibarqy/matchday/internal/platform/resilience"
	"github.com/riskibarqy/matchday/internal/usecase"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, breaker resilience.CircuitBreakerConfig) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient(ClientConfig{
		BaseURL:        server.URL,
		APIKey:         "test-key",
		Timeout:        2 * time.Second,
		Logger:         logging.NewNop(),
		CircuitBreaker: breaker,
	})
	return client, server
}

func TestClient_FixtureByID(t *testing.T) {
	var gotKey, gotQuery string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-apisports-key")
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"get": "fixtures",
			"results": 1,
			"response": [{
				"fixture": {"id": 215662, "timestamp": 1758378600, "status": {"long": "Not Started", "short": "NS"}},
				"league": {"id": 39, "season": 2025},
				"teams": {"home": {"id": 33}, "away": {"id": 40}}
			}]
		}`))
	}, resilience.CircuitBreakerConfig{})

	core, err := client.FixtureByID(context.Background(), 215662)
	if err != nil {
		t.Fatalf("FixtureByID: %v", err)
	}

	if gotKey != "test-key" {
		t.Fatalf("expected api key header, got %q", gotKey)
	}
	if gotQuery != "id=215662" {
		t.Fatalf("unexpected query: %q", gotQuery)
	}
	if core.Fixture.ID != 215662 || core.League.Season != 2025 {
		t.Fatalf("unexpected core: %+v", core)
	}
}

func TestClient_FixtureByID_EmptyResponse(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"get": "fixtures", "results": 0, "response": []}`))
	}, resilience.CircuitBreakerConfig{})

	_, err := client.FixtureByID(context.Background(), 999)
	if !errors.Is(err, usecase.ErrUpstreamEmpty) {
		t.Fatalf("expected upstream-empty error, got %v", err)
	}
}

func TestClient_FixturesByTeamSeason(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("team") != "33" || r.URL.Query().Get("season") != "2025" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`{"results": 2, "response": [
			{"fixture": {"id": 1}, "league": {"season": 2025}},
			{"fixture": {"id": 2}, "league": {"season": 2025}}
		]}`))
	}, resilience.CircuitBreakerConfig{})

	fixtures, err := client.FixturesByTeamSeason(context.Background(), 33, 2025)
	if err != nil {
		t.Fatalf("FixturesByTeamSeason: %v", err)
	}
	if len(fixtures) != 2 {
		t.Fatalf("expected 2 fixtures, got %d", len(fixtures))
	}
}

func TestClient_SubResourceEmptyResponseIsUpstreamEmpty(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results": 0, "response": []}`))
	}, resilience.CircuitBreakerConfig{})

	if _, err := client.FixtureStatistics(context.Background(), 215662); !errors.Is(err, usecase.ErrUpstreamEmpty) {
		t.Fatalf("expected ErrUpstreamEmpty for empty statistics, got %v", err)
	}
	if _, err := client.FixtureEvents(context.Background(), 215662); !errors.Is(err, usecase.ErrUpstreamEmpty) {
		t.Fatalf("expected ErrUpstreamEmpty for empty events, got %v", err)
	}
}

func TestClient_CircuitBreakerOpensAfterServerErrors(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}, resilience.CircuitBreakerConfig{Enabled: true, FailureThreshold: 1, OpenTimeout: time.Minute, HalfOpenMaxReq: 1})

	if _, err := client.FixtureByID(context.Background(), 1); err == nil {
		t.Fatal("expected provider error")
	}
	_, err := client.FixtureByID(context.Background(), 2)
	if !errors.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("expected circuit rejection, got %v", err)
	}
}

func TestClient_ClientErrorDoesNotTripBreaker(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}, resilience.CircuitBreakerConfig{Enabled: true, FailureThreshold: 1, OpenTimeout: time.Minute, HalfOpenMaxReq: 1})

	for i := 0; i < 3; i++ {
		_, err := client.FixtureByID(context.Background(), 1)
		if err == nil {
			t.Fatal("expected provider error")
		}
		if errors.Is(err, usecase.ErrDependencyUnavailable) {
			t.Fatalf("4xx responses must not open the circuit: %v", err)
		}
		if !errors.Is(err, usecase.ErrUpstream) {
			t.Fatalf("provider failures should carry the upstream sentinel: %v", err)
		}
	}
}

func TestSanitizeSensitiveText(t *testing.T) {
	out := sanitizeSensitiveText(`Get "https://example.com": x-apisports-key: secret123 rejected`, "secret123")
	if strings.Contains(out, "secret123") {
		t.Fatalf("api key leaked: %s", out)
	}
}
