package apifootball

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"

	"github.com/riskibarqy/matchday/internal/domain/matchrecord"
	"github.com/riskibarqy/matchday/internal/platform/logging"
	"github.com/riskibarqy/matchday/internal/platform/resilience"
	"github.com/riskibarqy/matchday/internal/usecase"
)

const (
	defaultBaseURL  = "https://v3.football.api-sports.io"
	apiKeyHeader    = "x-apisports-key"
	maxResponseSize = 6 << 20
)

var apiKeyParamRegex = regexp.MustCompile(`(?i)(x-apisports-key[=:]\s*)[^&\s"']+`)
var errAPIFootballTransient = crerr.New("api-football transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	APIKey         string
	Timeout        time.Duration
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client talks to the api-football v3 HTTP API. Identical in-flight
// requests are collapsed, and repeated failures trip a circuit breaker so
// a dead provider fails fast instead of eating the full timeout per call.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	apiKey         string
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 20 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		apiKey:         strings.TrimSpace(cfg.APIKey),
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

// FixtureByID fetches the core fields of a single fixture.
func (c *Client) FixtureByID(ctx context.Context, fixtureID int64) (matchrecord.Core, error) {
	if fixtureID <= 0 {
		return matchrecord.Core{}, fmt.Errorf("%w: fixture id must be greater than zero", usecase.ErrInvalidInput)
	}

	var env fixtureEnvelope
	if err := c.doJSON(ctx, "/fixtures", map[string]string{"id": strconv.FormatInt(fixtureID, 10)}, &env); err != nil {
		return matchrecord.Core{}, fmt.Errorf("fetch fixture id=%d: %w", fixtureID, err)
	}
	if len(env.Response) == 0 {
		return matchrecord.Core{}, fmt.Errorf("fetch fixture id=%d: %w", fixtureID, usecase.ErrUpstreamEmpty)
	}

	// The id filter can only match one fixture; extra elements are
	// provider noise and are ignored.
	return env.Response[0], nil
}

// FixturesByTeamSeason fetches every fixture of one team for one season.
func (c *Client) FixturesByTeamSeason(ctx context.Context, teamID int64, season int) ([]matchrecord.Core, error) {
	if teamID <= 0 {
		return nil, fmt.Errorf("%w: team id must be greater than zero", usecase.ErrInvalidInput)
	}
	if season <= 0 {
		return nil, fmt.Errorf("%w: season must be greater than zero", usecase.ErrInvalidInput)
	}

	query := map[string]string{
		"team":   strconv.FormatInt(teamID, 10),
		"season": strconv.Itoa(season),
	}
	var env fixtureEnvelope
	if err := c.doJSON(ctx, "/fixtures", query, &env); err != nil {
		return nil, fmt.Errorf("fetch fixtures team=%d season=%d: %w", teamID, season, err)
	}
	if len(env.Response) == 0 {
		return nil, fmt.Errorf("fetch fixtures team=%d season=%d: %w", teamID, season, usecase.ErrUpstreamEmpty)
	}
	return env.Response, nil
}

// FixtureStatistics fetches per-team statistics for a fixture.
func (c *Client) FixtureStatistics(ctx context.Context, fixtureID int64) ([]map[string]any, error) {
	return c.fetchSubResource(ctx, "/fixtures/statistics", fixtureID)
}

// FixtureEvents fetches the event timeline for a fixture.
func (c *Client) FixtureEvents(ctx context.Context, fixtureID int64) ([]map[string]any, error) {
	return c.fetchSubResource(ctx, "/fixtures/events", fixtureID)
}

// FixtureLineups fetches the starting lineups for a fixture.
func (c *Client) FixtureLineups(ctx context.Context, fixtureID int64) ([]map[string]any, error) {
	return c.fetchSubResource(ctx, "/fixtures/lineups", fixtureID)
}

func (c *Client) fetchSubResource(ctx context.Context, path string, fixtureID int64) ([]map[string]any, error) {
	if fixtureID <= 0 {
		return nil, fmt.Errorf("%w: fixture id must be greater than zero", usecase.ErrInvalidInput)
	}

	var env looseEnvelope
	if err := c.doJSON(ctx, path, map[string]string{"fixture": strconv.FormatInt(fixtureID, 10)}, &env); err != nil {
		return nil, fmt.Errorf("fetch %s fixture=%d: %w", strings.TrimPrefix(path, "/fixtures/"), fixtureID, err)
	}
	if len(env.Response) == 0 {
		return nil, fmt.Errorf("fetch %s fixture=%d: %w", strings.TrimPrefix(path, "/fixtures/"), fixtureID, usecase.ErrUpstreamEmpty)
	}
	return env.Response, nil
}

func (c *Client) doJSON(ctx context.Context, path string, query map[string]string, target any) error {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "api-football circuit breaker rejected request", "state", c.breaker.State())
			return fmt.Errorf("%w: football data provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	values := url.Values{}
	for key, value := range query {
		values.Set(key, value)
	}

	fullURL := c.baseURL + path
	if encoded := values.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	key := path + "?" + values.Encode()
	out, err, _ := c.flight.Do(key, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		if c.circuitEnabled {
			if reqErr != nil && crerr.Is(reqErr, errAPIFootballTransient) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	})
	if err != nil {
		return fmt.Errorf("%w: %v", usecase.ErrUpstream, err)
	}

	raw, ok := out.([]byte)
	if !ok {
		return fmt.Errorf("unexpected response payload type %T", out)
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode provider payload: %w", err)
	}
	return nil
}

// executeRequest performs a single attempt. The daily poll cadence means a
// failed cycle is simply retried on the next tick, so there is no backoff
// loop here.
func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set(apiKeyHeader, c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		reqErr := fmt.Errorf("%w: send request: %s", errAPIFootballTransient, sanitizeSensitiveText(err.Error(), c.apiKey))
		c.logger.WarnContext(ctx, "api-football request failed", "url", fullURL, "error", reqErr)
		return nil, reqErr
	}
	defer resp.Body.Close()

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	if _, err := buf.ReadFrom(io.LimitReader(resp.Body, maxResponseSize)); err != nil {
		return nil, fmt.Errorf("%w: read response body: %v", errAPIFootballTransient, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		reqErr := fmt.Errorf("provider status=%d body=%s", resp.StatusCode, abbreviateBody(buf.Bytes()))
		if isRetryableStatus(resp.StatusCode) {
			reqErr = fmt.Errorf("%w: %v", errAPIFootballTransient, reqErr)
		}
		c.logger.WarnContext(ctx, "api-football request failed", "url", fullURL, "status", resp.StatusCode)
		return nil, reqErr
	}

	raw := make([]byte, buf.Len())
	copy(raw, buf.Bytes())
	return raw, nil
}

func isRetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

func abbreviateBody(raw []byte) string {
	const limit = 256
	body := strings.TrimSpace(string(raw))
	if len(body) > limit {
		return body[:limit] + "..."
	}
	return body
}

// sanitizeSensitiveText scrubs the API key from transport error strings;
// net/http errors echo the full URL and headers in some failure modes.
func sanitizeSensitiveText(value, apiKey string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return value
	}
	if apiKey != "" {
		value = strings.ReplaceAll(value, apiKey, "REDACTED")
	}
	return apiKeyParamRegex.ReplaceAllString(value, "${1}REDACTED")
}
