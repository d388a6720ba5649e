package apifootball

import "github.com/riskibarqy/matchday/internal/domain/matchrecord"

// Every provider endpoint wraps its payload in the same envelope; only the
// element type of response differs per endpoint.
type envelope[T any] struct {
	Get        string         `json:"get"`
	Parameters map[string]any `json:"parameters"`
	Errors     any            `json:"errors"`
	Results    int            `json:"results"`
	Response   []T            `json:"response"`
}

type fixtureEnvelope = envelope[matchrecord.Core]

// Sub-resource payloads (statistics, events, lineups) are stored verbatim,
// so they stay as loose maps instead of typed structs.
type looseEnvelope = envelope[map[string]any]
