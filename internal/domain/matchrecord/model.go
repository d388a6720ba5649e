package matchrecord

import "strings"

// Long-form status values as emitted by the upstream provider.
const (
	StatusFinished   = "Match Finished"
	StatusNotStarted = "Not Started"
)

// Core carries the flattened provider fields of one fixture. It is the shape
// returned by the base fixture lookup, before sub-resources are attached.
type Core struct {
	Fixture Fixture `json:"fixture"`
	League  League  `json:"league"`
	Teams   Teams   `json:"teams"`
	Goals   Goals   `json:"goals"`
	Score   Score   `json:"score"`
}

// Record is the aggregate persisted per fixture: the core fields plus the
// optional sub-resources and the denormalized matchDate.
//
// MatchDate always equals Fixture.Timestamp; it exists only because the
// store's query layer sorts and filters on a top-level field.
type Record struct {
	Core
	MatchDate  int64            `json:"matchDate"`
	Statistics []map[string]any `json:"statistics,omitempty"`
	Lineups    []map[string]any `json:"lineups,omitempty"`
	Events     []map[string]any `json:"events,omitempty"`
}

type Fixture struct {
	ID        int64  `json:"id"`
	Timestamp int64  `json:"timestamp"`
	Date      string `json:"date,omitempty"`
	Timezone  string `json:"timezone,omitempty"`
	Status    Status `json:"status"`
}

type Status struct {
	Long    string `json:"long"`
	Short   string `json:"short"`
	Elapsed *int   `json:"elapsed"`
}

type League struct {
	ID      int64  `json:"id"`
	Name    string `json:"name,omitempty"`
	Country string `json:"country,omitempty"`
	Season  int    `json:"season"`
	Round   string `json:"round,omitempty"`
}

type Teams struct {
	Home TeamSide `json:"home"`
	Away TeamSide `json:"away"`
}

type TeamSide struct {
	ID     int64  `json:"id"`
	Name   string `json:"name,omitempty"`
	Logo   string `json:"logo,omitempty"`
	Winner *bool  `json:"winner"`
}

type Goals struct {
	Home *int `json:"home"`
	Away *int `json:"away"`
}

type Score struct {
	Halftime  Goals `json:"halftime"`
	Fulltime  Goals `json:"fulltime"`
	Extratime Goals `json:"extratime"`
	Penalty   Goals `json:"penalty"`
}

// NewRecord builds the aggregate from a core fixture, denormalizing the
// kickoff timestamp into MatchDate.
func NewRecord(core Core) Record {
	return Record{
		Core:      core,
		MatchDate: core.Fixture.Timestamp,
	}
}

func (r Record) Season() int {
	return r.League.Season
}

// HasSeason reports whether the record can be partitioned. A zero season is
// treated as absent, matching the provider's habit of omitting the field.
func (r Record) HasSeason() bool {
	return r.League.Season != 0
}

func (r Record) InvolvesTeam(teamID int64) bool {
	return teamID != 0 && (r.Teams.Home.ID == teamID || r.Teams.Away.ID == teamID)
}

func IsFinishedStatus(long string) bool {
	return strings.EqualFold(strings.TrimSpace(long), StatusFinished)
}

func IsNotStartedStatus(long string) bool {
	return strings.EqualFold(strings.TrimSpace(long), StatusNotStarted)
}

// IsInPlayStatus treats anything that is neither finished nor not-started as
// in play: halftime, extra time and paused states included.
func IsInPlayStatus(long string) bool {
	return !IsFinishedStatus(long) && !IsNotStartedStatus(long)
}
