package matchrecord

import (
	"context"
	"time"
)

// Store persists fixture documents partitioned by season and keyed by
// fixture id. Upsert merges at the top level; it never replaces a
// document wholesale.
type Store interface {
	Upsert(ctx context.Context, season int, fixtureID int64, doc Document) error

	// Get returns false when no document exists for the key.
	Get(ctx context.Context, season int, fixtureID int64) (Record, bool, error)

	// NextFixture returns the earliest fixture for the team at or after
	// now; LastFixture returns the latest at or before now. A fixture
	// kicking off at exactly now is visible from both sides. The bool is
	// false when no such fixture exists.
	NextFixture(ctx context.Context, season int, teamID int64, now time.Time) (Record, bool, error)
	LastFixture(ctx context.Context, season int, teamID int64, now time.Time) (Record, bool, error)

	Ping(ctx context.Context) error
}
