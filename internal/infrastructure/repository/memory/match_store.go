package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/riskibarqy/matchday/internal/domain/matchrecord"
)

type documentKey struct {
	season    int
	fixtureID int64
}

// MatchStore keeps fixture documents in process memory. It applies the
// same top-level merge on Upsert as the relational store, so the two are
// interchangeable behind matchrecord.Store.
type MatchStore struct {
	mu   sync.RWMutex
	docs map[documentKey]matchrecord.Document
}

func NewMatchStore() *MatchStore {
	return &MatchStore{docs: make(map[documentKey]matchrecord.Document)}
}

func (r *MatchStore) Upsert(_ context.Context, season int, fixtureID int64, doc matchrecord.Document) error {
	if season <= 0 {
		return fmt.Errorf("season must be greater than zero")
	}
	if fixtureID <= 0 {
		return fmt.Errorf("fixture id must be greater than zero")
	}
	if len(doc) == 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := documentKey{season: season, fixtureID: fixtureID}
	r.docs[key] = matchrecord.Merge(r.docs[key], doc)
	return nil
}

func (r *MatchStore) Get(_ context.Context, season int, fixtureID int64) (matchrecord.Record, bool, error) {
	r.mu.RLock()
	doc, ok := r.docs[documentKey{season: season, fixtureID: fixtureID}]
	r.mu.RUnlock()
	if !ok {
		return matchrecord.Record{}, false, nil
	}

	record, err := matchrecord.FromDocument(doc)
	if err != nil {
		return matchrecord.Record{}, false, err
	}
	return record, true, nil
}

func (r *MatchStore) NextFixture(_ context.Context, season int, teamID int64, now time.Time) (matchrecord.Record, bool, error) {
	return r.scanFixtures(season, teamID, func(matchDate, best int64) bool {
		return matchDate >= now.Unix() && (best == 0 || matchDate < best)
	})
}

func (r *MatchStore) LastFixture(_ context.Context, season int, teamID int64, now time.Time) (matchrecord.Record, bool, error) {
	return r.scanFixtures(season, teamID, func(matchDate, best int64) bool {
		return matchDate <= now.Unix() && matchDate > best
	})
}

func (r *MatchStore) Ping(context.Context) error {
	return nil
}

// scanFixtures walks all documents in the season partition and keeps the
// record whose matchDate the better func prefers over the current best.
func (r *MatchStore) scanFixtures(season int, teamID int64, better func(matchDate, best int64) bool) (matchrecord.Record, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var bestRecord matchrecord.Record
	var bestDate int64
	found := false

	for key, doc := range r.docs {
		if key.season != season {
			continue
		}
		record, err := matchrecord.FromDocument(doc)
		if err != nil {
			return matchrecord.Record{}, false, err
		}
		if !record.InvolvesTeam(teamID) {
			continue
		}
		if !better(record.MatchDate, bestDate) {
			continue
		}
		bestRecord = record
		bestDate = record.MatchDate
		found = true
	}

	return bestRecord, found, nil
}
