package board

import (
	"time"

	"github.com/fortuna/hardwood/internal/ingest/espn"
	"github.com/fortuna/hardwood/internal/league"
)

// Snapshot is the presentation-ready result of one league load. Every list
// is non-nil. A published snapshot is never mutated.
type Snapshot struct {
	League    string    `json:"league"`
	Label     string    `json:"label"`
	OK        bool      `json:"ok"`
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updated_at"`

	Events     []espn.Event `json:"events"`
	Scoreboard []espn.Event `json:"scoreboard"`
	Featured   *espn.Event  `json:"featured,omitempty"`
	Recent     []espn.Event `json:"recent"`
	Upcoming   []espn.Event `json:"upcoming"`

	Standings          []espn.StandingsRow `json:"standings"`
	StandingsAvailable bool                `json:"standings_available"`

	Leaders          espn.LeaderBoard `json:"leaders"`
	LeadersAvailable bool             `json:"leaders_available"`
}

func newSnapshot(l league.League, events []espn.Event) Snapshot {
	snap := emptySnapshot(l)
	snap.Events = events
	snap.Scoreboard = SelectScoreboard(events)
	if featured, ok := SelectFeatured(events); ok {
		snap.Featured = &featured
	}
	snap.Recent = SelectRecent(events)
	snap.Upcoming = SelectUpcoming(events)
	return snap
}

func emptySnapshot(l league.League) Snapshot {
	return Snapshot{
		League:     l.Key,
		Label:      l.Label,
		Events:     []espn.Event{},
		Scoreboard: []espn.Event{},
		Recent:     []espn.Event{},
		Upcoming:   []espn.Event{},
		Standings:  []espn.StandingsRow{},
		Leaders:    espn.EmptyLeaderBoard(),
	}
}

func failedSnapshot(l league.League, err error, at time.Time) Snapshot {
	snap := emptySnapshot(l)
	snap.UpdatedAt = at
	snap.Status = "Could not load data (" + FailureReason(err) + ")."
	return snap
}
