package espn

import (
	"github.com/bytedance/sonic"
)

// Event is the canonical scoreboard record.
type Event struct {
	ID        string `json:"id"`
	Matchup   string `json:"matchup"`
	Score     string `json:"score"`
	Status    string `json:"status"`
	When      string `json:"when"`
	Timestamp int64  `json:"dt"` // epoch ms, 0 when unknown
	Completed bool   `json:"completed"`
	Live      bool   `json:"live"`
	Link      string `json:"link"`
}

// Category is a ranked leader statistic.
type Category string

const (
	CategoryPoints   Category = "points"
	CategoryRebounds Category = "rebounds"
	CategoryAssists  Category = "assists"
)

// Categories lists the ranked categories in display order.
var Categories = []Category{CategoryPoints, CategoryRebounds, CategoryAssists}

// LeaderEntry is one athlete's best value in a category.
type LeaderEntry struct {
	Name  string  `json:"name"`
	Team  string  `json:"team"`
	Value float64 `json:"value"`
}

// LeaderBoard holds the top entries per category. Lists are never nil.
type LeaderBoard struct {
	Points   []LeaderEntry `json:"points"`
	Rebounds []LeaderEntry `json:"rebounds"`
	Assists  []LeaderEntry `json:"assists"`
}

// EmptyLeaderBoard returns a board with empty, non-nil lists.
func EmptyLeaderBoard() LeaderBoard {
	return LeaderBoard{
		Points:   []LeaderEntry{},
		Rebounds: []LeaderEntry{},
		Assists:  []LeaderEntry{},
	}
}

// Get returns the list for c.
func (b LeaderBoard) Get(c Category) []LeaderEntry {
	switch c {
	case CategoryPoints:
		return b.Points
	case CategoryRebounds:
		return b.Rebounds
	case CategoryAssists:
		return b.Assists
	}
	return nil
}

// UnknownPlaceholder is rendered for a standings stat ESPN did not report.
const UnknownPlaceholder = "—"

// Stat is a standings number that may be unknown. Zero and unknown differ.
type Stat struct {
	Value float64
	Known bool
}

// KnownStat wraps a reported value.
func KnownStat(v float64) Stat {
	return Stat{Value: v, Known: true}
}

func (s Stat) String() string {
	if !s.Known {
		return UnknownPlaceholder
	}
	return formatNumber(s.Value)
}

func (s Stat) MarshalJSON() ([]byte, error) {
	if !s.Known {
		return sonic.Marshal(UnknownPlaceholder)
	}
	return sonic.Marshal(s.Value)
}

func (s *Stat) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return err
	}
	if v, ok := raw.(float64); ok {
		*s = KnownStat(v)
		return nil
	}
	*s = Stat{}
	return nil
}

// StandingsRow is one team's win/loss line.
type StandingsRow struct {
	Team   string `json:"team"`
	Wins   Stat   `json:"w"`
	Losses Stat   `json:"l"`
}
