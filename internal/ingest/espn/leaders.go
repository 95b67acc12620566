package espn

import (
	"sort"
	"strings"
)

// TopLeaders is how many entries each category keeps.
const TopLeaders = 5

// leaderSample is one athlete value read from a summary, before merging.
type leaderSample struct {
	category Category
	name     string
	team     string
	item     map[string]interface{}
}

// leaderShape reads samples from one known summary layout. A shape that does
// not match returns nothing.
type leaderShape func(summary map[string]interface{}) []leaderSample

// leaderShapes are all scanned; their samples are merged.
var leaderShapes = []leaderShape{
	categoryGroupLeaders,
	competitorLeaders,
	teamGroupLeaders,
}

// ClassifyCategory maps an ESPN category name or abbreviation to a ranked
// category.
func ClassifyCategory(name string) (Category, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	switch {
	case n == "":
		return "", false
	case strings.Contains(n, "point"), n == "pts", n == "ppg":
		return CategoryPoints, true
	case strings.Contains(n, "rebound"), n == "reb", n == "rpg":
		return CategoryRebounds, true
	case strings.Contains(n, "assist"), n == "ast", n == "apg":
		return CategoryAssists, true
	}
	return "", false
}

// ExtractLeaders reads the top entries per category from a game summary of
// unknown layout.
func ExtractLeaders(summary interface{}) LeaderBoard {
	doc := asMap(summary)
	tally := NewLeaderTally()
	for _, shape := range leaderShapes {
		for _, s := range shape(doc) {
			if value, ok := sampleValue(s.item); ok {
				tally.Observe(s.category, LeaderEntry{Name: s.name, Team: s.team, Value: value})
			}
		}
	}
	return tally.Top(TopLeaders)
}

// categoryGroupLeaders reads summary.leaders[] as category groups:
// [{name, leaders: [{athlete, team, value|displayValue}]}].
func categoryGroupLeaders(summary map[string]interface{}) []leaderSample {
	var out []leaderSample
	for _, g := range extractArray(summary, "leaders") {
		group := asMap(g)
		cat, ok := ClassifyCategory(fallbackString(
			extractString(group, "name"),
			extractString(group, "abbreviation"),
			extractString(group, "displayName"),
		))
		if !ok {
			continue
		}
		for _, it := range extractFirstArray(group, "leaders", "leader") {
			item := asMap(it)
			out = append(out, newSample(cat, item, extractString(extractMap(item, "team"), "abbreviation")))
		}
	}
	return out
}

// competitorLeaders reads per-team category lists from
// header.competitions[0].competitors[] or competitions[0].competitors[].
func competitorLeaders(summary map[string]interface{}) []leaderSample {
	competitors := extractArray(firstObject(extractArray(extractMap(summary, "header"), "competitions")), "competitors")
	if len(competitors) == 0 {
		competitors = extractArray(firstObject(extractArray(summary, "competitions")), "competitors")
	}

	var out []leaderSample
	for _, c := range competitors {
		competitor := asMap(c)
		teamAbbr := extractString(extractMap(competitor, "team"), "abbreviation")
		out = append(out, nestedCategoryLeaders(extractArray(competitor, "leaders"), teamAbbr)...)
	}
	return out
}

// teamGroupLeaders reads summary.leaders[] entries that are team groups:
// [{team, leaders: [{name, leaders: [...]}]}].
func teamGroupLeaders(summary map[string]interface{}) []leaderSample {
	var out []leaderSample
	for _, g := range extractArray(summary, "leaders") {
		group := asMap(g)
		team, ok := group["team"].(map[string]interface{})
		if !ok {
			continue
		}
		out = append(out, nestedCategoryLeaders(extractArray(group, "leaders"), extractString(team, "abbreviation"))...)
	}
	return out
}

func nestedCategoryLeaders(categories []interface{}, teamAbbr string) []leaderSample {
	var out []leaderSample
	for _, c := range categories {
		category := asMap(c)
		cat, ok := ClassifyCategory(fallbackString(
			extractString(category, "name"),
			extractString(category, "displayName"),
		))
		if !ok {
			continue
		}
		for _, it := range extractArray(category, "leaders") {
			item := asMap(it)
			team := fallbackString(teamAbbr, extractString(extractMap(item, "team"), "abbreviation"))
			out = append(out, newSample(cat, item, team))
		}
	}
	return out
}

func newSample(cat Category, item map[string]interface{}, team string) leaderSample {
	athlete := extractMap(item, "athlete")
	return leaderSample{
		category: cat,
		name:     fallbackString(extractString(athlete, "displayName"), extractString(athlete, "shortName")),
		team:     team,
		item:     item,
	}
}

// sampleValue prefers the numeric value field and falls back to parsing the
// display string.
func sampleValue(item map[string]interface{}) (float64, bool) {
	if v, ok := toNumber(item["value"]); ok {
		return v, true
	}
	return toNumber(item["displayValue"])
}

// LeaderTally merges leader entries, keeping the largest value seen per
// (name, team) in each category. Observing the same entry twice is a no-op.
type LeaderTally struct {
	byCategory map[Category]*categoryTally
}

type categoryTally struct {
	order []string
	best  map[string]LeaderEntry
}

// NewLeaderTally returns an empty tally.
func NewLeaderTally() *LeaderTally {
	t := &LeaderTally{byCategory: make(map[Category]*categoryTally, len(Categories))}
	for _, c := range Categories {
		t.byCategory[c] = &categoryTally{best: make(map[string]LeaderEntry)}
	}
	return t
}

// Observe records an entry. Entries without a name are ignored.
func (t *LeaderTally) Observe(c Category, e LeaderEntry) {
	ct, ok := t.byCategory[c]
	if !ok || e.Name == "" {
		return
	}
	key := e.Name + "@@" + e.Team
	prev, seen := ct.best[key]
	if !seen {
		ct.order = append(ct.order, key)
	}
	if !seen || e.Value > prev.Value {
		ct.best[key] = e
	}
}

// Merge observes every entry of a board.
func (t *LeaderTally) Merge(b LeaderBoard) {
	for _, c := range Categories {
		for _, e := range b.Get(c) {
			t.Observe(c, e)
		}
	}
}

// Top returns each category sorted by value descending and truncated to n.
// Ties keep first-seen order.
func (t *LeaderTally) Top(n int) LeaderBoard {
	board := EmptyLeaderBoard()
	for _, c := range Categories {
		ct := t.byCategory[c]
		list := make([]LeaderEntry, 0, len(ct.order))
		for _, key := range ct.order {
			list = append(list, ct.best[key])
		}
		sort.SliceStable(list, func(i, j int) bool { return list[i].Value > list[j].Value })
		if len(list) > n {
			list = list[:n]
		}
		switch c {
		case CategoryPoints:
			board.Points = list
		case CategoryRebounds:
			board.Rebounds = list
		case CategoryAssists:
			board.Assists = list
		}
	}
	return board
}
