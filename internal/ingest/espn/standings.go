package espn

// DefaultStandingsLimit is the row cap used when callers pass zero.
const DefaultStandingsLimit = 10

// standingsShape collects entries lists from one known standings layout.
type standingsShape func(doc map[string]interface{}) [][]interface{}

// standingsShapes run in priority order; the first to yield rows wins.
var standingsShapes = []standingsShape{
	groupedStandings,
	topLevelStandings,
	bareEntries,
}

// ExtractStandings reads up to limit win/loss rows from a standings document
// of unknown nesting.
func ExtractStandings(obj interface{}, limit int) []StandingsRow {
	if limit <= 0 {
		limit = DefaultStandingsLimit
	}
	doc := asMap(obj)
	for _, shape := range standingsShapes {
		if rows := collectRows(shape(doc), limit); len(rows) > 0 {
			return rows
		}
	}
	return []StandingsRow{}
}

// groupedStandings walks children[] (conferences) and their children[]
// (divisions), each of which may carry standings.entries.
func groupedStandings(doc map[string]interface{}) [][]interface{} {
	var lists [][]interface{}
	for _, c := range extractArray(doc, "children") {
		child := asMap(c)
		lists = append(lists, extractArray(extractMap(child, "standings"), "entries"))
		for _, gc := range extractArray(child, "children") {
			lists = append(lists, extractArray(extractMap(asMap(gc), "standings"), "entries"))
		}
	}
	return lists
}

func topLevelStandings(doc map[string]interface{}) [][]interface{} {
	return [][]interface{}{extractArray(extractMap(doc, "standings"), "entries")}
}

func bareEntries(doc map[string]interface{}) [][]interface{} {
	return [][]interface{}{extractArray(doc, "entries")}
}

func collectRows(lists [][]interface{}, limit int) []StandingsRow {
	var rows []StandingsRow
	for _, entries := range lists {
		for _, e := range entries {
			if row, ok := parseStandingsEntry(asMap(e)); ok {
				rows = append(rows, row)
			}
			if len(rows) >= limit {
				return rows
			}
		}
	}
	return rows
}

func parseStandingsEntry(entry map[string]interface{}) (StandingsRow, bool) {
	team := extractMap(entry, "team")
	label := fallbackString(
		extractString(team, "displayName"),
		extractString(team, "name"),
		extractString(team, "abbreviation"),
	)
	if label == "" {
		return StandingsRow{}, false
	}

	stats := extractArray(entry, "stats")
	return StandingsRow{
		Team:   label,
		Wins:   findStat(stats, "wins", "W"),
		Losses: findStat(stats, "losses", "L"),
	}, true
}

// findStat returns the first stat matching name or abbreviation. A missing
// stat or a stat without a readable value is unknown.
func findStat(stats []interface{}, name, abbreviation string) Stat {
	for _, s := range stats {
		stat := asMap(s)
		if extractString(stat, "name") != name && extractString(stat, "abbreviation") != abbreviation {
			continue
		}
		if v, ok := toNumber(stat["value"]); ok {
			return KnownStat(v)
		}
		return Stat{}
	}
	return Stat{}
}
