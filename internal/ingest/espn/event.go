package espn

import (
	"strings"
	"time"
)

const (
	// DisplayTimeLayout is the short month/day/hour/minute form used on pages.
	DisplayTimeLayout = "Jan 2, 3:04 PM"

	statusFinal     = "FINAL"
	statusLive      = "LIVE"
	statusScheduled = "Scheduled"
	stateInProgress = "in"
)

// ESPN sometimes omits seconds: "2025-11-15T01:00Z".
var eventTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04Z",
}

// ParseEvent normalizes one scoreboard entry. It reports false only when raw
// is not an object; every missing field degrades to a default.
func ParseEvent(raw interface{}, loc *time.Location) (Event, bool) {
	event, ok := raw.(map[string]interface{})
	if !ok {
		return Event{}, false
	}
	if loc == nil {
		loc = time.Local
	}

	comp := firstObject(extractArray(event, "competitions"))
	home, away := splitCompetitors(extractArray(comp, "competitors"))

	homeName := fallbackString(extractString(extractMap(home, "team"), "displayName"), "Home")
	awayName := fallbackString(extractString(extractMap(away, "team"), "displayName"), "Away")

	statusType := dig(event, "status", "type")
	if len(statusType) == 0 {
		statusType = dig(comp, "status", "type")
	}

	out := Event{
		ID:        extractID(event, "id"),
		Matchup:   awayName + " @ " + homeName,
		Score:     formatScore(away, home),
		Status:    formatStatus(statusType),
		Completed: extractBool(statusType, "completed"),
		Live:      extractString(statusType, "state") == stateInProgress,
		Link:      firstLink(event, comp),
	}

	if ts, ok := parseEventTime(extractString(event, "date")); ok {
		out.Timestamp = ts.UnixMilli()
		out.When = ts.In(loc).Format(DisplayTimeLayout)
	}

	return out, true
}

// NormalizeEvents maps every entry through ParseEvent, drops entries with no
// timestamp and removes duplicates.
func NormalizeEvents(raw []interface{}, loc *time.Location) []Event {
	events := make([]Event, 0, len(raw))
	for _, entry := range raw {
		ev, ok := ParseEvent(entry, loc)
		if !ok || ev.Timestamp == 0 {
			continue
		}
		events = append(events, ev)
	}
	return DedupeEvents(events)
}

// ParseScoreboard normalizes the events[] list of a scoreboard document.
func ParseScoreboard(doc map[string]interface{}, loc *time.Location) []Event {
	return NormalizeEvents(extractArray(doc, "events"), loc)
}

// DedupeEvents keeps the first event for each (matchup, timestamp, score,
// status) tuple. IDs are not part of the key.
func DedupeEvents(events []Event) []Event {
	type eventKey struct {
		matchup string
		ts      int64
		score   string
		status  string
	}

	seen := make(map[eventKey]struct{}, len(events))
	out := make([]Event, 0, len(events))
	for _, ev := range events {
		k := eventKey{ev.Matchup, ev.Timestamp, ev.Score, ev.Status}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, ev)
	}
	return out
}

func splitCompetitors(competitors []interface{}) (home, away map[string]interface{}) {
	home = map[string]interface{}{}
	away = map[string]interface{}{}
	var foundHome, foundAway bool
	for _, c := range competitors {
		competitor := asMap(c)
		switch extractString(competitor, "homeAway") {
		case "home":
			if !foundHome {
				home, foundHome = competitor, true
			}
		case "away":
			if !foundAway {
				away, foundAway = competitor, true
			}
		}
	}
	return home, away
}

// competitorScore reads a competitor's score, which ESPN sends as a string on
// the scoreboard and sometimes as a number or {value, displayValue} object.
func competitorScore(competitor map[string]interface{}) (string, bool) {
	switch v := competitor["score"].(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return "", false
		}
		return strings.TrimSpace(v), true
	case float64:
		return formatNumber(v), true
	case map[string]interface{}:
		if dv := extractString(v, "displayValue"); dv != "" {
			return dv, true
		}
		if n, ok := v["value"].(float64); ok {
			return formatNumber(n), true
		}
	}
	return "", false
}

func formatScore(away, home map[string]interface{}) string {
	awayScore, awayOK := competitorScore(away)
	homeScore, homeOK := competitorScore(home)
	if !awayOK && !homeOK {
		return ""
	}
	return awayScore + " - " + homeScore
}

func formatStatus(statusType map[string]interface{}) string {
	detail := extractString(statusType, "shortDetail")
	switch {
	case extractBool(statusType, "completed"):
		return statusFinal
	case extractString(statusType, "state") == stateInProgress:
		return fallbackString(detail, statusLive)
	default:
		return fallbackString(detail, statusScheduled)
	}
}

func firstLink(event, comp map[string]interface{}) string {
	if href := extractString(firstObject(extractArray(event, "links")), "href"); href != "" {
		return href
	}
	return extractString(firstObject(extractArray(comp, "links")), "href")
}

func parseEventTime(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range eventTimeLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// DateRange encodes the window from pastDays before to nextDays after now as
// YYYYMMDD-YYYYMMDD in now's location.
func DateRange(now time.Time, pastDays, nextDays int) string {
	start := now.AddDate(0, 0, -pastDays)
	end := now.AddDate(0, 0, nextDays)
	return start.Format("20060102") + "-" + end.Format("20060102")
}
