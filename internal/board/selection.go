package board

import (
	"sort"

	"github.com/fortuna/hardwood/internal/ingest/espn"
)

const (
	ScoreboardLimit = 24
	RecentLimit     = 5
	UpcomingLimit   = 8
)

// Selections copy before sorting; the input slice is never reordered.

// SelectScoreboard returns every event by time ascending, capped at 24.
func SelectScoreboard(events []espn.Event) []espn.Event {
	return limit(sortedCopy(events, ascending), ScoreboardLimit)
}

// SelectFeatured picks the earliest non-completed event, else the earliest
// event overall.
func SelectFeatured(events []espn.Event) (espn.Event, bool) {
	if upcoming := sortedCopy(filter(events, notCompleted), ascending); len(upcoming) > 0 {
		return upcoming[0], true
	}
	if all := sortedCopy(events, ascending); len(all) > 0 {
		return all[0], true
	}
	return espn.Event{}, false
}

// SelectRecent returns completed events newest first, capped at 5.
func SelectRecent(events []espn.Event) []espn.Event {
	return limit(sortedCopy(filter(events, completed), descending), RecentLimit)
}

// SelectUpcoming returns non-completed events soonest first, capped at 8.
func SelectUpcoming(events []espn.Event) []espn.Event {
	return limit(sortedCopy(filter(events, notCompleted), ascending), UpcomingLimit)
}

type order func(a, b espn.Event) bool

func ascending(a, b espn.Event) bool  { return a.Timestamp < b.Timestamp }
func descending(a, b espn.Event) bool { return a.Timestamp > b.Timestamp }

func completed(e espn.Event) bool    { return e.Completed }
func notCompleted(e espn.Event) bool { return !e.Completed }

func filter(events []espn.Event, keep func(espn.Event) bool) []espn.Event {
	out := make([]espn.Event, 0, len(events))
	for _, e := range events {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}

func sortedCopy(events []espn.Event, less order) []espn.Event {
	out := make([]espn.Event, len(events))
	copy(out, events)
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func limit(events []espn.Event, n int) []espn.Event {
	if len(events) > n {
		return events[:n]
	}
	return events
}
