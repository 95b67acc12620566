package render

import (
	"bytes"
	"html/template"
	"strconv"

	"github.com/cockroachdb/errors"

	"github.com/fortuna/hardwood/internal/ingest/espn"
)

// Empty-region messages.
const (
	MsgNoGames          = "No games found."
	MsgNoGamesInWindow  = "No games found in this window."
	MsgNoFinals         = "No finals in the last 3 days."
	MsgNoUpcoming       = "No upcoming games in the next 3 days."
	MsgNoCompleted      = "No completed games in window."
	MsgLeadersUnavail   = "Leaders unavailable."
	MsgStandingsUnavail = "Standings unavailable right now."
	MsgLeadersFooter    = "Top performers from completed games in the last 3 days."
	MsgLoading          = "Loading…"
)

const fragmentTemplates = `
{{define "meta"}}{{.Status}}{{if .When}} · {{.When}}{{end}}{{end}}

{{define "row"}}<div class="schedule-row"><div class="schedule-matchup">{{.Matchup}}</div>{{if .Score}}<div class="schedule-score">{{.Score}}</div>{{end}}<div class="schedule-meta">{{template "meta" .}}{{if .Link}} · <a class="schedule-link" href="{{.Link}}" target="_blank" rel="noopener">ESPN</a>{{end}}</div></div>{{end}}

{{define "list"}}{{if .Events}}{{range .Events}}{{template "row" .}}{{end}}{{else}}<div class="muted">{{.Empty}}</div>{{end}}{{end}}

{{define "scoreboard"}}{{if .}}{{range .}}{{template "row" .}}{{end}}{{else}}<div class="schedule-row"><div class="schedule-matchup">No games found.</div></div>{{end}}{{end}}

{{define "featured-inner"}}<div class="row-title">{{.Matchup}}</div><div class="row-sub">{{template "meta" .}}{{if .Link}} · <a href="{{.Link}}" target="_blank" rel="noopener">ESPN</a>{{end}}</div>{{end}}

{{define "featured"}}{{if not .Event}}<div class="muted">No games found in this window.</div>{{else if .Wrap}}<div class="row">{{template "featured-inner" .Event}}</div>{{else}}{{template "featured-inner" .Event}}{{end}}{{end}}

{{define "leader-col"}}<div class="leader-col"><div class="leader-title">{{.Title}}</div>{{if .Entries}}{{range $i, $e := .Entries}}<div class="leader-row"><div class="leader-rank">{{rank $i}}</div><div class="leader-name">{{$e.Name}}{{if $e.Team}} <span class="muted">({{$e.Team}})</span>{{end}}</div><div class="leader-val">{{number $e.Value}}</div></div>{{end}}{{else}}<div class="muted">No completed games in window.</div>{{end}}</div>{{end}}

{{define "leaders"}}{{if .Available}}<div class="leaders-grid">{{range .Columns}}{{template "leader-col" .}}{{end}}</div><div class="muted" style="margin-top:8px;">Top performers from completed games in the last 3 days.</div>{{else}}<div class="muted">Leaders unavailable.</div>{{end}}{{end}}

{{define "standings"}}{{if .}}{{range .}}<tr><td>{{.Team}}</td><td>{{.Wins}}</td><td>{{.Losses}}</td></tr>{{end}}{{else}}<tr><td colspan="3" class="muted">Standings unavailable right now.</td></tr>{{end}}{{end}}
`

var fragments = template.Must(template.New("fragments").Funcs(template.FuncMap{
	"rank":   func(i int) int { return i + 1 },
	"number": func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) },
}).Parse(fragmentTemplates))

func execute(name string, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := fragments.ExecuteTemplate(&buf, name, data); err != nil {
		return "", errors.Wrapf(err, "rendering %s", name)
	}
	return buf.String(), nil
}

// ScheduleRow renders one event as a schedule row.
func ScheduleRow(ev espn.Event) (string, error) {
	return execute("row", ev)
}

// Scoreboard renders the scoreboard list.
func Scoreboard(events []espn.Event) (string, error) {
	return execute("scoreboard", events)
}

// Recent renders completed events or the no-finals message.
func Recent(events []espn.Event) (string, error) {
	return execute("list", listData{Events: events, Empty: MsgNoFinals})
}

// Upcoming renders scheduled events or the no-upcoming message.
func Upcoming(events []espn.Event) (string, error) {
	return execute("list", listData{Events: events, Empty: MsgNoUpcoming})
}

// Featured renders the featured game. wrap puts the content inside a
// .row element, for targets that are not one already.
func Featured(ev *espn.Event, wrap bool) (string, error) {
	return execute("featured", featuredData{Event: ev, Wrap: wrap})
}

// Leaders renders the three-column leaders grid.
func Leaders(board espn.LeaderBoard, available bool) (string, error) {
	return execute("leaders", leadersData{
		Available: available,
		Columns: []leaderColumn{
			{Title: "Points", Entries: board.Points},
			{Title: "Rebounds", Entries: board.Rebounds},
			{Title: "Assists", Entries: board.Assists},
		},
	})
}

// StandingsRows renders <tr> rows for a standings table body.
func StandingsRows(rows []espn.StandingsRow, available bool) (string, error) {
	if !available {
		rows = nil
	}
	return execute("standings", rows)
}

type listData struct {
	Events []espn.Event
	Empty  string
}

type featuredData struct {
	Event *espn.Event
	Wrap  bool
}

type leaderColumn struct {
	Title   string
	Entries []espn.LeaderEntry
}

type leadersData struct {
	Available bool
	Columns   []leaderColumn
}
