package render

import (
	"strings"
	"testing"
	"testing/fstest"

	"github.com/PuerkitoBio/goquery"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fortuna/hardwood/internal/board"
	"github.com/fortuna/hardwood/internal/ingest/espn"
	"github.com/fortuna/hardwood/internal/league"
)

const nbaPage = `<!DOCTYPE html>
<html><head><title>NBA</title></head><body>
<p id="nba-status">Loading…</p>
<div id="nba-scoreboard"></div>
<div id="nba-featured" class="row"></div>
<div id="nba-recent"></div>
<div id="nba-upcoming"></div>
<table><tbody id="nba-standings-body"></tbody></table>
</body></html>`

const homePage = `<!DOCTYPE html>
<html><body>
<p id="wnba-status"></p>
<div id="wnba-featured"></div>
<div id="wnba-leaders">static</div>
<div id="nba-leaders"></div>
<div id="nhl-status"></div>
</body></html>`

func parse(t *testing.T, html string) *Page {
	t.Helper()
	page, err := ParsePage(strings.NewReader(html))
	require.NoError(t, err)
	return page
}

func reparse(t *testing.T, page *Page) *goquery.Document {
	t.Helper()
	out, err := page.HTML()
	require.NoError(t, err)
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(out))
	require.NoError(t, err)
	return doc
}

func TestPage_Present(t *testing.T) {
	t.Parallel()

	table := league.MustDefault()

	assert.Equal(t, []Presence{
		{League: "nba", Options: board.LoadOptions{Standings: true}},
	}, parse(t, nbaPage).Present(table))

	assert.Equal(t, []Presence{
		{League: "nba", Options: board.LoadOptions{Leaders: true}},
		{League: "wnba", Options: board.LoadOptions{Leaders: true}},
	}, parse(t, homePage).Present(table))

	assert.Empty(t, parse(t, "<html><body><div id=\"x\"></div></body></html>").Present(table))
}

func nbaSnapshot() *board.Snapshot {
	upcoming := espn.Event{ID: "2", Matchup: "Magic @ Heat", Status: "7:30 PM", When: "Mar 2, 7:30 PM"}
	return &board.Snapshot{
		League:             "nba",
		OK:                 true,
		Status:             "Source: ESPN · Updated 3/1/2026, 12:00:00 PM",
		Scoreboard:         []espn.Event{finalEvent, upcoming},
		Featured:           &upcoming,
		Recent:             []espn.Event{finalEvent},
		Upcoming:           []espn.Event{upcoming},
		Standings:          []espn.StandingsRow{{Team: "Celtics", Wins: espn.KnownStat(40), Losses: espn.KnownStat(12)}},
		StandingsAvailable: true,
		Leaders:            espn.EmptyLeaderBoard(),
	}
}

func TestPage_FillEveryRegion(t *testing.T) {
	t.Parallel()

	page := parse(t, nbaPage)
	require.NoError(t, page.Fill(nbaSnapshot()))
	doc := reparse(t, page)

	assert.Equal(t, "Source: ESPN · Updated 3/1/2026, 12:00:00 PM", doc.Find("#nba-status").Text())
	assert.Equal(t, 2, doc.Find("#nba-scoreboard .schedule-row").Length())
	assert.Zero(t, doc.Find("#nba-featured .row").Length(), "target is already a .row")
	assert.Equal(t, "Magic @ Heat", doc.Find("#nba-featured .row-title").Text())
	assert.Equal(t, "Knicks @ Celtics", doc.Find("#nba-recent .schedule-matchup").Text())
	assert.Equal(t, "Magic @ Heat", doc.Find("#nba-upcoming .schedule-matchup").Text())

	cells := doc.Find("#nba-standings-body tr td")
	require.Equal(t, 3, cells.Length())
	assert.Equal(t, "Celtics", cells.Eq(0).Text())
	assert.Equal(t, "40", cells.Eq(1).Text())
	assert.Equal(t, "12", cells.Eq(2).Text())

	assert.True(t, strings.HasPrefix(strings.ToLower(mustHTML(t, page)), "<!doctype html>"))
}

func mustHTML(t *testing.T, page *Page) string {
	t.Helper()
	out, err := page.HTML()
	require.NoError(t, err)
	return out
}

func TestPage_FillFailedSnapshot(t *testing.T) {
	t.Parallel()

	page := parse(t, homePage)
	require.NoError(t, page.Fill(&board.Snapshot{
		League:    "wnba",
		Status:    "Could not load data (HTTP 500).",
		Leaders:   espn.EmptyLeaderBoard(),
		Standings: []espn.StandingsRow{},
	}))
	doc := reparse(t, page)

	assert.Equal(t, "Could not load data (HTTP 500).", doc.Find("#wnba-status").Text())
	assert.Equal(t, 1, doc.Find("#wnba-featured > .muted").Length())
	assert.Equal(t, MsgNoGamesInWindow, doc.Find("#wnba-featured .muted").Text())
	assert.Equal(t, MsgLeadersUnavail, doc.Find("#wnba-leaders .muted").Text())
	assert.Empty(t, doc.Find("#nba-leaders").Text(), "other leagues are untouched")
}

func TestPages_RenderAndScan(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"index.html": {Data: []byte(homePage)},
		"nba.html":   {Data: []byte(nbaPage)},
		"notes.txt":  {Data: []byte("ignored")},
		"sub/x.html": {Data: []byte(nbaPage)},
	}
	table := league.MustDefault()
	store := board.NewStore(table.Keys())
	pages := NewPages(fsys, store, table)

	names, err := pages.Names()
	require.NoError(t, err)
	assert.Equal(t, []string{"index.html", "nba.html"}, names)

	presences, err := pages.Scan()
	require.NoError(t, err)
	assert.Equal(t, []Presence{
		{League: "nba", Options: board.LoadOptions{Standings: true, Leaders: true}},
		{League: "wnba", Options: board.LoadOptions{Leaders: true}},
	}, presences)

	single, err := pages.Presences("nba.html")
	require.NoError(t, err)
	assert.Equal(t, []Presence{{League: "nba", Options: board.LoadOptions{Standings: true}}}, single)
	_, err = pages.Presences("missing.html")
	assert.True(t, errors.Is(err, ErrPageNotFound))

	html, err := pages.Render("nba.html")
	require.NoError(t, err)
	assert.Contains(t, html, MsgLoading)
	assert.NotContains(t, html, "schedule-row")

	store.Put(*nbaSnapshot())
	html, err = pages.Render("/nba.html")
	require.NoError(t, err)
	assert.Contains(t, html, "Magic @ Heat")

	html, err = pages.Render("")
	require.NoError(t, err)
	assert.Contains(t, html, "wnba-status")

	for _, name := range []string{"missing.html", "notes.txt", "../etc/passwd.html"} {
		_, err = pages.Render(name)
		assert.True(t, errors.Is(err, ErrPageNotFound), name)
	}
}
