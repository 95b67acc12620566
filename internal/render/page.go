package render

import (
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/cockroachdb/errors"

	"github.com/fortuna/hardwood/internal/board"
	"github.com/fortuna/hardwood/internal/league"
)

// Region id suffixes. A region for league "nba" is the element with id
// "nba-{suffix}".
const (
	RegionStatus     = "status"
	RegionScoreboard = "scoreboard"
	RegionFeatured   = "featured"
	RegionRecent     = "recent"
	RegionUpcoming   = "upcoming"
	RegionStandings  = "standings-body"
	RegionLeaders    = "leaders"
)

// Regions lists every suffix that marks a league as present on a page.
var Regions = []string{
	RegionStatus,
	RegionScoreboard,
	RegionFeatured,
	RegionRecent,
	RegionUpcoming,
	RegionStandings,
	RegionLeaders,
}

// Presence is one league found on a page and the optional regions it needs.
type Presence struct {
	League  string
	Options board.LoadOptions
}

// Page is a parsed HTML page whose league regions can be filled.
type Page struct {
	doc *goquery.Document
}

// ParsePage parses an HTML document.
func ParsePage(r io.Reader) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "parsing page")
	}
	return &Page{doc: doc}, nil
}

func (p *Page) region(key, suffix string) *goquery.Selection {
	return p.doc.Find("#" + key + "-" + suffix).First()
}

func (p *Page) has(key, suffix string) bool {
	return p.region(key, suffix).Length() > 0
}

// Present returns the leagues with at least one region on the page, in
// table order.
func (p *Page) Present(table *league.Table) []Presence {
	var out []Presence
	for _, key := range table.Keys() {
		found := false
		for _, suffix := range Regions {
			if p.has(key, suffix) {
				found = true
				break
			}
		}
		if !found {
			continue
		}
		out = append(out, Presence{
			League: key,
			Options: board.LoadOptions{
				Standings: p.has(key, RegionStandings),
				Leaders:   p.has(key, RegionLeaders),
			},
		})
	}
	return out
}

// MarkLoading sets the league's status region to the loading text and leaves
// every other region untouched.
func (p *Page) MarkLoading(key string) {
	p.region(key, RegionStatus).SetText(MsgLoading)
}

// Fill writes a snapshot into the regions of its league that exist on the page.
func (p *Page) Fill(snap *board.Snapshot) error {
	key := strings.ToLower(snap.League)

	p.region(key, RegionStatus).SetText(snap.Status)

	fills := []struct {
		suffix string
		render func(sel *goquery.Selection) (string, error)
	}{
		{RegionScoreboard, func(*goquery.Selection) (string, error) { return Scoreboard(snap.Scoreboard) }},
		{RegionFeatured, func(sel *goquery.Selection) (string, error) { return Featured(snap.Featured, !sel.HasClass("row")) }},
		{RegionRecent, func(*goquery.Selection) (string, error) { return Recent(snap.Recent) }},
		{RegionUpcoming, func(*goquery.Selection) (string, error) { return Upcoming(snap.Upcoming) }},
		{RegionStandings, func(*goquery.Selection) (string, error) {
			return StandingsRows(snap.Standings, snap.StandingsAvailable)
		}},
		{RegionLeaders, func(*goquery.Selection) (string, error) { return Leaders(snap.Leaders, snap.LeadersAvailable) }},
	}

	for _, f := range fills {
		sel := p.region(key, f.suffix)
		if sel.Length() == 0 {
			continue
		}
		html, err := f.render(sel)
		if err != nil {
			return errors.Wrapf(err, "filling %s-%s", key, f.suffix)
		}
		sel.SetHtml(html)
	}
	return nil
}

// HTML serializes the page.
func (p *Page) HTML() (string, error) {
	out, err := p.doc.Html()
	if err != nil {
		return "", errors.Wrap(err, "serializing page")
	}
	return out, nil
}
