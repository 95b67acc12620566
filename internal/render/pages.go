package render

import (
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/fortuna/hardwood/internal/board"
	"github.com/fortuna/hardwood/internal/league"
)

// ErrPageNotFound is returned for names that are not an .html page in the
// pages directory.
var ErrPageNotFound = errors.New("page not found")

// Pages renders the static pages of a directory against the latest snapshots.
type Pages struct {
	fsys    fs.FS
	store   *board.Store
	leagues *league.Table
}

func NewPages(fsys fs.FS, store *board.Store, leagues *league.Table) *Pages {
	return &Pages{fsys: fsys, store: store, leagues: leagues}
}

// Names lists the .html pages at the root of the directory, sorted.
func (p *Pages) Names() ([]string, error) {
	entries, err := fs.ReadDir(p.fsys, ".")
	if err != nil {
		return nil, errors.Wrap(err, "listing pages")
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".html") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

func (p *Pages) open(name string) (*Page, error) {
	name = path.Clean(strings.TrimPrefix(name, "/"))
	if name == "." || name == "" {
		name = "index.html"
	}
	if !fs.ValidPath(name) || path.Ext(name) != ".html" {
		return nil, errors.Wrapf(ErrPageNotFound, "%q", name)
	}
	f, err := p.fsys.Open(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errors.Wrapf(ErrPageNotFound, "%q", name)
		}
		return nil, errors.Wrapf(err, "opening %s", name)
	}
	defer f.Close()
	return ParsePage(f)
}

// Render fills every present league of a page. Leagues without a snapshot
// yet show the loading status.
func (p *Pages) Render(name string) (string, error) {
	page, err := p.open(name)
	if err != nil {
		return "", err
	}
	for _, presence := range page.Present(p.leagues) {
		snap, ok := p.store.Get(presence.League)
		if !ok {
			page.MarkLoading(presence.League)
			continue
		}
		if err := page.Fill(snap); err != nil {
			return "", err
		}
	}
	return page.HTML()
}

// Presences lists the leagues one page shows, in table order.
func (p *Pages) Presences(name string) ([]Presence, error) {
	page, err := p.open(name)
	if err != nil {
		return nil, err
	}
	return page.Present(p.leagues), nil
}

// Scan merges the presences of every page: a league is present when any page
// shows it, and needs a region when any page has that region.
func (p *Pages) Scan() ([]Presence, error) {
	names, err := p.Names()
	if err != nil {
		return nil, err
	}

	merged := make(map[string]board.LoadOptions)
	for _, name := range names {
		page, err := p.open(name)
		if err != nil {
			return nil, err
		}
		for _, presence := range page.Present(p.leagues) {
			opts := merged[presence.League]
			opts.Standings = opts.Standings || presence.Options.Standings
			opts.Leaders = opts.Leaders || presence.Options.Leaders
			merged[presence.League] = opts
		}
	}

	var out []Presence
	for _, key := range p.leagues.Keys() {
		if opts, ok := merged[key]; ok {
			out = append(out, Presence{League: key, Options: opts})
		}
	}
	return out, nil
}
