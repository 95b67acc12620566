package league

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// League maps a page key to an ESPN sport path and a display label.
type League struct {
	Key      string `json:"key" koanf:"key" validate:"required"`
	ESPNPath string `json:"espn_path" koanf:"espn_path" validate:"required"`
	Label    string `json:"label" koanf:"label"`
}

// Path joins the ESPN sport path with an endpoint such as "scoreboard".
func (l League) Path(endpoint string) string {
	return l.ESPNPath + "/" + endpoint
}

// Table is an ordered, read-only league lookup. Build it once with New.
type Table struct {
	order []League
	byKey map[string]League
}

// Defaults mirrors the pages shipped with the site. The March page is
// men's college coverage under its own key.
func Defaults() []League {
	return []League{
		{Key: "nba", ESPNPath: "basketball/nba", Label: "NBA"},
		{Key: "wnba", ESPNPath: "basketball/wnba", Label: "WNBA"},
		{Key: "ncaa", ESPNPath: "basketball/mens-college-basketball", Label: "NCAA Men"},
		{Key: "ncaaw", ESPNPath: "basketball/womens-college-basketball", Label: "NCAA Women"},
		{Key: "mm", ESPNPath: "basketball/mens-college-basketball", Label: "March"},
	}
}

// New copies leagues into an immutable table. Keys are lower-cased and must be unique.
func New(leagues []League) (*Table, error) {
	if len(leagues) == 0 {
		return nil, errors.New("league table must not be empty")
	}

	t := &Table{
		order: make([]League, 0, len(leagues)),
		byKey: make(map[string]League, len(leagues)),
	}
	for _, l := range leagues {
		l.Key = strings.ToLower(strings.TrimSpace(l.Key))
		l.ESPNPath = strings.Trim(strings.TrimSpace(l.ESPNPath), "/")
		if l.Key == "" || l.ESPNPath == "" {
			return nil, errors.Newf("league %q: key and espn path are required", l.Key)
		}
		if l.Label == "" {
			l.Label = strings.ToUpper(l.Key)
		}
		if _, dup := t.byKey[l.Key]; dup {
			return nil, errors.Newf("duplicate league key %q", l.Key)
		}
		t.order = append(t.order, l)
		t.byKey[l.Key] = l
	}
	return t, nil
}

// MustDefault builds the default table.
func MustDefault() *Table {
	t, err := New(Defaults())
	if err != nil {
		panic(err)
	}
	return t
}

// Lookup returns the league for key.
func (t *Table) Lookup(key string) (League, bool) {
	l, ok := t.byKey[strings.ToLower(key)]
	return l, ok
}

// All returns the leagues in table order. The slice is a copy.
func (t *Table) All() []League {
	out := make([]League, len(t.order))
	copy(out, t.order)
	return out
}

// Keys returns league keys in table order.
func (t *Table) Keys() []string {
	keys := make([]string, 0, len(t.order))
	for _, l := range t.order {
		keys = append(keys, l.Key)
	}
	return keys
}

// EndpointPaths lists every "{sport}/{league}/{endpoint}" path the table can
// request, deduplicated, in table order.
func (t *Table) EndpointPaths(endpoints ...string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, l := range t.order {
		for _, ep := range endpoints {
			p := l.Path(ep)
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			out = append(out, p)
		}
	}
	return out
}
