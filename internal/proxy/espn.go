package proxy

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fortuna/hardwood/internal/metrics"
)

const (
	// ESPNUpstream is the ESPN site API root.
	ESPNUpstream = "https://site.web.api.espn.com/apis/v2/sports"

	// DefaultESPNMaxAge keeps pages fresh while absorbing bursts.
	DefaultESPNMaxAge = 60 * time.Second

	msgDisallowedPath = "Invalid or disallowed path."
)

// DefaultESPNPaths is the stock path allowlist.
var DefaultESPNPaths = []string{
	"football/nfl/scoreboard",

	"basketball/nba/scoreboard",
	"basketball/wnba/scoreboard",
	"basketball/mens-college-basketball/scoreboard",
	"basketball/womens-college-basketball/scoreboard",

	"basketball/nba/summary",
	"basketball/wnba/summary",
	"basketball/mens-college-basketball/summary",
	"basketball/womens-college-basketball/summary",

	"basketball/nba/standings",
	"basketball/wnba/standings",
	"basketball/mens-college-basketball/standings",
	"basketball/womens-college-basketball/standings",
}

// ESPNQueryKeys are the only query parameters forwarded upstream.
var ESPNQueryKeys = []string{
	"dates", "date", "limit", "groups", "lang", "region",
	"seasontype", "season", "sort", "page", "pagesize",
	"event",
}

// ESPN proxies GET ?path=<allowlisted>&<query> to the ESPN site API.
type ESPN struct {
	upstream
	baseURL   string
	paths     map[string]struct{}
	queryKeys map[string]struct{}
}

// NewESPN builds the ESPN proxy. An empty baseURL uses ESPNUpstream and a nil
// allowlist uses DefaultESPNPaths.
func NewESPN(baseURL string, allowedPaths []string, opts Options) *ESPN {
	if baseURL == "" {
		baseURL = ESPNUpstream
	}
	if allowedPaths == nil {
		allowedPaths = DefaultESPNPaths
	}

	h := &ESPN{
		upstream:  newUpstream(metrics.ProxyESPN, opts, DefaultESPNMaxAge),
		baseURL:   strings.TrimRight(baseURL, "/"),
		paths:     toSet(allowedPaths),
		queryKeys: toSet(ESPNQueryKeys),
	}
	h.userAgent = "Mozilla/5.0 (compatible; hardwood/1.0)"
	h.accept = "application/json,text/plain,*/*"
	return h
}

// Allowed reports whether path may be proxied.
func (h *ESPN) Allowed(path string) bool {
	_, ok := h.paths[path]
	return ok
}

type disallowedPathBody struct {
	Error string `json:"error"`
	Path  string `json:"path"`
}

func (h *ESPN) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	path := strings.TrimSpace(params.Get("path"))
	if path == "" || !h.Allowed(path) {
		h.recorder.ProxyRequest(h.name, metrics.OutcomeRejected)
		writeJSON(w, http.StatusBadRequest, contentTypeJSONCharset, disallowedPathBody{Error: msgDisallowedPath, Path: path})
		return
	}

	h.forward(w, r, h.target(path, params), contentTypeJSONCharset)
}

// target builds the upstream URL, keeping only allowlisted, non-empty query
// parameters.
func (h *ESPN) target(path string, params url.Values) string {
	qs := url.Values{}
	for k := range params {
		if k == "path" {
			continue
		}
		if _, ok := h.queryKeys[k]; !ok {
			continue
		}
		if v := strings.TrimSpace(params.Get(k)); v != "" {
			qs.Set(k, params.Get(k))
		}
	}

	base := h.baseURL + "/" + path
	if len(qs) == 0 {
		return base
	}
	return base + "?" + qs.Encode()
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
