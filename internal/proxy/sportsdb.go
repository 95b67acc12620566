package proxy

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fortuna/hardwood/internal/metrics"
)

const (
	// SportsDBUpstream is TheSportsDB v1 root with the free public key "1".
	SportsDBUpstream = "https://www.thesportsdb.com/api/v1/json/1"

	DefaultSportsDBMaxAge = 300 * time.Second
)

// SportsDBEndpoints are the lookups the proxy forwards.
var SportsDBEndpoints = []string{
	"eventsnextleague",
	"eventsround",
	"eventspastleague",
	"lookupleague",
}

// SportsDB proxies GET ?endpoint=<allowlisted>&id=<id> to TheSportsDB.
type SportsDB struct {
	upstream
	baseURL   string
	endpoints map[string]struct{}
}

func NewSportsDB(baseURL string, opts Options) *SportsDB {
	if baseURL == "" {
		baseURL = SportsDBUpstream
	}
	h := &SportsDB{
		upstream:  newUpstream(metrics.ProxySportsDB, opts, DefaultSportsDBMaxAge),
		baseURL:   strings.TrimRight(baseURL, "/"),
		endpoints: toSet(SportsDBEndpoints),
	}
	h.userAgent = "hardwood/sportsdb"
	h.accept = contentTypeJSON
	return h
}

type badRequestBody struct {
	Error    string `json:"error"`
	Endpoint string `json:"endpoint"`
	ID       string `json:"id"`
}

func (h *SportsDB) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	endpoint := strings.TrimSpace(params.Get("endpoint"))
	id := strings.TrimSpace(params.Get("id"))

	if _, ok := h.endpoints[endpoint]; !ok || id == "" {
		h.recorder.ProxyRequest(h.name, metrics.OutcomeRejected)
		writeJSON(w, http.StatusBadRequest, contentTypeJSON, badRequestBody{Error: "Bad request", Endpoint: endpoint, ID: id})
		return
	}

	target := h.baseURL + "/" + endpoint + ".php?id=" + url.QueryEscape(id)
	h.forward(w, r, target, contentTypeJSON)
}
