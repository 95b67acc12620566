// Package proxy forwards allowlisted requests to public sports APIs so pages
// never call them cross-origin.
package proxy

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"

	"github.com/fortuna/hardwood/internal/cache"
	"github.com/fortuna/hardwood/internal/metrics"
	"github.com/fortuna/hardwood/internal/platform/logging"
)

const (
	contentTypeJSON        = "application/json"
	contentTypeJSONCharset = "application/json; charset=utf-8"
	maxUpstreamBody        = 16 << 20
)

// ResponseCache stores upstream replies. *cache.RedisCache satisfies it.
type ResponseCache interface {
	Get(ctx context.Context, key string) (cache.Response, bool, error)
	Set(ctx context.Context, key string, resp cache.Response, ttl time.Duration) error
}

// Recorder receives proxy metrics. *metrics.Manager satisfies it.
type Recorder interface {
	ProxyRequest(proxy, outcome string)
	UpstreamLatency(proxy string, d time.Duration)
	CacheError(proxy string)
}

type nopRecorder struct{}

func (nopRecorder) ProxyRequest(string, string)            {}
func (nopRecorder) UpstreamLatency(string, time.Duration) {}
func (nopRecorder) CacheError(string)                     {}

// Options are shared by both proxies. Zero values pick defaults.
type Options struct {
	HTTPClient *http.Client
	Cache      ResponseCache
	Recorder   Recorder
	Logger     *logging.Logger
	MaxAge     time.Duration
}

// upstream forwards one resolved URL and copies the reply back verbatim.
type upstream struct {
	name      string
	client    *http.Client
	cache     ResponseCache
	recorder  Recorder
	logger    *logging.Logger
	maxAge    time.Duration
	userAgent string
	accept    string
}

func newUpstream(name string, opts Options, defaultMaxAge time.Duration) upstream {
	u := upstream{
		name:     name,
		client:   opts.HTTPClient,
		cache:    opts.Cache,
		recorder: opts.Recorder,
		logger:   opts.Logger,
		maxAge:   opts.MaxAge,
	}
	if u.client == nil {
		u.client = &http.Client{Timeout: 15 * time.Second}
	}
	if u.recorder == nil {
		u.recorder = nopRecorder{}
	}
	if u.logger == nil {
		u.logger = logging.Default()
	}
	if u.maxAge <= 0 {
		u.maxAge = defaultMaxAge
	}
	return u
}

func (u *upstream) cacheControl() string {
	return "public, max-age=" + strconv.Itoa(int(u.maxAge/time.Second))
}

// forward serves target from the cache when possible, else fetches it.
// Transport failures become a 500 with {"error": message}.
func (u *upstream) forward(w http.ResponseWriter, r *http.Request, target, errorContentType string) {
	ctx := r.Context()
	key := u.name + ":" + target

	if u.cache != nil {
		cached, ok, err := u.cache.Get(ctx, key)
		if err != nil {
			u.recorder.CacheError(u.name)
			u.logger.Warn("proxy cache read failed", "proxy", u.name, "error", err)
		}
		if ok {
			u.recorder.ProxyRequest(u.name, metrics.OutcomeCached)
			u.write(w, cached, "HIT")
			return
		}
	}

	start := time.Now()
	resp, err := u.fetch(ctx, target)
	u.recorder.UpstreamLatency(u.name, time.Since(start))
	if err != nil {
		u.recorder.ProxyRequest(u.name, metrics.OutcomeUpstream)
		u.logger.Warn("proxy upstream failed", "proxy", u.name, "target", target, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorContentType, errorBody{Error: err.Error()})
		return
	}

	if u.cache != nil && resp.Status >= 200 && resp.Status <= 299 {
		if err := u.cache.Set(ctx, key, resp, u.maxAge); err != nil {
			u.recorder.CacheError(u.name)
			u.logger.Warn("proxy cache write failed", "proxy", u.name, "error", err)
		}
	}

	u.recorder.ProxyRequest(u.name, metrics.OutcomeOK)
	u.write(w, resp, "MISS")
}

func (u *upstream) fetch(ctx context.Context, target string) (cache.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return cache.Response{}, errors.Wrap(err, "creating upstream request")
	}
	req.Header.Set("User-Agent", u.userAgent)
	req.Header.Set("Accept", u.accept)

	resp, err := u.client.Do(req)
	if err != nil {
		return cache.Response{}, errors.Wrap(err, "upstream request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxUpstreamBody))
	if err != nil {
		return cache.Response{}, errors.Wrap(err, "reading upstream body")
	}
	return cache.Response{Status: resp.StatusCode, Body: body}, nil
}

func (u *upstream) write(w http.ResponseWriter, resp cache.Response, cacheState string) {
	w.Header().Set("Content-Type", contentTypeJSONCharset)
	w.Header().Set("Cache-Control", u.cacheControl())
	w.Header().Set("X-Cache", cacheState)
	w.WriteHeader(resp.Status)
	_, _ = w.Write(resp.Body)
}

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, contentType string, payload interface{}) {
	body, err := sonic.Marshal(payload)
	if err != nil {
		status = http.StatusInternalServerError
		body = []byte(`{"error":"encoding response"}`)
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
