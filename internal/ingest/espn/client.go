package espn

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
)

const (
	// DefaultProxyURL is the allowlisted passthrough served by cmd/hardwood.
	DefaultProxyURL = "http://localhost:8080/proxy/espn"

	// UpstreamBaseURL is what the proxy forwards to.
	UpstreamBaseURL = "https://site.web.api.espn.com/apis/v2/sports"

	maxErrorBody = 512
)

// ErrTransport marks every failure to get a successful response from the proxy.
var ErrTransport = errors.New("espn transport failure")

// TransportError is a non-success HTTP status from the proxy.
type TransportError struct {
	StatusCode int
	Body       string
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

// Is lets errors.Is(err, ErrTransport) match status failures.
func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

// IsTransport reports whether err came from the network or a bad status.
func IsTransport(err error) bool {
	return errors.Is(err, ErrTransport)
}

// Client fetches ESPN documents through the proxy. It never talks to ESPN
// directly; the proxy owns the path allowlist.
type Client struct {
	httpClient *http.Client
	proxyURL   string
}

// New creates a client for the proxy at proxyURL. A zero timeout leaves the
// request bounded only by ctx.
func New(proxyURL string, timeout time.Duration) *Client {
	if proxyURL == "" {
		proxyURL = DefaultProxyURL
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		proxyURL:   proxyURL,
	}
}

// newWithHTTPClient is New with a caller-supplied transport.
func newWithHTTPClient(proxyURL string, httpClient *http.Client) *Client {
	c := New(proxyURL, 0)
	if httpClient != nil {
		c.httpClient = httpClient
	}
	return c
}

// FetchScoreboard fetches the aggregated scoreboard for a YYYYMMDD-YYYYMMDD window.
func (c *Client) FetchScoreboard(ctx context.Context, sportPath, dates string) (map[string]interface{}, error) {
	q := url.Values{}
	if dates != "" {
		q.Set("dates", dates)
	}
	return c.Fetch(ctx, sportPath+"/scoreboard", q)
}

// FetchGameSummary fetches one event's summary (box score, leaders).
func (c *Client) FetchGameSummary(ctx context.Context, sportPath, eventID string) (map[string]interface{}, error) {
	return c.Fetch(ctx, sportPath+"/summary", url.Values{"event": {eventID}})
}

// FetchStandings fetches the league standings document.
func (c *Client) FetchStandings(ctx context.Context, sportPath string) (map[string]interface{}, error) {
	return c.Fetch(ctx, sportPath+"/standings", nil)
}

// Fetch requests path through the proxy and decodes the JSON body. A body
// that is valid JSON but not an object decodes to an empty map.
func (c *Client) Fetch(ctx context.Context, path string, query url.Values) (map[string]interface{}, error) {
	q := url.Values{}
	for k, v := range query {
		q[k] = v
	}
	q.Set("path", path)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.proxyURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "creating request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "fetching %s", path), ErrTransport)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &TransportError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "reading %s", path), ErrTransport)
	}

	var doc interface{}
	if err := sonic.Unmarshal(raw, &doc); err != nil {
		return nil, errors.Wrapf(err, "decoding %s", path)
	}
	return asMap(doc), nil
}
