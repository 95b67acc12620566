// Package config defines service configuration and its loading.
package config

import (
	"net"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/fortuna/hardwood/internal/league"
)

// Config contains process configuration.
type Config struct {
	// HTTPAddr is the listen address, e.g. ":8080".
	HTTPAddr string `koanf:"http_addr" validate:"required"`

	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" validate:"oneof=debug info warn error"`

	// ProxyURL is where the board fetches ESPN documents from. When unset it
	// points back at this process's /proxy/espn route on HTTPAddr.
	ProxyURL string `koanf:"proxy_url" validate:"required,url"`

	ESPNUpstream     string `koanf:"espn_upstream" validate:"required,url"`
	SportsDBUpstream string `koanf:"sportsdb_upstream" validate:"required,url"`

	// ProxyMaxAge and SportsDBMaxAge set Cache-Control and the Redis TTL.
	ProxyMaxAge    time.Duration `koanf:"proxy_max_age" validate:"gte=0"`
	SportsDBMaxAge time.Duration `koanf:"sportsdb_max_age" validate:"gte=0"`

	// RedisURL enables the proxy response cache when set.
	RedisURL string `koanf:"redis_url" validate:"omitempty,url"`

	RefreshInterval time.Duration `koanf:"refresh_interval" validate:"gte=1s"`

	// HTTPTimeout bounds each board fetch. Zero means no timeout.
	HTTPTimeout time.Duration `koanf:"http_timeout" validate:"gte=0"`

	DisplayTimezone string `koanf:"display_timezone" validate:"required,timezone"`

	// PagesDir holds the static pages that are filled and served.
	PagesDir string `koanf:"pages_dir" validate:"required"`

	SourceLabel string `koanf:"source_label" validate:"required"`

	// Leagues replaces the built-in league table when non-empty.
	Leagues []league.League `koanf:"leagues" validate:"omitempty,dive"`
}

// New returns the defaults.
func New() *Config {
	return &Config{
		HTTPAddr:         ":8080",
		LogLevel:         "info",
		ESPNUpstream:     "https://site.web.api.espn.com/apis/v2/sports",
		SportsDBUpstream: "https://www.thesportsdb.com/api/v1/json/1",
		ProxyMaxAge:      60 * time.Second,
		SportsDBMaxAge:   300 * time.Second,
		RefreshInterval:  3 * time.Minute,
		DisplayTimezone:  "America/New_York",
		PagesDir:         "web",
		SourceLabel:      "ESPN",
	}
}

// LocalProxyURL is the /proxy/espn route served on HTTPAddr. Wildcard hosts
// resolve to localhost.
func (c *Config) LocalProxyURL() string {
	host, port, err := net.SplitHostPort(c.HTTPAddr)
	if err != nil {
		return "http://" + c.HTTPAddr + "/proxy/espn"
	}
	switch host {
	case "", "0.0.0.0", "::":
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, port) + "/proxy/espn"
}

// Location resolves DisplayTimezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.DisplayTimezone)
	if err != nil {
		return nil, errors.Wrapf(err, "loading time zone %q", c.DisplayTimezone)
	}
	return loc, nil
}

// LeagueTable builds the league table, falling back to the defaults.
func (c *Config) LeagueTable() (*league.Table, error) {
	if len(c.Leagues) == 0 {
		return league.New(league.Defaults())
	}
	return league.New(c.Leagues)
}
