package board

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/fortuna/hardwood/internal/ingest/espn"
	"github.com/fortuna/hardwood/internal/league"
	"github.com/fortuna/hardwood/internal/platform/logging"
)

const (
	// WindowPastDays and WindowNextDays bound the scoreboard date window.
	WindowPastDays = 3
	WindowNextDays = 3

	// MaxLeaderSample caps how many game summaries one leaders pass fetches.
	MaxLeaderSample = 10

	// DefaultSourceLabel names the data source in the status line.
	DefaultSourceLabel = "ESPN"

	statusDateLayout = "1/2/2006"
	statusTimeLayout = "3:04:05 PM"
)

// ErrUnknownLeague is returned for keys missing from the league table.
var ErrUnknownLeague = errors.New("unknown league")

// Fetcher is the opaque proxy fetch the service depends on. *espn.Client
// satisfies it.
type Fetcher interface {
	FetchScoreboard(ctx context.Context, sportPath, dates string) (map[string]interface{}, error)
	FetchGameSummary(ctx context.Context, sportPath, eventID string) (map[string]interface{}, error)
	FetchStandings(ctx context.Context, sportPath string) (map[string]interface{}, error)
}

// Observer receives load outcomes. The metrics package implements it.
type Observer interface {
	LoadFinished(league string, ok bool, took time.Duration)
	LeaderSummaryFailed(league string)
}

type nopObserver struct{}

func (nopObserver) LoadFinished(string, bool, time.Duration) {}
func (nopObserver) LeaderSummaryFailed(string)               {}

// LoadOptions says which optional regions a load must compute.
type LoadOptions struct {
	Standings bool
	Leaders   bool
}

// AllRegions computes every region.
var AllRegions = LoadOptions{Standings: true, Leaders: true}

// Service turns proxied ESPN documents into league snapshots.
type Service struct {
	leagues     *league.Table
	fetcher     Fetcher
	loc         *time.Location
	now         func() time.Time
	logger      *logging.Logger
	observer    Observer
	sourceLabel string
}

// Option configures a Service.
type Option func(*Service)

// WithLocation sets the zone used for the date window and display times.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func WithLogger(logger *logging.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithObserver(o Observer) Option {
	return func(s *Service) {
		if o != nil {
			s.observer = o
		}
	}
}

// WithSourceLabel overrides the "Source: ESPN" label.
func WithSourceLabel(label string) Option {
	return func(s *Service) {
		if label != "" {
			s.sourceLabel = label
		}
	}
}

// NewService creates a service over an immutable league table.
func NewService(leagues *league.Table, fetcher Fetcher, opts ...Option) *Service {
	s := &Service{
		leagues:     leagues,
		fetcher:     fetcher,
		loc:         time.Local,
		now:         time.Now,
		logger:      logging.Default(),
		observer:    nopObserver{},
		sourceLabel: DefaultSourceLabel,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Leagues returns the injected table.
func (s *Service) Leagues() *league.Table {
	return s.leagues
}

// Location returns the display time zone.
func (s *Service) Location() *time.Location {
	return s.loc
}

func (s *Service) lookup(key string) (league.League, error) {
	l, ok := s.leagues.Lookup(key)
	if !ok {
		return league.League{}, errors.Wrapf(ErrUnknownLeague, "%q", key)
	}
	return l, nil
}

// Events fetches the ±3 day scoreboard window for a league and returns its
// normalized, deduplicated events.
func (s *Service) Events(ctx context.Context, key string) ([]espn.Event, error) {
	l, err := s.lookup(key)
	if err != nil {
		return nil, err
	}

	dates := espn.DateRange(s.now().In(s.loc), WindowPastDays, WindowNextDays)
	doc, err := s.fetcher.FetchScoreboard(ctx, l.ESPNPath, dates)
	if err != nil {
		return nil, errors.Wrapf(err, "fetching %s scoreboard", l.Key)
	}
	return espn.ParseScoreboard(doc, s.loc), nil
}

// Leaders samples up to ten of the newest completed events and merges the
// leaders of their game summaries. A summary that fails to load is skipped.
func (s *Service) Leaders(ctx context.Context, key string, events []espn.Event) (espn.LeaderBoard, error) {
	l, err := s.lookup(key)
	if err != nil {
		return espn.EmptyLeaderBoard(), err
	}

	tally := espn.NewLeaderTally()
	for _, ev := range leaderSample(events) {
		if err := ctx.Err(); err != nil {
			return tally.Top(espn.TopLeaders), err
		}
		summary, err := s.fetcher.FetchGameSummary(ctx, l.ESPNPath, ev.ID)
		if err != nil {
			s.logger.Warn("game summary unavailable", "league", l.Key, "event", ev.ID, "error", err)
			s.observer.LeaderSummaryFailed(l.Key)
			continue
		}
		tally.Merge(espn.ExtractLeaders(summary))
	}
	return tally.Top(espn.TopLeaders), nil
}

// leaderSample returns completed events with an id, newest first.
func leaderSample(events []espn.Event) []espn.Event {
	sample := make([]espn.Event, 0, len(events))
	for _, ev := range events {
		if ev.Completed && ev.ID != "" {
			sample = append(sample, ev)
		}
	}
	sort.SliceStable(sample, func(i, j int) bool { return sample[i].Timestamp > sample[j].Timestamp })
	if len(sample) > MaxLeaderSample {
		sample = sample[:MaxLeaderSample]
	}
	return sample
}

// Standings fetches and extracts up to ten standings rows.
func (s *Service) Standings(ctx context.Context, key string) ([]espn.StandingsRow, error) {
	l, err := s.lookup(key)
	if err != nil {
		return []espn.StandingsRow{}, err
	}
	doc, err := s.fetcher.FetchStandings(ctx, l.ESPNPath)
	if err != nil {
		return []espn.StandingsRow{}, errors.Wrapf(err, "fetching %s standings", l.Key)
	}
	return espn.ExtractStandings(doc, espn.DefaultStandingsLimit), nil
}

// Load builds a full snapshot for one league. It never fails: an events
// failure yields a snapshot whose regions all carry their empty fallbacks.
func (s *Service) Load(ctx context.Context, key string, opts LoadOptions) Snapshot {
	start := time.Now()

	events, err := s.Events(ctx, key)
	if err != nil {
		s.logger.Warn("league load failed", "league", key, "error", err)
		snap := failedSnapshot(s.resolve(key), err, s.now())
		s.observer.LoadFinished(snap.League, false, time.Since(start))
		return snap
	}

	l := s.resolve(key)
	snap := newSnapshot(l, events)

	if opts.Standings {
		rows, err := s.Standings(ctx, l.Key)
		if err != nil {
			s.logger.Warn("standings unavailable", "league", l.Key, "error", err)
		}
		snap.Standings = rows
		snap.StandingsAvailable = err == nil && len(rows) > 0
	}

	if opts.Leaders {
		leaders, err := s.Leaders(ctx, l.Key, events)
		if err != nil {
			s.logger.Warn("leaders unavailable", "league", l.Key, "error", err)
		} else {
			snap.Leaders = leaders
			snap.LeadersAvailable = true
		}
	}

	now := s.now().In(s.loc)
	snap.OK = true
	snap.UpdatedAt = now
	snap.Status = fmt.Sprintf("Source: %s · Updated %s, %s", s.sourceLabel, now.Format(statusDateLayout), now.Format(statusTimeLayout))

	s.logger.Info("league loaded", "league", l.Key, "events", len(events), "took", time.Since(start))
	s.observer.LoadFinished(l.Key, true, time.Since(start))
	return snap
}

// resolve returns the table entry for key, or a bare league carrying the key
// when it is unknown.
func (s *Service) resolve(key string) league.League {
	if l, ok := s.leagues.Lookup(key); ok {
		return l
	}
	return league.League{Key: key}
}

// FailureReason is the parenthesized part of the failed status line.
func FailureReason(err error) string {
	var te *espn.TransportError
	switch {
	case errors.As(err, &te):
		return te.Error()
	case errors.Is(err, ErrUnknownLeague):
		return "Unknown league"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "error"
	}
}
