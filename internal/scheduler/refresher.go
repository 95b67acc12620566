package scheduler

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/fortuna/hardwood/internal/board"
	"github.com/fortuna/hardwood/internal/platform/logging"
)

// DefaultInterval matches the pages' light auto-refresh.
const DefaultInterval = 3 * time.Minute

// Loader builds a league snapshot. *board.Service satisfies it.
type Loader interface {
	Load(ctx context.Context, key string, opts board.LoadOptions) board.Snapshot
}

// Target is one league to keep fresh and the regions its pages show.
type Target struct {
	League  string
	Options board.LoadOptions
}

// Config holds refresher configuration
type Config struct {
	Interval time.Duration // Default: 3m
	Logger   *logging.Logger
}

// Status is a point-in-time view of the refresher.
type Status struct {
	Interval string    `json:"interval"`
	Leagues  []string  `json:"leagues"`
	Passes   int       `json:"passes"`
	LastPass time.Time `json:"last_pass"`
	InFlight int       `json:"in_flight"`
}

// Refresher loads every target league at start and then on a fixed
// interval. Loads within a pass run one league at a time; manual triggers
// run independently and publish to the same store, so the last one to
// finish wins.
type Refresher struct {
	loader   Loader
	store    *board.Store
	targets  []Target
	options  map[string]board.LoadOptions
	interval time.Duration
	logger   *logging.Logger

	// base bounds triggered loads; Stop cancels it.
	base   context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	stopped  bool
	passes   int
	lastPass time.Time
	inFlight int
}

// NewRefresher creates a refresher for targets.
func NewRefresher(loader Loader, store *board.Store, targets []Target, cfg Config) *Refresher {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}

	options := make(map[string]board.LoadOptions, len(targets))
	for _, t := range targets {
		options[strings.ToLower(t.League)] = t.Options
	}

	base, cancel := context.WithCancel(context.Background())
	return &Refresher{
		loader:   loader,
		store:    store,
		targets:  targets,
		options:  options,
		interval: cfg.Interval,
		logger:   cfg.Logger,
		base:     base,
		cancel:   cancel,
	}
}

// Start runs a pass immediately and then one per interval until ctx is done
// or Stop is called. It blocks.
func (r *Refresher) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-r.base.Done():
			cancel()
		case <-ctx.Done():
		}
	}()

	r.logger.Info("refresher started", "interval", r.interval.String(), "leagues", len(r.targets))

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.RefreshAll(ctx)
	for {
		select {
		case <-ctx.Done():
			r.logger.Info("refresher stopped")
			return
		case <-ticker.C:
			r.RefreshAll(ctx)
		}
	}
}

// RefreshAll loads every target sequentially in table order.
func (r *Refresher) RefreshAll(ctx context.Context) {
	for _, t := range r.targets {
		if ctx.Err() != nil {
			return
		}
		r.load(ctx, t.League, t.Options)
	}

	r.mu.Lock()
	r.passes++
	r.lastPass = time.Now()
	r.mu.Unlock()
}

// Trigger starts an independent load of key without cancelling any load
// already running. It reports false for leagues the store does not track.
func (r *Refresher) Trigger(key string) bool {
	key = strings.ToLower(key)
	if !r.store.Has(key) {
		return false
	}
	opts, ok := r.options[key]
	if !ok {
		opts = board.AllRegions
	}

	// Add happens under mu so it cannot race Stop's Wait.
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return false
	}
	r.wg.Add(1)
	r.mu.Unlock()

	go func() {
		defer r.wg.Done()
		r.load(r.base, key, opts)
	}()
	return true
}

func (r *Refresher) load(ctx context.Context, key string, opts board.LoadOptions) {
	r.mu.Lock()
	r.inFlight++
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		r.inFlight--
		r.mu.Unlock()
	}()

	snap := r.loader.Load(ctx, key, opts)
	if !r.store.Put(snap) {
		r.logger.Warn("snapshot for untracked league dropped", "league", key)
	}
}

// Stop cancels triggered loads and the Start loop, then waits for
// triggered loads to return.
func (r *Refresher) Stop() {
	r.mu.Lock()
	r.stopped = true
	r.mu.Unlock()

	r.cancel()
	r.wg.Wait()
}

// Status returns current refresher status
func (r *Refresher) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()

	leagues := make([]string, 0, len(r.targets))
	for _, t := range r.targets {
		leagues = append(leagues, t.League)
	}
	return Status{
		Interval: r.interval.String(),
		Leagues:  leagues,
		Passes:   r.passes,
		LastPass: r.lastPass,
		InFlight: r.inFlight,
	}
}
