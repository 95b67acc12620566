package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/fortuna/hardwood/internal/board"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type loadCall struct {
	key  string
	opts board.LoadOptions
}

type fakeLoader struct {
	mu    sync.Mutex
	calls []loadCall
	block chan struct{}
}

func (f *fakeLoader) Load(ctx context.Context, key string, opts board.LoadOptions) board.Snapshot {
	f.mu.Lock()
	f.calls = append(f.calls, loadCall{key: key, opts: opts})
	block := f.block
	f.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
		}
	}
	return board.Snapshot{League: key, Label: key, OK: ctx.Err() == nil}
}

func (f *fakeLoader) snapshot() []loadCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]loadCall, len(f.calls))
	copy(out, f.calls)
	return out
}

func TestRefreshAll_LoadsTargetsInOrder(t *testing.T) {
	t.Parallel()

	loader := &fakeLoader{}
	store := board.NewStore([]string{"nba", "wnba", "ncaa"})
	targets := []Target{
		{League: "wnba", Options: board.LoadOptions{Standings: true}},
		{League: "nba", Options: board.AllRegions},
	}
	r := NewRefresher(loader, store, targets, Config{Interval: time.Hour})

	r.RefreshAll(context.Background())

	assert.Equal(t, []loadCall{
		{key: "wnba", opts: board.LoadOptions{Standings: true}},
		{key: "nba", opts: board.AllRegions},
	}, loader.snapshot())
	assert.True(t, store.Has("nba"))
	snap, ok := store.Get("wnba")
	require.True(t, ok)
	assert.True(t, snap.OK)
	_, ok = store.Get("ncaa")
	assert.False(t, ok)

	status := r.Status()
	assert.Equal(t, 1, status.Passes)
	assert.Equal(t, []string{"wnba", "nba"}, status.Leagues)
	assert.Equal(t, "1h0m0s", status.Interval)
}

func TestRefreshAll_StopsWhenCancelled(t *testing.T) {
	t.Parallel()

	loader := &fakeLoader{}
	r := NewRefresher(loader, board.NewStore([]string{"nba"}), []Target{{League: "nba"}}, Config{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r.RefreshAll(ctx)

	assert.Empty(t, loader.snapshot())
}

func TestTrigger_UsesTargetOptionsOrAllRegions(t *testing.T) {
	t.Parallel()

	loader := &fakeLoader{}
	store := board.NewStore([]string{"nba", "wnba"})
	r := NewRefresher(loader, store, []Target{{League: "nba", Options: board.LoadOptions{Leaders: true}}}, Config{})

	require.True(t, r.Trigger("NBA"))
	require.True(t, r.Trigger("wnba"))
	assert.False(t, r.Trigger("nfl"))
	r.Stop()

	assert.ElementsMatch(t, []loadCall{
		{key: "nba", opts: board.LoadOptions{Leaders: true}},
		{key: "wnba", opts: board.AllRegions},
	}, loader.snapshot())
	assert.True(t, store.Has("nba"))
	assert.True(t, store.Has("wnba"))
}

func TestTrigger_DoesNotCancelLoadInFlight(t *testing.T) {
	t.Parallel()

	loader := &fakeLoader{block: make(chan struct{})}
	store := board.NewStore([]string{"nba"})
	r := NewRefresher(loader, store, nil, Config{})

	require.True(t, r.Trigger("nba"))
	require.True(t, r.Trigger("nba"))
	assert.Eventually(t, func() bool { return len(loader.snapshot()) == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 2, r.Status().InFlight)

	close(loader.block)
	assert.Eventually(t, func() bool { return r.Status().InFlight == 0 }, time.Second, 5*time.Millisecond)
	r.Stop()

	snap, ok := store.Get("nba")
	require.True(t, ok)
	assert.True(t, snap.OK)
}

func TestStop_RejectsLaterTriggers(t *testing.T) {
	t.Parallel()

	r := NewRefresher(&fakeLoader{}, board.NewStore([]string{"nba"}), nil, Config{})
	r.Stop()
	assert.False(t, r.Trigger("nba"))
}

func TestStart_RunsInitialPassAndStops(t *testing.T) {
	t.Parallel()

	loader := &fakeLoader{}
	store := board.NewStore([]string{"nba"})
	r := NewRefresher(loader, store, []Target{{League: "nba", Options: board.AllRegions}}, Config{Interval: 10 * time.Millisecond})

	done := make(chan struct{})
	go func() {
		r.Start(context.Background())
		close(done)
	}()

	assert.Eventually(t, func() bool { return r.Status().Passes >= 2 }, 2*time.Second, 5*time.Millisecond)
	r.Stop()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("refresher did not stop")
	}
	assert.True(t, store.Has("nba"))
}

func TestTrigger_ConcurrentWithStop(t *testing.T) {
	t.Parallel()

	loader := &fakeLoader{}
	store := board.NewStore([]string{"nba"})
	r := NewRefresher(loader, store, nil, Config{})

	var wg sync.WaitGroup
	accepted := make(chan bool, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			accepted <- r.Trigger("nba")
		}()
	}
	r.Stop()
	wg.Wait()
	close(accepted)

	started := 0
	for ok := range accepted {
		if ok {
			started++
		}
	}
	assert.False(t, r.Trigger("nba"))
	assert.Equal(t, started, len(loader.snapshot()))
}
