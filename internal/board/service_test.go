package board

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fortuna/hardwood/internal/ingest/espn"
	"github.com/fortuna/hardwood/internal/league"
	"github.com/fortuna/hardwood/internal/platform/logging"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestService(f Fetcher, opts ...Option) *Service {
	base := []Option{
		WithClock(func() time.Time { return fixedNow }),
		WithLocation(time.UTC),
		WithLogger(logging.NewNop()),
	}
	return NewService(league.MustDefault(), f, append(base, opts...)...)
}

func scoreboardEvent(id, date, home, away, homeScore, awayScore string, completed bool) map[string]interface{} {
	return map[string]interface{}{
		"id":   id,
		"date": date,
		"status": map[string]interface{}{
			"type": map[string]interface{}{"completed": completed, "state": "pre"},
		},
		"competitions": []interface{}{
			map[string]interface{}{
				"competitors": []interface{}{
					map[string]interface{}{"homeAway": "home", "team": map[string]interface{}{"displayName": home}, "score": homeScore},
					map[string]interface{}{"homeAway": "away", "team": map[string]interface{}{"displayName": away}, "score": awayScore},
				},
			},
		},
	}
}

func summaryWithPoints(name, team string, value float64) map[string]interface{} {
	return map[string]interface{}{
		"leaders": []interface{}{
			map[string]interface{}{
				"name": "points",
				"leaders": []interface{}{
					map[string]interface{}{
						"athlete": map[string]interface{}{"displayName": name},
						"team":    map[string]interface{}{"abbreviation": team},
						"value":   value,
					},
				},
			},
		},
	}
}

func TestService_EventsRequestsWindowAndDedupes(t *testing.T) {
	t.Parallel()

	f := newFetcherMock(t)
	f.On("FetchScoreboard", mock.Anything, "basketball/nba", "20260226-20260304").
		Return(map[string]interface{}{
			"events": []interface{}{
				scoreboardEvent("1", "2026-02-27T00:00Z", "H", "A", "100", "90", true),
				scoreboardEvent("2", "2026-02-27T00:00Z", "H", "A", "100", "90", true),
				scoreboardEvent("3", "", "H", "A", "", "", false),
			},
		}, nil).
		Once()

	events, err := newTestService(f).Events(context.Background(), "NBA")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "A @ H", events[0].Matchup)
	assert.Equal(t, "90 - 100", events[0].Score)
	assert.Equal(t, "1", events[0].ID)
}

func TestService_EventsPropagatesTransportError(t *testing.T) {
	t.Parallel()

	f := newFetcherMock(t)
	f.On("FetchScoreboard", mock.Anything, "basketball/wnba", mock.Anything).
		Return(nil, &espn.TransportError{StatusCode: 503}).
		Once()

	_, err := newTestService(f).Events(context.Background(), "wnba")
	require.Error(t, err)
	assert.True(t, espn.IsTransport(err))
	assert.Contains(t, err.Error(), "HTTP 503")
}

func TestService_UnknownLeague(t *testing.T) {
	t.Parallel()

	svc := newTestService(newFetcherMock(t))

	_, err := svc.Events(context.Background(), "nhl")
	assert.True(t, errors.Is(err, ErrUnknownLeague))

	_, err = svc.Standings(context.Background(), "nhl")
	assert.True(t, errors.Is(err, ErrUnknownLeague))

	board, err := svc.Leaders(context.Background(), "nhl", nil)
	assert.True(t, errors.Is(err, ErrUnknownLeague))
	assert.Equal(t, espn.EmptyLeaderBoard(), board)

	snap := svc.Load(context.Background(), "nhl", AllRegions)
	assert.False(t, snap.OK)
	assert.Equal(t, "Could not load data (Unknown league).", snap.Status)
}

func TestService_LeadersWithNoCompletedEvents(t *testing.T) {
	t.Parallel()

	f := newFetcherMock(t)
	events := []espn.Event{{ID: "1", Timestamp: 1}, {ID: "2", Timestamp: 2}}

	board, err := newTestService(f).Leaders(context.Background(), "nba", events)
	require.NoError(t, err)
	assert.Equal(t, espn.EmptyLeaderBoard(), board)
	f.AssertNotCalled(t, "FetchGameSummary", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_LeadersSamplesNewestTenAndSkipsFailures(t *testing.T) {
	t.Parallel()

	var events []espn.Event
	for i := 1; i <= 12; i++ {
		events = append(events, espn.Event{ID: string(rune('a' + i - 1)), Timestamp: int64(i), Completed: true})
	}
	events = append(events, espn.Event{ID: "", Timestamp: 100, Completed: true})
	events = append(events, espn.Event{ID: "live", Timestamp: 99})

	f := newFetcherMock(t)
	obs := &observerMock{}
	obs.On("LeaderSummaryFailed", "nba").Once()

	// Newest ten are l..c; a and b fall outside the sample.
	f.On("FetchGameSummary", mock.Anything, "basketball/nba", "l").
		Return(summaryWithPoints("Star", "T", 40), nil).Once()
	for _, id := range []string{"k", "j", "i", "h", "g", "f", "e", "d"} {
		f.On("FetchGameSummary", mock.Anything, "basketball/nba", id).
			Return(summaryWithPoints("P-"+id, "T", 10), nil).Once()
	}
	f.On("FetchGameSummary", mock.Anything, "basketball/nba", "c").
		Return(nil, errors.New("boom")).Once()

	board, err := newTestService(f, WithObserver(obs)).Leaders(context.Background(), "nba", events)
	require.NoError(t, err)
	require.Len(t, board.Points, espn.TopLeaders)
	assert.Equal(t, espn.LeaderEntry{Name: "Star", Team: "T", Value: 40}, board.Points[0])
	f.AssertNumberOfCalls(t, "FetchGameSummary", MaxLeaderSample)
	obs.AssertExpectations(t)
}

func TestService_LeadersKeepsMaxAcrossGames(t *testing.T) {
	t.Parallel()

	events := []espn.Event{
		{ID: "1", Timestamp: 1, Completed: true},
		{ID: "2", Timestamp: 2, Completed: true},
	}
	f := newFetcherMock(t)
	f.On("FetchGameSummary", mock.Anything, "basketball/nba", "2").Return(summaryWithPoints("A", "X", 25), nil).Once()
	f.On("FetchGameSummary", mock.Anything, "basketball/nba", "1").Return(summaryWithPoints("A", "X", 31), nil).Once()

	board, err := newTestService(f).Leaders(context.Background(), "nba", events)
	require.NoError(t, err)
	assert.Equal(t, []espn.LeaderEntry{{Name: "A", Team: "X", Value: 31}}, board.Points)
}

func TestService_LeadersStopsOnCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := newFetcherMock(t)
	_, err := newTestService(f).Leaders(ctx, "nba", []espn.Event{{ID: "1", Completed: true}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestService_LoadSuccess(t *testing.T) {
	t.Parallel()

	f := newFetcherMock(t)
	f.On("FetchScoreboard", mock.Anything, "basketball/nba", mock.Anything).
		Return(map[string]interface{}{
			"events": []interface{}{
				scoreboardEvent("10", "2026-02-28T00:00Z", "Celtics", "Knicks", "101", "99", true),
				scoreboardEvent("11", "2026-03-02T00:00Z", "Heat", "Magic", "", "", false),
			},
		}, nil).Once()
	f.On("FetchStandings", mock.Anything, "basketball/nba").
		Return(map[string]interface{}{
			"entries": []interface{}{
				map[string]interface{}{
					"team":  map[string]interface{}{"displayName": "Celtics"},
					"stats": []interface{}{map[string]interface{}{"name": "wins", "value": 40.0}},
				},
			},
		}, nil).Once()
	f.On("FetchGameSummary", mock.Anything, "basketball/nba", "10").
		Return(summaryWithPoints("J. Tatum", "BOS", 33), nil).Once()

	obs := &observerMock{}
	obs.On("LoadFinished", "nba", true, mock.Anything).Once()

	snap := newTestService(f, WithObserver(obs)).Load(context.Background(), "nba", AllRegions)

	assert.True(t, snap.OK)
	assert.Equal(t, "nba", snap.League)
	assert.Equal(t, "NBA", snap.Label)
	assert.Equal(t, "Source: ESPN · Updated 3/1/2026, 12:00:00 PM", snap.Status)
	assert.Len(t, snap.Scoreboard, 2)
	require.NotNil(t, snap.Featured)
	assert.Equal(t, "11", snap.Featured.ID)
	require.Len(t, snap.Recent, 1)
	assert.Equal(t, "10", snap.Recent[0].ID)
	require.Len(t, snap.Upcoming, 1)
	assert.Equal(t, "11", snap.Upcoming[0].ID)

	assert.True(t, snap.StandingsAvailable)
	require.Len(t, snap.Standings, 1)
	assert.Equal(t, espn.KnownStat(40), snap.Standings[0].Wins)
	assert.False(t, snap.Standings[0].Losses.Known)

	assert.True(t, snap.LeadersAvailable)
	assert.Equal(t, []espn.LeaderEntry{{Name: "J. Tatum", Team: "BOS", Value: 33}}, snap.Leaders.Points)
	obs.AssertExpectations(t)
}

func TestService_LoadSkipsRegionsNotRequested(t *testing.T) {
	t.Parallel()

	f := newFetcherMock(t)
	f.On("FetchScoreboard", mock.Anything, "basketball/nba", mock.Anything).
		Return(map[string]interface{}{"events": []interface{}{}}, nil).Once()

	snap := newTestService(f, WithSourceLabel("Hoops")).Load(context.Background(), "nba", LoadOptions{})
	assert.True(t, snap.OK)
	assert.Equal(t, "Source: Hoops · Updated 3/1/2026, 12:00:00 PM", snap.Status)
	assert.Nil(t, snap.Featured)
	assert.Empty(t, snap.Scoreboard)
	assert.NotNil(t, snap.Standings)
	assert.False(t, snap.StandingsAvailable)
	assert.False(t, snap.LeadersAvailable)
	assert.Equal(t, espn.EmptyLeaderBoard(), snap.Leaders)
}

func TestService_LoadStandingsFailureOnlyMarksStandings(t *testing.T) {
	t.Parallel()

	f := newFetcherMock(t)
	f.On("FetchScoreboard", mock.Anything, "basketball/nba", mock.Anything).
		Return(map[string]interface{}{
			"events": []interface{}{scoreboardEvent("1", "2026-03-02T00:00Z", "H", "A", "", "", false)},
		}, nil).Once()
	f.On("FetchStandings", mock.Anything, "basketball/nba").
		Return(nil, &espn.TransportError{StatusCode: 502}).Once()

	snap := newTestService(f).Load(context.Background(), "nba", LoadOptions{Standings: true})
	assert.True(t, snap.OK)
	assert.Len(t, snap.Upcoming, 1)
	assert.False(t, snap.StandingsAvailable)
	assert.NotNil(t, snap.Standings)
}

func TestService_LoadEventsFailureFallsBack(t *testing.T) {
	t.Parallel()

	f := newFetcherMock(t)
	f.On("FetchScoreboard", mock.Anything, "basketball/nba", mock.Anything).
		Return(nil, &espn.TransportError{StatusCode: 500}).Once()

	obs := &observerMock{}
	obs.On("LoadFinished", "nba", false, mock.Anything).Once()

	snap := newTestService(f, WithObserver(obs)).Load(context.Background(), "nba", AllRegions)
	assert.False(t, snap.OK)
	assert.Equal(t, "Could not load data (HTTP 500).", snap.Status)
	assert.NotNil(t, snap.Events)
	assert.NotNil(t, snap.Scoreboard)
	assert.Nil(t, snap.Featured)
	assert.NotNil(t, snap.Recent)
	assert.NotNil(t, snap.Upcoming)
	assert.NotNil(t, snap.Standings)
	assert.False(t, snap.StandingsAvailable)
	assert.False(t, snap.LeadersAvailable)
	assert.Equal(t, espn.EmptyLeaderBoard(), snap.Leaders)
	f.AssertNotCalled(t, "FetchStandings", mock.Anything, mock.Anything)
	obs.AssertExpectations(t)
}

func TestFailureReason(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "HTTP 404", FailureReason(errors.Wrap(&espn.TransportError{StatusCode: 404}, "x")))
	assert.Equal(t, "Unknown league", FailureReason(errors.Wrap(ErrUnknownLeague, "x")))
	assert.Equal(t, "timeout", FailureReason(context.DeadlineExceeded))
	assert.Equal(t, "error", FailureReason(errors.New("other")))
}
