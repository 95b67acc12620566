package board

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

type fetcherMock struct {
	mock.Mock
}

func newFetcherMock(t interface {
	mock.TestingT
	Cleanup(func())
}) *fetcherMock {
	m := &fetcherMock{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *fetcherMock) FetchScoreboard(ctx context.Context, sportPath, dates string) (map[string]interface{}, error) {
	args := m.Called(ctx, sportPath, dates)
	doc, _ := args.Get(0).(map[string]interface{})
	return doc, args.Error(1)
}

func (m *fetcherMock) FetchGameSummary(ctx context.Context, sportPath, eventID string) (map[string]interface{}, error) {
	args := m.Called(ctx, sportPath, eventID)
	doc, _ := args.Get(0).(map[string]interface{})
	return doc, args.Error(1)
}

func (m *fetcherMock) FetchStandings(ctx context.Context, sportPath string) (map[string]interface{}, error) {
	args := m.Called(ctx, sportPath)
	doc, _ := args.Get(0).(map[string]interface{})
	return doc, args.Error(1)
}

type observerMock struct {
	mock.Mock
}

func (m *observerMock) LoadFinished(league string, ok bool, took time.Duration) {
	m.Called(league, ok, took)
}

func (m *observerMock) LeaderSummaryFailed(league string) {
	m.Called(league)
}
