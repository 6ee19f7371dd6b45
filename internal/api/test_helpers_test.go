package api

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/Keyring-Network/keyring-gavryn/dc-explorer/internal/config"
	"github.com/Keyring-Network/keyring-gavryn/dc-explorer/internal/events"
	"github.com/Keyring-Network/keyring-gavryn/dc-explorer/internal/search"
)

type MockSearcher struct {
	mock.Mock
}

func (m *MockSearcher) ProviderName() string {
	return "mock"
}

func (m *MockSearcher) Run(ctx context.Context, query string) (search.Result, error) {
	args := m.Called(ctx, query)
	return args.Get(0).(search.Result), args.Error(1)
}

func (m *MockSearcher) RunWithEmitter(ctx context.Context, query string, em *events.Emitter) (search.Result, error) {
	args := m.Called(ctx, query, em)
	if fn, ok := args.Get(0).(func(*events.Emitter) search.Result); ok {
		return fn(em), args.Error(1)
	}
	return args.Get(0).(search.Result), args.Error(1)
}

type MockBroker struct {
	mock.Mock
}

func (m *MockBroker) Publish(event events.SearchEvent) {
	m.Called(event)
}

func (m *MockBroker) Subscribe(ctx context.Context, searchID string) <-chan events.SearchEvent {
	args := m.Called(ctx, searchID)
	if value := args.Get(0); value != nil {
		if ch, ok := value.(chan events.SearchEvent); ok {
			return ch
		}
		if ch, ok := value.(<-chan events.SearchEvent); ok {
			return ch
		}
	}
	return nil
}

func newTestServer(t *testing.T, searcher Searcher, broker Broker, cfg config.Config) *httptest.Server {
	t.Helper()
	server := NewServer(searcher, broker, cfg, nil)
	return httptest.NewServer(server.Router())
}
