package events

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Keyring-Network/keyring-gavryn/dc-explorer/internal/metrics"
)

const (
	TypeSearchStarted    = "search.started"
	TypeSearchAggregated = "search.aggregated"
	TypeEventResolved    = "event.resolved"
	TypeSearchCompleted  = "search.completed"
	TypeSearchFailed     = "search.failed"
)

const subscriberBuffer = 64

type SearchEvent struct {
	SearchID string         `json:"search_id"`
	Seq      int64          `json:"seq"`
	Type     string         `json:"type"`
	Ts       string         `json:"ts"`
	Payload  map[string]any `json:"payload"`
}

// Terminal reports whether no further events follow this one for its search.
func (e SearchEvent) Terminal() bool {
	switch NormalizeType(e.Type) {
	case TypeSearchCompleted, TypeSearchFailed:
		return true
	}
	return false
}

type Publisher interface {
	Publish(event SearchEvent)
}

type Broker struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan SearchEvent]struct{}
}

func NormalizeType(eventType string) string {
	return strings.TrimSpace(strings.ToLower(eventType))
}

func NewBroker() *Broker {
	return &Broker{
		subscribers: map[string]map[chan SearchEvent]struct{}{},
	}
}

func (b *Broker) Subscribe(ctx context.Context, searchID string) <-chan SearchEvent {
	ch := make(chan SearchEvent, subscriberBuffer)

	b.mu.Lock()
	if b.subscribers[searchID] == nil {
		b.subscribers[searchID] = map[chan SearchEvent]struct{}{}
	}
	b.subscribers[searchID][ch] = struct{}{}
	b.mu.Unlock()
	metrics.StreamSubscribers.Inc()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		if b.subscribers[searchID] != nil {
			delete(b.subscribers[searchID], ch)
			if len(b.subscribers[searchID]) == 0 {
				delete(b.subscribers, searchID)
			}
		}
		close(ch)
		b.mu.Unlock()
		metrics.StreamSubscribers.Dec()
	}()

	return ch
}

// Publish fans event out to the search's subscribers. A subscriber whose
// buffer is full misses the event.
func (b *Broker) Publish(event SearchEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for ch := range b.subscribers[event.SearchID] {
		select {
		case ch <- event:
		default:
		}
	}
}

// Emitter stamps events for a single search with a monotonically increasing
// sequence number and a timestamp before publishing them.
type Emitter struct {
	publisher Publisher
	searchID  string
	seq       atomic.Int64
	now       func() time.Time
}

func NewEmitter(publisher Publisher, searchID string) *Emitter {
	return &Emitter{publisher: publisher, searchID: searchID, now: time.Now}
}

func (e *Emitter) SearchID() string {
	if e == nil {
		return ""
	}
	return e.searchID
}

// Emit is a no-op on a nil Emitter.
func (e *Emitter) Emit(eventType string, payload map[string]any) SearchEvent {
	if e == nil {
		return SearchEvent{}
	}
	if payload == nil {
		payload = map[string]any{}
	}
	event := SearchEvent{
		SearchID: e.searchID,
		Seq:      e.seq.Add(1),
		Type:     NormalizeType(eventType),
		Ts:       e.now().UTC().Format(time.RFC3339Nano),
		Payload:  payload,
	}
	if e.publisher != nil {
		e.publisher.Publish(event)
	}
	return event
}
