package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Keyring-Network/keyring-gavryn/dc-explorer/internal/events"
	"github.com/Keyring-Network/keyring-gavryn/dc-explorer/internal/logging"
	"github.com/Keyring-Network/keyring-gavryn/dc-explorer/internal/search"
)

const heartbeatInterval = 15 * time.Second

type searchOutcome struct {
	result search.Result
	err    error
}

// streamAgentResponse runs a search and streams its progress as Server-Sent
// Events, ending with search.completed or search.failed.
func (s *Server) streamAgentResponse(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	setSSEHeaders(w)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	searchID := s.newSearchID()
	w.Header().Set("X-Search-ID", searchID)
	eventsChan := s.broker.Subscribe(ctx, searchID)

	done := make(chan searchOutcome, 1)
	go func() {
		result, err := s.searcher.RunWithEmitter(ctx, r.URL.Query().Get("q"), events.NewEmitter(s.broker, searchID))
		done <- searchOutcome{result: result, err: err}
	}()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	var lastSeq int64
	for {
		select {
		case event, ok := <-eventsChan:
			if !ok {
				return
			}
			lastSeq = event.Seq
			sendSSE(w, event)
			flusher.Flush()
			if event.Terminal() {
				return
			}
		case outcome := <-done:
			if drainUntilTerminal(w, eventsChan, &lastSeq) {
				flusher.Flush()
				return
			}
			s.logger.Warn("search stream missed terminal event", logging.SearchID(searchID))
			sendSSE(w, terminalEvent(searchID, lastSeq+1, outcome))
			flusher.Flush()
			return
		case <-heartbeat.C:
			fmt.Fprint(w, ": keep-alive\n\n")
			flusher.Flush()
		case <-ctx.Done():
			return
		}
	}
}

// streamSearchEvents attaches to a search that is already running. Events
// published before the subscription are not replayed.
func (s *Server) streamSearchEvents(w http.ResponseWriter, r *http.Request) {
	searchID := chi.URLParam(r, "id")
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	setSSEHeaders(w)

	ctx := r.Context()
	eventsChan := s.broker.Subscribe(ctx, searchID)
	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case event, ok := <-eventsChan:
			if !ok {
				return
			}
			sendSSE(w, event)
			flusher.Flush()
			if event.Terminal() {
				return
			}
		case <-heartbeat.C:
			fmt.Fprint(w, ": keep-alive\n\n")
			flusher.Flush()
		case <-ctx.Done():
			return
		}
	}
}

// drainUntilTerminal writes buffered events and reports whether the stream
// is finished.
func drainUntilTerminal(w http.ResponseWriter, ch <-chan events.SearchEvent, lastSeq *int64) bool {
	for {
		select {
		case event, ok := <-ch:
			if !ok {
				return true
			}
			*lastSeq = event.Seq
			sendSSE(w, event)
			if event.Terminal() {
				return true
			}
		default:
			return false
		}
	}
}

func setSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
}

func sendSSE(w http.ResponseWriter, event events.SearchEvent) {
	payload, _ := json.Marshal(event)
	fmt.Fprintf(w, "id: %s:%d\n", event.SearchID, event.Seq)
	fmt.Fprintf(w, "event: %s\n", event.Type)
	fmt.Fprintf(w, "data: %s\n\n", payload)
}

func terminalEvent(searchID string, seq int64, outcome searchOutcome) events.SearchEvent {
	event := events.SearchEvent{
		SearchID: searchID,
		Seq:      seq,
		Ts:       time.Now().UTC().Format(time.RFC3339Nano),
	}
	if outcome.err != nil {
		event.Type = events.TypeSearchFailed
		event.Payload = map[string]any{"error": outcome.err.Error()}
		return event
	}
	event.Type = events.TypeSearchCompleted
	event.Payload = map[string]any{
		"processed": outcome.result.Processed,
		"count":     outcome.result.Count,
		"result":    outcome.result.Payload,
	}
	return event
}
