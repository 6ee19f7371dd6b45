// Package search runs the event search pipeline: ask the agent, merge
// duplicate reports, resolve an image for every event and rebuild the
// agent payload around the final list.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Keyring-Network/keyring-gavryn/dc-explorer/internal/aggregate"
	"github.com/Keyring-Network/keyring-gavryn/dc-explorer/internal/event"
	"github.com/Keyring-Network/keyring-gavryn/dc-explorer/internal/events"
	"github.com/Keyring-Network/keyring-gavryn/dc-explorer/internal/llm"
	"github.com/Keyring-Network/keyring-gavryn/dc-explorer/internal/logging"
	"github.com/Keyring-Network/keyring-gavryn/dc-explorer/internal/metrics"
	"github.com/Keyring-Network/keyring-gavryn/dc-explorer/internal/prompt"
)

const DefaultTimeout = 90 * time.Second

const (
	resultProcessed   = "processed"
	resultPassthrough = "passthrough"
	resultError       = "error"
)

var errNoEvents = errors.New("agent output has no events array")

// ImageResolver resolves aggregated events into final events, in input order.
type ImageResolver interface {
	ResolveAllFunc(ctx context.Context, aggs []aggregate.Aggregated, term string, onResolved func(int, event.Event)) []event.Event
}

type Result struct {
	Term string
	// Payload is the JSON body returned to the caller.
	Payload json.RawMessage
	// Processed is false when the agent response was passed through unchanged.
	Processed  bool
	RawCount   int
	GroupCount int
	Count      int
	WithImage  int
}

type Service struct {
	provider     llm.Provider
	resolver     ImageResolver
	logger       *slog.Logger
	timeout      time.Duration
	systemPrompt func() (string, string)
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logging.OrDefault(logger)
	}
}

// WithTimeout bounds the agent call. Image resolution is bounded by the
// caller's context only.
func WithTimeout(timeout time.Duration) Option {
	return func(s *Service) {
		if timeout > 0 {
			s.timeout = timeout
		}
	}
}

func WithSystemPrompt(fn func() (string, string)) Option {
	return func(s *Service) {
		if fn != nil {
			s.systemPrompt = fn
		}
	}
}

func NewService(provider llm.Provider, resolver ImageResolver, opts ...Option) *Service {
	s := &Service{
		provider:     provider,
		resolver:     resolver,
		logger:       slog.Default(),
		timeout:      DefaultTimeout,
		systemPrompt: prompt.System,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *Service) ProviderName() string {
	return s.provider.Name()
}

func (s *Service) Run(ctx context.Context, query string) (Result, error) {
	return s.RunWithEmitter(ctx, query, nil)
}

// RunWithEmitter is Run with progress events published through em. A nil
// emitter publishes nothing.
func (s *Service) RunWithEmitter(ctx context.Context, query string, em *events.Emitter) (Result, error) {
	start := time.Now()
	term := prompt.SanitizeTerm(query)
	logger := s.logger.With(logging.Query(term))
	if id := em.SearchID(); id != "" {
		logger = logger.With(logging.SearchID(id))
	}
	em.Emit(events.TypeSearchStarted, map[string]any{"query": query, "term": term, "provider": s.provider.Name()})

	resp, err := s.generate(ctx, term)
	if err != nil {
		metrics.SearchesTotal.WithLabelValues(s.provider.Name(), resultError).Inc()
		logger.Error("agent request failed", logging.Error(err))
		em.Emit(events.TypeSearchFailed, map[string]any{"error": err.Error()})
		return Result{Term: term}, err
	}

	result, err := s.process(ctx, term, resp, em)
	if errors.Is(err, errNoEvents) {
		logger.Warn("agent output is not an event list, returning raw response", logging.Error(err))
		result = Result{Term: term, Payload: passthrough(resp)}
	} else if err != nil {
		metrics.SearchesTotal.WithLabelValues(s.provider.Name(), resultError).Inc()
		logger.Error("process agent output", logging.Error(err))
		em.Emit(events.TypeSearchFailed, map[string]any{"error": err.Error()})
		return Result{Term: term}, err
	}

	label := resultPassthrough
	if result.Processed {
		label = resultProcessed
	}
	metrics.SearchesTotal.WithLabelValues(s.provider.Name(), label).Inc()
	metrics.SearchDuration.Observe(time.Since(start).Seconds())

	logger.Info("search complete",
		slog.Bool("processed", result.Processed),
		slog.Int("raw_count", result.RawCount),
		slog.Int("group_count", result.GroupCount),
		slog.Int("with_image", result.WithImage),
		logging.Duration(time.Since(start).Milliseconds()),
	)
	em.Emit(events.TypeSearchCompleted, map[string]any{
		"processed": result.Processed,
		"count":     result.Count,
		"result":    result.Payload,
	})
	return result, nil
}

func (s *Service) generate(ctx context.Context, term string) (llm.Response, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	system, _ := s.systemPrompt()
	start := time.Now()
	resp, err := s.provider.Generate(ctx, llm.Request{
		Messages: []llm.Message{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt.UserPrompt(term)},
		},
		Schema:    llm.EventListSchema(),
		WebSearch: true,
	})
	metrics.AgentDuration.WithLabelValues(s.provider.Name()).Observe(time.Since(start).Seconds())
	return resp, err
}

func (s *Service) process(ctx context.Context, term string, resp llm.Response, em *events.Emitter) (Result, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal([]byte(resp.Text), &top); err != nil {
		return Result{}, fmt.Errorf("%w: %v", errNoEvents, err)
	}
	raw, err := event.DecodeList(top["events"])
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", errNoEvents, err)
	}

	rawCount := countEvents(raw)
	grouped := aggregate.Aggregate(raw)
	metrics.EventsAggregated.WithLabelValues("raw").Observe(float64(rawCount))
	metrics.EventsAggregated.WithLabelValues("grouped").Observe(float64(len(grouped)))
	em.Emit(events.TypeSearchAggregated, map[string]any{"raw_count": rawCount, "count": len(grouped)})

	final := s.resolver.ResolveAllFunc(ctx, grouped, term, func(i int, ev event.Event) {
		em.Emit(events.TypeEventResolved, map[string]any{"index": i, "event": ev})
	})
	if err := ctx.Err(); err != nil {
		return Result{}, fmt.Errorf("resolve images: %w", err)
	}

	payload, err := buildPayload(top, final)
	if err != nil {
		return Result{}, err
	}
	withImage := 0
	for _, ev := range final {
		if ev.Image != nil {
			withImage++
		}
	}
	return Result{
		Term:       term,
		Payload:    payload,
		Processed:  true,
		RawCount:   rawCount,
		GroupCount: len(grouped),
		Count:      len(final),
		WithImage:  withImage,
	}, nil
}

// countEvents counts decoded records, skipping null and non-object entries.
func countEvents(raw []*event.Event) int {
	n := 0
	for _, ev := range raw {
		if ev != nil {
			n++
		}
	}
	return n
}

// buildPayload replaces events with final and sets meta.count, keeping every
// other top-level and meta key the agent returned.
func buildPayload(top map[string]json.RawMessage, final []event.Event) (json.RawMessage, error) {
	if final == nil {
		final = []event.Event{}
	}
	out := make(map[string]any, len(top)+1)
	for key, value := range top {
		out[key] = value
	}
	out["events"] = final

	meta := map[string]any{}
	var existing map[string]json.RawMessage
	if err := json.Unmarshal(top["meta"], &existing); err == nil {
		for key, value := range existing {
			meta[key] = value
		}
	}
	meta["count"] = len(final)
	out["meta"] = meta

	b, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	return b, nil
}

func passthrough(resp llm.Response) json.RawMessage {
	if raw := bytes.TrimSpace(resp.Raw); len(raw) > 0 && json.Valid(raw) {
		return raw
	}
	b, _ := json.Marshal(map[string]string{"output_text": resp.Text})
	return b
}
