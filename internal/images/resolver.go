// Package images picks a final, reachable image for each aggregated event.
//
// Candidates are gathered in priority order (the event page's social preview,
// the agent-supplied image, images carried over from merged duplicates, a
// curated keyword image, the category pool, the global default) and checked
// lazily; the first one that passes wins. Nothing here returns an error: a
// failing source simply contributes no candidate.
package images

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Keyring-Network/keyring-gavryn/dc-explorer/internal/aggregate"
	"github.com/Keyring-Network/keyring-gavryn/dc-explorer/internal/catalog"
	"github.com/Keyring-Network/keyring-gavryn/dc-explorer/internal/event"
	"github.com/Keyring-Network/keyring-gavryn/dc-explorer/internal/logging"
	"github.com/Keyring-Network/keyring-gavryn/dc-explorer/internal/metrics"
)

const (
	DefaultPageTimeout  = 4 * time.Second
	DefaultProbeTimeout = 2500 * time.Millisecond
	DefaultMaxHTMLBytes = 200_000
)

type Resolver struct {
	client       Doer
	catalog      *catalog.Catalog
	logger       *slog.Logger
	userAgent    string
	pageTimeout  time.Duration
	probeTimeout time.Duration
	maxHTMLBytes int64
	concurrency  int
}

type Option func(*Resolver)

func WithHTTPClient(client Doer) Option {
	return func(r *Resolver) {
		if client != nil {
			r.client = client
		}
	}
}

func WithCatalog(cat *catalog.Catalog) Option {
	return func(r *Resolver) {
		if cat != nil {
			r.catalog = cat
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = logging.OrDefault(logger)
	}
}

func WithUserAgent(userAgent string) Option {
	return func(r *Resolver) {
		if userAgent != "" {
			r.userAgent = userAgent
		}
	}
}

func WithTimeouts(page time.Duration, probe time.Duration) Option {
	return func(r *Resolver) {
		if page > 0 {
			r.pageTimeout = page
		}
		if probe > 0 {
			r.probeTimeout = probe
		}
	}
}

func WithMaxHTMLBytes(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.maxHTMLBytes = int64(n)
		}
	}
}

// WithConcurrency caps simultaneous resolutions in ResolveAll. Zero means one
// goroutine per event.
func WithConcurrency(n int) Option {
	return func(r *Resolver) {
		if n >= 0 {
			r.concurrency = n
		}
	}
}

func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		client:       NewHTTPClient(),
		catalog:      catalog.Default(),
		logger:       slog.Default(),
		userAgent:    DefaultUserAgent,
		pageTimeout:  DefaultPageTimeout,
		probeTimeout: DefaultProbeTimeout,
		maxHTMLBytes: DefaultMaxHTMLBytes,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Candidates lists image URLs for agg in priority order, without empties or
// duplicates. scraped is the page preview image, "" if none was found.
func (r *Resolver) Candidates(scraped string, agg aggregate.Aggregated, term string) []string {
	raw := make([]string, 0, len(agg.ImageCandidates)+10)
	raw = append(raw, scraped, event.Value(agg.Image))
	raw = append(raw, agg.ImageCandidates...)
	raw = append(raw, r.catalog.Curated(agg.Title, agg.Type, term))
	raw = append(raw, r.catalog.Fallbacks(agg.Type)...)
	raw = append(raw, r.catalog.DefaultImage())

	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, candidate := range raw {
		if candidate == "" {
			continue
		}
		if _, dup := seen[candidate]; dup {
			continue
		}
		seen[candidate] = struct{}{}
		out = append(out, candidate)
	}
	return out
}

// Resolve produces the final event for agg with image set to the first
// reachable candidate, or nil when none is.
func (r *Resolver) Resolve(ctx context.Context, agg aggregate.Aggregated, term string) event.Event {
	start := time.Now()
	scraped := r.scrapeOpenGraph(ctx, event.Value(agg.URL))

	out := agg.Event
	out.Image = nil
	for _, candidate := range r.Candidates(scraped, agg, term) {
		if ctx.Err() != nil {
			break
		}
		if r.reachable(ctx, candidate) {
			out.Image = event.String(candidate)
			break
		}
	}

	metrics.ResolveDuration.Observe(time.Since(start).Seconds())
	if out.Image != nil {
		metrics.ImagesResolved.WithLabelValues("true").Inc()
	} else {
		metrics.ImagesResolved.WithLabelValues("false").Inc()
	}
	return out
}

// ResolveAll resolves every event concurrently and returns them in input order.
func (r *Resolver) ResolveAll(ctx context.Context, aggs []aggregate.Aggregated, term string) []event.Event {
	return r.ResolveAllFunc(ctx, aggs, term, nil)
}

// ResolveAllFunc is ResolveAll with a callback invoked as each event finishes.
// onResolved may be called from several goroutines at once.
func (r *Resolver) ResolveAllFunc(ctx context.Context, aggs []aggregate.Aggregated, term string, onResolved func(int, event.Event)) []event.Event {
	out := make([]event.Event, len(aggs))
	g, gctx := errgroup.WithContext(ctx)
	if r.concurrency > 0 {
		g.SetLimit(r.concurrency)
	}
	for i := range aggs {
		i := i
		g.Go(func() error {
			out[i] = r.Resolve(gctx, aggs[i], term)
			if onResolved != nil {
				onResolved(i, out[i])
			}
			return nil
		})
	}
	_ = g.Wait()
	return out
}
