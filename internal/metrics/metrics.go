package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeOK       = "ok"
	OutcomeTrusted  = "trusted"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
	OutcomeMiss     = "miss"
)

var (
	// Search pipeline metrics
	SearchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dc_explorer_searches_total",
			Help: "Total number of searches by provider and result",
		},
		[]string{"provider", "result"},
	)

	SearchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dc_explorer_search_duration_seconds",
			Help:    "End-to-end duration of a search including image resolution",
			Buckets: []float64{1, 2.5, 5, 10, 20, 30, 45, 60, 90, 120},
		},
	)

	AgentDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dc_explorer_agent_duration_seconds",
			Help:    "Duration of upstream agent calls in seconds",
			Buckets: []float64{1, 2.5, 5, 10, 20, 30, 45, 60, 90},
		},
		[]string{"provider"},
	)

	EventsAggregated = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dc_explorer_events",
			Help:    "Number of events per search before and after aggregation",
			Buckets: []float64{0, 1, 5, 10, 15, 20, 30, 50},
		},
		[]string{"stage"},
	)

	// Image resolution metrics
	ScrapesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dc_explorer_opengraph_scrapes_total",
			Help: "Total number of OpenGraph page scrapes by outcome",
		},
		[]string{"outcome"},
	)

	ProbesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dc_explorer_image_probes_total",
			Help: "Total number of image candidate checks by outcome",
		},
		[]string{"outcome"},
	)

	ResolveDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dc_explorer_image_resolve_duration_seconds",
			Help:    "Duration of resolving one event image in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	ImagesResolved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dc_explorer_images_resolved_total",
			Help: "Total number of events resolved, split by whether an image was found",
		},
		[]string{"found"},
	)

	// Stream metrics
	StreamSubscribers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "dc_explorer_stream_subscribers",
			Help: "Number of open search progress streams",
		},
	)
)
