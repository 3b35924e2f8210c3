// Package metrics provides centralized Prometheus metrics for the generation
// pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Pipeline metrics track the acquisition and generation pipeline.
var (
	// GenerationRunsTotal counts finished generation runs by terminal status.
	GenerationRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "generation_runs_total",
			Help: "Total number of finished generation runs by status",
		},
		[]string{"status"},
	)

	// GenerationDuration measures end-to-end duration of a generation run.
	GenerationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "generation_duration_seconds",
			Help:    "Duration of a single generation run in seconds",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		},
	)

	// ArticlesCreatedTotal counts articles published by the pipeline.
	ArticlesCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "articles_created_total",
			Help: "Total number of articles created by the pipeline",
		},
	)

	// FeedQueryErrorsTotal counts failed feed endpoint queries by feed name.
	FeedQueryErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_query_errors_total",
			Help: "Total number of failed feed endpoint queries",
		},
		[]string{"feed"},
	)

	// CandidatesDiscovered measures candidates returned per discovery pass.
	CandidatesDiscovered = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "candidates_discovered",
			Help:    "Number of candidate URLs returned per discovery pass",
			Buckets: prometheus.LinearBuckets(0, 5, 10),
		},
	)

	// ScrapeAttemptsTotal counts page scrape attempts by outcome.
	ScrapeAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scrape_attempts_total",
			Help: "Total number of page scrape attempts by outcome",
		},
		[]string{"outcome"},
	)

	// RewriteParseRecoveriesTotal counts which parser strategy accepted the
	// backend response. Strategy "direct" means no recovery was needed.
	RewriteParseRecoveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rewrite_parse_recoveries_total",
			Help: "Rewrite responses accepted per parser strategy",
		},
		[]string{"strategy"},
	)

	// RewriteDuration measures rewrite backend call duration.
	RewriteDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "rewrite_duration_seconds",
			Help:    "Duration of rewrite backend calls in seconds",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		},
	)

	// SchedulerTriggersTotal counts scheduler trigger firings by outcome.
	SchedulerTriggersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scheduler_triggers_total",
			Help: "Total number of scheduler trigger firings by outcome",
		},
		[]string{"outcome"},
	)
)
