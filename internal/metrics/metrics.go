package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edumentor_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "edumentor_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "path"},
	)

	// Streaming metrics
	FramesEmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edumentor_frames_emitted_total",
			Help: "Total stream frames emitted",
		},
		[]string{"type"}, // "start", "chunk", "complete", "error"
	)

	ExchangesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edumentor_exchanges_total",
			Help: "Total chat exchanges by outcome",
		},
		[]string{"outcome"}, // "complete", "error", "disconnect"
	)

	ExchangeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "edumentor_exchange_duration_seconds",
			Help:    "Duration of one chat exchange from start to terminal frame",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
		},
	)

	ExchangesRejected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "edumentor_exchanges_rejected_total",
			Help: "Exchanges rejected because one was already in flight",
		},
	)

	// Business metrics
	UsersRegistered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "edumentor_users_registered_total",
			Help: "Total users registered",
		},
	)

	DocumentsUploaded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "edumentor_documents_uploaded_total",
			Help: "Total documents uploaded",
		},
	)

	QuizzesGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edumentor_quizzes_generated_total",
			Help: "Total quizzes generated",
		},
		[]string{"source"}, // "session" or "document"
	)

	SearchQueries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "edumentor_search_queries_total",
			Help: "Total search queries",
		},
	)

	// Rate limit metrics
	RateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edumentor_rate_limit_hits_total",
			Help: "Total rate limit hits",
		},
		[]string{"endpoint"},
	)

	BlockedRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "edumentor_blocked_requests_total",
			Help: "Total blocked requests",
		},
		[]string{"reason"},
	)

	// Infrastructure metrics
	GeneratorLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "edumentor_generator_first_fragment_seconds",
			Help:    "Latency from exchange start to first generator fragment",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
		},
	)

	DatabaseLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "edumentor_database_latency_seconds",
			Help:    "Database query latency",
			Buckets: []float64{.001, .005, .01, .025, .05, .1},
		},
	)
)
