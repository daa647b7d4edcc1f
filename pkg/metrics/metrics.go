package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	ChatMessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_messages_total",
			Help: "Total number of message mutations handled by the chat service (count)",
		},
		[]string{"action"},
	)

	CensorshipsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_censorships_total",
			Help: "Total number of censorship directives applied by the chat service (count)",
		},
		[]string{"status"},
	)

	BroadcastsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_broadcasts_total",
			Help: "Total number of real-time broadcast attempts (count)",
		},
		[]string{"status"},
	)

	ModerationScansTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moderation_scans_total",
			Help: "Total number of messages scanned by the moderator service (count)",
		},
		[]string{"status"},
	)

	ModerationScanDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "moderation_scan_duration_ms",
			Help:    "Scan duration in the moderator service in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
		[]string{"status"},
	)

	ModerationActiveTerms = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "moderation_active_terms",
			Help: "Number of forbidden terms loaded into the scanner (count)",
		},
	)

	AuditEntriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_entries_total",
			Help: "Total number of log entries appended by the logs service (count)",
		},
		[]string{"action"},
	)

	AuditDuplicatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_duplicates_total",
			Help: "Total number of audit events skipped by the idempotency guard (count)",
		},
		[]string{"status"},
	)

	RetryAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "retry_attempts_total",
			Help: "Total number of retry attempts (count)",
		},
		[]string{"service", "topic"},
	)

	DLQMessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dlq_messages_total",
			Help: "Total number of messages sent to DLQ (count)",
		},
		[]string{"service", "topic", "reason"},
	)

	CircuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open) (state code)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker (count)",
		},
		[]string{"name", "state"},
	)

	CircuitBreakerFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_failures_total",
			Help: "Total number of failures through circuit breaker (count)",
		},
		[]string{"name"},
	)

	RateLimitRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limit_requests_total",
			Help: "Total number of requests checked against rate limit (count)",
		},
		[]string{"status"},
	)

	FallbackUsageTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fallback_usage_total",
			Help: "Total number of times fallback strategies were used (count)",
		},
		[]string{"service", "strategy", "reason"},
	)
)

func ObserveScanDuration(duration time.Duration, status string) {
	ModerationScanDuration.WithLabelValues(status).Observe(float64(duration.Milliseconds()))
}

func SetModerationActiveTerms(count int) {
	ModerationActiveTerms.Set(float64(count))
}

var fallbackUsageOnce sync.Once

func registerFallbackUsageTotalOnce() {
	fallbackUsageOnce.Do(func() {
		prometheus.MustRegister(FallbackUsageTotal)
	})
}

func RegisterChatMetrics() {
	prometheus.MustRegister(ChatMessagesTotal)
	prometheus.MustRegister(CensorshipsTotal)
	prometheus.MustRegister(BroadcastsTotal)
}

func RegisterModerationMetrics() {
	prometheus.MustRegister(ModerationScansTotal)
	prometheus.MustRegister(ModerationScanDuration)
	prometheus.MustRegister(ModerationActiveTerms)
}

func RegisterAuditMetrics() {
	prometheus.MustRegister(AuditEntriesTotal)
	prometheus.MustRegister(AuditDuplicatesTotal)
	registerFallbackUsageTotalOnce()
}

func RegisterBrokerMetrics() {
	prometheus.MustRegister(RetryAttemptsTotal)
	prometheus.MustRegister(DLQMessagesTotal)
}

func RegisterCircuitBreakerMetrics() {
	prometheus.MustRegister(CircuitBreakerState)
	prometheus.MustRegister(CircuitBreakerRequests)
	prometheus.MustRegister(CircuitBreakerFailures)
}

func RegisterRateLimitMetrics() {
	prometheus.MustRegister(RateLimitRequestsTotal)
}
