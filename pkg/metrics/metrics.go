package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// MessagesDecoded counts successfully decoded FIX messages by message type
var MessagesDecoded = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "fixsentry_messages_decoded_total",
		Help: "Total number of successfully decoded FIX messages",
	},
	[]string{"msg_type"},
)

// DecodeFailures counts rejected wire messages by decode error kind
var DecodeFailures = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "fixsentry_decode_failures_total",
		Help: "Total number of wire messages rejected by the decoder",
	},
	[]string{"kind"},
)

// ComplianceViolations counts non-compliant rule evaluations by rule
var ComplianceViolations = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "fixsentry_compliance_violations_total",
		Help: "Total number of non-compliant rule evaluations",
	},
	[]string{"rule_id"},
)

// AnomaliesDetected counts anomaly findings by anomaly type
var AnomaliesDetected = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "fixsentry_anomalies_detected_total",
		Help: "Total number of anomalies flagged by the detector",
	},
	[]string{"type"},
)

// ProcessingLatency records end-to-end pipeline latency per message
var ProcessingLatency = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "fixsentry_message_processing_latency_seconds",
		Help:    "Latency in seconds to decode and analyze a single message",
		Buckets: prometheus.DefBuckets,
	},
)

// TrackedSessions gauges how many session baselines are held in memory
var TrackedSessions = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "fixsentry_tracked_sessions",
		Help: "Number of counterparty sessions with an active baseline",
	},
)

func init() {
	prometheus.MustRegister(MessagesDecoded, DecodeFailures)
	prometheus.MustRegister(ComplianceViolations, AnomaliesDetected)
	prometheus.MustRegister(ProcessingLatency, TrackedSessions)
}
