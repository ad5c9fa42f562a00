// Package metrics exposes prometheus collectors for the CV assistant.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	AnalysisAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agentcv_analysis_attempts_total",
			Help: "Total number of LLM provider calls made while analyzing a CV",
		},
		[]string{"source", "outcome"},
	)

	AnalysisDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "agentcv_analysis_attempt_duration_seconds",
			Help:    "Duration of a single LLM provider call in seconds",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80},
		},
		[]string{"source"},
	)

	KeyRotations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agentcv_key_rotations_total",
			Help: "Total number of API key rotations",
		},
		[]string{"reason"},
	)

	WorkflowTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agentcv_workflow_transitions_total",
			Help: "Total number of workflow phase transitions",
		},
		[]string{"phase"},
	)

	Exports = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agentcv_exports_total",
			Help: "Total number of DOCX exports",
		},
		[]string{"outcome"},
	)
)

// Attempt outcomes.
const (
	OutcomeSuccess   = "success"
	OutcomeQuota     = "quota"
	OutcomeAuth      = "auth"
	OutcomeMalformed = "malformed"
	OutcomeError     = "error"
	OutcomeCanceled  = "canceled"
)

// Rotation reasons.
const (
	RotationPreemptive = "preemptive"
	RotationQuota      = "quota"
	RotationAuth       = "auth"
	RotationMalformed  = "malformed"
)

func ObserveAttempt(source, outcome string, took time.Duration) {
	AnalysisAttempts.WithLabelValues(source, outcome).Inc()
	AnalysisDuration.WithLabelValues(source).Observe(took.Seconds())
}

func RecordRotation(reason string) {
	KeyRotations.WithLabelValues(reason).Inc()
}

func RecordTransition(phase string) {
	WorkflowTransitions.WithLabelValues(phase).Inc()
}

func RecordExport(outcome string) {
	Exports.WithLabelValues(outcome).Inc()
}

// Handler serves the default registry in the prometheus text format.
func Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}
