package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// diagnosisEvaluations counts per-diagnosis verdicts
	diagnosisEvaluations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dctmd_engine_diagnosis_evaluations_total",
		Help: "Total diagnosis evaluations by diagnosis and resulting status",
	}, []string{"diagnosis", "status"})

	// evaluationDuration tracks engine latency per operation
	evaluationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dctmd_engine_evaluation_duration_seconds",
		Help:    "Engine operation duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 12), // 0.1ms to ~400ms
	}, []string{"operation"})

	// configurationErrors counts criterion configuration failures surfaced at evaluation time
	configurationErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dctmd_engine_configuration_errors_total",
		Help: "Total criterion configuration errors raised during evaluation",
	})
)
