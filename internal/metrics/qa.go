// Package metrics holds the Prometheus collectors for the HTTP surface and the QA pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// QA pipeline metrics.
var (
	QAStageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "geekqa",
			Name:      "qa_stage_duration_seconds",
			Help:      "Duration of each QA pipeline stage in seconds",
			Buckets:   []float64{0.0001, 0.001, 0.01, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"stage", "result"},
	)

	QARequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "geekqa",
			Name:      "qa_requests_total",
			Help:      "Total QA requests by outcome",
		},
		[]string{"outcome"}, // "completed" or a failure reason
	)

	QARetrievedChunks = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "geekqa",
			Name:      "qa_retrieved_chunks",
			Help:      "Number of document chunks retrieved per question",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50, 100},
		},
	)
)

func init() {
	prometheus.MustRegister(QAStageDuration)
	prometheus.MustRegister(QARequestsTotal)
	prometheus.MustRegister(QARetrievedChunks)
}

// Handler serves the default registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.Handler()
}
