package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tair/stock-ledger/internal/stock/domain"
)

// Metrics holds the stock service's Prometheus collectors
type Metrics struct {
	requestCounter *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
	requestSummary *prometheus.SummaryVec
	rejections     *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requestCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stock_service_requests_total",
				Help: "Total number of requests to stock service",
			},
			[]string{"method", "endpoint", "status"},
		),
		requestLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stock_service_request_duration_seconds",
				Help:    "Duration of stock service requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),
		requestSummary: prometheus.NewSummaryVec(
			prometheus.SummaryOpts{
				Name: "stock_service_request_duration_summary",
				Help: "Summary of request durations with percentiles",
				Objectives: map[float64]float64{
					0.5:  0.05,
					0.9:  0.01,
					0.95: 0.01,
					0.99: 0.001,
				},
				MaxAge: 10 * time.Minute,
			},
			[]string{"method", "endpoint"},
		),
		rejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stock_service_rejections_total",
				Help: "Mutations rejected by the stock rules, by reason",
			},
			[]string{"endpoint", "code"},
		),
	}

	reg.MustRegister(m.requestCounter, m.requestLatency, m.requestSummary, m.rejections)
	return m
}

// reject counts a rejected mutation for stock-rule and contention errors
func (m *Metrics) reject(endpoint string, err error) {
	if m == nil {
		return
	}
	de, ok := domain.AsError(err)
	if !ok {
		return
	}
	switch {
	case errors.Is(de, domain.ErrInsufficientStock),
		errors.Is(de, domain.ErrInvalidQuantity),
		errors.Is(de, domain.ErrConcurrencyConflict):
		m.rejections.WithLabelValues(endpoint, de.Code()).Inc()
	}
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// instrument wraps handlers with Prometheus metrics
func (m *Metrics) instrument(endpoint string, next http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		m.requestCounter.WithLabelValues(r.Method, endpoint, strconv.Itoa(rw.statusCode)).Inc()
		m.requestLatency.WithLabelValues(r.Method, endpoint).Observe(duration)
		m.requestSummary.WithLabelValues(r.Method, endpoint).Observe(duration)
	}
}
