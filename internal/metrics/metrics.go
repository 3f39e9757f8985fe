package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the application collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	roundsStarted   prometheus.Counter
	roundsCompleted prometheus.Counter
	answers         *prometheus.CounterVec
	requests        *prometheus.CounterVec
	duration        *prometheus.HistogramVec
}

// New registers all collectors, including the Go runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		roundsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quiz_rounds_started_total",
			Help: "Rounds created by POST /round/start.",
		}),
		roundsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quiz_rounds_completed_total",
			Help: "Rounds closed by a submission carrying hasEnded.",
		}),
		answers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quiz_answers_submitted_total",
			Help: "Graded answer submissions by outcome.",
		}, []string{"result"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quiz_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "quiz_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"method", "route"}),
	}
	reg.MustRegister(
		m.roundsStarted,
		m.roundsCompleted,
		m.answers,
		m.requests,
		m.duration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RoundStarted counts a new round.
func (m *Metrics) RoundStarted() { m.roundsStarted.Inc() }

// RoundCompleted counts a round transitioning to ended.
func (m *Metrics) RoundCompleted() { m.roundsCompleted.Inc() }

// AnswerGraded counts a persisted answer.
func (m *Metrics) AnswerGraded(correct bool) {
	result := "incorrect"
	if correct {
		result = "correct"
	}
	m.answers.WithLabelValues(result).Inc()
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Middleware records request counts and latency. r.Pattern is the mux
// pattern that matched, which keeps label cardinality bounded.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(r.Method, route, strconv.Itoa(sw.status)).Inc()
		m.duration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
