package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "kanso_streaks"

// Metrics owns its registry so tests can build isolated instances.
type Metrics struct {
	Registry *prometheus.Registry

	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
	computations   *prometheus.CounterVec
	workerJobs     *prometheus.CounterVec
	workerDropped  prometheus.Counter
	rolloverQueued prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),

		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests handled.",
			},
			[]string{"method", "path", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests.",
				Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
			},
			[]string{"method", "path"},
		),
		computations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "streaks",
				Name:      "computations_total",
				Help:      "Streak computations by outcome (computed, cached, invalid_date).",
			},
			[]string{"outcome"},
		),
		workerJobs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "worker",
				Name:      "jobs_total",
				Help:      "Streak jobs processed by result (ok, failed).",
			},
			[]string{"result"},
		),
		workerDropped: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "worker",
				Name:      "dropped_jobs_total",
				Help:      "Streak jobs dropped because the queue was full.",
			},
		),
		rolloverQueued: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "scheduler",
				Name:      "rollover_enqueued_total",
				Help:      "Habits re-enqueued by the day rollover job.",
			},
		),
	}

	m.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpDuration,
		m.computations,
		m.workerJobs,
		m.workerDropped,
		m.rolloverQueued,
	)

	return m
}

// Handler exposes the registry for scraping.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// Middleware records every request against its route template.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.httpRequests.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) ObserveComputation(outcome string) {
	m.computations.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveJob(result string) {
	m.workerJobs.WithLabelValues(result).Inc()
}

func (m *Metrics) IncDroppedJob() {
	m.workerDropped.Inc()
}

func (m *Metrics) AddRolloverQueued(n int) {
	m.rolloverQueued.Add(float64(n))
}
