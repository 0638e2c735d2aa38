// Package metrics exposes Prometheus collectors for the prediction API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	requests    *prometheus.CounterVec
	predictions *prometheus.CounterVec
	inference   *prometheus.HistogramVec
	loaded      *prometheus.GaugeVec
	gatherer    prometheus.Gatherer
}

// New registers the collectors on reg. Pass a fresh prometheus.NewRegistry()
// in tests to avoid duplicate registration.
func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "predictor_http_requests_total", Help: "HTTP requests"},
			[]string{"method", "path", "status"},
		),
		predictions: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "predictor_predictions_total", Help: "Scored records by endpoint and risk level"},
			[]string{"endpoint", "risk_level"},
		),
		inference: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{Name: "predictor_inference_duration_seconds", Help: "Scaling and inference latency", Buckets: []float64{0.0005, 0.001, 0.005, 0.02, 0.1, 0.5, 2}},
			[]string{"endpoint"},
		),
		loaded: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{Name: "predictor_artifact_loaded", Help: "1 when the artifact loaded at startup"},
			[]string{"artifact"},
		),
		gatherer: reg,
	}
	reg.MustRegister(m.requests, m.predictions, m.inference, m.loaded)
	return m
}

// Middleware counts requests once the handler chain finished.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.requests.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) ObservePrediction(endpoint, riskLevel string) {
	m.AddPredictions(endpoint, riskLevel, 1)
}

func (m *Metrics) AddPredictions(endpoint, riskLevel string, n int) {
	m.predictions.WithLabelValues(endpoint, riskLevel).Add(float64(n))
}

func (m *Metrics) ObserveInference(endpoint string, d time.Duration) {
	m.inference.WithLabelValues(endpoint).Observe(d.Seconds())
}

func (m *Metrics) SetArtifactLoaded(artifact string, ok bool) {
	v := 0.0
	if ok {
		v = 1
	}
	m.loaded.WithLabelValues(artifact).Set(v)
}
