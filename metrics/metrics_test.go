package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareCountsRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New(prometheus.NewRegistry())

	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 3; i++ {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	}
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, 3.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "/health", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "unmatched", "404")))
}

func TestObserversAndHandler(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.ObservePrediction("predict", "High")
	m.ObservePrediction("predict", "High")
	m.ObserveInference("predict", 3*time.Millisecond)
	m.SetArtifactLoaded("model", true)
	m.SetArtifactLoaded("scaler", false)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.predictions.WithLabelValues("predict", "High")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.loaded.WithLabelValues("model")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.loaded.WithLabelValues("scaler")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), "predictor_inference_duration_seconds")
	assert.Contains(t, string(body), `predictor_artifact_loaded{artifact="model"} 1`)
}
