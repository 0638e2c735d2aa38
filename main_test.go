package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saqibullah/diabetes-risk-predictor/api"
	"github.com/saqibullah/diabetes-risk-predictor/config"
	"github.com/saqibullah/diabetes-risk-predictor/metrics"
	"github.com/saqibullah/diabetes-risk-predictor/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// bundledContext loads the artifacts shipped in artifacts/.
func bundledContext(t *testing.T) *model.InferenceContext {
	t.Helper()
	cfg := config.Default()
	ic := model.NewLoader(model.LoaderConfig{
		ScalerSource: cfg.Artifacts.ScalerPath,
		ModelSource:  cfg.Artifacts.ModelPath,
	}, discardLogger()).Load(context.Background())
	require.True(t, ic.Ready(), "bundled artifacts must load")
	return ic
}

func testRouter(t *testing.T, cfg config.Config, ic *model.InferenceContext) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	m := metrics.New(prometheus.NewRegistry())
	return newRouter(cfg, api.NewHandler(ic, m, discardLogger()), m, discardLogger())
}

func TestRouter_PredictWithBundledArtifacts(t *testing.T) {
	r := testRouter(t, config.Default(), bundledContext(t))

	body := `{"Pregnancies":2,"Glucose":150,"BloodPressure":70,"SkinThickness":30,"Insulin":100,"BMI":28.5,"DiabetesPedigreeFunction":0.5,"Age":45}`
	req := httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"risk_level"`)
}

func TestRouter_CORS(t *testing.T) {
	cfg := config.Default()
	cfg.FrontendURL = "https://app.example"
	r := testRouter(t, cfg, model.NewInferenceContext(nil, nil))

	req := httptest.NewRequest(http.MethodOptions, "/predict", nil)
	req.Header.Set("Origin", "https://app.example")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://app.example", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_MetricsAndHealth(t *testing.T) {
	r := testRouter(t, config.Default(), model.NewInferenceContext(nil, nil))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"unhealthy"`)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `predictor_http_requests_total{method="GET",path="/health",status="200"} 1`)
}

func TestRouter_StaticIndex(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>risk</h1>"), 0o644))
	cfg := config.Default()
	cfg.StaticDir = dir
	r := testRouter(t, cfg, model.NewInferenceContext(nil, nil))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<h1>risk</h1>")
}

func TestScoreFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.csv")
	content := "Pregnancies,Glucose,BloodPressure,SkinThickness,Insulin,BMI,DiabetesPedigreeFunction,Age,Site\n" +
		"6,148,72,35,0,33.6,0.627,50,north\n" +
		"1,85,66,29,0,26.6,0.351,31,south\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	var out, summary bytes.Buffer
	require.NoError(t, scoreFile(bundledContext(t), path, &out, &summary))

	records, err := csv.NewReader(&out).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "Site", records[0][8])
	assert.Equal(t, "Prediction", records[0][9])
	assert.Equal(t, "north", records[1][8])
	assert.Contains(t, summary.String(), "Records:      2")
}

func TestScoreFile_MissingColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.csv")
	require.NoError(t, os.WriteFile(path, []byte("Glucose\n120\n"), 0o644))

	err := scoreFile(bundledContext(t), path, io.Discard, io.Discard)
	var mcerr *api.MissingColumnsError
	require.ErrorAs(t, err, &mcerr)
	assert.NotContains(t, mcerr.Columns, "Glucose")
}
