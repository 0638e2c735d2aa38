package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/saqibullah/diabetes-risk-predictor/features"
	"github.com/saqibullah/diabetes-risk-predictor/logging"
	"github.com/saqibullah/diabetes-risk-predictor/metrics"
	"github.com/saqibullah/diabetes-risk-predictor/model"
	"github.com/saqibullah/diabetes-risk-predictor/risk"
)

const defaultDownloadName = "diabetes_predictions.csv"

// Handler serves the prediction API on top of a loaded InferenceContext.
type Handler struct {
	inference *model.InferenceContext
	metrics   *metrics.Metrics
	logger    *slog.Logger
	ocr       Recognizer
	now       func() time.Time
}

func NewHandler(ic *model.InferenceContext, m *metrics.Metrics, logger *slog.Logger) *Handler {
	return &Handler{
		inference: ic,
		metrics:   m,
		logger:    logger,
		ocr:       Tesseract{},
		now:       time.Now,
	}
}

// WithRecognizer replaces the OCR backend used by Extract.
func (h *Handler) WithRecognizer(r Recognizer) *Handler {
	h.ocr = r
	return h
}

// PredictionResult is the response of a single-record prediction.
type PredictionResult struct {
	Success               bool       `json:"success"`
	Prediction            int        `json:"prediction"`
	PredictionLabel       string     `json:"prediction_label"`
	Probability           float64    `json:"probability"`
	ProbabilityPercentage float64    `json:"probability_percentage"`
	RiskLevel             risk.Level `json:"risk_level"`
	RiskColor             string     `json:"risk_color"`
	Message               string     `json:"message"`
	DetailedMessage       string     `json:"detailed_message"`
	Timestamp             string     `json:"timestamp"`
}

func predictionLabel(label int) string {
	if label == 1 {
		return "Diabetic"
	}
	return "Non-Diabetic"
}

func riskSummary(label int) string {
	if label == 1 {
		return "High risk of diabetes"
	}
	return "Low risk of diabetes"
}

func newPredictionResult(label int, a risk.Assessment, now time.Time) PredictionResult {
	return PredictionResult{
		Success:               true,
		Prediction:            label,
		PredictionLabel:       predictionLabel(label),
		Probability:           a.Probability,
		ProbabilityPercentage: a.Percentage,
		RiskLevel:             a.Level,
		RiskColor:             a.Color,
		Message:               riskSummary(label) + " detected",
		DetailedMessage:       fmt.Sprintf("Prediction: %s with %.1f%% probability (%s risk)", predictionLabel(label), a.Percentage, a.Level),
		Timestamp:             now.Format(logging.TimeLayout),
	}
}

// Predict scores one JSON record.
func (h *Handler) Predict(c *gin.Context) {
	if !h.inference.Ready() {
		h.writeError(c, model.ErrNotLoaded)
		return
	}

	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input format: " + err.Error()})
		return
	}

	vec, err := features.Build(body)
	if err != nil {
		h.writeError(c, err)
		return
	}

	start := time.Now()
	preds, err := h.inference.Predict(features.Matrix([]features.Vector{vec}))
	h.metrics.ObserveInference("predict", time.Since(start))
	if err != nil {
		h.writeError(c, err)
		return
	}

	a := risk.Classify(preds.Probabilities[0])
	h.metrics.ObservePrediction("predict", string(a.Level))
	c.JSON(http.StatusOK, newPredictionResult(preds.Labels[0], a, h.now()))
}

type downloadRequest struct {
	CSVData  string `json:"csv_data"`
	Filename string `json:"filename"`
}

// DownloadResults echoes previously generated CSV back as an attachment.
func (h *Handler) DownloadResults(c *gin.Context) {
	var req downloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input format: " + err.Error()})
		return
	}
	if req.CSVData == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No data provided"})
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+attachmentName(req.Filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(req.CSVData))
}

// attachmentName keeps only a plain base name safe to place in a header.
func attachmentName(name string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case '\r', '\n', '"', ';', '\\':
			return -1
		}
		return r
	}, name)
	name = filepath.Base(strings.TrimSpace(name))
	if name == "." || name == "/" || name == "" {
		return defaultDownloadName
	}
	return name
}

// Health reports artifact status. It always answers 200.
func (h *Handler) Health(c *gin.Context) {
	status := "unhealthy"
	if h.inference.Ready() {
		status = "healthy"
	}
	c.JSON(http.StatusOK, gin.H{
		"status":        status,
		"model_loaded":  h.inference.ModelLoaded(),
		"scaler_loaded": h.inference.ScalerLoaded(),
		"timestamp":     h.now().Format(logging.TimeLayout),
	})
}

// Features describes the expected inputs.
func (h *Handler) Features(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"features":  features.Descriptors,
		"timestamp": h.now().Format(logging.TimeLayout),
	})
}
