package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/saqibullah/diabetes-risk-predictor/logging"
	"github.com/saqibullah/diabetes-risk-predictor/model"
	"github.com/saqibullah/diabetes-risk-predictor/risk"
)

const sampleRows = 10

// BatchResult is the response of a CSV batch prediction.
type BatchResult struct {
	Success          bool               `json:"success"`
	Message          string             `json:"message"`
	Count            int                `json:"count"`
	DiabeticCount    int                `json:"diabetic_count"`
	NonDiabeticCount int                `json:"non_diabetic_count"`
	DiabeticRate     float64            `json:"diabetic_rate"`
	RiskDistribution map[risk.Level]int `json:"risk_distribution"`
	SampleData       []map[string]any   `json:"sample_data"`
	CSVData          string             `json:"csv_data"`
	Filename         string             `json:"filename"`
	Timestamp        string             `json:"timestamp"`
}

// BatchPredict scores every row of an uploaded CSV file.
func (h *Handler) BatchPredict(c *gin.Context) {
	if !h.inference.Ready() {
		h.writeError(c, model.ErrNotLoaded)
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}
	if strings.TrimSpace(file.Filename) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file selected"})
		return
	}
	if !strings.HasSuffix(strings.ToLower(file.Filename), ".csv") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File must be a CSV"})
		return
	}
	h.log(c).Info("batch upload received", "filename", file.Filename, "size", file.Size)

	f, err := file.Open()
	if err != nil {
		h.writeError(c, fmt.Errorf("open upload: %w", err))
		return
	}
	defer f.Close()

	table, err := ReadTable(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Error reading CSV file: " + err.Error()})
		return
	}

	start := time.Now()
	augmented, summary, err := ScoreTable(h.inference, table)
	h.metrics.ObserveInference("batch_predict", time.Since(start))
	if err != nil {
		var mcerr *MissingColumnsError
		switch {
		case errors.As(err, &mcerr), errors.Is(err, ErrNoRecords):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			h.writeError(c, err)
		}
		return
	}

	csvData, err := augmented.WriteCSV()
	if err != nil {
		h.writeError(c, fmt.Errorf("write csv: %w", err))
		return
	}
	for level, n := range summary.RiskDistribution {
		h.metrics.AddPredictions("batch_predict", string(level), n)
	}

	now := h.now()
	c.JSON(http.StatusOK, BatchResult{
		Success:          true,
		Message:          fmt.Sprintf("Processed %d records successfully", summary.Count),
		Count:            summary.Count,
		DiabeticCount:    summary.DiabeticCount,
		NonDiabeticCount: summary.NonDiabeticCount,
		DiabeticRate:     summary.DiabeticRate,
		RiskDistribution: summary.RiskDistribution,
		SampleData:       augmented.Records(sampleRows),
		CSVData:          csvData,
		Filename:         ResultFilename(now),
		Timestamp:        now.Format(logging.TimeLayout),
	})
}

// ResultFilename names a batch result download.
func ResultFilename(t time.Time) string {
	return fmt.Sprintf("diabetes_predictions_%s.csv", t.Format("20060102_150405"))
}
