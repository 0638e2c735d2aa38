package api

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// Recognizer turns an image file into text.
type Recognizer interface {
	Recognize(ctx context.Context, imagePath string) (string, error)
}

// Tesseract shells out to the tesseract binary.
type Tesseract struct{}

func (Tesseract) Recognize(ctx context.Context, imagePath string) (string, error) {
	if _, err := exec.LookPath("tesseract"); err != nil {
		return "", fmt.Errorf("tesseract not installed or not in PATH: %w", err)
	}
	out, err := exec.CommandContext(ctx, "tesseract", imagePath, "stdout", "-l", "eng").Output()
	if err != nil {
		return "", fmt.Errorf("OCR failed: %w", err)
	}
	return string(out), nil
}

// Lab reports spell some inputs with spaces or abbreviations.
var ocrReplacer = strings.NewReplacer(
	"BloodPressure", "Blood Pressure",
	"SkinThickness", "Skin Thickness",
	"DPF", "Diabetes Pedigree Function",
)

var ocrPatterns = map[string]*regexp.Regexp{
	"Pregnancies":              regexp.MustCompile(`(?i)Pregnancies\s*[:=\-]?\s*(\d+)`),
	"Glucose":                  regexp.MustCompile(`(?i)Glucose\s*[:=\-]?\s*(\d+\.?\d*)`),
	"BloodPressure":            regexp.MustCompile(`(?i)Blood\s*Pressure\s*[:=\-]?\s*(\d+\.?\d*)`),
	"SkinThickness":            regexp.MustCompile(`(?i)Skin\s*Thickness\s*[:=\-]?\s*(\d+\.?\d*)`),
	"Insulin":                  regexp.MustCompile(`(?i)Insulin\s*[:=\-]?\s*(\d+\.?\d*)`),
	"BMI":                      regexp.MustCompile(`(?i)BMI\s*[:=\-]?\s*(\d+\.?\d*)`),
	"DiabetesPedigreeFunction": regexp.MustCompile(`(?i)Diabetes\s*Pedigree\s*Function\s*[:=\-]?\s*(\d+\.?\d*)`),
	"Age":                      regexp.MustCompile(`(?i)Age\s*[:=\-]?\s*(\d+)`),
}

// ExtractFields pulls the model inputs that appear in OCR text.
func ExtractFields(text string) map[string]float64 {
	text = ocrReplacer.Replace(strings.TrimSpace(text))
	extracted := make(map[string]float64)
	for name, re := range ocrPatterns {
		m := re.FindStringSubmatch(text)
		if len(m) < 2 {
			continue
		}
		if f, err := strconv.ParseFloat(m[1], 64); err == nil {
			extracted[name] = f
		}
	}
	return extracted
}

// Extract reads input values off an uploaded lab report image.
func (h *Handler) Extract(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No image uploaded: " + err.Error()})
		return
	}
	logger := h.log(c)
	logger.Info("received image", "filename", file.Filename, "size", file.Size)

	tmp, err := os.CreateTemp("", "report-*"+filepath.Ext(file.Filename))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save image: " + err.Error()})
		return
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	if err := c.SaveUploadedFile(file, tmpPath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save image: " + err.Error()})
		return
	}

	text, err := h.ocr.Recognize(c.Request.Context(), tmpPath)
	if err != nil {
		logger.Error("ocr failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	extracted := ExtractFields(text)
	logger.Debug("extracted fields", "fields", extracted)
	c.JSON(http.StatusOK, gin.H{"extracted": extracted})
}
