package model

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// LoaderConfig says where the artifacts live. Sources are file paths or
// http(s) URLs.
type LoaderConfig struct {
	ScalerSource string
	ModelSource  string
	Timeout      time.Duration
	Retries      int
}

// Loader reads artifacts from disk or over HTTP.
type Loader struct {
	cfg    LoaderConfig
	client *resty.Client
	logger *slog.Logger
}

// NewLoader builds a Loader. The HTTP client is only used for URL sources.
func NewLoader(cfg LoaderConfig, logger *slog.Logger) *Loader {
	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.Retries).
		SetHeader("Accept", "application/json")
	return &Loader{cfg: cfg, client: client, logger: logger}
}

// Load builds the InferenceContext. A failed artifact is logged and left
// unset; Load itself never fails.
func (l *Loader) Load(ctx context.Context) *InferenceContext {
	cfg := l.cfg
	ic := &InferenceContext{}

	scaler, err := l.LoadScaler(ctx, cfg.ScalerSource)
	if err != nil {
		l.logger.Error("error loading scaler", "source", cfg.ScalerSource, "error", err)
	} else {
		ic.scaler = scaler
		l.logger.Info("scaler loaded", "source", cfg.ScalerSource, "features", scaler.NFeatures())
	}

	classifier, err := l.LoadClassifier(ctx, cfg.ModelSource)
	if err != nil {
		l.logger.Error("error loading model", "source", cfg.ModelSource, "error", err)
	} else {
		ic.classifier = classifier
		l.logger.Info("model loaded", "source", cfg.ModelSource, "classes", classifier.Classes())
	}

	return ic
}

// LoadScaler reads and validates a StandardScaler artifact.
func (l *Loader) LoadScaler(ctx context.Context, src string) (*StandardScaler, error) {
	var s StandardScaler
	if err := l.decode(ctx, src, &s); err != nil {
		return nil, err
	}
	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("scaler %s: %w", src, err)
	}
	return &s, nil
}

// LoadClassifier reads and validates a LogisticRegression artifact.
func (l *Loader) LoadClassifier(ctx context.Context, src string) (*LogisticRegression, error) {
	var m LogisticRegression
	if err := l.decode(ctx, src, &m); err != nil {
		return nil, err
	}
	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("model %s: %w", src, err)
	}
	return &m, nil
}

func (l *Loader) decode(ctx context.Context, src string, v any) error {
	data, err := l.ReadArtifact(ctx, src)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", src, err)
	}
	return nil
}

// ReadArtifact returns the raw bytes behind src.
func (l *Loader) ReadArtifact(ctx context.Context, src string) ([]byte, error) {
	if src == "" {
		return nil, fmt.Errorf("artifact source is empty")
	}
	if !isURL(src) {
		data, err := os.ReadFile(src)
		if err != nil {
			return nil, fmt.Errorf("read artifact: %w", err)
		}
		return data, nil
	}

	resp, err := l.client.R().SetContext(ctx).Get(src)
	if err != nil {
		return nil, fmt.Errorf("fetch artifact %s: %w", src, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("fetch artifact %s: status %d", src, resp.StatusCode())
	}
	return resp.Body(), nil
}

func isURL(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}
