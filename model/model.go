// Package model holds the fitted scaler and classifier and runs inference
// with them.
package model

import (
	"errors"
	"fmt"
)

var (
	// ErrNotLoaded is returned when the scaler or classifier failed to load.
	ErrNotLoaded = errors.New("model not loaded")
	// ErrShapeMismatch is returned when input width differs from fit-time width.
	ErrShapeMismatch = errors.New("shape mismatch")
)

// Scaler normalizes raw inputs. Transform must not modify x.
type Scaler interface {
	Transform(x [][]float64) ([][]float64, error)
}

// Classifier is a fitted binary classifier.
type Classifier interface {
	Classes() []int
	Predict(x [][]float64) ([]int, error)
	PredictProba(x [][]float64) ([][]float64, error)
}

// Predictions holds one label and one positive-class probability per row.
type Predictions struct {
	Labels        []int
	Probabilities []float64
}

// Len returns the number of rows.
func (p Predictions) Len() int { return len(p.Labels) }

// InferenceContext bundles the artifacts loaded at startup. It is read-only
// after construction and safe for concurrent use.
type InferenceContext struct {
	scaler     Scaler
	classifier Classifier
}

// NewInferenceContext wraps already loaded artifacts. Either may be nil.
func NewInferenceContext(s Scaler, c Classifier) *InferenceContext {
	return &InferenceContext{scaler: s, classifier: c}
}

// ScalerLoaded reports whether a scaler is available.
func (ic *InferenceContext) ScalerLoaded() bool { return ic != nil && ic.scaler != nil }

// ModelLoaded reports whether a classifier is available.
func (ic *InferenceContext) ModelLoaded() bool { return ic != nil && ic.classifier != nil }

// Ready reports whether both artifacts are available.
func (ic *InferenceContext) Ready() bool { return ic.ScalerLoaded() && ic.ModelLoaded() }

// Predict scales x and classifies every row.
func (ic *InferenceContext) Predict(x [][]float64) (Predictions, error) {
	if !ic.Ready() {
		return Predictions{}, ErrNotLoaded
	}
	scaled, err := ic.scaler.Transform(x)
	if err != nil {
		return Predictions{}, fmt.Errorf("scale features: %w", err)
	}
	labels, err := ic.classifier.Predict(scaled)
	if err != nil {
		return Predictions{}, fmt.Errorf("predict: %w", err)
	}
	proba, err := ic.classifier.PredictProba(scaled)
	if err != nil {
		return Predictions{}, fmt.Errorf("predict proba: %w", err)
	}
	if len(labels) != len(x) || len(proba) != len(x) {
		return Predictions{}, fmt.Errorf("classifier returned %d labels and %d probabilities for %d rows", len(labels), len(proba), len(x))
	}

	pos := positiveIndex(ic.classifier.Classes())
	if pos < 0 {
		return Predictions{}, fmt.Errorf("classifier has no positive class among %v", ic.classifier.Classes())
	}
	probs := make([]float64, len(proba))
	for i, row := range proba {
		if pos >= len(row) {
			return Predictions{}, fmt.Errorf("row %d: %d probabilities, want at least %d", i, len(row), pos+1)
		}
		probs[i] = row[pos]
	}
	return Predictions{Labels: labels, Probabilities: probs}, nil
}

func positiveIndex(classes []int) int {
	for i, c := range classes {
		if c == 1 {
			return i
		}
	}
	return -1
}
