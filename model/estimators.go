package model

import (
	"errors"
	"fmt"
	"math"
)

// StandardScaler applies (x - mean) / scale column-wise.
type StandardScaler struct {
	Type         string    `json:"type"`
	FeatureNames []string  `json:"feature_names,omitempty"`
	Mean         []float64 `json:"mean"`
	Scale        []float64 `json:"scale"`
}

// NFeatures is the fit-time input width.
func (s *StandardScaler) NFeatures() int { return len(s.Mean) }

func (s *StandardScaler) validate() error {
	if s.Type != "standard_scaler" {
		return fmt.Errorf("unexpected scaler type %q", s.Type)
	}
	if len(s.Mean) == 0 {
		return errors.New("scaler has no mean vector")
	}
	if len(s.Mean) != len(s.Scale) {
		return fmt.Errorf("scaler mean has %d values, scale has %d", len(s.Mean), len(s.Scale))
	}
	if len(s.FeatureNames) > 0 && len(s.FeatureNames) != len(s.Mean) {
		return fmt.Errorf("scaler lists %d feature names for %d features", len(s.FeatureNames), len(s.Mean))
	}
	return nil
}

// Transform returns a new scaled matrix.
func (s *StandardScaler) Transform(x [][]float64) ([][]float64, error) {
	n := s.NFeatures()
	out := make([][]float64, len(x))
	for i, row := range x {
		if len(row) != n {
			return nil, fmt.Errorf("%w: X has %d features, but StandardScaler is expecting %d features as input", ErrShapeMismatch, len(row), n)
		}
		scaled := make([]float64, n)
		for j, v := range row {
			scale := s.Scale[j]
			if scale == 0 {
				scale = 1
			}
			scaled[j] = (v - s.Mean[j]) / scale
		}
		out[i] = scaled
	}
	return out, nil
}

// LogisticRegression is a fitted binary logistic model.
type LogisticRegression struct {
	Type         string    `json:"type"`
	FeatureNames []string  `json:"feature_names,omitempty"`
	ClassLabels  []int     `json:"classes"`
	Coef         []float64 `json:"coef"`
	Intercept    float64   `json:"intercept"`
}

func (m *LogisticRegression) validate() error {
	if m.Type != "logistic_regression" {
		return fmt.Errorf("unexpected model type %q", m.Type)
	}
	if len(m.Coef) == 0 {
		return errors.New("model has no coefficients")
	}
	if len(m.ClassLabels) != 2 {
		return fmt.Errorf("model has %d classes, want 2", len(m.ClassLabels))
	}
	if positiveIndex(m.ClassLabels) < 0 {
		return fmt.Errorf("model classes %v do not include 1", m.ClassLabels)
	}
	if len(m.FeatureNames) > 0 && len(m.FeatureNames) != len(m.Coef) {
		return fmt.Errorf("model lists %d feature names for %d coefficients", len(m.FeatureNames), len(m.Coef))
	}
	return nil
}

// Classes returns the class labels in probability column order.
func (m *LogisticRegression) Classes() []int { return m.ClassLabels }

// PredictProba returns [P(classes[0]), P(classes[1])] per row.
func (m *LogisticRegression) PredictProba(x [][]float64) ([][]float64, error) {
	out := make([][]float64, len(x))
	for i, row := range x {
		z, err := m.decision(row)
		if err != nil {
			return nil, err
		}
		p := sigmoid(z)
		out[i] = []float64{1 - p, p}
	}
	return out, nil
}

// Predict returns classes[1] where its probability exceeds one half.
func (m *LogisticRegression) Predict(x [][]float64) ([]int, error) {
	out := make([]int, len(x))
	for i, row := range x {
		z, err := m.decision(row)
		if err != nil {
			return nil, err
		}
		if z > 0 {
			out[i] = m.ClassLabels[1]
		} else {
			out[i] = m.ClassLabels[0]
		}
	}
	return out, nil
}

func (m *LogisticRegression) decision(row []float64) (float64, error) {
	if len(row) != len(m.Coef) {
		return 0, fmt.Errorf("%w: X has %d features, but LogisticRegression is expecting %d features as input", ErrShapeMismatch, len(row), len(m.Coef))
	}
	z := m.Intercept
	for j, v := range row {
		z += m.Coef[j] * v
	}
	return z, nil
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}
