// Package features turns loosely typed input records into the fixed-order
// numeric vectors the scaler and classifier were fit on.
package features

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Count is the number of model inputs.
const Count = 8

// Names lists the model inputs in training order.
var Names = [Count]string{
	"Pregnancies",
	"Glucose",
	"BloodPressure",
	"SkinThickness",
	"Insulin",
	"BMI",
	"DiabetesPedigreeFunction",
	"Age",
}

// Vector is one record in training order.
type Vector [Count]float64

// ValidationError reports missing or non-numeric inputs.
type ValidationError struct {
	Missing []string
	Field   string
	Reason  string
}

func (e *ValidationError) Error() string {
	if len(e.Missing) > 0 {
		return "missing fields: " + strings.Join(e.Missing, ", ")
	}
	return fmt.Sprintf("field %s: %s", e.Field, e.Reason)
}

// Build validates a record and returns it as a Vector. Unknown keys are
// ignored.
func Build(record map[string]any) (Vector, error) {
	var v Vector
	if missing := Missing(func(name string) bool {
		_, ok := record[name]
		return ok
	}); len(missing) > 0 {
		return v, &ValidationError{Missing: missing}
	}
	for i, name := range Names {
		f, err := ToFloat(record[name])
		if err != nil {
			return v, &ValidationError{Field: name, Reason: err.Error()}
		}
		v[i] = f
	}
	return v, nil
}

// Missing returns the names, in training order, for which has reports false.
func Missing(has func(name string) bool) []string {
	var missing []string
	for _, name := range Names {
		if !has(name) {
			missing = append(missing, name)
		}
	}
	return missing
}

// ToFloat coerces a decoded JSON value or CSV cell to a finite float64.
func ToFloat(value any) (float64, error) {
	var f float64
	switch x := value.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case bool:
		if x {
			f = 1
		}
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, fmt.Errorf("could not convert string to float: %q", x)
		}
		f = parsed
	case nil:
		return 0, fmt.Errorf("value is null")
	default:
		return 0, fmt.Errorf("unsupported value type %T", value)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("value must be finite, got %v", f)
	}
	return f, nil
}

// Matrix converts vectors to the row-major layout the model package expects.
func Matrix(rows []Vector) [][]float64 {
	m := make([][]float64, len(rows))
	for i := range rows {
		row := rows[i]
		m[i] = row[:]
	}
	return m
}
