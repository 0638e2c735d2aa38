package api

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/saqibullah/diabetes-risk-predictor/features"
	"github.com/saqibullah/diabetes-risk-predictor/model"
	"github.com/saqibullah/diabetes-risk-predictor/risk"
)

// Columns appended to every scored row.
var DerivedColumns = []string{
	"Prediction",
	"Prediction_Label",
	"Probability",
	"Probability_Percentage",
	"Risk_Level",
	"Risk_Color",
	"Message",
}

var ErrNoRecords = errors.New("CSV file contains no records")

// MissingColumnsError lists required columns absent from a CSV header.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return "Missing columns: " + strings.Join(e.Columns, ", ")
}

// Table is a parsed CSV document. Cells keep their original text.
type Table struct {
	Header []string
	Rows   [][]string
}

// ReadTable parses CSV with a header line.
func ReadTable(r io.Reader) (Table, error) {
	cr := csv.NewReader(r)
	records, err := cr.ReadAll()
	if err != nil {
		return Table{}, err
	}
	if len(records) == 0 {
		return Table{}, errors.New("no columns to parse from file")
	}
	header := records[0]
	header[0] = strings.TrimPrefix(header[0], "\ufeff")
	return Table{Header: header, Rows: records[1:]}, nil
}

// WriteCSV serializes t with a header line.
func (t Table) WriteCSV() (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(t.Header); err != nil {
		return "", err
	}
	if err := w.WriteAll(t.Rows); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (t Table) columnIndex() map[string]int {
	idx := make(map[string]int, len(t.Header))
	for i, name := range t.Header {
		if _, seen := idx[name]; !seen {
			idx[name] = i
		}
	}
	return idx
}

// Vectors extracts the model inputs from every row in training order.
func (t Table) Vectors() ([]features.Vector, error) {
	idx := t.columnIndex()
	missing := features.Missing(func(name string) bool {
		_, ok := idx[name]
		return ok
	})
	if len(missing) > 0 {
		return nil, &MissingColumnsError{Columns: missing}
	}
	if len(t.Rows) == 0 {
		return nil, ErrNoRecords
	}

	out := make([]features.Vector, len(t.Rows))
	for i, row := range t.Rows {
		for j, name := range features.Names {
			f, err := features.ToFloat(row[idx[name]])
			if err != nil {
				return nil, &features.ValidationError{Field: name, Reason: fmt.Sprintf("row %d: %v", i+1, err)}
			}
			out[i][j] = f
		}
	}
	return out, nil
}

// Scored is one classified row.
type Scored struct {
	Label      int
	Assessment risk.Assessment
}

func Score(preds model.Predictions) []Scored {
	out := make([]Scored, preds.Len())
	for i := range out {
		out[i] = Scored{Label: preds.Labels[i], Assessment: risk.Classify(preds.Probabilities[i])}
	}
	return out
}

// Augment returns a new table with the derived columns filled in for every
// row. Existing derived columns are overwritten in place; t is not modified.
func Augment(t Table, scored []Scored) Table {
	header := append([]string(nil), t.Header...)
	idx := t.columnIndex()
	pos := make([]int, len(DerivedColumns))
	for i, name := range DerivedColumns {
		if j, ok := idx[name]; ok {
			pos[i] = j
			continue
		}
		pos[i] = len(header)
		header = append(header, name)
	}

	rows := make([][]string, len(t.Rows))
	for r, src := range t.Rows {
		row := make([]string, len(header))
		copy(row, src)
		for i, v := range derivedValues(scored[r]) {
			row[pos[i]] = v
		}
		rows[r] = row
	}
	return Table{Header: header, Rows: rows}
}

func derivedValues(s Scored) []string {
	a := s.Assessment
	return []string{
		strconv.Itoa(s.Label),
		predictionLabel(s.Label),
		formatFloat(a.Probability),
		formatFloat(a.Percentage),
		string(a.Level),
		a.Color,
		fmt.Sprintf("%s (%s)", riskSummary(s.Label), a.Level),
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Records converts the first n rows to JSON-friendly maps. Numeric cells
// become numbers and empty cells become null.
func (t Table) Records(n int) []map[string]any {
	if n > len(t.Rows) {
		n = len(t.Rows)
	}
	out := make([]map[string]any, n)
	for i := 0; i < n; i++ {
		rec := make(map[string]any, len(t.Header))
		for j, name := range t.Header {
			if _, dup := rec[name]; dup {
				continue
			}
			rec[name] = cellValue(t.Rows[i][j])
		}
		out[i] = rec
	}
	return out
}

func cellValue(s string) any {
	if s == "" {
		return nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !isNonFinite(s) {
		return f
	}
	return s
}

func isNonFinite(s string) bool {
	switch strings.ToLower(strings.TrimLeft(s, "+-")) {
	case "nan", "inf", "infinity":
		return true
	}
	return false
}

// Summary aggregates scored rows.
type Summary struct {
	Count            int
	DiabeticCount    int
	NonDiabeticCount int
	DiabeticRate     float64
	RiskDistribution map[risk.Level]int
}

func Summarize(scored []Scored) Summary {
	s := Summary{Count: len(scored)}
	as := make([]risk.Assessment, len(scored))
	for i, sc := range scored {
		if sc.Label == 1 {
			s.DiabeticCount++
		}
		as[i] = sc.Assessment
	}
	s.NonDiabeticCount = s.Count - s.DiabeticCount
	if s.Count > 0 {
		s.DiabeticRate = float64(s.DiabeticCount) / float64(s.Count) * 100
	}
	s.RiskDistribution = risk.Distribution(as)
	return s
}

// ScoreTable runs the batch pipeline: extract inputs, infer once over the
// whole matrix, classify and augment.
func ScoreTable(ic *model.InferenceContext, t Table) (Table, Summary, error) {
	vecs, err := t.Vectors()
	if err != nil {
		return Table{}, Summary{}, err
	}
	preds, err := ic.Predict(features.Matrix(vecs))
	if err != nil {
		return Table{}, Summary{}, err
	}
	scored := Score(preds)
	return Augment(t, scored), Summarize(scored), nil
}
