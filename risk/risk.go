// Package risk maps positive-class probabilities onto ordinal risk tiers.
package risk

// Level is an ordinal risk tier.
type Level string

const (
	Low      Level = "Low"
	Moderate Level = "Moderate"
	High     Level = "High"
)

// Levels lists tiers from highest to lowest.
var Levels = []Level{High, Moderate, Low}

// Tier breakpoints, in percent.
const (
	ModerateFrom = 30.0
	HighFrom     = 60.0
)

// Assessment is the tier derived from one probability.
type Assessment struct {
	Probability float64
	Percentage  float64
	Level       Level
	Color       string
}

// Classify derives the tier for probability p in [0, 1].
func Classify(p float64) Assessment {
	pct := p * 100
	a := Assessment{Probability: p, Percentage: pct}
	switch {
	case pct < ModerateFrom:
		a.Level = Low
	case pct < HighFrom:
		a.Level = Moderate
	default:
		a.Level = High
	}
	a.Color = a.Level.Color()
	return a
}

// Color is the display color clients render the tier with.
func (l Level) Color() string {
	switch l {
	case Low:
		return "green"
	case Moderate:
		return "orange"
	case High:
		return "red"
	}
	return ""
}

// Distribution counts assessments per tier. Every tier is present.
func Distribution(as []Assessment) map[Level]int {
	d := map[Level]int{High: 0, Moderate: 0, Low: 0}
	for _, a := range as {
		d[a.Level]++
	}
	return d
}
