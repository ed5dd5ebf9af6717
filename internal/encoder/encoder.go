// internal/encoder/encoder.go
package encoder

import (
	"strings"

	"github.com/FairForge/lifesync/internal/wellness"
)

// Numeric feature columns, named as in the training dataset.
const (
	ColumnAge      = "Age"
	ColumnSleep    = "Sleep Hours"
	ColumnWork     = "Work Hours per Week"
	ColumnScreen   = "Screen Time per Day (Hours)"
	ColumnSocial   = "Social Interaction Score"
	ColumnExercise = "Exercise Level"
)

// One-hot column prefixes.
const (
	PrefixGender  = "Gender_"
	PrefixDiet    = "Diet_"
	PrefixMH      = "MH_"
	PrefixCountry = "Country_"
)

// DefaultCountryFallback is used when the chosen country has no column.
const DefaultCountryFallback = "USA"

var categoricalPrefixes = []string{PrefixGender, PrefixDiet, PrefixMH, PrefixCountry}

var exerciseCodes = map[string]float64{
	wellness.ExerciseLow:      1,
	wellness.ExerciseModerate: 2,
	wellness.ExerciseHigh:     3,
}

// FeatureVector is an ordered row aligned to a model schema.
type FeatureVector struct {
	Columns []string  `json:"columns"`
	Values  []float64 `json:"values"`
}

// Len returns the number of features.
func (v FeatureVector) Len() int {
	return len(v.Values)
}

// Get returns the value of a named column.
func (v FeatureVector) Get(column string) (float64, bool) {
	for i, c := range v.Columns {
		if c == column {
			return v.Values[i], true
		}
	}
	return 0, false
}

// Map returns the vector keyed by column.
func (v FeatureVector) Map() map[string]float64 {
	out := make(map[string]float64, len(v.Columns))
	for i, c := range v.Columns {
		out[c] = v.Values[i]
	}
	return out
}

// Encoder turns profiles into model inputs.
//
// Country is the only categorical field with a fallback: when the chosen
// country has no schema column, the fallback country's column is set
// instead, provided the schema has one. Gender, diet and mental health
// values without a column contribute nothing.
type Encoder struct {
	countryFallback string
}

// Option configures an Encoder
type Option func(*Encoder)

// WithCountryFallback sets the fallback country. An empty value disables it.
func WithCountryFallback(country string) Option {
	return func(e *Encoder) {
		e.countryFallback = country
	}
}

// New creates an encoder with the default USA fallback.
func New(opts ...Option) *Encoder {
	e := &Encoder{countryFallback: DefaultCountryFallback}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CountryFallback returns the configured fallback country.
func (e *Encoder) CountryFallback() string {
	return e.countryFallback
}

// Encode builds a vector with exactly one entry per schema column, in schema
// order. Unknown schema columns encode as zero.
func (e *Encoder) Encode(p wellness.Profile, columns []string) FeatureVector {
	row := make(map[string]float64, len(columns))

	row[ColumnAge] = float64(p.Age)
	row[ColumnSleep] = p.SleepHours
	row[ColumnWork] = float64(p.WorkHoursPerWeek)
	row[ColumnScreen] = p.ScreenTimePerDay
	row[ColumnSocial] = float64(p.SocialInteractionScore)
	row[ColumnExercise] = exerciseCodes[p.ExerciseLevel]

	schema := make(map[string]bool, len(columns))
	for _, c := range columns {
		schema[c] = true
		if hasCategoricalPrefix(c) {
			row[c] = 0
		}
	}

	setIfPresent(row, schema, PrefixGender+p.Gender)
	setIfPresent(row, schema, PrefixDiet+p.DietType)
	setIfPresent(row, schema, PrefixMH+p.MentalHealthCondition)

	if !setIfPresent(row, schema, PrefixCountry+p.Country) && e.countryFallback != "" {
		setIfPresent(row, schema, PrefixCountry+e.countryFallback)
	}

	vec := FeatureVector{
		Columns: make([]string, len(columns)),
		Values:  make([]float64, len(columns)),
	}
	copy(vec.Columns, columns)
	for i, c := range columns {
		vec.Values[i] = row[c]
	}
	return vec
}

func setIfPresent(row map[string]float64, schema map[string]bool, column string) bool {
	if !schema[column] {
		return false
	}
	row[column] = 1
	return true
}

func hasCategoricalPrefix(column string) bool {
	for _, prefix := range categoricalPrefixes {
		if strings.HasPrefix(column, prefix) {
			return true
		}
	}
	return false
}
