// internal/dataset/stats.go
package dataset

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

var nan = math.NaN()

// DefaultBins is the histogram bucket count when none is requested.
const DefaultBins = 10

// Overview is the dashboard headline block.
type Overview struct {
	TotalEntries    int     `json:"total_entries"`
	SelectedEntries int     `json:"selected_entries"`
	AvgHappiness    float64 `json:"avg_happiness"`
	AvgStress       float64 `json:"avg_stress"`
	StressScale     string  `json:"stress_scale"`
}

// Overview summarises a filtered selection against the whole dataset.
func (d *Dataset) Overview(selected []Record) Overview {
	return Overview{
		TotalEntries:    len(d.Records),
		SelectedEntries: len(selected),
		AvgHappiness:    mean(column(selected, ColHappiness)),
		AvgStress:       mean(column(selected, ColStress)),
		StressScale:     d.Schema.StressScale(),
	}
}

// Bucket is one bar of a distribution.
type Bucket struct {
	Label string  `json:"label"`
	Lower float64 `json:"lower,omitempty"`
	Upper float64 `json:"upper,omitempty"`
	Count int     `json:"count"`
}

// Distribution kinds
const (
	KindCategorical = "categorical"
	KindHistogram   = "histogram"
)

// Distribution is the shape of one column.
type Distribution struct {
	Column  string   `json:"column"`
	Kind    string   `json:"kind"`
	Buckets []Bucket `json:"buckets"`
}

var categoricalColumns = map[string]bool{
	ColCountry: true, ColGender: true, ColExercise: true, ColDiet: true, ColMentalHealth: true,
}

var numericColumns = []string{ColAge, ColSleep, ColStress, ColWork, ColScreen, ColSocial, ColHappiness}

// IsColumn reports whether name is a known column.
func IsColumn(name string) bool {
	for _, c := range RequiredColumns {
		if c == name {
			return true
		}
	}
	return false
}

// Distribution buckets one column of the selection. Categorical columns
// (and a categorical Stress Level) are counted per value, most frequent
// first; numeric columns become an equal-width histogram.
func (d *Dataset) Distribution(selected []Record, col string, bins int) (Distribution, error) {
	if !IsColumn(col) {
		return Distribution{}, fmt.Errorf("unknown column %q", col)
	}
	if bins <= 0 {
		bins = DefaultBins
	}

	if categoricalColumns[col] || (col == ColStress && !d.Schema.StressNumeric) {
		return Distribution{Column: col, Kind: KindCategorical, Buckets: countValues(selected, col)}, nil
	}
	return Distribution{Column: col, Kind: KindHistogram, Buckets: histogram(column(selected, col), bins)}, nil
}

func countValues(records []Record, col string) []Bucket {
	counts := map[string]int{}
	for _, r := range records {
		v := categorical(r, col)
		if v == "" {
			continue
		}
		counts[v]++
	}
	out := make([]Bucket, 0, len(counts))
	for k, n := range counts {
		out = append(out, Bucket{Label: k, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Label < out[j].Label
	})
	return out
}

func histogram(values []float64, bins int) []Bucket {
	values = finite(values)
	if len(values) == 0 {
		return []Bucket{}
	}
	sort.Float64s(values)
	lo, hi := values[0], values[len(values)-1]
	if lo == hi {
		return []Bucket{{Label: formatEdge(lo), Lower: lo, Upper: hi, Count: len(values)}}
	}

	dividers := make([]float64, bins+1)
	floats.Span(dividers, lo, hi)
	dividers[bins] = math.Nextafter(hi, math.Inf(1))

	counts := stat.Histogram(nil, dividers, values, nil)
	out := make([]Bucket, bins)
	for i := range out {
		out[i] = Bucket{
			Label: fmt.Sprintf("%s-%s", formatEdge(dividers[i]), formatEdge(math.Min(dividers[i+1], hi))),
			Lower: dividers[i],
			Upper: math.Min(dividers[i+1], hi),
			Count: int(counts[i]),
		}
	}
	return out
}

func formatEdge(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.1f", v)
}

// Pair is a correlation between two columns.
type Pair struct {
	A           string  `json:"a"`
	B           string  `json:"b"`
	Correlation float64 `json:"correlation"`
}

// Correlations is a Pearson matrix over the numeric columns.
type Correlations struct {
	Columns           []string    `json:"columns"`
	Matrix            [][]float64 `json:"matrix"`
	StrongestPositive *Pair       `json:"strongest_positive,omitempty"`
	StrongestNegative *Pair       `json:"strongest_negative,omitempty"`
}

// Correlations computes pairwise correlations over the numeric columns.
// Stress participates only when it is numeric.
func (d *Dataset) Correlations(records []Record) (Correlations, error) {
	var cols []string
	for _, c := range numericColumns {
		if c == ColStress && !d.Schema.StressNumeric {
			continue
		}
		cols = append(cols, c)
	}
	if len(records) < 2 {
		return Correlations{}, fmt.Errorf("need at least two rows for correlation, have %d", len(records))
	}

	data := make([][]float64, len(cols))
	for i, c := range cols {
		data[i] = column(records, c)
	}

	matrix := make([][]float64, len(cols))
	var pairs []Pair
	for i := range cols {
		matrix[i] = make([]float64, len(cols))
		for j := range cols {
			if i == j {
				matrix[i][j] = 1
				continue
			}
			x, y := pairwiseFinite(data[i], data[j])
			corr := nan
			if len(x) >= 2 {
				corr = stat.Correlation(x, y, nil)
			}
			matrix[i][j] = corr
			if j < i && !math.IsNaN(corr) {
				pairs = append(pairs, Pair{A: cols[i], B: cols[j], Correlation: corr})
			}
		}
	}

	sort.SliceStable(pairs, func(a, b int) bool {
		return math.Abs(pairs[a].Correlation) > math.Abs(pairs[b].Correlation)
	})

	out := Correlations{Columns: cols, Matrix: matrix}
	for i := range pairs {
		p := pairs[i]
		if p.Correlation > 0 && out.StrongestPositive == nil {
			out.StrongestPositive = &p
		}
		if p.Correlation < 0 && out.StrongestNegative == nil {
			out.StrongestNegative = &p
		}
	}
	return out, nil
}

func column(records []Record, col string) []float64 {
	out := make([]float64, len(records))
	for i, r := range records {
		switch col {
		case ColAge:
			out[i] = r.Age
		case ColSleep:
			out[i] = r.Sleep
		case ColStress:
			out[i] = r.Stress
		case ColWork:
			out[i] = r.Work
		case ColScreen:
			out[i] = r.Screen
		case ColSocial:
			out[i] = r.Social
		case ColHappiness:
			out[i] = r.Happiness
		default:
			out[i] = nan
		}
	}
	return out
}

func categorical(r Record, col string) string {
	switch col {
	case ColCountry:
		return r.Country
	case ColGender:
		return r.Gender
	case ColExercise:
		return r.Exercise
	case ColDiet:
		return r.Diet
	case ColMentalHealth:
		return r.MentalHealth
	case ColStress:
		return r.StressRaw
	}
	return ""
}

func finite(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}

func pairwiseFinite(x, y []float64) ([]float64, []float64) {
	xs := make([]float64, 0, len(x))
	ys := make([]float64, 0, len(y))
	for i := range x {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}
	return xs, ys
}

// mean ignores NaN and returns 0 for an empty input.
func mean(values []float64) float64 {
	values = finite(values)
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}
