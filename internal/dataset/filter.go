// internal/dataset/filter.go
package dataset

import (
	"fmt"
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// Range is an inclusive numeric interval.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

func (r *Range) contains(v float64) bool {
	return r == nil || (v >= r.Min && v <= r.Max)
}

// Filter narrows the dataset. Empty value lists select everything; a
// non-empty MentalHealth list excludes rows with no recorded condition.
type Filter struct {
	Countries      []string `json:"countries,omitempty"`
	Genders        []string `json:"genders,omitempty"`
	ExerciseLevels []string `json:"exercise_levels,omitempty"`
	DietTypes      []string `json:"diet_types,omitempty"`
	MentalHealth   []string `json:"mental_health,omitempty"`
	Age            *Range   `json:"age,omitempty"`
	Sleep          *Range   `json:"sleep,omitempty"`
}

// Query parameter names
const (
	ParamCountry  = "country"
	ParamGender   = "gender"
	ParamExercise = "exercise"
	ParamDiet     = "diet"
	ParamMH       = "mh"
	ParamAgeMin   = "age_min"
	ParamAgeMax   = "age_max"
	ParamSleepMin = "sleep_min"
	ParamSleepMax = "sleep_max"
)

// FilterFromQuery parses repeated query parameters into a Filter.
func FilterFromQuery(q url.Values) (Filter, error) {
	f := Filter{
		Countries:      values(q, ParamCountry),
		Genders:        values(q, ParamGender),
		ExerciseLevels: values(q, ParamExercise),
		DietTypes:      values(q, ParamDiet),
		MentalHealth:   values(q, ParamMH),
	}

	var err error
	if f.Age, err = rangeParam(q, ParamAgeMin, ParamAgeMax); err != nil {
		return Filter{}, err
	}
	if f.Sleep, err = rangeParam(q, ParamSleepMin, ParamSleepMax); err != nil {
		return Filter{}, err
	}
	return f, nil
}

// Encode renders the filter back into query parameters.
func (f Filter) Encode() string {
	q := url.Values{}
	for _, v := range f.Countries {
		q.Add(ParamCountry, v)
	}
	for _, v := range f.Genders {
		q.Add(ParamGender, v)
	}
	for _, v := range f.ExerciseLevels {
		q.Add(ParamExercise, v)
	}
	for _, v := range f.DietTypes {
		q.Add(ParamDiet, v)
	}
	for _, v := range f.MentalHealth {
		q.Add(ParamMH, v)
	}
	if f.Age != nil {
		q.Set(ParamAgeMin, strconv.FormatFloat(f.Age.Min, 'f', -1, 64))
		q.Set(ParamAgeMax, strconv.FormatFloat(f.Age.Max, 'f', -1, 64))
	}
	if f.Sleep != nil {
		q.Set(ParamSleepMin, strconv.FormatFloat(f.Sleep.Min, 'f', -1, 64))
		q.Set(ParamSleepMax, strconv.FormatFloat(f.Sleep.Max, 'f', -1, 64))
	}
	return q.Encode()
}

// Apply returns the matching records in dataset order.
func (d *Dataset) Apply(f Filter) []Record {
	countries := set(f.Countries)
	genders := set(f.Genders)
	exercise := set(f.ExerciseLevels)
	diets := set(f.DietTypes)
	mh := set(f.MentalHealth)

	out := make([]Record, 0, len(d.Records))
	for _, r := range d.Records {
		if !match(countries, r.Country) || !match(genders, r.Gender) ||
			!match(exercise, r.Exercise) || !match(diets, r.Diet) || !match(mh, r.MentalHealth) {
			continue
		}
		if !f.Age.contains(r.Age) || !f.Sleep.contains(r.Sleep) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Options lists the filter choices available in the dataset.
type Options struct {
	Countries      []string `json:"countries"`
	Genders        []string `json:"genders"`
	ExerciseLevels []string `json:"exercise_levels"`
	DietTypes      []string `json:"diet_types"`
	MentalHealth   []string `json:"mental_health"`
	Age            Range    `json:"age"`
	Sleep          Range    `json:"sleep"`
}

// Options returns distinct categorical values and numeric bounds.
func (d *Dataset) Options() Options {
	o := Options{
		Age:   Range{Min: math.Inf(1), Max: math.Inf(-1)},
		Sleep: Range{Min: math.Inf(1), Max: math.Inf(-1)},
	}
	countries, genders, exercise, diets, mh := map[string]bool{}, map[string]bool{}, map[string]bool{}, map[string]bool{}, map[string]bool{}
	for _, r := range d.Records {
		countries[r.Country] = true
		genders[r.Gender] = true
		exercise[r.Exercise] = true
		diets[r.Diet] = true
		if r.MentalHealth != "" {
			mh[r.MentalHealth] = true
		}
		o.Age.Min = math.Min(o.Age.Min, r.Age)
		o.Age.Max = math.Max(o.Age.Max, r.Age)
		o.Sleep.Min = math.Min(o.Sleep.Min, r.Sleep)
		o.Sleep.Max = math.Max(o.Sleep.Max, r.Sleep)
	}
	if len(d.Records) == 0 {
		o.Age, o.Sleep = Range{}, Range{}
	}
	o.Countries = sortedKeys(countries)
	o.Genders = sortedKeys(genders)
	o.ExerciseLevels = sortedKeys(exercise)
	o.DietTypes = sortedKeys(diets)
	o.MentalHealth = sortedKeys(mh)
	return o
}

func values(q url.Values, key string) []string {
	var out []string
	for _, v := range q[key] {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func rangeParam(q url.Values, minKey, maxKey string) (*Range, error) {
	minStr, maxStr := q.Get(minKey), q.Get(maxKey)
	if minStr == "" && maxStr == "" {
		return nil, nil
	}
	r := &Range{Min: math.Inf(-1), Max: math.Inf(1)}
	if minStr != "" {
		v, err := strconv.ParseFloat(minStr, 64)
		if err != nil {
			return nil, fmt.Errorf("parameter %s must be a number", minKey)
		}
		r.Min = v
	}
	if maxStr != "" {
		v, err := strconv.ParseFloat(maxStr, 64)
		if err != nil {
			return nil, fmt.Errorf("parameter %s must be a number", maxKey)
		}
		r.Max = v
	}
	if r.Min > r.Max {
		return nil, fmt.Errorf("parameter %s must not exceed %s", minKey, maxKey)
	}
	return r, nil
}

func set(values []string) map[string]bool {
	if len(values) == 0 {
		return nil
	}
	m := make(map[string]bool, len(values))
	for _, v := range values {
		m[v] = true
	}
	return m
}

func match(allowed map[string]bool, v string) bool {
	return allowed == nil || allowed[v]
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
