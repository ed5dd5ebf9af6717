// internal/wellness/forecast.go
package wellness

import (
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats/scalar"
)

// Horizon names a forecast point.
type Horizon string

const (
	HorizonCurrent   Horizon = "Current"
	HorizonThreeDays Horizon = "3 Days"
	HorizonOneWeek   Horizon = "1 Week"
	HorizonOneMonth  Horizon = "1 Month"
	HorizonThreeMths Horizon = "3 Months"
)

// Horizons lists forecast points in chronological order.
var Horizons = []Horizon{HorizonCurrent, HorizonThreeDays, HorizonOneWeek, HorizonOneMonth, HorizonThreeMths}

// Drift per unit multiplier
const (
	HappinessDeclineRate = 0.12
	StressIncreaseRate   = 0.20
	BurnoutIncreaseRate  = 2.0
)

// Seeds used when an input is not a finite number
const (
	DefaultHappiness = 5.0
	DefaultStress    = 5.0
	DefaultBurnout   = 50.0
)

type multiplier struct {
	happiness float64
	stress    float64
	burnout   float64
}

var horizonMultipliers = map[Horizon]multiplier{
	HorizonCurrent:   {0, 0, 0},
	HorizonThreeDays: {0.4, 0.5, 1.0},
	HorizonOneWeek:   {1.0, 1.0, 1.8},
	HorizonOneMonth:  {2.5, 2.0, 4.5},
	HorizonThreeMths: {5.0, 3.5, 8.0},
}

// ForecastPoint is the projected state at one horizon.
type ForecastPoint struct {
	Horizon     Horizon `json:"horizon"`
	Happiness   float64 `json:"happiness"`
	Stress      float64 `json:"stress"`
	BurnoutRisk float64 `json:"burnout_risk"`
}

// Forecast is the ordered projection across all horizons.
type Forecast []ForecastPoint

// Project extrapolates the three metrics assuming current habits persist.
// Non-finite seeds are replaced by their defaults.
func Project(happiness, stress, burnout float64) Forecast {
	happiness = seed(happiness, DefaultHappiness)
	stress = seed(stress, DefaultStress)
	burnout = seed(burnout, DefaultBurnout)

	out := make(Forecast, 0, len(Horizons))
	for _, h := range Horizons {
		m := horizonMultipliers[h]
		out = append(out, ForecastPoint{
			Horizon:     h,
			Happiness:   scalar.Round(clamp(happiness-HappinessDeclineRate*m.happiness, 0, MaxHappiness), 1),
			Stress:      scalar.Round(clamp(stress+StressIncreaseRate*m.stress, 0, MaxStress), 1),
			BurnoutRisk: scalar.Round(clamp(burnout+BurnoutIncreaseRate*m.burnout, 0, MaxBurnout), 1),
		})
	}
	return out
}

// ProjectPrediction projects from a scored prediction.
func ProjectPrediction(p Prediction) Forecast {
	return Project(p.Happiness, p.Stress, p.BurnoutRisk)
}

// At returns the point for a horizon.
func (f Forecast) At(h Horizon) (ForecastPoint, bool) {
	for _, p := range f {
		if p.Horizon == h {
			return p, true
		}
	}
	return ForecastPoint{}, false
}

// Series returns one metric's values in horizon order.
func (f Forecast) Series(m Metric) []float64 {
	out := make([]float64, len(f))
	for i, p := range f {
		switch m {
		case MetricHappiness:
			out[i] = p.Happiness
		case MetricStress:
			out[i] = p.Stress
		case MetricBurnout:
			out[i] = p.BurnoutRisk
		}
	}
	return out
}

// Labels returns the horizon names in order.
func (f Forecast) Labels() []string {
	out := make([]string, len(f))
	for i, p := range f {
		out[i] = string(p.Horizon)
	}
	return out
}

// ParseSeed converts a textual seed. Anything that is not a finite number
// yields NaN so that Project falls back to the default.
func ParseSeed(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

func seed(v, def float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return def
	}
	return v
}
