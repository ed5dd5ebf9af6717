// internal/wellness/prediction.go
package wellness

import (
	"math"

	"gonum.org/v1/gonum/floats/scalar"
)

// Score bounds
const (
	MaxHappiness = 10.0
	MaxStress    = 10.0
	MaxBurnout   = 100.0
)

// Burnout formula weights
const (
	burnoutWorkWeight   = 0.4
	burnoutScreenWeight = 0.25
	burnoutSleepWeight  = 0.2
	burnoutSocialWeight = 0.15
)

// Prediction is the scored outcome of one simulation.
type Prediction struct {
	Happiness   float64 `json:"happiness"`
	Stress      float64 `json:"stress"`
	BurnoutRisk float64 `json:"burnout_risk"`
}

// HappinessFromRaw clamps a raw regressor output to [0, 10] with one decimal.
func HappinessFromRaw(raw float64) float64 {
	return scalar.Round(clamp(raw, 0, MaxHappiness), 1)
}

// StressFromRaw rescales the stress model's 1..3 category scale onto [0, 10]
// with two decimals.
func StressFromRaw(raw float64) float64 {
	return scalar.Round(clamp(((raw-1)/2)*10, 0, MaxStress), 2)
}

// BurnoutRisk derives the burnout percentage from the profile. It is not
// model driven.
func BurnoutRisk(p Profile) float64 {
	raw := burnoutWorkWeight*float64(p.WorkHoursPerWeek) +
		burnoutScreenWeight*p.ScreenTimePerDay +
		burnoutSleepWeight*(10-p.SleepHours) +
		burnoutSocialWeight*(10-float64(p.SocialInteractionScore))
	return scalar.Round(clamp(raw, 0, MaxBurnout), 1)
}

// NewPrediction builds a Prediction from raw model outputs.
func NewPrediction(p Profile, rawHappiness, rawStress float64) Prediction {
	return Prediction{
		Happiness:   HappinessFromRaw(rawHappiness),
		Stress:      StressFromRaw(rawStress),
		BurnoutRisk: BurnoutRisk(p),
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
