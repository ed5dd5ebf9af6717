// internal/wellness/interpret.go
package wellness

// Metric identifies one of the three scored outputs.
type Metric string

const (
	MetricHappiness Metric = "happiness"
	MetricStress    Metric = "stress"
	MetricBurnout   Metric = "burnout"
)

// Interpretation is a qualitative band for a score.
type Interpretation struct {
	Label       string `json:"label"`
	Description string `json:"description"`
}

// Interpret maps a score to its band.
func Interpret(m Metric, v float64) Interpretation {
	switch m {
	case MetricHappiness:
		switch {
		case v >= 8:
			return Interpretation{"Excellent", "Excellent - Very high happiness levels"}
		case v >= 6:
			return Interpretation{"Good", "Good - Above average happiness"}
		case v >= 4:
			return Interpretation{"Moderate", "Moderate - Average happiness levels"}
		case v >= 2:
			return Interpretation{"Low", "Low - May need attention"}
		default:
			return Interpretation{"Very Low", "Very Low - Requires immediate attention"}
		}
	case MetricStress:
		switch {
		case v <= 3:
			return Interpretation{"Low", "Low - Well-managed stress levels"}
		case v <= 6:
			return Interpretation{"Moderate", "Moderate - Average stress levels"}
		default:
			return Interpretation{"High", "High - Elevated stress requires attention"}
		}
	case MetricBurnout:
		switch {
		case v <= 30:
			return Interpretation{"Low Risk", "Low Risk - Good work-life balance"}
		case v <= 60:
			return Interpretation{"Moderate Risk", "Moderate Risk - Monitor and make adjustments"}
		default:
			return Interpretation{"High Risk", "High Risk - Immediate attention recommended"}
		}
	}
	return Interpretation{}
}

// Summary is the executive overview used at the top of a report.
type Summary struct {
	OverallScore float64  `json:"overall_score"`
	Status       string   `json:"status"`
	FocusAreas   []string `json:"focus_areas"`
}

// Summarize combines the three scores into one 0..10 wellness figure.
func Summarize(p Prediction) Summary {
	overall := (p.Happiness + (MaxStress - p.Stress) + (MaxBurnout-p.BurnoutRisk)/10) / 3

	status := "concerning"
	switch {
	case overall > 7.5:
		status = "excellent"
	case overall > 6:
		status = "good"
	case overall > 4.5:
		status = "moderate"
	}

	var focus []string
	if p.Happiness < 6 {
		focus = append(focus, "happiness improvement")
	}
	if p.Stress > 5 {
		focus = append(focus, "stress management")
	}
	if p.BurnoutRisk > 40 {
		focus = append(focus, "burnout prevention")
	}

	return Summary{OverallScore: overall, Status: status, FocusAreas: focus}
}
