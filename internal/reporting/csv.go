// internal/reporting/csv.go
package reporting

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/FairForge/lifesync/internal/wellness"
)

// ForecastHeader is the column layout of the forecast download.
var ForecastHeader = []string{
	"Timestamp", "Age", "Gender", "Sleep Hours", "Work Hours per Week",
	"Screen Time per Day (Hours)", "Social Interaction Score",
	"Exercise Level", "Diet Type", "Mental Health Condition",
	"Happiness Score", "Stress Level", "Burnout Risk",
}

// TimestampLayout is the timestamp format used in CSV rows.
const TimestampLayout = "2006-01-02 15:04:05"

// ForecastCSV writes the current prediction followed by one row per future
// horizon. Forecast rows carry "(Forecast: <horizon>)" in the timestamp.
func ForecastCSV(p wellness.Profile, pred wellness.Prediction, f wellness.Forecast, t time.Time) ([]byte, error) {
	var buf strings.Builder
	w := csv.NewWriter(&buf)

	if err := w.Write(ForecastHeader); err != nil {
		return nil, err
	}

	ts := t.Format(TimestampLayout)
	_ = w.Write(forecastRow(ts, p, pred.Happiness, pred.Stress, pred.BurnoutRisk))
	for _, pt := range f {
		if pt.Horizon == wellness.HorizonCurrent {
			continue
		}
		label := fmt.Sprintf("%s (Forecast: %s)", ts, pt.Horizon)
		_ = w.Write(forecastRow(label, p, pt.Happiness, pt.Stress, pt.BurnoutRisk))
	}

	w.Flush()
	return []byte(buf.String()), w.Error()
}

func forecastRow(ts string, p wellness.Profile, happiness, stress, burnout float64) []string {
	return []string{
		ts,
		strconv.Itoa(p.Age),
		p.Gender,
		wellness.Decimal(p.SleepHours),
		strconv.Itoa(p.WorkHoursPerWeek),
		wellness.Decimal(p.ScreenTimePerDay),
		strconv.Itoa(p.SocialInteractionScore),
		p.ExerciseLevel,
		p.DietType,
		p.MentalHealthCondition,
		wellness.Decimal(happiness),
		wellness.Decimal(stress),
		wellness.Decimal(burnout),
	}
}
