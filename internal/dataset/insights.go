// internal/dataset/insights.go
package dataset

import (
	"fmt"
	"math"
	"strconv"
)

// Insight is one dashboard observation about the current selection.
type Insight struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

// insightDelta is how far a selection average must move before it is
// called out as above or below the dataset average.
const insightDelta = 0.2

// Insights compares the selection with the whole dataset.
func (d *Dataset) Insights(selected []Record) []Insight {
	if len(selected) == 0 {
		return []Insight{{
			Title: "No Data Found",
			Text:  "No entries match your current filter criteria. Try adjusting your filters.",
		}}
	}

	var out []Insight

	pct := 0.0
	if len(d.Records) > 0 {
		pct = float64(len(selected)) / float64(len(d.Records)) * 100
	}
	out = append(out, Insight{
		Title: "Filter Overview",
		Text:  fmt.Sprintf("Viewing %s entries (%.1f%% of total dataset)", thousands(len(selected)), pct),
	})

	avgHappy := mean(column(selected, ColHappiness))
	diff := avgHappy - mean(column(d.Records, ColHappiness))
	switch {
	case diff > insightDelta:
		out = append(out, Insight{"Happiness Boost",
			fmt.Sprintf("Your selection shows %.1f points higher happiness than average (%.1f/10)", diff, avgHappy)})
	case diff < -insightDelta:
		out = append(out, Insight{"Happiness Alert",
			fmt.Sprintf("Your selection shows %.1f points lower happiness than average (%.1f/10)", math.Abs(diff), avgHappy)})
	default:
		out = append(out, Insight{"Happiness Balance",
			fmt.Sprintf("Your selection shows average happiness levels (%.1f/10)", avgHappy)})
	}

	scale := d.Schema.StressScale()
	avgStress := mean(column(selected, ColStress))
	overallStress := mean(column(d.Records, ColStress))
	switch diff := avgStress - overallStress; {
	case diff > insightDelta:
		out = append(out, Insight{"Stress Alert",
			fmt.Sprintf("Your selection shows higher stress levels (%.1f%s vs %.1f%s average)", avgStress, scale, overallStress, scale)})
	case diff < -insightDelta:
		out = append(out, Insight{"Lower Stress",
			fmt.Sprintf("Your selection shows lower stress levels (%.1f%s vs %.1f%s average)", avgStress, scale, overallStress, scale)})
	default:
		out = append(out, Insight{"Average Stress",
			fmt.Sprintf("Your selection shows typical stress levels (%.1f%s)", avgStress, scale)})
	}

	avgSleep := mean(column(selected, ColSleep))
	switch {
	case avgSleep < 6:
		out = append(out, Insight{"Sleep Concern",
			fmt.Sprintf("Average sleep in selection: %.1fh - Consider aiming for 7-8 hours", avgSleep)})
	case avgSleep > 8.5:
		out = append(out, Insight{"High Sleep",
			fmt.Sprintf("Average sleep in selection: %.1fh - Above typical range", avgSleep)})
	default:
		out = append(out, Insight{"Good Sleep",
			fmt.Sprintf("Average sleep in selection: %.1fh - Within healthy range", avgSleep)})
	}

	if top, share := dominantExercise(selected); top != "" {
		switch top {
		case "High":
			out = append(out, Insight{"Active Lifestyle",
				fmt.Sprintf("%.0f%% of your selection exercises at high intensity", share)})
		case "Low":
			out = append(out, Insight{"Exercise Opportunity",
				fmt.Sprintf("%.0f%% of your selection has low exercise - room for improvement", share)})
		default:
			out = append(out, Insight{"Moderate Activity",
				fmt.Sprintf("%.0f%% of your selection exercises at moderate levels", share)})
		}
	}

	avgWork := mean(column(selected, ColWork))
	switch {
	case avgWork > 50:
		out = append(out, Insight{"Work Intensity",
			fmt.Sprintf("Average work hours: %.1fh/week - High workload may impact wellbeing", avgWork)})
	case avgWork < 30:
		out = append(out, Insight{"Work Balance",
			fmt.Sprintf("Average work hours: %.1fh/week - Good work-life balance", avgWork)})
	default:
		out = append(out, Insight{"Standard Workload",
			fmt.Sprintf("Average work hours: %.1fh/week - Typical full-time schedule", avgWork)})
	}

	avgScreen := mean(column(selected, ColScreen))
	switch {
	case avgScreen > 8:
		out = append(out, Insight{"High Screen Time",
			fmt.Sprintf("Average screen time: %.1fh/day - Consider digital wellness breaks", avgScreen)})
	case avgScreen < 4:
		out = append(out, Insight{"Moderate Screen Use",
			fmt.Sprintf("Average screen time: %.1fh/day - Good digital balance", avgScreen)})
	default:
		out = append(out, Insight{"Typical Screen Time",
			fmt.Sprintf("Average screen time: %.1fh/day - Within normal range", avgScreen)})
	}

	avgSocial := mean(column(selected, ColSocial))
	switch {
	case avgSocial < 4:
		out = append(out, Insight{"Social Opportunity",
			fmt.Sprintf("Social interaction score: %.1f/10 - Consider increasing social connections", avgSocial)})
	case avgSocial > 7:
		out = append(out, Insight{"Strong Social Life",
			fmt.Sprintf("Social interaction score: %.1f/10 - Excellent social connections", avgSocial)})
	default:
		out = append(out, Insight{"Moderate Social Life",
			fmt.Sprintf("Social interaction score: %.1f/10 - Balanced social interactions", avgSocial)})
	}

	return out
}

// dominantExercise returns the most common exercise level and its share in
// percent. Ties go to the level that sorts first.
func dominantExercise(records []Record) (string, float64) {
	buckets := countValues(records, ColExercise)
	if len(buckets) == 0 {
		return "", 0
	}
	return buckets[0].Label, float64(buckets[0].Count) / float64(len(records)) * 100
}

func thousands(n int) string {
	s := strconv.Itoa(n)
	if n < 0 {
		return "-" + thousands(-n)
	}
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "," + s[i:]
	}
	return s
}
