// internal/wellness/impact.go
package wellness

import (
	"fmt"
	"strings"
)

// LifestyleFactor is one row of the lifestyle impact analysis.
type LifestyleFactor struct {
	Factor string `json:"factor"`
	Status string `json:"status"`
	Impact string `json:"impact"`
	Text   string `json:"text"`
}

// LifestyleImpact rates each lifestyle input on its own.
func LifestyleImpact(p Profile) []LifestyleFactor {
	sleepStatus, sleepImpact := "insufficient", "negative"
	switch {
	case p.SleepHours >= 7 && p.SleepHours <= 9:
		sleepStatus, sleepImpact = "optimal", "positive"
	case p.SleepHours > 9:
		sleepStatus, sleepImpact = "excessive", "neutral"
	}

	workStatus, workImpact := "excessive", "negative"
	switch {
	case p.WorkHoursPerWeek <= 45:
		workStatus, workImpact = "balanced", "positive"
	case p.WorkHoursPerWeek <= 55:
		workStatus, workImpact = "heavy", "moderate"
	}

	screenStatus, screenImpact := "high", "negative"
	switch {
	case p.ScreenTimePerDay < 4:
		screenStatus, screenImpact = "healthy", "positive"
	case p.ScreenTimePerDay < 7:
		screenStatus, screenImpact = "moderate", "neutral"
	}

	exerciseImpact := "minimal"
	switch p.ExerciseLevel {
	case ExerciseHigh:
		exerciseImpact = "significant positive"
	case ExerciseModerate:
		exerciseImpact = "moderate positive"
	}

	socialStatus, socialImpact := "limited", "potentially negative"
	switch {
	case p.SocialInteractionScore >= 8:
		socialStatus, socialImpact = "strong", "very positive"
	case p.SocialInteractionScore >= 5:
		socialStatus, socialImpact = "moderate", "positive"
	}

	return []LifestyleFactor{
		{
			Factor: "Sleep Pattern",
			Status: sleepStatus,
			Impact: sleepImpact,
			Text: fmt.Sprintf("Your sleep duration (%g hours/night) is %s, which has a %s impact on your wellness.",
				p.SleepHours, sleepStatus, sleepImpact),
		},
		{
			Factor: "Work Schedule",
			Status: workStatus,
			Impact: workImpact,
			Text: fmt.Sprintf("Your work schedule (%d hours/week) is %s, with a %s impact on work-life balance.",
				p.WorkHoursPerWeek, workStatus, workImpact),
		},
		{
			Factor: "Screen Time",
			Status: screenStatus,
			Impact: screenImpact,
			Text: fmt.Sprintf("Your screen time (%g hours/day) is %s, with a %s impact on eye health and sleep quality.",
				p.ScreenTimePerDay, screenStatus, screenImpact),
		},
		{
			Factor: "Physical Activity",
			Status: strings.ToLower(p.ExerciseLevel),
			Impact: exerciseImpact,
			Text: fmt.Sprintf("Your %s exercise level has a %s impact on both physical and mental health.",
				strings.ToLower(p.ExerciseLevel), exerciseImpact),
		},
		{
			Factor: "Social Connection",
			Status: socialStatus,
			Impact: socialImpact,
			Text: fmt.Sprintf("Your %s social connections (score: %d/10) have a %s impact on happiness and stress resilience.",
				socialStatus, p.SocialInteractionScore, socialImpact),
		},
	}
}

// KeyInsights returns short cross-factor observations. Never empty.
func KeyInsights(p Profile, pred Prediction) []string {
	var insights []string
	if p.SleepHours < 7 {
		insights = append(insights, "Improving your sleep duration could significantly boost your happiness scores and reduce stress.")
	}
	if p.WorkHoursPerWeek > 50 && p.ScreenTimePerDay > 6 {
		insights = append(insights, "The combination of high work hours and screen time is a significant contributor to your burnout risk.")
	}
	if p.SocialInteractionScore < 5 && pred.Happiness < 6 {
		insights = append(insights, "Increasing your social connections could help improve your happiness levels.")
	}
	if p.ExerciseLevel == ExerciseLow {
		insights = append(insights, "Adding regular exercise to your routine would likely improve all aspects of your wellness metrics.")
	}
	if len(insights) == 0 {
		insights = append(insights, "Your lifestyle factors are generally well-balanced. Focus on maintaining these healthy habits.")
	}
	return insights
}
