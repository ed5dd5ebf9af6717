// internal/wellness/recommend.go
package wellness

import (
	"fmt"
	"sort"
	"strings"
)

// Priority levels
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Rank orders priorities high before medium before low.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	}
	return 3
}

// Recommendation is one piece of lifestyle advice.
type Recommendation struct {
	Category string   `json:"category"`
	Priority Priority `json:"priority"`
	Title    string   `json:"title"`
	Message  string   `json:"message"`
	Actions  []string `json:"actions"`
	Impact   string   `json:"impact"`
}

// Recommend evaluates the rule set against the profile and prediction. The
// result is in rule order and always has at least one entry.
func Recommend(p Profile, pred Prediction) []Recommendation {
	var recs []Recommendation

	switch {
	case p.SleepHours < 7:
		priority := PriorityMedium
		if p.SleepHours < 6 {
			priority = PriorityHigh
		}
		recs = append(recs, Recommendation{
			Category: "Sleep Optimization",
			Priority: priority,
			Title:    "Improve Sleep Quality",
			Message:  fmt.Sprintf("Your sleep duration (%.1fh) is below optimal.", p.SleepHours),
			Actions: []string{
				"Aim for 7-9 hours of sleep per night",
				"Create a consistent bedtime routine",
				"Avoid screens 1 hour before bed",
				"Keep your bedroom cool and dark",
			},
			Impact: "High impact on happiness and stress reduction",
		})
	case p.SleepHours > 9:
		recs = append(recs, Recommendation{
			Category: "Sleep Balance",
			Priority: PriorityLow,
			Title:    "Optimize Sleep Duration",
			Message:  fmt.Sprintf("You're getting %.1fh of sleep, which may be excessive.", p.SleepHours),
			Actions: []string{
				"Try gradually reducing sleep to 7-8 hours",
				"Ensure sleep quality over quantity",
				"Check for underlying health issues",
			},
			Impact: "Moderate impact on energy levels",
		})
	}

	if p.WorkHoursPerWeek > 50 {
		priority := PriorityMedium
		if p.WorkHoursPerWeek > 60 {
			priority = PriorityHigh
		}
		recs = append(recs, Recommendation{
			Category: "Work-Life Balance",
			Priority: priority,
			Title:    "Manage Work Hours",
			Message:  fmt.Sprintf("High work hours (%dh/week) may increase burnout risk.", p.WorkHoursPerWeek),
			Actions: []string{
				"Set clear work boundaries",
				"Take regular breaks every 90 minutes",
				"Practice saying 'no' to non-essential tasks",
				"Consider delegating responsibilities",
			},
			Impact: "Critical for preventing burnout",
		})
	}

	if p.ScreenTimePerDay > 6 {
		recs = append(recs, Recommendation{
			Category: "Digital Wellness",
			Priority: PriorityMedium,
			Title:    "Reduce Screen Time",
			Message:  fmt.Sprintf("Screen time (%.1fh/day) is above recommended levels.", p.ScreenTimePerDay),
			Actions: []string{
				"Follow the 20-20-20 rule (every 20 min, look 20 feet away for 20 sec)",
				"Use app timers to limit social media",
				"Implement screen-free zones in your home",
				"Try digital detox periods",
			},
			Impact: "Reduces eye strain and improves focus",
		})
	}

	if p.SocialInteractionScore < 5 {
		recs = append(recs, Recommendation{
			Category: "Social Connection",
			Priority: PriorityMedium,
			Title:    "Enhance Social Connections",
			Message:  fmt.Sprintf("Social interaction score (%d/10) could be improved.", p.SocialInteractionScore),
			Actions: []string{
				"Schedule regular meetups with friends",
				"Join clubs or groups with similar interests",
				"Practice active listening in conversations",
				"Consider volunteering in your community",
			},
			Impact: "Significant boost to mental health and happiness",
		})
	}

	switch p.ExerciseLevel {
	case ExerciseLow:
		recs = append(recs, Recommendation{
			Category: "Physical Activity",
			Priority: PriorityHigh,
			Title:    "Increase Physical Activity",
			Message:  "Regular exercise can significantly improve mood and reduce stress levels.",
			Actions: []string{
				"Start with 15-20 minutes of walking daily",
				"Try bodyweight exercises at home",
				"Find an activity you enjoy (dancing, swimming, cycling)",
				"Gradually increase intensity and duration",
			},
			Impact: "Powerful mood booster and stress reliever",
		})
	case ExerciseModerate:
		recs = append(recs, Recommendation{
			Category: "Fitness Enhancement",
			Priority: PriorityLow,
			Title:    "Optimize Your Fitness Routine",
			Message:  "You're doing well! Consider enhancing your routine.",
			Actions: []string{
				"Add strength training 2-3 times per week",
				"Try high-intensity interval training (HIIT)",
				"Include flexibility and balance exercises",
				"Set new fitness goals to stay motivated",
			},
			Impact: "Further improvements in energy and mood",
		})
	}

	if p.DietType == JunkFood {
		recs = append(recs, Recommendation{
			Category: "Nutrition",
			Priority: PriorityHigh,
			Title:    "Improve Nutrition",
			Message:  "Diet significantly impacts mood and energy levels.",
			Actions: []string{
				"Gradually replace processed foods with whole foods",
				"Include more fruits and vegetables",
				"Stay hydrated with 8 glasses of water daily",
				"Plan meals in advance to avoid impulsive choices",
			},
			Impact: "Major improvement in energy and mental clarity",
		})
	}

	if p.MentalHealthCondition != "" && p.MentalHealthCondition != NoCondition {
		recs = append(recs, Recommendation{
			Category: "Mental Health Support",
			Priority: PriorityHigh,
			Title:    "Professional Support",
			Message:  fmt.Sprintf("Managing %s requires ongoing care.", strings.ToLower(p.MentalHealthCondition)),
			Actions: []string{
				"Continue regular therapy or counseling sessions",
				"Practice mindfulness and meditation",
				"Build a strong support network",
				"Consider stress-reduction techniques like yoga",
			},
			Impact: "Essential for long-term mental wellness",
		})
	}

	if pred.Stress > 6 {
		recs = append(recs, Recommendation{
			Category: "Stress Management",
			Priority: PriorityHigh,
			Title:    "Reduce Stress Levels",
			Message:  "Your stress levels are elevated and need attention.",
			Actions: []string{
				"Practice deep breathing exercises",
				"Try progressive muscle relaxation",
				"Engage in hobbies you enjoy",
				"Consider meditation or yoga classes",
			},
			Impact: "Immediate stress relief and better coping",
		})
	}

	if pred.Happiness < 6 {
		recs = append(recs, Recommendation{
			Category: "Happiness Boost",
			Priority: PriorityMedium,
			Title:    "Enhance Well-being",
			Message:  "Let's work on boosting your happiness levels.",
			Actions: []string{
				"Practice gratitude journaling",
				"Engage in activities that bring you joy",
				"Spend time in nature",
				"Connect with positive, supportive people",
			},
			Impact: "Gradual improvement in overall life satisfaction",
		})
	}

	if len(recs) == 0 {
		recs = append(recs, Recommendation{
			Category: "Wellness Maintenance",
			Priority: PriorityLow,
			Title:    "Maintain Your Great Habits",
			Message:  "Your lifestyle appears well-balanced! Keep up the excellent work.",
			Actions: []string{
				"Continue your current healthy routines",
				"Set new wellness goals to stay motivated",
				"Share your healthy habits with others",
				"Regular check-ins with your wellness progress",
			},
			Impact: "Sustained long-term health and happiness",
		})
	}

	return recs
}

// SortByPriority returns a copy ordered high, medium, low. Ties keep rule order.
func SortByPriority(recs []Recommendation) []Recommendation {
	out := make([]Recommendation, len(recs))
	copy(out, recs)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority.Rank() < out[j].Priority.Rank()
	})
	return out
}
