// internal/wellness/profile.go
package wellness

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// Categorical values accepted on the simulator form.
var (
	Genders             = []string{"Female", "Male", "Other"}
	Countries           = []string{"USA", "Canada", "Australia", "Japan", "India", "Germany", "Brazil"}
	ExerciseLevels      = []string{"Low", "Moderate", "High"}
	DietTypes           = []string{"Balanced", "Vegetarian", "Vegan", "Keto", "Junk Food"}
	MentalHealthOptions = []string{"None", "Anxiety", "Depression", "PTSD", "Bipolar"}
)

// Exercise levels
const (
	ExerciseLow      = "Low"
	ExerciseModerate = "Moderate"
	ExerciseHigh     = "High"
)

// NoCondition is the mental health value for "no reported condition".
const NoCondition = "None"

// JunkFood is the diet value that triggers the nutrition recommendation.
const JunkFood = "Junk Food"

// Input bounds
const (
	MinAge          = 18
	MaxAge          = 80
	MinSleepHours   = 3.0
	MaxSleepHours   = 12.0
	MinWorkHours    = 0
	MaxWorkHours    = 80
	MinScreenTime   = 0.0
	MaxScreenTime   = 16.0
	MinSocialScore  = 1
	MaxSocialScore  = 10
	maxNameLength   = 120
	defaultAge      = 30
	defaultSleep    = 7.5
	defaultWork     = 40
	defaultScreen   = 4.0
	defaultSocial   = 6
	defaultCountry  = "USA"
	defaultGender   = "Female"
	defaultDietType = "Balanced"
)

// ErrInvalidProfile is returned when a profile fails validation.
var ErrInvalidProfile = errors.New("wellness: invalid profile")

// Profile holds the lifestyle inputs for one simulation. It is passed by
// value and never mutated after validation.
type Profile struct {
	Name                   string  `json:"name"`
	Age                    int     `json:"age"`
	Gender                 string  `json:"gender"`
	Country                string  `json:"country"`
	ExerciseLevel          string  `json:"exercise_level"`
	DietType               string  `json:"diet_type"`
	MentalHealthCondition  string  `json:"mental_health_condition"`
	SleepHours             float64 `json:"sleep_hours"`
	WorkHoursPerWeek       int     `json:"work_hours_per_week"`
	ScreenTimePerDay       float64 `json:"screen_time_per_day"`
	SocialInteractionScore int     `json:"social_interaction_score"`
}

// DefaultProfile returns the values the simulator form starts with.
func DefaultProfile() Profile {
	return Profile{
		Age:                    defaultAge,
		Gender:                 defaultGender,
		Country:                defaultCountry,
		ExerciseLevel:          ExerciseModerate,
		DietType:               defaultDietType,
		MentalHealthCondition:  NoCondition,
		SleepHours:             defaultSleep,
		WorkHoursPerWeek:       defaultWork,
		ScreenTimePerDay:       defaultScreen,
		SocialInteractionScore: defaultSocial,
	}
}

// Normalized returns a copy with surrounding whitespace trimmed and an empty
// mental health condition replaced by NoCondition.
func (p Profile) Normalized() Profile {
	p.Name = strings.TrimSpace(p.Name)
	p.Gender = strings.TrimSpace(p.Gender)
	p.Country = strings.TrimSpace(p.Country)
	p.ExerciseLevel = strings.TrimSpace(p.ExerciseLevel)
	p.DietType = strings.TrimSpace(p.DietType)
	p.MentalHealthCondition = strings.TrimSpace(p.MentalHealthCondition)
	if p.MentalHealthCondition == "" {
		p.MentalHealthCondition = NoCondition
	}
	return p
}

// Validate checks ranges and enumerations.
func (p Profile) Validate() error {
	if len(p.Name) > maxNameLength {
		return fmt.Errorf("%w: name longer than %d characters", ErrInvalidProfile, maxNameLength)
	}
	// History rows must stay on one physical line.
	if strings.IndexFunc(p.Name, unicode.IsControl) >= 0 {
		return fmt.Errorf("%w: name contains control characters", ErrInvalidProfile)
	}
	if p.Age < MinAge || p.Age > MaxAge {
		return fmt.Errorf("%w: age %d outside [%d, %d]", ErrInvalidProfile, p.Age, MinAge, MaxAge)
	}
	if p.SleepHours < MinSleepHours || p.SleepHours > MaxSleepHours {
		return fmt.Errorf("%w: sleep hours %.1f outside [%.0f, %.0f]", ErrInvalidProfile, p.SleepHours, MinSleepHours, MaxSleepHours)
	}
	if p.WorkHoursPerWeek < MinWorkHours || p.WorkHoursPerWeek > MaxWorkHours {
		return fmt.Errorf("%w: work hours %d outside [%d, %d]", ErrInvalidProfile, p.WorkHoursPerWeek, MinWorkHours, MaxWorkHours)
	}
	if p.ScreenTimePerDay < MinScreenTime || p.ScreenTimePerDay > MaxScreenTime {
		return fmt.Errorf("%w: screen time %.1f outside [%.0f, %.0f]", ErrInvalidProfile, p.ScreenTimePerDay, MinScreenTime, MaxScreenTime)
	}
	if p.SocialInteractionScore < MinSocialScore || p.SocialInteractionScore > MaxSocialScore {
		return fmt.Errorf("%w: social interaction score %d outside [%d, %d]", ErrInvalidProfile, p.SocialInteractionScore, MinSocialScore, MaxSocialScore)
	}

	checks := []struct {
		field   string
		value   string
		allowed []string
	}{
		{"gender", p.Gender, Genders},
		{"country", p.Country, Countries},
		{"exercise level", p.ExerciseLevel, ExerciseLevels},
		{"diet type", p.DietType, DietTypes},
		{"mental health condition", p.MentalHealthCondition, MentalHealthOptions},
	}
	for _, c := range checks {
		if !contains(c.allowed, c.value) {
			return fmt.Errorf("%w: %s %q not one of %v", ErrInvalidProfile, c.field, c.value, c.allowed)
		}
	}

	return nil
}

// DisplayName returns the name or "Anonymous".
func (p Profile) DisplayName() string {
	if p.Name == "" {
		return "Anonymous"
	}
	return p.Name
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
