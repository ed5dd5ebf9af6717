// internal/validation/routes.go
package validation

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"

	"github.com/FairForge/lifesync/internal/wellness"
)

// MaxProfileBody caps simulator request bodies.
const MaxProfileBody = 64 * 1024

// ProfileSchemaDocument describes a simulator profile. Every field is
// optional; omitted fields keep the form defaults.
func ProfileSchemaDocument() map[string]interface{} {
	return map[string]interface{}{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]interface{}{
			"name":                     map[string]interface{}{"type": "string", "maxLength": 120},
			"age":                      intRange(wellness.MinAge, wellness.MaxAge),
			"gender":                   enum(wellness.Genders),
			"country":                  enum(wellness.Countries),
			"exercise_level":           enum(wellness.ExerciseLevels),
			"diet_type":                enum(wellness.DietTypes),
			"mental_health_condition":  enum(append([]string{""}, wellness.MentalHealthOptions...)),
			"sleep_hours":              numRange(wellness.MinSleepHours, wellness.MaxSleepHours),
			"work_hours_per_week":      intRange(wellness.MinWorkHours, wellness.MaxWorkHours),
			"screen_time_per_day":      numRange(wellness.MinScreenTime, wellness.MaxScreenTime),
			"social_interaction_score": intRange(wellness.MinSocialScore, wellness.MaxSocialScore),
		},
	}
}

func enum(values []string) map[string]interface{} {
	return map[string]interface{}{"type": "string", "enum": values}
}

func intRange(min, max int) map[string]interface{} {
	return map[string]interface{}{"type": "integer", "minimum": min, "maximum": max}
}

func numRange(min, max float64) map[string]interface{} {
	return map[string]interface{}{"type": "number", "minimum": min, "maximum": max}
}

// NewProfileSchema compiles the profile schema.
func NewProfileSchema() (*gojsonschema.Schema, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(ProfileSchemaDocument()))
	if err != nil {
		return nil, fmt.Errorf("compile profile schema: %w", err)
	}
	return schema, nil
}

// ProfileRules validates JSON profile submissions.
func ProfileRules(schema *gojsonschema.Schema) *Rules {
	return &Rules{
		ContentTypes: []string{"application/json"},
		MaxBodySize:  MaxProfileBody,
		JSONSchema:   schema,
	}
}

// ForecastRules validates forecast seeds. Seeds are free text on purpose:
// non-numeric values fall back to defaults downstream.
var ForecastRules = &Rules{
	Query: QueryRules{
		Patterns: map[string]string{
			"happiness": `^.{0,32}$`,
			"stress":    `^.{0,32}$`,
			"burnout":   `^.{0,32}$`,
		},
	},
}

// FilterRules validates dashboard filter parameters.
var FilterRules = &Rules{
	Query: QueryRules{
		Types: map[string]ParamType{
			"age_min":   ParamTypeInt,
			"age_max":   ParamTypeInt,
			"sleep_min": ParamTypeFloat,
			"sleep_max": ParamTypeFloat,
			"top":       ParamTypeInt,
		},
		Ranges: map[string]Range{
			"age_min":   {Min: 0, Max: 150},
			"age_max":   {Min: 0, Max: 150},
			"sleep_min": {Min: 0, Max: 24},
			"sleep_max": {Min: 0, Max: 24},
			"top":       {Min: 1, Max: 50},
		},
	},
}

// HistoryRules validates history listing parameters.
var HistoryRules = &Rules{
	Query: QueryRules{
		Types:  map[string]ParamType{"limit": ParamTypeInt},
		Ranges: map[string]Range{"limit": {Min: 1, Max: 1000}},
	},
}
