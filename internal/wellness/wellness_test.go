// internal/wellness/wellness_test.go
package wellness

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func balancedProfile() Profile {
	p := DefaultProfile()
	p.ExerciseLevel = ExerciseHigh
	p.SleepHours = 8
	p.ScreenTimePerDay = 3
	p.SocialInteractionScore = 7
	return p
}

func TestProfile_Validate(t *testing.T) {
	t.Run("default profile is valid", func(t *testing.T) {
		assert.NoError(t, DefaultProfile().Validate())
	})

	tests := []struct {
		name   string
		mutate func(p *Profile)
		field  string
	}{
		{"age too low", func(p *Profile) { p.Age = 17 }, "age"},
		{"age too high", func(p *Profile) { p.Age = 81 }, "age"},
		{"sleep too low", func(p *Profile) { p.SleepHours = 2.5 }, "sleep"},
		{"work too high", func(p *Profile) { p.WorkHoursPerWeek = 81 }, "work"},
		{"screen too high", func(p *Profile) { p.ScreenTimePerDay = 16.5 }, "screen"},
		{"social zero", func(p *Profile) { p.SocialInteractionScore = 0 }, "social"},
		{"unknown gender", func(p *Profile) { p.Gender = "Unknown" }, "gender"},
		{"unknown country", func(p *Profile) { p.Country = "France" }, "country"},
		{"unknown diet", func(p *Profile) { p.DietType = "Paleo" }, "diet"},
		{"newline in name", func(p *Profile) { p.Name = "Ada\nLovelace" }, "name"},
		{"carriage return in name", func(p *Profile) { p.Name = "Ada\rLovelace" }, "name"},
		{"tab in name", func(p *Profile) { p.Name = "Ada\tLovelace" }, "name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultProfile()
			tt.mutate(&p)
			err := p.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidProfile)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestProfile_Normalized(t *testing.T) {
	p := Profile{Name: "  Ada  ", MentalHealthCondition: ""}.Normalized()
	assert.Equal(t, "Ada", p.Name)
	assert.Equal(t, NoCondition, p.MentalHealthCondition)
	assert.Equal(t, "Anonymous", Profile{}.DisplayName())
}

func TestBurnoutRisk(t *testing.T) {
	t.Run("weighted formula", func(t *testing.T) {
		p := Profile{WorkHoursPerWeek: 40, ScreenTimePerDay: 4, SleepHours: 7.5, SocialInteractionScore: 6}
		assert.Equal(t, 18.1, BurnoutRisk(p))
	})

	t.Run("clamps to upper bound", func(t *testing.T) {
		p := Profile{WorkHoursPerWeek: 300, ScreenTimePerDay: 16, SleepHours: 3, SocialInteractionScore: 1}
		assert.Equal(t, MaxBurnout, BurnoutRisk(p))
	})

	t.Run("clamps to zero", func(t *testing.T) {
		p := Profile{WorkHoursPerWeek: 0, ScreenTimePerDay: 0, SleepHours: 12, SocialInteractionScore: 10}
		assert.Equal(t, 0.0, BurnoutRisk(p))
	})
}

func TestRawRescaling(t *testing.T) {
	tests := []struct {
		name string
		fn   func(float64) float64
		raw  float64
		want float64
	}{
		{"stress low category", StressFromRaw, 1, 0},
		{"stress middle category", StressFromRaw, 2, 5},
		{"stress high category", StressFromRaw, 3, 10},
		{"stress below scale", StressFromRaw, 0, 0},
		{"stress above scale", StressFromRaw, 4, 10},
		{"stress rounds to two decimals", StressFromRaw, 1.8333, 4.17},
		{"happiness rounds", HappinessFromRaw, 6.66, 6.7},
		{"happiness clamps high", HappinessFromRaw, 11.3, 10},
		{"happiness clamps low", HappinessFromRaw, -1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.fn(tt.raw))
		})
	}
}

func TestProject(t *testing.T) {
	t.Run("drifts from current values", func(t *testing.T) {
		f := Project(7.0, 4.0, 30.0)
		require.Len(t, f, len(Horizons))

		assert.Equal(t, []float64{7.0, 7.0, 6.9, 6.7, 6.4}, f.Series(MetricHappiness))
		assert.Equal(t, []float64{4.0, 4.1, 4.2, 4.4, 4.7}, f.Series(MetricStress))
		assert.Equal(t, []float64{30.0, 32.0, 33.6, 39.0, 46.0}, f.Series(MetricBurnout))
		assert.Equal(t, []string{"Current", "3 Days", "1 Week", "1 Month", "3 Months"}, f.Labels())
	})

	t.Run("current horizon equals rounded seeds", func(t *testing.T) {
		f := Project(6.44, 3.26, 41.25)
		cur, ok := f.At(HorizonCurrent)
		require.True(t, ok)
		assert.Equal(t, 6.4, cur.Happiness)
		assert.Equal(t, 3.3, cur.Stress)
	})

	t.Run("monotonic over horizons", func(t *testing.T) {
		for _, seeds := range [][3]float64{{0.3, 9.9, 99}, {10, 0, 0}, {5, 5, 50}} {
			f := Project(seeds[0], seeds[1], seeds[2])
			for i := 1; i < len(f); i++ {
				assert.LessOrEqual(t, f[i].Happiness, f[i-1].Happiness)
				assert.GreaterOrEqual(t, f[i].Stress, f[i-1].Stress)
				assert.GreaterOrEqual(t, f[i].BurnoutRisk, f[i-1].BurnoutRisk)
			}
		}
	})

	t.Run("clamps at bounds", func(t *testing.T) {
		f := Project(0.3, 9.9, 99)
		last, _ := f.At(HorizonThreeMths)
		assert.Equal(t, 0.0, last.Happiness)
		assert.Equal(t, 10.0, last.Stress)
		assert.Equal(t, 100.0, last.BurnoutRisk)
	})

	t.Run("invalid seeds use defaults", func(t *testing.T) {
		f := Project(math.NaN(), ParseSeed("high"), math.Inf(1))
		cur, _ := f.At(HorizonCurrent)
		assert.Equal(t, DefaultHappiness, cur.Happiness)
		assert.Equal(t, DefaultStress, cur.Stress)
		assert.Equal(t, DefaultBurnout, cur.BurnoutRisk)
	})

	t.Run("parses numeric seeds", func(t *testing.T) {
		assert.Equal(t, 6.5, ParseSeed(" 6.5 "))
		assert.True(t, math.IsNaN(ParseSeed("")))
	})
}

func TestInterpret(t *testing.T) {
	tests := []struct {
		metric Metric
		value  float64
		want   string
	}{
		{MetricHappiness, 8, "Excellent"},
		{MetricHappiness, 7.99, "Good"},
		{MetricHappiness, 6, "Good"},
		{MetricHappiness, 4, "Moderate"},
		{MetricHappiness, 2, "Low"},
		{MetricHappiness, 1.9, "Very Low"},
		{MetricStress, 3, "Low"},
		{MetricStress, 3.01, "Moderate"},
		{MetricStress, 6, "Moderate"},
		{MetricStress, 6.01, "High"},
		{MetricBurnout, 30, "Low Risk"},
		{MetricBurnout, 60, "Moderate Risk"},
		{MetricBurnout, 60.1, "High Risk"},
	}

	for _, tt := range tests {
		t.Run(string(tt.metric), func(t *testing.T) {
			got := Interpret(tt.metric, tt.value)
			assert.Equal(t, tt.want, got.Label)
			assert.Contains(t, got.Description, tt.want)
		})
	}
}

func TestRecommend(t *testing.T) {
	t.Run("never empty", func(t *testing.T) {
		recs := Recommend(balancedProfile(), Prediction{Happiness: 7, Stress: 3, BurnoutRisk: 20})
		require.Len(t, recs, 1)
		assert.Equal(t, "Maintain Your Great Habits", recs[0].Title)
		assert.Equal(t, PriorityLow, recs[0].Priority)
	})

	t.Run("overworked short sleeper", func(t *testing.T) {
		p := balancedProfile()
		p.SleepHours = 5
		p.WorkHoursPerWeek = 65
		p.ScreenTimePerDay = 9
		p.SocialInteractionScore = 2

		recs := Recommend(p, Prediction{Happiness: 7, Stress: 3})
		byCategory := map[string]Recommendation{}
		for _, r := range recs {
			byCategory[r.Category] = r
			assert.GreaterOrEqual(t, len(r.Actions), 3)
		}

		require.Contains(t, byCategory, "Sleep Optimization")
		require.Contains(t, byCategory, "Work-Life Balance")
		assert.Equal(t, PriorityHigh, byCategory["Sleep Optimization"].Priority)
		assert.Equal(t, PriorityHigh, byCategory["Work-Life Balance"].Priority)
		assert.Contains(t, byCategory, "Digital Wellness")
		assert.Contains(t, byCategory, "Social Connection")
		assert.Equal(t, "Your sleep duration (5.0h) is below optimal.", byCategory["Sleep Optimization"].Message)
	})

	t.Run("medium bands", func(t *testing.T) {
		p := balancedProfile()
		p.SleepHours = 6.5
		p.WorkHoursPerWeek = 55
		recs := Recommend(p, Prediction{Happiness: 7, Stress: 3})
		require.Len(t, recs, 2)
		assert.Equal(t, PriorityMedium, recs[0].Priority)
		assert.Equal(t, PriorityMedium, recs[1].Priority)
	})

	t.Run("prediction driven rules", func(t *testing.T) {
		p := balancedProfile()
		p.MentalHealthCondition = "PTSD"
		recs := Recommend(p, Prediction{Happiness: 4, Stress: 7})
		titles := make([]string, 0, len(recs))
		for _, r := range recs {
			titles = append(titles, r.Title)
		}
		assert.Equal(t, []string{"Professional Support", "Reduce Stress Levels", "Enhance Well-being"}, titles)
		assert.Equal(t, "Managing ptsd requires ongoing care.", recs[0].Message)
	})
}

func TestSortByPriority(t *testing.T) {
	recs := []Recommendation{
		{Title: "a", Priority: PriorityLow},
		{Title: "b", Priority: PriorityHigh},
		{Title: "c", Priority: PriorityMedium},
		{Title: "d", Priority: PriorityHigh},
	}

	sorted := SortByPriority(recs)

	var titles []string
	for _, r := range sorted {
		titles = append(titles, r.Title)
	}
	assert.Equal(t, []string{"b", "d", "c", "a"}, titles)
	assert.Equal(t, "a", recs[0].Title, "input left untouched")
}

func TestSummarize(t *testing.T) {
	s := Summarize(Prediction{Happiness: 7, Stress: 3, BurnoutRisk: 20})
	assert.InDelta(t, 7.333, s.OverallScore, 0.001)
	assert.Equal(t, "good", s.Status)
	assert.Empty(t, s.FocusAreas)

	s = Summarize(Prediction{Happiness: 3, Stress: 8, BurnoutRisk: 70})
	assert.Equal(t, "concerning", s.Status)
	assert.Equal(t, []string{"happiness improvement", "stress management", "burnout prevention"}, s.FocusAreas)
}

func TestLifestyleImpact(t *testing.T) {
	p := balancedProfile()
	p.WorkHoursPerWeek = 50
	p.ScreenTimePerDay = 8

	factors := LifestyleImpact(p)
	require.Len(t, factors, 5)
	assert.Equal(t, "optimal", factors[0].Status)
	assert.Equal(t, "heavy", factors[1].Status)
	assert.Equal(t, "high", factors[2].Status)
	assert.Equal(t, "significant positive", factors[3].Impact)
	assert.Equal(t, "moderate", factors[4].Status)
	assert.Contains(t, factors[1].Text, "(50 hours/week)")
}

func TestKeyInsights(t *testing.T) {
	assert.Len(t, KeyInsights(balancedProfile(), Prediction{Happiness: 8}), 1)

	p := balancedProfile()
	p.SleepHours = 6
	p.WorkHoursPerWeek = 60
	p.ScreenTimePerDay = 8
	p.ExerciseLevel = ExerciseLow
	assert.Len(t, KeyInsights(p, Prediction{Happiness: 8}), 3)
}

func TestDecimal(t *testing.T) {
	assert.Equal(t, "7.0", Decimal(7))
	assert.Equal(t, "7.25", Decimal(7.25))
	assert.Equal(t, "18.1", Decimal(18.1))
	assert.Equal(t, "0.0", Decimal(0))
}
