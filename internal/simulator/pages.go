// internal/simulator/pages.go
package simulator

import (
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/FairForge/lifesync/internal/charts"
	"github.com/FairForge/lifesync/internal/wellness"
)

var pageTemplate = template.Must(template.New("simulator").Funcs(template.FuncMap{
	"decimal": wellness.Decimal,
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>LifeSync Simulator</title></head>
<body>
<nav><a href="/">Dashboard</a> | <a href="/simulator">Simulator</a></nav>
<h1>Lifestyle Simulator</h1>
{{if .Error}}<p class="error">{{.Error}}</p>{{end}}
<form method="post" action="/simulator">
  <label>Name <input name="name" value="{{.Profile.Name}}"></label>
  <label>Age <input type="number" name="age" min="18" max="80" value="{{.Profile.Age}}"></label>
  <label>Gender <select name="gender">{{range .Genders}}<option{{if eq . $.Profile.Gender}} selected{{end}}>{{.}}</option>{{end}}</select></label>
  <label>Country <select name="country">{{range .Countries}}<option{{if eq . $.Profile.Country}} selected{{end}}>{{.}}</option>{{end}}</select></label>
  <label>Exercise Level <select name="exercise_level">{{range .ExerciseLevels}}<option{{if eq . $.Profile.ExerciseLevel}} selected{{end}}>{{.}}</option>{{end}}</select></label>
  <label>Diet Type <select name="diet_type">{{range .DietTypes}}<option{{if eq . $.Profile.DietType}} selected{{end}}>{{.}}</option>{{end}}</select></label>
  <label>Mental Health Condition <select name="mental_health_condition">{{range .MentalHealth}}<option{{if eq . $.Profile.MentalHealthCondition}} selected{{end}}>{{.}}</option>{{end}}</select></label>
  <label>Sleep Hours <input type="number" step="0.5" min="3" max="12" name="sleep_hours" value="{{decimal .Profile.SleepHours}}"></label>
  <label>Work Hours per Week <input type="number" min="0" max="80" name="work_hours_per_week" value="{{.Profile.WorkHoursPerWeek}}"></label>
  <label>Screen Time per Day <input type="number" step="0.5" min="0" max="16" name="screen_time_per_day" value="{{decimal .Profile.ScreenTimePerDay}}"></label>
  <label>Social Interaction Score <input type="number" min="1" max="10" name="social_interaction_score" value="{{.Profile.SocialInteractionScore}}"></label>
  <button type="submit">Predict</button>
</form>
{{with .Result}}
<h2>Results</h2>
<table>
  <tr><th>Metric</th><th>Score</th><th>Interpretation</th></tr>
  <tr><td>Happiness</td><td>{{decimal .Prediction.Happiness}}/10</td><td>{{(index .Interpretations "happiness").Label}}</td></tr>
  <tr><td>Stress Level</td><td>{{decimal .Prediction.Stress}}/10</td><td>{{(index .Interpretations "stress").Label}}</td></tr>
  <tr><td>Burnout Risk</td><td>{{decimal .Prediction.BurnoutRisk}}%</td><td>{{(index .Interpretations "burnout").Label}}</td></tr>
</table>
<p>Overall wellness: {{decimal .Summary.OverallScore}}/10 ({{.Summary.Status}})</p>
<h2>Forecast</h2>
<img src="{{$.ChartURL}}" alt="Wellness forecast" width="800" height="400">
<table>
  <tr><th>Timeframe</th><th>Happiness</th><th>Stress</th><th>Burnout Risk</th></tr>
  {{range .Forecast}}<tr><td>{{.Horizon}}</td><td>{{decimal .Happiness}}</td><td>{{decimal .Stress}}</td><td>{{decimal .BurnoutRisk}}%</td></tr>{{end}}
</table>
<h2>Recommendations</h2>
<ol>
  {{range .Recommendations}}<li><strong>{{.Title}}</strong> ({{.Priority}}): {{.Message}}
    <ul>{{range .Actions}}<li>{{.}}</li>{{end}}</ul><em>{{.Impact}}</em></li>{{end}}
</ol>
<form method="post" action="/simulator/report">
  {{range $k, $v := $.Hidden}}<input type="hidden" name="{{$k}}" value="{{$v}}">{{end}}
  <button type="submit">Download PDF Report</button>
</form>
{{end}}
</body>
</html>
`))

type pageData struct {
	Profile        wellness.Profile
	Result         *Result
	Error          string
	ChartURL       string
	Hidden         map[string]string
	Genders        []string
	Countries      []string
	ExerciseLevels []string
	DietTypes      []string
	MentalHealth   []string
}

func newPageData(p wellness.Profile) pageData {
	return pageData{
		Profile:        p,
		Genders:        wellness.Genders,
		Countries:      wellness.Countries,
		ExerciseLevels: wellness.ExerciseLevels,
		DietTypes:      wellness.DietTypes,
		MentalHealth:   wellness.MentalHealthOptions,
	}
}

// Page renders the empty simulator form.
func (h *Handler) Page(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, newPageData(wellness.DefaultProfile()))
}

// Submit scores the submitted form and renders the results.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	p, err := parseProfileForm(r)
	if err != nil {
		data := newPageData(wellness.DefaultProfile())
		data.Error = err.Error()
		h.render(w, http.StatusBadRequest, data)
		return
	}

	data := newPageData(p)
	res, err := h.service.Predict(r.Context(), p)
	if err != nil {
		data.Error = err.Error()
		h.render(w, statusFor(err), data)
		return
	}

	data.Profile = res.Profile
	data.Result = &res
	data.Hidden = profileFields(res.Profile)
	data.ChartURL = "/simulator/chart.png?" + url.Values{
		"happiness": {wellness.Decimal(res.Prediction.Happiness)},
		"stress":    {wellness.Decimal(res.Prediction.Stress)},
		"burnout":   {wellness.Decimal(res.Prediction.BurnoutRisk)},
	}.Encode()
	h.render(w, http.StatusOK, data)
}

// SubmitReport builds the PDF for a submitted form.
func (h *Handler) SubmitReport(w http.ResponseWriter, r *http.Request) {
	p, err := parseProfileForm(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err)
		return
	}

	gen, err := h.service.Report(r.Context(), p)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondFile(w, gen.Filename, gen.ContentType, gen.Data)
}

// Chart renders the forecast line chart for query seeds.
func (h *Handler) Chart(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	png, err := charts.Forecast(h.service.Forecast(q.Get("happiness"), q.Get("stress"), q.Get("burnout")))
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=300")
	_, _ = w.Write(png)
}

func (h *Handler) render(w http.ResponseWriter, status int, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pageTemplate.Execute(w, data); err != nil {
		h.logger.Error("failed to render simulator page", zap.Error(err))
	}
}

// parseProfileForm reads form values over the form defaults.
func parseProfileForm(r *http.Request) (wellness.Profile, error) {
	if err := r.ParseForm(); err != nil {
		return wellness.Profile{}, fmt.Errorf("%w: %v", wellness.ErrInvalidProfile, err)
	}
	p := wellness.DefaultProfile()

	text := map[string]*string{
		"name":                    &p.Name,
		"gender":                  &p.Gender,
		"country":                 &p.Country,
		"exercise_level":          &p.ExerciseLevel,
		"diet_type":               &p.DietType,
		"mental_health_condition": &p.MentalHealthCondition,
	}
	for field, dst := range text {
		if v, ok := r.PostForm[field]; ok && len(v) > 0 {
			*dst = v[0]
		}
	}

	ints := map[string]*int{
		"age":                      &p.Age,
		"work_hours_per_week":      &p.WorkHoursPerWeek,
		"social_interaction_score": &p.SocialInteractionScore,
	}
	for field, dst := range ints {
		v := strings.TrimSpace(r.PostForm.Get(field))
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return wellness.Profile{}, fmt.Errorf("%w: %s must be a whole number", wellness.ErrInvalidProfile, field)
		}
		*dst = n
	}

	floats := map[string]*float64{
		"sleep_hours":         &p.SleepHours,
		"screen_time_per_day": &p.ScreenTimePerDay,
	}
	for field, dst := range floats {
		v := strings.TrimSpace(r.PostForm.Get(field))
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return wellness.Profile{}, fmt.Errorf("%w: %s must be a number", wellness.ErrInvalidProfile, field)
		}
		*dst = f
	}

	return p, nil
}

func profileFields(p wellness.Profile) map[string]string {
	return map[string]string{
		"name":                     p.Name,
		"age":                      strconv.Itoa(p.Age),
		"gender":                   p.Gender,
		"country":                  p.Country,
		"exercise_level":           p.ExerciseLevel,
		"diet_type":                p.DietType,
		"mental_health_condition":  p.MentalHealthCondition,
		"sleep_hours":              wellness.Decimal(p.SleepHours),
		"work_hours_per_week":      strconv.Itoa(p.WorkHoursPerWeek),
		"screen_time_per_day":      wellness.Decimal(p.ScreenTimePerDay),
		"social_interaction_score": strconv.Itoa(p.SocialInteractionScore),
	}
}
