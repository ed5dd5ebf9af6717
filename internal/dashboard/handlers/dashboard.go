// internal/dashboard/handlers/dashboard.go
package handlers

import (
	"errors"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/FairForge/lifesync/internal/dataset"
)

const dashboardTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8">
    <title>LifeSync Dashboard</title>
    <style>
        body { font-family: sans-serif; margin: 2em; }
        .metrics div { display: inline-block; margin-right: 2em; }
        .charts img { max-width: 48%; }
        .error { color: #c0392b; }
    </style>
</head>
<body>
<nav><a href="/">Dashboard</a> | <a href="/simulator">Simulator</a></nav>
<h1>LifeSync Wellness Dashboard</h1>
{{if .Error}}
<p class="error">{{.Error}}</p>
{{else}}
<form method="get" action="/">
    <label>Country <select name="country" multiple>{{range .Options.Countries}}<option{{if index $.Selected.country .}} selected{{end}}>{{.}}</option>{{end}}</select></label>
    <label>Gender <select name="gender" multiple>{{range .Options.Genders}}<option{{if index $.Selected.gender .}} selected{{end}}>{{.}}</option>{{end}}</select></label>
    <label>Exercise <select name="exercise" multiple>{{range .Options.ExerciseLevels}}<option{{if index $.Selected.exercise .}} selected{{end}}>{{.}}</option>{{end}}</select></label>
    <label>Diet <select name="diet" multiple>{{range .Options.DietTypes}}<option{{if index $.Selected.diet .}} selected{{end}}>{{.}}</option>{{end}}</select></label>
    <label>Mental Health <select name="mh" multiple>{{range .Options.MentalHealth}}<option{{if index $.Selected.mh .}} selected{{end}}>{{.}}</option>{{end}}</select></label>
    <button type="submit">Apply</button>
</form>
<div class="metrics">
    <div><strong>Total Entries</strong><br>{{.Overview.TotalEntries}}</div>
    <div><strong>Selected</strong><br>{{.Overview.SelectedEntries}}</div>
    <div><strong>Avg Happiness</strong><br>{{printf "%.2f" .Overview.AvgHappiness}}/10</div>
    <div><strong>Avg Stress</strong><br>{{printf "%.2f" .Overview.AvgStress}}{{.Overview.StressScale}}</div>
</div>
<h2>Insights</h2>
<ul>{{range .Insights}}<li><strong>{{.Title}}</strong>: {{.Text}}</li>{{end}}</ul>
<h2>Charts</h2>
<div class="charts">
{{range .Charts}}<img src="/api/v1/dashboard/charts/{{.Name}}.png?{{$.Query}}" alt="{{.Title}}">
{{end}}
</div>
<h2>Model Explainability</h2>
<img src="/api/v1/dashboard/charts/importance-happiness.png" alt="Top Features for Happiness">
<img src="/api/v1/dashboard/charts/importance-stress.png" alt="Top Features for Stress">
{{range .Shap}}<figure><img src="/api/v1/dashboard/shap/{{.}}.png?width=600" alt="{{.}}"></figure>{{end}}
<p><a href="/api/v1/dashboard/dataset.csv">Download dataset (CSV)</a></p>
{{end}}
</body>
</html>`

type chartLink struct {
	Name  string
	Title string
}

type dashboardData struct {
	Error    string
	Options  dataset.Options
	Selected map[string]map[string]bool
	Overview dataset.Overview
	Insights []dataset.Insight
	Charts   []chartLink
	Shap     []string
	Query    template.URL
}

// DashboardHandler renders the dashboard home page.
type DashboardHandler struct {
	templates *template.Template
	store     *dataset.Store
	shap      *dataset.Explainability
	logger    *zap.Logger
}

// NewDashboardHandler creates the home page handler.
func NewDashboardHandler(store *dataset.Store, shapDir string, logger *zap.Logger) *DashboardHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	tmpl := template.Must(template.New("dashboard").Option("missingkey=zero").Parse(dashboardTemplate))
	return &DashboardHandler{
		templates: tmpl,
		store:     store,
		shap:      dataset.NewExplainability(shapDir),
		logger:    logger,
	}
}

// RegisterRoutes registers the home page
func (h *DashboardHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Home)
}

// Home renders the filtered dashboard.
func (h *DashboardHandler) Home(w http.ResponseWriter, r *http.Request) {
	data, status := h.build(r)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := h.templates.Execute(w, data); err != nil {
		h.logger.Error("failed to render dashboard", zap.Error(err))
	}
}

func (h *DashboardHandler) build(r *http.Request) (dashboardData, int) {
	ds, err := h.store.Current()
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, dataset.ErrDatasetUnavailable) {
			status = http.StatusServiceUnavailable
		}
		return dashboardData{Error: "Dataset not available: " + err.Error()}, status
	}

	f, err := dataset.FilterFromQuery(r.URL.Query())
	if err != nil {
		return dashboardData{Error: err.Error()}, http.StatusBadRequest
	}
	selected := ds.Apply(f)

	data := dashboardData{
		Options:  ds.Options(),
		Selected: selectedValues(r),
		Overview: ds.Overview(selected),
		Insights: ds.Insights(selected),
		Shap:     h.shap.Available(),
		Query:    template.URL(f.Encode()),
	}
	for _, name := range dashboardCharts {
		data.Charts = append(data.Charts, chartLink{Name: name, Title: namedCharts[name].Title})
	}
	return data, http.StatusOK
}

func selectedValues(r *http.Request) map[string]map[string]bool {
	q := r.URL.Query()
	out := map[string]map[string]bool{}
	for _, key := range []string{dataset.ParamCountry, dataset.ParamGender, dataset.ParamExercise, dataset.ParamDiet, dataset.ParamMH} {
		for _, v := range q[key] {
			if out[key] == nil {
				out[key] = map[string]bool{}
			}
			out[key][v] = true
		}
	}
	return out
}
