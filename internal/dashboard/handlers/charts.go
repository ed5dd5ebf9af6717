// internal/dashboard/handlers/charts.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/FairForge/lifesync/internal/charts"
	"github.com/FairForge/lifesync/internal/dataset"
)

type chartSpec struct {
	Title  string
	column string
	pie    bool
}

func (c chartSpec) render(ds *dataset.Dataset, selected []dataset.Record, r *http.Request) ([]byte, error) {
	col := c.column
	if col == "" {
		col = r.URL.Query().Get("column")
	}
	bins, _ := strconv.Atoi(r.URL.Query().Get("bins"))
	if bins <= 0 {
		bins = dataset.DefaultBins
	}

	d, err := ds.Distribution(selected, col, bins)
	if err != nil {
		return nil, err
	}
	if c.pie {
		return charts.Pie(d)
	}
	return charts.Distribution(d)
}

// namedCharts are the dashboard panels. "distribution" and "pie" take
// the column from the query.
var namedCharts = map[string]chartSpec{
	"happiness":    {Title: "Happiness Score Distribution", column: dataset.ColHappiness},
	"stress":       {Title: "Stress Level Distribution", column: dataset.ColStress},
	"sleep":        {Title: "Sleep Hours Distribution", column: dataset.ColSleep},
	"exercise":     {Title: "Exercise Level Breakdown", column: dataset.ColExercise, pie: true},
	"diet":         {Title: "Diet Type Distribution", column: dataset.ColDiet},
	"country":      {Title: "Entries by Country", column: dataset.ColCountry},
	"distribution": {Title: "Distribution"},
	"pie":          {Title: "Breakdown", pie: true},
}

// dashboardCharts is the panel order on the home page.
var dashboardCharts = []string{"happiness", "stress", "sleep", "exercise", "diet", "country"}
