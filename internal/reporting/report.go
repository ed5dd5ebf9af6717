// internal/reporting/report.go
package reporting

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/FairForge/lifesync/internal/charts"
	"github.com/FairForge/lifesync/internal/wellness"
)

// Export formats
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatPDF  = "pdf"
)

// Filename prefixes
const (
	DefaultPrefix  = "LifeSync_Wellness_Report"
	ForecastPrefix = "LifeSync_Forecast"
)

const timestampLayout = "20060102_150405"

// ErrBuildFailed wraps any failure while assembling a document.
var ErrBuildFailed = errors.New("report: build failed")

// Input is everything needed to render one report. It is built once per
// simulation and passed explicitly to every export.
type Input struct {
	ID              string                    `json:"id"`
	Profile         wellness.Profile          `json:"profile"`
	Prediction      wellness.Prediction       `json:"prediction"`
	Forecast        wellness.Forecast         `json:"forecast"`
	Recommendations []wellness.Recommendation `json:"recommendations"`
	GeneratedAt     time.Time                 `json:"generated_at"`
}

// NewInput derives forecast and recommendations from a scored profile.
func NewInput(p wellness.Profile, pred wellness.Prediction, at time.Time) Input {
	return Input{
		ID:              uuid.New().String(),
		Profile:         p,
		Prediction:      pred,
		Forecast:        wellness.ProjectPrediction(pred),
		Recommendations: wellness.Recommend(p, pred),
		GeneratedAt:     at,
	}
}

// Validate checks the input is complete.
func (in *Input) Validate() error {
	if len(in.Forecast) == 0 {
		return errors.New("report: forecast is required")
	}
	if len(in.Recommendations) == 0 {
		return errors.New("report: at least one recommendation is required")
	}
	if in.GeneratedAt.IsZero() {
		return errors.New("report: generation time is required")
	}
	return nil
}

// Report is the structured form used by the JSON export.
type Report struct {
	ID              string                     `json:"id"`
	Name            string                     `json:"name"`
	CreatedAt       time.Time                  `json:"created_at"`
	Profile         wellness.Profile           `json:"profile"`
	Prediction      wellness.Prediction        `json:"prediction"`
	Summary         wellness.Summary           `json:"summary"`
	Forecast        wellness.Forecast          `json:"forecast"`
	Recommendations []wellness.Recommendation  `json:"recommendations"`
	LifestyleImpact []wellness.LifestyleFactor `json:"lifestyle_impact"`
	KeyInsights     []string                   `json:"key_insights"`
}

// Report expands the input into every section of the document.
func (in Input) Report() *Report {
	return &Report{
		ID:              in.ID,
		Name:            in.Profile.DisplayName(),
		CreatedAt:       in.GeneratedAt,
		Profile:         in.Profile,
		Prediction:      in.Prediction,
		Summary:         wellness.Summarize(in.Prediction),
		Forecast:        in.Forecast,
		Recommendations: wellness.SortByPriority(in.Recommendations),
		LifestyleImpact: wellness.LifestyleImpact(in.Profile),
		KeyInsights:     wellness.KeyInsights(in.Profile, in.Prediction),
	}
}

// ChartFunc renders the forecast chart embedded in the PDF.
type ChartFunc func(wellness.Forecast) ([]byte, error)

// Option configures a Generator.
type Option func(*Generator)

// WithChart replaces the forecast chart renderer.
func WithChart(fn ChartFunc) Option {
	return func(g *Generator) {
		g.chart = fn
	}
}

// WithPrefix sets the PDF filename prefix.
func WithPrefix(prefix string) Option {
	return func(g *Generator) {
		if prefix != "" {
			g.prefix = prefix
		}
	}
}

// Generator assembles report documents.
type Generator struct {
	logger *zap.Logger
	chart  ChartFunc
	prefix string
}

// NewGenerator creates a report generator.
func NewGenerator(logger *zap.Logger, opts ...Option) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	g := &Generator{
		logger: logger,
		chart:  charts.Forecast,
		prefix: DefaultPrefix,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Export renders the input in the requested format.
func (g *Generator) Export(ctx context.Context, in Input, format string) ([]byte, error) {
	switch format {
	case FormatJSON:
		return json.MarshalIndent(in.Report(), "", "  ")
	case FormatCSV:
		return ForecastCSV(in.Profile, in.Prediction, in.Forecast, in.GeneratedAt)
	case FormatPDF:
		return g.Build(ctx, in)
	default:
		return nil, fmt.Errorf("report: unsupported format %q", format)
	}
}

// Filename returns the download name for an export format.
func (g *Generator) Filename(in Input, format string) string {
	switch format {
	case FormatCSV:
		return filename(ForecastPrefix, in.Profile.Name, in.GeneratedAt, FormatCSV)
	case FormatJSON:
		return filename(g.prefix, in.Profile.Name, in.GeneratedAt, FormatJSON)
	default:
		return Filename(g.prefix, in.Profile.Name, in.GeneratedAt)
	}
}

// ContentType returns the MIME type of an export format.
func ContentType(format string) string {
	switch format {
	case FormatCSV:
		return "text/csv"
	case FormatPDF:
		return "application/pdf"
	default:
		return "application/json"
	}
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_-]`)

// Filename builds <prefix>_<name>_<YYYYMMDD_HHMMSS>.pdf. Spaces in the name
// become underscores, other unsafe characters are dropped, and an empty
// name becomes Anonymous.
func Filename(prefix, name string, t time.Time) string {
	return filename(prefix, name, t, FormatPDF)
}

func filename(prefix, name string, t time.Time, ext string) string {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	safe := strings.ReplaceAll(strings.TrimSpace(name), " ", "_")
	safe = unsafeFilenameChars.ReplaceAllString(safe, "")
	if safe == "" {
		safe = "Anonymous"
	}
	return fmt.Sprintf("%s_%s_%s.%s", prefix, safe, t.Format(timestampLayout), ext)
}
