// internal/reporting/pdf.go
package reporting

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-pdf/fpdf"
	"go.uber.org/zap"

	"github.com/FairForge/lifesync/internal/wellness"
)

// Layout in millimetres on A4 portrait
const (
	pageMargin  = 25.0
	lineHeight  = 5.5
	cellPadding = 1.5
	gaugeWidth  = 38.0
	gaugeHeight = 4.5
	chartWidth  = 152.0
	chartHeight = 76.0
)

// ChartPlaceholder replaces the forecast chart when it cannot be rendered.
const ChartPlaceholder = "Note: Visualization could not be generated."

const disclaimer = "This report provides insights for personal reflection based on the information you provided. " +
	"It is not a substitute for professional medical advice. The predictions are based on statistical models " +
	"and population data, which may not reflect individual variations. For serious mental health concerns, " +
	"please consult a healthcare professional."

type rgb struct{ r, g, b int }

var (
	darkBlue  = rgb{0, 0, 139}
	lightGrey = rgb{211, 211, 211}
	gridGrey  = rgb{128, 128, 128}
	trackGrey = rgb{233, 236, 239}
	green     = rgb{40, 167, 69}
	amber     = rgb{255, 193, 7}
	red       = rgb{220, 53, 69}
	white     = rgb{255, 255, 255}
	black     = rgb{0, 0, 0}
)

// document wraps fpdf with the report's text styles.
type document struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

// Build assembles the PDF in memory. A chart failure degrades to a note;
// any other failure returns ErrBuildFailed.
func (g *Generator) Build(ctx context.Context, in Input) ([]byte, error) {
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBuildFailed, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBuildFailed, err)
	}

	rep := in.Report()
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)
	pdf.SetTitle("LifeSync Wellness Report", true)
	pdf.SetAuthor("LifeSync", true)
	pdf.SetCreationDate(in.GeneratedAt)

	d := &document{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}

	generated := fmt.Sprintf("Generated on %s", in.GeneratedAt.Format("2006-01-02 at 15:04"))
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Helvetica", "", 8)
		pdf.SetTextColor(gridGrey.r, gridGrey.g, gridGrey.b)
		half := (pageWidth(pdf) - 2*pageMargin) / 2
		pdf.CellFormat(half, 10, d.tr(generated), "", 0, "L", false, 0, "")
		pdf.CellFormat(half, 10, fmt.Sprintf("LifeSync Wellness Report - Page %d", pdf.PageNo()), "", 0, "R", false, 0, "")
	})

	pdf.AddPage()
	d.header(rep)
	d.summary(rep)
	d.personalInfo(rep.Profile)
	d.scores(rep.Prediction)
	d.forecastTable(rep.Forecast)

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBuildFailed, err)
	}
	g.forecastChart(d, in)

	pdf.AddPage()
	d.recommendations(rep.Recommendations)

	pdf.AddPage()
	d.lifestyle(rep.LifestyleImpact)
	d.insights(rep.KeyInsights)
	d.disclaimer()

	if pdf.Err() {
		return nil, fmt.Errorf("%w: %v", ErrBuildFailed, pdf.Error())
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBuildFailed, err)
	}
	return buf.Bytes(), nil
}

func (g *Generator) forecastChart(d *document, in Input) {
	png, err := g.chart(in.Forecast)
	if err == nil {
		d.pdf.Ln(4)
		d.subheading("Wellness Forecast Visualization:")
		name := "forecast-" + in.ID
		d.pdf.RegisterImageOptionsReader(name, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(png))
		if !d.pdf.Err() {
			d.pdf.ImageOptions(name, pageMargin, d.pdf.GetY(), chartWidth, chartHeight, true, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")
			return
		}
		err = d.pdf.Error()
		d.pdf.ClearError()
	}

	g.logger.Warn("forecast chart could not be embedded",
		zap.String("report_id", in.ID),
		zap.Error(err))
	d.pdf.Ln(4)
	d.paragraph(ChartPlaceholder)
}

func (d *document) header(rep *Report) {
	d.pdf.SetFont("Helvetica", "B", 22)
	d.color(black)
	d.pdf.CellFormat(0, 12, d.tr("LifeSync Wellness Report"), "", 1, "C", false, 0, "")
	d.pdf.Ln(6)

	d.pdf.SetFont("Helvetica", "B", 16)
	d.color(darkBlue)
	d.pdf.CellFormat(0, 9, d.tr("Prepared for: "+rep.Name), "", 1, "L", false, 0, "")
	d.body()
	d.pdf.CellFormat(0, lineHeight, d.tr("Date: "+rep.CreatedAt.Format("January 02, 2006")), "", 1, "L", false, 0, "")
	d.pdf.Ln(6)
}

func (d *document) summary(rep *Report) {
	d.subheading("Executive Summary:")
	s := rep.Summary
	p := rep.Prediction
	text := fmt.Sprintf("Based on the information provided, your overall wellness score is %.1f/10, "+
		"which indicates a %s wellness level. Your happiness score is %s/10, "+
		"stress level is %.1f/10, and burnout risk is %s%%. ",
		s.OverallScore, s.Status, wellness.Decimal(p.Happiness), p.Stress, wellness.Decimal(p.BurnoutRisk))
	if len(s.FocusAreas) > 0 {
		text += fmt.Sprintf("This report focuses primarily on %s.", strings.Join(s.FocusAreas, ", "))
	} else {
		text += "You're maintaining good wellness habits - this report offers strategies to sustain your progress."
	}
	d.paragraph(text)
	d.pdf.Ln(6)
}

func (d *document) personalInfo(p wellness.Profile) {
	d.subheading("Personal Information:")
	rows := [][]string{
		{"Age", strconv.Itoa(p.Age)},
		{"Gender", p.Gender},
		{"Country", p.Country},
		{"Sleep Hours", wellness.Decimal(p.SleepHours) + " hours/night"},
		{"Work Hours", strconv.Itoa(p.WorkHoursPerWeek) + " hours/week"},
		{"Screen Time", wellness.Decimal(p.ScreenTimePerDay) + " hours/day"},
		{"Social Interaction", strconv.Itoa(p.SocialInteractionScore) + "/10"},
		{"Exercise Level", p.ExerciseLevel},
		{"Diet Type", p.DietType},
		{"Mental Health Condition", p.MentalHealthCondition},
	}
	widths := []float64{50, 88}
	for _, r := range rows {
		d.row(widths, r, rowStyle{labelColumn: true})
	}
	d.pdf.Ln(6)
}

func (d *document) scores(p wellness.Prediction) {
	d.subheading("Wellness Assessment Results:")
	widths := []float64{32, 22, 42, 64}
	d.row(widths, []string{"Metric", "Score", "Visual", "Interpretation"}, rowStyle{header: true})

	type score struct {
		name   string
		text   string
		value  float64
		max    float64
		metric wellness.Metric
	}
	for _, s := range []score{
		{"Happiness Score", wellness.Decimal(p.Happiness) + "/10", p.Happiness, wellness.MaxHappiness, wellness.MetricHappiness},
		{"Stress Level", fmt.Sprintf("%.2f/10", p.Stress), p.Stress, wellness.MaxStress, wellness.MetricStress},
		{"Burnout Risk", wellness.Decimal(p.BurnoutRisk) + "%", p.BurnoutRisk, wellness.MaxBurnout, wellness.MetricBurnout},
	} {
		interp := wellness.Interpret(s.metric, s.value).Description
		x, y, h := d.row(widths, []string{s.name, s.text, "", interp}, rowStyle{})
		gx := x + widths[0] + widths[1] + (widths[2]-gaugeWidth)/2
		gy := y + (h-gaugeHeight)/2
		d.gauge(gx, gy, s.value, s.max, gaugeColor(s.metric, s.value))
	}
	d.pdf.Ln(6)
}

func (d *document) forecastTable(f wellness.Forecast) {
	d.subheading("Wellness Forecast (If current patterns continue):")
	widths := []float64{38, 30, 30, 40}
	d.row(widths, []string{"Time Period", "Happiness", "Stress", "Burnout Risk"}, rowStyle{header: true})
	for _, pt := range f {
		d.row(widths, []string{
			string(pt.Horizon),
			wellness.Decimal(pt.Happiness) + "/10",
			fmt.Sprintf("%.2f/10", pt.Stress),
			wellness.Decimal(pt.BurnoutRisk) + "%",
		}, rowStyle{})
	}
}

func (d *document) recommendations(recs []wellness.Recommendation) {
	d.subheading("Personalized Recommendations:")
	d.pdf.Ln(2)
	for i, rec := range recs {
		d.subheading(fmt.Sprintf("%d. %s (%s Priority)", i+1, rec.Title, strings.ToUpper(string(rec.Priority))))
		d.italic(rec.Message)
		d.pdf.Ln(2)
		d.paragraph("Suggested Actions:")
		for _, a := range rec.Actions {
			d.bullet(a, 8)
		}
		d.italic("Impact: " + rec.Impact)
		d.pdf.Ln(5)
	}
}

func (d *document) lifestyle(factors []wellness.LifestyleFactor) {
	d.subheading("Lifestyle Impact Analysis:")
	d.pdf.Ln(2)
	d.paragraph("Below is an analysis of how specific lifestyle factors may be affecting your wellness:")
	d.pdf.Ln(4)
	widths := []float64{38, 122}
	for _, f := range factors {
		d.row(widths, []string{f.Factor, f.Text}, rowStyle{labelColumn: true, boldLabel: true})
	}
	d.pdf.Ln(6)
}

func (d *document) insights(insights []string) {
	d.body()
	d.pdf.SetFont("Helvetica", "B", 10)
	d.pdf.CellFormat(0, lineHeight, "Key Insights:", "", 1, "L", false, 0, "")
	for _, in := range insights {
		d.bullet(in, 0)
	}
}

func (d *document) disclaimer() {
	d.pdf.Ln(12)
	d.subheading("Disclaimer:")
	d.paragraph(disclaimer)
}

func (d *document) subheading(text string) {
	d.pdf.SetFont("Helvetica", "B", 14)
	d.color(darkBlue)
	d.pdf.MultiCell(0, 8, d.tr(text), "", "L", false)
	d.body()
}

func (d *document) body() {
	d.pdf.SetFont("Helvetica", "", 10)
	d.color(black)
}

func (d *document) paragraph(text string) {
	d.body()
	d.pdf.MultiCell(0, lineHeight, d.tr(text), "", "L", false)
}

func (d *document) italic(text string) {
	d.pdf.SetFont("Helvetica", "I", 10)
	d.color(black)
	d.pdf.MultiCell(0, lineHeight, d.tr(text), "", "L", false)
	d.body()
}

func (d *document) bullet(text string, indent float64) {
	d.body()
	d.pdf.SetX(pageMargin + indent)
	d.pdf.MultiCell(0, lineHeight, d.tr("• "+text), "", "L", false)
}

func (d *document) color(c rgb) {
	d.pdf.SetTextColor(c.r, c.g, c.b)
}

type rowStyle struct {
	header      bool
	labelColumn bool
	boldLabel   bool
}

// row draws one bordered table row with wrapped cells and returns its
// top-left corner and height.
func (d *document) row(widths []float64, cells []string, style rowStyle) (float64, float64, float64) {
	pdf := d.pdf
	d.body()

	lines := 1
	for i, c := range cells {
		n := len(pdf.SplitText(d.tr(c), widths[i]-2*cellPadding))
		if n > lines {
			lines = n
		}
	}
	h := float64(lines)*lineHeight + 2*cellPadding

	_, pageH := pdf.GetPageSize()
	if pdf.GetY()+h > pageH-pageMargin {
		pdf.AddPage()
	}

	x, y := pageMargin, pdf.GetY()
	pdf.SetDrawColor(gridGrey.r, gridGrey.g, gridGrey.b)
	pdf.SetLineWidth(0.2)

	cx := x
	for i, c := range cells {
		fill := ""
		switch {
		case style.header:
			pdf.SetFillColor(darkBlue.r, darkBlue.g, darkBlue.b)
			pdf.SetFont("Helvetica", "B", 10)
			d.color(white)
			fill = "F"
		case style.labelColumn && i == 0:
			pdf.SetFillColor(lightGrey.r, lightGrey.g, lightGrey.b)
			d.color(darkBlue)
			if style.boldLabel {
				pdf.SetFont("Helvetica", "B", 10)
			}
			fill = "F"
		default:
			d.body()
		}
		pdf.Rect(cx, y, widths[i], h, "D"+fill)
		pdf.SetXY(cx+cellPadding, y+cellPadding)
		pdf.MultiCell(widths[i]-2*cellPadding, lineHeight, d.tr(c), "", "L", false)
		cx += widths[i]
	}

	d.body()
	pdf.SetXY(x, y+h)
	return x, y, h
}

// gauge draws a horizontal progress bar with the value printed inside.
func (d *document) gauge(x, y, value, limit float64, c rgb) {
	pdf := d.pdf
	px, py := pdf.GetXY()
	defer pdf.SetXY(px, py)

	pct := value / limit
	if pct < 0 {
		pct = 0
	}
	if pct > 1 {
		pct = 1
	}

	pdf.SetFillColor(trackGrey.r, trackGrey.g, trackGrey.b)
	pdf.Rect(x, y, gaugeWidth, gaugeHeight, "F")
	if pct > 0 {
		pdf.SetFillColor(c.r, c.g, c.b)
		pdf.Rect(x, y, gaugeWidth*pct, gaugeHeight, "F")
	}

	label := fmt.Sprintf("%.1f/%.0f", value, limit)
	if limit == wellness.MaxBurnout {
		label = fmt.Sprintf("%.0f%%", value)
	}
	pdf.SetFont("Helvetica", "B", 7)
	if pct > 0.3 {
		d.color(white)
	} else {
		d.color(black)
	}
	pdf.SetXY(x, y)
	pdf.CellFormat(gaugeWidth, gaugeHeight, label, "", 0, "C", false, 0, "")
	d.body()
}

// gaugeColor picks green/amber/red per metric. Happiness is better when
// high, stress and burnout when low.
func gaugeColor(m wellness.Metric, v float64) rgb {
	switch m {
	case wellness.MetricHappiness:
		switch {
		case v >= 7:
			return green
		case v >= 4:
			return amber
		}
		return red
	case wellness.MetricStress:
		switch {
		case v <= 3:
			return green
		case v <= 6:
			return amber
		}
		return red
	default:
		switch {
		case v <= 30:
			return green
		case v <= 60:
			return amber
		}
		return red
	}
}

func pageWidth(pdf *fpdf.Fpdf) float64 {
	w, _ := pdf.GetPageSize()
	return w
}
