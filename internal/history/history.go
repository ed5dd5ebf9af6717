// internal/history/history.go
package history

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/FairForge/lifesync/internal/wellness"
)

// TimestampLayout is the timestamp format of the history log.
const TimestampLayout = "2006-01-02 15:04:05"

// Header is the fixed column layout of the history log.
var Header = []string{
	"Timestamp", "Name", "Age", "Gender", "Sleep Hours", "Work Hours per Week",
	"Screen Time per Day (Hours)", "Social Interaction Score",
	"Exercise Level", "Diet Type", "Mental Health Condition",
	"Happiness Score", "Stress Level", "Burnout Risk",
}

// Record is one completed simulation.
type Record struct {
	Timestamp  time.Time           `json:"timestamp"`
	Profile    wellness.Profile    `json:"profile"`
	Prediction wellness.Prediction `json:"prediction"`
}

// NewRecord stamps a profile and its prediction.
func NewRecord(p wellness.Profile, pred wellness.Prediction, at time.Time) Record {
	return Record{Timestamp: at, Profile: p, Prediction: pred}
}

// Row renders the record in Header order.
func (r Record) Row() []string {
	p := r.Profile
	return []string{
		r.Timestamp.Format(TimestampLayout),
		p.Name,
		strconv.Itoa(p.Age),
		p.Gender,
		wellness.Decimal(p.SleepHours),
		strconv.Itoa(p.WorkHoursPerWeek),
		wellness.Decimal(p.ScreenTimePerDay),
		strconv.Itoa(p.SocialInteractionScore),
		p.ExerciseLevel,
		p.DietType,
		p.MentalHealthCondition,
		wellness.Decimal(r.Prediction.Happiness),
		wellness.Decimal(r.Prediction.Stress),
		wellness.Decimal(r.Prediction.BurnoutRisk),
	}
}

// ParseRow is the inverse of Row.
func ParseRow(row []string) (Record, error) {
	if len(row) != len(Header) {
		return Record{}, fmt.Errorf("history row has %d columns, want %d", len(row), len(Header))
	}

	ts, err := time.ParseInLocation(TimestampLayout, row[0], time.Local)
	if err != nil {
		return Record{}, fmt.Errorf("parse timestamp: %w", err)
	}

	var perr error
	atoi := func(s string) int {
		v, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil && perr == nil {
			perr = err
		}
		return v
	}
	atof := func(s string) float64 {
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil && perr == nil {
			perr = err
		}
		return v
	}

	r := Record{
		Timestamp: ts,
		Profile: wellness.Profile{
			Name:                   row[1],
			Age:                    atoi(row[2]),
			Gender:                 row[3],
			SleepHours:             atof(row[4]),
			WorkHoursPerWeek:       atoi(row[5]),
			ScreenTimePerDay:       atof(row[6]),
			SocialInteractionScore: atoi(row[7]),
			ExerciseLevel:          row[8],
			DietType:               row[9],
			MentalHealthCondition:  row[10],
		},
		Prediction: wellness.Prediction{
			Happiness:   atof(row[11]),
			Stress:      atof(row[12]),
			BurnoutRisk: atof(row[13]),
		},
	}
	if perr != nil {
		return Record{}, fmt.Errorf("parse history row: %w", perr)
	}
	return r, nil
}

// Recorder persists history records.
type Recorder interface {
	Append(ctx context.Context, r Record) error
}

// Reader lists persisted history records, oldest first.
type Reader interface {
	ReadAll(ctx context.Context) ([]Record, error)
}

// Sink is a named recorder.
type Sink struct {
	Name     string
	Recorder Recorder
}

// Multi fans a record out to several sinks. Every sink is attempted; a
// failing sink is logged and reported in the joined error.
type Multi struct {
	sinks  []Sink
	logger *zap.Logger
}

// NewMulti creates a fan-out recorder.
func NewMulti(logger *zap.Logger, sinks ...Sink) *Multi {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Multi{sinks: sinks, logger: logger}
}

// Append writes the record to every sink.
func (m *Multi) Append(ctx context.Context, r Record) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Recorder.Append(ctx, r); err != nil {
			m.logger.Warn("history append failed",
				zap.String("sink", s.Name),
				zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", s.Name, err))
		}
	}
	return errors.Join(errs...)
}

// Sinks returns the configured sink names.
func (m *Multi) Sinks() []string {
	out := make([]string, len(m.sinks))
	for i, s := range m.sinks {
		out[i] = s.Name
	}
	return out
}
