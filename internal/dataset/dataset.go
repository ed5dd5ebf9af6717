// internal/dataset/dataset.go
package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gocarina/gocsv"
	pkgerrors "github.com/pkg/errors"
	"go.uber.org/zap"
)

// ErrDatasetUnavailable is returned when the dataset file is missing or
// lacks a required column. The dashboard view cannot render without it.
var ErrDatasetUnavailable = errors.New("dataset: unavailable")

// Column names
const (
	ColCountry      = "Country"
	ColAge          = "Age"
	ColGender       = "Gender"
	ColExercise     = "Exercise Level"
	ColDiet         = "Diet Type"
	ColSleep        = "Sleep Hours"
	ColStress       = "Stress Level"
	ColMentalHealth = "Mental Health Condition"
	ColWork         = "Work Hours per Week"
	ColScreen       = "Screen Time per Day (Hours)"
	ColSocial       = "Social Interaction Score"
	ColHappiness    = "Happiness Score"
)

// RequiredColumns must all be present in the header.
var RequiredColumns = []string{
	ColCountry, ColAge, ColGender, ColExercise, ColDiet, ColSleep,
	ColStress, ColMentalHealth, ColWork, ColScreen, ColSocial, ColHappiness,
}

var stressCategories = map[string]float64{"Low": 1, "Moderate": 2, "High": 3}

// Record is one dataset row.
type Record struct {
	Country      string  `csv:"Country" json:"country"`
	Age          float64 `csv:"Age" json:"age"`
	Gender       string  `csv:"Gender" json:"gender"`
	Exercise     string  `csv:"Exercise Level" json:"exercise_level"`
	Diet         string  `csv:"Diet Type" json:"diet_type"`
	Sleep        float64 `csv:"Sleep Hours" json:"sleep_hours"`
	StressRaw    string  `csv:"Stress Level" json:"stress_level"`
	MentalHealth string  `csv:"Mental Health Condition" json:"mental_health_condition"`
	Work         float64 `csv:"Work Hours per Week" json:"work_hours_per_week"`
	Screen       float64 `csv:"Screen Time per Day (Hours)" json:"screen_time_per_day"`
	Social       float64 `csv:"Social Interaction Score" json:"social_interaction_score"`
	Happiness    float64 `csv:"Happiness Score" json:"happiness_score"`

	// Stress is StressRaw on a numeric scale; NaN when it cannot be mapped.
	Stress float64 `csv:"-" json:"-"`
}

// Schema records properties of the dataset decided once at load time.
type Schema struct {
	StressNumeric bool `json:"stress_numeric"`
}

// StressScale is the display suffix for stress averages.
func (s Schema) StressScale() string {
	if s.StressNumeric {
		return "/10"
	}
	return "/3"
}

// Dataset is an immutable loaded snapshot.
type Dataset struct {
	Path     string
	Raw      []byte
	Records  []Record
	Schema   Schema
	LoadedAt time.Time
}

// Load reads and parses the dataset file.
func Load(path string) (*Dataset, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, pkgerrors.Wrapf(ErrDatasetUnavailable, "read %s: %v", path, err)
	}
	return Parse(path, raw)
}

// Parse builds a dataset from raw CSV bytes.
func Parse(path string, raw []byte) (*Dataset, error) {
	header, err := csv.NewReader(bytes.NewReader(raw)).Read()
	if err != nil {
		return nil, pkgerrors.Wrapf(ErrDatasetUnavailable, "read header of %s: %v", path, err)
	}
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[strings.TrimSpace(h)] = true
	}
	var missing []string
	for _, c := range RequiredColumns {
		if !present[c] {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, pkgerrors.Wrapf(ErrDatasetUnavailable, "%s missing columns %v", path, missing)
	}

	var records []Record
	if err := gocsv.UnmarshalBytes(raw, &records); err != nil {
		return nil, pkgerrors.Wrapf(ErrDatasetUnavailable, "parse %s: %v", path, err)
	}

	schema := detectSchema(records)
	for i := range records {
		records[i].Stress = stressValue(records[i].StressRaw, schema)
	}

	return &Dataset{
		Path:     path,
		Raw:      raw,
		Records:  records,
		Schema:   schema,
		LoadedAt: time.Now(),
	}, nil
}

// detectSchema decides whether Stress Level is numeric. Empty cells are
// ignored; a single non-numeric value makes the column categorical.
func detectSchema(records []Record) Schema {
	for _, r := range records {
		v := strings.TrimSpace(r.StressRaw)
		if v == "" {
			continue
		}
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			return Schema{StressNumeric: false}
		}
	}
	return Schema{StressNumeric: true}
}

func stressValue(raw string, s Schema) float64 {
	raw = strings.TrimSpace(raw)
	if s.StressNumeric {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nan
		}
		return v
	}
	if v, ok := stressCategories[raw]; ok {
		return v
	}
	return nan
}

// Store holds the current dataset and reloads it on demand.
type Store struct {
	path   string
	logger *zap.Logger

	mu      sync.RWMutex
	current *Dataset
	lastErr error
}

// NewStore creates a store for the given file. Call Reload before use.
func NewStore(path string, logger *zap.Logger) *Store {
	return &Store{path: path, logger: logger}
}

// NewStaticStore wraps an already parsed dataset.
func NewStaticStore(ds *Dataset) *Store {
	return &Store{path: ds.Path, current: ds, logger: zap.NewNop()}
}

// Path returns the backing file.
func (s *Store) Path() string {
	return s.path
}

// Reload re-reads the file. A failed reload keeps the previous snapshot.
func (s *Store) Reload() error {
	ds, err := Load(s.path)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.lastErr = err
		s.logger.Error("dataset load failed", zap.String("path", s.path), zap.Error(err))
		return err
	}
	s.current = ds
	s.lastErr = nil
	s.logger.Info("dataset loaded",
		zap.String("path", s.path),
		zap.Int("rows", len(ds.Records)),
		zap.Bool("stress_numeric", ds.Schema.StressNumeric),
	)
	return nil
}

// Current returns the loaded snapshot.
func (s *Store) Current() (*Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		if s.lastErr != nil {
			return nil, s.lastErr
		}
		return nil, fmt.Errorf("%w: not loaded", ErrDatasetUnavailable)
	}
	return s.current, nil
}
