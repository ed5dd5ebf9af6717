// internal/dataset/importance.go
package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/gocarina/gocsv"
)

// ErrNotAvailable marks optional explainability artifacts that are absent.
var ErrNotAvailable = errors.New("dataset: artifact not available")

// Importance targets
const (
	TargetHappiness = "happiness"
	TargetStress    = "stress"
)

const (
	colFeature             = "Feature"
	colHappinessImportance = "Happiness_Importance"
	colStressImportance    = "Stress_Importance"
)

// FeatureImportance is one row of feature_importance.csv.
type FeatureImportance struct {
	Feature   string  `csv:"Feature" json:"feature"`
	Happiness float64 `csv:"Happiness_Importance" json:"happiness_importance"`
	Stress    float64 `csv:"Stress_Importance" json:"stress_importance"`
}

// Importance is the parsed table plus which targets it covers.
type Importance struct {
	Rows         []FeatureImportance
	HasHappiness bool
	HasStress    bool
}

// RankedFeature is one entry of a top-N list.
type RankedFeature struct {
	Feature    string  `json:"feature"`
	Importance float64 `json:"importance"`
}

// LoadImportance reads the precomputed importance table.
func LoadImportance(path string) (*Importance, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotAvailable, err)
	}

	header, err := csv.NewReader(bytes.NewReader(raw)).Read()
	if err != nil {
		return nil, fmt.Errorf("read importance header: %w", err)
	}
	imp := &Importance{}
	hasFeature := false
	for _, h := range header {
		switch h {
		case colFeature:
			hasFeature = true
		case colHappinessImportance:
			imp.HasHappiness = true
		case colStressImportance:
			imp.HasStress = true
		}
	}
	if !hasFeature {
		return nil, fmt.Errorf("importance table %s has no %s column", path, colFeature)
	}

	if err := gocsv.UnmarshalBytes(raw, &imp.Rows); err != nil {
		return nil, fmt.Errorf("parse importance table: %w", err)
	}
	return imp, nil
}

// Top returns the n most important features for a target.
func (imp *Importance) Top(target string, n int) ([]RankedFeature, error) {
	var pick func(FeatureImportance) float64
	switch target {
	case TargetHappiness:
		if !imp.HasHappiness {
			return nil, fmt.Errorf("%w: happiness importance", ErrNotAvailable)
		}
		pick = func(f FeatureImportance) float64 { return f.Happiness }
	case TargetStress:
		if !imp.HasStress {
			return nil, fmt.Errorf("%w: stress importance", ErrNotAvailable)
		}
		pick = func(f FeatureImportance) float64 { return f.Stress }
	default:
		return nil, fmt.Errorf("unknown target %q", target)
	}

	ranked := make([]RankedFeature, len(imp.Rows))
	for i, r := range imp.Rows {
		ranked[i] = RankedFeature{Feature: r.Feature, Importance: pick(r)}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Importance > ranked[j].Importance
	})
	if n > 0 && n < len(ranked) {
		ranked = ranked[:n]
	}
	return ranked, nil
}
