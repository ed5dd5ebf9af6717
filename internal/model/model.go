// internal/model/model.go
package model

import (
	"context"
	"errors"
	"fmt"

	"github.com/FairForge/lifesync/internal/encoder"
)

// ErrModelUnavailable is returned when a model artifact cannot be loaded or
// reached. Callers surface it as a visible error for the simulator view.
var ErrModelUnavailable = errors.New("model: unavailable")

// ErrSchemaMismatch is returned when a vector does not match the model's columns.
var ErrSchemaMismatch = errors.New("model: feature schema mismatch")

// Regressor is a trained model that maps a feature row to one scalar.
type Regressor interface {
	Name() string
	Columns() []string
	Predict(ctx context.Context, vec encoder.FeatureVector) (float64, error)
}

// Backend types
const (
	BackendFile = "file"
	BackendHTTP = "http"
)

// Standard artifact names
const (
	HappinessModel = "lifesync_happiness_model"
	StressModel    = "lifesync_stress_model"
)

func checkColumns(name string, want []string, vec encoder.FeatureVector) error {
	if len(want) != len(vec.Columns) {
		return fmt.Errorf("%w: %s expects %d features, got %d", ErrSchemaMismatch, name, len(want), len(vec.Columns))
	}
	for i := range want {
		if want[i] != vec.Columns[i] {
			return fmt.Errorf("%w: %s column %d is %q, got %q", ErrSchemaMismatch, name, i, want[i], vec.Columns[i])
		}
	}
	return nil
}
