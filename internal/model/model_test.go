// internal/model/model_test.go
package model

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/FairForge/lifesync/internal/encoder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func linearArtifact(name string) Artifact {
	return Artifact{
		Name:         name,
		Kind:         KindLinear,
		FeatureNames: []string{"Sleep Hours", "Exercise Level"},
		Intercept:    1,
		Coefficients: []float64{2, 3},
	}
}

func ensembleArtifact(agg string) Artifact {
	return Artifact{
		Name:         "forest",
		Kind:         KindTreeEnsemble,
		FeatureNames: []string{"Sleep Hours", "Exercise Level"},
		Aggregation:  agg,
		BaseScore:    0.5,
		Trees: []Tree{
			{Nodes: []Node{
				{Feature: 1, Threshold: 1.5, Left: 1, Right: 2},
				{Left: -1, Right: -1, Value: 1},
				{Left: -1, Right: -1, Value: 3},
			}},
			{Nodes: []Node{{Left: -1, Right: -1, Value: 5}}},
		},
	}
}

func vec(values ...float64) encoder.FeatureVector {
	return encoder.FeatureVector{Columns: []string{"Sleep Hours", "Exercise Level"}, Values: values}
}

func writeArtifact(t *testing.T, dir string, a Artifact) {
	t.Helper()
	data, err := json.Marshal(a)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, a.Name+".json"), data, 0644))
}

func TestArtifactModel_Predict(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		artifact Artifact
		input    encoder.FeatureVector
		want     float64
	}{
		{"linear", linearArtifact("lin"), vec(1, 2), 9},
		{"forest mean", ensembleArtifact(AggregateMean), vec(7, 2), 4},
		{"forest left branch", ensembleArtifact(AggregateMean), vec(7, 1), 3},
		{"boosted sum", ensembleArtifact(AggregateSum), vec(7, 2), 8.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, tt.artifact.Validate())
			got, err := NewArtifactModel(tt.artifact).Predict(ctx, tt.input)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}

	t.Run("rejects mismatched schema", func(t *testing.T) {
		m := NewArtifactModel(linearArtifact("lin"))
		_, err := m.Predict(ctx, encoder.FeatureVector{Columns: []string{"Age"}, Values: []float64{1}})
		assert.ErrorIs(t, err, ErrSchemaMismatch)
	})
}

func TestArtifact_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(a *Artifact)
	}{
		{"no features", func(a *Artifact) { a.FeatureNames = nil }},
		{"coefficient count", func(a *Artifact) { a.Coefficients = []float64{1} }},
		{"unknown kind", func(a *Artifact) { a.Kind = "svm" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := linearArtifact("lin")
			tt.mutate(&a)
			assert.Error(t, a.Validate())
		})
	}

	t.Run("cyclic tree", func(t *testing.T) {
		a := ensembleArtifact(AggregateMean)
		a.Trees[0].Nodes[0].Left = 0
		assert.Error(t, a.Validate())
	})

	t.Run("unknown aggregation", func(t *testing.T) {
		a := ensembleArtifact("median")
		assert.Error(t, a.Validate())
	})
}

func TestLoadArtifact(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadArtifact(filepath.Join(dir, "nope.json"))
		assert.True(t, errors.Is(err, ErrModelUnavailable))
	})

	t.Run("corrupt file", func(t *testing.T) {
		path := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(path, []byte("{"), 0644))
		_, err := LoadArtifact(path)
		assert.ErrorIs(t, err, ErrModelUnavailable)
	})

	t.Run("valid file", func(t *testing.T) {
		writeArtifact(t, dir, linearArtifact("ok"))
		m, err := LoadArtifact(filepath.Join(dir, "ok.json"))
		require.NoError(t, err)
		assert.Equal(t, "ok", m.Name())
		assert.Len(t, m.Columns(), 2)
	})
}

func TestRemoteModel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/models/happy":
			_ = json.NewEncoder(w).Encode(remoteSchema{Name: "happy", FeatureNames: []string{"Sleep Hours", "Exercise Level"}})
		case r.Method == http.MethodPost && r.URL.Path == "/models/happy/predict":
			var req predictRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			_ = json.NewEncoder(w).Encode(predictResponse{Prediction: req.Features["Sleep Hours"] + 0.5})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	ctx := context.Background()

	t.Run("predicts through server", func(t *testing.T) {
		m, err := NewRemoteModel(ctx, srv.URL+"/", "happy", nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"Sleep Hours", "Exercise Level"}, m.Columns())

		got, err := m.Predict(ctx, vec(7, 2))
		require.NoError(t, err)
		assert.Equal(t, 7.5, got)
	})

	t.Run("unknown model is unavailable", func(t *testing.T) {
		_, err := NewRemoteModel(ctx, srv.URL, "sad", srv.Client())
		assert.ErrorIs(t, err, ErrModelUnavailable)
	})
}

func TestRegistry(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	src := Source{Backend: BackendFile, Dir: dir}

	reg := NewRegistry(src, zap.NewNop())

	t.Run("unavailable before artifacts exist", func(t *testing.T) {
		err := reg.Load(ctx)
		assert.ErrorIs(t, err, ErrModelUnavailable)
		_, err = reg.Models()
		assert.ErrorIs(t, err, ErrModelUnavailable)
		assert.False(t, reg.Status().Loaded)
	})

	t.Run("loads both models", func(t *testing.T) {
		writeArtifact(t, dir, linearArtifact(HappinessModel))
		writeArtifact(t, dir, linearArtifact(StressModel))

		require.NoError(t, reg.Load(ctx))
		pair, err := reg.Models()
		require.NoError(t, err)
		assert.Equal(t, HappinessModel, pair.Happiness.Name())
		assert.Equal(t, StressModel, pair.Stress.Name())
		assert.True(t, reg.Status().Loaded)
		assert.Len(t, src.Paths(), 2)
	})

	t.Run("failed reload keeps previous pair", func(t *testing.T) {
		require.NoError(t, os.Remove(filepath.Join(dir, StressModel+".json")))
		assert.Error(t, reg.Load(ctx))

		pair, err := reg.Models()
		require.NoError(t, err)
		assert.NotNil(t, pair.Stress)
		assert.NotEmpty(t, reg.Status().Error)
	})
}
