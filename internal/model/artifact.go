// internal/model/artifact.go
package model

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/FairForge/lifesync/internal/encoder"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Artifact kinds
const (
	KindLinear       = "linear"
	KindTreeEnsemble = "tree_ensemble"
)

// Ensemble aggregation
const (
	AggregateMean = "mean" // random forest
	AggregateSum  = "sum"  // gradient boosting
)

// Node is one split or leaf of a regression tree. A node is a leaf when
// Left and Right are both -1.
type Node struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Value     float64 `json:"value"`
}

// Tree is a flattened regression tree rooted at node 0.
type Tree struct {
	Nodes []Node `json:"nodes"`
}

// Artifact is the exported form of a trained regressor.
type Artifact struct {
	Name         string    `json:"name"`
	Kind         string    `json:"type"`
	FeatureNames []string  `json:"feature_names"`
	Intercept    float64   `json:"intercept"`
	Coefficients []float64 `json:"coefficients,omitempty"`
	Trees        []Tree    `json:"trees,omitempty"`
	Aggregation  string    `json:"aggregation,omitempty"`
	BaseScore    float64   `json:"base_score,omitempty"`
}

// Validate checks that the artifact is internally consistent.
func (a *Artifact) Validate() error {
	if len(a.FeatureNames) == 0 {
		return fmt.Errorf("artifact %s: no feature names", a.Name)
	}

	switch a.Kind {
	case KindLinear:
		if len(a.Coefficients) != len(a.FeatureNames) {
			return fmt.Errorf("artifact %s: %d coefficients for %d features",
				a.Name, len(a.Coefficients), len(a.FeatureNames))
		}
	case KindTreeEnsemble:
		if len(a.Trees) == 0 {
			return fmt.Errorf("artifact %s: empty ensemble", a.Name)
		}
		if a.Aggregation != AggregateMean && a.Aggregation != AggregateSum {
			return fmt.Errorf("artifact %s: unknown aggregation %q", a.Name, a.Aggregation)
		}
		for ti, tree := range a.Trees {
			if len(tree.Nodes) == 0 {
				return fmt.Errorf("artifact %s: tree %d has no nodes", a.Name, ti)
			}
			for ni, n := range tree.Nodes {
				if n.Left == -1 && n.Right == -1 {
					continue
				}
				if n.Feature < 0 || n.Feature >= len(a.FeatureNames) {
					return fmt.Errorf("artifact %s: tree %d node %d splits on feature %d", a.Name, ti, ni, n.Feature)
				}
				if n.Left <= ni || n.Right <= ni || n.Left >= len(tree.Nodes) || n.Right >= len(tree.Nodes) {
					return fmt.Errorf("artifact %s: tree %d node %d has invalid children", a.Name, ti, ni)
				}
			}
		}
	default:
		return fmt.Errorf("artifact %s: unknown type %q", a.Name, a.Kind)
	}

	return nil
}

// ArtifactModel evaluates an Artifact in process.
type ArtifactModel struct {
	artifact Artifact
}

// LoadArtifact reads and validates a JSON artifact from disk.
func LoadArtifact(path string) (*ArtifactModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(ErrModelUnavailable, "read %s: %v", path, err)
	}

	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, errors.Wrapf(ErrModelUnavailable, "decode %s: %v", path, err)
	}
	if err := a.Validate(); err != nil {
		return nil, errors.Wrapf(ErrModelUnavailable, "%s: %v", path, err)
	}

	return NewArtifactModel(a), nil
}

// NewArtifactModel wraps an already validated artifact.
func NewArtifactModel(a Artifact) *ArtifactModel {
	return &ArtifactModel{artifact: a}
}

// Name returns the artifact name
func (m *ArtifactModel) Name() string {
	return m.artifact.Name
}

// Columns returns the feature order the model was trained on.
func (m *ArtifactModel) Columns() []string {
	return m.artifact.FeatureNames
}

// Predict evaluates the model on one row.
func (m *ArtifactModel) Predict(_ context.Context, vec encoder.FeatureVector) (float64, error) {
	if err := checkColumns(m.artifact.Name, m.artifact.FeatureNames, vec); err != nil {
		return 0, err
	}

	switch m.artifact.Kind {
	case KindLinear:
		return m.artifact.Intercept + floats.Dot(m.artifact.Coefficients, vec.Values), nil
	case KindTreeEnsemble:
		outputs := make([]float64, len(m.artifact.Trees))
		for i, tree := range m.artifact.Trees {
			outputs[i] = tree.evaluate(vec.Values)
		}
		if m.artifact.Aggregation == AggregateMean {
			return stat.Mean(outputs, nil), nil
		}
		return m.artifact.BaseScore + floats.Sum(outputs), nil
	}
	return 0, fmt.Errorf("artifact %s: unknown type %q", m.artifact.Name, m.artifact.Kind)
}

func (t Tree) evaluate(x []float64) float64 {
	i := 0
	for {
		n := t.Nodes[i]
		if n.Left == -1 && n.Right == -1 {
			return n.Value
		}
		if x[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}
