// internal/model/remote.go
package model

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/FairForge/lifesync/internal/encoder"
)

const defaultRemoteTimeout = 10 * time.Second

// RemoteModel calls a model server over HTTP.
//
//	GET  {base}/models/{name}          -> {"name": ..., "feature_names": [...]}
//	POST {base}/models/{name}/predict  <- {"features": {...}} -> {"prediction": x}
type RemoteModel struct {
	baseURL string
	name    string
	columns []string
	client  *http.Client
}

type remoteSchema struct {
	Name         string   `json:"name"`
	FeatureNames []string `json:"feature_names"`
}

type predictRequest struct {
	Features map[string]float64 `json:"features"`
}

type predictResponse struct {
	Prediction float64 `json:"prediction"`
}

// NewRemoteModel fetches the model's schema and returns a client for it.
func NewRemoteModel(ctx context.Context, baseURL, name string, client *http.Client) (*RemoteModel, error) {
	if client == nil {
		client = &http.Client{Timeout: defaultRemoteTimeout}
	}
	m := &RemoteModel{
		baseURL: strings.TrimRight(baseURL, "/"),
		name:    name,
		client:  client,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.endpoint(""), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build schema request: %v", ErrModelUnavailable, err)
	}
	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch schema for %s: %v", ErrModelUnavailable, name, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: schema for %s: unexpected status code: %d", ErrModelUnavailable, name, resp.StatusCode)
	}

	var schema remoteSchema
	if err := json.NewDecoder(resp.Body).Decode(&schema); err != nil {
		return nil, fmt.Errorf("%w: decode schema for %s: %v", ErrModelUnavailable, name, err)
	}
	if len(schema.FeatureNames) == 0 {
		return nil, fmt.Errorf("%w: %s reported no features", ErrModelUnavailable, name)
	}

	m.columns = schema.FeatureNames
	return m, nil
}

// Name returns the remote model name
func (m *RemoteModel) Name() string {
	return m.name
}

// Columns returns the schema reported by the server.
func (m *RemoteModel) Columns() []string {
	return m.columns
}

// Predict sends one row to the server.
func (m *RemoteModel) Predict(ctx context.Context, vec encoder.FeatureVector) (float64, error) {
	if err := checkColumns(m.name, m.columns, vec); err != nil {
		return 0, err
	}

	body, err := json.Marshal(predictRequest{Features: vec.Map()})
	if err != nil {
		return 0, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint("/predict"), bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("build predict request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: predict %s: %v", ErrModelUnavailable, m.name, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("%w: predict %s: unexpected status code: %d", ErrModelUnavailable, m.name, resp.StatusCode)
	}

	var out predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("decode prediction: %w", err)
	}
	return out.Prediction, nil
}

func (m *RemoteModel) endpoint(suffix string) string {
	return fmt.Sprintf("%s/models/%s%s", m.baseURL, url.PathEscape(m.name), suffix)
}
