// internal/model/registry.go
package model

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Source says where the two models live.
type Source struct {
	Backend       string
	Dir           string
	BaseURL       string
	HappinessName string
	StressName    string
	Timeout       time.Duration
}

// ArtifactPath returns the on-disk path of a named artifact.
func (s Source) ArtifactPath(name string) string {
	return filepath.Join(s.Dir, name+".json")
}

// Paths returns the artifact files a file backend depends on.
func (s Source) Paths() []string {
	if s.Backend != BackendFile {
		return nil
	}
	return []string{s.ArtifactPath(s.happinessName()), s.ArtifactPath(s.stressName())}
}

func (s Source) happinessName() string {
	if s.HappinessName == "" {
		return HappinessModel
	}
	return s.HappinessName
}

func (s Source) stressName() string {
	if s.StressName == "" {
		return StressModel
	}
	return s.StressName
}

// Pair is the happiness and stress model used together by the simulator.
type Pair struct {
	Happiness Regressor
	Stress    Regressor
}

// LoadPair loads both models concurrently.
func LoadPair(ctx context.Context, src Source) (Pair, error) {
	var pair Pair
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		m, err := open(gctx, src, src.happinessName())
		pair.Happiness = m
		return err
	})
	g.Go(func() error {
		m, err := open(gctx, src, src.stressName())
		pair.Stress = m
		return err
	})

	if err := g.Wait(); err != nil {
		return Pair{}, err
	}
	return pair, nil
}

func open(ctx context.Context, src Source, name string) (Regressor, error) {
	switch src.Backend {
	case BackendFile, "":
		return LoadArtifact(src.ArtifactPath(name))
	case BackendHTTP:
		timeout := src.Timeout
		if timeout == 0 {
			timeout = defaultRemoteTimeout
		}
		return NewRemoteModel(ctx, src.BaseURL, name, &http.Client{Timeout: timeout})
	}
	return nil, fmt.Errorf("%w: unknown backend %q", ErrModelUnavailable, src.Backend)
}

// Status describes the registry for readiness checks.
type Status struct {
	Loaded   bool      `json:"loaded"`
	LoadedAt time.Time `json:"loaded_at,omitempty"`
	Error    string    `json:"error,omitempty"`
}

// Registry holds the current model pair and swaps it on reload.
type Registry struct {
	source Source
	logger *zap.Logger

	mu       sync.RWMutex
	pair     *Pair
	lastErr  error
	loadedAt time.Time
}

// NewRegistry creates an empty registry. Call Load before use.
func NewRegistry(src Source, logger *zap.Logger) *Registry {
	return &Registry{source: src, logger: logger}
}

// NewStaticRegistry wraps an already built pair.
func NewStaticRegistry(pair Pair) *Registry {
	return &Registry{pair: &pair, loadedAt: time.Now(), logger: zap.NewNop()}
}

// Source returns the configured source.
func (r *Registry) Source() Source {
	return r.source
}

// Load (re)loads both models. A failed reload keeps the previous pair.
func (r *Registry) Load(ctx context.Context) error {
	pair, err := LoadPair(ctx, r.source)

	r.mu.Lock()
	defer r.mu.Unlock()

	if err != nil {
		r.lastErr = err
		r.logger.Error("model load failed", zap.String("backend", r.source.Backend), zap.Error(err))
		return err
	}

	r.pair = &pair
	r.lastErr = nil
	r.loadedAt = time.Now()
	r.logger.Info("models loaded",
		zap.String("happiness", pair.Happiness.Name()),
		zap.String("stress", pair.Stress.Name()),
		zap.Int("features", len(pair.Happiness.Columns())),
	)
	return nil
}

// Models returns the current pair.
func (r *Registry) Models() (Pair, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.pair == nil {
		if r.lastErr != nil {
			return Pair{}, r.lastErr
		}
		return Pair{}, fmt.Errorf("%w: not loaded", ErrModelUnavailable)
	}
	return *r.pair, nil
}

// Status reports whether models are available.
func (r *Registry) Status() Status {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s := Status{Loaded: r.pair != nil, LoadedAt: r.loadedAt}
	if r.lastErr != nil {
		s.Error = r.lastErr.Error()
	}
	return s
}
