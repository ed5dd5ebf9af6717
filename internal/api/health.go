// internal/api/health.go
package api

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sort"
	"sync"
	"time"
)

// Check reports whether a component is usable. A nil error is healthy.
type Check func() error

// HealthChecker aggregates the state of named components.
type HealthChecker struct {
	mu     sync.RWMutex
	checks map[string]Check
	now    func() time.Time
}

// ComponentState is the result of one check.
type ComponentState struct {
	Name      string    `json:"-"`
	Healthy   bool      `json:"healthy"`
	LastError string    `json:"last_error,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

// NewHealthChecker creates a checker with no components.
func NewHealthChecker() *HealthChecker {
	return &HealthChecker{checks: make(map[string]Check), now: time.Now}
}

// Register adds or replaces a component check.
func (h *HealthChecker) Register(name string, check Check) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks[name] = check
}

// States runs every check, sorted by component name.
func (h *HealthChecker) States() []ComponentState {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]ComponentState, 0, len(h.checks))
	for name, check := range h.checks {
		state := ComponentState{Name: name, Healthy: true, CheckedAt: h.now()}
		if err := check(); err != nil {
			state.Healthy = false
			state.LastError = err.Error()
		}
		out = append(out, state)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// OverallStatus folds component states into healthy, degraded, unhealthy
// or unknown.
func OverallStatus(states []ComponentState) (status string, healthy int, total int) {
	total = len(states)
	for _, s := range states {
		if s.Healthy {
			healthy++
		}
	}

	switch {
	case total == 0:
		return "unknown", 0, 0
	case healthy == total:
		return "healthy", healthy, total
	case healthy == 0:
		return "unhealthy", 0, total
	default:
		return "degraded", healthy, total
	}
}

// handleHealth reports overall status. A partly available service is
// degraded but still answers 200.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	states := s.health.States()
	status, healthy, total := OverallStatus(states)

	resp := map[string]interface{}{
		"status":             status,
		"version":            s.version.Version,
		"uptime":             time.Since(s.startTime).Seconds(),
		"components_healthy": healthy,
		"components_total":   total,
	}
	if r.URL.Query().Get("details") == "true" {
		components := make(map[string]ComponentState, len(states))
		for _, st := range states {
			components[st.Name] = st
		}
		resp["components"] = components
	}

	httpStatus := http.StatusOK
	if status == "unhealthy" {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, resp)
}

// handleReady answers 200 while at least one component can serve traffic.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	states := s.health.States()
	_, healthy, total := OverallStatus(states)
	ready := total == 0 || healthy > 0

	components := make(map[string]bool, len(states))
	for _, st := range states {
		components[st.Name] = st.Healthy
	}

	httpStatus := http.StatusOK
	if !ready {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, map[string]interface{}{
		"ready":      ready,
		"components": components,
		"memory_mb":  getMemoryUsageMB(),
	})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"version": s.version.Version,
		"build":   s.version.Build,
		"go":      runtime.Version(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func getMemoryUsageMB() float64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return float64(m.Alloc) / 1024 / 1024
}
