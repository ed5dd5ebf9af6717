// internal/dashboard/handlers/api.go
package handlers

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/blake2b"

	"github.com/FairForge/lifesync/internal/charts"
	"github.com/FairForge/lifesync/internal/dataset"
	"github.com/FairForge/lifesync/internal/validation"
)

// DefaultTopFeatures is the feature-importance list length.
const DefaultTopFeatures = 5

// APIHandler serves the dashboard JSON API, charts and downloads.
type APIHandler struct {
	store          *dataset.Store
	importancePath string
	shap           *dataset.Explainability
	validator      *validation.RequestValidator
	logger         *zap.Logger

	etagMu   sync.Mutex
	etagFor  *dataset.Dataset
	etagHash string
}

// NewAPIHandler creates the dashboard API. importancePath and shapDir may
// point at files that do not exist; those endpoints then answer 404.
func NewAPIHandler(store *dataset.Store, importancePath, shapDir string, logger *zap.Logger) *APIHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &APIHandler{
		store:          store,
		importancePath: importancePath,
		shap:           dataset.NewExplainability(shapDir),
		validator:      validation.NewRequestValidator(),
		logger:         logger,
	}
}

// RegisterRoutes registers all dashboard API routes
func (h *APIHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/dashboard", func(r chi.Router) {
		r.Use(validation.Middleware(h.validator, validation.FilterRules))

		r.Get("/filters", h.GetFilters)
		r.Get("/overview", h.GetOverview)
		r.Get("/distributions/{column}", h.GetDistribution)
		r.Get("/correlations", h.GetCorrelations)
		r.Get("/insights", h.GetInsights)
		r.Get("/feature-importance", h.GetFeatureImportance)
		r.Get("/charts/{chart}.png", h.GetChart)
		r.Get("/shap", h.ListShap)
		r.Get("/shap/{name}.png", h.GetShap)
		r.Get("/dataset.csv", h.ExportDataset)
	})
}

// selection loads the dataset and applies the query filter.
func (h *APIHandler) selection(w http.ResponseWriter, r *http.Request) (*dataset.Dataset, []dataset.Record, dataset.Filter, bool) {
	ds, err := h.store.Current()
	if err != nil {
		h.respondError(w, http.StatusServiceUnavailable, err)
		return nil, nil, dataset.Filter{}, false
	}
	f, err := dataset.FilterFromQuery(r.URL.Query())
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err)
		return nil, nil, dataset.Filter{}, false
	}
	return ds, ds.Apply(f), f, true
}

// GetFilters returns the available filter values
func (h *APIHandler) GetFilters(w http.ResponseWriter, r *http.Request) {
	ds, err := h.store.Current()
	if err != nil {
		h.respondError(w, http.StatusServiceUnavailable, err)
		return
	}
	h.respondJSON(w, http.StatusOK, ds.Options())
}

// GetOverview returns headline metrics for the selection
func (h *APIHandler) GetOverview(w http.ResponseWriter, r *http.Request) {
	ds, selected, f, ok := h.selection(w, r)
	if !ok {
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"filter":   f,
		"overview": ds.Overview(selected),
		"schema":   ds.Schema,
	})
}

// GetDistribution returns histogram or category counts for one column
func (h *APIHandler) GetDistribution(w http.ResponseWriter, r *http.Request) {
	ds, selected, _, ok := h.selection(w, r)
	if !ok {
		return
	}
	bins, _ := strconv.Atoi(r.URL.Query().Get("bins"))
	if bins <= 0 {
		bins = dataset.DefaultBins
	}

	d, err := ds.Distribution(selected, chi.URLParam(r, "column"), bins)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err)
		return
	}
	h.respondJSON(w, http.StatusOK, d)
}

// correlationsJSON replaces undefined coefficients with null.
type correlationsJSON struct {
	Columns           []string      `json:"columns"`
	Matrix            [][]*float64  `json:"matrix"`
	StrongestPositive *dataset.Pair `json:"strongest_positive,omitempty"`
	StrongestNegative *dataset.Pair `json:"strongest_negative,omitempty"`
}

// GetCorrelations returns the correlation matrix of the selection
func (h *APIHandler) GetCorrelations(w http.ResponseWriter, r *http.Request) {
	ds, selected, _, ok := h.selection(w, r)
	if !ok {
		return
	}
	c, err := ds.Correlations(selected)
	if err != nil {
		h.respondError(w, http.StatusUnprocessableEntity, err)
		return
	}

	out := correlationsJSON{
		Columns:           c.Columns,
		Matrix:            make([][]*float64, len(c.Matrix)),
		StrongestPositive: c.StrongestPositive,
		StrongestNegative: c.StrongestNegative,
	}
	for i, row := range c.Matrix {
		out.Matrix[i] = make([]*float64, len(row))
		for j := range row {
			if v := row[j]; !math.IsNaN(v) && !math.IsInf(v, 0) {
				out.Matrix[i][j] = &v
			}
		}
	}
	h.respondJSON(w, http.StatusOK, out)
}

// GetInsights compares the selection with the whole dataset
func (h *APIHandler) GetInsights(w http.ResponseWriter, r *http.Request) {
	ds, selected, _, ok := h.selection(w, r)
	if !ok {
		return
	}
	insights := ds.Insights(selected)
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"insights": insights,
		"count":    len(insights),
	})
}

// GetFeatureImportance returns the top features per target
func (h *APIHandler) GetFeatureImportance(w http.ResponseWriter, r *http.Request) {
	imp, err := dataset.LoadImportance(h.importancePath)
	if err != nil {
		h.respondArtifactError(w, err)
		return
	}
	top := topParam(r)

	out := map[string][]dataset.RankedFeature{}
	for _, target := range []string{dataset.TargetHappiness, dataset.TargetStress} {
		ranked, err := imp.Top(target, top)
		if errors.Is(err, dataset.ErrNotAvailable) {
			continue
		}
		if err != nil {
			h.respondError(w, http.StatusInternalServerError, err)
			return
		}
		out[target] = ranked
	}
	h.respondJSON(w, http.StatusOK, out)
}

// GetChart renders a named chart of the selection as PNG
func (h *APIHandler) GetChart(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "chart")

	var (
		png []byte
		err error
	)
	switch name {
	case "importance-happiness", "importance-stress":
		png, err = h.importanceChart(r, name)
	default:
		spec, ok := namedCharts[name]
		if !ok {
			h.respondError(w, http.StatusNotFound, fmt.Errorf("unknown chart %q", name))
			return
		}
		ds, selected, _, ok := h.selection(w, r)
		if !ok {
			return
		}
		png, err = spec.render(ds, selected, r)
	}

	switch {
	case err == nil:
	case errors.Is(err, charts.ErrNoData), errors.Is(err, dataset.ErrNotAvailable):
		h.respondError(w, http.StatusNotFound, err)
		return
	default:
		h.respondError(w, http.StatusBadRequest, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}

func (h *APIHandler) importanceChart(r *http.Request, name string) ([]byte, error) {
	imp, err := dataset.LoadImportance(h.importancePath)
	if err != nil {
		return nil, err
	}
	target, title := dataset.TargetHappiness, "Top Features for Happiness"
	if name == "importance-stress" {
		target, title = dataset.TargetStress, "Top Features for Stress"
	}
	ranked, err := imp.Top(target, topParam(r))
	if err != nil {
		return nil, err
	}
	return charts.Importance(title, ranked)
}

// ListShap lists the SHAP images present on disk
func (h *APIHandler) ListShap(w http.ResponseWriter, r *http.Request) {
	type image struct {
		Name  string `json:"name"`
		Title string `json:"title"`
		URL   string `json:"url"`
	}
	images := []image{}
	for _, name := range h.shap.Available() {
		images = append(images, image{
			Name:  name,
			Title: dataset.ShapTitles[name],
			URL:   "/api/v1/dashboard/shap/" + name + ".png",
		})
	}
	h.respondJSON(w, http.StatusOK, map[string]interface{}{"images": images})
}

// GetShap serves one SHAP image, optionally resized with ?width=
func (h *APIHandler) GetShap(w http.ResponseWriter, r *http.Request) {
	width, _ := strconv.Atoi(r.URL.Query().Get("width"))
	png, err := h.shap.Image(chi.URLParam(r, "name"), width)
	if err != nil {
		h.respondArtifactError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = w.Write(png)
}

// ExportDataset re-serves the dataset file verbatim
func (h *APIHandler) ExportDataset(w http.ResponseWriter, r *http.Request) {
	ds, err := h.store.Current()
	if err != nil {
		h.respondError(w, http.StatusServiceUnavailable, err)
		return
	}

	etag := `"` + h.etag(ds) + `"`
	w.Header().Set("ETag", etag)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(ds.Path)))
	w.Header().Set("Content-Length", strconv.Itoa(len(ds.Raw)))
	_, _ = w.Write(ds.Raw)
}

// etag hashes the raw dataset once per loaded snapshot.
func (h *APIHandler) etag(ds *dataset.Dataset) string {
	h.etagMu.Lock()
	defer h.etagMu.Unlock()

	if h.etagFor != ds {
		sum := blake2b.Sum256(ds.Raw)
		h.etagFor = ds
		h.etagHash = hex.EncodeToString(sum[:16])
	}
	return h.etagHash
}

func topParam(r *http.Request) int {
	top, _ := strconv.Atoi(r.URL.Query().Get("top"))
	if top <= 0 {
		top = DefaultTopFeatures
	}
	return top
}

// Helper methods

func (h *APIHandler) respondArtifactError(w http.ResponseWriter, err error) {
	if errors.Is(err, dataset.ErrNotAvailable) {
		h.respondError(w, http.StatusNotFound, err)
		return
	}
	h.respondError(w, http.StatusInternalServerError, err)
}

func (h *APIHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode JSON response", zap.Error(err))
	}
}

func (h *APIHandler) respondError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		h.logger.Error("API error", zap.Error(err), zap.Int("status", status))
	}
	h.respondJSON(w, status, map[string]string{
		"error": err.Error(),
	})
}
