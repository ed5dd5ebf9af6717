// internal/simulator/handlers.go
package simulator

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/FairForge/lifesync/internal/auth"
	"github.com/FairForge/lifesync/internal/history"
	"github.com/FairForge/lifesync/internal/model"
	"github.com/FairForge/lifesync/internal/ratelimit"
	"github.com/FairForge/lifesync/internal/reporting"
	"github.com/FairForge/lifesync/internal/validation"
	"github.com/FairForge/lifesync/internal/wellness"
)

const defaultHistoryLimit = 100

// Handler serves the simulator API and pages.
type Handler struct {
	service      *Service
	validator    *validation.RequestValidator
	profileRules *validation.Rules
	limiter      *ratelimit.ClientLimiter
	logger       *zap.Logger
}

// NewHandler creates simulator handlers. A nil limiter disables report
// rate limiting.
func NewHandler(service *Service, limiter *ratelimit.ClientLimiter, logger *zap.Logger) (*Handler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	schema, err := validation.NewProfileSchema()
	if err != nil {
		return nil, err
	}
	return &Handler{
		service:      service,
		validator:    validation.NewRequestValidator(),
		profileRules: validation.ProfileRules(schema),
		limiter:      limiter,
		logger:       logger,
	}, nil
}

// RegisterRoutes registers the simulator API and pages
func (h *Handler) RegisterRoutes(r chi.Router) {
	profile := validation.Middleware(h.validator, h.profileRules)

	r.Route("/api/v1/simulator", func(r chi.Router) {
		r.With(profile).Post("/predict", h.Predict)
		r.With(validation.Middleware(h.validator, validation.ForecastRules)).Get("/forecast", h.Forecast)
		r.With(h.rateLimit, profile).Post("/report", h.Report)
		r.With(h.pdfRateLimit, profile).Post("/export", h.Export)
		r.With(validation.Middleware(h.validator, validation.HistoryRules)).Get("/history", h.History)
	})
	r.Get("/api/v1/reports/{id}", h.Download)

	r.Get("/simulator", h.Page)
	r.Post("/simulator", h.Submit)
	r.With(h.rateLimit).Post("/simulator/report", h.SubmitReport)
	r.With(validation.Middleware(h.validator, validation.ForecastRules)).Get("/simulator/chart.png", h.Chart)
}

func (h *Handler) rateLimit(next http.Handler) http.Handler {
	if h.limiter == nil {
		return next
	}
	return h.limiter.Middleware(ratelimit.ClientIP)(next)
}

// pdfRateLimit limits exports only when they build a PDF.
func (h *Handler) pdfRateLimit(next http.Handler) http.Handler {
	limited := h.rateLimit(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("format") == reporting.FormatPDF {
			limited.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Predict scores a JSON profile.
func (h *Handler) Predict(w http.ResponseWriter, r *http.Request) {
	p, err := decodeProfile(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err)
		return
	}

	res, err := h.service.Predict(r.Context(), p)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, res)
}

// Forecast projects from query seeds.
func (h *Handler) Forecast(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := h.service.Forecast(q.Get("happiness"), q.Get("stress"), q.Get("burnout"))
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"forecast": f,
		"labels":   f.Labels(),
	})
}

// Report builds a PDF. JSON clients get a signed link, others the file.
func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	p, err := decodeProfile(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err)
		return
	}

	gen, err := h.service.Report(r.Context(), p)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	link := downloadURL(gen)
	if link != "" {
		w.Header().Set("X-Report-ID", gen.ID)
		w.Header().Set("X-Report-URL", link)
	}
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		h.respondJSON(w, http.StatusCreated, map[string]interface{}{
			"id":         gen.ID,
			"filename":   gen.Filename,
			"url":        link,
			"expires_at": gen.ExpiresAt,
		})
		return
	}
	h.respondFile(w, gen.Filename, gen.ContentType, gen.Data)
}

// Export runs a simulation and downloads it as csv (default), json or pdf.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = reporting.FormatCSV
	}
	switch format {
	case reporting.FormatCSV, reporting.FormatJSON, reporting.FormatPDF:
	default:
		h.respondError(w, http.StatusBadRequest, fmt.Errorf("unsupported format %q", format))
		return
	}

	p, err := decodeProfile(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err)
		return
	}

	gen, err := h.service.Export(r.Context(), p, format)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondFile(w, gen.Filename, gen.ContentType, gen.Data)
}

// History lists recorded simulations, newest first.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit == 0 {
		limit = defaultHistoryLimit
	}

	records, err := h.service.History(r.Context(), limit)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, err)
		return
	}
	if records == nil {
		records = []history.Record{}
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"records": records,
		"count":   len(records),
	})
}

// Download serves a cached or archived report.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	doc, err := h.service.Download(r.Context(), id, r.URL.Query().Get("token"))
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.respondFile(w, doc.Filename, doc.ContentType, doc.Data)
}

func downloadURL(gen Generated) string {
	if gen.Token == "" {
		return ""
	}
	return "/api/v1/reports/" + url.PathEscape(gen.ID) + "?token=" + url.QueryEscape(gen.Token)
}

func decodeProfile(r *http.Request) (wellness.Profile, error) {
	p := wellness.DefaultProfile()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return wellness.Profile{}, fmt.Errorf("invalid profile body: %w", err)
	}
	return p, nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, wellness.ErrInvalidProfile):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrModelUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, auth.ErrInvalidToken):
		return http.StatusForbidden
	case errors.Is(err, ErrReportNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Helper methods

func (h *Handler) respondServiceError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusServiceUnavailable {
		err = fmt.Errorf("prediction models are unavailable, the dashboard still works: %w", err)
	}
	h.respondError(w, status, err)
}

func (h *Handler) respondFile(w http.ResponseWriter, filename, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.logger.Warn("failed to write download", zap.String("filename", filename), zap.Error(err))
	}
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode JSON response", zap.Error(err))
	}
}

func (h *Handler) respondError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		h.logger.Error("API error", zap.Error(err), zap.Int("status", status))
	}
	h.respondJSON(w, status, map[string]string{
		"error": err.Error(),
	})
}
