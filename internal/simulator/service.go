// internal/simulator/service.go
package simulator

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/FairForge/lifesync/internal/archive"
	"github.com/FairForge/lifesync/internal/auth"
	"github.com/FairForge/lifesync/internal/cache"
	"github.com/FairForge/lifesync/internal/encoder"
	"github.com/FairForge/lifesync/internal/history"
	"github.com/FairForge/lifesync/internal/model"
	"github.com/FairForge/lifesync/internal/reporting"
	"github.com/FairForge/lifesync/internal/wellness"
)

// ErrReportNotFound is returned when a report is neither cached nor archived.
var ErrReportNotFound = errors.New("simulator: report not found")

// Observer receives simulator events for metrics.
type Observer interface {
	PredictionMade()
	ReportBuilt(d time.Duration, err error)
	HistoryFailed()
	ReportCacheLookup(hit bool)
}

type nopObserver struct{}

func (nopObserver) PredictionMade()                  {}
func (nopObserver) ReportBuilt(time.Duration, error) {}
func (nopObserver) HistoryFailed()                   {}
func (nopObserver) ReportCacheLookup(bool)           {}

// Result is one completed simulation.
type Result struct {
	ID              string                             `json:"id"`
	Profile         wellness.Profile                   `json:"profile"`
	Prediction      wellness.Prediction                `json:"prediction"`
	Interpretations map[string]wellness.Interpretation `json:"interpretations"`
	Summary         wellness.Summary                   `json:"summary"`
	Forecast        wellness.Forecast                  `json:"forecast"`
	Recommendations []wellness.Recommendation          `json:"recommendations"`
	GeneratedAt     time.Time                          `json:"generated_at"`
}

// Input converts the result for the report assembler.
func (r Result) Input() reporting.Input {
	return reporting.Input{
		ID:              r.ID,
		Profile:         r.Profile,
		Prediction:      r.Prediction,
		Forecast:        r.Forecast,
		Recommendations: r.Recommendations,
		GeneratedAt:     r.GeneratedAt,
	}
}

// Generated is a built document ready for download.
type Generated struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	Token       string    `json:"token,omitempty"`
	ExpiresAt   time.Time `json:"expires_at,omitempty"`
	Data        []byte    `json:"-"`
}

// Service runs simulations against the loaded models.
type Service struct {
	models   *model.Registry
	encoder  *encoder.Encoder
	reports  *reporting.Generator
	recorder history.Recorder
	reader   history.Reader
	cache    *cache.LRU
	archive  archive.Archive
	prefix   string
	signer   *auth.Signer
	observer Observer
	logger   *zap.Logger
	now      func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithHistory sets where completed simulations are recorded and read back.
func WithHistory(rec history.Recorder, reader history.Reader) Option {
	return func(s *Service) {
		s.recorder = rec
		s.reader = reader
	}
}

// WithCache keeps built reports for token downloads.
func WithCache(c *cache.LRU) Option {
	return func(s *Service) { s.cache = c }
}

// WithArchive uploads built reports under prefix.
func WithArchive(a archive.Archive, prefix string) Option {
	return func(s *Service) {
		s.archive = a
		s.prefix = prefix
	}
}

// WithSigner issues download tokens for built reports.
func WithSigner(signer *auth.Signer) Option {
	return func(s *Service) { s.signer = signer }
}

// WithObserver reports simulator events.
func WithObserver(o Observer) Option {
	return func(s *Service) {
		if o != nil {
			s.observer = o
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a simulator service.
func NewService(models *model.Registry, enc *encoder.Encoder, reports *reporting.Generator, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if enc == nil {
		enc = encoder.New()
	}
	if reports == nil {
		reports = reporting.NewGenerator(logger)
	}
	s := &Service{
		models:   models,
		encoder:  enc,
		reports:  reports,
		observer: nopObserver{},
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Predict runs Simulate and records the outcome in history. History
// failures are logged only.
func (s *Service) Predict(ctx context.Context, p wellness.Profile) (Result, error) {
	res, err := s.Simulate(ctx, p)
	if err != nil {
		return Result{}, err
	}

	if s.recorder != nil {
		if err := s.recorder.Append(ctx, history.NewRecord(res.Profile, res.Prediction, res.GeneratedAt)); err != nil {
			s.observer.HistoryFailed()
			s.logger.Warn("prediction history not saved", zap.String("id", res.ID), zap.Error(err))
		}
	}
	return res, nil
}

// Simulate scores a profile and derives burnout, forecast and
// recommendations without touching history.
func (s *Service) Simulate(ctx context.Context, p wellness.Profile) (Result, error) {
	p = p.Normalized()
	if err := p.Validate(); err != nil {
		return Result{}, err
	}

	pair, err := s.models.Models()
	if err != nil {
		return Result{}, unavailable(err)
	}

	rawHappiness, err := s.score(ctx, pair.Happiness, p)
	if err != nil {
		return Result{}, err
	}
	rawStress, err := s.score(ctx, pair.Stress, p)
	if err != nil {
		return Result{}, err
	}

	pred := wellness.NewPrediction(p, rawHappiness, rawStress)
	in := reporting.NewInput(p, pred, s.now())
	res := Result{
		ID:         in.ID,
		Profile:    p,
		Prediction: pred,
		Interpretations: map[string]wellness.Interpretation{
			string(wellness.MetricHappiness): wellness.Interpret(wellness.MetricHappiness, pred.Happiness),
			string(wellness.MetricStress):    wellness.Interpret(wellness.MetricStress, pred.Stress),
			string(wellness.MetricBurnout):   wellness.Interpret(wellness.MetricBurnout, pred.BurnoutRisk),
		},
		Summary:         wellness.Summarize(pred),
		Forecast:        in.Forecast,
		Recommendations: in.Recommendations,
		GeneratedAt:     in.GeneratedAt,
	}
	s.observer.PredictionMade()

	s.logger.Debug("prediction made",
		zap.String("id", res.ID),
		zap.Float64("happiness", pred.Happiness),
		zap.Float64("stress", pred.Stress),
		zap.Float64("burnout_risk", pred.BurnoutRisk))
	return res, nil
}

func (s *Service) score(ctx context.Context, m model.Regressor, p wellness.Profile) (float64, error) {
	vec := s.encoder.Encode(p, m.Columns())
	v, err := m.Predict(ctx, vec)
	if err != nil {
		return 0, unavailable(fmt.Errorf("%s: %w", m.Name(), err))
	}
	return v, nil
}

func unavailable(err error) error {
	if errors.Is(err, model.ErrModelUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %v", model.ErrModelUnavailable, err)
}

// Forecast projects from textual seeds. Non-numeric seeds use defaults.
func (s *Service) Forecast(happiness, stress, burnout string) wellness.Forecast {
	return wellness.Project(wellness.ParseSeed(happiness), wellness.ParseSeed(stress), wellness.ParseSeed(burnout))
}

// Export renders a simulation as json, csv or pdf. Exports are not
// recorded in history.
func (s *Service) Export(ctx context.Context, p wellness.Profile, format string) (Generated, error) {
	res, err := s.Simulate(ctx, p)
	if err != nil {
		return Generated{}, err
	}
	return s.render(ctx, res, format)
}

func (s *Service) render(ctx context.Context, res Result, format string) (Generated, error) {
	in := res.Input()
	data, err := s.reports.Export(ctx, in, format)
	if err != nil {
		return Generated{}, err
	}
	return Generated{
		ID:          in.ID,
		Filename:    s.reports.Filename(in, format),
		ContentType: reporting.ContentType(format),
		Data:        data,
	}, nil
}

// Report builds the PDF for a simulation and keeps it for download.
// Reports are not recorded in history. Archive upload is best effort.
func (s *Service) Report(ctx context.Context, p wellness.Profile) (Generated, error) {
	res, err := s.Simulate(ctx, p)
	if err != nil {
		return Generated{}, err
	}
	return s.BuildReport(ctx, res)
}

// BuildReport renders the PDF for an existing result.
func (s *Service) BuildReport(ctx context.Context, res Result) (Generated, error) {
	start := time.Now()
	gen, err := s.render(ctx, res, reporting.FormatPDF)
	s.observer.ReportBuilt(time.Since(start), err)
	if err != nil {
		return Generated{}, err
	}

	if s.cache != nil {
		doc := cache.Document{Filename: gen.Filename, ContentType: gen.ContentType, Data: gen.Data}
		if err := s.cache.Put(ctx, gen.ID, doc); err != nil {
			s.logger.Warn("report not cached", zap.String("id", gen.ID), zap.Error(err))
		}
	}

	if s.archive != nil {
		key := archive.Key(s.prefix, gen.ID, gen.Filename)
		if err := s.archive.Put(ctx, key, gen.ContentType, gen.Data); err != nil {
			s.logger.Warn("report not archived",
				zap.String("backend", s.archive.Name()),
				zap.String("key", key),
				zap.Error(err))
		}
	}

	if s.signer != nil {
		token, expires, err := s.signer.Issue(gen.ID, gen.Filename)
		if err != nil {
			return Generated{}, err
		}
		gen.Token = token
		gen.ExpiresAt = expires
	}

	s.logger.Info("report generated",
		zap.String("id", gen.ID),
		zap.String("filename", gen.Filename),
		zap.Int("bytes", len(gen.Data)),
		zap.Duration("duration", time.Since(start)))
	return gen, nil
}

// Download returns a previously built report. The token must have been
// issued for id.
func (s *Service) Download(ctx context.Context, id, token string) (*cache.Document, error) {
	if s.signer == nil {
		return nil, ErrReportNotFound
	}
	claims, err := s.signer.Verify(token, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		doc, hit, err := s.cache.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		s.observer.ReportCacheLookup(hit)
		if hit {
			return doc, nil
		}
	}

	if s.archive != nil {
		data, err := s.archive.Get(ctx, archive.Key(s.prefix, id, claims.Filename))
		if err == nil {
			return &cache.Document{
				Filename:    claims.Filename,
				ContentType: reporting.ContentType(reporting.FormatPDF),
				Data:        data,
			}, nil
		}
		if !errors.Is(err, archive.ErrNotFound) {
			s.logger.Warn("archive lookup failed", zap.String("id", id), zap.Error(err))
		}
	}

	return nil, ErrReportNotFound
}

// History returns up to limit records, newest first.
func (s *Service) History(ctx context.Context, limit int) ([]history.Record, error) {
	if s.reader == nil {
		return []history.Record{}, nil
	}
	records, err := s.reader.ReadAll(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp.After(records[j].Timestamp)
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// Status reports model availability.
func (s *Service) Status() model.Status {
	return s.models.Status()
}
