// internal/simulator/service_test.go
package simulator

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/FairForge/lifesync/internal/archive"
	"github.com/FairForge/lifesync/internal/auth"
	"github.com/FairForge/lifesync/internal/cache"
	"github.com/FairForge/lifesync/internal/encoder"
	"github.com/FairForge/lifesync/internal/history"
	"github.com/FairForge/lifesync/internal/model"
	"github.com/FairForge/lifesync/internal/wellness"
)

var fixedTime = time.Date(2024, 3, 9, 14, 5, 7, 0, time.Local)

type fixedModel struct {
	name  string
	value float64
	err   error
}

func (m fixedModel) Name() string      { return m.name }
func (m fixedModel) Columns() []string { return []string{"Age", "Sleep Hours", "Country_USA"} }
func (m fixedModel) Predict(_ context.Context, vec encoder.FeatureVector) (float64, error) {
	if len(vec.Values) != 3 {
		return 0, errors.New("unexpected vector")
	}
	return m.value, m.err
}

// Raw outputs 7.2 and 1.85 give happiness 7.2 and stress 4.25.
func testRegistry() *model.Registry {
	return model.NewStaticRegistry(model.Pair{
		Happiness: fixedModel{name: "happiness", value: 7.2},
		Stress:    fixedModel{name: "stress", value: 1.85},
	})
}

type countingObserver struct {
	mu          sync.Mutex
	predictions int
	reports     int
	failures    int
	hits        int
	misses      int
}

func (o *countingObserver) PredictionMade() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.predictions++
}

func (o *countingObserver) ReportBuilt(_ time.Duration, _ error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.reports++
}

func (o *countingObserver) HistoryFailed() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.failures++
}

func (o *countingObserver) ReportCacheLookup(hit bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if hit {
		o.hits++
	} else {
		o.misses++
	}
}

type failingRecorder struct{}

func (failingRecorder) Append(context.Context, history.Record) error {
	return errors.New("disk full")
}

func newTestService(t *testing.T, opts ...Option) (*Service, *history.CSVRecorder) {
	t.Helper()
	rec := history.NewCSVRecorder(filepath.Join(t.TempDir(), "prediction_history.csv"))
	signer, err := auth.NewSigner("test-secret", time.Minute)
	require.NoError(t, err)

	base := []Option{
		WithHistory(rec, rec),
		WithCache(cache.NewLRU(8, 0)),
		WithSigner(signer),
		WithClock(func() time.Time { return fixedTime }),
	}
	return NewService(testRegistry(), encoder.New(), nil, zap.NewNop(), append(base, opts...)...), rec
}

func TestService_Predict(t *testing.T) {
	ctx := context.Background()

	t.Run("scores profile and records history", func(t *testing.T) {
		obs := &countingObserver{}
		svc, rec := newTestService(t, WithObserver(obs))
		p := wellness.DefaultProfile()
		p.Name = "  Ada "

		res, err := svc.Predict(ctx, p)
		require.NoError(t, err)

		assert.NotEmpty(t, res.ID)
		assert.Equal(t, "Ada", res.Profile.Name)
		assert.Equal(t, wellness.Prediction{Happiness: 7.2, Stress: 4.25, BurnoutRisk: 18.1}, res.Prediction)
		assert.Len(t, res.Forecast, len(wellness.Horizons))
		assert.NotEmpty(t, res.Recommendations)
		assert.Equal(t, "Good", res.Interpretations["happiness"].Label)
		assert.Equal(t, "Low Risk", res.Interpretations["burnout"].Label)
		assert.Equal(t, fixedTime, res.GeneratedAt)
		assert.Equal(t, 1, obs.predictions)

		records, err := rec.ReadAll(ctx)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, res.Prediction, records[0].Prediction)
	})

	t.Run("invalid profile", func(t *testing.T) {
		svc, _ := newTestService(t)
		p := wellness.DefaultProfile()
		p.Age = 12

		_, err := svc.Predict(ctx, p)
		assert.ErrorIs(t, err, wellness.ErrInvalidProfile)
	})

	t.Run("models not loaded", func(t *testing.T) {
		reg := model.NewRegistry(model.Source{Backend: model.BackendFile, Dir: t.TempDir()}, zap.NewNop())
		svc := NewService(reg, nil, nil, nil)

		_, err := svc.Predict(ctx, wellness.DefaultProfile())
		assert.ErrorIs(t, err, model.ErrModelUnavailable)
	})

	t.Run("model failure is unavailable", func(t *testing.T) {
		reg := model.NewStaticRegistry(model.Pair{
			Happiness: fixedModel{name: "happiness", value: 7},
			Stress:    fixedModel{name: "stress", err: errors.New("connection refused")},
		})
		svc := NewService(reg, nil, nil, nil)

		_, err := svc.Predict(ctx, wellness.DefaultProfile())
		assert.ErrorIs(t, err, model.ErrModelUnavailable)
		assert.Contains(t, err.Error(), "connection refused")
	})

	t.Run("history failure is only logged", func(t *testing.T) {
		core, logs := observer.New(zapcore.WarnLevel)
		obs := &countingObserver{}
		svc := NewService(testRegistry(), nil, nil, zap.New(core),
			WithHistory(failingRecorder{}, nil), WithObserver(obs))

		_, err := svc.Predict(ctx, wellness.DefaultProfile())
		require.NoError(t, err)
		assert.Equal(t, 1, logs.FilterMessage("prediction history not saved").Len())
		assert.Equal(t, 1, obs.failures)
	})
}

func TestService_Forecast(t *testing.T) {
	svc, _ := newTestService(t)

	f := svc.Forecast("abc", "", "not-a-number")
	assert.Equal(t, wellness.Project(wellness.DefaultHappiness, wellness.DefaultStress, wellness.DefaultBurnout), f)

	f = svc.Forecast("7.2", "4.25", "18.1")
	last, ok := f.At(wellness.HorizonThreeMths)
	require.True(t, ok)
	assert.Equal(t, 34.1, last.BurnoutRisk)
}

func TestService_Report(t *testing.T) {
	ctx := context.Background()
	store := archive.NewLocal(t.TempDir(), zap.NewNop())
	obs := &countingObserver{}
	svc, _ := newTestService(t, WithArchive(store, "reports"), WithObserver(obs))

	p := wellness.DefaultProfile()
	p.Name = "Jane Doe"
	gen, err := svc.Report(ctx, p)
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(gen.Data, []byte("%PDF")))
	assert.Equal(t, "LifeSync_Wellness_Report_Jane_Doe_20240309_140507.pdf", gen.Filename)
	assert.Equal(t, "application/pdf", gen.ContentType)
	assert.NotEmpty(t, gen.Token)
	assert.Equal(t, 1, obs.reports)

	t.Run("download from cache", func(t *testing.T) {
		doc, err := svc.Download(ctx, gen.ID, gen.Token)
		require.NoError(t, err)
		assert.Equal(t, gen.Data, doc.Data)
		assert.Equal(t, 1, obs.hits)
	})

	t.Run("download falls back to archive", func(t *testing.T) {
		svc.cache.Clear()

		doc, err := svc.Download(ctx, gen.ID, gen.Token)
		require.NoError(t, err)
		assert.Equal(t, gen.Data, doc.Data)
		assert.Equal(t, gen.Filename, doc.Filename)
	})

	t.Run("token for another report", func(t *testing.T) {
		_, err := svc.Download(ctx, "other-id", gen.Token)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("unknown report", func(t *testing.T) {
		token, _, err := svc.signer.Issue("missing", "missing.pdf")
		require.NoError(t, err)

		_, err = svc.Download(ctx, "missing", token)
		assert.ErrorIs(t, err, ErrReportNotFound)
	})
}

type brokenArchive struct{}

func (brokenArchive) Name() string { return "broken" }
func (brokenArchive) Put(context.Context, string, string, []byte) error {
	return errors.New("bucket unreachable")
}
func (brokenArchive) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New("bucket unreachable")
}

func TestService_ReportArchiveFailure(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	svc := NewService(testRegistry(), nil, nil, zap.New(core), WithArchive(brokenArchive{}, ""))

	gen, err := svc.Report(context.Background(), wellness.DefaultProfile())
	require.NoError(t, err)
	assert.NotEmpty(t, gen.Data)
	assert.Empty(t, gen.Token, "no signer configured")
	assert.Equal(t, 1, logs.FilterMessage("report not archived").Len())
}

func TestService_Export(t *testing.T) {
	svc, _ := newTestService(t)

	gen, err := svc.Export(context.Background(), wellness.DefaultProfile(), "csv")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", gen.ContentType)
	assert.Equal(t, "LifeSync_Forecast_Anonymous_20240309_140507.csv", gen.Filename)
	assert.Contains(t, string(gen.Data), "(Forecast: 3 Months)")

	_, err = svc.Export(context.Background(), wellness.DefaultProfile(), "xml")
	assert.Error(t, err)
}

func TestService_PredictRejectsMultilineName(t *testing.T) {
	ctx := context.Background()
	svc, rec := newTestService(t)

	p := wellness.DefaultProfile()
	p.Name = "Ada\r\nLovelace"
	_, err := svc.Predict(ctx, p)
	assert.ErrorIs(t, err, wellness.ErrInvalidProfile)

	records, err := rec.ReadAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestService_ReportAndExportSkipHistory(t *testing.T) {
	ctx := context.Background()
	svc, rec := newTestService(t)

	_, err := svc.Predict(ctx, wellness.DefaultProfile())
	require.NoError(t, err)
	_, err = svc.Report(ctx, wellness.DefaultProfile())
	require.NoError(t, err)
	_, err = svc.Export(ctx, wellness.DefaultProfile(), "csv")
	require.NoError(t, err)

	records, err := rec.ReadAll(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 1, "only the prediction is recorded")
}

func TestService_History(t *testing.T) {
	ctx := context.Background()
	now := fixedTime
	svc, _ := newTestService(t, WithClock(func() time.Time {
		now = now.Add(time.Minute)
		return now
	}))

	for _, name := range []string{"first", "second", "third"} {
		p := wellness.DefaultProfile()
		p.Name = name
		_, err := svc.Predict(ctx, p)
		require.NoError(t, err)
	}

	records, err := svc.History(ctx, 2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "third", records[0].Profile.Name)
	assert.Equal(t, "second", records[1].Profile.Name)

	empty := NewService(testRegistry(), nil, nil, nil)
	records, err = empty.History(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, records)
}
