// internal/history/history_test.go
package history

import (
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/FairForge/lifesync/internal/wellness"
)

func sampleRecord(name string) Record {
	p := wellness.DefaultProfile()
	p.Name = name
	return NewRecord(p, wellness.Prediction{Happiness: 7, Stress: 4.25, BurnoutRisk: 18.1},
		time.Date(2024, 3, 9, 14, 5, 7, 0, time.Local))
}

func readRows(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestRecord_Row(t *testing.T) {
	row := sampleRecord("Ada").Row()
	assert.Equal(t, []string{
		"2024-03-09 14:05:07", "Ada", "30", "Female", "7.5", "40", "4.0", "6",
		"Moderate", "Balanced", "None", "7.0", "4.25", "18.1",
	}, row)
	assert.Len(t, row, len(Header))

	back, err := ParseRow(row)
	require.NoError(t, err)
	assert.True(t, back.Timestamp.Equal(sampleRecord("Ada").Timestamp))
	assert.Equal(t, sampleRecord("Ada").Prediction, back.Prediction)
}

func TestParseRow_Errors(t *testing.T) {
	_, err := ParseRow([]string{"too", "short"})
	assert.Error(t, err)

	row := sampleRecord("Ada").Row()
	row[2] = "thirty"
	_, err = ParseRow(row)
	assert.Error(t, err)

	row = sampleRecord("Ada").Row()
	row[0] = "yesterday"
	_, err = ParseRow(row)
	assert.Error(t, err)
}

func TestCSVRecorder(t *testing.T) {
	ctx := context.Background()

	t.Run("header written once", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "outputs", "prediction_history.csv")
		rec := NewCSVRecorder(path)

		require.NoError(t, rec.Append(ctx, sampleRecord("Ada")))
		require.NoError(t, rec.Append(ctx, sampleRecord("Bo")))

		rows := readRows(t, path)
		require.Len(t, rows, 3)
		assert.Equal(t, Header, rows[0])
		assert.Equal(t, "Ada", rows[1][1])
		assert.Equal(t, "Bo", rows[2][1])
	})

	t.Run("existing file keeps its content", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "history.csv")
		existing := strings.Join(Header, ",") + "\n" + strings.Join(sampleRecord("Old").Row(), ",") + "\n"
		require.NoError(t, os.WriteFile(path, []byte(existing), 0644))

		require.NoError(t, NewCSVRecorder(path).Append(ctx, sampleRecord("New")))

		raw, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(string(raw), existing))
		assert.Len(t, readRows(t, path), 3)
	})

	t.Run("one physical line per record", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "history.csv")
		rec := NewCSVRecorder(path)
		for i := 0; i < 5; i++ {
			require.NoError(t, rec.Append(ctx, sampleRecord("Doe, Jane")))
		}

		raw, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Len(t, strings.Split(strings.TrimSuffix(string(raw), "\n"), "\n"), 6)
	})

	t.Run("names with commas are quoted", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "history.csv")
		rec := NewCSVRecorder(path)
		require.NoError(t, rec.Append(ctx, sampleRecord("Doe, Jane")))

		got, err := rec.ReadAll(ctx)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "Doe, Jane", got[0].Profile.Name)
	})

	t.Run("concurrent appends keep rows whole", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "history.csv")
		rec := NewCSVRecorder(path)

		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				assert.NoError(t, rec.Append(ctx, sampleRecord("Parallel")))
			}()
		}
		wg.Wait()

		got, err := rec.ReadAll(ctx)
		require.NoError(t, err)
		assert.Len(t, got, 20)
	})

	t.Run("missing file reads as empty", func(t *testing.T) {
		got, err := NewCSVRecorder(filepath.Join(t.TempDir(), "none.csv")).ReadAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("unwritable location fails", func(t *testing.T) {
		dir := t.TempDir()
		blocker := filepath.Join(dir, "file")
		require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

		err := NewCSVRecorder(filepath.Join(blocker, "history.csv")).Append(ctx, sampleRecord("Ada"))
		assert.Error(t, err)
	})
}

type failingRecorder struct{ err error }

func (f failingRecorder) Append(context.Context, Record) error { return f.err }

func TestMulti(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	primary := NewCSVRecorder(filepath.Join(dir, "outputs", "prediction_history.csv"))
	secondary := NewCSVRecorder(filepath.Join(dir, "predictions", "prediction_results.csv"))

	t.Run("writes every sink", func(t *testing.T) {
		m := NewMulti(zap.NewNop(),
			Sink{Name: "primary", Recorder: primary},
			Sink{Name: "secondary", Recorder: secondary})
		require.NoError(t, m.Append(ctx, sampleRecord("Ada")))
		assert.Equal(t, []string{"primary", "secondary"}, m.Sinks())

		for _, r := range []*CSVRecorder{primary, secondary} {
			got, err := r.ReadAll(ctx)
			require.NoError(t, err)
			assert.Len(t, got, 1)
		}
	})

	t.Run("failing sink does not stop the others", func(t *testing.T) {
		core, logs := observer.New(zapcore.WarnLevel)
		broken := errors.New("database down")
		m := NewMulti(zap.New(core),
			Sink{Name: "postgres", Recorder: failingRecorder{broken}},
			Sink{Name: "primary", Recorder: primary})

		err := m.Append(ctx, sampleRecord("Bo"))
		assert.ErrorIs(t, err, broken)
		assert.Equal(t, 1, logs.Len())

		got, err := primary.ReadAll(ctx)
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})
}
