// internal/database/postgres_test.go
package database

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FairForge/lifesync/internal/history"
	"github.com/FairForge/lifesync/internal/wellness"
)

var historyColumns = []string{
	"recorded_at", "name", "age", "gender", "country", "sleep_hours", "work_hours_per_week",
	"screen_time_per_day", "social_interaction_score", "exercise_level", "diet_type",
	"mental_health_condition", "happiness", "stress", "burnout_risk",
}

func sampleRecord() history.Record {
	p := wellness.DefaultProfile()
	p.Name = "Sam"
	return history.NewRecord(p, wellness.Prediction{Happiness: 7.2, Stress: 4.5, BurnoutRisk: 18.1},
		time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC))
}

func TestConfig_DSN(t *testing.T) {
	t.Run("fields", func(t *testing.T) {
		cfg := Config{Host: "db", Database: "lifesync", User: "app", Password: "pw"}
		assert.Equal(t, "host=db port=5432 user=app password=pw dbname=lifesync sslmode=disable", cfg.DSN())
		assert.True(t, cfg.Enabled())
	})

	t.Run("url wins", func(t *testing.T) {
		cfg := Config{URL: "postgres://app@db/lifesync", Host: "ignored"}
		assert.Equal(t, "postgres://app@db/lifesync", cfg.DSN())
	})

	t.Run("disabled", func(t *testing.T) {
		assert.False(t, Config{}.Enabled())
	})
}

func TestPostgres_CreateTables(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS prediction_history").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE INDEX IF NOT EXISTS idx_prediction_history_recorded_at").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, NewFromDB(db).CreateTables(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_CreateTablesError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE").WillReturnError(errors.New("permission denied"))

	err = NewFromDB(db).CreateTables(context.Background())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "create table")
}

func TestHistoryStore_Append(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	r := sampleRecord()
	mock.ExpectExec("INSERT INTO prediction_history").
		WithArgs(r.Timestamp, "Sam", 30, "Female", "USA", 7.5, 40, 4.0, 6, "Moderate", "Balanced", "None", 7.2, 4.5, 18.1).
		WillReturnResult(sqlmock.NewResult(1, 1))

	store := NewHistoryStore(db)
	require.NoError(t, store.Append(context.Background(), r))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHistoryStore_AppendError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO prediction_history").WillReturnError(errors.New("connection reset"))

	err = NewHistoryStore(db).Append(context.Background(), sampleRecord())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "insert prediction history")
}

func TestHistoryStore_Recent(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	r := sampleRecord()
	rows := sqlmock.NewRows(historyColumns).
		AddRow(r.Timestamp, "Sam", 30, "Female", "USA", 7.5, 40, 4.0, 6, "Moderate", "Balanced", "None", 7.2, 4.5, 18.1)
	mock.ExpectQuery("SELECT (.+) FROM prediction_history").WithArgs(10).WillReturnRows(rows)

	got, err := NewHistoryStore(db).Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, r, got[0])
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Integration check against a real server, enabled by LIFESYNC_TEST_DATABASE_URL.
func TestPostgres_Integration(t *testing.T) {
	dsn := os.Getenv("LIFESYNC_TEST_DATABASE_URL")
	if dsn == "" || testing.Short() {
		t.Skip("LIFESYNC_TEST_DATABASE_URL not set")
	}

	pg, err := NewPostgres(Config{URL: dsn})
	require.NoError(t, err)
	defer pg.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, pg.Ping(ctx))
	require.NoError(t, pg.CreateTables(ctx))
	require.NoError(t, NewHistoryStore(pg.DB()).Append(ctx, sampleRecord()))
}
