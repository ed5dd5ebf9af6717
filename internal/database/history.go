// internal/database/history.go
package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/FairForge/lifesync/internal/history"
)

// HistoryStore mirrors the prediction history into PostgreSQL.
type HistoryStore struct {
	db *sql.DB
}

func NewHistoryStore(db *sql.DB) *HistoryStore {
	return &HistoryStore{db: db}
}

// Append inserts one record.
func (h *HistoryStore) Append(ctx context.Context, r history.Record) error {
	query := `
        INSERT INTO prediction_history (
            recorded_at, name, age, gender, country, sleep_hours, work_hours_per_week,
            screen_time_per_day, social_interaction_score, exercise_level, diet_type,
            mental_health_condition, happiness, stress, burnout_risk
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
    `
	p := r.Profile
	_, err := h.db.ExecContext(ctx, query,
		r.Timestamp, p.Name, p.Age, p.Gender, p.Country, p.SleepHours, p.WorkHoursPerWeek,
		p.ScreenTimePerDay, p.SocialInteractionScore, p.ExerciseLevel, p.DietType,
		p.MentalHealthCondition, r.Prediction.Happiness, r.Prediction.Stress, r.Prediction.BurnoutRisk,
	)
	if err != nil {
		return fmt.Errorf("insert prediction history: %w", err)
	}
	return nil
}

// Recent returns up to limit records, newest first.
func (h *HistoryStore) Recent(ctx context.Context, limit int) ([]history.Record, error) {
	query := `
        SELECT recorded_at, name, age, gender, country, sleep_hours, work_hours_per_week,
               screen_time_per_day, social_interaction_score, exercise_level, diet_type,
               mental_health_condition, happiness, stress, burnout_risk
        FROM prediction_history
        ORDER BY recorded_at DESC
        LIMIT $1
    `
	rows, err := h.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query prediction history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []history.Record
	for rows.Next() {
		var r history.Record
		p := &r.Profile
		err := rows.Scan(&r.Timestamp, &p.Name, &p.Age, &p.Gender, &p.Country, &p.SleepHours,
			&p.WorkHoursPerWeek, &p.ScreenTimePerDay, &p.SocialInteractionScore, &p.ExerciseLevel,
			&p.DietType, &p.MentalHealthCondition, &r.Prediction.Happiness, &r.Prediction.Stress,
			&r.Prediction.BurnoutRisk)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
