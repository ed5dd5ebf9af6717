// internal/database/postgres.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// Config holds database configuration
type Config struct {
	URL      string `yaml:"url"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
}

// DSN returns the connection string. An explicit URL wins over the
// individual fields.
func (c Config) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	port := c.Port
	if port == 0 {
		port = 5432
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, port, c.User, c.Password, c.Database, sslMode)
}

// Enabled reports whether a database is configured.
func (c Config) Enabled() bool {
	return c.URL != "" || c.Host != ""
}

// Postgres represents a PostgreSQL connection
type Postgres struct {
	db *sql.DB
}

// NewPostgres creates a new PostgreSQL connection
func NewPostgres(cfg Config) (*Postgres, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &Postgres{db: db}, nil
}

// NewFromDB wraps an existing handle.
func NewFromDB(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// DB exposes the underlying handle.
func (p *Postgres) DB() *sql.DB {
	return p.db
}

// Close closes the database connection
func (p *Postgres) Close() error {
	return p.db.Close()
}

// Ping verifies the database connection
func (p *Postgres) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

// CreateTables creates the necessary database tables
func (p *Postgres) CreateTables(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS prediction_history (
			id SERIAL PRIMARY KEY,
			recorded_at TIMESTAMP NOT NULL,
			name VARCHAR(120) NOT NULL DEFAULT '',
			age INTEGER NOT NULL,
			gender VARCHAR(32) NOT NULL,
			country VARCHAR(64) NOT NULL,
			sleep_hours DOUBLE PRECISION NOT NULL,
			work_hours_per_week INTEGER NOT NULL,
			screen_time_per_day DOUBLE PRECISION NOT NULL,
			social_interaction_score INTEGER NOT NULL,
			exercise_level VARCHAR(32) NOT NULL,
			diet_type VARCHAR(32) NOT NULL,
			mental_health_condition VARCHAR(32) NOT NULL,
			happiness DOUBLE PRECISION NOT NULL,
			stress DOUBLE PRECISION NOT NULL,
			burnout_risk DOUBLE PRECISION NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_prediction_history_recorded_at
			ON prediction_history (recorded_at)`,
	}

	for _, query := range queries {
		if _, err := p.db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}

	return nil
}
