package database

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"signalbot/models"
)

// DB wraps the PostgreSQL connection used to persist per-asset
// accuracy records across restarts.
type DB struct {
	*sql.DB
}

// ConnectionParams holds PostgreSQL connection parameters
type ConnectionParams struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// New creates a new database connection
func New(params ConnectionParams) (*DB, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		params.Host, params.Port, params.User, params.Password, params.DBName, params.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	// Check connection
	if err := db.Ping(); err != nil {
		return nil, err
	}

	// Create tables if they don't exist
	if err := createTables(db); err != nil {
		return nil, err
	}

	return &DB{db}, nil
}

// createTables creates the necessary tables if they don't exist
func createTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS signal_accuracy (
			asset TEXT PRIMARY KEY,
			total INTEGER NOT NULL DEFAULT 0,
			correct INTEGER NOT NULL DEFAULT 0,
			updated_at TIMESTAMP NOT NULL DEFAULT NOW()
		)
	`)
	return err
}

// Load returns every persisted accuracy record keyed by asset.
func (db *DB) Load(ctx context.Context) (map[string]models.AccuracyRecord, error) {
	rows, err := db.QueryContext(ctx, `SELECT asset, total, correct FROM signal_accuracy`)
	if err != nil {
		return nil, fmt.Errorf("querying accuracy records: %w", err)
	}
	defer rows.Close()

	records := make(map[string]models.AccuracyRecord)
	for rows.Next() {
		var asset string
		var rec models.AccuracyRecord
		if err := rows.Scan(&asset, &rec.Total, &rec.Correct); err != nil {
			return nil, fmt.Errorf("scanning accuracy record: %w", err)
		}
		records[asset] = rec
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}

// Upsert writes the accuracy record for one asset.
func (db *DB) Upsert(ctx context.Context, asset string, record models.AccuracyRecord) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO signal_accuracy (asset, total, correct, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (asset)
		DO UPDATE SET
			total = EXCLUDED.total,
			correct = EXCLUDED.correct,
			updated_at = EXCLUDED.updated_at
	`, asset, record.Total, record.Correct)
	if err != nil {
		return fmt.Errorf("upserting accuracy for %s: %w", asset, err)
	}

	return nil
}
