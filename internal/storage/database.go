package storage

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // Registers the sqlite driver
)

// DB represents a wrapper around the SQL database connection.
type DB struct {
	conn *sql.DB
}

// Open creates a new database connection and ensures the schema is up to date.
func Open(dsn string) (*DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Execute the schema to create tables if they don't exist.
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &DB{conn: db}, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// PredictionRecord is one logged interval prediction.
type PredictionRecord struct {
	ID           int64
	ItemID       string
	Subject      string
	Difficulty   string
	IntervalDays float64
	CreatedAt    time.Time
}

// InsertPrediction appends a prediction to the log.
func (db *DB) InsertPrediction(itemID, subject, difficulty string, intervalDays float64) error {
	_, err := db.conn.Exec(`
		INSERT INTO predictions (item_id, subject, difficulty, interval_days, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, itemID, subject, difficulty, intervalDays, time.Now())
	if err != nil {
		return fmt.Errorf("failed to insert prediction for item %s: %w", itemID, err)
	}
	return nil
}

// RecentPredictions returns the newest logged predictions, newest first.
func (db *DB) RecentPredictions(limit int) ([]PredictionRecord, error) {
	rows, err := db.conn.Query(`
		SELECT id, item_id, subject, difficulty, interval_days, created_at
		FROM predictions
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent predictions: %w", err)
	}
	defer rows.Close()

	var records []PredictionRecord
	for rows.Next() {
		var r PredictionRecord
		if err := rows.Scan(&r.ID, &r.ItemID, &r.Subject, &r.Difficulty, &r.IntervalDays, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan prediction row: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// EaseRecord is one logged ease-factor adjustment.
type EaseRecord struct {
	ID          int64
	ItemID      string
	OldEase     float64
	NewEase     float64
	Performance float64
	CreatedAt   time.Time
}

// InsertEaseUpdate appends an ease-factor adjustment to the history.
func (db *DB) InsertEaseUpdate(itemID string, oldEase, newEase, performance float64) error {
	_, err := db.conn.Exec(`
		INSERT INTO ease_history (item_id, old_ease, new_ease, performance, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, itemID, oldEase, newEase, performance, time.Now())
	if err != nil {
		return fmt.Errorf("failed to insert ease update for item %s: %w", itemID, err)
	}
	return nil
}

// EaseHistory returns all recorded ease adjustments for an item, oldest first.
func (db *DB) EaseHistory(itemID string) ([]EaseRecord, error) {
	rows, err := db.conn.Query(`
		SELECT id, item_id, old_ease, new_ease, performance, created_at
		FROM ease_history
		WHERE item_id = ?
		ORDER BY id ASC
	`, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to query ease history for item %s: %w", itemID, err)
	}
	defer rows.Close()

	var records []EaseRecord
	for rows.Next() {
		var r EaseRecord
		if err := rows.Scan(&r.ID, &r.ItemID, &r.OldEase, &r.NewEase, &r.Performance, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan ease history row: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
