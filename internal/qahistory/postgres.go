package qahistory

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/medcase-assist-server/internal/domain"
)

// PostgresStore implements Store using PostgreSQL. It expects the
// qa_history table to already exist (created via migrations).
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a PostgreSQL Q&A history store.
func NewPostgresStore(db *sql.DB) (*PostgresStore, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// NewPostgresStoreFromURL creates a PostgreSQL Q&A history store from
// a connection string.
func NewPostgresStoreFromURL(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	store, err := NewPostgresStore(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// Append records one question/answer exchange.
func (s *PostgresStore) Append(ctx context.Context, entry *domain.QAEntry) error {
	if err := entry.Validate(); err != nil {
		return err
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	query := `
		INSERT INTO qa_history (case_id, question, answer, confidence, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	err := s.db.QueryRowContext(ctx, query,
		entry.CaseID,
		entry.Question,
		entry.Answer,
		entry.Confidence,
		entry.Timestamp,
	).Scan(&entry.ID)

	if err != nil {
		return fmt.Errorf("failed to append qa entry: %w", err)
	}
	return nil
}

// ListByCase returns a case's exchanges in insertion order.
func (s *PostgresStore) ListByCase(ctx context.Context, caseID uuid.UUID) ([]domain.QAEntry, error) {
	query := `
		SELECT id, case_id, question, answer, confidence, created_at
		FROM qa_history
		WHERE case_id = $1
		ORDER BY id ASC
	`

	rows, err := s.db.QueryContext(ctx, query, caseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list qa history: %w", err)
	}
	defer rows.Close()

	var result []domain.QAEntry
	for rows.Next() {
		var entry domain.QAEntry
		if err := rows.Scan(
			&entry.ID, &entry.CaseID, &entry.Question,
			&entry.Answer, &entry.Confidence, &entry.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}

// Count returns the total number of stored exchanges.
func (s *PostgresStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM qa_history").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count qa history: %w", err)
	}
	return count, nil
}

const pgMaxExportLimit = 1000000

// ExportJSON exports all exchanges to a JSON writer.
func (s *PostgresStore) ExportJSON(ctx context.Context, writer io.Writer) error {
	query := `
		SELECT id, case_id, question, answer, confidence, created_at
		FROM qa_history
		ORDER BY id ASC
		LIMIT $1
	`

	rows, err := s.db.QueryContext(ctx, query, pgMaxExportLimit)
	if err != nil {
		return fmt.Errorf("failed to list qa history: %w", err)
	}
	defer rows.Close()

	var entries []domain.QAEntry
	for rows.Next() {
		var entry domain.QAEntry
		if err := rows.Scan(
			&entry.ID, &entry.CaseID, &entry.Question,
			&entry.Answer, &entry.Confidence, &entry.Timestamp,
		); err != nil {
			return fmt.Errorf("failed to scan row: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	export := &Export{
		Version:    "1.0",
		ExportedAt: time.Now().UTC(),
		Count:      len(entries),
		Entries:    entries,
	}

	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(export)
}

// Close closes the store and releases resources.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
