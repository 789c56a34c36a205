package qahistory

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/medcase-assist-server/internal/domain"
)

// SQLiteStore implements Store using a standalone SQLite file. It
// creates the database file and schema if they don't exist.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStore creates a SQLite Q&A history store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		dbPath: dbPath,
	}, nil
}

func createSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS qa_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		case_id TEXT NOT NULL,
		question TEXT NOT NULL,
		answer TEXT NOT NULL,
		confidence REAL NOT NULL DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_qa_history_case_id ON qa_history(case_id);
	`

	_, err := db.Exec(schema)
	return err
}

// Append records one question/answer exchange.
func (s *SQLiteStore) Append(ctx context.Context, entry *domain.QAEntry) error {
	if err := entry.Validate(); err != nil {
		return err
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO qa_history (case_id, question, answer, confidence, created_at)
		VALUES (?, ?, ?, ?, ?)
	`,
		entry.CaseID.String(),
		entry.Question,
		entry.Answer,
		entry.Confidence,
		entry.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to insert: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get insert ID: %w", err)
	}
	entry.ID = id

	return nil
}

// ListByCase returns a case's exchanges in insertion order.
func (s *SQLiteStore) ListByCase(ctx context.Context, caseID uuid.UUID) ([]domain.QAEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, case_id, question, answer, confidence, created_at
		FROM qa_history
		WHERE case_id = ?
		ORDER BY id ASC
	`, caseID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

func scanEntries(rows *sql.Rows) ([]domain.QAEntry, error) {
	var result []domain.QAEntry
	for rows.Next() {
		var entry domain.QAEntry
		var caseID string
		if err := rows.Scan(
			&entry.ID, &caseID, &entry.Question,
			&entry.Answer, &entry.Confidence, &entry.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		parsed, err := uuid.Parse(caseID)
		if err != nil {
			return nil, fmt.Errorf("malformed case id %q: %w", caseID, err)
		}
		entry.CaseID = parsed
		result = append(result, entry)
	}
	return result, rows.Err()
}

// Count returns the total number of stored exchanges.
func (s *SQLiteStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM qa_history").Scan(&count)
	return count, err
}

const maxExportLimit = 1000000

// ExportJSON exports all exchanges to a JSON writer.
func (s *SQLiteStore) ExportJSON(ctx context.Context, writer io.Writer) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, case_id, question, answer, confidence, created_at
		FROM qa_history
		ORDER BY id ASC
		LIMIT ?
	`, maxExportLimit)
	if err != nil {
		return fmt.Errorf("failed to query: %w", err)
	}
	defer rows.Close()

	entries, err := scanEntries(rows)
	if err != nil {
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
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
