// Package qahistory provides append-only storage for per-case doctor
// question/answer exchanges. Two backends are available: PostgreSQL
// alongside the case store, and a standalone SQLite file for
// single-node deployments.
package qahistory

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/medcase-assist-server/internal/domain"
)

// Store defines the Q&A history storage operations. Entries are never
// updated or reordered after insertion.
type Store interface {
	// Append records one question/answer exchange for a case.
	Append(ctx context.Context, entry *domain.QAEntry) error

	// ListByCase returns a case's exchanges in insertion order.
	ListByCase(ctx context.Context, caseID uuid.UUID) ([]domain.QAEntry, error)

	// Count returns the total number of stored exchanges.
	Count(ctx context.Context) (int64, error)

	// ExportJSON exports all exchanges to a JSON writer.
	ExportJSON(ctx context.Context, writer io.Writer) error

	// Close closes the store and releases resources.
	Close() error
}

// Export is the JSON export format.
type Export struct {
	Version    string           `json:"version"`
	ExportedAt time.Time        `json:"exported_at"`
	Count      int              `json:"count"`
	Entries    []domain.QAEntry `json:"entries"`
}
