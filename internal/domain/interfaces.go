package domain

import (
	"context"

	"github.com/google/uuid"
)

// CaseRepository persists cases and their pipeline-owned sub-records.
// Sub-record writers overwrite the whole sub-record for their stage;
// concurrent writers against the same case are last-writer-wins.
type CaseRepository interface {
	Create(ctx context.Context, c *Case) error
	GetByID(ctx context.Context, id uuid.UUID) (*Case, error)
	UpdateMedications(ctx context.Context, id uuid.UUID, medications []string) error
	SaveAnalysis(ctx context.Context, id uuid.UUID, analysis *AnalysisResult) error
	SaveInteractions(ctx context.Context, id uuid.UUID, report *InteractionReport) error
	SaveEducation(ctx context.Context, id uuid.UUID, education *PatientEducation) error
	SaveFinalReport(ctx context.Context, id uuid.UUID, report *FinalReport) error
	SaveDoctorNotes(ctx context.Context, id uuid.UUID, notes string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// LiteratureSearcher is the external literature-search collaborator.
// An empty candidate list is a valid response, not an error.
type LiteratureSearcher interface {
	Search(ctx context.Context, query string) ([]LiteratureCandidate, error)
}

// Summarizer is the external completion collaborator used for clinical
// briefs and doctor Q&A. Failures and timeouts are reported as errors
// wrapping ErrCollaboratorFailed / ErrCollaboratorTimedOut so stages
// can take their fallback branch deterministically.
type Summarizer interface {
	Summarize(ctx context.Context, prompt string) (string, error)
	Complete(ctx context.Context, prompt string) (string, error)
}

// MachineTranslator is the external machine-translation collaborator.
// Source language is fixed to English; target is an ISO 639-1 code.
type MachineTranslator interface {
	Translate(ctx context.Context, text, targetCode string) (string, error)
}
