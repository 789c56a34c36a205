package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Case is the central entity: a patient encounter record plus the
// AI-derived artifacts accumulated by the enrichment pipeline. Core
// fields are set at submission and immutable afterwards except for
// medication-list edits through the same endpoint; each sub-record is
// owned by exactly one pipeline stage and replaced whole on re-run.
type Case struct {
	ID             uuid.UUID      `json:"id"`
	PatientName    string         `json:"patient_name"`
	Age            int            `json:"age"`
	Gender         Gender         `json:"gender"`
	Symptoms       string         `json:"symptoms"`
	Diagnosis      string         `json:"diagnosis"`
	Medications    []string       `json:"medications"`
	SubmissionType SubmissionType `json:"submission_type"`
	FileURL        string         `json:"file_url,omitempty"`
	DoctorNotes    string         `json:"doctor_notes,omitempty"`

	AIAnalysis       *AnalysisResult    `json:"ai_analysis,omitempty"`
	Interactions     *InteractionReport `json:"interactions,omitempty"`
	PatientEducation *PatientEducation  `json:"patient_education,omitempty"`
	FinalReport      *FinalReport       `json:"final_report,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LiteratureReference is one ranked literature candidate retained by
// the relevance policy. Entries are only stored when their score met
// the acceptance threshold at insertion time.
type LiteratureReference struct {
	PMID           string `json:"pmid"`
	Title          string `json:"title"`
	Abstract       string `json:"abstract"`
	RelevanceScore int    `json:"relevance_score"`
}

// AnalysisResult is the output of the case-enrichment pipeline.
type AnalysisResult struct {
	Brief          string                `json:"brief"`
	RelevantPapers []LiteratureReference `json:"relevant_papers"`
	AnalysisText   string                `json:"analysis_text"`
	Timestamp      time.Time             `json:"analysis_timestamp"`
}

// InteractionFinding is one detected drug-pair interaction. The pair
// is unordered; both members appear in Case.Medications at check time.
type InteractionFinding struct {
	Drugs    [2]string `json:"drugs"`
	Severity Severity  `json:"severity"`
	Notes    string    `json:"notes"`
}

// InteractionReport is the persisted result of an interaction check.
type InteractionReport struct {
	Data      []InteractionFinding `json:"data"`
	CheckedAt time.Time            `json:"checked_at"`
}

// PatientEducation holds the simplified, translated explanation
// generated for the patient.
type PatientEducation struct {
	SimpleExplanation string    `json:"simple_explanation"`
	Language          Language  `json:"language"`
	TranslatedText    string    `json:"translated_text"`
	GeneratedAt       time.Time `json:"generated_at"`
}

// FinalReport is the rendered case report. DoctorNotes are stored and
// rendered byte-for-byte as entered; no simplification or translation
// is ever applied to them.
type FinalReport struct {
	ReportText  string    `json:"report_text"`
	DoctorNotes string    `json:"doctor_notes"`
	GeneratedAt time.Time `json:"generated_at"`
}

// QAEntry is one question/answer exchange in a case's append-only
// Q&A history.
type QAEntry struct {
	ID         int64     `json:"id,omitempty"`
	CaseID     uuid.UUID `json:"case_id"`
	Question   string    `json:"question"`
	Answer     string    `json:"answer"`
	Confidence float64   `json:"confidence"`
	Timestamp  time.Time `json:"timestamp"`
}

// LiteratureCandidate is a raw, unscored result from the literature
// search collaborator. An absent abstract is valid.
type LiteratureCandidate struct {
	PMID     string `json:"pmid"`
	Title    string `json:"title"`
	Abstract string `json:"abstract"`
}

// Validate checks the submission-time invariants of a case.
func (c *Case) Validate() error {
	if strings.TrimSpace(c.PatientName) == "" {
		return NewValidationError("patient_name", "patient name is required", c.PatientName)
	}
	if c.Age <= 0 {
		return NewValidationError("age", "age must be a positive integer", c.Age)
	}
	if !c.Gender.IsValid() {
		return NewValidationError("gender", "gender must be M, F, or Other", string(c.Gender))
	}
	if strings.TrimSpace(c.Symptoms) == "" {
		return NewValidationError("symptoms", "symptoms are required", c.Symptoms)
	}
	if strings.TrimSpace(c.Diagnosis) == "" {
		return NewValidationError("diagnosis", "diagnosis is required", c.Diagnosis)
	}
	if !c.SubmissionType.IsValid() {
		return NewValidationError("submission_type", "submission type must be text, voice, or file", string(c.SubmissionType))
	}
	return nil
}

// MedicationList renders the medication list for prompts and briefs,
// falling back to "supportive care" when no medications are recorded.
func (c *Case) MedicationList() string {
	if len(c.Medications) == 0 {
		return "supportive care"
	}
	return strings.Join(c.Medications, ", ")
}

// Validate checks the confidence bound on a Q&A entry.
func (q *QAEntry) Validate() error {
	if strings.TrimSpace(q.Question) == "" {
		return NewValidationError("question", "question is required", q.Question)
	}
	if q.Confidence < 0 || q.Confidence > 1 {
		return NewValidationError("confidence", fmt.Sprintf("confidence %v outside [0,1]", q.Confidence), q.Confidence)
	}
	return nil
}
