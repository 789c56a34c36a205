// Package repository contains the PostgreSQL persistence layer for
// cases and their pipeline-owned sub-records.
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/medcase-assist-server/internal/domain"
)

// CaseRepository persists cases in PostgreSQL. Medications and each
// AI sub-record are stored as JSONB columns; sub-record writes replace
// the whole column, so concurrent re-runs are last-writer-wins.
type CaseRepository struct {
	db  *pgxpool.Pool
	log *logrus.Logger
}

// NewCaseRepository creates a new case repository.
func NewCaseRepository(db *pgxpool.Pool, logger *logrus.Logger) *CaseRepository {
	return &CaseRepository{
		db:  db,
		log: logger,
	}
}

// Create inserts a new case. The caller assigns the ID.
func (r *CaseRepository) Create(ctx context.Context, c *domain.Case) error {
	medications, err := json.Marshal(c.Medications)
	if err != nil {
		return fmt.Errorf("encoding medications: %w", err)
	}

	query := `
		INSERT INTO cases (
			id, patient_name, age, gender, symptoms, diagnosis,
			medications, submission_type, file_url, doctor_notes,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11
		)`

	now := time.Now().UTC()
	_, err = r.db.Exec(ctx, query,
		c.ID,
		c.PatientName,
		c.Age,
		string(c.Gender),
		c.Symptoms,
		c.Diagnosis,
		medications,
		string(c.SubmissionType),
		c.FileURL,
		c.DoctorNotes,
		now,
	)

	if err != nil {
		r.log.WithFields(logrus.Fields{
			"case_id": c.ID,
			"error":   err,
		}).Error("Failed to create case")
		return fmt.Errorf("creating case: %w", err)
	}

	c.CreatedAt = now
	c.UpdatedAt = now

	r.log.WithFields(logrus.Fields{
		"case_id":   c.ID,
		"diagnosis": c.Diagnosis,
	}).Info("Case created successfully")

	return nil
}

// GetByID retrieves a case with all of its sub-records.
func (r *CaseRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Case, error) {
	query := `
		SELECT id, patient_name, age, gender, symptoms, diagnosis,
			   medications, submission_type, file_url, doctor_notes,
			   ai_analysis, interactions, patient_education, final_report,
			   created_at, updated_at
		FROM cases
		WHERE id = $1`

	var (
		c            domain.Case
		gender       string
		submission   string
		medications  []byte
		analysisRaw  []byte
		interactRaw  []byte
		educationRaw []byte
		reportRaw    []byte
	)

	err := r.db.QueryRow(ctx, query, id).Scan(
		&c.ID,
		&c.PatientName,
		&c.Age,
		&gender,
		&c.Symptoms,
		&c.Diagnosis,
		&medications,
		&submission,
		&c.FileURL,
		&c.DoctorNotes,
		&analysisRaw,
		&interactRaw,
		&educationRaw,
		&reportRaw,
		&c.CreatedAt,
		&c.UpdatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("case %s: %w", id, domain.ErrCaseNotFound)
		}
		r.log.WithFields(logrus.Fields{
			"case_id": id,
			"error":   err,
		}).Error("Failed to get case by ID")
		return nil, fmt.Errorf("getting case by ID: %w", err)
	}

	c.Gender = domain.Gender(gender)
	c.SubmissionType = domain.SubmissionType(submission)

	if err := json.Unmarshal(medications, &c.Medications); err != nil {
		return nil, fmt.Errorf("decoding medications: %w", err)
	}
	if err := decodeSubRecord(analysisRaw, &c.AIAnalysis); err != nil {
		return nil, fmt.Errorf("decoding analysis: %w", err)
	}
	if err := decodeSubRecord(interactRaw, &c.Interactions); err != nil {
		return nil, fmt.Errorf("decoding interactions: %w", err)
	}
	if err := decodeSubRecord(educationRaw, &c.PatientEducation); err != nil {
		return nil, fmt.Errorf("decoding patient education: %w", err)
	}
	if err := decodeSubRecord(reportRaw, &c.FinalReport); err != nil {
		return nil, fmt.Errorf("decoding final report: %w", err)
	}

	return &c, nil
}

// decodeSubRecord unmarshals a nullable JSONB column into *T, leaving
// the target nil when the column is NULL.
func decodeSubRecord[T any](raw []byte, target **T) error {
	if len(raw) == 0 {
		return nil
	}
	value := new(T)
	if err := json.Unmarshal(raw, value); err != nil {
		return err
	}
	*target = value
	return nil
}

// UpdateMedications replaces the medication list on a case.
func (r *CaseRepository) UpdateMedications(ctx context.Context, id uuid.UUID, medications []string) error {
	if medications == nil {
		medications = []string{}
	}
	encoded, err := json.Marshal(medications)
	if err != nil {
		return fmt.Errorf("encoding medications: %w", err)
	}

	return r.updateColumn(ctx, id, "medications", encoded)
}

// SaveAnalysis replaces the analysis sub-record.
func (r *CaseRepository) SaveAnalysis(ctx context.Context, id uuid.UUID, analysis *domain.AnalysisResult) error {
	return r.saveSubRecord(ctx, id, "ai_analysis", analysis)
}

// SaveInteractions replaces the interaction-report sub-record.
func (r *CaseRepository) SaveInteractions(ctx context.Context, id uuid.UUID, report *domain.InteractionReport) error {
	return r.saveSubRecord(ctx, id, "interactions", report)
}

// SaveEducation replaces the patient-education sub-record.
func (r *CaseRepository) SaveEducation(ctx context.Context, id uuid.UUID, education *domain.PatientEducation) error {
	return r.saveSubRecord(ctx, id, "patient_education", education)
}

// SaveFinalReport replaces the final-report sub-record.
func (r *CaseRepository) SaveFinalReport(ctx context.Context, id uuid.UUID, report *domain.FinalReport) error {
	return r.saveSubRecord(ctx, id, "final_report", report)
}

// SaveDoctorNotes stores the doctor's notes verbatim.
func (r *CaseRepository) SaveDoctorNotes(ctx context.Context, id uuid.UUID, notes string) error {
	return r.updateColumn(ctx, id, "doctor_notes", notes)
}

// Delete removes a case and, through the foreign key, its Q&A history.
func (r *CaseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM cases WHERE id = $1`, id)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"case_id": id,
			"error":   err,
		}).Error("Failed to delete case")
		return fmt.Errorf("deleting case: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("case %s: %w", id, domain.ErrCaseNotFound)
	}

	r.log.WithField("case_id", id).Info("Case deleted successfully")
	return nil
}

func (r *CaseRepository) saveSubRecord(ctx context.Context, id uuid.UUID, column string, record any) error {
	encoded, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", column, err)
	}
	return r.updateColumn(ctx, id, column, encoded)
}

// updateColumn replaces a single column and bumps updated_at. The
// column name is always one of our fixed identifiers, never input.
func (r *CaseRepository) updateColumn(ctx context.Context, id uuid.UUID, column string, value any) error {
	query := fmt.Sprintf(`UPDATE cases SET %s = $2, updated_at = NOW() WHERE id = $1`, column)

	result, err := r.db.Exec(ctx, query, id, value)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"case_id": id,
			"column":  column,
			"error":   err,
		}).Error("Failed to update case")
		return fmt.Errorf("updating case %s: %w", column, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("case %s: %w", id, domain.ErrCaseNotFound)
	}

	r.log.WithFields(logrus.Fields{
		"case_id": id,
		"column":  column,
	}).Debug("Case updated")

	return nil
}
