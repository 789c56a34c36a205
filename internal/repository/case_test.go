package repository

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/medcase-assist-server/internal/database"
	"github.com/medcase-assist-server/internal/domain"
)

func generateTestPassword() string {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		return "test_fallback_password_123"
	}
	return "test_" + hex.EncodeToString(bytes)
}

func setupTestDB(t *testing.T) (*database.DB, func()) {
	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}
	ctx := context.Background()

	testPassword := generateTestPassword()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("medcase_test"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword(testPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("Failed to start PostgreSQL container: %v", err)
	}

	host, err := pgContainer.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := pgContainer.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	config := domain.DatabaseConfig{
		Host:            host,
		Port:            port.Int(),
		Database:        "medcase_test",
		Username:        "testuser",
		Password:        testPassword,
		SSLMode:         "disable",
		MaxOpenConns:    10,
		MaxIdleConns:    2,
		ConnMaxLifetime: time.Hour,
		MigrationsPath:  "../../migrations",
	}

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	db, err := database.NewConnection(ctx, config, logger)
	if err != nil {
		t.Fatalf("Failed to create database connection: %v", err)
	}

	migrationRunner, err := database.NewMigrationRunner(config, logger)
	if err != nil {
		t.Fatalf("Failed to create migration runner: %v", err)
	}

	if err := migrationRunner.Up(ctx); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	cleanup := func() {
		migrationRunner.Close()
		db.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate PostgreSQL container: %v", err)
		}
	}

	return db, cleanup
}

func newTestCase() *domain.Case {
	return &domain.Case{
		ID:             uuid.New(),
		PatientName:    "Ravi Kumar",
		Age:            20,
		Gender:         domain.GenderMale,
		Symptoms:       "palpitations and dizziness",
		Diagnosis:      "Arrhythmia",
		Medications:    []string{"Metoprolol", "Lisinopril"},
		SubmissionType: domain.SubmissionText,
	}
}

func TestCaseRepository_CreateAndGet(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	repo := NewCaseRepository(db.Pool, logger)

	c := newTestCase()
	ctx := context.Background()
	if err := repo.Create(ctx, c); err != nil {
		t.Fatalf("Failed to create case: %v", err)
	}

	got, err := repo.GetByID(ctx, c.ID)
	if err != nil {
		t.Fatalf("Failed to retrieve case: %v", err)
	}

	if got.PatientName != c.PatientName {
		t.Errorf("Expected patient name %s, got %s", c.PatientName, got.PatientName)
	}
	if got.Gender != domain.GenderMale {
		t.Errorf("Expected gender M, got %s", got.Gender)
	}
	if len(got.Medications) != 2 || got.Medications[0] != "Metoprolol" {
		t.Errorf("Unexpected medications: %v", got.Medications)
	}
	if got.AIAnalysis != nil || got.Interactions != nil || got.PatientEducation != nil || got.FinalReport != nil {
		t.Error("Expected all sub-records to be nil on a fresh case")
	}
}

func TestCaseRepository_GetMissing(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	repo := NewCaseRepository(db.Pool, logger)

	_, err := repo.GetByID(context.Background(), uuid.New())
	if !errors.Is(err, domain.ErrCaseNotFound) {
		t.Errorf("Expected ErrCaseNotFound, got %v", err)
	}
}

func TestCaseRepository_SaveSubRecords(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	repo := NewCaseRepository(db.Pool, logger)

	c := newTestCase()
	ctx := context.Background()
	if err := repo.Create(ctx, c); err != nil {
		t.Fatalf("Failed to create case: %v", err)
	}

	analysis := &domain.AnalysisResult{
		Brief: "A 20-year-old man presents with palpitations.",
		RelevantPapers: []domain.LiteratureReference{
			{PMID: "11111", Title: "Arrhythmia management trial", RelevanceScore: 50},
		},
		AnalysisText: "CASE ANALYSIS REPORT",
		Timestamp:    time.Now().UTC(),
	}
	if err := repo.SaveAnalysis(ctx, c.ID, analysis); err != nil {
		t.Fatalf("Failed to save analysis: %v", err)
	}

	report := &domain.InteractionReport{
		Data: []domain.InteractionFinding{
			{
				Drugs:    [2]string{"Metoprolol", "Lisinopril"},
				Severity: domain.SeverityModerate,
				Notes:    "Both lower blood pressure",
			},
		},
		CheckedAt: time.Now().UTC(),
	}
	if err := repo.SaveInteractions(ctx, c.ID, report); err != nil {
		t.Fatalf("Failed to save interactions: %v", err)
	}

	education := &domain.PatientEducation{
		SimpleExplanation: "Your heart beats irregularly.",
		Language:          domain.LanguageHindi,
		TranslatedText:    "अनुवादित",
		GeneratedAt:       time.Now().UTC(),
	}
	if err := repo.SaveEducation(ctx, c.ID, education); err != nil {
		t.Fatalf("Failed to save education: %v", err)
	}

	got, err := repo.GetByID(ctx, c.ID)
	if err != nil {
		t.Fatalf("Failed to retrieve case: %v", err)
	}

	if got.AIAnalysis == nil || got.AIAnalysis.Brief != analysis.Brief {
		t.Errorf("Analysis sub-record did not round-trip: %+v", got.AIAnalysis)
	}
	if len(got.AIAnalysis.RelevantPapers) != 1 || got.AIAnalysis.RelevantPapers[0].PMID != "11111" {
		t.Errorf("Unexpected relevant papers: %+v", got.AIAnalysis.RelevantPapers)
	}
	if got.Interactions == nil || len(got.Interactions.Data) != 1 {
		t.Fatalf("Interaction sub-record did not round-trip: %+v", got.Interactions)
	}
	if got.Interactions.Data[0].Severity != domain.SeverityModerate {
		t.Errorf("Expected moderate severity, got %s", got.Interactions.Data[0].Severity)
	}
	if got.PatientEducation == nil || got.PatientEducation.TranslatedText != "अनुवादित" {
		t.Errorf("Education sub-record did not round-trip: %+v", got.PatientEducation)
	}
}

func TestCaseRepository_SubRecordOverwrite(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	repo := NewCaseRepository(db.Pool, logger)

	c := newTestCase()
	ctx := context.Background()
	if err := repo.Create(ctx, c); err != nil {
		t.Fatalf("Failed to create case: %v", err)
	}

	first := &domain.AnalysisResult{Brief: "first run", Timestamp: time.Now().UTC()}
	second := &domain.AnalysisResult{Brief: "second run", Timestamp: time.Now().UTC()}
	if err := repo.SaveAnalysis(ctx, c.ID, first); err != nil {
		t.Fatalf("Failed to save first analysis: %v", err)
	}
	if err := repo.SaveAnalysis(ctx, c.ID, second); err != nil {
		t.Fatalf("Failed to save second analysis: %v", err)
	}

	got, err := repo.GetByID(ctx, c.ID)
	if err != nil {
		t.Fatalf("Failed to retrieve case: %v", err)
	}
	if got.AIAnalysis.Brief != "second run" {
		t.Errorf("Expected the later analysis to win, got %q", got.AIAnalysis.Brief)
	}
	if len(got.AIAnalysis.RelevantPapers) != 0 {
		t.Errorf("Expected the sub-record to be replaced whole, got %+v", got.AIAnalysis.RelevantPapers)
	}
}

func TestCaseRepository_UpdateMedications(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	repo := NewCaseRepository(db.Pool, logger)

	c := newTestCase()
	ctx := context.Background()
	if err := repo.Create(ctx, c); err != nil {
		t.Fatalf("Failed to create case: %v", err)
	}

	if err := repo.UpdateMedications(ctx, c.ID, []string{"Amlodipine"}); err != nil {
		t.Fatalf("Failed to update medications: %v", err)
	}

	got, err := repo.GetByID(ctx, c.ID)
	if err != nil {
		t.Fatalf("Failed to retrieve case: %v", err)
	}
	if len(got.Medications) != 1 || got.Medications[0] != "Amlodipine" {
		t.Errorf("Unexpected medications after update: %v", got.Medications)
	}

	// Clearing the list is valid; it renders as supportive care.
	if err := repo.UpdateMedications(ctx, c.ID, nil); err != nil {
		t.Fatalf("Failed to clear medications: %v", err)
	}
	got, err = repo.GetByID(ctx, c.ID)
	if err != nil {
		t.Fatalf("Failed to retrieve case: %v", err)
	}
	if len(got.Medications) != 0 {
		t.Errorf("Expected empty medications, got %v", got.Medications)
	}
}

func TestCaseRepository_DoctorNotesVerbatim(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	repo := NewCaseRepository(db.Pool, logger)

	c := newTestCase()
	ctx := context.Background()
	if err := repo.Create(ctx, c); err != nil {
		t.Fatalf("Failed to create case: %v", err)
	}

	notes := "Follow up in 2 weeks.\n\nEKG ordered; myocardial infarction ruled out."
	if err := repo.SaveDoctorNotes(ctx, c.ID, notes); err != nil {
		t.Fatalf("Failed to save doctor notes: %v", err)
	}

	got, err := repo.GetByID(ctx, c.ID)
	if err != nil {
		t.Fatalf("Failed to retrieve case: %v", err)
	}
	if got.DoctorNotes != notes {
		t.Errorf("Doctor notes were not stored verbatim: %q", got.DoctorNotes)
	}
}

func TestCaseRepository_Delete(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	repo := NewCaseRepository(db.Pool, logger)

	c := newTestCase()
	ctx := context.Background()
	if err := repo.Create(ctx, c); err != nil {
		t.Fatalf("Failed to create case: %v", err)
	}

	if err := repo.Delete(ctx, c.ID); err != nil {
		t.Fatalf("Failed to delete case: %v", err)
	}

	if _, err := repo.GetByID(ctx, c.ID); !errors.Is(err, domain.ErrCaseNotFound) {
		t.Errorf("Expected ErrCaseNotFound after delete, got %v", err)
	}

	if err := repo.Delete(ctx, c.ID); !errors.Is(err, domain.ErrCaseNotFound) {
		t.Errorf("Expected ErrCaseNotFound on double delete, got %v", err)
	}
}
