package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medcase-assist-server/internal/domain"
)

type stubRepo struct {
	cases map[uuid.UUID]*domain.Case

	savedAnalysis     *domain.AnalysisResult
	savedInteractions *domain.InteractionReport
	savedEducation    *domain.PatientEducation
	savedReport       *domain.FinalReport
	savedNotes        string

	failSaveAnalysis bool
}

func newStubRepo(cases ...*domain.Case) *stubRepo {
	r := &stubRepo{cases: make(map[uuid.UUID]*domain.Case)}
	for _, c := range cases {
		r.cases[c.ID] = c
	}
	return r
}

func (r *stubRepo) Create(ctx context.Context, c *domain.Case) error {
	r.cases[c.ID] = c
	return nil
}

func (r *stubRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Case, error) {
	c, ok := r.cases[id]
	if !ok {
		return nil, domain.ErrCaseNotFound
	}
	return c, nil
}

func (r *stubRepo) UpdateMedications(ctx context.Context, id uuid.UUID, medications []string) error {
	r.cases[id].Medications = medications
	return nil
}

func (r *stubRepo) SaveAnalysis(ctx context.Context, id uuid.UUID, analysis *domain.AnalysisResult) error {
	if r.failSaveAnalysis {
		return errors.New("write rejected")
	}
	r.savedAnalysis = analysis
	return nil
}

func (r *stubRepo) SaveInteractions(ctx context.Context, id uuid.UUID, report *domain.InteractionReport) error {
	r.savedInteractions = report
	return nil
}

func (r *stubRepo) SaveEducation(ctx context.Context, id uuid.UUID, education *domain.PatientEducation) error {
	r.savedEducation = education
	return nil
}

func (r *stubRepo) SaveFinalReport(ctx context.Context, id uuid.UUID, report *domain.FinalReport) error {
	r.savedReport = report
	return nil
}

func (r *stubRepo) SaveDoctorNotes(ctx context.Context, id uuid.UUID, notes string) error {
	r.savedNotes = notes
	return nil
}

func (r *stubRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.cases, id)
	return nil
}

type stubSearcher struct {
	candidates []domain.LiteratureCandidate
	err        error
	lastQuery  string
}

func (s *stubSearcher) Search(ctx context.Context, query string) ([]domain.LiteratureCandidate, error) {
	s.lastQuery = query
	return s.candidates, s.err
}

type stubSummarizer struct {
	summary      string
	summaryErr   error
	completion   string
	completeErr  error
	lastPrompt   string
	summaryCalls int
}

func (s *stubSummarizer) Summarize(ctx context.Context, prompt string) (string, error) {
	s.summaryCalls++
	s.lastPrompt = prompt
	return s.summary, s.summaryErr
}

func (s *stubSummarizer) Complete(ctx context.Context, prompt string) (string, error) {
	s.lastPrompt = prompt
	return s.completion, s.completeErr
}

type stubQAHistory struct {
	entries []domain.QAEntry
}

func (s *stubQAHistory) Append(ctx context.Context, entry *domain.QAEntry) error {
	s.entries = append(s.entries, *entry)
	return nil
}

func (s *stubQAHistory) ListByCase(ctx context.Context, caseID uuid.UUID) ([]domain.QAEntry, error) {
	return s.entries, nil
}

func testCase() *domain.Case {
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

func newTestPipeline(t *testing.T, repo *stubRepo, searcher *stubSearcher, summarizer *stubSummarizer, qa *stubQAHistory) *EnrichmentPipeline {
	t.Helper()
	translator := NewTranslator(
		&stubTranslator{err: errors.New("offline")},
		nil,
		newTestCache(t),
		0,
		testLogger(),
	)
	return NewEnrichmentPipeline(repo, searcher, summarizer, translator, qa, domain.PipelineConfig{}, testLogger())
}

func TestAnalyze_HappyPath(t *testing.T) {
	c := testCase()
	repo := newStubRepo(c)
	searcher := &stubSearcher{candidates: []domain.LiteratureCandidate{
		{PMID: "101", Title: "Arrhythmia management randomized trial", Abstract: "Arrhythmia treatment outcomes."},
		{PMID: "102", Title: "Unrelated botany paper"},
	}}
	summarizer := &stubSummarizer{summary: "Clinical summary from collaborator."}

	p := newTestPipeline(t, repo, searcher, summarizer, &stubQAHistory{})
	result, err := p.Analyze(context.Background(), c.ID)

	require.NoError(t, err)
	assert.Equal(t, "Clinical summary from collaborator.", result.Brief)
	require.Len(t, result.RelevantPapers, 1)
	assert.Equal(t, "101", result.RelevantPapers[0].PMID)
	assert.Same(t, result, repo.savedAnalysis)

	// First query template is the one issued.
	assert.Equal(t, "Arrhythmia treatment randomized trial", searcher.lastQuery)

	// Prompt embeds the fresh case fields.
	assert.Contains(t, summarizer.lastPrompt, "Patient age: 20 years")
	assert.Contains(t, summarizer.lastPrompt, "Arrhythmia")
}

func TestAnalyze_RetainedPapersMeetThreshold(t *testing.T) {
	c := testCase()
	candidates := []domain.LiteratureCandidate{
		{PMID: "1", Title: "Arrhythmia treatment outcomes"},
		{PMID: "2", Title: "Nothing relevant", Abstract: "arrhythmia mentioned once"},
		{PMID: "3", Title: "Botany"},
	}
	repo := newStubRepo(c)
	p := newTestPipeline(t, repo, &stubSearcher{candidates: candidates}, &stubSummarizer{summary: "ok"}, &stubQAHistory{})

	result, err := p.Analyze(context.Background(), c.ID)

	require.NoError(t, err)
	for _, ref := range result.RelevantPapers {
		assert.GreaterOrEqual(t, ref.RelevanceScore, DefaultScoreThreshold)
	}
}

func TestAnalyze_LiteratureFailureDegradesToEmptyList(t *testing.T) {
	c := testCase()
	repo := newStubRepo(c)
	searcher := &stubSearcher{err: errors.New("connection refused")}
	summarizer := &stubSummarizer{summary: "ok"}

	p := newTestPipeline(t, repo, searcher, summarizer, &stubQAHistory{})
	result, err := p.Analyze(context.Background(), c.ID)

	require.NoError(t, err)
	assert.Empty(t, result.RelevantPapers)
	assert.Contains(t, result.AnalysisText, "Standard evidence-based management is recommended.")
}

func TestAnalyze_SummarizerFailureUsesFallbackBrief(t *testing.T) {
	c := testCase()
	repo := newStubRepo(c)
	summarizer := &stubSummarizer{summaryErr: fmt.Errorf("summarize: %w", domain.ErrCollaboratorTimedOut)}

	p := newTestPipeline(t, repo, &stubSearcher{}, summarizer, &stubQAHistory{})
	result, err := p.Analyze(context.Background(), c.ID)

	require.NoError(t, err)
	assert.Contains(t, result.Brief, "20-year-old")
	assert.Contains(t, result.Brief, "Arrhythmia")
	assert.Contains(t, result.Brief, "Metoprolol, Lisinopril")
	assert.NotContains(t, result.Brief, "55-year-old")
}

func TestFallbackBrief_AgeAndGender(t *testing.T) {
	tests := []struct {
		age    int
		gender domain.Gender
		word   string
	}{
		{20, domain.GenderMale, "man"},
		{55, domain.GenderFemale, "woman"},
		{73, domain.GenderOther, "patient"},
	}

	for _, tt := range tests {
		c := testCase()
		c.Age = tt.age
		c.Gender = tt.gender

		brief := fallbackBrief(c)
		assert.Contains(t, brief, fmt.Sprintf("A %d-year-old %s", tt.age, tt.word))
	}
}

func TestFallbackBrief_SupportiveCare(t *testing.T) {
	c := testCase()
	c.Medications = nil

	assert.Contains(t, fallbackBrief(c), "Currently managed with supportive care.")
}

func TestAnalyze_PersistenceFailureSurfaces(t *testing.T) {
	c := testCase()
	repo := newStubRepo(c)
	repo.failSaveAnalysis = true

	p := newTestPipeline(t, repo, &stubSearcher{}, &stubSummarizer{summary: "ok"}, &stubQAHistory{})
	_, err := p.Analyze(context.Background(), c.ID)

	assert.Error(t, err)
}

func TestAnalyze_UnknownCase(t *testing.T) {
	p := newTestPipeline(t, newStubRepo(), &stubSearcher{}, &stubSummarizer{}, &stubQAHistory{})

	_, err := p.Analyze(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrCaseNotFound)
}

func TestAnalyze_DocumentSectionOrder(t *testing.T) {
	c := testCase()
	repo := newStubRepo(c)
	p := newTestPipeline(t, repo, &stubSearcher{}, &stubSummarizer{summary: "ok"}, &stubQAHistory{})

	result, err := p.Analyze(context.Background(), c.ID)
	require.NoError(t, err)

	sections := []string{
		"PATIENT DEMOGRAPHICS:",
		"PRIMARY DIAGNOSIS:",
		"CLINICAL SIGNIFICANCE:",
		"EVIDENCE-BASED MANAGEMENT:",
		"RELEVANT RESEARCH FINDINGS:",
		"RECOMMENDATIONS FOR TREATING PHYSICIAN:",
		"PROGNOSIS:",
	}
	last := -1
	for _, section := range sections {
		idx := strings.Index(result.AnalysisText, section)
		require.GreaterOrEqual(t, idx, 0, "missing section %q", section)
		assert.Greater(t, idx, last, "section %q out of order", section)
		last = idx
	}
}

func TestCheckInteractions(t *testing.T) {
	c := testCase()
	c.Medications = []string{"Lisinopril", "Amlodipine"}
	repo := newStubRepo(c)

	p := newTestPipeline(t, repo, &stubSearcher{}, &stubSummarizer{}, &stubQAHistory{})
	report, err := p.CheckInteractions(context.Background(), c.ID)

	require.NoError(t, err)
	require.Len(t, report.Data, 1)
	assert.Equal(t, domain.SeverityModerate, report.Data[0].Severity)
	assert.False(t, report.CheckedAt.IsZero())
	assert.Same(t, report, repo.savedInteractions)
}

func TestCheckInteractions_SingleMedication(t *testing.T) {
	c := testCase()
	c.Medications = []string{"Aspirin"}
	repo := newStubRepo(c)

	p := newTestPipeline(t, repo, &stubSearcher{}, &stubSummarizer{}, &stubQAHistory{})
	report, err := p.CheckInteractions(context.Background(), c.ID)

	require.NoError(t, err)
	assert.Empty(t, report.Data)
}

func TestGenerateEducation(t *testing.T) {
	c := testCase()
	c.Diagnosis = "Hypertension"
	repo := newStubRepo(c)

	p := newTestPipeline(t, repo, &stubSearcher{}, &stubSummarizer{}, &stubQAHistory{})
	education, err := p.GenerateEducation(context.Background(), c.ID, domain.LanguageHindi)

	require.NoError(t, err)
	assert.Contains(t, education.SimpleExplanation, "high blood pressure")
	assert.NotContains(t, education.SimpleExplanation, "Hypertension")
	assert.Equal(t, domain.LanguageHindi, education.Language)
	// The network translator is offline; the dictionary fallback still
	// translates the simplified phrase.
	assert.Contains(t, education.TranslatedText, phraseTranslations[domain.LanguageHindi]["high blood pressure"])
	assert.Same(t, education, repo.savedEducation)
}

func TestGenerateEducation_English(t *testing.T) {
	c := testCase()
	repo := newStubRepo(c)

	p := newTestPipeline(t, repo, &stubSearcher{}, &stubSummarizer{}, &stubQAHistory{})
	education, err := p.GenerateEducation(context.Background(), c.ID, domain.LanguageEnglish)

	require.NoError(t, err)
	assert.Equal(t, education.SimpleExplanation, education.TranslatedText)
}

func TestGenerateFinalReport_DoctorNotesVerbatim(t *testing.T) {
	c := testCase()
	repo := newStubRepo(c)
	notes := "Line one.\n  Indented line two!\n\nPara two: BP 140/90; recheck in 2 weeks...\n"

	p := newTestPipeline(t, repo, &stubSearcher{}, &stubSummarizer{}, &stubQAHistory{})
	report, err := p.GenerateFinalReport(context.Background(), c.ID, notes)

	require.NoError(t, err)
	assert.Equal(t, notes, report.DoctorNotes)
	assert.Contains(t, report.ReportText, notes)
	assert.Equal(t, notes, repo.savedNotes)
	assert.Same(t, report, repo.savedReport)
}

func TestGenerateFinalReport_NoNotes(t *testing.T) {
	c := testCase()
	repo := newStubRepo(c)

	p := newTestPipeline(t, repo, &stubSearcher{}, &stubSummarizer{}, &stubQAHistory{})
	report, err := p.GenerateFinalReport(context.Background(), c.ID, "")

	require.NoError(t, err)
	assert.Contains(t, report.ReportText, "No additional notes provided by attending physician")
	assert.Empty(t, repo.savedNotes)
}

func TestAnswerQuestion(t *testing.T) {
	c := testCase()
	repo := newStubRepo(c)
	summarizer := &stubSummarizer{completion: "Beta blockade is first line here."}
	qa := &stubQAHistory{}

	p := newTestPipeline(t, repo, &stubSearcher{}, summarizer, qa)
	entry, err := p.AnswerQuestion(context.Background(), c.ID, "Is beta blockade appropriate?")

	require.NoError(t, err)
	assert.Equal(t, "Beta blockade is first line here.", entry.Answer)
	assert.Equal(t, qaConfidence, entry.Confidence)
	assert.Contains(t, summarizer.lastPrompt, "Ravi Kumar")
	assert.Contains(t, summarizer.lastPrompt, "Doctor Question: Is beta blockade appropriate?")
	require.Len(t, qa.entries, 1)
	assert.Equal(t, entry.Question, qa.entries[0].Question)
}

func TestAnswerQuestion_EmptyQuestion(t *testing.T) {
	p := newTestPipeline(t, newStubRepo(testCase()), &stubSearcher{}, &stubSummarizer{}, &stubQAHistory{})

	_, err := p.AnswerQuestion(context.Background(), uuid.New(), "  ")

	var vErr *domain.ValidationError
	assert.ErrorAs(t, err, &vErr)
}

func TestAnswerQuestion_CollaboratorFailureSurfaces(t *testing.T) {
	c := testCase()
	summarizer := &stubSummarizer{completeErr: domain.ErrCollaboratorFailed}

	p := newTestPipeline(t, newStubRepo(c), &stubSearcher{}, summarizer, &stubQAHistory{})
	_, err := p.AnswerQuestion(context.Background(), c.ID, "Any contraindications?")

	assert.ErrorIs(t, err, domain.ErrCollaboratorFailed)
}

func TestBuildSearchQueries(t *testing.T) {
	queries := buildSearchQueries("Arrhythmia")

	require.Len(t, queries, 3)
	assert.Equal(t, "Arrhythmia treatment randomized trial", queries[0])
	assert.Equal(t, "Arrhythmia management clinical trial", queries[1])
	assert.Equal(t, "Arrhythmia therapy evidence", queries[2])
}

func TestDoctorSummary(t *testing.T) {
	c := testCase()
	got := DoctorSummary(c)

	assert.Contains(t, got, "Ravi Kumar, 20 years old")
	assert.Contains(t, got, "Arrhythmia")
	assert.NotContains(t, got, "\n")
}

func TestPatientSummary_Simplifies(t *testing.T) {
	c := testCase()
	c.Diagnosis = "Hypertension"
	c.Symptoms = "dyspnea on exertion"

	got := PatientSummary(NewSimplifier(), c)

	assert.Contains(t, got, "high blood pressure")
	assert.Contains(t, got, "shortness of breath")
}
