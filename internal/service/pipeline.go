package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/medcase-assist-server/internal/domain"
)

// QAHistory is the append-only question/answer log consumed by the
// doctor Q&A operation.
type QAHistory interface {
	Append(ctx context.Context, entry *domain.QAEntry) error
	ListByCase(ctx context.Context, caseID uuid.UUID) ([]domain.QAEntry, error)
}

// EnrichmentPipeline orchestrates the enrichment stages over a
// persisted case: literature analysis, interaction checking, patient
// education, final report rendering, and doctor Q&A. Collaborator
// failures inside the analysis stages are absorbed by deterministic
// fallbacks; only validation and persistence failures surface.
type EnrichmentPipeline struct {
	repo       domain.CaseRepository
	literature domain.LiteratureSearcher
	summarizer domain.Summarizer

	scorer     *RelevanceScorer
	simplifier *Simplifier
	matcher    *InteractionMatcher
	translator *Translator

	qaHistory QAHistory

	config domain.PipelineConfig
	logger *logrus.Logger
}

// NewEnrichmentPipeline creates the pipeline service.
func NewEnrichmentPipeline(
	repo domain.CaseRepository,
	literature domain.LiteratureSearcher,
	summarizer domain.Summarizer,
	translator *Translator,
	qaHistory QAHistory,
	config domain.PipelineConfig,
	logger *logrus.Logger,
) *EnrichmentPipeline {
	return &EnrichmentPipeline{
		repo:       repo,
		literature: literature,
		summarizer: summarizer,
		scorer:     NewRelevanceScorer(),
		simplifier: NewSimplifier(),
		matcher:    NewInteractionMatcher(),
		translator: translator,
		qaHistory:  qaHistory,
		config:     config,
		logger:     logger,
	}
}

// buildSearchQueries constructs the literature query template family
// for a diagnosis. Only the first template is issued; the others are
// kept as future template-selection candidates.
func buildSearchQueries(diagnosis string) []string {
	return []string{
		fmt.Sprintf("%s treatment randomized trial", diagnosis),
		fmt.Sprintf("%s management clinical trial", diagnosis),
		fmt.Sprintf("%s therapy evidence", diagnosis),
	}
}

// fallbackBrief renders the deterministic clinical brief used when the
// summarization collaborator is unavailable. Age and diagnosis come
// from the freshly fetched case so the brief can never report stale
// demographics.
func fallbackBrief(c *domain.Case) string {
	return fmt.Sprintf("A %d-year-old %s presents with %s. Primary diagnosis: %s. Currently managed with %s.",
		c.Age, c.Gender.Word(), c.Symptoms, c.Diagnosis, c.MedicationList())
}

// briefPrompt builds the summarization prompt embedding the case
// demographics, diagnosis, symptoms and medications.
func briefPrompt(c *domain.Case) string {
	return fmt.Sprintf(`Based on this patient case, provide a brief clinical summary.
Patient age: %d years
Diagnosis: %s
Symptoms: %s
Current medications: %s

Provide a 2-3 sentence summary including age, diagnosis, and key clinical considerations.`,
		c.Age, c.Diagnosis, c.Symptoms, c.MedicationList())
}

// Analyze runs the enrichment pipeline for a case: fetch, build the
// literature query, score and rank candidates, generate the clinical
// brief, assemble the analysis document, and overwrite the case's
// analysis sub-record. A failed literature search degrades to an empty
// reference list; a failed summarization degrades to the template
// brief. Persistence failures abort the run.
func (p *EnrichmentPipeline) Analyze(ctx context.Context, caseID uuid.UUID) (*domain.AnalysisResult, error) {
	c, err := p.repo.GetByID(ctx, caseID)
	if err != nil {
		return nil, err
	}

	log := p.logger.WithFields(logrus.Fields{
		"case_id":   caseID,
		"diagnosis": c.Diagnosis,
		"age":       c.Age,
	})
	log.Info("Starting case enrichment")

	query := buildSearchQueries(c.Diagnosis)[0]

	var candidates []domain.LiteratureCandidate
	if found, err := p.literature.Search(ctx, query); err != nil {
		log.WithError(err).Warn("Literature search failed, continuing with empty reference list")
	} else {
		candidates = found
	}

	refs := p.scorer.RankCandidates(candidates, c.Diagnosis, p.config.ScoreThreshold, p.config.MaxPapers)
	log.WithFields(logrus.Fields{
		"candidates": len(candidates),
		"retained":   len(refs),
	}).Debug("Ranked literature candidates")

	brief, err := p.summarizer.Summarize(ctx, briefPrompt(c))
	if err != nil || strings.TrimSpace(brief) == "" {
		if err != nil {
			log.WithError(err).Warn("Summarization failed, using template brief")
		}
		brief = fallbackBrief(c)
	}

	result := &domain.AnalysisResult{
		Brief:          brief,
		RelevantPapers: refs,
		AnalysisText:   renderAnalysisDocument(c, refs),
		Timestamp:      time.Now().UTC(),
	}

	if err := p.repo.SaveAnalysis(ctx, caseID, result); err != nil {
		return nil, fmt.Errorf("persisting analysis for case %s: %w", caseID, err)
	}

	log.WithField("papers", len(refs)).Info("Case enrichment completed")
	return result, nil
}

// renderAnalysisDocument assembles the full analysis document in its
// fixed section order: demographics, diagnosis, clinical significance,
// management, literature findings, recommendations, prognosis.
func renderAnalysisDocument(c *domain.Case, refs []domain.LiteratureReference) string {
	var b strings.Builder

	b.WriteString("CLINICAL ANALYSIS REPORT\n")
	b.WriteString(strings.Repeat("=", 64) + "\n\n")

	fmt.Fprintf(&b, "PATIENT DEMOGRAPHICS:\n- Age: %d years old\n- Gender: %s\n- Presentation: %s\n\n",
		c.Age, c.Gender.Label(), c.Symptoms)

	fmt.Fprintf(&b, "PRIMARY DIAGNOSIS:\n%s\n\n", c.Diagnosis)

	fmt.Fprintf(&b, "CLINICAL SIGNIFICANCE:\nThis %d-year-old patient's presentation is consistent with %s. Key clinical features include:\n- Primary symptoms: %s\n- Current therapeutic approach: %s\n\n",
		c.Age, c.Diagnosis, c.Symptoms, c.MedicationList())

	b.WriteString("EVIDENCE-BASED MANAGEMENT:\n")
	b.WriteString("1. Continue evidence-based pharmacotherapy as indicated\n")
	b.WriteString("2. Monitor disease progression with regular clinical assessment\n")
	b.WriteString("3. Ensure medication adherence and screen for adverse effects\n")
	fmt.Fprintf(&b, "4. Screen for common complications of %s\n", c.Diagnosis)
	b.WriteString("5. Implement appropriate lifestyle modifications\n")
	b.WriteString("6. Schedule regular follow-up appointments\n\n")

	b.WriteString("RELEVANT RESEARCH FINDINGS:\n")
	if len(refs) > 0 {
		fmt.Fprintf(&b, "Based on recent literature on %s:\n", c.Diagnosis)
		limit := len(refs)
		if limit > 5 {
			limit = 5
		}
		for i := 0; i < limit; i++ {
			fmt.Fprintf(&b, "%d. %s (Relevance Score: %d)\n", i+1, refs[i].Title, refs[i].RelevanceScore)
		}
	} else {
		b.WriteString("Standard evidence-based management is recommended.\n")
	}
	b.WriteString("\n")

	b.WriteString("RECOMMENDATIONS FOR TREATING PHYSICIAN:\n")
	b.WriteString("- Continue evidence-based management with periodic reassessment\n")
	fmt.Fprintf(&b, "- Patient counseling regarding prognosis of %s\n", c.Diagnosis)
	b.WriteString("- Ensure compliance with medication regimen\n")
	b.WriteString("- Schedule appropriate preventive screenings\n")
	b.WriteString("- Refer to specialist if complications develop\n\n")

	fmt.Fprintf(&b, "PROGNOSIS:\nWith appropriate management and patient compliance, prognosis depends on disease severity and %s response to treatment.\n",
		c.Diagnosis)

	return b.String()
}

// CheckInteractions runs the interaction matcher over a case's
// medication list and overwrites the interaction sub-record. Fewer
// than two medications yields an empty report.
func (p *EnrichmentPipeline) CheckInteractions(ctx context.Context, caseID uuid.UUID) (*domain.InteractionReport, error) {
	c, err := p.repo.GetByID(ctx, caseID)
	if err != nil {
		return nil, err
	}

	report := &domain.InteractionReport{
		Data:      p.matcher.Check(c.Medications),
		CheckedAt: time.Now().UTC(),
	}

	if err := p.repo.SaveInteractions(ctx, caseID, report); err != nil {
		return nil, fmt.Errorf("persisting interaction report for case %s: %w", caseID, err)
	}

	p.logger.WithFields(logrus.Fields{
		"case_id":     caseID,
		"medications": len(c.Medications),
		"findings":    len(report.Data),
	}).Info("Interaction check completed")
	return report, nil
}

// GenerateEducation builds the patient education sub-record: a
// patient-voice case summary, simplified, then translated into the
// target language through the fallback chain.
func (p *EnrichmentPipeline) GenerateEducation(ctx context.Context, caseID uuid.UUID, language domain.Language) (*domain.PatientEducation, error) {
	c, err := p.repo.GetByID(ctx, caseID)
	if err != nil {
		return nil, err
	}

	summary := PatientSummary(p.simplifier, c)
	explanation := p.simplifier.SimplifyWithContext(summary, "patient")
	translated := p.translator.Translate(ctx, explanation, language)

	education := &domain.PatientEducation{
		SimpleExplanation: explanation,
		Language:          language,
		TranslatedText:    translated,
		GeneratedAt:       time.Now().UTC(),
	}

	if err := p.repo.SaveEducation(ctx, caseID, education); err != nil {
		return nil, fmt.Errorf("persisting patient education for case %s: %w", caseID, err)
	}

	p.logger.WithFields(logrus.Fields{
		"case_id":  caseID,
		"language": language,
	}).Info("Patient education generated")
	return education, nil
}

// GenerateFinalReport renders the case report and overwrites the
// final-report sub-record. Doctor notes are stored and rendered
// byte-for-byte as entered.
func (p *EnrichmentPipeline) GenerateFinalReport(ctx context.Context, caseID uuid.UUID, doctorNotes string) (*domain.FinalReport, error) {
	c, err := p.repo.GetByID(ctx, caseID)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(doctorNotes) != "" {
		if err := p.repo.SaveDoctorNotes(ctx, caseID, doctorNotes); err != nil {
			return nil, fmt.Errorf("persisting doctor notes for case %s: %w", caseID, err)
		}
	}

	report := &domain.FinalReport{
		ReportText:  renderFinalReport(c, doctorNotes, time.Now()),
		DoctorNotes: doctorNotes,
		GeneratedAt: time.Now().UTC(),
	}

	if err := p.repo.SaveFinalReport(ctx, caseID, report); err != nil {
		return nil, fmt.Errorf("persisting final report for case %s: %w", caseID, err)
	}

	p.logger.WithField("case_id", caseID).Info("Final report generated")
	return report, nil
}

// renderFinalReport renders the printable case report. doctorNotes is
// inserted verbatim; no rewriting is applied to it.
func renderFinalReport(c *domain.Case, doctorNotes string, now time.Time) string {
	var b strings.Builder
	rule := strings.Repeat("=", 75)
	thin := strings.Repeat("-", 75)

	b.WriteString(rule + "\n")
	b.WriteString("                         MEDICAL CASE REPORT\n")
	b.WriteString(rule + "\n\n")

	fmt.Fprintf(&b, "Report Date: %s\nCase ID: %s\n\n", now.Format("2006-01-02 15:04:05"), c.ID)

	b.WriteString(thin + "\nPATIENT INFORMATION\n" + thin + "\n")
	fmt.Fprintf(&b, "Name:                    %s\n", c.PatientName)
	fmt.Fprintf(&b, "Age:                     %d years old\n", c.Age)
	fmt.Fprintf(&b, "Gender:                  %s\n", c.Gender.Label())
	fmt.Fprintf(&b, "Submission Type:         %s\n\n", c.SubmissionType)

	b.WriteString(thin + "\nCLINICAL PRESENTATION\n" + thin + "\n")
	fmt.Fprintf(&b, "Chief Complaints/Symptoms:\n%s\n\n", c.Symptoms)
	fmt.Fprintf(&b, "Primary Diagnosis:\n%s\n\n", c.Diagnosis)

	b.WriteString(thin + "\nCURRENT MEDICATIONS\n" + thin + "\n")
	if len(c.Medications) > 0 {
		for i, med := range c.Medications {
			fmt.Fprintf(&b, "%d. %s\n", i+1, med)
		}
	} else {
		b.WriteString("No medications recorded\n")
	}
	b.WriteString("\n")

	b.WriteString(thin + "\nDOCTOR'S ASSESSMENT & NOTES\n" + thin + "\n")
	if strings.TrimSpace(doctorNotes) != "" {
		b.WriteString(doctorNotes)
	} else {
		b.WriteString("No additional notes provided by attending physician")
	}
	b.WriteString("\n\n")

	b.WriteString(thin + "\nRECOMMENDATIONS\n" + thin + "\n")
	b.WriteString("- Continue current medication regimen as prescribed\n")
	b.WriteString("- Schedule follow-up appointment in 2-4 weeks\n")
	b.WriteString("- Monitor vitals regularly\n")
	b.WriteString("- Encourage lifestyle modifications (diet, exercise, stress management)\n")
	b.WriteString("- Patient education regarding diagnosis and treatment plan\n")
	b.WriteString("- Advise patient to seek immediate medical attention if symptoms worsen\n\n")

	b.WriteString(thin + "\nPROGNOSIS\n" + thin + "\n")
	b.WriteString("With appropriate medical management and patient compliance, the prognosis\n")
	b.WriteString("for this patient is generally favorable. Regular monitoring and follow-up\n")
	b.WriteString("are essential for optimal outcomes.\n\n")

	b.WriteString(rule + "\n")
	b.WriteString("                      END OF MEDICAL REPORT\n")
	b.WriteString(rule + "\n")

	return b.String()
}

// qaConfidence is the fixed confidence attached to collaborator
// answers in the Q&A history.
const qaConfidence = 0.85

// AnswerQuestion answers a doctor's free-text question with the case
// record as context and appends the exchange to the append-only Q&A
// history. Unlike the enrichment stages, a collaborator failure here
// surfaces to the caller; there is no useful deterministic answer to
// fall back to.
func (p *EnrichmentPipeline) AnswerQuestion(ctx context.Context, caseID uuid.UUID, question string) (*domain.QAEntry, error) {
	if strings.TrimSpace(question) == "" {
		return nil, domain.NewValidationError("question", "question is required", question)
	}

	c, err := p.repo.GetByID(ctx, caseID)
	if err != nil {
		return nil, err
	}

	prompt := fmt.Sprintf(`Patient Case Context:
Patient: %s, %d years old, %s
Symptoms: %s
Diagnosis: %s
Current Medications: %s

Doctor Question: %s`,
		c.PatientName, c.Age, c.Gender, c.Symptoms, c.Diagnosis, c.MedicationList(), question)

	answer, err := p.summarizer.Complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("answering question for case %s: %w", caseID, err)
	}

	entry := &domain.QAEntry{
		CaseID:     caseID,
		Question:   question,
		Answer:     answer,
		Confidence: qaConfidence,
		Timestamp:  time.Now().UTC(),
	}
	if err := p.qaHistory.Append(ctx, entry); err != nil {
		return nil, fmt.Errorf("recording Q&A history for case %s: %w", caseID, err)
	}

	p.logger.WithField("case_id", caseID).Info("Doctor question answered")
	return entry, nil
}

// QAHistoryForCase lists the append-only Q&A history for a case in
// insertion order.
func (p *EnrichmentPipeline) QAHistoryForCase(ctx context.Context, caseID uuid.UUID) ([]domain.QAEntry, error) {
	return p.qaHistory.ListByCase(ctx, caseID)
}
