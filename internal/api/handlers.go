package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/medcase-assist-server/internal/domain"
)

// CreateCaseRequest is the submission payload for a new case.
type CreateCaseRequest struct {
	PatientName    string   `json:"patient_name"`
	Age            int      `json:"age"`
	Gender         string   `json:"gender"`
	Symptoms       string   `json:"symptoms"`
	Diagnosis      string   `json:"diagnosis"`
	Medications    []string `json:"medications"`
	SubmissionType string   `json:"submission_type"`
	FileURL        string   `json:"file_url"`
}

// UpdateMedicationsRequest replaces a case's medication list.
type UpdateMedicationsRequest struct {
	Medications []string `json:"medications"`
}

// EducationRequest selects the patient-education target language.
type EducationRequest struct {
	Language string `json:"language"`
}

// ReportRequest carries the doctor's free-text notes for the final
// report. Notes are rendered verbatim.
type ReportRequest struct {
	DoctorNotes string `json:"doctor_notes"`
}

// QuestionRequest is a doctor's free-text question about a case.
type QuestionRequest struct {
	Question string `json:"question"`
}

// SimplifyRequest is the standalone text-simplification payload.
type SimplifyRequest struct {
	Text    string `json:"text"`
	Context string `json:"context"`
}

// TranslateRequest is the standalone translation payload.
type TranslateRequest struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

// InteractionsToolRequest is the standalone interaction-check payload.
type InteractionsToolRequest struct {
	Medications []string `json:"medications"`
}

func requestID(c *gin.Context) string {
	return c.GetString("correlation_id")
}

// writeError maps domain errors onto the API error envelope.
func (s *Server) writeError(c *gin.Context, err error) {
	var validationErr *domain.ValidationError
	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, domain.NewAPIError(
			domain.ErrCodeValidation, validationErr.Message, validationErr.Field, requestID(c)))
	case errors.Is(err, domain.ErrCaseNotFound), errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, domain.NewAPIError(
			domain.ErrCodeNotFound, "case not found", "", requestID(c)))
	case errors.Is(err, domain.ErrInvalidLanguage):
		c.JSON(http.StatusBadRequest, domain.NewAPIError(
			domain.ErrCodeInvalidInput, "unsupported language", "", requestID(c)))
	case errors.Is(err, domain.ErrCollaboratorFailed), errors.Is(err, domain.ErrCollaboratorTimedOut):
		c.JSON(http.StatusBadGateway, domain.NewAPIError(
			domain.ErrCodeInternalServer, "external collaborator unavailable", "", requestID(c)))
	default:
		s.logger.WithError(err).Error("Request failed")
		c.JSON(http.StatusInternalServerError, domain.NewAPIError(
			domain.ErrCodeInternalServer, "internal server error", "", requestID(c)))
	}
}

func (s *Server) bindJSON(c *gin.Context, target any) bool {
	if err := c.ShouldBindJSON(target); err != nil {
		c.JSON(http.StatusBadRequest, domain.NewAPIError(
			domain.ErrCodeInvalidInput, "malformed request body", err.Error(), requestID(c)))
		return false
	}
	return true
}

func (s *Server) caseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, domain.NewAPIError(
			domain.ErrCodeInvalidInput, "malformed case id", c.Param("id"), requestID(c)))
		return uuid.Nil, false
	}
	return id, true
}

func (s *Server) handleCreateCase(c *gin.Context) {
	var req CreateCaseRequest
	if !s.bindJSON(c, &req) {
		return
	}

	if req.SubmissionType == "" {
		req.SubmissionType = string(domain.SubmissionText)
	}

	newCase := &domain.Case{
		ID:             uuid.New(),
		PatientName:    req.PatientName,
		Age:            req.Age,
		Gender:         domain.Gender(req.Gender),
		Symptoms:       req.Symptoms,
		Diagnosis:      req.Diagnosis,
		Medications:    req.Medications,
		SubmissionType: domain.SubmissionType(req.SubmissionType),
		FileURL:        req.FileURL,
	}

	if err := newCase.Validate(); err != nil {
		s.writeError(c, err)
		return
	}

	if err := s.repo.Create(c.Request.Context(), newCase); err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, newCase)
}

func (s *Server) handleGetCase(c *gin.Context) {
	id, ok := s.caseID(c)
	if !ok {
		return
	}

	found, err := s.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, found)
}

func (s *Server) handleDeleteCase(c *gin.Context) {
	id, ok := s.caseID(c)
	if !ok {
		return
	}

	if err := s.repo.Delete(c.Request.Context(), id); err != nil {
		s.writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) handleUpdateMedications(c *gin.Context) {
	id, ok := s.caseID(c)
	if !ok {
		return
	}

	var req UpdateMedicationsRequest
	if !s.bindJSON(c, &req) {
		return
	}

	if err := s.repo.UpdateMedications(c.Request.Context(), id, req.Medications); err != nil {
		s.writeError(c, err)
		return
	}

	updated, err := s.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

func (s *Server) handleAnalyzeCase(c *gin.Context) {
	id, ok := s.caseID(c)
	if !ok {
		return
	}

	result, err := s.pipeline.Analyze(c.Request.Context(), id)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (s *Server) handleCheckInteractions(c *gin.Context) {
	id, ok := s.caseID(c)
	if !ok {
		return
	}

	report, err := s.pipeline.CheckInteractions(c.Request.Context(), id)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

func (s *Server) handleGenerateEducation(c *gin.Context) {
	id, ok := s.caseID(c)
	if !ok {
		return
	}

	var req EducationRequest
	if !s.bindJSON(c, &req) {
		return
	}
	if req.Language == "" {
		req.Language = string(domain.LanguageEnglish)
	}

	language, err := domain.ParseLanguage(req.Language)
	if err != nil {
		s.writeError(c, err)
		return
	}

	education, err := s.pipeline.GenerateEducation(c.Request.Context(), id, language)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, education)
}

func (s *Server) handleGenerateReport(c *gin.Context) {
	id, ok := s.caseID(c)
	if !ok {
		return
	}

	var req ReportRequest
	if !s.bindJSON(c, &req) {
		return
	}

	report, err := s.pipeline.GenerateFinalReport(c.Request.Context(), id, req.DoctorNotes)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

func (s *Server) handleAskQuestion(c *gin.Context) {
	id, ok := s.caseID(c)
	if !ok {
		return
	}

	var req QuestionRequest
	if !s.bindJSON(c, &req) {
		return
	}

	entry, err := s.pipeline.AnswerQuestion(c.Request.Context(), id, req.Question)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, entry)
}

func (s *Server) handleListQuestions(c *gin.Context) {
	id, ok := s.caseID(c)
	if !ok {
		return
	}

	entries, err := s.pipeline.QAHistoryForCase(c.Request.Context(), id)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if entries == nil {
		entries = []domain.QAEntry{}
	}

	c.JSON(http.StatusOK, gin.H{"case_id": id, "history": entries})
}

func (s *Server) handleSimplify(c *gin.Context) {
	var req SimplifyRequest
	if !s.bindJSON(c, &req) {
		return
	}

	var simplified string
	if req.Context != "" {
		simplified = s.simplifier.SimplifyWithContext(req.Text, req.Context)
	} else {
		simplified = s.simplifier.Simplify(req.Text)
	}

	c.JSON(http.StatusOK, gin.H{
		"original":   req.Text,
		"simplified": simplified,
		"is_medical": s.simplifier.IsMedical(req.Text),
	})
}

func (s *Server) handleTranslate(c *gin.Context) {
	var req TranslateRequest
	if !s.bindJSON(c, &req) {
		return
	}

	language, err := domain.ParseLanguage(req.Language)
	if err != nil {
		s.writeError(c, err)
		return
	}

	translated := s.translator.Translate(c.Request.Context(), req.Text, language)

	c.JSON(http.StatusOK, gin.H{
		"original":   req.Text,
		"language":   language,
		"translated": translated,
	})
}

func (s *Server) handleInteractionsTool(c *gin.Context) {
	var req InteractionsToolRequest
	if !s.bindJSON(c, &req) {
		return
	}

	if len(req.Medications) < 2 {
		s.writeError(c, domain.NewValidationError(
			"medications", "at least two medications are required", len(req.Medications)))
		return
	}

	findings := s.matcher.Check(req.Medications)
	if findings == nil {
		findings = []domain.InteractionFinding{}
	}

	c.JSON(http.StatusOK, gin.H{
		"medications": req.Medications,
		"findings":    findings,
	})
}

func (s *Server) handleCacheClear(c *gin.Context) {
	cleared := s.cache.Clear()
	c.JSON(http.StatusOK, gin.H{"cleared": cleared})
}

func (s *Server) handleCacheStats(c *gin.Context) {
	c.JSON(http.StatusOK, s.cache.Stats())
}
