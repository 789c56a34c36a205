// Package domain contains core business entities and types for the
// clinical case assistant: patient cases, AI-derived sub-records, and
// the enumerations shared by the enrichment pipeline stages.
package domain

import (
	"errors"
	"strings"
)

// Gender is the patient gender recorded on a case.
type Gender string

const (
	GenderMale   Gender = "M"
	GenderFemale Gender = "F"
	GenderOther  Gender = "Other"
)

// SubmissionType is the modality through which a case was submitted.
type SubmissionType string

const (
	SubmissionText  SubmissionType = "text"
	SubmissionVoice SubmissionType = "voice"
	SubmissionFile  SubmissionType = "file"
)

// Language identifies a patient-education target language.
type Language string

const (
	LanguageEnglish Language = "english"
	LanguageHindi   Language = "hindi"
	LanguageKannada Language = "kannada"
	LanguageTelugu  Language = "telugu"
)

// Severity grades a drug-drug interaction. A single lowercase
// convention is used everywhere, including the knowledge table.
type Severity string

const (
	SeverityMinor    Severity = "minor"
	SeverityModerate Severity = "moderate"
	SeveritySevere   Severity = "severe"
)

// Validation errors for clinical data integrity
var (
	ErrNotFound             = errors.New("not found")
	ErrCaseNotFound         = errors.New("case not found")
	ErrInvalidGender        = errors.New("invalid gender")
	ErrInvalidSubmission    = errors.New("invalid submission type")
	ErrInvalidLanguage      = errors.New("invalid language")
	ErrInvalidSeverity      = errors.New("invalid interaction severity")
	ErrCollaboratorFailed   = errors.New("external collaborator failed")
	ErrCollaboratorTimedOut = errors.New("external collaborator timed out")
)

// IsValid reports whether the gender is one of the accepted values.
func (g Gender) IsValid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	default:
		return false
	}
}

// Word returns the noun used when rendering the gender in a clinical
// brief ("man", "woman", or "patient").
func (g Gender) Word() string {
	switch g {
	case GenderMale:
		return "man"
	case GenderFemale:
		return "woman"
	default:
		return "patient"
	}
}

// Label returns the long form used in report headings.
func (g Gender) Label() string {
	switch g {
	case GenderMale:
		return "Male"
	case GenderFemale:
		return "Female"
	default:
		return "Other"
	}
}

// IsValid reports whether the submission type is one of the accepted values.
func (s SubmissionType) IsValid() bool {
	switch s {
	case SubmissionText, SubmissionVoice, SubmissionFile:
		return true
	default:
		return false
	}
}

// ParseLanguage normalizes and validates a language name.
func ParseLanguage(s string) (Language, error) {
	switch Language(strings.ToLower(strings.TrimSpace(s))) {
	case LanguageEnglish:
		return LanguageEnglish, nil
	case LanguageHindi:
		return LanguageHindi, nil
	case LanguageKannada:
		return LanguageKannada, nil
	case LanguageTelugu:
		return LanguageTelugu, nil
	default:
		return "", ErrInvalidLanguage
	}
}

// ISOCode returns the ISO 639-1 code used by the machine-translation
// collaborator.
func (l Language) ISOCode() string {
	switch l {
	case LanguageHindi:
		return "hi"
	case LanguageKannada:
		return "kn"
	case LanguageTelugu:
		return "te"
	default:
		return "en"
	}
}

// IsValid reports whether the severity uses the canonical lowercase form.
func (s Severity) IsValid() bool {
	switch s {
	case SeverityMinor, SeverityModerate, SeveritySevere:
		return true
	default:
		return false
	}
}
