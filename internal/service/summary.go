package service

import (
	"fmt"
	"strings"

	"github.com/medcase-assist-server/internal/domain"
)

// DoctorSummary renders the technical one-paragraph case summary used
// in clinical contexts. Whitespace is collapsed to a single line.
func DoctorSummary(c *domain.Case) string {
	if c == nil {
		return "No case data available."
	}
	medications := "No medications"
	if len(c.Medications) > 0 {
		medications = strings.Join(c.Medications, ", ")
	}
	summary := fmt.Sprintf("%s, %d years old, presents with %s. Chief complaints include %s. Current medications: %s.",
		c.PatientName, c.Age, c.Diagnosis, c.Symptoms, medications)
	return whitespaceRe.ReplaceAllString(summary, " ")
}

// PatientSummary renders the patient-voice case summary with the
// diagnosis and symptoms already simplified.
func PatientSummary(s *Simplifier, c *domain.Case) string {
	if c == nil {
		return "No case information available."
	}
	medications := "No medications"
	if len(c.Medications) > 0 {
		medications = strings.Join(c.Medications, ", ")
	}
	summary := fmt.Sprintf("%s, you are being treated for %s. Your symptoms include %s. You are currently taking %s.",
		c.PatientName, s.Simplify(c.Diagnosis), s.Simplify(c.Symptoms), medications)
	return whitespaceRe.ReplaceAllString(summary, " ")
}
