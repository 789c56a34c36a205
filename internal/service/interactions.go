package service

import (
	"strings"

	"github.com/medcase-assist-server/internal/domain"
)

// interactionEntry is one known drug-pair interaction. Pairs are
// unordered; the table stores each pair once under a canonical key.
type interactionEntry struct {
	severity domain.Severity
	notes    string
}

// knownInteractions is the curated drug-interaction knowledge table,
// keyed by sorted lowercase drug pair. Severities use the canonical
// lowercase grades.
var knownInteractions = map[[2]string]interactionEntry{
	pairKey("aspirin", "warfarin"):      {domain.SeveritySevere, "Increased bleeding risk. Monitor INR closely."},
	pairKey("aspirin", "ibuprofen"):     {domain.SeverityModerate, "Both are NSAIDs. Avoid combination, risk of GI bleeding."},
	pairKey("aspirin", "methotrexate"):  {domain.SeveritySevere, "Aspirin reduces methotrexate clearance."},
	pairKey("aspirin", "clopidogrel"):   {domain.SeverityModerate, "Increased bleeding risk with dual antiplatelet therapy."},
	pairKey("aspirin", "naproxen"):      {domain.SeverityModerate, "Both NSAIDs - GI bleeding risk."},
	pairKey("warfarin", "ibuprofen"):    {domain.SeveritySevere, "NSAIDs increase bleeding risk with warfarin."},
	pairKey("warfarin", "metformin"):    {domain.SeverityModerate, "Minor interaction. Monitor blood sugar."},
	pairKey("warfarin", "naproxen"):     {domain.SeveritySevere, "NSAIDs increase bleeding risk."},
	pairKey("warfarin", "fluconazole"):  {domain.SeveritySevere, "Increased warfarin effect - INR elevation risk."},
	pairKey("warfarin", "clopidogrel"):  {domain.SeveritySevere, "Increased bleeding risk - dual anticoagulation."},
	pairKey("warfarin", "paracetamol"):  {domain.SeverityModerate, "Long-term high dose may increase INR."},
	pairKey("metformin", "insulin"):     {domain.SeverityModerate, "Both lower blood sugar. Risk of hypoglycemia."},
	pairKey("metformin", "alcohol"):     {domain.SeverityModerate, "Risk of lactic acidosis with heavy alcohol use."},
	pairKey("metformin", "fluconazole"): {domain.SeverityModerate, "Minor interaction - monitor blood glucose."},
	pairKey("insulin", "alcohol"):       {domain.SeverityModerate, "Alcohol can potentiate hypoglycemic effect."},
	pairKey("insulin", "glucagon"):      {domain.SeverityModerate, "Antagonistic effects - adjust doses."},
	pairKey("ibuprofen", "lisinopril"):  {domain.SeverityModerate, "NSAIDs can reduce effectiveness of ACE inhibitors."},
	pairKey("ibuprofen", "methotrexate"): {domain.SeveritySevere, "NSAIDs reduce methotrexate clearance."},
	pairKey("ibuprofen", "enalapril"):    {domain.SeverityModerate, "NSAIDs reduce ACE inhibitor effectiveness."},
	pairKey("lisinopril", "potassium"):   {domain.SeveritySevere, "Risk of hyperkalemia. Monitor potassium levels."},
	pairKey("lisinopril", "naproxen"):    {domain.SeverityModerate, "NSAIDs reduce ACE inhibitor effectiveness."},
	pairKey("lisinopril", "amlodipine"):  {domain.SeverityModerate, "Combined ACE inhibitor and calcium channel blocker may cause hypotension"},
	pairKey("enalapril", "potassium"):    {domain.SeveritySevere, "Risk of hyperkalemia. Monitor potassium levels."},
	pairKey("methotrexate", "naproxen"):  {domain.SeveritySevere, "NSAIDs reduce methotrexate clearance."},
	pairKey("paracetamol", "alcohol"):    {domain.SeverityModerate, "Chronic alcohol + paracetamol increases liver risk."},
	pairKey("vitamin d supplements", "digoxin"): {domain.SeverityModerate, "High vitamin D may increase digoxin toxicity risk."},
}

// pairKey canonicalizes an unordered lowercase drug pair.
func pairKey(a, b string) [2]string {
	if a > b {
		a, b = b, a
	}
	return [2]string{a, b}
}

// InteractionMatcher checks medication lists against the interaction
// knowledge table. Matching is exact on normalized names; no fuzzy or
// partial matching is attempted.
type InteractionMatcher struct{}

// NewInteractionMatcher creates an interaction matcher.
func NewInteractionMatcher() *InteractionMatcher {
	return &InteractionMatcher{}
}

// Check enumerates every unordered pair of the given drugs in input
// order and returns the findings for pairs present in the knowledge
// table. Names are trimmed and lowercased for lookup; findings carry
// the trimmed names as given. Fewer than two drugs yields no findings.
func (m *InteractionMatcher) Check(drugs []string) []domain.InteractionFinding {
	findings := []domain.InteractionFinding{}
	if len(drugs) < 2 {
		return findings
	}

	trimmed := make([]string, len(drugs))
	normalized := make([]string, len(drugs))
	for i, d := range drugs {
		trimmed[i] = strings.TrimSpace(d)
		normalized[i] = strings.ToLower(trimmed[i])
	}

	for i := 0; i < len(normalized); i++ {
		for j := i + 1; j < len(normalized); j++ {
			entry, ok := knownInteractions[pairKey(normalized[i], normalized[j])]
			if !ok {
				continue
			}
			findings = append(findings, domain.InteractionFinding{
				Drugs:    [2]string{trimmed[i], trimmed[j]},
				Severity: entry.severity,
				Notes:    entry.notes,
			})
		}
	}
	return findings
}

// KnownDrugs reports whether at least one of the given drugs appears
// anywhere in the knowledge table.
func (m *InteractionMatcher) KnownDrugs(drugs []string) bool {
	for _, d := range drugs {
		name := strings.ToLower(strings.TrimSpace(d))
		for key := range knownInteractions {
			if key[0] == name || key[1] == name {
				return true
			}
		}
	}
	return false
}
