package service

import (
	"sort"
	"strings"

	"github.com/medcase-assist-server/internal/domain"
)

// Keyword weights for relevance scoring. Title hits weigh double
// their abstract counterparts.
const (
	diagnosisTitleWeight    = 30
	diagnosisAbstractWeight = 15
	treatmentTitleWeight    = 20
	treatmentAbstractWeight = 10
	studyDesignBonus        = 15

	// DefaultScoreThreshold is the minimum score a candidate needs to
	// be retained by the ranking policy.
	DefaultScoreThreshold = 30

	// DefaultMaxPapers caps the ranked references kept on a case.
	DefaultMaxPapers = 10
)

// treatmentKeywords is the clinical-evidence vocabulary scored
// independently of the diagnosis keywords.
var treatmentKeywords = []string{
	"treatment",
	"management",
	"therapy",
	"intervention",
	"clinical trial",
}

// RelevanceScorer scores literature candidates against a diagnosis.
// Scoring is pure integer arithmetic; equal inputs yield equal scores.
type RelevanceScorer struct{}

// NewRelevanceScorer creates a relevance scorer.
func NewRelevanceScorer() *RelevanceScorer {
	return &RelevanceScorer{}
}

// Score computes the additive relevance score of a candidate for a
// diagnosis. Diagnosis words of four or more characters score 30 per
// title hit and 15 per abstract hit; treatment vocabulary scores 20/10;
// trial and review markers in the title add 15 each. Matching is
// case-insensitive substring containment.
func (r *RelevanceScorer) Score(candidate domain.LiteratureCandidate, diagnosis string) int {
	title := strings.ToLower(candidate.Title)
	abstract := strings.ToLower(candidate.Abstract)

	score := 0
	for _, word := range diagnosisKeywords(diagnosis) {
		if strings.Contains(title, word) {
			score += diagnosisTitleWeight
		}
		if strings.Contains(abstract, word) {
			score += diagnosisAbstractWeight
		}
	}

	for _, word := range treatmentKeywords {
		if strings.Contains(title, word) {
			score += treatmentTitleWeight
		}
		if strings.Contains(abstract, word) {
			score += treatmentAbstractWeight
		}
	}

	if strings.Contains(title, "randomized") || strings.Contains(title, "clinical trial") {
		score += studyDesignBonus
	}
	if strings.Contains(title, "meta-analysis") || strings.Contains(title, "systematic review") {
		score += studyDesignBonus
	}

	return score
}

// RankCandidates scores every candidate, drops those under the
// threshold, sorts descending by score with input order preserved
// among ties, and truncates to maxPapers. Non-positive threshold and
// cap fall back to the defaults.
func (r *RelevanceScorer) RankCandidates(candidates []domain.LiteratureCandidate, diagnosis string, threshold, maxPapers int) []domain.LiteratureReference {
	if threshold <= 0 {
		threshold = DefaultScoreThreshold
	}
	if maxPapers <= 0 {
		maxPapers = DefaultMaxPapers
	}

	refs := make([]domain.LiteratureReference, 0, len(candidates))
	for _, c := range candidates {
		score := r.Score(c, diagnosis)
		if score < threshold {
			continue
		}
		refs = append(refs, domain.LiteratureReference{
			PMID:           c.PMID,
			Title:          c.Title,
			Abstract:       c.Abstract,
			RelevanceScore: score,
		})
	}

	sort.SliceStable(refs, func(i, j int) bool {
		return refs[i].RelevanceScore > refs[j].RelevanceScore
	})

	if len(refs) > maxPapers {
		refs = refs[:maxPapers]
	}
	return refs
}

// diagnosisKeywords lowercases the diagnosis and keeps words longer
// than three characters. Short connectives never drive a match.
func diagnosisKeywords(diagnosis string) []string {
	fields := strings.Fields(strings.ToLower(diagnosis))
	words := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) > 3 {
			words = append(words, f)
		}
	}
	return words
}
