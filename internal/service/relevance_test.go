package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/medcase-assist-server/internal/domain"
)

func TestScore_DiagnosisKeywords(t *testing.T) {
	r := NewRelevanceScorer()

	tests := []struct {
		name      string
		candidate domain.LiteratureCandidate
		diagnosis string
		want      int
	}{
		{
			name: "title hit",
			candidate: domain.LiteratureCandidate{
				Title: "Pneumonia outcomes in adults",
			},
			diagnosis: "pneumonia",
			want:      30,
		},
		{
			name: "abstract hit",
			candidate: domain.LiteratureCandidate{
				Title:    "Respiratory outcomes",
				Abstract: "We studied pneumonia in adults.",
			},
			diagnosis: "pneumonia",
			want:      15,
		},
		{
			name: "title and abstract hit",
			candidate: domain.LiteratureCandidate{
				Title:    "Pneumonia outcomes",
				Abstract: "Severe pneumonia cohort.",
			},
			diagnosis: "pneumonia",
			want:      45,
		},
		{
			name: "short words ignored",
			candidate: domain.LiteratureCandidate{
				Title: "The flu and you",
			},
			diagnosis: "flu of the arm",
			want:      0,
		},
		{
			name: "case insensitive",
			candidate: domain.LiteratureCandidate{
				Title: "PNEUMONIA Outcomes",
			},
			diagnosis: "Pneumonia",
			want:      30,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Score(tt.candidate, tt.diagnosis))
		})
	}
}

func TestScore_TreatmentVocabulary(t *testing.T) {
	r := NewRelevanceScorer()

	c := domain.LiteratureCandidate{
		Title:    "Management of sepsis",
		Abstract: "A therapy comparison.",
	}
	// management in title (+20), therapy in abstract (+10); diagnosis
	// word "sepsis" in title (+30).
	assert.Equal(t, 60, r.Score(c, "sepsis"))
}

func TestScore_StudyDesignBonuses(t *testing.T) {
	r := NewRelevanceScorer()

	tests := []struct {
		name  string
		title string
		want  int
	}{
		{"randomized", "A randomized study", 15},
		{"clinical trial", "A clinical trial of X", 20 + 15}, // treatment vocab hit plus trial marker
		{"systematic review", "Systematic review of Y", 15},
		{"meta-analysis", "Meta-analysis of Z", 15},
		{"both bonuses", "Randomized trials: a systematic review", 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Score(domain.LiteratureCandidate{Title: tt.title}, "")
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScore_PureAndRepeatable(t *testing.T) {
	r := NewRelevanceScorer()

	c := domain.LiteratureCandidate{
		Title:    "Randomized trial of pneumonia management",
		Abstract: "Pneumonia treatment outcomes.",
	}
	first := r.Score(c, "severe pneumonia")
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, r.Score(c, "severe pneumonia"))
	}
}

func TestRankCandidates(t *testing.T) {
	r := NewRelevanceScorer()

	candidates := []domain.LiteratureCandidate{
		{PMID: "1", Title: "Unrelated botany paper"},
		{PMID: "2", Title: "Pneumonia management outcomes"},           // 30 + 20
		{PMID: "3", Title: "Pneumonia in adults"},                    // 30
		{PMID: "4", Title: "Randomized trial of pneumonia therapy"},  // 30 + 20 + 15
		{PMID: "5", Title: "Weak signal", Abstract: "pneumonia note"}, // 15, below threshold
	}

	refs := r.RankCandidates(candidates, "pneumonia", DefaultScoreThreshold, DefaultMaxPapers)

	assert.Len(t, refs, 3)
	assert.Equal(t, "4", refs[0].PMID)
	assert.Equal(t, "2", refs[1].PMID)
	assert.Equal(t, "3", refs[2].PMID)
	assert.Equal(t, 65, refs[0].RelevanceScore)
}

func TestRankCandidates_StableOrderOnTies(t *testing.T) {
	r := NewRelevanceScorer()

	candidates := []domain.LiteratureCandidate{
		{PMID: "a", Title: "Pneumonia study one"},
		{PMID: "b", Title: "Pneumonia study two"},
		{PMID: "c", Title: "Pneumonia study three"},
	}

	refs := r.RankCandidates(candidates, "pneumonia", 30, 10)

	assert.Len(t, refs, 3)
	assert.Equal(t, "a", refs[0].PMID)
	assert.Equal(t, "b", refs[1].PMID)
	assert.Equal(t, "c", refs[2].PMID)
}

func TestRankCandidates_Truncation(t *testing.T) {
	r := NewRelevanceScorer()

	candidates := make([]domain.LiteratureCandidate, 15)
	for i := range candidates {
		candidates[i] = domain.LiteratureCandidate{
			PMID:  string(rune('a' + i)),
			Title: "Pneumonia paper",
		}
	}

	refs := r.RankCandidates(candidates, "pneumonia", 30, 0)
	assert.Len(t, refs, DefaultMaxPapers)

	refs = r.RankCandidates(candidates, "pneumonia", 30, 3)
	assert.Len(t, refs, 3)
}

func TestRankCandidates_Empty(t *testing.T) {
	r := NewRelevanceScorer()

	refs := r.RankCandidates(nil, "pneumonia", 30, 10)
	assert.Empty(t, refs)
}
