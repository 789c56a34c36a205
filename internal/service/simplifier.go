// Package service implements the case-enrichment core: text
// simplification, literature relevance scoring, translation with
// layered fallbacks, drug-interaction matching, and the pipeline that
// orchestrates them over a persisted case.
package service

import (
	"regexp"
	"sort"
	"strings"
)

// medicalSimplifications maps medical terminology to plain language.
// Matching is whole-word, case-insensitive, and longest-term-first so
// multi-word entries are never split by their shorter substrings
// ("rheumatoid arthritis" before "arthritis").
var medicalSimplifications = map[string]string{
	// Cardiovascular
	"hypertension":          "high blood pressure",
	"hypotension":           "low blood pressure",
	"myocardial infarction": "heart attack",
	"angina pectoris":       "chest pain due to heart",
	"arrhythmia":            "irregular heartbeat",
	"tachycardia":           "fast heartbeat",
	"bradycardia":           "slow heartbeat",
	"thrombosis":            "blood clot",
	"cardiovascular":        "heart and blood vessels",
	"coronary artery":       "blood vessel in the heart",

	// Respiratory
	"dyspnea":    "shortness of breath",
	"pneumonia":  "lung infection",
	"bronchitis": "windpipe inflammation",
	"asthma":     "difficulty breathing, narrowed airways",
	"chronic obstructive pulmonary disease": "serious lung disease",
	"copd":        "serious lung disease",
	"respiratory": "related to breathing",

	// Endocrine
	"diabetes mellitus": "high blood sugar disease",
	"hyperglycemia":     "high blood sugar",
	"hypoglycemia":      "low blood sugar",
	"thyroid":           "gland in the neck that controls metabolism",
	"hypothyroidism":    "low thyroid hormone",
	"hyperthyroidism":   "high thyroid hormone",
	"metabolic":         "related to body processing food",

	// Neurological
	"stroke":                  "blood clot or bleeding in the brain",
	"cerebrovascular accident": "blood clot or bleeding in the brain",
	"seizure":                 "sudden abnormal brain activity",
	"epilepsy":                "condition causing seizures",
	"migraine":                "severe headache",
	"neuralgia":               "nerve pain",
	"parkinson":               "disease causing shaking and stiffness",
	"alzheimer":               "memory and thinking disease",
	"neurological":            "related to the brain and nerves",

	// Gastrointestinal
	"gastroenteritis":            "stomach and intestine infection",
	"peptic ulcer":               "sore in stomach or intestines",
	"constipation":               "difficulty passing stool",
	"diarrhea":                   "loose, watery stool",
	"inflammatory bowel disease": "chronic intestine inflammation",
	"hepatitis":                  "liver inflammation",
	"cirrhosis":                  "scarring of the liver",
	"gastrointestinal":           "related to stomach and intestines",

	// Immune/Infectious
	"pneumocystis pneumonia": "serious lung infection",
	"tuberculosis":           "serious lung infection",
	"influenza":              "flu",
	"coronavirus":            "covid-19 virus",
	"hiv":                    "virus that attacks immune system",
	"aids":                   "advanced immune system disease",
	"sepsis":                 "life-threatening infection response",
	"immunocompromised":      "weak immune system",

	// Musculoskeletal
	"arthritis":            "joint inflammation and pain",
	"osteoarthritis":       "wear and tear of joints",
	"rheumatoid arthritis": "immune system attacking joints",
	"osteoporosis":         "weak bones",
	"fracture":             "broken bone",
	"sprain":               "stretched or torn ligament",
	"myalgia":              "muscle pain",
	"musculoskeletal":      "related to muscles and bones",

	// Oncology
	"carcinoma":         "cancer",
	"malignant":         "cancer that spreads",
	"benign":            "not cancer",
	"metastasis":        "cancer spread to other parts",
	"chemotherapy":      "cancer treatment with chemicals",
	"radiation therapy": "cancer treatment with radiation",
	"tumor":             "abnormal growth",

	// Dermatological
	"dermatitis": "skin inflammation",
	"eczema":     "itchy skin condition",
	"psoriasis":  "scaly skin disease",
	"melanoma":   "serious skin cancer",

	// Other common terms
	"inflammation":           "swelling and redness",
	"infection":              "harmful germs causing disease",
	"acute":                  "sudden and severe",
	"chronic":                "long-lasting",
	"syndrome":               "group of symptoms",
	"disorder":               "disease or condition",
	"pathology":              "study of disease",
	"diagnosis":              "identification of disease",
	"prognosis":              "expected outcome",
	"etiology":               "cause of disease",
	"symptomatology":         "description of symptoms",
	"manifestation":          "sign or symptom",
	"exacerbation":           "worsening of condition",
	"remission":              "improvement or disappearance",
	"contraindicated":        "not recommended",
	"pharmacotherapy":        "treatment with medicines",
	"adjuvant":               "additional treatment",
	"palliative":             "comfort care",
	"inpatient":              "staying in hospital",
	"outpatient":             "visiting hospital for treatment",
	"differential diagnosis": "list of possible diseases",
	"clinical presentation":  "how the disease appears",
	"vital signs":            "heart rate, blood pressure, temperature",
	"intermittent":           "comes and goes",
	"elevated":               "higher than normal",
	"depressed":              "lower than normal",
	"compromised":            "weakened or damaged",
	"impaired":               "not working properly",
	"deterioration":          "getting worse",
	"improvement":            "getting better",
	"regression":             "going backward",
	"idiopathic":             "cause unknown",
}

// dictRule is one compiled dictionary substitution.
type dictRule struct {
	re    *regexp.Regexp
	plain string
}

// suffixRule decomposes a word ending in a medical suffix into a
// plain-language phrase plus the stem.
type suffixRule struct {
	re     *regexp.Regexp
	prefix string
}

var (
	dictRules   = buildDictRules()
	suffixRules = []suffixRule{
		{regexp.MustCompile(`(?i)\b(\w+)itis\b`), "inflammation of the "},
		{regexp.MustCompile(`(?i)\b(\w+)osis\b`), "condition of "},
		{regexp.MustCompile(`(?i)\b(\w+)pathy\b`), "disease of the "},
		{regexp.MustCompile(`(?i)\b(\w+)algia\b`), "pain in the "},
	}

	jargonConnectorRe = regexp.MustCompile(`(?i)\b(the patient presents with|clinical features include|characterized by|evidenced by)\b`)
	durationRe        = regexp.MustCompile(`(?i)\b(persistent|ongoing|chronic|long-term)\b`)
	suddenRe          = regexp.MustCompile(`(?i)\b(sudden|acute|abrupt)\b`)
	causationRe       = regexp.MustCompile(`(?i)\b(due to|caused by|resulting from)\b`)
	duplicateAndRe    = regexp.MustCompile(`(?i)\s+and\s+and\s+`)
	whitespaceRe      = regexp.MustCompile(`\s+`)

	// Context-specific substitutions applied by SimplifyWithContext.
	treatmentWordRe  = regexp.MustCompile(`(?i)\b(medication|drug|pharmaceutical)\b`)
	treatmentDoseRe  = regexp.MustCompile(`(?i)\b(dosage|dose)\b`)
	diagnosisMaybeRe = regexp.MustCompile(`(?i)\b(suspected|presumed|likely)\b`)
	diagnosisSureRe  = regexp.MustCompile(`(?i)\b(confirmed|definitive)\b`)
	prognosisGoodRe  = regexp.MustCompile(`(?i)\b(favorable|positive)\b`)
	prognosisBadRe   = regexp.MustCompile(`(?i)\b(unfavorable|negative|poor)\b`)
)

// buildDictRules compiles the simplification dictionary into ordered
// whole-word rules, longest term first so multi-word terms win.
func buildDictRules() []dictRule {
	terms := make([]string, 0, len(medicalSimplifications))
	for term := range medicalSimplifications {
		terms = append(terms, term)
	}
	sort.Slice(terms, func(i, j int) bool {
		if len(terms[i]) != len(terms[j]) {
			return len(terms[i]) > len(terms[j])
		}
		return terms[i] < terms[j]
	})

	rules := make([]dictRule, 0, len(terms))
	for _, term := range terms {
		rules = append(rules, dictRule{
			re:    regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(term) + `\b`),
			plain: medicalSimplifications[term],
		})
	}
	return rules
}

// Simplifier rewrites medical jargon into patient-friendly language.
// All methods are pure and total; empty input yields empty output.
type Simplifier struct{}

// NewSimplifier creates a text simplifier.
func NewSimplifier() *Simplifier {
	return &Simplifier{}
}

// Simplify rewrites medical text to plain language: dictionary
// substitution first, then suffix decomposition, then cosmetic
// normalization. The order is load-bearing; dictionary entries may
// themselves contain suffix-pattern words that must not be
// re-decomposed after substitution.
func (s *Simplifier) Simplify(text string) string {
	if text == "" {
		return ""
	}

	result := text
	for _, rule := range dictRules {
		result = rule.re.ReplaceAllString(result, rule.plain)
	}

	for _, rule := range suffixRules {
		result = rule.re.ReplaceAllString(result, rule.prefix+"$1")
	}

	result = jargonConnectorRe.ReplaceAllString(result, "showing")
	result = durationRe.ReplaceAllString(result, "long-lasting")
	result = suddenRe.ReplaceAllString(result, "sudden")
	result = causationRe.ReplaceAllString(result, "due to")
	result = duplicateAndRe.ReplaceAllString(result, " and ")
	result = whitespaceRe.ReplaceAllString(result, " ")

	return strings.TrimSpace(result)
}

// SimplifyWithContext applies Simplify and then a small extra set of
// substitutions keyed on whether the context names treatment,
// diagnosis, or prognosis. Multiple context keywords combine.
func (s *Simplifier) SimplifyWithContext(text, context string) string {
	simplified := s.Simplify(text)
	if simplified == "" {
		return simplified
	}

	ctx := strings.ToLower(context)
	if strings.Contains(ctx, "treatment") {
		simplified = treatmentWordRe.ReplaceAllString(simplified, "medicine")
		simplified = treatmentDoseRe.ReplaceAllString(simplified, "amount")
	}
	if strings.Contains(ctx, "diagnosis") {
		simplified = diagnosisMaybeRe.ReplaceAllString(simplified, "possibly")
		simplified = diagnosisSureRe.ReplaceAllString(simplified, "definitely")
	}
	if strings.Contains(ctx, "prognosis") {
		simplified = prognosisGoodRe.ReplaceAllString(simplified, "good")
		simplified = prognosisBadRe.ReplaceAllString(simplified, "difficult")
	}

	return simplified
}

// IsMedical reports whether the text contains at least one term from
// the simplification dictionary, matched whole-word and
// case-insensitively.
func (s *Simplifier) IsMedical(text string) bool {
	if text == "" {
		return false
	}
	for _, rule := range dictRules {
		if rule.re.MatchString(text) {
			return true
		}
	}
	return false
}
