package service

import (
	"context"
	"regexp"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/medcase-assist-server/internal/domain"
)

// phraseRules holds the compiled per-language fallback dictionaries,
// longest English phrase first.
var phraseRules = buildPhraseRules()

func buildPhraseRules() map[domain.Language][]dictRule {
	rules := make(map[domain.Language][]dictRule, len(phraseTranslations))
	for language, phrases := range phraseTranslations {
		terms := make([]string, 0, len(phrases))
		for term := range phrases {
			terms = append(terms, term)
		}
		sort.Slice(terms, func(i, j int) bool {
			if len(terms[i]) != len(terms[j]) {
				return len(terms[i]) > len(terms[j])
			}
			return terms[i] < terms[j]
		})

		compiled := make([]dictRule, 0, len(terms))
		for _, term := range terms {
			compiled = append(compiled, dictRule{
				re:    regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(term) + `\b`),
				plain: phrases[term],
			})
		}
		rules[language] = compiled
	}
	return rules
}

// Translator resolves text into a patient's language through a layered
// fallback chain: cache, primary machine translation, static phrase
// dictionary, optional secondary machine translation, and finally the
// original text. Every path returns usable text; translation never
// fails the caller.
type Translator struct {
	primary   domain.MachineTranslator
	secondary domain.MachineTranslator // nil when no secondary endpoint is configured
	cache     *TranslationCache
	logger    *logrus.Logger

	batchWorkers int
}

// NewTranslator creates the translation service. secondary may be nil.
// batchWorkers bounds concurrent collaborator calls in BatchTranslate;
// non-positive values use a default of 5.
func NewTranslator(primary, secondary domain.MachineTranslator, cache *TranslationCache, batchWorkers int, logger *logrus.Logger) *Translator {
	if batchWorkers <= 0 {
		batchWorkers = 5
	}
	return &Translator{
		primary:      primary,
		secondary:    secondary,
		cache:        cache,
		logger:       logger,
		batchWorkers: batchWorkers,
	}
}

// Translate resolves text in the target language. English targets and
// empty text are returned as-is without touching the cache. All other
// requests walk the fallback chain and always cache whatever text is
// returned, including the original on total failure, so repeated
// requests stay cheap.
func (t *Translator) Translate(ctx context.Context, text string, language domain.Language) string {
	if text == "" || language.ISOCode() == "en" {
		return text
	}

	if translated, ok := t.cache.Get(ctx, text, language); ok {
		return translated
	}

	log := t.logger.WithFields(logrus.Fields{
		"language": language,
		"chars":    len(text),
	})

	if translated, err := t.primary.Translate(ctx, text, language.ISOCode()); err == nil && translated != "" {
		t.cache.Set(ctx, text, language, translated)
		log.Debug("Primary machine translation succeeded")
		return translated
	} else if err != nil {
		log.WithError(err).Warn("Primary machine translation failed, falling back to dictionary")
	}

	if translated, ok := t.dictionaryTranslate(text, language); ok {
		t.cache.Set(ctx, text, language, translated)
		log.Debug("Dictionary translation succeeded")
		return translated
	}

	if t.secondary != nil {
		if translated, err := t.secondary.Translate(ctx, text, language.ISOCode()); err == nil && translated != "" {
			t.cache.Set(ctx, text, language, translated)
			log.Debug("Secondary machine translation succeeded")
			return translated
		} else if err != nil {
			log.WithError(err).Warn("Secondary machine translation failed")
		}
	}

	// Total failure: cache the original so the chain is not re-walked
	// on every request for the same text.
	log.Warn("All translation methods failed, returning original text")
	t.cache.Set(ctx, text, language, text)
	return text
}

// dictionaryTranslate applies the static phrase dictionary for the
// language. It reports success only when at least one phrase matched;
// an unchanged text means the dictionary cannot help.
func (t *Translator) dictionaryTranslate(text string, language domain.Language) (string, bool) {
	rules, ok := phraseRules[language]
	if !ok {
		return "", false
	}

	translated := text
	matched := false
	for _, rule := range rules {
		if rule.re.MatchString(translated) {
			matched = true
			translated = rule.re.ReplaceAllString(translated, rule.plain)
		}
	}
	if !matched || translated == text {
		return "", false
	}
	return translated, true
}

// BatchTranslate translates a slice of texts into the target language,
// preserving input order. Cache hits resolve synchronously; misses are
// translated concurrently, bounded by the worker limit.
func (t *Translator) BatchTranslate(ctx context.Context, texts []string, language domain.Language) []string {
	results := make([]string, len(texts))
	if len(texts) == 0 {
		return results
	}

	if language.ISOCode() == "en" {
		copy(results, texts)
		return results
	}

	type miss struct{ index int }
	misses := make([]miss, 0, len(texts))
	for i, text := range texts {
		if text == "" {
			continue
		}
		if translated, ok := t.cache.Get(ctx, text, language); ok {
			results[i] = translated
			continue
		}
		misses = append(misses, miss{index: i})
	}

	sem := make(chan struct{}, t.batchWorkers)
	var wg sync.WaitGroup
	for _, m := range misses {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				results[i] = texts[i]
				return
			}

			results[i] = t.Translate(ctx, texts[i], language)
		}(m.index)
	}
	wg.Wait()

	return results
}
