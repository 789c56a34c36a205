package external

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/medcase-assist-server/internal/domain"
)

// newBreaker builds the shared circuit-breaker settings: trip after at
// least 3 requests with a 60% failure ratio, half-open after 60s.
func newBreaker(name string, logger *logrus.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Circuit breaker state changed")
		},
	})
}

// breakerError normalizes a breaker-open rejection into the
// collaborator-failed sentinel so callers take the same fallback
// branch as for an ordinary failure.
func breakerError(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %v", domain.ErrCollaboratorFailed, err)
	}
	return err
}

// ResilientSearcher wraps a literature searcher with a circuit
// breaker.
type ResilientSearcher struct {
	inner   domain.LiteratureSearcher
	breaker *gobreaker.CircuitBreaker
}

// NewResilientSearcher wraps the given searcher.
func NewResilientSearcher(inner domain.LiteratureSearcher, logger *logrus.Logger) *ResilientSearcher {
	return &ResilientSearcher{
		inner:   inner,
		breaker: newBreaker("literature", logger),
	}
}

// Search implements domain.LiteratureSearcher.
func (r *ResilientSearcher) Search(ctx context.Context, query string) ([]domain.LiteratureCandidate, error) {
	result, err := r.breaker.Execute(func() (interface{}, error) {
		return r.inner.Search(ctx, query)
	})
	if err != nil {
		return nil, breakerError(err)
	}
	candidates, _ := result.([]domain.LiteratureCandidate)
	return candidates, nil
}

// ResilientSummarizer wraps a summarizer with a circuit breaker shared
// across both completion paths.
type ResilientSummarizer struct {
	inner   domain.Summarizer
	breaker *gobreaker.CircuitBreaker
}

// NewResilientSummarizer wraps the given summarizer.
func NewResilientSummarizer(inner domain.Summarizer, logger *logrus.Logger) *ResilientSummarizer {
	return &ResilientSummarizer{
		inner:   inner,
		breaker: newBreaker("summarizer", logger),
	}
}

// Summarize implements domain.Summarizer.
func (r *ResilientSummarizer) Summarize(ctx context.Context, prompt string) (string, error) {
	return r.execute(func() (string, error) { return r.inner.Summarize(ctx, prompt) })
}

// Complete implements domain.Summarizer.
func (r *ResilientSummarizer) Complete(ctx context.Context, prompt string) (string, error) {
	return r.execute(func() (string, error) { return r.inner.Complete(ctx, prompt) })
}

func (r *ResilientSummarizer) execute(call func() (string, error)) (string, error) {
	result, err := r.breaker.Execute(func() (interface{}, error) {
		return call()
	})
	if err != nil {
		return "", breakerError(err)
	}
	text, _ := result.(string)
	return text, nil
}

// ResilientTranslator wraps a machine translator with a circuit
// breaker.
type ResilientTranslator struct {
	inner   domain.MachineTranslator
	breaker *gobreaker.CircuitBreaker
}

// NewResilientTranslator wraps the given translator. A nil inner
// translator yields a nil wrapper so optional secondary endpoints
// stay optional.
func NewResilientTranslator(inner domain.MachineTranslator, name string, logger *logrus.Logger) *ResilientTranslator {
	if inner == nil {
		return nil
	}
	return &ResilientTranslator{
		inner:   inner,
		breaker: newBreaker(name, logger),
	}
}

// Translate implements domain.MachineTranslator.
func (r *ResilientTranslator) Translate(ctx context.Context, text, targetCode string) (string, error) {
	result, err := r.breaker.Execute(func() (interface{}, error) {
		return r.inner.Translate(ctx, text, targetCode)
	})
	if err != nil {
		return "", breakerError(err)
	}
	translated, _ := result.(string)
	return translated, nil
}
