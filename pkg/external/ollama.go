package external

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/medcase-assist-server/internal/domain"
)

const (
	defaultOllamaBaseURL           = "http://localhost:11434"
	defaultOllamaModel             = "gemma:2b"
	defaultOllamaSummaryTimeout    = 30 * time.Second
	defaultOllamaCompletionTimeout = 60 * time.Second
)

// OllamaClient calls a local Ollama /api/generate endpoint for
// clinical briefs and doctor Q&A completions. Summaries run under the
// shorter timeout; generic completions get the longer one.
type OllamaClient struct {
	baseURL           string
	model             string
	summaryTimeout    time.Duration
	completionTimeout time.Duration
	httpClient        *http.Client
	logger            *logrus.Logger
}

// NewOllamaClient creates an Ollama completion client.
func NewOllamaClient(config domain.OllamaConfig, logger *logrus.Logger) *OllamaClient {
	if config.BaseURL == "" {
		config.BaseURL = defaultOllamaBaseURL
	}
	if config.Model == "" {
		config.Model = defaultOllamaModel
	}
	if config.SummaryTimeout == 0 {
		config.SummaryTimeout = defaultOllamaSummaryTimeout
	}
	if config.CompletionTimeout == 0 {
		config.CompletionTimeout = defaultOllamaCompletionTimeout
	}

	return &OllamaClient{
		baseURL:           strings.TrimSuffix(config.BaseURL, "/"),
		model:             config.Model,
		summaryTimeout:    config.SummaryTimeout,
		completionTimeout: config.CompletionTimeout,
		// Per-call deadlines come from the context; the transport
		// itself carries no timeout.
		httpClient: &http.Client{},
		logger:     logger,
	}
}

type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type ollamaResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// Summarize generates a clinical summary completion under the summary
// timeout.
func (o *OllamaClient) Summarize(ctx context.Context, prompt string) (string, error) {
	return o.generate(ctx, prompt, o.summaryTimeout)
}

// Complete generates a free-text completion under the longer generic
// timeout.
func (o *OllamaClient) Complete(ctx context.Context, prompt string) (string, error) {
	return o.generate(ctx, prompt, o.completionTimeout)
}

func (o *OllamaClient) generate(ctx context.Context, prompt string, timeout time.Duration) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	payload, err := json.Marshal(ollamaRequest{
		Model:  o.model,
		Prompt: prompt,
		Stream: false,
	})
	if err != nil {
		return "", fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	started := time.Now()
	resp, err := o.httpClient.Do(req)
	if err != nil {
		return "", collaboratorError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: Ollama returned status %d", domain.ErrCollaboratorFailed, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	var result ollamaResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("%w: malformed Ollama response: %v", domain.ErrCollaboratorFailed, err)
	}
	if strings.TrimSpace(result.Response) == "" {
		return "", fmt.Errorf("%w: Ollama returned an empty completion", domain.ErrCollaboratorFailed)
	}

	o.logger.WithFields(logrus.Fields{
		"model":   o.model,
		"elapsed": time.Since(started),
	}).Debug("Ollama completion succeeded")
	return result.Response, nil
}
