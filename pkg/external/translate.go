package external

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/medcase-assist-server/internal/domain"
)

const defaultTranslateTimeout = 5 * time.Second

// LibreTranslateClient is the primary machine-translation
// collaborator, speaking the LibreTranslate /translate JSON shape.
// Source language is fixed to English.
type LibreTranslateClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewLibreTranslateClient creates the primary translation client.
func NewLibreTranslateClient(config domain.TranslateConfig, logger *logrus.Logger) *LibreTranslateClient {
	if config.BaseURL == "" {
		config.BaseURL = "https://libretranslate.com"
	}
	timeout := config.Timeout
	if timeout == 0 {
		timeout = defaultTranslateTimeout
	}

	return &LibreTranslateClient{
		baseURL:    strings.TrimSuffix(config.BaseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type libreTranslateRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
}

type libreTranslateResponse struct {
	TranslatedText string `json:"translatedText"`
}

// Translate translates English text into the target ISO 639-1 code.
func (l *LibreTranslateClient) Translate(ctx context.Context, text, targetCode string) (string, error) {
	payload, err := json.Marshal(libreTranslateRequest{
		Q:      text,
		Source: "en",
		Target: targetCode,
		Format: "text",
	})
	if err != nil {
		return "", fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.baseURL+"/translate", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return "", collaboratorError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: translation service returned status %d", domain.ErrCollaboratorFailed, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	var result libreTranslateResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("%w: malformed translation response: %v", domain.ErrCollaboratorFailed, err)
	}
	if result.TranslatedText == "" {
		return "", fmt.Errorf("%w: translation service returned empty text", domain.ErrCollaboratorFailed)
	}

	l.logger.WithField("target", targetCode).Debug("Machine translation succeeded")
	return result.TranslatedText, nil
}

// GoogleTranslateClient is the optional keyed secondary translation
// collaborator, speaking the Translate v2 JSON shape. It is only
// constructed when a credential is configured.
type GoogleTranslateClient struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewGoogleTranslateClient creates the secondary translation client.
// Returns nil when no API key is configured; callers treat a nil
// client as "no secondary step".
func NewGoogleTranslateClient(config domain.TranslateConfig, logger *logrus.Logger) *GoogleTranslateClient {
	if !config.SecondaryEnabled || config.SecondaryAPIKey == "" {
		return nil
	}
	endpoint := config.SecondaryURL
	if endpoint == "" {
		endpoint = "https://translation.googleapis.com/language/translate/v2"
	}
	timeout := config.Timeout
	if timeout == 0 {
		timeout = defaultTranslateTimeout
	}

	return &GoogleTranslateClient{
		endpoint:   endpoint,
		apiKey:     config.SecondaryAPIKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type googleTranslateRequest struct {
	Q      string `json:"q"`
	Target string `json:"target"`
	Source string `json:"source"`
}

type googleTranslateResponse struct {
	Data struct {
		Translations []struct {
			TranslatedText string `json:"translatedText"`
		} `json:"translations"`
	} `json:"data"`
}

// Translate translates English text into the target ISO 639-1 code
// through the keyed endpoint.
func (g *GoogleTranslateClient) Translate(ctx context.Context, text, targetCode string) (string, error) {
	payload, err := json.Marshal(googleTranslateRequest{
		Q:      text,
		Target: targetCode,
		Source: "en",
	})
	if err != nil {
		return "", fmt.Errorf("encoding request: %w", err)
	}

	endpoint := fmt.Sprintf("%s?key=%s", g.endpoint, url.QueryEscape(g.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", collaboratorError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: secondary translation returned status %d", domain.ErrCollaboratorFailed, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	var result googleTranslateResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("%w: malformed secondary translation response: %v", domain.ErrCollaboratorFailed, err)
	}
	if len(result.Data.Translations) == 0 || result.Data.Translations[0].TranslatedText == "" {
		return "", fmt.Errorf("%w: secondary translation returned no text", domain.ErrCollaboratorFailed)
	}

	g.logger.WithField("target", targetCode).Debug("Secondary machine translation succeeded")
	return result.Data.Translations[0].TranslatedText, nil
}
