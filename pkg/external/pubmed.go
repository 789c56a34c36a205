// Package external contains HTTP clients for the three collaborator
// services the enrichment pipeline depends on: NCBI PubMed literature
// search, an Ollama completion endpoint, and machine translation.
// Clients report failures as errors wrapping the domain collaborator
// sentinels so callers can branch to their fallbacks deterministically.
package external

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/medcase-assist-server/internal/domain"
)

const (
	defaultPubMedBaseURL = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/"
	defaultPubMedTimeout = 15 * time.Second

	// defaultSearchRetMax is the raw candidate cap requested from
	// esearch; defaultFetchRetMax bounds how many of those IDs get
	// their full record fetched.
	defaultSearchRetMax = 20
	defaultFetchRetMax  = 15
)

// PubMedClient queries NCBI PubMed via E-utilities: esearch for PMIDs,
// then efetch for titles and abstracts. Requests are rate limited to
// stay inside NCBI's per-key quota.
type PubMedClient struct {
	baseURL      string
	apiKey       string
	email        string
	searchRetMax int
	fetchRetMax  int
	httpClient   *http.Client
	limiter      *rate.Limiter
	logger       *logrus.Logger
}

// NewPubMedClient creates a PubMed E-utilities client.
func NewPubMedClient(config domain.PubMedConfig, logger *logrus.Logger) *PubMedClient {
	if config.BaseURL == "" {
		config.BaseURL = defaultPubMedBaseURL
	}
	if config.Timeout == 0 {
		config.Timeout = defaultPubMedTimeout
	}
	if config.RateLimit <= 0 {
		config.RateLimit = 3 // requests per second, NCBI's with-key quota
	}
	if config.SearchRetMax <= 0 {
		config.SearchRetMax = defaultSearchRetMax
	}
	if config.FetchRetMax <= 0 {
		config.FetchRetMax = defaultFetchRetMax
	}

	return &PubMedClient{
		baseURL:      config.BaseURL,
		apiKey:       config.APIKey,
		email:        config.Email,
		searchRetMax: config.SearchRetMax,
		fetchRetMax:  config.FetchRetMax,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(config.RateLimit), 1),
		logger:  logger,
	}
}

// pubMedSearchResponse is the esearch XML envelope.
type pubMedSearchResponse struct {
	XMLName xml.Name `xml:"eSearchResult"`
	Count   int      `xml:"Count"`
	IDList  struct {
		IDs []string `xml:"Id"`
	} `xml:"IdList"`
}

// pubMedFetchResponse is the efetch XML envelope carrying full
// article records.
type pubMedFetchResponse struct {
	XMLName  xml.Name        `xml:"PubmedArticleSet"`
	Articles []pubMedArticle `xml:"PubmedArticle"`
}

// pubMedText captures the raw inner XML of a text element. Titles and
// abstracts carry inline markup like <i> and <sup>; decoding as a
// plain string would drop the tagged words entirely, so the markup is
// kept here and stripped by cleanMarkup.
type pubMedText struct {
	Value string `xml:",innerxml"`
}

type pubMedArticle struct {
	MedlineCitation struct {
		PMID    string `xml:"PMID"`
		Article struct {
			ArticleTitle pubMedText `xml:"ArticleTitle"`
			Abstract     struct {
				AbstractText []pubMedText `xml:"AbstractText"`
			} `xml:"Abstract"`
		} `xml:"Article"`
	} `xml:"MedlineCitation"`
}

// Search queries PubMed for literature candidates matching the query.
// Up to the configured search cap of PMIDs are requested; full records
// are fetched for the first fetch-cap IDs. An empty result list is a
// valid response.
func (p *PubMedClient) Search(ctx context.Context, query string) ([]domain.LiteratureCandidate, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}

	pmids, err := p.searchArticles(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("searching PubMed: %w", err)
	}
	if len(pmids) == 0 {
		p.logger.WithField("query", query).Debug("PubMed search returned no results")
		return nil, nil
	}

	if len(pmids) > p.fetchRetMax {
		pmids = pmids[:p.fetchRetMax]
	}

	candidates, err := p.fetchArticles(ctx, pmids)
	if err != nil {
		return nil, fmt.Errorf("fetching PubMed records: %w", err)
	}

	p.logger.WithFields(logrus.Fields{
		"query":      query,
		"pmids":      len(pmids),
		"candidates": len(candidates),
	}).Debug("PubMed search completed")
	return candidates, nil
}

// searchArticles performs the esearch call and returns matching PMIDs.
func (p *PubMedClient) searchArticles(ctx context.Context, query string) ([]string, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{
		"db":      {"pubmed"},
		"term":    {query},
		"retmode": {"xml"},
		"retmax":  {strconv.Itoa(p.searchRetMax)},
		"sort":    {"relevance"},
	}
	if p.apiKey != "" {
		params.Set("api_key", p.apiKey)
	}
	if p.email != "" {
		params.Set("email", p.email)
	}

	body, err := p.get(ctx, "esearch.fcgi", params)
	if err != nil {
		return nil, err
	}

	var searchResponse pubMedSearchResponse
	if err := xml.Unmarshal(body, &searchResponse); err != nil {
		return nil, fmt.Errorf("parsing search response: %w", err)
	}
	return searchResponse.IDList.IDs, nil
}

// fetchArticles performs the efetch call for the given PMIDs and
// converts the records to literature candidates. Records without an
// abstract are kept; an absent abstract is valid.
func (p *PubMedClient) fetchArticles(ctx context.Context, pmids []string) ([]domain.LiteratureCandidate, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{
		"db":      {"pubmed"},
		"id":      {strings.Join(pmids, ",")},
		"retmode": {"xml"},
	}
	if p.apiKey != "" {
		params.Set("api_key", p.apiKey)
	}

	body, err := p.get(ctx, "efetch.fcgi", params)
	if err != nil {
		return nil, err
	}

	var fetchResponse pubMedFetchResponse
	if err := xml.Unmarshal(body, &fetchResponse); err != nil {
		return nil, fmt.Errorf("parsing fetch response: %w", err)
	}

	candidates := make([]domain.LiteratureCandidate, 0, len(fetchResponse.Articles))
	for _, article := range fetchResponse.Articles {
		sections := article.MedlineCitation.Article.Abstract.AbstractText
		parts := make([]string, 0, len(sections))
		for _, section := range sections {
			parts = append(parts, section.Value)
		}
		candidates = append(candidates, domain.LiteratureCandidate{
			PMID:     article.MedlineCitation.PMID,
			Title:    cleanMarkup(article.MedlineCitation.Article.ArticleTitle.Value),
			Abstract: cleanMarkup(strings.Join(parts, " ")),
		})
	}
	return candidates, nil
}

func (p *PubMedClient) get(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	fullURL := fmt.Sprintf("%s%s?%s", p.baseURL, endpoint, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, collaboratorError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: PubMed returned status %d", domain.ErrCollaboratorFailed, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	return body, nil
}

var markupTagRe = regexp.MustCompile(`</?[a-zA-Z][^>]*>`)

// cleanMarkup strips the inline formatting tags PubMed leaves inside
// titles and abstracts and resolves XML entities.
func cleanMarkup(value string) string {
	value = markupTagRe.ReplaceAllString(value, "")
	return strings.TrimSpace(html.UnescapeString(value))
}

// collaboratorError maps a transport error onto the domain collaborator
// sentinels, preserving the original error in the chain.
func collaboratorError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
		return fmt.Errorf("%w: %v", domain.ErrCollaboratorTimedOut, err)
	}
	return fmt.Errorf("%w: %v", domain.ErrCollaboratorFailed, err)
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}
