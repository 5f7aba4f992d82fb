package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/shapedthought/term-ai/internal/httpkit"
)

// braveURL is the Brave Search API web endpoint.
const braveURL = "https://api.search.brave.com/res/v1/web/search"

// Brave implements the Provider interface for the Brave Search API.
// It requires an API key, sent as the X-Subscription-Token header.
type Brave struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewBrave creates a Brave Search provider. A nil client gets the shared
// httpkit client with the provider timeout.
func NewBrave(apiKey string, client *http.Client) *Brave {
	if client == nil {
		client = httpkit.NewClient(httpkit.WithTimeout(Timeout))
	}
	return &Brave{
		apiKey:     apiKey,
		baseURL:    braveURL,
		httpClient: client,
	}
}

func (b *Brave) Name() string { return "brave" }

// braveResponse is the JSON response from Brave's web search API.
type braveResponse struct {
	Web struct {
		Results []braveResult `json:"results"`
	} `json:"web"`
}

type braveResult struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

func (b *Brave) Search(ctx context.Context, query string, maxResults int) ([]Result, error) {
	params := url.Values{
		"q":     {query},
		"count": {strconv.Itoa(maxResults)},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, &ProviderError{
			Provider: b.Name(),
			Kind:     ErrHTTP,
			Message:  fmt.Sprintf("build request: %v", err),
		}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", b.apiKey)

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, requestError(b.Name(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		httpkit.DrainAndClose(resp.Body, 512)
		return nil, &ProviderError{
			Provider: b.Name(),
			Kind:     ErrHTTP,
			Message:  fmt.Sprintf("brave returned status %d", resp.StatusCode),
		}
	}

	var br braveResponse
	if err := json.NewDecoder(resp.Body).Decode(&br); err != nil {
		return nil, &ProviderError{
			Provider: b.Name(),
			Kind:     ErrDecode,
			Message:  fmt.Sprintf("decode response: %v", err),
		}
	}

	results := make([]Result, 0, len(br.Web.Results))
	for _, r := range br.Web.Results {
		if len(results) >= maxResults {
			break
		}
		if r.Title == "" || r.URL == "" {
			continue
		}
		results = append(results, Result{
			Title:   r.Title,
			URL:     r.URL,
			Snippet: r.Description,
		})
	}

	return results, nil
}
