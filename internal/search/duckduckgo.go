package search

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/shapedthought/term-ai/internal/httpkit"
)

// duckduckgoURL is the public HTML endpoint scraped for results.
const duckduckgoURL = "https://html.duckduckgo.com/html/"

// Result block selectors, fixed by DuckDuckGo's HTML layout.
const (
	ddgClassResult  = "result"
	ddgClassTitle   = "result__title"
	ddgClassURL     = "result__url"
	ddgClassSnippet = "result__snippet"
)

// DuckDuckGo implements the Provider interface by scraping the public
// DuckDuckGo HTML endpoint. No credential is required.
type DuckDuckGo struct {
	baseURL    string
	httpClient *http.Client
}

// NewDuckDuckGo creates a DuckDuckGo provider. A nil client gets the
// shared httpkit client with the provider timeout.
func NewDuckDuckGo(client *http.Client) *DuckDuckGo {
	if client == nil {
		client = httpkit.NewClient(httpkit.WithTimeout(Timeout))
	}
	return &DuckDuckGo{
		baseURL:    duckduckgoURL,
		httpClient: client,
	}
}

func (d *DuckDuckGo) Name() string { return "duckduckgo" }

func (d *DuckDuckGo) Search(ctx context.Context, query string, maxResults int) ([]Result, error) {
	reqURL := d.baseURL + "?q=" + url.QueryEscape(query)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &ProviderError{
			Provider: d.Name(),
			Kind:     ErrHTTP,
			Message:  fmt.Sprintf("build request: %v", err),
		}
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, requestError(d.Name(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		httpkit.DrainAndClose(resp.Body, 512)
		return nil, &ProviderError{
			Provider: d.Name(),
			Kind:     ErrHTTP,
			Message:  fmt.Sprintf("duckduckgo returned status %d", resp.StatusCode),
		}
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, &ProviderError{
			Provider: d.Name(),
			Kind:     ErrDecode,
			Message:  fmt.Sprintf("parse response: %v", err),
		}
	}

	// Zero matched containers is not an error: a bot-challenge page served
	// instead of results yields an empty set, and the model can recover by
	// rephrasing the query.
	results := make([]Result, 0, maxResults)
	for _, container := range nodesWithClass(doc, ddgClassResult) {
		if len(results) >= maxResults {
			break
		}

		title := nodeText(firstWithClass(container, ddgClassTitle))
		resultURL := nodeText(firstWithClass(container, ddgClassURL))
		snippet := nodeText(firstWithClass(container, ddgClassSnippet))

		if title == "" || resultURL == "" {
			continue
		}
		results = append(results, Result{
			Title:   title,
			URL:     resultURL,
			Snippet: snippet,
		})
	}

	return results, nil
}

// nodesWithClass walks the DOM and collects element nodes carrying the
// given class token.
func nodesWithClass(n *html.Node, class string) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && hasClass(n, class) {
			out = append(out, n)
			// Result blocks do not nest; no need to descend further.
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return out
}

// firstWithClass returns the first descendant carrying the class token, or nil.
func firstWithClass(n *html.Node, class string) *html.Node {
	if n == nil {
		return nil
	}
	if n.Type == html.ElementNode && hasClass(n, class) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := firstWithClass(c, class); found != nil {
			return found
		}
	}
	return nil
}

// hasClass reports whether the element's class attribute contains the
// given token.
func hasClass(n *html.Node, class string) bool {
	for _, attr := range n.Attr {
		if attr.Key != "class" {
			continue
		}
		for _, token := range strings.Fields(attr.Val) {
			if token == class {
				return true
			}
		}
	}
	return false
}

// nodeText returns the node's concatenated text content with whitespace
// collapsed, or "" for a nil node.
func nodeText(n *html.Node) string {
	if n == nil {
		return ""
	}
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}
