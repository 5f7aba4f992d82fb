package search

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/shapedthought/term-ai/internal/tools"
)

// ToolName is the single tool identifier offered to the model.
const ToolName = "web_search"

// RecordFunc receives each executed query and its results, for the
// engine's trace collector. Called once per invocation, with a nil result
// slice when the provider failed.
type RecordFunc func(query string, results []Result)

// NewTool wraps a provider as a web_search tool for the registry.
//
// The handler returns *tools.ErrMalformedCall when the query argument is
// absent or empty; provider failures are returned as-is so the engine can
// hand them back to the model as tool output.
func NewTool(p Provider, maxResults int, record RecordFunc) *tools.Tool {
	return &tools.Tool{
		Name:        ToolName,
		Description: "Search the web for current information, latest versions, recent documentation, or up-to-date facts. Use this when you need information that may have changed recently or when the user asks about 'latest' or 'current' versions.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "The search query to execute",
				},
			},
			"required": []string{"query"},
		},
		Handler: func(ctx context.Context, args map[string]any) (string, error) {
			query, _ := args["query"].(string)
			if strings.TrimSpace(query) == "" {
				return "", &tools.ErrMalformedCall{
					ToolName: ToolName,
					Reason:   `missing or empty "query" argument`,
				}
			}

			results, err := p.Search(ctx, query, maxResults)
			if record != nil {
				record(query, results)
			}
			if err != nil {
				return "", err
			}

			// JSON for structured consumption by the model.
			out, err := json.Marshal(results)
			if err != nil {
				return "", err
			}
			return string(out), nil
		},
	}
}
