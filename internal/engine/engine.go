// Package engine runs the bounded tool-calling loop that turns a user
// request into shell-command text, consulting a web-search provider when
// the model asks for one.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shapedthought/term-ai/internal/llm"
	"github.com/shapedthought/term-ai/internal/prompts"
	"github.com/shapedthought/term-ai/internal/search"
	"github.com/shapedthought/term-ai/internal/tools"
	"github.com/shapedthought/term-ai/internal/trace"
)

// DefaultMaxIterations bounds the tool-calling loop. It guards against a
// model that never stops requesting tools.
const DefaultMaxIterations = 10

// ModelClient is the slice of the Ollama client the engine needs.
type ModelClient interface {
	Chat(ctx context.Context, model string, messages []llm.Message, tools []map[string]any) (*llm.ChatResponse, error)
}

// Options configure a run.
type Options struct {
	Model         string
	MaxResults    int
	MaxIterations int
	Verbose       bool
}

// Result is the outcome of a successful run.
type Result struct {
	// Text is the final answer, trace-annotated when verbose was on and
	// at least one search ran.
	Text string

	// Iterations is how many model exchanges the run took.
	Iterations int

	// Queries are the web searches executed, in order.
	Queries []string
}

// Engine drives the tool-calling loop. One engine may serve many runs;
// each run gets its own message log and trace collector.
type Engine struct {
	logger   *slog.Logger
	llm      ModelClient
	provider search.Provider
	opts     Options
}

// New creates an engine. A nil logger discards log output.
func New(logger *slog.Logger, llmClient ModelClient, provider search.Provider, opts Options) *Engine {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = DefaultMaxIterations
	}
	return &Engine{
		logger:   logger,
		llm:      llmClient,
		provider: provider,
		opts:     opts,
	}
}

// Run executes the loop for one user request. Tool calls within an
// assistant turn run strictly in order; there is no internal concurrency
// and no retry.
func (e *Engine) Run(ctx context.Context, userRequest string) (*Result, error) {
	if strings.TrimSpace(userRequest) == "" {
		return nil, fmt.Errorf("user request is required")
	}

	// Unique run ID for log correlation.
	runID, _ := uuid.NewV7()
	rid := runID.String()

	collector := trace.NewCollector()
	reg := tools.NewRegistry()
	reg.Register(search.NewTool(e.provider, e.opts.MaxResults, func(query string, results []search.Result) {
		sources := make([]trace.Source, len(results))
		for i, r := range results {
			sources[i] = trace.Source{Title: r.Title, URL: r.URL, Snippet: r.Snippet}
		}
		collector.Record(query, sources)
	}))
	toolDefs := reg.List()

	messages := []llm.Message{
		{Role: "system", Content: prompts.ChatSystemPrompt()},
		{Role: "user", Content: userRequest},
	}

	e.logger.Info("run started",
		"run_id", rid,
		"model", e.opts.Model,
		"provider", e.provider.Name(),
		"max_iterations", e.opts.MaxIterations,
	)

	startTime := time.Now()

	for i := 0; i < e.opts.MaxIterations; i++ {
		// Check context cancellation at iteration boundary.
		if err := ctx.Err(); err != nil {
			return nil, &Error{Kind: KindModel, Message: "run cancelled", Err: err}
		}

		iterStart := time.Now()

		e.logger.Info("model call",
			"run_id", rid,
			"iter", i,
			"model", e.opts.Model,
			"msgs", len(messages),
		)

		resp, err := e.llm.Chat(ctx, e.opts.Model, messages, toolDefs)
		if err != nil {
			return nil, modelError(i, err)
		}

		e.logger.Info("model response",
			"run_id", rid,
			"iter", i,
			"tool_calls", len(resp.Message.ToolCalls),
			"elapsed", time.Since(iterStart).Round(time.Millisecond),
		)

		// No tool calls means we have the final answer.
		if len(resp.Message.ToolCalls) == 0 {
			messages = append(messages, resp.Message)

			text := resp.Message.Content
			if e.opts.Verbose && collector.Len() > 0 {
				text = collector.Render(text)
			}

			e.logger.Info("run finished",
				"run_id", rid,
				"iterations", i+1,
				"searches", collector.Len(),
				"elapsed", time.Since(startTime).Round(time.Millisecond),
			)
			return &Result{
				Text:       text,
				Iterations: i + 1,
				Queries:    collector.Queries(),
			}, nil
		}

		// Execute tool calls in the order the model emitted them.
		messages = append(messages, resp.Message)
		for _, tc := range resp.Message.ToolCalls {
			callID := tc.ID
			if callID == "" {
				callID = uuid.NewString()
			}

			e.logger.Info("tool exec",
				"run_id", rid,
				"iter", i,
				"tool", tc.Function.Name,
				"call_id", callID,
			)

			result, err := reg.Execute(ctx, tc.Function.Name, tc.Function.Arguments)
			if err != nil {
				var malformed *tools.ErrMalformedCall
				if errors.As(err, &malformed) {
					return nil, &Error{
						Kind:    KindMalformedToolCall,
						Message: malformed.Error(),
						Err:     err,
					}
				}

				// Unknown tools and provider failures go back to the
				// model as tool output so it can recover.
				result = "Error: " + err.Error()
				e.logger.Error("tool exec failed",
					"run_id", rid,
					"iter", i,
					"tool", tc.Function.Name,
					"error", err,
				)
			}

			messages = append(messages, llm.Message{
				Role:       "tool",
				Content:    result,
				ToolCallID: callID,
			})
		}
	}

	e.logger.Warn("max iterations reached",
		"run_id", rid,
		"max_iterations", e.opts.MaxIterations,
	)
	return nil, &Error{
		Kind: KindIterationLimit,
		Message: fmt.Sprintf("maximum iterations (%d) exceeded; the model may be stuck in a tool-calling loop",
			e.opts.MaxIterations),
	}
}

// modelError classifies a model-server failure. An HTTP 400 whose body
// says the model does not support tools gets its own kind so the CLI can
// suggest a different model.
func modelError(iter int, err error) *Error {
	kind := KindModel
	var apiErr *llm.APIError
	if errors.As(err, &apiErr) &&
		apiErr.StatusCode == http.StatusBadRequest &&
		strings.Contains(apiErr.Body, "does not support tools") {
		kind = KindUnsupportedTools
	}
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf("model call failed (iter %d)", iter),
		Err:     err,
	}
}
