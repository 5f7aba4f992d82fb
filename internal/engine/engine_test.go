package engine

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/shapedthought/term-ai/internal/llm"
	"github.com/shapedthought/term-ai/internal/search"
)

// mockLLMClient returns pre-configured responses in sequence and records
// every call it receives.
type mockLLMClient struct {
	responses []*llm.ChatResponse
	errs      []error
	callIndex int
	calls     []mockCall
}

type mockCall struct {
	Model    string
	Messages []llm.Message
	Tools    []map[string]any
}

func (m *mockLLMClient) Chat(_ context.Context, model string, messages []llm.Message, toolDefs []map[string]any) (*llm.ChatResponse, error) {
	// Snapshot the message log; the engine appends to its own slice.
	snap := make([]llm.Message, len(messages))
	copy(snap, messages)
	m.calls = append(m.calls, mockCall{Model: model, Messages: snap, Tools: toolDefs})

	i := m.callIndex
	m.callIndex++
	if i < len(m.errs) && m.errs[i] != nil {
		return nil, m.errs[i]
	}
	if i >= len(m.responses) {
		return nil, fmt.Errorf("mock: no more responses (call %d)", i)
	}
	return m.responses[i], nil
}

// stubSearch is a canned search provider.
type stubSearch struct {
	results []search.Result
	err     error
	queries []string
}

func (s *stubSearch) Name() string { return "stub" }

func (s *stubSearch) Search(_ context.Context, query string, _ int) ([]search.Result, error) {
	s.queries = append(s.queries, query)
	return s.results, s.err
}

func textResp(content string) *llm.ChatResponse {
	return &llm.ChatResponse{
		Message: llm.Message{Role: "assistant", Content: content},
		Done:    true,
	}
}

func toolCallResp(id, query string) *llm.ChatResponse {
	return &llm.ChatResponse{
		Message: llm.Message{
			Role: "assistant",
			ToolCalls: []llm.ToolCall{{
				ID: id,
				Function: llm.ToolFunction{
					Name:      "web_search",
					Arguments: map[string]any{"query": query},
				},
			}},
		},
		Done: true,
	}
}

func newEngine(mock *mockLLMClient, provider search.Provider, verbose bool) *Engine {
	return New(nil, mock, provider, Options{
		Model:      "test-model",
		MaxResults: 5,
		Verbose:    verbose,
	})
}

func TestRun_FinalTextNoTools(t *testing.T) {
	// Verbose on, zero searches: the answer comes back bare, no trace.
	mock := &mockLLMClient{responses: []*llm.ChatResponse{textResp("brew install redis")}}
	eng := newEngine(mock, &stubSearch{}, true)

	result, err := eng.Run(context.Background(), "install redis")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Text != "brew install redis" {
		t.Errorf("Text = %q, want bare answer", result.Text)
	}
	if result.Iterations != 1 {
		t.Errorf("Iterations = %d, want 1", result.Iterations)
	}
	if len(result.Queries) != 0 {
		t.Errorf("Queries = %v, want none", result.Queries)
	}
}

func TestRun_ToolCallThenAnswer(t *testing.T) {
	mock := &mockLLMClient{responses: []*llm.ChatResponse{
		toolCallResp("call-1", "rust latest stable version"),
		textResp("1.93.0"),
	}}
	provider := &stubSearch{results: []search.Result{
		{Title: "Rust Releases", URL: "https://releases.rs", Snippet: "1.93.0 is stable"},
		{Title: "Rust Blog", URL: "https://blog.rust-lang.org", Snippet: "Announcing Rust 1.93.0"},
	}}
	eng := newEngine(mock, provider, true)

	result, err := eng.Run(context.Background(), "latest rust version")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.Contains(result.Text, "Searched for: rust latest stable version") {
		t.Errorf("missing searched-for line:\n%s", result.Text)
	}
	if !strings.Contains(result.Text, "1. Rust Releases") || !strings.Contains(result.Text, "2. Rust Blog") {
		t.Errorf("missing source list:\n%s", result.Text)
	}
	if !strings.HasSuffix(result.Text, "1.93.0") {
		t.Errorf("answer not at end:\n%s", result.Text)
	}
	if len(provider.queries) != 1 || provider.queries[0] != "rust latest stable version" {
		t.Errorf("provider queries = %v", provider.queries)
	}
}

func TestRun_NonVerboseOmitsTrace(t *testing.T) {
	mock := &mockLLMClient{responses: []*llm.ChatResponse{
		toolCallResp("call-1", "q"),
		textResp("answer"),
	}}
	provider := &stubSearch{results: []search.Result{{Title: "t", URL: "u"}}}
	eng := newEngine(mock, provider, false)

	result, err := eng.Run(context.Background(), "request")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Text != "answer" {
		t.Errorf("Text = %q, want bare answer", result.Text)
	}
	if len(result.Queries) != 1 {
		t.Errorf("Queries = %v, want the executed query even without verbose", result.Queries)
	}
}

func TestRun_MessageOrdering(t *testing.T) {
	mock := &mockLLMClient{responses: []*llm.ChatResponse{
		toolCallResp("call-1", "q"),
		textResp("answer"),
	}}
	eng := newEngine(mock, &stubSearch{}, false)

	if _, err := eng.Run(context.Background(), "my request"); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(mock.calls) != 2 {
		t.Fatalf("expected 2 model calls, got %d", len(mock.calls))
	}

	first := mock.calls[0].Messages
	if len(first) != 2 || first[0].Role != "system" || first[1].Role != "user" {
		t.Fatalf("first call messages = %+v", roles(first))
	}
	if first[1].Content != "my request" {
		t.Errorf("user content = %q", first[1].Content)
	}

	second := mock.calls[1].Messages
	want := []string{"system", "user", "assistant", "tool"}
	got := roles(second)
	if len(got) != len(want) {
		t.Fatalf("second call roles = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("second call roles = %v, want %v", got, want)
		}
	}
	if second[3].ToolCallID != "call-1" {
		t.Errorf("tool message call ID = %q, want call-1", second[3].ToolCallID)
	}
	if len(mock.calls[0].Tools) != 1 {
		t.Errorf("expected the single web_search tool, got %d", len(mock.calls[0].Tools))
	}
}

func roles(msgs []llm.Message) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.Role
	}
	return out
}

func TestRun_IterationLimit(t *testing.T) {
	var responses []*llm.ChatResponse
	for i := 0; i < DefaultMaxIterations; i++ {
		responses = append(responses, toolCallResp("call-loop", "again"))
	}
	mock := &mockLLMClient{responses: responses}
	eng := newEngine(mock, &stubSearch{}, false)

	_, err := eng.Run(context.Background(), "request")
	var engErr *Error
	if !errors.As(err, &engErr) {
		t.Fatalf("expected *Error, got %T: %v", err, err)
	}
	if engErr.Kind != KindIterationLimit {
		t.Errorf("Kind = %v, want iteration_limit", engErr.Kind)
	}
	if !strings.Contains(engErr.Error(), "10") {
		t.Errorf("error should name the bound: %v", engErr)
	}
	if len(mock.calls) != DefaultMaxIterations {
		t.Errorf("model calls = %d, want %d", len(mock.calls), DefaultMaxIterations)
	}
}

func TestRun_ProviderErrorFedBackToModel(t *testing.T) {
	mock := &mockLLMClient{responses: []*llm.ChatResponse{
		toolCallResp("call-1", "q"),
		textResp("answer anyway"),
	}}
	provider := &stubSearch{err: &search.ProviderError{
		Provider: "stub", Kind: search.ErrHTTP, Message: "backend down",
	}}
	eng := newEngine(mock, provider, false)

	result, err := eng.Run(context.Background(), "request")
	if err != nil {
		t.Fatalf("provider failure must not abort the run: %v", err)
	}
	if result.Text != "answer anyway" {
		t.Errorf("Text = %q", result.Text)
	}

	toolMsg := mock.calls[1].Messages[3]
	if toolMsg.Role != "tool" || !strings.HasPrefix(toolMsg.Content, "Error: ") {
		t.Errorf("tool message = %+v, want Error: prefix", toolMsg)
	}
}

func TestRun_UnknownToolFedBackToModel(t *testing.T) {
	mock := &mockLLMClient{responses: []*llm.ChatResponse{
		{
			Message: llm.Message{
				Role: "assistant",
				ToolCalls: []llm.ToolCall{{
					ID: "call-1",
					Function: llm.ToolFunction{
						Name:      "read_file",
						Arguments: map[string]any{"path": "/etc/hosts"},
					},
				}},
			},
		},
		textResp("done"),
	}}
	eng := newEngine(mock, &stubSearch{}, false)

	result, err := eng.Run(context.Background(), "request")
	if err != nil {
		t.Fatalf("unknown tool must not abort the run: %v", err)
	}
	if result.Text != "done" {
		t.Errorf("Text = %q", result.Text)
	}

	toolMsg := mock.calls[1].Messages[3]
	if !strings.Contains(toolMsg.Content, `"read_file"`) || !strings.Contains(toolMsg.Content, "not available") {
		t.Errorf("tool message content = %q", toolMsg.Content)
	}
}

func TestRun_MalformedToolCallIsFatal(t *testing.T) {
	mock := &mockLLMClient{responses: []*llm.ChatResponse{
		{
			Message: llm.Message{
				Role: "assistant",
				ToolCalls: []llm.ToolCall{{
					ID: "call-1",
					Function: llm.ToolFunction{
						Name:      "web_search",
						Arguments: map[string]any{},
					},
				}},
			},
		},
	}}
	provider := &stubSearch{}
	eng := newEngine(mock, provider, false)

	_, err := eng.Run(context.Background(), "request")
	var engErr *Error
	if !errors.As(err, &engErr) {
		t.Fatalf("expected *Error, got %T: %v", err, err)
	}
	if engErr.Kind != KindMalformedToolCall {
		t.Errorf("Kind = %v, want malformed_tool_call", engErr.Kind)
	}
	if len(provider.queries) != 0 {
		t.Errorf("provider should not run for a malformed call, got %v", provider.queries)
	}
}

func TestRun_ModelErrorIsFatal(t *testing.T) {
	mock := &mockLLMClient{errs: []error{
		&llm.APIError{StatusCode: http.StatusInternalServerError, Body: "boom"},
	}}
	eng := newEngine(mock, &stubSearch{}, false)

	_, err := eng.Run(context.Background(), "request")
	var engErr *Error
	if !errors.As(err, &engErr) {
		t.Fatalf("expected *Error, got %T: %v", err, err)
	}
	if engErr.Kind != KindModel {
		t.Errorf("Kind = %v, want model", engErr.Kind)
	}
	var apiErr *llm.APIError
	if !errors.As(err, &apiErr) {
		t.Error("underlying *llm.APIError should unwrap")
	}
}

func TestRun_UnsupportedTools(t *testing.T) {
	mock := &mockLLMClient{errs: []error{
		&llm.APIError{
			StatusCode: http.StatusBadRequest,
			Body:       `{"error": "registry.ollama.ai/library/gemma does not support tools"}`,
		},
	}}
	eng := newEngine(mock, &stubSearch{}, false)

	_, err := eng.Run(context.Background(), "request")
	var engErr *Error
	if !errors.As(err, &engErr) {
		t.Fatalf("expected *Error, got %T: %v", err, err)
	}
	if engErr.Kind != KindUnsupportedTools {
		t.Errorf("Kind = %v, want unsupported_tools", engErr.Kind)
	}
}

func TestRun_EmptyRequest(t *testing.T) {
	eng := newEngine(&mockLLMClient{}, &stubSearch{}, false)
	if _, err := eng.Run(context.Background(), "   "); err == nil {
		t.Fatal("expected an error for an empty request")
	}
}

func TestRun_GeneratesMissingCallIDs(t *testing.T) {
	mock := &mockLLMClient{responses: []*llm.ChatResponse{
		toolCallResp("", "q"),
		textResp("answer"),
	}}
	eng := newEngine(mock, &stubSearch{}, false)

	if _, err := eng.Run(context.Background(), "request"); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	toolMsg := mock.calls[1].Messages[3]
	if toolMsg.ToolCallID == "" {
		t.Error("tool message should carry a generated call ID")
	}
}

func TestRun_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	mock := &mockLLMClient{responses: []*llm.ChatResponse{textResp("never")}}
	eng := newEngine(mock, &stubSearch{}, false)

	if _, err := eng.Run(ctx, "request"); err == nil {
		t.Fatal("expected an error for a cancelled context")
	}
	if len(mock.calls) != 0 {
		t.Errorf("no model call should happen after cancellation, got %d", len(mock.calls))
	}
}
