package search

import (
	"errors"
	"net/http"
	"strings"
	"testing"
)

// countingTransport counts outbound requests and refuses them all, so a
// test can prove no network call was attempted.
type countingTransport struct {
	calls int
}

func (t *countingTransport) RoundTrip(*http.Request) (*http.Response, error) {
	t.calls++
	return nil, errors.New("no network in tests")
}

func TestResolveExplicitDuckDuckGo(t *testing.T) {
	p, err := Resolve("duckduckgo", "", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name() != "duckduckgo" {
		t.Errorf("Name = %q, want duckduckgo", p.Name())
	}
}

func TestResolveDDGAlias(t *testing.T) {
	p, err := Resolve("ddg", "ignored-key", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name() != "duckduckgo" {
		t.Errorf("Name = %q, want duckduckgo", p.Name())
	}
}

func TestResolveExplicitBraveWithKey(t *testing.T) {
	p, err := Resolve("brave", "test-key", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name() != "brave" {
		t.Errorf("Name = %q, want brave", p.Name())
	}
}

func TestResolveBraveWithoutKey(t *testing.T) {
	// Resolution must fail before any network call is attempted.
	ct := &countingTransport{}
	client := &http.Client{Transport: ct}

	_, err := Resolve("brave", "", client)
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigError, got %v", err)
	}
	if ct.calls != 0 {
		t.Errorf("expected zero outbound calls, got %d", ct.calls)
	}
}

func TestResolveAutoDetectBrave(t *testing.T) {
	p, err := Resolve("", "test-key", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name() != "brave" {
		t.Errorf("Name = %q, want brave (auto-detect)", p.Name())
	}
}

func TestResolveDefaultDuckDuckGo(t *testing.T) {
	p, err := Resolve("", "", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name() != "duckduckgo" {
		t.Errorf("Name = %q, want duckduckgo (default)", p.Name())
	}
}

func TestResolveUnknownProvider(t *testing.T) {
	_, err := Resolve("bing", "", nil)
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigError, got %v", err)
	}
	if got := cfgErr.Error(); !strings.Contains(got, "unknown search provider") || !strings.Contains(got, "bing") {
		t.Errorf("error text %q should name the bad provider", got)
	}
}

func TestResolveDeterministic(t *testing.T) {
	// Same inputs always resolve to the same variant.
	for i := 0; i < 3; i++ {
		p, err := Resolve("", "key", nil)
		if err != nil || p.Name() != "brave" {
			t.Fatalf("resolution not deterministic: %v, %v", p, err)
		}
	}
}

func TestResolveCaseInsensitive(t *testing.T) {
	p, err := Resolve("  DuckDuckGo ", "", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name() != "duckduckgo" {
		t.Errorf("Name = %q", p.Name())
	}
}
