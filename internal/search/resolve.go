package search

import (
	"fmt"
	"net/http"
	"strings"
)

// Resolve selects and constructs a search provider. It is a pure decision
// function: no side effects, no network, total over its inputs.
//
// Decision order (first match wins):
//  1. explicit "duckduckgo" (or "ddg") → DuckDuckGo
//  2. explicit "brave" with an API key → Brave
//  3. explicit "brave" without a key → ConfigError
//  4. no explicit choice, key present → Brave (auto-detect)
//  5. no explicit choice, no key → DuckDuckGo (default)
//  6. anything else → ConfigError
//
// A nil client lets each provider construct its own httpkit client with
// the standard provider timeout.
func Resolve(choice, braveAPIKey string, client *http.Client) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(choice)) {
	case "duckduckgo", "ddg":
		return NewDuckDuckGo(client), nil

	case "brave":
		if braveAPIKey == "" {
			return nil, &ConfigError{
				Message: "brave search provider requires an API key (use --brave-api-key or the BRAVE_API_KEY environment variable)",
			}
		}
		return NewBrave(braveAPIKey, client), nil

	case "":
		if braveAPIKey != "" {
			return NewBrave(braveAPIKey, client), nil
		}
		return NewDuckDuckGo(client), nil

	default:
		return nil, &ConfigError{
			Message: fmt.Sprintf("unknown search provider: %q (valid: duckduckgo, brave)", choice),
		}
	}
}
