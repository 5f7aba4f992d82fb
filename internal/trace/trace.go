// Package trace accumulates web-search activity during a tool-calling run
// and renders it as a human-readable preamble to the final answer.
package trace

import (
	"fmt"
	"strings"
)

// Limits on how much of each search lands in the rendered trace.
const (
	maxSourcesPerQuery = 3
	maxSnippetLen      = 100
)

// Source is one search hit kept for the rendered trace.
type Source struct {
	Title   string
	URL     string
	Snippet string
}

// Record is one executed search: the query and its retained sources.
type Record struct {
	Query   string
	Sources []Source
}

// Collector is an append-only log of executed searches. It is populated as
// a side effect of tool execution and read once at the end of a run. Not
// safe for concurrent use; each run owns its own collector.
type Collector struct {
	records []Record
}

// NewCollector returns an empty collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Record appends one executed search. Only the first three sources are
// kept, and snippets are clipped to 100 characters.
func (c *Collector) Record(query string, sources []Source) {
	if len(sources) > maxSourcesPerQuery {
		sources = sources[:maxSourcesPerQuery]
	}
	kept := make([]Source, len(sources))
	for i, s := range sources {
		if len(s.Snippet) > maxSnippetLen {
			s.Snippet = s.Snippet[:maxSnippetLen]
		}
		kept[i] = s
	}
	c.records = append(c.records, Record{Query: query, Sources: kept})
}

// Len returns the number of recorded searches.
func (c *Collector) Len() int {
	return len(c.records)
}

// Queries returns every recorded query, in execution order.
func (c *Collector) Queries() []string {
	out := make([]string, len(c.records))
	for i, r := range c.records {
		out[i] = r.Query
	}
	return out
}

// Render returns the answer prefixed with the search trace. It reads the
// collector without modifying it, so repeated calls produce identical
// output. With no records it falls back to the "no search required" and
// "N/A" sentinels.
func (c *Collector) Render(answer string) string {
	var b strings.Builder

	b.WriteString("Searched for: ")
	if len(c.records) == 0 {
		b.WriteString("no search required")
	} else {
		b.WriteString(strings.Join(c.Queries(), ", "))
	}
	b.WriteString("\nSources:\n")

	n := 0
	for _, r := range c.records {
		for _, s := range r.Sources {
			n++
			fmt.Fprintf(&b, "%d. %s\n   %s\n", n, s.Title, s.URL)
		}
	}
	if n == 0 {
		b.WriteString("N/A\n")
	}

	b.WriteString("\n")
	b.WriteString(answer)
	return b.String()
}
