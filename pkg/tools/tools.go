// Package tools implements the two read-only documentation tools exposed
// by the MCP server.
package tools

import (
	"context"
	"log/slog"

	"betterauth-mcp/pkg/fetcher"
)

// Sentinel strings returned to the model when a fetch fails. Failures
// never cross the tool boundary as errors.
const (
	TOCFetchFailed  = "Unable to fetch table of contents."
	PageFetchFailed = "Unable to fetch page."
)

// Definition describes one callable tool for tools/list and for
// translation into an LLM function schema.
type Definition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

// PageFetcher fetches a single page by absolute URL.
type PageFetcher interface {
	FetchPage(ctx context.Context, url string) (string, error)
}

// Toolset holds the documentation tools. Both tools are idempotent reads
// against the documentation origin.
type Toolset struct {
	baseURL string
	fetcher PageFetcher
	logger  *slog.Logger
}

func NewToolset(baseURL string, f PageFetcher) *Toolset {
	if f == nil {
		f = fetcher.NewClient()
	}
	return &Toolset{
		baseURL: baseURL,
		fetcher: f,
		logger:  slog.Default(),
	}
}

// GetTableOfContents fetches the site's llms.txt listing of routes.
func (t *Toolset) GetTableOfContents(ctx context.Context) string {
	url := t.baseURL + "/llms.txt"
	data, err := t.fetcher.FetchPage(ctx, url)
	if err != nil || data == "" {
		t.logger.Warn("Table of contents fetch failed", "url", url, "error", err)
		return TOCFetchFailed
	}
	return data
}

// ReadPage fetches a single documentation page by its route.
func (t *Toolset) ReadPage(ctx context.Context, pageRoute string) string {
	url := t.baseURL + pageRoute
	data, err := t.fetcher.FetchPage(ctx, url)
	if err != nil || data == "" {
		t.logger.Warn("Page fetch failed", "url", url, "error", err)
		return PageFetchFailed
	}
	return data
}

// Definitions lists the toolset for tools/list responses.
func (t *Toolset) Definitions() []Definition {
	return []Definition{
		{
			Name:        "get_table_of_contents",
			Description: "Fetch the Table of Contents (includes routes to pages) from the Better Auth website.",
			InputSchema: map[string]any{
				"type":       "object",
				"properties": map[string]any{},
			},
		},
		{
			Name:        "read_page",
			Description: "Read a page from the Better Auth website.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"page_route": map[string]any{
						"type":        "string",
						"description": "Route of the page to read (e.g. \"/llms.txt/docs/basic-usage.md\")",
					},
				},
				"required": []string{"page_route"},
			},
		},
	}
}
