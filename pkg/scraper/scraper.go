// Package scraper crawls the documentation site: it fetches the table of
// contents, fans out bounded-concurrency page fetches, and hands the
// successful pages to the document store in one batched upsert.
package scraper

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"betterauth-mcp/pkg/docstore"
	"betterauth-mcp/pkg/toc"
)

// DefaultConcurrency bounds in-flight page fetches. The ceiling protects
// the origin server; the crawl never runs unbounded.
const DefaultConcurrency = 10

// PageFetcher fetches a single page by absolute URL.
type PageFetcher interface {
	FetchPage(ctx context.Context, url string) (string, error)
}

// DocWriter receives the crawl's successful pages.
type DocWriter interface {
	UpsertDocs(ctx context.Context, docs []docstore.Record) (int, error)
}

// Stats summarizes one crawl. Successful + Failed always equals
// TotalRoutes.
type Stats struct {
	TotalRoutes int
	Successful  int
	Failed      int
	Upserted    int
}

type Scraper struct {
	baseURL     string
	fetcher     PageFetcher
	store       DocWriter
	concurrency int
	logger      *slog.Logger
}

func New(baseURL string, fetcher PageFetcher, store DocWriter, concurrency int) *Scraper {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Scraper{
		baseURL:     baseURL,
		fetcher:     fetcher,
		store:       store,
		concurrency: concurrency,
		logger:      slog.Default(),
	}
}

// ScrapeAllDocs crawls every route listed in the table of contents.
// Failing to fetch the table of contents fails the whole crawl; failing
// individual pages is logged and counted, never retried and never fatal.
func (s *Scraper) ScrapeAllDocs(ctx context.Context) (Stats, error) {
	tocURL := s.baseURL + "/llms.txt"
	s.logger.Info("Scraping table of contents", "url", tocURL)

	tocContent, err := s.fetcher.FetchPage(ctx, tocURL)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to fetch table of contents: %w", err)
	}

	routesMetadata := toc.Parse(tocContent)
	routes := make([]string, 0, len(routesMetadata))
	for route := range routesMetadata {
		routes = append(routes, route)
	}
	s.logger.Info("Found document routes", "count", len(routes))

	// Bounded fan-out: a counting semaphore admits at most s.concurrency
	// fetches, and the errgroup wait is the join before aggregation.
	semaphore := make(chan struct{}, s.concurrency)
	results := make([]*docstore.Record, len(routes))

	g, gctx := errgroup.WithContext(ctx)
	for i, route := range routes {
		g.Go(func() error {
			select {
			case semaphore <- struct{}{}:
			case <-gctx.Done():
				return gctx.Err()
			}
			defer func() { <-semaphore }()

			meta := routesMetadata[route]
			content, err := s.fetcher.FetchPage(gctx, s.baseURL+route)
			if err != nil {
				s.logger.Warn("Failed to fetch page", "route", route, "error", err)
				return nil
			}

			results[i] = &docstore.Record{
				Route:       route,
				Title:       meta.Title,
				Description: meta.Description,
				Content:     content,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Stats{}, err
	}

	var docs []docstore.Record
	failed := 0
	for _, rec := range results {
		if rec == nil {
			failed++
			continue
		}
		docs = append(docs, *rec)
	}

	s.logger.Info("Fetch complete", "successful", len(docs), "failed", failed)

	upserted, err := s.store.UpsertDocs(ctx, docs)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to upsert documents: %w", err)
	}
	s.logger.Info("Upserted documents", "count", upserted)

	return Stats{
		TotalRoutes: len(routes),
		Successful:  len(docs),
		Failed:      failed,
		Upserted:    upserted,
	}, nil
}
