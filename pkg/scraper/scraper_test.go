package scraper

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"betterauth-mcp/pkg/docstore"
)

type stubFetcher struct {
	tocContent string
	tocErr     error
	pageErr    error

	mu       sync.Mutex
	inFlight int32
	maxSeen  int32
	fetched  []string
}

func (f *stubFetcher) FetchPage(ctx context.Context, url string) (string, error) {
	if strings.HasSuffix(url, "/llms.txt") {
		return f.tocContent, f.tocErr
	}

	cur := atomic.AddInt32(&f.inFlight, 1)
	defer atomic.AddInt32(&f.inFlight, -1)
	for {
		max := atomic.LoadInt32(&f.maxSeen)
		if cur <= max || atomic.CompareAndSwapInt32(&f.maxSeen, max, cur) {
			break
		}
	}
	time.Sleep(2 * time.Millisecond)

	if f.pageErr != nil {
		return "", f.pageErr
	}

	f.mu.Lock()
	f.fetched = append(f.fetched, url)
	f.mu.Unlock()
	return "content of " + url, nil
}

type recordingStore struct {
	docs []docstore.Record
	err  error
}

func (s *recordingStore) UpsertDocs(ctx context.Context, docs []docstore.Record) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	s.docs = append(s.docs, docs...)
	return len(docs), nil
}

func tocWithRoutes(n int) string {
	var sb strings.Builder
	sb.WriteString("# Better Auth\n### Docs\n")
	for i := 0; i < n; i++ {
		fmt.Fprintf(&sb, "[Page %d](/llms.txt/docs/page-%d.md): Description %d\n", i, i, i)
	}
	return sb.String()
}

func TestScrapeAllDocs(t *testing.T) {
	fetcher := &stubFetcher{tocContent: tocWithRoutes(30)}
	store := &recordingStore{}
	s := New("https://docs.example", fetcher, store, 10)

	stats, err := s.ScrapeAllDocs(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 30, stats.TotalRoutes)
	assert.Equal(t, 30, stats.Successful)
	assert.Zero(t, stats.Failed)
	assert.Equal(t, 30, stats.Upserted)
	assert.Equal(t, stats.TotalRoutes, stats.Successful+stats.Failed)
	assert.Len(t, store.docs, 30)

	// Records carry the table-of-contents metadata.
	byRoute := make(map[string]docstore.Record)
	for _, d := range store.docs {
		byRoute[d.Route] = d
	}
	rec, ok := byRoute["/llms.txt/docs/page-3.md"]
	require.True(t, ok)
	assert.Equal(t, "Page 3", rec.Title)
	assert.Equal(t, "Description 3", rec.Description)
	assert.Equal(t, "content of https://docs.example/llms.txt/docs/page-3.md", rec.Content)
}

func TestScrapeConcurrencyCeiling(t *testing.T) {
	fetcher := &stubFetcher{tocContent: tocWithRoutes(50)}
	store := &recordingStore{}
	s := New("https://docs.example", fetcher, store, 10)

	_, err := s.ScrapeAllDocs(context.Background())
	require.NoError(t, err)
	assert.LessOrEqual(t, fetcher.maxSeen, int32(10))
	assert.Positive(t, fetcher.maxSeen)
}

func TestScrapeAllFetchesFail(t *testing.T) {
	fetcher := &stubFetcher{
		tocContent: tocWithRoutes(12),
		pageErr:    fmt.Errorf("connection refused"),
	}
	store := &recordingStore{}
	s := New("https://docs.example", fetcher, store, 10)

	stats, err := s.ScrapeAllDocs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 12, stats.TotalRoutes)
	assert.Zero(t, stats.Successful)
	assert.Equal(t, 12, stats.Failed)
	assert.Zero(t, stats.Upserted)
	assert.Equal(t, stats.TotalRoutes, stats.Successful+stats.Failed)
}

func TestScrapeTOCFetchFailureIsFatal(t *testing.T) {
	fetcher := &stubFetcher{tocErr: fmt.Errorf("timeout")}
	s := New("https://docs.example", fetcher, &recordingStore{}, 10)

	_, err := s.ScrapeAllDocs(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "table of contents")
}

func TestScrapeUpsertFailure(t *testing.T) {
	fetcher := &stubFetcher{tocContent: tocWithRoutes(2)}
	store := &recordingStore{err: fmt.Errorf("db down")}
	s := New("https://docs.example", fetcher, store, 10)

	_, err := s.ScrapeAllDocs(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upsert")
}
