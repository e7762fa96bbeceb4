package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	// UserAgent identifies this scraper/tool server to the documentation origin.
	UserAgent = "better-auth-mcp/1.0"

	defaultTimeout = 30 * time.Second
)

// Reason classifies why a page fetch failed.
type Reason string

const (
	ReasonTimeout Reason = "timeout"
	ReasonNetwork Reason = "network"
	ReasonStatus  Reason = "status"
)

// Failure is the error returned for any failed fetch. Callers that only
// care about success/failure can treat it as an opaque error; callers that
// need to distinguish causes can inspect Reason and Status.
type Failure struct {
	URL    string
	Reason Reason
	Status int
	Err    error
}

func (f *Failure) Error() string {
	if f.Reason == ReasonStatus {
		return fmt.Sprintf("fetch %s: unexpected status %d", f.URL, f.Status)
	}
	return fmt.Sprintf("fetch %s: %s: %v", f.URL, f.Reason, f.Err)
}

func (f *Failure) Unwrap() error { return f.Err }

// Client fetches plain text or markdown pages from the documentation
// origin. One GET per call, fixed headers, fixed timeout, no retries.
type Client struct {
	hc *http.Client
}

func NewClient() *Client {
	return &Client{
		hc: &http.Client{Timeout: defaultTimeout},
	}
}

// FetchPage requests url and returns the body text. Any failure (network
// error, timeout, non-2xx status) is returned as a *Failure.
func (c *Client) FetchPage(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", &Failure{URL: url, Reason: ReasonNetwork, Err: err}
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "text/plain, text/markdown")

	resp, err := c.hc.Do(req)
	if err != nil {
		reason := ReasonNetwork
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			reason = ReasonTimeout
		}
		return "", &Failure{URL: url, Reason: reason, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &Failure{URL: url, Reason: ReasonStatus, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &Failure{URL: url, Reason: ReasonNetwork, Err: err}
	}

	return string(body), nil
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}
