package fetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchPageSuccess(t *testing.T) {
	var gotUA, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		w.Write([]byte("# Better Auth Docs"))
	}))
	defer srv.Close()

	c := NewClient()
	text, err := c.FetchPage(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "# Better Auth Docs", text)
	assert.Equal(t, "better-auth-mcp/1.0", gotUA)
	assert.Equal(t, "text/plain, text/markdown", gotAccept)
}

func TestFetchPageNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := NewClient()
	text, err := c.FetchPage(context.Background(), srv.URL+"/missing")
	assert.Empty(t, text)

	var failure *Failure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, ReasonStatus, failure.Reason)
	assert.Equal(t, http.StatusNotFound, failure.Status)
}

func TestFetchPageNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	c := NewClient()
	_, err := c.FetchPage(context.Background(), srv.URL)

	var failure *Failure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, ReasonNetwork, failure.Reason)
}

func TestFetchPageContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewClient()
	_, err := c.FetchPage(ctx, srv.URL)
	require.Error(t, err)

	var failure *Failure
	assert.True(t, errors.As(err, &failure))
}
