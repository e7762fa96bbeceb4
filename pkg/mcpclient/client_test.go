package mcpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sseServer(t *testing.T, handler func(method string, params json.RawMessage) string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Method string          `json:"method"`
			Params json.RawMessage `json:"params"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprintf(w, "data: %s\n\n", handler(req.Method, req.Params))
	}))
}

func TestListTools(t *testing.T) {
	srv := sseServer(t, func(method string, _ json.RawMessage) string {
		assert.Equal(t, "tools/list", method)
		return `{"jsonrpc":"2.0","id":1,"result":{"tools":[{"name":"get_table_of_contents","description":"Fetch the TOC.","inputSchema":{"type":"object"}},{"name":"read_page","description":"Read a page.","inputSchema":{"type":"object","properties":{"page_route":{"type":"string"}},"required":["page_route"]}}]}}`
	})
	defer srv.Close()

	c := NewClient(srv.URL)
	defs, err := c.ListTools(context.Background())
	require.NoError(t, err)
	require.Len(t, defs, 2)
	assert.Equal(t, "get_table_of_contents", defs[0].Name)
	assert.Equal(t, "read_page", defs[1].Name)
	assert.Equal(t, "object", defs[1].InputSchema["type"])
}

func TestCallToolContentBlocks(t *testing.T) {
	srv := sseServer(t, func(method string, params json.RawMessage) string {
		assert.Equal(t, "tools/call", method)
		var p struct {
			Name      string         `json:"name"`
			Arguments map[string]any `json:"arguments"`
		}
		require.NoError(t, json.Unmarshal(params, &p))
		assert.Equal(t, "read_page", p.Name)
		assert.Equal(t, "/llms.txt/docs/auth.md", p.Arguments["page_route"])
		return `{"jsonrpc":"2.0","id":1,"result":{"content":[{"type":"text","text":"# Auth page"}]}}`
	})
	defer srv.Close()

	c := NewClient(srv.URL)
	got, err := c.CallTool(context.Background(), "read_page", map[string]any{"page_route": "/llms.txt/docs/auth.md"})
	require.NoError(t, err)
	assert.Equal(t, "# Auth page", got)
}

func TestCallToolWrappedResult(t *testing.T) {
	srv := sseServer(t, func(string, json.RawMessage) string {
		return `{"jsonrpc":"2.0","id":1,"result":{"result":"plain text result"}}`
	})
	defer srv.Close()

	c := NewClient(srv.URL)
	got, err := c.CallTool(context.Background(), "get_table_of_contents", nil)
	require.NoError(t, err)
	assert.Equal(t, "plain text result", got)
}

func TestCallToolErrorEnvelope(t *testing.T) {
	srv := sseServer(t, func(string, json.RawMessage) string {
		return `{"jsonrpc":"2.0","id":1,"error":{"code":-32601,"message":"Tool not found: nope"}}`
	})
	defer srv.Close()

	// JSON-RPC errors become a result string fed back to the model, not
	// a Go error.
	c := NewClient(srv.URL)
	got, err := c.CallTool(context.Background(), "nope", nil)
	require.NoError(t, err)
	assert.Equal(t, "Error: Tool not found: nope", got)
}

func TestTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := NewClient(srv.URL)
	_, err := c.CallTool(context.Background(), "read_page", nil)
	require.Error(t, err)
}

func TestMissingSSEFrame(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":{}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.ListTools(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SSE")
}
