// Package mcpclient is the chat side of the tool server transport: it
// POSTs JSON-RPC envelopes and reads the single SSE frame that comes back.
package mcpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"betterauth-mcp/pkg/tools"
)

const defaultTimeout = 60 * time.Second

type rpcRequest struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      int         `json:"id"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

// Client talks to one tool server endpoint. Stateless: every call is an
// independent POST.
type Client struct {
	endpoint string
	hc       *http.Client
}

func NewClient(endpoint string) *Client {
	return &Client{
		endpoint: endpoint,
		hc:       &http.Client{Timeout: defaultTimeout},
	}
}

func (c *Client) send(ctx context.Context, method string, params interface{}) (*rpcResponse, error) {
	reqBody, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("mcp request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	payload, err := parseSSEFrame(string(body))
	if err != nil {
		return nil, err
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(payload, &rpcResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &rpcResp, nil
}

// parseSSEFrame extracts the JSON payload from the first data line of an
// SSE response body.
func parseSSEFrame(body string) ([]byte, error) {
	for _, line := range strings.Split(strings.TrimSpace(body), "\n") {
		if data, ok := strings.CutPrefix(line, "data: "); ok {
			return []byte(data), nil
		}
	}
	return nil, fmt.Errorf("no SSE data frame in response: %q", body)
}

// ListTools returns the server's tool definitions.
func (c *Client) ListTools(ctx context.Context) ([]tools.Definition, error) {
	resp, err := c.send(ctx, "tools/list", nil)
	if err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("tools/list failed: %s", resp.Error.Message)
	}

	var result struct {
		Tools []tools.Definition `json:"tools"`
	}
	if err := json.Unmarshal(resp.Result, &result); err != nil {
		return nil, fmt.Errorf("failed to decode tool list: %w", err)
	}
	return result.Tools, nil
}

// CallTool invokes a named tool. JSON-RPC error envelopes are returned as
// an "Error: ..." result string so the model sees the failure and can
// react; only transport failures return an error.
func (c *Client) CallTool(ctx context.Context, name string, args map[string]any) (string, error) {
	if args == nil {
		args = map[string]any{}
	}
	resp, err := c.send(ctx, "tools/call", map[string]any{
		"name":      name,
		"arguments": args,
	})
	if err != nil {
		return "", err
	}
	if resp.Error != nil {
		return fmt.Sprintf("Error: %s", resp.Error.Message), nil
	}
	return decodeToolResult(resp.Result), nil
}

// decodeToolResult unwraps the common result shapes: the MCP
// content-block list, a bare {"result": ...} wrapper, or a plain string.
func decodeToolResult(raw json.RawMessage) string {
	var withContent struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.Unmarshal(raw, &withContent); err == nil && len(withContent.Content) > 0 {
		var sb strings.Builder
		for _, block := range withContent.Content {
			if block.Type == "text" {
				sb.WriteString(block.Text)
			}
		}
		return sb.String()
	}

	var wrapped struct {
		Result string `json:"result"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.Result != "" {
		return wrapped.Result
	}

	var plain string
	if err := json.Unmarshal(raw, &plain); err == nil {
		return plain
	}

	return string(raw)
}
