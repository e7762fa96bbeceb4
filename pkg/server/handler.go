package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"betterauth-mcp/pkg/tools"
)

// MCPRequest represents an MCP JSON-RPC request
type MCPRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// MCPResponse represents an MCP JSON-RPC response
type MCPResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *MCPError   `json:"error,omitempty"`
}

// MCPError represents an MCP error
type MCPError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Handler serves the tool server over a stateless JSON-RPC-over-POST
// transport. Every response is one SSE frame carrying the JSON-RPC
// envelope; no session state is kept between calls.
type Handler struct {
	Tools *tools.Toolset
}

func NewHandler(toolset *tools.Toolset) *Handler {
	return &Handler{Tools: toolset}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.POST("/mcp", h.MCPHandler)
	r.POST("/sse", h.MCPHandler)
}

// MCPHandler handles MCP protocol requests
func (h *Handler) MCPHandler(c *gin.Context) {
	var req MCPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.sendError(c, nil, -32700, "Parse error")
		return
	}

	switch req.Method {
	case "initialize":
		h.sendResult(c, req.ID, map[string]interface{}{
			"protocolVersion": "2024-11-05",
			"serverInfo": map[string]interface{}{
				"name":    "better-auth",
				"version": "1.0.0",
			},
			"capabilities": map[string]interface{}{
				"tools": map[string]interface{}{},
			},
		})
	case "ping":
		h.sendResult(c, req.ID, map[string]interface{}{})
	case "tools/list":
		h.sendResult(c, req.ID, map[string]interface{}{
			"tools": h.Tools.Definitions(),
		})
	case "tools/call":
		h.handleToolsCall(c, req)
	default:
		h.sendError(c, req.ID, -32601, "Method not found")
	}
}

func (h *Handler) handleToolsCall(c *gin.Context, req MCPRequest) {
	var params struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	}

	if err := json.Unmarshal(req.Params, &params); err != nil {
		h.sendError(c, req.ID, -32602, "Invalid params")
		return
	}

	ctx := c.Request.Context()

	switch params.Name {
	case "get_table_of_contents":
		h.sendToolResult(c, req.ID, h.Tools.GetTableOfContents(ctx))

	case "read_page":
		var args struct {
			PageRoute string `json:"page_route"`
		}
		if len(params.Arguments) > 0 {
			if err := json.Unmarshal(params.Arguments, &args); err != nil {
				h.sendError(c, req.ID, -32602, "Invalid arguments")
				return
			}
		}
		if args.PageRoute == "" {
			h.sendError(c, req.ID, -32602, "Missing required argument: page_route")
			return
		}
		h.sendToolResult(c, req.ID, h.Tools.ReadPage(ctx, args.PageRoute))

	default:
		h.sendError(c, req.ID, -32601, fmt.Sprintf("Tool not found: %s", params.Name))
	}
}

func (h *Handler) sendToolResult(c *gin.Context, id interface{}, text string) {
	h.sendResult(c, id, map[string]interface{}{
		"content": []map[string]interface{}{
			{
				"type": "text",
				"text": text,
			},
		},
	})
}

func (h *Handler) sendResult(c *gin.Context, id interface{}, result interface{}) {
	h.writeFrame(c, MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Result:  result,
	})
}

func (h *Handler) sendError(c *gin.Context, id interface{}, code int, msg string) {
	h.writeFrame(c, MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: msg,
		},
	})
}

// writeFrame emits the JSON-RPC envelope as a single SSE frame.
func (h *Handler) writeFrame(c *gin.Context, resp MCPResponse) {
	data, err := json.Marshal(resp)
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Status(http.StatusOK)
	_, _ = c.Writer.Write([]byte("data: "))
	_, _ = c.Writer.Write(data)
	_, _ = c.Writer.Write([]byte("\n\n"))
	c.Writer.Flush()
}
