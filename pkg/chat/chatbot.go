// Package chat drives the tool-calling conversation loop: it sends the
// session history and the server's tool declarations to the model, runs
// requested tools through the MCP client, and feeds results back until
// the model answers in plain text or the iteration ceiling is hit.
package chat

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"google.golang.org/genai"

	"betterauth-mcp/pkg/tools"
)

// maxToolIterations bounds tool round trips per user turn. Hitting the
// ceiling is graceful degradation, not an error: the model's latest
// reply is surfaced as-is.
const maxToolIterations = 5

const systemInstruction = `You are a helpful assistant that answers questions about Better Auth using the provided tools.

IMPORTANT TOOL USAGE INSTRUCTIONS:
1. ALWAYS call 'get_table_of_contents' FIRST to see available documentation
2. When user asks about a specific topic, use 'read_page' with the FULL path from the table of contents
   - Example: If table of contents shows "/llms.txt/docs/plugins/email-otp.md", use that EXACT path
3. DO NOT call 'get_table_of_contents' multiple times - reuse the information
4. When reading pages, use the complete path including '/llms.txt/docs/' prefix

Available tools:
- get_table_of_contents: Get the full documentation structure (call once at start)
- read_page: Read specific documentation page (use full path from table of contents)`

// Role tags a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Turn is one entry in a session's ordered history. Tool turns record
// the call alongside its result; turns are never mutated once created.
type Turn struct {
	Role     Role           `json:"role"`
	Content  string         `json:"content"`
	ToolName string         `json:"tool_name,omitempty"`
	ToolArgs map[string]any `json:"tool_args,omitempty"`
}

// ToolClient invokes tools on the MCP server.
type ToolClient interface {
	ListTools(ctx context.Context) ([]tools.Definition, error)
	CallTool(ctx context.Context, name string, args map[string]any) (string, error)
}

type generateFunc func(ctx context.Context, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)

// Chatbot owns the model connection and the tool client. Conversation
// history is owned by the caller and passed through Ask.
type Chatbot struct {
	toolsClient  ToolClient
	declarations []*genai.Tool
	generate     generateFunc
	logger       *slog.Logger
}

func NewChatbot(ctx context.Context, apiKey, model string, toolsClient ToolClient) (*Chatbot, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &Chatbot{
		toolsClient: toolsClient,
		generate: func(ctx context.Context, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			return client.Models.GenerateContent(ctx, model, contents, cfg)
		},
		logger: slog.Default(),
	}, nil
}

// LoadTools fetches the server's tool list and translates it into the
// model's function-calling schema.
func (b *Chatbot) LoadTools(ctx context.Context) ([]tools.Definition, error) {
	defs, err := b.toolsClient.ListTools(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tools: %w", err)
	}

	b.declarations = []*genai.Tool{
		{FunctionDeclarations: DeclarationsFromDefinitions(defs)},
	}
	return defs, nil
}

// Ask runs one user turn: it appends the user message to a copy of
// history, iterates "ask model, run requested tool, feed result back" up
// to maxToolIterations, and returns the extended history plus the
// model's answer. On error the caller's history is returned unchanged,
// so a failed turn never corrupts the session.
func (b *Chatbot) Ask(ctx context.Context, history []Turn, query string) ([]Turn, string, error) {
	updated := append(slices.Clone(history), Turn{Role: RoleUser, Content: query})
	contents := contentsFromHistory(updated)

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: systemInstruction}},
		},
		Temperature: genai.Ptr[float32](0.7),
	}
	if len(b.declarations) > 0 {
		cfg.Tools = b.declarations
	}

	resp, err := b.generate(ctx, contents, cfg)
	if err != nil {
		return history, "", fmt.Errorf("llm request failed: %w", err)
	}

	for i := 0; i < maxToolIterations; i++ {
		fc := firstFunctionCall(resp)
		if fc == nil {
			break
		}

		b.logger.Info("Calling tool", "tool", fc.Name, "args", fc.Args)
		result, err := b.toolsClient.CallTool(ctx, fc.Name, fc.Args)
		if err != nil {
			return history, "", fmt.Errorf("tool call %s failed: %w", fc.Name, err)
		}

		updated = append(updated, Turn{
			Role:     RoleTool,
			ToolName: fc.Name,
			ToolArgs: fc.Args,
			Content:  result,
		})

		contents = append(contents,
			&genai.Content{
				Role:  "model",
				Parts: []*genai.Part{{FunctionCall: fc}},
			},
			&genai.Content{
				Role: "user",
				Parts: []*genai.Part{{
					FunctionResponse: &genai.FunctionResponse{
						Name:     fc.Name,
						Response: map[string]any{"result": result},
					},
				}},
			},
		)

		resp, err = b.generate(ctx, contents, cfg)
		if err != nil {
			return history, "", fmt.Errorf("llm request failed: %w", err)
		}
	}

	answer := responseText(resp)
	updated = append(updated, Turn{Role: RoleAssistant, Content: answer})
	return updated, answer, nil
}

// contentsFromHistory replays user and assistant turns as model input.
// Tool turns are not replayed as plain turns; their function-call /
// function-response pairs are appended during the live loop instead.
func contentsFromHistory(history []Turn) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history))
	for _, turn := range history {
		switch turn.Role {
		case RoleUser:
			contents = append(contents, &genai.Content{
				Role:  "user",
				Parts: []*genai.Part{{Text: turn.Content}},
			})
		case RoleAssistant:
			contents = append(contents, &genai.Content{
				Role:  "model",
				Parts: []*genai.Part{{Text: turn.Content}},
			})
		}
	}
	return contents
}

func firstFunctionCall(resp *genai.GenerateContentResponse) *genai.FunctionCall {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.FunctionCall != nil {
			return part.FunctionCall
		}
	}
	return nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var text string
	for _, part := range resp.Candidates[0].Content.Parts {
		text += part.Text
	}
	return text
}
