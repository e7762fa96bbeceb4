package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"betterauth-mcp/pkg/database"
)

// Store persists conversation transcripts to Postgres. It is optional:
// the chat loop works without it and the REPL only uses it when a
// database is configured.
type Store struct {
	db *database.PostgresDB
}

// Conversation is one chat session's transcript header.
type Conversation struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewStore(db *database.PostgresDB) *Store {
	return &Store{db: db}
}

func (s *Store) CreateConversation(ctx context.Context) (*Conversation, error) {
	id := uuid.New()
	query := `INSERT INTO conversations (id) VALUES ($1) RETURNING id, title, created_at, updated_at`

	conv := &Conversation{}
	err := s.db.Pool.QueryRow(ctx, query, id).Scan(&conv.ID, &conv.Title, &conv.CreatedAt, &conv.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}
	return conv, nil
}

// AppendTurn records a single turn in the transcript.
func (s *Store) AppendTurn(ctx context.Context, conversationID uuid.UUID, turn Turn) error {
	var toolName *string
	if turn.ToolName != "" {
		toolName = &turn.ToolName
	}

	_, err := s.db.Pool.Exec(ctx,
		`INSERT INTO messages (id, conversation_id, role, tool_name, content) VALUES ($1, $2, $3, $4, $5)`,
		uuid.New(), conversationID, string(turn.Role), toolName, turn.Content)
	if err != nil {
		return fmt.Errorf("failed to save message: %w", err)
	}

	_, _ = s.db.Pool.Exec(ctx, `UPDATE conversations SET updated_at = NOW() WHERE id = $1`, conversationID)
	return nil
}

// History returns a conversation's turns in order.
func (s *Store) History(ctx context.Context, conversationID uuid.UUID) ([]Turn, error) {
	query := `SELECT role, COALESCE(tool_name, ''), content FROM messages WHERE conversation_id = $1 ORDER BY created_at ASC`
	rows, err := s.db.Pool.Query(ctx, query, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch history: %w", err)
	}
	defer rows.Close()

	var turns []Turn
	for rows.Next() {
		var role, toolName, content string
		if err := rows.Scan(&role, &toolName, &content); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		turns = append(turns, Turn{Role: Role(role), ToolName: toolName, Content: content})
	}
	return turns, rows.Err()
}
