package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/gin-contrib/cors"
	"github.com/google/uuid"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"betterauth-mcp/pkg/chat"
	"betterauth-mcp/pkg/config"
	"betterauth-mcp/pkg/database"
	"betterauth-mcp/pkg/docstore"
	"betterauth-mcp/pkg/embeddings"
	"betterauth-mcp/pkg/fetcher"
	"betterauth-mcp/pkg/mcpclient"
	"betterauth-mcp/pkg/scraper"
	"betterauth-mcp/pkg/server"
	"betterauth-mcp/pkg/tools"
	"betterauth-mcp/pkg/vectorstore"
)

var (
	stdioMode     bool
	searchResults int
	searchRoute   string
)

func main() {
	// Setup structured logging
	handler := slog.NewTextHandler(os.Stderr, nil)
	slog.SetDefault(slog.New(handler))

	// Load .env file
	if err := godotenv.Load(); err != nil {
		// It's okay if .env doesn't exist, as long as env vars are set
	}

	cfg := config.Load()

	rootCmd := &cobra.Command{
		Use:   "betterauth-mcp",
		Short: "Documentation assistant for Better Auth",
		Long:  `betterauth-mcp scrapes the Better Auth documentation into a vector index, serves the docs as MCP tools, and answers questions through a tool-calling chat loop.`,
	}

	scrapeCmd := &cobra.Command{
		Use:   "scrape",
		Short: "Crawl the documentation site into the vector index",
		Run: func(cmd *cobra.Command, args []string) {
			runScrape(cmd.Context(), cfg)
		},
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP tool server",
		Run: func(cmd *cobra.Command, args []string) {
			runServe(cmd.Context(), cfg)
		},
	}
	serveCmd.Flags().BoolVar(&stdioMode, "stdio", false, "Serve over stdio instead of HTTP")

	chatCmd := &cobra.Command{
		Use:   "chat",
		Short: "Interactive question answering over the documentation",
		Run: func(cmd *cobra.Command, args []string) {
			runChat(cmd.Context(), cfg)
		},
	}

	searchCmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Similarity search against the scraped documentation",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			runSearch(cmd.Context(), cfg, args[0])
		},
	}
	searchCmd.Flags().IntVarP(&searchResults, "results", "n", 0, "Number of results to return")
	searchCmd.Flags().StringVar(&searchRoute, "route", "", "Restrict results to an exact route")

	rootCmd.AddCommand(scrapeCmd, serveCmd, chatCmd, searchCmd)

	if err := rootCmd.Execute(); err != nil {
		slog.Error("Command execution failed", "error", err)
		os.Exit(1)
	}
}

// openDocStore connects to Postgres, makes sure the collection exists,
// and wires the embedder and vector index into a document store.
func openDocStore(ctx context.Context, cfg *config.Config) (*docstore.Store, *database.PostgresDB, error) {
	if cfg.GoogleApiKey == "" {
		return nil, nil, fmt.Errorf("GOOGLE_API_KEY is not set")
	}
	if cfg.DatabaseURL == "" {
		return nil, nil, fmt.Errorf("DATABASE_URL is not set")
	}

	db, err := database.NewPostgresDB(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.EnsureVectorExtension(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}
	if err := db.CreateDocsTable(ctx, cfg.CollectionName, cfg.EmbeddingDim); err != nil {
		db.Close()
		return nil, nil, err
	}

	index, err := vectorstore.NewPGVectorStore(db.Pool, cfg.CollectionName)
	if err != nil {
		db.Close()
		return nil, nil, err
	}

	embedder, err := embeddings.NewGoogleEmbedder(ctx, cfg.EmbeddingModel, cfg.GoogleApiKey, cfg.EmbeddingDim)
	if err != nil {
		db.Close()
		return nil, nil, err
	}

	return docstore.New(embedder, index), db, nil
}

func runScrape(ctx context.Context, cfg *config.Config) {
	store, db, err := openDocStore(ctx, cfg)
	if err != nil {
		slog.Error("Failed to initialize document store", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	s := scraper.New(cfg.DocsBaseURL, fetcher.NewClient(), store, cfg.CrawlConcurrency)
	stats, err := s.ScrapeAllDocs(ctx)
	if err != nil {
		slog.Error("Scrape failed", "error", err)
		os.Exit(1)
	}

	slog.Info("Scrape complete",
		"routes", stats.TotalRoutes,
		"successful", stats.Successful,
		"failed", stats.Failed,
		"upserted", stats.Upserted)
}

func runServe(ctx context.Context, cfg *config.Config) {
	toolset := tools.NewToolset(cfg.DocsBaseURL, nil)

	if stdioMode {
		if err := server.NewStdioServer(toolset).Run(ctx); err != nil {
			slog.Error("Stdio server failed", "error", err)
			os.Exit(1)
		}
		return
	}

	handler := server.NewHandler(toolset)

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	handler.RegisterRoutes(r)

	slog.Info("MCP server starting", "port", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		slog.Error("Failed to start server", "error", err)
		os.Exit(1)
	}
}

var (
	promptStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	assistantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	toolStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true)
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

func runChat(ctx context.Context, cfg *config.Config) {
	if cfg.GoogleApiKey == "" {
		slog.Error("GOOGLE_API_KEY is not set")
		os.Exit(1)
	}

	client := mcpclient.NewClient(cfg.MCPServerURL)
	bot, err := chat.NewChatbot(ctx, cfg.GoogleApiKey, cfg.ChatModel, client)
	if err != nil {
		slog.Error("Failed to initialize chatbot", "error", err)
		os.Exit(1)
	}

	defs, err := bot.LoadTools(ctx)
	if err != nil {
		slog.Error("Failed to load tools from MCP server", "error", err, "url", cfg.MCPServerURL)
		os.Exit(1)
	}
	names := make([]string, 0, len(defs))
	for _, def := range defs {
		names = append(names, def.Name)
	}
	fmt.Println(toolStyle.Render(fmt.Sprintf("Connected. Tools: %s", strings.Join(names, ", "))))

	// Transcript persistence is optional; the chat loop works without a
	// database.
	store, conversationID := openTranscript(ctx, cfg)

	fmt.Println("Ask about Better Auth. Type 'exit' or 'quit' to leave.")

	var history []chat.Turn
	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print(promptStyle.Render("You: "))
		input, err := reader.ReadString('\n')
		if err != nil {
			break
		}
		query := strings.TrimSpace(input)
		if query == "" {
			continue
		}
		if query == "exit" || query == "quit" {
			break
		}

		updated, answer, err := bot.Ask(ctx, history, query)
		if err != nil {
			fmt.Println(errorStyle.Render(fmt.Sprintf("Error: %v", err)))
			continue
		}

		if store != nil {
			for _, turn := range updated[len(history):] {
				if err := store.AppendTurn(ctx, conversationID, turn); err != nil {
					slog.Warn("Failed to persist turn", "error", err)
				}
			}
		}
		history = updated

		fmt.Println(assistantStyle.Render("Assistant: ") + answer)
		fmt.Println()
	}
}

func openTranscript(ctx context.Context, cfg *config.Config) (*chat.Store, uuid.UUID) {
	if cfg.DatabaseURL == "" {
		return nil, uuid.Nil
	}

	db, err := database.NewPostgresDB(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Warn("Transcript persistence disabled", "error", err)
		return nil, uuid.Nil
	}
	if err := db.InitChatSchema(ctx); err != nil {
		slog.Warn("Transcript persistence disabled", "error", err)
		db.Close()
		return nil, uuid.Nil
	}

	store := chat.NewStore(db)
	conv, err := store.CreateConversation(ctx)
	if err != nil {
		slog.Warn("Transcript persistence disabled", "error", err)
		db.Close()
		return nil, uuid.Nil
	}
	return store, conv.ID
}

func runSearch(ctx context.Context, cfg *config.Config, query string) {
	store, db, err := openDocStore(ctx, cfg)
	if err != nil {
		slog.Error("Failed to initialize document store", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	n := searchResults
	if n <= 0 {
		n = cfg.SearchResults
	}

	result, err := store.Search(ctx, query, n, searchRoute)
	if err != nil {
		slog.Error("Search failed", "error", err)
		os.Exit(1)
	}
	fmt.Println(result)
}
