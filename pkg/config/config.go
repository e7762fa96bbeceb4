package config

import (
	"os"
	"strconv"
)

type Config struct {
	GoogleApiKey     string
	DatabaseURL      string
	MCPServerURL     string
	DocsBaseURL      string
	ChatModel        string
	EmbeddingModel   string
	EmbeddingDim     int
	CollectionName   string
	Port             string
	CrawlConcurrency int
	SearchResults    int
}

func Load() *Config {
	return &Config{
		GoogleApiKey:     getEnv("GOOGLE_API_KEY", ""),
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		MCPServerURL:     getEnv("MCP_SERVER_URL", "http://localhost:8081/sse"),
		DocsBaseURL:      getEnv("DOCS_BASE_URL", "https://www.better-auth.com"),
		ChatModel:        getEnv("CHAT_MODEL", "gemini-2.5-flash-lite"),
		EmbeddingModel:   getEnv("EMBEDDING_MODEL", "gemini-embedding-001"),
		EmbeddingDim:     getEnvAsInt("EMBEDDING_DIM", 1536),
		CollectionName:   getEnv("COLLECTION_NAME", "better_auth_docs"),
		Port:             getEnv("PORT", "8081"),
		CrawlConcurrency: getEnvAsInt("CRAWL_CONCURRENCY", 10),
		SearchResults:    getEnvAsInt("SEARCH_RESULTS", 5),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
