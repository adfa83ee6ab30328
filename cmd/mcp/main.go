package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/mkrish/PartnerDocsAPI/internal/config"
	"github.com/mkrish/PartnerDocsAPI/internal/mcpserver"
	"github.com/mkrish/PartnerDocsAPI/internal/rag"
	"github.com/mkrish/PartnerDocsAPI/internal/rag/embedding"
	"github.com/mkrish/PartnerDocsAPI/internal/rag/embedding/googleEmbedding"
	"github.com/mkrish/PartnerDocsAPI/internal/rag/embedding/openaiEmbedding"
	"github.com/mkrish/PartnerDocsAPI/internal/rag/llm/workflow"
	"github.com/mkrish/PartnerDocsAPI/internal/rag/vectorDB/qdrantDB"
	"github.com/mkrish/PartnerDocsAPI/pkg/logger_i"
)

func main() {
	logger_i.Init()
	logger := logger_i.NewLogger("mcp main")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	vectorDB, err := qdrantDB.NewClientHolder(ctx)
	if err != nil {
		logger.Error("Vector store unavailable", "error", err)
		os.Exit(1)
	}

	embedder := pickEmbedder(ctx)
	if embedder == nil {
		logger.Error("Embedding service unavailable")
		os.Exit(1)
	}

	// the workflow provider is optional here - the search tool never
	// generates answers, it only retrieves
	llmProvider := workflow.NewClient(config.WorkflowURL, config.WorkflowAPIKey)

	ragService := rag.NewService(vectorDB, llmProvider, embedder)

	srv := mcpserver.NewServer(ragService)
	if err := srv.Run(ctx); err != nil {
		logger.Error("MCP server stopped", "error", err)
		os.Exit(1)
	}
}

func pickEmbedder(ctx context.Context) embedding.Embedder {
	if config.EmbeddingProvider == "openai" {
		return openaiEmbedding.GetOpenAIEmbeddingClient(config.OpenAIEmbeddingModel, config.OpenAIAPIKey)
	}
	return googleEmbedding.GetGoogleEmbeddingClient(ctx, config.GoogleEmbeddingModel, config.GoogleEmbeddingAPIKey)
}
