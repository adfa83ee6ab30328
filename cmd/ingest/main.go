package main

import (
	"context"
	"flag"
	"os"
	"strings"

	"github.com/mkrish/PartnerDocsAPI/internal/config"
	"github.com/mkrish/PartnerDocsAPI/internal/domain/commonModels"
	"github.com/mkrish/PartnerDocsAPI/internal/rag/embedding"
	"github.com/mkrish/PartnerDocsAPI/internal/rag/embedding/googleEmbedding"
	"github.com/mkrish/PartnerDocsAPI/internal/rag/embedding/openaiEmbedding"
	"github.com/mkrish/PartnerDocsAPI/internal/rag/ingest"
	"github.com/mkrish/PartnerDocsAPI/internal/rag/vectorDB/qdrantDB"
	"github.com/mkrish/PartnerDocsAPI/pkg/logger_i"
)

// the partner docs we ship with; -files overrides for ad hoc runs
var defaultDocs = []commonModels.Document{
	{Path: "petsmart_guide.pdf", Title: "PetSmart Guide"},
	{Path: "petsmart_manual.pdf", Title: "PetSmart Manual"},
}

func main() {
	logger_i.Init()
	logger := logger_i.NewLogger("ingest")

	var fileList string
	flag.StringVar(&fileList, "files", "", "comma separated path=title pairs, overrides the built-in list")
	flag.Parse()

	docs := defaultDocs
	if fileList != "" {
		docs = parseFileList(fileList)
	}

	ctx := context.Background()

	store, err := qdrantDB.NewClientHolder(ctx)
	if err != nil {
		logger.Error("Vector store unavailable", "error", err)
		os.Exit(1)
	}

	embedder := pickEmbedder(ctx)
	if embedder == nil {
		logger.Error("Embedding service unavailable")
		os.Exit(1)
	}

	if err := ingest.IngestDocuments(ctx, docs, config.CollectionName, store, embedder); err != nil {
		logger.Error("Ingestion failed", "error", err)
		os.Exit(1)
	}

	if total, err := store.Count(ctx, config.CollectionName); err == nil {
		logger.Info("Ingestion finished", "collection", config.CollectionName, "records", total)
	}
}

func parseFileList(list string) []commonModels.Document {
	var docs []commonModels.Document
	for _, entry := range strings.Split(list, ",") {
		path, title, found := strings.Cut(strings.TrimSpace(entry), "=")
		if !found || path == "" {
			continue
		}
		if title == "" {
			title = path
		}
		docs = append(docs, commonModels.Document{Path: path, Title: title})
	}
	return docs
}

func pickEmbedder(ctx context.Context) embedding.Embedder {
	if config.EmbeddingProvider == "openai" {
		return openaiEmbedding.GetOpenAIEmbeddingClient(config.OpenAIEmbeddingModel, config.OpenAIAPIKey)
	}
	return googleEmbedding.GetGoogleEmbeddingClient(ctx, config.GoogleEmbeddingModel, config.GoogleEmbeddingAPIKey)
}
