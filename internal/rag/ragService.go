package rag

import (
	"context"
	"os"
	"time"

	"github.com/mkrish/PartnerDocsAPI/internal/adapter/utils"
	"github.com/mkrish/PartnerDocsAPI/internal/config"
	"github.com/mkrish/PartnerDocsAPI/internal/domain/commonModels"
	"github.com/mkrish/PartnerDocsAPI/internal/domain/jobModel"
	"github.com/mkrish/PartnerDocsAPI/internal/metrics"
	"github.com/mkrish/PartnerDocsAPI/internal/rag/embedding"
	"github.com/mkrish/PartnerDocsAPI/internal/rag/ingest"
	"github.com/mkrish/PartnerDocsAPI/internal/rag/llm"
	"github.com/mkrish/PartnerDocsAPI/internal/rag/vectorDB"
	"github.com/mkrish/PartnerDocsAPI/pkg/logger_i"
)

// Service is the only surface the worker and the MCP server see. They don't
// know about the embedder, the vector store or the workflow provider - those
// stay behind the private struct so tests can swap them for fakes.
type Service interface {
	ProcessRequest(ctx context.Context, job jobModel.Job, messageHistory []string) jobModel.Job
	IngestDocument(ctx context.Context, job jobModel.Job) jobModel.Job
	Retrieve(ctx context.Context, query string, k int) ([]commonModels.QueryChunk, error)
}

type service struct {
	vectorDB    vectorDB.DataProcessor
	llmProvider llm.Provider
	embedder    embedding.Embedder
	logger      *logger_i.Logger
}

// NewService constructor
func NewService(vector vectorDB.DataProcessor, llm llm.Provider, em embedding.Embedder) Service {
	return &service{
		vectorDB:    vector,
		llmProvider: llm,
		embedder:    em,
		logger:      logger_i.NewLogger("RAG Service :"),
	}
}

// ProcessRequest runs one query end to end: embed, cache check, vector
// search, workflow call. The workflow service runs its own reasoning, so the
// retrieved chunks travel on the job as sources rather than into the prompt.
func (s *service) ProcessRequest(ctx context.Context, jobt jobModel.Job, messageHistory []string) jobModel.Job {
	inMethodLogger := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY).(string), "JobId", jobt.Id)

	processContext, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	jobt.CurrentStep = jobModel.RAGCall

	// Embedding
	embeddingStep, err := s.executeEmbeddingStep(processContext, inMethodLogger, &jobt)
	if err != nil {
		return s.jobError(jobt, err, "EMBEDDING_FAILURE", true)
	}

	// Cache Check
	cachedAnswer, found := s.executeCacheCheckStep(ctx, inMethodLogger, &jobt, embeddingStep)
	if found {
		return returnOutput(jobt, cachedAnswer)
	}

	// Vector DB Search
	sources, err := s.executeVectorSearchStep(processContext, inMethodLogger, &jobt, embeddingStep)
	if err != nil {
		return s.jobError(jobt, err, "VECTOR_DB_FAILURE", true)
	}
	jobt.JobPayload.Sources = UsableSources(sources, config.MinSourceLength)

	// Workflow Generation
	answer, err := s.executeWorkflowStep(processContext, inMethodLogger, &jobt)
	if err != nil {
		return s.jobError(jobt, err, "WORKFLOW_FAILURE", true)
	}

	//Background Cache Save
	go func() {
		if cacheErr := s.vectorDB.SaveToCache(ctx, utils.GetNewUUID(), embeddingStep, answer); cacheErr != nil {
			s.logger.Error("Failed to save to cache")
		}
	}()

	return returnOutput(jobt, answer)
}

// IngestDocument processes one uploaded file. The handler has already parked
// the upload in a temp file; it gets deleted here whatever the outcome, the
// vector store is the only durable copy.
func (s *service) IngestDocument(ctx context.Context, job jobModel.Job) jobModel.Job {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("Document_ingestion", time.Since(start)) }()
	defer os.Remove(job.JobPayload.IngestURL)

	job.CurrentStep = jobModel.IngestProcessing

	docs := []commonModels.Document{{
		Path:  job.JobPayload.IngestURL,
		Title: job.JobPayload.IngestFileName,
	}}
	if err := ingest.IngestDocuments(ctx, docs, config.CollectionName, s.vectorDB, s.embedder); err != nil {
		return s.jobError(job, err, "INGESTION_FAILURE", true)
	}
	return returnOutput(job, "Ingestion complete for "+job.JobPayload.IngestFileName)
}
