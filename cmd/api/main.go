// @title           Partner Docs RAG API
// @version         1.0
// @description     Asynchronous question answering and ingestion over the partner support PDFs
// @termsOfService  http://swagger.io/terms/

// @contact.name    me lol
// @contact.url
// @contact.email

// @license.name    Apache 2.0
// @license.url     http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:3000
// @BasePath  /
// @schemes   http https
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/mkrish/PartnerDocsAPI/internal/config"
	"github.com/mkrish/PartnerDocsAPI/internal/data/store"
	jobmodel "github.com/mkrish/PartnerDocsAPI/internal/domain/jobModel"
	"github.com/mkrish/PartnerDocsAPI/internal/handlers"
	"github.com/mkrish/PartnerDocsAPI/internal/job"
	"github.com/mkrish/PartnerDocsAPI/internal/rag"
	"github.com/mkrish/PartnerDocsAPI/internal/rag/embedding"
	"github.com/mkrish/PartnerDocsAPI/internal/rag/embedding/googleEmbedding"
	"github.com/mkrish/PartnerDocsAPI/internal/rag/embedding/openaiEmbedding"
	"github.com/mkrish/PartnerDocsAPI/internal/rag/llm/workflow"
	"github.com/mkrish/PartnerDocsAPI/internal/rag/vectorDB/qdrantDB"
	"github.com/mkrish/PartnerDocsAPI/internal/server"
	"github.com/mkrish/PartnerDocsAPI/internal/worker"
	"github.com/mkrish/PartnerDocsAPI/pkg/logger_i"
)

var (
	listenAddr        string
	requestCount      int64
	stopWorkerChannel chan bool
	workerWaitGroup   sync.WaitGroup
)

func main() {

	logger_i.Init()
	var logger = logger_i.NewLogger("main")

	//config
	flag.StringVar(&listenAddr, "listen-addr", config.ServerListenAddr, "server listen address")
	flag.Parse()

	//init buffered job channel
	jobChannel := make(chan jobmodel.Job, config.BufferLimit)
	dispatcherChannel := make(chan bool, 1)
	stopWorkerChannel = make(chan bool, 1)

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	//init job service and job store
	serviceConfig := job.ServiceConfig{
		JobChannel:        jobChannel,
		RequestCount:      requestCount,
		DispatcherChannel: dispatcherChannel,
		JobStore:          store.GetRedisJobStore(serviceContext),
		MessageStore:      store.GetRedisMessageStore(serviceContext),
	}
	logger.Info("Starting job service")

	if serviceConfig.JobStore == nil || serviceConfig.MessageStore == nil {
		logger.Error("Redis stores are offline")
		serviceConfig.JobStore = store.InitInMemoryJobStore()
		serviceConfig.MessageStore = store.InitMessageStore()
	}
	service := job.InitJobService(serviceConfig)

	vectorDB, err := qdrantDB.NewClientHolder(serviceContext)
	if err != nil {
		logger.Error("Vector store failed to initialize. Shutting down.", "error", err)
		return
	}
	embeddingService := pickEmbedder(serviceContext)
	llmProvider := workflow.NewClient(config.WorkflowURL, config.WorkflowAPIKey)

	if embeddingService == nil || llmProvider == nil {
		logger.Error("One or more external services failed to initialize. Shutting down.")
		logger.Debug("Available services : ", "EmbeddingService", embeddingService != nil, "LLMProvider", llmProvider != nil)
		return
	}

	ragService := rag.NewService(vectorDB, llmProvider, embeddingService)

	handlers.InitJobHandler(service, ragService)

	//init worker pool
	worker.InitServices(service, ragService)
	worker.InitWorkerPool(stopWorkerChannel, &workerWaitGroup)

	//server handling
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		WorkerStop:       stopWorkerChannel,
		Group:            &workerWaitGroup,
		CloseServices:    closeExternalServices,
	}
	go server.ShutDownHandler(shutdownParams)
	go server.CreateServer(listenAddr)

	<-stopExecution
	logger.Info("Server stopped")
}

func pickEmbedder(ctx context.Context) embedding.Embedder {
	if config.EmbeddingProvider == "openai" {
		return openaiEmbedding.GetOpenAIEmbeddingClient(config.OpenAIEmbeddingModel, config.OpenAIAPIKey)
	}
	return googleEmbedding.GetGoogleEmbeddingClient(ctx, config.GoogleEmbeddingModel, config.GoogleEmbeddingAPIKey)
}
