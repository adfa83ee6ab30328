package qdrantDB

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/google/uuid"
	"github.com/mkrish/PartnerDocsAPI/internal/config"
	"github.com/mkrish/PartnerDocsAPI/internal/domain/commonModels"
	"github.com/mkrish/PartnerDocsAPI/internal/rag/vectorDB"
	"github.com/mkrish/PartnerDocsAPI/pkg/logger_i"
	"github.com/qdrant/go-client/qdrant"
)

var dimension = uint64(config.EmbeddingOutputDimensionality)

type ClientHolder struct {
	QObj   *qdrant.Client
	logger *logger_i.Logger
}

// NewClientHolder dials qdrant and hands back the one holder the process
// should pass around. The holder closes itself when ctx is cancelled.
func NewClientHolder(ctx context.Context) (*ClientHolder, error) {
	logger := logger_i.NewLogger("Qdrant")

	host := os.Getenv("QDRANT_HOST")
	port, er := strconv.Atoi(os.Getenv("QDRANT_PORT"))
	if host == "" || er != nil {
		host = config.QdrantHost
		port = config.QdrantGrpcPort
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:     host,
		Port:     port,
		UseTLS:   config.QdrantUseTLS,
		PoolSize: uint(config.QdrantPoolSize),
	})
	if err != nil {
		logger.Error("could not instantiate qdrant client", "error", err)
		return nil, fmt.Errorf("qdrant client: %w", err)
	}

	holder := &ClientHolder{QObj: client, logger: logger}
	if err := holder.EnsureCollection(ctx, answerCacheCollection); err != nil {
		logger.Error("answer cache collection creation failed", "error", err)
	}
	go holder.closeOnDone(ctx)
	return holder, nil
}

func (db *ClientHolder) closeOnDone(ctx context.Context) {
	<-ctx.Done()
	db.logger.Info("Shutting down Qdrant")
	if err := db.QObj.Close(); err != nil {
		db.logger.Error("could not close Qdrant", "error", err)
	}
}

func (db *ClientHolder) EnsureCollection(ctx context.Context, name string) error {
	if name == "" {
		return errors.New("empty collection name")
	}

	exists, err := db.QObj.CollectionExists(ctx, name)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	return db.QObj.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: name,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     dimension,
			Distance: qdrant.Distance_Cosine,
		}),
	})
}

func (db *ClientHolder) Count(ctx context.Context, name string) (uint64, error) {
	return db.QObj.Count(ctx, &qdrant.CountPoints{
		CollectionName: name,
		Exact:          qdrant.PtrOf(true),
	})
}

func (db *ClientHolder) PagesForSource(ctx context.Context, name string, pdfPath string) (map[int]bool, error) {
	points, err := db.QObj.Scroll(ctx, &qdrant.ScrollPoints{
		CollectionName: name,
		Filter: &qdrant.Filter{
			Must: []*qdrant.Condition{qdrant.NewMatch("pdf_path", pdfPath)},
		},
		Limit:       qdrant.PtrOf(uint32(10000)),
		WithPayload: qdrant.NewWithPayloadInclude("page"),
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant scroll for %q failed: %w", pdfPath, err)
	}

	done := make(map[int]bool, len(points))
	for _, p := range points {
		done[int(p.Payload["page"].GetIntegerValue())] = true
	}
	return done, nil
}

func (db *ClientHolder) UpsertBatch(ctx context.Context, name string, chunks []commonModels.PageChunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("mismatch: got %d chunks but %d vectors", len(chunks), len(vectors))
	}

	qdrantPoints := make([]*qdrant.PointStruct, len(chunks))
	for i, chunk := range chunks {
		qdrantPoints[i] = &qdrant.PointStruct{
			Id:      qdrant.NewID(PointID(chunk.Id)),
			Vectors: qdrant.NewVectors(vectors[i]...),
			Payload: qdrant.NewValueMap(map[string]any{
				"chunk_id":    chunk.Id,
				"content":     chunk.Text,
				"page":        chunk.Page,
				"document":    chunk.Document,
				"snippet":     chunk.Snippet,
				"pdf_path":    chunk.PDFPath,
				"links_count": chunk.LinksCount,
				"links_json":  chunk.LinksJSON,
			}),
		}
	}

	_, err := db.QObj.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: name,
		Points:         qdrantPoints,
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("qdrant upsert failed: %w", err)
	}
	return nil
}

func (db *ClientHolder) Query(ctx context.Context, name string, vector []float32, k int) ([]vectorDB.SearchHit, error) {
	loggr := db.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))
	result, err := db.QObj.Query(ctx, &qdrant.QueryPoints{
		CollectionName: name,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(k)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		loggr.Error("Error querying Qdrant", "error", err)
		return nil, err
	}

	hits := make([]vectorDB.SearchHit, 0, len(result))
	for _, hit := range result {
		hits = append(hits, vectorDB.SearchHit{
			Text: hit.Payload["content"].GetStringValue(),
			Metadata: commonModels.ChunkMetadata{
				Document:   hit.Payload["document"].GetStringValue(),
				Page:       int(hit.Payload["page"].GetIntegerValue()),
				Snippet:    hit.Payload["snippet"].GetStringValue(),
				PDFPath:    hit.Payload["pdf_path"].GetStringValue(),
				LinksCount: int(hit.Payload["links_count"].GetIntegerValue()),
				LinksJSON:  hit.Payload["links_json"].GetStringValue(),
			},
			// qdrant reports cosine similarity; the rest of the pipeline
			// works in the store's distance space [0,2]
			Distance: float64(1 - hit.Score),
		})
	}

	loggr.Debug("Query returned", "hits", len(hits))
	return hits, nil
}

// PointID derives the qdrant point id from a chunk id. Qdrant only accepts
// UUID or integer ids, so the deterministic "p{doc}_page{n}" string is mapped
// through UUIDv5 - same chunk id, same point id, on every run.
func PointID(chunkID string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(chunkID)).String()
}
