package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/mkrish/PartnerDocsAPI/internal/config"
	"github.com/mkrish/PartnerDocsAPI/internal/domain/commonModels"
	"github.com/mkrish/PartnerDocsAPI/internal/metrics"
	"github.com/mkrish/PartnerDocsAPI/internal/rag/embedding"
	"github.com/mkrish/PartnerDocsAPI/internal/rag/vectorDB"
	"github.com/mkrish/PartnerDocsAPI/pkg/logger_i"
)

var logger *logger_i.Logger

// ChunkID is the deterministic record id for a page: same document ordinal
// and page number map onto the same id on every run, which is what makes
// re-ingestion idempotent.
func ChunkID(docIndex int, pageNum int) string {
	return fmt.Sprintf("p%d_page%d", docIndex, pageNum)
}

// IngestDocuments walks the given documents in order and persists one record
// per page that is not already in the collection.
//
// A missing file skips that document and ingestion continues. A failed
// existing-pages lookup is treated as "nothing stored yet" - re-processing a
// page is safe, silently losing one is not. Embedding and upsert failures
// abort the run so the caller can tell a partial ingest from a complete one;
// pages committed before the failure are skipped on the next run.
func IngestDocuments(ctx context.Context, docs []commonModels.Document, collection string, store vectorDB.DataProcessor, embedder embedding.Embedder) error {
	logger = logger_i.NewLogger("Document Ingestion ")
	if traceId, ok := ctx.Value(config.TRACE_ID_KEY).(string); ok {
		logger = logger.With("traceId", traceId)
	}

	if err := store.EnsureCollection(ctx, collection); err != nil {
		return fmt.Errorf("opening collection %q: %w", collection, err)
	}

	if total, err := store.Count(ctx, collection); err == nil && total > 0 {
		// existing content doesn't short-circuit anything: every document
		// still gets its per-page completeness check below, so documents
		// added after the first run are picked up
		logger.Debug("Collection already holds records", "count", total)
	}

	for docIndex, doc := range docs {
		if _, err := os.Stat(doc.Path); err != nil {
			logger.Warn("File not found, skipping document", "path", doc.Path)
			continue
		}

		src, err := openSource(doc.Path)
		if err != nil {
			logger.Error("Could not open document, skipping", "path", doc.Path, "error", err)
			continue
		}

		done, err := store.PagesForSource(ctx, collection, doc.Path)
		if err != nil {
			// fail open toward re-processing
			logger.Warn("Existing-pages lookup failed, treating as empty", "path", doc.Path, "error", err)
			done = map[int]bool{}
		}

		chunks, texts := collectPendingPages(src, docIndex, doc, done)
		if len(chunks) == 0 {
			logger.Info("All pages already ingested", "document", doc.Title, "pages", src.PageCount())
			continue
		}
		logger.Info("Ingesting pages", "document", doc.Title, "pending", len(chunks), "total", src.PageCount())

		vectors, err := embedder.BatchEmbedding(ctx, texts)
		if err != nil {
			return fmt.Errorf("embedding batch for %q failed: %w", doc.Title, err)
		}

		if err := upsertInBatches(ctx, store, collection, chunks, vectors); err != nil {
			return fmt.Errorf("upserting %q failed: %w", doc.Title, err)
		}
		metrics.CountPagesIngested(doc.Title, len(chunks))
		logger.Info("Finished document", "document", doc.Title)
	}
	return nil
}

func collectPendingPages(src pagedSource, docIndex int, doc commonModels.Document, done map[int]bool) ([]commonModels.PageChunk, []string) {
	var chunks []commonModels.PageChunk
	var texts []string

	for pageNum := 1; pageNum <= src.PageCount(); pageNum++ {
		if done[pageNum] {
			continue
		}
		h, err := src.Page(pageNum)
		if err != nil {
			logger.Error("Skipping unreadable page", "document", doc.Title, "page", pageNum, "error", err)
			continue
		}
		_, enhanced, links, err := extractPage(h)
		if err != nil {
			logger.Error("Skipping page after extraction failure", "document", doc.Title, "page", pageNum, "error", err)
			continue
		}
		chunks = append(chunks, buildChunk(docIndex, pageNum, doc, enhanced, links))
		texts = append(texts, enhanced)
	}
	return chunks, texts
}

func buildChunk(docIndex int, pageNum int, doc commonModels.Document, enhanced string, links []commonModels.PageLink) commonModels.PageChunk {
	linksJSON, err := json.Marshal(links)
	if err != nil {
		linksJSON = []byte("[]")
	}
	return commonModels.PageChunk{
		Id:         ChunkID(docIndex, pageNum),
		Text:       enhanced,
		Page:       pageNum,
		Document:   doc.Title,
		Snippet:    snippet(enhanced),
		PDFPath:    doc.Path,
		LinksCount: len(links),
		LinksJSON:  string(linksJSON),
	}
}

func snippet(text string) string {
	runes := []rune(text)
	if len(runes) <= config.SnippetLength {
		return text
	}
	return string(runes[:config.SnippetLength])
}

// upsertInBatches pushes the records in fixed-size slices so a large document
// never exceeds the store's payload limit. Batches already committed stay
// committed if a later one fails; the per-page check makes re-runs resume.
func upsertInBatches(ctx context.Context, store vectorDB.DataProcessor, collection string, chunks []commonModels.PageChunk, vectors [][]float32) error {
	for i := 0; i < len(chunks); i += config.MaxUpsertBatch {
		end := i + config.MaxUpsertBatch
		if end > len(chunks) {
			end = len(chunks)
		}
		if err := store.UpsertBatch(ctx, collection, chunks[i:end], vectors[i:end]); err != nil {
			return err
		}
	}
	return nil
}
