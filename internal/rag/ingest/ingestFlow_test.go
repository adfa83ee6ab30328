package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mkrish/PartnerDocsAPI/internal/domain/commonModels"
	"github.com/mkrish/PartnerDocsAPI/internal/rag/vectorDB"
)

type countingEmbedder struct {
	batchCalls int
	fail       bool
}

func (e *countingEmbedder) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	return []float32{0.1}, nil
}

func (e *countingEmbedder) BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error) {
	e.batchCalls++
	if e.fail {
		return nil, errors.New("quota exhausted")
	}
	out := make([][]float32, len(chunks))
	for i := range out {
		out[i] = []float32{float32(i)}
	}
	return out, nil
}

// flowStore extends the recording fake with configurable existing pages
type flowStore struct {
	recordingStore
	donePages map[string]map[int]bool
	lookupErr error
}

func (f *flowStore) PagesForSource(ctx context.Context, name string, pdfPath string) (map[int]bool, error) {
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	if pages, ok := f.donePages[pdfPath]; ok {
		return pages, nil
	}
	return map[int]bool{}, nil
}

func writeTempDoc(t *testing.T, name string, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing temp doc: %v", err)
	}
	return path
}

func TestIngestDocuments_MissingFileIsSkipped(t *testing.T) {
	docPath := writeTempDoc(t, "manual.txt", "How to return an item to any store location.")
	docs := []commonModels.Document{
		{Path: "does-not-exist.pdf", Title: "Ghost"},
		{Path: docPath, Title: "Manual"},
	}
	store := &flowStore{}
	embedder := &countingEmbedder{}

	err := IngestDocuments(context.Background(), docs, "test_collection", store, embedder)
	if err != nil {
		t.Fatalf("IngestDocuments failed: %v", err)
	}

	if len(store.batches) != 1 {
		t.Fatalf("expected 1 upsert batch, got %d", len(store.batches))
	}
	chunk := store.batches[0][0]
	// the missing document keeps its ordinal: the surviving one is index 1
	if chunk.Id != "p1_page1" {
		t.Errorf("chunk id = %q, want p1_page1", chunk.Id)
	}
	if chunk.Document != "Manual" || chunk.PDFPath != docPath {
		t.Errorf("chunk metadata mismatch: %+v", chunk)
	}
	if embedder.batchCalls != 1 {
		t.Errorf("expected 1 embedding batch, got %d", embedder.batchCalls)
	}
}

func TestIngestDocuments_AlreadyIngestedPagesNotReprocessed(t *testing.T) {
	docPath := writeTempDoc(t, "guide.txt", "Store hours and contact details.")
	store := &flowStore{donePages: map[string]map[int]bool{
		docPath: {1: true},
	}}
	embedder := &countingEmbedder{}

	err := IngestDocuments(context.Background(), []commonModels.Document{{Path: docPath, Title: "Guide"}}, "test_collection", store, embedder)
	if err != nil {
		t.Fatalf("IngestDocuments failed: %v", err)
	}

	if embedder.batchCalls != 0 {
		t.Errorf("expected no embedding calls, got %d", embedder.batchCalls)
	}
	if len(store.batches) != 0 {
		t.Errorf("expected no upserts, got %d", len(store.batches))
	}
}

func TestIngestDocuments_LookupFailureFallsOpen(t *testing.T) {
	docPath := writeTempDoc(t, "guide.txt", "Grooming appointment policy.")
	store := &flowStore{lookupErr: errors.New("scroll timeout")}
	embedder := &countingEmbedder{}

	err := IngestDocuments(context.Background(), []commonModels.Document{{Path: docPath, Title: "Guide"}}, "test_collection", store, embedder)
	if err != nil {
		t.Fatalf("lookup failure must not abort ingestion: %v", err)
	}

	// fail open means the page is treated as pending and re-processed
	if len(store.batches) != 1 {
		t.Errorf("expected 1 upsert batch, got %d", len(store.batches))
	}
}

func TestIngestDocuments_EmbeddingFailureIsFatal(t *testing.T) {
	docPath := writeTempDoc(t, "guide.txt", "Adoption event schedule.")
	store := &flowStore{}
	embedder := &countingEmbedder{fail: true}

	err := IngestDocuments(context.Background(), []commonModels.Document{{Path: docPath, Title: "Guide"}}, "test_collection", store, embedder)
	if err == nil {
		t.Fatal("expected embedding failure to abort the run")
	}
	if len(store.batches) != 0 {
		t.Errorf("nothing should be upserted after a failed embed, got %d batches", len(store.batches))
	}
}

func TestIngestDocuments_UpsertFailureIsFatal(t *testing.T) {
	docPath := writeTempDoc(t, "guide.txt", "Price match policy details.")
	store := &flowStore{recordingStore: recordingStore{upsertErr: errors.New("grpc unavailable")}}
	embedder := &countingEmbedder{}

	err := IngestDocuments(context.Background(), []commonModels.Document{{Path: docPath, Title: "Guide"}}, "test_collection", store, embedder)
	if err == nil {
		t.Fatal("expected upsert failure to abort the run")
	}
}

var _ vectorDB.DataProcessor = (*flowStore)(nil)
