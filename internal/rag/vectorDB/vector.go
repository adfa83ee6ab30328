package vectorDB

import (
	"context"

	"github.com/mkrish/PartnerDocsAPI/internal/domain/commonModels"
)

// SearchHit is one nearest-neighbor result as the store reports it. Distance
// is the store's cosine-derived distance in [0,2]; converting it to a display
// similarity is the retrieval layer's job, not the adapter's.
type SearchHit struct {
	Text     string
	Metadata commonModels.ChunkMetadata
	Distance float64
}

// DataProcessor is the boundary to the persistent similarity-search service.
// Implementations are constructed once and passed in; business logic never
// opens its own connection.
type DataProcessor interface {
	// EnsureCollection opens the named collection, creating it if missing.
	EnsureCollection(ctx context.Context, name string) error
	Count(ctx context.Context, name string) (uint64, error)
	// PagesForSource returns the page numbers already stored for one source
	// file. The only filter shape we ever need is single-field equality.
	PagesForSource(ctx context.Context, name string, pdfPath string) (map[int]bool, error)
	UpsertBatch(ctx context.Context, name string, chunks []commonModels.PageChunk, vectors [][]float32) error
	Query(ctx context.Context, name string, vector []float32, k int) ([]SearchHit, error)

	GetCachedAnswer(ctx context.Context, queryVector []float32) (string, bool, error)
	SaveToCache(ctx context.Context, id string, vector []float32, answer string) error
}
