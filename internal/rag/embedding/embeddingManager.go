package embedding

import "context"

// Embedder maps text to fixed-dimension vectors. BatchEmbedding is order- and
// length-preserving: vector i belongs to chunks[i]. Implementations load their
// model/client once per process and are safe to share.
type Embedder interface {
	GetEmbedding(ctx context.Context, query string) ([]float32, error)
	BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error)
}
