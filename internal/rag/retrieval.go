package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/mkrish/PartnerDocsAPI/internal/config"
	"github.com/mkrish/PartnerDocsAPI/internal/domain/commonModels"
)

// SimilarityFromDistance converts the store's cosine-derived distance
// (range [0,2]) into a display similarity in [0,1], higher = more relevant.
func SimilarityFromDistance(d float64) float64 {
	return 1 - d/2
}

// Retrieve embeds the query and returns the top-k nearest chunks ordered by
// descending similarity. Fewer than k results just means the collection is
// small - not an error. Ties keep the store's native order.
func (s *service) Retrieve(ctx context.Context, query string, k int) ([]commonModels.QueryChunk, error) {
	vec, err := s.embedder.GetEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	return s.retrieveByVector(ctx, vec, k)
}

func (s *service) retrieveByVector(ctx context.Context, vec []float32, k int) ([]commonModels.QueryChunk, error) {
	if k <= 0 {
		k = config.DefaultTopK
	}
	hits, err := s.vectorDB.Query(ctx, config.CollectionName, vec, k)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	chunks := make([]commonModels.QueryChunk, 0, len(hits))
	for _, h := range hits {
		chunks = append(chunks, commonModels.QueryChunk{
			Text:       h.Text,
			Metadata:   h.Metadata,
			Similarity: SimilarityFromDistance(h.Distance),
		})
	}
	return chunks, nil
}

// UsableSources drops chunks whose normalized text is shorter than minLength.
// This is presentation policy of the answer-assembly layer - retrieval always
// returns everything the store returned.
func UsableSources(chunks []commonModels.QueryChunk, minLength int) []commonModels.QueryChunk {
	kept := make([]commonModels.QueryChunk, 0, len(chunks))
	for _, c := range chunks {
		if len(normalizeWhitespace(c.Text)) >= minLength {
			kept = append(kept, c)
		}
	}
	return kept
}

func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
