package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/mkrish/PartnerDocsAPI/internal/domain/commonModels"
)

// SearchDocsInput is the input schema for the search_docs tool.
type SearchDocsInput struct {
	Query string `json:"query" jsonschema:"the question or phrase to search the ingested documents for"`
	TopK  int    `json:"top_k,omitempty" jsonschema:"maximum number of page chunks to return (default 5)"`
}

// SearchDocsOutput is the output schema for the search_docs tool.
type SearchDocsOutput struct {
	Results []ChunkOutput `json:"results"`
	Count   int           `json:"count"`
}

// ChunkOutput is one retrieved page with its provenance.
type ChunkOutput struct {
	Text       string                  `json:"text"`
	Document   string                  `json:"document"`
	Page       int                     `json:"page"`
	Similarity float64                 `json:"similarity"`
	Links      []commonModels.PageLink `json:"links,omitempty"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_docs",
		Description: "Search the ingested partner support documents and return the most relevant pages with hyperlinks preserved",
	}, s.handleSearchDocs)
}

func (s *Server) handleSearchDocs(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchDocsInput,
) (*mcp.CallToolResult, SearchDocsOutput, error) {
	chunks, err := s.ragService.Retrieve(ctx, input.Query, input.TopK)
	if err != nil {
		s.logger.Error("search_docs failed", "error", err)
		return nil, SearchDocsOutput{}, err
	}

	output := SearchDocsOutput{
		Results: make([]ChunkOutput, len(chunks)),
		Count:   len(chunks),
	}
	for i := range chunks {
		// undecodable link payloads degrade to no links, the chunk still ships
		links, _ := chunks[i].Metadata.Links()
		output.Results[i] = ChunkOutput{
			Text:       chunks[i].Text,
			Document:   chunks[i].Metadata.Document,
			Page:       chunks[i].Metadata.Page,
			Similarity: chunks[i].Similarity,
			Links:      links,
		}
	}
	return nil, output, nil
}
