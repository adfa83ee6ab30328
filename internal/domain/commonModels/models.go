package commonModels

import "encoding/json"

// Document is a named PDF source registered for ingestion. Immutable once
// registered; its path partitions the pages stored in the vector collection.
type Document struct {
	Path  string `json:"pdf_path"`
	Title string `json:"document"`
}

// PageLink is one hyperlink lifted off a page: the visible anchor text and
// the target it points at.
type PageLink struct {
	Text string `json:"text"`
	URL  string `json:"url"`
}

// PageChunk is the persisted unit - one per page of a document. The Id is
// deterministic ("p{docIndex}_page{pageNum}") so re-ingestion of the same
// page maps onto the same record.
type PageChunk struct {
	Id         string `json:"id"`
	Text       string `json:"content"` //enhanced text, used as indexed content
	Page       int    `json:"page"`
	Document   string `json:"document"`
	Snippet    string `json:"snippet"`
	PDFPath    string `json:"pdf_path"`
	LinksCount int    `json:"links_count"`
	LinksJSON  string `json:"links_json"`
}

// ChunkMetadata mirrors the metadata fields stored alongside each record.
type ChunkMetadata struct {
	Document   string `json:"document"`
	Page       int    `json:"page"`
	Snippet    string `json:"snippet"`
	PDFPath    string `json:"pdf_path"`
	LinksCount int    `json:"links_count"`
	LinksJSON  string `json:"links_json"`
}

// QueryChunk is one retrieval hit. Similarity is in [0,1], higher is more
// relevant. Never persisted.
type QueryChunk struct {
	Text       string        `json:"text"`
	Metadata   ChunkMetadata `json:"metadata"`
	Similarity float64       `json:"similarity"`
}

// Links decodes the serialized link list of a retrieved chunk. A chunk with
// no links yields an empty slice, not an error.
func (m ChunkMetadata) Links() ([]PageLink, error) {
	if m.LinksJSON == "" {
		return []PageLink{}, nil
	}
	var links []PageLink
	if err := json.Unmarshal([]byte(m.LinksJSON), &links); err != nil {
		return nil, err
	}
	return links, nil
}

type DocType string

var PDF DocType = "PDF"
var DOCX DocType = "DOCX"
var ERR DocType = "ERROR"
