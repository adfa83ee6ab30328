package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/mkrish/PartnerDocsAPI/internal/domain/commonModels"
	"github.com/mkrish/PartnerDocsAPI/internal/rag/vectorDB"
	"github.com/mkrish/PartnerDocsAPI/pkg/logger_i"
)

func init() {
	logger = logger_i.NewLogger("ingest test")
}

// fakePage satisfies pageHandle without any real document behind it
type fakePage struct {
	text    string
	textErr error
	anns    []linkAnnotation
	rects   map[rect]string
	rectErr error
}

func (p *fakePage) PlainText() (string, error) { return p.text, p.textErr }

func (p *fakePage) LinkAnnotations() []linkAnnotation { return p.anns }

func (p *fakePage) TextInRect(r rect) (string, error) {
	if p.rectErr != nil {
		return "", p.rectErr
	}
	return p.rects[r], nil
}

type fakeSource struct {
	pages   map[int]*fakePage
	count   int
	pageErr map[int]error
}

func (s *fakeSource) PageCount() int { return s.count }

func (s *fakeSource) Page(n int) (pageHandle, error) {
	if err := s.pageErr[n]; err != nil {
		return nil, err
	}
	return s.pages[n], nil
}

func TestExtractPage_FusesLinkIntoText(t *testing.T) {
	anchor := rect{X0: 10, Y0: 20, X1: 80, Y1: 30}
	page := &fakePage{
		text:  "Visit our site today. Remember, our site has everything.",
		anns:  []linkAnnotation{{Rect: anchor, HasRect: true, URI: "https://example.com/help"}},
		rects: map[rect]string{anchor: "our site"},
	}

	raw, enhanced, links, err := extractPage(page)
	if err != nil {
		t.Fatalf("extractPage failed: %v", err)
	}
	if raw != page.text {
		t.Errorf("raw text changed: %q", raw)
	}

	want := "Visit our site [https://example.com/help] today. Remember, our site has everything."
	if enhanced != want {
		t.Errorf("enhanced mismatch\n got: %q\nwant: %q", enhanced, want)
	}
	if len(links) != 1 || links[0].Text != "our site" || links[0].URL != "https://example.com/help" {
		t.Errorf("unexpected links: %+v", links)
	}
}

func TestExtractPage_OneSubstitutionPerAnnotation(t *testing.T) {
	r1 := rect{X0: 0, Y0: 0, X1: 10, Y1: 10}
	r2 := rect{X0: 0, Y0: 20, X1: 10, Y1: 30}
	page := &fakePage{
		text: "returns policy here and returns policy there",
		anns: []linkAnnotation{
			{Rect: r1, HasRect: true, URI: "https://a.example/one"},
			{Rect: r2, HasRect: true, URI: "https://a.example/two"},
		},
		rects: map[rect]string{r1: "returns policy", r2: "returns policy"},
	}

	_, enhanced, links, err := extractPage(page)
	if err != nil {
		t.Fatalf("extractPage failed: %v", err)
	}

	// first annotation takes the first occurrence, second takes the next
	want := "returns policy [https://a.example/one] here and returns policy [https://a.example/two] there"
	if enhanced != want {
		t.Errorf("enhanced mismatch\n got: %q\nwant: %q", enhanced, want)
	}
	if len(links) != 2 {
		t.Errorf("expected 2 links, got %d", len(links))
	}
}

func TestExtractPage_SkipsDegenerateAnnotations(t *testing.T) {
	blank := rect{X0: 1, Y0: 1, X1: 2, Y1: 2}
	page := &fakePage{
		text: "Plain page text.",
		anns: []linkAnnotation{
			{HasRect: false, URI: "https://example.com/norect"},
			{Rect: blank, HasRect: true, URI: ""},
			{Rect: blank, HasRect: true, URI: "https://example.com/blank"},
		},
		rects: map[rect]string{blank: "   "},
	}

	_, enhanced, links, err := extractPage(page)
	if err != nil {
		t.Fatalf("extractPage failed: %v", err)
	}
	if enhanced != page.text {
		t.Errorf("text should be untouched, got %q", enhanced)
	}
	if links == nil || len(links) != 0 {
		t.Errorf("expected empty non-nil links, got %#v", links)
	}
}

func TestExtractPage_AnnotationErrorDoesNotSinkPage(t *testing.T) {
	anchor := rect{X0: 0, Y0: 0, X1: 5, Y1: 5}
	page := &fakePage{
		text:    "Some content.",
		anns:    []linkAnnotation{{Rect: anchor, HasRect: true, URI: "https://example.com"}},
		rectErr: errors.New("glyph decode failed"),
	}

	_, enhanced, links, err := extractPage(page)
	if err != nil {
		t.Fatalf("page should survive a failing annotation: %v", err)
	}
	if enhanced != page.text || len(links) != 0 {
		t.Errorf("got enhanced=%q links=%v", enhanced, links)
	}
}

func TestChunkID(t *testing.T) {
	if got := ChunkID(0, 1); got != "p0_page1" {
		t.Errorf("ChunkID(0,1) = %q", got)
	}
	if got := ChunkID(2, 7); got != "p2_page7" {
		t.Errorf("ChunkID(2,7) = %q", got)
	}
}

func TestBuildChunk(t *testing.T) {
	doc := commonModels.Document{Path: "guide.pdf", Title: "Guide"}
	text := strings.Repeat("x", 80)
	links := []commonModels.PageLink{{Text: "here", URL: "https://example.com"}}

	chunk := buildChunk(1, 3, doc, text, links)

	if chunk.Id != "p1_page3" {
		t.Errorf("id = %q", chunk.Id)
	}
	if chunk.Page != 3 || chunk.Document != "Guide" || chunk.PDFPath != "guide.pdf" {
		t.Errorf("metadata mismatch: %+v", chunk)
	}
	if len(chunk.Snippet) != 50 {
		t.Errorf("snippet length = %d", len(chunk.Snippet))
	}
	if chunk.LinksCount != 1 {
		t.Errorf("links count = %d", chunk.LinksCount)
	}

	var decoded []commonModels.PageLink
	if err := json.Unmarshal([]byte(chunk.LinksJSON), &decoded); err != nil {
		t.Fatalf("links json invalid: %v", err)
	}
	if len(decoded) != 1 || decoded[0].URL != "https://example.com" {
		t.Errorf("decoded links = %+v", decoded)
	}
}

func TestBuildChunk_NoLinksEncodesEmptyArray(t *testing.T) {
	chunk := buildChunk(0, 1, commonModels.Document{Title: "T"}, "text", []commonModels.PageLink{})
	if chunk.LinksJSON != "[]" {
		t.Errorf("expected empty json array, got %q", chunk.LinksJSON)
	}
}

func TestCollectPendingPages_SkipsDonePages(t *testing.T) {
	src := &fakeSource{count: 10, pages: map[int]*fakePage{}}
	for i := 1; i <= 10; i++ {
		src.pages[i] = &fakePage{text: fmt.Sprintf("page %d", i)}
	}
	done := map[int]bool{}
	for i := 1; i <= 6; i++ {
		done[i] = true
	}

	chunks, texts := collectPendingPages(src, 0, commonModels.Document{Title: "Guide", Path: "guide.pdf"}, done)

	if len(chunks) != 4 || len(texts) != 4 {
		t.Fatalf("expected 4 pending pages, got %d", len(chunks))
	}
	for i, want := range []string{"p0_page7", "p0_page8", "p0_page9", "p0_page10"} {
		if chunks[i].Id != want {
			t.Errorf("chunk %d id = %q, want %q", i, chunks[i].Id, want)
		}
	}
}

func TestCollectPendingPages_AllDone(t *testing.T) {
	src := &fakeSource{count: 3, pages: map[int]*fakePage{
		1: {text: "a"}, 2: {text: "b"}, 3: {text: "c"},
	}}
	done := map[int]bool{1: true, 2: true, 3: true}

	chunks, _ := collectPendingPages(src, 0, commonModels.Document{Title: "T"}, done)
	if len(chunks) != 0 {
		t.Errorf("expected no pending pages, got %d", len(chunks))
	}
}

func TestCollectPendingPages_UnreadablePageSkipped(t *testing.T) {
	src := &fakeSource{
		count:   3,
		pages:   map[int]*fakePage{1: {text: "a"}, 3: {text: "c"}},
		pageErr: map[int]error{2: errors.New("corrupt xref")},
	}

	chunks, _ := collectPendingPages(src, 0, commonModels.Document{Title: "T"}, map[int]bool{})
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0].Page != 1 || chunks[1].Page != 3 {
		t.Errorf("wrong pages survived: %d, %d", chunks[0].Page, chunks[1].Page)
	}
}

// recordingStore tracks upsert batch sizes
type recordingStore struct {
	batches   [][]commonModels.PageChunk
	upsertErr error
}

func (r *recordingStore) EnsureCollection(ctx context.Context, name string) error { return nil }
func (r *recordingStore) Count(ctx context.Context, name string) (uint64, error) { return 0, nil }
func (r *recordingStore) PagesForSource(ctx context.Context, name string, pdfPath string) (map[int]bool, error) {
	return map[int]bool{}, nil
}
func (r *recordingStore) UpsertBatch(ctx context.Context, name string, chunks []commonModels.PageChunk, vectors [][]float32) error {
	if r.upsertErr != nil {
		return r.upsertErr
	}
	r.batches = append(r.batches, chunks)
	return nil
}
func (r *recordingStore) Query(ctx context.Context, name string, vector []float32, k int) ([]vectorDB.SearchHit, error) {
	return nil, nil
}
func (r *recordingStore) GetCachedAnswer(ctx context.Context, queryVector []float32) (string, bool, error) {
	return "", false, nil
}
func (r *recordingStore) SaveToCache(ctx context.Context, id string, vector []float32, answer string) error {
	return nil
}

func TestUpsertInBatches_SplitsAtBatchLimit(t *testing.T) {
	store := &recordingStore{}
	chunks := make([]commonModels.PageChunk, 150)
	vectors := make([][]float32, 150)
	for i := range chunks {
		chunks[i] = commonModels.PageChunk{Id: ChunkID(0, i+1)}
		vectors[i] = []float32{float32(i)}
	}

	if err := upsertInBatches(context.Background(), store, "c", chunks, vectors); err != nil {
		t.Fatalf("upsertInBatches failed: %v", err)
	}

	if len(store.batches) != 2 {
		t.Fatalf("expected 2 batches, got %d", len(store.batches))
	}
	if len(store.batches[0]) != 100 || len(store.batches[1]) != 50 {
		t.Errorf("batch sizes = %d, %d", len(store.batches[0]), len(store.batches[1]))
	}
}

func TestUpsertInBatches_PropagatesError(t *testing.T) {
	store := &recordingStore{upsertErr: errors.New("grpc unavailable")}
	chunks := []commonModels.PageChunk{{Id: "p0_page1"}}
	vectors := [][]float32{{0.1}}

	if err := upsertInBatches(context.Background(), store, "c", chunks, vectors); err == nil {
		t.Fatal("expected error")
	}
}
