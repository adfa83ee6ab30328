package ingest

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/dslipak/pdf"
	"github.com/lu4p/cat"

	"github.com/mkrish/PartnerDocsAPI/internal/domain/commonModels"
)

// pagedSource is an opened document the controller can walk page by page.
type pagedSource interface {
	PageCount() int
	Page(n int) (pageHandle, error)
}

func getDocType(docPath string) commonModels.DocType {
	ext := strings.ToLower(filepath.Ext(docPath))
	switch ext {
	case ".pdf":
		return commonModels.PDF
	case ".docx", ".txt", ".rtf":
		return commonModels.DOCX
	default:
		return commonModels.ERR
	}
}

func openSource(path string) (pagedSource, error) {
	switch getDocType(path) {
	case commonModels.PDF:
		r, err := pdf.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open pdf: %w", err)
		}
		return &pdfSource{reader: r}, nil

	case commonModels.DOCX:
		text, err := cat.File(path)
		if err != nil {
			return nil, fmt.Errorf("failed to extract doc: %w", err)
		}
		// no page structure and no annotations here: one page, no links
		return &textSource{text: text}, nil

	default:
		return nil, fmt.Errorf("unsupported content type: %s", filepath.Ext(path))
	}
}

type pdfSource struct {
	reader *pdf.Reader
}

func (s *pdfSource) PageCount() int { return s.reader.NumPage() }

func (s *pdfSource) Page(n int) (pageHandle, error) {
	p := s.reader.Page(n)
	if p.V.IsNull() {
		return nil, fmt.Errorf("page %d has no content object", n)
	}
	return &pdfPage{page: p}, nil
}

type pdfPage struct {
	page         pdf.Page
	glyphs       []pdf.Text
	glyphsLoaded bool
}

// PlainText runs the library call on its own goroutine; malformed content
// streams can stall the parser, and a stuck page must not stall ingestion.
func (p *pdfPage) PlainText() (string, error) {
	type result struct {
		content string
		err     error
	}
	resChan := make(chan result, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				resChan <- result{"", fmt.Errorf("text extraction panicked: %v", r)}
			}
		}()
		content, err := p.page.GetPlainText(nil)
		resChan <- result{content, err}
	}()
	select {
	case r := <-resChan:
		return r.content, r.err
	case <-time.After(time.Second * 10):
		return "", errors.New("text extraction timeout")
	}
}

func (p *pdfPage) LinkAnnotations() []linkAnnotation {
	annots := p.page.V.Key("Annots")
	var out []linkAnnotation
	for i := 0; i < annots.Len(); i++ {
		a := annots.Index(i)
		if a.Key("Subtype").Name() != "Link" {
			continue
		}

		var ann linkAnnotation
		if r := a.Key("Rect"); r.Len() == 4 {
			ann.Rect = normalizedRect(
				r.Index(0).Float64(), r.Index(1).Float64(),
				r.Index(2).Float64(), r.Index(3).Float64(),
			)
			ann.HasRect = true
		}
		if action := a.Key("A"); action.Key("S").Name() == "URI" {
			ann.URI = action.Key("URI").RawString()
		}
		out = append(out, ann)
	}
	return out
}

// TextInRect gathers the glyphs whose position falls inside the anchor
// rectangle, in content order. Overlapping regions can produce partial or
// garbled text; that is a degraded outcome the caller tolerates, not an error.
func (p *pdfPage) TextInRect(r rect) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("textbox extraction failed: %v", rec)
		}
	}()

	if !p.glyphsLoaded {
		p.glyphsLoaded = true //a panicking content stream is not retried
		p.glyphs = p.page.Content().Text
	}

	var b strings.Builder
	for _, t := range p.glyphs {
		cx := t.X + t.W/2
		// Y is the glyph baseline; pad the band a little so underlined
		// anchors whose rect hugs the text still match
		if cx >= r.X0 && cx <= r.X1 && t.Y >= r.Y0-2 && t.Y <= r.Y1+2 {
			b.WriteString(t.S)
		}
	}
	return b.String(), nil
}

func normalizedRect(x0, y0, x1, y1 float64) rect {
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	return rect{X0: x0, Y0: y0, X1: x1, Y1: y1}
}

// textSource serves .txt/.docx/.rtf content as a single page without links.
type textSource struct {
	text string
}

func (s *textSource) PageCount() int { return 1 }

func (s *textSource) Page(n int) (pageHandle, error) {
	if n != 1 {
		return nil, fmt.Errorf("text source has one page, requested %d", n)
	}
	return &textPage{text: s.text}, nil
}

type textPage struct {
	text string
}

func (p *textPage) PlainText() (string, error)        { return p.text, nil }
func (p *textPage) LinkAnnotations() []linkAnnotation { return nil }
func (p *textPage) TextInRect(r rect) (string, error) { return "", nil }
