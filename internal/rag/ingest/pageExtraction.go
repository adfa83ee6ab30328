package ingest

import (
	"strings"

	"github.com/mkrish/PartnerDocsAPI/internal/domain/commonModels"
)

// rect is an anchor region in page coordinates, normalized so X0<=X1, Y0<=Y1.
type rect struct {
	X0, Y0, X1, Y1 float64
}

// linkAnnotation is one link annotation as reported by the source page, in
// source order. URI is empty for internal/unsupported link kinds.
type linkAnnotation struct {
	Rect    rect
	HasRect bool
	URI     string
}

// pageHandle is an open page: plain-text extraction, the page's link
// annotations, and text extraction bounded by an anchor rectangle.
type pageHandle interface {
	PlainText() (string, error)
	LinkAnnotations() []linkAnnotation
	TextInRect(r rect) (string, error)
}

// extractPage pulls the raw page text and fuses every resolvable hyperlink
// into it: the first textual occurrence of an annotation's display text
// becomes "display [uri]". Annotations with no rectangle, no URI or no
// visible text contribute nothing; a failing annotation is skipped without
// aborting the page. Duplicate display text elsewhere on the page is left
// alone - one substitution per annotation.
func extractPage(h pageHandle) (raw string, enhanced string, links []commonModels.PageLink, err error) {
	raw, err = h.PlainText()
	if err != nil {
		return "", "", nil, err
	}

	enhanced = raw
	links = []commonModels.PageLink{}
	for _, ann := range h.LinkAnnotations() {
		if !ann.HasRect || ann.URI == "" {
			continue
		}
		display, err := h.TextInRect(ann.Rect)
		if err != nil {
			// one bad annotation never sinks the page
			continue
		}
		display = strings.TrimSpace(display)
		if display == "" {
			continue
		}
		enhanced = strings.Replace(enhanced, display, display+" ["+ann.URI+"]", 1)
		links = append(links, commonModels.PageLink{Text: display, URL: ann.URI})
	}
	return raw, enhanced, links, nil
}
