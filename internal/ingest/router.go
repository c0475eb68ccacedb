package ingest

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/sha1n/docindex/internal/domain"
)

// ErrUnsupportedType is reported when the router is asked to extract an unsupported file.
var ErrUnsupportedType = errors.New("unsupported document type")

// Extractor converts a document file into plain text.
type Extractor interface {
	Extract(path string) (string, error)
}

// ExtractorFunc adapts a function to the Extractor interface.
type ExtractorFunc func(path string) (string, error)

// Extract calls f(path).
func (f ExtractorFunc) Extract(path string) (string, error) {
	return f(path)
}

// Outcome is the normalized result of one extraction: text or a failure reason.
type Outcome struct {
	Text string
	Err  error
}

// OK reports whether the extraction succeeded.
func (o Outcome) OK() bool {
	return o.Err == nil
}

// Router dispatches classified files to the matching extractor.
type Router struct {
	pdf  Extractor
	docx Extractor
}

// NewRouter creates a router using the given PDF and DOCX extractors.
func NewRouter(pdf, docx Extractor) *Router {
	return &Router{pdf: pdf, docx: docx}
}

// Extract runs the extractor for typ. Extractor errors and panics are turned
// into failed outcomes and never escape the call.
func (r *Router) Extract(path string, typ domain.DetectedType) (out Outcome) {
	defer func() {
		if rec := recover(); rec != nil {
			out = Outcome{Err: fmt.Errorf("%s extractor panicked: %v", typ, rec)}
		}
		if out.Err != nil {
			slog.Debug("Extraction failed", "path", path, "type", typ.String(), "error", out.Err)
		}
	}()

	var extractor Extractor
	switch typ {
	case domain.PDF:
		extractor = r.pdf
	case domain.DOCX:
		extractor = r.docx
	}
	if extractor == nil {
		return Outcome{Err: fmt.Errorf("%w: %s", ErrUnsupportedType, typ)}
	}

	text, err := extractor.Extract(path)
	if err != nil {
		return Outcome{Err: err}
	}
	return Outcome{Text: text}
}
