// Package extract routes stored documents to a text extractor by their
// declared media type.
package extract

import (
	"context"
	"io"

	"github.com/doctrove/doctrove/internal/domain"
)

// Supported media types. The mapping is closed: anything else is rejected
// without sniffing or fallback.
const (
	MediaTypePDF  = "application/pdf"
	MediaTypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MediaTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	MediaTypeXLS  = "application/vnd.ms-excel"
)

// Extractor extracts the full plain text of one document format.
type Extractor interface {
	Extract(ctx context.Context, r io.Reader) (string, error)
}

// Dispatcher holds the media-type to extractor mapping.
type Dispatcher struct {
	extractors map[string]Extractor
}

// NewDispatcher creates an empty Dispatcher. Use Register to install
// extractors, or NewDocconvDispatcher for the production wiring.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{extractors: make(map[string]Extractor)}
}

// Register installs an extractor for a media type, replacing any previous one.
func (d *Dispatcher) Register(mediaType string, e Extractor) {
	d.extractors[mediaType] = e
}

// Supported reports whether the media type has a registered extractor.
func (d *Dispatcher) Supported(mediaType string) bool {
	_, ok := d.extractors[mediaType]
	return ok
}

// Extract runs the extractor registered for the media type. Unknown types
// fail closed with an unsupported-type error; extractor failures are
// re-signaled as extraction errors naming the media type.
func (d *Dispatcher) Extract(ctx context.Context, r io.Reader, mediaType string) (string, error) {
	e, ok := d.extractors[mediaType]
	if !ok {
		return "", domain.NewUnsupportedTypeError(mediaType)
	}

	text, err := e.Extract(ctx, r)
	if err != nil {
		return "", domain.NewExtractionError("extraction failed for "+mediaType, err)
	}
	return text, nil
}
