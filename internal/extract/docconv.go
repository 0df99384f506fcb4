package extract

import (
	"context"
	"errors"
	"io"

	"code.sajari.com/docconv"
)

// DocconvExtractor extracts text with the docconv library, which selects its
// parsing strategy from the mime type it is given.
type DocconvExtractor struct {
	mimeType string
}

func NewDocconvExtractor(mimeType string) *DocconvExtractor {
	return &DocconvExtractor{mimeType: mimeType}
}

// Extract converts the document to plain text.
func (e *DocconvExtractor) Extract(ctx context.Context, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	res, err := docconv.Convert(r, e.mimeType, false)
	if err != nil {
		return "", err
	}
	if res == nil {
		return "", errors.New("docconv returned no result")
	}
	return res.Body, nil
}

// NewDocconvDispatcher wires the production extractor set: PDF, DOCX, and
// spreadsheets (modern and legacy Excel share one extractor).
func NewDocconvDispatcher() *Dispatcher {
	d := NewDispatcher()
	d.Register(MediaTypePDF, NewDocconvExtractor(MediaTypePDF))
	d.Register(MediaTypeDOCX, NewDocconvExtractor(MediaTypeDOCX))

	sheets := NewDocconvExtractor(MediaTypeXLSX)
	d.Register(MediaTypeXLSX, sheets)
	d.Register(MediaTypeXLS, sheets)
	return d
}
