package extract

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/doctrove/doctrove/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockExtractor is a mock implementation of Extractor
type MockExtractor struct {
	mock.Mock
}

func (m *MockExtractor) Extract(ctx context.Context, r io.Reader) (string, error) {
	args := m.Called(ctx, r)
	return args.String(0), args.Error(1)
}

func TestDispatcher_Extract_RoutesByMediaType(t *testing.T) {
	pdf := new(MockExtractor)
	docx := new(MockExtractor)
	pdf.On("Extract", mock.Anything, mock.Anything).Return("pdf text", nil)

	d := NewDispatcher()
	d.Register(MediaTypePDF, pdf)
	d.Register(MediaTypeDOCX, docx)

	text, err := d.Extract(context.Background(), strings.NewReader("raw"), MediaTypePDF)

	assert.NoError(t, err)
	assert.Equal(t, "pdf text", text)
	docx.AssertNotCalled(t, "Extract", mock.Anything, mock.Anything)
}

func TestDispatcher_Extract_UnknownTypeFailsClosed(t *testing.T) {
	d := NewDispatcher()
	d.Register(MediaTypePDF, new(MockExtractor))

	_, err := d.Extract(context.Background(), strings.NewReader("raw"), "image/png")

	var domainErr *domain.DomainError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.ErrCodeUnsupportedType, domainErr.Code)
	assert.Contains(t, err.Error(), "image/png")
}

func TestDispatcher_Extract_WrapsExtractorFailure(t *testing.T) {
	cause := errors.New("corrupt xref table")
	pdf := new(MockExtractor)
	pdf.On("Extract", mock.Anything, mock.Anything).Return("", cause)

	d := NewDispatcher()
	d.Register(MediaTypePDF, pdf)

	_, err := d.Extract(context.Background(), strings.NewReader("raw"), MediaTypePDF)

	var domainErr *domain.DomainError
	assert.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domain.ErrCodeExtractionFailed, domainErr.Code)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), MediaTypePDF)
}

func TestDispatcher_Supported(t *testing.T) {
	d := NewDocconvDispatcher()

	assert.True(t, d.Supported(MediaTypePDF))
	assert.True(t, d.Supported(MediaTypeDOCX))
	assert.True(t, d.Supported(MediaTypeXLSX))
	assert.True(t, d.Supported(MediaTypeXLS))
	assert.False(t, d.Supported("text/html"))
}
