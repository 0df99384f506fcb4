package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain error codes
const (
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeInvalidState     = "INVALID_STATE"
	ErrCodeUnsupportedType  = "UNSUPPORTED_TYPE"
	ErrCodeExtractionFailed = "EXTRACTION_FAILED"
	ErrCodeEmptyContent     = "EMPTY_CONTENT"
	ErrCodeNoChunks         = "NO_CHUNKS_PRODUCED"
	ErrCodeEmbeddingFailed  = "EMBEDDING_FAILED"
	ErrCodeStorageFailed    = "STORAGE_FAILED"
	ErrCodeInternalError    = "INTERNAL_ERROR"
)

// Not found errors. A document that exists but belongs to another user is
// reported as not found, never as forbidden.
var (
	ErrDocumentNotFound = NewDomainError(ErrCodeNotFound, "document not found")
	ErrChunkNotFound    = NewDomainError(ErrCodeNotFound, "chunk not found")
)

// Ingestion errors
var (
	ErrEmptyContent     = NewDomainError(ErrCodeEmptyContent, "document produced no text after extraction")
	ErrNoChunksProduced = NewDomainError(ErrCodeNoChunks, "chunking produced no chunks")
)

// State errors
var (
	ErrDocumentNotReady = NewDomainError(ErrCodeInvalidState, "document processing has not completed")
	ErrNoStoredChunks   = NewDomainError(ErrCodeInvalidState, "document has no stored chunks")
)

// NewUnsupportedTypeError reports a media type outside the closed set of
// supported formats, naming the offending type.
func NewUnsupportedTypeError(mediaType string) *DomainError {
	return NewDomainError(ErrCodeUnsupportedType, fmt.Sprintf("unsupported media type: %s", mediaType))
}

// NewExtractionError wraps an extractor failure with context.
func NewExtractionError(message string, err error) *DomainError {
	return NewDomainErrorWithCause(ErrCodeExtractionFailed, message, err)
}

// NewEmbeddingError wraps an embedding provider failure with context.
func NewEmbeddingError(message string, err error) *DomainError {
	return NewDomainErrorWithCause(ErrCodeEmbeddingFailed, message, err)
}

// NewStorageError wraps a persistence failure with context.
func NewStorageError(message string, err error) *DomainError {
	return NewDomainErrorWithCause(ErrCodeStorageFailed, message, err)
}
