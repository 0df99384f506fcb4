package domain

import (
	"fmt"
	"time"
)

// DocumentStatus represents the lifecycle state of an uploaded document
type DocumentStatus string

const (
	DocumentStatusUploading  DocumentStatus = "uploading"
	DocumentStatusProcessing DocumentStatus = "processing"
	DocumentStatusCompleted  DocumentStatus = "completed"
	DocumentStatusFailed     DocumentStatus = "failed"
)

// Document represents a user-uploaded document tracked through ingestion
type Document struct {
	ID           string
	UserID       string
	Filename     string
	MediaType    string
	SizeBytes    int64
	Status       DocumentStatus
	ErrorMessage string
	StorageKey   string
	CreatedAt    time.Time
}

// NewDocument creates a new Document instance in the uploading state
func NewDocument(
	id, userID, filename, mediaType, storageKey string,
	sizeBytes int64,
	createdAt time.Time,
) *Document {
	return &Document{
		ID:         id,
		UserID:     userID,
		Filename:   filename,
		MediaType:  mediaType,
		SizeBytes:  sizeBytes,
		Status:     DocumentStatusUploading,
		StorageKey: storageKey,
		CreatedAt:  createdAt,
	}
}

// ValidateDocument validates a Document instance
func ValidateDocument(d *Document) error {
	if d == nil {
		return fmt.Errorf("document cannot be nil")
	}

	if d.ID == "" {
		return fmt.Errorf("document ID is required")
	}

	if d.UserID == "" {
		return fmt.Errorf("document UserID is required")
	}

	if d.Filename == "" {
		return fmt.Errorf("document Filename is required")
	}

	if d.MediaType == "" {
		return fmt.Errorf("document MediaType is required")
	}

	if d.StorageKey == "" {
		return fmt.Errorf("document StorageKey is required")
	}

	if !isValidDocumentStatus(d.Status) {
		return fmt.Errorf("document Status is invalid: %s", d.Status)
	}

	if d.ErrorMessage != "" && d.Status != DocumentStatusFailed {
		return fmt.Errorf("document ErrorMessage is only allowed on failed documents")
	}

	return nil
}

// isValidDocumentStatus checks if a DocumentStatus is valid
func isValidDocumentStatus(s DocumentStatus) bool {
	switch s {
	case DocumentStatusUploading, DocumentStatusProcessing,
		DocumentStatusCompleted, DocumentStatusFailed:
		return true
	}
	return false
}
