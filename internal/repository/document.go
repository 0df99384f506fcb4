package repository

import (
	"context"
	"errors"

	"github.com/doctrove/doctrove/internal/domain"
	"github.com/doctrove/doctrove/internal/pagination"
	"github.com/doctrove/doctrove/internal/service"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const interruptedMessage = "processing interrupted by restart"

type DocumentRepository struct {
	pool *pgxpool.Pool
}

func NewDocumentRepository(pool *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{pool: pool}
}

func (r *DocumentRepository) Create(ctx context.Context, d *domain.Document) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO documents (id, user_id, filename, media_type, size_bytes, status, error_message, storage_key, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		d.ID, d.UserID, d.Filename, d.MediaType, d.SizeBytes, d.Status, nullableString(d.ErrorMessage), d.StorageKey, d.CreatedAt,
	)
	return err
}

func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, user_id, filename, media_type, size_bytes, status, error_message, storage_key, created_at
		 FROM documents WHERE id = $1`,
		id,
	)
	return scanDocument(row)
}

// GetForUser fetches a document only when it belongs to the given user.
// A document owned by someone else reads as not found.
func (r *DocumentRepository) GetForUser(ctx context.Context, id, userID string) (*domain.Document, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, user_id, filename, media_type, size_bytes, status, error_message, storage_key, created_at
		 FROM documents WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	return scanDocument(row)
}

func (r *DocumentRepository) ListByUserWithCursor(ctx context.Context, userID string, cursor *pagination.Cursor, limit int) (*service.DocumentPageResult, error) {
	if limit <= 0 {
		limit = 20
	}

	var rows pgx.Rows
	var err error

	if cursor != nil {
		rows, err = r.pool.Query(ctx,
			`SELECT id, user_id, filename, media_type, size_bytes, status, error_message, storage_key, created_at
			 FROM documents
			 WHERE user_id = $1 AND (created_at, id) < ($2, $3)
			 ORDER BY created_at DESC, id DESC
			 LIMIT $4`,
			userID, cursor.Timestamp, cursor.LastID, limit+1,
		)
	} else {
		rows, err = r.pool.Query(ctx,
			`SELECT id, user_id, filename, media_type, size_bytes, status, error_message, storage_key, created_at
			 FROM documents
			 WHERE user_id = $1
			 ORDER BY created_at DESC, id DESC
			 LIMIT $2`,
			userID, limit+1,
		)
	}

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items, err := scanDocumentRows(rows)
	if err != nil {
		return nil, err
	}

	hasMore := len(items) > limit
	if hasMore {
		items = items[:limit]
	}

	var nextCursor string
	if hasMore && len(items) > 0 {
		lastItem := items[len(items)-1]
		nextCursor = pagination.EncodeCursor(lastItem.ID, lastItem.CreatedAt)
	}

	return &service.DocumentPageResult{
		Items:      items,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	}, nil
}

func (r *DocumentRepository) ListFailedByUser(ctx context.Context, userID string) ([]*domain.Document, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, filename, media_type, size_bytes, status, error_message, storage_key, created_at
		 FROM documents
		 WHERE user_id = $1 AND status = $2
		 ORDER BY created_at DESC, id DESC`,
		userID, domain.DocumentStatusFailed,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanDocumentRows(rows)
}

// UpdateStatus transitions a document and records or clears its error
// message. An empty errMsg stores NULL.
func (r *DocumentRepository) UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, errMsg string) error {
	cmdTag, err := r.pool.Exec(ctx,
		`UPDATE documents SET status = $1, error_message = $2 WHERE id = $3`,
		status, nullableString(errMsg), id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}

// Delete removes the document row; chunks and embeddings go with it via
// cascading foreign keys.
func (r *DocumentRepository) Delete(ctx context.Context, id string) error {
	cmdTag, err := r.pool.Exec(ctx,
		`DELETE FROM documents WHERE id = $1`,
		id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}

// FailStuckProcessing marks documents left in processing by a previous run
// as failed. The in-memory queue does not survive restarts, so these rows
// would otherwise stay stuck forever.
func (r *DocumentRepository) FailStuckProcessing(ctx context.Context) (int64, error) {
	cmdTag, err := r.pool.Exec(ctx,
		`UPDATE documents SET status = $1, error_message = $2 WHERE status = $3`,
		domain.DocumentStatusFailed, interruptedMessage, domain.DocumentStatusProcessing,
	)
	if err != nil {
		return 0, err
	}
	return cmdTag.RowsAffected(), nil
}

func scanDocument(row pgx.Row) (*domain.Document, error) {
	var d domain.Document
	var errMsg *string
	err := row.Scan(&d.ID, &d.UserID, &d.Filename, &d.MediaType, &d.SizeBytes, &d.Status, &errMsg, &d.StorageKey, &d.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, err
	}
	if errMsg != nil {
		d.ErrorMessage = *errMsg
	}
	return &d, nil
}

func scanDocumentRows(rows pgx.Rows) ([]*domain.Document, error) {
	var docs []*domain.Document
	for rows.Next() {
		var d domain.Document
		var errMsg *string
		if err := rows.Scan(&d.ID, &d.UserID, &d.Filename, &d.MediaType, &d.SizeBytes, &d.Status, &errMsg, &d.StorageKey, &d.CreatedAt); err != nil {
			return nil, err
		}
		if errMsg != nil {
			d.ErrorMessage = *errMsg
		}
		docs = append(docs, &d)
	}
	return docs, rows.Err()
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
