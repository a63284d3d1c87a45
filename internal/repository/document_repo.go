package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-expense-tracker/internal/model"
)

const documentColumns = `id, user_id, original_name, mime_type, byte_size, ext, checksum_sha256,
	doc_type, storage, bucket, key, url, created_at, deleted_at`

type DocumentRepository struct {
	pool *pgxpool.Pool
}

func NewDocumentRepository(pool *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{pool: pool}
}

func scanDocument(row pgx.Row) (model.Document, error) {
	var d model.Document
	err := row.Scan(&d.ID, &d.UserID, &d.OriginalName, &d.MimeType, &d.ByteSize, &d.Ext,
		&d.ChecksumSHA256, &d.DocType, &d.Storage, &d.Bucket, &d.Key, &d.URL,
		&d.CreatedAt, &d.DeletedAt)
	return d, err
}

// CreateWithLink inserts the document row and its source link in one
// transaction so a stored file is never left unlinked in the database.
func (r *DocumentRepository) CreateWithLink(ctx context.Context, d model.Document, link model.DocumentLink) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO documents (id, user_id, original_name, mime_type, byte_size, ext,
			checksum_sha256, doc_type, storage, bucket, key, url, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		d.ID, d.UserID, d.OriginalName, d.MimeType, d.ByteSize, d.Ext,
		d.ChecksumSHA256, d.DocType, d.Storage, d.Bucket, d.Key, d.URL, d.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO document_links (document_id, source_type, source_id)
		 VALUES ($1, $2, $3)`,
		link.DocumentID, link.SourceType, link.SourceID)
	if err != nil {
		return fmt.Errorf("insert document link: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit document create: %w", err)
	}
	return nil
}

func (r *DocumentRepository) ListBySource(ctx context.Context, userID string, sourceType string, sourceID string) ([]model.Document, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+documentColumns+` FROM documents d
		 WHERE d.user_id = $1 AND d.deleted_at IS NULL
		   AND EXISTS (
			SELECT 1 FROM document_links l
			WHERE l.document_id = d.id AND l.source_type = $2 AND l.source_id = $3
		   )
		 ORDER BY d.created_at ASC`, userID, sourceType, sourceID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	docs := make([]model.Document, 0)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

func (r *DocumentRepository) FindByID(ctx context.Context, userID string, id string) (model.Document, error) {
	d, err := scanDocument(r.pool.QueryRow(ctx,
		`SELECT `+documentColumns+` FROM documents
		 WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL`, id, userID))

	if errors.Is(err, pgx.ErrNoRows) {
		return model.Document{}, model.ErrDocumentNotFound
	}
	if err != nil {
		return model.Document{}, fmt.Errorf("find document: %w", err)
	}
	return d, nil
}

func (r *DocumentRepository) SoftDelete(ctx context.Context, userID string, id string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE documents SET deleted_at = $3
		 WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL`,
		id, userID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("soft delete document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrDocumentNotFound
	}
	return nil
}
