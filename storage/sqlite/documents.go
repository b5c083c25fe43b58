package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"

	"github.com/aibanker/go-aibanker/documents"
	ierrors "github.com/aibanker/go-aibanker/internal/errors"
)

var _ documents.Repo = (*DocumentRepo)(nil)

// DocumentRepo is the SQLite implementation of documents.Repo.
type DocumentRepo struct {
	db *sql.DB
}

func NewDocumentRepo(db *sql.DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

const documentColumns = `id, deal_id, filename, original_name, storage_path,
	content_type, size_bytes, document_type, status, uploaded_by,
	processing_error, processed_at, version, created_at, updated_at`

func (dr *DocumentRepo) Create(ctx context.Context, doc *documents.Document) error {
	now := time.Now().UTC()
	result, err := dr.db.ExecContext(ctx,
		`INSERT INTO documents (deal_id, filename, original_name, storage_path,
			content_type, size_bytes, document_type, status, uploaded_by,
			processing_error, processed_at, version, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?)`,
		doc.DealID, doc.Filename, doc.OriginalName, doc.StoragePath,
		doc.ContentType, doc.SizeBytes, doc.DocumentType, doc.Status,
		doc.UploadedBy, doc.ProcessingError, nullTime(doc.ProcessedAt), now, now,
	)
	if err != nil {
		return errors.Wrap(err, "[DocumentRepo.Create] insert document")
	}

	id, err := result.LastInsertId()
	if err != nil {
		return errors.Wrap(err, "[DocumentRepo.Create] last insert id")
	}

	doc.ID = id
	doc.Version = 1
	doc.CreatedAt = now
	doc.UpdatedAt = now
	return nil
}

func (dr *DocumentRepo) Update(ctx context.Context, doc *documents.Document) error {
	now := time.Now().UTC()
	result, err := dr.db.ExecContext(ctx,
		`UPDATE documents SET deal_id = ?, filename = ?, original_name = ?,
			storage_path = ?, content_type = ?, size_bytes = ?,
			document_type = ?, status = ?, processing_error = ?,
			processed_at = ?, version = version + 1, updated_at = ?
		 WHERE id = ? AND version = ?`,
		doc.DealID, doc.Filename, doc.OriginalName, doc.StoragePath,
		doc.ContentType, doc.SizeBytes, doc.DocumentType, doc.Status,
		doc.ProcessingError, nullTime(doc.ProcessedAt), now, doc.ID, doc.Version,
	)
	if err != nil {
		return errors.Wrap(err, "[DocumentRepo.Update] update document")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "[DocumentRepo.Update] rows affected")
	}
	if affected == 0 {
		if _, err := dr.GetByID(ctx, doc.ID); err != nil {
			return err
		}
		return ierrors.ErrVersionConflict
	}

	doc.Version++
	doc.UpdatedAt = now
	return nil
}

func (dr *DocumentRepo) Delete(ctx context.Context, id int64) error {
	result, err := dr.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return errors.Wrap(err, "[DocumentRepo.Delete] delete document")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "[DocumentRepo.Delete] rows affected")
	}
	if affected == 0 {
		return ierrors.ErrNotFound
	}
	return nil
}

func (dr *DocumentRepo) GetByID(ctx context.Context, id int64) (*documents.Document, error) {
	row := dr.db.QueryRowContext(ctx, "SELECT "+documentColumns+" FROM documents WHERE id = ?", id)
	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ierrors.ErrNotFound
		}
		return nil, errors.Wrap(err, "[DocumentRepo.GetByID] scan document")
	}
	return doc, nil
}

func (dr *DocumentRepo) List(ctx context.Context, offset, limit int) ([]*documents.Document, error) {
	return dr.list(ctx,
		"SELECT "+documentColumns+" FROM documents ORDER BY id LIMIT ? OFFSET ?",
		sqlLimit(limit), offset)
}

func (dr *DocumentRepo) ListByDeal(ctx context.Context, dealID int64, offset, limit int) ([]*documents.Document, error) {
	return dr.list(ctx,
		"SELECT "+documentColumns+" FROM documents WHERE deal_id = ? ORDER BY id LIMIT ? OFFSET ?",
		dealID, sqlLimit(limit), offset)
}

func (dr *DocumentRepo) ListByUploader(ctx context.Context, userID int64, offset, limit int) ([]*documents.Document, error) {
	return dr.list(ctx,
		"SELECT "+documentColumns+" FROM documents WHERE uploaded_by = ? ORDER BY id LIMIT ? OFFSET ?",
		userID, sqlLimit(limit), offset)
}

func (dr *DocumentRepo) SetStatus(ctx context.Context, id int64, status documents.Status, processingError string) error {
	now := time.Now().UTC()

	// Terminal states stamp processed_at; entering processing clears it.
	processedAt := sql.NullTime{}
	if status == documents.StatusProcessed || status == documents.StatusFailed {
		processedAt = sql.NullTime{Time: now, Valid: true}
	}

	result, err := dr.db.ExecContext(ctx,
		`UPDATE documents SET status = ?, processing_error = ?, processed_at = ?,
			version = version + 1, updated_at = ?
		 WHERE id = ?`,
		status, processingError, processedAt, now, id,
	)
	if err != nil {
		return errors.Wrap(err, "[DocumentRepo.SetStatus] update status")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "[DocumentRepo.SetStatus] rows affected")
	}
	if affected == 0 {
		return ierrors.ErrNotFound
	}
	return nil
}

func (dr *DocumentRepo) list(ctx context.Context, query string, args ...interface{}) ([]*documents.Document, error) {
	rows, err := dr.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "[DocumentRepo.list] query documents")
	}
	defer rows.Close()

	var docList []*documents.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, errors.Wrap(err, "[DocumentRepo.list] scan document")
		}
		docList = append(docList, doc)
	}
	return docList, rows.Err()
}

func scanDocument(row rowScanner) (*documents.Document, error) {
	var (
		doc         documents.Document
		processedAt sql.NullTime
	)
	err := row.Scan(
		&doc.ID, &doc.DealID, &doc.Filename, &doc.OriginalName, &doc.StoragePath,
		&doc.ContentType, &doc.SizeBytes, &doc.DocumentType, &doc.Status,
		&doc.UploadedBy, &doc.ProcessingError, &processedAt, &doc.Version,
		&doc.CreatedAt, &doc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	doc.ProcessedAt = timeValue(processedAt)
	return &doc, nil
}
