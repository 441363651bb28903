package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/saskaita/invoice-pipeline/constants"
	"github.com/saskaita/invoice-pipeline/internal/common"
	"github.com/saskaita/invoice-pipeline/internal/entity"
)

// DocumentRepository persists confirmed documents and serves the duplicate
// advisory.
type DocumentRepository interface {
	Create(ctx context.Context, doc *entity.ProcessedDocument) error
	GetByID(ctx context.Context, userID string, id uuid.UUID) (*entity.ProcessedDocument, error)
	List(ctx context.Context, userID string) ([]*entity.ProcessedDocument, error)
	Delete(ctx context.Context, userID string, id uuid.UUID) error
	FindDuplicate(ctx context.Context, userID, sellerCode, invoiceNumber string) (*entity.ProcessedDocument, error)
	ListConfirmedBetween(ctx context.Context, userID string, from, to *time.Time) ([]*entity.ProcessedDocument, error)
}

type documentRepository struct {
	db     *DB
	logger *slog.Logger
}

func NewDocumentRepository(db *DB, logger *slog.Logger) DocumentRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &documentRepository{db: db, logger: logger}
}

const docColumns = `id, user_id, original_name, file_type, compressed_url, original_url,
	extracted_data, coordinates, status, seller_code, invoice_number, created_at, updated_at`

func (r *documentRepository) Create(ctx context.Context, doc *entity.ProcessedDocument) error {
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	now := time.Now().UTC()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now

	_, err := r.db.SQL.ExecContext(ctx, `
		INSERT INTO processed_documents (`+docColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		doc.ID.String(), doc.UserID, doc.OriginalName, doc.FileType,
		doc.CompressedURL, doc.OriginalURL,
		string(doc.ExtractedData), string(doc.Coordinates),
		doc.Status, doc.SellerCode, doc.InvoiceNumber,
		doc.CreatedAt.Format(time.RFC3339), doc.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		r.logger.Error("failed to insert document", "user_id", doc.UserID, "error", err)
		return common.NewAppError("DB_INSERT_FAILED", "failed to save document", common.ErrDatabase)
	}
	return nil
}

func (r *documentRepository) GetByID(ctx context.Context, userID string, id uuid.UUID) (*entity.ProcessedDocument, error) {
	row := r.db.SQL.QueryRowContext(ctx, `
		SELECT `+docColumns+` FROM processed_documents
		WHERE user_id = $1 AND id = $2`,
		userID, id.String(),
	)
	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NewAppError("DOCUMENT_NOT_FOUND", "document not found", common.ErrNotFound)
	}
	if err != nil {
		r.logger.Error("failed to load document", "id", id, "error", err)
		return nil, common.NewAppError("DB_QUERY_FAILED", "failed to load document", common.ErrDatabase)
	}
	return doc, nil
}

func (r *documentRepository) List(ctx context.Context, userID string) ([]*entity.ProcessedDocument, error) {
	rows, err := r.db.SQL.QueryContext(ctx, `
		SELECT `+docColumns+` FROM processed_documents
		WHERE user_id = $1
		ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		r.logger.Error("failed to list documents", "user_id", userID, "error", err)
		return nil, common.NewAppError("DB_QUERY_FAILED", "failed to list documents", common.ErrDatabase)
	}
	defer rows.Close()
	return collectDocuments(rows)
}

func (r *documentRepository) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	res, err := r.db.SQL.ExecContext(ctx, `
		DELETE FROM processed_documents WHERE user_id = $1 AND id = $2`,
		userID, id.String(),
	)
	if err != nil {
		r.logger.Error("failed to delete document", "id", id, "error", err)
		return common.NewAppError("DB_DELETE_FAILED", "failed to delete document", common.ErrDatabase)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return common.NewAppError("DOCUMENT_NOT_FOUND", "document not found", common.ErrNotFound)
	}
	return nil
}

// FindDuplicate returns the earliest confirmed document with the same
// (seller code, invoice number) for this user, or nil. Advisory only.
func (r *documentRepository) FindDuplicate(ctx context.Context, userID, sellerCode, invoiceNumber string) (*entity.ProcessedDocument, error) {
	row := r.db.SQL.QueryRowContext(ctx, `
		SELECT `+docColumns+` FROM processed_documents
		WHERE user_id = $1 AND seller_code = $2 AND invoice_number = $3
		ORDER BY created_at ASC
		LIMIT 1`,
		userID, sellerCode, invoiceNumber,
	)
	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("duplicate lookup failed", "user_id", userID, "error", err)
		return nil, common.NewAppError("DB_QUERY_FAILED", "duplicate lookup failed", common.ErrDatabase)
	}
	return doc, nil
}

func (r *documentRepository) ListConfirmedBetween(ctx context.Context, userID string, from, to *time.Time) ([]*entity.ProcessedDocument, error) {
	q := `SELECT ` + docColumns + ` FROM processed_documents WHERE user_id = $1 AND status = $2`
	args := []any{userID, constants.DocStatusConfirmed}
	if from != nil {
		args = append(args, from.UTC().Format(time.RFC3339))
		q += ` AND created_at >= $3`
	}
	if to != nil {
		args = append(args, to.UTC().Format(time.RFC3339))
		if from != nil {
			q += ` AND created_at <= $4`
		} else {
			q += ` AND created_at <= $3`
		}
	}
	q += ` ORDER BY created_at ASC`

	rows, err := r.db.SQL.QueryContext(ctx, q, args...)
	if err != nil {
		r.logger.Error("failed to list confirmed documents", "user_id", userID, "error", err)
		return nil, common.NewAppError("DB_QUERY_FAILED", "failed to list documents", common.ErrDatabase)
	}
	defer rows.Close()
	return collectDocuments(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*entity.ProcessedDocument, error) {
	var (
		doc                  entity.ProcessedDocument
		id                   string
		extracted, coordsRaw string
		createdAt, updatedAt string
	)
	err := row.Scan(
		&id, &doc.UserID, &doc.OriginalName, &doc.FileType,
		&doc.CompressedURL, &doc.OriginalURL,
		&extracted, &coordsRaw,
		&doc.Status, &doc.SellerCode, &doc.InvoiceNumber,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}
	doc.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, err
	}
	doc.ExtractedData = []byte(extracted)
	doc.Coordinates = []byte(coordsRaw)
	if doc.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, err
	}
	if doc.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return nil, err
	}
	return &doc, nil
}

func collectDocuments(rows *sql.Rows) ([]*entity.ProcessedDocument, error) {
	var out []*entity.ProcessedDocument
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
