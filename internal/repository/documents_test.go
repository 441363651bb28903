package repository

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saskaita/invoice-pipeline/internal/common"
	"github.com/saskaita/invoice-pipeline/internal/entity"
)

func newTestRepo(t *testing.T) DocumentRepository {
	t.Helper()
	ctx := context.Background()
	db, err := Open(ctx, common.DatabaseConfig{
		Driver: "sqlite",
		DSN:    filepath.Join(t.TempDir(), "test.db"),
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close(nil) })
	require.NoError(t, db.EnsureSchema(ctx))
	return NewDocumentRepository(db, nil)
}

func testDoc(userID, sellerCode, invoiceNumber string) *entity.ProcessedDocument {
	return &entity.ProcessedDocument{
		UserID:        userID,
		OriginalName:  "invoice.pdf",
		FileType:      "application/pdf",
		CompressedURL: "/uploads/invoice_converted.jpg",
		OriginalURL:   "/uploads/invoice.pdf",
		ExtractedData: json.RawMessage(`{"serija_ir_numeris": "` + invoiceNumber + `"}`),
		Coordinates:   json.RawMessage(`{}`),
		Status:        "CONFIRMED",
		SellerCode:    sellerCode,
		InvoiceNumber: invoiceNumber,
	}
}

func TestCreateAndGetRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	doc := testDoc("user-1", "123456789", "SF-2024-001")
	require.NoError(t, repo.Create(ctx, doc))
	require.NotEqual(t, uuid.Nil, doc.ID)

	got, err := repo.GetByID(ctx, "user-1", doc.ID)
	require.NoError(t, err)
	assert.Equal(t, doc.ID, got.ID)
	assert.Equal(t, "invoice.pdf", got.OriginalName)
	assert.Equal(t, "123456789", got.SellerCode)
	assert.JSONEq(t, `{"serija_ir_numeris": "SF-2024-001"}`, string(got.ExtractedData))
	assert.WithinDuration(t, time.Now().UTC(), got.CreatedAt, time.Minute)
}

func TestGetByIDScopesToUser(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	doc := testDoc("user-1", "123456789", "SF-2024-001")
	require.NoError(t, repo.Create(ctx, doc))

	_, err := repo.GetByID(ctx, "user-2", doc.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestListOrdersNewestFirst(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	older := testDoc("user-1", "111111111", "SF-001")
	older.CreatedAt = time.Now().UTC().Add(-time.Hour)
	require.NoError(t, repo.Create(ctx, older))
	newer := testDoc("user-1", "222222222", "SF-002")
	require.NoError(t, repo.Create(ctx, newer))
	other := testDoc("user-2", "333333333", "SF-003")
	require.NoError(t, repo.Create(ctx, other))

	docs, err := repo.List(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, newer.ID, docs[0].ID)
	assert.Equal(t, older.ID, docs[1].ID)
}

func TestDelete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	doc := testDoc("user-1", "123456789", "SF-2024-001")
	require.NoError(t, repo.Create(ctx, doc))

	err := repo.Delete(ctx, "user-2", doc.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)

	require.NoError(t, repo.Delete(ctx, "user-1", doc.ID))
	err = repo.Delete(ctx, "user-1", doc.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestFindDuplicate(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first := testDoc("user-1", "123456789", "SF-2024-001")
	first.CreatedAt = time.Now().UTC().Add(-time.Hour)
	require.NoError(t, repo.Create(ctx, first))
	second := testDoc("user-1", "123456789", "SF-2024-001")
	require.NoError(t, repo.Create(ctx, second))

	// earliest confirmed document wins
	dup, err := repo.FindDuplicate(ctx, "user-1", "123456789", "SF-2024-001")
	require.NoError(t, err)
	require.NotNil(t, dup)
	assert.Equal(t, first.ID, dup.ID)

	dup, err = repo.FindDuplicate(ctx, "user-1", "123456789", "SF-2024-002")
	require.NoError(t, err)
	assert.Nil(t, dup)

	dup, err = repo.FindDuplicate(ctx, "user-2", "123456789", "SF-2024-001")
	require.NoError(t, err)
	assert.Nil(t, dup)
}

func TestListConfirmedBetween(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	old := testDoc("user-1", "111111111", "SF-001")
	old.CreatedAt = time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Create(ctx, old))
	mid := testDoc("user-1", "222222222", "SF-002")
	mid.CreatedAt = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Create(ctx, mid))
	recent := testDoc("user-1", "333333333", "SF-003")
	recent.CreatedAt = time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Create(ctx, recent))

	from := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	docs, err := repo.ListConfirmedBetween(ctx, "user-1", &from, &to)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, mid.ID, docs[0].ID)

	docs, err = repo.ListConfirmedBetween(ctx, "user-1", &from, nil)
	require.NoError(t, err)
	assert.Len(t, docs, 2)

	docs, err = repo.ListConfirmedBetween(ctx, "user-1", nil, nil)
	require.NoError(t, err)
	assert.Len(t, docs, 3)
}
