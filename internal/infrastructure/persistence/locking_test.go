package persistence

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/erp/buildledger/internal/domain/inventory"
	"github.com/erp/buildledger/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	database, err := NewDatabaseFromDialector(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), nil)
	require.NoError(t, err)
	return database.DB, mock
}

func TestGodownStockRepository_UpdateStaleVersion(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewGormGodownStockRepository(db)

	s := inventory.NewGodownStock(uuid.New(), uuid.New(), uuid.New())
	s.Quantity = decimal.NewFromInt(5)
	s.IncrementVersion()

	mock.ExpectExec(`UPDATE "godown_stocks" SET .* WHERE .*tenant_id = \$\d+ AND version = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "godown_stocks" WHERE .*tenant_id = \$\d+ AND id = \$\d+`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	err := repo.Update(context.Background(), s)
	assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGodownStockRepository_UpdateMissingRow(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewGormGodownStockRepository(db)

	s := inventory.NewGodownStock(uuid.New(), uuid.New(), uuid.New())
	s.IncrementVersion()

	mock.ExpectExec(`UPDATE "godown_stocks" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "godown_stocks"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	err := repo.Update(context.Background(), s)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGodownStockRepository_UpdateCurrentVersion(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewGormGodownStockRepository(db)

	s := inventory.NewGodownStock(uuid.New(), uuid.New(), uuid.New())
	s.IncrementVersion()

	mock.ExpectExec(`UPDATE "godown_stocks" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Update(context.Background(), s))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGodownStockRepository_FindForUpdateLocksRow(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewGormGodownStockRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "godown_stocks" WHERE .* FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.FindForUpdate(context.Background(), uuid.New(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStockBatchRepository_FindAvailableLocksInFIFOOrder(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewGormStockBatchRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "stock_batches" WHERE .*remaining_qty > .* ORDER BY received_date ASC, created_at ASC, batch_number ASC FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	batches, err := repo.FindAvailableForUpdate(context.Background(), uuid.New(), uuid.New(), uuid.New())
	require.NoError(t, err)
	assert.Empty(t, batches)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSequenceRepository_NextUpserts(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewGormSequenceRepository(db)

	mock.ExpectQuery(`INSERT INTO document_sequences .* ON CONFLICT \(tenant_id, seq_key\)\s+DO UPDATE SET value = document_sequences.value \+ 1`).
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(42))

	got, err := repo.Next(context.Background(), uuid.New(), "GRN-202506")
	require.NoError(t, err)
	assert.Equal(t, int64(42), got)
	assert.NoError(t, mock.ExpectationsWereMet())
}
