package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lendstock/lendstock-backend/internal/inventory/repository"
	"github.com/lendstock/lendstock-backend/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintQueueRepository_HasUnprinted(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	mockDB.Mock.ExpectQuery("SELECT EXISTS").
		WithArgs("item-1").
		WillReturnRows(testutil.MockRows("exists").AddRow(true))

	repo := repository.NewPrintQueueRepository(mockDB.Database())
	exists, err := repo.HasUnprinted(context.Background(), "item-1")
	require.NoError(t, err)
	assert.True(t, exists)

	mockDB.ExpectationsWereMet(t)
}

func TestPrintQueueRepository_Insert(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	queuedAt := time.Now()
	mockDB.Mock.ExpectQuery("INSERT INTO print_queue").
		WillReturnRows(testutil.MockRows("queued_at").AddRow(queuedAt))

	repo := repository.NewPrintQueueRepository(mockDB.Database())
	entry := &repository.PrintQueueEntry{
		ItemID:   "item-1",
		ItemUUID: "9b2f0c1e-5a44-4f7e-9a65-0b1dca5a8f11",
		QueuedBy: "user-1",
	}
	err := repo.Insert(context.Background(), entry)
	require.NoError(t, err)
	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, queuedAt, entry.QueuedAt)

	mockDB.ExpectationsWereMet(t)
}

func TestPrintQueueRepository_MarkPrinted(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	mockDB.Mock.ExpectExec("UPDATE print_queue SET printed_at").
		WillReturnResult(sqlmock.NewResult(0, 2))

	repo := repository.NewPrintQueueRepository(mockDB.Database())
	affected, err := repo.MarkPrinted(context.Background(), []string{"q-1", "q-2"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), affected)

	mockDB.ExpectationsWereMet(t)
}

func TestPrintQueueRepository_MarkPrinted_EmptyIDs(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	// No expectations: the call must not touch the database
	repo := repository.NewPrintQueueRepository(mockDB.Database())
	affected, err := repo.MarkPrinted(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, affected)

	mockDB.ExpectationsWereMet(t)
}

func TestPrintQueueRepository_ListUnprinted(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	now := time.Now()
	manufacturer := "Acme"
	cols := []string{
		"id", "item_id", "item_uuid", "queued_by", "queued_at", "printed_at",
		"notes", "product_name", "manufacturer", "location_name",
	}
	mockDB.Mock.ExpectQuery("FROM print_queue").
		WillReturnRows(testutil.MockRows(cols...).
			AddRow("q-1", "item-1", "9b2f0c1e-5a44-4f7e-9a65-0b1dca5a8f11", "user-1", now, nil,
				nil, "Oscilloscope", &manufacturer, nil))

	repo := repository.NewPrintQueueRepository(mockDB.Database())
	entries, err := repo.ListUnprinted(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Oscilloscope", entries[0].ProductName)
	assert.Nil(t, entries[0].PrintedAt)

	mockDB.ExpectationsWereMet(t)
}

func TestPrintQueueRepository_DeleteByItemTx(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	mockDB.ExpectBegin()
	mockDB.Mock.ExpectExec("DELETE FROM print_queue WHERE item_id").
		WithArgs("item-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mockDB.ExpectCommit()

	db := mockDB.Database()
	repo := repository.NewPrintQueueRepository(db)

	err := db.Transaction(context.Background(), func(tx *sqlx.Tx) error {
		return repo.DeleteByItemTx(context.Background(), tx, "item-1")
	})
	require.NoError(t, err)

	mockDB.ExpectationsWereMet(t)
}
