package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lendstock/lendstock-backend/internal/inventory/repository"
	"github.com/lendstock/lendstock-backend/pkg/errors"
	"github.com/lendstock/lendstock-backend/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUUIDHistoryRepository_DeactivateActiveTx(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	mockDB.ExpectBegin()
	mockDB.Mock.ExpectExec("UPDATE uuid_history SET").
		WithArgs("item-1", "user-1", "label damaged").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mockDB.ExpectCommit()

	db := mockDB.Database()
	repo := repository.NewUUIDHistoryRepository(db)

	err := db.Transaction(context.Background(), func(tx *sqlx.Tx) error {
		return repo.DeactivateActiveTx(context.Background(), tx, "item-1", "user-1", "label damaged")
	})
	require.NoError(t, err)

	mockDB.ExpectationsWereMet(t)
}

func TestUUIDHistoryRepository_BindProvisionalTx(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	mockDB.ExpectBegin()
	mockDB.Mock.ExpectExec("UPDATE uuid_history SET item_id").
		WithArgs("9b2f0c1e-5a44-4f7e-9a65-0b1dca5a8f11", "item-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mockDB.ExpectCommit()

	db := mockDB.Database()
	repo := repository.NewUUIDHistoryRepository(db)

	err := db.Transaction(context.Background(), func(tx *sqlx.Tx) error {
		return repo.BindProvisionalTx(context.Background(), tx, "9b2f0c1e-5a44-4f7e-9a65-0b1dca5a8f11", "item-1")
	})
	require.NoError(t, err)

	mockDB.ExpectationsWereMet(t)
}

func TestUUIDHistoryRepository_BindProvisionalTx_AlreadyBound(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	mockDB.ExpectBegin()
	mockDB.Mock.ExpectExec("UPDATE uuid_history SET item_id").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mockDB.ExpectRollback()

	db := mockDB.Database()
	repo := repository.NewUUIDHistoryRepository(db)

	err := db.Transaction(context.Background(), func(tx *sqlx.Tx) error {
		return repo.BindProvisionalTx(context.Background(), tx, "9b2f0c1e-5a44-4f7e-9a65-0b1dca5a8f11", "item-1")
	})

	var appErr *errors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "NOT_FOUND", appErr.Code)

	mockDB.ExpectationsWereMet(t)
}

func TestUUIDHistoryRepository_CreateTx_Provisional(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	mockDB.ExpectBegin()
	mockDB.Mock.ExpectQuery("INSERT INTO uuid_history").
		WithArgs(testutil.AnyUUID{}, "", "9b2f0c1e-5a44-4f7e-9a65-0b1dca5a8f11", false, "user-1").
		WillReturnRows(testutil.MockRows("created_at").AddRow(time.Now()))
	mockDB.ExpectCommit()

	db := mockDB.Database()
	repo := repository.NewUUIDHistoryRepository(db)

	entry := &repository.UUIDHistoryEntry{
		ItemID:    "",
		UUID:      "9b2f0c1e-5a44-4f7e-9a65-0b1dca5a8f11",
		IsActive:  false,
		CreatedBy: "user-1",
	}

	err := db.Transaction(context.Background(), func(tx *sqlx.Tx) error {
		return repo.CreateTx(context.Background(), tx, entry)
	})
	require.NoError(t, err)
	assert.NotEmpty(t, entry.ID)

	mockDB.ExpectationsWereMet(t)
}
