package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/lendstock/lendstock-backend/internal/inventory/repository"
	"github.com/lendstock/lendstock-backend/internal/inventory/service"
	"github.com/lendstock/lendstock-backend/pkg/database"
	"github.com/lendstock/lendstock-backend/pkg/errors"
	"github.com/lendstock/lendstock-backend/pkg/logger"
	"github.com/lendstock/lendstock-backend/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPrintQueueService(db *database.DB) *service.PrintQueueService {
	log := logger.New("test", "development")
	return service.NewPrintQueueService(
		repository.NewItemRepository(db),
		repository.NewPrintQueueRepository(db),
		log,
	)
}

func TestPrintQueueService_AddItemToQueue(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	now := time.Now()
	mockDB.Mock.ExpectQuery("FROM equipment_items WHERE id =").
		WithArgs("item-1").
		WillReturnRows(itemRow("available", "good", nil, nil))
	mockDB.Mock.ExpectQuery("SELECT EXISTS").
		WithArgs("item-1").
		WillReturnRows(testutil.MockRows("exists").AddRow(false))
	mockDB.Mock.ExpectQuery("INSERT INTO print_queue").
		WillReturnRows(testutil.MockRows("queued_at").AddRow(now))

	svc := newPrintQueueService(mockDB.Database())
	entry, err := svc.AddItemToQueue(context.Background(), "item-1", "proc-1", "worn label")
	require.NoError(t, err)
	assert.Equal(t, "item-1", entry.ItemID)
	assert.Equal(t, testItemUUID, entry.ItemUUID)
	assert.Equal(t, "proc-1", entry.QueuedBy)

	mockDB.ExpectationsWereMet(t)
}

func TestPrintQueueService_AddItemToQueue_AlreadyQueued(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	// A pending entry already exists; the second add is rejected and no
	// insert happens, keeping the queue at one entry per item
	mockDB.Mock.ExpectQuery("FROM equipment_items WHERE id =").
		WithArgs("item-1").
		WillReturnRows(itemRow("available", "good", nil, nil))
	mockDB.Mock.ExpectQuery("SELECT EXISTS").
		WithArgs("item-1").
		WillReturnRows(testutil.MockRows("exists").AddRow(true))

	svc := newPrintQueueService(mockDB.Database())
	_, err := svc.AddItemToQueue(context.Background(), "item-1", "proc-1", "")

	var appErr *errors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "CONFLICT", appErr.Code)
	assert.Equal(t, 409, appErr.StatusCode)

	mockDB.ExpectationsWereMet(t)
}

func TestPrintQueueService_AddItemToQueue_RemovedItem(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	mockDB.Mock.ExpectQuery("FROM equipment_items WHERE id =").
		WithArgs("item-1").
		WillReturnRows(itemRow("removed", "good", nil, nil))

	svc := newPrintQueueService(mockDB.Database())
	_, err := svc.AddItemToQueue(context.Background(), "item-1", "proc-1", "")

	var appErr *errors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "ALREADY_REMOVED", appErr.Code)

	mockDB.ExpectationsWereMet(t)
}

func TestPrintQueueService_MarkItemsPrinted_Empty(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	svc := newPrintQueueService(mockDB.Database())
	_, err := svc.MarkItemsPrinted(context.Background(), nil)
	require.Error(t, err)

	mockDB.ExpectationsWereMet(t)
}

func TestPrintQueueService_CleanupPrintedItems_BadRetention(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	svc := newPrintQueueService(mockDB.Database())
	_, err := svc.CleanupPrintedItems(context.Background(), 0)
	require.Error(t, err)

	mockDB.ExpectationsWereMet(t)
}
