package service_test

import (
	"bytes"
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lendstock/lendstock-backend/internal/inventory/repository"
	"github.com/lendstock/lendstock-backend/internal/inventory/service"
	"github.com/lendstock/lendstock-backend/pkg/database"
	"github.com/lendstock/lendstock-backend/pkg/errors"
	"github.com/lendstock/lendstock-backend/pkg/logger"
	"github.com/lendstock/lendstock-backend/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var uuidV4Re = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)

func newLabelService(db *database.DB) *service.LabelService {
	log := logger.New("test", "development")
	return service.NewLabelService(
		db,
		repository.NewItemRepository(db),
		repository.NewUUIDHistoryRepository(db),
		repository.NewPrintQueueRepository(db),
		repository.NewProductRepository(db),
		nil,
		log,
	)
}

func TestLabelService_GenerateUUID(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	svc := newLabelService(mockDB.Database())

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := svc.GenerateUUID()
		assert.Regexp(t, uuidV4Re, id)
		assert.False(t, seen[id], "generated UUID repeated: %s", id)
		seen[id] = true
	}
}

func TestLabelService_GenerateItemQR(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	svc := newLabelService(mockDB.Database())

	png, err := svc.GenerateItemQR(testItemUUID, 0)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")), "expected PNG output")
}

func TestLabelService_GenerateItemQR_InvalidUUID(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	svc := newLabelService(mockDB.Database())

	_, err := svc.GenerateItemQR("not-a-uuid", 256)
	var appErr *errors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "INVALID_UUID", appErr.Code)
}

func TestLabelService_CreateItemBatch(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	now := time.Now()
	mockDB.Mock.ExpectQuery("FROM products WHERE id =").
		WithArgs("prod-1").
		WillReturnRows(productRows("prod-1", "Oscilloscope", nil))

	mockDB.ExpectBegin()
	for i := 0; i < 2; i++ {
		mockDB.Mock.ExpectQuery("INSERT INTO equipment_items").
			WillReturnRows(testutil.MockRows("created_at", "updated_at").AddRow(now, now))
		mockDB.Mock.ExpectQuery("INSERT INTO uuid_history").
			WillReturnRows(testutil.MockRows("created_at").AddRow(now))
		mockDB.Mock.ExpectQuery("INSERT INTO print_queue").
			WillReturnRows(testutil.MockRows("queued_at").AddRow(now))
	}
	mockDB.ExpectCommit()

	svc := newLabelService(mockDB.Database())
	items, err := svc.CreateItemBatch(context.Background(), "prod-1", 2, nil, "proc-1")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Regexp(t, uuidV4Re, items[0].UUID)
	assert.NotEqual(t, items[0].UUID, items[1].UUID)

	mockDB.ExpectationsWereMet(t)
}

func TestLabelService_CreateItemBatch_BadCount(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	svc := newLabelService(mockDB.Database())

	_, err := svc.CreateItemBatch(context.Background(), "prod-1", 0, nil, "proc-1")
	require.Error(t, err)

	_, err = svc.CreateItemBatch(context.Background(), "prod-1", 501, nil, "proc-1")
	require.Error(t, err)

	mockDB.ExpectationsWereMet(t)
}

func TestLabelService_RegenerateQRForItem(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	now := time.Now()
	mockDB.ExpectBegin()
	mockDB.Mock.ExpectQuery("FOR UPDATE").
		WithArgs("item-1").
		WillReturnRows(testutil.MockRows(itemCols...).
			AddRow("item-1", testItemUUID, "prod-1", nil, nil,
				"available", "good", nil, now, now))
	mockDB.Mock.ExpectQuery("SELECT EXISTS").
		WithArgs("item-1").
		WillReturnRows(testutil.MockRows("exists").AddRow(false))
	mockDB.Mock.ExpectExec("UPDATE uuid_history SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mockDB.Mock.ExpectQuery("INSERT INTO uuid_history").
		WillReturnRows(testutil.MockRows("created_at").AddRow(now))
	mockDB.Mock.ExpectExec("UPDATE equipment_items").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mockDB.Mock.ExpectQuery("INSERT INTO print_queue").
		WillReturnRows(testutil.MockRows("queued_at").AddRow(now))
	mockDB.ExpectCommit()

	svc := newLabelService(mockDB.Database())
	item, err := svc.RegenerateQRForItem(context.Background(), "item-1", "label damaged", "proc-1")
	require.NoError(t, err)
	assert.NotEqual(t, testItemUUID, item.UUID)
	assert.Regexp(t, uuidV4Re, item.UUID)

	mockDB.ExpectationsWereMet(t)
}

func TestLabelService_RegenerateQRForItem_AlreadyQueued(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	// A pending reprint already exists; the relabel still happens but no
	// second print_queue row is inserted. The pending check runs inside
	// the transaction, under the item row lock.
	now := time.Now()
	mockDB.ExpectBegin()
	mockDB.Mock.ExpectQuery("FOR UPDATE").
		WithArgs("item-1").
		WillReturnRows(testutil.MockRows(itemCols...).
			AddRow("item-1", testItemUUID, "prod-1", nil, nil,
				"available", "good", nil, now, now))
	mockDB.Mock.ExpectQuery("SELECT EXISTS").
		WithArgs("item-1").
		WillReturnRows(testutil.MockRows("exists").AddRow(true))
	mockDB.Mock.ExpectExec("UPDATE uuid_history SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mockDB.Mock.ExpectQuery("INSERT INTO uuid_history").
		WillReturnRows(testutil.MockRows("created_at").AddRow(now))
	mockDB.Mock.ExpectExec("UPDATE equipment_items").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mockDB.ExpectCommit()

	svc := newLabelService(mockDB.Database())
	item, err := svc.RegenerateQRForItem(context.Background(), "item-1", "label damaged", "proc-1")
	require.NoError(t, err)
	assert.NotEqual(t, testItemUUID, item.UUID)

	mockDB.ExpectationsWereMet(t)
}

func TestLabelService_RegenerateQRForItem_NoReason(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	svc := newLabelService(mockDB.Database())
	_, err := svc.RegenerateQRForItem(context.Background(), "item-1", "", "proc-1")
	require.Error(t, err)

	mockDB.ExpectationsWereMet(t)
}

func TestLabelService_GeneratePrintableSheet(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	now := time.Now()
	mockDB.ExpectBegin()
	for i := 0; i < 3; i++ {
		mockDB.Mock.ExpectQuery("INSERT INTO uuid_history").
			WillReturnRows(testutil.MockRows("created_at").AddRow(now))
	}
	mockDB.ExpectCommit()

	svc := newLabelService(mockDB.Database())
	pdf, uuids, err := svc.GeneratePrintableSheet(context.Background(), 3, "proc-1")
	require.NoError(t, err)
	require.Len(t, uuids, 3)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")), "expected PDF output")

	seen := make(map[string]bool)
	for _, id := range uuids {
		assert.Regexp(t, uuidV4Re, id)
		assert.False(t, seen[id])
		seen[id] = true
	}

	mockDB.ExpectationsWereMet(t)
}
