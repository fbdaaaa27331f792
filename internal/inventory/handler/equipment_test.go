package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lendstock/lendstock-backend/pkg/httputil"
	"github.com/lendstock/lendstock-backend/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEquipmentHandler_CheckOut(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	now := time.Now()
	locID := "loc-1"
	mockDB.ExpectBegin()
	mockDB.Mock.ExpectQuery("FOR UPDATE").
		WithArgs(testItemUUID).
		WillReturnRows(testutil.MockRows(itemCols...).
			AddRow("item-1", testItemUUID, "prod-1", &locID, nil,
				"available", "good", nil, now, now))
	mockDB.Mock.ExpectExec("UPDATE equipment_items").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mockDB.Mock.ExpectQuery("INSERT INTO equipment_transactions").
		WillReturnRows(testutil.MockRows("created_at").AddRow(now))
	mockDB.ExpectCommit()

	r := newEquipmentRouter(mockDB.Database())
	rr := doJSON(t, r, "POST", "/items/"+testItemUUID+"/checkout",
		`{"user_id":"user-7","notes":"field trip kit"}`)

	assert.Equal(t, http.StatusOK, rr.Code, "unexpected status. Body: %s", rr.Body.String())

	var resp httputil.Response
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Nil(t, resp.Error)

	mockDB.ExpectationsWereMet(t)
}

func TestEquipmentHandler_CheckOut_NotAvailable(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	now := time.Now()
	holder := "user-2"
	mockDB.ExpectBegin()
	mockDB.Mock.ExpectQuery("FOR UPDATE").
		WithArgs(testItemUUID).
		WillReturnRows(testutil.MockRows(itemCols...).
			AddRow("item-1", testItemUUID, "prod-1", nil, &holder,
				"checked_out", "good", nil, now, now))
	mockDB.ExpectRollback()

	r := newEquipmentRouter(mockDB.Database())
	rr := doJSON(t, r, "POST", "/items/"+testItemUUID+"/checkout",
		`{"user_id":"user-7"}`)

	assert.Equal(t, http.StatusConflict, rr.Code, "Body: %s", rr.Body.String())

	var resp httputil.Response
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "ITEM_NOT_AVAILABLE", resp.Error.Code)

	mockDB.ExpectationsWereMet(t)
}

func TestEquipmentHandler_CheckOut_MissingActor(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	r := newEquipmentRouter(mockDB.Database())

	// No X-Actor-ID header
	req := httptest.NewRequest("POST", "/items/"+testItemUUID+"/checkout",
		strings.NewReader(`{"user_id":"user-7"}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code, "Body: %s", rr.Body.String())

	var resp httputil.Response
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "ACTOR_REQUIRED", resp.Error.Code)

	mockDB.ExpectationsWereMet(t)
}

func TestEquipmentHandler_CheckOut_MissingUserID(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	r := newEquipmentRouter(mockDB.Database())
	rr := doJSON(t, r, "POST", "/items/"+testItemUUID+"/checkout", `{"notes":"x"}`)

	assert.Equal(t, http.StatusBadRequest, rr.Code, "Body: %s", rr.Body.String())

	var resp httputil.Response
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)

	mockDB.ExpectationsWereMet(t)
}

func TestEquipmentHandler_CheckIn(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	now := time.Now()
	holder := "user-7"
	mockDB.ExpectBegin()
	mockDB.Mock.ExpectQuery("FOR UPDATE").
		WithArgs(testItemUUID).
		WillReturnRows(testutil.MockRows(itemCols...).
			AddRow("item-1", testItemUUID, "prod-1", nil, &holder,
				"checked_out", "good", nil, now, now))
	mockDB.Mock.ExpectExec("UPDATE equipment_items").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mockDB.Mock.ExpectQuery("INSERT INTO equipment_transactions").
		WillReturnRows(testutil.MockRows("created_at").AddRow(now))
	mockDB.ExpectCommit()

	r := newEquipmentRouter(mockDB.Database())
	rr := doJSON(t, r, "POST", "/items/"+testItemUUID+"/checkin",
		`{"location_id":"loc-1","condition":"fair"}`)

	assert.Equal(t, http.StatusOK, rr.Code, "Body: %s", rr.Body.String())

	mockDB.ExpectationsWereMet(t)
}

func TestEquipmentHandler_CheckIn_BadCondition(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	r := newEquipmentRouter(mockDB.Database())
	rr := doJSON(t, r, "POST", "/items/"+testItemUUID+"/checkin",
		`{"location_id":"loc-1","condition":"broken"}`)

	assert.Equal(t, http.StatusBadRequest, rr.Code, "Body: %s", rr.Body.String())

	mockDB.ExpectationsWereMet(t)
}

func TestEquipmentHandler_Remove_CheckedOutGuard(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	now := time.Now()
	holder := "user-7"
	mockDB.ExpectBegin()
	mockDB.Mock.ExpectQuery("FOR UPDATE").
		WithArgs(testItemUUID).
		WillReturnRows(testutil.MockRows(itemCols...).
			AddRow("item-1", testItemUUID, "prod-1", nil, &holder,
				"checked_out", "good", nil, now, now))
	mockDB.ExpectRollback()

	r := newEquipmentRouter(mockDB.Database())
	rr := doJSON(t, r, "POST", "/items/"+testItemUUID+"/remove",
		`{"reason":"stolen"}`)

	assert.Equal(t, http.StatusConflict, rr.Code, "Body: %s", rr.Body.String())

	var resp httputil.Response
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "ITEM_CHECKED_OUT", resp.Error.Code)

	mockDB.ExpectationsWereMet(t)
}
