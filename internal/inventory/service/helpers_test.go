package service_test

import (
	"database/sql"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lendstock/lendstock-backend/pkg/testutil"
)

func errNoRows() error {
	return sql.ErrNoRows
}

func productRows(id, name string, upc *string) *sqlmock.Rows {
	now := time.Now()
	cols := []string{
		"id", "name", "description", "manufacturer", "model", "category",
		"upc", "image_url", "is_consumable", "is_active", "created_at", "updated_at",
	}
	return testutil.MockRows(cols...).
		AddRow(id, name, nil, nil, nil, "Electronics", upc, nil, false, true, now, now)
}
