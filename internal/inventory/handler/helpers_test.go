package handler_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-chi/chi/v5"
	"github.com/lendstock/lendstock-backend/internal/inventory/client"
	"github.com/lendstock/lendstock-backend/internal/inventory/handler"
	"github.com/lendstock/lendstock-backend/internal/inventory/repository"
	"github.com/lendstock/lendstock-backend/internal/inventory/service"
	"github.com/lendstock/lendstock-backend/pkg/actor"
	"github.com/lendstock/lendstock-backend/pkg/config"
	"github.com/lendstock/lendstock-backend/pkg/database"
	"github.com/lendstock/lendstock-backend/pkg/logger"
	"github.com/lendstock/lendstock-backend/pkg/testutil"
)

const testItemUUID = "9b2f0c1e-5a44-4f7e-9a65-0b1dca5a8f11"

var itemCols = []string{
	"id", "uuid", "product_id", "location_id", "current_user_id",
	"status", "condition_status", "student_label", "created_at", "updated_at",
}

func newEquipmentRouter(db *database.DB) *chi.Mux {
	log := logger.New("test", "development")
	svc := service.NewEquipmentService(
		db,
		repository.NewItemRepository(db),
		repository.NewTransactionRepository(db),
		repository.NewPrintQueueRepository(db),
		repository.NewUserDirectoryRepository(db),
		nil,
		log,
	)
	h := handler.NewEquipmentHandler(svc, log)

	r := chi.NewRouter()
	r.Use(actor.Middleware)
	r.Post("/items/{uuid}/checkout", h.CheckOut)
	r.Post("/items/{uuid}/checkin", h.CheckIn)
	r.Post("/items/{uuid}/remove", h.Remove)
	return r
}

func newScanRouter(db *database.DB, catalogURL string) *chi.Mux {
	log := logger.New("test", "development")
	catalog := client.NewProductAPIClient(&config.ProductAPIConfig{
		BaseURL:    catalogURL,
		MaxRetries: 1,
	}, log)
	svc := service.NewScanService(
		repository.NewItemRepository(db),
		repository.NewProductRepository(db),
		repository.NewLocationRepository(db),
		repository.NewUserDirectoryRepository(db),
		catalog,
		log,
	)
	h := handler.NewScanHandler(svc, log)

	r := chi.NewRouter()
	r.Use(actor.Middleware)
	r.Post("/scan", h.Process)
	return r
}

// doJSON performs a JSON request with the acting user headers set.
func doJSON(t *testing.T, r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Actor-ID", "proc-1")
	req.Header.Set("X-Actor-First-Name", "Robin")
	req.Header.Set("X-Actor-Last-Name", "Okafor")
	req.Header.Set("X-Actor-Email", "robin.okafor@lendstock.local")

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func productRows(id, name string, upc *string) *sqlmock.Rows {
	now := time.Now()
	return testutil.MockRows(
		"id", "name", "description", "manufacturer", "model", "category",
		"upc", "image_url", "is_consumable", "is_active", "created_at", "updated_at",
	).AddRow(id, name, nil, nil, nil, "Electronics", upc, nil, false, true, now, now)
}
