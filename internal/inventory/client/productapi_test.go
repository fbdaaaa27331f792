package client_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lendstock/lendstock-backend/internal/inventory/client"
	"github.com/lendstock/lendstock-backend/pkg/config"
	"github.com/lendstock/lendstock-backend/pkg/errors"
	"github.com/lendstock/lendstock-backend/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(baseURL string, maxRetries int) *client.ProductAPIClient {
	return client.NewProductAPIClient(&config.ProductAPIConfig{
		BaseURL:    baseURL,
		Timeout:    time.Second,
		MaxRetries: maxRetries,
		RetryDelay: time.Millisecond,
	}, logger.New("test", "development"))
}

func TestProductAPIClient_LookupUPC(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "123456789012", r.URL.Query().Get("upc"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"items":[{"title":"USB Microscope","description":"1000x digital microscope","brand":"Celestron","category":"Optics","images":["http://img.example/scope.png","http://img.example/scope2.png"]}]}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL, 3)
	info, err := c.LookupUPC(context.Background(), "123456789012")
	require.NoError(t, err)

	assert.Equal(t, "123456789012", info.UPC)
	assert.Equal(t, "USB Microscope", info.Name)
	assert.Equal(t, "Celestron", info.Manufacturer)
	assert.Equal(t, "Optics", info.Category)
	assert.Equal(t, "http://img.example/scope.png", info.ImageURL)
}

func TestProductAPIClient_LookupUPC_RetriesOnServerError(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"items":[{"title":"Soldering Iron","brand":"Hakko"}]}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL, 3)
	info, err := c.LookupUPC(context.Background(), "12345678")
	require.NoError(t, err)
	assert.Equal(t, "Soldering Iron", info.Name)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestProductAPIClient_LookupUPC_NotFoundNoRetry(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	c := newTestClient(server.URL, 3)
	_, err := c.LookupUPC(context.Background(), "12345678")

	var appErr *errors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
	// A definitive answer must not be retried
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestProductAPIClient_LookupUPC_EmptyItems(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"items":[]}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL, 3)
	_, err := c.LookupUPC(context.Background(), "12345678")

	var appErr *errors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}

func TestProductAPIClient_LookupUPC_GivesUpAfterRetries(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	c := newTestClient(server.URL, 3)
	_, err := c.LookupUPC(context.Background(), "12345678")

	var appErr *errors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
	// Initial attempt plus three retries
	assert.Equal(t, int32(4), atomic.LoadInt32(&calls))
}
