// Package client talks to the external product catalog used to resolve
// UPC barcodes that are not in the local products table.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/lendstock/lendstock-backend/pkg/config"
	"github.com/lendstock/lendstock-backend/pkg/errors"
	"github.com/lendstock/lendstock-backend/pkg/logger"
)

// ProductInfo is the catalog's description of a scanned UPC
type ProductInfo struct {
	UPC          string `json:"upc"`
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	Manufacturer string `json:"manufacturer,omitempty"`
	Category     string `json:"category,omitempty"`
	ImageURL     string `json:"image_url,omitempty"`
}

// ProductAPIClient queries the external UPC catalog with bounded retries.
// Lookups are best effort: the scanner degrades to not-found when the
// catalog is unreachable, it never blocks a scan indefinitely.
type ProductAPIClient struct {
	baseURL    string
	httpClient *http.Client
	maxRetries int
	retryDelay time.Duration
	logger     *logger.Logger
}

// NewProductAPIClient creates a new catalog client
func NewProductAPIClient(cfg *config.ProductAPIConfig, log *logger.Logger) *ProductAPIClient {
	return &ProductAPIClient{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		logger:     log,
	}
}

// lookupResponse mirrors the catalog's wire format
type lookupResponse struct {
	Items []struct {
		Title       string   `json:"title"`
		Description string   `json:"description"`
		Brand       string   `json:"brand"`
		Category    string   `json:"category"`
		Images      []string `json:"images"`
	} `json:"items"`
}

// LookupUPC resolves a UPC against the external catalog. Transient
// failures are retried with a fixed delay; a UPC the catalog does not
// know returns a not-found error.
func (c *ProductAPIClient) LookupUPC(ctx context.Context, upc string) (*ProductInfo, error) {
	endpoint := fmt.Sprintf("%s?upc=%s", c.baseURL, url.QueryEscape(upc))

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.retryDelay):
			}
		}

		info, retryable, err := c.lookup(ctx, endpoint, upc)
		if err == nil {
			return info, nil
		}
		if !retryable {
			return nil, err
		}

		lastErr = err
		c.logger.Warn().
			Err(err).
			Str("upc", upc).
			Int("attempt", attempt+1).
			Msg("catalog lookup failed, retrying")
	}

	c.logger.Error().Err(lastErr).Str("upc", upc).Msg("catalog unreachable, giving up")
	return nil, errors.NotFound("product")
}

func (c *ProductAPIClient) lookup(ctx context.Context, endpoint, upc string) (*ProductInfo, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, true, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, false, errors.NotFound("product")
	case resp.StatusCode >= 500:
		return nil, true, fmt.Errorf("catalog returned status %d", resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, false, fmt.Errorf("catalog returned status %d", resp.StatusCode)
	}

	var body lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, false, fmt.Errorf("failed to decode catalog response: %w", err)
	}

	if len(body.Items) == 0 {
		return nil, false, errors.NotFound("product")
	}

	item := body.Items[0]
	info := &ProductInfo{
		UPC:          upc,
		Name:         item.Title,
		Description:  item.Description,
		Manufacturer: item.Brand,
		Category:     item.Category,
	}
	if len(item.Images) > 0 {
		info.ImageURL = item.Images[0]
	}

	return info, false, nil
}
