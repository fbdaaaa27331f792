package service

import (
	"github.com/lendstock/lendstock-backend/internal/inventory/repository"
	"github.com/lendstock/lendstock-backend/pkg/errors"
)

// OperationResult is the uniform outcome envelope of every lifecycle
// mutation. Failures are carried as data, not raised: the handler turns
// Err into the HTTP error body, so no domain failure crosses the service
// boundary as a panic or a bare error.
type OperationResult struct {
	Success bool                      `json:"success"`
	Message string                    `json:"message,omitempty"`
	Code    string                    `json:"code,omitempty"`
	Item    *repository.EquipmentItem `json:"item,omitempty"`
	Bulk    *BulkResult               `json:"bulk,omitempty"`

	// Err is the underlying error for HTTP status mapping
	Err *errors.AppError `json:"-"`
}

// BulkFailure describes one failed item of a bulk operation
type BulkFailure struct {
	UUID    string `json:"uuid"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// BulkResult collects per-item outcomes of a bulk operation. Bulk
// operations are deliberately not atomic: valid items go through even
// when others fail.
type BulkResult struct {
	Succeeded []string      `json:"succeeded"`
	Failed    []BulkFailure `json:"failed"`
}

func resultOK(message string, item *repository.EquipmentItem) *OperationResult {
	return &OperationResult{
		Success: true,
		Message: message,
		Item:    item,
	}
}

func resultErr(err error) *OperationResult {
	var appErr *errors.AppError
	if !errors.As(err, &appErr) {
		appErr = errors.Internal("operation failed")
	}

	return &OperationResult{
		Success: false,
		Message: appErr.Message,
		Code:    appErr.Code,
		Err:     appErr,
	}
}
