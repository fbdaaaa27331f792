package service

import (
	"context"
	"regexp"
	"time"

	"github.com/lendstock/lendstock-backend/internal/inventory/client"
	"github.com/lendstock/lendstock-backend/internal/inventory/repository"
	"github.com/lendstock/lendstock-backend/pkg/errors"
	"github.com/lendstock/lendstock-backend/pkg/logger"
)

// Scan input classifications
const (
	ScanTypeAuto = "auto"
	ScanTypeQR   = "qr"
	ScanTypeUPC  = "upc"
)

var (
	// uuidV4Pattern matches a lowercase canonical version-4 UUID
	uuidV4Pattern = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)

	// upcPattern matches EAN-8 and UPC-A/EAN-13/GTIN-14 digit runs
	upcPattern = regexp.MustCompile(`^(\d{8}|\d{12,14})$`)
)

// ScanResult is the uniform envelope for every scan outcome
type ScanResult struct {
	Type             string                    `json:"type"`
	Found            bool                      `json:"found"`
	Item             *repository.EquipmentItem `json:"item,omitempty"`
	Product          *repository.Product       `json:"product,omitempty"`
	Location         *repository.Location      `json:"location,omitempty"`
	Holder           *repository.DirectoryUser `json:"holder,omitempty"`
	AvailableActions []string                  `json:"available_actions,omitempty"`
	CanAddToCatalog  bool                      `json:"can_add_to_catalog"`
	External         *client.ProductInfo       `json:"external,omitempty"`
	Timestamp        time.Time                 `json:"timestamp"`
}

// ScanService dispatches scanner input: QR labels resolve to equipment
// items with their context and permitted actions, UPC barcodes resolve
// to products, falling back to the external catalog for unknown codes
type ScanService struct {
	itemRepo     *repository.ItemRepository
	productRepo  *repository.ProductRepository
	locationRepo *repository.LocationRepository
	userRepo     *repository.UserDirectoryRepository
	catalog      *client.ProductAPIClient
	logger       *logger.Logger
}

// NewScanService creates a new scan service
func NewScanService(
	itemRepo *repository.ItemRepository,
	productRepo *repository.ProductRepository,
	locationRepo *repository.LocationRepository,
	userRepo *repository.UserDirectoryRepository,
	catalog *client.ProductAPIClient,
	log *logger.Logger,
) *ScanService {
	return &ScanService{
		itemRepo:     itemRepo,
		productRepo:  productRepo,
		locationRepo: locationRepo,
		userRepo:     userRepo,
		catalog:      catalog,
		logger:       log,
	}
}

// Classify decides how to interpret raw scanner input: canonical UUIDs
// are QR labels, 8 or 12-14 digit runs are UPC barcodes, and anything
// else is treated as a QR payload so the not-found path reports it.
func Classify(data string) string {
	if uuidV4Pattern.MatchString(data) {
		return ScanTypeQR
	}
	if upcPattern.MatchString(data) {
		return ScanTypeUPC
	}
	return ScanTypeQR
}

// ProcessScan resolves scanner input into the uniform scan envelope.
// scanType may force qr or upc handling; auto classifies first.
func (s *ScanService) ProcessScan(ctx context.Context, data, scanType string) (*ScanResult, error) {
	if data == "" {
		return nil, errors.BadRequest("scan data is required")
	}

	switch scanType {
	case "", ScanTypeAuto:
		scanType = Classify(data)
	case ScanTypeQR, ScanTypeUPC:
	default:
		return nil, errors.BadRequest("scan type must be one of: auto, qr, upc")
	}

	if scanType == ScanTypeUPC {
		return s.scanUPC(ctx, data), nil
	}
	return s.scanQR(ctx, data), nil
}

func (s *ScanService) scanQR(ctx context.Context, labelUUID string) *ScanResult {
	result := &ScanResult{
		Type:      ScanTypeQR,
		Timestamp: time.Now().UTC(),
	}

	item, err := s.itemRepo.GetByUUID(ctx, labelUUID)
	if err != nil {
		return result
	}

	result.Found = true
	result.Item = item
	result.AvailableActions = item.Status.AvailableActions()

	if product, err := s.productRepo.GetByID(ctx, item.ProductID); err == nil {
		result.Product = product
	}
	if item.LocationID != nil {
		if loc, err := s.locationRepo.GetByID(ctx, *item.LocationID); err == nil {
			result.Location = loc
		}
	}
	if item.CurrentUserID != nil {
		if holder, err := s.userRepo.Get(ctx, *item.CurrentUserID); err == nil {
			result.Holder = holder
		}
	}

	return result
}

func (s *ScanService) scanUPC(ctx context.Context, upc string) *ScanResult {
	result := &ScanResult{
		Type:      ScanTypeUPC,
		Timestamp: time.Now().UTC(),
	}

	product, err := s.productRepo.GetByUPC(ctx, upc)
	if err == nil {
		result.Found = true
		result.Product = product
		return result
	}

	info, err := s.catalog.LookupUPC(ctx, upc)
	if err != nil {
		// Catalog miss or outage both degrade to not-found
		s.logger.Debug().Str("upc", upc).Msg("upc unknown locally and externally")
		return result
	}

	result.Found = true
	result.External = info
	result.CanAddToCatalog = true

	return result
}
