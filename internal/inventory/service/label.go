package service

import (
	"bytes"
	"context"
	"fmt"

	"github.com/go-pdf/fpdf"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lendstock/lendstock-backend/internal/inventory/domain"
	"github.com/lendstock/lendstock-backend/internal/inventory/events"
	"github.com/lendstock/lendstock-backend/internal/inventory/repository"
	"github.com/lendstock/lendstock-backend/pkg/database"
	"github.com/lendstock/lendstock-backend/pkg/errors"
	"github.com/lendstock/lendstock-backend/pkg/logger"
	qrcode "github.com/skip2/go-qrcode"
)

const (
	// defaultQRSize is the PNG edge length in pixels when the caller
	// does not specify one
	defaultQRSize = 256

	// maxBatchSize caps how many items one batch request may create
	maxBatchSize = 500

	// maxSheetLabels caps how many provisional labels one sheet request
	// may issue
	maxSheetLabels = 280

	// Sheet layout: A4 portrait, 4 columns by 7 rows of labels per page
	sheetCols     = 4
	sheetRows     = 7
	labelsPerPage = sheetCols * sheetRows
	sheetMarginMM = 10.0
	labelWidthMM  = 47.5
	labelHeightMM = 39.5
	qrEdgeMM      = 30.0
)

// LabelService manages QR label identities: generation, rendering,
// batch item creation, relabeling, and printable sheets of unbound labels
type LabelService struct {
	db          *database.DB
	itemRepo    *repository.ItemRepository
	historyRepo *repository.UUIDHistoryRepository
	queueRepo   *repository.PrintQueueRepository
	productRepo *repository.ProductRepository
	publisher   *events.EquipmentEventPublisher
	logger      *logger.Logger
}

// NewLabelService creates a new label service
func NewLabelService(
	db *database.DB,
	itemRepo *repository.ItemRepository,
	historyRepo *repository.UUIDHistoryRepository,
	queueRepo *repository.PrintQueueRepository,
	productRepo *repository.ProductRepository,
	publisher *events.EquipmentEventPublisher,
	log *logger.Logger,
) *LabelService {
	return &LabelService{
		db:          db,
		itemRepo:    itemRepo,
		historyRepo: historyRepo,
		queueRepo:   queueRepo,
		productRepo: productRepo,
		publisher:   publisher,
		logger:      log,
	}
}

// GenerateUUID returns a fresh lowercase RFC 4122 version-4 UUID
func (s *LabelService) GenerateUUID() string {
	return uuid.New().String()
}

// GenerateItemQR renders a label UUID as a PNG QR code. The highest
// error-correction level keeps labels scannable after wear.
func (s *LabelService) GenerateItemQR(itemUUID string, size int) ([]byte, error) {
	if err := validateUUID(itemUUID); err != nil {
		return nil, err
	}
	if size <= 0 {
		size = defaultQRSize
	}

	png, err := qrcode.Encode(itemUUID, qrcode.Highest, size)
	if err != nil {
		return nil, errors.Internal("failed to render QR code")
	}

	return png, nil
}

// CreateItemBatch creates count items of a product, each with a fresh
// UUID, an active history row, and a print-queue entry. The whole batch
// is one transaction: any failure rolls everything back.
func (s *LabelService) CreateItemBatch(ctx context.Context, productID string, count int, locationID *string, processorID string) ([]*repository.EquipmentItem, error) {
	if count < 1 || count > maxBatchSize {
		return nil, errors.BadRequest(fmt.Sprintf("count must be between 1 and %d", maxBatchSize))
	}

	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	items := make([]*repository.EquipmentItem, 0, count)
	uuids := make([]string, 0, count)

	err = s.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		for i := 0; i < count; i++ {
			labelUUID := s.GenerateUUID()

			item := &repository.EquipmentItem{
				UUID:            labelUUID,
				ProductID:       product.ID,
				LocationID:      locationID,
				Status:          domain.StatusAvailable,
				ConditionStatus: domain.ConditionGood,
			}
			if err := s.itemRepo.CreateTx(ctx, tx, item); err != nil {
				return err
			}

			entry := &repository.UUIDHistoryEntry{
				ItemID:    item.ID,
				UUID:      labelUUID,
				IsActive:  true,
				CreatedBy: processorID,
			}
			if err := s.historyRepo.CreateTx(ctx, tx, entry); err != nil {
				return err
			}

			queued := &repository.PrintQueueEntry{
				ItemID:   item.ID,
				ItemUUID: labelUUID,
				QueuedBy: processorID,
			}
			if err := s.queueRepo.InsertTx(ctx, tx, queued); err != nil {
				return err
			}

			items = append(items, item)
			uuids = append(uuids, labelUUID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	location := ""
	if locationID != nil {
		location = *locationID
	}
	s.publisher.PublishCreated(ctx, product.ID, uuids, location, processorID)
	s.logger.Info().
		Str("product_id", product.ID).
		Int("count", count).
		Str("processor", processorID).
		Msg("item batch created")

	return items, nil
}

// RegenerateQRForItem issues a new label identity for an item: the old
// history row is retired with who/why/when, a new active row is inserted,
// the item's uuid is replaced, and a reprint is queued. Atomic.
func (s *LabelService) RegenerateQRForItem(ctx context.Context, itemID, reason, processorID string) (*repository.EquipmentItem, error) {
	if reason == "" {
		return nil, errors.BadRequest("reason is required")
	}

	var updated *repository.EquipmentItem
	var oldUUID string

	err := s.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		item, err := s.itemRepo.GetByIDForUpdateTx(ctx, tx, itemID)
		if err != nil {
			return err
		}
		if item.Status.Terminal() {
			return errors.AlreadyRemoved(item.UUID)
		}

		// Checked under the same row lock as the item update, so a
		// concurrent reprint cannot slip in a second pending entry
		hasQueued, err := s.queueRepo.HasUnprintedTx(ctx, tx, item.ID)
		if err != nil {
			return err
		}

		oldUUID = item.UUID
		newUUID := s.GenerateUUID()

		if err := s.historyRepo.DeactivateActiveTx(ctx, tx, item.ID, processorID, reason); err != nil {
			return err
		}

		entry := &repository.UUIDHistoryEntry{
			ItemID:    item.ID,
			UUID:      newUUID,
			IsActive:  true,
			CreatedBy: processorID,
		}
		if err := s.historyRepo.CreateTx(ctx, tx, entry); err != nil {
			return err
		}

		item.UUID = newUUID
		if err := s.itemRepo.UpdateStateTx(ctx, tx, item); err != nil {
			return err
		}

		if !hasQueued {
			queued := &repository.PrintQueueEntry{
				ItemID:   item.ID,
				ItemUUID: newUUID,
				QueuedBy: processorID,
			}
			if err := s.queueRepo.InsertTx(ctx, tx, queued); err != nil {
				return err
			}
		}

		updated = item
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publisher.PublishRelabeled(ctx, updated.ID, oldUUID, updated.UUID, processorID)
	s.logger.Info().
		Str("item_id", updated.ID).
		Str("old_uuid", oldUUID).
		Str("new_uuid", updated.UUID).
		Str("processor", processorID).
		Msg("item relabeled")

	return updated, nil
}

// BindProvisionalUUID attaches a pre-printed sheet label to an item,
// replacing the item's current identity. The old history row is retired
// and the provisional row becomes the active one.
func (s *LabelService) BindProvisionalUUID(ctx context.Context, labelUUID, itemID, processorID string) (*repository.EquipmentItem, error) {
	if err := validateUUID(labelUUID); err != nil {
		return nil, err
	}

	var updated *repository.EquipmentItem
	var oldUUID string

	err := s.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		item, err := s.itemRepo.GetByIDForUpdateTx(ctx, tx, itemID)
		if err != nil {
			return err
		}
		if item.Status.Terminal() {
			return errors.AlreadyRemoved(item.UUID)
		}

		oldUUID = item.UUID

		if err := s.historyRepo.DeactivateActiveTx(ctx, tx, item.ID, processorID, "replaced by sheet label"); err != nil {
			return err
		}
		if err := s.historyRepo.BindProvisionalTx(ctx, tx, labelUUID, item.ID); err != nil {
			return err
		}

		item.UUID = labelUUID
		if err := s.itemRepo.UpdateStateTx(ctx, tx, item); err != nil {
			return err
		}

		updated = item
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publisher.PublishRelabeled(ctx, updated.ID, oldUUID, labelUUID, processorID)

	return updated, nil
}

// GeneratePrintableSheet issues count fresh unbound label UUIDs, records
// them as provisional history rows in one transaction, and renders them
// as a paginated A4 PDF, 28 labels per page.
func (s *LabelService) GeneratePrintableSheet(ctx context.Context, count int, processorID string) ([]byte, []string, error) {
	if count < 1 || count > maxSheetLabels {
		return nil, nil, errors.BadRequest(fmt.Sprintf("count must be between 1 and %d", maxSheetLabels))
	}

	uuids := make([]string, count)
	for i := range uuids {
		uuids[i] = s.GenerateUUID()
	}

	err := s.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		for _, labelUUID := range uuids {
			entry := &repository.UUIDHistoryEntry{
				ItemID:    "",
				UUID:      labelUUID,
				IsActive:  false,
				CreatedBy: processorID,
			}
			if err := s.historyRepo.CreateTx(ctx, tx, entry); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	pdf, err := s.renderSheet(uuids)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info().
		Int("count", count).
		Str("processor", processorID).
		Msg("printable label sheet generated")

	return pdf, uuids, nil
}

func (s *LabelService) renderSheet(uuids []string) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Helvetica", "", 5)

	for i, labelUUID := range uuids {
		slot := i % labelsPerPage
		if slot == 0 {
			pdf.AddPage()
		}

		png, err := qrcode.Encode(labelUUID, qrcode.Highest, defaultQRSize)
		if err != nil {
			return nil, errors.Internal("failed to render QR code")
		}

		col := slot % sheetCols
		row := slot / sheetCols
		x := sheetMarginMM + float64(col)*labelWidthMM
		y := sheetMarginMM + float64(row)*labelHeightMM

		opts := fpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader(labelUUID, opts, bytes.NewReader(png))
		qrX := x + (labelWidthMM-qrEdgeMM)/2
		pdf.ImageOptions(labelUUID, qrX, y, qrEdgeMM, qrEdgeMM, false, opts, 0, "")

		// UUID text under the code so labels stay usable if the QR is damaged
		pdf.SetXY(x, y+qrEdgeMM+1)
		pdf.CellFormat(labelWidthMM, 3, labelUUID, "", 0, "C", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, errors.Internal("failed to write PDF")
	}

	return buf.Bytes(), nil
}
