package command

import (
	"context"
	"fmt"
	"math"

	"github.com/caterstock/billing/internal/inventory/domain"
	"github.com/caterstock/billing/pkg/logger"
)

// DeductForSaleCommand represents the command to deduct inventory for a sale
type DeductForSaleCommand struct {
	SaleID uint
	Items  []domain.DeductionItem
}

// DeductForSaleHandler is the inventory deduction engine. Given a sale and
// its top-level line items it deducts the correct physical quantity for every
// leaf product, appends a ledger row per deduction and refreshes the
// per-product aggregate. It performs no partial commit of its own: any error
// aborts the whole call, and the caller is expected to wrap it in a
// transaction.
type DeductForSaleHandler struct {
	batches    domain.BatchRepository
	history    domain.DeductionHistoryRepository
	aggregates domain.AggregateRepository
}

// NewDeductForSaleHandler creates a new deduct for sale handler
func NewDeductForSaleHandler(
	batches domain.BatchRepository,
	history domain.DeductionHistoryRepository,
	aggregates domain.AggregateRepository,
) *DeductForSaleHandler {
	return &DeductForSaleHandler{
		batches:    batches,
		history:    history,
		aggregates: aggregates,
	}
}

// Handle executes the deduction for every item of the sale. Items are
// processed strictly in order so FIFO batch selection stays deterministic.
func (h *DeductForSaleHandler) Handle(ctx context.Context, cmd DeductForSaleCommand) error {
	if cmd.SaleID == 0 {
		return fmt.Errorf("sale_id is required")
	}
	if len(cmd.Items) == 0 {
		return fmt.Errorf("at least one item is required")
	}

	for _, item := range cmd.Items {
		if err := h.deductItem(ctx, cmd.SaleID, item, false); err != nil {
			return err
		}
	}

	return nil
}

func (h *DeductForSaleHandler) deductItem(ctx context.Context, saleID uint, item domain.DeductionItem, nested bool) error {
	// A composite decomposes into independent regular deductions; its header
	// row never touches stock. Components without a batch label inherit the
	// composite's.
	if item.IsComposite || len(item.Components) > 0 {
		for _, component := range item.Components {
			c := component
			if c.BatchLabel == "" {
				c.BatchLabel = item.BatchLabel
			}
			if err := h.deductItem(ctx, saleID, c, true); err != nil {
				return err
			}
		}
		return nil
	}

	if item.ProductID == nil || *item.ProductID == 0 || item.Quantity <= 0 {
		if nested {
			// Defensive no-op: a malformed mix component is skipped, not fatal.
			logger.Warn(ctx).
				Str("item", item.Name).
				Float64("quantity", item.Quantity).
				Msg("Skipping invalid mix component")
			return nil
		}
		return fmt.Errorf("%w: %q", domain.ErrInvalidDeductionItem, item.Name)
	}

	return h.deductRegular(ctx, saleID, item)
}

func (h *DeductForSaleHandler) deductRegular(ctx context.Context, saleID uint, item domain.DeductionItem) error {
	productID := *item.ProductID

	batch, err := h.selectBatch(productID, item.BatchLabel)
	if err != nil {
		return err
	}
	if batch == nil {
		return &domain.BatchNotFoundError{ProductID: productID, Label: item.BatchLabel}
	}

	// A single selected batch must cover the full requirement; the engine
	// never spills one deduction across multiple batches.
	if batch.Quantity+domain.QuantityEpsilon < item.Quantity {
		return &domain.InsufficientStockError{
			ProductID:  productID,
			Name:       item.Name,
			BatchLabel: batch.Label,
			Available:  batch.Quantity,
			Required:   item.Quantity,
		}
	}

	newQuantity := batch.Quantity - item.Quantity
	if newQuantity <= domain.QuantityEpsilon {
		// No dust rows: an exhausted batch is removed entirely.
		if err := h.batches.Delete(batch.ID); err != nil {
			return fmt.Errorf("failed to delete exhausted batch %d: %w", batch.ID, err)
		}
		newQuantity = 0
	} else {
		newQuantity = round3(newQuantity)
		if err := h.batches.UpdateQuantity(batch.ID, newQuantity); err != nil {
			return fmt.Errorf("failed to update batch %d quantity: %w", batch.ID, err)
		}
	}

	record := &domain.DeductionRecord{
		ProductID:     productID,
		Quantity:      -item.Quantity,
		BatchLabel:    batch.Label,
		CostPerUnit:   batch.CostPerUnit,
		Value:         -(item.Quantity * batch.CostPerUnit),
		Unit:          domain.NormalizeUnit(item.Unit, batch.Unit),
		Note:          fmt.Sprintf("Caterer sale deduction | Sale ID: %d | Item: %s", saleID, item.Name),
		ReferenceType: domain.ReferenceTypeCatererSale,
		ReferenceID:   saleID,
	}
	if err := h.history.Append(record); err != nil {
		return fmt.Errorf("failed to append deduction record: %w", err)
	}

	if err := h.refreshAggregate(productID); err != nil {
		return fmt.Errorf("failed to refresh aggregate for product %d: %w", productID, err)
	}

	h.verifyPersistedQuantity(ctx, batch.ID, newQuantity)

	logger.Debug(ctx).
		Uint("sale_id", saleID).
		Uint("product_id", productID).
		Str("batch", batch.Label).
		Float64("deducted", item.Quantity).
		Float64("remaining", newQuantity).
		Msg("Batch deducted")

	return nil
}

// selectBatch applies the allocation policy: the oldest positive-quantity
// batch with the exact requested label, falling back to plain FIFO by
// creation time when the label matches nothing or none was given. Returns
// (nil, nil) when the product has no stock at all.
func (h *DeductForSaleHandler) selectBatch(productID uint, label string) (*domain.InventoryBatch, error) {
	if label != "" {
		batch, err := h.batches.FindByLabel(productID, label)
		if err != nil {
			return nil, fmt.Errorf("failed to look up batch %q: %w", label, err)
		}
		if batch != nil {
			return batch, nil
		}
	}

	batch, err := h.batches.FindOldestWithStock(productID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up oldest batch for product %d: %w", productID, err)
	}
	return batch, nil
}

// refreshAggregate recomputes the product snapshot from scratch over the
// remaining live non-merged batches and upserts it whole.
func (h *DeductForSaleHandler) refreshAggregate(productID uint) error {
	batches, err := h.batches.FindLiveByProduct(productID)
	if err != nil {
		return err
	}

	var totalQuantity, totalValue float64
	for _, b := range batches {
		totalQuantity += b.Quantity
		totalValue += b.Quantity * b.CostPerUnit
	}

	var averageCost float64
	if totalQuantity > 0 {
		averageCost = totalValue / totalQuantity
	}

	return h.aggregates.Upsert(&domain.InventoryAggregate{
		ProductID:     productID,
		TotalQuantity: totalQuantity,
		TotalValue:    totalValue,
		AverageCost:   averageCost,
	})
}

// verifyPersistedQuantity re-reads the batch and compares against the
// expected remainder. A mismatch is logged, not fatal: hardening it would
// change externally observable behavior.
func (h *DeductForSaleHandler) verifyPersistedQuantity(ctx context.Context, batchID uint, expected float64) {
	persisted, err := h.batches.FindByID(batchID)
	if err != nil {
		logger.Warn(ctx).Err(err).Uint("batch_id", batchID).Msg("Failed to re-read batch after deduction")
		return
	}

	if expected == 0 {
		if persisted != nil {
			logger.Warn(ctx).
				Uint("batch_id", batchID).
				Float64("persisted", persisted.Quantity).
				Msg("Exhausted batch still present after deduction")
		}
		return
	}

	if persisted == nil {
		logger.Warn(ctx).Uint("batch_id", batchID).Msg("Batch missing after deduction")
		return
	}

	if math.Abs(persisted.Quantity-expected) > domain.QuantityEpsilon {
		logger.Warn(ctx).
			Uint("batch_id", batchID).
			Float64("expected", expected).
			Float64("persisted", persisted.Quantity).
			Msg("Batch quantity read-back mismatch after deduction")
	}
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
