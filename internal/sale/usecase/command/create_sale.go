package command

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	invdomain "github.com/caterstock/billing/internal/inventory/domain"
	invrepo "github.com/caterstock/billing/internal/inventory/repository"
	invcommand "github.com/caterstock/billing/internal/inventory/usecase/command"
	invquery "github.com/caterstock/billing/internal/inventory/usecase/query"
	"github.com/caterstock/billing/internal/sale/domain"
	"github.com/caterstock/billing/internal/sale/repository"
	"github.com/caterstock/billing/kafka"
	"github.com/caterstock/billing/pkg/logger"
)

// CreateSaleCommand represents the command to create a sale
type CreateSaleCommand struct {
	Payload domain.SalePayload
}

// CreateSaleResult is returned only when the sale header, every line item,
// every charge, the payment, the full deduction and the consistency check all
// succeeded.
type CreateSaleResult struct {
	SaleID        uint    `json:"sale_id"`
	BillNumber    string  `json:"bill_number"`
	PaymentStatus string  `json:"payment_status"`
	TotalPaid     float64 `json:"total_paid"`
}

// CreateSaleHandler orchestrates one sale: it persists a fully consistent
// sale plus deducted inventory, or persists nothing. Everything between
// header insert and consistency check runs in a single transaction holding
// one connection; any error rolls the whole unit back and surfaces one typed
// error. The publisher and cache are optional post-commit side channels.
type CreateSaleHandler struct {
	db        *gorm.DB
	publisher *kafka.Publisher
	cache     *redis.Client
}

// NewCreateSaleHandler creates a new create sale handler
func NewCreateSaleHandler(db *gorm.DB, publisher *kafka.Publisher, cache *redis.Client) *CreateSaleHandler {
	return &CreateSaleHandler{db: db, publisher: publisher, cache: cache}
}

// Handle executes the create sale command
func (h *CreateSaleHandler) Handle(ctx context.Context, cmd CreateSaleCommand) (*CreateSaleResult, error) {
	if h.db == nil {
		return nil, domain.NewSaleError(domain.ErrCodeDBPoolNotFound, "database connection pool is not available", nil)
	}

	p := cmd.Payload

	// Input validation happens before any transaction opens.
	if p.CatererID == 0 {
		return nil, domain.NewSaleError(domain.ErrCodeMissingRequiredFields, "caterer_id is required", nil)
	}
	if len(p.Items) == 0 {
		return nil, domain.NewSaleError(domain.ErrCodeInvalidItems, "at least one item is required", nil)
	}

	billNumber := domain.NormalizeBillNumber(p.BillNumber)
	if billNumber == "" {
		billNumber = fmt.Sprintf("BILL-%s", strings.ToUpper(uuid.New().String()[:8]))
	}

	method := domain.NormalizePaymentMethod(p.PaymentMethod)
	paymentAmount := domain.DerivePaymentAmount(p.PaymentOption, p.GrandTotal, p.PaymentAmount)
	sellDate := parseDate(p.SellDate)
	paidAt := parseDate(p.PaymentDate)

	items := p.NormalizeItems()
	deductionItems := domain.BuildDeductionItems(items)

	var result CreateSaleResult

	err := h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sales := repository.NewGormSaleRepository(tx)
		inventory := invrepo.NewGormInventoryRepository(tx)

		sale := &domain.Sale{
			CatererID:         p.CatererID,
			BillNumber:        billNumber,
			SellDate:          sellDate,
			SubTotal:          p.SubTotal,
			TaxTotal:          p.TaxTotal,
			ItemsTotal:        p.ItemsTotal,
			OtherChargesTotal: p.OtherChargesTotal,
			GrandTotal:        p.GrandTotal,
			PaymentStatus:     domain.PaymentStatusPending,
		}
		if err := sales.Create(sale); err != nil {
			return fmt.Errorf("failed to insert sale header: %w", err)
		}

		if err := insertLineItems(sales, sale.ID, items); err != nil {
			return err
		}

		for _, cp := range p.OtherCharges {
			charge := cp.Normalize()
			charge.SaleID = sale.ID
			if err := sales.CreateCharge(&charge); err != nil {
				return fmt.Errorf("failed to insert charge %q: %w", charge.Name, err)
			}
		}

		payment := &domain.SalePayment{
			SaleID: sale.ID,
			Amount: paymentAmount,
			Method: method,
			PaidAt: paidAt,
		}
		if err := sales.CreatePayment(payment); err != nil {
			return fmt.Errorf("failed to insert payment: %w", err)
		}

		totalPaid, err := sales.SumPayments(sale.ID)
		if err != nil {
			return fmt.Errorf("failed to sum payments: %w", err)
		}
		status := domain.PaymentStatusFor(totalPaid, p.GrandTotal)
		if err := sales.UpdatePaymentStatus(sale.ID, status); err != nil {
			return fmt.Errorf("failed to update payment status: %w", err)
		}

		// Pre-check before mutating stock: a deficit produces a precise,
		// product-named error instead of a generic mid-deduction failure.
		checker := invquery.NewCheckSufficiencyHandler(inventory)
		statuses, err := checker.Handle(ctx, invquery.CheckSufficiencyQuery{Demands: flattenDemand(deductionItems)})
		if err != nil {
			return err
		}
		for _, s := range statuses {
			if !s.IsSufficient {
				return &invdomain.DeficitError{
					ProductID: s.ProductID,
					Name:      s.Name,
					Available: s.Available,
					Required:  s.Required,
				}
			}
		}

		engine := invcommand.NewDeductForSaleHandler(inventory, inventory, inventory)
		if err := engine.Handle(ctx, invcommand.DeductForSaleCommand{SaleID: sale.ID, Items: deductionItems}); err != nil {
			return err
		}

		verifier := invquery.NewVerifyDeductionsHandler(inventory)
		if err := verifier.Handle(invquery.VerifyDeductionsQuery{SaleID: sale.ID, Items: deductionItems}); err != nil {
			return err
		}

		result = CreateSaleResult{
			SaleID:        sale.ID,
			BillNumber:    billNumber,
			PaymentStatus: status,
			TotalPaid:     totalPaid,
		}
		return nil
	})
	if err != nil {
		saleErr := domain.Classify(err)
		logger.Error(ctx).
			Err(err).
			Str("code", string(saleErr.Code)).
			Str("bill_number", billNumber).
			Msg("Sale transaction rolled back")
		return nil, saleErr
	}

	h.afterCommit(ctx, &result, p.CatererID, p.GrandTotal, deductionItems)

	return &result, nil
}

// afterCommit runs the best-effort side channels: cache invalidation and the
// sale.completed event. Neither can fail the already committed sale.
func (h *CreateSaleHandler) afterCommit(ctx context.Context, result *CreateSaleResult, catererID uint, grandTotal float64, items []invdomain.DeductionItem) {
	invquery.InvalidateAggregates(ctx, h.cache, collectProductIDs(items))

	if h.publisher != nil {
		event := kafka.SaleCompletedEvent{
			SaleID:        result.SaleID,
			BillNumber:    result.BillNumber,
			CatererID:     catererID,
			GrandTotal:    grandTotal,
			TotalPaid:     result.TotalPaid,
			PaymentStatus: result.PaymentStatus,
			ItemCount:     len(items),
		}
		if err := h.publisher.PublishSaleCompleted(ctx, event); err != nil {
			logger.Warn(ctx).
				Err(err).
				Uint("sale_id", result.SaleID).
				Msg("Failed to publish sale completed event")
		}
	}

	logger.Info(ctx).
		Uint("sale_id", result.SaleID).
		Str("bill_number", result.BillNumber).
		Str("payment_status", result.PaymentStatus).
		Float64("total_paid", result.TotalPaid).
		Msg("Sale created")
}

// insertLineItems persists the line rows: a composite produces one
// parent-null header row carrying the serialized original component list,
// then one child row per component sharing a composite-group id. The group
// counter starts at 1 and is scoped to this call; no state is shared across
// concurrent sales.
func insertLineItems(sales domain.SaleRepository, saleID uint, items []domain.SaleItem) error {
	var compositeGroup uint

	for _, item := range items {
		if item.IsMix {
			compositeGroup++
			group := compositeGroup

			header := &domain.SaleLineItem{
				SaleID:         saleID,
				Name:           item.Name,
				Quantity:       item.Quantity,
				Unit:           item.Unit,
				Rate:           item.Rate,
				TaxPercent:     item.TaxPercent,
				TaxAmount:      item.TaxAmount,
				Amount:         itemAmount(item),
				BatchLabel:     item.BatchLabel,
				IsComposite:    true,
				CompositeGroup: &group,
				ComponentsRaw:  item.ComponentsRaw,
			}
			if err := sales.CreateLineItem(header); err != nil {
				return fmt.Errorf("failed to insert mix header %q: %w", item.Name, err)
			}

			for _, c := range item.Components {
				componentGroup := group
				parentID := header.ID
				row := &domain.SaleLineItem{
					SaleID:         saleID,
					ProductID:      c.ProductID,
					Name:           c.Name,
					Quantity:       c.Quantity,
					Unit:           c.Unit,
					Rate:           c.Rate,
					Amount:         c.Quantity * c.Rate,
					BatchLabel:     c.BatchLabel,
					CompositeGroup: &componentGroup,
					ParentLineID:   &parentID,
				}
				if err := sales.CreateLineItem(row); err != nil {
					return fmt.Errorf("failed to insert mix component %q: %w", c.Name, err)
				}
			}
			continue
		}

		row := &domain.SaleLineItem{
			SaleID:     saleID,
			ProductID:  item.ProductID,
			Name:       item.Name,
			Quantity:   item.Quantity,
			Unit:       item.Unit,
			Rate:       item.Rate,
			TaxPercent: item.TaxPercent,
			TaxAmount:  item.TaxAmount,
			Amount:     itemAmount(item),
			BatchLabel: item.BatchLabel,
		}
		if err := sales.CreateLineItem(row); err != nil {
			return fmt.Errorf("failed to insert line item %q: %w", item.Name, err)
		}
	}

	return nil
}

// itemAmount uses the declared total when the item carries one, otherwise
// quantity times rate plus tax.
func itemAmount(item domain.SaleItem) float64 {
	if item.Total > 0 {
		return item.Total
	}
	return item.Quantity*item.Rate + item.TaxAmount
}

// flattenDemand expands composites into per-product leaf demand for the
// sufficiency pre-check. Batch labels are deliberately not carried over: the
// engine falls back to FIFO when a requested label matches nothing, so a
// label-scoped pre-check would reject sales the engine can serve from other
// batches.
func flattenDemand(items []invdomain.DeductionItem) []invquery.ProductDemand {
	var demands []invquery.ProductDemand

	var addLeaf func(item invdomain.DeductionItem)
	addLeaf = func(item invdomain.DeductionItem) {
		if item.IsComposite || len(item.Components) > 0 {
			for _, c := range item.Components {
				addLeaf(c)
			}
			return
		}
		if item.ProductID == nil || *item.ProductID == 0 || item.Quantity <= 0 {
			return
		}
		demands = append(demands, invquery.ProductDemand{
			ProductID: *item.ProductID,
			Name:      item.Name,
			Quantity:  item.Quantity,
		})
	}

	for _, item := range items {
		addLeaf(item)
	}

	return demands
}

// collectProductIDs gathers every leaf product touched by the sale
func collectProductIDs(items []invdomain.DeductionItem) []uint {
	seen := make(map[uint]bool)
	var ids []uint

	var walk func(item invdomain.DeductionItem)
	walk = func(item invdomain.DeductionItem) {
		if item.IsComposite || len(item.Components) > 0 {
			for _, c := range item.Components {
				walk(c)
			}
			return
		}
		if item.ProductID != nil && *item.ProductID != 0 && !seen[*item.ProductID] {
			seen[*item.ProductID] = true
			ids = append(ids, *item.ProductID)
		}
	}

	for _, item := range items {
		walk(item)
	}

	return ids
}

func parseDate(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Now()
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Now()
}
