package domain

import (
	"encoding/json"
	"math"
	"strings"

	invdomain "github.com/caterstock/billing/internal/inventory/domain"
)

// The inbound payload carries the same concepts under several historical
// names (batch vs batch_number, isMix vs is_mix vs a non-empty mixItems).
// Everything is normalized into the canonical SaleItem/SaleCharge shapes here
// at the boundary; nothing deeper probes alternatives.

// MixComponentPayload is one component of a mix item as received
type MixComponentPayload struct {
	ProductID       *uint   `json:"product_id"`
	Name            string  `json:"name"`
	Quantity        float64 `json:"quantity"`
	Unit            string  `json:"unit"`
	Rate            float64 `json:"rate"`
	AllocatedBudget float64 `json:"allocatedBudget"`
	Batch           string  `json:"batch"`
	BatchNumber     string  `json:"batch_number"`
	Expiry          string  `json:"expiry"`
}

// SaleItemPayload is one line item as received
type SaleItemPayload struct {
	ProductID   *uint                 `json:"product_id"`
	Name        string                `json:"name"`
	Quantity    float64               `json:"quantity"`
	Unit        string                `json:"unit"`
	Rate        float64               `json:"rate"`
	TaxPercent  float64               `json:"tax_percent"`
	TaxAmount   float64               `json:"tax_amount"`
	Total       float64               `json:"total"`
	Batch       string                `json:"batch"`
	BatchNumber string                `json:"batch_number"`
	Expiry      string                `json:"expiry"`
	IsMix       *bool                 `json:"isMix"`
	IsMixSnake  *bool                 `json:"is_mix"`
	MixItems    []MixComponentPayload `json:"mixItems"`
	MixItemsAlt []MixComponentPayload `json:"mix_items"`
	MixName     string                `json:"mix_name"`
	MixOf       string                `json:"mixOf"`
}

// ChargePayload is one other-charge row as received
type ChargePayload struct {
	Name      string  `json:"name"`
	Type      string  `json:"type"` // fixed, percentage, discount
	ValueType string  `json:"value_type"`
	Value     float64 `json:"value"`
}

// SalePayload is the inbound sale request shape
type SalePayload struct {
	CatererID         uint              `json:"caterer_id"`
	BillNumber        string            `json:"bill_number"`
	SellDate          string            `json:"sell_date"`
	SubTotal          float64           `json:"sub_total"`
	TaxTotal          float64           `json:"tax_total"`
	ItemsTotal        float64           `json:"items_total"`
	OtherChargesTotal float64           `json:"other_charges_total"`
	GrandTotal        float64           `json:"grand_total"`
	Items             []SaleItemPayload `json:"items"`
	OtherCharges      []ChargePayload   `json:"other_charges"`
	PaymentOption     string            `json:"payment_option"` // full, half, custom, later
	PaymentAmount     float64           `json:"payment_amount"` // for custom
	PaymentMethod     string            `json:"payment_method"`
	PaymentDate       string            `json:"payment_date"`
}

// MixComponent is the canonical component shape
type MixComponent struct {
	ProductID  *uint   `json:"product_id"`
	Name       string  `json:"name"`
	Quantity   float64 `json:"quantity"`
	Unit       string  `json:"unit"`
	Rate       float64 `json:"rate"`
	BatchLabel string  `json:"batch_label"`
}

// SaleItem is the canonical line-item shape after alias normalization
type SaleItem struct {
	ProductID     *uint
	Name          string
	Quantity      float64
	Unit          string
	Rate          float64
	TaxPercent    float64
	TaxAmount     float64
	Total         float64
	BatchLabel    string
	IsMix         bool
	MixOf         string // set when the row arrived pre-flattened as a component of a named mix
	Components    []MixComponent
	ComponentsRaw string // original mixItems payload, serialized as backup
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// Normalize folds the alias sprawl into the canonical item
func (p SaleItemPayload) Normalize() SaleItem {
	components := p.MixItems
	if len(components) == 0 {
		components = p.MixItemsAlt
	}

	isMix := len(components) > 0
	if p.IsMix != nil && *p.IsMix {
		isMix = true
	}
	if p.IsMixSnake != nil && *p.IsMixSnake {
		isMix = true
	}

	item := SaleItem{
		ProductID:  p.ProductID,
		Name:       strings.TrimSpace(p.Name),
		Quantity:   p.Quantity,
		Unit:       p.Unit,
		Rate:       p.Rate,
		TaxPercent: p.TaxPercent,
		TaxAmount:  p.TaxAmount,
		Total:      p.Total,
		BatchLabel: firstNonEmpty(p.Batch, p.BatchNumber),
		IsMix:      isMix,
		MixOf:      firstNonEmpty(p.MixName, p.MixOf),
	}

	if len(components) > 0 {
		item.Components = make([]MixComponent, 0, len(components))
		for _, c := range components {
			item.Components = append(item.Components, MixComponent{
				ProductID:  c.ProductID,
				Name:       strings.TrimSpace(c.Name),
				Quantity:   c.Quantity,
				Unit:       c.Unit,
				Rate:       c.Rate,
				BatchLabel: firstNonEmpty(c.Batch, c.BatchNumber),
			})
		}
		if raw, err := json.Marshal(components); err == nil {
			item.ComponentsRaw = string(raw)
		}
	}

	return item
}

// NormalizeItems normalizes every payload item, preserving order
func (p SalePayload) NormalizeItems() []SaleItem {
	items := make([]SaleItem, 0, len(p.Items))
	for _, raw := range p.Items {
		items = append(items, raw.Normalize())
	}
	return items
}

// Normalize resolves the discount charge type into fixed or percentage
func (c ChargePayload) Normalize() SaleCharge {
	chargeType := strings.ToLower(strings.TrimSpace(c.Type))
	if chargeType == ChargeTypeDiscount {
		if strings.ToLower(strings.TrimSpace(c.ValueType)) == ChargeTypePercentage {
			chargeType = ChargeTypePercentage
		} else {
			chargeType = ChargeTypeFixed
		}
	}
	if chargeType != ChargeTypePercentage {
		chargeType = ChargeTypeFixed
	}

	return SaleCharge{
		Name:       strings.TrimSpace(c.Name),
		ChargeType: chargeType,
		Value:      c.Value,
	}
}

// NormalizeBillNumber trims and uppercases a caller-supplied bill number
func NormalizeBillNumber(billNumber string) string {
	return strings.ToUpper(strings.TrimSpace(billNumber))
}

// NormalizePaymentMethod folds input into the closed method enumeration;
// anything unrecognized becomes cash.
func NormalizePaymentMethod(method string) string {
	switch strings.ToLower(strings.TrimSpace(method)) {
	case PaymentMethodCard, "credit_card", "debit_card":
		return PaymentMethodCard
	case PaymentMethodBankTransfer, "bank":
		return PaymentMethodBankTransfer
	case PaymentMethodMobileBanking, "mobile":
		return PaymentMethodMobileBanking
	case PaymentMethodCheque, "check":
		return PaymentMethodCheque
	default:
		return PaymentMethodCash
	}
}

// DerivePaymentAmount computes the payment row amount from the option:
// full takes the grand total, half takes its rounded half, custom takes the
// caller value, later pays nothing.
func DerivePaymentAmount(option string, grandTotal, customAmount float64) float64 {
	switch strings.ToLower(strings.TrimSpace(option)) {
	case PaymentOptionFull:
		return grandTotal
	case PaymentOptionHalf:
		return math.Round(grandTotal / 2)
	case PaymentOptionCustom:
		return customAmount
	default: // later
		return 0
	}
}

// PaymentStatusFor recomputes the sale status from the sum of its payment
// rows against the grand total.
func PaymentStatusFor(totalPaid, grandTotal float64) string {
	switch {
	case grandTotal > 0 && totalPaid+0.001 >= grandTotal:
		return PaymentStatusPaid
	case totalPaid > 0:
		return PaymentStatusPartial
	default:
		return PaymentStatusPending
	}
}

// BuildDeductionItems regroups the normalized items for the deduction
// engine: a mix header carries its embedded components, and any row that
// arrived pre-flattened as a component (MixOf set) is attached under its
// matching header by shared composite name instead of being deducted
// standalone. A component naming a header that does not exist falls back to
// a regular deduction.
func BuildDeductionItems(items []SaleItem) []invdomain.DeductionItem {
	result := make([]invdomain.DeductionItem, 0, len(items))
	headerIndex := make(map[string]int, len(items))

	// Headers first, so a component row may precede its header in the payload.
	for _, item := range items {
		if !item.IsMix {
			continue
		}
		header := invdomain.DeductionItem{
			ProductID:   item.ProductID,
			Name:        item.Name,
			Quantity:    item.Quantity,
			Unit:        item.Unit,
			BatchLabel:  item.BatchLabel,
			IsComposite: true,
		}
		for _, c := range item.Components {
			header.Components = append(header.Components, invdomain.DeductionItem{
				ProductID:  c.ProductID,
				Name:       c.Name,
				Quantity:   c.Quantity,
				Unit:       c.Unit,
				BatchLabel: c.BatchLabel,
			})
		}
		headerIndex[item.Name] = len(result)
		result = append(result, header)
	}

	for _, item := range items {
		if item.IsMix {
			continue
		}

		component := invdomain.DeductionItem{
			ProductID:  item.ProductID,
			Name:       item.Name,
			Quantity:   item.Quantity,
			Unit:       item.Unit,
			BatchLabel: item.BatchLabel,
		}

		if item.MixOf != "" {
			if idx, ok := headerIndex[item.MixOf]; ok {
				result[idx].Components = append(result[idx].Components, component)
				continue
			}
		}

		result = append(result, component)
	}

	return result
}
