package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(v bool) *bool {
	return &v
}

func uintPtr(v uint) *uint {
	return &v
}

func TestSaleItemPayloadNormalize(t *testing.T) {
	t.Run("batch_number is an alias for batch", func(t *testing.T) {
		item := SaleItemPayload{Name: "Rice", BatchNumber: "B-1"}.Normalize()
		assert.Equal(t, "B-1", item.BatchLabel)
	})

	t.Run("batch wins over batch_number", func(t *testing.T) {
		item := SaleItemPayload{Name: "Rice", Batch: "B-1", BatchNumber: "B-2"}.Normalize()
		assert.Equal(t, "B-1", item.BatchLabel)
	})

	t.Run("is_mix snake case flag is honored", func(t *testing.T) {
		item := SaleItemPayload{Name: "Mix", IsMixSnake: boolPtr(true)}.Normalize()
		assert.True(t, item.IsMix)
	})

	t.Run("non-empty mixItems implies a mix without any flag", func(t *testing.T) {
		item := SaleItemPayload{
			Name:     "Mix",
			MixItems: []MixComponentPayload{{Name: "Turmeric", Quantity: 1}},
		}.Normalize()
		assert.True(t, item.IsMix)
		require.Len(t, item.Components, 1)
		assert.Equal(t, "Turmeric", item.Components[0].Name)
		assert.NotEmpty(t, item.ComponentsRaw)
	})

	t.Run("mix_items is an alias for mixItems", func(t *testing.T) {
		item := SaleItemPayload{
			Name:        "Mix",
			MixItemsAlt: []MixComponentPayload{{Name: "Cumin", Quantity: 2}},
		}.Normalize()
		require.Len(t, item.Components, 1)
		assert.Equal(t, "Cumin", item.Components[0].Name)
	})

	t.Run("mix_name and mixOf fold into MixOf", func(t *testing.T) {
		assert.Equal(t, "Curry Base", SaleItemPayload{Name: "Onion", MixName: "Curry Base"}.Normalize().MixOf)
		assert.Equal(t, "Curry Base", SaleItemPayload{Name: "Onion", MixOf: "Curry Base"}.Normalize().MixOf)
	})
}

func TestChargePayloadNormalize(t *testing.T) {
	t.Run("discount with percentage value type", func(t *testing.T) {
		charge := ChargePayload{Name: "Loyalty", Type: "discount", ValueType: "percentage", Value: 5}.Normalize()
		assert.Equal(t, ChargeTypePercentage, charge.ChargeType)
	})

	t.Run("discount defaults to fixed", func(t *testing.T) {
		charge := ChargePayload{Name: "Loyalty", Type: "discount", Value: 50}.Normalize()
		assert.Equal(t, ChargeTypeFixed, charge.ChargeType)
	})

	t.Run("unknown type collapses to fixed", func(t *testing.T) {
		charge := ChargePayload{Name: "Delivery", Type: "weird", Value: 100}.Normalize()
		assert.Equal(t, ChargeTypeFixed, charge.ChargeType)
	})
}

func TestNormalizeBillNumber(t *testing.T) {
	assert.Equal(t, "BILL-001", NormalizeBillNumber("  bill-001 "))
	assert.Equal(t, "", NormalizeBillNumber("   "))
}

func TestNormalizePaymentMethod(t *testing.T) {
	cases := map[string]string{
		"CARD":           PaymentMethodCard,
		"credit_card":    PaymentMethodCard,
		"bank":           PaymentMethodBankTransfer,
		"bank_transfer":  PaymentMethodBankTransfer,
		"mobile":         PaymentMethodMobileBanking,
		"check":          PaymentMethodCheque,
		"cheque":         PaymentMethodCheque,
		"cash":           PaymentMethodCash,
		"bitcoin":        PaymentMethodCash,
		"":               PaymentMethodCash,
	}
	for input, expected := range cases {
		assert.Equal(t, expected, NormalizePaymentMethod(input), "input %q", input)
	}
}

func TestDerivePaymentAmount(t *testing.T) {
	assert.InDelta(t, 1000, DerivePaymentAmount("full", 1000, 0), 1e-9)
	assert.InDelta(t, 500, DerivePaymentAmount("half", 1000, 0), 1e-9)
	assert.InDelta(t, 501, DerivePaymentAmount("half", 1001, 0), 1e-9)
	assert.InDelta(t, 250, DerivePaymentAmount("custom", 1000, 250), 1e-9)
	assert.InDelta(t, 0, DerivePaymentAmount("later", 1000, 0), 1e-9)
	assert.InDelta(t, 0, DerivePaymentAmount("", 1000, 0), 1e-9)
}

func TestPaymentStatusFor(t *testing.T) {
	assert.Equal(t, PaymentStatusPaid, PaymentStatusFor(1000, 1000))
	assert.Equal(t, PaymentStatusPaid, PaymentStatusFor(999.9995, 1000))
	assert.Equal(t, PaymentStatusPartial, PaymentStatusFor(500, 1000))
	assert.Equal(t, PaymentStatusPending, PaymentStatusFor(0, 1000))
	assert.Equal(t, PaymentStatusPending, PaymentStatusFor(0, 0))
}

func TestBuildDeductionItems(t *testing.T) {
	t.Run("embedded components stay under their header", func(t *testing.T) {
		items := []SaleItem{
			{
				Name:       "Spice Mix",
				Quantity:   1,
				BatchLabel: "LOT-1",
				IsMix:      true,
				Components: []MixComponent{
					{ProductID: uintPtr(1), Name: "Turmeric", Quantity: 2},
					{ProductID: uintPtr(2), Name: "Cumin", Quantity: 3},
				},
			},
			{ProductID: uintPtr(3), Name: "Rice", Quantity: 5},
		}

		result := BuildDeductionItems(items)
		require.Len(t, result, 2)
		assert.True(t, result[0].IsComposite)
		assert.Len(t, result[0].Components, 2)
		assert.Equal(t, "Rice", result[1].Name)
		assert.False(t, result[1].IsComposite)
	})

	t.Run("pre-flattened component rows regroup under the named mix", func(t *testing.T) {
		items := []SaleItem{
			{ProductID: uintPtr(1), Name: "Onion", Quantity: 2, MixOf: "Curry Base"},
			{Name: "Curry Base", Quantity: 1, IsMix: true},
			{ProductID: uintPtr(2), Name: "Garlic", Quantity: 1, MixOf: "Curry Base"},
		}

		result := BuildDeductionItems(items)
		require.Len(t, result, 1)
		assert.Equal(t, "Curry Base", result[0].Name)
		require.Len(t, result[0].Components, 2)
		assert.Equal(t, "Onion", result[0].Components[0].Name)
		assert.Equal(t, "Garlic", result[0].Components[1].Name)
	})

	t.Run("component naming a missing mix falls back to a regular deduction", func(t *testing.T) {
		items := []SaleItem{
			{ProductID: uintPtr(1), Name: "Onion", Quantity: 2, MixOf: "Nonexistent"},
		}

		result := BuildDeductionItems(items)
		require.Len(t, result, 1)
		assert.False(t, result[0].IsComposite)
		assert.Equal(t, "Onion", result[0].Name)
	})
}
