package service

import (
	"testing"

	"inventory-service/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestComputeTotals(t *testing.T) {
	taxRate := dec("0.115")

	lines := []models.PurchaseOrderItem{
		{ItemID: 1, QuantityOrdered: 100, UnitCost: dec("2.00")},
	}

	subtotal, tax, total := computeTotals(lines, taxRate, decimal.Zero)

	assert.True(t, dec("200.00").Equal(subtotal), "subtotal = %s", subtotal)
	assert.True(t, dec("23.00").Equal(tax), "tax = %s", tax)
	assert.True(t, dec("223.00").Equal(total), "total = %s", total)
	assert.True(t, dec("200.00").Equal(lines[0].LineTotal), "line_total = %s", lines[0].LineTotal)
}

func TestComputeTotalsMultipleLinesWithShipping(t *testing.T) {
	taxRate := dec("0.115")

	lines := []models.PurchaseOrderItem{
		{ItemID: 1, QuantityOrdered: 3, UnitCost: dec("9.99")},
		{ItemID: 2, QuantityOrdered: 10, UnitCost: dec("1.25")},
	}

	subtotal, tax, total := computeTotals(lines, taxRate, dec("15.50"))

	require.True(t, dec("42.47").Equal(subtotal), "subtotal = %s", subtotal)
	// 42.47 * 0.115 = 4.88405, rounded to cents
	assert.True(t, dec("4.88").Equal(tax), "tax = %s", tax)
	assert.True(t, dec("62.85").Equal(total), "total = %s", total)

	assert.True(t, dec("29.97").Equal(lines[0].LineTotal))
	assert.True(t, dec("12.50").Equal(lines[1].LineTotal))

	// the published invariant: total == subtotal + tax + shipping
	assert.True(t, total.Equal(subtotal.Add(tax).Add(dec("15.50"))))
}

func TestComputeTotalsEmptyShippingOnly(t *testing.T) {
	subtotal, tax, total := computeTotals(nil, dec("0.115"), dec("5.00"))

	assert.True(t, decimal.Zero.Equal(subtotal))
	assert.True(t, decimal.Zero.Equal(tax))
	assert.True(t, dec("5.00").Equal(total))
}
