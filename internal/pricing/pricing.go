// Package pricing computes order totals from line items. All arithmetic
// uses decimal values; float64 never touches a money amount.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/servex-app/servex-backend/pkg/errors"
)

// Line is a single priced order line.
type Line struct {
	UnitPrice decimal.Decimal
	Quantity  int
}

// Quote is the priced breakdown of an order. Tax and service charge are
// each computed from the exact subtotal and rounded independently to two
// places, half away from zero. Total is the sum of the three rounded
// components, so the invariant total = subtotal + tax + serviceCharge
// holds exactly.
type Quote struct {
	Subtotal      decimal.Decimal
	Tax           decimal.Decimal
	ServiceCharge decimal.Decimal
	Total         decimal.Decimal
}

// Calculate prices the given lines at the supplied tax and service charge
// rates. It rejects empty input, non-positive quantities and negative
// unit prices.
func Calculate(lines []Line, taxRate, serviceChargeRate decimal.Decimal) (Quote, error) {
	if len(lines) == 0 {
		return Quote{}, errors.New(errors.CodeValidation, "order must contain at least one line")
	}

	subtotal := decimal.Zero
	for _, line := range lines {
		if line.Quantity < 1 {
			return Quote{}, errors.New(errors.CodeValidation, "line quantity must be at least 1")
		}
		if line.UnitPrice.IsNegative() {
			return Quote{}, errors.New(errors.CodeValidation, "line unit price must not be negative")
		}
		subtotal = subtotal.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}

	subtotal = subtotal.Round(2)
	tax := subtotal.Mul(taxRate).Round(2)
	serviceCharge := subtotal.Mul(serviceChargeRate).Round(2)

	return Quote{
		Subtotal:      subtotal,
		Tax:           tax,
		ServiceCharge: serviceCharge,
		Total:         subtotal.Add(tax).Add(serviceCharge),
	}, nil
}

// AmountMinor converts a two-place decimal amount into minor currency
// units (paise for INR) for the payment gateway.
func AmountMinor(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).IntPart()
}
