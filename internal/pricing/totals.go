// Package pricing computes cart money values with decimal arithmetic.
package pricing

import (
	"github.com/shopspring/decimal"

	"bookstore/internal/domain"
)

var (
	// FreeShippingThreshold is the subtotal from which shipping is free.
	FreeShippingThreshold = decimal.RequireFromString("35.00")
	// FlatShipping is charged below the threshold, including on an empty cart.
	FlatShipping = decimal.RequireFromString("4.99")
)

var hundred = decimal.NewFromInt(100)

type Totals struct {
	Subtotal  decimal.Decimal
	Shipping  decimal.Decimal
	Total     decimal.Decimal
	ItemCount int
	// Remaining is what is left to reach free shipping, never negative.
	Remaining decimal.Decimal
	// Progress is the percentage of the free shipping threshold reached, capped at 100.
	Progress decimal.Decimal
}

// Money converts a catalog price to a decimal.
func Money(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

// LineTotal is price x quantity for one cart line.
func LineTotal(l domain.CartLine) decimal.Decimal {
	return Money(l.Price).Mul(decimal.NewFromInt(int64(l.Quantity)))
}

func Subtotal(cart []domain.CartLine) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range cart {
		sum = sum.Add(LineTotal(l))
	}
	return sum
}

func Shipping(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThanOrEqual(FreeShippingThreshold) {
		return decimal.Zero
	}
	return FlatShipping
}

func Compute(cart []domain.CartLine) Totals {
	sub := Subtotal(cart)
	ship := Shipping(sub)
	count := 0
	for _, l := range cart {
		count += l.Quantity
	}
	remaining := decimal.Max(decimal.Zero, FreeShippingThreshold.Sub(sub))
	progress := decimal.Min(sub.Div(FreeShippingThreshold).Mul(hundred), hundred)
	return Totals{
		Subtotal:  sub,
		Shipping:  ship,
		Total:     sub.Add(ship),
		ItemCount: count,
		Remaining: remaining,
		Progress:  progress,
	}
}

// View is Totals rendered with two decimals for JSON and templates.
type View struct {
	Subtotal  string `json:"subtotal"`
	Shipping  string `json:"shipping"`
	Total     string `json:"total"`
	ItemCount int    `json:"itemCount"`
	Remaining string `json:"remainingForFreeShipping"`
	Progress  string `json:"freeShippingProgress"`
	FreeShip  bool   `json:"freeShipping"`
}

func (t Totals) View() View {
	return View{
		Subtotal:  t.Subtotal.StringFixed(2),
		Shipping:  t.Shipping.StringFixed(2),
		Total:     t.Total.StringFixed(2),
		ItemCount: t.ItemCount,
		Remaining: t.Remaining.StringFixed(2),
		Progress:  t.Progress.StringFixed(0),
		FreeShip:  t.Shipping.IsZero(),
	}
}
