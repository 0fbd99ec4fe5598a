package report

import (
	"encoding/csv"
	"io"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/slipsync/slipsync/internal/domain/order"
)

// Range selects the reporting window for a sales summary.
type Range string

const (
	// RangeDaily covers today, from local midnight to now.
	RangeDaily Range = "daily"
	// RangeMonthly covers the current calendar month to date.
	RangeMonthly Range = "monthly"
)

// NormalizeRange maps arbitrary user input to a supported Range,
// defaulting to daily.
func NormalizeRange(s string) Range {
	switch strings.ToLower(s) {
	case "monthly", "month":
		return RangeMonthly
	default:
		return RangeDaily
	}
}

// WindowFor returns the inclusive [start, end] window for the range
// ending at now, in now's location.
func WindowFor(r Range, now time.Time) (start, end time.Time) {
	if r == RangeMonthly {
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		return start, now
	}
	return midnight(now), now
}

// SalesSummary aggregates the pricing components across a set of orders.
type SalesSummary struct {
	Range          Range
	GrossSales     decimal.Decimal
	DiscountsTotal decimal.Decimal
	TaxesTotal     decimal.Decimal
	NetSales       decimal.Decimal
	OrderCount     int
}

// Summarize totals the subtotal, discount, tax, and net amounts of the
// given orders.
func Summarize(r Range, orders []order.Order) SalesSummary {
	s := SalesSummary{
		Range:          r,
		GrossSales:     decimal.Zero,
		DiscountsTotal: decimal.Zero,
		TaxesTotal:     decimal.Zero,
		NetSales:       decimal.Zero,
		OrderCount:     len(orders),
	}
	for _, o := range orders {
		s.GrossSales = s.GrossSales.Add(o.Subtotal)
		s.DiscountsTotal = s.DiscountsTotal.Add(o.DiscountsTotal)
		s.TaxesTotal = s.TaxesTotal.Add(o.TaxesTotal)
		s.NetSales = s.NetSales.Add(o.TotalAmount)
	}
	return s
}

var csvHeader = []string{"Order Number", "Placed At", "Subtotal", "Discounts", "Taxes", "Total", "Currency"}

// WriteCSV renders the orders as a sales export, one row per order.
func WriteCSV(w io.Writer, orders []order.Order) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return errors.Wrap(err, "write header")
	}
	for _, o := range orders {
		placedAt := ""
		if o.PlacedAt != nil {
			placedAt = o.PlacedAt.Format("2006-01-02 15:04")
		}
		row := []string{
			o.OrderNumber,
			placedAt,
			o.Subtotal.String(),
			o.DiscountsTotal.String(),
			o.TaxesTotal.String(),
			o.TotalAmount.String(),
			o.Currency,
		}
		if err := cw.Write(row); err != nil {
			return errors.Wrapf(err, "write row for %s", o.OrderNumber)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.Wrap(err, "flush csv")
	}
	return nil
}
