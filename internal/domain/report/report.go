// Package report derives dashboard and sales-report figures from raw
// order and inventory snapshots. Everything here is a pure computation:
// inputs are replaced wholesale on each refresh and nothing is mutated.
package report

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/slipsync/slipsync/internal/domain/catalog"
	"github.com/slipsync/slipsync/internal/domain/money"
	"github.com/slipsync/slipsync/internal/domain/order"
)

const dateLayout = "2006-01-02"

// DailyBucket is one calendar day's aggregated revenue and order count
// within a reporting window. Date is an ISO calendar date ("2006-01-02"),
// so lexical order equals chronological order.
type DailyBucket struct {
	Date       string
	Revenue    decimal.Decimal
	OrderCount int
}

// FilterToday returns the orders placed on ref's UTC calendar date.
// Orders without a placement timestamp are excluded.
func FilterToday(orders []order.Order, ref time.Time) []order.Order {
	today := ref.UTC().Format(dateLayout)
	var out []order.Order
	for _, o := range orders {
		if o.PlacedAt == nil {
			continue
		}
		if o.PlacedAt.UTC().Format(dateLayout) == today {
			out = append(out, o)
		}
	}
	return out
}

// SumRevenue totals the order amounts.
func SumRevenue(orders []order.Order) decimal.Decimal {
	sum := decimal.Zero
	for _, o := range orders {
		sum = sum.Add(o.TotalAmount)
	}
	return sum
}

// CountLowStock counts inventory entries sitting at or below their
// configured reorder point. Entries without a reorder point never count.
func CountLowStock(entries []catalog.Variant) int {
	n := 0
	for _, e := range entries {
		if e.LowStock() {
			n++
		}
	}
	return n
}

// BuildDailySeries groups orders into per-day revenue/order-count buckets
// over a trailing window of windowDays ending at now.
//
// The window opens at local midnight of now minus windowDays. The series
// spans from the earliest date actually present in the window to the
// latest, inclusive, with days in between that saw no orders filled as
// zero buckets. When no order falls inside the window the series is empty;
// buckets are never fabricated from nothing. Bucket revenue is rounded to
// two places; the result is sorted ascending by date.
func BuildDailySeries(orders []order.Order, windowDays int, now time.Time) []DailyBucket {
	start := midnight(now).AddDate(0, 0, -windowDays)
	startKey := start.Format(dateLayout)

	type acc struct {
		revenue decimal.Decimal
		orders  int
	}
	grouped := make(map[string]*acc)
	for _, o := range orders {
		if o.PlacedAt == nil {
			continue
		}
		key := o.PlacedAt.UTC().Format(dateLayout)
		if key < startKey {
			continue
		}
		a, ok := grouped[key]
		if !ok {
			a = &acc{revenue: decimal.Zero}
			grouped[key] = a
		}
		a.revenue = a.revenue.Add(o.TotalAmount)
		a.orders++
	}
	if len(grouped) == 0 {
		return nil
	}

	keys := make([]string, 0, len(grouped))
	for k := range grouped {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	first, _ := time.Parse(dateLayout, keys[0])
	last, _ := time.Parse(dateLayout, keys[len(keys)-1])

	var series []DailyBucket
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		key := d.Format(dateLayout)
		if a, ok := grouped[key]; ok {
			series = append(series, DailyBucket{
				Date:       key,
				Revenue:    money.Round2(a.revenue),
				OrderCount: a.orders,
			})
			continue
		}
		series = append(series, DailyBucket{Date: key, Revenue: decimal.Zero})
	}
	return series
}

// SeriesTotals sums revenue and order counts over a series, for the
// window summary display.
func SeriesTotals(series []DailyBucket) (revenue decimal.Decimal, orders int) {
	revenue = decimal.Zero
	for _, b := range series {
		revenue = revenue.Add(b.Revenue)
		orders += b.OrderCount
	}
	return revenue, orders
}

// midnight truncates t to the start of its calendar day in t's location.
func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
