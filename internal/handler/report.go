package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/slipsync/slipsync/internal/domain/order"
	"github.com/slipsync/slipsync/internal/domain/report"
)

type dashboardResponse struct {
	TodayRevenue  float64 `json:"todayRevenue"`
	TodayOrders   int     `json:"todayOrders"`
	LowStockCount int     `json:"lowStockCount"`
}

// dashboard reports today's revenue and order count alongside the number
// of variants at or below their reorder point.
func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	now := h.now()

	dayStart := time.Date(now.UTC().Year(), now.UTC().Month(), now.UTC().Day(), 0, 0, 0, 0, time.UTC)
	orders, err := h.orders.ListSince(ctx, dayStart)
	if err != nil {
		respondError(ctx, w, err)
		return
	}
	today := report.FilterToday(orders, now)

	variants, err := h.catalog.List(ctx)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	writeJSON(w, http.StatusOK, dashboardResponse{
		TodayRevenue:  report.SumRevenue(today).InexactFloat64(),
		TodayOrders:   len(today),
		LowStockCount: report.CountLowStock(variants),
	})
}

type seriesBucketResponse struct {
	Date       string  `json:"date"`
	Revenue    float64 `json:"revenue"`
	OrderCount int     `json:"orderCount"`
}

type seriesResponse struct {
	WindowDays   int                    `json:"windowDays"`
	Series       []seriesBucketResponse `json:"series"`
	TotalRevenue float64                `json:"totalRevenue"`
	TotalOrders  int                    `json:"totalOrders"`
}

// dailySeries renders per-day revenue buckets over a trailing window of
// 7, 30, or 90 days. The default window is 90 days.
func (h *Handler) dailySeries(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	days := 90
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || (parsed != 7 && parsed != 30 && parsed != 90) {
			writeError(w, http.StatusBadRequest, "days must be 7, 30, or 90")
			return
		}
		days = parsed
	}

	now := h.now()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, -days)
	orders, err := h.orders.ListSince(ctx, start)
	if err != nil {
		respondError(ctx, w, err)
		return
	}

	series := report.BuildDailySeries(orders, days, now)
	revenue, count := report.SeriesTotals(series)

	out := make([]seriesBucketResponse, len(series))
	for i, b := range series {
		out[i] = seriesBucketResponse{
			Date:       b.Date,
			Revenue:    b.Revenue.InexactFloat64(),
			OrderCount: b.OrderCount,
		}
	}
	writeJSON(w, http.StatusOK, seriesResponse{
		WindowDays:   days,
		Series:       out,
		TotalRevenue: revenue.InexactFloat64(),
		TotalOrders:  count,
	})
}

type salesSummaryResponse struct {
	Range          string  `json:"range"`
	GrossSales     float64 `json:"grossSales"`
	DiscountsTotal float64 `json:"discountsTotal"`
	TaxesTotal     float64 `json:"taxesTotal"`
	NetSales       float64 `json:"netSales"`
	OrderCount     int     `json:"orderCount"`
}

func (h *Handler) windowOrders(r *http.Request) (report.Range, []order.Order, error) {
	rng := report.NormalizeRange(r.URL.Query().Get("range"))
	start, end := report.WindowFor(rng, h.now())
	orders, err := h.orders.ListBetween(r.Context(), start, end)
	return rng, orders, err
}

// salesSummary totals gross, discounts, taxes, and net over today or the
// current month.
func (h *Handler) salesSummary(w http.ResponseWriter, r *http.Request) {
	rng, orders, err := h.windowOrders(r)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	s := report.Summarize(rng, orders)
	writeJSON(w, http.StatusOK, salesSummaryResponse{
		Range:          string(s.Range),
		GrossSales:     s.GrossSales.InexactFloat64(),
		DiscountsTotal: s.DiscountsTotal.InexactFloat64(),
		TaxesTotal:     s.TaxesTotal.InexactFloat64(),
		NetSales:       s.NetSales.InexactFloat64(),
		OrderCount:     s.OrderCount,
	})
}

// salesExport streams the same window as a CSV download.
func (h *Handler) salesExport(w http.ResponseWriter, r *http.Request) {
	rng, orders, err := h.windowOrders(r)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	filename := fmt.Sprintf("sales-%s-%s.csv", rng, h.now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := report.WriteCSV(w, orders); err != nil {
		// Headers are already on the wire; all we can do is log.
		zctx.From(r.Context()).Error("write sales export", zap.Error(err))
	}
}
