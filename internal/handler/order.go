package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/slipsync/slipsync/internal/domain/money"
	"github.com/slipsync/slipsync/internal/domain/order"
	"github.com/slipsync/slipsync/internal/domain/pos"
)

type checkoutItemRequest struct {
	VariantID string `json:"variantId"`
	Quantity  int    `json:"quantity"`
}

// checkoutRequest accepts discount and tax rate as number, string, or
// null; money.Parse coerces all three.
type checkoutRequest struct {
	Items          []checkoutItemRequest `json:"items"`
	DiscountAmount any                   `json:"discountAmount"`
	TaxRatePercent any                   `json:"taxRatePercent"`
	Notes          string                `json:"notes"`
	Currency       string                `json:"currency"`
}

type orderItemResponse struct {
	VariantID string  `json:"variantId"`
	Name      string  `json:"name"`
	SKU       string  `json:"sku"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
	LineTotal float64 `json:"lineTotal"`
}

type orderResponse struct {
	ID             string              `json:"id"`
	OrderNumber    string              `json:"orderNumber"`
	Status         string              `json:"status"`
	Subtotal       float64             `json:"subtotal"`
	DiscountsTotal float64             `json:"discountsTotal"`
	TaxesTotal     float64             `json:"taxesTotal"`
	TotalAmount    float64             `json:"totalAmount"`
	Currency       string              `json:"currency"`
	ItemCount      int                 `json:"itemCount"`
	Notes          string              `json:"notes,omitempty"`
	PlacedAt       *time.Time          `json:"placedAt"`
	Items          []orderItemResponse `json:"items,omitempty"`
}

func toOrderResponse(o order.Order) orderResponse {
	items := make([]orderItemResponse, len(o.Items))
	for i, it := range o.Items {
		items[i] = orderItemResponse{
			VariantID: it.VariantID,
			Name:      it.Name,
			SKU:       it.SKU,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice.InexactFloat64(),
			LineTotal: it.LineTotal.InexactFloat64(),
		}
	}
	return orderResponse{
		ID:             o.ID,
		OrderNumber:    o.OrderNumber,
		Status:         o.Status,
		Subtotal:       o.Subtotal.InexactFloat64(),
		DiscountsTotal: o.DiscountsTotal.InexactFloat64(),
		TaxesTotal:     o.TaxesTotal.InexactFloat64(),
		TotalAmount:    o.TotalAmount.InexactFloat64(),
		Currency:       o.Currency,
		ItemCount:      o.ItemCount,
		Notes:          o.Notes,
		PlacedAt:       o.PlacedAt,
		Items:          items,
	}
}

func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	items := make([]pos.CheckoutItem, len(req.Items))
	for i, it := range req.Items {
		items[i] = pos.CheckoutItem{VariantID: it.VariantID, Quantity: it.Quantity}
	}

	placed, err := h.checkout.Checkout(r.Context(), pos.CheckoutRequest{
		Items:          items,
		DiscountAmount: money.Parse(req.DiscountAmount),
		TaxRatePercent: money.Parse(req.TaxRatePercent),
		Notes:          req.Notes,
		Currency:       req.Currency,
	})
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toOrderResponse(*placed))
}

// listOrders returns recent orders, newest first. The optional since
// parameter is RFC 3339; it defaults to the last 24 hours.
func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	since := h.now().Add(-24 * time.Hour)
	if raw := r.URL.Query().Get("since"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "since must be RFC 3339")
			return
		}
		since = parsed
	}

	orders, err := h.orders.ListSince(r.Context(), since)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	out := make([]orderResponse, len(orders))
	for i, o := range orders {
		out[i] = toOrderResponse(o)
	}
	writeJSON(w, http.StatusOK, out)
}
