package handler

import (
	"net/http"

	"github.com/slipsync/slipsync/internal/domain/catalog"
)

type productResponse struct {
	VariantID    string  `json:"variantId"`
	ProductID    string  `json:"productId"`
	ProductName  string  `json:"productName"`
	SKU          string  `json:"sku"`
	Barcode      string  `json:"barcode,omitempty"`
	Price        float64 `json:"price"`
	Quantity     int     `json:"quantity"`
	ReorderPoint *int    `json:"reorderPoint,omitempty"`
	LowStock     bool    `json:"lowStock"`
}

func toProductResponse(v catalog.Variant) productResponse {
	return productResponse{
		VariantID:    v.VariantID,
		ProductID:    v.ProductID,
		ProductName:  v.ProductName,
		SKU:          v.SKU,
		Barcode:      v.Barcode,
		Price:        v.Price.InexactFloat64(),
		Quantity:     v.Quantity,
		ReorderPoint: v.ReorderPoint,
		LowStock:     v.LowStock(),
	}
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	variants, err := h.catalog.List(r.Context())
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	out := make([]productResponse, len(variants))
	for i, v := range variants {
		out[i] = toProductResponse(v)
	}
	writeJSON(w, http.StatusOK, out)
}
