package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/slipsync/slipsync/internal/domain/catalog"
	"github.com/slipsync/slipsync/internal/domain/pos"
)

type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, errorResponse{Code: code, Message: message})
}

// respondError maps domain errors onto HTTP statuses: an empty cart is
// 400, business rule violations (bad quantities, unknown variants, stock
// shortfalls) are 422, everything else is logged and hidden behind a 500.
func respondError(ctx context.Context, w http.ResponseWriter, err error) {
	var (
		notFound     *pos.VariantNotFoundError
		outOfStock   *pos.OutOfStockError
		insufficient *pos.InsufficientStockError
	)
	switch {
	case errors.Is(err, pos.ErrEmptyCart):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, pos.ErrInvalidQuantity),
		errors.As(err, &notFound),
		errors.As(err, &outOfStock),
		errors.As(err, &insufficient),
		errors.Is(err, catalog.ErrNotFound),
		errors.Is(err, catalog.ErrInsufficientStock):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		zctx.From(ctx).Error("request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
