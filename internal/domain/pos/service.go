package pos

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/slipsync/slipsync/internal/domain/catalog"
	"github.com/slipsync/slipsync/internal/domain/order"
)

const defaultCurrency = "USD"

// VariantNotFoundError indicates a checkout item references a variant that
// is not in the catalog.
type VariantNotFoundError struct {
	VariantID string
}

func (e *VariantNotFoundError) Error() string {
	return fmt.Sprintf("variant %s not found", e.VariantID)
}

// CheckoutItem is one requested line in a checkout.
type CheckoutItem struct {
	VariantID string
	Quantity  int
}

// CheckoutRequest holds the register's input for placing an order.
type CheckoutRequest struct {
	Items          []CheckoutItem
	DiscountAmount decimal.Decimal
	TaxRatePercent decimal.Decimal
	Notes          string
	Currency       string
}

// Service turns a priced cart into a persisted order, decrementing
// inventory along the way.
type Service struct {
	variants catalog.Repository
	orders   order.Repository
	now      func() time.Time
}

// NewService creates a checkout Service with the required repositories.
func NewService(variants catalog.Repository, orders order.Repository) *Service {
	return &Service{
		variants: variants,
		orders:   orders,
		now:      time.Now,
	}
}

// Checkout validates the requested items against the catalog, prices them
// through a Cart, and persists the resulting order together with its
// inventory decrements in a single repository call. Stock validation
// happens before any write, and the decrements commit atomically with
// the order: a failure anywhere leaves inventory untouched.
func (s *Service) Checkout(ctx context.Context, req CheckoutRequest) (*order.Order, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyCart
	}

	ids := make([]string, len(req.Items))
	for i, item := range req.Items {
		if item.Quantity < 1 {
			return nil, ErrInvalidQuantity
		}
		ids[i] = item.VariantID
	}

	fetched, err := s.variants.GetByVariantIDs(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "get variants")
	}
	byID := make(map[string]catalog.Variant, len(fetched))
	for _, v := range fetched {
		byID[v.VariantID] = v
	}

	cart := &Cart{
		DiscountAmount: req.DiscountAmount,
		TaxRatePercent: req.TaxRatePercent,
		Notes:          req.Notes,
	}
	for _, item := range req.Items {
		v, ok := byID[item.VariantID]
		if !ok {
			return nil, &VariantNotFoundError{VariantID: item.VariantID}
		}
		if err := cart.AddItem(v, item.Quantity); err != nil {
			return nil, err
		}
	}
	pricing := cart.Totals()

	items := cart.Items()
	decrements := make([]order.StockDecrement, len(items))
	for i, it := range items {
		decrements[i] = order.StockDecrement{VariantID: it.VariantID, Quantity: it.Quantity}
	}

	currency := req.Currency
	if currency == "" {
		currency = defaultCurrency
	}
	placedAt := s.now()

	id := uuid.New().String()
	o := &order.Order{
		ID:             id,
		OrderNumber:    orderNumber(id),
		Status:         "paid",
		Subtotal:       pricing.Subtotal,
		DiscountsTotal: pricing.Discount,
		TaxesTotal:     pricing.Tax,
		TotalAmount:    pricing.Total,
		Currency:       currency,
		ItemCount:      len(items),
		Notes:          req.Notes,
		PlacedAt:       &placedAt,
		Items:          orderItems(items),
	}
	if err := s.orders.Create(ctx, o, decrements); err != nil {
		return nil, errors.Wrap(err, "create order")
	}
	return o, nil
}

func orderItems(items []LineItem) []order.Item {
	out := make([]order.Item, len(items))
	for i, it := range items {
		out[i] = order.Item{
			VariantID: it.VariantID,
			Name:      it.Name,
			SKU:       it.SKU,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			LineTotal: it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))),
		}
	}
	return out
}

// orderNumber derives a short human-readable receipt number from the
// order ID.
func orderNumber(id string) string {
	return "SS-" + strings.ToUpper(strings.ReplaceAll(id, "-", "")[:8])
}
