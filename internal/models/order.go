package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderLine is one order item joined to its order's store and timestamp.
type OrderLine struct {
	OrderID   string          `db:"order_id" json:"orderId"`
	StoreID   string          `db:"store_id" json:"storeId"`
	ProductID string          `db:"product_id" json:"productId"`
	Quantity  int             `db:"quantity" json:"quantity"`
	UnitPrice decimal.Decimal `db:"unit_price" json:"unitPrice"`
	OrderedAt time.Time       `db:"ordered_at" json:"orderedAt"`
}

// LineTotal returns quantity × unit price.
func (l OrderLine) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}
