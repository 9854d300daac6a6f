package models

// Store is a purchasing outlet. Only active stores receive predictions.
type Store struct {
	ID         string  `db:"id" json:"id"`
	Name       string  `db:"name" json:"name"`
	BusinessID *string `db:"business_id" json:"businessId,omitempty"`
	VerticalID *string `db:"vertical_id" json:"verticalId,omitempty"`
	IsActive   bool    `db:"is_active" json:"isActive"`
}

// StoreRevenueScore is the latest store-level score produced upstream.
type StoreRevenueScore struct {
	StoreID     string  `db:"store_id" json:"storeId"`
	HeatScore   float64 `db:"heat_score" json:"heatScore"`
	OrderProb7d float64 `db:"order_prob_7d" json:"orderProb7d"`
}

// DefaultHeatScore is used when a store has no revenue score yet.
const DefaultHeatScore = 50.0
