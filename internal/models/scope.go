package models

// Scope narrows a pipeline action. Empty fields are ignored.
type Scope struct {
	BusinessID string `json:"businessId" form:"businessId"`
	VerticalID string `json:"verticalId" form:"verticalId"`
	StoreID    string `json:"storeId" form:"storeId"`
	ProductID  string `json:"productId" form:"productId"`
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// BusinessPtr returns the business id or nil when unscoped.
func (s Scope) BusinessPtr() *string { return optional(s.BusinessID) }

// VerticalPtr returns the vertical id or nil when unscoped.
func (s Scope) VerticalPtr() *string { return optional(s.VerticalID) }

// StorePtr returns the store id or nil when unscoped.
func (s Scope) StorePtr() *string { return optional(s.StoreID) }

// ProductPtr returns the product id or nil when unscoped.
func (s Scope) ProductPtr() *string { return optional(s.ProductID) }
