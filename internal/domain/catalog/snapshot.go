package catalog

import (
	"github.com/google/uuid"
)

// VariantSnapshot is the read-only view of a sellable variant owned by the
// catalog service. Prices are paise (INR minor units) and are always read
// live; cart lines never store them.
type VariantSnapshot struct {
	VariantID      uuid.UUID
	UnitPricePaise int64
	SalePricePaise *int64
	AvailableQty   int32
	IsPurchasable  bool
	CategoryIDs    []uuid.UUID
	BrandID        uuid.UUID
}

// EffectiveUnitPrice is the sale price when one is set, the list price
// otherwise.
func (v VariantSnapshot) EffectiveUnitPrice() int64 {
	if v.SalePricePaise != nil {
		return *v.SalePricePaise
	}
	return v.UnitPricePaise
}

func (v VariantSnapshot) HasStock(qty int32) bool {
	return v.AvailableQty >= qty
}
