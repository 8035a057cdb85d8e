package response

import (
	"shopcore/internal/usecase/queries"
)

type OrderLineResponse struct {
	VariantID      string `json:"variant_id"`
	Quantity       int32  `json:"quantity"`
	UnitPricePaise int64  `json:"unit_price_paise"`
	SubtotalPaise  int64  `json:"subtotal_paise"`
}

type OrderResponse struct {
	ID              string              `json:"id"`
	PaymentIntentID string              `json:"payment_intent_id"`
	Lines           []OrderLineResponse `json:"lines"`
	SubtotalPaise   int64               `json:"subtotal_paise"`
	DiscountPaise   int64               `json:"discount_paise"`
	TotalPaise      int64               `json:"total_paise"`
	Status          string              `json:"status"`
	CreatedAt       int64               `json:"created_at"`
}

func FromOrderView(v *queries.OrderView) *OrderResponse {
	lines := make([]OrderLineResponse, len(v.Lines))
	for i, l := range v.Lines {
		lines[i] = OrderLineResponse{
			VariantID:      l.VariantID.String(),
			Quantity:       l.Quantity,
			UnitPricePaise: l.UnitPricePaise,
			SubtotalPaise:  l.SubtotalPaise,
		}
	}
	return &OrderResponse{
		ID:              v.ID.String(),
		PaymentIntentID: v.PaymentIntentID.String(),
		Lines:           lines,
		SubtotalPaise:   v.SubtotalPaise,
		DiscountPaise:   v.DiscountPaise,
		TotalPaise:      v.TotalPaise,
		Status:          v.Status,
		CreatedAt:       v.CreatedAt.Unix(),
	}
}

func FromOrderList(items []*queries.OrderView) []*OrderResponse {
	res := make([]*OrderResponse, len(items))
	for i, it := range items {
		res[i] = FromOrderView(it)
	}
	return res
}
