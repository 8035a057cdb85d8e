package response

import (
	"shopcore/internal/usecase/queries"
	"shopcore/internal/usecase/shared"
)

type CartLineResponse struct {
	VariantID      string `json:"variant_id"`
	Quantity       int32  `json:"quantity"`
	UnitPricePaise int64  `json:"unit_price_paise"`
	SubtotalPaise  int64  `json:"subtotal_paise"`
	CouponEligible bool   `json:"coupon_eligible"`
	Available      bool   `json:"available"`
	InStock        bool   `json:"in_stock"`
}

type CartResponse struct {
	Lines                 []CartLineResponse `json:"lines"`
	SubtotalPaise         int64              `json:"subtotal_paise"`
	EligibleSubtotalPaise int64              `json:"eligible_subtotal_paise"`
	DiscountPaise         int64              `json:"discount_paise"`
	TotalPaise            int64              `json:"total_paise"`
	CouponCode            *string            `json:"coupon_code,omitempty"`
	CouponState           string             `json:"coupon_state,omitempty"`
	DiscountCapped        bool               `json:"discount_capped"`
}

func FromCartView(v *queries.CartView) *CartResponse {
	lines := make([]CartLineResponse, len(v.Lines))
	for i, l := range v.Lines {
		lines[i] = CartLineResponse{
			VariantID:      l.VariantID.String(),
			Quantity:       l.Quantity,
			UnitPricePaise: l.UnitPricePaise,
			SubtotalPaise:  l.SubtotalPaise,
			CouponEligible: l.CouponEligible,
			Available:      l.Available,
			InStock:        l.InStock,
		}
	}
	return &CartResponse{
		Lines:                 lines,
		SubtotalPaise:         v.SubtotalPaise,
		EligibleSubtotalPaise: v.EligibleSubtotalPaise,
		DiscountPaise:         v.DiscountPaise,
		TotalPaise:            v.TotalPaise,
		CouponCode:            v.CouponCode,
		CouponState:           string(v.CouponState),
		DiscountCapped:        v.DiscountCapped,
	}
}

type MergeCartResponse struct {
	Merged   []string `json:"merged"`
	Clamped  []string `json:"clamped"`
	Skipped  []string `json:"skipped"`
	Replayed bool     `json:"replayed"`
}

func FromMergeOutcome(o *shared.MergeOutcome) *MergeCartResponse {
	resp := &MergeCartResponse{
		Merged:   make([]string, len(o.Merged)),
		Clamped:  make([]string, len(o.Clamped)),
		Skipped:  make([]string, len(o.Skipped)),
		Replayed: o.Replayed,
	}
	for i, id := range o.Merged {
		resp.Merged[i] = id.String()
	}
	for i, id := range o.Clamped {
		resp.Clamped[i] = id.String()
	}
	for i, id := range o.Skipped {
		resp.Skipped[i] = id.String()
	}
	return resp
}
