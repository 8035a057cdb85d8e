package response

import (
	"shopcore/internal/usecase/commands"
)

type CheckoutResponse struct {
	IntentID       string `json:"intent_id"`
	GatewayOrderID string `json:"gateway_order_id"`
	AmountPaise    int64  `json:"amount_paise"`
	Currency       string `json:"currency"`
	DiscountPaise  int64  `json:"discount_paise"`
	MinimumApplied bool   `json:"minimum_applied"`
	DiscountCapped bool   `json:"discount_capped"`
	Reused         bool   `json:"reused"`
}

func FromBeginCheckout(r *commands.BeginCheckoutResult) *CheckoutResponse {
	return &CheckoutResponse{
		IntentID:       r.IntentID.String(),
		GatewayOrderID: r.GatewayOrderID,
		AmountPaise:    r.AmountPaise,
		Currency:       r.Currency,
		DiscountPaise:  r.DiscountPaise,
		MinimumApplied: r.MinimumApplied,
		DiscountCapped: r.DiscountCapped,
		Reused:         r.Reused,
	}
}

type VerifyPaymentResponse struct {
	OrderID     string `json:"order_id"`
	AmountPaise int64  `json:"amount_paise"`
	Replayed    bool   `json:"replayed"`
}

func FromVerifyPayment(r *commands.VerifyPaymentResult) *VerifyPaymentResponse {
	return &VerifyPaymentResponse{
		OrderID:     r.OrderID.String(),
		AmountPaise: r.AmountPaise,
		Replayed:    r.Replayed,
	}
}
