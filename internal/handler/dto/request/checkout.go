package request

import (
	"github.com/google/uuid"
)

type VerifyPaymentRequest struct {
	IntentID          uuid.UUID `json:"intent_id" binding:"required"`
	GatewayPaymentID  string    `json:"gateway_payment_id" binding:"required"`
	Signature         string    `json:"signature" binding:"required"`
	ShippingAddressID uuid.UUID `json:"shipping_address_id" binding:"required"`
}
