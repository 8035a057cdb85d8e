package shared

import "context"

// GatewayOrder is the gateway-side order a payment intent is bound to. The
// client pays against this ID and the callback echoes it back.
type GatewayOrder struct {
	ID string
}

type PaymentGateway interface {
	CreateOrder(ctx context.Context, amountPaise int64, currency, receipt string) (*GatewayOrder, error)
}
