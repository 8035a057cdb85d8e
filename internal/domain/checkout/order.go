package checkout

import (
	"errors"
	"time"

	"shopcore/internal/domain/pricing"

	"github.com/google/uuid"
)

var (
	ErrEmptyOrder             = errors.New("order must have at least one line")
	ErrIllegalOrderTransition = errors.New("illegal order status transition")
)

type OrderStatus string

const (
	OrderPending    OrderStatus = "PENDING"
	OrderProcessing OrderStatus = "PROCESSING"
	OrderShipped    OrderStatus = "SHIPPED"
	OrderDelivered  OrderStatus = "DELIVERED"
	OrderCancelled  OrderStatus = "CANCELLED"
	OrderRefunded   OrderStatus = "REFUNDED"
)

// fulfillment path; CANCELLED is reachable until shipping, REFUNDED only
// after delivery.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:    {OrderProcessing, OrderCancelled},
	OrderProcessing: {OrderShipped, OrderCancelled},
	OrderShipped:    {OrderDelivered},
	OrderDelivered:  {OrderRefunded},
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// OrderLine is a frozen copy of a cart line at commit time. Later catalog
// price changes never reach a placed order.
type OrderLine struct {
	VariantID      uuid.UUID
	Quantity       int32
	UnitPricePaise int64
	SubtotalPaise  int64
}

type Order struct {
	id                uuid.UUID
	ownerID           uuid.UUID
	paymentIntentID   uuid.UUID
	lines             []OrderLine
	shippingAddressID uuid.UUID
	subtotalPaise     int64
	discountPaise     int64
	totalPaise        int64
	status            OrderStatus
	createdAt         time.Time
	updatedAt         time.Time
}

// NewOrder freezes a confirmed checkout. Exactly one order may exist per
// payment intent; the storage layer enforces that with a unique constraint.
func NewOrder(
	ownerID uuid.UUID,
	paymentIntentID uuid.UUID,
	priced []pricing.PricedLine,
	shippingAddressID uuid.UUID,
	discountPaise int64,
	totalPaise int64,
	now time.Time,
) (*Order, error) {
	if len(priced) == 0 {
		return nil, ErrEmptyOrder
	}

	lines := make([]OrderLine, 0, len(priced))
	var subtotal int64
	for _, l := range priced {
		lines = append(lines, OrderLine{
			VariantID:      l.VariantID,
			Quantity:       l.Quantity,
			UnitPricePaise: l.UnitPricePaise,
			SubtotalPaise:  l.SubtotalPaise,
		})
		subtotal += l.SubtotalPaise
	}

	return &Order{
		id:                uuid.New(),
		ownerID:           ownerID,
		paymentIntentID:   paymentIntentID,
		lines:             lines,
		shippingAddressID: shippingAddressID,
		subtotalPaise:     subtotal,
		discountPaise:     discountPaise,
		totalPaise:        totalPaise,
		status:            OrderPending,
		createdAt:         now,
		updatedAt:         now,
	}, nil
}

func ReconstructOrder(
	id, ownerID, paymentIntentID uuid.UUID,
	lines []OrderLine,
	shippingAddressID uuid.UUID,
	subtotalPaise, discountPaise, totalPaise int64,
	status OrderStatus,
	createdAt, updatedAt time.Time,
) *Order {
	return &Order{
		id:                id,
		ownerID:           ownerID,
		paymentIntentID:   paymentIntentID,
		lines:             lines,
		shippingAddressID: shippingAddressID,
		subtotalPaise:     subtotalPaise,
		discountPaise:     discountPaise,
		totalPaise:        totalPaise,
		status:            status,
		createdAt:         createdAt,
		updatedAt:         updatedAt,
	}
}

func (o *Order) TransitionTo(next OrderStatus, now time.Time) error {
	if !o.status.CanTransitionTo(next) {
		return ErrIllegalOrderTransition
	}
	o.status = next
	o.updatedAt = now
	return nil
}

func (o *Order) ID() uuid.UUID                { return o.id }
func (o *Order) OwnerID() uuid.UUID           { return o.ownerID }
func (o *Order) PaymentIntentID() uuid.UUID   { return o.paymentIntentID }
func (o *Order) Lines() []OrderLine           { return o.lines }
func (o *Order) ShippingAddressID() uuid.UUID { return o.shippingAddressID }
func (o *Order) SubtotalPaise() int64         { return o.subtotalPaise }
func (o *Order) DiscountPaise() int64         { return o.discountPaise }
func (o *Order) TotalPaise() int64            { return o.totalPaise }
func (o *Order) Status() OrderStatus          { return o.status }
func (o *Order) CreatedAt() time.Time         { return o.createdAt }
func (o *Order) UpdatedAt() time.Time         { return o.updatedAt }
