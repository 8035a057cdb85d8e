package checkout

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrIllegalTransition = errors.New("illegal payment intent transition")
	ErrIntentTerminal    = errors.New("payment intent already terminal")
)

// IntentTTL is how long a CREATED intent waits for a gateway callback before
// it expires. Expired intents never transition again.
const IntentTTL = 15 * time.Minute

const Currency = "INR"

type IntentStatus string

const (
	IntentCreated   IntentStatus = "CREATED"
	IntentVerifying IntentStatus = "VERIFYING"
	IntentConfirmed IntentStatus = "CONFIRMED"
	IntentFailed    IntentStatus = "FAILED"
	IntentExpired   IntentStatus = "EXPIRED"
)

func (s IntentStatus) IsTerminal() bool {
	switch s {
	case IntentConfirmed, IntentFailed, IntentExpired:
		return true
	default:
		return false
	}
}

func (s IntentStatus) IsValid() bool {
	switch s {
	case IntentCreated, IntentVerifying, IntentConfirmed, IntentFailed, IntentExpired:
		return true
	default:
		return false
	}
}

type FailureReason string

const (
	ReasonOutOfStock       FailureReason = "OUT_OF_STOCK"
	ReasonInvalidSignature FailureReason = "INVALID_SIGNATURE"
	ReasonGatewayDeclined  FailureReason = "GATEWAY_DECLINED"
)

// PaymentIntent records one in-flight payment attempt against the gateway.
// The cart fingerprint ties a gateway callback back to the exact priced cart
// the amount was computed from.
type PaymentIntent struct {
	id              uuid.UUID
	gatewayOrderID  string
	ownerID         uuid.UUID
	amountPaise     int64
	currency        string
	cartFingerprint string
	couponCode      *string
	discountPaise   int64
	minimumApplied  bool
	status          IntentStatus
	failureReason   *FailureReason
	createdAt       time.Time
	updatedAt       time.Time
}

func NewPaymentIntent(
	gatewayOrderID string,
	ownerID uuid.UUID,
	amountPaise int64,
	cartFingerprint string,
	couponCode *string,
	discountPaise int64,
	minimumApplied bool,
	now time.Time,
) *PaymentIntent {
	return &PaymentIntent{
		id:              uuid.New(),
		gatewayOrderID:  gatewayOrderID,
		ownerID:         ownerID,
		amountPaise:     amountPaise,
		currency:        Currency,
		cartFingerprint: cartFingerprint,
		couponCode:      couponCode,
		discountPaise:   discountPaise,
		minimumApplied:  minimumApplied,
		status:          IntentCreated,
		createdAt:       now,
		updatedAt:       now,
	}
}

func ReconstructPaymentIntent(
	id uuid.UUID,
	gatewayOrderID string,
	ownerID uuid.UUID,
	amountPaise int64,
	currency string,
	cartFingerprint string,
	couponCode *string,
	discountPaise int64,
	minimumApplied bool,
	status IntentStatus,
	failureReason *FailureReason,
	createdAt, updatedAt time.Time,
) *PaymentIntent {
	return &PaymentIntent{
		id:              id,
		gatewayOrderID:  gatewayOrderID,
		ownerID:         ownerID,
		amountPaise:     amountPaise,
		currency:        currency,
		cartFingerprint: cartFingerprint,
		couponCode:      couponCode,
		discountPaise:   discountPaise,
		minimumApplied:  minimumApplied,
		status:          status,
		failureReason:   failureReason,
		createdAt:       createdAt,
		updatedAt:       updatedAt,
	}
}

// BeginVerification moves CREATED → VERIFYING. Re-entering VERIFYING is
// allowed so redelivered callbacks can resume a crashed verification.
func (p *PaymentIntent) BeginVerification(now time.Time) error {
	switch p.status {
	case IntentCreated, IntentVerifying:
		p.status = IntentVerifying
		p.updatedAt = now
		return nil
	default:
		return ErrIllegalTransition
	}
}

func (p *PaymentIntent) Confirm(now time.Time) error {
	if p.status != IntentVerifying {
		return ErrIllegalTransition
	}
	p.status = IntentConfirmed
	p.updatedAt = now
	return nil
}

func (p *PaymentIntent) Fail(reason FailureReason, now time.Time) error {
	switch p.status {
	case IntentCreated, IntentVerifying:
		p.status = IntentFailed
		p.failureReason = &reason
		p.updatedAt = now
		return nil
	default:
		return ErrIllegalTransition
	}
}

// Expire transitions a CREATED intent that never saw a callback. Intents in
// VERIFYING run to a terminal outcome and are not expirable.
func (p *PaymentIntent) Expire(now time.Time) error {
	if p.status != IntentCreated {
		return ErrIllegalTransition
	}
	p.status = IntentExpired
	p.updatedAt = now
	return nil
}

func (p *PaymentIntent) IsExpiredAt(now time.Time) bool {
	return p.status == IntentCreated && now.Sub(p.createdAt) > IntentTTL
}

func (p *PaymentIntent) IsTerminal() bool {
	return p.status.IsTerminal()
}

func (p *PaymentIntent) ID() uuid.UUID                  { return p.id }
func (p *PaymentIntent) GatewayOrderID() string         { return p.gatewayOrderID }
func (p *PaymentIntent) OwnerID() uuid.UUID             { return p.ownerID }
func (p *PaymentIntent) AmountPaise() int64             { return p.amountPaise }
func (p *PaymentIntent) Currency() string               { return p.currency }
func (p *PaymentIntent) CartFingerprint() string        { return p.cartFingerprint }
func (p *PaymentIntent) CouponCode() *string            { return p.couponCode }
func (p *PaymentIntent) DiscountPaise() int64           { return p.discountPaise }
func (p *PaymentIntent) MinimumApplied() bool           { return p.minimumApplied }
func (p *PaymentIntent) Status() IntentStatus           { return p.status }
func (p *PaymentIntent) FailureReason() *FailureReason  { return p.failureReason }
func (p *PaymentIntent) CreatedAt() time.Time           { return p.createdAt }
func (p *PaymentIntent) UpdatedAt() time.Time           { return p.updatedAt }
