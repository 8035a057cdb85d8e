package coupon

import (
	"errors"
	"time"

	"shopcore/internal/domain/catalog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrCouponExpired     = errors.New("coupon has expired")
	ErrCouponNotYetValid = errors.New("coupon is not yet valid")
	ErrCouponInactive    = errors.New("coupon is deactivated")
)

type DiscountType string

const (
	DiscountPercentage DiscountType = "PERCENTAGE"
	DiscountFixed      DiscountType = "FIXED"
)

func (t DiscountType) IsValid() bool {
	return t == DiscountPercentage || t == DiscountFixed
}

type Coupon struct {
	id            uuid.UUID
	code          Code
	discountType  DiscountType
	discountValue decimal.Decimal
	eligibility   Eligibility
	active        bool
	validFrom     *time.Time
	validTo       *time.Time
	createdAt     time.Time
	updatedAt     time.Time
}

func NewCoupon(
	id uuid.UUID,
	code string,
	discountType DiscountType,
	discountValue decimal.Decimal,
	eligibility Eligibility,
	active bool,
	validFrom, validTo *time.Time,
) (*Coupon, error) {
	couponCode, err := NewCode(code)
	if err != nil {
		return nil, err
	}
	if !discountType.IsValid() {
		return nil, ErrInvalidDiscountType
	}
	if discountValue.IsNegative() {
		return nil, ErrInvalidDiscountValue
	}
	if discountType == DiscountPercentage && discountValue.GreaterThan(decimal.NewFromInt(100)) {
		return nil, ErrInvalidDiscountValue
	}

	return &Coupon{
		id:            id,
		code:          couponCode,
		discountType:  discountType,
		discountValue: discountValue,
		eligibility:   eligibility,
		active:        active,
		validFrom:     validFrom,
		validTo:       validTo,
	}, nil
}

func (c *Coupon) IsValidAt(t time.Time) bool {
	if !c.active {
		return false
	}
	if c.validFrom != nil && t.Before(*c.validFrom) {
		return false
	}
	if c.validTo != nil && t.After(*c.validTo) {
		return false
	}
	return true
}

// ValidateUsage reports why the coupon cannot be used at t. A passing coupon
// may still match zero cart lines; that is not a usage failure.
func (c *Coupon) ValidateUsage(t time.Time) error {
	if !c.active {
		return ErrCouponInactive
	}
	if c.validFrom != nil && t.Before(*c.validFrom) {
		return ErrCouponNotYetValid
	}
	if c.validTo != nil && t.After(*c.validTo) {
		return ErrCouponExpired
	}
	return nil
}

func (c *Coupon) Matches(v catalog.VariantSnapshot) bool {
	return c.eligibility.Matches(v)
}

func (c *Coupon) ID() uuid.UUID                  { return c.id }
func (c *Coupon) Code() Code                     { return c.code }
func (c *Coupon) DiscountType() DiscountType     { return c.discountType }
func (c *Coupon) DiscountValue() decimal.Decimal { return c.discountValue }
func (c *Coupon) Eligibility() Eligibility       { return c.eligibility }
func (c *Coupon) IsActive() bool                 { return c.active }
func (c *Coupon) ValidFrom() *time.Time          { return c.validFrom }
func (c *Coupon) ValidTo() *time.Time            { return c.validTo }
func (c *Coupon) CreatedAt() time.Time           { return c.createdAt }
func (c *Coupon) UpdatedAt() time.Time           { return c.updatedAt }
