package pricing

import (
	"shopcore/internal/domain/catalog"

	"github.com/google/uuid"
)

// Line pairs a cart quantity with the live variant snapshot it prices
// against. The join happens once, at read time, and everything downstream
// consumes this explicit shape.
type Line struct {
	Snapshot catalog.VariantSnapshot
	Quantity int32
}

// PricedLine is one evaluated line of a Pricing. Unit price is the effective
// (sale-aware) price captured at evaluation time.
type PricedLine struct {
	VariantID      uuid.UUID
	Quantity       int32
	UnitPricePaise int64
	SubtotalPaise  int64
	CouponEligible bool
}

// Pricing is the derived, never-persisted pricing of a cart. It is a pure
// function of the cart lines, the variant snapshots and the coupon, so it is
// recomputed on every read.
type Pricing struct {
	Lines                 []PricedLine
	SubtotalPaise         int64
	EligibleSubtotalPaise int64
	MatchedLineCount      int
	DiscountPaise         int64
	TotalPaise            int64
	CouponCode            *string
	// CouponApplicable is false when the coupon is valid but matched no
	// line; callers distinguish this from an invalid coupon upstream.
	CouponApplicable bool
	DiscountCapped   bool
}
