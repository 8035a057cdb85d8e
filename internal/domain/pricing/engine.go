package pricing

import (
	"shopcore/internal/domain/coupon"

	"github.com/shopspring/decimal"
)

// Business constants of the engine, not deployment configuration: every
// coupon is capped at 90% of the eligible subtotal, and nothing cheaper than
// ₹1 is ever charged.
const (
	MinOrderPaise int64 = 100
)

var maxDiscountRatio = decimal.NewFromFloat(0.90)

// Evaluate prices a cart against an optional coupon. It performs no I/O and
// mutates nothing; callers pass a nil coupon for plain pricing. The coupon,
// when present, must already have passed ValidateUsage — an unknown or
// expired code never reaches the engine.
func Evaluate(lines []Line, c *coupon.Coupon) Pricing {
	priced := make([]PricedLine, 0, len(lines))

	var subtotal, eligibleSubtotal int64
	matched := 0

	for _, l := range lines {
		unit := l.Snapshot.EffectiveUnitPrice()
		lineSubtotal := unit * int64(l.Quantity)
		eligible := c != nil && c.Matches(l.Snapshot)

		priced = append(priced, PricedLine{
			VariantID:      l.Snapshot.VariantID,
			Quantity:       l.Quantity,
			UnitPricePaise: unit,
			SubtotalPaise:  lineSubtotal,
			CouponEligible: eligible,
		})

		subtotal += lineSubtotal
		if eligible {
			eligibleSubtotal += lineSubtotal
			matched++
		}
	}

	result := Pricing{
		Lines:                 priced,
		SubtotalPaise:         subtotal,
		EligibleSubtotalPaise: eligibleSubtotal,
		MatchedLineCount:      matched,
		TotalPaise:            subtotal,
	}

	if c == nil {
		return result
	}

	code := c.Code().String()
	result.CouponCode = &code

	if eligibleSubtotal == 0 {
		// Valid coupon, zero eligible lines: priced normally, no discount.
		return result
	}
	result.CouponApplicable = true

	discount, capped := computeDiscount(c, eligibleSubtotal)
	result.DiscountPaise = discount
	result.DiscountCapped = capped
	result.TotalPaise = subtotal - discount
	if result.TotalPaise < 0 {
		result.TotalPaise = 0
	}

	return result
}

// computeDiscount applies the type-specific discount, then the global 90%
// cap. The cap truncates rather than rounds so the capped discount can never
// exceed 0.90 * eligibleSubtotal by a rounding paise.
func computeDiscount(c *coupon.Coupon, eligibleSubtotalPaise int64) (int64, bool) {
	eligible := decimal.NewFromInt(eligibleSubtotalPaise)

	var raw decimal.Decimal
	switch c.DiscountType() {
	case coupon.DiscountPercentage:
		// Round half-up to whole paise.
		raw = eligible.Mul(c.DiscountValue()).Div(decimal.NewFromInt(100)).Round(0)
	case coupon.DiscountFixed:
		raw = decimal.Min(c.DiscountValue(), eligible)
	default:
		return 0, false
	}

	limit := eligible.Mul(maxDiscountRatio).RoundDown(0)
	if raw.GreaterThan(limit) {
		return limit.IntPart(), true
	}
	if raw.IsNegative() {
		return 0, false
	}
	return raw.IntPart(), false
}

// ClampToMinimum raises a discounted total to the minimum chargeable amount.
// The second return reports whether the clamp fired so callers can surface
// it instead of silently charging more than the displayed total.
func ClampToMinimum(totalPaise int64) (int64, bool) {
	if totalPaise < MinOrderPaise {
		return MinOrderPaise, true
	}
	return totalPaise, false
}
