package checkout

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"shopcore/internal/domain/pricing"
)

// Fingerprint derives the idempotency key that ties a payment intent to an
// exact priced cart. Lines are sorted by variant id so the hash is stable
// under cart-listing order; any change to a quantity, a live price, the
// coupon or the total produces a different fingerprint and therefore a new
// intent.
func Fingerprint(lines []pricing.PricedLine, couponCode *string, totalPaise int64) string {
	parts := make([]string, 0, len(lines)+2)
	for _, l := range lines {
		parts = append(parts, fmt.Sprintf("%s:%d:%d", l.VariantID, l.Quantity, l.UnitPricePaise))
	}
	sort.Strings(parts)

	coupon := ""
	if couponCode != nil {
		coupon = *couponCode
	}
	parts = append(parts, "coupon="+coupon, fmt.Sprintf("total=%d", totalPaise))

	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}
