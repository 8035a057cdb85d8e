package shared

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CouponSnapshot is the raw persisted shape of a coupon; the command layer
// turns it into a domain entity before use.
type CouponSnapshot struct {
	ID            uuid.UUID
	Code          string
	DiscountType  string
	DiscountValue decimal.Decimal
	Scope         string
	EligibleIDs   []uuid.UUID
	Active        bool
	ValidFrom     *time.Time
	ValidTo       *time.Time
}

// GuestItem is one line of the client-held anonymous cart proposed for merge.
type GuestItem struct {
	VariantID uuid.UUID
	Quantity  int32
}

// MergeOutcome tells the caller what happened to each proposed guest line so
// the UI can show a notice for clamped or dropped items.
type MergeOutcome struct {
	Merged  []uuid.UUID
	Clamped []uuid.UUID
	Skipped []uuid.UUID
	// Replayed is true when the merge token was already consumed; the cart
	// was left exactly as the first merge produced it.
	Replayed bool
}
