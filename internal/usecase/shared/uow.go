package shared

import (
	"context"
	"time"

	"shopcore/internal/domain/cart"
	"shopcore/internal/domain/catalog"
	"shopcore/internal/domain/checkout"

	"github.com/google/uuid"
)

type UnitOfWork interface {
	// Within: full read-write transaction with retry on serialization
	// failures; every write path of the core runs through here.
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// WithinReadOnly: read-only transaction for multi-table consistent reads
	// (cart lines + live variant snapshots must come from one snapshot).
	WithinReadOnly(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// Repos: pool-backed access for single-statement operations that do not
	// need an explicit transaction.
	Repos() Tx
}

// Tx exposes the repositories bound to one transaction (or to the pool for
// Repos()).
type Tx interface {
	Carts() CartRepository
	Variants() VariantReadStore
	Coupons() CouponReadStore
	Stock() StockRepository
	Intents() IntentRepository
	Orders() OrderRepository
	Merges() MergeRepository
}

type CartRepository interface {
	// AddAccumulate upserts a line, adding qty to any existing quantity in
	// the same statement, and returns the resulting quantity.
	AddAccumulate(ctx context.Context, ownerID, variantID uuid.UUID, qty int32) (int32, error)
	SetQuantity(ctx context.Context, ownerID, variantID uuid.UUID, qty int32) error
	Remove(ctx context.Context, ownerID, variantID uuid.UUID) error
	Clear(ctx context.Context, ownerID uuid.UUID) error
	List(ctx context.Context, ownerID uuid.UUID) ([]*cart.Line, error)

	SetCoupon(ctx context.Context, ownerID uuid.UUID, code string) error
	ClearCoupon(ctx context.Context, ownerID uuid.UUID) error
	AppliedCoupon(ctx context.Context, ownerID uuid.UUID) (*string, error)
}

type VariantReadStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*catalog.VariantSnapshot, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]catalog.VariantSnapshot, error)
}

type CouponReadStore interface {
	FindByCode(ctx context.Context, code string) (*CouponSnapshot, error)
}

type StockRepository interface {
	// DecrementAll runs the conditional decrement for every line inside the
	// caller's transaction; an infra.StockConflictError aborts the whole
	// order (all-or-nothing).
	DecrementAll(ctx context.Context, lines []checkout.OrderLine) error
}

type IntentRepository interface {
	Create(ctx context.Context, intent *checkout.PaymentIntent) error
	FindByID(ctx context.Context, id uuid.UUID) (*checkout.PaymentIntent, error)
	// FindActiveByFingerprint returns the non-terminal intent for
	// (owner, fingerprint), if any.
	FindActiveByFingerprint(ctx context.Context, ownerID uuid.UUID, fingerprint string) (*checkout.PaymentIntent, error)
	// Save persists the current status/failure reason of the entity.
	Save(ctx context.Context, intent *checkout.PaymentIntent) error
	ExpireOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type OrderRepository interface {
	Create(ctx context.Context, order *checkout.Order) error
	FindByID(ctx context.Context, id, ownerID uuid.UUID) (*checkout.Order, error)
	FindByIntentID(ctx context.Context, intentID uuid.UUID) (*checkout.Order, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*checkout.Order, error)
}

type MergeRepository interface {
	// ClaimToken records a guest-cart merge token; false means the token was
	// already consumed and the merge is a replay.
	ClaimToken(ctx context.Context, token, ownerID uuid.UUID) (bool, error)
}
