package queries

import (
	"context"
	"time"

	"shopcore/internal/domain/cart"
	"shopcore/internal/domain/catalog"
	"shopcore/internal/domain/coupon"
	"shopcore/internal/domain/pricing"
	"shopcore/internal/infra"
	"shopcore/internal/pkg/clock"
	"shopcore/internal/pkg/errs"
	"shopcore/internal/usecase/shared"

	"github.com/google/uuid"
)

// CouponState is how the applied coupon relates to the current cart. INVALID
// and NOT_APPLICABLE are deliberately distinct states: an unknown or expired
// code is a problem with the coupon, a valid code matching no line is a
// property of the cart.
type CouponState string

const (
	CouponApplied       CouponState = "APPLIED"
	CouponNotApplicable CouponState = "NOT_APPLICABLE"
	CouponInvalid       CouponState = "INVALID"
)

type CartLineView struct {
	VariantID      uuid.UUID
	Quantity       int32
	UnitPricePaise int64
	SubtotalPaise  int64
	CouponEligible bool
	// Available is false when the variant no longer exists or is not
	// purchasable; such lines are shown but excluded from pricing.
	Available bool
	InStock   bool
}

// CartView is recomputed from live catalog data on every read. Nothing in it
// is persisted except the lines' (variant, quantity) pairs.
type CartView struct {
	Lines                 []CartLineView
	SubtotalPaise         int64
	EligibleSubtotalPaise int64
	DiscountPaise         int64
	TotalPaise            int64
	CouponCode            *string
	CouponState           CouponState
	DiscountCapped        bool
}

type CartQueries interface {
	GetCart(ctx context.Context, ownerID uuid.UUID) (*CartView, error)
}

type cartQueriesImpl struct {
	uow   shared.UnitOfWork
	clock clock.Clock
}

func NewCartQueries(uow shared.UnitOfWork, clock clock.Clock) CartQueries {
	return &cartQueriesImpl{uow: uow, clock: clock}
}

// GetCart reads lines, applied coupon and variant snapshots inside one
// read-only transaction so the priced view is internally consistent.
func (q *cartQueriesImpl) GetCart(ctx context.Context, ownerID uuid.UUID) (*CartView, error) {
	var view *CartView
	err := q.uow.WithinReadOnly(ctx, func(ctx context.Context, tx shared.Tx) error {
		lines, err := tx.Carts().List(ctx, ownerID)
		if err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}

		code, err := tx.Carts().AppliedCoupon(ctx, ownerID)
		if err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}

		view, err = buildCartView(ctx, tx, lines, code, q.clock.Now())
		return err
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

func buildCartView(ctx context.Context, tx shared.Tx, lines []*cart.Line, code *string, now time.Time) (*CartView, error) {
	ids := make([]uuid.UUID, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.VariantID())
	}

	var snaps map[uuid.UUID]catalog.VariantSnapshot
	if len(ids) > 0 {
		var err error
		snaps, err = tx.Variants().FindByIDs(ctx, ids)
		if err != nil {
			return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
	}

	couponEntity, state, err := resolveAppliedCoupon(ctx, tx, code, now)
	if err != nil {
		return nil, err
	}

	pricingLines := make([]pricing.Line, 0, len(lines))
	for _, l := range lines {
		snap, ok := snaps[l.VariantID()]
		if !ok || !snap.IsPurchasable {
			continue
		}
		pricingLines = append(pricingLines, pricing.Line{Snapshot: snap, Quantity: l.Quantity().Int32()})
	}

	result := pricing.Evaluate(pricingLines, couponEntity)

	pricedByVariant := make(map[uuid.UUID]pricing.PricedLine, len(result.Lines))
	for _, pl := range result.Lines {
		pricedByVariant[pl.VariantID] = pl
	}

	viewLines := make([]CartLineView, 0, len(lines))
	for _, l := range lines {
		snap, ok := snaps[l.VariantID()]
		if !ok || !snap.IsPurchasable {
			viewLines = append(viewLines, CartLineView{
				VariantID: l.VariantID(),
				Quantity:  l.Quantity().Int32(),
				Available: false,
			})
			continue
		}
		pl := pricedByVariant[l.VariantID()]
		viewLines = append(viewLines, CartLineView{
			VariantID:      pl.VariantID,
			Quantity:       pl.Quantity,
			UnitPricePaise: pl.UnitPricePaise,
			SubtotalPaise:  pl.SubtotalPaise,
			CouponEligible: pl.CouponEligible,
			Available:      true,
			InStock:        snap.HasStock(pl.Quantity),
		})
	}

	if state == "" && couponEntity != nil {
		if result.CouponApplicable {
			state = CouponApplied
		} else {
			state = CouponNotApplicable
		}
	}

	return &CartView{
		Lines:                 viewLines,
		SubtotalPaise:         result.SubtotalPaise,
		EligibleSubtotalPaise: result.EligibleSubtotalPaise,
		DiscountPaise:         result.DiscountPaise,
		TotalPaise:            result.TotalPaise,
		CouponCode:            code,
		CouponState:           state,
		DiscountCapped:        result.DiscountCapped,
	}, nil
}

// resolveAppliedCoupon turns a stored code into a validated domain coupon.
// A code that cannot be resolved yields (nil, CouponInvalid, nil): the cart
// still prices, just without a discount.
func resolveAppliedCoupon(ctx context.Context, tx shared.Tx, code *string, now time.Time) (*coupon.Coupon, CouponState, error) {
	if code == nil {
		return nil, "", nil
	}

	snap, err := tx.Coupons().FindByCode(ctx, *code)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, CouponInvalid, nil
		}
		return nil, "", errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	couponEntity, err := CouponFromSnapshot(snap)
	if err != nil {
		return nil, CouponInvalid, nil
	}
	if err := couponEntity.ValidateUsage(now); err != nil {
		return nil, CouponInvalid, nil
	}
	return couponEntity, "", nil
}

func CouponFromSnapshot(snap *shared.CouponSnapshot) (*coupon.Coupon, error) {
	eligibility, err := coupon.NewEligibility(coupon.Scope(snap.Scope), snap.EligibleIDs)
	if err != nil {
		return nil, err
	}
	return coupon.NewCoupon(
		snap.ID,
		snap.Code,
		coupon.DiscountType(snap.DiscountType),
		snap.DiscountValue,
		eligibility,
		snap.Active,
		snap.ValidFrom,
		snap.ValidTo,
	)
}
