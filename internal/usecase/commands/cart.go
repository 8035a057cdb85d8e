package commands

import (
	"context"

	"shopcore/internal/domain/cart"
	"shopcore/internal/domain/catalog"
	"shopcore/internal/infra"
	"shopcore/internal/pkg/clock"
	"shopcore/internal/pkg/errs"
	"shopcore/internal/usecase/queries"
	"shopcore/internal/usecase/shared"

	"github.com/google/uuid"
)

type CartCommands interface {
	AddItem(ctx context.Context, ownerID, variantID uuid.UUID, qty int32) (*queries.CartView, error)
	SetQuantity(ctx context.Context, ownerID, variantID uuid.UUID, qty int32) (*queries.CartView, error)
	RemoveItem(ctx context.Context, ownerID, variantID uuid.UUID) (*queries.CartView, error)
	ClearCart(ctx context.Context, ownerID uuid.UUID) error
	ApplyCoupon(ctx context.Context, ownerID uuid.UUID, code string) (*queries.CartView, error)
	RemoveCoupon(ctx context.Context, ownerID uuid.UUID) (*queries.CartView, error)
}

type cartUseCaseImpl struct {
	uow         shared.UnitOfWork
	cartQueries queries.CartQueries
	clock       clock.Clock
}

func NewCartUseCase(uow shared.UnitOfWork, cartQueries queries.CartQueries, clock clock.Clock) CartCommands {
	return &cartUseCaseImpl{
		uow:         uow,
		cartQueries: cartQueries,
		clock:       clock,
	}
}

// AddItem accumulates onto any existing line for the variant. The stock check
// runs against the post-accumulation quantity inside the same transaction, so
// a rejected add leaves the line exactly as it was.
func (c *cartUseCaseImpl) AddItem(ctx context.Context, ownerID, variantID uuid.UUID, qty int32) (*queries.CartView, error) {
	if _, err := cart.NewQuantity(qty); err != nil {
		return nil, errs.ErrInvalidQuantity
	}

	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		snap, err := findPurchasableVariant(ctx, tx, variantID)
		if err != nil {
			return err
		}

		newQty, err := tx.Carts().AddAccumulate(ctx, ownerID, variantID, qty)
		if err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		if !snap.HasStock(newQty) {
			return errs.ErrOutOfStock
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return c.cartQueries.GetCart(ctx, ownerID)
}

func (c *cartUseCaseImpl) SetQuantity(ctx context.Context, ownerID, variantID uuid.UUID, qty int32) (*queries.CartView, error) {
	if _, err := cart.NewQuantity(qty); err != nil {
		return nil, errs.ErrInvalidQuantity
	}

	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		snap, err := findPurchasableVariant(ctx, tx, variantID)
		if err != nil {
			return err
		}
		if !snap.HasStock(qty) {
			return errs.ErrOutOfStock
		}

		if err := tx.Carts().SetQuantity(ctx, ownerID, variantID, qty); err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return errs.ErrCartLineNotFound
			}
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return c.cartQueries.GetCart(ctx, ownerID)
}

func (c *cartUseCaseImpl) RemoveItem(ctx context.Context, ownerID, variantID uuid.UUID) (*queries.CartView, error) {
	if err := c.uow.Repos().Carts().Remove(ctx, ownerID, variantID); err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.ErrCartLineNotFound
		}
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	return c.cartQueries.GetCart(ctx, ownerID)
}

func (c *cartUseCaseImpl) ClearCart(ctx context.Context, ownerID uuid.UUID) error {
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		if err := tx.Carts().Clear(ctx, ownerID); err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		return nil
	})
	return err
}

// ApplyCoupon validates the code before storing it. A coupon matching no line
// still applies; the cart view reports it as NOT_APPLICABLE rather than
// rejecting it, because future cart edits may make it match.
func (c *cartUseCaseImpl) ApplyCoupon(ctx context.Context, ownerID uuid.UUID, code string) (*queries.CartView, error) {
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		snap, err := tx.Coupons().FindByCode(ctx, code)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return errs.ErrCouponInvalid
			}
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}

		couponEntity, err := queries.CouponFromSnapshot(snap)
		if err != nil {
			return errs.WithSecondary(errs.ErrCouponInvalid, err)
		}
		if err := couponEntity.ValidateUsage(c.clock.Now()); err != nil {
			return errs.WithSecondary(errs.ErrCouponInvalid, err)
		}

		if err := tx.Carts().SetCoupon(ctx, ownerID, couponEntity.Code().String()); err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return c.cartQueries.GetCart(ctx, ownerID)
}

func (c *cartUseCaseImpl) RemoveCoupon(ctx context.Context, ownerID uuid.UUID) (*queries.CartView, error) {
	if err := c.uow.Repos().Carts().ClearCoupon(ctx, ownerID); err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	return c.cartQueries.GetCart(ctx, ownerID)
}

func findPurchasableVariant(ctx context.Context, tx shared.Tx, variantID uuid.UUID) (*catalog.VariantSnapshot, error) {
	snap, err := tx.Variants().FindByID(ctx, variantID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.ErrVariantNotFound
		}
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	if !snap.IsPurchasable {
		return nil, errs.ErrVariantUnavailable
	}
	return snap, nil
}
