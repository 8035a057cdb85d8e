package commands

import (
	"context"
	"errors"
	"time"

	"shopcore/internal/domain/checkout"
	"shopcore/internal/domain/pricing"
	"shopcore/internal/infra"
	"shopcore/internal/pkg/clock"
	"shopcore/internal/pkg/errs"
	"shopcore/internal/pkg/signature"
	"shopcore/internal/usecase/queries"
	"shopcore/internal/usecase/shared"

	"github.com/google/uuid"
)

type BeginCheckoutResult struct {
	IntentID       uuid.UUID
	GatewayOrderID string
	AmountPaise    int64
	Currency       string
	DiscountPaise  int64
	MinimumApplied bool
	DiscountCapped bool
	// Reused is true when an active intent for the identical priced cart
	// already existed; no new gateway order was created.
	Reused bool
}

type VerifyPaymentInput struct {
	IntentID          uuid.UUID
	GatewayPaymentID  string
	Signature         string
	ShippingAddressID uuid.UUID
}

type VerifyPaymentResult struct {
	OrderID     uuid.UUID
	AmountPaise int64
	// Replayed is true when the intent was already confirmed and the
	// existing order is returned unchanged.
	Replayed bool
}

type CheckoutCommands interface {
	BeginCheckout(ctx context.Context, ownerID uuid.UUID) (*BeginCheckoutResult, error)
	VerifyPayment(ctx context.Context, ownerID uuid.UUID, input VerifyPaymentInput) (*VerifyPaymentResult, error)
	ExpireStaleIntents(ctx context.Context) (int64, error)
}

type checkoutUseCaseImpl struct {
	uow      shared.UnitOfWork
	gateway  shared.PaymentGateway
	verifier *signature.Verifier
	clock    clock.Clock
}

func NewCheckoutUseCase(
	uow shared.UnitOfWork,
	gateway shared.PaymentGateway,
	verifier *signature.Verifier,
	clock clock.Clock,
) CheckoutCommands {
	return &checkoutUseCaseImpl{
		uow:      uow,
		gateway:  gateway,
		verifier: verifier,
		clock:    clock,
	}
}

// BeginCheckout prices the cart, clamps the total to the chargeable minimum
// and binds the result to a payment intent. The cart fingerprint makes this
// idempotent: re-running it over an unchanged cart returns the existing
// intent, and the partial unique index on (owner, fingerprint) closes the
// race when two requests price the same cart concurrently.
func (c *checkoutUseCaseImpl) BeginCheckout(ctx context.Context, ownerID uuid.UUID) (*BeginCheckoutResult, error) {
	now := c.clock.Now()

	var (
		priced     pricing.Pricing
		total      int64
		minApplied bool
	)
	err := c.uow.WithinReadOnly(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		priced, total, minApplied, err = c.priceCartForCheckout(ctx, tx, ownerID)
		return err
	})
	if err != nil {
		return nil, err
	}

	fingerprint := checkout.Fingerprint(priced.Lines, priced.CouponCode, total)
	repos := c.uow.Repos()

	existing, err := repos.Intents().FindActiveByFingerprint(ctx, ownerID, fingerprint)
	if err != nil && !infra.IsKind(err, infra.KindNotFound) {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	if existing != nil {
		if !existing.IsExpiredAt(now) {
			return beginResult(existing, priced, minApplied, true), nil
		}
		if err := existing.Expire(now); err == nil {
			if err := repos.Intents().Save(ctx, existing); err != nil {
				return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
			}
		}
	}

	gatewayOrder, err := c.gateway.CreateOrder(ctx, total, checkout.Currency, fingerprint[:32])
	if err != nil {
		return nil, err
	}

	intent := checkout.NewPaymentIntent(
		gatewayOrder.ID,
		ownerID,
		total,
		fingerprint,
		priced.CouponCode,
		priced.DiscountPaise,
		minApplied,
		now,
	)
	if err := repos.Intents().Create(ctx, intent); err != nil {
		if infra.IsKind(err, infra.KindDuplicateKey) {
			// Lost the race; the winner's intent is the one to pay against.
			winner, findErr := repos.Intents().FindActiveByFingerprint(ctx, ownerID, fingerprint)
			if findErr != nil {
				return nil, errs.Mark(findErr, errs.ErrDatabaseOperationFailed)
			}
			return beginResult(winner, priced, minApplied, true), nil
		}
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	return beginResult(intent, priced, minApplied, false), nil
}

// VerifyPayment is the gateway callback path. Signature, expiry and cart
// fingerprint are all re-checked here; only then does the finalize
// transaction decrement stock, freeze the order and clear the cart, all or
// nothing.
func (c *checkoutUseCaseImpl) VerifyPayment(ctx context.Context, ownerID uuid.UUID, input VerifyPaymentInput) (*VerifyPaymentResult, error) {
	now := c.clock.Now()
	repos := c.uow.Repos()

	intent, err := repos.Intents().FindByID(ctx, input.IntentID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.ErrIntentNotFound
		}
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	if intent.OwnerID() != ownerID {
		return nil, errs.ErrIntentNotFound
	}

	if intent.Status() == checkout.IntentConfirmed {
		return c.replayConfirmed(ctx, intent)
	}
	if intent.IsTerminal() {
		return nil, errs.ErrStaleCheckout
	}
	if intent.IsExpiredAt(now) {
		if expireErr := intent.Expire(now); expireErr == nil {
			if saveErr := repos.Intents().Save(ctx, intent); saveErr != nil {
				return nil, errs.Mark(saveErr, errs.ErrDatabaseOperationFailed)
			}
		}
		return nil, errs.ErrStaleCheckout
	}

	// Constant-time HMAC check; a forged callback fails the intent so the
	// same gateway order cannot be retried against.
	if !c.verifier.Verify(intent.GatewayOrderID(), input.GatewayPaymentID, input.Signature) {
		if failErr := intent.Fail(checkout.ReasonInvalidSignature, now); failErr == nil {
			if saveErr := repos.Intents().Save(ctx, intent); saveErr != nil {
				return nil, errs.Mark(saveErr, errs.ErrDatabaseOperationFailed)
			}
		}
		return nil, errs.ErrInvalidSignature
	}

	result, err := c.finalize(ctx, ownerID, input, now)
	if err != nil {
		var conflict infra.StockConflictError
		if errors.As(err, &conflict) {
			// The finalize transaction rolled back; record the failure on
			// the intent so the client stops retrying this gateway order.
			if failErr := intent.Fail(checkout.ReasonOutOfStock, now); failErr == nil {
				if saveErr := repos.Intents().Save(ctx, intent); saveErr != nil {
					return nil, errs.Mark(saveErr, errs.ErrDatabaseOperationFailed)
				}
			}
			return nil, err
		}
		return nil, err
	}
	return result, nil
}

func (c *checkoutUseCaseImpl) finalize(ctx context.Context, ownerID uuid.UUID, input VerifyPaymentInput, now time.Time) (*VerifyPaymentResult, error) {
	var result *VerifyPaymentResult
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		intent, err := tx.Intents().FindByID(ctx, input.IntentID)
		if err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		if intent.Status() == checkout.IntentConfirmed {
			order, err := tx.Orders().FindByIntentID(ctx, intent.ID())
			if err != nil {
				return errs.Mark(err, errs.ErrDatabaseOperationFailed)
			}
			result = &VerifyPaymentResult{OrderID: order.ID(), AmountPaise: order.TotalPaise(), Replayed: true}
			return nil
		}
		if intent.IsTerminal() {
			return errs.ErrStaleCheckout
		}

		priced, total, _, err := c.priceCartForCheckout(ctx, tx, ownerID)
		if err != nil {
			if errors.Is(err, errs.ErrEmptyCart) {
				return errs.ErrStaleCheckout
			}
			return err
		}

		// The cart must still be exactly what the intent priced. Any edit,
		// price change or coupon change since begin invalidates the intent.
		if checkout.Fingerprint(priced.Lines, priced.CouponCode, total) != intent.CartFingerprint() {
			return errs.ErrStaleCheckout
		}

		if err := intent.BeginVerification(now); err != nil {
			return errs.ErrStaleCheckout
		}
		if err := tx.Intents().Save(ctx, intent); err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}

		order, err := checkout.NewOrder(
			ownerID,
			intent.ID(),
			priced.Lines,
			input.ShippingAddressID,
			intent.DiscountPaise(),
			intent.AmountPaise(),
			now,
		)
		if err != nil {
			return errs.WithSecondary(errs.ErrStaleCheckout, err)
		}

		if err := tx.Stock().DecrementAll(ctx, order.Lines()); err != nil {
			return err
		}

		if err := tx.Orders().Create(ctx, order); err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}

		if err := intent.Confirm(now); err != nil {
			return errs.ErrStaleCheckout
		}
		if err := tx.Intents().Save(ctx, intent); err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}

		if err := tx.Carts().Clear(ctx, ownerID); err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}

		result = &VerifyPaymentResult{OrderID: order.ID(), AmountPaise: order.TotalPaise()}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (c *checkoutUseCaseImpl) replayConfirmed(ctx context.Context, intent *checkout.PaymentIntent) (*VerifyPaymentResult, error) {
	order, err := c.uow.Repos().Orders().FindByIntentID(ctx, intent.ID())
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	return &VerifyPaymentResult{OrderID: order.ID(), AmountPaise: order.TotalPaise(), Replayed: true}, nil
}

// ExpireStaleIntents sweeps CREATED intents past their TTL. Run periodically;
// expiry is also enforced inline on every verify.
func (c *checkoutUseCaseImpl) ExpireStaleIntents(ctx context.Context) (int64, error) {
	cutoff := c.clock.Now().Add(-checkout.IntentTTL)
	expired, err := c.uow.Repos().Intents().ExpireOlderThan(ctx, cutoff)
	if err != nil {
		return 0, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	return expired, nil
}

// priceCartForCheckout is the strict variant of cart pricing: an empty cart,
// an unavailable line or an invalid applied coupon each abort the checkout
// instead of degrading the view.
func (c *checkoutUseCaseImpl) priceCartForCheckout(ctx context.Context, tx shared.Tx, ownerID uuid.UUID) (pricing.Pricing, int64, bool, error) {
	now := c.clock.Now()

	lines, err := tx.Carts().List(ctx, ownerID)
	if err != nil {
		return pricing.Pricing{}, 0, false, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	if len(lines) == 0 {
		return pricing.Pricing{}, 0, false, errs.ErrEmptyCart
	}

	ids := make([]uuid.UUID, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.VariantID())
	}
	snaps, err := tx.Variants().FindByIDs(ctx, ids)
	if err != nil {
		return pricing.Pricing{}, 0, false, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	pricingLines := make([]pricing.Line, 0, len(lines))
	for _, l := range lines {
		snap, ok := snaps[l.VariantID()]
		if !ok || !snap.IsPurchasable {
			return pricing.Pricing{}, 0, false, errs.ErrVariantUnavailable
		}
		pricingLines = append(pricingLines, pricing.Line{Snapshot: snap, Quantity: l.Quantity().Int32()})
	}

	code, err := tx.Carts().AppliedCoupon(ctx, ownerID)
	if err != nil {
		return pricing.Pricing{}, 0, false, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	priced, err := c.evaluateWithCoupon(ctx, tx, pricingLines, code, now)
	if err != nil {
		return pricing.Pricing{}, 0, false, err
	}

	total, minApplied := pricing.ClampToMinimum(priced.TotalPaise)
	return priced, total, minApplied, nil
}

func (c *checkoutUseCaseImpl) evaluateWithCoupon(ctx context.Context, tx shared.Tx, lines []pricing.Line, code *string, now time.Time) (pricing.Pricing, error) {
	if code == nil {
		return pricing.Evaluate(lines, nil), nil
	}

	snap, err := tx.Coupons().FindByCode(ctx, *code)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return pricing.Pricing{}, errs.ErrCouponInvalid
		}
		return pricing.Pricing{}, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	couponEntity, err := queries.CouponFromSnapshot(snap)
	if err != nil {
		return pricing.Pricing{}, errs.WithSecondary(errs.ErrCouponInvalid, err)
	}
	if err := couponEntity.ValidateUsage(now); err != nil {
		return pricing.Pricing{}, errs.WithSecondary(errs.ErrCouponInvalid, err)
	}

	return pricing.Evaluate(lines, couponEntity), nil
}

func beginResult(intent *checkout.PaymentIntent, priced pricing.Pricing, minApplied bool, reused bool) *BeginCheckoutResult {
	return &BeginCheckoutResult{
		IntentID:       intent.ID(),
		GatewayOrderID: intent.GatewayOrderID(),
		AmountPaise:    intent.AmountPaise(),
		Currency:       intent.Currency(),
		DiscountPaise:  intent.DiscountPaise(),
		MinimumApplied: intent.MinimumApplied(),
		DiscountCapped: priced.DiscountCapped,
		Reused:         reused,
	}
}
