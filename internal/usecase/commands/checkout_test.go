//go:build unit

package commands_test

import (
	"context"
	"testing"
	"time"

	"shopcore/internal/domain/catalog"
	"shopcore/internal/domain/checkout"
	"shopcore/internal/infra"
	"shopcore/internal/pkg/clock"
	"shopcore/internal/pkg/errs"
	"shopcore/internal/pkg/signature"
	"shopcore/internal/usecase/commands"
	"shopcore/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type CheckoutUseCaseTestSuite struct {
	suite.Suite
	store     *fakeStore
	uow       *fakeUoW
	gateway   *fakeGateway
	verifier  *signature.Verifier
	clk       *clock.MockClock
	usecase   commands.CheckoutCommands
	ownerID   uuid.UUID
	variantID uuid.UUID
}

func (s *CheckoutUseCaseTestSuite) SetupTest() {
	s.reset()
}

// reset rebuilds the whole fixture; subtests call it so state never leaks
// between them.
func (s *CheckoutUseCaseTestSuite) reset() {
	s.store = newFakeStore()
	s.uow = newFakeUoW(s.store)
	s.gateway = &fakeGateway{}
	s.verifier = signature.NewVerifier("whsec_test")
	s.clk = clock.NewMockClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	s.usecase = commands.NewCheckoutUseCase(s.uow, s.gateway, s.verifier, s.clk)

	s.ownerID = uuid.New()
	s.variantID = uuid.New()
	s.store.variants[s.variantID] = catalog.VariantSnapshot{
		VariantID:      s.variantID,
		UnitPricePaise: 49900,
		AvailableQty:   10,
		IsPurchasable:  true,
		BrandID:        uuid.New(),
	}
	s.store.lines[s.ownerID] = map[uuid.UUID]int32{s.variantID: 2}
}

func TestCheckoutUseCaseSuite(t *testing.T) {
	suite.Run(t, new(CheckoutUseCaseTestSuite))
}

func (s *CheckoutUseCaseTestSuite) addCoupon(code string, percent int64) {
	s.store.coupons[code] = shared.CouponSnapshot{
		ID:            uuid.New(),
		Code:          code,
		DiscountType:  "PERCENTAGE",
		DiscountValue: decimal.NewFromInt(percent),
		Scope:         "all",
		Active:        true,
	}
}

func (s *CheckoutUseCaseTestSuite) begin() *commands.BeginCheckoutResult {
	result, err := s.usecase.BeginCheckout(context.Background(), s.ownerID)
	s.Require().NoError(err)
	return result
}

func (s *CheckoutUseCaseTestSuite) verifyInput(result *commands.BeginCheckoutResult, paymentID string) commands.VerifyPaymentInput {
	return commands.VerifyPaymentInput{
		IntentID:          result.IntentID,
		GatewayPaymentID:  paymentID,
		Signature:         s.verifier.Sign(result.GatewayOrderID, paymentID),
		ShippingAddressID: uuid.New(),
	}
}

// ================================================================================
// TestBeginCheckout
// ================================================================================

func (s *CheckoutUseCaseTestSuite) TestBeginCheckout() {
	s.Run("success: creates an intent bound to the priced cart", func() {
		s.reset()

		result := s.begin()

		s.Equal(int64(99800), result.AmountPaise)
		s.Equal("INR", result.Currency)
		s.Equal(int64(0), result.DiscountPaise)
		s.False(result.Reused)
		s.False(result.MinimumApplied)

		stored := s.store.intents[result.IntentID]
		s.Require().NotNil(stored)
		s.Equal(checkout.IntentCreated, stored.Status())
		s.Equal(result.GatewayOrderID, stored.GatewayOrderID())
	})

	s.Run("success: identical cart reuses the live intent", func() {
		s.reset()

		first := s.begin()
		second := s.begin()

		s.Equal(first.IntentID, second.IntentID)
		s.True(second.Reused)
		s.Equal(1, s.gateway.calls)
	})

	s.Run("success: changed cart gets a fresh intent", func() {
		s.reset()

		first := s.begin()
		s.store.lines[s.ownerID][s.variantID] = 3
		second := s.begin()

		s.NotEqual(first.IntentID, second.IntentID)
		s.False(second.Reused)
		s.Equal(int64(149700), second.AmountPaise)
		s.Equal(2, s.gateway.calls)
	})

	s.Run("success: expired intent is expired and replaced", func() {
		s.reset()

		first := s.begin()
		s.clk.Add(16 * time.Minute)
		second := s.begin()

		s.NotEqual(first.IntentID, second.IntentID)
		s.False(second.Reused)
		s.Equal(checkout.IntentExpired, s.store.intents[first.IntentID].Status())
	})

	s.Run("success: coupon discount is carried onto the intent", func() {
		s.reset()
		s.addCoupon("SAVE20", 20)
		s.store.cartCoupons[s.ownerID] = "SAVE20"

		result := s.begin()

		s.Equal(int64(19960), result.DiscountPaise)
		s.Equal(int64(79840), result.AmountPaise)
		s.False(result.MinimumApplied)
	})

	s.Run("success: total below one rupee is clamped to the minimum", func() {
		s.reset()
		cheapID := uuid.New()
		s.store.variants[cheapID] = catalog.VariantSnapshot{
			VariantID:      cheapID,
			UnitPricePaise: 40,
			AvailableQty:   5,
			IsPurchasable:  true,
			BrandID:        uuid.New(),
		}
		s.store.lines[s.ownerID] = map[uuid.UUID]int32{cheapID: 1}

		result := s.begin()

		s.Equal(int64(100), result.AmountPaise)
		s.True(result.MinimumApplied)
	})

	s.Run("error: empty cart", func() {
		s.reset()
		delete(s.store.lines, s.ownerID)

		_, err := s.usecase.BeginCheckout(context.Background(), s.ownerID)
		s.ErrorIs(err, errs.ErrEmptyCart)
	})

	s.Run("error: line no longer purchasable", func() {
		s.reset()
		snap := s.store.variants[s.variantID]
		snap.IsPurchasable = false
		s.store.variants[s.variantID] = snap

		_, err := s.usecase.BeginCheckout(context.Background(), s.ownerID)
		s.ErrorIs(err, errs.ErrVariantUnavailable)
	})

	s.Run("error: applied coupon no longer exists", func() {
		s.reset()
		s.store.cartCoupons[s.ownerID] = "GONE123"

		_, err := s.usecase.BeginCheckout(context.Background(), s.ownerID)
		s.ErrorIs(err, errs.ErrCouponInvalid)
	})

	s.Run("error: gateway failure creates no intent", func() {
		s.reset()
		s.gateway.err = errs.ErrGatewayUnavailable

		_, err := s.usecase.BeginCheckout(context.Background(), s.ownerID)
		s.ErrorIs(err, errs.ErrGatewayUnavailable)
		s.Empty(s.store.intents)
	})
}

// ================================================================================
// TestVerifyPayment
// ================================================================================

func (s *CheckoutUseCaseTestSuite) TestVerifyPayment() {
	s.Run("success: confirms the intent and freezes the order", func() {
		s.reset()

		result := s.begin()
		verified, err := s.usecase.VerifyPayment(context.Background(), s.ownerID, s.verifyInput(result, "pay_1"))
		s.Require().NoError(err)
		s.False(verified.Replayed)
		s.Equal(int64(99800), verified.AmountPaise)

		s.Equal(checkout.IntentConfirmed, s.store.intents[result.IntentID].Status())

		order := s.store.orders[verified.OrderID]
		s.Require().NotNil(order)
		s.Equal(checkout.OrderPending, order.Status())
		s.Equal(int64(99800), order.TotalPaise())
		s.Equal(result.IntentID, order.PaymentIntentID())

		s.Empty(s.store.lines[s.ownerID])
		s.Equal(int32(8), s.store.variants[s.variantID].AvailableQty)
	})

	s.Run("success: redelivered callback replays the committed order", func() {
		s.reset()

		result := s.begin()
		input := s.verifyInput(result, "pay_1")

		first, err := s.usecase.VerifyPayment(context.Background(), s.ownerID, input)
		s.Require().NoError(err)
		second, err := s.usecase.VerifyPayment(context.Background(), s.ownerID, input)
		s.Require().NoError(err)

		s.Equal(first.OrderID, second.OrderID)
		s.True(second.Replayed)
		s.Len(s.store.orders, 1)
		s.Equal(int32(8), s.store.variants[s.variantID].AvailableQty)
	})

	s.Run("error: forged signature fails the intent", func() {
		s.reset()

		result := s.begin()
		input := s.verifyInput(result, "pay_1")
		input.Signature = "deadbeef"

		_, err := s.usecase.VerifyPayment(context.Background(), s.ownerID, input)
		s.ErrorIs(err, errs.ErrInvalidSignature)

		stored := s.store.intents[result.IntentID]
		s.Equal(checkout.IntentFailed, stored.Status())
		s.Require().NotNil(stored.FailureReason())
		s.Equal(checkout.ReasonInvalidSignature, *stored.FailureReason())

		s.Equal(int32(2), s.store.lineQty(s.ownerID, s.variantID))
		s.Empty(s.store.orders)
	})

	s.Run("error: unknown intent", func() {
		s.reset()

		input := commands.VerifyPaymentInput{IntentID: uuid.New(), GatewayPaymentID: "pay_1", Signature: "sig", ShippingAddressID: uuid.New()}
		_, err := s.usecase.VerifyPayment(context.Background(), s.ownerID, input)
		s.ErrorIs(err, errs.ErrIntentNotFound)
	})

	s.Run("error: another owner's intent is invisible", func() {
		s.reset()

		result := s.begin()
		_, err := s.usecase.VerifyPayment(context.Background(), uuid.New(), s.verifyInput(result, "pay_1"))
		s.ErrorIs(err, errs.ErrIntentNotFound)
	})

	s.Run("error: callback after the TTL expires the intent", func() {
		s.reset()

		result := s.begin()
		s.clk.Add(16 * time.Minute)

		_, err := s.usecase.VerifyPayment(context.Background(), s.ownerID, s.verifyInput(result, "pay_1"))
		s.ErrorIs(err, errs.ErrStaleCheckout)
		s.Equal(checkout.IntentExpired, s.store.intents[result.IntentID].Status())
	})

	s.Run("error: cart edited since begin invalidates the intent", func() {
		s.reset()

		result := s.begin()
		s.store.lines[s.ownerID][s.variantID] = 3

		_, err := s.usecase.VerifyPayment(context.Background(), s.ownerID, s.verifyInput(result, "pay_1"))
		s.ErrorIs(err, errs.ErrStaleCheckout)

		s.Equal(checkout.IntentCreated, s.store.intents[result.IntentID].Status())
		s.Equal(int32(3), s.store.lineQty(s.ownerID, s.variantID))
		s.Empty(s.store.orders)
	})

	s.Run("error: stock raced away between begin and verify", func() {
		s.reset()

		result := s.begin()
		snap := s.store.variants[s.variantID]
		snap.AvailableQty = 1
		s.store.variants[s.variantID] = snap

		_, err := s.usecase.VerifyPayment(context.Background(), s.ownerID, s.verifyInput(result, "pay_1"))
		s.ErrorIs(err, errs.ErrStockConflict)

		var conflict infra.StockConflictError
		s.Require().ErrorAs(err, &conflict)
		s.Equal([]uuid.UUID{s.variantID}, conflict.VariantIDs)

		stored := s.store.intents[result.IntentID]
		s.Equal(checkout.IntentFailed, stored.Status())
		s.Require().NotNil(stored.FailureReason())
		s.Equal(checkout.ReasonOutOfStock, *stored.FailureReason())

		// The finalize transaction rolled back: cart and stock untouched,
		// no order created.
		s.Equal(int32(2), s.store.lineQty(s.ownerID, s.variantID))
		s.Equal(int32(1), s.store.variants[s.variantID].AvailableQty)
		s.Empty(s.store.orders)
	})

	s.Run("error: terminal intent cannot be verified again", func() {
		s.reset()

		result := s.begin()
		input := s.verifyInput(result, "pay_1")
		input.Signature = "deadbeef"
		_, err := s.usecase.VerifyPayment(context.Background(), s.ownerID, input)
		s.Require().Error(err)

		_, err = s.usecase.VerifyPayment(context.Background(), s.ownerID, s.verifyInput(result, "pay_1"))
		s.ErrorIs(err, errs.ErrStaleCheckout)
	})
}

// ================================================================================
// TestExpireStaleIntents
// ================================================================================

func (s *CheckoutUseCaseTestSuite) TestExpireStaleIntents() {
	s.Run("success: sweeps CREATED intents past their TTL", func() {
		s.reset()

		result := s.begin()
		s.clk.Add(16 * time.Minute)

		expired, err := s.usecase.ExpireStaleIntents(context.Background())
		s.Require().NoError(err)
		s.Equal(int64(1), expired)
		s.Equal(checkout.IntentExpired, s.store.intents[result.IntentID].Status())

		expired, err = s.usecase.ExpireStaleIntents(context.Background())
		s.Require().NoError(err)
		s.Equal(int64(0), expired)
	})

	s.Run("success: fresh intents are left alone", func() {
		s.reset()

		result := s.begin()
		s.clk.Add(5 * time.Minute)

		expired, err := s.usecase.ExpireStaleIntents(context.Background())
		s.Require().NoError(err)
		s.Equal(int64(0), expired)
		s.Equal(checkout.IntentCreated, s.store.intents[result.IntentID].Status())
	})
}
