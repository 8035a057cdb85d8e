package errs

import "errors"

// Domain-specific sentinel errors for CQRS usecase layers
var (
	// Cart errors
	ErrVariantNotFound    = errors.New("variant not found")
	ErrVariantUnavailable = errors.New("variant not purchasable")
	ErrInvalidQuantity    = errors.New("invalid quantity")
	ErrOutOfStock         = errors.New("requested quantity exceeds available stock")
	ErrCartLineNotFound   = errors.New("cart line not found")

	// Coupon errors
	ErrCouponInvalid = errors.New("coupon invalid")

	// Checkout errors
	ErrEmptyCart          = errors.New("cart is empty")
	ErrStockConflict      = errors.New("stock conflict at commit")
	ErrInvalidSignature   = errors.New("invalid gateway signature")
	ErrStaleCheckout      = errors.New("payment intent already finalized or expired")
	ErrIntentNotFound     = errors.New("payment intent not found")
	ErrOrderNotFound      = errors.New("order not found")
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
	ErrMergeTokenRequired = errors.New("merge token required")

	// Operation errors
	ErrDatabaseOperationFailed = errors.New("database operation failed")
)
