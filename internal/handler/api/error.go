package api

import (
	"errors"
	"net/http"

	"shopcore/internal/handler/httperr"
	"shopcore/internal/infra"
	"shopcore/internal/pkg/errs"

	"github.com/gin-gonic/gin"
)

// abortDomainError maps usecase sentinels onto HTTP statuses in one place so
// every handler reports the same way.
func abortDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errs.ErrVariantNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err, "Variant not found", nil)
	case errors.Is(err, errs.ErrCartLineNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err, "Cart line not found", nil)
	case errors.Is(err, errs.ErrIntentNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err, "Payment intent not found", nil)
	case errors.Is(err, errs.ErrOrderNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err, "Order not found", nil)
	case errors.Is(err, errs.ErrInvalidQuantity):
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid quantity", nil)
	case errors.Is(err, errs.ErrCouponInvalid):
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid or expired coupon", nil)
	case errors.Is(err, errs.ErrInvalidSignature):
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid payment signature", nil)
	case errors.Is(err, errs.ErrMergeTokenRequired):
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Merge token required", nil)
	case errors.Is(err, errs.ErrVariantUnavailable):
		httperr.AbortWithError(c, http.StatusUnprocessableEntity, err, "Variant not purchasable", nil)
	case errors.Is(err, errs.ErrEmptyCart):
		httperr.AbortWithError(c, http.StatusUnprocessableEntity, err, "Cart is empty", nil)
	case errors.Is(err, errs.ErrOutOfStock):
		httperr.AbortWithError(c, http.StatusConflict, err, "Insufficient stock", nil)
	case errors.Is(err, errs.ErrStockConflict):
		httperr.AbortWithError(c, http.StatusConflict, err, "Stock changed during payment", stockConflictDetail(err))
	case errors.Is(err, errs.ErrStaleCheckout):
		httperr.AbortWithError(c, http.StatusConflict, err, "Checkout no longer valid", nil)
	case errors.Is(err, errs.ErrGatewayUnavailable):
		httperr.AbortWithError(c, http.StatusBadGateway, err, "Payment gateway unavailable", nil)
	default:
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
	}
}

// stockConflictDetail names the lines whose stock raced away so the client
// can prompt a quantity reduction instead of a blind retry.
func stockConflictDetail(err error) any {
	var conflict infra.StockConflictError
	if !errors.As(err, &conflict) {
		return nil
	}
	ids := make([]string, len(conflict.VariantIDs))
	for i, id := range conflict.VariantIDs {
		ids[i] = id.String()
	}
	return gin.H{"variant_ids": ids}
}
