package api

import (
	"errors"
	"net/http"

	reqdto "shopcore/internal/handler/dto/request"
	resdto "shopcore/internal/handler/dto/response"
	"shopcore/internal/handler/httperr"
	"shopcore/internal/handler/middleware"
	"shopcore/internal/usecase/commands"

	"github.com/gin-gonic/gin"
)

type CheckoutHandler struct {
	cmds commands.CheckoutCommands
}

func NewCheckoutHandler(cmds commands.CheckoutCommands) *CheckoutHandler {
	return &CheckoutHandler{cmds: cmds}
}

// @Summary Begin checkout
// @Description Price the cart and create (or reuse) a payment intent bound to it
// @Tags checkout
// @Produce json
// @Security BearerAuth
// @Success 201 {object} resdto.CheckoutResponse
// @Failure 400 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Failure 502 {object} map[string]string
// @Router /checkout [post]
func (h *CheckoutHandler) Begin(c *gin.Context) {
	ownerID, ok := middleware.GetOwnerID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errors.New("missing owner"), "Unauthorized", nil)
		return
	}
	result, err := h.cmds.BeginCheckout(c.Request.Context(), ownerID)
	if err != nil {
		abortDomainError(c, err)
		return
	}
	status := http.StatusCreated
	if result.Reused {
		status = http.StatusOK
	}
	c.JSON(status, resdto.FromBeginCheckout(result))
}

// @Summary Verify payment
// @Description Verify the gateway callback signature and finalize the order
// @Tags checkout
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.VerifyPaymentRequest true "Verify payment request"
// @Success 200 {object} resdto.VerifyPaymentResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /checkout/verify [post]
func (h *CheckoutHandler) Verify(c *gin.Context) {
	ownerID, ok := middleware.GetOwnerID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errors.New("missing owner"), "Unauthorized", nil)
		return
	}
	var req reqdto.VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}
	result, err := h.cmds.VerifyPayment(c.Request.Context(), ownerID, commands.VerifyPaymentInput{
		IntentID:          req.IntentID,
		GatewayPaymentID:  req.GatewayPaymentID,
		Signature:         req.Signature,
		ShippingAddressID: req.ShippingAddressID,
	})
	if err != nil {
		abortDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromVerifyPayment(result))
}
