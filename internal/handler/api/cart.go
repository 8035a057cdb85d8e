package api

import (
	"errors"
	"net/http"

	reqdto "shopcore/internal/handler/dto/request"
	resdto "shopcore/internal/handler/dto/response"
	"shopcore/internal/handler/httperr"
	"shopcore/internal/handler/middleware"
	"shopcore/internal/pkg/errs"
	"shopcore/internal/usecase/commands"
	"shopcore/internal/usecase/queries"
	"shopcore/internal/usecase/shared"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CartHandler struct {
	cmds  commands.CartCommands
	merge commands.MergeCommands
	q     queries.CartQueries
}

func NewCartHandler(cmds commands.CartCommands, merge commands.MergeCommands, q queries.CartQueries) *CartHandler {
	return &CartHandler{cmds: cmds, merge: merge, q: q}
}

// @Summary Get cart
// @Description Get the current cart with live pricing
// @Tags cart
// @Produce json
// @Security BearerAuth
// @Success 200 {object} resdto.CartResponse
// @Failure 401 {object} map[string]string
// @Router /cart [get]
func (h *CartHandler) Get(c *gin.Context) {
	ownerID, ok := middleware.GetOwnerID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errors.New("missing owner"), "Unauthorized", nil)
		return
	}
	view, err := h.q.GetCart(c.Request.Context(), ownerID)
	if err != nil {
		abortDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromCartView(view))
}

// @Summary Add item
// @Description Add a variant to the cart, accumulating onto any existing line
// @Tags cart
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.AddItemRequest true "Add item request"
// @Success 200 {object} resdto.CartResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /cart/items [post]
func (h *CartHandler) AddItem(c *gin.Context) {
	ownerID, ok := middleware.GetOwnerID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errors.New("missing owner"), "Unauthorized", nil)
		return
	}
	var req reqdto.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}
	view, err := h.cmds.AddItem(c.Request.Context(), ownerID, req.VariantID, req.Quantity)
	if err != nil {
		abortDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromCartView(view))
}

// @Summary Set line quantity
// @Description Replace the quantity of an existing cart line
// @Tags cart
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param variant_id path string true "Variant ID"
// @Param request body reqdto.SetQuantityRequest true "Set quantity request"
// @Success 200 {object} resdto.CartResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /cart/items/{variant_id} [patch]
func (h *CartHandler) SetQuantity(c *gin.Context) {
	ownerID, ok := middleware.GetOwnerID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errors.New("missing owner"), "Unauthorized", nil)
		return
	}
	variantID, err := uuid.Parse(c.Param("variant_id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid variant id", nil)
		return
	}
	var req reqdto.SetQuantityRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, bindErr, "Invalid request", nil)
		return
	}
	view, err := h.cmds.SetQuantity(c.Request.Context(), ownerID, variantID, req.Quantity)
	if err != nil {
		abortDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromCartView(view))
}

// @Summary Remove item
// @Description Remove a line from the cart
// @Tags cart
// @Produce json
// @Security BearerAuth
// @Param variant_id path string true "Variant ID"
// @Success 200 {object} resdto.CartResponse
// @Failure 404 {object} map[string]string
// @Router /cart/items/{variant_id} [delete]
func (h *CartHandler) RemoveItem(c *gin.Context) {
	ownerID, ok := middleware.GetOwnerID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errors.New("missing owner"), "Unauthorized", nil)
		return
	}
	variantID, err := uuid.Parse(c.Param("variant_id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid variant id", nil)
		return
	}
	view, err := h.cmds.RemoveItem(c.Request.Context(), ownerID, variantID)
	if err != nil {
		abortDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromCartView(view))
}

// @Summary Clear cart
// @Description Remove all lines and any applied coupon
// @Tags cart
// @Security BearerAuth
// @Success 204 "No Content"
// @Failure 401 {object} map[string]string
// @Router /cart [delete]
func (h *CartHandler) Clear(c *gin.Context) {
	ownerID, ok := middleware.GetOwnerID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errors.New("missing owner"), "Unauthorized", nil)
		return
	}
	if err := h.cmds.ClearCart(c.Request.Context(), ownerID); err != nil {
		abortDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Apply coupon
// @Description Apply a coupon code to the cart
// @Tags cart
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.ApplyCouponRequest true "Apply coupon request"
// @Success 200 {object} resdto.CartResponse
// @Failure 400 {object} map[string]string
// @Router /cart/coupon [post]
func (h *CartHandler) ApplyCoupon(c *gin.Context) {
	ownerID, ok := middleware.GetOwnerID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errors.New("missing owner"), "Unauthorized", nil)
		return
	}
	var req reqdto.ApplyCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}
	view, err := h.cmds.ApplyCoupon(c.Request.Context(), ownerID, req.Code)
	if err != nil {
		abortDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromCartView(view))
}

// @Summary Remove coupon
// @Description Remove the applied coupon from the cart
// @Tags cart
// @Produce json
// @Security BearerAuth
// @Success 200 {object} resdto.CartResponse
// @Failure 401 {object} map[string]string
// @Router /cart/coupon [delete]
func (h *CartHandler) RemoveCoupon(c *gin.Context) {
	ownerID, ok := middleware.GetOwnerID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errors.New("missing owner"), "Unauthorized", nil)
		return
	}
	view, err := h.cmds.RemoveCoupon(c.Request.Context(), ownerID)
	if err != nil {
		abortDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromCartView(view))
}

// @Summary Merge guest cart
// @Description Merge a client-held guest cart into the durable cart, exactly once per token
// @Tags cart
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param Merge-Token header string true "Merge token for exactly-once application"
// @Param request body reqdto.MergeCartRequest true "Guest cart items"
// @Success 200 {object} resdto.MergeCartResponse
// @Failure 400 {object} map[string]string
// @Router /cart/merge [post]
func (h *CartHandler) Merge(c *gin.Context) {
	ownerID, ok := middleware.GetOwnerID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errors.New("missing owner"), "Unauthorized", nil)
		return
	}
	token, err := h.getMergeToken(c)
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid merge token", nil)
		return
	}
	var req reqdto.MergeCartRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, bindErr, "Invalid request", nil)
		return
	}

	items := make([]shared.GuestItem, len(req.Items))
	for i, it := range req.Items {
		items[i] = shared.GuestItem{VariantID: it.VariantID, Quantity: it.Quantity}
	}

	outcome, err := h.merge.MergeGuestCart(c.Request.Context(), ownerID, token, items)
	if err != nil {
		abortDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromMergeOutcome(outcome))
}

func (h *CartHandler) getMergeToken(c *gin.Context) (uuid.UUID, error) {
	tokenStr := c.GetHeader("Merge-Token")
	if tokenStr == "" {
		return uuid.Nil, errs.ErrMergeTokenRequired
	}
	return uuid.Parse(tokenStr)
}
