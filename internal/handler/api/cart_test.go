//go:build unit

package api_test

import (
	"errors"
	"net/http"
	"testing"

	"shopcore/internal/handler/api"
	resdto "shopcore/internal/handler/dto/response"
	"shopcore/internal/pkg/errs"
	"shopcore/internal/usecase/queries"
	"shopcore/internal/usecase/shared"
	"shopcore/tests/common/httptest"
	commandsmock "shopcore/tests/mock/commands"
	queriesmock "shopcore/tests/mock/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type CartHandlerTestSuite struct {
	suite.Suite
	router       *gin.Engine
	mockCtrl     *gomock.Controller
	mockCommands *commandsmock.MockCartCommands
	mockMerge    *commandsmock.MockMergeCommands
	mockQueries  *queriesmock.MockCartQueries
	handler      *api.CartHandler
	ownerID      uuid.UUID
}

func (s *CartHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()

	s.mockCtrl = gomock.NewController(s.T())
	s.mockCommands = commandsmock.NewMockCartCommands(s.mockCtrl)
	s.mockMerge = commandsmock.NewMockMergeCommands(s.mockCtrl)
	s.mockQueries = queriesmock.NewMockCartQueries(s.mockCtrl)
	s.handler = api.NewCartHandler(s.mockCommands, s.mockMerge, s.mockQueries)
	s.ownerID = uuid.New()

	// Mock authentication middleware for testing
	authMiddleware := func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": gin.H{"message": "Unauthorized"}})
			return
		}
		c.Set("owner_id", s.ownerID)
		c.Next()
	}

	s.router.GET("/cart", authMiddleware, s.handler.Get)
	s.router.DELETE("/cart", authMiddleware, s.handler.Clear)
	s.router.POST("/cart/items", authMiddleware, s.handler.AddItem)
	s.router.PATCH("/cart/items/:variant_id", authMiddleware, s.handler.SetQuantity)
	s.router.DELETE("/cart/items/:variant_id", authMiddleware, s.handler.RemoveItem)
	s.router.POST("/cart/coupon", authMiddleware, s.handler.ApplyCoupon)
	s.router.DELETE("/cart/coupon", authMiddleware, s.handler.RemoveCoupon)
	s.router.POST("/cart/merge", authMiddleware, s.handler.Merge)
}

func (s *CartHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestCartHandlerSuite(t *testing.T) {
	suite.Run(t, new(CartHandlerTestSuite))
}

func sampleCartView(variantID uuid.UUID) *queries.CartView {
	return &queries.CartView{
		Lines: []queries.CartLineView{
			{
				VariantID:      variantID,
				Quantity:       2,
				UnitPricePaise: 49900,
				SubtotalPaise:  99800,
				CouponEligible: true,
				Available:      true,
				InStock:        true,
			},
		},
		SubtotalPaise:         99800,
		EligibleSubtotalPaise: 99800,
		TotalPaise:            99800,
	}
}

// ================================================================================
// TestGet
// ================================================================================

func (s *CartHandlerTestSuite) TestGet() {
	variantID := uuid.New()

	s.Run("success: returns 200 OK with priced cart", func() {
		s.mockQueries.EXPECT().GetCart(gomock.Any(), s.ownerID).
			Return(sampleCartView(variantID), nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/cart", nil, "bearer-token")

		var response resdto.CartResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
		s.Len(response.Lines, 1)
		s.Equal(variantID.String(), response.Lines[0].VariantID)
		s.Equal(int64(99800), response.TotalPaise)
	})

	s.Run("error: 401 Unauthorized when unauthenticated", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/cart", nil, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusUnauthorized, "Unauthorized")
	})

	s.Run("error: 500 on query failure", func() {
		s.mockQueries.EXPECT().GetCart(gomock.Any(), s.ownerID).
			Return(nil, errors.New("database error")).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/cart", nil, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusInternalServerError, "Internal server error")
	})
}

// ================================================================================
// TestAddItem
// ================================================================================

func (s *CartHandlerTestSuite) TestAddItem() {
	url := "/cart/items"
	variantID := uuid.New()
	reqBody := map[string]any{"variant_id": variantID.String(), "quantity": 2}

	s.Run("success: returns 200 OK with updated cart", func() {
		s.mockCommands.EXPECT().AddItem(gomock.Any(), s.ownerID, variantID, int32(2)).
			Return(sampleCartView(variantID), nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "bearer-token")

		var response resdto.CartResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
		s.Equal(int32(2), response.Lines[0].Quantity)
	})

	s.Run("error: 400 Bad Request on validation errors", func() {
		testCases := []struct {
			name string
			body map[string]any
		}{
			{name: "missing variant_id", body: map[string]any{"quantity": 2}},
			{name: "missing quantity", body: map[string]any{"variant_id": variantID.String()}},
			{name: "quantity zero", body: map[string]any{"variant_id": variantID.String(), "quantity": 0}},
			{name: "quantity negative", body: map[string]any{"variant_id": variantID.String(), "quantity": -1}},
			{name: "malformed variant_id", body: map[string]any{"variant_id": "not-a-uuid", "quantity": 2}},
		}

		for _, tc := range testCases {
			s.Run(tc.name, func() {
				rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, tc.body, "bearer-token")
				httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "")
			})
		}
	})

	s.Run("error: 401 Unauthorized when unauthenticated", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusUnauthorized, "Unauthorized")
	})

	s.Run("error: maps usecase errors to proper statuses", func() {
		testCases := []struct {
			name           string
			commandsError  error
			expectedStatus int
			expectedMsg    string
		}{
			{
				name:           "variant not found",
				commandsError:  errs.ErrVariantNotFound,
				expectedStatus: http.StatusNotFound,
				expectedMsg:    "Variant not found",
			},
			{
				name:           "variant not purchasable",
				commandsError:  errs.ErrVariantUnavailable,
				expectedStatus: http.StatusUnprocessableEntity,
				expectedMsg:    "Variant not purchasable",
			},
			{
				name:           "insufficient stock",
				commandsError:  errs.ErrOutOfStock,
				expectedStatus: http.StatusConflict,
				expectedMsg:    "Insufficient stock",
			},
			{
				name:           "internal server error",
				commandsError:  errors.New("database error"),
				expectedStatus: http.StatusInternalServerError,
				expectedMsg:    "Internal server error",
			},
		}

		for _, tc := range testCases {
			s.Run(tc.name, func() {
				s.mockCommands.EXPECT().AddItem(gomock.Any(), s.ownerID, variantID, int32(2)).
					Return(nil, tc.commandsError).Times(1)

				rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "bearer-token")
				httptest.AssertErrorResponse(s.T(), rec, tc.expectedStatus, tc.expectedMsg)
			})
		}
	})
}

// ================================================================================
// TestSetQuantity
// ================================================================================

func (s *CartHandlerTestSuite) TestSetQuantity() {
	variantID := uuid.New()
	url := "/cart/items/" + variantID.String()
	reqBody := map[string]any{"quantity": 5}

	s.Run("success: returns 200 OK with updated cart", func() {
		s.mockCommands.EXPECT().SetQuantity(gomock.Any(), s.ownerID, variantID, int32(5)).
			Return(sampleCartView(variantID), nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPatch, url, reqBody, "bearer-token")
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, nil)
	})

	s.Run("error: 400 Bad Request for invalid UUID", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPatch, "/cart/items/invalid-uuid", reqBody, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid variant id")
	})

	s.Run("error: 400 Bad Request for quantity zero", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPatch, url, map[string]any{"quantity": 0}, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "")
	})

	s.Run("error: 404 Not Found for missing line", func() {
		s.mockCommands.EXPECT().SetQuantity(gomock.Any(), s.ownerID, variantID, int32(5)).
			Return(nil, errs.ErrCartLineNotFound).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPatch, url, reqBody, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusNotFound, "Cart line not found")
	})

	s.Run("error: 409 Conflict when stock is insufficient", func() {
		s.mockCommands.EXPECT().SetQuantity(gomock.Any(), s.ownerID, variantID, int32(5)).
			Return(nil, errs.ErrOutOfStock).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPatch, url, reqBody, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusConflict, "Insufficient stock")
	})
}

// ================================================================================
// TestRemoveItem
// ================================================================================

func (s *CartHandlerTestSuite) TestRemoveItem() {
	variantID := uuid.New()
	url := "/cart/items/" + variantID.String()

	s.Run("success: returns 200 OK with remaining cart", func() {
		s.mockCommands.EXPECT().RemoveItem(gomock.Any(), s.ownerID, variantID).
			Return(&queries.CartView{Lines: []queries.CartLineView{}}, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodDelete, url, nil, "bearer-token")

		var response resdto.CartResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
		s.Empty(response.Lines)
	})

	s.Run("error: 400 Bad Request for invalid UUID", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodDelete, "/cart/items/invalid-uuid", nil, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid variant id")
	})

	s.Run("error: 404 Not Found for missing line", func() {
		s.mockCommands.EXPECT().RemoveItem(gomock.Any(), s.ownerID, variantID).
			Return(nil, errs.ErrCartLineNotFound).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodDelete, url, nil, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusNotFound, "Cart line not found")
	})
}

// ================================================================================
// TestClear
// ================================================================================

func (s *CartHandlerTestSuite) TestClear() {
	s.Run("success: returns 204 No Content", func() {
		s.mockCommands.EXPECT().ClearCart(gomock.Any(), s.ownerID).
			Return(nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodDelete, "/cart", nil, "bearer-token")
		s.Equal(http.StatusNoContent, rec.Code)
	})

	s.Run("error: 401 Unauthorized when unauthenticated", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodDelete, "/cart", nil, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusUnauthorized, "Unauthorized")
	})
}

// ================================================================================
// TestApplyCoupon
// ================================================================================

func (s *CartHandlerTestSuite) TestApplyCoupon() {
	url := "/cart/coupon"
	variantID := uuid.New()

	s.Run("success: returns 200 OK with discounted cart", func() {
		code := "SAVE20"
		view := sampleCartView(variantID)
		view.CouponCode = &code
		view.CouponState = queries.CouponApplied
		view.DiscountPaise = 19960
		view.TotalPaise = 79840

		s.mockCommands.EXPECT().ApplyCoupon(gomock.Any(), s.ownerID, "SAVE20").
			Return(view, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, map[string]any{"code": "SAVE20"}, "bearer-token")

		var response resdto.CartResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
		s.Equal("SAVE20", *response.CouponCode)
		s.Equal(string(queries.CouponApplied), response.CouponState)
		s.Equal(int64(19960), response.DiscountPaise)
	})

	s.Run("error: 400 Bad Request on validation errors", func() {
		testCases := []struct {
			name string
			body map[string]any
		}{
			{name: "missing code", body: map[string]any{}},
			{name: "code too short", body: map[string]any{"code": "ab"}},
			{name: "code too long", body: map[string]any{"code": "AAAAAAAAAAAAAAAAAAAAA"}},
		}

		for _, tc := range testCases {
			s.Run(tc.name, func() {
				rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, tc.body, "bearer-token")
				httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "")
			})
		}
	})

	s.Run("error: 400 Bad Request for unknown or expired code", func() {
		s.mockCommands.EXPECT().ApplyCoupon(gomock.Any(), s.ownerID, "EXPIRED1").
			Return(nil, errs.ErrCouponInvalid).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, map[string]any{"code": "EXPIRED1"}, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid or expired coupon")
	})
}

// ================================================================================
// TestRemoveCoupon
// ================================================================================

func (s *CartHandlerTestSuite) TestRemoveCoupon() {
	s.Run("success: returns 200 OK without coupon", func() {
		variantID := uuid.New()
		s.mockCommands.EXPECT().RemoveCoupon(gomock.Any(), s.ownerID).
			Return(sampleCartView(variantID), nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodDelete, "/cart/coupon", nil, "bearer-token")

		var response resdto.CartResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
		s.Nil(response.CouponCode)
	})
}

// ================================================================================
// TestMerge
// ================================================================================

func (s *CartHandlerTestSuite) TestMerge() {
	url := "/cart/merge"
	token := uuid.New()
	variantID := uuid.New()
	reqBody := map[string]any{
		"items": []map[string]any{
			{"variant_id": variantID.String(), "quantity": 2},
		},
	}

	s.Run("success: returns 200 OK with merge outcome", func() {
		s.mockMerge.EXPECT().MergeGuestCart(gomock.Any(), s.ownerID, token, []shared.GuestItem{{VariantID: variantID, Quantity: 2}}).
			Return(&shared.MergeOutcome{Merged: []uuid.UUID{variantID}}, nil).Times(1)

		rec := httptest.PerformRequestWithHeaders(s.T(), s.router, http.MethodPost, url, reqBody, "bearer-token",
			map[string]string{"Merge-Token": token.String()})

		var response resdto.MergeCartResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
		s.Equal([]string{variantID.String()}, response.Merged)
		s.False(response.Replayed)
	})

	s.Run("success: replayed token reports replay without re-merging", func() {
		s.mockMerge.EXPECT().MergeGuestCart(gomock.Any(), s.ownerID, token, gomock.Any()).
			Return(&shared.MergeOutcome{Replayed: true}, nil).Times(1)

		rec := httptest.PerformRequestWithHeaders(s.T(), s.router, http.MethodPost, url, reqBody, "bearer-token",
			map[string]string{"Merge-Token": token.String()})

		var response resdto.MergeCartResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
		s.True(response.Replayed)
		s.Empty(response.Merged)
	})

	s.Run("error: 400 Bad Request when Merge-Token header is missing", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid merge token")
	})

	s.Run("error: 400 Bad Request for malformed Merge-Token", func() {
		rec := httptest.PerformRequestWithHeaders(s.T(), s.router, http.MethodPost, url, reqBody, "bearer-token",
			map[string]string{"Merge-Token": "not-a-uuid"})
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid merge token")
	})

	s.Run("error: 400 Bad Request when items field is missing", func() {
		rec := httptest.PerformRequestWithHeaders(s.T(), s.router, http.MethodPost, url, map[string]any{}, "bearer-token",
			map[string]string{"Merge-Token": token.String()})
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "")
	})
}
