//go:build unit

package api_test

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"shopcore/internal/handler/api"
	resdto "shopcore/internal/handler/dto/response"
	"shopcore/internal/pkg/errs"
	"shopcore/internal/usecase/queries"
	"shopcore/tests/common/httptest"
	queriesmock "shopcore/tests/mock/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type OrderHandlerTestSuite struct {
	suite.Suite
	router      *gin.Engine
	mockCtrl    *gomock.Controller
	mockQueries *queriesmock.MockOrderQueries
	handler     *api.OrderHandler
	ownerID     uuid.UUID
}

func (s *OrderHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()

	s.mockCtrl = gomock.NewController(s.T())
	s.mockQueries = queriesmock.NewMockOrderQueries(s.mockCtrl)
	s.handler = api.NewOrderHandler(s.mockQueries)
	s.ownerID = uuid.New()

	authMiddleware := func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": gin.H{"message": "Unauthorized"}})
			return
		}
		c.Set("owner_id", s.ownerID)
		c.Next()
	}

	s.router.GET("/orders", authMiddleware, s.handler.List)
	s.router.GET("/orders/:id", authMiddleware, s.handler.Get)
}

func (s *OrderHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestOrderHandlerSuite(t *testing.T) {
	suite.Run(t, new(OrderHandlerTestSuite))
}

func sampleOrderView(id uuid.UUID) *queries.OrderView {
	return &queries.OrderView{
		ID:              id,
		PaymentIntentID: uuid.New(),
		Lines: []queries.OrderLineView{
			{VariantID: uuid.New(), Quantity: 2, UnitPricePaise: 49900, SubtotalPaise: 99800},
		},
		SubtotalPaise: 99800,
		DiscountPaise: 19960,
		TotalPaise:    79840,
		Status:        "PENDING",
		CreatedAt:     time.Now(),
	}
}

func (s *OrderHandlerTestSuite) TestGet() {
	orderID := uuid.New()
	url := "/orders/" + orderID.String()

	s.Run("success: returns 200 OK with OrderResponse", func() {
		s.mockQueries.EXPECT().GetByID(gomock.Any(), orderID, s.ownerID).
			Return(sampleOrderView(orderID), nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil, "bearer-token")

		var response resdto.OrderResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
		s.Equal(orderID.String(), response.ID)
		s.Equal(int64(79840), response.TotalPaise)
		s.Len(response.Lines, 1)
	})

	s.Run("error: 400 Bad Request for invalid UUID", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/orders/invalid-uuid", nil, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid order id")
	})

	s.Run("error: 404 Not Found for another owner's order", func() {
		s.mockQueries.EXPECT().GetByID(gomock.Any(), orderID, s.ownerID).
			Return(nil, errs.ErrOrderNotFound).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusNotFound, "Order not found")
	})
}

func (s *OrderHandlerTestSuite) TestList() {
	s.Run("success: returns the caller's orders", func() {
		views := []*queries.OrderView{sampleOrderView(uuid.New()), sampleOrderView(uuid.New())}
		s.mockQueries.EXPECT().ListByOwner(gomock.Any(), s.ownerID).
			Return(views, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/orders", nil, "bearer-token")

		var response map[string]any
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &response)
		orders, ok := response["orders"].([]any)
		s.True(ok)
		s.Equal(2, len(orders))
	})

	s.Run("error: 401 Unauthorized when unauthenticated", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/orders", nil, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusUnauthorized, "Unauthorized")
	})

	s.Run("error: 500 on query failure", func() {
		s.mockQueries.EXPECT().ListByOwner(gomock.Any(), s.ownerID).
			Return(nil, errors.New("database error")).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/orders", nil, "bearer-token")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusInternalServerError, "Internal server error")
	})
}
