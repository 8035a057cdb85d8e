package queries

import (
	"context"
	"time"

	"shopcore/internal/domain/checkout"
	"shopcore/internal/infra"
	"shopcore/internal/pkg/errs"
	"shopcore/internal/usecase/shared"

	"github.com/google/uuid"
)

type OrderLineView struct {
	VariantID      uuid.UUID
	Quantity       int32
	UnitPricePaise int64
	SubtotalPaise  int64
}

type OrderView struct {
	ID              uuid.UUID
	PaymentIntentID uuid.UUID
	Lines           []OrderLineView
	SubtotalPaise   int64
	DiscountPaise   int64
	TotalPaise      int64
	Status          string
	CreatedAt       time.Time
}

type OrderQueries interface {
	GetByID(ctx context.Context, id, ownerID uuid.UUID) (*OrderView, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*OrderView, error)
}

type orderQueriesImpl struct {
	uow shared.UnitOfWork
}

func NewOrderQueries(uow shared.UnitOfWork) OrderQueries {
	return &orderQueriesImpl{uow: uow}
}

func (q *orderQueriesImpl) GetByID(ctx context.Context, id, ownerID uuid.UUID) (*OrderView, error) {
	order, err := q.uow.Repos().Orders().FindByID(ctx, id, ownerID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.ErrOrderNotFound
		}
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	return orderView(order), nil
}

func (q *orderQueriesImpl) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*OrderView, error) {
	orders, err := q.uow.Repos().Orders().ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	views := make([]*OrderView, 0, len(orders))
	for _, o := range orders {
		views = append(views, orderView(o))
	}
	return views, nil
}

func orderView(order *checkout.Order) *OrderView {
	lines := make([]OrderLineView, 0, len(order.Lines()))
	for _, l := range order.Lines() {
		lines = append(lines, OrderLineView{
			VariantID:      l.VariantID,
			Quantity:       l.Quantity,
			UnitPricePaise: l.UnitPricePaise,
			SubtotalPaise:  l.SubtotalPaise,
		})
	}
	return &OrderView{
		ID:              order.ID(),
		PaymentIntentID: order.PaymentIntentID(),
		Lines:           lines,
		SubtotalPaise:   order.SubtotalPaise(),
		DiscountPaise:   order.DiscountPaise(),
		TotalPaise:      order.TotalPaise(),
		Status:          string(order.Status()),
		CreatedAt:       order.CreatedAt(),
	}
}
