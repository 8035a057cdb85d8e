package repository

import (
	"context"

	"shopcore/internal/domain/checkout"
	"shopcore/internal/infra"
	"shopcore/internal/infra/db"
	"shopcore/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type OrderRepository struct {
	db db.DBTX
}

func NewOrderRepository(dbtx db.DBTX) *OrderRepository {
	return &OrderRepository{db: dbtx}
}

const orderColumns = `id, owner_id, payment_intent_id, shipping_address_id,
	subtotal_paise, discount_paise, total_paise, status, created_at, updated_at`

// Create inserts the order and its frozen lines. The unique constraint on
// payment_intent_id surfaces as DUPLICATE_KEY if this intent already produced
// an order.
func (r *OrderRepository) Create(ctx context.Context, order *checkout.Order) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO orders
			(id, owner_id, payment_intent_id, shipping_address_id,
			 subtotal_paise, discount_paise, total_paise, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		pgconv.UUIDToPgtype(order.ID()),
		pgconv.UUIDToPgtype(order.OwnerID()),
		pgconv.UUIDToPgtype(order.PaymentIntentID()),
		pgconv.UUIDToPgtype(order.ShippingAddressID()),
		order.SubtotalPaise(),
		order.DiscountPaise(),
		order.TotalPaise(),
		string(order.Status()),
		pgconv.TimeToPgtype(order.CreatedAt()),
		pgconv.TimeToPgtype(order.UpdatedAt()),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to create order", err)
	}

	for _, line := range order.Lines() {
		if _, err := r.db.Exec(ctx, `
			INSERT INTO order_lines (order_id, variant_id, quantity, unit_price_paise, subtotal_paise)
			VALUES ($1, $2, $3, $4, $5)`,
			pgconv.UUIDToPgtype(order.ID()),
			pgconv.UUIDToPgtype(line.VariantID),
			line.Quantity,
			line.UnitPricePaise,
			line.SubtotalPaise,
		); err != nil {
			return infra.WrapRepoErr("failed to create order line", err)
		}
	}
	return nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id, ownerID uuid.UUID) (*checkout.Order, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1 AND owner_id = $2`,
		pgconv.UUIDToPgtype(id), pgconv.UUIDToPgtype(ownerID),
	)
	return r.scanOrderWithLines(ctx, row)
}

func (r *OrderRepository) FindByIntentID(ctx context.Context, intentID uuid.UUID) (*checkout.Order, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE payment_intent_id = $1`,
		pgconv.UUIDToPgtype(intentID),
	)
	return r.scanOrderWithLines(ctx, row)
}

func (r *OrderRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*checkout.Order, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE owner_id = $1 ORDER BY created_at DESC`,
		pgconv.UUIDToPgtype(ownerID),
	)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list orders", err)
	}
	defer rows.Close()

	var (
		orders   []*checkout.Order
		orderIDs []pgtype.UUID
	)
	for rows.Next() {
		order, err := scanOrder(rows, nil)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan order", err)
		}
		orders = append(orders, order)
		orderIDs = append(orderIDs, pgconv.UUIDToPgtype(order.ID()))
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read orders", err)
	}
	if len(orders) == 0 {
		return orders, nil
	}

	linesByOrder, err := r.findLines(ctx, orderIDs)
	if err != nil {
		return nil, err
	}
	for i, order := range orders {
		orders[i] = withLines(order, linesByOrder[order.ID()])
	}
	return orders, nil
}

func (r *OrderRepository) scanOrderWithLines(ctx context.Context, row rowScanner) (*checkout.Order, error) {
	order, err := scanOrder(row, nil)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("order not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find order", err)
	}

	linesByOrder, err := r.findLines(ctx, []pgtype.UUID{pgconv.UUIDToPgtype(order.ID())})
	if err != nil {
		return nil, err
	}
	return withLines(order, linesByOrder[order.ID()]), nil
}

func (r *OrderRepository) findLines(ctx context.Context, orderIDs []pgtype.UUID) (map[uuid.UUID][]checkout.OrderLine, error) {
	rows, err := r.db.Query(ctx, `
		SELECT order_id, variant_id, quantity, unit_price_paise, subtotal_paise
		FROM order_lines
		WHERE order_id = ANY($1)
		ORDER BY order_id`,
		orderIDs,
	)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list order lines", err)
	}
	defer rows.Close()

	lines := make(map[uuid.UUID][]checkout.OrderLine)
	for rows.Next() {
		var (
			orderID   pgtype.UUID
			variantID pgtype.UUID
			qty       int32
			unitPrice int64
			subtotal  int64
		)
		if err := rows.Scan(&orderID, &variantID, &qty, &unitPrice, &subtotal); err != nil {
			return nil, infra.WrapRepoErr("failed to scan order line", err)
		}
		oid := uuid.UUID(orderID.Bytes)
		lines[oid] = append(lines[oid], checkout.OrderLine{
			VariantID:      uuid.UUID(variantID.Bytes),
			Quantity:       qty,
			UnitPricePaise: unitPrice,
			SubtotalPaise:  subtotal,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read order lines", err)
	}
	return lines, nil
}

func scanOrder(row rowScanner, lines []checkout.OrderLine) (*checkout.Order, error) {
	var (
		id              pgtype.UUID
		ownerID         pgtype.UUID
		paymentIntentID pgtype.UUID
		shippingAddrID  pgtype.UUID
		subtotal        int64
		discount        int64
		total           int64
		status          string
		createdAt       pgtype.Timestamptz
		updatedAt       pgtype.Timestamptz
	)
	if err := row.Scan(&id, &ownerID, &paymentIntentID, &shippingAddrID,
		&subtotal, &discount, &total, &status, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	return checkout.ReconstructOrder(
		uuid.UUID(id.Bytes),
		uuid.UUID(ownerID.Bytes),
		uuid.UUID(paymentIntentID.Bytes),
		lines,
		uuid.UUID(shippingAddrID.Bytes),
		subtotal,
		discount,
		total,
		checkout.OrderStatus(status),
		pgconv.TimeFromPgtype(createdAt),
		pgconv.TimeFromPgtype(updatedAt),
	), nil
}

func withLines(order *checkout.Order, lines []checkout.OrderLine) *checkout.Order {
	return checkout.ReconstructOrder(
		order.ID(), order.OwnerID(), order.PaymentIntentID(),
		lines,
		order.ShippingAddressID(),
		order.SubtotalPaise(), order.DiscountPaise(), order.TotalPaise(),
		order.Status(),
		order.CreatedAt(), order.UpdatedAt(),
	)
}
