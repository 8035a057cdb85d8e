package repository

import (
	"context"

	"shopcore/internal/domain/cart"
	"shopcore/internal/infra"
	"shopcore/internal/infra/db"
	"shopcore/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type CartRepository struct {
	db db.DBTX
}

func NewCartRepository(dbtx db.DBTX) *CartRepository {
	return &CartRepository{db: dbtx}
}

// AddAccumulate folds the add into a single upsert so two concurrent adds for
// the same variant both land instead of one overwriting the other.
func (r *CartRepository) AddAccumulate(ctx context.Context, ownerID, variantID uuid.UUID, qty int32) (int32, error) {
	var newQty int32
	err := r.db.QueryRow(ctx, `
		INSERT INTO cart_lines (owner_id, variant_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (owner_id, variant_id)
		DO UPDATE SET quantity = cart_lines.quantity + EXCLUDED.quantity, updated_at = now()
		RETURNING quantity`,
		pgconv.UUIDToPgtype(ownerID), pgconv.UUIDToPgtype(variantID), qty,
	).Scan(&newQty)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to add cart line", err)
	}
	return newQty, nil
}

func (r *CartRepository) SetQuantity(ctx context.Context, ownerID, variantID uuid.UUID, qty int32) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE cart_lines SET quantity = $3, updated_at = now()
		WHERE owner_id = $1 AND variant_id = $2`,
		pgconv.UUIDToPgtype(ownerID), pgconv.UUIDToPgtype(variantID), qty,
	)
	if err != nil {
		return infra.WrapRepoErr("failed to set cart line quantity", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("cart line not found", nil, infra.KindNotFound)
	}
	return nil
}

func (r *CartRepository) Remove(ctx context.Context, ownerID, variantID uuid.UUID) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM cart_lines WHERE owner_id = $1 AND variant_id = $2`,
		pgconv.UUIDToPgtype(ownerID), pgconv.UUIDToPgtype(variantID),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to remove cart line", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("cart line not found", nil, infra.KindNotFound)
	}
	return nil
}

// Clear empties the cart and drops any applied coupon with it.
func (r *CartRepository) Clear(ctx context.Context, ownerID uuid.UUID) error {
	if _, err := r.db.Exec(ctx,
		`DELETE FROM cart_lines WHERE owner_id = $1`,
		pgconv.UUIDToPgtype(ownerID),
	); err != nil {
		return infra.WrapRepoErr("failed to clear cart lines", err)
	}
	if _, err := r.db.Exec(ctx,
		`DELETE FROM cart_coupons WHERE owner_id = $1`,
		pgconv.UUIDToPgtype(ownerID),
	); err != nil {
		return infra.WrapRepoErr("failed to clear cart coupon", err)
	}
	return nil
}

func (r *CartRepository) List(ctx context.Context, ownerID uuid.UUID) ([]*cart.Line, error) {
	rows, err := r.db.Query(ctx, `
		SELECT owner_id, variant_id, quantity, created_at, updated_at
		FROM cart_lines
		WHERE owner_id = $1
		ORDER BY created_at`,
		pgconv.UUIDToPgtype(ownerID),
	)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list cart lines", err)
	}
	defer rows.Close()

	var lines []*cart.Line
	for rows.Next() {
		var (
			owner     pgtype.UUID
			variant   pgtype.UUID
			qty       int32
			createdAt pgtype.Timestamptz
			updatedAt pgtype.Timestamptz
		)
		if err := rows.Scan(&owner, &variant, &qty, &createdAt, &updatedAt); err != nil {
			return nil, infra.WrapRepoErr("failed to scan cart line", err)
		}
		lines = append(lines, cart.ReconstructLine(
			uuid.UUID(owner.Bytes),
			uuid.UUID(variant.Bytes),
			qty,
			pgconv.TimeFromPgtype(createdAt),
			pgconv.TimeFromPgtype(updatedAt),
		))
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read cart lines", err)
	}
	return lines, nil
}

func (r *CartRepository) SetCoupon(ctx context.Context, ownerID uuid.UUID, code string) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO cart_coupons (owner_id, code)
		VALUES ($1, $2)
		ON CONFLICT (owner_id)
		DO UPDATE SET code = EXCLUDED.code, applied_at = now()`,
		pgconv.UUIDToPgtype(ownerID), code,
	)
	if err != nil {
		return infra.WrapRepoErr("failed to apply coupon to cart", err)
	}
	return nil
}

func (r *CartRepository) ClearCoupon(ctx context.Context, ownerID uuid.UUID) error {
	if _, err := r.db.Exec(ctx,
		`DELETE FROM cart_coupons WHERE owner_id = $1`,
		pgconv.UUIDToPgtype(ownerID),
	); err != nil {
		return infra.WrapRepoErr("failed to remove coupon from cart", err)
	}
	return nil
}

func (r *CartRepository) AppliedCoupon(ctx context.Context, ownerID uuid.UUID) (*string, error) {
	var code string
	err := r.db.QueryRow(ctx,
		`SELECT code FROM cart_coupons WHERE owner_id = $1`,
		pgconv.UUIDToPgtype(ownerID),
	).Scan(&code)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, nil
		}
		return nil, infra.WrapRepoErr("failed to find applied coupon", err)
	}
	return &code, nil
}
