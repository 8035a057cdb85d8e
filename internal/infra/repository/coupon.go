package repository

import (
	"context"

	"shopcore/internal/infra"
	"shopcore/internal/infra/db"
	"shopcore/internal/pkg/pgconv"
	"shopcore/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

type CouponRepository struct {
	db db.DBTX
}

func NewCouponRepository(dbtx db.DBTX) *CouponRepository {
	return &CouponRepository{db: dbtx}
}

// FindByCode matches case-insensitively; codes are stored upper-cased and a
// unique index on lower(code) keeps them distinct.
func (r *CouponRepository) FindByCode(ctx context.Context, code string) (*shared.CouponSnapshot, error) {
	var (
		id            pgtype.UUID
		storedCode    string
		discountType  string
		discountValue decimal.Decimal
		scope         string
		eligibleIDs   []pgtype.UUID
		active        bool
		validFrom     pgtype.Timestamptz
		validTo       pgtype.Timestamptz
	)
	err := r.db.QueryRow(ctx, `
		SELECT id, code, discount_type, discount_value, scope, eligible_ids, active, valid_from, valid_to
		FROM coupons
		WHERE lower(code) = lower($1)`,
		code,
	).Scan(&id, &storedCode, &discountType, &discountValue, &scope, &eligibleIDs, &active, &validFrom, &validTo)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("coupon not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find coupon", err)
	}

	ids := make([]uuid.UUID, 0, len(eligibleIDs))
	for _, e := range eligibleIDs {
		ids = append(ids, uuid.UUID(e.Bytes))
	}

	return &shared.CouponSnapshot{
		ID:            uuid.UUID(id.Bytes),
		Code:          storedCode,
		DiscountType:  discountType,
		DiscountValue: discountValue,
		Scope:         scope,
		EligibleIDs:   ids,
		Active:        active,
		ValidFrom:     pgconv.TimePtrFromPgtype(validFrom),
		ValidTo:       pgconv.TimePtrFromPgtype(validTo),
	}, nil
}
