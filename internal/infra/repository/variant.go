package repository

import (
	"context"

	"shopcore/internal/domain/catalog"
	"shopcore/internal/infra"
	"shopcore/internal/infra/db"
	"shopcore/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type VariantRepository struct {
	db db.DBTX
}

func NewVariantRepository(dbtx db.DBTX) *VariantRepository {
	return &VariantRepository{db: dbtx}
}

const variantColumns = `id, unit_price_paise, sale_price_paise, available_qty, is_purchasable, category_ids, brand_id`

func (r *VariantRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.VariantSnapshot, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+variantColumns+` FROM variants WHERE id = $1`,
		pgconv.UUIDToPgtype(id),
	)
	snap, err := scanVariant(row)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("variant not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find variant", err)
	}
	return snap, nil
}

func (r *VariantRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]catalog.VariantSnapshot, error) {
	pgIDs := make([]pgtype.UUID, 0, len(ids))
	for _, id := range ids {
		pgIDs = append(pgIDs, pgconv.UUIDToPgtype(id))
	}

	rows, err := r.db.Query(ctx,
		`SELECT `+variantColumns+` FROM variants WHERE id = ANY($1)`,
		pgIDs,
	)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find variants", err)
	}
	defer rows.Close()

	snaps := make(map[uuid.UUID]catalog.VariantSnapshot, len(ids))
	for rows.Next() {
		snap, err := scanVariant(rows)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan variant", err)
		}
		snaps[snap.VariantID] = *snap
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to read variants", err)
	}
	return snaps, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVariant(row rowScanner) (*catalog.VariantSnapshot, error) {
	var (
		id          pgtype.UUID
		unitPrice   int64
		salePrice   pgtype.Int8
		available   int32
		purchasable bool
		categories  []pgtype.UUID
		brandID     pgtype.UUID
	)
	if err := row.Scan(&id, &unitPrice, &salePrice, &available, &purchasable, &categories, &brandID); err != nil {
		return nil, err
	}

	categoryIDs := make([]uuid.UUID, 0, len(categories))
	for _, c := range categories {
		categoryIDs = append(categoryIDs, uuid.UUID(c.Bytes))
	}

	return &catalog.VariantSnapshot{
		VariantID:      uuid.UUID(id.Bytes),
		UnitPricePaise: unitPrice,
		SalePricePaise: pgconv.Int64PtrFromPgtype(salePrice),
		AvailableQty:   available,
		IsPurchasable:  purchasable,
		CategoryIDs:    categoryIDs,
		BrandID:        uuid.UUID(brandID.Bytes),
	}, nil
}
