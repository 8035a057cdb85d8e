package repository

import (
	"context"

	"shopcore/internal/domain/checkout"
	"shopcore/internal/infra"
	"shopcore/internal/infra/db"
	"shopcore/internal/pkg/pgconv"

	"github.com/google/uuid"
)

type StockRepository struct {
	db db.DBTX
}

func NewStockRepository(dbtx db.DBTX) *StockRepository {
	return &StockRepository{db: dbtx}
}

// DecrementAll applies the guarded decrement per line. The WHERE clause is
// the only stock check; a zero-row update means another transaction took the
// units first. All shortfalls are collected so the caller can report every
// affected variant, then the surrounding transaction rolls back.
func (r *StockRepository) DecrementAll(ctx context.Context, lines []checkout.OrderLine) error {
	var conflicted []uuid.UUID
	for _, line := range lines {
		tag, err := r.db.Exec(ctx, `
			UPDATE variants
			SET available_qty = available_qty - $2, updated_at = now()
			WHERE id = $1 AND available_qty >= $2`,
			pgconv.UUIDToPgtype(line.VariantID), line.Quantity,
		)
		if err != nil {
			return infra.WrapRepoErr("failed to decrement stock", err)
		}
		if tag.RowsAffected() == 0 {
			conflicted = append(conflicted, line.VariantID)
		}
	}
	if len(conflicted) > 0 {
		return infra.StockConflictError{VariantIDs: conflicted}
	}
	return nil
}
