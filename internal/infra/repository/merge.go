package repository

import (
	"context"

	"shopcore/internal/infra"
	"shopcore/internal/infra/db"
	"shopcore/internal/pkg/pgconv"

	"github.com/google/uuid"
)

type MergeRepository struct {
	db db.DBTX
}

func NewMergeRepository(dbtx db.DBTX) *MergeRepository {
	return &MergeRepository{db: dbtx}
}

// ClaimToken is the idempotency gate for guest-cart merges. The primary key
// on token makes the second insert a no-op, so a retried merge request never
// re-applies its items.
func (r *MergeRepository) ClaimToken(ctx context.Context, token, ownerID uuid.UUID) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		INSERT INTO cart_merges (token, owner_id)
		VALUES ($1, $2)
		ON CONFLICT (token) DO NOTHING`,
		pgconv.UUIDToPgtype(token), pgconv.UUIDToPgtype(ownerID),
	)
	if err != nil {
		return false, infra.WrapRepoErr("failed to claim merge token", err)
	}
	return tag.RowsAffected() == 1, nil
}
