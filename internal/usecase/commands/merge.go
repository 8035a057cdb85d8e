package commands

import (
	"context"

	"shopcore/internal/domain/cart"
	"shopcore/internal/infra"
	"shopcore/internal/pkg/errs"
	"shopcore/internal/usecase/shared"

	"github.com/google/uuid"
)

type MergeCommands interface {
	MergeGuestCart(ctx context.Context, ownerID, token uuid.UUID, items []shared.GuestItem) (*shared.MergeOutcome, error)
}

type mergeUseCaseImpl struct {
	uow shared.UnitOfWork
}

func NewMergeUseCase(uow shared.UnitOfWork) MergeCommands {
	return &mergeUseCaseImpl{uow: uow}
}

// MergeGuestCart folds a client-held anonymous cart into the owner's durable
// cart. The token claim and every line change commit in one transaction, so a
// retried request either replays (token already claimed) or applies exactly
// once. Per-item problems degrade to skips; the merge itself never fails
// because one guest line went stale.
func (m *mergeUseCaseImpl) MergeGuestCart(ctx context.Context, ownerID, token uuid.UUID, items []shared.GuestItem) (*shared.MergeOutcome, error) {
	if token == uuid.Nil {
		return nil, errs.ErrMergeTokenRequired
	}

	outcome := &shared.MergeOutcome{}
	err := m.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		claimed, err := tx.Merges().ClaimToken(ctx, token, ownerID)
		if err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		if !claimed {
			outcome.Replayed = true
			return nil
		}

		for _, item := range items {
			if err := m.mergeItem(ctx, tx, ownerID, item, outcome); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return outcome, nil
}

func (m *mergeUseCaseImpl) mergeItem(ctx context.Context, tx shared.Tx, ownerID uuid.UUID, item shared.GuestItem, outcome *shared.MergeOutcome) error {
	if _, err := cart.NewQuantity(item.Quantity); err != nil {
		outcome.Skipped = append(outcome.Skipped, item.VariantID)
		return nil
	}

	snap, err := tx.Variants().FindByID(ctx, item.VariantID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			outcome.Skipped = append(outcome.Skipped, item.VariantID)
			return nil
		}
		return errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	if !snap.IsPurchasable || snap.AvailableQty < 1 {
		outcome.Skipped = append(outcome.Skipped, item.VariantID)
		return nil
	}

	newQty, err := tx.Carts().AddAccumulate(ctx, ownerID, item.VariantID, item.Quantity)
	if err != nil {
		return errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	// Clamp to available stock rather than rejecting; the user still gets as
	// much of their guest cart as can actually be bought.
	if newQty > snap.AvailableQty {
		if err := tx.Carts().SetQuantity(ctx, ownerID, item.VariantID, snap.AvailableQty); err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		outcome.Clamped = append(outcome.Clamped, item.VariantID)
		return nil
	}

	outcome.Merged = append(outcome.Merged, item.VariantID)
	return nil
}
