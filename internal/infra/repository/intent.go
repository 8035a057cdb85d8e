package repository

import (
	"context"
	"time"

	"shopcore/internal/domain/checkout"
	"shopcore/internal/infra"
	"shopcore/internal/infra/db"
	"shopcore/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type IntentRepository struct {
	db db.DBTX
}

func NewIntentRepository(dbtx db.DBTX) *IntentRepository {
	return &IntentRepository{db: dbtx}
}

const intentColumns = `id, gateway_order_id, owner_id, amount_paise, currency, cart_fingerprint,
	coupon_code, discount_paise, minimum_applied, status, failure_reason, created_at, updated_at`

func (r *IntentRepository) Create(ctx context.Context, intent *checkout.PaymentIntent) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO payment_intents
			(id, gateway_order_id, owner_id, amount_paise, currency, cart_fingerprint,
			 coupon_code, discount_paise, minimum_applied, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		pgconv.UUIDToPgtype(intent.ID()),
		intent.GatewayOrderID(),
		pgconv.UUIDToPgtype(intent.OwnerID()),
		intent.AmountPaise(),
		intent.Currency(),
		intent.CartFingerprint(),
		pgconv.StringPtrToPgtype(intent.CouponCode()),
		intent.DiscountPaise(),
		intent.MinimumApplied(),
		string(intent.Status()),
		pgconv.TimeToPgtype(intent.CreatedAt()),
		pgconv.TimeToPgtype(intent.UpdatedAt()),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to create payment intent", err)
	}
	return nil
}

func (r *IntentRepository) FindByID(ctx context.Context, id uuid.UUID) (*checkout.PaymentIntent, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+intentColumns+` FROM payment_intents WHERE id = $1`,
		pgconv.UUIDToPgtype(id),
	)
	intent, err := scanIntent(row)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("payment intent not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find payment intent", err)
	}
	return intent, nil
}

func (r *IntentRepository) FindActiveByFingerprint(ctx context.Context, ownerID uuid.UUID, fingerprint string) (*checkout.PaymentIntent, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+intentColumns+` FROM payment_intents
		WHERE owner_id = $1 AND cart_fingerprint = $2 AND status IN ('CREATED', 'VERIFYING')
		ORDER BY created_at DESC
		LIMIT 1`,
		pgconv.UUIDToPgtype(ownerID), fingerprint,
	)
	intent, err := scanIntent(row)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("payment intent not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find payment intent", err)
	}
	return intent, nil
}

func (r *IntentRepository) Save(ctx context.Context, intent *checkout.PaymentIntent) error {
	var reason pgtype.Text
	if fr := intent.FailureReason(); fr != nil {
		reason = pgconv.StringToPgtype(string(*fr))
	}

	tag, err := r.db.Exec(ctx, `
		UPDATE payment_intents
		SET status = $2, failure_reason = $3, updated_at = $4
		WHERE id = $1`,
		pgconv.UUIDToPgtype(intent.ID()),
		string(intent.Status()),
		reason,
		pgconv.TimeToPgtype(intent.UpdatedAt()),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to save payment intent", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("payment intent not found", nil, infra.KindNotFound)
	}
	return nil
}

func (r *IntentRepository) ExpireOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE payment_intents
		SET status = 'EXPIRED', updated_at = now()
		WHERE status = 'CREATED' AND created_at < $1`,
		pgconv.TimeToPgtype(cutoff),
	)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to expire payment intents", err)
	}
	return tag.RowsAffected(), nil
}

func scanIntent(row rowScanner) (*checkout.PaymentIntent, error) {
	var (
		id             pgtype.UUID
		gatewayOrderID string
		ownerID        pgtype.UUID
		amount         int64
		currency       string
		fingerprint    string
		couponCode     pgtype.Text
		discount       int64
		minimumApplied bool
		status         string
		failureReason  pgtype.Text
		createdAt      pgtype.Timestamptz
		updatedAt      pgtype.Timestamptz
	)
	if err := row.Scan(&id, &gatewayOrderID, &ownerID, &amount, &currency, &fingerprint,
		&couponCode, &discount, &minimumApplied, &status, &failureReason, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	var reason *checkout.FailureReason
	if failureReason.Valid {
		fr := checkout.FailureReason(failureReason.String)
		reason = &fr
	}

	return checkout.ReconstructPaymentIntent(
		uuid.UUID(id.Bytes),
		gatewayOrderID,
		uuid.UUID(ownerID.Bytes),
		amount,
		currency,
		fingerprint,
		pgconv.StringPtrFromPgtype(couponCode),
		discount,
		minimumApplied,
		checkout.IntentStatus(status),
		reason,
		pgconv.TimeFromPgtype(createdAt),
		pgconv.TimeFromPgtype(updatedAt),
	), nil
}
