//go:build unit || e2e

package dbtest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

func CreateTestVariant(t *testing.T, db DBLike, unitPricePaise int64, availableQty int32) uuid.UUID {
	t.Helper()

	variantID := uuid.New()
	ctx := context.Background()

	_, err := db.Exec(ctx,
		"INSERT INTO variants (id, unit_price_paise, available_qty, is_purchasable, brand_id) VALUES ($1, $2, $3, true, $4)",
		variantID, unitPricePaise, availableQty, uuid.New())
	require.NoError(t, err)

	return variantID
}

func CreateTestCoupon(t *testing.T, db DBLike, code string, percent int64) uuid.UUID {
	t.Helper()

	couponID := uuid.New()
	ctx := context.Background()

	tag, err := db.Exec(ctx,
		"INSERT INTO coupons (id, code, discount_type, discount_value, scope, active) VALUES ($1, $2, 'PERCENTAGE', $3, 'all', true) ON CONFLICT (lower(code)) DO NOTHING",
		couponID, code, percent)
	require.NoError(t, err)

	if tag.RowsAffected() == 0 {
		_ = db.QueryRow(ctx, "SELECT id FROM coupons WHERE lower(code) = lower($1)", code).Scan(&couponID)
	}

	return couponID
}

func VariantStock(t *testing.T, db DBLike, variantID uuid.UUID) int32 {
	t.Helper()

	var qty int32
	err := db.QueryRow(context.Background(),
		"SELECT available_qty FROM variants WHERE id = $1", variantID).Scan(&qty)
	require.NoError(t, err)
	return qty
}

func CartLineCount(t *testing.T, db DBLike, ownerID uuid.UUID) int {
	t.Helper()

	var count int
	err := db.QueryRow(context.Background(),
		"SELECT count(*) FROM cart_lines WHERE owner_id = $1", ownerID).Scan(&count)
	require.NoError(t, err)
	return count
}

func IntentStatus(t *testing.T, db DBLike, intentID uuid.UUID) string {
	t.Helper()

	var status string
	err := db.QueryRow(context.Background(),
		"SELECT status FROM payment_intents WHERE id = $1", intentID).Scan(&status)
	require.NoError(t, err)
	return status
}

func OrderCount(t *testing.T, db DBLike, ownerID uuid.UUID) int {
	t.Helper()

	var count int
	err := db.QueryRow(context.Background(),
		"SELECT count(*) FROM orders WHERE owner_id = $1", ownerID).Scan(&count)
	require.NoError(t, err)
	return count
}

var (
	buildTruncateOnce sync.Once
	truncateSQL       atomic.Value // string
)

// ResetDB truncates every table except the migration bookkeeping one. The
// schema carries no reference data, so a truncate is a full reset.
func ResetDB(pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	buildTruncateOnce.Do(func() {
		rows, err := pool.Query(ctx, `
		  SELECT 'public.' || quote_ident(tablename)
		  FROM pg_tables
		  WHERE schemaname = 'public'
		    AND tablename NOT IN ('schema_migrations')`)
		if err != nil {
			truncateSQL.Store("")
			return
		}
		defer rows.Close()
		var tables []string
		for rows.Next() {
			var t string
			if err := rows.Scan(&t); err != nil {
				truncateSQL.Store("")
				return
			}
			tables = append(tables, t)
		}
		if rows.Err() != nil {
			truncateSQL.Store("")
			return
		}
		if len(tables) == 0 {
			truncateSQL.Store("SELECT 1")
			return
		}
		truncateSQL.Store("TRUNCATE " + strings.Join(tables, ", ") + " RESTART IDENTITY CASCADE;")
	})

	sqlAny := truncateSQL.Load()
	if sqlAny == nil || sqlAny.(string) == "" {
		return fmt.Errorf("failed to build TRUNCATE SQL")
	}
	if _, err := pool.Exec(ctx, sqlAny.(string)); err != nil {
		return err
	}

	return nil
}
