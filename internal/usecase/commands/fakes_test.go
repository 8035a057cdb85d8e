//go:build unit

package commands_test

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"shopcore/internal/domain/cart"
	"shopcore/internal/domain/catalog"
	"shopcore/internal/domain/checkout"
	"shopcore/internal/infra"
	"shopcore/internal/usecase/shared"

	"github.com/google/uuid"
)

// fakeStore is an in-memory stand-in for the Postgres-backed unit of work.
// Within snapshots the maps and restores them when the closure fails, so
// rollback semantics match the real transaction boundary.
type fakeStore struct {
	lines         map[uuid.UUID]map[uuid.UUID]int32
	cartCoupons   map[uuid.UUID]string
	variants      map[uuid.UUID]catalog.VariantSnapshot
	coupons       map[string]shared.CouponSnapshot
	intents       map[uuid.UUID]*checkout.PaymentIntent
	orders        map[uuid.UUID]*checkout.Order
	claimedTokens map[uuid.UUID]uuid.UUID
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		lines:         make(map[uuid.UUID]map[uuid.UUID]int32),
		cartCoupons:   make(map[uuid.UUID]string),
		variants:      make(map[uuid.UUID]catalog.VariantSnapshot),
		coupons:       make(map[string]shared.CouponSnapshot),
		intents:       make(map[uuid.UUID]*checkout.PaymentIntent),
		orders:        make(map[uuid.UUID]*checkout.Order),
		claimedTokens: make(map[uuid.UUID]uuid.UUID),
	}
}

func (s *fakeStore) snapshot() *fakeStore {
	cp := newFakeStore()
	for owner, lines := range s.lines {
		inner := make(map[uuid.UUID]int32, len(lines))
		for v, q := range lines {
			inner[v] = q
		}
		cp.lines[owner] = inner
	}
	for k, v := range s.cartCoupons {
		cp.cartCoupons[k] = v
	}
	for k, v := range s.variants {
		cp.variants[k] = v
	}
	for k, v := range s.coupons {
		cp.coupons[k] = v
	}
	for k, v := range s.intents {
		entity := *v
		cp.intents[k] = &entity
	}
	for k, v := range s.orders {
		cp.orders[k] = v
	}
	for k, v := range s.claimedTokens {
		cp.claimedTokens[k] = v
	}
	return cp
}

func (s *fakeStore) restore(snap *fakeStore) {
	s.lines = snap.lines
	s.cartCoupons = snap.cartCoupons
	s.variants = snap.variants
	s.coupons = snap.coupons
	s.intents = snap.intents
	s.orders = snap.orders
	s.claimedTokens = snap.claimedTokens
}

func (s *fakeStore) lineQty(ownerID, variantID uuid.UUID) int32 {
	return s.lines[ownerID][variantID]
}

type fakeUoW struct {
	store *fakeStore
}

func newFakeUoW(store *fakeStore) *fakeUoW {
	return &fakeUoW{store: store}
}

func (u *fakeUoW) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	snap := u.store.snapshot()
	if err := fn(ctx, &fakeTx{store: u.store}); err != nil {
		u.store.restore(snap)
		return err
	}
	return nil
}

func (u *fakeUoW) WithinReadOnly(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	return fn(ctx, &fakeTx{store: u.store})
}

func (u *fakeUoW) Repos() shared.Tx {
	return &fakeTx{store: u.store}
}

type fakeTx struct {
	store *fakeStore
}

func (t *fakeTx) Carts() shared.CartRepository      { return &fakeCartRepo{store: t.store} }
func (t *fakeTx) Variants() shared.VariantReadStore { return &fakeVariantStore{store: t.store} }
func (t *fakeTx) Coupons() shared.CouponReadStore   { return &fakeCouponStore{store: t.store} }
func (t *fakeTx) Stock() shared.StockRepository     { return &fakeStockRepo{store: t.store} }
func (t *fakeTx) Intents() shared.IntentRepository  { return &fakeIntentRepo{store: t.store} }
func (t *fakeTx) Orders() shared.OrderRepository    { return &fakeOrderRepo{store: t.store} }
func (t *fakeTx) Merges() shared.MergeRepository    { return &fakeMergeRepo{store: t.store} }

func notFound(msg string) error {
	return infra.WrapRepoErr(msg, nil, infra.KindNotFound)
}

type fakeCartRepo struct {
	store *fakeStore
}

func (r *fakeCartRepo) AddAccumulate(_ context.Context, ownerID, variantID uuid.UUID, qty int32) (int32, error) {
	if r.store.lines[ownerID] == nil {
		r.store.lines[ownerID] = make(map[uuid.UUID]int32)
	}
	r.store.lines[ownerID][variantID] += qty
	return r.store.lines[ownerID][variantID], nil
}

func (r *fakeCartRepo) SetQuantity(_ context.Context, ownerID, variantID uuid.UUID, qty int32) error {
	if _, ok := r.store.lines[ownerID][variantID]; !ok {
		return notFound("cart line not found")
	}
	r.store.lines[ownerID][variantID] = qty
	return nil
}

func (r *fakeCartRepo) Remove(_ context.Context, ownerID, variantID uuid.UUID) error {
	if _, ok := r.store.lines[ownerID][variantID]; !ok {
		return notFound("cart line not found")
	}
	delete(r.store.lines[ownerID], variantID)
	return nil
}

func (r *fakeCartRepo) Clear(_ context.Context, ownerID uuid.UUID) error {
	delete(r.store.lines, ownerID)
	delete(r.store.cartCoupons, ownerID)
	return nil
}

func (r *fakeCartRepo) List(_ context.Context, ownerID uuid.UUID) ([]*cart.Line, error) {
	ids := make([]uuid.UUID, 0, len(r.store.lines[ownerID]))
	for v := range r.store.lines[ownerID] {
		ids = append(ids, v)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	lines := make([]*cart.Line, 0, len(ids))
	for _, v := range ids {
		lines = append(lines, cart.ReconstructLine(ownerID, v, r.store.lines[ownerID][v], time.Time{}, time.Time{}))
	}
	return lines, nil
}

func (r *fakeCartRepo) SetCoupon(_ context.Context, ownerID uuid.UUID, code string) error {
	r.store.cartCoupons[ownerID] = code
	return nil
}

func (r *fakeCartRepo) ClearCoupon(_ context.Context, ownerID uuid.UUID) error {
	delete(r.store.cartCoupons, ownerID)
	return nil
}

func (r *fakeCartRepo) AppliedCoupon(_ context.Context, ownerID uuid.UUID) (*string, error) {
	code, ok := r.store.cartCoupons[ownerID]
	if !ok {
		return nil, nil
	}
	return &code, nil
}

type fakeVariantStore struct {
	store *fakeStore
}

func (r *fakeVariantStore) FindByID(_ context.Context, id uuid.UUID) (*catalog.VariantSnapshot, error) {
	snap, ok := r.store.variants[id]
	if !ok {
		return nil, notFound("variant not found")
	}
	return &snap, nil
}

func (r *fakeVariantStore) FindByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]catalog.VariantSnapshot, error) {
	found := make(map[uuid.UUID]catalog.VariantSnapshot, len(ids))
	for _, id := range ids {
		if snap, ok := r.store.variants[id]; ok {
			found[id] = snap
		}
	}
	return found, nil
}

type fakeCouponStore struct {
	store *fakeStore
}

func (r *fakeCouponStore) FindByCode(_ context.Context, code string) (*shared.CouponSnapshot, error) {
	for stored, snap := range r.store.coupons {
		if strings.EqualFold(stored, code) {
			return &snap, nil
		}
	}
	return nil, notFound("coupon not found")
}

type fakeStockRepo struct {
	store *fakeStore
}

func (r *fakeStockRepo) DecrementAll(_ context.Context, lines []checkout.OrderLine) error {
	var conflicted []uuid.UUID
	for _, l := range lines {
		snap, ok := r.store.variants[l.VariantID]
		if !ok || snap.AvailableQty < l.Quantity {
			conflicted = append(conflicted, l.VariantID)
			continue
		}
		snap.AvailableQty -= l.Quantity
		r.store.variants[l.VariantID] = snap
	}
	if len(conflicted) > 0 {
		return infra.StockConflictError{VariantIDs: conflicted}
	}
	return nil
}

type fakeIntentRepo struct {
	store *fakeStore
}

func (r *fakeIntentRepo) Create(_ context.Context, intent *checkout.PaymentIntent) error {
	for _, existing := range r.store.intents {
		if existing.OwnerID() == intent.OwnerID() &&
			existing.CartFingerprint() == intent.CartFingerprint() &&
			!existing.IsTerminal() {
			return infra.WrapRepoErr("intent already active for fingerprint", nil, infra.KindDuplicateKey)
		}
	}
	entity := *intent
	r.store.intents[intent.ID()] = &entity
	return nil
}

func (r *fakeIntentRepo) FindByID(_ context.Context, id uuid.UUID) (*checkout.PaymentIntent, error) {
	stored, ok := r.store.intents[id]
	if !ok {
		return nil, notFound("payment intent not found")
	}
	entity := *stored
	return &entity, nil
}

func (r *fakeIntentRepo) FindActiveByFingerprint(_ context.Context, ownerID uuid.UUID, fingerprint string) (*checkout.PaymentIntent, error) {
	for _, stored := range r.store.intents {
		if stored.OwnerID() == ownerID && stored.CartFingerprint() == fingerprint && !stored.IsTerminal() {
			entity := *stored
			return &entity, nil
		}
	}
	return nil, notFound("no active intent for fingerprint")
}

func (r *fakeIntentRepo) Save(_ context.Context, intent *checkout.PaymentIntent) error {
	if _, ok := r.store.intents[intent.ID()]; !ok {
		return notFound("payment intent not found")
	}
	entity := *intent
	r.store.intents[intent.ID()] = &entity
	return nil
}

func (r *fakeIntentRepo) ExpireOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	var expired int64
	for _, stored := range r.store.intents {
		if stored.Status() == checkout.IntentCreated && stored.CreatedAt().Before(cutoff) {
			if err := stored.Expire(cutoff); err == nil {
				expired++
			}
		}
	}
	return expired, nil
}

type fakeOrderRepo struct {
	store *fakeStore
}

func (r *fakeOrderRepo) Create(_ context.Context, order *checkout.Order) error {
	for _, existing := range r.store.orders {
		if existing.PaymentIntentID() == order.PaymentIntentID() {
			return infra.WrapRepoErr("order already exists for intent", nil, infra.KindDuplicateKey)
		}
	}
	r.store.orders[order.ID()] = order
	return nil
}

func (r *fakeOrderRepo) FindByID(_ context.Context, id, ownerID uuid.UUID) (*checkout.Order, error) {
	order, ok := r.store.orders[id]
	if !ok || order.OwnerID() != ownerID {
		return nil, notFound("order not found")
	}
	return order, nil
}

func (r *fakeOrderRepo) FindByIntentID(_ context.Context, intentID uuid.UUID) (*checkout.Order, error) {
	for _, order := range r.store.orders {
		if order.PaymentIntentID() == intentID {
			return order, nil
		}
	}
	return nil, notFound("order not found")
}

func (r *fakeOrderRepo) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]*checkout.Order, error) {
	var orders []*checkout.Order
	for _, order := range r.store.orders {
		if order.OwnerID() == ownerID {
			orders = append(orders, order)
		}
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].CreatedAt().After(orders[j].CreatedAt()) })
	return orders, nil
}

type fakeMergeRepo struct {
	store *fakeStore
}

func (r *fakeMergeRepo) ClaimToken(_ context.Context, token, ownerID uuid.UUID) (bool, error) {
	if _, ok := r.store.claimedTokens[token]; ok {
		return false, nil
	}
	r.store.claimedTokens[token] = ownerID
	return true, nil
}

// fakeGateway counts CreateOrder calls so idempotency tests can assert no
// duplicate gateway orders are created.
type fakeGateway struct {
	calls int
	err   error
}

func (g *fakeGateway) CreateOrder(_ context.Context, _ int64, _ string, _ string) (*shared.GatewayOrder, error) {
	if g.err != nil {
		return nil, g.err
	}
	g.calls++
	return &shared.GatewayOrder{ID: fmt.Sprintf("order_fake_%d", g.calls)}, nil
}
