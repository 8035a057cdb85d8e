package coupon

import (
	"errors"
	"regexp"
	"strings"

	"shopcore/internal/domain/catalog"

	"github.com/google/uuid"
)

var (
	ErrInvalidCouponCode    = errors.New("invalid coupon code format")
	ErrInvalidDiscountType  = errors.New("discount type must be PERCENTAGE or FIXED")
	ErrInvalidDiscountValue = errors.New("invalid discount value")
	ErrInvalidScope         = errors.New("invalid eligibility scope")
)

var couponCodeRegex = regexp.MustCompile(`^[A-Z0-9]{3,20}$`)

// Code is case-insensitive; it is normalized to upper case once here so
// lookups and comparisons never re-implement the folding.
type Code string

func NewCode(code string) (Code, error) {
	code = strings.TrimSpace(strings.ToUpper(code))
	if !couponCodeRegex.MatchString(code) {
		return Code(""), ErrInvalidCouponCode
	}
	return Code(code), nil
}

func (c Code) String() string {
	return string(c)
}

type Scope string

const (
	ScopeAll        Scope = "all"
	ScopeCategories Scope = "categories"
	ScopeBrands     Scope = "brands"
	ScopeProducts   Scope = "products"
)

// Eligibility decides which cart lines a coupon discounts. The zero value
// matches nothing; use NewEligibilityAll for unrestricted coupons.
type Eligibility struct {
	scope Scope
	ids   map[uuid.UUID]struct{}
}

func NewEligibilityAll() Eligibility {
	return Eligibility{scope: ScopeAll}
}

func NewEligibility(scope Scope, ids []uuid.UUID) (Eligibility, error) {
	switch scope {
	case ScopeAll:
		return NewEligibilityAll(), nil
	case ScopeCategories, ScopeBrands, ScopeProducts:
	default:
		return Eligibility{}, ErrInvalidScope
	}

	set := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return Eligibility{scope: scope, ids: set}, nil
}

func (e Eligibility) Scope() Scope {
	return e.scope
}

func (e Eligibility) IDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(e.ids))
	for id := range e.ids {
		ids = append(ids, id)
	}
	return ids
}

func (e Eligibility) Matches(v catalog.VariantSnapshot) bool {
	switch e.scope {
	case ScopeAll:
		return true
	case ScopeCategories:
		for _, cid := range v.CategoryIDs {
			if _, ok := e.ids[cid]; ok {
				return true
			}
		}
		return false
	case ScopeBrands:
		_, ok := e.ids[v.BrandID]
		return ok
	case ScopeProducts:
		_, ok := e.ids[v.VariantID]
		return ok
	default:
		return false
	}
}
