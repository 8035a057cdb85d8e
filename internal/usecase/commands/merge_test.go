//go:build unit

package commands_test

import (
	"context"
	"testing"

	"shopcore/internal/domain/catalog"
	"shopcore/internal/pkg/errs"
	"shopcore/internal/usecase/commands"
	"shopcore/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type MergeUseCaseTestSuite struct {
	suite.Suite
	store     *fakeStore
	usecase   commands.MergeCommands
	ownerID   uuid.UUID
	variantID uuid.UUID
}

func (s *MergeUseCaseTestSuite) SetupTest() {
	s.reset()
}

func (s *MergeUseCaseTestSuite) reset() {
	s.store = newFakeStore()
	s.usecase = commands.NewMergeUseCase(newFakeUoW(s.store))

	s.ownerID = uuid.New()
	s.variantID = uuid.New()
	s.store.variants[s.variantID] = catalog.VariantSnapshot{
		VariantID:      s.variantID,
		UnitPricePaise: 49900,
		AvailableQty:   10,
		IsPurchasable:  true,
		BrandID:        uuid.New(),
	}
}

func TestMergeUseCaseSuite(t *testing.T) {
	suite.Run(t, new(MergeUseCaseTestSuite))
}

func (s *MergeUseCaseTestSuite) merge(token uuid.UUID, items []shared.GuestItem) *shared.MergeOutcome {
	outcome, err := s.usecase.MergeGuestCart(context.Background(), s.ownerID, token, items)
	s.Require().NoError(err)
	return outcome
}

func (s *MergeUseCaseTestSuite) TestMergeGuestCart() {
	s.Run("success: guest lines accumulate onto the durable cart", func() {
		s.reset()
		s.store.lines[s.ownerID] = map[uuid.UUID]int32{s.variantID: 2}

		outcome := s.merge(uuid.New(), []shared.GuestItem{{VariantID: s.variantID, Quantity: 3}})

		s.Equal([]uuid.UUID{s.variantID}, outcome.Merged)
		s.False(outcome.Replayed)
		s.Equal(int32(5), s.store.lineQty(s.ownerID, s.variantID))
	})

	s.Run("success: replayed token leaves the cart unchanged", func() {
		s.reset()
		token := uuid.New()
		items := []shared.GuestItem{{VariantID: s.variantID, Quantity: 3}}

		first := s.merge(token, items)
		s.False(first.Replayed)

		second := s.merge(token, items)
		s.True(second.Replayed)
		s.Empty(second.Merged)
		s.Equal(int32(3), s.store.lineQty(s.ownerID, s.variantID))
	})

	s.Run("success: combined quantity clamps to available stock", func() {
		s.reset()
		s.store.lines[s.ownerID] = map[uuid.UUID]int32{s.variantID: 8}

		outcome := s.merge(uuid.New(), []shared.GuestItem{{VariantID: s.variantID, Quantity: 5}})

		s.Equal([]uuid.UUID{s.variantID}, outcome.Clamped)
		s.Empty(outcome.Merged)
		s.Equal(int32(10), s.store.lineQty(s.ownerID, s.variantID))
	})

	s.Run("success: stale guest lines are skipped, not fatal", func() {
		s.reset()
		unknownID := uuid.New()

		goneID := uuid.New()
		s.store.variants[goneID] = catalog.VariantSnapshot{
			VariantID: goneID, UnitPricePaise: 100, AvailableQty: 5, IsPurchasable: false, BrandID: uuid.New(),
		}
		emptyID := uuid.New()
		s.store.variants[emptyID] = catalog.VariantSnapshot{
			VariantID: emptyID, UnitPricePaise: 100, AvailableQty: 0, IsPurchasable: true, BrandID: uuid.New(),
		}

		outcome := s.merge(uuid.New(), []shared.GuestItem{
			{VariantID: s.variantID, Quantity: 1},
			{VariantID: unknownID, Quantity: 1},
			{VariantID: goneID, Quantity: 1},
			{VariantID: emptyID, Quantity: 1},
			{VariantID: s.variantID, Quantity: 0},
		})

		s.Equal([]uuid.UUID{s.variantID}, outcome.Merged)
		s.ElementsMatch([]uuid.UUID{unknownID, goneID, emptyID, s.variantID}, outcome.Skipped)
		s.Equal(int32(1), s.store.lineQty(s.ownerID, s.variantID))
	})

	s.Run("error: nil merge token is rejected", func() {
		s.reset()

		_, err := s.usecase.MergeGuestCart(context.Background(), s.ownerID, uuid.Nil, nil)
		s.ErrorIs(err, errs.ErrMergeTokenRequired)
	})
}
