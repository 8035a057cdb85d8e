package cart

import (
	"time"

	"github.com/google/uuid"
)

// Line is one (owner, variant) row of the durable cart. Unique per owner and
// variant; quantity is the only mutable field.
type Line struct {
	ownerID   uuid.UUID
	variantID uuid.UUID
	quantity  Quantity
	createdAt time.Time
	updatedAt time.Time
}

func NewLine(ownerID, variantID uuid.UUID, qty int32) (*Line, error) {
	quantity, err := NewQuantity(qty)
	if err != nil {
		return nil, err
	}
	return &Line{
		ownerID:   ownerID,
		variantID: variantID,
		quantity:  quantity,
	}, nil
}

func ReconstructLine(ownerID, variantID uuid.UUID, qty int32, createdAt, updatedAt time.Time) *Line {
	return &Line{
		ownerID:   ownerID,
		variantID: variantID,
		quantity:  Quantity(qty),
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

func (l *Line) OwnerID() uuid.UUID   { return l.ownerID }
func (l *Line) VariantID() uuid.UUID { return l.variantID }
func (l *Line) Quantity() Quantity   { return l.quantity }
func (l *Line) CreatedAt() time.Time { return l.createdAt }
func (l *Line) UpdatedAt() time.Time { return l.updatedAt }
