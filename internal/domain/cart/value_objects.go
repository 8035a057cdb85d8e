package cart

import "errors"

var ErrInvalidQuantity = errors.New("quantity must be at least 1")

// Quantity is always >= 1. A zero quantity is expressed by removing the
// line, never by storing zero.
type Quantity int32

func NewQuantity(q int32) (Quantity, error) {
	if q < 1 {
		return 0, ErrInvalidQuantity
	}
	return Quantity(q), nil
}

func (q Quantity) Int32() int32 {
	return int32(q)
}
