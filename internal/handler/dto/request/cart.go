package request

import (
	"github.com/google/uuid"
)

type AddItemRequest struct {
	VariantID uuid.UUID `json:"variant_id" binding:"required"`
	Quantity  int32     `json:"quantity" binding:"required,min=1"`
}

type SetQuantityRequest struct {
	Quantity int32 `json:"quantity" binding:"required,min=1"`
}

type ApplyCouponRequest struct {
	Code string `json:"code" binding:"required,min=3,max=20"`
}

type MergeItemRequest struct {
	VariantID uuid.UUID `json:"variant_id" binding:"required"`
	Quantity  int32     `json:"quantity" binding:"required"`
}

type MergeCartRequest struct {
	Items []MergeItemRequest `json:"items" binding:"required,dive"`
}
