package models

import (
	"time"

	"github.com/google/uuid"
)

// PrintedCopiesAddOn charges PricePerUnit for every copy above BaseQuantity.
type PrintedCopiesAddOn struct {
	BaseQuantity int     `json:"base_quantity" validate:"gte=0"`
	PricePerUnit float64 `json:"price_per_unit" validate:"gte=0"`
}

// ExtraPagesAddOn charges PricePerPage for every page above BasePagesIncluded.
type ExtraPagesAddOn struct {
	BasePagesIncluded int     `json:"base_pages_included" validate:"gte=0"`
	PricePerPage      float64 `json:"price_per_page" validate:"gte=0"`
}

type PackageAddOns struct {
	PrintedCopies PrintedCopiesAddOn `json:"printed_copies"`
	ExtraPages    ExtraPagesAddOn    `json:"extra_pages"`
}

type Package struct {
	ID          uuid.UUID     `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	BasePrice   float64       `json:"base_price"`
	Features    []string      `json:"features"`
	AddOns      PackageAddOns `json:"add_ons"`
	IsActive    bool          `json:"is_active"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

type PackageCustomization struct {
	PrintedCopies int `json:"printed_copies" validate:"min=0,max=100000"`
	TotalPages    int `json:"total_pages" validate:"min=0,max=5000"`
}

// Equal treats a nil customization as distinct from an explicit zero one.
func (c *PackageCustomization) Equal(other *PackageCustomization) bool {
	if c == nil || other == nil {
		return c == nil && other == nil
	}

	return *c == *other
}

type CreatePackageRequest struct {
	Name        string        `json:"name" validate:"required,max=100"`
	Description string        `json:"description" validate:"max=2000"`
	BasePrice   float64       `json:"base_price" validate:"gte=0"`
	Features    []string      `json:"features" validate:"omitempty,dive,max=200"`
	AddOns      PackageAddOns `json:"add_ons"`
}

type UpdatePackageRequest struct {
	CreatePackageRequest
	IsActive *bool `json:"is_active,omitempty"`
}

type QuoteResponse struct {
	PackageID     uuid.UUID             `json:"package_id"`
	Customization *PackageCustomization `json:"customization,omitempty"`
	Price         float64               `json:"price"`
}
