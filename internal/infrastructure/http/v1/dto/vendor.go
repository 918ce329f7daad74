package dto

import (
	"time"

	"fruitmandi/internal/domain/vendor"
)

// CreateVendorRequest for registering vendors.
type CreateVendorRequest struct {
	Name    string `json:"name" binding:"required"`
	Contact string `json:"contact" binding:"required"`
}

// VendorResponse contains vendor fields.
type VendorResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Contact   string    `json:"contact"`
	CreatedAt time.Time `json:"createdAt"`
}

// FromVendor creates VendorResponse from vendor.Vendor.
func FromVendor(v *vendor.Vendor) VendorResponse {
	return VendorResponse{
		ID:        v.ID,
		Name:      v.Name,
		Contact:   v.Contact,
		CreatedAt: v.CreatedAt,
	}
}

// FromVendors maps a vendor list.
func FromVendors(vendors []*vendor.Vendor) []VendorResponse {
	out := make([]VendorResponse, 0, len(vendors))
	for _, v := range vendors {
		out = append(out, FromVendor(v))
	}
	return out
}
