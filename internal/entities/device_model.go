package entities

import "it-inventory/pkg/types"

type DeviceModel struct {
	ID             int64          `json:"id"`
	Name           string         `json:"name"`
	ManufacturerID int64          `json:"manufacturer_id"`
	AssetTypeID    int64          `json:"asset_type_id"`
	Description    *string        `json:"description,omitempty"`
	Specification  map[string]any `json:"specification,omitempty"`

	types.BaseEntity

	Manufacturer *Manufacturer `json:"manufacturer,omitempty" db:"-"`
	AssetType    *AssetType    `json:"asset_type,omitempty" db:"-"`
}
