package entities

import "it-inventory/pkg/types"

type AssetType struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Prefix      string  `json:"prefix"`
	Slug        *string `json:"slug,omitempty"`
	Description *string `json:"description,omitempty"`

	types.BaseEntity
}
