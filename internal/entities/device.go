package entities

import (
	"time"

	"github.com/shopspring/decimal"

	"it-inventory/pkg/types"
)

const DefaultDeviceSource = "purchase"

// Device - учитываемый актив.
type Device struct {
	ID                    int64               `json:"id"`
	Name                  string              `json:"name"`
	InventoryNumber       string              `json:"inventory_number"`
	SerialNumber          *string             `json:"serial_number,omitempty"`
	MACAddress            *string             `json:"mac_address,omitempty"`
	IPAddress             *string             `json:"ip_address,omitempty"`
	Notes                 *string             `json:"notes,omitempty"`
	Source                string              `json:"source"`
	PurchaseDate          *time.Time          `json:"purchase_date,omitempty"`
	WarrantyEndDate       *time.Time          `json:"warranty_end_date,omitempty"`
	Price                 decimal.NullDecimal `json:"price"`
	ExpectedLifespanYears *int                `json:"expected_lifespan_years,omitempty"`
	CurrentWearPercentage *int                `json:"current_wear_percentage,omitempty"`
	Attributes            map[string]any      `json:"attributes,omitempty"`

	AssetTypeID   int64  `json:"asset_type_id"`
	DeviceModelID int64  `json:"device_model_id"`
	StatusID      int64  `json:"status_id"`
	DepartmentID  *int64 `json:"department_id,omitempty"`
	LocationID    *int64 `json:"location_id,omitempty"`
	EmployeeID    *int64 `json:"employee_id,omitempty"`
	SupplierID    *int64 `json:"supplier_id,omitempty"`

	types.BaseEntity

	AssetType   *AssetType    `json:"asset_type,omitempty" db:"-"`
	DeviceModel *DeviceModel  `json:"device_model,omitempty" db:"-"`
	Status      *DeviceStatus `json:"status,omitempty" db:"-"`
	Department  *Department   `json:"department,omitempty" db:"-"`
	Location    *Location     `json:"location,omitempty" db:"-"`
	Employee    *Employee     `json:"employee,omitempty" db:"-"`
	Supplier    *Supplier     `json:"supplier,omitempty" db:"-"`
	Tags        []Tag         `json:"tags" db:"-"`
}

func (d Device) TagIDs() []int64 {
	ids := make([]int64, 0, len(d.Tags))
	for _, t := range d.Tags {
		ids = append(ids, t.ID)
	}
	return ids
}
