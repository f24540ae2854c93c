package dto

import (
	"github.com/aarondl/null/v8"
	"github.com/shopspring/decimal"
)

type CreateAssetDTO struct {
	Name                  string              `json:"name" validate:"required,max=255"`
	AssetTypeID           int64               `json:"asset_type_id" validate:"required,gt=0"`
	DeviceModelID         int64               `json:"device_model_id" validate:"required,gt=0"`
	StatusID              int64               `json:"status_id" validate:"required,gt=0"`
	DepartmentID          null.Int64          `json:"department_id" validate:"omitempty,gt=0"`
	LocationID            null.Int64          `json:"location_id" validate:"omitempty,gt=0"`
	EmployeeID            null.Int64          `json:"employee_id" validate:"omitempty,gt=0"`
	SupplierID            null.Int64          `json:"supplier_id" validate:"omitempty,gt=0"`
	SerialNumber          null.String         `json:"serial_number" validate:"omitempty,max=255"`
	MACAddress            null.String         `json:"mac_address" validate:"omitempty,max=255"`
	IPAddress             null.String         `json:"ip_address" validate:"omitempty,ip"`
	Notes                 null.String         `json:"notes"`
	Source                null.String         `json:"source" validate:"omitempty,max=50"`
	PurchaseDate          *Date               `json:"purchase_date"`
	WarrantyEndDate       *Date               `json:"warranty_end_date"`
	Price                 decimal.NullDecimal `json:"price" validate:"omitempty,gte=0"`
	ExpectedLifespanYears null.Int            `json:"expected_lifespan_years" validate:"omitempty,gte=0"`
	CurrentWearPercentage null.Int            `json:"current_wear_percentage" validate:"omitempty,gte=0,lte=100"`
	Attributes            map[string]any      `json:"attributes"`
	TagIDs                []int64             `json:"tag_ids"`
}

// UpdateAssetDTO - частичное обновление. Provided заполняется контроллером
// из ключей исходного JSON, чтобы отличать "не передано" от явного null.
type UpdateAssetDTO struct {
	Name                  *string          `json:"name" validate:"omitempty,min=1,max=255"`
	AssetTypeID           *int64           `json:"asset_type_id" validate:"omitempty,gt=0"`
	DeviceModelID         *int64           `json:"device_model_id" validate:"omitempty,gt=0"`
	StatusID              *int64           `json:"status_id" validate:"omitempty,gt=0"`
	DepartmentID          *int64           `json:"department_id" validate:"omitempty,gt=0"`
	LocationID            *int64           `json:"location_id" validate:"omitempty,gt=0"`
	EmployeeID            *int64           `json:"employee_id" validate:"omitempty,gt=0"`
	SupplierID            *int64           `json:"supplier_id" validate:"omitempty,gt=0"`
	SerialNumber          *string          `json:"serial_number" validate:"omitempty,max=255"`
	MACAddress            *string          `json:"mac_address" validate:"omitempty,max=255"`
	IPAddress             *string          `json:"ip_address" validate:"omitempty,ip"`
	Notes                 *string          `json:"notes"`
	Source                *string          `json:"source" validate:"omitempty,max=50"`
	PurchaseDate          *Date            `json:"purchase_date"`
	WarrantyEndDate       *Date            `json:"warranty_end_date"`
	Price                 *decimal.Decimal `json:"price" validate:"omitempty,gte=0"`
	ExpectedLifespanYears *int             `json:"expected_lifespan_years" validate:"omitempty,gte=0"`
	CurrentWearPercentage *int             `json:"current_wear_percentage" validate:"omitempty,gte=0,lte=100"`
	Attributes            map[string]any   `json:"attributes"`
	TagIDs                *[]int64         `json:"tag_ids"`

	Provided map[string]bool `json:"-"`
}

// Has сообщает, передано ли поле. Без Provided поле считается переданным, если оно не nil.
func (d UpdateAssetDTO) Has(key string, nonNil bool) bool {
	if d.Provided != nil {
		return d.Provided[key]
	}
	return nonNil
}

type BulkDeleteAssetsDTO struct {
	IDs []int64 `json:"ids" validate:"required,min=1,dive,gt=0"`
}

// BulkUpdateAssetsDTO меняет только статус, отдел и местоположение.
type BulkUpdateAssetsDTO struct {
	IDs          []int64 `json:"ids" validate:"required,min=1,dive,gt=0"`
	StatusID     *int64  `json:"status_id" validate:"omitempty,gt=0"`
	DepartmentID *int64  `json:"department_id" validate:"omitempty,gt=0"`
	LocationID   *int64  `json:"location_id" validate:"omitempty,gt=0"`
}

type BulkDeleteResultDTO struct {
	Deleted int64    `json:"deleted"`
	Errors  []string `json:"errors"`
}

type BulkUpdateResultDTO struct {
	Updated int64 `json:"updated"`
}
