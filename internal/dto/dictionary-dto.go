package dto

import "github.com/aarondl/null/v8"

// CreateDictionaryItemDTO - статусы, отделы, местоположения, производители, поставщики, теги.
type CreateDictionaryItemDTO struct {
	Name        string      `json:"name" validate:"required,max=255"`
	Slug        null.String `json:"slug" validate:"omitempty,max=100"`
	Description null.String `json:"description"`
}

// UpdateDictionaryItemDTO: slug после создания не меняется.
type UpdateDictionaryItemDTO struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description"`
}

type CreateAssetTypeDTO struct {
	Name        string      `json:"name" validate:"required,max=255"`
	Prefix      string      `json:"prefix" validate:"required,prefix"`
	Slug        null.String `json:"slug" validate:"omitempty,max=100"`
	Description null.String `json:"description"`
}

type UpdateAssetTypeDTO struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=255"`
	Prefix      *string `json:"prefix" validate:"omitempty,prefix"`
	Description *string `json:"description"`
}

type CreateDeviceModelDTO struct {
	Name           string         `json:"name" validate:"required,max=255"`
	ManufacturerID int64          `json:"manufacturer_id" validate:"required,gt=0"`
	AssetTypeID    int64          `json:"asset_type_id" validate:"required,gt=0"`
	Description    null.String    `json:"description"`
	Specification  map[string]any `json:"specification"`
}

type UpdateDeviceModelDTO struct {
	Name           *string        `json:"name" validate:"omitempty,min=1,max=255"`
	ManufacturerID *int64         `json:"manufacturer_id" validate:"omitempty,gt=0"`
	AssetTypeID    *int64         `json:"asset_type_id" validate:"omitempty,gt=0"`
	Description    *string        `json:"description"`
	Specification  map[string]any `json:"specification"`
}

type CreateEmployeeDTO struct {
	LastName     string      `json:"last_name" validate:"required,max=100"`
	FirstName    string      `json:"first_name" validate:"required,max=100"`
	Patronymic   null.String `json:"patronymic" validate:"omitempty,max=100"`
	EmployeeCode null.String `json:"employee_code" validate:"omitempty,max=50"`
	Email        null.String `json:"email" validate:"omitempty,email"`
	Phone        null.String `json:"phone" validate:"omitempty,max=50"`
	DepartmentID null.Int64  `json:"department_id" validate:"omitempty,gt=0"`
}

// UpdateEmployeeDTO: пустая строка очищает необязательное поле, department_id=0 снимает отдел.
type UpdateEmployeeDTO struct {
	LastName     *string `json:"last_name" validate:"omitempty,min=1,max=100"`
	FirstName    *string `json:"first_name" validate:"omitempty,min=1,max=100"`
	Patronymic   *string `json:"patronymic" validate:"omitempty,max=100"`
	EmployeeCode *string `json:"employee_code" validate:"omitempty,max=50"`
	Email        *string `json:"email" validate:"omitempty,email"`
	Phone        *string `json:"phone" validate:"omitempty,max=50"`
	DepartmentID *int64  `json:"department_id" validate:"omitempty,gte=0"`
}
