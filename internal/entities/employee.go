package entities

import (
	"strings"

	"it-inventory/pkg/types"
)

type Employee struct {
	ID           int64   `json:"id"`
	LastName     string  `json:"last_name"`
	FirstName    string  `json:"first_name"`
	Patronymic   *string `json:"patronymic,omitempty"`
	EmployeeCode *string `json:"employee_code,omitempty"`
	Email        *string `json:"email,omitempty"`
	Phone        *string `json:"phone,omitempty"`
	DepartmentID *int64  `json:"department_id,omitempty"`

	types.BaseEntity

	Department *Department `json:"department,omitempty" db:"-"`
}

func (e Employee) FullName() string {
	parts := []string{e.LastName, e.FirstName}
	if e.Patronymic != nil && *e.Patronymic != "" {
		parts = append(parts, *e.Patronymic)
	}
	return strings.Join(parts, " ")
}
