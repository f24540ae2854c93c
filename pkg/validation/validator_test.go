package validation

import (
	"testing"

	"github.com/aarondl/null/v8"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Prefix string              `json:"prefix" validate:"required,prefix"`
	Price  decimal.NullDecimal `json:"price" validate:"omitempty,gte=0"`
	Wear   null.Int            `json:"wear" validate:"omitempty,gte=0,lte=100"`
	Email  null.String         `json:"email" validate:"omitempty,email"`
	Cost   *decimal.Decimal    `json:"cost" validate:"omitempty,gte=0"`
}

func TestValidate_Valid(t *testing.T) {
	v := New()
	cost := decimal.RequireFromString("10.50")
	err := v.Validate(sample{
		Prefix: "PC",
		Price:  decimal.NewNullDecimal(decimal.RequireFromString("100.00")),
		Wear:   null.IntFrom(100),
		Email:  null.StringFrom("admin@example.com"),
		Cost:   &cost,
	})
	assert.NoError(t, err)
}

func TestValidate_NullValuesSkipped(t *testing.T) {
	v := New()
	assert.NoError(t, v.Validate(sample{Prefix: "NB1"}))
}

func TestValidate_FieldDiagnostics(t *testing.T) {
	v := New()
	cost := decimal.NewFromInt(-1)
	err := v.Validate(sample{
		Prefix: "TOO-LONG-PREFIX",
		Price:  decimal.NewNullDecimal(decimal.NewFromInt(-5)),
		Wear:   null.IntFrom(101),
		Email:  null.StringFrom("not-an-email"),
		Cost:   &cost,
	})
	require.Error(t, err)

	fields, ok := FieldErrors(err)
	require.True(t, ok)
	assert.Contains(t, fields, "prefix")
	assert.Contains(t, fields, "price")
	assert.Contains(t, fields, "wear")
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "cost")
	assert.Equal(t, "должно быть не больше 100", fields["wear"])
}

func TestFieldErrors_NotValidatorError(t *testing.T) {
	_, ok := FieldErrors(assert.AnError)
	assert.False(t, ok)
}
