package validator_test

import (
	"errors"
	"testing"

	govalidator "github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/planner-shop/pkg/validator"
)

type color string

func (c color) Validate() error {
	if c == "red" || c == "blue" {
		return nil
	}
	return errors.New("unknown color")
}

type input struct {
	Code  string          `json:"code" validate:"required,alnumtext"`
	Color color           `json:"color" validate:"enum"`
	Price decimal.Decimal `json:"price" validate:"gt=0"`
	Ratio decimal.Decimal `json:"ratio" validate:"gte=0,lte=100"`
}

func TestDefaultValidator(t *testing.T) {
	v, err := validator.NewDefaultValidator()
	require.NoError(t, err)

	valid := input{
		Code:  "AB12",
		Color: "red",
		Price: decimal.RequireFromString("9.99"),
		Ratio: decimal.Zero,
	}

	t.Run("Should accept valid input", func(t *testing.T) {
		assert.NoError(t, v.Validate(valid))
	})

	tests := []struct {
		name  string
		edit  func(in *input)
		field string
		tag   string
	}{
		{"Should reject non alphanumeric code", func(in *input) { in.Code = "AB-12" }, "code", "alnumtext"},
		{"Should reject unknown enum value", func(in *input) { in.Color = "green" }, "color", "enum"},
		{"Should reject zero decimal with gt", func(in *input) { in.Price = decimal.Zero }, "price", "gt"},
		{"Should reject decimal above lte", func(in *input) { in.Ratio = decimal.NewFromInt(101) }, "ratio", "lte"},
		{"Should reject negative decimal with gte", func(in *input) { in.Ratio = decimal.NewFromInt(-1) }, "ratio", "gte"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.edit(&in)

			err := v.Validate(in)
			require.Error(t, err)
			assert.True(t, validator.IsValidationError(err))

			var fieldErrs govalidator.ValidationErrors
			require.ErrorAs(t, err, &fieldErrs)
			require.Len(t, fieldErrs, 1)
			assert.Equal(t, tt.field, fieldErrs[0].Field())
			assert.Equal(t, tt.tag, fieldErrs[0].Tag())
			assert.NotEmpty(t, validator.ValidationErrorMessage(fieldErrs[0]))
		})
	}
}

func TestIsAlnumText(t *testing.T) {
	assert.True(t, validator.IsAlnumText("AAA1"))
	assert.True(t, validator.IsAlnumText("Планер1"))
	assert.False(t, validator.IsAlnumText(""))
	assert.False(t, validator.IsAlnumText("A A"))
	assert.False(t, validator.IsAlnumText("A_1"))
}
