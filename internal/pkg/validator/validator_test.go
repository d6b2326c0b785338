package validator

import (
	"errors"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pesokrava/products-ms/internal/domain"
)

type priced struct {
	Name  string           `json:"name" validate:"required"`
	Price *decimal.Decimal `json:"price" validate:"required,gte=0,lte=9999999999.9999,decimals=4"`
}

func dec(t *testing.T, s string) *decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return &d
}

func TestStruct_Valid(t *testing.T) {
	for _, price := range []string{"0", "9.99", "1.2345", "1.50000", "1000", "9999999999.9999"} {
		err := Struct(priced{Name: "Widget", Price: dec(t, price)})
		assert.NoError(t, err, "price %s", price)
	}
}

func TestStruct_Violations(t *testing.T) {
	tests := []struct {
		name      string
		input     priced
		wantField string
		wantRule  string
	}{
		{"empty name", priced{Name: "", Price: dec(t, "1")}, "name", "required"},
		{"missing price", priced{Name: "Widget"}, "price", "required"},
		{"negative price", priced{Name: "Widget", Price: dec(t, "-0.01")}, "price", "gte"},
		{"too precise", priced{Name: "Widget", Price: dec(t, "1.23456")}, "price", "decimals"},
		{"precision lost as float", priced{Name: "Widget", Price: dec(t, "1.00000000000000000001")}, "price", "decimals"},
		{"tiny fraction", priced{Name: "Widget", Price: dec(t, "1e-400")}, "price", "decimals"},
		{"above column range", priced{Name: "Widget", Price: dec(t, "12345678901.2345")}, "price", "lte"},
		{"infinite as float", priced{Name: "Widget", Price: dec(t, "1e400")}, "price", "lte"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(tt.input)
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrInvalidInput))

			var derr *domain.Error
			require.True(t, errors.As(err, &derr))
			assert.Equal(t, tt.wantField, derr.Field)
			assert.Equal(t, tt.wantRule, derr.Rule)
			assert.NotEmpty(t, derr.Message)
		})
	}
}

func TestDecimalPlaces(t *testing.T) {
	assert.Equal(t, 0, DecimalPlaces(decimal.RequireFromString("12")))
	assert.Equal(t, 2, DecimalPlaces(decimal.RequireFromString("9.99")))
	assert.Equal(t, 1, DecimalPlaces(decimal.RequireFromString("1.50")))
	assert.Equal(t, 5, DecimalPlaces(decimal.RequireFromString("0.00001")))
}

func TestMaxDecimals_NonFiniteFloat(t *testing.T) {
	type ratio struct {
		Value float64 `json:"value" validate:"decimals=4"`
	}

	assert.NoError(t, Struct(ratio{Value: 0.25}))

	for _, v := range []float64{math.Inf(1), math.Inf(-1), math.NaN()} {
		var derr *domain.Error
		require.True(t, errors.As(Struct(ratio{Value: v}), &derr), "value %v", v)
		assert.Equal(t, "decimals", derr.Rule)
	}
}
