package amount

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToBaseUnits(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Amount
	}{
		{"whole", "1000", 1000_0000000},
		{"fraction", "12.5", 125000000},
		{"seven digits", "0.0000001", 1},
		{"truncates extra digits", "1.123456789", 11234567},
		{"surrounding spaces", " 3 ", 30000000},
		{"exponent", "1e2", 100_0000000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToBaseUnits(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToBaseUnitsRejects(t *testing.T) {
	for _, input := range []string{"", "abc", "0", "-1", "0.00000001", "1e20", "NaN"} {
		t.Run(input, func(t *testing.T) {
			_, err := ToBaseUnits(input)
			assert.ErrorIs(t, err, ErrInvalidAmount)
		})
	}
}

func TestToDecimal(t *testing.T) {
	assert.Equal(t, "1000.00", ToDecimal(1000_0000000))
	assert.Equal(t, "930.00", ToDecimal(930_0000000))
	assert.Equal(t, "0.00", ToDecimal(1))
	assert.Equal(t, "12.35", ToDecimal(123456789))
}

func TestDecimalKeepsFullPrecision(t *testing.T) {
	a := Amount(123456789)
	assert.Equal(t, "12.3456789", a.Decimal().String())
}

func TestParse(t *testing.T) {
	got, err := Parse("10000000000")
	require.NoError(t, err)
	assert.Equal(t, Amount(10000000000), got)

	_, err = Parse("1.5")
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = Parse("170141183460469231731687303715884105727")
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestAmountHelpers(t *testing.T) {
	a := NewAmount(50)
	assert.Equal(t, Amount(80), a.Add(30))
	assert.Equal(t, Amount(20), a.Sub(30))
	assert.True(t, a.IsPositive())
	assert.False(t, a.IsZero())
	assert.Equal(t, "50", a.String())
	assert.Equal(t, int64(50), a.Units())
}

func TestBaseUnitsRoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("Decimal then ToBaseUnits is the identity", prop.ForAll(
		func(units int64) bool {
			a := Amount(units)
			back, err := ToBaseUnits(a.Decimal().String())
			return err == nil && back == a
		},
		gen.Int64Range(1, 1<<53),
	))

	properties.Property("String then Parse is the identity", prop.ForAll(
		func(units int64) bool {
			back, err := Parse(Amount(units).String())
			return err == nil && back == Amount(units)
		},
		gen.Int64(),
	))

	properties.TestingRun(t)
}
