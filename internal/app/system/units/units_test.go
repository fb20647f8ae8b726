package units_test

import (
	"math/big"
	"testing"

	"github.com/dalemusser/tokenvote/internal/app/system/units"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ether(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))
}

func TestFormatUnits(t *testing.T) {
	tests := []struct {
		name     string
		value    *big.Int
		decimals int
		want     string
	}{
		{"whole tokens", ether(1000), 18, "1000.0"},
		{"zero", big.NewInt(0), 18, "0.0"},
		{"nil", nil, 18, "0.0"},
		{"one wei", big.NewInt(1), 18, "0.000000000000000001"},
		{"two and a half", new(big.Int).Div(ether(5), big.NewInt(2)), 18, "2.5"},
		{"negative", new(big.Int).Neg(ether(3)), 18, "-3.0"},
		{"six decimals", big.NewInt(1_234_500), 6, "1.2345"},
		{"no decimals", big.NewInt(42), 0, "42.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, units.FormatUnits(tt.value, tt.decimals))
		})
	}
}

func TestToFloat(t *testing.T) {
	assert.Equal(t, 1000.0, units.ToFloat(ether(1000), units.DefaultDecimals))
	assert.Equal(t, 2.5, units.ToFloat(new(big.Int).Div(ether(5), big.NewInt(2)), units.DefaultDecimals))
	assert.Equal(t, 0.0, units.ToFloat(nil, units.DefaultDecimals))
}

func TestParseUnits(t *testing.T) {
	v, err := units.ParseUnits("5", 18)
	require.NoError(t, err)
	assert.Equal(t, 0, v.Cmp(ether(5)))

	v, err = units.ParseUnits(" 2.50 ", 18)
	require.NoError(t, err)
	assert.Equal(t, "2.5", units.FormatUnits(v, 18))

	v, err = units.ParseUnits(".5", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(5), v.Int64())

	v, err = units.ParseUnits("0", 18)
	require.NoError(t, err)
	assert.Equal(t, 0, v.Sign())
}

func TestParseUnits_Rejects(t *testing.T) {
	_, err := units.ParseUnits("", 18)
	assert.ErrorIs(t, err, units.ErrEmptyAmount)

	_, err = units.ParseUnits("-1", 18)
	assert.ErrorIs(t, err, units.ErrNegativeAmount)

	_, err = units.ParseUnits("1e18", 18)
	assert.ErrorIs(t, err, units.ErrInvalidAmount)

	_, err = units.ParseUnits(".", 18)
	assert.ErrorIs(t, err, units.ErrInvalidAmount)

	_, err = units.ParseUnits("1.2.3", 18)
	assert.ErrorIs(t, err, units.ErrInvalidAmount)

	_, err = units.ParseUnits("0.1234567", 6)
	assert.ErrorIs(t, err, units.ErrTooManyDecimals)
}

func TestParseFormatRoundTrip(t *testing.T) {
	for _, s := range []string{"1.0", "0.000000000000000001", "123456789.987654321"} {
		v, err := units.ParseUnits(s, 18)
		require.NoError(t, err)
		assert.Equal(t, s, units.FormatUnits(v, 18))
	}
}
