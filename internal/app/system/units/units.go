// Package units converts fixed-point token amounts to and from their
// decimal representations.
//
// On-chain amounts are integers scaled by 10^decimals (18 for ether and for
// the dashboard's token). FormatUnits is exact; ToFloat is what the
// dashboard displays and is lossy for very large or very precise values.
package units

import (
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

// DefaultDecimals is the decimal count of ether and of the governance token.
const DefaultDecimals = 18

// MaxDecimals bounds the configurable decimal count.
const MaxDecimals = 77

var (
	ErrEmptyAmount     = errors.New("amount is empty")
	ErrNegativeAmount  = errors.New("amount must not be negative")
	ErrInvalidAmount   = errors.New("amount is not a decimal number")
	ErrTooManyDecimals = errors.New("amount has more fractional digits than the token supports")
)

// FormatUnits renders v scaled down by 10^decimals as a decimal string.
// Trailing fractional zeros are trimmed but at least one fractional digit
// is kept, so 1000 * 10^18 formats as "1000.0".
func FormatUnits(v *big.Int, decimals int) string {
	if v == nil {
		return "0.0"
	}
	if decimals <= 0 {
		return v.String() + ".0"
	}

	neg := v.Sign() < 0
	abs := new(big.Int).Abs(v)

	digits := abs.String()
	if len(digits) <= decimals {
		digits = strings.Repeat("0", decimals-len(digits)+1) + digits
	}
	whole := digits[:len(digits)-decimals]
	frac := strings.TrimRight(digits[len(digits)-decimals:], "0")
	if frac == "" {
		frac = "0"
	}

	out := whole + "." + frac
	if neg {
		out = "-" + out
	}
	return out
}

// ToFloat returns FormatUnits(v, decimals) parsed as a float64.
func ToFloat(v *big.Int, decimals int) float64 {
	// The only possible error is a range error, where ParseFloat still
	// returns ±Inf.
	f, _ := strconv.ParseFloat(FormatUnits(v, decimals), 64)
	return f
}

// ParseUnits parses a human decimal amount ("5", "2.5") into its
// fixed-point integer form.
func ParseUnits(s string, decimals int) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, ErrEmptyAmount
	}
	if strings.HasPrefix(s, "-") {
		return nil, ErrNegativeAmount
	}
	s = strings.TrimPrefix(s, "+")

	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" && frac == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if !allDigits(whole) || !allDigits(frac) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}

	frac = strings.TrimRight(frac, "0")
	if len(frac) > decimals {
		return nil, ErrTooManyDecimals
	}
	frac += strings.Repeat("0", decimals-len(frac))

	joined := strings.TrimLeft(whole+frac, "0")
	if joined == "" {
		return new(big.Int), nil
	}
	v, ok := new(big.Int).SetString(joined, 10)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	return v, nil
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
