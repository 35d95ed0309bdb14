package api

import (
	"errors"
	"fmt"
	"strings"

	"github.com/holiman/uint256"
)

// Fixed is an unsigned fixed-point number with 18 decimal places, stored
// in 128 bits. It mirrors the arithmetic the settlement layer uses for
// resource weights: checked construction, saturating multiplication and
// upward-only rounding.
type Fixed struct {
	v uint256.Int // value * 10^18, invariant: fits in 128 bits
}

var ErrFixedPointOverflow = errors.New("value not representable as a 128-bit fixed-point number")

// fixedScale is 10^18.
var fixedScale = uint256.NewInt(1_000_000_000_000_000_000)

// maxFixedInner is 2^128 - 1, the largest representable inner value.
var maxFixedInner = func() *uint256.Int {
	max := new(uint256.Int).Lsh(uint256.NewInt(1), 128)
	return max.SubUint64(max, 1)
}()

// FixedFromInteger converts an integer number of units into a Fixed,
// failing if the scaled value does not fit in 128 bits.
func FixedFromInteger(n *uint256.Int) (Fixed, error) {
	var scaled uint256.Int
	if _, overflow := scaled.MulOverflow(n, fixedScale); overflow || scaled.Gt(maxFixedInner) {
		return Fixed{}, ErrFixedPointOverflow
	}
	return Fixed{v: scaled}, nil
}

// FixedFromUint64 is a convenience wrapper around FixedFromInteger.
func FixedFromUint64(n uint64) (Fixed, error) {
	return FixedFromInteger(uint256.NewInt(n))
}

// ParseFixed parses a non-negative decimal string such as "0.02" or "25".
// At most 18 fractional digits are accepted.
func ParseFixed(s string) (Fixed, error) {
	intPart, fracPart, _ := strings.Cut(s, ".")
	if intPart == "" {
		intPart = "0"
	}
	if len(fracPart) > 18 {
		return Fixed{}, fmt.Errorf("more than 18 fractional digits in %q", s)
	}

	integer, err := uint256.FromDecimal(intPart)
	if err != nil {
		return Fixed{}, fmt.Errorf("invalid fixed-point literal %q: %w", s, err)
	}

	fixed, err := FixedFromInteger(integer)
	if err != nil {
		return Fixed{}, err
	}

	if fracPart != "" {
		frac, err := uint256.FromDecimal(fracPart + strings.Repeat("0", 18-len(fracPart)))
		if err != nil {
			return Fixed{}, fmt.Errorf("invalid fixed-point literal %q: %w", s, err)
		}
		if _, overflow := fixed.v.AddOverflow(&fixed.v, frac); overflow || fixed.v.Gt(maxFixedInner) {
			return Fixed{}, ErrFixedPointOverflow
		}
	}
	return fixed, nil
}

// Mul returns z * other, saturating at the maximum representable value.
func (z Fixed) Mul(other Fixed) Fixed {
	var product uint256.Int
	if _, overflow := product.MulOverflow(&z.v, &other.v); overflow {
		return Fixed{v: *maxFixedInner}
	}
	product.Div(&product, fixedScale)
	if product.Gt(maxFixedInner) {
		return Fixed{v: *maxFixedInner}
	}
	return Fixed{v: product}
}

// Add returns z + other, saturating at the maximum representable value.
func (z Fixed) Add(other Fixed) Fixed {
	var sum uint256.Int
	if _, overflow := sum.AddOverflow(&z.v, &other.v); overflow || sum.Gt(maxFixedInner) {
		return Fixed{v: *maxFixedInner}
	}
	return Fixed{v: sum}
}

// Max returns the greater of z and other.
func (z Fixed) Max(other Fixed) Fixed {
	if z.v.Lt(&other.v) {
		return other
	}
	return z
}

// Ceil rounds z up to the nearest integer number of units. Undercharging
// is the unsafe direction, so fee totals are never rounded down.
func (z Fixed) Ceil() Fixed {
	var rem uint256.Int
	rem.Mod(&z.v, fixedScale)
	if rem.IsZero() {
		return z
	}
	var up uint256.Int
	up.Sub(&z.v, &rem)
	if _, overflow := up.AddOverflow(&up, fixedScale); overflow || up.Gt(maxFixedInner) {
		return Fixed{v: *maxFixedInner}
	}
	return Fixed{v: up}
}

// SaturatingMulInt multiplies z by an integer and truncates the result to
// an integer, saturating at 2^128 - 1.
func (z Fixed) SaturatingMulInt(n *uint256.Int) *uint256.Int {
	product := new(uint256.Int)
	if _, overflow := product.MulOverflow(&z.v, n); overflow {
		return new(uint256.Int).Set(maxFixedInner)
	}
	product.Div(product, fixedScale)
	if product.Gt(maxFixedInner) {
		return new(uint256.Int).Set(maxFixedInner)
	}
	return product
}

// TruncInteger returns the integer part of z.
func (z Fixed) TruncInteger() *uint256.Int {
	return new(uint256.Int).Div(&z.v, fixedScale)
}

func (z Fixed) IsZero() bool {
	return z.v.IsZero()
}

func (z Fixed) Cmp(other Fixed) int {
	return z.v.Cmp(&other.v)
}

func (z Fixed) String() string {
	var integer, rem uint256.Int
	integer.DivMod(&z.v, fixedScale, &rem)
	if rem.IsZero() {
		return integer.Dec()
	}
	frac := fmt.Sprintf("%018s", rem.Dec())
	return integer.Dec() + "." + strings.TrimRight(frac, "0")
}
