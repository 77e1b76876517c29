// Package money converts wire-level decimal quantities into the exact
// fixed-point minor-unit integers the matching core operates on (spec §9:
// "a faithful re-implementation should use fixed-point integers in minor
// units... at the boundary"). The core itself never sees a decimal.Decimal;
// conversion happens once, at the transport boundary.
package money

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Scale is a power-of-ten conversion factor between a decimal wire value
// and the integer minor units the engine stores. A Scale of 100 means two
// decimal places (cents); a Scale of 1e8 means eight (satoshis).
type Scale struct {
	factor decimal.Decimal
	places int32
}

// NewScale builds a Scale with the given number of decimal places.
func NewScale(places int32) Scale {
	return Scale{factor: decimal.New(1, places), places: places}
}

// ErrNotExact is returned when a decimal value carries more precision than
// the scale supports — the spec requires all boundary arithmetic to be
// exact, so such a value is rejected rather than silently rounded.
var ErrNotExact = errors.New("value is not exactly representable at this scale")

// ToMinorUnits converts a decimal wire value into the engine's integer
// representation, rejecting any value that would require rounding.
func (s Scale) ToMinorUnits(v decimal.Decimal) (int64, error) {
	shifted := v.Mul(s.factor)
	if !shifted.Equal(shifted.Truncate(0)) {
		return 0, fmt.Errorf("%w: %s at scale %d", ErrNotExact, v.String(), s.places)
	}
	if !shifted.IsInteger() {
		return 0, fmt.Errorf("%w: %s at scale %d", ErrNotExact, v.String(), s.places)
	}
	return shifted.IntPart(), nil
}

// FromMinorUnits converts the engine's integer representation back into a
// decimal for wire responses.
func (s Scale) FromMinorUnits(units int64) decimal.Decimal {
	return decimal.NewFromInt(units).Div(s.factor)
}

// ParseExact parses a decimal string and converts it to minor units in one
// step, the common case for decoding an incoming order's price/quantity.
func (s Scale) ParseExact(raw string) (int64, error) {
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid decimal %q: %w", raw, err)
	}
	if v.IsNegative() {
		return 0, fmt.Errorf("value %q must not be negative", raw)
	}
	return s.ToMinorUnits(v)
}
