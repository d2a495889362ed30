package sassvalue

import "math"

// numericTolerance is the scale factor used by [SassEqual] and [NumberHash]:
// two floats are sass-equal iff they round to the same integer after being
// multiplied by this factor. This is the host's numeric-tolerance rule
// (distinct from, and looser than, bitwise float equality) and is kept
// consistent between equality and hashing by construction: both go through
// [sassRound].
const numericTolerance = 1e10

// sassRound implements "round half away from zero" (schoolbook rounding),
// which is what the host tolerance rule requires and differs from Go's
// math.Round only in documentation intent, not behavior.
func sassRound(x float64) float64 {
	return math.Round(x)
}

// SassEqual reports whether x and y are numerically equivalent under the
// host's rounding-based tolerance: round(x*1e10) == round(y*1e10).
//
// This is the numeric equivalence relation used throughout the value tree;
// it deliberately diverges from the Sass language's usual 1e-11 proximity
// test in favor of an exact relation that is trivially consistent with
// hashing.
func SassEqual(x, y float64) bool {
	return sassRound(x*numericTolerance) == sassRound(y*numericTolerance)
}

// SassLess reports whether x is strictly less than y: x < y and not
// SassEqual(x, y).
func SassLess(x, y float64) bool {
	return x < y && !SassEqual(x, y)
}

// NumberHash returns a hash of x consistent with [SassEqual]: two
// SassEqual floats always produce the same hash.
func NumberHash(x float64) int64 {
	return int64(sassRound(x * numericTolerance))
}

// ToInt reports whether x represents an integer under the tolerance rule,
// returning round(x) when it does. ±5e-11 of an integer converts to that
// integer, since that is exactly the boundary SassEqual(x, round(x)) allows.
func ToInt(x float64) (int64, bool) {
	r := sassRound(x)
	if !SassEqual(x, r) {
		return 0, false
	}
	return int64(r), true
}

// ClampClosed clamps x into the closed range [lo, hi]: values SassEqual to
// an endpoint clamp to that endpoint, values strictly inside pass through
// unchanged, and anything else fails.
func ClampClosed(x, lo, hi float64) (float64, bool) {
	switch {
	case SassEqual(x, lo):
		return lo, true
	case SassEqual(x, hi):
		return hi, true
	case x > lo && x < hi:
		return x, true
	default:
		return 0, false
	}
}

// ClampHalfOpen clamps x into the half-open range [lo, hi): a value
// SassEqual to hi fails (the upper bound is excluded even under tolerance),
// a value SassEqual to lo clamps to lo, and anything strictly between
// passes through unchanged.
func ClampHalfOpen(x, lo, hi float64) (float64, bool) {
	if SassEqual(x, hi) {
		return 0, false
	}
	if SassEqual(x, lo) {
		return lo, true
	}
	if x > lo && x < hi {
		return x, true
	}
	return 0, false
}

// Number is a Sass number: a 64-bit magnitude paired with a compound unit.
type Number struct {
	Magnitude float64
	Unit      CompoundUnit
}

// NewNumber constructs a unitless Number.
func NewNumber(magnitude float64) Number {
	return Number{Magnitude: magnitude}
}

// NewNumberWithUnit constructs a Number with the given numerator/denominator
// units, reporting an error if a dimension collides between them.
func NewNumberWithUnit(magnitude float64, numerator, denominator []string) (Number, error) {
	u, err := NewCompoundUnit(numerator, denominator)
	if err != nil {
		return Number{}, err
	}
	return Number{Magnitude: magnitude, Unit: u}, nil
}

func (Number) sassValue() {}

// Truthy implements [Value.Truthy]: every Number is truthy.
func (Number) Truthy() bool { return true }

// Equal implements [Value.Equal]. Unitful numbers are equal iff the other
// value is a Number convertible to the same units and, after conversion,
// SassEqual; unitless numbers never equal unitful ones.
func (n Number) Equal(other Value) bool {
	o, ok := other.(Number)
	if !ok {
		return false
	}
	if n.Unit.Unitless() != o.Unit.Unitless() {
		return false
	}
	if n.Unit.Unitless() {
		return SassEqual(n.Magnitude, o.Magnitude)
	}
	converted, ok := n.ConvertTo(o.Unit)
	if !ok {
		return false
	}
	return SassEqual(converted, o.Magnitude)
}

// Hash implements [Value.Hash], consistent with Equal: numbers are hashed
// by their magnitude converted to canonical units, so two numbers that
// would compare equal after conversion hash identically.
func (n Number) Hash() uint64 {
	canon := n.Magnitude
	for _, u := range n.Unit.Numerator {
		canon *= ratioToCanonical(u)
	}
	for _, u := range n.Unit.Denominator {
		canon /= ratioToCanonical(u)
	}
	h := fnvInit()
	h = fnvMixInt(h, int64(kindNumber))
	h = fnvMixInt(h, NumberHash(canon))
	return h
}

// ConvertTo converts the number's magnitude into target units, returning ok
// = false if no conversion exists (incompatible dimensions on either side).
func (n Number) ConvertTo(target CompoundUnit) (float64, bool) {
	ratio, ok := n.Unit.RatioTo(target)
	if !ok {
		return 0, false
	}
	return n.Magnitude * ratio, true
}

// Int reports whether the number (after any required unit handling is done
// by the caller) represents an integer, per [ToInt].
func (n Number) Int() (int64, bool) {
	return ToInt(n.Magnitude)
}
