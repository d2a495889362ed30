package sassvalue

// ColorSpace enumerates the color spaces the wire protocol knows about.
type ColorSpace string

// Color spaces.
const (
	SpaceRGB          ColorSpace = "rgb"
	SpaceHSL          ColorSpace = "hsl"
	SpaceHWB          ColorSpace = "hwb"
	SpaceSRGB         ColorSpace = "srgb"
	SpaceSRGBLinear   ColorSpace = "srgb-linear"
	SpaceDisplayP3    ColorSpace = "display-p3"
	SpaceA98RGB       ColorSpace = "a98-rgb"
	SpaceProphotoRGB  ColorSpace = "prophoto-rgb"
	SpaceRec2020      ColorSpace = "rec2020"
	SpaceXYZD65       ColorSpace = "xyz-d65"
	SpaceXYZD50       ColorSpace = "xyz-d50"
	SpaceLab          ColorSpace = "lab"
	SpaceLCH          ColorSpace = "lch"
	SpaceOklab        ColorSpace = "oklab"
	SpaceOklch        ColorSpace = "oklch"
)

// IsLegacy reports whether the space is one of the three "legacy" color
// spaces (rgb, hsl, hwb). The wire encoding does not depend on it: every
// space is encoded with the same channel fields and missing-channel mask.
func (s ColorSpace) IsLegacy() bool {
	switch s {
	case SpaceRGB, SpaceHSL, SpaceHWB:
		return true
	default:
		return false
	}
}

// Color is a Sass color: a space tag and three channel values, each of
// which may be individually "missing" (represented by a nil pointer), plus
// an alpha channel that may also be missing.
//
// Open question resolution: this package does NOT perform
// automatic cross-space conversion for Equal — two Colors are equal only
// when they share the same Space and every channel (including missing-ness)
// matches. The sources mark automatic legacy-space equality conversion as
// unresolved ("XXX"); the driver picks the strict, unambiguous behavior.
type Color struct {
	Space              ColorSpace
	Channel1, Channel2, Channel3 *float64
	Alpha                        *float64
}

func (Color) sassValue() {}

// Truthy implements [Value.Truthy]: every color is truthy.
func (Color) Truthy() bool { return true }

func channelEqual(a, b *float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return SassEqual(*a, *b)
}

func channelHash(h uint64, c *float64) uint64 {
	if c == nil {
		return fnvMixInt(h, 1<<62) // distinguishable "missing" marker
	}
	return fnvMixInt(h, NumberHash(*c))
}

// Equal implements [Value.Equal]. See the strict-space note on [Color].
func (c Color) Equal(o Value) bool {
	oc, ok := o.(Color)
	if !ok || c.Space != oc.Space {
		return false
	}
	return channelEqual(c.Channel1, oc.Channel1) &&
		channelEqual(c.Channel2, oc.Channel2) &&
		channelEqual(c.Channel3, oc.Channel3) &&
		channelEqual(c.Alpha, oc.Alpha)
}

func (c Color) Hash() uint64 {
	h := fnvMixStr(fnvMixInt(fnvInit(), int64(kindColor)), string(c.Space))
	h = channelHash(h, c.Channel1)
	h = channelHash(h, c.Channel2)
	h = channelHash(h, c.Channel3)
	h = channelHash(h, c.Alpha)
	return h
}

// Ch returns a non-missing channel pointer for v, for building Colors
// without repeating `&v` at every call site.
func Ch(v float64) *float64 { return &v }
