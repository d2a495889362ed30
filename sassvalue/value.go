package sassvalue

// Value is the sum type of every Sass value the host may exchange with the
// compiler: null ([NullValue]), [Bool], [String], [Number], [Color], [List], [Map],
// [ArgumentList], [CompilerFunction], [HostFunction], [Mixin], and
// [Calculation]. Concrete implementations collapse a would-be visitor
// hierarchy into a plain Go type switch.
//
// All Value implementations are immutable after construction and safe for
// concurrent reads.
type Value interface {
	sassValue()

	// Truthy reports whether the value is truthy in Sass's boolean sense:
	// only false and null are not truthy.
	Truthy() bool

	// Equal reports whether this value equals other under the value tree's
	// equality relation (see package doc for the cross-type list/map case).
	Equal(other Value) bool

	// Hash returns a hash consistent with Equal.
	Hash() uint64
}

// kind discriminates Value implementations for hashing, so that values of
// different Go types never accidentally collide (aside from the
// deliberate empty-list/empty-map exception, handled explicitly).
type kind int

const (
	kindNull kind = iota
	kindBool
	kindString
	kindNumber
	kindColor
	kindList
	kindMap
	kindArgumentList
	kindCompilerFunction
	kindHostFunction
	kindMixin
	kindCalculation
)

// nullValue is the type of the Sass singleton null value. Use the
// package-level [NullValue].
type nullValue struct{}

func (nullValue) sassValue()         {}
func (nullValue) Truthy() bool       { return false }
func (nullValue) Equal(o Value) bool { _, ok := o.(nullValue); return ok }
func (nullValue) Hash() uint64       { return fnvMixInt(fnvInit(), int64(kindNull)) }

// NullValue is the single instance of Sass null.
var NullValue Value = nullValue{}

// Bool is a Sass boolean. Use [TrueValue] / [FalseValue] rather than
// constructing Bool directly, so that every boolean is one of exactly two
// singletons.
type Bool bool

func (Bool) sassValue() {}

// Truthy implements [Value.Truthy]: only false is not truthy among bools.
func (b Bool) Truthy() bool { return bool(b) }

func (b Bool) Equal(o Value) bool {
	ob, ok := o.(Bool)
	return ok && b == ob
}

func (b Bool) Hash() uint64 {
	v := int64(0)
	if b {
		v = 1
	}
	return fnvMixInt(fnvMixInt(fnvInit(), int64(kindBool)), v)
}

// TrueValue and FalseValue are the two Bool singletons.
var (
	TrueValue  Value = Bool(true)
	FalseValue Value = Bool(false)
)

// BoolOf returns TrueValue or FalseValue for b.
func BoolOf(b bool) Value {
	if b {
		return TrueValue
	}
	return FalseValue
}

// String is a Sass string: text plus a "was this written with quotes" flag.
// Length and indexing operations over a String are defined in terms of
// Unicode scalar values (runes), never grapheme clusters.
type String struct {
	Text   string
	Quoted bool
}

func (String) sassValue() {}

// Truthy implements [Value.Truthy]: every string is truthy, including "".
func (String) Truthy() bool { return true }

// Equal implements [Value.Equal]: strings compare equal iff their text is
// equal, regardless of quotedness.
func (s String) Equal(o Value) bool {
	os, ok := o.(String)
	return ok && s.Text == os.Text
}

func (s String) Hash() uint64 {
	return fnvMixStr(fnvMixInt(fnvInit(), int64(kindString)), s.Text)
}

// RuneLen returns the length of the string's text in Unicode scalar values.
func (s String) RuneLen() int {
	return len([]rune(s.Text))
}

// --- hashing helpers -------------------------------------------------

// fnvInit/fnvMix* implement a simple order-sensitive FNV-1a style mixer,
// used uniformly across every Value.Hash implementation so that composite
// values (lists, maps) can fold their elements' hashes together
// deterministically.
const (
	fnvOffset64 = 14695981039346656037
	fnvPrime64  = 1099511628211
)

func fnvInit() uint64 { return fnvOffset64 }

func fnvMixByte(h uint64, b byte) uint64 {
	h ^= uint64(b)
	h *= fnvPrime64
	return h
}

func fnvMixInt(h uint64, v int64) uint64 {
	u := uint64(v)
	for i := 0; i < 8; i++ {
		h = fnvMixByte(h, byte(u))
		u >>= 8
	}
	return h
}

func fnvMixStr(h uint64, s string) uint64 {
	for i := 0; i < len(s); i++ {
		h = fnvMixByte(h, s[i])
	}
	return h
}

// fnvMixUnordered combines a set of hashes order-independently (by simple
// sum), used for Map equality where key/value pairs must hash consistently
// regardless of iteration order.
func fnvMixUnordered(h uint64, hashes []uint64) uint64 {
	var sum uint64
	for _, x := range hashes {
		sum += x
	}
	return fnvMixInt(h, int64(sum))
}
