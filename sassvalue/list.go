package sassvalue

// Separator is a Sass list separator.
type Separator int

const (
	// SeparatorUndecided marks a list whose separator hasn't been fixed yet
	// (e.g. a list with 0 or 1 elements).
	SeparatorUndecided Separator = iota
	SeparatorComma
	SeparatorSpace
	SeparatorSlash
)

func (s Separator) String() string {
	switch s {
	case SeparatorComma:
		return "comma"
	case SeparatorSpace:
		return "space"
	case SeparatorSlash:
		return "slash"
	default:
		return "undecided"
	}
}

// List is an ordered Sass list.
type List struct {
	Elements  []Value
	Separator Separator
	Brackets  bool
}

// NewList constructs a List, defensively copying elements.
func NewList(elements []Value, sep Separator, brackets bool) List {
	return List{Elements: append([]Value(nil), elements...), Separator: sep, Brackets: brackets}
}

func (List) sassValue() {}

// Truthy implements [Value.Truthy]: every list is truthy, including the
// empty list.
func (List) Truthy() bool { return true }

// isEmptyCollection reports whether v is an empty List or an empty Map: the
// value tree treats these as mutually equal regardless of separator or
// bracket flags.
func isEmptyCollection(v Value) bool {
	switch t := v.(type) {
	case List:
		return len(t.Elements) == 0
	case *ArgumentList:
		return len(t.Elements) == 0
	case Map:
		return t.Len() == 0
	default:
		return false
	}
}

// Equal implements [Value.Equal]. Two empty collections (list or map,
// regardless of separator/brackets) are always equal. Otherwise two lists
// are equal iff they share a separator, bracket flag, and pairwise-equal
// elements.
func (l List) Equal(o Value) bool {
	if isEmptyCollection(l) && isEmptyCollection(o) {
		return true
	}
	ol, ok := asList(o)
	if !ok {
		return false
	}
	if l.Separator != ol.Separator || l.Brackets != ol.Brackets {
		return false
	}
	if len(l.Elements) != len(ol.Elements) {
		return false
	}
	for i := range l.Elements {
		if !l.Elements[i].Equal(ol.Elements[i]) {
			return false
		}
	}
	return true
}

// asList adapts List and *ArgumentList (which embeds list semantics) to a
// common shape for comparison/hashing.
func asList(v Value) (List, bool) {
	switch t := v.(type) {
	case List:
		return t, true
	case *ArgumentList:
		return List{Elements: t.Elements, Separator: t.Separator, Brackets: t.Brackets}, true
	default:
		return List{}, false
	}
}

func (l List) Hash() uint64 {
	if len(l.Elements) == 0 {
		// Consistent with the empty-list/empty-map equality exception:
		// every empty collection must hash the same.
		return emptyCollectionHash()
	}
	h := fnvMixInt(fnvMixInt(fnvInit(), int64(kindList)), int64(l.Separator))
	if l.Brackets {
		h = fnvMixInt(h, 1)
	}
	for _, e := range l.Elements {
		h = fnvMixInt(h, int64(e.Hash()))
	}
	return h
}

func emptyCollectionHash() uint64 {
	return fnvMixInt(fnvInit(), 0x656d707479) // "empty" marker, shared by List/Map
}
