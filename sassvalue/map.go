package sassvalue

// Map is an immutable Sass map. Key equality uses the value tree's Equal
// relation (not Go's built-in ==), so keys are stored in hash buckets and
// looked up by a combination of Hash() and Equal() — never as native Go map
// keys, since most Value implementations are not comparable in Go's sense.
type Map struct {
	buckets map[uint64][]mapEntry
	count   int
}

type mapEntry struct {
	key, value Value
}

// NewMap builds a Map from an ordered slice of entries. Construction does
// not itself reject duplicate keys; inserting a duplicate key overwrites
// the earlier value, consistent with normal map-literal semantics.
func NewMap(entries ...[2]Value) Map {
	m := Map{buckets: make(map[uint64][]mapEntry, len(entries))}
	for _, e := range entries {
		m = m.Set(e[0], e[1])
	}
	return m
}

func (Map) sassValue() {}

// Truthy implements [Value.Truthy]: every map is truthy, including the
// empty map.
func (Map) Truthy() bool { return true }

// Len returns the number of key/value pairs.
func (m Map) Len() int { return m.count }

// Get looks up key using the value tree's equality relation.
func (m Map) Get(key Value) (Value, bool) {
	for _, e := range m.buckets[key.Hash()] {
		if e.key.Equal(key) {
			return e.value, true
		}
	}
	return nil, false
}

// Set returns a new Map with key bound to value, replacing any prior
// binding for an equal key. The receiver is left unmodified.
func (m Map) Set(key, value Value) Map {
	out := Map{buckets: make(map[uint64][]mapEntry, len(m.buckets)+1), count: m.count}
	for h, bucket := range m.buckets {
		out.buckets[h] = append([]mapEntry(nil), bucket...)
	}
	h := key.Hash()
	bucket := out.buckets[h]
	for i, e := range bucket {
		if e.key.Equal(key) {
			bucket[i].value = value
			out.buckets[h] = bucket
			return out
		}
	}
	out.buckets[h] = append(bucket, mapEntry{key, value})
	out.count++
	return out
}

// Entries returns all key/value pairs. Iteration order is unspecified.
func (m Map) Entries() []([2]Value) {
	out := make([][2]Value, 0, m.count)
	for _, bucket := range m.buckets {
		for _, e := range bucket {
			out = append(out, [2]Value{e.key, e.value})
		}
	}
	return out
}

// Equal implements [Value.Equal]. Two empty collections are always equal
// (including list/map cross-type equality). Otherwise, two maps are equal
// iff their key/value pairs are equal as multisets.
func (m Map) Equal(o Value) bool {
	if isEmptyCollection(m) && isEmptyCollection(o) {
		return true
	}
	om, ok := o.(Map)
	if !ok || m.count != om.count {
		return false
	}
	for _, pair := range m.Entries() {
		v, ok := om.Get(pair[0])
		if !ok || !v.Equal(pair[1]) {
			return false
		}
	}
	return true
}

func (m Map) Hash() uint64 {
	if m.count == 0 {
		return emptyCollectionHash()
	}
	hashes := make([]uint64, 0, m.count)
	for _, pair := range m.Entries() {
		// Fold key and value together per-entry so the multiset mixer
		// downstream sees one hash per pair, not two independent ones.
		hashes = append(hashes, fnvMixInt(pair[0].Hash(), int64(pair[1].Hash())))
	}
	return fnvMixUnordered(fnvMixInt(fnvInit(), int64(kindMap)), hashes)
}
