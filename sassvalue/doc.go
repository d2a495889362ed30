// Package sassvalue implements the host-side Sass value tree: the
// language-neutral, immutable representation of values exchanged with an
// embedded Sass compiler, along with the equality, hashing, and numeric
// unit-conversion rules that host code relies on.
//
// Every [Value] is immutable after construction and safe to share across
// goroutines. The only value with an observable side effect is the
// keyword-read callback on [ArgumentList].
//
// # Equality and hashing
//
// [Value.Equal] and [Value.Hash] are defined so that equal values always
// hash equally, including the deliberately cross-type case where an empty
// [List] equals an empty [Map] (see [Value.Equal] for the full relation).
//
// # Numbers and units
//
// [Number] carries a magnitude and a compound unit (an ordered multiset of
// numerator units over an ordered multiset of denominator units). See
// [Number.ConvertTo] and the package-level unit tables for the conversion
// algebra, and [SassEqual] for the rounding-based numeric tolerance used
// throughout instead of bitwise float equality.
package sassvalue
