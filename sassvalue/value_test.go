package sassvalue

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmptyListEqualsEmptyMapCrossType(t *testing.T) {
	emptyList := NewList(nil, SeparatorComma, false)
	emptyMap := NewMap()

	assert.True(t, emptyList.Equal(emptyMap))
	assert.True(t, emptyMap.Equal(emptyList))
	assert.Equal(t, emptyList.Hash(), emptyMap.Hash())
}

func TestEmptyListIgnoresSeparatorAndBrackets(t *testing.T) {
	a := NewList(nil, SeparatorComma, true)
	b := NewList(nil, SeparatorSpace, false)
	assert.True(t, a.Equal(b))
	assert.Equal(t, a.Hash(), b.Hash())
}

func TestNonEmptyListRequiresSameShape(t *testing.T) {
	a := NewList([]Value{NewNumber(1)}, SeparatorComma, false)
	b := NewList([]Value{NewNumber(1)}, SeparatorSpace, false)
	assert.False(t, a.Equal(b))
}

func TestStringEqualityIgnoresQuoting(t *testing.T) {
	quoted := String{Text: "foo", Quoted: true}
	bare := String{Text: "foo", Quoted: false}
	assert.True(t, quoted.Equal(bare))
	assert.Equal(t, quoted.Hash(), bare.Hash())
}

func TestMapEqualityIsMultisetOfPairs(t *testing.T) {
	a := NewMap([2]Value{String{Text: "a"}, NewNumber(1)}, [2]Value{String{Text: "b"}, NewNumber(2)})
	b := NewMap([2]Value{String{Text: "b"}, NewNumber(2)}, [2]Value{String{Text: "a"}, NewNumber(1)})
	assert.True(t, a.Equal(b))
	assert.Equal(t, a.Hash(), b.Hash())
}

func TestTruthyRules(t *testing.T) {
	assert.False(t, NullValue.Truthy())
	assert.False(t, FalseValue.Truthy())
	assert.True(t, TrueValue.Truthy())
	assert.True(t, String{Text: ""}.Truthy())
	assert.True(t, NewList(nil, SeparatorUndecided, false).Truthy())
}

// equalImpliesHashEqual checks the hash/equal consistency invariant from
// across a representative sample of values.
func TestEqualImpliesHashEqual(t *testing.T) {
	samples := []Value{
		NullValue,
		TrueValue,
		FalseValue,
		String{Text: "x", Quoted: true},
		String{Text: "x", Quoted: false},
		NewNumber(3),
		NewList(nil, SeparatorComma, false),
		NewMap(),
		Mixin{ID: 7},
		CompilerFunction{ID: 9},
	}
	for i, a := range samples {
		for j, b := range samples {
			if a.Equal(b) {
				assert.Equalf(t, a.Hash(), b.Hash(), "samples[%d] == samples[%d] but hashes differ", i, j)
			}
		}
	}
}
