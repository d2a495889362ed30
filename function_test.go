package embeddedsass

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joeycumines/go-embeddedsass/sassvalue"
)

func constFunction(v sassvalue.Value) HostFunction {
	return HostFunction{Call: func([]sassvalue.Value) (sassvalue.Value, error) { return v, nil }}
}

func TestMergeFunctionsGlobalOnly(t *testing.T) {
	global := []HostFunction{
		{Signature: "bucket($p)", Call: constFunction(sassvalue.String{Text: "bucket"}).Call},
	}
	m := mergeFunctions(global, nil)

	fn, ok := m.lookup("bucket")
	require.True(t, ok)
	v, err := fn.Call(nil)
	require.NoError(t, err)
	assert.Equal(t, sassvalue.String{Text: "bucket"}, v)
}

func TestMergeFunctionsPerCompilationShadowsGlobal(t *testing.T) {
	global := []HostFunction{
		{Signature: "ofunc($p)", Call: constFunction(sassvalue.String{Text: "bucket"}).Call},
	}
	perCall := []HostFunction{
		{Signature: "ofunc()", Call: constFunction(sassvalue.String{Text: "goat"}).Call},
	}
	m := mergeFunctions(global, perCall)

	fn, ok := m.lookup("ofunc")
	require.True(t, ok)
	v, err := fn.Call(nil)
	require.NoError(t, err)
	assert.Equal(t, sassvalue.String{Text: "goat"}, v, "per-compilation scope must shadow the global one")
}

func TestFunctionMapLookupMiss(t *testing.T) {
	m := newFunctionMap()
	_, ok := m.lookup("nonexistent")
	assert.False(t, ok)
}

func TestGlobalFunctionSignatures(t *testing.T) {
	m := mergeFunctions([]HostFunction{
		{Signature: "a($x)"},
		{Signature: "b($y: 1)"},
	}, nil)

	sigs := globalFunctionSignatures(m)
	assert.ElementsMatch(t, []string{"a($x)", "b($y: 1)"}, sigs)
}
