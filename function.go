package embeddedsass

import "github.com/joeycumines/go-embeddedsass/sassvalue"

// HostFunction pairs a Sass-grammar signature (e.g. `mix($a, $b, $w:
// 50%)`) with the Go callable implementing it.
type HostFunction struct {
	Signature string
	Call      sassvalue.HostFunctionCallable
}

// functionMap is the per-compilation merged view of global and
// compilation-scoped host functions, keyed by name for the
// "string name -> compilation's merged name map" dispatch path. This is
// distinct from the process-wide registry in registry.go,
// which serves the other dispatch path: a numeric id referencing a
// HostFunction value that was itself serialized onto the wire (e.g.
// returned from a prior call). A function declared only via
// CompileOptions never needs a registry id unless it is also handed
// around as a first-class value.
//
// A per-compilation function with the same name as a global one wins:
// the merge rule is "most specific scope shadows broader scope", mirroring
// ordinary lexical shadowing.
type functionMap struct {
	byName map[string]HostFunction
}

func newFunctionMap() *functionMap {
	return &functionMap{byName: make(map[string]HostFunction)}
}

func (m *functionMap) lookup(name string) (HostFunction, bool) {
	fn, ok := m.byName[name]
	return fn, ok
}

// mergeFunctions builds the effective per-compilation function map: every
// global function first, then every compilation-scoped function, so a
// name collision resolves in favor of the compilation scope.
func mergeFunctions(global, perCompilation []HostFunction) *functionMap {
	m := newFunctionMap()
	for _, fn := range global {
		m.byName[sassvalue.SignatureName(fn.Signature)] = fn
	}
	for _, fn := range perCompilation {
		m.byName[sassvalue.SignatureName(fn.Signature)] = fn
	}
	return m
}

// globalFunctionSignatures returns the signature strings a CompileRequest
// should declare, for the merged map's entries (declaration order is not
// significant here: the wire field is a flat set of signatures the child
// parses independently).
func globalFunctionSignatures(m *functionMap) []string {
	out := make([]string, 0, len(m.byName))
	for _, fn := range m.byName {
		out = append(out, fn.Signature)
	}
	return out
}
