package sassvalue

// CompilerFunction is an opaque handle to a function defined inside the
// child compiler, identified by the numeric id the child assigned it. The
// host cannot call it directly; it is only ever passed back to the child.
type CompilerFunction struct {
	ID uint64
}

func (CompilerFunction) sassValue()   {}
func (CompilerFunction) Truthy() bool { return true }

func (f CompilerFunction) Equal(o Value) bool {
	of, ok := o.(CompilerFunction)
	return ok && f.ID == of.ID
}

func (f CompilerFunction) Hash() uint64 {
	return fnvMixInt(fnvMixInt(fnvInit(), int64(kindCompilerFunction)), int64(f.ID))
}

// HostFunctionCallable is the signature every host-defined Sass function
// implements: given already-defaults-applied arguments, produce a result
// value or an error describing why the call failed.
type HostFunctionCallable func(args []Value) (Value, error)

// HostFunction is a host-defined dynamic function, addressable by the
// opaque id the host-function registry assigned it, together with its Sass
// signature string (e.g. "mix($a, $b, $w: 50%)") and the callable itself.
type HostFunction struct {
	ID        uint64
	Signature string
	Call      HostFunctionCallable
}

func (HostFunction) sassValue()   {}
func (HostFunction) Truthy() bool { return true }

func (f HostFunction) Equal(o Value) bool {
	of, ok := o.(HostFunction)
	return ok && f.ID == of.ID
}

func (f HostFunction) Hash() uint64 {
	return fnvMixInt(fnvMixInt(fnvInit(), int64(kindHostFunction)), int64(f.ID))
}

// Name returns the prefix of Signature before its first '(', the Sass
// function name used for by-name dispatch.
func (f HostFunction) Name() string {
	return SignatureName(f.Signature)
}

// SignatureName extracts the function name (the prefix before the first
// '(') from a Sass-grammar signature string such as "mix($a, $b, $w: 50%)".
func SignatureName(signature string) string {
	for i := 0; i < len(signature); i++ {
		if signature[i] == '(' {
			return signature[:i]
		}
	}
	return signature
}

// Mixin is an opaque handle to a mixin defined inside the child compiler.
type Mixin struct {
	ID uint64
}

func (Mixin) sassValue()   {}
func (Mixin) Truthy() bool { return true }

func (m Mixin) Equal(o Value) bool {
	om, ok := o.(Mixin)
	return ok && m.ID == om.ID
}

func (m Mixin) Hash() uint64 {
	return fnvMixInt(fnvMixInt(fnvInit(), int64(kindMixin)), int64(m.ID))
}
