package sassvalue

// ArgumentList is a List specialization carrying keyword (named) arguments
// alongside its positional elements, plus an observer invoked whenever the
// keyword map is read.
//
// The observer is not a convenience: the child compiler needs to know
// whether a Sass function actually inspected its keyword arguments, in
// order to decide whether to raise an "unknown keyword argument" error.
// Preserve it as a thin callback rather than, say, a dirty-read counter.
type ArgumentList struct {
	Elements  []Value
	Separator Separator
	Brackets  bool

	keywords     map[string]Value
	keywordOrder []string
	onKeywordsRead func()
}

// NewArgumentList builds an ArgumentList. onKeywordsRead, if non-nil, is
// invoked (synchronously, on the calling goroutine) every time Keywords or
// Keyword is called.
func NewArgumentList(positional []Value, sep Separator, keywords map[string]Value, keywordOrder []string, onKeywordsRead func()) *ArgumentList {
	kw := make(map[string]Value, len(keywords))
	for k, v := range keywords {
		kw[k] = v
	}
	return &ArgumentList{
		Elements:       append([]Value(nil), positional...),
		Separator:      sep,
		keywords:       kw,
		keywordOrder:   append([]string(nil), keywordOrder...),
		onKeywordsRead: onKeywordsRead,
	}
}

func (*ArgumentList) sassValue() {}

// Truthy implements [Value.Truthy]: every argument list is truthy.
func (*ArgumentList) Truthy() bool { return true }

// Keywords returns a copy of the keyword argument map, firing the read
// observer first.
func (a *ArgumentList) Keywords() map[string]Value {
	if a.onKeywordsRead != nil {
		a.onKeywordsRead()
	}
	out := make(map[string]Value, len(a.keywords))
	for k, v := range a.keywords {
		out[k] = v
	}
	return out
}

// Keyword looks up a single keyword argument, also firing the read
// observer (a targeted lookup is still a read of "the keywords").
func (a *ArgumentList) Keyword(name string) (Value, bool) {
	if a.onKeywordsRead != nil {
		a.onKeywordsRead()
	}
	v, ok := a.keywords[name]
	return v, ok
}

// KeywordOrder returns the declaration order of keyword names, without
// triggering the read observer (it reveals only structure, not values).
func (a *ArgumentList) KeywordOrder() []string {
	return append([]string(nil), a.keywordOrder...)
}

// Equal implements [Value.Equal] in terms of the list view: keyword
// arguments do not participate in equality, matching how Sass treats
// argument lists as lists first.
func (a *ArgumentList) Equal(o Value) bool {
	self, _ := asList(a)
	return self.Equal(o)
}

func (a *ArgumentList) Hash() uint64 {
	self, _ := asList(a)
	return self.Hash()
}
