package protocol

import (
	"fmt"

	"github.com/joeycumines/go-embeddedsass/sassvalue"
)

// ToWire translates a [sassvalue.Value] into its wire form, for messages
// the host sends outbound (canonicalize/import responses never carry
// values, so this is only ever reached from FunctionCallResponse.Success).
//
// ToWire never fails: every constructible Value has a wire representation.
func ToWire(v sassvalue.Value) *WireValue {
	switch t := v.(type) {
	case sassvalue.String:
		return &WireValue{Kind: ValString, Str: &WireString{Text: t.Text, Quoted: t.Quoted}}
	case sassvalue.Number:
		return &WireValue{Kind: ValNumber, Num: &WireNumber{
			Magnitude:   t.Magnitude,
			Numerator:   t.Unit.Numerator,
			Denominator: t.Unit.Denominator,
		}}
	case sassvalue.Color:
		return &WireValue{Kind: ValColor, Color: colorToWire(t)}
	case sassvalue.List:
		return &WireValue{Kind: ValList, List: &WireList{
			Separator: separatorToWire(t.Separator),
			Brackets:  t.Brackets,
			Elements:  valuesToWire(t.Elements),
		}}
	case sassvalue.Map:
		entries := make([]*WireMapEntry, 0, t.Len())
		for _, pair := range t.Entries() {
			entries = append(entries, &WireMapEntry{Key: ToWire(pair[0]), Value: ToWire(pair[1])})
		}
		return &WireValue{Kind: ValMap, Map: &WireMap{Entries: entries}}
	case *sassvalue.ArgumentList:
		keywords := make([]*WireKeywordEntry, 0, len(t.KeywordOrder()))
		for _, name := range t.KeywordOrder() {
			val, _ := t.Keyword(name)
			keywords = append(keywords, &WireKeywordEntry{Name: name, Value: ToWire(val)})
		}
		return &WireValue{Kind: ValArgList, ArgList: &WireArgumentList{
			Separator: separatorToWire(t.Separator),
			Brackets:  t.Brackets,
			Elements:  valuesToWire(t.Elements),
			Keywords:  keywords,
		}}
	case sassvalue.CompilerFunction:
		return &WireValue{Kind: ValCompilerFunction, CompilerFn: t.ID}
	case sassvalue.HostFunction:
		return &WireValue{Kind: ValHostFunction, HostFn: &WireHostFunction{ID: t.ID, Signature: t.Signature}}
	case sassvalue.Mixin:
		return &WireValue{Kind: ValMixin, Mixin: t.ID}
	case sassvalue.Calculation:
		return &WireValue{Kind: ValCalculation, Calc: calcToWire(t)}
	case sassvalue.Bool:
		if bool(t) {
			return &WireValue{Kind: ValSingleton, Singleton: SingletonTrue}
		}
		return &WireValue{Kind: ValSingleton, Singleton: SingletonFalse}
	default:
		// nullValue and any other singleton-shaped value: the only Value
		// left unhandled above is Null, since Bool is handled by its
		// concrete type.
		return &WireValue{Kind: ValSingleton, Singleton: SingletonNull}
	}
}

func valuesToWire(vs []sassvalue.Value) []*WireValue {
	out := make([]*WireValue, len(vs))
	for i, v := range vs {
		out[i] = ToWire(v)
	}
	return out
}

func separatorToWire(s sassvalue.Separator) WireSeparator {
	switch s {
	case sassvalue.SeparatorComma:
		return SepComma
	case sassvalue.SeparatorSpace:
		return SepSpace
	case sassvalue.SeparatorSlash:
		return SepSlash
	default:
		return SepUndecided
	}
}

func separatorFromWire(s WireSeparator) sassvalue.Separator {
	switch s {
	case SepComma:
		return sassvalue.SeparatorComma
	case SepSpace:
		return sassvalue.SeparatorSpace
	case SepSlash:
		return sassvalue.SeparatorSlash
	default:
		return sassvalue.SeparatorUndecided
	}
}

var colorSpaceToWire = map[sassvalue.ColorSpace]WireColorSpace{
	sassvalue.SpaceRGB:         ColorRGB,
	sassvalue.SpaceHSL:         ColorHSL,
	sassvalue.SpaceHWB:         ColorHWB,
	sassvalue.SpaceSRGB:        ColorSRGB,
	sassvalue.SpaceSRGBLinear:  ColorSRGBLinear,
	sassvalue.SpaceDisplayP3:   ColorDisplayP3,
	sassvalue.SpaceA98RGB:      ColorA98RGB,
	sassvalue.SpaceProphotoRGB: ColorProphotoRGB,
	sassvalue.SpaceRec2020:     ColorRec2020,
	sassvalue.SpaceXYZD65:      ColorXYZD65,
	sassvalue.SpaceXYZD50:      ColorXYZD50,
	sassvalue.SpaceLab:         ColorLab,
	sassvalue.SpaceLCH:         ColorLCH,
	sassvalue.SpaceOklab:       ColorOklab,
	sassvalue.SpaceOklch:       ColorOklch,
}

var colorSpaceFromWire = func() map[WireColorSpace]sassvalue.ColorSpace {
	m := make(map[WireColorSpace]sassvalue.ColorSpace, len(colorSpaceToWire))
	for k, v := range colorSpaceToWire {
		m[v] = k
	}
	return m
}()

func colorToWire(c sassvalue.Color) *WireColor {
	w := &WireColor{Space: colorSpaceToWire[c.Space]}
	var mask uint32
	if c.Channel1 == nil {
		mask |= 1
	} else {
		w.Channel1 = *c.Channel1
	}
	if c.Channel2 == nil {
		mask |= 2
	} else {
		w.Channel2 = *c.Channel2
	}
	if c.Channel3 == nil {
		mask |= 4
	} else {
		w.Channel3 = *c.Channel3
	}
	if c.Alpha == nil {
		mask |= 8
	} else {
		w.Alpha = *c.Alpha
	}
	w.MissingMask = mask
	return w
}

func colorFromWire(w *WireColor) (sassvalue.Color, error) {
	space, ok := colorSpaceFromWire[w.Space]
	if !ok {
		return sassvalue.Color{}, fmt.Errorf("protocol: unknown color space discriminant %d", w.Space)
	}
	c := sassvalue.Color{Space: space}
	if w.MissingMask&1 == 0 {
		c.Channel1 = sassvalue.Ch(w.Channel1)
	}
	if w.MissingMask&2 == 0 {
		c.Channel2 = sassvalue.Ch(w.Channel2)
	}
	if w.MissingMask&4 == 0 {
		c.Channel3 = sassvalue.Ch(w.Channel3)
	}
	if w.MissingMask&8 == 0 {
		c.Alpha = sassvalue.Ch(w.Alpha)
	}
	return c, nil
}

func calcOpToWire(op sassvalue.CalcOp) WireCalcOperator {
	switch op {
	case sassvalue.OpMinus:
		return CalcOpMinus
	case sassvalue.OpTimes:
		return CalcOpTimes
	case sassvalue.OpDividedBy:
		return CalcOpDividedBy
	default:
		return CalcOpPlus
	}
}

func calcOpFromWire(op WireCalcOperator) sassvalue.CalcOp {
	switch op {
	case CalcOpMinus:
		return sassvalue.OpMinus
	case CalcOpTimes:
		return sassvalue.OpTimes
	case CalcOpDividedBy:
		return sassvalue.OpDividedBy
	default:
		return sassvalue.OpPlus
	}
}

func calcKindToWire(k sassvalue.CalcKind) WireCalcKind {
	switch k {
	case sassvalue.CalcMin:
		return CalcKindMin
	case sassvalue.CalcMax:
		return CalcKindMax
	case sassvalue.CalcClamp:
		return CalcKindClamp
	default:
		return CalcKindCalc
	}
}

func calcKindFromWire(k WireCalcKind) sassvalue.CalcKind {
	switch k {
	case CalcKindMin:
		return sassvalue.CalcMin
	case CalcKindMax:
		return sassvalue.CalcMax
	case CalcKindClamp:
		return sassvalue.CalcClamp
	default:
		return sassvalue.CalcCalc
	}
}

func calcValueToWire(v sassvalue.CalcValue) *WireCalcValue {
	switch t := v.(type) {
	case sassvalue.CalcNumber:
		return &WireCalcValue{Kind: CalcValNumber, Number: &WireNumber{
			Magnitude: t.Number.Magnitude, Numerator: t.Number.Unit.Numerator, Denominator: t.Number.Unit.Denominator,
		}}
	case sassvalue.CalcString:
		return &WireCalcValue{Kind: CalcValString, String: string(t)}
	case sassvalue.CalcInterpolation:
		return &WireCalcValue{Kind: CalcValInterpolation, Interpolation: string(t)}
	case sassvalue.CalcBinaryOp:
		return &WireCalcValue{Kind: CalcValBinaryOp, BinaryOp: &WireCalcBinaryOp{
			Left: calcValueToWire(t.Left), Op: calcOpToWire(t.Op), Right: calcValueToWire(t.Right),
		}}
	case sassvalue.CalcNested:
		return &WireCalcValue{Kind: CalcValNested, Nested: calcToWire(t.Calc)}
	default:
		return &WireCalcValue{Kind: CalcValString}
	}
}

func calcValueFromWire(w *WireCalcValue) (sassvalue.CalcValue, error) {
	switch w.Kind {
	case CalcValNumber:
		n, err := numberFromWire(w.Number)
		if err != nil {
			return nil, err
		}
		return sassvalue.CalcNumber{Number: n}, nil
	case CalcValString:
		return sassvalue.CalcString(w.String), nil
	case CalcValInterpolation:
		return sassvalue.CalcInterpolation(w.Interpolation), nil
	case CalcValBinaryOp:
		left, err := calcValueFromWire(w.BinaryOp.Left)
		if err != nil {
			return nil, err
		}
		right, err := calcValueFromWire(w.BinaryOp.Right)
		if err != nil {
			return nil, err
		}
		return sassvalue.CalcBinaryOp{Left: left, Op: calcOpFromWire(w.BinaryOp.Op), Right: right}, nil
	case CalcValNested:
		calc, err := calcFromWire(w.Nested)
		if err != nil {
			return nil, err
		}
		return sassvalue.CalcNested{Calc: calc}, nil
	default:
		return nil, fmt.Errorf("protocol: unknown calculation value discriminant %d", w.Kind)
	}
}

func calcToWire(c sassvalue.Calculation) *WireCalculation {
	args := make([]*WireCalcValue, len(c.Arguments))
	for i, a := range c.Arguments {
		args[i] = calcValueToWire(a)
	}
	return &WireCalculation{Kind: calcKindToWire(c.Kind), Arguments: args}
}

func calcFromWire(w *WireCalculation) (sassvalue.Calculation, error) {
	args := make([]sassvalue.CalcValue, len(w.Arguments))
	for i, a := range w.Arguments {
		v, err := calcValueFromWire(a)
		if err != nil {
			return sassvalue.Calculation{}, err
		}
		args[i] = v
	}
	return sassvalue.Calculation{Kind: calcKindFromWire(w.Kind), Arguments: args}, nil
}

func numberFromWire(w *WireNumber) (sassvalue.Number, error) {
	return sassvalue.NewNumberWithUnit(w.Magnitude, w.Numerator, w.Denominator)
}

// FromWire translates a decoded [WireValue] into a [sassvalue.Value].
//
// hostFunctionLookup resolves a HostFunction discriminant's callable by its
// registry id; it is nil when translating a context where a host function
// could never legitimately appear (arguments coming FROM the child), in
// which case a HostFunction discriminant is itself a protocol error — host
// functions only ever travel host-to-child, never the reverse.
func FromWire(w *WireValue, hostFunctionLookup func(id uint64) (sassvalue.HostFunctionCallable, string, bool)) (sassvalue.Value, error) {
	switch w.Kind {
	case ValSingleton:
		switch w.Singleton {
		case SingletonTrue:
			return sassvalue.TrueValue, nil
		case SingletonFalse:
			return sassvalue.FalseValue, nil
		default:
			return sassvalue.NullValue, nil
		}
	case ValString:
		return sassvalue.String{Text: w.Str.Text, Quoted: w.Str.Quoted}, nil
	case ValNumber:
		return numberFromWire(w.Num)
	case ValColor:
		return colorFromWire(w.Color)
	case ValList:
		elems, err := valuesFromWire(w.List.Elements, hostFunctionLookup)
		if err != nil {
			return nil, err
		}
		return sassvalue.NewList(elems, separatorFromWire(w.List.Separator), w.List.Brackets), nil
	case ValMap:
		entries := make([][2]sassvalue.Value, 0, len(w.Map.Entries))
		seen := make([]sassvalue.Value, 0, len(w.Map.Entries))
		for _, e := range w.Map.Entries {
			k, err := FromWire(e.Key, hostFunctionLookup)
			if err != nil {
				return nil, err
			}
			for _, s := range seen {
				if s.Equal(k) {
					return nil, fmt.Errorf("protocol: duplicate map key")
				}
			}
			seen = append(seen, k)
			v, err := FromWire(e.Value, hostFunctionLookup)
			if err != nil {
				return nil, err
			}
			entries = append(entries, [2]sassvalue.Value{k, v})
		}
		return sassvalue.NewMap(entries...), nil
	case ValArgList:
		elems, err := valuesFromWire(w.ArgList.Elements, hostFunctionLookup)
		if err != nil {
			return nil, err
		}
		kw := make(map[string]sassvalue.Value, len(w.ArgList.Keywords))
		order := make([]string, 0, len(w.ArgList.Keywords))
		for _, k := range w.ArgList.Keywords {
			v, err := FromWire(k.Value, hostFunctionLookup)
			if err != nil {
				return nil, err
			}
			kw[k.Name] = v
			order = append(order, k.Name)
		}
		return sassvalue.NewArgumentList(elems, separatorFromWire(w.ArgList.Separator), kw, order, nil), nil
	case ValCompilerFunction:
		return sassvalue.CompilerFunction{ID: w.CompilerFn}, nil
	case ValHostFunction:
		if hostFunctionLookup == nil {
			return nil, fmt.Errorf("protocol: host function value received where none may originate")
		}
		call, sig, ok := hostFunctionLookup(w.HostFn.ID)
		if !ok {
			return nil, fmt.Errorf("protocol: unknown host function id %d", w.HostFn.ID)
		}
		return sassvalue.HostFunction{ID: w.HostFn.ID, Signature: sig, Call: call}, nil
	case ValMixin:
		return sassvalue.Mixin{ID: w.Mixin}, nil
	case ValCalculation:
		return calcFromWire(w.Calc)
	default:
		return nil, fmt.Errorf("protocol: unknown value discriminant %d", w.Kind)
	}
}

func valuesFromWire(ws []*WireValue, lookup func(id uint64) (sassvalue.HostFunctionCallable, string, bool)) ([]sassvalue.Value, error) {
	out := make([]sassvalue.Value, len(ws))
	for i, w := range ws {
		v, err := FromWire(w, lookup)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
