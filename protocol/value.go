package protocol

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// WireValue is the wire-level tagged union mirroring the compiler's value
// tree, before translation to/from [sassvalue.Value] (see adapter.go for
// that translation and its decode-time validation rules).
//
// Exactly one of the pointer fields is non-nil, selected by Kind.
type WireValue struct {
	Kind WireValueKind

	Singleton  WireSingleton
	Str        *WireString
	Num        *WireNumber
	Color      *WireColor
	List       *WireList
	Map        *WireMap
	ArgList    *WireArgumentList
	CompilerFn uint64
	HostFn     *WireHostFunction
	Mixin      uint64
	Calc       *WireCalculation
}

type WireValueKind int32

const (
	ValSingleton WireValueKind = iota
	ValString
	ValNumber
	ValColor
	ValList
	ValMap
	ValArgList
	ValCompilerFunction
	ValHostFunction
	ValMixin
	ValCalculation
)

// WireSingleton enumerates null/true/false, the only values that need no
// payload beyond the discriminant.
type WireSingleton int32

const (
	SingletonNull WireSingleton = iota
	SingletonTrue
	SingletonFalse
)

type WireString struct {
	Text   string
	Quoted bool
}

type WireNumber struct {
	Magnitude   float64
	Numerator   []string
	Denominator []string
}

type WireColor struct {
	Space       WireColorSpace
	Channel1    float64
	Channel2    float64
	Channel3    float64
	Alpha       float64
	MissingMask uint32 // bit0=ch1,bit1=ch2,bit2=ch3,bit3=alpha
}

type WireList struct {
	Separator WireSeparator
	Brackets  bool
	Elements  []*WireValue
}

type WireMapEntry struct {
	Key   *WireValue
	Value *WireValue
}

type WireMap struct {
	Entries []*WireMapEntry
}

type WireKeywordEntry struct {
	Name  string
	Value *WireValue
}

type WireArgumentList struct {
	Separator WireSeparator
	Brackets  bool
	Elements  []*WireValue
	Keywords  []*WireKeywordEntry
}

type WireHostFunction struct {
	ID        uint64
	Signature string
}

type WireCalcBinaryOp struct {
	Left  *WireCalcValue
	Op    WireCalcOperator
	Right *WireCalcValue
}

// WireCalcValue is the wire form of sassvalue.CalcValue: exactly one field
// is populated, selected by Kind.
type WireCalcValue struct {
	Kind          WireCalcValueKind
	Number        *WireNumber
	String        string
	Interpolation string
	BinaryOp      *WireCalcBinaryOp
	Nested        *WireCalculation
}

type WireCalcValueKind int32

const (
	CalcValNumber WireCalcValueKind = iota
	CalcValString
	CalcValInterpolation
	CalcValBinaryOp
	CalcValNested
)

type WireCalculation struct {
	Kind      WireCalcKind
	Arguments []*WireCalcValue
}

// --- Marshal ----------------------------------------------------------

func marshalWireString(v *WireString) []byte {
	var b []byte
	b = appendStringField(b, 1, v.Text)
	b = appendBoolField(b, 2, v.Quoted)
	return b
}

func marshalWireNumber(v *WireNumber) []byte {
	var b []byte
	b = appendDoubleField(b, 1, v.Magnitude)
	for _, u := range v.Numerator {
		b = appendStringField(b, 2, u)
	}
	for _, u := range v.Denominator {
		b = appendStringField(b, 3, u)
	}
	return b
}

func marshalWireColor(v *WireColor) []byte {
	var b []byte
	b = appendVarintField(b, 1, uint64(v.Space))
	b = appendDoubleField(b, 2, v.Channel1)
	b = appendDoubleField(b, 3, v.Channel2)
	b = appendDoubleField(b, 4, v.Channel3)
	b = appendDoubleField(b, 5, v.Alpha)
	b = appendVarintField(b, 6, uint64(v.MissingMask))
	return b
}

func marshalWireList(v *WireList) []byte {
	var b []byte
	b = appendVarintField(b, 1, uint64(v.Separator))
	b = appendBoolField(b, 2, v.Brackets)
	for _, e := range v.Elements {
		b = appendMessageField(b, 3, MarshalWireValue(e))
	}
	return b
}

func marshalWireMap(v *WireMap) []byte {
	var b []byte
	for _, e := range v.Entries {
		var entry []byte
		entry = appendMessageField(entry, 1, MarshalWireValue(e.Key))
		entry = appendMessageField(entry, 2, MarshalWireValue(e.Value))
		b = appendMessageField(b, 1, entry)
	}
	return b
}

func marshalWireArgumentList(v *WireArgumentList) []byte {
	var b []byte
	b = appendVarintField(b, 1, uint64(v.Separator))
	b = appendBoolField(b, 2, v.Brackets)
	for _, e := range v.Elements {
		b = appendMessageField(b, 3, MarshalWireValue(e))
	}
	for _, k := range v.Keywords {
		var entry []byte
		entry = appendStringField(entry, 1, k.Name)
		entry = appendMessageField(entry, 2, MarshalWireValue(k.Value))
		b = appendMessageField(b, 4, entry)
	}
	return b
}

func marshalWireHostFunction(v *WireHostFunction) []byte {
	var b []byte
	b = appendVarintField(b, 1, v.ID)
	b = appendStringField(b, 2, v.Signature)
	return b
}

func marshalWireCalcValue(v *WireCalcValue) []byte {
	var b []byte
	switch v.Kind {
	case CalcValNumber:
		b = appendMessageField(b, 1, marshalWireNumber(v.Number))
	case CalcValString:
		b = appendStringField(b, 2, v.String)
	case CalcValInterpolation:
		b = appendStringField(b, 3, v.Interpolation)
	case CalcValBinaryOp:
		var op []byte
		op = appendMessageField(op, 1, marshalWireCalcValue(v.BinaryOp.Left))
		op = appendVarintField(op, 2, uint64(v.BinaryOp.Op))
		op = appendMessageField(op, 3, marshalWireCalcValue(v.BinaryOp.Right))
		b = appendMessageField(b, 4, op)
	case CalcValNested:
		b = appendMessageField(b, 5, marshalWireCalculation(v.Nested))
	}
	return b
}

func marshalWireCalculation(v *WireCalculation) []byte {
	var b []byte
	b = appendVarintField(b, 1, uint64(v.Kind))
	for _, a := range v.Arguments {
		b = appendMessageField(b, 2, marshalWireCalcValue(a))
	}
	return b
}

// MarshalWireValue encodes v as a length-delimited protobuf message body.
func MarshalWireValue(v *WireValue) []byte {
	var b []byte
	switch v.Kind {
	case ValSingleton:
		b = appendVarintField(b, 1, uint64(v.Singleton))
	case ValString:
		b = appendMessageField(b, 2, marshalWireString(v.Str))
	case ValNumber:
		b = appendMessageField(b, 3, marshalWireNumber(v.Num))
	case ValColor:
		b = appendMessageField(b, 4, marshalWireColor(v.Color))
	case ValList:
		b = appendMessageField(b, 5, marshalWireList(v.List))
	case ValMap:
		b = appendMessageField(b, 6, marshalWireMap(v.Map))
	case ValArgList:
		b = appendMessageField(b, 7, marshalWireArgumentList(v.ArgList))
	case ValCompilerFunction:
		b = appendVarintField(b, 8, v.CompilerFn)
	case ValHostFunction:
		b = appendMessageField(b, 9, marshalWireHostFunction(v.HostFn))
	case ValMixin:
		b = appendVarintField(b, 10, v.Mixin)
	case ValCalculation:
		b = appendMessageField(b, 11, marshalWireCalculation(v.Calc))
	}
	return b
}

// --- Unmarshal ----------------------------------------------------------

func unmarshalWireString(data []byte) (*WireString, error) {
	v := &WireString{}
	err := walkFields(data, func(num protowire.Number, typ protowire.Type, raw []byte) error {
		switch num {
		case 1:
			v.Text = stringFromRaw(raw)
		case 2:
			v.Quoted = varintFromRaw(raw) != 0
		}
		return nil
	})
	return v, err
}

func unmarshalWireNumber(data []byte) (*WireNumber, error) {
	v := &WireNumber{}
	err := walkFields(data, func(num protowire.Number, typ protowire.Type, raw []byte) error {
		switch num {
		case 1:
			v.Magnitude = doubleFromRaw(raw)
		case 2:
			v.Numerator = append(v.Numerator, stringFromRaw(raw))
		case 3:
			v.Denominator = append(v.Denominator, stringFromRaw(raw))
		}
		return nil
	})
	return v, err
}

func unmarshalWireColor(data []byte) (*WireColor, error) {
	v := &WireColor{}
	err := walkFields(data, func(num protowire.Number, typ protowire.Type, raw []byte) error {
		switch num {
		case 1:
			v.Space = WireColorSpace(varintFromRaw(raw))
		case 2:
			v.Channel1 = doubleFromRaw(raw)
		case 3:
			v.Channel2 = doubleFromRaw(raw)
		case 4:
			v.Channel3 = doubleFromRaw(raw)
		case 5:
			v.Alpha = doubleFromRaw(raw)
		case 6:
			v.MissingMask = uint32(varintFromRaw(raw))
		}
		return nil
	})
	if v.Space < ColorRGB || v.Space > ColorOklch {
		return nil, fmt.Errorf("protocol: unknown color space discriminant %d", v.Space)
	}
	return v, err
}

func unmarshalWireList(data []byte) (*WireList, error) {
	v := &WireList{}
	err := walkFields(data, func(num protowire.Number, typ protowire.Type, raw []byte) error {
		switch num {
		case 1:
			v.Separator = WireSeparator(varintFromRaw(raw))
		case 2:
			v.Brackets = varintFromRaw(raw) != 0
		case 3:
			elem, err := UnmarshalWireValue(raw)
			if err != nil {
				return err
			}
			v.Elements = append(v.Elements, elem)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if v.Separator < SepComma || v.Separator > SepUndecided {
		return nil, fmt.Errorf("protocol: unknown separator discriminant %d", v.Separator)
	}
	return v, nil
}

func unmarshalWireMap(data []byte) (*WireMap, error) {
	v := &WireMap{}
	err := walkFields(data, func(num protowire.Number, typ protowire.Type, raw []byte) error {
		if num != 1 {
			return nil
		}
		entry := &WireMapEntry{}
		err := walkFields(raw, func(n2 protowire.Number, t2 protowire.Type, raw2 []byte) error {
			switch n2 {
			case 1:
				k, err := UnmarshalWireValue(raw2)
				if err != nil {
					return err
				}
				entry.Key = k
			case 2:
				val, err := UnmarshalWireValue(raw2)
				if err != nil {
					return err
				}
				entry.Value = val
			}
			return nil
		})
		if err != nil {
			return err
		}
		v.Entries = append(v.Entries, entry)
		return nil
	})
	return v, err
}

func unmarshalWireArgumentList(data []byte) (*WireArgumentList, error) {
	v := &WireArgumentList{}
	err := walkFields(data, func(num protowire.Number, typ protowire.Type, raw []byte) error {
		switch num {
		case 1:
			v.Separator = WireSeparator(varintFromRaw(raw))
		case 2:
			v.Brackets = varintFromRaw(raw) != 0
		case 3:
			elem, err := UnmarshalWireValue(raw)
			if err != nil {
				return err
			}
			v.Elements = append(v.Elements, elem)
		case 4:
			kw := &WireKeywordEntry{}
			err := walkFields(raw, func(n2 protowire.Number, t2 protowire.Type, raw2 []byte) error {
				switch n2 {
				case 1:
					kw.Name = stringFromRaw(raw2)
				case 2:
					val, err := UnmarshalWireValue(raw2)
					if err != nil {
						return err
					}
					kw.Value = val
				}
				return nil
			})
			if err != nil {
				return err
			}
			v.Keywords = append(v.Keywords, kw)
		}
		return nil
	})
	return v, err
}

func unmarshalWireHostFunction(data []byte) (*WireHostFunction, error) {
	v := &WireHostFunction{}
	err := walkFields(data, func(num protowire.Number, typ protowire.Type, raw []byte) error {
		switch num {
		case 1:
			v.ID = varintFromRaw(raw)
		case 2:
			v.Signature = stringFromRaw(raw)
		}
		return nil
	})
	return v, err
}

func unmarshalWireCalcValue(data []byte) (*WireCalcValue, error) {
	v := &WireCalcValue{}
	err := walkFields(data, func(num protowire.Number, typ protowire.Type, raw []byte) error {
		switch num {
		case 1:
			n, err := unmarshalWireNumber(raw)
			if err != nil {
				return err
			}
			v.Kind, v.Number = CalcValNumber, n
		case 2:
			v.Kind, v.String = CalcValString, stringFromRaw(raw)
		case 3:
			v.Kind, v.Interpolation = CalcValInterpolation, stringFromRaw(raw)
		case 4:
			op := &WireCalcBinaryOp{}
			err := walkFields(raw, func(n2 protowire.Number, t2 protowire.Type, raw2 []byte) error {
				switch n2 {
				case 1:
					left, err := unmarshalWireCalcValue(raw2)
					if err != nil {
						return err
					}
					op.Left = left
				case 2:
					op.Op = WireCalcOperator(varintFromRaw(raw2))
				case 3:
					right, err := unmarshalWireCalcValue(raw2)
					if err != nil {
						return err
					}
					op.Right = right
				}
				return nil
			})
			if err != nil {
				return err
			}
			v.Kind, v.BinaryOp = CalcValBinaryOp, op
		case 5:
			nested, err := unmarshalWireCalculation(raw)
			if err != nil {
				return err
			}
			v.Kind, v.Nested = CalcValNested, nested
		}
		return nil
	})
	return v, err
}

func unmarshalWireCalculation(data []byte) (*WireCalculation, error) {
	v := &WireCalculation{}
	err := walkFields(data, func(num protowire.Number, typ protowire.Type, raw []byte) error {
		switch num {
		case 1:
			v.Kind = WireCalcKind(varintFromRaw(raw))
		case 2:
			arg, err := unmarshalWireCalcValue(raw)
			if err != nil {
				return err
			}
			v.Arguments = append(v.Arguments, arg)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if v.Kind < CalcKindCalc || v.Kind > CalcKindClamp {
		return nil, fmt.Errorf("protocol: unknown calculation kind discriminant %d", v.Kind)
	}
	return v, nil
}

// UnmarshalWireValue decodes a length-delimited WireValue message body.
func UnmarshalWireValue(data []byte) (*WireValue, error) {
	v := &WireValue{}
	err := walkFields(data, func(num protowire.Number, typ protowire.Type, raw []byte) error {
		switch num {
		case 1:
			v.Kind, v.Singleton = ValSingleton, WireSingleton(varintFromRaw(raw))
			if v.Singleton < SingletonNull || v.Singleton > SingletonFalse {
				return fmt.Errorf("protocol: unknown singleton discriminant %d", v.Singleton)
			}
		case 2:
			s, err := unmarshalWireString(raw)
			if err != nil {
				return err
			}
			v.Kind, v.Str = ValString, s
		case 3:
			n, err := unmarshalWireNumber(raw)
			if err != nil {
				return err
			}
			v.Kind, v.Num = ValNumber, n
		case 4:
			c, err := unmarshalWireColor(raw)
			if err != nil {
				return err
			}
			v.Kind, v.Color = ValColor, c
		case 5:
			l, err := unmarshalWireList(raw)
			if err != nil {
				return err
			}
			v.Kind, v.List = ValList, l
		case 6:
			m, err := unmarshalWireMap(raw)
			if err != nil {
				return err
			}
			v.Kind, v.Map = ValMap, m
		case 7:
			a, err := unmarshalWireArgumentList(raw)
			if err != nil {
				return err
			}
			v.Kind, v.ArgList = ValArgList, a
		case 8:
			v.Kind, v.CompilerFn = ValCompilerFunction, varintFromRaw(raw)
		case 9:
			h, err := unmarshalWireHostFunction(raw)
			if err != nil {
				return err
			}
			v.Kind, v.HostFn = ValHostFunction, h
		case 10:
			v.Kind, v.Mixin = ValMixin, varintFromRaw(raw)
		case 11:
			c, err := unmarshalWireCalculation(raw)
			if err != nil {
				return err
			}
			v.Kind, v.Calc = ValCalculation, c
		}
		return nil
	})
	return v, err
}
