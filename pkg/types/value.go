package types

import (
	"encoding/json"
	"math"
	"strconv"
)

// Kind tags the payload of a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindStruct
	KindArray
)

var kindNames = [...]string{"null", "bool", "int", "float", "string", "struct", "array"}

func (k Kind) String() string {
	if int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// Value is one decoded response cell. The zero Value is null.
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string
	st   *Struct
	arr  *Array
}

func NullValue() Value            { return Value{} }
func BoolValue(b bool) Value      { return Value{kind: KindBool, b: b} }
func IntValue(i int64) Value      { return Value{kind: KindInt, i: i} }
func FloatValue(f float64) Value  { return Value{kind: KindFloat, f: f} }
func StringValue(s string) Value  { return Value{kind: KindString, s: s} }
func StructValue(s *Struct) Value { return wrapPtr(KindStruct, s, nil) }
func ArrayValue(a *Array) Value   { return wrapPtr(KindArray, nil, a) }

func wrapPtr(k Kind, s *Struct, a *Array) Value {
	if s == nil && a == nil {
		return Value{}
	}
	return Value{kind: k, st: s, arr: a}
}

func (v Value) Kind() Kind   { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }

// Bool returns the boolean payload; ok is false for other kinds.
func (v Value) Bool() (b bool, ok bool) { return v.b, v.kind == KindBool }

func (v Value) Int() (int64, bool)      { return v.i, v.kind == KindInt }
func (v Value) Float() (float64, bool)  { return v.f, v.kind == KindFloat }
func (v Value) Str() (string, bool)     { return v.s, v.kind == KindString }
func (v Value) Struct() (*Struct, bool) { return v.st, v.kind == KindStruct }
func (v Value) Array() (*Array, bool)   { return v.arr, v.kind == KindArray }

// Equal compares kind and payload. Composite payloads use their own
// equality rules.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == o.b
	case KindInt:
		return v.i == o.i
	case KindFloat:
		return v.f == o.f || (math.IsNaN(v.f) && math.IsNaN(o.f))
	case KindString:
		return v.s == o.s
	case KindStruct:
		return v.st.Equal(o.st)
	case KindArray:
		return v.arr.Equal(o.arr)
	}
	return false
}

// Interface returns the plain Go form: nil, bool, int64, float64, string,
// *Struct or *Array.
func (v Value) Interface() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindString:
		return v.s
	case KindStruct:
		return v.st
	case KindArray:
		return v.arr
	}
	return nil
}

func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindString:
		return v.s
	}
	b, _ := v.MarshalJSON()
	return string(b)
}

// MarshalJSON implements the json.Marshaler interface.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindStruct:
		return v.st.MarshalJSON()
	case KindArray:
		return v.arr.MarshalJSON()
	case KindFloat:
		if math.IsNaN(v.f) || math.IsInf(v.f, 0) {
			return json.Marshal(strconv.FormatFloat(v.f, 'g', -1, 64))
		}
	}
	return json.Marshal(v.Interface())
}
