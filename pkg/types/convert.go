package types

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bisegni/ossql/pkg/sqlerr"
	"github.com/shopspring/decimal"
)

// Representation is the Go form a caller asks a cell to be converted to.
type Representation int

const (
	AsDefault Representation = iota
	AsBool
	AsInt8
	AsInt16
	AsInt32
	AsInt64
	AsFloat32
	AsFloat64
	AsString
	AsDate
	AsTime
	AsTimestamp
	AsBinary
	AsDecimal
	AsStruct
	AsArray
)

var repNames = [...]string{
	AsDefault:   "default",
	AsBool:      "bool",
	AsInt8:      "int8",
	AsInt16:     "int16",
	AsInt32:     "int32",
	AsInt64:     "int64",
	AsFloat32:   "float32",
	AsFloat64:   "float64",
	AsString:    "string",
	AsDate:      "date",
	AsTime:      "time",
	AsTimestamp: "timestamp",
	AsBinary:    "binary",
	AsDecimal:   "decimal",
	AsStruct:    "struct",
	AsArray:     "array",
}

func (r Representation) String() string {
	if r < 0 || int(r) >= len(repNames) {
		return "representation(" + strconv.Itoa(int(r)) + ")"
	}
	return repNames[r]
}

// ParseRepresentation resolves a representation by its lowercase name.
func ParseRepresentation(name string) (Representation, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range repNames {
		if n == name {
			return Representation(i), nil
		}
	}
	return AsDefault, sqlerr.InvalidArgument("parse representation", fmt.Sprintf("unknown representation %q", name))
}

// Params tunes a single conversion. Location, when set, is the zone
// date-time literals are interpreted in.
type Params struct {
	Location *time.Location
}

func (p *Params) location() *time.Location {
	if p == nil {
		return nil
	}
	return p.Location
}

type repSet uint32

func setOf(reps ...Representation) repSet {
	var s repSet
	for _, r := range reps {
		s |= 1 << uint(r)
	}
	return s
}

func (s repSet) has(r Representation) bool { return s&(1<<uint(r)) != 0 }

// members lists the representations in the set in declaration order.
func (s repSet) members() []Representation {
	var out []Representation
	for r := AsBool; r <= AsArray; r++ {
		if s.has(r) {
			out = append(out, r)
		}
	}
	return out
}

type rule struct {
	def     Representation
	allowed repSet
}

var (
	numericReps = setOf(AsInt8, AsInt16, AsInt32, AsInt64, AsFloat32, AsFloat64, AsString, AsDecimal)
	allReps     = setOf(AsBool, AsInt8, AsInt16, AsInt32, AsInt64, AsFloat32, AsFloat64, AsString,
		AsDate, AsTime, AsTimestamp, AsBinary, AsDecimal, AsStruct, AsArray)
)

// conversion whitelist per canonical host type
var rules = [...]rule{
	HostOther:     {AsDefault, 0},
	HostBoolean:   {AsBool, setOf(AsBool, AsString)},
	HostInt8:      {AsInt8, numericReps},
	HostInt16:     {AsInt16, numericReps},
	HostInt32:     {AsInt32, numericReps},
	HostInt64:     {AsInt64, numericReps},
	HostFloat32:   {AsFloat32, numericReps},
	HostFloat64:   {AsFloat64, numericReps},
	HostString:    {AsString, setOf(AsString, AsTimestamp, AsDate, AsInt8, AsInt16, AsInt32, AsInt64, AsBool, AsDecimal)},
	HostDate:      {AsDate, setOf(AsString, AsDate)},
	HostTime:      {AsTime, setOf(AsString, AsTime)},
	HostTimestamp: {AsTimestamp, setOf(AsString, AsTimestamp, AsTime)},
	HostBinary:    {AsString, setOf(AsString, AsBinary)},
	HostNull:      {AsDefault, allReps},
	HostStruct:    {AsStruct, setOf(AsStruct)},
	HostArray:     {AsArray, setOf(AsArray)},
}

// Converter coerces decoded values to host representations. It holds no
// mutable state and is safe for concurrent use.
type Converter struct {
	reg *Registry
}

func NewConverter(reg *Registry) *Converter {
	return &Converter{reg: reg}
}

// Allowed lists the representations a domain type can be converted to.
func (c *Converter) Allowed(t Type) []Representation {
	return rules[c.reg.Lookup(t).Host].allowed.members()
}

// Convert coerces v, a cell of domain type t, to rep. Null cells yield the
// zero value of rep (nil for struct, array and binary). Values of the
// unsupported type can only be read with AsDefault, which returns them
// unchanged.
func (c *Converter) Convert(v Value, t Type, rep Representation, p *Params) (any, error) {
	d := c.reg.Lookup(t)
	r := rules[d.Host]

	if rep == AsDefault {
		switch d.Host {
		case HostOther:
			return v.Interface(), nil
		case HostNull:
			return nil, nil
		}
		rep = r.def
	}
	if !r.allowed.has(rep) {
		return nil, sqlerr.UnsupportedConversion(d.Name, rep.String())
	}
	if v.IsNull() || d.Host == HostNull {
		return nullOf(rep), nil
	}

	out, err := coerce(v, d, rep, p.location())
	if err != nil {
		return nil, sqlerr.ValueMismatch(d.Name, rep.String(), err)
	}
	return out, nil
}

func coerce(v Value, d Descriptor, rep Representation, loc *time.Location) (any, error) {
	switch rep {
	case AsBool:
		return toBool(v)
	case AsInt8:
		return toSigned[int8](v)
	case AsInt16:
		return toSigned[int16](v)
	case AsInt32:
		return toSigned[int32](v)
	case AsInt64:
		return toSigned[int64](v)
	case AsFloat32:
		return toFloat[float32](v)
	case AsFloat64:
		return toFloat[float64](v)
	case AsString:
		return toString(v, d, loc)
	case AsDate:
		t, err := parseTemporal(v, loc)
		return dateOf(t), err
	case AsTime:
		t, err := parseTemporal(v, loc)
		return clockOf(t), err
	case AsTimestamp:
		return parseTemporal(v, loc)
	case AsBinary:
		s, ok := v.Str()
		if !ok {
			return nil, fmt.Errorf("%s value is not base64 text", v.kind)
		}
		return base64.StdEncoding.DecodeString(s)
	case AsDecimal:
		return toDecimal(v)
	case AsStruct:
		if s, ok := v.Struct(); ok {
			return s, nil
		}
		return nil, fmt.Errorf("%s value is not a struct", v.kind)
	case AsArray:
		if a, ok := v.Array(); ok {
			return a, nil
		}
		return nil, fmt.Errorf("%s value is not a collection", v.kind)
	}
	return nil, fmt.Errorf("unknown representation %s", rep)
}

func toString(v Value, d Descriptor, loc *time.Location) (string, error) {
	switch v.kind {
	case KindString:
		return v.s, nil
	case KindBool:
		return strconv.FormatBool(v.b), nil
	case KindInt:
		switch d.Host {
		case HostDate, HostTime, HostTimestamp:
			t, err := parseTemporal(v, loc)
			if err != nil {
				return "", err
			}
			return formatTime(t), nil
		}
		return strconv.FormatInt(v.i, 10), nil
	case KindFloat:
		if d.Host == HostFloat32 {
			return formatFloat(float64(float32(v.f)), 32), nil
		}
		return formatFloat(v.f, 64), nil
	}
	return "", fmt.Errorf("%s value has no text form", v.kind)
}

func toDecimal(v Value) (decimal.Decimal, error) {
	switch v.kind {
	case KindInt:
		return decimal.NewFromInt(v.i), nil
	case KindFloat:
		return decimal.NewFromFloat(v.f), nil
	case KindString:
		return decimal.NewFromString(strings.TrimSpace(v.s))
	}
	return decimal.Zero, fmt.Errorf("%s value is not numeric", v.kind)
}

// nullOf is the value a null cell converts to for each representation.
func nullOf(rep Representation) any {
	switch rep {
	case AsBool:
		return false
	case AsInt8:
		return int8(0)
	case AsInt16:
		return int16(0)
	case AsInt32:
		return int32(0)
	case AsInt64:
		return int64(0)
	case AsFloat32:
		return float32(0)
	case AsFloat64:
		return float64(0)
	case AsString:
		return ""
	case AsDate, AsTime, AsTimestamp:
		return time.Time{}
	case AsBinary:
		return []byte(nil)
	case AsDecimal:
		return decimal.Zero
	case AsStruct:
		return (*Struct)(nil)
	case AsArray:
		return (*Array)(nil)
	}
	return nil
}

// Format renders a converted host value as text that Convert accepts back
// for the same representation.
func Format(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case bool:
		return strconv.FormatBool(x)
	case int8:
		return strconv.FormatInt(int64(x), 10)
	case int16:
		return strconv.FormatInt(int64(x), 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int64:
		return strconv.FormatInt(x, 10)
	case float32:
		return formatFloat(float64(x), 32)
	case float64:
		return formatFloat(x, 64)
	case string:
		return x
	case time.Time:
		return formatTime(x)
	case []byte:
		return base64.StdEncoding.EncodeToString(x)
	case decimal.Decimal:
		return x.String()
	case Value:
		return x.String()
	case *Struct:
		b, _ := x.MarshalJSON()
		return string(b)
	case *Array:
		b, _ := x.MarshalJSON()
		return string(b)
	}
	return fmt.Sprint(v)
}
