// Package types holds the domain type registry of the search service, the
// decoded value model and the conversion engine that coerces decoded values
// into Go host representations.
package types

import "math"

// Type is a domain type of the remote service.
type Type int

const (
	Boolean Type = iota
	Byte
	Short
	Integer
	Long
	HalfFloat
	Float
	Double
	ScaledFloat
	Keyword
	Text
	String
	IP
	Nested
	Object
	Date
	Time
	Datetime
	Timestamp
	Binary
	Null
	Undefined
	Unsupported
	ArrayType
)

var typeNames = [...]string{
	Boolean:     "boolean",
	Byte:        "byte",
	Short:       "short",
	Integer:     "integer",
	Long:        "long",
	HalfFloat:   "half_float",
	Float:       "float",
	Double:      "double",
	ScaledFloat: "scaled_float",
	Keyword:     "keyword",
	Text:        "text",
	String:      "string",
	IP:          "ip",
	Nested:      "nested",
	Object:      "object",
	Date:        "date",
	Time:        "time",
	Datetime:    "datetime",
	Timestamp:   "timestamp",
	Binary:      "binary",
	Null:        "null",
	Undefined:   "undefined",
	Unsupported: "unsupported",
	ArrayType:   "array",
}

func (t Type) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return "unsupported"
	}
	return typeNames[t]
}

// HostType is the canonical Go-side class a domain type maps to.
type HostType int

const (
	HostOther HostType = iota
	HostBoolean
	HostInt8
	HostInt16
	HostInt32
	HostInt64
	HostFloat32
	HostFloat64
	HostString
	HostDate
	HostTime
	HostTimestamp
	HostBinary
	HostNull
	HostStruct
	HostArray
)

var hostNames = [...]string{
	HostOther:     "other",
	HostBoolean:   "boolean",
	HostInt8:      "int8",
	HostInt16:     "int16",
	HostInt32:     "int32",
	HostInt64:     "int64",
	HostFloat32:   "float32",
	HostFloat64:   "float64",
	HostString:    "string",
	HostDate:      "date",
	HostTime:      "time",
	HostTimestamp: "timestamp",
	HostBinary:    "binary",
	HostNull:      "null",
	HostStruct:    "struct",
	HostArray:     "array",
}

func (h HostType) String() string {
	if h < 0 || int(h) >= len(hostNames) {
		return "other"
	}
	return hostNames[h]
}

// Descriptor is the registry metadata of one domain type. Precision and
// display size describe the widest value the host type can hold; they are
// reported to callers and never checked against data.
type Descriptor struct {
	Type        Type
	Name        string
	Host        HostType
	Precision   int
	DisplaySize int
	Signed      bool
}

// Precision of numeric types is the number of decimal digits of the host
// type: int64 ~ 19, float64 ~ 15, float32 ~ 7. Date-times are sized for
// yyyy-mm-dd hh:mm:ss.fffffffff.
var descriptors = [...]Descriptor{
	{Boolean, "boolean", HostBoolean, 1, 1, false},
	{Byte, "byte", HostInt8, 3, 5, true},
	{Short, "short", HostInt16, 5, 6, true},
	{Integer, "integer", HostInt32, 10, 11, true},
	{Long, "long", HostInt64, 19, 20, true},
	{HalfFloat, "half_float", HostFloat32, 7, 15, true},
	{Float, "float", HostFloat32, 7, 15, true},
	{Double, "double", HostFloat64, 15, 25, true},
	{ScaledFloat, "scaled_float", HostFloat64, 15, 25, true},
	{Keyword, "keyword", HostString, 256, 0, false},
	{Text, "text", HostString, math.MaxInt32, 0, false},
	{String, "string", HostString, math.MaxInt32, 0, false},
	{IP, "ip", HostString, 15, 0, false},
	{Nested, "nested", HostStruct, 0, 0, false},
	{Object, "object", HostStruct, 0, 0, false},
	{Date, "date", HostDate, 10, 10, false},
	{Time, "time", HostTime, 8, 8, false},
	{Datetime, "datetime", HostTimestamp, 29, 29, false},
	{Timestamp, "timestamp", HostTimestamp, 29, 29, false},
	{Binary, "binary", HostBinary, math.MaxInt32, 0, false},
	{Null, "null", HostNull, 0, 0, false},
	{Undefined, "undefined", HostNull, 0, 0, false},
	{Unsupported, "unsupported", HostOther, 0, 0, false},
	{ArrayType, "array", HostArray, 0, 0, false},
}
