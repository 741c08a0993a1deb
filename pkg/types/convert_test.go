package types

import (
	"errors"
	"reflect"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/bisegni/ossql/pkg/sqlerr"
	"github.com/shopspring/decimal"
)

func TestFloatToFloat64KeepsPrecision(t *testing.T) {
	conv := NewConverter(NewRegistry())
	const literal = "24.324234543532153"
	want, _ := strconv.ParseFloat(literal, 64)

	f, _ := strconv.ParseFloat(literal, 64)
	got, err := conv.Convert(FloatValue(f), Float, AsFloat64, nil)
	if err != nil {
		t.Fatalf("Convert() error: %v", err)
	}
	if got.(float64) != want {
		t.Errorf("Convert() = %v, want %v", got, want)
	}

	got, err = conv.Convert(StringValue(literal), Keyword, AsDecimal, nil)
	if err != nil {
		t.Fatalf("Convert() to decimal error: %v", err)
	}
	if got.(decimal.Decimal).String() != literal {
		t.Errorf("decimal = %v, want %s", got, literal)
	}
}

func TestUnsupportedConversionNamesPair(t *testing.T) {
	conv := NewConverter(NewRegistry())

	_, err := conv.Convert(BoolValue(true), Boolean, AsFloat64, nil)
	if !errors.Is(err, sqlerr.ErrUnsupportedConversion) {
		t.Fatalf("expected unsupported conversion, got %v", err)
	}
	if !strings.Contains(err.Error(), "boolean") || !strings.Contains(err.Error(), "float64") {
		t.Errorf("error should name type and representation: %v", err)
	}
}

func TestCompositeTypesRejectScalars(t *testing.T) {
	conv := NewConverter(NewRegistry())

	tests := []struct {
		name string
		v    Value
		typ  Type
		rep  Representation
	}{
		{"string as struct", StringValue("x"), Object, AsStruct},
		{"int as array", IntValue(1), ArrayType, AsArray},
		{"object as string", StructValue(NewStruct(StructTypeName, nil)), Object, AsString},
		{"array as int64", ArrayValue(NewArray(Long, nil)), ArrayType, AsInt64},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := conv.Convert(tt.v, tt.typ, tt.rep, nil); !errors.Is(err, sqlerr.ErrUnsupportedConversion) {
				t.Errorf("Convert() error = %v, want unsupported conversion", err)
			}
		})
	}
}

func TestNullPolicyIsTotal(t *testing.T) {
	reg := NewRegistry()
	conv := NewConverter(reg)

	for _, d := range reg.Descriptors() {
		for _, rep := range conv.Allowed(d.Type) {
			got, err := conv.Convert(NullValue(), d.Type, rep, nil)
			if err != nil {
				t.Errorf("%s/%s: unexpected error %v", d.Name, rep, err)
				continue
			}
			if !reflect.DeepEqual(got, nullOf(rep)) {
				t.Errorf("%s/%s: null converted to %#v, want %#v", d.Name, rep, got, nullOf(rep))
			}
		}
	}
}

func TestIntegerNarrowing(t *testing.T) {
	conv := NewConverter(NewRegistry())

	tests := []struct {
		name    string
		v       Value
		typ     Type
		rep     Representation
		want    any
		wantErr bool
	}{
		{"long fits int8", IntValue(126), Long, AsInt8, int8(126), false},
		{"long overflows int8", IntValue(300), Long, AsInt8, nil, true},
		{"short overflows int8", IntValue(29000), Short, AsInt8, nil, true},
		{"double truncates", FloatValue(24.9), Double, AsInt32, int32(24), false},
		{"negative truncates toward zero", FloatValue(-24.9), Double, AsInt64, int64(-24), false},
		{"double overflows int64", FloatValue(1e30), Double, AsInt64, nil, true},
		{"keyword parses", StringValue(" 42 "), Keyword, AsInt16, int16(42), false},
		{"keyword not numeric", StringValue("abc"), Keyword, AsInt32, nil, true},
		{"integer default", IntValue(5), Integer, AsDefault, int32(5), false},
		{"byte to float32", IntValue(7), Byte, AsFloat32, float32(7), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := conv.Convert(tt.v, tt.typ, tt.rep, nil)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Convert() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, sqlerr.ErrUnsupportedConversion) {
					t.Errorf("expected unsupported conversion kind, got %v", err)
				}
				return
			}
			if got != tt.want {
				t.Errorf("Convert() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestTimeFromString(t *testing.T) {
	conv := NewConverter(NewRegistry())

	tests := []struct{ in, want string }{
		{"00:00:00", "00:00:00"},
		{"01:01:01", "01:01:01"},
		{"23:59:59", "23:59:59"},
		{"1880-12-22 00:00:00", "00:00:00"},
		{"2000-01-10 01:01:01", "01:01:01"},
		{"1998-08-17 23:59:59", "23:59:59"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := conv.Convert(StringValue(tt.in), Time, AsTime, nil)
			if err != nil {
				t.Fatalf("Convert() error: %v", err)
			}
			if s := Format(got); s != tt.want {
				t.Errorf("Convert() = %s, want %s", s, tt.want)
			}

			zoned, err := conv.Convert(StringValue(tt.in), Time, AsTime, &Params{Location: time.FixedZone("X", 3*3600)})
			if err != nil {
				t.Fatalf("Convert() with zone error: %v", err)
			}
			if s := Format(zoned); s != tt.want {
				t.Errorf("Convert() with zone = %s, want %s", s, tt.want)
			}
		})
	}
}

func TestTimestampConversion(t *testing.T) {
	conv := NewConverter(NewRegistry())
	zone := time.FixedZone("EST", -5*3600)

	tests := []struct {
		name   string
		v      Value
		params *Params
		want   time.Time
	}{
		{"literal pattern", StringValue("2015-01-01 12:10:30"), nil,
			time.Date(2015, 1, 1, 12, 10, 30, 0, time.UTC)},
		{"fractional fallback", StringValue("2015-01-01 12:10:30.250"), nil,
			time.Date(2015, 1, 1, 12, 10, 30, 250_000_000, time.UTC)},
		{"iso fallback", StringValue("2015-01-01T12:10:30"), nil,
			time.Date(2015, 1, 1, 12, 10, 30, 0, time.UTC)},
		{"wall clock reprojected", StringValue("2015-01-01 12:10:30"), &Params{Location: zone},
			time.Date(2015, 1, 1, 12, 10, 30, 0, zone)},
		{"explicit offset keeps instant", StringValue("2015-01-01T12:10:30Z"), &Params{Location: zone},
			time.Date(2015, 1, 1, 7, 10, 30, 0, zone)},
		{"epoch millis", IntValue(1420114230000), nil,
			time.Date(2015, 1, 1, 12, 10, 30, 0, time.UTC)},
		{"epoch millis ignore zone for instant", IntValue(1420114230000), &Params{Location: zone},
			time.Date(2015, 1, 1, 12, 10, 30, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := conv.Convert(tt.v, Timestamp, AsTimestamp, tt.params)
			if err != nil {
				t.Fatalf("Convert() error: %v", err)
			}
			if !got.(time.Time).Equal(tt.want) {
				t.Errorf("Convert() = %v, want %v", got, tt.want)
			}
		})
	}

	if _, err := conv.Convert(StringValue("not a date"), Timestamp, AsTimestamp, nil); !errors.Is(err, sqlerr.ErrUnsupportedConversion) {
		t.Errorf("expected conversion error for garbage input, got %v", err)
	}
}

// representative returns a non-null cell that every representation in the
// whitelist of typ can read.
func representative(typ Type, rep Representation, host HostType) (Value, bool) {
	switch host {
	case HostBoolean:
		return BoolValue(true), true
	case HostInt8, HostInt16, HostInt32, HostInt64:
		return IntValue(42), true
	case HostFloat32, HostFloat64:
		return FloatValue(24.5), true
	case HostString:
		switch rep {
		case AsTimestamp, AsDate:
			return StringValue("2015-01-01 12:10:30"), true
		case AsBool:
			return StringValue("true"), true
		case AsString:
			return StringValue("hello"), true
		}
		return StringValue("42"), true
	case HostDate:
		return StringValue("2015-01-01"), true
	case HostTime:
		return StringValue("12:10:30"), true
	case HostTimestamp:
		return StringValue("2015-01-01 12:10:30"), true
	case HostBinary:
		return StringValue("aGVsbG8="), true
	}
	return Value{}, false
}

func sameHostValue(a, b any) bool {
	switch x := a.(type) {
	case time.Time:
		y, ok := b.(time.Time)
		return ok && x.Equal(y)
	case decimal.Decimal:
		y, ok := b.(decimal.Decimal)
		return ok && x.Equal(y)
	}
	return reflect.DeepEqual(a, b)
}

func TestConversionRoundTrip(t *testing.T) {
	reg := NewRegistry()
	conv := NewConverter(reg)

	for _, d := range reg.Descriptors() {
		for _, rep := range conv.Allowed(d.Type) {
			v, ok := representative(d.Type, rep, d.Host)
			if !ok {
				continue
			}
			t.Run(d.Name+"/"+rep.String(), func(t *testing.T) {
				first, err := conv.Convert(v, d.Type, rep, nil)
				if err != nil {
					t.Fatalf("Convert(%v) error: %v", v, err)
				}
				text := Format(first)
				second, err := conv.Convert(StringValue(text), d.Type, rep, nil)
				if err != nil {
					t.Fatalf("reparse of %q error: %v", text, err)
				}
				if !sameHostValue(first, second) {
					t.Errorf("round trip mismatch: %#v -> %q -> %#v", first, text, second)
				}
			})
		}
	}
}

func TestCompositeConversionReturnsSameValue(t *testing.T) {
	conv := NewConverter(NewRegistry())
	s := NewStruct(StructTypeName, []Attribute{{Name: "a", Value: IntValue(1)}})
	a := NewArray(Keyword, []Value{StringValue("x")})

	got, err := conv.Convert(StructValue(s), Object, AsDefault, nil)
	if err != nil || got.(*Struct) != s {
		t.Errorf("struct conversion = %v, %v", got, err)
	}
	got, err = conv.Convert(ArrayValue(a), ArrayType, AsArray, nil)
	if err != nil || got.(*Array) != a {
		t.Errorf("array conversion = %v, %v", got, err)
	}
}

func TestParseRepresentation(t *testing.T) {
	for r := AsDefault; r <= AsArray; r++ {
		got, err := ParseRepresentation(strings.ToUpper(r.String()))
		if err != nil || got != r {
			t.Errorf("ParseRepresentation(%s) = %v, %v", r, got, err)
		}
	}
	if _, err := ParseRepresentation("complex128"); !errors.Is(err, sqlerr.ErrInvalidArgument) {
		t.Errorf("expected invalid argument, got %v", err)
	}
}
