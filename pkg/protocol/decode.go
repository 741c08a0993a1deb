package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/bisegni/ossql/pkg/sqlerr"
	"github.com/bisegni/ossql/pkg/types"
)

// DecodeRow decodes one raw data row against its column descriptors.
func DecodeRow(raw json.RawMessage, cols []types.Descriptor) ([]types.Value, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("malformed row: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '[' {
		return nil, fmt.Errorf("malformed row: expected array, got %v", tok)
	}

	row := make([]types.Value, 0, len(cols))
	for dec.More() {
		if len(row) == len(cols) {
			return nil, fmt.Errorf("malformed row: more than %d cells", len(cols))
		}
		v, err := decodeValue(dec)
		if err != nil {
			return nil, fmt.Errorf("malformed row: %w", err)
		}
		v, err = shapeCell(v, cols[len(row)])
		if err != nil {
			return nil, err
		}
		row = append(row, v)
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("malformed row: %w", err)
	}
	if len(row) != len(cols) {
		return nil, fmt.Errorf("malformed row: got %d cells, want %d", len(row), len(cols))
	}
	return row, nil
}

// shapeCell checks a decoded cell against its column type and normalizes
// numbers of floating point columns.
func shapeCell(v types.Value, d types.Descriptor) (types.Value, error) {
	if v.IsNull() {
		return v, nil
	}
	switch d.Host {
	case types.HostOther, types.HostNull:
		return v, nil
	case types.HostStruct:
		if v.Kind() == types.KindStruct {
			return v, nil
		}
		// nested fields may carry several documents
		if d.Type == types.Nested && v.Kind() == types.KindArray {
			return v, nil
		}
	case types.HostArray:
		if v.Kind() == types.KindArray {
			return v, nil
		}
	case types.HostFloat32, types.HostFloat64:
		if i, ok := v.Int(); ok {
			return types.FloatValue(float64(i)), nil
		}
		if v.Kind() != types.KindStruct && v.Kind() != types.KindArray {
			return v, nil
		}
	default:
		if v.Kind() != types.KindStruct && v.Kind() != types.KindArray {
			return v, nil
		}
	}
	return types.Value{}, sqlerr.New(sqlerr.ErrUnsupportedConversion, "decode",
		fmt.Sprintf("%s cell does not fit column type %s", v.Kind(), d.Name), nil)
}

// decodeValue reads the next JSON value. Objects keep their key order.
func decodeValue(dec *json.Decoder) (types.Value, error) {
	tok, err := dec.Token()
	if err == io.EOF {
		return types.Value{}, io.ErrUnexpectedEOF
	}
	if err != nil {
		return types.Value{}, err
	}

	switch t := tok.(type) {
	case nil:
		return types.NullValue(), nil
	case bool:
		return types.BoolValue(t), nil
	case string:
		return types.StringValue(t), nil
	case json.Number:
		return numberValue(t)
	case json.Delim:
		switch t {
		case '{':
			return decodeObject(dec)
		case '[':
			return decodeArray(dec)
		}
	}
	return types.Value{}, fmt.Errorf("unexpected token %v", tok)
}

func numberValue(n json.Number) (types.Value, error) {
	if i, err := n.Int64(); err == nil {
		return types.IntValue(i), nil
	}
	f, err := n.Float64()
	if err != nil {
		return types.Value{}, fmt.Errorf("number %s: %w", n, err)
	}
	return types.FloatValue(f), nil
}

func decodeObject(dec *json.Decoder) (types.Value, error) {
	var attrs []types.Attribute
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return types.Value{}, err
		}
		key, ok := tok.(string)
		if !ok {
			return types.Value{}, fmt.Errorf("object key %v is not a string", tok)
		}
		v, err := decodeValue(dec)
		if err != nil {
			return types.Value{}, err
		}
		attrs = append(attrs, types.Attribute{Name: key, Value: v})
	}
	if _, err := dec.Token(); err != nil {
		return types.Value{}, err
	}
	return types.StructValue(types.NewStruct(types.StructTypeName, attrs)), nil
}

func decodeArray(dec *json.Decoder) (types.Value, error) {
	var elems []types.Value
	for dec.More() {
		v, err := decodeValue(dec)
		if err != nil {
			return types.Value{}, err
		}
		elems = append(elems, v)
	}
	if _, err := dec.Token(); err != nil {
		return types.Value{}, err
	}
	return types.ArrayValue(types.NewArray(elementType(elems), elems)), nil
}

// elementType infers the element type of an array from its first non-null
// element. Integers mixed with fractional numbers widen to double.
func elementType(elems []types.Value) types.Type {
	for i, e := range elems {
		switch e.Kind() {
		case types.KindBool:
			return types.Boolean
		case types.KindInt:
			for _, rest := range elems[i+1:] {
				if rest.Kind() == types.KindFloat {
					return types.Double
				}
			}
			return types.Long
		case types.KindFloat:
			return types.Double
		case types.KindString:
			return types.Keyword
		case types.KindStruct:
			return types.Object
		case types.KindArray:
			return types.ArrayType
		}
	}
	return types.Undefined
}
