package database

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/bisegni/ossql/pkg/types"
)

// KeyVal is one labelled cell of a row.
type KeyVal struct {
	Key string
	Val interface{}
}

// OrderedMap is a row keyed by column label in column order. Labels may
// repeat, so it is a slice rather than a map.
type OrderedMap []KeyVal

// MarshalJSON implements the json.Marshaler interface.
func (om OrderedMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, kv := range om {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyBytes, err := json.Marshal(kv.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')
		valBytes, err := json.Marshal(kv.Val)
		if err != nil {
			return nil, err
		}
		buf.Write(valBytes)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Get returns the value for a key (O(N) lookup, but explicit for small projections)
func (om OrderedMap) Get(key string) (interface{}, bool) {
	for _, kv := range om {
		if kv.Key == key {
			return kv.Val, true
		}
	}
	return nil, false
}

// Keys returns the labels in order.
func (om OrderedMap) Keys() []string {
	keys := make([]string, len(om))
	for i, kv := range om {
		keys[i] = kv.Key
	}
	return keys
}

// Lookup resolves a dotted path such as "address.city" or "tags.0". The
// first segment is a label; later segments name struct attributes or
// zero-based array positions. A label that itself contains dots is
// matched before the path is split.
func (om OrderedMap) Lookup(path string) (interface{}, error) {
	if v, ok := om.Get(path); ok {
		return v, nil
	}
	parts := strings.Split(path, ".")
	cur, ok := om.Get(parts[0])
	if !ok {
		return nil, fmt.Errorf("no column %q", parts[0])
	}
	for _, part := range parts[1:] {
		next, err := step(cur, part)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		cur = next
	}
	return cur, nil
}

func step(cur interface{}, part string) (interface{}, error) {
	switch v := cur.(type) {
	case *types.Struct:
		if v == nil {
			return nil, nil
		}
		val, ok := v.Get(part)
		if !ok {
			return nil, fmt.Errorf("no attribute %q", part)
		}
		return val.Interface(), nil
	case *types.Array:
		if v == nil {
			return nil, nil
		}
		idx, err := strconv.Atoi(part)
		if err != nil || idx < 0 || idx >= v.Len() {
			return nil, fmt.Errorf("invalid array position %q", part)
		}
		return v.Elements()[idx].Interface(), nil
	case nil:
		return nil, nil
	}
	return nil, fmt.Errorf("cannot descend into %T with %q", cur, part)
}

// String implements fmt.Stringer
func (om OrderedMap) String() string {
	b, _ := om.MarshalJSON()
	return string(b)
}
