package types

import (
	"bytes"
	"fmt"

	"github.com/bisegni/ossql/pkg/sqlerr"
)

// Array is an immutable ordered sequence of values with a declared element
// type.
type Array struct {
	elemType Type
	elems    []Value
}

// NewArray copies elems into a new Array.
func NewArray(elemType Type, elems []Value) *Array {
	cp := make([]Value, len(elems))
	copy(cp, elems)
	return &Array{elemType: elemType, elems: cp}
}

func (a *Array) ElementType() Type { return a.elemType }
func (a *Array) Len() int          { return len(a.elems) }

// Elements returns a copy of all elements.
func (a *Array) Elements() []Value {
	cp := make([]Value, len(a.elems))
	copy(cp, a.elems)
	return cp
}

// Slice returns count elements starting at the 1-based position index.
func (a *Array) Slice(index int64, count int) ([]Value, error) {
	n := int64(len(a.elems))
	if index < 1 || index > n || count <= 0 || index+int64(count)-1 > n {
		return nil, sqlerr.InvalidArgument("array slice",
			fmt.Sprintf("invalid index %d or count %d for array of length %d", index, count, n))
	}
	from := index - 1
	out := make([]Value, count)
	copy(out, a.elems[from:from+int64(count)])
	return out, nil
}

// Equal compares the element type and the elements position by position.
func (a *Array) Equal(o *Array) bool {
	if a == o {
		return true
	}
	if a == nil || o == nil {
		return false
	}
	if a.elemType != o.elemType || len(a.elems) != len(o.elems) {
		return false
	}
	for i := range a.elems {
		if !a.elems[i].Equal(o.elems[i]) {
			return false
		}
	}
	return true
}

func (a *Array) MarshalJSON() ([]byte, error) {
	if a == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, v := range a.elems {
		if i > 0 {
			buf.WriteByte(',')
		}
		b, err := v.MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(b)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}
