package types

import (
	"bytes"
	"encoding/json"
)

// StructTypeName is the type name given to every struct decoded from a
// response.
const StructTypeName = "Struct"

// Attribute is one named member of a Struct.
type Attribute struct {
	Name  string
	Value Value
}

func (a Attribute) equal(o Attribute) bool {
	return a.Name == o.Name && a.Value.Equal(o.Value)
}

// Struct is an immutable, ordered list of attributes. Names are not
// required to be unique.
type Struct struct {
	typeName string
	attrs    []Attribute
}

// NewStruct copies attrs into a new Struct.
func NewStruct(typeName string, attrs []Attribute) *Struct {
	cp := make([]Attribute, len(attrs))
	copy(cp, attrs)
	return &Struct{typeName: typeName, attrs: cp}
}

func (s *Struct) TypeName() string { return s.typeName }
func (s *Struct) Len() int         { return len(s.attrs) }

// Attributes returns a copy of the attributes in declaration order.
func (s *Struct) Attributes() []Attribute {
	cp := make([]Attribute, len(s.attrs))
	copy(cp, s.attrs)
	return cp
}

// Get returns the first attribute named name.
func (s *Struct) Get(name string) (Value, bool) {
	for _, a := range s.attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return Value{}, false
}

// Equal reports whether o has the same type name and attribute count and
// contains every attribute of s. Order is ignored. Duplicates are not
// counted, so with repeated attributes a.Equal(b) may differ from b.Equal(a).
func (s *Struct) Equal(o *Struct) bool {
	if s == o {
		return true
	}
	if s == nil || o == nil {
		return false
	}
	if s.typeName != o.typeName || len(s.attrs) != len(o.attrs) {
		return false
	}
	for _, a := range s.attrs {
		if !o.contains(a) {
			return false
		}
	}
	return true
}

func (s *Struct) contains(a Attribute) bool {
	for _, b := range s.attrs {
		if b.equal(a) {
			return true
		}
	}
	return false
}

// MarshalJSON writes the attributes as an object in declaration order.
func (s *Struct) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, a := range s.attrs {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyBytes, err := json.Marshal(a.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')
		valBytes, err := a.Value.MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(valBytes)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
