package types

import (
	"sort"
	"strings"

	"github.com/bisegni/ossql/pkg/sqlerr"
)

// Registry resolves domain type names to descriptors. It is built once and
// is read-only afterwards, so a single instance can be shared by every
// fetcher and cursor.
type Registry struct {
	byName map[string]Descriptor
	byHost map[HostType]Type
}

// NewRegistry builds the registry of all known domain types.
func NewRegistry() *Registry {
	r := &Registry{
		byName: make(map[string]Descriptor, len(descriptors)),
		byHost: map[HostType]Type{
			HostNull:      Undefined,
			HostBoolean:   Boolean,
			HostInt8:      Byte,
			HostInt16:     Short,
			HostInt32:     Integer,
			HostInt64:     Long,
			HostFloat32:   Float,
			HostFloat64:   Double,
			HostString:    Keyword,
			HostTimestamp: Timestamp,
			HostTime:      Time,
			HostDate:      Date,
			HostBinary:    Binary,
			HostStruct:    Object,
			HostArray:     ArrayType,
		},
	}
	for _, d := range descriptors {
		r.byName[d.Name] = d
	}
	return r
}

// Describe returns the descriptor for a service type name. Names are matched
// case-insensitively. An unknown name fails in strict mode and otherwise
// degrades to the unsupported descriptor.
func (r *Registry) Describe(name string, strict bool) (Descriptor, error) {
	if d, ok := r.byName[strings.ToLower(strings.TrimSpace(name))]; ok {
		return d, nil
	}
	if strict {
		return Descriptor{}, sqlerr.UnrecognizedType(name)
	}
	return descriptors[Unsupported], nil
}

// Lookup returns the descriptor of a known type.
func (r *Registry) Lookup(t Type) Descriptor {
	if t < 0 || int(t) >= len(descriptors) {
		return descriptors[Unsupported]
	}
	return descriptors[t]
}

// CanonicalFor returns the domain type a host type maps back to.
func (r *Registry) CanonicalFor(host HostType) (Type, error) {
	t, ok := r.byHost[host]
	if !ok {
		return Unsupported, sqlerr.UnsupportedConversion(host.String(), "domain type")
	}
	return t, nil
}

// Descriptors lists every descriptor sorted by name.
func (r *Registry) Descriptors() []Descriptor {
	out := make([]Descriptor, 0, len(r.byName))
	for _, d := range r.byName {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
