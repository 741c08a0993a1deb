package directive

import (
	"testing"

	"github.com/bisegni/ossql/pkg/types"
)

func TestParse(t *testing.T) {
	tests := []struct {
		line string
		want Directive
	}{
		{`\types`, Directive{Kind: Types}},
		{`  \TYPES  `, Directive{Kind: Types}},
		{`\describe keyword`, Directive{Kind: Describe, TypeName: "keyword"}},
		{`\describe Scaled_Float`, Directive{Kind: Describe, TypeName: "scaled_float"}},
		{`\describe null`, Directive{Kind: Describe, TypeName: "null"}},
		{`\fetch 25`, Directive{Kind: Fetch, Count: 25}},
		{`\columns`, Directive{Kind: Columns}},
		{`\?`, Directive{Kind: Help}},
		{`\q`, Directive{Kind: Quit}},
		{`\quit`, Directive{Kind: Quit}},
		{`\convert long 42 as int8`, Directive{Kind: Convert, TypeName: "long", Literal: types.IntValue(42), Rep: types.AsInt8}},
		{`\convert double 1.5e3 as string`, Directive{Kind: Convert, TypeName: "double", Literal: types.FloatValue(1500), Rep: types.AsString}},
		{`\convert timestamp '2015-01-01 12:10:30' as timestamp`,
			Directive{Kind: Convert, TypeName: "timestamp", Literal: types.StringValue("2015-01-01 12:10:30"), Rep: types.AsTimestamp}},
		{`\convert boolean TRUE as string`, Directive{Kind: Convert, TypeName: "boolean", Literal: types.BoolValue(true), Rep: types.AsString}},
		{`\convert keyword null as int32`, Directive{Kind: Convert, TypeName: "keyword", Literal: types.NullValue(), Rep: types.AsInt32}},
		{`\convert keyword abc as string`, Directive{Kind: Convert, TypeName: "keyword", Literal: types.StringValue("abc"), Rep: types.AsString}},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := Parse(tt.line)
			if err != nil {
				t.Fatalf("Parse() error: %v", err)
			}
			if got.Kind != tt.want.Kind || got.TypeName != tt.want.TypeName || got.Count != tt.want.Count ||
				got.Rep != tt.want.Rep || !got.Literal.Equal(tt.want.Literal) {
				t.Errorf("Parse() = %+v, want %+v", *got, tt.want)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	for _, line := range []string{
		`types`,
		`\`,
		`\bogus`,
		`\fetch`,
		`\fetch 0`,
		`\fetch -3`,
		`\fetch 2.5`,
		`\convert long 42`,
		`\convert long 42 as widget`,
		`\describe`,
	} {
		if _, err := Parse(line); err == nil {
			t.Errorf("Parse(%q) should fail", line)
		}
	}
}

func TestIsDirective(t *testing.T) {
	if !IsDirective(`  \types`) {
		t.Error("leading whitespace should be ignored")
	}
	if IsDirective(`SELECT '\' FROM t`) {
		t.Error("SQL is not a directive")
	}
}

func TestParseLiteral(t *testing.T) {
	tests := []struct {
		in   string
		want types.Value
	}{
		{"42", types.IntValue(42)},
		{"-0.25", types.FloatValue(-0.25)},
		{"'2015-01-01 12:10:30'", types.StringValue("2015-01-01 12:10:30")},
		{`"quoted"`, types.StringValue("quoted")},
		{"False", types.BoolValue(false)},
		{"NULL", types.NullValue()},
		{"word", types.StringValue("word")},
	}
	for _, tt := range tests {
		got, err := ParseLiteral(tt.in)
		if err != nil {
			t.Errorf("ParseLiteral(%q) error: %v", tt.in, err)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("ParseLiteral(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if _, err := ParseLiteral("two words"); err == nil {
		t.Error("trailing tokens should fail")
	}
}
