// Package directive parses the backslash commands of the interactive shell.
package directive

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/bisegni/ossql/pkg/types"
)

// Kind identifies a directive.
type Kind int

const (
	Types Kind = iota
	Describe
	Fetch
	Convert
	Columns
	Help
	Quit
)

// Directive is a parsed shell command.
type Directive struct {
	Kind     Kind
	TypeName string               // Describe, Convert
	Count    int                  // Fetch
	Literal  types.Value          // Convert
	Rep      types.Representation // Convert
}

// AST

type astDirective struct {
	Types    bool        `parser:"  @'types'"`
	Describe *string     `parser:"| 'describe' @(Ident | Keyword)"`
	Fetch    *int        `parser:"| 'fetch' @Number"`
	Convert  *astConvert `parser:"| 'convert' @@"`
	Columns  bool        `parser:"| @'columns'"`
	Help     bool        `parser:"| @('help' | '?')"`
	Quit     bool        `parser:"| @('quit' | 'q' | 'exit')"`
}

type astConvert struct {
	Type    string      `parser:"@(Ident | Keyword)"`
	Literal *astLiteral `parser:"@@"`
	Rep     string      `parser:"'as' @(Ident | Keyword)"`
}

type astLiteral struct {
	Null   bool    `parser:"  @'null'"`
	Bool   *string `parser:"| @('true' | 'false')"`
	Number *string `parser:"| @Number"`
	String *string `parser:"| @String"`
	Word   *string `parser:"| @Ident"`
}

var (
	directiveLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Keyword", Pattern: `(?i)\b(types|describe|fetch|convert|columns|help|quit|exit|q|as|null|true|false)\b`},
		{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
		{Name: "Number", Pattern: `[-+]?\d+(\.\d+)?([eE][-+]?\d+)?`},
		{Name: "String", Pattern: `'[^']*'|"[^"]*"`},
		{Name: "Punct", Pattern: `[?]`},
		{Name: "Whitespace", Pattern: `\s+`},
	})

	directiveParser = participle.MustBuild[astDirective](
		participle.Lexer(directiveLexer),
		participle.Unquote("String"),
		participle.CaseInsensitive("Keyword"),
		participle.Elide("Whitespace"),
	)

	literalParser = participle.MustBuild[astLiteral](
		participle.Lexer(directiveLexer),
		participle.Unquote("String"),
		participle.CaseInsensitive("Keyword"),
		participle.Elide("Whitespace"),
	)
)

// IsDirective reports whether line is a shell command rather than SQL.
func IsDirective(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), `\`)
}

// Parse parses a line such as `\describe keyword` or
// `\convert long '42' as int8`.
func Parse(line string) (*Directive, error) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, `\`) {
		return nil, fmt.Errorf("not a directive: %q", line)
	}
	ast, err := directiveParser.ParseString("", line[1:])
	if err != nil {
		return nil, fmt.Errorf("invalid directive %q: %w", line, err)
	}
	return ast.toDirective()
}

func (a *astDirective) toDirective() (*Directive, error) {
	switch {
	case a.Types:
		return &Directive{Kind: Types}, nil
	case a.Describe != nil:
		return &Directive{Kind: Describe, TypeName: strings.ToLower(*a.Describe)}, nil
	case a.Fetch != nil:
		if *a.Fetch <= 0 {
			return nil, fmt.Errorf("fetch count must be positive, got %d", *a.Fetch)
		}
		return &Directive{Kind: Fetch, Count: *a.Fetch}, nil
	case a.Convert != nil:
		rep, err := types.ParseRepresentation(a.Convert.Rep)
		if err != nil {
			return nil, err
		}
		lit, err := a.Convert.Literal.value()
		if err != nil {
			return nil, err
		}
		return &Directive{Kind: Convert, TypeName: strings.ToLower(a.Convert.Type), Literal: lit, Rep: rep}, nil
	case a.Columns:
		return &Directive{Kind: Columns}, nil
	case a.Help:
		return &Directive{Kind: Help}, nil
	case a.Quit:
		return &Directive{Kind: Quit}, nil
	}
	return nil, fmt.Errorf("empty directive")
}

// ParseLiteral reads a single literal: a number, a quoted or bare string,
// true, false or null.
func ParseLiteral(s string) (types.Value, error) {
	ast, err := literalParser.ParseString("", s)
	if err != nil {
		return types.Value{}, fmt.Errorf("invalid literal %q: %w", s, err)
	}
	return ast.value()
}

// value maps the literal onto the decoded value the service would send.
func (l *astLiteral) value() (types.Value, error) {
	switch {
	case l.Null:
		return types.NullValue(), nil
	case l.Bool != nil:
		return types.BoolValue(strings.EqualFold(*l.Bool, "true")), nil
	case l.Number != nil:
		if i, err := strconv.ParseInt(*l.Number, 10, 64); err == nil {
			return types.IntValue(i), nil
		}
		f, err := strconv.ParseFloat(*l.Number, 64)
		if err != nil {
			return types.Value{}, fmt.Errorf("invalid number %s: %w", *l.Number, err)
		}
		return types.FloatValue(f), nil
	case l.String != nil:
		return types.StringValue(*l.String), nil
	case l.Word != nil:
		return types.StringValue(*l.Word), nil
	}
	return types.NullValue(), nil
}

// Usage lists the directives.
const Usage = `\types                              list domain types
\describe <type>                    show a type descriptor and its conversions
\fetch <n>                          print the next n rows of the open result
\columns                            show the columns of the open result
\convert <type> <literal> as <rep>  convert a literal
\help                               this text
\quit                               leave the shell`
