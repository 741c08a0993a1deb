package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/bisegni/ossql/pkg/database"
)

// Field selects a value from each row, optionally under another label.
type Field struct {
	Path  string
	Alias string
}

func (f Field) String() string {
	if f.Alias != "" && f.Alias != f.Path {
		return f.Path + " AS " + f.Alias
	}
	return f.Path
}

// ParseFields reads --select specs of the form "path" or "path AS alias".
func ParseFields(specs []string) []Field {
	var fields []Field
	for _, spec := range specs {
		spec = strings.TrimSpace(spec)
		if spec == "" {
			continue
		}
		f := Field{Path: spec}
		if i := strings.Index(strings.ToUpper(spec), " AS "); i > 0 {
			f.Path = strings.TrimSpace(spec[:i])
			f.Alias = strings.TrimSpace(spec[i+4:])
		}
		fields = append(fields, f)
	}
	return fields
}

// Executor streams the rows of a table to a writer
type Executor struct {
	Pretty bool
	Tree   bool
	Fields []Field
	// Limit stops after that many rows when positive.
	Limit int
}

func NewExecutor() *Executor {
	return &Executor{
		Pretty: false,
	}
}

// Execute writes every row of input to w as JSONL, or as a tree per row
// when Tree is set. It returns the number of rows written.
func (e *Executor) Execute(ctx context.Context, input database.Table, w io.Writer) (int, error) {
	table := e.BuildTable(input)

	iterator, err := table.Iterate(ctx)
	if err != nil {
		return 0, err
	}
	defer iterator.Close()

	encoder := json.NewEncoder(w)
	if e.Pretty {
		encoder.SetIndent("", "  ")
	} else {
		encoder.SetIndent("", "")
	}

	n := 0
	for (e.Limit <= 0 || n < e.Limit) && iterator.Next() {
		row := iterator.Row().Primitive()
		n++
		if e.Tree {
			om, ok := row.(database.OrderedMap)
			if !ok {
				return n, fmt.Errorf("tree output needs labelled rows, got %T", row)
			}
			if _, err := io.WriteString(w, FormatTree(fmt.Sprintf("row %d", n), om)); err != nil {
				return n, err
			}
			continue
		}
		if err := encoder.Encode(row); err != nil {
			return n, err
		}
	}

	if err := iterator.Error(); err != nil {
		return n, err
	}
	return n, nil
}

// BuildTable wraps input with a projection when fields are selected.
func (e *Executor) BuildTable(input database.Table) database.Table {
	if len(e.Fields) == 0 {
		return input
	}
	return &ProjectTable{source: input, fields: e.Fields}
}

// ProjectTable wraps a source table and selects specific fields
type ProjectTable struct {
	source database.Table
	fields []Field
}

func (t *ProjectTable) Iterate(ctx context.Context) (database.RowIterator, error) {
	srcIter, err := t.source.Iterate(ctx)
	if err != nil {
		return nil, err
	}
	return &projectIterator{source: srcIter, fields: t.fields}, nil
}

type projectIterator struct {
	source     database.RowIterator
	fields     []Field
	currentRow database.Row
}

func (it *projectIterator) Next() bool {
	if !it.source.Next() {
		return false
	}
	srcRow := it.source.Row()

	newRow := make(database.OrderedMap, len(it.fields))
	for i, f := range it.fields {
		key := f.Alias
		if key == "" {
			key = f.Path
		}
		val, err := srcRow.Get(f.Path)
		if err != nil {
			// Field missing? nil
			val = nil
		}
		newRow[i] = database.KeyVal{Key: key, Val: val}
	}
	it.currentRow = database.NewRemoteRow(newRow)
	return true
}

func (it *projectIterator) Row() database.Row {
	return it.currentRow
}

func (it *projectIterator) Error() error {
	return it.source.Error()
}

func (it *projectIterator) Close() error {
	return it.source.Close()
}
