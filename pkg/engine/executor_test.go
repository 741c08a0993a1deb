package engine

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/bisegni/ossql/pkg/cursor"
	"github.com/bisegni/ossql/pkg/database"
	"github.com/bisegni/ossql/pkg/logger"
	"github.com/bisegni/ossql/pkg/protocol"
	"github.com/bisegni/ossql/pkg/types"
)

type MockTable struct {
	rows []database.Row
}

func (t *MockTable) Iterate(ctx context.Context) (database.RowIterator, error) {
	return &MockIterator{rows: t.rows, index: -1}, nil
}

type MockIterator struct {
	rows   []database.Row
	index  int
	closed bool
}

func (it *MockIterator) Next() bool {
	it.index++
	return it.index < len(it.rows)
}

func (it *MockIterator) Row() database.Row {
	return it.rows[it.index]
}

func (it *MockIterator) Error() error { return nil }
func (it *MockIterator) Close() error { it.closed = true; return nil }

func peopleTable() *MockTable {
	addr := types.NewStruct(types.StructTypeName, []types.Attribute{
		{Name: "city", Value: types.StringValue("Rome")},
		{Name: "zip", Value: types.StringValue("00100")},
	})
	tags := types.NewArray(types.Keyword, []types.Value{types.StringValue("a"), types.StringValue("b")})
	return &MockTable{rows: []database.Row{
		database.NewRemoteRow(database.OrderedMap{
			{Key: "name", Val: "Alice"}, {Key: "age", Val: int32(20)}, {Key: "addr", Val: addr}, {Key: "tags", Val: tags},
		}),
		database.NewRemoteRow(database.OrderedMap{
			{Key: "name", Val: "Bob"}, {Key: "age", Val: int32(30)}, {Key: "addr", Val: nil}, {Key: "tags", Val: nil},
		}),
	}}
}

func TestExecutorStreamsJSONL(t *testing.T) {
	var buf bytes.Buffer
	n, err := NewExecutor().Execute(context.Background(), peopleTable(), &buf)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if n != 2 {
		t.Errorf("rows = %d, want 2", n)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %s", len(lines), buf.String())
	}
	want := `{"name":"Alice","age":20,"addr":{"city":"Rome","zip":"00100"},"tags":["a","b"]}`
	if lines[0] != want {
		t.Errorf("line 0 = %s\nwant     %s", lines[0], want)
	}
}

func TestExecutorProjectionOutput(t *testing.T) {
	executor := NewExecutor()
	executor.Fields = ParseFields([]string{"name", "addr.city AS city", "tags.1"})

	var buf bytes.Buffer
	if _, err := executor.Execute(context.Background(), peopleTable(), &buf); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if lines[0] != `{"name":"Alice","city":"Rome","tags.1":"b"}` {
		t.Errorf("line 0 = %s", lines[0])
	}
	if lines[1] != `{"name":"Bob","city":null,"tags.1":null}` {
		t.Errorf("line 1 = %s", lines[1])
	}
}

func TestExecutorPrettyAndLimit(t *testing.T) {
	executor := NewExecutor()
	executor.Pretty = true
	executor.Limit = 1

	var buf bytes.Buffer
	n, err := executor.Execute(context.Background(), peopleTable(), &buf)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 || strings.Contains(buf.String(), "Bob") {
		t.Errorf("limit not honoured: %s", buf.String())
	}
	if !strings.Contains(buf.String(), "\n  \"name\": \"Alice\"") {
		t.Errorf("expected indented output, got %s", buf.String())
	}
}

func TestExecutorTree(t *testing.T) {
	executor := NewExecutor()
	executor.Tree = true

	var buf bytes.Buffer
	if _, err := executor.Execute(context.Background(), peopleTable(), &buf); err != nil {
		t.Fatal(err)
	}
	want := `row 1
├─ name: "Alice"
├─ age: 20
├─ addr (Struct)
│  ├─ city: "Rome"
│  └─ zip: "00100"
└─ tags [2 keyword]
   ├─ [0]: "a"
   └─ [1]: "b"
row 2
├─ name: "Bob"
├─ age: 30
├─ addr: null
└─ tags: null
`
	if buf.String() != want {
		t.Errorf("tree output:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestParseFields(t *testing.T) {
	got := ParseFields([]string{" a ", "", "b.c as d", "e AS f"})
	want := []Field{{Path: "a"}, {Path: "b.c", Alias: "d"}, {Path: "e", Alias: "f"}}
	if len(got) != len(want) {
		t.Fatalf("ParseFields() = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("field %d = %+v, want %+v", i, got[i], want[i])
		}
	}
	if got[1].String() != "b.c AS d" {
		t.Errorf("String() = %s", got[1].String())
	}
}

func TestCollectStats(t *testing.T) {
	reg := types.NewRegistry()
	cols := []protocol.Column{
		{Name: "n", Label: "n", Type: types.Long, Descriptor: reg.Lookup(types.Long)},
		{Name: "s", Label: "s", Type: types.Keyword, Descriptor: reg.Lookup(types.Keyword)},
	}
	first := &protocol.Page{Columns: cols, Cursor: "p2", Rows: [][]types.Value{
		{types.IntValue(1), types.StringValue("x")},
		{types.NullValue(), types.StringValue("y")},
	}}
	second := &protocol.Page{Columns: cols, Rows: [][]types.Value{
		{types.IntValue(3), types.NullValue()},
	}}
	src := pageFunc(func(ctx context.Context, token string) (*protocol.Page, error) {
		return second, nil
	})
	c := cursor.New(src, first, cursor.WithLogger(logger.Discard()))
	defer c.Close()

	stats, err := CollectStats(context.Background(), c)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Rows != 3 || stats.Pages != 2 {
		t.Errorf("rows=%d pages=%d", stats.Rows, stats.Pages)
	}
	if stats.Columns[0].Nulls() != 1 || stats.Columns[0].Kinds[types.KindInt] != 2 {
		t.Errorf("column n kinds = %v", stats.Columns[0].Kinds)
	}

	var buf bytes.Buffer
	stats.Write(&buf)
	for _, want := range []string{"Total rows: 3", "Pages: 2", "n (long):", "null: 1 (33.3%)"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("stats output missing %q:\n%s", want, buf.String())
		}
	}
}

type pageFunc func(ctx context.Context, token string) (*protocol.Page, error)

func (f pageFunc) FetchNext(ctx context.Context, token string) (*protocol.Page, error) {
	return f(ctx, token)
}
