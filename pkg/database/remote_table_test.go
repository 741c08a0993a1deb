package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bisegni/ossql/pkg/logger"
	"github.com/bisegni/ossql/pkg/protocol"
	"github.com/bisegni/ossql/pkg/sqlerr"
	"github.com/bisegni/ossql/pkg/types"
)

func newTable(t *testing.T, docs ...string) *RemoteTable {
	t.Helper()
	raw := make([][]byte, len(docs))
	for i, d := range docs {
		raw[i] = []byte(d)
	}
	calls := 0
	tr := protocol.TransportFunc(func(ctx context.Context, body []byte) ([]byte, error) {
		if calls >= len(raw) {
			return nil, errors.New("no more pages")
		}
		calls++
		return raw[calls-1], nil
	})
	f := protocol.NewFetcher(tr, types.NewRegistry(), protocol.WithLogger(logger.Discard()))
	return NewRemoteTable(f, "SELECT * FROM people", 2)
}

func TestRemoteTableIterate(t *testing.T) {
	table := newTable(t,
		`{"schema":[{"name":"name","type":"keyword"},{"name":"age","alias":"years","type":"integer"},{"name":"addr","type":"object"},{"name":"seen","type":"timestamp"}],
		  "datarows":[["alice",30,{"city":"Rome","zip":"00100"},"2015-01-01 12:10:30"],["bob",null,null,null]],
		  "cursor":"next"}`,
		`{"datarows":[["carol",41,{"city":"Oslo"},"2020-02-29 00:00:00"]]}`,
	)

	it, err := table.Iterate(context.Background())
	if err != nil {
		t.Fatalf("Iterate() error: %v", err)
	}
	defer it.Close()

	var rows []OrderedMap
	for it.Next() {
		rows = append(rows, it.Row().Primitive().(OrderedMap))
	}
	if err := it.Error(); err != nil {
		t.Fatalf("iteration error: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}

	keys := rows[0].Keys()
	if keys[1] != "years" {
		t.Errorf("row should be keyed by label, got %v", keys)
	}
	if v, _ := rows[0].Get("years"); v != int32(30) {
		t.Errorf("years = %#v, want int32(30)", v)
	}
	if v, _ := rows[0].Get("seen"); !v.(time.Time).Equal(time.Date(2015, 1, 1, 12, 10, 30, 0, time.UTC)) {
		t.Errorf("seen = %v", v)
	}
	if v, ok := rows[1].Get("years"); !ok || v != nil {
		t.Errorf("null cell = %#v, want nil", v)
	}

	city, err := it.Row().Get("addr.city")
	if err != nil || city != "Oslo" {
		t.Errorf("addr.city = %v, %v", city, err)
	}
	if _, err := it.Row().Get("addr.street"); err == nil {
		t.Error("missing attribute should fail")
	}

	if it.(*CursorIterator).Cursor().PagesFetched() != 2 {
		t.Errorf("pages = %d", it.(*CursorIterator).Cursor().PagesFetched())
	}
}

func TestRemoteTableFetchError(t *testing.T) {
	table := newTable(t, `{"schema":[{"name":"n","type":"long"}],"datarows":[[1]],"cursor":"c"}`)
	it, err := table.Iterate(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	defer it.Close()

	n := 0
	for it.Next() {
		n++
	}
	if n != 1 || !errors.Is(it.Error(), sqlerr.ErrTransport) {
		t.Errorf("rows=%d err=%v", n, it.Error())
	}
}

func TestOrderedMapLookup(t *testing.T) {
	inner := types.NewStruct(types.StructTypeName, []types.Attribute{{Name: "k", Value: types.IntValue(7)}})
	arr := types.NewArray(types.Keyword, []types.Value{types.StringValue("a"), types.StringValue("b")})
	om := OrderedMap{
		{Key: "s", Val: inner},
		{Key: "tags", Val: arr},
		{Key: "dotted.label", Val: "x"},
		{Key: "empty", Val: nil},
	}

	tests := []struct {
		path    string
		want    interface{}
		wantErr bool
	}{
		{"s.k", int64(7), false},
		{"tags.1", "b", false},
		{"dotted.label", "x", false},
		{"empty.anything", nil, false},
		{"tags.5", nil, true},
		{"missing", nil, true},
		{"dotted.label.more", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := om.Lookup(tt.path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Lookup() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("Lookup() = %#v, want %#v", got, tt.want)
			}
		})
	}

	if om.String() != `{"s":{"k":7},"tags":["a","b"],"dotted.label":"x","empty":null}` {
		t.Errorf("String() = %s", om.String())
	}
}
