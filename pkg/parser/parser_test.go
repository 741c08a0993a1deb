package parser

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const firstPage = `{"schema":[{"name":"a","type":"keyword"}],"datarows":[["x"]],"cursor":"c1","status":200}`
const lastPage = `{"datarows":[["y"]],"status":200}`

func cursorOf(t *testing.T, doc Document) string {
	t.Helper()
	var m struct {
		Cursor string `json:"cursor"`
	}
	if err := json.Unmarshal(doc, &m); err != nil {
		t.Fatalf("document is not valid JSON: %v", err)
	}
	return m.Cursor
}

func TestNewParser(t *testing.T) {
	tmpDir := t.TempDir()
	jsonFile := filepath.Join(tmpDir, "pages.json")
	if err := os.WriteFile(jsonFile, []byte(firstPage), 0644); err != nil {
		t.Fatal(err)
	}

	parser, err := NewParser(jsonFile)
	if err != nil {
		t.Fatalf("NewParser failed: %v", err)
	}
	defer parser.Close()

	if parser.IsJSONL() {
		t.Error("Expected JSON file to not be detected as JSONL")
	}
}

func TestNewParserMissingFile(t *testing.T) {
	if _, err := NewParser(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestCloseKeepsRecording(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pages.jsonl")
	if err := os.WriteFile(path, []byte(firstPage+"\n"+lastPage+"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	parser, err := NewParser(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := parser.Close(); err != nil {
		t.Fatalf("Close() = %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("recording should survive Close: %v", err)
	}

	if err := NewReader(strings.NewReader(firstPage), false).Close(); err != nil {
		t.Errorf("Close() on a reader = %v", err)
	}
}

func TestReadJSONArray(t *testing.T) {
	tmpDir := t.TempDir()
	jsonFile := filepath.Join(tmpDir, "pages.json")
	content := "[" + firstPage + ",\n" + lastPage + "]"
	if err := os.WriteFile(jsonFile, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	parser, err := NewParser(jsonFile)
	if err != nil {
		t.Fatal(err)
	}
	defer parser.Close()

	docs, err := parser.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("Expected 2 documents, got %d", len(docs))
	}
	if got := cursorOf(t, docs[0]); got != "c1" {
		t.Errorf("Expected first cursor c1, got %q", got)
	}
	if got := cursorOf(t, docs[1]); got != "" {
		t.Errorf("Expected no cursor on last page, got %q", got)
	}
}

func TestReadJSONL(t *testing.T) {
	tmpDir := t.TempDir()
	jsonlFile := filepath.Join(tmpDir, "pages.jsonl")
	content := firstPage + "\n\n" + lastPage + "\n"
	if err := os.WriteFile(jsonlFile, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	parser, err := NewParser(jsonlFile)
	if err != nil {
		t.Fatal(err)
	}
	defer parser.Close()

	if !parser.IsJSONL() {
		t.Error("Expected JSONL file to be detected as JSONL")
	}
	docs, err := parser.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(docs) != 2 {
		t.Errorf("Expected 2 documents, got %d", len(docs))
	}
}

func TestReadConcatenated(t *testing.T) {
	p := NewReader(strings.NewReader(firstPage+" "+lastPage), false)
	docs, err := p.ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 2 {
		t.Errorf("Expected 2 documents, got %d", len(docs))
	}
}

func TestReadMalformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
		jsonl   bool
	}{
		{"json", `{"datarows": [`, false},
		{"jsonl", firstPage + "\n{not json}\n", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewReader(strings.NewReader(tt.content), tt.jsonl)
			if _, err := p.ReadAll(); err == nil {
				t.Error("Expected error for malformed input")
			}
		})
	}
}

func TestInlineJSON(t *testing.T) {
	parser, err := NewParser(" " + firstPage)
	if err != nil {
		t.Fatalf("NewParser failed: %v", err)
	}
	defer parser.Close()

	doc, err := parser.Read()
	if err != nil {
		t.Fatal(err)
	}
	if got := cursorOf(t, doc); got != "c1" {
		t.Errorf("Expected cursor c1, got %q", got)
	}
	if _, err := parser.Read(); err != io.EOF {
		t.Errorf("Expected io.EOF, got %v", err)
	}
}

func TestEmptyInput(t *testing.T) {
	p := NewReader(strings.NewReader(""), false)
	if _, err := p.Read(); err != io.EOF {
		t.Errorf("Expected io.EOF, got %v", err)
	}
}

func TestWriteJSONLRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	pretty := "{\n  \"datarows\": [[1]],\n  \"cursor\": \"c9\"\n}"
	if err := WriteJSONL(&buf, []byte(pretty)); err != nil {
		t.Fatal(err)
	}
	if err := WriteJSONL(&buf, []byte(lastPage)); err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(buf.String(), "\n"); n != 2 {
		t.Fatalf("Expected 2 lines, got %d: %q", n, buf.String())
	}

	docs, err := NewReader(&buf, true).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 2 || cursorOf(t, docs[0]) != "c9" {
		t.Errorf("unexpected documents: %s", docs)
	}

	if err := WriteJSONL(&buf, []byte("{broken")); err == nil {
		t.Error("Expected error for invalid document")
	}
}
