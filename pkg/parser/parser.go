package parser

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

// Document is one raw response document as returned by the service.
type Document = json.RawMessage

// Parser reads recorded response documents from a JSON or JSONL source.
// A JSON source may hold a single document, a stream of documents or an
// array of documents; a JSONL source holds one document per line.
type Parser struct {
	file    *os.File
	reader  io.Reader
	isJSONL bool

	decoder   *json.Decoder
	scanner   *bufio.Scanner
	bufReader *bufio.Reader

	startArrayChecked bool
	inArray           bool
}

// NewParser creates a new parser for the given file
// Special cases:
// - Empty string or "-" reads from stdin
// - Strings starting with '{' or '[' are treated as inline JSON
func NewParser(filename string) (*Parser, error) {
	trimmed := strings.TrimSpace(filename)
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		return NewReader(strings.NewReader(trimmed), false), nil
	}
	if filename == "" || filename == "-" {
		p := NewReader(os.Stdin, false)
		p.file = os.Stdin
		return p, nil
	}

	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	p := NewReader(file, strings.HasSuffix(filename, ".jsonl"))
	p.file = file
	return p, nil
}

// NewReader creates a parser over an arbitrary reader.
func NewReader(r io.Reader, isJSONL bool) *Parser {
	p := &Parser{reader: r, isJSONL: isJSONL}
	if isJSONL {
		p.scanner = bufio.NewScanner(r)
		p.scanner.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	} else {
		// Use bufio.Reader to allow peeking
		p.bufReader = bufio.NewReader(r)
		p.decoder = json.NewDecoder(p.bufReader)
	}
	return p
}

// Close closes the underlying file. Stdin and caller-supplied readers are
// left open.
func (p *Parser) Close() error {
	if p.file == nil || p.file == os.Stdin {
		return nil
	}
	return p.file.Close()
}

// IsJSONL returns whether the parser is treating the file as JSONL
func (p *Parser) IsJSONL() bool {
	return p.isJSONL
}

// Read returns the next document, or io.EOF when the source is exhausted.
func (p *Parser) Read() (Document, error) {
	if p.isJSONL {
		for p.scanner.Scan() {
			line := bytes.TrimSpace(p.scanner.Bytes())
			if len(line) == 0 {
				continue
			}
			if !json.Valid(line) {
				return nil, fmt.Errorf("failed to parse JSONL document: invalid JSON")
			}
			doc := make(Document, len(line))
			copy(doc, line)
			return doc, nil
		}
		if err := p.scanner.Err(); err != nil {
			return nil, err
		}
		return nil, io.EOF
	}

	if !p.startArrayChecked {
		// Peek first non-whitespace byte
		for {
			b, err := p.bufReader.Peek(1)
			if err != nil {
				return nil, err
			}
			c := b[0]
			if c == ' ' || c == '\n' || c == '\t' || c == '\r' {
				p.bufReader.ReadByte() // consume whitespace
				continue
			}
			if c == '[' {
				p.inArray = true
				p.decoder.Token() // consume '['
			}
			p.startArrayChecked = true
			break
		}
	}

	if p.inArray && !p.decoder.More() {
		t, err := p.decoder.Token()
		if err != nil {
			return nil, err
		}
		if delim, ok := t.(json.Delim); ok && delim == ']' {
			p.inArray = false
			return nil, io.EOF
		}
		return nil, fmt.Errorf("expected array end, got %v", t)
	}

	var doc Document
	if err := p.decoder.Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("failed to decode JSON document: %w", err)
	}
	return doc, nil
}

// ReadAll reads every remaining document.
func (p *Parser) ReadAll() ([]Document, error) {
	var docs []Document
	for {
		doc, err := p.Read()
		if err == io.EOF {
			return docs, nil
		}
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
}

// WriteJSONL appends doc to w as a single compact line.
func WriteJSONL(w io.Writer, doc []byte) error {
	var buf bytes.Buffer
	if err := json.Compact(&buf, doc); err != nil {
		return fmt.Errorf("failed to compact document: %w", err)
	}
	buf.WriteByte('\n')
	_, err := w.Write(buf.Bytes())
	return err
}
