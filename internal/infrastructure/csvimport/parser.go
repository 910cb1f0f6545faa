// Package csvimport reads spreadsheet exports for bulk master-data loads.
//
// A file is a header row followed by data rows. Header names are matched
// case-insensitively, blank rows are skipped and every row keeps the line
// number it started on so errors can point back into the file.
package csvimport

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

const encodingProbe = 4096

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Parser reads rows keyed by header name
type Parser struct {
	reader  *csv.Reader
	headers []string
	index   map[string]int
	maxRows int
	rows    int
}

// Option configures a Parser
type Option func(*Parser)

// WithDelimiter sets the field delimiter (default is comma)
func WithDelimiter(d rune) Option {
	return func(p *Parser) {
		p.reader.Comma = d
	}
}

// WithMaxRows caps the number of data rows. Zero means no limit.
func WithMaxRows(n int) Option {
	return func(p *Parser) {
		p.maxRows = n
	}
}

// NewParser strips a UTF-8 BOM, checks the encoding and reads the header row
func NewParser(r io.Reader, opts ...Option) (*Parser, error) {
	br := bufio.NewReaderSize(r, encodingProbe)
	head, err := br.Peek(encodingProbe)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	truncated := len(head) == encodingProbe
	if bytes.HasPrefix(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
		head = head[len(utf8BOM):]
	}
	if len(bytes.TrimSpace(head)) == 0 {
		return nil, ErrEmptyFile
	}
	if !validUTF8Prefix(head, truncated) {
		return nil, ErrInvalidEncoding
	}

	cr := csv.NewReader(br)
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	p := &Parser{reader: cr, index: make(map[string]int)}
	for _, opt := range opts {
		opt(p)
	}

	record, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrMissingHeader
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	for i, h := range record {
		name := normalizeHeader(h)
		if name == "" {
			continue
		}
		if _, dup := p.index[name]; dup {
			return nil, fmt.Errorf("%w: column %q appears twice", ErrInvalidHeader, name)
		}
		p.index[name] = i
		p.headers = append(p.headers, name)
	}
	if len(p.headers) == 0 {
		return nil, ErrMissingHeader
	}
	return p, nil
}

// validUTF8Prefix tolerates a multi-byte rune cut off by the probe window
func validUTF8Prefix(b []byte, truncated bool) bool {
	if utf8.Valid(b) {
		return true
	}
	if !truncated {
		return false
	}
	for i := len(b) - 1; i >= 0 && i >= len(b)-utf8.UTFMax; i-- {
		if utf8.RuneStart(b[i]) {
			return !utf8.FullRune(b[i:]) && utf8.Valid(b[:i])
		}
	}
	return false
}

func normalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}

// Headers returns the normalized header names in file order
func (p *Parser) Headers() []string {
	return p.headers
}

// Missing returns the columns from required that the header lacks
func (p *Parser) Missing(required ...string) []string {
	var missing []string
	for _, col := range required {
		if _, ok := p.index[normalizeHeader(col)]; !ok {
			missing = append(missing, col)
		}
	}
	return missing
}

// Row is one data row
type Row struct {
	Line   int
	values map[string]string
}

// Get returns the trimmed value of a column, empty when absent
func (r Row) Get(column string) string {
	return r.values[normalizeHeader(column)]
}

func (r Row) empty() bool {
	for _, v := range r.values {
		if v != "" {
			return false
		}
	}
	return true
}

// Next returns the next non-blank row, or io.EOF after the last one.
// A malformed row is reported as a *RowError and reading can continue.
func (p *Parser) Next() (Row, error) {
	for {
		record, err := p.reader.Read()
		if errors.Is(err, io.EOF) {
			return Row{}, io.EOF
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				return Row{}, &RowError{Row: parseErr.StartLine, Code: CodeMalformed, Message: parseErr.Err.Error()}
			}
			return Row{}, fmt.Errorf("failed to read row: %w", err)
		}
		line, _ := p.reader.FieldPos(0)

		row := Row{Line: line, values: make(map[string]string, len(p.headers))}
		for name, i := range p.index {
			if i < len(record) {
				row.values[name] = strings.TrimSpace(record[i])
			}
		}
		if row.empty() {
			continue
		}
		p.rows++
		if p.maxRows > 0 && p.rows > p.maxRows {
			return Row{}, fmt.Errorf("%w: limit is %d", ErrTooManyRows, p.maxRows)
		}
		return row, nil
	}
}

// ReadAll drains the parser. Malformed rows are collected into errs; any other
// failure stops the read.
func (p *Parser) ReadAll(errs *Errors) ([]Row, error) {
	var rows []Row
	for {
		row, err := p.Next()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		var rowErr *RowError
		if errors.As(err, &rowErr) {
			errs.Add(*rowErr)
			continue
		}
		if err != nil {
			return rows, err
		}
		rows = append(rows, row)
	}
}
