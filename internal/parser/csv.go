package parser

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// DefaultDelimiter is used when no better delimiter can be detected.
const DefaultDelimiter = ','

var utf8BOM = []byte("\xef\xbb\xbf")

// Field is one cell of a record, keyed by its header name.
type Field struct {
	Column string
	Value  string
}

// Record is a data row in header order.
type Record []Field

// Table is header CSV content: the header row and every data row after it.
type Table struct {
	Delimiter rune
	Header    []string
	Records   []Record
}

// ParseTable reads data as delimited text with the first line as header.
// Blank lines are skipped. Short rows are padded with empty values and
// surplus fields are dropped. Duplicate header names are made unique with a
// numeric suffix ("a", "a_1", ...).
func ParseTable(data []byte, delimiter rune) (*Table, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	r := newCSVReader(bytes.NewReader(data), delimiter)

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return &Table{Delimiter: delimiter}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	header = uniqueHeader(header)

	table := &Table{
		Delimiter: delimiter,
		Header:    header,
		Records:   make([]Record, 0),
	}

	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading record %d: %w", len(table.Records)+1, err)
		}

		rec := make(Record, len(header))
		for i, col := range header {
			rec[i].Column = col
			if i < len(row) {
				rec[i].Value = row[i]
			}
		}
		table.Records = append(table.Records, rec)
	}

	return table, nil
}

func newCSVReader(r io.Reader, delimiter rune) *csv.Reader {
	cr := csv.NewReader(r)
	cr.Comma = delimiter
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = false
	return cr
}

// uniqueHeader renames repeated names so every column keeps its own entry.
func uniqueHeader(header []string) []string {
	out := make([]string, len(header))
	seen := make(map[string]struct{}, len(header))
	counts := make(map[string]int, len(header))

	for i, name := range header {
		candidate := name
		if _, dup := seen[candidate]; dup {
			n := counts[name]
			for {
				n++
				candidate = name + "_" + strconv.Itoa(n)
				if _, taken := seen[candidate]; !taken {
					break
				}
			}
			counts[name] = n
		}
		seen[candidate] = struct{}{}
		out[i] = candidate
	}
	return out
}
