// Package parser turns CSV content into an inferred column schema.
package parser

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/settings-generator/backend/internal/models"
)

var (
	// ErrReadFailure means the file content could not be read.
	ErrReadFailure = errors.New("could not read file content")
	// ErrEmptySample means there is no first data row to infer types from.
	ErrEmptySample = errors.New("file has no data rows to infer column types from")
)

// Source opens the content of an uploaded file.
type Source interface {
	Open() (io.ReadCloser, error)
}

// FileSource reads from a path on the local filesystem.
type FileSource string

func (p FileSource) Open() (io.ReadCloser, error) {
	return os.Open(string(p))
}

// BytesSource serves content already held in memory.
type BytesSource []byte

func (b BytesSource) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(b)), nil
}

// SchemaParser infers a ColumnTypeMap from header CSV content.
type SchemaParser struct {
	sniffer Sniffer
}

// NewSchemaParser creates a parser that detects delimiters with sniffer.
// A nil sniffer selects the built-in guess sniffer.
func NewSchemaParser(sniffer Sniffer) *SchemaParser {
	if sniffer == nil {
		sniffer = NewGuessSniffer()
	}
	return &SchemaParser{sniffer: sniffer}
}

// SnifferName reports which sniffer the parser uses.
func (p *SchemaParser) SnifferName() string {
	return p.sniffer.Name()
}

// InferSchema reads the whole content of src, parses it with the first line
// as header and classifies every column from the first data row only.
func (p *SchemaParser) InferSchema(ctx context.Context, src Source) (models.ColumnTypeMap, error) {
	data, err := ReadAll(ctx, src)
	if err != nil {
		return models.ColumnTypeMap{}, err
	}

	table, err := p.Parse(ctx, data)
	if err != nil {
		return models.ColumnTypeMap{}, err
	}

	first, err := table.First()
	if err != nil {
		return models.ColumnTypeMap{}, err
	}

	return Classify(first), nil
}

// ReadAll loads the full content of src. It is all-or-nothing.
func ReadAll(ctx context.Context, src Source) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rc, err := src.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadFailure, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadFailure, err)
	}
	return data, nil
}

// Parse detects the delimiter and reads data as a header table. When the
// sniffer fails the default delimiter is used.
func (p *SchemaParser) Parse(ctx context.Context, data []byte) (*Table, error) {
	delim, err := p.sniffer.Sniff(ctx, data)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		delim = DefaultDelimiter
	}

	table, err := ParseTable(data, delim)
	if err != nil {
		return nil, fmt.Errorf("parsing csv: %w", err)
	}
	return table, nil
}

// First returns the first data row, the only row used for inference.
func (t *Table) First() (Record, error) {
	if len(t.Header) == 0 {
		return nil, fmt.Errorf("%w: missing header row", ErrEmptySample)
	}
	if len(t.Records) == 0 {
		return nil, fmt.Errorf("%w: header has %d columns but no rows follow", ErrEmptySample, len(t.Header))
	}
	return t.Records[0], nil
}

// Classify builds the column type map for a sampled record, in header order.
func Classify(rec Record) models.ColumnTypeMap {
	m := models.NewColumnTypeMap(len(rec))
	for _, f := range rec {
		m.Set(f.Column, InferType(f.Value))
	}
	return *m
}
