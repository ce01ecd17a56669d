package parser

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/settings-generator/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func inferString(t *testing.T, content string) (models.ColumnTypeMap, error) {
	t.Helper()
	return NewSchemaParser(nil).InferSchema(context.Background(), BytesSource(content))
}

func typesOf(m models.ColumnTypeMap) map[string]models.ColumnType {
	out := make(map[string]models.ColumnType, m.Len())
	for _, c := range m.Columns() {
		out[c], _ = m.Get(c)
	}
	return out
}

func TestInferSchema(t *testing.T) {
	m, err := inferString(t, "a,b,c\ntrue,42,hello\n")
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "c"}, m.Columns())
	assert.Equal(t, map[string]models.ColumnType{
		"a": models.ColumnTypeBool,
		"b": models.ColumnTypeInt,
		"c": models.ColumnTypeString,
	}, typesOf(m))
}

func TestInferSchema_OneIsBool(t *testing.T) {
	m, err := inferString(t, "flag\n1\n")
	require.NoError(t, err)

	typ, ok := m.Get("flag")
	require.True(t, ok)
	assert.Equal(t, models.ColumnTypeBool, typ)
}

func TestInferSchema_DecimalIsInt(t *testing.T) {
	m, err := inferString(t, "pi\n3.14\n")
	require.NoError(t, err)

	typ, _ := m.Get("pi")
	assert.Equal(t, models.ColumnTypeInt, typ)
}

func TestInferSchema_OnlyFirstRowSampled(t *testing.T) {
	m, err := inferString(t, "x,y\n1,abc\nhello,2\n")
	require.NoError(t, err)

	assert.Equal(t, map[string]models.ColumnType{
		"x": models.ColumnTypeBool,
		"y": models.ColumnTypeString,
	}, typesOf(m))
}

func TestInferSchema_DetectsDelimiter(t *testing.T) {
	m, err := inferString(t, "age;smoker;site\n54;False;Boston\n")
	require.NoError(t, err)

	assert.Equal(t, []string{"age", "smoker", "site"}, m.Columns())
	assert.Equal(t, map[string]models.ColumnType{
		"age":    models.ColumnTypeInt,
		"smoker": models.ColumnTypeBool,
		"site":   models.ColumnTypeString,
	}, typesOf(m))
}

func TestInferSchema_MissingValueIsString(t *testing.T) {
	m, err := inferString(t, "a,b\n7\n")
	require.NoError(t, err)

	typ, _ := m.Get("b")
	assert.Equal(t, models.ColumnTypeString, typ)
}

func TestInferSchema_EmptySample(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"header only", "a,b,c\n"},
		{"header without newline", "a,b,c"},
		{"header and blank lines", "a,b\n\n\n"},
		{"empty file", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := inferString(t, tt.content)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrEmptySample), "got %v", err)
		})
	}
}

type failingSource struct {
	openErr error
}

func (f failingSource) Open() (io.ReadCloser, error) {
	if f.openErr != nil {
		return nil, f.openErr
	}
	return io.NopCloser(errReader{}), nil
}

type errReader struct{}

func (errReader) Read([]byte) (int, error) { return 0, errors.New("disk on fire") }

func TestInferSchema_ReadFailure(t *testing.T) {
	p := NewSchemaParser(nil)

	_, err := p.InferSchema(context.Background(), failingSource{openErr: os.ErrPermission})
	assert.ErrorIs(t, err, ErrReadFailure)

	_, err = p.InferSchema(context.Background(), failingSource{})
	assert.ErrorIs(t, err, ErrReadFailure)
	assert.Contains(t, err.Error(), "disk on fire")

	_, err = p.InferSchema(context.Background(), FileSource(filepath.Join(t.TempDir(), "missing.csv")))
	assert.ErrorIs(t, err, ErrReadFailure)
}

func TestInferSchema_FileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "covariates.csv")
	require.NoError(t, os.WriteFile(path, []byte("id,weight\n7,70.5\n"), 0644))

	m, err := NewSchemaParser(nil).InferSchema(context.Background(), FileSource(path))
	require.NoError(t, err)
	assert.Equal(t, map[string]models.ColumnType{
		"id":     models.ColumnTypeInt,
		"weight": models.ColumnTypeInt,
	}, typesOf(m))
}

func TestInferSchema_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewSchemaParser(nil).InferSchema(ctx, BytesSource("a\n1\n"))
	assert.ErrorIs(t, err, context.Canceled)
}

type brokenSniffer struct{}

func (brokenSniffer) Name() string { return "broken" }

func (brokenSniffer) Sniff(context.Context, []byte) (rune, error) {
	return 0, errors.New("no idea")
}

func TestInferSchema_SnifferFailureFallsBackToComma(t *testing.T) {
	m, err := NewSchemaParser(brokenSniffer{}).InferSchema(context.Background(), BytesSource("a,b\nTrue,x\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, m.Columns())
}
