package parser

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDuckSniffer(t *testing.T) *DuckSniffer {
	t.Helper()
	s, err := NewDuckSniffer(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestDuckSniffer(t *testing.T) {
	s := newTestDuckSniffer(t)
	assert.Equal(t, "duckdb", s.Name())

	tests := []struct {
		name string
		data string
		want rune
	}{
		{"comma", "id,age,smoker\n1,54,true\n2,61,false\n3,47,true\n", ','},
		{"semicolon", "id;age;smoker\n1;54;true\n2;61;false\n3;47;true\n", ';'},
		{"pipe", "id|age|smoker\n1|54|true\n2|61|false\n3|47|true\n", '|'},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Sniff(context.Background(), []byte(tt.data))
			require.NoError(t, err)
			assert.Equal(t, string(tt.want), string(got))
		})
	}
}

func TestDuckSniffer_RemovesTempFiles(t *testing.T) {
	dir := t.TempDir()
	s, err := NewDuckSniffer(dir)
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Sniff(context.Background(), []byte("a,b\n1,2\n"))
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDuckSniffer_InSchemaParser(t *testing.T) {
	p := NewSchemaParser(newTestDuckSniffer(t))
	assert.Equal(t, "duckdb", p.SnifferName())

	m, err := p.InferSchema(context.Background(), BytesSource("a;b;c\ntrue;42;hello\nfalse;7;world\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, m.Columns())
}
