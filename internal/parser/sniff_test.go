package parser

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuessSniffer(t *testing.T) {
	tests := []struct {
		name string
		data string
		want rune
	}{
		{"comma", "a,b,c\n1,2,3\n", ','},
		{"semicolon", "a;b;c\n1;2;3\n", ';'},
		{"tab", "a\tb\n1\t2\n", '\t'},
		{"pipe", "a|b|c\n1|2|3\n", '|'},
		{"single column falls back to comma", "flag\n1\n", ','},
		{"empty falls back to comma", "", ','},
		{"comma wins over stray semicolons", "a,b\nx;y,z\n", ','},
	}

	s := NewGuessSniffer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Sniff(context.Background(), []byte(tt.data))
			require.NoError(t, err)
			assert.Equal(t, string(tt.want), string(got))
		})
	}
}

func TestGuessSniffer_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewGuessSniffer().Sniff(ctx, []byte("a,b\n1,2\n"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	s, err := r.GetSnifferByName("GUESS")
	require.NoError(t, err)
	assert.Equal(t, "guess", s.Name())

	_, err = r.GetSnifferByName("duckdb")
	assert.Error(t, err)

	r.Register(fixedSniffer(';'))
	assert.Equal(t, []string{"guess", "fixed"}, r.Names())
}

type fixedSniffer rune

func (f fixedSniffer) Name() string { return "fixed" }

func (f fixedSniffer) Sniff(context.Context, []byte) (rune, error) { return rune(f), nil }
