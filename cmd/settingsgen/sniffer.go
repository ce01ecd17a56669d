package main

import (
	"fmt"

	"github.com/settings-generator/backend/internal/config"
	"github.com/settings-generator/backend/internal/parser"
)

// newSchemaParser resolves the named sniffer and wraps it in a parser.
// The returned close func releases the DuckDB handle when one was opened.
func newSchemaParser(name, tempDir string) (*parser.SchemaParser, func(), error) {
	registry := parser.NewRegistry()
	closeFn := func() {}

	if name == config.SnifferDuckDB {
		duck, err := parser.NewDuckSniffer(tempDir)
		if err != nil {
			return nil, nil, fmt.Errorf("opening duckdb sniffer: %w", err)
		}
		registry.Register(duck)
		closeFn = func() { _ = duck.Close() }
	}

	sniffer, err := registry.GetSnifferByName(name)
	if err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("%w (available: %v)", err, registry.Names())
	}
	return parser.NewSchemaParser(sniffer), closeFn, nil
}
