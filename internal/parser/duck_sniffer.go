package parser

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"os"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/marcboeker/go-duckdb"
)

// DuckSniffer detects delimiters with DuckDB's sniff_csv table function.
// Content is spilled to a temp file because sniff_csv reads from a path.
type DuckSniffer struct {
	db      *sql.DB
	tempDir string

	// sniff_csv is cheap but serialising keeps temp file churn predictable
	mu sync.Mutex
}

// NewDuckSniffer opens an in-memory DuckDB database for sniffing.
func NewDuckSniffer(tempDir string) (*DuckSniffer, error) {
	if tempDir != "" {
		if err := os.MkdirAll(tempDir, 0755); err != nil {
			return nil, fmt.Errorf("creating sniffer temp directory: %w", err)
		}
	}

	connector, err := duckdb.NewConnector("", func(execer driver.ExecerContext) error {
		pragmas := []string{
			"PRAGMA threads=1",
			"PRAGMA enable_progress_bar=false",
		}
		for _, pragma := range pragmas {
			if _, err := execer.ExecContext(context.Background(), pragma, nil); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create DuckDB connector: %w", err)
	}

	return &DuckSniffer{
		db:      sql.OpenDB(connector),
		tempDir: tempDir,
	}, nil
}

func (s *DuckSniffer) Name() string {
	return "duckdb"
}

// Sniff writes data to a temp file and asks DuckDB for its dialect.
func (s *DuckSniffer) Sniff(ctx context.Context, data []byte) (rune, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.CreateTemp(s.tempDir, "sniff-*.csv")
	if err != nil {
		return DefaultDelimiter, fmt.Errorf("creating sniff file: %w", err)
	}
	path := f.Name()
	defer os.Remove(path)

	if _, err := f.Write(data); err != nil {
		f.Close()
		return DefaultDelimiter, fmt.Errorf("writing sniff file: %w", err)
	}
	if err := f.Close(); err != nil {
		return DefaultDelimiter, fmt.Errorf("closing sniff file: %w", err)
	}

	// table functions do not take bind parameters; path comes from CreateTemp
	query := fmt.Sprintf("SELECT Delimiter FROM sniff_csv('%s')", strings.ReplaceAll(path, "'", "''"))

	var delim string
	if err := s.db.QueryRowContext(ctx, query).Scan(&delim); err != nil {
		return DefaultDelimiter, fmt.Errorf("sniff_csv: %w", err)
	}

	r, size := utf8.DecodeRuneInString(delim)
	if r == utf8.RuneError || size != len(delim) {
		return DefaultDelimiter, fmt.Errorf("sniff_csv returned unsupported delimiter %q", delim)
	}
	return r, nil
}

// Close releases the database.
func (s *DuckSniffer) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
