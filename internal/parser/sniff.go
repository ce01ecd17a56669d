package parser

import (
	"bytes"
	"context"
	"errors"
	"io"
)

// Sniffer detects the field delimiter of CSV content.
type Sniffer interface {
	// Name returns the unique name of the sniffer.
	Name() string
	// Sniff returns the delimiter that best explains data.
	Sniff(ctx context.Context, data []byte) (rune, error)
}

// GuessSniffer picks the candidate delimiter that yields the most consistent
// field count over the first rows.
type GuessSniffer struct {
	candidates  []rune
	previewRows int
}

// NewGuessSniffer creates a sniffer over the usual delimiters: comma, tab,
// pipe, semicolon and the ASCII record and unit separators.
func NewGuessSniffer() *GuessSniffer {
	return &GuessSniffer{
		candidates:  []rune{',', '\t', '|', ';', '\x1e', '\x1f'},
		previewRows: 10,
	}
}

func (s *GuessSniffer) Name() string {
	return "guess"
}

// Sniff never fails; it falls back to DefaultDelimiter.
func (s *GuessSniffer) Sniff(ctx context.Context, data []byte) (rune, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	best := DefaultDelimiter
	bestDelta := -1
	bestAvg := 0.0

	for _, delim := range s.candidates {
		if err := ctx.Err(); err != nil {
			return DefaultDelimiter, err
		}

		delta, avg, ok := s.score(data, delim)
		if !ok {
			continue
		}
		if (bestDelta < 0 || delta <= bestDelta) && avg > bestAvg && avg > 1.99 {
			best = delim
			bestDelta = delta
			bestAvg = avg
		}
	}

	return best, nil
}

// score reads up to previewRows rows with delim and returns the summed
// change in field count between rows and the average field count.
func (s *GuessSniffer) score(data []byte, delim rune) (delta int, avg float64, ok bool) {
	r := newCSVReader(bytes.NewReader(data), delim)

	rows := 0
	total := 0
	prev := -1
	for rows < s.previewRows {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, 0, false
		}
		n := len(rec)
		rows++
		total += n
		if prev >= 0 && n > 1 {
			d := n - prev
			if d < 0 {
				d = -d
			}
			delta += d
		}
		prev = n
	}

	if rows == 0 {
		return 0, 0, false
	}
	return delta, float64(total) / float64(rows), true
}
