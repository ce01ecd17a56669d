package parser

import (
	"errors"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/settings-generator/backend/internal/models"
)

// Predicate recognises raw cell values of one column type.
type Predicate struct {
	Type  models.ColumnType
	Match func(raw string) bool
}

var (
	// boolValues is matched exactly; "TRUE" or " true" are not booleans.
	boolValues = map[string]struct{}{
		"true": {}, "false": {}, "True": {}, "False": {}, "0": {}, "1": {},
	}

	// classifiers are tried in order, first match wins. Anything left over
	// is a string.
	classifiers = []Predicate{
		{Type: models.ColumnTypeBool, Match: IsBoolean},
		{Type: models.ColumnTypeInt, Match: IsNumeric},
	}
)

// InferType classifies a single raw cell value.
func InferType(raw string) models.ColumnType {
	for _, c := range classifiers {
		if c.Match(raw) {
			return c.Type
		}
	}
	return models.ColumnTypeString
}

// IsBoolean reports whether raw is one of the accepted boolean spellings.
func IsBoolean(raw string) bool {
	_, ok := boolValues[raw]
	return ok
}

// IsNumeric reports whether raw, after trimming whitespace, is a finite
// number. Decimal notation with optional sign, fraction and exponent is
// accepted, as are unsigned 0x, 0o and 0b literals. Fractions still count:
// "3.14" is numeric.
func IsNumeric(raw string) bool {
	s := strings.TrimSpace(raw)
	if s == "" {
		return false
	}

	if len(s) > 2 && s[0] == '0' {
		switch s[1] {
		case 'x', 'X':
			return isFiniteRadix(s[2:], 16)
		case 'o', 'O':
			return isFiniteRadix(s[2:], 8)
		case 'b', 'B':
			return isFiniteRadix(s[2:], 2)
		}
	}

	if !isDecimalLiteral(s) {
		return false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return false
	}
	return !math.IsInf(f, 0) && !math.IsNaN(f)
}

// isDecimalLiteral checks [+-]digits[.digits][(e|E)[+-]digits] without regex.
// At least one mantissa digit is required; "5." and ".5" are fine, "." is not.
func isDecimalLiteral(s string) bool {
	i := 0
	if s[0] == '+' || s[0] == '-' {
		i++
	}

	digits := 0
	for ; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
		digits++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for ; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
			digits++
		}
	}
	if digits == 0 {
		return false
	}

	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		i++
		if i < len(s) && (s[i] == '+' || s[i] == '-') {
			i++
		}
		exp := 0
		for ; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
			exp++
		}
		if exp == 0 {
			return false
		}
	}

	return i == len(s)
}

// isFiniteRadix parses an unsigned integer literal body in the given base and
// checks that it fits in a float64.
func isFiniteRadix(body string, base int) bool {
	if body == "" || body[0] == '+' || body[0] == '-' {
		return false
	}
	n, ok := new(big.Int).SetString(body, base)
	if !ok {
		return false
	}
	f, _ := new(big.Float).SetInt(n).Float64()
	return !math.IsInf(f, 0)
}
