package tabular

import (
	"math"
	"strconv"
	"strings"
)

// CellKind classifies a single textual cell.
type CellKind int

const (
	KindMissing CellKind = iota
	KindInt
	KindFloat
	KindOpaque
)

func (k CellKind) String() string {
	switch k {
	case KindMissing:
		return "missing"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	}
	return "opaque"
}

// Classify sniffs the type of a raw cell token. A token is missing iff it is
// empty after trimming, an int iff it is an optional sign followed by decimal
// digits, a float iff it parses as a decimal number (point, exponent, nan,
// inf), and opaque otherwise.
func Classify(token string) CellKind {
	t := strings.TrimSpace(token)
	if t == "" {
		return KindMissing
	}
	if isInt(t) {
		return KindInt
	}
	if _, err := strconv.ParseFloat(t, 64); err == nil {
		return KindFloat
	}
	return KindOpaque
}

// IsNumeric reports whether a token sniffs as int or float.
func IsNumeric(token string) bool {
	k := Classify(token)
	return k == KindInt || k == KindFloat
}

func isInt(s string) bool {
	if s[0] == '+' || s[0] == '-' {
		s = s[1:]
	}
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// CellValue is a cell of the main data block: a number, an opaque string, or
// missing. Numbers are held as float64 so one matrix can mix ints and floats.
type CellValue struct {
	Kind CellKind
	Num  float64
	Str  string
}

func Number(f float64) CellValue { return CellValue{Kind: KindFloat, Num: f} }
func Text(s string) CellValue    { return CellValue{Kind: KindOpaque, Str: s} }
func Missing() CellValue         { return CellValue{Kind: KindMissing, Num: math.NaN()} }

// IsMissing reports whether the cell holds no value.
func (c CellValue) IsMissing() bool { return c.Kind == KindMissing }

// IsNumber reports whether the cell holds a numeric value.
func (c CellValue) IsNumber() bool { return c.Kind == KindInt || c.Kind == KindFloat }

// String renders the cell the way it would be written back to a text table.
func (c CellValue) String() string {
	switch c.Kind {
	case KindMissing:
		return ""
	case KindInt:
		return strconv.FormatInt(int64(c.Num), 10)
	case KindFloat:
		return strconv.FormatFloat(c.Num, 'g', -1, 64)
	}
	return c.Str
}

// Cast coerces a raw token into a CellValue. The literal token "0" is forced
// to numeric zero, empty tokens become the missing sentinel, int and float
// tokens become numbers, and everything else stays text.
func Cast(token string) CellValue {
	if token == "0" {
		return CellValue{Kind: KindInt, Num: 0}
	}
	switch Classify(token) {
	case KindMissing:
		return Missing()
	case KindInt:
		f, err := strconv.ParseFloat(strings.TrimSpace(token), 64)
		if err != nil {
			return Text(token)
		}
		return CellValue{Kind: KindInt, Num: f}
	case KindFloat:
		f, _ := strconv.ParseFloat(strings.TrimSpace(token), 64)
		return CellValue{Kind: KindFloat, Num: f}
	}
	return Text(token)
}

// CastRow coerces every token of a row.
func CastRow(tokens []string) []CellValue {
	out := make([]CellValue, len(tokens))
	for i, tok := range tokens {
		out[i] = Cast(tok)
	}
	return out
}
