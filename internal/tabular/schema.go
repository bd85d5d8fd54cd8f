package tabular

import (
	"io"
	"log/slog"
	"strconv"
	"strings"
)

// Schema is the result of header and row-label inference for one table.
type Schema struct {
	ColumnNames  []string
	HasRowLabels bool
}

// RowLabelSource reports where row labels come from.
func (s Schema) RowLabelSource() string {
	if s.HasRowLabels {
		return "first-column"
	}
	return "synthetic-index"
}

// Row is one parsed data row. Label is empty unless the schema has a
// row-label column.
type Row struct {
	Label  string
	Values []CellValue
}

// rowSource yields tokenized rows one at a time. The sequence is single-pass:
// once a row is consumed it cannot be re-read, so inference buffers exactly
// the lookahead it needs.
type rowSource interface {
	next() ([]string, bool)
	lastComment() (string, bool)
	err() error
}

// lineSource tokenizes lines from a LineScanner. A declared delimiter that is
// absent from the first line is a hard failure.
type lineSource struct {
	sc        *LineScanner
	delimiter string
	started   bool
	failed    error
}

func (s *lineSource) next() ([]string, bool) {
	if s.failed != nil {
		return nil, false
	}
	line, ok := s.sc.Next()
	if !ok {
		return nil, false
	}
	if !s.started {
		s.started = true
		if s.delimiter != "" && !strings.Contains(line, s.delimiter) {
			s.failed = &MalformedTableError{Delimiter: s.delimiter}
			return nil, false
		}
	}
	return Tokenize(line, s.delimiter), true
}

func (s *lineSource) lastComment() (string, bool) {
	comments := s.sc.Comments()
	if len(comments) == 0 {
		return "", false
	}
	return comments[len(comments)-1], true
}

func (s *lineSource) err() error {
	if s.failed != nil {
		return s.failed
	}
	return s.sc.Err()
}

// sliceSource serves rows that were already cell-split by an upstream reader
// (HTML tables, document tables, pipe tables).
type sliceSource struct {
	rows [][]string
	pos  int
}

func (s *sliceSource) next() ([]string, bool) {
	if s.pos >= len(s.rows) {
		return nil, false
	}
	row := s.rows[s.pos]
	s.pos++
	return row, true
}

func (s *sliceSource) lastComment() (string, bool) { return "", false }
func (s *sliceSource) err() error                  { return nil }

// Parse reads a delimited or whitespace-separated text table, inferring
// header presence, column names and row-label presence, and returns the
// schema together with every data row. An empty delimiter means
// arbitrary-whitespace splitting.
func Parse(r io.Reader, delimiter string, log *slog.Logger) (Schema, []Row, error) {
	src := &lineSource{sc: NewLineScanner(r), delimiter: delimiter}
	return parse(src, log)
}

// ParseRows runs the same schema inference over pre-tokenized rows.
func ParseRows(raw [][]string, log *slog.Logger) (Schema, []Row, error) {
	return parse(&sliceSource{rows: raw}, log)
}

func parse(src rowSource, log *slog.Logger) (Schema, []Row, error) {
	schema, rows, err := infer(src, log)
	if err != nil {
		return Schema{}, nil, err
	}
	for {
		fields, ok := src.next()
		if !ok {
			break
		}
		rows = append(rows, consumeRow(schema, fields))
	}
	if err := src.err(); err != nil {
		return Schema{}, nil, err
	}
	return schema, rows, nil
}

// infer consumes just enough rows to decide the schema: the first non-comment
// line, plus one confirming lookahead line. Consumed data rows are handed
// back so the caller loses nothing.
func infer(src rowSource, log *slog.Logger) (Schema, []Row, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	first, ok := src.next()
	for ok && len(first) == 0 {
		first, ok = src.next()
	}
	if !ok {
		if err := src.err(); err != nil {
			return Schema{}, nil, err
		}
		return Schema{}, nil, &MalformedTableError{Empty: true}
	}

	var colNames []string
	hasLabels := false
	var rows []Row

	// The first column might be row labels, so sniff the last token: a
	// non-numeric last token means the whole line is a header row.
	if !IsNumeric(first[len(first)-1]) {
		colNames = first
		if strings.EqualFold(first[0], "patient_id") {
			hasLabels = true
		} else {
			log.Warn("no patient_id column at position 0, using synthetic row labels")
		}
	} else {
		// No header; the first line is data. Its first token decides
		// row-label presence.
		if !IsNumeric(first[0]) {
			hasLabels = true
			rows = append(rows, Row{Label: first[0], Values: CastRow(first[1:])})
		} else {
			rows = append(rows, Row{Values: CastRow(first)})
		}
	}

	if len(colNames) == 0 {
		if c, ok := src.lastComment(); ok {
			log.Info("assuming last comment line stores column names")
			colNames = strings.Fields(c)
		} else if len(rows) > 0 {
			colNames = syntheticNames(len(rows[0].Values))
		}
	}

	// Read one more line before committing: the row shapes of the first two
	// lines drive both recovery branches below.
	if second, ok := src.next(); ok {
		rows = append(rows, consumeRow(Schema{HasRowLabels: hasLabels}, second))
	}

	// A header row sometimes omits the label for the index column, leaving
	// one surplus leading name. Drop it rather than failing. This branch is
	// evaluated before the numeric-header recovery; the two are not disjoint
	// on all malformed inputs and the order is observable.
	if len(rows) > 0 && len(colNames) == len(rows[0].Values)+1 {
		log.Debug("dropping surplus leading column name", "name", colNames[0])
		colNames = colNames[1:]
	}

	// If even the "header" looked numeric and the first two data rows
	// disagree in width, the first row really was column names and the
	// second row starts with a row label. One-off correction, no further
	// backtracking.
	if len(rows) > 1 && len(rows[0].Values) != len(rows[1].Values) && len(rows[1].Values) > 0 {
		log.Warn("assuming first row stores column names and first column row labels")
		names := make([]string, len(rows[0].Values))
		for i, v := range rows[0].Values {
			names[i] = intString(v)
		}
		colNames = names
		rows = []Row{{Label: intString(rows[1].Values[0]), Values: rows[1].Values[1:]}}
		hasLabels = true
	}

	return Schema{ColumnNames: colNames, HasRowLabels: hasLabels}, rows, nil
}

func consumeRow(schema Schema, fields []string) Row {
	if schema.HasRowLabels && len(fields) > 0 {
		return Row{Label: fields[0], Values: CastRow(fields[1:])}
	}
	return Row{Values: CastRow(fields)}
}

func syntheticNames(n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = strconv.Itoa(i)
	}
	return names
}

// intString renders a numeric cell as an integer-like string, for the
// numeric-header recovery where column names were consumed as data.
func intString(v CellValue) string {
	if v.IsNumber() {
		return strconv.FormatInt(int64(v.Num), 10)
	}
	return v.String()
}
