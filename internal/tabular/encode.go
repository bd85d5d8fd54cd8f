package tabular

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// EncodeDelimited writes an assembled table back out as delimited text, one
// header line followed by one line per row. Parsing the output again yields a
// numerically identical matrix; formatting and side metadata are not
// round-tripped. An empty delimiter writes tabs, which whitespace-mode
// parsing accepts.
//
// Column labels that all sniff as numeric would be mistaken for a data row on
// re-parse, so they are written as a comment line instead; the parser's
// comment fallback restores them.
func EncodeDelimited(w io.Writer, t *Table, delimiter string) error {
	sep := delimiter
	if sep == "" {
		sep = "\t"
	}

	bw := bufio.NewWriter(w)
	if err := writeHeader(bw, t, sep); err != nil {
		return err
	}

	for i, row := range t.Matrix {
		if t.HasRowLabels {
			bw.WriteString(t.RowLabels[i] + sep)
		}
		for j, v := range row {
			if j > 0 {
				bw.WriteString(sep)
			}
			bw.WriteString(v.String())
		}
		if err := bw.WriteByte('\n'); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	return bw.Flush()
}

func writeHeader(bw *bufio.Writer, t *Table, sep string) error {
	numericNames := len(t.ColLabels) > 0
	for _, name := range t.ColLabels {
		if !IsNumeric(name) {
			numericNames = false
			break
		}
	}
	if numericNames && !t.HasRowLabels {
		// Comment fallback splits on whitespace, regardless of delimiter.
		if _, err := bw.WriteString("# " + strings.Join(t.ColLabels, " ") + "\n"); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
		return nil
	}

	if t.HasRowLabels {
		bw.WriteString("patient_id" + sep)
	}
	for i, name := range t.ColLabels {
		if i > 0 {
			bw.WriteString(sep)
		}
		bw.WriteString(name)
	}
	if err := bw.WriteByte('\n'); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	return nil
}
