package reader

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fumiama/go-docx"

	"github.com/clinvec/tabgest/internal/tabular"
)

// DOCXReader handles .docx files, extracting every document table.
type DOCXReader struct{}

func (p *DOCXReader) Read(r io.Reader, filename string, opts Options) ([]Result, error) {
	// go-docx needs a ReadSeeker+size, so write to a temp file.
	tmp, err := os.CreateTemp("", "tabgest-docx-*.docx")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	size, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("seek temp file: %w", err)
	}

	doc, err := docx.Parse(tmp, int64(size))
	tmp.Close()
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	var tables [][][]string
	for _, item := range doc.Document.Body.Items {
		tbl, ok := item.(*docx.Table)
		if !ok {
			continue
		}
		if rows := docxTableRows(tbl); len(rows) > 0 {
			tables = append(tables, rows)
		}
	}

	if len(tables) == 0 {
		return nil, &tabular.MalformedTableError{Empty: true}
	}

	return assemblePreTokenized(tables, filename, opts)
}

func docxTableRows(tbl *docx.Table) [][]string {
	var rows [][]string
	for _, tr := range tbl.TableRows {
		var cells []string
		for _, tc := range tr.TableCells {
			var buf strings.Builder
			for _, para := range tc.Paragraphs {
				if t := docxParagraphText(para); t != "" {
					if buf.Len() > 0 {
						buf.WriteString(" ")
					}
					buf.WriteString(t)
				}
			}
			cells = append(cells, buf.String())
		}
		if len(cells) > 0 {
			rows = append(rows, cells)
		}
	}
	return rows
}

func docxParagraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}
