package reader

import (
	"io"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"github.com/clinvec/tabgest/internal/tabular"
)

// MarkdownReader handles Markdown files, extracting GFM pipe tables with
// goldmark's table extension.
type MarkdownReader struct{}

func (p *MarkdownReader) Read(r io.Reader, filename string, opts Options) ([]Result, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	doc := md.Parser().Parse(text.NewReader(src))

	var tables [][][]string
	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		tbl, ok := n.(*east.Table)
		if !ok {
			return ast.WalkContinue, nil
		}
		if rows := pipeTableRows(tbl, src); len(rows) > 0 {
			tables = append(tables, rows)
		}
		return ast.WalkSkipChildren, nil
	})

	if len(tables) == 0 {
		return nil, &tabular.MalformedTableError{Empty: true}
	}

	return assemblePreTokenized(tables, filename, opts)
}

// pipeTableRows flattens one pipe table into cell text; the header row comes
// first, so the usual header heuristics apply downstream.
func pipeTableRows(tbl *east.Table, src []byte) [][]string {
	var rows [][]string
	for r := tbl.FirstChild(); r != nil; r = r.NextSibling() {
		switch r.(type) {
		case *east.TableHeader, *east.TableRow:
		default:
			continue
		}
		var cells []string
		for c := r.FirstChild(); c != nil; c = c.NextSibling() {
			cells = append(cells, string(c.Text(src)))
		}
		if len(cells) > 0 {
			rows = append(rows, cells)
		}
	}
	return rows
}
