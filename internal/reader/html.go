package reader

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/clinvec/tabgest/internal/tabular"
)

// HTMLReader handles HTML files, extracting every <table> element.
type HTMLReader struct{}

func (p *HTMLReader) Read(r io.Reader, filename string, opts Options) ([]Result, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var tables [][][]string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "table" {
			if rows := tableRows(n); len(rows) > 0 {
				tables = append(tables, rows)
			}
			return // Nested tables are not extracted separately.
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if len(tables) == 0 {
		return nil, &tabular.MalformedTableError{Empty: true}
	}

	return assemblePreTokenized(tables, filename, opts)
}

// tableRows flattens one <table> into its cell text, row by row.
func tableRows(table *html.Node) [][]string {
	var rows [][]string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "tr" {
			var cells []string
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
					cells = append(cells, textContent(c))
				}
			}
			if len(cells) > 0 {
				rows = append(rows, cells)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(table)
	return rows
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(buf.String())
}

// assemblePreTokenized runs schema inference over already cell-split tables
// and names the resulting frames after the source.
func assemblePreTokenized(tables [][][]string, filename string, opts Options) ([]Result, error) {
	var results []Result
	for _, raw := range tables {
		schema, rows, err := tabular.ParseRows(raw, opts.Logger)
		if err != nil {
			return nil, err
		}
		f, err := assembleFrame(schema, rows, opts)
		if err != nil {
			return nil, err
		}
		results = append(results, Result{Frame: f})
	}
	if len(results) == 1 {
		results[0].Name = stem(filename)
	} else {
		for i := range results {
			results[i].Name = fmt.Sprintf("%s_%d", stem(filename), i)
		}
	}
	return results, nil
}
