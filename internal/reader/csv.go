package reader

import (
	"io"

	"github.com/clinvec/tabgest/internal/frame"
	"github.com/clinvec/tabgest/internal/tabular"
)

// DelimitedReader handles .csv and .tsv files.
type DelimitedReader struct {
	Delimiter string
}

func (p *DelimitedReader) Read(r io.Reader, filename string, opts Options) ([]Result, error) {
	delim := p.Delimiter
	if opts.Delimiter != "" {
		delim = opts.Delimiter
	}
	f, err := readDelimited(r, delim, opts)
	if err != nil {
		return nil, err
	}
	return []Result{{Name: stem(filename), Frame: f}}, nil
}

// TextReader handles .txt, .tab and .data files: legacy whitespace-separated
// numeric matrices, unless an explicit delimiter is given.
type TextReader struct{}

func (p *TextReader) Read(r io.Reader, filename string, opts Options) ([]Result, error) {
	f, err := readDelimited(r, opts.Delimiter, opts)
	if err != nil {
		return nil, err
	}
	return []Result{{Name: stem(filename), Frame: f}}, nil
}

func readDelimited(r io.Reader, delimiter string, opts Options) (*frame.Frame, error) {
	schema, rows, err := tabular.Parse(r, delimiter, opts.Logger)
	if err != nil {
		return nil, err
	}
	return assembleFrame(schema, rows, opts)
}
