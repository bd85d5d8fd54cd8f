package reader

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/clinvec/tabgest/internal/frame"
	"github.com/clinvec/tabgest/internal/tabular"
)

// Reader converts one raw source stream into annotated-matrix frames. Most
// formats yield exactly one frame; PDF, HTML, docx and markdown sources may
// yield one frame per table found.
type Reader interface {
	Read(r io.Reader, filename string, opts Options) ([]Result, error)
}

// Result is one extracted frame, named after the source (with a numeric
// suffix when one source yields several tables).
type Result struct {
	Name  string
	Frame *frame.Frame
}

// Options tune one read. The zero value is valid.
type Options struct {
	// Delimiter overrides the reader's default field separator. Empty means
	// the reader's own default (whitespace splitting for text files).
	Delimiter string

	// Index selects the row-label column explicitly, by name or position.
	Index *tabular.IndexSpec

	// ColumnsObsOnly names columns to redirect into observation metadata
	// instead of the matrix.
	ColumnsObsOnly []string

	// Builder constructs the annotated-matrix container. Defaults to the
	// in-memory implementation.
	Builder frame.Builder

	Logger *slog.Logger

	// FallbackPdftotext enables the pdftotext fallback for PDF sources.
	FallbackPdftotext bool
}

func (o Options) builder() frame.Builder {
	if o.Builder != nil {
		return o.Builder
	}
	return frame.MemBuilder{}
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(slog.DiscardHandler)
}

// UnsupportedExtensionError reports a file type this service cannot handle.
type UnsupportedExtensionError struct {
	Ext string
}

func (e *UnsupportedExtensionError) Error() string {
	return fmt.Sprintf("unsupported file extension: %s", e.Ext)
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".csv":      true,
	".tsv":      true,
	".txt":      true,
	".tab":      true,
	".data":     true,
	".pdf":      true,
	".docx":     true,
	".html":     true,
	".htm":      true,
	".md":       true,
	".markdown": true,
	".tgf":      true,
}

// ForFile returns the appropriate reader for a filename.
func ForFile(filename string) (Reader, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".csv":
		return &DelimitedReader{Delimiter: ","}, nil
	case ".tsv":
		return &DelimitedReader{Delimiter: "\t"}, nil
	case ".txt", ".tab", ".data":
		return &TextReader{}, nil
	case ".pdf":
		return &PDFReader{}, nil
	case ".docx":
		return &DOCXReader{}, nil
	case ".html", ".htm":
		return &HTMLReader{}, nil
	case ".md", ".markdown":
		return &MarkdownReader{}, nil
	case ".tgf":
		return &SnapshotReader{}, nil
	default:
		return nil, &UnsupportedExtensionError{Ext: ext}
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	return SupportedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// ReadFile opens a path and parses it with the reader for its extension.
func ReadFile(path string, opts Options) ([]Result, error) {
	p, err := ForFile(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return p.Read(f, filepath.Base(path), opts)
}

// assembleFrame funnels inferred rows through the assembler into a built
// frame. No reference to the frame is retained here.
func assembleFrame(schema tabular.Schema, rows []tabular.Row, opts Options) (*frame.Frame, error) {
	t, err := tabular.Assemble(schema, rows, tabular.AssembleOptions{
		ObsOnly: opts.ColumnsObsOnly,
		Index:   opts.Index,
		Logger:  opts.Logger,
	})
	if err != nil {
		return nil, err
	}
	return frame.FromTable(opts.builder(), t)
}

func stem(filename string) string {
	return strings.TrimSuffix(filename, filepath.Ext(filename))
}
