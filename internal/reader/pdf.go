package reader

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	pdflib "github.com/ledongthuc/pdf"

	"github.com/clinvec/tabgest/internal/tabular"
)

// PDFReader handles PDF files holding printed tables. Text is extracted with
// the Go library first, falling back to pdftotext when enabled, and each
// page's line block is run through the whitespace-mode table heuristic. Pages
// that do not parse as a table are skipped.
type PDFReader struct{}

func (p *PDFReader) Read(r io.Reader, filename string, opts Options) ([]Result, error) {
	// ledongthuc/pdf requires a ReadSeeker+size, so we write to a temp file.
	tmp, err := os.CreateTemp("", "tabgest-pdf-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	text, err := extractPDFText(tmpPath)
	if err != nil && opts.FallbackPdftotext {
		text, err = extractPdftotext(tmpPath)
	}
	if err != nil {
		return nil, fmt.Errorf("extract pdf text: %w", err)
	}

	var results []Result
	for _, page := range strings.Split(text, "\f") {
		if strings.TrimSpace(page) == "" {
			continue
		}
		schema, rows, err := tabular.Parse(strings.NewReader(page), opts.Delimiter, opts.Logger)
		if err != nil {
			if isNotATable(err) {
				continue
			}
			return nil, err
		}
		f, err := assembleFrame(schema, rows, opts)
		if err != nil {
			if isNotATable(err) {
				continue
			}
			return nil, err
		}
		if r, c := f.Shape(); r == 0 || c == 0 {
			continue
		}
		results = append(results, Result{
			Name:  fmt.Sprintf("%s_%d", stem(filename), len(results)),
			Frame: f,
		})
	}
	if len(results) == 0 {
		return nil, &tabular.MalformedTableError{Empty: true}
	}
	return results, nil
}

// isNotATable separates "this page is prose" from genuine failures.
func isNotATable(err error) bool {
	var malformed *tabular.MalformedTableError
	var width *tabular.RowWidthMismatchError
	return errors.As(err, &malformed) || errors.As(err, &width)
}

func extractPDFText(path string) (string, error) {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var buf strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if i > 1 {
			buf.WriteString("\f") // Form feed as page separator.
		}
		buf.WriteString(text)
	}
	return buf.String(), nil
}

func extractPdftotext(path string) (string, error) {
	cmd := exec.Command("pdftotext", "-layout", path, "-")
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("pdftotext: %w", err)
	}
	return string(out), nil
}
