package reader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func TestForFile_Dispatch(t *testing.T) {
	cases := []struct {
		filename string
		want     string
	}{
		{"data.csv", "*reader.DelimitedReader"},
		{"data.tsv", "*reader.DelimitedReader"},
		{"data.txt", "*reader.TextReader"},
		{"data.tab", "*reader.TextReader"},
		{"data.data", "*reader.TextReader"},
		{"report.pdf", "*reader.PDFReader"},
		{"report.docx", "*reader.DOCXReader"},
		{"page.html", "*reader.HTMLReader"},
		{"page.htm", "*reader.HTMLReader"},
		{"notes.md", "*reader.MarkdownReader"},
		{"notes.markdown", "*reader.MarkdownReader"},
		{"cache.tgf", "*reader.SnapshotReader"},
	}
	for _, c := range cases {
		p, err := ForFile(c.filename)
		if err != nil {
			t.Errorf("ForFile(%q): unexpected error: %v", c.filename, err)
			continue
		}
		if got := fmt.Sprintf("%T", p); got != c.want {
			t.Errorf("ForFile(%q) = %s, want %s", c.filename, got, c.want)
		}
	}
}

func TestForFile_Unsupported(t *testing.T) {
	for _, filename := range []string{"image.png", "archive.zip", "noextension"} {
		_, err := ForFile(filename)
		var unsupported *UnsupportedExtensionError
		if !errors.As(err, &unsupported) {
			t.Errorf("ForFile(%q): expected UnsupportedExtensionError, got %v", filename, err)
		}
	}
}

func TestForFile_CaseInsensitive(t *testing.T) {
	if _, err := ForFile("DATA.CSV"); err != nil {
		t.Errorf("uppercase extension rejected: %v", err)
	}
}

func TestIsSupportedExtension(t *testing.T) {
	if !IsSupportedExtension("a.csv") || !IsSupportedExtension("b.tgf") {
		t.Error("expected supported extensions to be accepted")
	}
	if IsSupportedExtension("a.exe") || IsSupportedExtension("b") {
		t.Error("expected unsupported extensions to be rejected")
	}
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vitals.csv")
	content := "patient_id,hr,temp\n1,72,36.6\n2,85,38.1\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	results, err := ReadFile(path, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Name != "vitals" {
		t.Errorf("result name = %q, want %q", results[0].Name, "vitals")
	}
	rows, cols := results[0].Frame.Shape()
	if rows != 2 || cols != 2 {
		t.Errorf("shape = (%d, %d), want (2, 2)", rows, cols)
	}
}

func TestReadFile_Missing(t *testing.T) {
	if _, err := ReadFile(filepath.Join(t.TempDir(), "absent.csv"), Options{}); err == nil {
		t.Fatal("expected error for missing file")
	}
}
