package tabular

import (
	"bufio"
	"io"
	"strings"
)

// Tokenize splits a raw text line into fields. With a delimiter, the line is
// split on exact occurrences and empty fields are kept. With an empty
// delimiter, the line is split on any run of whitespace and empty fields are
// dropped, which is not the same as splitting on a single space.
func Tokenize(line, delimiter string) []string {
	if delimiter == "" {
		return strings.Fields(line)
	}
	return strings.Split(line, delimiter)
}

// LineScanner iterates the nonempty lines of a stream. Line endings are
// stripped, blank lines are skipped, and lines starting with '#' are diverted
// into a comment buffer (the '#' and one following space removed) instead of
// being returned.
type LineScanner struct {
	sc       *bufio.Scanner
	comments []string
}

func NewLineScanner(r io.Reader) *LineScanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &LineScanner{sc: sc}
}

// Next returns the next data line, or false when the stream is exhausted.
func (s *LineScanner) Next() (string, bool) {
	for s.sc.Scan() {
		line := strings.TrimRight(s.sc.Text(), "\r\n")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if strings.HasPrefix(line, "#") {
			c := strings.TrimPrefix(line, "#")
			c = strings.TrimPrefix(c, " ")
			if c != "" {
				s.comments = append(s.comments, c)
			}
			continue
		}
		return line, true
	}
	return "", false
}

// Comments returns the comment lines captured so far, in order.
func (s *LineScanner) Comments() []string { return s.comments }

// Err returns the first error hit by the underlying scanner.
func (s *LineScanner) Err() error { return s.sc.Err() }
