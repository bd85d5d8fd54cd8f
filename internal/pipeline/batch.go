package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/clinvec/tabgest/internal/frame"
	"github.com/clinvec/tabgest/internal/reader"
)

// ReadDir parses every supported file in a directory with bounded
// concurrency, one parse per file. Each file's stream is opened, fully
// consumed and closed independently of the others; no cross-file ordering is
// guaranteed. obsOnly maps a file's basename (without extension) to its
// observation-only columns. Frames are keyed by the reader result name, so a
// PDF yielding several tables contributes several entries.
func ReadDir(ctx context.Context, dir string, obsOnly map[string][]string, workers int, log *slog.Logger) (map[string]*frame.Frame, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory %s: %w", dir, err)
	}
	if workers <= 0 {
		workers = 4
	}

	type fileResult struct {
		base    string
		results []reader.Result
		err     error
	}
	sem := make(chan struct{}, workers)
	out := make(chan fileResult, len(entries))

	launched := 0
	var ctxErr error
	for _, e := range entries {
		if e.IsDir() || !reader.IsSupportedExtension(e.Name()) {
			continue
		}
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			ctxErr = ctx.Err()
		}
		if ctxErr != nil {
			break
		}
		launched++
		go func(name string) {
			defer func() { <-sem }()
			base := strings.TrimSuffix(name, filepath.Ext(name))
			results, err := reader.ReadFile(filepath.Join(dir, name), reader.Options{
				ColumnsObsOnly: obsOnly[base],
				Logger:         log,
			})
			out <- fileResult{base: base, results: results, err: err}
		}(e.Name())
	}

	frames := make(map[string]*frame.Frame)
	var firstErr error
	for range launched {
		r := <-out
		if r.err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("read %s: %w", r.base, r.err)
			}
			continue
		}
		for _, res := range r.results {
			frames[res.Name] = res.Frame
		}
	}
	if ctxErr != nil {
		return nil, ctxErr
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return frames, nil
}
