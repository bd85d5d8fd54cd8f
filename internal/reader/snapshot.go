package reader

import (
	"io"

	"github.com/clinvec/tabgest/internal/frame"
)

// SnapshotReader handles .tgf files: prior serialized snapshots written by
// frame.WriteSnapshot. The frame is already assembled, so delimiter, index
// and observation-only options do not apply.
type SnapshotReader struct{}

func (p *SnapshotReader) Read(r io.Reader, filename string, opts Options) ([]Result, error) {
	f, err := frame.ReadSnapshot(r)
	if err != nil {
		return nil, err
	}
	return []Result{{Name: stem(filename), Frame: f}}, nil
}
