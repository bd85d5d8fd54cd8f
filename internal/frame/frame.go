package frame

import (
	"fmt"

	"github.com/clinvec/tabgest/internal/tabular"
)

// Frame is an annotated matrix: a 2-D data block paired with row metadata,
// column metadata, and named alternate layers. It is the in-memory analogue
// of the columnar-annotation containers used downstream.
type Frame struct {
	X        [][]tabular.CellValue
	ObsNames []string
	VarNames []string

	// Obs holds observation-level metadata columns, keyed by name;
	// ObsColumns preserves their original relative order.
	Obs        map[string]tabular.MetadataColumn
	ObsColumns []string

	// Layers holds alternate copies of the matrix. The "original" layer is
	// an immutable snapshot taken at assembly time.
	Layers map[string][][]tabular.CellValue
}

// Shape returns (rows, columns) of the main block.
func (f *Frame) Shape() (int, int) {
	if len(f.X) == 0 {
		return 0, len(f.VarNames)
	}
	return len(f.X), len(f.X[0])
}

// Layer returns a named layer, or nil if absent.
func (f *Frame) Layer(name string) [][]tabular.CellValue {
	return f.Layers[name]
}

// Builder constructs an annotated-matrix value from assembled parts. The
// ingestion core depends only on this interface, never on the container's
// internals, so any columnar structure can stand in.
type Builder interface {
	Build(x [][]tabular.CellValue, obsNames, varNames []string, side []tabular.NamedColumn, original [][]tabular.CellValue) (*Frame, error)
}

// MemBuilder is the default in-memory Builder.
type MemBuilder struct{}

func (MemBuilder) Build(x [][]tabular.CellValue, obsNames, varNames []string, side []tabular.NamedColumn, original [][]tabular.CellValue) (*Frame, error) {
	if len(x) != len(obsNames) {
		return nil, fmt.Errorf("build frame: %d rows but %d obs names", len(x), len(obsNames))
	}
	for i, row := range x {
		if len(row) != len(varNames) {
			return nil, fmt.Errorf("build frame: row %d has %d cells but %d var names", i, len(row), len(varNames))
		}
	}

	f := &Frame{
		X:        x,
		ObsNames: obsNames,
		VarNames: varNames,
		Obs:      make(map[string]tabular.MetadataColumn, len(side)),
		Layers:   map[string][][]tabular.CellValue{"original": original},
	}
	for _, col := range side {
		if col.Column.Len() != len(obsNames) {
			return nil, fmt.Errorf("build frame: obs column %q has %d values but %d rows", col.Name, col.Column.Len(), len(obsNames))
		}
		f.Obs[col.Name] = col.Column
		f.ObsColumns = append(f.ObsColumns, col.Name)
	}
	return f, nil
}

// FromTable builds a Frame from an assembled table using the given builder.
func FromTable(b Builder, t *tabular.Table) (*Frame, error) {
	return b.Build(t.Matrix, t.RowLabels, t.ColLabels, t.SideMeta, t.Original)
}
