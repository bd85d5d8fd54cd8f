package tabular

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

// IndexSpec selects the row-label column explicitly, overriding the
// patient_id heuristic. Name takes precedence when non-empty; otherwise Pos
// is a zero-based position among the assembled columns.
type IndexSpec struct {
	Name string
	Pos  int
}

// MetadataKind is the column-global type of a side-metadata column. It is
// inferred per column, independently of the cell-level sniffing used for the
// main block: side metadata keeps richer per-column typing instead of being
// forced into one shared matrix representation.
type MetadataKind int

const (
	MetaNumeric MetadataKind = iota
	MetaBool
	MetaCategorical
	MetaText
)

func (k MetadataKind) String() string {
	switch k {
	case MetaNumeric:
		return "numeric"
	case MetaBool:
		return "bool"
	case MetaCategorical:
		return "categorical"
	}
	return "text"
}

// MetadataColumn is one observation-only column, typed as a whole. Exactly
// one of Nums, Bools, Strs is populated depending on Kind; Categories lists
// the distinct non-empty values of a categorical column in first-seen order.
type MetadataColumn struct {
	Kind       MetadataKind
	Nums       []float64
	Bools      []bool
	Strs       []string
	Categories []string
}

// Len returns the number of values in the column.
func (c MetadataColumn) Len() int {
	switch c.Kind {
	case MetaNumeric:
		return len(c.Nums)
	case MetaBool:
		return len(c.Bools)
	}
	return len(c.Strs)
}

// NamedColumn pairs a side-metadata column with its name, preserving the
// original relative column order.
type NamedColumn struct {
	Name   string
	Column MetadataColumn
}

// Table is the assembled output handed to the annotated-matrix builder.
// Original is a fully independent copy of Matrix taken at construction time;
// mutating Matrix in place never affects it.
type Table struct {
	Matrix       [][]CellValue
	RowLabels    []string
	ColLabels    []string
	SideMeta     []NamedColumn
	Original     [][]CellValue
	HasRowLabels bool
}

// AssembleOptions tune one assembly. The zero value is valid.
type AssembleOptions struct {
	ObsOnly []string
	Index   *IndexSpec
	Logger  *slog.Logger
}

// Assemble builds the numeric/mixed data block and label arrays from an
// inferred schema, partitioning observation-only columns into side metadata.
func Assemble(schema Schema, rows []Row, opts AssembleOptions) (*Table, error) {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	if len(rows) == 0 {
		return nil, &MalformedTableError{Empty: true}
	}

	expected := len(schema.ColumnNames)
	for i, r := range rows {
		if len(r.Values) != expected {
			return nil, &RowWidthMismatchError{
				First:     len(rows[0].Values),
				Offending: len(r.Values),
				Row:       i,
			}
		}
	}

	colLabels := make([]string, expected)
	for i, name := range schema.ColumnNames {
		colLabels[i] = strings.Trim(name, `"`)
	}

	rowLabels := make([]string, len(rows))
	if schema.HasRowLabels {
		for i, r := range rows {
			rowLabels[i] = strings.Trim(r.Label, `"`)
		}
	} else {
		for i := range rows {
			rowLabels[i] = strconv.Itoa(i)
		}
	}

	matrix := make([][]CellValue, len(rows))
	for i, r := range rows {
		matrix[i] = append([]CellValue(nil), r.Values...)
	}

	hasLabels := schema.HasRowLabels
	if opts.Index != nil {
		idx, err := resolveIndex(opts.Index, colLabels)
		if err != nil {
			return nil, err
		}
		log.Info("using explicit index column", "column", colLabels[idx])
		for i := range matrix {
			rowLabels[i] = matrix[i][idx].String()
			matrix[i] = append(matrix[i][:idx], matrix[i][idx+1:]...)
		}
		colLabels = append(colLabels[:idx], colLabels[idx+1:]...)
		hasLabels = true
	}

	side, matrix, colLabels, err := splitObsOnly(opts.ObsOnly, matrix, colLabels)
	if err != nil {
		return nil, err
	}

	return &Table{
		Matrix:       matrix,
		RowLabels:    rowLabels,
		ColLabels:    colLabels,
		SideMeta:     side,
		Original:     CloneMatrix(matrix),
		HasRowLabels: hasLabels,
	}, nil
}

func resolveIndex(spec *IndexSpec, colLabels []string) (int, error) {
	if spec.Name != "" {
		for i, name := range colLabels {
			if name == spec.Name {
				return i, nil
			}
		}
		return 0, &ColumnNotFoundError{Columns: []string{spec.Name}}
	}
	if spec.Pos < 0 || spec.Pos >= len(colLabels) {
		return 0, fmt.Errorf("index column position %d out of range (%d columns)", spec.Pos, len(colLabels))
	}
	return spec.Pos, nil
}

// splitObsOnly removes the named columns from the matrix and returns them as
// typed side metadata, in their original relative order. Unknown names are
// all reported together.
func splitObsOnly(obsOnly []string, matrix [][]CellValue, colLabels []string) ([]NamedColumn, [][]CellValue, []string, error) {
	if len(obsOnly) == 0 {
		return nil, matrix, colLabels, nil
	}

	want := make(map[string]bool, len(obsOnly))
	for _, name := range obsOnly {
		want[name] = true
	}
	move := make(map[int]bool)
	for i, name := range colLabels {
		if want[name] {
			move[i] = true
			delete(want, name)
		}
	}
	if len(want) > 0 {
		missing := make([]string, 0, len(want))
		for _, name := range obsOnly {
			if want[name] {
				missing = append(missing, name)
			}
		}
		return nil, nil, nil, &ColumnNotFoundError{Columns: missing}
	}

	var side []NamedColumn
	keptLabels := make([]string, 0, len(colLabels)-len(move))
	kept := make([]int, 0, len(colLabels)-len(move))
	for i, name := range colLabels {
		if move[i] {
			col := make([]CellValue, len(matrix))
			for r := range matrix {
				col[r] = matrix[r][i]
			}
			side = append(side, NamedColumn{Name: name, Column: inferMetadataColumn(col)})
			continue
		}
		kept = append(kept, i)
		keptLabels = append(keptLabels, name)
	}

	out := make([][]CellValue, len(matrix))
	for r := range matrix {
		out[r] = make([]CellValue, len(kept))
		for j, i := range kept {
			out[r][j] = matrix[r][i]
		}
	}
	return side, out, keptLabels, nil
}

// inferMetadataColumn types one side column as a whole: all-numeric stays
// numeric, all "true"/"false" tokens become bool, any other uniform text
// column becomes categorical, and mixed columns degrade to plain text.
func inferMetadataColumn(vals []CellValue) MetadataColumn {
	allNum, allBool, allText := true, true, true
	seen := 0
	for _, v := range vals {
		if v.IsMissing() {
			allBool = false
			continue
		}
		seen++
		if !v.IsNumber() {
			allNum = false
		}
		if v.Kind != KindOpaque {
			allText = false
			allBool = false
		} else if !strings.EqualFold(v.Str, "true") && !strings.EqualFold(v.Str, "false") {
			allBool = false
		}
	}

	switch {
	case seen > 0 && allBool:
		bools := make([]bool, len(vals))
		for i, v := range vals {
			bools[i] = strings.EqualFold(v.Str, "true")
		}
		return MetadataColumn{Kind: MetaBool, Bools: bools}
	case allNum:
		nums := make([]float64, len(vals))
		for i, v := range vals {
			nums[i] = v.Num // NaN for missing
		}
		return MetadataColumn{Kind: MetaNumeric, Nums: nums}
	case seen > 0 && allText:
		strs := make([]string, len(vals))
		var categories []string
		distinct := make(map[string]bool)
		for i, v := range vals {
			strs[i] = v.Str
			if !v.IsMissing() && !distinct[v.Str] {
				distinct[v.Str] = true
				categories = append(categories, v.Str)
			}
		}
		return MetadataColumn{Kind: MetaCategorical, Strs: strs, Categories: categories}
	}

	strs := make([]string, len(vals))
	for i, v := range vals {
		strs[i] = v.String()
	}
	return MetadataColumn{Kind: MetaText, Strs: strs}
}

// CloneMatrix deep-copies a cell matrix into a distinct memory region.
func CloneMatrix(m [][]CellValue) [][]CellValue {
	out := make([][]CellValue, len(m))
	for i, row := range m {
		out[i] = append([]CellValue(nil), row...)
	}
	return out
}
