package frame

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/clinvec/tabgest/internal/tabular"
)

// Snapshot codec for the .tgf (tabgest frame) format: a JSON rendering of a
// Frame used both as a fast re-read cache and as an input kind of its own.
// Numbers are carried as strings so NaN and infinities survive JSON.

const SnapshotVersion = 1

type snapshotCell struct {
	K string `json:"k"`           // "i", "f", "s", "m"
	N string `json:"n,omitempty"` // numeric payload
	S string `json:"s,omitempty"` // opaque payload
}

type snapshotColumn struct {
	Name       string   `json:"name"`
	Kind       string   `json:"kind"`
	Nums       []string `json:"nums,omitempty"`
	Bools      []bool   `json:"bools,omitempty"`
	Strs       []string `json:"strs,omitempty"`
	Categories []string `json:"categories,omitempty"`
}

type snapshotFile struct {
	Version  int                         `json:"version"`
	ObsNames []string                    `json:"obs_names"`
	VarNames []string                    `json:"var_names"`
	Obs      []snapshotColumn            `json:"obs,omitempty"`
	X        [][]snapshotCell            `json:"x"`
	Layers   map[string][][]snapshotCell `json:"layers"`
}

// WriteSnapshot serializes a frame.
func WriteSnapshot(w io.Writer, f *Frame) error {
	sf := snapshotFile{
		Version:  SnapshotVersion,
		ObsNames: f.ObsNames,
		VarNames: f.VarNames,
		X:        encodeMatrix(f.X),
		Layers:   make(map[string][][]snapshotCell, len(f.Layers)),
	}
	for name, layer := range f.Layers {
		sf.Layers[name] = encodeMatrix(layer)
	}
	for _, name := range f.ObsColumns {
		sf.Obs = append(sf.Obs, encodeColumn(name, f.Obs[name]))
	}
	if err := json.NewEncoder(w).Encode(&sf); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// ReadSnapshot deserializes a frame written by WriteSnapshot.
func ReadSnapshot(r io.Reader) (*Frame, error) {
	var sf snapshotFile
	if err := json.NewDecoder(r).Decode(&sf); err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	if sf.Version != SnapshotVersion {
		return nil, fmt.Errorf("read snapshot: unsupported version %d", sf.Version)
	}

	f := &Frame{
		ObsNames: sf.ObsNames,
		VarNames: sf.VarNames,
		Obs:      make(map[string]tabular.MetadataColumn, len(sf.Obs)),
		Layers:   make(map[string][][]tabular.CellValue, len(sf.Layers)),
	}
	var err error
	if f.X, err = decodeMatrix(sf.X); err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	for name, layer := range sf.Layers {
		if f.Layers[name], err = decodeMatrix(layer); err != nil {
			return nil, fmt.Errorf("read snapshot layer %q: %w", name, err)
		}
	}
	for _, sc := range sf.Obs {
		col, err := decodeColumn(sc)
		if err != nil {
			return nil, fmt.Errorf("read snapshot column %q: %w", sc.Name, err)
		}
		f.Obs[sc.Name] = col
		f.ObsColumns = append(f.ObsColumns, sc.Name)
	}
	return f, nil
}

func encodeMatrix(m [][]tabular.CellValue) [][]snapshotCell {
	out := make([][]snapshotCell, len(m))
	for i, row := range m {
		out[i] = make([]snapshotCell, len(row))
		for j, v := range row {
			out[i][j] = encodeCell(v)
		}
	}
	return out
}

func decodeMatrix(m [][]snapshotCell) ([][]tabular.CellValue, error) {
	out := make([][]tabular.CellValue, len(m))
	for i, row := range m {
		out[i] = make([]tabular.CellValue, len(row))
		for j, sc := range row {
			v, err := decodeCell(sc)
			if err != nil {
				return nil, err
			}
			out[i][j] = v
		}
	}
	return out, nil
}

func encodeCell(v tabular.CellValue) snapshotCell {
	switch v.Kind {
	case tabular.KindMissing:
		return snapshotCell{K: "m"}
	case tabular.KindInt:
		return snapshotCell{K: "i", N: formatNum(v.Num)}
	case tabular.KindFloat:
		return snapshotCell{K: "f", N: formatNum(v.Num)}
	}
	return snapshotCell{K: "s", S: v.Str}
}

func decodeCell(sc snapshotCell) (tabular.CellValue, error) {
	switch sc.K {
	case "m":
		return tabular.Missing(), nil
	case "i", "f":
		n, err := strconv.ParseFloat(sc.N, 64)
		if err != nil {
			return tabular.CellValue{}, fmt.Errorf("bad numeric cell %q: %w", sc.N, err)
		}
		kind := tabular.KindFloat
		if sc.K == "i" {
			kind = tabular.KindInt
		}
		return tabular.CellValue{Kind: kind, Num: n}, nil
	case "s":
		return tabular.Text(sc.S), nil
	}
	return tabular.CellValue{}, fmt.Errorf("unknown cell kind %q", sc.K)
}

func encodeColumn(name string, col tabular.MetadataColumn) snapshotColumn {
	sc := snapshotColumn{
		Name:       name,
		Kind:       col.Kind.String(),
		Bools:      col.Bools,
		Strs:       col.Strs,
		Categories: col.Categories,
	}
	for _, n := range col.Nums {
		sc.Nums = append(sc.Nums, formatNum(n))
	}
	return sc
}

func decodeColumn(sc snapshotColumn) (tabular.MetadataColumn, error) {
	col := tabular.MetadataColumn{
		Bools:      sc.Bools,
		Strs:       sc.Strs,
		Categories: sc.Categories,
	}
	switch sc.Kind {
	case "numeric":
		col.Kind = tabular.MetaNumeric
	case "bool":
		col.Kind = tabular.MetaBool
	case "categorical":
		col.Kind = tabular.MetaCategorical
	case "text":
		col.Kind = tabular.MetaText
	default:
		return col, fmt.Errorf("unknown column kind %q", sc.Kind)
	}
	for _, s := range sc.Nums {
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return col, fmt.Errorf("bad numeric value %q: %w", s, err)
		}
		col.Nums = append(col.Nums, n)
	}
	return col, nil
}

func formatNum(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
