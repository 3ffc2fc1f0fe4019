// Package compare checks network outputs against reference positions and
// reports per-axis absolute error and RMSE.
package compare

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/csv"
	"github.com/apache/arrow/go/v17/arrow/memory"
	"github.com/spf13/afero"
)

// Axes is the number of components per row.
const Axes = 3

var schema = arrow.NewSchema([]arrow.Field{
	{Name: "x", Type: arrow.PrimitiveTypes.Float64},
	{Name: "y", Type: arrow.PrimitiveTypes.Float64},
	{Name: "z", Type: arrow.PrimitiveTypes.Float64},
}, nil)

// VectorSet holds row-aligned 3-component vectors, stored per axis.
type VectorSet struct {
	Cols [Axes][]float64
}

func (v VectorSet) Len() int {
	return len(v.Cols[0])
}

// Row returns row i as an array.
func (v VectorSet) Row(i int) [Axes]float64 {
	return [Axes]float64{v.Cols[0][i], v.Cols[1][i], v.Cols[2][i]}
}

// Truncate keeps the first n rows.
func (v VectorSet) Truncate(n int) VectorSet {
	if n >= v.Len() {
		return v
	}
	var out VectorSet
	for a := range out.Cols {
		out.Cols[a] = v.Cols[a][:n]
	}
	return out
}

// NewVectorSet builds a set from rows; handy for callers that already hold
// the values in memory.
func NewVectorSet(rows [][Axes]float64) VectorSet {
	var v VectorSet
	for a := range v.Cols {
		v.Cols[a] = make([]float64, len(rows))
		for i, r := range rows {
			v.Cols[a][i] = r[a]
		}
	}
	return v
}

// LoadVectors reads up to maxRows comma-separated x,y,z rows from path.
// Blank lines are ignored and fields may carry surrounding whitespace.
func LoadVectors(fs afero.Fs, path string, maxRows int) (VectorSet, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return VectorSet{}, fmt.Errorf("read %s: %w", path, err)
	}

	var norm bytes.Buffer
	rows := 0
	for n, line := range strings.Split(string(data), "\n") {
		if rows >= maxRows {
			break
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.Split(line, ",")
		if len(fields) != Axes {
			return VectorSet{}, fmt.Errorf("%s:%d: expected %d fields, got %d", path, n+1, Axes, len(fields))
		}
		for i, f := range fields {
			fields[i] = strings.TrimSpace(f)
		}
		norm.WriteString(strings.Join(fields, ","))
		norm.WriteByte('\n')
		rows++
	}

	set, err := decode(&norm, rows)
	if err != nil {
		return VectorSet{}, fmt.Errorf("%s: %w", path, err)
	}
	return set, nil
}

func decode(buf *bytes.Buffer, rows int) (VectorSet, error) {
	var set VectorSet
	for a := range set.Cols {
		set.Cols[a] = make([]float64, 0, rows)
	}
	if rows == 0 {
		return set, nil
	}

	r := csv.NewReader(buf, schema,
		csv.WithAllocator(memory.DefaultAllocator),
		csv.WithComma(','),
		csv.WithHeader(false),
		csv.WithChunk(rows),
	)
	defer r.Release()

	for r.Next() {
		rec := r.Record()
		base := set.Len()
		for a := range set.Cols {
			col, ok := rec.Column(a).(*array.Float64)
			if !ok {
				return set, fmt.Errorf("column %s: unexpected type %s", schema.Field(a).Name, rec.Column(a).DataType())
			}
			for i := 0; i < col.Len(); i++ {
				if col.IsNull(i) {
					return set, fmt.Errorf("row %d: missing %s value", base+i+1, schema.Field(a).Name)
				}
				set.Cols[a] = append(set.Cols[a], col.Value(i))
			}
		}
	}
	if err := r.Err(); err != nil {
		return set, fmt.Errorf("parse rows: %w", err)
	}
	return set, nil
}
