package compare

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/23skdu/longbow-memprep/internal/logger"
	"github.com/23skdu/longbow-memprep/internal/metrics"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

var (
	ErrLengthMismatch = errors.New("reference and produced row counts differ")
	ErrEmpty          = errors.New("nothing to compare")
)

var axisNames = [Axes]string{"X", "Y", "Z"}

// Report is the outcome of comparing two vector sets.
type Report struct {
	// Diffs holds |ref - got| per row and axis.
	Diffs   [][Axes]float64
	MaxDiff [Axes]float64
	RMSE    [Axes]float64
	// Overall is the unweighted mean of the per-axis RMSE.
	Overall float64
}

// Compare computes absolute differences and RMSE row by row. Sets of
// different length fail with ErrLengthMismatch unless allowMismatch is set,
// in which case only the common prefix is compared.
func Compare(ref, got VectorSet, allowMismatch bool) (Report, error) {
	n := ref.Len()
	if got.Len() != n {
		if !allowMismatch {
			return Report{}, fmt.Errorf("%w: reference %d, produced %d", ErrLengthMismatch, ref.Len(), got.Len())
		}
		n = min(n, got.Len())
		logger.Log.Warn("row count mismatch, comparing common prefix",
			"reference", ref.Len(), "produced", got.Len(), "rows", n)
		ref, got = ref.Truncate(n), got.Truncate(n)
	}
	if n == 0 {
		return Report{}, ErrEmpty
	}

	rep := Report{Diffs: make([][Axes]float64, n)}
	abs := make([]float64, n)
	sq := make([]float64, n)
	for a := 0; a < Axes; a++ {
		floats.SubTo(abs, ref.Cols[a], got.Cols[a])
		floats.MulTo(sq, abs, abs)
		for i := range abs {
			abs[i] = math.Abs(abs[i])
			rep.Diffs[i][a] = abs[i]
		}
		rep.MaxDiff[a] = floats.Max(abs)
		rep.RMSE[a] = math.Sqrt(stat.Mean(sq, nil))
	}
	rep.Overall = stat.Mean(rep.RMSE[:], nil)

	metrics.RecordComparison(rep.MaxDiff, rep.RMSE, rep.Overall)
	return rep, nil
}

// WriteText prints the per-row differences followed by the summary.
func (r Report) WriteText(w io.Writer) error {
	ew := &errWriter{w: w}
	for i, d := range r.Diffs {
		ew.printf("Line %d: ΔX=%.6f, ΔY=%.6f, ΔZ=%.6f\n", i+1, d[0], d[1], d[2])
	}
	ew.printf("\n")
	for a, name := range axisNames {
		ew.printf("Max difference in %s: %.6f\n", name, r.MaxDiff[a])
	}
	ew.printf("\n")
	for a, name := range axisNames {
		ew.printf("RMSE %s: %.6f\n", name, r.RMSE[a])
	}
	ew.printf("\nOverall average RMSE: %.6f\n", r.Overall)
	return ew.err
}

type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...interface{}) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
