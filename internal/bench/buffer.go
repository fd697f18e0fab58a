// Package bench drives a backend/environment pair through a bounded
// number of simulated time steps, collecting wall-clock timing and
// physical-quantity time series so two backends can be compared for
// speed and numerical agreement.
package bench

import "math"

// TimeSeries is a fixed-size numeric matrix: one row per completed
// time step, one column per line or generator. Rows beyond the number
// of steps actually completed hold zeros and must not be read;
// consumers bound access with RunResult.StepsCompleted, not Rows.
type TimeSeries struct {
	rows, cols int
	data       []float64 // row-major
}

// NewTimeSeries allocates a zeroed rows×cols series.
func NewTimeSeries(rows, cols int) *TimeSeries {
	if rows < 0 {
		rows = 0
	}
	if cols < 0 {
		cols = 0
	}
	return &TimeSeries{rows: rows, cols: cols, data: make([]float64, rows*cols)}
}

// Rows returns the allocated row count.
func (ts *TimeSeries) Rows() int { return ts.rows }

// Cols returns the column count.
func (ts *TimeSeries) Cols() int { return ts.cols }

// At returns the value at row r, column c.
func (ts *TimeSeries) At(r, c int) float64 { return ts.data[r*ts.cols+c] }

// Row returns row r as a slice backed by the series storage.
func (ts *TimeSeries) Row(r int) []float64 {
	return ts.data[r*ts.cols : (r+1)*ts.cols]
}

// SetRow copies vals into row r. Short vals leave trailing columns at
// zero; extra values are ignored.
func (ts *TimeSeries) SetRow(r int, vals []float64) {
	row := ts.Row(r)
	copy(row, vals)
}

// MaxAbsDiff returns the maximum absolute elementwise difference
// between a and b over the first rows rows. Rows is clamped to what
// both series hold.
func MaxAbsDiff(a, b *TimeSeries, rows int) float64 {
	if a == nil || b == nil {
		return 0
	}
	if rows > a.rows {
		rows = a.rows
	}
	if rows > b.rows {
		rows = b.rows
	}
	cols := a.cols
	if b.cols < cols {
		cols = b.cols
	}
	maxDiff := 0.0
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			d := math.Abs(a.At(r, c) - b.At(r, c))
			if d > maxDiff {
				maxDiff = d
			}
		}
	}
	return maxDiff
}
