// Package export writes collected time-series buffers to Arrow IPC
// files so runs can be diffed offline with standard columnar tooling.
package export

import (
	"fmt"
	"os"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/ipc"
	"github.com/apache/arrow/go/v17/arrow/memory"

	"github.com/windyasd/lightsim2grid/internal/bench"
)

// Schema layout: one float64 column per line ("a_or_<i>") and per
// generator ("gen_p_<i>", "gen_q_<i>"), one row per completed step.
func buildSchema(lines, gens int) *arrow.Schema {
	fields := make([]arrow.Field, 0, lines+2*gens)
	for l := 0; l < lines; l++ {
		fields = append(fields, arrow.Field{Name: fmt.Sprintf("a_or_%d", l), Type: arrow.PrimitiveTypes.Float64})
	}
	for g := 0; g < gens; g++ {
		fields = append(fields, arrow.Field{Name: fmt.Sprintf("gen_p_%d", g), Type: arrow.PrimitiveTypes.Float64})
	}
	for g := 0; g < gens; g++ {
		fields = append(fields, arrow.Field{Name: fmt.Sprintf("gen_q_%d", g), Type: arrow.PrimitiveTypes.Float64})
	}
	return arrow.NewSchema(fields, nil)
}

// WriteRunResult writes the run's buffers to an Arrow IPC file at
// path. Only the StepsCompleted populated rows are written.
func WriteRunResult(path string, res *bench.RunResult) error {
	lines := res.AOr.Cols()
	gens := res.GenP.Cols()
	rows := res.StepsCompleted

	mem := memory.NewGoAllocator()
	schema := buildSchema(lines, gens)

	builder := array.NewRecordBuilder(mem, schema)
	defer builder.Release()

	col := 0
	appendSeries := func(ts *bench.TimeSeries, c int) {
		fb := builder.Field(col).(*array.Float64Builder)
		for r := 0; r < rows; r++ {
			fb.Append(ts.At(r, c))
		}
		col++
	}
	for l := 0; l < lines; l++ {
		appendSeries(res.AOr, l)
	}
	for g := 0; g < gens; g++ {
		appendSeries(res.GenP, g)
	}
	for g := 0; g < gens; g++ {
		appendSeries(res.GenQ, g)
	}

	rec := builder.NewRecord()
	defer rec.Release()

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	defer f.Close()

	w, err := ipc.NewFileWriter(f, ipc.WithSchema(schema), ipc.WithAllocator(mem))
	if err != nil {
		return fmt.Errorf("open arrow writer: %w", err)
	}
	if err := w.Write(rec); err != nil {
		w.Close()
		return fmt.Errorf("write record: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close arrow writer: %w", err)
	}
	return nil
}
