package bench

import (
	"fmt"
	"strings"
	"time"
)

// FormatComparison renders the aggregate comparison of two runs of the
// same scenario against different backends: relative speed-up,
// per-backend throughput and per-phase latency, and the maximum
// absolute elementwise difference between the collected time series.
//
// The difference figures are diagnostic only; no tolerance is asserted
// here. They cover the common prefix of the two runs — the smaller of
// the two step counts — so differently terminated runs compare cleanly.
func FormatComparison(a, b *RunResult, labelA, labelB string) string {
	var sb strings.Builder

	speedUp := 0.0
	if a.Elapsed > 0 {
		speedUp = b.Elapsed.Seconds() / a.Elapsed.Seconds()
	}
	fmt.Fprintf(&sb, "Overall speed-up of %s vs %s: %.2f\n\n", labelA, labelB, speedUp)

	writeRunBlock(&sb, a, labelA)
	writeRunBlock(&sb, b, labelB)

	common := a.StepsCompleted
	if b.StepsCompleted < common {
		common = b.StepsCompleted
	}
	fmt.Fprintf(&sb, "Max absolute difference for a_or:  %g\n", MaxAbsDiff(a.AOr, b.AOr, common))
	fmt.Fprintf(&sb, "Max absolute difference for gen_p: %g\n", MaxAbsDiff(a.GenP, b.GenP, common))
	fmt.Fprintf(&sb, "Max absolute difference for gen_q: %g\n", MaxAbsDiff(a.GenQ, b.GenQ, common))

	return sb.String()
}

// FormatRun renders the throughput and per-phase latency of one run.
func FormatRun(res *RunResult, label string) string {
	var sb strings.Builder
	writeRunBlock(&sb, res, label)
	return sb.String()
}

func writeRunBlock(sb *strings.Builder, res *RunResult, label string) {
	itPerSec := 0.0
	if res.Elapsed > 0 {
		itPerSec = float64(res.StepsCompleted) / res.Elapsed.Seconds()
	}
	fmt.Fprintf(sb, "%s backend: %d time steps in %.4fs (%.2f it/s)\n",
		label, res.StepsCompleted, res.Elapsed.Seconds(), itPerSec)
	fmt.Fprintf(sb, "\ttime apply act:            %.2fms\n", phaseMs(res.Timings.ApplyAct, res.StepsCompleted))
	fmt.Fprintf(sb, "\ttime powerflow:            %.2fms\n", phaseMs(res.Timings.Powerflow, res.StepsCompleted))
	fmt.Fprintf(sb, "\ttime extract observation:  %.2fms\n", phaseMs(res.Timings.ExtractObs, res.StepsCompleted))
}

// phaseMs converts a cumulative phase counter into an average
// per-step latency in milliseconds.
func phaseMs(total time.Duration, steps int) float64 {
	if steps == 0 {
		return 0
	}
	return total.Seconds() * 1000 / float64(steps)
}
