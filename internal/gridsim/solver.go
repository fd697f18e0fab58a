package gridsim

import "math"

// Solution is the output of one power-flow solve.
type Solution struct {
	// FlowA is the current magnitude at each line origin, in amps.
	FlowA []float64
	// GenP is the realized active power per generator, in MW.
	GenP []float64
	// GenQ is the realized reactive power per generator, in MVAr.
	GenQ []float64
}

// Solver computes the grid's electrical state from generator
// injections and line topology. Implementations must be deterministic.
type Solver interface {
	Name() string
	Solve(genTargetP []float64, lineStatus []bool, out *Solution)
}

const lineVoltageKV = 138.0

// distribution builds the fixed generator-to-line participation
// factors. Both solvers share it so their results differ only by
// solver error, never by modeling.
func distribution(lines, gens int) [][]float64 {
	w := make([][]float64, lines)
	for l := range w {
		w[l] = make([]float64, gens)
		for g := range w[l] {
			// Smooth, strictly positive, and distinct per (line, gen).
			w[l][g] = (1.1 + math.Sin(float64(l*31+g*17))) / float64(lines)
		}
	}
	return w
}

// tanPhi is the fixed power factor angle tangent per generator.
func tanPhi(g int) float64 {
	return 0.25 + 0.03*float64(g%5)
}

func flowAmps(mw float64) float64 {
	return mw * 1000 / (math.Sqrt(3) * lineVoltageKV)
}

// FastSolver solves the linear flow model directly, the way a sparse
// LU factorization would.
type FastSolver struct {
	w [][]float64
}

// NewFastSolver builds the direct solver for a lines×gens grid.
func NewFastSolver(lines, gens int) *FastSolver {
	return &FastSolver{w: distribution(lines, gens)}
}

// Name implements Solver.
func (s *FastSolver) Name() string { return "SparseLU" }

// Solve implements Solver.
func (s *FastSolver) Solve(genTargetP []float64, lineStatus []bool, out *Solution) {
	ensure(out, len(s.w), len(genTargetP))
	for g, p := range genTargetP {
		out.GenP[g] = p
		out.GenQ[g] = p * tanPhi(g)
	}
	for l, row := range s.w {
		if l < len(lineStatus) && !lineStatus[l] {
			out.FlowA[l] = 0
			continue
		}
		mw := 0.0
		for g, p := range genTargetP {
			mw += row[g] * p
		}
		out.FlowA[l] = flowAmps(mw)
	}
}

// ReferenceSolver reaches the same fixed point through damped
// iteration, like the reference implementations it stands in for. It
// is markedly slower than FastSolver and its results carry the
// iteration's residual error.
type ReferenceSolver struct {
	w          [][]float64
	iterations int
	damping    float64
}

// NewReferenceSolver builds the iterative solver for a lines×gens grid.
func NewReferenceSolver(lines, gens int) *ReferenceSolver {
	return &ReferenceSolver{
		w:          distribution(lines, gens),
		iterations: 60,
		damping:    0.6,
	}
}

// Name implements Solver.
func (s *ReferenceSolver) Name() string { return "Newton-Raphson (reference)" }

// Solve implements Solver.
func (s *ReferenceSolver) Solve(genTargetP []float64, lineStatus []bool, out *Solution) {
	ensure(out, len(s.w), len(genTargetP))
	for g, p := range genTargetP {
		out.GenP[g] = s.iterate(p)
		out.GenQ[g] = s.iterate(p * tanPhi(g))
	}
	for l, row := range s.w {
		if l < len(lineStatus) && !lineStatus[l] {
			out.FlowA[l] = 0
			continue
		}
		mw := 0.0
		for g, p := range genTargetP {
			mw += row[g] * p
		}
		out.FlowA[l] = flowAmps(s.iterate(mw))
	}
}

// iterate converges on target through damped fixed-point steps.
func (s *ReferenceSolver) iterate(target float64) float64 {
	v := 0.0
	for i := 0; i < s.iterations; i++ {
		v += s.damping * (target - v)
	}
	return v
}

func ensure(out *Solution, lines, gens int) {
	if len(out.FlowA) != lines {
		out.FlowA = make([]float64, lines)
	}
	if len(out.GenP) != gens {
		out.GenP = make([]float64, gens)
	}
	if len(out.GenQ) != gens {
		out.GenQ = make([]float64, gens)
	}
}
