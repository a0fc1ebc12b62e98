package optimizer

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const (
	feasTol  = 1e-7
	pivotTol = 1e-9
	dualTol  = 1e-9

	// stopEvery is the number of pivots between budget checks.
	stopEvery = 32
)

var (
	errBudget  = errors.New("optimizer: search budget exhausted")
	errStalled = errors.New("optimizer: relaxation did not converge")
)

// tableau is a bounded-variable simplex tableau over a program's columns
// (x then y) with one row per tile:
//
//	sum_s occ(r, s) * x_s - y_r = rhs[r],   lo_j <= z_j <= hi_j
//
// It is solved with the dual simplex method. The y columns form an initial
// basis of -I, and since every column has finite bounds any basis is made
// dual feasible by putting each nonbasic column on the bound its reduced cost
// points to. Branching only moves bounds, so a node restarts from its
// parent's optimal basis and usually needs a handful of pivots.
type tableau struct {
	p    *program
	m, n int

	t     *mat.Dense // B^-1 A
	head  []int      // basic column of each row
	row   []int      // row of each basic column, -1 when nonbasic
	upper []bool     // nonbasic column sits on its upper bound

	lo, hi []float64
	z      []float64 // column values
	d      []float64 // reduced costs
	cost   []float64
	iters  int
}

func newTableau(p *program) *tableau {
	m, n := p.ny(), p.n()
	tb := &tableau{
		p:     p,
		m:     m,
		n:     n,
		t:     mat.NewDense(m, n, nil),
		head:  make([]int, m),
		row:   make([]int, n),
		upper: make([]bool, n),
		lo:    make([]float64, n),
		hi:    make([]float64, n),
		z:     make([]float64, n),
		d:     make([]float64, n),
		cost:  make([]float64, n),
	}
	for r, v := range p.value {
		tb.cost[p.nx()+r] = v
	}
	tb.reset()
	return tb
}

// reset loads the initial basis, in which every y column is basic.
func (tb *tableau) reset() {
	nx := tb.p.nx()
	tb.t.Zero()
	for j, col := range tb.p.cols {
		for _, e := range col {
			tb.t.Set(e.row, j, tb.t.At(e.row, j)-float64(e.count))
		}
		tb.row[j] = -1
		tb.upper[j] = true
	}
	for r := range tb.m {
		tb.t.Set(r, nx+r, 1)
		tb.head[r] = nx + r
		tb.row[nx+r] = r
	}
}

// restore refactors the tableau for the given basic columns.
func (tb *tableau) restore(basis []int) error {
	tb.reset()
	want := make([]bool, tb.n)
	for _, j := range basis {
		want[j] = true
	}
	for _, j := range basis {
		if tb.row[j] >= 0 {
			continue
		}
		r, best := -1, pivotTol
		for i := range tb.m {
			if want[tb.head[i]] {
				continue
			}
			if a := math.Abs(tb.t.At(i, j)); a > best {
				r, best = i, a
			}
		}
		if r < 0 {
			return errors.New("optimizer: singular basis")
		}
		tb.pivot(r, j)
	}
	return nil
}

func (tb *tableau) setBounds(lo, hi []int) {
	for j := range tb.n {
		tb.lo[j], tb.hi[j] = float64(lo[j]), float64(hi[j])
	}
}

// refresh recomputes reduced costs and column values from the current basis
// and bounds, moving nonbasic columns to the dual feasible bound.
func (tb *tableau) refresh() {
	nx := tb.p.nx()
	copy(tb.d, tb.cost)
	for i, k := range tb.head {
		if c := tb.cost[k]; c != 0 {
			floats.AddScaled(tb.d, -c, tb.t.RawRowView(i))
		}
	}
	for j := range tb.n {
		if tb.row[j] >= 0 {
			tb.d[j] = 0
			continue
		}
		switch {
		case tb.d[j] > dualTol:
			tb.upper[j] = true
		case tb.d[j] < -dualTol:
			tb.upper[j] = false
		}
		if tb.upper[j] {
			tb.z[j] = tb.hi[j]
		} else {
			tb.z[j] = tb.lo[j]
		}
	}

	// B^-1 is the negated block of y columns.
	res := make([]float64, tb.m)
	for r := range tb.m {
		res[r] = float64(tb.p.rhs[r])
		if y := nx + r; tb.row[y] < 0 {
			res[r] += tb.z[y]
		}
	}
	for j, col := range tb.p.cols {
		if tb.row[j] >= 0 {
			continue
		}
		for _, e := range col {
			res[e.row] -= float64(e.count) * tb.z[j]
		}
	}
	for i, k := range tb.head {
		v := 0.0
		for r := range tb.m {
			v -= tb.t.At(i, nx+r) * res[r]
		}
		tb.z[k] = v
	}
}

// pivot makes column q basic in row r.
func (tb *tableau) pivot(r, q int) {
	pr := tb.t.RawRowView(r)
	floats.Scale(1/pr[q], pr)
	pr[q] = 1
	for i := range tb.m {
		if i == r {
			continue
		}
		ri := tb.t.RawRowView(i)
		if f := ri[q]; f != 0 {
			floats.AddScaled(ri, -f, pr)
			ri[q] = 0
		}
	}
	tb.row[tb.head[r]] = -1
	tb.head[r] = q
	tb.row[q] = r
}

// leaving picks the row whose basic column is furthest outside its bounds.
func (tb *tableau) leaving(bland bool) int {
	r, worst := -1, feasTol
	for i, k := range tb.head {
		var inf float64
		switch v := tb.z[k]; {
		case v < tb.lo[k]-feasTol:
			inf = tb.lo[k] - v
		case v > tb.hi[k]+feasTol:
			inf = v - tb.hi[k]
		default:
			continue
		}
		if bland {
			if r < 0 || k < tb.head[r] {
				r = i
			}
			continue
		}
		if inf > worst {
			r, worst = i, inf
		}
	}
	return r
}

// entering runs the dual ratio test on row r. toLower is true when the
// leaving column is below its lower bound.
func (tb *tableau) entering(r int, toLower, bland bool) int {
	pr := tb.t.RawRowView(r)
	q, ratio, mag := -1, math.Inf(1), 0.0
	for j, a := range pr {
		if tb.row[j] >= 0 || tb.lo[j] == tb.hi[j] || math.Abs(a) < pivotTol {
			continue
		}
		// Raising the leaving column needs a < 0 at lower or a > 0 at upper.
		if (a < 0) != (toLower != tb.upper[j]) {
			continue
		}
		rt := math.Abs(tb.d[j] / a)
		switch {
		case rt < ratio-dualTol:
		case rt <= ratio+dualTol && !bland && math.Abs(a) > mag:
		default:
			continue
		}
		q, ratio, mag = j, rt, math.Abs(a)
	}
	return q
}

// solve runs the dual simplex from a dual feasible basis. feasible is false
// when the bounds admit no solution. stop is polled every few pivots.
func (tb *tableau) solve(stop func() bool) (feasible bool, err error) {
	limit := 50 * (tb.m + tb.n)
	blandAfter := limit / 2
	for it := 0; ; it++ {
		bland := it > blandAfter
		r := tb.leaving(bland)
		if r < 0 {
			return true, nil
		}
		if it >= limit {
			return false, errStalled
		}
		if it%stopEvery == stopEvery-1 && stop() {
			return false, errBudget
		}
		k := tb.head[r]
		toLower := tb.z[k] < tb.lo[k]
		target := tb.hi[k]
		if toLower {
			target = tb.lo[k]
		}
		q := tb.entering(r, toLower, bland)
		if q < 0 {
			return false, nil
		}
		tb.iters++

		// Primal step: q moves until k reaches target.
		a := tb.t.At(r, q)
		dz := (tb.z[k] - target) / a
		for i, h := range tb.head {
			tb.z[h] -= tb.t.At(i, q) * dz
		}
		tb.z[q] += dz
		tb.z[k] = target

		// Dual step, from row r before it is scaled.
		theta := tb.d[q] / a
		floats.AddScaled(tb.d, -theta, tb.t.RawRowView(r))
		tb.d[q] = 0

		tb.pivot(r, q)
		tb.upper[k] = !toLower
	}
}

// bound is the objective of the current solution.
func (tb *tableau) bound() float64 {
	v := 0.0
	for j, c := range tb.cost {
		v += c * tb.z[j]
	}
	return v
}
