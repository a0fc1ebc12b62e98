package optimizer

import (
	"context"
	"errors"
	"math"
	"slices"
	"time"
)

const integralTol = 1e-6

// node is one subproblem: the column bounds left after branching, plus the
// optimal basis of its parent.
type node struct {
	lo, hi []int
	basis  []int
	parent int
}

// fractional returns the x column whose value is furthest from an integer,
// or -1 when every x column is integral.
func fractional(z []float64) int {
	best, bestDist := -1, integralTol
	for j, v := range z {
		dist := math.Abs(v - math.Round(v))
		if dist > bestDist {
			best, bestDist = j, dist
		}
	}
	return best
}

// search is the outcome of branch and bound.
type search struct {
	found    bool
	value    int
	z        []int
	nodes    int
	pivots   int
	exceeded bool
}

// branchAndBound maximizes the moved value over p depth first, branching on the
// most fractional x column and exploring the rounded-up side first. The
// rounded-up child continues on its parent's tableau; any other node refactors
// from the basis it was pushed with.
func (p *program) branchAndBound(ctx context.Context, cfg Config) (res search, err error) {
	n := p.n()
	if n == 0 {
		res.found, res.z = true, nil
		return res, nil
	}
	var deadline time.Time
	if cfg.TimeLimit > 0 {
		deadline = time.Now().Add(cfg.TimeLimit)
	}
	stop := func() bool {
		return ctx.Err() != nil || (!deadline.IsZero() && time.Now().After(deadline))
	}

	tb := newTableau(p)
	defer func() { res.pivots = tb.iters }()

	current := 0
	stack := []node{{lo: make([]int, n), hi: slices.Clone(p.hi)}}
	for len(stack) > 0 {
		if stop() || (cfg.NodeLimit > 0 && res.nodes >= cfg.NodeLimit) {
			res.exceeded = true
			break
		}
		nd := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		res.nodes++
		id := res.nodes

		if nd.parent == 0 || nd.parent != current {
			if err := tb.restore(nd.basis); err != nil {
				return res, err
			}
		}
		current = id
		tb.setBounds(nd.lo, nd.hi)
		tb.refresh()
		feasible, err := tb.solve(stop)
		switch {
		case errors.Is(err, errBudget):
			res.exceeded = true
			return res, nil
		case err != nil:
			return res, err
		case !feasible:
			continue
		}

		if res.found && math.Floor(tb.bound()+integralTol) <= float64(res.value) {
			continue
		}
		j := fractional(tb.z[:p.nx()])
		if j < 0 {
			z := make([]int, n)
			for i, v := range tb.z {
				z[i] = int(math.Round(v))
			}
			if v := p.objective(z); !res.found || v > res.value {
				res.found, res.value, res.z = true, v, z
			}
			continue
		}

		v := tb.z[j]
		basis := slices.Clone(tb.head)
		down := node{lo: nd.lo, hi: slices.Clone(nd.hi), basis: basis, parent: id}
		down.hi[j] = int(math.Floor(v))
		up := node{lo: slices.Clone(nd.lo), hi: nd.hi, basis: basis, parent: id}
		up.lo[j] = int(math.Ceil(v))
		stack = append(stack, down, up)
	}
	return res, nil
}

func (p *program) objective(z []int) int {
	v := 0
	for r := range p.ny() {
		v += int(p.value[r]) * z[p.nx()+r]
	}
	return v
}
