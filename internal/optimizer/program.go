package optimizer

import (
	"github.com/robalobadob/rummikub/internal/universe"
)

// program is the presolved integer program for one solve.
//
// Columns are the surviving candidates (x) followed by one y per row tile.
// Row r is the coverage equation of tile tiles[r]:
//
//	sum_s occ(r, s) * x_s - y_r = rhs[r]
type program struct {
	cands []int    // universe candidate index per x column
	tiles []int    // deck tile index per row (and per y column)
	cols  [][]cell // non-zero coverage cells per x column
	rhs   []int
	value []float64 // objective weight per y column
	hi    []int     // upper bound per column, x first then y
}

type cell struct {
	row   int
	count int
}

func (p *program) nx() int { return len(p.cands) }
func (p *program) ny() int { return len(p.tiles) }
func (p *program) n() int  { return len(p.cands) + len(p.tiles) }

// presolve drops candidates that need more copies of a tile than could ever be
// on the board, tightens x bounds accordingly and keeps only tiles that matter.
// ok is false when some board tile cannot be covered by any candidate.
func presolve(u *universe.Universe, board, rack []int) (p *program, ok bool) {
	d := u.Deck()
	copies := u.Config().Copies

	avail := make([]int, d.Len())
	hiY := make([]int, d.Len())
	for t := range avail {
		hiY[t] = min(rack[t], d.Cap(t))
		avail[t] = board[t] + hiY[t]
	}

	p = new(program)
	used := make([]bool, d.Len())
	var xHi []int
	for s := range u.Len() {
		bound := copies
		for _, e := range u.Occurrences(s) {
			bound = min(bound, avail[e.Tile]/e.Count)
		}
		if bound == 0 {
			continue
		}
		p.cands = append(p.cands, s)
		xHi = append(xHi, bound)
		for _, e := range u.Occurrences(s) {
			used[e.Tile] = true
		}
	}

	row := make([]int, d.Len())
	values := d.Values()
	for t := range used {
		row[t] = -1
		if board[t] > 0 && !used[t] {
			return nil, false
		}
		if !used[t] {
			continue
		}
		row[t] = len(p.tiles)
		p.tiles = append(p.tiles, t)
		p.rhs = append(p.rhs, board[t])
		p.value = append(p.value, float64(values[t]))
	}

	p.cols = make([][]cell, len(p.cands))
	for c, s := range p.cands {
		for _, e := range u.Occurrences(s) {
			p.cols[c] = append(p.cols[c], cell{row: row[e.Tile], count: e.Count})
		}
	}
	p.hi = xHi
	for _, t := range p.tiles {
		p.hi = append(p.hi, hiY[t])
	}
	return p, true
}
