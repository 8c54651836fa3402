// Package pairing enumerates the ways to contract tensor index slots with
// Kronecker deltas.
//
// A Pairing of k pairs over n slots picks k disjoint unordered pairs of
// positions in 0..n-1. The remaining n-2k positions stay free. Pairings
// are produced by construction so a result never contains duplicates.
package pairing

import (
	"fmt"
	"math/big"
	"sort"
	"strings"
)

// Pair is an unordered pair of slot positions, stored with I < J.
type Pair struct {
	I, J int
}

// Pairing is a set of disjoint pairs.
type Pairing []Pair

// ============================================================
// Generation
// ============================================================

// Generate returns every set of k disjoint unordered pairs drawn from the
// positions 0..n-1, in lexicographic order of their normalized form.
//
// k == 0 yields a single empty pairing. When no such pairing exists
// (n < 0, k < 0 or 2k > n) the result is empty.
func Generate(n, k int) []Pairing {
	if n < 0 || k < 0 || 2*k > n {
		return nil
	}
	if k == 0 {
		return []Pairing{{}}
	}
	g := &generator{n: n, used: make([]bool, n)}
	g.walk(0, k, nil)
	return g.out
}

type generator struct {
	n    int
	used []bool
	out  []Pairing
}

// walk decides the fate of the smallest undecided position p: it is either
// paired with a later free position or left unpaired. Every pairing is
// reached along exactly one path.
func (g *generator) walk(p, left int, acc Pairing) {
	if left == 0 {
		out := make(Pairing, len(acc))
		copy(out, acc)
		g.out = append(g.out, out)
		return
	}
	for p < g.n && g.used[p] {
		p++
	}
	if p >= g.n {
		return
	}
	free := 0
	for q := p; q < g.n; q++ {
		if !g.used[q] {
			free++
		}
	}
	if free < 2*left {
		return
	}

	g.used[p] = true
	for q := p + 1; q < g.n; q++ {
		if g.used[q] {
			continue
		}
		g.used[q] = true
		g.walk(p+1, left-1, append(acc, Pair{I: p, J: q}))
		g.used[q] = false
	}
	g.used[p] = false

	// Leave p unpaired only when enough free positions remain after it.
	if free-1 >= 2*left {
		g.used[p] = true
		g.walk(p+1, left, acc)
		g.used[p] = false
	}
}

// Count returns the number of k-pairings of n slots,
// n! / (2^k * k! * (n-2k)!). It is zero when no pairing exists.
func Count(n, k int) *big.Int {
	if n < 0 || k < 0 || 2*k > n {
		return big.NewInt(0)
	}
	num := new(big.Int).MulRange(int64(n-2*k+1), int64(n))
	den := new(big.Int).MulRange(1, int64(k))
	den.Lsh(den, uint(k))
	return num.Quo(num, den)
}

// ============================================================
// Pairing helpers
// ============================================================

// Normalize returns a copy with every pair ordered I < J and the pairs
// sorted ascending.
func (p Pairing) Normalize() Pairing {
	out := make(Pairing, len(p))
	for i, pr := range p {
		if pr.I > pr.J {
			pr.I, pr.J = pr.J, pr.I
		}
		out[i] = pr
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].I != out[b].I {
			return out[a].I < out[b].I
		}
		return out[a].J < out[b].J
	})
	return out
}

// Key is a canonical string form of the pairing, equal for pairings that are
// equal as sets of unordered pairs.
func (p Pairing) Key() string {
	parts := make([]string, 0, len(p))
	for _, pr := range p.Normalize() {
		parts = append(parts, fmt.Sprintf("(%d,%d)", pr.I, pr.J))
	}
	return "{" + strings.Join(parts, "") + "}"
}

func (p Pairing) String() string { return p.Key() }

// Covered reports, for each of the n positions, whether a pair uses it.
// Positions outside 0..n-1 are ignored.
func (p Pairing) Covered(n int) []bool {
	out := make([]bool, n)
	for _, pr := range p {
		if pr.I >= 0 && pr.I < n {
			out[pr.I] = true
		}
		if pr.J >= 0 && pr.J < n {
			out[pr.J] = true
		}
	}
	return out
}

// Free returns the positions in 0..n-1 that no pair uses, ascending.
func (p Pairing) Free(n int) []int {
	covered := p.Covered(n)
	out := make([]int, 0, max(n-2*len(p), 0))
	for pos, c := range covered {
		if !c {
			out = append(out, pos)
		}
	}
	return out
}

// Valid reports whether every pair has two distinct positions in 0..n-1 and
// no position is used twice.
func (p Pairing) Valid(n int) bool {
	seen := make(map[int]bool, 2*len(p))
	for _, pr := range p {
		if pr.I == pr.J {
			return false
		}
		for _, pos := range []int{pr.I, pr.J} {
			if pos < 0 || pos >= n || seen[pos] {
				return false
			}
			seen[pos] = true
		}
	}
	return true
}
