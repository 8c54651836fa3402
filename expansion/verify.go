package expansion

import (
	"fmt"

	"github.com/njchilds90/gomultipole/symbolic"
	"github.com/njchilds90/gomultipole/tensor"
)

// SymmetryExhaustiveLimit is the highest order whose symmetry is checked over
// every permutation. Above it all transpositions and the reversal are checked.
const SymmetryExhaustiveLimit = 5

// OrderReport summarizes the checks for one order.
type OrderReport struct {
	Order      int    `json:"order" yaml:"order"`
	QTerms     int    `json:"q_terms" yaml:"q_terms"`
	Symmetric  bool   `json:"symmetric" yaml:"symmetric"`
	Traceless  bool   `json:"traceless" yaml:"traceless"`
	Equivalent bool   `json:"equivalent" yaml:"equivalent"`
	Taylor     string `json:"taylor" yaml:"taylor"`
	Moment     string `json:"moment" yaml:"moment"`
}

// Verifier checks the symmetric-traceless claims about Q and the agreement of
// the two potential formulations.
type Verifier struct {
	x *Expander
}

// NewVerifier returns a Verifier over x; nil uses a default Expander.
func NewVerifier(x *Expander) *Verifier {
	if x == nil {
		x = NewExpander(nil, nil, nil)
	}
	return &Verifier{x: x}
}

// Symmetric reports whether Q of order n is unchanged by permuting its
// indices.
func (v *Verifier) Symmetric(n int) (bool, error) {
	idx := tensor.Indices(tensor.DefaultIndexPrefix, n)
	base, err := v.x.builder.Q(n, idx)
	if err != nil {
		return false, fmt.Errorf("symmetry: %w", err)
	}
	for _, perm := range symmetryPermutations(idx) {
		q, err := v.x.builder.Q(n, perm)
		if err != nil {
			return false, fmt.Errorf("symmetry: %w", err)
		}
		if !q.Equal(base) {
			return false, nil
		}
	}
	return true, nil
}

// Traceless reports whether contracting Q of order n over every pair of slots
// reduces to zero. Orders below 2 are trivially traceless.
func (v *Verifier) Traceless(n int) (bool, error) {
	if n < 0 {
		return false, fmt.Errorf("traceless: %w: order %d is negative", tensor.ErrInvalidOrder, n)
	}
	for p := 0; p < n; p++ {
		for q := p + 1; q < n; q++ {
			idx := tensor.Indices(tensor.DefaultIndexPrefix, n)
			idx[q] = idx[p]
			tr, err := v.x.builder.QTrace(n, idx)
			if err != nil {
				return false, fmt.Errorf("traceless: %w", err)
			}
			reduced, err := v.x.engine.Reduce(tr)
			if err != nil {
				return false, fmt.Errorf("traceless slots %d,%d: %w", p, q, err)
			}
			if !symbolic.IsZero(reduced) {
				return false, nil
			}
		}
	}
	return true, nil
}

// Equivalent reports whether the Taylor and moment terms of order n agree.
func (v *Verifier) Equivalent(n int) (bool, error) {
	taylor, moment, err := v.terms(n)
	if err != nil {
		return false, err
	}
	return symbolic.IsZero(symbolic.AddOf(taylor, symbolic.Neg(moment))), nil
}

func (v *Verifier) terms(n int) (symbolic.Expr, symbolic.Expr, error) {
	taylor, err := v.x.TaylorTerm(n)
	if err != nil {
		return nil, nil, fmt.Errorf("equivalence: %w", err)
	}
	moment, err := v.x.MomentTerm(n)
	if err != nil {
		return nil, nil, fmt.Errorf("equivalence: %w", err)
	}
	return taylor, moment, nil
}

// Report runs every check for orders 0..maxOrder.
func (v *Verifier) Report(maxOrder int) ([]OrderReport, error) {
	if maxOrder < 0 {
		return nil, fmt.Errorf("report: %w: max order %d", tensor.ErrInvalidOrder, maxOrder)
	}
	out := make([]OrderReport, 0, maxOrder+1)
	for n := 0; n <= maxOrder; n++ {
		q, err := v.x.builder.Q(n, tensor.Indices(tensor.DefaultIndexPrefix, n))
		if err != nil {
			return nil, err
		}
		sym, err := v.Symmetric(n)
		if err != nil {
			return nil, err
		}
		tl, err := v.Traceless(n)
		if err != nil {
			return nil, err
		}
		taylor, moment, err := v.terms(n)
		if err != nil {
			return nil, err
		}
		out = append(out, OrderReport{
			Order:      n,
			QTerms:     len(symbolic.TermsOf(q)),
			Symmetric:  sym,
			Traceless:  tl,
			Equivalent: symbolic.IsZero(symbolic.AddOf(taylor, symbolic.Neg(moment))),
			Taylor:     taylor.String(),
			Moment:     moment.String(),
		})
	}
	return out, nil
}

// symmetryPermutations lists the index orders checked for symmetry.
func symmetryPermutations(idx []string) [][]string {
	if len(idx) <= SymmetryExhaustiveLimit {
		return allPermutations(idx)
	}
	var out [][]string
	for i := 0; i < len(idx); i++ {
		for j := i + 1; j < len(idx); j++ {
			p := append([]string(nil), idx...)
			p[i], p[j] = p[j], p[i]
			out = append(out, p)
		}
	}
	rev := make([]string, len(idx))
	for i, l := range idx {
		rev[len(idx)-1-i] = l
	}
	return append(out, rev)
}

// allPermutations enumerates permutations with Heap's algorithm.
func allPermutations(idx []string) [][]string {
	a := append([]string(nil), idx...)
	out := [][]string{append([]string(nil), a...)}
	c := make([]int, len(a))
	for i := 1; i < len(a); {
		if c[i] < i {
			if i%2 == 0 {
				a[0], a[i] = a[i], a[0]
			} else {
				a[c[i]], a[i] = a[i], a[c[i]]
			}
			out = append(out, append([]string(nil), a...))
			c[i]++
			i = 1
		} else {
			c[i] = 0
			i++
		}
	}
	return out
}
