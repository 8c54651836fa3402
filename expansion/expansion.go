// Package expansion assembles the order-n terms of the exterior multipole
// expansion of 1/|x - xa| in two ways and checks them against each other:
//
//	Taylor: ((-1)^n / n!) xa(i1)..xa(in) d^n(1/r)      with x(i) = n(i) r0
//	Moment: (1/n!) Q^{i1..in} n(i1)..n(in) / r0^{n+1}
//
// Both are expanded and contracted to a fixed point, leaving scalars in
// ra0, r0 and dot(xa, n).
package expansion

import (
	"fmt"

	"github.com/njchilds90/gomultipole/contraction"
	"github.com/njchilds90/gomultipole/symbolic"
	"github.com/njchilds90/gomultipole/tensor"
)

// Expander builds potential terms from a tensor builder and a contraction
// engine. Derivatives are memoized in a shared table.
type Expander struct {
	builder *tensor.Builder
	engine  *contraction.Engine
	table   *tensor.DerivativeTable
}

// NewExpander wires an Expander. Nil arguments fall back to defaults.
func NewExpander(b *tensor.Builder, e *contraction.Engine, table *tensor.DerivativeTable) *Expander {
	if b == nil {
		b = tensor.NewBuilder()
	}
	if e == nil {
		e = contraction.NewEngine()
	}
	if table == nil {
		table = tensor.NewDerivativeTable(b)
	}
	return &Expander{builder: b, engine: e, table: table}
}

var defaultExpander = NewExpander(nil, nil, nil)

// TaylorTerm returns the order-n Taylor potential term with the default expander.
func TaylorTerm(n int) (symbolic.Expr, error) { return defaultExpander.TaylorTerm(n) }

// MomentTerm returns the order-n moment potential term with the default expander.
func MomentTerm(n int) (symbolic.Expr, error) { return defaultExpander.MomentTerm(n) }

// Builder returns the tensor builder in use.
func (x *Expander) Builder() *tensor.Builder { return x.builder }

// Engine returns the contraction engine in use.
func (x *Expander) Engine() *contraction.Engine { return x.engine }

// TaylorTerm returns ((-1)^n/n!) xa(i1)..xa(in) d^n(1/r), rewritten in unit
// vectors and contracted.
func (x *Expander) TaylorTerm(n int) (symbolic.Expr, error) {
	d, err := x.table.Get(n)
	if err != nil {
		return nil, fmt.Errorf("taylor term: %w", err)
	}
	idx := tensor.Indices(tensor.DefaultIndexPrefix, n)

	coeff := symbolic.NBig(tensor.Factorial(n))
	fs := []symbolic.Expr{symbolic.PowOf(coeff, symbolic.N(-1)), d}
	if n%2 == 1 {
		fs = append(fs, symbolic.N(-1))
	}
	for _, l := range idx {
		fs = append(fs, contraction.SourceVector(l))
	}
	term := symbolic.MulOf(fs...)

	r0 := contraction.FieldMagnitude()
	for _, l := range idx {
		term = symbolic.Replace(term, contraction.FieldVector(l), symbolic.MulOf(contraction.UnitVector(l), r0))
	}
	out, err := x.engine.Reduce(term)
	if err != nil {
		return nil, fmt.Errorf("taylor term order %d: %w", n, err)
	}
	return out, nil
}

// MomentTerm returns (1/n!) Q n(i1)..n(in) / r0^{n+1}, contracted.
func (x *Expander) MomentTerm(n int) (symbolic.Expr, error) {
	idx := tensor.Indices(tensor.DefaultIndexPrefix, n)
	q, err := x.builder.Q(n, idx)
	if err != nil {
		return nil, fmt.Errorf("moment term: %w", err)
	}

	fs := []symbolic.Expr{
		symbolic.PowOf(symbolic.NBig(tensor.Factorial(n)), symbolic.N(-1)),
		q,
		symbolic.PowOf(contraction.FieldMagnitude(), symbolic.N(int64(-(n + 1)))),
	}
	for _, l := range idx {
		fs = append(fs, contraction.UnitVector(l))
	}
	out, err := x.engine.Reduce(symbolic.MulOf(fs...))
	if err != nil {
		return nil, fmt.Errorf("moment term order %d: %w", n, err)
	}
	return out, nil
}

// Series sums the Taylor terms of orders 0..maxOrder.
func (x *Expander) Series(maxOrder int) (symbolic.Expr, error) {
	if maxOrder < 0 {
		return nil, fmt.Errorf("series: %w: max order %d", tensor.ErrInvalidOrder, maxOrder)
	}
	terms := make([]symbolic.Expr, 0, maxOrder+1)
	for n := 0; n <= maxOrder; n++ {
		t, err := x.TaylorTerm(n)
		if err != nil {
			return nil, err
		}
		terms = append(terms, t)
	}
	return symbolic.AddOf(terms...), nil
}

// MomentSeries sums the moment terms of orders 0..maxOrder.
func (x *Expander) MomentSeries(maxOrder int) (symbolic.Expr, error) {
	if maxOrder < 0 {
		return nil, fmt.Errorf("moment series: %w: max order %d", tensor.ErrInvalidOrder, maxOrder)
	}
	terms := make([]symbolic.Expr, 0, maxOrder+1)
	for n := 0; n <= maxOrder; n++ {
		t, err := x.MomentTerm(n)
		if err != nil {
			return nil, err
		}
		terms = append(terms, t)
	}
	return symbolic.AddOf(terms...), nil
}
