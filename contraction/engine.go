// Package contraction reduces products of indexed vector symbols and
// Kronecker deltas under the Einstein summation convention.
//
// A label that occurs exactly twice in a monomial is a dummy and is summed
// over. Contract applies the rewrite catalogue once per monomial; Reduce
// alternates expansion and contraction until the expression stops changing.
package contraction

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"

	"github.com/njchilds90/gomultipole/internal/logger"
	"github.com/njchilds90/gomultipole/symbolic"
)

// DefaultMaxPasses caps Reduce when no option overrides it.
const DefaultMaxPasses = 64

// maxAtomPower bounds the integer powers of indexed symbols that are split
// into repeated factors for matching.
const maxAtomPower = 64

// ErrNoFixedPoint is returned by Reduce when the pass cap is reached while
// the expression is still changing.
var ErrNoFixedPoint = errors.New("contraction did not reach a fixed point")

// Engine applies the contraction catalogue. The zero value is not usable;
// build one with NewEngine.
type Engine struct {
	maxPasses int
	logger    *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithMaxPasses sets the safety cap for Reduce. Values below 1 are ignored.
func WithMaxPasses(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxPasses = n
		}
	}
}

// WithLogger sets the logger used for pass tracing.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEngine returns an engine with the given options applied.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{maxPasses: DefaultMaxPasses, logger: logger.Nop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// MaxPasses returns the configured Reduce cap.
func (e *Engine) MaxPasses() int { return e.maxPasses }

var defaultEngine = NewEngine()

// Contract runs one contraction pass with the default engine.
func Contract(expr symbolic.Expr) symbolic.Expr { return defaultEngine.Contract(expr) }

// Reduce contracts to a fixed point with the default engine.
func Reduce(expr symbolic.Expr) (symbolic.Expr, error) { return defaultEngine.Reduce(expr) }

// ExpandDot rewrites dot(xa, n) into explicit index form.
func ExpandDot(expr symbolic.Expr) symbolic.Expr { return defaultEngine.ExpandDot(expr) }

// ============================================================
// Single pass
// ============================================================

// Contract applies every rule of the catalogue once to each monomial of expr,
// at any depth: the terms of nested sums, the bases of powers and the
// arguments of applications are contracted as well as the top level.
// Matches never overlap: an indexed factor takes part in at most one rewrite
// per pass, so a single pass is not guaranteed to be complete.
func (e *Engine) Contract(expr symbolic.Expr) symbolic.Expr {
	out := symbolic.Rewrite(expr.Simplify(), contractNested)
	if _, ok := out.(*symbolic.Add); ok {
		return out
	}
	return contractTerm(out)
}

// contractNested contracts the monomials held directly by node. Rewrite
// visits children first, so every monomial is contracted exactly once by its
// nearest enclosing node.
func contractNested(node symbolic.Expr) (symbolic.Expr, bool) {
	switch v := node.(type) {
	case *symbolic.Add:
		ts := v.Terms()
		for i, t := range ts {
			ts[i] = contractTerm(t)
		}
		return symbolic.AddOf(ts...), true
	case *symbolic.Pow:
		switch v.Base().(type) {
		case *symbolic.Mul, *symbolic.Pow:
			return symbolic.PowOf(contractTerm(v.Base()), v.ExpExpr()), true
		}
	case *symbolic.App:
		if isDot(v) {
			return nil, false
		}
		args := v.Args()
		for i, arg := range args {
			args[i] = contractTerm(arg)
		}
		if v.Symmetric() {
			return symbolic.ApplySymmetric(v.Name(), args...), true
		}
		return symbolic.Apply(v.Name(), args...), true
	}
	return nil, false
}

// contractTerm contracts e as one monomial. Sums are left to contractNested.
func contractTerm(e symbolic.Expr) symbolic.Expr {
	if _, ok := e.(*symbolic.Add); ok {
		return e
	}
	return contractMonomial(e)
}

func contractMonomial(term symbolic.Expr) symbolic.Expr {
	factors := []symbolic.Expr{term}
	if m, ok := term.(*symbolic.Mul); ok {
		factors = m.Factors()
	}

	var atoms []atom
	var rest []symbolic.Expr
	for _, f := range factors {
		if a, ok := classify(f); ok {
			atoms = append(atoms, a)
			continue
		}
		if p, ok := f.(*symbolic.Pow); ok {
			if a, ok := classify(p.Base()); ok {
				if k, ok := integerExponent(p); ok && k > 1 && k <= maxAtomPower {
					for i := int64(0); i < k; i++ {
						atoms = append(atoms, a)
					}
					continue
				}
			}
		}
		rest = append(rest, f)
	}
	if len(atoms) == 0 {
		return term
	}

	counts := map[string]int{}
	where := map[string][]int{}
	for idx, a := range atoms {
		for _, l := range a.labels {
			counts[l]++
			where[l] = append(where[l], idx)
		}
	}
	for _, f := range rest {
		collectLabels(f, counts)
	}

	used := make([]bool, len(atoms))
	var produced []symbolic.Expr

	// delta(i, i) is the trace of the identity.
	for idx, a := range atoms {
		if a.kind == kindDelta && a.labels[0] == a.labels[1] && counts[a.labels[0]] == 2 {
			used[idx] = true
			produced = append(produced, symbolic.N(3))
		}
	}

	labels := make([]string, 0, len(where))
	for l := range where {
		labels = append(labels, l)
	}
	sort.Strings(labels)

	for _, l := range labels {
		pos := where[l]
		if counts[l] != 2 || len(pos) != 2 || pos[0] == pos[1] {
			continue
		}
		ai, bi := pos[0], pos[1]
		if used[ai] || used[bi] {
			continue
		}
		r, ok := rule(atoms[ai], atoms[bi], l)
		if !ok {
			continue
		}
		used[ai], used[bi] = true, true
		produced = append(produced, r)
	}

	out := make([]symbolic.Expr, 0, len(rest)+len(atoms)+len(produced))
	out = append(out, rest...)
	for idx, a := range atoms {
		if !used[idx] {
			out = append(out, a.expr())
		}
	}
	out = append(out, produced...)
	return symbolic.MulOf(out...)
}

// rule rewrites the product a·b summed over the shared dummy label l.
func rule(a, b atom, l string) (symbolic.Expr, bool) {
	if a.kind > b.kind {
		a, b = b, a
	}
	switch {
	case a.kind == kindSource && b.kind == kindSource:
		return symbolic.PowOf(SourceMagnitude(), symbolic.N(2)), true
	case a.kind == kindSource && b.kind == kindUnit:
		return Dot(), true
	case a.kind == kindField && b.kind == kindField:
		return symbolic.PowOf(FieldMagnitude(), symbolic.N(2)), true
	case a.kind == kindField && b.kind == kindUnit:
		return FieldMagnitude(), true
	case a.kind == kindUnit && b.kind == kindUnit:
		return symbolic.N(1), true
	case isVector(a.kind) && b.kind == kindDelta:
		return vectorOf(a.kind, otherLabel(b, l)).expr(), true
	case a.kind == kindDelta && b.kind == kindDelta:
		return Delta(otherLabel(a, l), otherLabel(b, l)), true
	}
	return nil, false
}

func otherLabel(d atom, l string) string {
	if d.labels[0] == l {
		return d.labels[1]
	}
	return d.labels[0]
}

func integerExponent(p *symbolic.Pow) (int64, bool) {
	n, ok := p.ExpExpr().(*symbolic.Num)
	if !ok {
		return 0, false
	}
	return n.Int64()
}

// IndexLabels returns the sorted index labels still carried by indexed
// symbols in expr. A fully contracted scalar has none.
func IndexLabels(expr symbolic.Expr) []string {
	counts := map[string]int{}
	collectLabels(expr, counts)
	out := make([]string, 0, len(counts))
	for l := range counts {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

// collectLabels adds the occurrences of application-argument labels in e.
// A positive integer power counts its base that many times.
func collectLabels(e symbolic.Expr, counts map[string]int) {
	switch v := e.(type) {
	case *symbolic.Add:
		for _, t := range v.Terms() {
			collectLabels(t, counts)
		}
	case *symbolic.Mul:
		for _, f := range v.Factors() {
			collectLabels(f, counts)
		}
	case *symbolic.Pow:
		inner := map[string]int{}
		collectLabels(v.Base(), inner)
		times := 1
		if k, ok := integerExponent(v); ok && k > 1 && k <= maxAtomPower {
			times = int(k)
		}
		for l, c := range inner {
			counts[l] += c * times
		}
	case *symbolic.App:
		if isDot(v) {
			return
		}
		for _, arg := range v.Args() {
			if s, ok := arg.(*symbolic.Sym); ok {
				counts[s.Name()]++
				continue
			}
			collectLabels(arg, counts)
		}
	}
}

// ============================================================
// Fixed point
// ============================================================

// Reduce expands expr and contracts it repeatedly until a pass leaves the
// expression unchanged. It fails with ErrNoFixedPoint after MaxPasses passes.
func (e *Engine) Reduce(expr symbolic.Expr) (symbolic.Expr, error) {
	cur := symbolic.Expand(expr)
	for pass := 1; pass <= e.maxPasses; pass++ {
		next := symbolic.Expand(e.Contract(cur))
		if next.Equal(cur) {
			e.logger.Debug("contraction fixed point", "passes", pass, "terms", len(symbolic.TermsOf(next)))
			return next, nil
		}
		cur = next
	}
	e.logger.Warn("contraction pass cap reached", "max_passes", e.maxPasses)
	return cur, fmt.Errorf("after %d passes: %w", e.maxPasses, ErrNoFixedPoint)
}

// ============================================================
// Dot expansion
// ============================================================

// ExpandDot replaces every dot(xa, n) by xa(l)*n(l) with a label l that is
// fresh for each occurrence. A positive integer power dot^k becomes k such
// products with distinct labels. Fresh labels avoid every symbol already in
// expr.
func (e *Engine) ExpandDot(expr symbolic.Expr) symbolic.Expr {
	f := &freshLabels{taken: symbolic.FreeSymbols(expr)}
	return f.rewrite(expr.Simplify())
}

type freshLabels struct {
	taken map[string]struct{}
	next  int
}

func (f *freshLabels) label() string {
	for {
		f.next++
		l := "l" + strconv.Itoa(f.next)
		if _, ok := f.taken[l]; !ok {
			f.taken[l] = struct{}{}
			return l
		}
	}
}

func (f *freshLabels) product() symbolic.Expr {
	l := f.label()
	return symbolic.MulOf(SourceVector(l), UnitVector(l))
}

func (f *freshLabels) rewrite(e symbolic.Expr) symbolic.Expr {
	switch v := e.(type) {
	case *symbolic.Add:
		ts := v.Terms()
		for i, t := range ts {
			ts[i] = f.rewrite(t)
		}
		return symbolic.AddOf(ts...)
	case *symbolic.Mul:
		fs := v.Factors()
		for i, x := range fs {
			fs[i] = f.rewrite(x)
		}
		return symbolic.MulOf(fs...)
	case *symbolic.Pow:
		if isDot(v.Base()) {
			if k, ok := integerExponent(v); ok && k > 0 && k <= maxAtomPower {
				fs := make([]symbolic.Expr, k)
				for i := range fs {
					fs[i] = f.product()
				}
				return symbolic.MulOf(fs...)
			}
			return v
		}
		return symbolic.PowOf(f.rewrite(v.Base()), v.ExpExpr())
	case *symbolic.App:
		if isDot(v) {
			return f.product()
		}
	}
	return e
}
