package symbolic

import "sort"

// maxExpandPower bounds the integer powers of sums that Expand multiplies out.
const maxExpandPower = 32

// ============================================================
// Expansion and canonical zero
// ============================================================

// Expand distributes products over sums and multiplies out non-negative
// integer powers of sums. The result is a canonical sum of monomials.
func Expand(e Expr) Expr { return AddOf(expandTerms(e.Simplify())...) }

func expandTerms(e Expr) []Expr {
	switch v := e.(type) {
	case *Add:
		out := make([]Expr, 0, len(v.terms))
		for _, t := range v.terms {
			out = append(out, expandTerms(t)...)
		}
		return out
	case *Mul:
		acc := []Expr{N(1)}
		for _, f := range v.factors {
			acc = distribute(acc, expandTerms(f))
		}
		return acc
	case *Pow:
		if en, ok := v.exp.(*Num); ok {
			if k, ok2 := en.Int64(); ok2 && k >= 2 && k <= maxExpandPower {
				bt := expandTerms(v.base)
				if len(bt) > 1 {
					acc := []Expr{N(1)}
					for i := int64(0); i < k; i++ {
						acc = distribute(acc, bt)
					}
					return acc
				}
			}
		}
		return []Expr{PowOf(Expand(v.base), v.exp)}
	case *App:
		args := make([]Expr, len(v.args))
		for i, arg := range v.args {
			args[i] = Expand(arg)
		}
		return []Expr{(&App{name: v.name, args: args, symmetric: v.symmetric}).Simplify()}
	}
	return []Expr{e}
}

// distribute multiplies two term lists and collects like terms.
func distribute(acc, terms []Expr) []Expr {
	next := make([]Expr, 0, len(acc)*len(terms))
	for _, a := range acc {
		for _, b := range terms {
			next = append(next, MulOf(a, b))
		}
	}
	return TermsOf(AddOf(next...))
}

// TermsOf returns the summands of e; zero has none.
func TermsOf(e Expr) []Expr {
	switch v := e.(type) {
	case *Add:
		return v.Terms()
	case *Num:
		if v.IsZero() {
			return nil
		}
	}
	return []Expr{e}
}

// IsZero reports whether e is the zero expression after expansion.
func IsZero(e Expr) bool {
	n, ok := Expand(e).(*Num)
	return ok && n.IsZero()
}

// Canonicalize expands and fully simplifies an expression.
func Canonicalize(e Expr) Expr { return Expand(e) }

// ============================================================
// Structural rewriting
// ============================================================

// Rewrite rebuilds e bottom-up and offers every rebuilt node to fn. When fn
// reports true its result replaces the node. The input is not modified.
func Rewrite(e Expr, fn func(Expr) (Expr, bool)) Expr {
	var node Expr
	switch v := e.(type) {
	case *Add:
		ts := make([]Expr, len(v.terms))
		for i, t := range v.terms {
			ts[i] = Rewrite(t, fn)
		}
		node = AddOf(ts...)
	case *Mul:
		fs := make([]Expr, len(v.factors))
		for i, f := range v.factors {
			fs[i] = Rewrite(f, fn)
		}
		node = MulOf(fs...)
	case *Pow:
		node = PowOf(Rewrite(v.base, fn), Rewrite(v.exp, fn))
	case *App:
		args := make([]Expr, len(v.args))
		for i, arg := range v.args {
			args[i] = Rewrite(arg, fn)
		}
		node = (&App{name: v.name, args: args, symmetric: v.symmetric}).Simplify()
	default:
		node = e
	}
	if r, ok := fn(node); ok {
		return r.Simplify()
	}
	return node
}

// Replace substitutes every subtree structurally equal to old with value.
func Replace(e, old, value Expr) Expr {
	old = old.Simplify()
	return Rewrite(e, func(node Expr) (Expr, bool) {
		if node.Equal(old) {
			return value, true
		}
		return nil, false
	})
}

// ============================================================
// Free Symbols and index labels
// ============================================================

// FreeSymbols returns every symbol name in e, index labels included.
func FreeSymbols(e Expr) map[string]struct{} {
	result := map[string]struct{}{}
	collectSymbols(e, result, false)
	return result
}

// Labels returns the sorted names of symbols used as application arguments.
func Labels(e Expr) []string {
	set := map[string]struct{}{}
	collectSymbols(e, set, true)
	out := make([]string, 0, len(set))
	for name := range set {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func collectSymbols(e Expr, out map[string]struct{}, argsOnly bool) {
	switch v := e.(type) {
	case *Sym:
		if !argsOnly {
			out[v.name] = struct{}{}
		}
	case *Add:
		for _, t := range v.terms {
			collectSymbols(t, out, argsOnly)
		}
	case *Mul:
		for _, f := range v.factors {
			collectSymbols(f, out, argsOnly)
		}
	case *Pow:
		collectSymbols(v.base, out, argsOnly)
		collectSymbols(v.exp, out, argsOnly)
	case *App:
		for _, arg := range v.args {
			if s, ok := arg.(*Sym); ok {
				out[s.name] = struct{}{}
				continue
			}
			collectSymbols(arg, out, argsOnly)
		}
	}
}
