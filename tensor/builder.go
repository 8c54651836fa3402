// Package tensor builds the rank-n symmetric-traceless moment tensor Q and
// the n-th Cartesian derivative of 1/r.
//
// Both are signed sums over every way to contract k pairs of index slots,
// k = 0..n/2, weighted by double factorials:
//
//	Q^{i1..in}   = (2n-1)!! xa(i1)..xa(in) + sum_k (-1)^k (2n-2k-1)!! ra0^{2k} T_k[xa]
//	d^n(1/r)     = (-1)^n ((2n-1)!! x(i1)..x(in) - sum_k (2n-2k-1)!! r0^{2k} T_k[x]) / r0^{2n+1}
//
// where T_k sums, over the k-pairings, the product of one delta per pair and
// one vector per free slot. The derivative's trace sum does not alternate.
// The k branches are independent and are built concurrently.
package tensor

import (
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/njchilds90/gomultipole/contraction"
	"github.com/njchilds90/gomultipole/internal/logger"
	"github.com/njchilds90/gomultipole/pairing"
	"github.com/njchilds90/gomultipole/symbolic"
)

// DefaultWorkers bounds concurrent k branches when no option overrides it.
const DefaultWorkers = 4

var (
	// ErrInvalidOrder is returned when n < 0 or the index count differs from n.
	ErrInvalidOrder = errors.New("invalid tensor order")

	// ErrInvalidIndexSet is returned when index labels are empty or repeated
	// where distinct labels are required.
	ErrInvalidIndexSet = errors.New("invalid index set")
)

// Builder constructs moment tensors and derivatives. A Builder holds no
// mutable state and is safe for concurrent use.
type Builder struct {
	workers int
	logger  *slog.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithWorkers bounds the number of pairing-count branches built at once.
// Values below 1 are ignored.
func WithWorkers(n int) Option {
	return func(b *Builder) {
		if n > 0 {
			b.workers = n
		}
	}
}

// WithLogger sets the logger used for build tracing.
func WithLogger(l *slog.Logger) Option {
	return func(b *Builder) {
		if l != nil {
			b.logger = l
		}
	}
}

// NewBuilder returns a Builder with the given options applied.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{workers: DefaultWorkers, logger: logger.Nop()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Workers returns the configured branch concurrency.
func (b *Builder) Workers() int { return b.workers }

// ============================================================
// Q tensor
// ============================================================

// Q returns the rank-n symmetric-traceless source tensor over the given
// distinct index labels.
func (b *Builder) Q(n int, indices []string) (symbolic.Expr, error) {
	if err := checkOrder(n, indices); err != nil {
		return nil, fmt.Errorf("q tensor: %w", err)
	}
	if err := checkDistinct(indices); err != nil {
		return nil, fmt.Errorf("q tensor: %w", err)
	}
	return b.q(n, indices)
}

// QTrace is Q without the distinctness check. Repeating a label builds the
// contraction of Q over that pair of slots.
func (b *Builder) QTrace(n int, indices []string) (symbolic.Expr, error) {
	if err := checkOrder(n, indices); err != nil {
		return nil, fmt.Errorf("q trace: %w", err)
	}
	return b.q(n, indices)
}

func (b *Builder) q(n int, indices []string) (symbolic.Expr, error) {
	switch n {
	case 0:
		return symbolic.N(1), nil
	case 1:
		return contraction.SourceVector(indices[0]), nil
	}
	main := symbolic.MulOf(append([]symbolic.Expr{symbolic.NBig(DoubleFactorial(2*n - 1))},
		vectors(contraction.SourceVector, indices)...)...)
	traces, err := b.traceBranches(n, indices, contraction.SourceVector, contraction.SourceMagnitude(), true)
	if err != nil {
		return nil, fmt.Errorf("q tensor order %d: %w", n, err)
	}
	q := symbolic.Expand(symbolic.AddOf(append([]symbolic.Expr{main}, traces...)...))
	b.logger.Debug("built q tensor", "order", n, "terms", len(symbolic.TermsOf(q)))
	return q, nil
}

// ============================================================
// Derivative of 1/r
// ============================================================

// Derivative returns the n-th Cartesian partial derivative of 1/r with
// respect to the field point, over the given distinct index labels.
func (b *Builder) Derivative(n int, indices []string) (symbolic.Expr, error) {
	if err := checkOrder(n, indices); err != nil {
		return nil, fmt.Errorf("derivative: %w", err)
	}
	if err := checkDistinct(indices); err != nil {
		return nil, fmt.Errorf("derivative: %w", err)
	}

	r0 := contraction.FieldMagnitude()
	switch n {
	case 0:
		return symbolic.PowOf(r0, symbolic.N(-1)), nil
	case 1:
		return symbolic.MulOf(symbolic.N(-1), contraction.FieldVector(indices[0]),
			symbolic.PowOf(r0, symbolic.N(-3))), nil
	case 2:
		num := symbolic.AddOf(
			symbolic.MulOf(symbolic.N(3), contraction.FieldVector(indices[0]), contraction.FieldVector(indices[1])),
			symbolic.Neg(symbolic.MulOf(contraction.Delta(indices[0], indices[1]), symbolic.PowOf(r0, symbolic.N(2)))),
		)
		return symbolic.MulOf(num, symbolic.PowOf(r0, symbolic.N(-5))), nil
	}

	main := symbolic.MulOf(append([]symbolic.Expr{symbolic.NBig(DoubleFactorial(2*n - 1))},
		vectors(contraction.FieldVector, indices)...)...)
	traces, err := b.traceBranches(n, indices, contraction.FieldVector, r0, false)
	if err != nil {
		return nil, fmt.Errorf("derivative order %d: %w", n, err)
	}
	numerator := symbolic.Expand(symbolic.AddOf(append([]symbolic.Expr{main}, traces...)...))
	sign := symbolic.N(1)
	if n%2 == 1 {
		sign = symbolic.N(-1)
	}
	d := symbolic.MulOf(sign, numerator, symbolic.PowOf(r0, symbolic.N(int64(-(2*n + 1)))))
	b.logger.Debug("built derivative", "order", n, "numerator_terms", len(symbolic.TermsOf(numerator)))
	return d, nil
}

// ============================================================
// Pairing-count branches
// ============================================================

// traceBranches returns one signed term per k = 1..n/2,
// s_k (2n-2k-1)!! mag^{2k} T_k[vec]. With alternate s_k is (-1)^k, as in Q;
// otherwise every branch is subtracted, as in the derivative numerator. The
// branches share only read-only inputs and are summed by the caller.
func (b *Builder) traceBranches(n int, indices []string, vec func(string) symbolic.Expr,
	mag symbolic.Expr, alternate bool) ([]symbolic.Expr, error) {
	out := make([]symbolic.Expr, n/2)

	var g errgroup.Group
	g.SetLimit(b.workers)
	for k := 1; k <= n/2; k++ {
		g.Go(func() error {
			coeff := new(big.Int).Set(DoubleFactorial(2*n - 2*k - 1))
			if !alternate || k%2 == 1 {
				coeff.Neg(coeff)
			}
			sum := pairingSum(n, k, indices, vec)
			out[k-1] = symbolic.MulOf(symbolic.NBig(coeff), symbolic.PowOf(mag, symbolic.N(int64(2*k))), sum)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// pairingSum is T_k: for each k-pairing, one delta per pair times one vector
// per free slot.
func pairingSum(n, k int, indices []string, vec func(string) symbolic.Expr) symbolic.Expr {
	ps := pairing.Generate(n, k)
	terms := make([]symbolic.Expr, 0, len(ps))
	for _, p := range ps {
		fs := make([]symbolic.Expr, 0, n-k)
		for _, pr := range p {
			fs = append(fs, contraction.Delta(indices[pr.I], indices[pr.J]))
		}
		for _, pos := range p.Free(n) {
			fs = append(fs, vec(indices[pos]))
		}
		terms = append(terms, symbolic.MulOf(fs...))
	}
	return symbolic.AddOf(terms...)
}

func vectors(vec func(string) symbolic.Expr, indices []string) []symbolic.Expr {
	out := make([]symbolic.Expr, len(indices))
	for i, l := range indices {
		out[i] = vec(l)
	}
	return out
}

// ============================================================
// Validation and helpers
// ============================================================

func checkOrder(n int, indices []string) error {
	if n < 0 {
		return fmt.Errorf("%w: order %d is negative", ErrInvalidOrder, n)
	}
	if len(indices) != n {
		return fmt.Errorf("%w: order %d with %d indices", ErrInvalidOrder, n, len(indices))
	}
	return nil
}

func checkDistinct(indices []string) error {
	seen := make(map[string]bool, len(indices))
	for _, l := range indices {
		if l == "" {
			return fmt.Errorf("%w: empty label", ErrInvalidIndexSet)
		}
		if seen[l] {
			return fmt.Errorf("%w: label %q repeated", ErrInvalidIndexSet, l)
		}
		seen[l] = true
	}
	return nil
}

// DoubleFactorial returns m!! = m(m-2)(m-4)...; it is 1 for m <= 0.
func DoubleFactorial(m int) *big.Int {
	out := big.NewInt(1)
	for v := m; v > 1; v -= 2 {
		out.Mul(out, big.NewInt(int64(v)))
	}
	return out
}

// Factorial returns n!; it is 1 for n <= 0.
func Factorial(n int) *big.Int {
	if n <= 0 {
		return big.NewInt(1)
	}
	return new(big.Int).MulRange(1, int64(n))
}

// Indices returns the labels prefix1..prefixN.
func Indices(prefix string, n int) []string {
	out := make([]string, max(n, 0))
	for i := range out {
		out[i] = prefix + strconv.Itoa(i+1)
	}
	return out
}
