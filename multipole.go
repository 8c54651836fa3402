// Package multipole derives closed-form electrostatic multipole expressions:
// symmetric-traceless source tensors, Cartesian derivatives of 1/r and the
// contracted potential terms built from them.
//
// A Service wires the tensor builder, the contraction engine, the memoized
// derivative table and the verifier from one Config. HandleToolCall exposes
// the Service as JSON tools for agent frameworks.
package multipole

import (
	"errors"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/njchilds90/gomultipole/contraction"
	"github.com/njchilds90/gomultipole/expansion"
	"github.com/njchilds90/gomultipole/internal/config"
	"github.com/njchilds90/gomultipole/internal/logger"
	"github.com/njchilds90/gomultipole/pairing"
	"github.com/njchilds90/gomultipole/symbolic"
	"github.com/njchilds90/gomultipole/tensor"
)

// Version is the module release reported by the CLI and the server.
const Version = "0.1.0"

// ErrOrderTooLarge is returned when a request exceeds engine.max_order.
var ErrOrderTooLarge = errors.New("order exceeds configured maximum")

// Series forms accepted by Service.Series.
const (
	FormTaylor = "taylor"
	FormMoment = "moment"
)

// Service is safe for concurrent use.
type Service struct {
	cfg      *config.Config
	logger   *slog.Logger
	builder  *tensor.Builder
	engine   *contraction.Engine
	table    *tensor.DerivativeTable
	expander *expansion.Expander
	verifier *expansion.Verifier
}

// NewService validates cfg and wires the engine from it. A nil cfg uses the
// defaults and a nil logger discards.
func NewService(cfg *config.Config, log *slog.Logger) (*Service, error) {
	if cfg == nil {
		cfg = config.NewDefaultConfig()
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Nop()
	}

	b := tensor.NewBuilder(tensor.WithWorkers(cfg.Engine.Workers), tensor.WithLogger(log))
	e := contraction.NewEngine(contraction.WithMaxPasses(cfg.Engine.MaxPasses), contraction.WithLogger(log))
	table := tensor.NewDerivativeTable(b)
	x := expansion.NewExpander(b, e, table)

	return &Service{
		cfg:      cfg,
		logger:   log,
		builder:  b,
		engine:   e,
		table:    table,
		expander: x,
		verifier: expansion.NewVerifier(x),
	}, nil
}

// Config returns the configuration the service was built from.
func (s *Service) Config() *config.Config { return s.cfg }

// Engine returns the contraction engine.
func (s *Service) Engine() *contraction.Engine { return s.engine }

func (s *Service) checkOrder(n int) error {
	if n > s.cfg.Engine.MaxOrder {
		return fmt.Errorf("%w: %d > %d", ErrOrderTooLarge, n, s.cfg.Engine.MaxOrder)
	}
	return nil
}

func (s *Service) indices(n int, labels []string) []string {
	if labels == nil {
		return tensor.Indices(tensor.DefaultIndexPrefix, n)
	}
	return labels
}

// ============================================================
// Tensors
// ============================================================

// Q builds the order-n source tensor. Nil labels default to i1..in.
func (s *Service) Q(n int, labels []string) (symbolic.Expr, error) {
	if err := s.checkOrder(n); err != nil {
		return nil, err
	}
	return s.builder.Q(n, s.indices(n, labels))
}

// Derivative builds the n-th derivative of 1/r. With nil labels the result
// comes from the shared derivative table.
func (s *Service) Derivative(n int, labels []string) (symbolic.Expr, error) {
	if err := s.checkOrder(n); err != nil {
		return nil, err
	}
	if labels == nil {
		return s.table.Get(n)
	}
	return s.builder.Derivative(n, labels)
}

// Pairings lists the k-pairings of n positions and their count.
func (s *Service) Pairings(n, k int) ([]pairing.Pairing, *big.Int, error) {
	if err := s.checkOrder(n); err != nil {
		return nil, nil, err
	}
	return pairing.Generate(n, k), pairing.Count(n, k), nil
}

// ============================================================
// Potential terms
// ============================================================

// TaylorTerm returns the contracted order-n Taylor potential term.
func (s *Service) TaylorTerm(n int) (symbolic.Expr, error) {
	if err := s.checkOrder(n); err != nil {
		return nil, err
	}
	return s.expander.TaylorTerm(n)
}

// MomentTerm returns the contracted order-n moment potential term.
func (s *Service) MomentTerm(n int) (symbolic.Expr, error) {
	if err := s.checkOrder(n); err != nil {
		return nil, err
	}
	return s.expander.MomentTerm(n)
}

// Series sums the terms of orders 0..maxOrder in the given form.
func (s *Service) Series(maxOrder int, form string) (symbolic.Expr, error) {
	if err := s.checkOrder(maxOrder); err != nil {
		return nil, err
	}
	switch form {
	case "", FormTaylor:
		return s.expander.Series(maxOrder)
	case FormMoment:
		return s.expander.MomentSeries(maxOrder)
	}
	return nil, fmt.Errorf("unknown series form %q", form)
}

// Verify runs the symmetry, tracelessness and equivalence checks for orders
// 0..maxOrder.
func (s *Service) Verify(maxOrder int) ([]expansion.OrderReport, error) {
	if err := s.checkOrder(maxOrder); err != nil {
		return nil, err
	}
	reports, err := s.verifier.Report(maxOrder)
	if err != nil {
		return nil, err
	}
	for _, r := range reports {
		if !r.Equivalent {
			s.logger.Info("taylor and moment terms differ", "order", r.Order)
		}
	}
	return reports, nil
}
