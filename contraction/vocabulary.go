package contraction

import "github.com/njchilds90/gomultipole/symbolic"

// Heads and scalar names of the closed contraction vocabulary.
const (
	SourceHead = "xa"
	FieldHead  = "x"
	UnitHead   = "n"
	DeltaHead  = "delta"
	DotHead    = "dot"

	SourceMagnitudeName = "ra0"
	FieldMagnitudeName  = "r0"
)

// SourceVector is the source-position vector component xa(i).
func SourceVector(i string) symbolic.Expr { return symbolic.Apply(SourceHead, symbolic.S(i)) }

// FieldVector is the field-point vector component x(i).
func FieldVector(i string) symbolic.Expr { return symbolic.Apply(FieldHead, symbolic.S(i)) }

// UnitVector is the field-point unit vector component n(i) = x(i)/r0.
func UnitVector(i string) symbolic.Expr { return symbolic.Apply(UnitHead, symbolic.S(i)) }

// Delta is the Kronecker delta; its arguments are unordered.
func Delta(i, j string) symbolic.Expr {
	return symbolic.ApplySymmetric(DeltaHead, symbolic.S(i), symbolic.S(j))
}

func SourceMagnitude() symbolic.Expr { return symbolic.S(SourceMagnitudeName) }
func FieldMagnitude() symbolic.Expr  { return symbolic.S(FieldMagnitudeName) }

// Dot is the scalar dot(xa, n).
func Dot() symbolic.Expr {
	return symbolic.Apply(DotHead, symbolic.S(SourceHead), symbolic.S(UnitHead))
}

type kind int

const (
	kindNone kind = iota
	kindSource
	kindField
	kindUnit
	kindDelta
)

// atom is one indexed vocabulary factor of a monomial.
type atom struct {
	kind   kind
	labels []string
}

func (a atom) expr() symbolic.Expr {
	switch a.kind {
	case kindSource:
		return SourceVector(a.labels[0])
	case kindField:
		return FieldVector(a.labels[0])
	case kindUnit:
		return UnitVector(a.labels[0])
	case kindDelta:
		return Delta(a.labels[0], a.labels[1])
	}
	return symbolic.N(1)
}

// classify recognizes an indexed vocabulary symbol.
func classify(e symbolic.Expr) (atom, bool) {
	app, ok := e.(*symbolic.App)
	if !ok {
		return atom{}, false
	}
	labels, ok := app.LabelArgs()
	if !ok {
		return atom{}, false
	}
	var k kind
	switch {
	case app.Name() == SourceHead && len(labels) == 1:
		k = kindSource
	case app.Name() == FieldHead && len(labels) == 1:
		k = kindField
	case app.Name() == UnitHead && len(labels) == 1:
		k = kindUnit
	case app.Name() == DeltaHead && len(labels) == 2 && app.Symmetric():
		k = kindDelta
	default:
		return atom{}, false
	}
	return atom{kind: k, labels: labels}, true
}

func isVector(k kind) bool { return k == kindSource || k == kindField || k == kindUnit }

func vectorOf(k kind, label string) atom { return atom{kind: k, labels: []string{label}} }

// isDot reports whether e is dot(xa, n).
func isDot(e symbolic.Expr) bool { return e.Equal(Dot()) }
