package symbolic

import (
	"sort"
	"strings"
)

// ============================================================
// App: indexed symbol / function application
// ============================================================

// App is a named head applied to an ordered argument list, e.g. xa(i) or
// delta(i, j). A symmetric App treats its arguments as unordered and keeps
// them sorted by canonical key.
type App struct {
	name      string
	args      []Expr
	symmetric bool
}

// Apply builds name(args...).
func Apply(name string, args ...Expr) Expr {
	return (&App{name: name, args: args}).Simplify()
}

// ApplySymmetric builds name(args...) with argument order ignored.
func ApplySymmetric(name string, args ...Expr) Expr {
	return (&App{name: name, args: args, symmetric: true}).Simplify()
}

func (a *App) Simplify() Expr {
	args := make([]Expr, len(a.args))
	for i, arg := range a.args {
		args[i] = arg.Simplify()
	}
	if a.symmetric {
		sort.SliceStable(args, func(i, j int) bool { return args[i].String() < args[j].String() })
	}
	return &App{name: a.name, args: args, symmetric: a.symmetric}
}

func (a *App) String() string {
	parts := make([]string, len(a.args))
	for i, arg := range a.args {
		parts[i] = arg.String()
	}
	return a.name + "(" + strings.Join(parts, ", ") + ")"
}

func (a *App) LaTeX() string {
	parts := make([]string, len(a.args))
	allSyms := true
	for i, arg := range a.args {
		parts[i] = arg.LaTeX()
		if _, ok := arg.(*Sym); !ok {
			allSyms = false
		}
	}
	if allSyms && len(a.args) > 0 {
		return a.name + "_{" + strings.Join(parts, " ") + "}"
	}
	return "\\operatorname{" + a.name + "}\\left(" + strings.Join(parts, ", ") + "\\right)"
}

func (a *App) Sub(varName string, value Expr) Expr {
	args := make([]Expr, len(a.args))
	for i, arg := range a.args {
		args[i] = arg.Sub(varName, value)
	}
	return (&App{name: a.name, args: args, symmetric: a.symmetric}).Simplify()
}

func (a *App) Equal(other Expr) bool {
	o, ok := other.(*App)
	if !ok || a.name != o.name || a.symmetric != o.symmetric || len(a.args) != len(o.args) {
		return false
	}
	for i := range a.args {
		if !a.args[i].Equal(o.args[i]) {
			return false
		}
	}
	return true
}

func (a *App) exprType() string { return "app" }
func (a *App) toJSON() map[string]interface{} {
	as := make([]map[string]interface{}, len(a.args))
	for i, arg := range a.args {
		as[i] = arg.toJSON()
	}
	return map[string]interface{}{"type": "app", "name": a.name, "args": as, "symmetric": a.symmetric}
}

func (a *App) Name() string    { return a.name }
func (a *App) NumArgs() int    { return len(a.args) }
func (a *App) Arg(i int) Expr  { return a.args[i] }
func (a *App) Symmetric() bool { return a.symmetric }

// Args returns a copy of the argument list.
func (a *App) Args() []Expr {
	out := make([]Expr, len(a.args))
	copy(out, a.args)
	return out
}

// LabelArgs returns the argument names when every argument is a Sym.
func (a *App) LabelArgs() ([]string, bool) {
	out := make([]string, len(a.args))
	for i, arg := range a.args {
		s, ok := arg.(*Sym)
		if !ok {
			return nil, false
		}
		out[i] = s.name
	}
	return out, true
}
