package multipole

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/njchilds90/gomultipole/pairing"
	"github.com/njchilds90/gomultipole/symbolic"
)

// ============================================================
// MCP Tool Interface
// ============================================================

type ToolRequest struct {
	Tool   string                 `json:"tool"`
	Params map[string]interface{} `json:"params"`
}

type ToolResponse struct {
	Result interface{} `json:"result,omitempty"`
	LaTeX  string      `json:"latex,omitempty"`
	String string      `json:"string,omitempty"`
	Error  string      `json:"error,omitempty"`
}

var defaultService, _ = NewService(nil, nil)

// HandleToolCall runs req against a Service built from the default config.
func HandleToolCall(req ToolRequest) ToolResponse { return defaultService.HandleToolCall(req) }

type params map[string]interface{}

func (p params) expr(key string) (symbolic.Expr, error) {
	v, ok := p[key]
	if !ok {
		return nil, fmt.Errorf("missing param: %s", key)
	}
	val, ok := v.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("invalid type for param %s", key)
	}
	return symbolic.FromJSON(val)
}

func (p params) integer(key string) (int, error) {
	v, ok := p[key]
	if !ok {
		return 0, fmt.Errorf("missing param: %s", key)
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if n != math.Trunc(n) || math.Abs(n) > math.MaxInt32 {
			return 0, fmt.Errorf("param %s must be an integer", key)
		}
		return int(n), nil
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, fmt.Errorf("param %s must be an integer", key)
		}
		return int(i), nil
	}
	return 0, fmt.Errorf("param %s must be an integer", key)
}

func (p params) optionalString(key string) (string, error) {
	v, ok := p[key]
	if !ok {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("param %s must be a string", key)
	}
	return s, nil
}

// optionalStrings returns nil when key is absent.
func (p params) optionalStrings(key string) ([]string, error) {
	v, ok := p[key]
	if !ok {
		return nil, nil
	}
	switch raw := v.(type) {
	case []string:
		return raw, nil
	case []interface{}:
		result := make([]string, len(raw))
		for i, r := range raw {
			s, ok := r.(string)
			if !ok {
				return nil, fmt.Errorf("param %s[%d] must be string", key, i)
			}
			result[i] = s
		}
		return result, nil
	}
	return nil, fmt.Errorf("param %s must be array", key)
}

func exprResponse(e symbolic.Expr, err error) ToolResponse {
	if err != nil {
		return ToolResponse{Error: err.Error()}
	}
	return ToolResponse{Result: symbolic.ToMap(e), String: e.String(), LaTeX: e.LaTeX()}
}

func errResponse(err error) ToolResponse { return ToolResponse{Error: err.Error()} }

// HandleToolCall dispatches one tool call. Failures are reported in
// ToolResponse.Error; a tool never panics on malformed params.
func (s *Service) HandleToolCall(req ToolRequest) ToolResponse {
	p := params(req.Params)

	orderTool := func(fn func(int, []string) (symbolic.Expr, error)) ToolResponse {
		n, err := p.integer("order")
		if err != nil {
			return errResponse(err)
		}
		labels, err := p.optionalStrings("indices")
		if err != nil {
			return errResponse(err)
		}
		return exprResponse(fn(n, labels))
	}
	exprTool := func(fn func(symbolic.Expr) (symbolic.Expr, error)) ToolResponse {
		e, err := p.expr("expr")
		if err != nil {
			return errResponse(err)
		}
		return exprResponse(fn(e))
	}
	termTool := func(fn func(int) (symbolic.Expr, error)) ToolResponse {
		n, err := p.integer("order")
		if err != nil {
			return errResponse(err)
		}
		return exprResponse(fn(n))
	}

	switch req.Tool {
	case "q_tensor":
		return orderTool(s.Q)
	case "derivative":
		return orderTool(s.Derivative)
	case "pairings":
		return s.pairingsTool(p)
	case "contract":
		return exprTool(func(e symbolic.Expr) (symbolic.Expr, error) { return s.engine.Contract(e), nil })
	case "reduce":
		return exprTool(s.engine.Reduce)
	case "expand":
		return exprTool(func(e symbolic.Expr) (symbolic.Expr, error) { return symbolic.Expand(e), nil })
	case "expand_dot":
		return exprTool(func(e symbolic.Expr) (symbolic.Expr, error) { return s.engine.ExpandDot(e), nil })
	case "taylor_term":
		return termTool(s.TaylorTerm)
	case "moment_term":
		return termTool(s.MomentTerm)
	case "series":
		n, err := p.integer("max_order")
		if err != nil {
			return errResponse(err)
		}
		form, err := p.optionalString("form")
		if err != nil {
			return errResponse(err)
		}
		return exprResponse(s.Series(n, form))
	case "verify":
		n, err := p.integer("max_order")
		if err != nil {
			return errResponse(err)
		}
		reports, err := s.Verify(n)
		if err != nil {
			return errResponse(err)
		}
		lines := make([]string, len(reports))
		for i, r := range reports {
			lines[i] = fmt.Sprintf("order %d: symmetric=%t traceless=%t equivalent=%t", r.Order, r.Symmetric, r.Traceless, r.Equivalent)
		}
		return ToolResponse{Result: reports, String: strings.Join(lines, "\n")}
	case "to_latex":
		e, err := p.expr("expr")
		if err != nil {
			return errResponse(err)
		}
		return ToolResponse{LaTeX: e.LaTeX(), String: e.String()}
	case "tool_spec":
		return ToolResponse{String: ToolSpec()}
	}
	return ToolResponse{Error: fmt.Sprintf("unknown tool: %s", req.Tool)}
}

// PairingsResult is the result of the pairings tool.
type PairingsResult struct {
	Count    string     `json:"count" yaml:"count"`
	Pairings [][][2]int `json:"pairings" yaml:"pairings"`
}

// NewPairingsResult flattens ps for serialization.
func NewPairingsResult(ps []pairing.Pairing, count fmt.Stringer) PairingsResult {
	out := PairingsResult{Count: count.String(), Pairings: make([][][2]int, len(ps))}
	for i, p := range ps {
		pairs := make([][2]int, len(p))
		for j, pr := range p {
			pairs[j] = [2]int{pr.I, pr.J}
		}
		out.Pairings[i] = pairs
	}
	return out
}

func (s *Service) pairingsTool(p params) ToolResponse {
	n, err := p.integer("n")
	if err != nil {
		return errResponse(err)
	}
	k, err := p.integer("k")
	if err != nil {
		return errResponse(err)
	}
	ps, count, err := s.Pairings(n, k)
	if err != nil {
		return errResponse(err)
	}
	keys := make([]string, len(ps))
	for i, pr := range ps {
		keys[i] = pr.Key()
	}
	return ToolResponse{Result: NewPairingsResult(ps, count), String: strings.Join(keys, " ")}
}

// ============================================================
// Tool schema
// ============================================================

var (
	orderProps = map[string]string{"order": "integer", "indices": "array"}
	exprProps  = map[string]string{"expr": "object"}
)

var toolDefs = []map[string]interface{}{
	ts("q_tensor", "Symmetric-traceless source tensor Q of the given order. Optional indices (string[])", []string{"order"}, orderProps),
	ts("derivative", "Cartesian derivative of 1/r of the given order. Optional indices (string[])", []string{"order"}, orderProps),
	ts("pairings", "All sets of k disjoint index pairs over n positions, with their count", []string{"n", "k"}, map[string]string{"n": "integer", "k": "integer"}),
	ts("contract", "One contraction pass over repeated index labels", []string{"expr"}, exprProps),
	ts("reduce", "Expand and contract to a fixed point", []string{"expr"}, exprProps),
	ts("expand", "Algebraically expand expression", []string{"expr"}, exprProps),
	ts("expand_dot", "Rewrite dot(xa, n) as xa(l)*n(l) with fresh labels", []string{"expr"}, exprProps),
	ts("taylor_term", "Contracted Taylor potential term of the given order", []string{"order"}, map[string]string{"order": "integer"}),
	ts("moment_term", "Contracted moment potential term of the given order", []string{"order"}, map[string]string{"order": "integer"}),
	ts("series", "Sum of potential terms up to max_order. Optional form: taylor or moment", []string{"max_order"}, map[string]string{"max_order": "integer", "form": "string"}),
	ts("verify", "Symmetry, tracelessness and Taylor/moment agreement up to max_order", []string{"max_order"}, map[string]string{"max_order": "integer"}),
	ts("to_latex", "Convert to LaTeX", []string{"expr"}, exprProps),
	ts("tool_spec", "Return this tool schema", []string{}, map[string]string{}),
}

// ToolNames lists the tools HandleToolCall dispatches, in schema order.
func ToolNames() []string {
	out := make([]string, len(toolDefs))
	for i, t := range toolDefs {
		out[i] = t["name"].(string)
	}
	return out
}

// ToolSpec returns the JSON schema of every tool for agent registration.
func ToolSpec() string {
	spec := map[string]interface{}{"tools": toolDefs}
	b, _ := json.MarshalIndent(spec, "", "  ")
	return string(b)
}

func ts(name, description string, required []string, props map[string]string) map[string]interface{} {
	properties := map[string]interface{}{}
	for k, typ := range props {
		properties[k] = map[string]interface{}{"type": typ}
	}
	return map[string]interface{}{
		"name":        name,
		"description": description,
		"inputSchema": map[string]interface{}{
			"type":       "object",
			"properties": properties,
			"required":   required,
		},
	}
}
