package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/njchilds90/gomultipole/internal/config"
	"github.com/njchilds90/gomultipole/symbolic"
)

// renderExpr writes e in the configured output format.
func renderExpr(w io.Writer, format string, e symbolic.Expr) error {
	switch format {
	case config.OutputLaTeX:
		_, err := fmt.Fprintln(w, e.LaTeX())
		return err
	case config.OutputJSON, config.OutputYAML:
		return renderValue(w, format, e.String(), symbolic.ToMap(e))
	}
	_, err := fmt.Fprintln(w, e.String())
	return err
}

// renderValue writes v as JSON or YAML, and text otherwise.
func renderValue(w io.Writer, format, text string, v any) error {
	switch format {
	case config.OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case config.OutputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		return enc.Close()
	}
	_, err := fmt.Fprintln(w, text)
	return err
}
