// Command multipole derives closed-form multipole expressions from the
// command line.
//
// Usage:
//
//	go run ./cmd/multipole q 2
//	go run ./cmd/multipole phi 3 --form moment -o latex
package main

import (
	"fmt"
	"os"

	"github.com/njchilds90/gomultipole/internal/cli"
)

func main() {
	cmd := cli.NewMultipoleCmd()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
