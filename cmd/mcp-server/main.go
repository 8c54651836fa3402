// Command mcp-server is the standalone HTTP MCP server for multipole.
//
// Exposes the multipole tools as an HTTP endpoint for AI agent frameworks.
//
// Usage:
//
//	go run ./cmd/mcp-server --listen :8080
//
// Tool call endpoint: POST /tool
// Schema endpoint:    GET  /schema
// Health endpoint:    GET  /health
// Metrics endpoint:   GET  /metrics
package main

import (
	"fmt"
	"os"

	"github.com/njchilds90/gomultipole/internal/cli"
	"github.com/njchilds90/gomultipole/internal/config"
)

func main() {
	cmd := cli.NewServeCmd()
	cmd.Use = "mcp-server"
	cmd.SilenceUsage = true
	cmd.PersistentFlags().StringP("config", "c", "", "Config file or directory holding multipole.toml")
	config.AddPersistentBoolFlag(cmd, config.Flags, config.FlagDebug)

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
