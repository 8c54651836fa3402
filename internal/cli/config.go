package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/njchilds90/gomultipole/internal/config"
)

const configLongDesc string = `Manage the multipole.toml configuration.

Keys use dotted notation matching the TOML section structure:
  engine.max_passes, engine.workers, engine.max_order,
  log.debug, log.format, log.source, output.format,
  server.listen, server.log_file

Use subcommands to create or inspect the configuration:
  multipole config init    Write a multipole.toml with default values
  multipole config show    Print the effective configuration`

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the multipole configuration",
		Long:  configLongDesc,
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd())

	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a multipole.toml with default values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, _ := cmd.Flags().GetString("config")
			target := configTarget(path)
			if err := config.Save(target, config.NewDefaultConfig(), force); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", target)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing file")

	return cmd
}

func newConfigShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, []string{config.FlagDebug})
			if err != nil {
				return err
			}
			data, err := config.Encode(cfg)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	return cmd
}

// configTarget resolves the --config value to a file path.
func configTarget(path string) string {
	switch {
	case path == "":
		return config.FileName
	case filepath.Ext(path) == ".toml":
		return path
	default:
		return filepath.Join(path, config.FileName)
	}
}
