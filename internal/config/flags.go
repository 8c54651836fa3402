package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flag is the single source of truth for a CLI flag.
// Commands reference flags by registry key rather than hard-coding names,
// shorthands, defaults and descriptions inline, so the same logical flag
// stays consistent on every command that carries it.
type Flag struct {
	// Name is the long flag name (e.g. "workers").
	Name string

	// Shorthand is the one-letter short flag (e.g. "o"). Empty for no shorthand.
	Shorthand string

	// ViperKey is the dotted config key this flag maps to (e.g. "engine.workers").
	ViperKey string

	// Description is the help text shown in --help output.
	Description string
}

// FlagSet is a mapping of registry keys to flags.
type FlagSet map[string]Flag

// Flag registry keys.
const (
	FlagMaxPasses = "max-passes"
	FlagWorkers   = "workers"
	FlagMaxOrder  = "max-order"
	FlagOutput    = "output"
	FlagLogFormat = "log-format"
	FlagListen    = "listen"
	FlagLogFile   = "log-file"
	FlagDebug     = "debug"
)

// Flags is the registry shared by the multipole commands.
var Flags = FlagSet{
	FlagMaxPasses: {Name: "max-passes", ViperKey: "engine.max_passes", Description: "Cap on expand/contract passes"},
	FlagWorkers:   {Name: "workers", Shorthand: "w", ViperKey: "engine.workers", Description: "Concurrent pairing-count branches"},
	FlagMaxOrder:  {Name: "max-order", ViperKey: "engine.max_order", Description: "Highest tensor order accepted"},
	FlagOutput:    {Name: "output", Shorthand: "o", ViperKey: "output.format", Description: "Output format: text, latex, json or yaml"},
	FlagLogFormat: {Name: "log-format", ViperKey: "log.format", Description: "Log format: pretty, text or json"},
	FlagListen:    {Name: "listen", Shorthand: "l", ViperKey: "server.listen", Description: "Address the tool server listens on"},
	FlagLogFile:   {Name: "log-file", ViperKey: "server.log_file", Description: "Also write JSON request logs to this file"},
	FlagDebug:     {Name: "debug", Shorthand: "d", ViperKey: "log.debug", Description: "Enable debug logging"},
}

// AddStringFlag registers a string flag on cmd from the given FlagSet.
func AddStringFlag(cmd *cobra.Command, fs FlagSet, key string, target *string) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaults().GetString(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().StringVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().StringVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddIntFlag registers an int flag on cmd from the given FlagSet.
func AddIntFlag(cmd *cobra.Command, fs FlagSet, key string, target *int) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaults().GetInt(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().IntVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().IntVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddPersistentBoolFlag registers a bool flag on cmd and its subcommands
// from the given FlagSet.
func AddPersistentBoolFlag(cmd *cobra.Command, fs FlagSet, key string) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaults().GetBool(def.ViperKey)
	if def.Shorthand != "" {
		cmd.PersistentFlags().BoolP(def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.PersistentFlags().Bool(def.Name, defaultVal, def.Description)
	}
}

// BindRegisteredFlags binds already-registered flags to viper using
// definitions from the given FlagSet. Call this after InitViper to connect
// flags to the precedence chain (flag > env > config file > default).
func BindRegisteredFlags(v *viper.Viper, cmd *cobra.Command, fs FlagSet, keys []string) {
	for _, key := range keys {
		def, ok := fs[key]
		if !ok {
			continue
		}

		f := cmd.Flags().Lookup(def.Name)
		if f == nil {
			continue
		}

		_ = v.BindPFlag(def.ViperKey, f)
	}
}

func defaults() *viper.Viper {
	v := viper.New()
	setViperDefaults(v)
	return v
}
