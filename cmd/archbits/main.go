// archbits reports whether executables are 32- or 64-bit.
//
// Usage:
//
//	archbits resolve [EXECUTABLE...] [--bits=64bit] [--linkage=ELF] [--probe=auto|header|file]
//	archbits host
//	archbits config
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"archbits/internal/config"
	"archbits/internal/logging"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	configPath string
	logLevel   string
	logFormat  string
}

// cfg is the effective configuration, loaded before any subcommand runs.
var cfg *config.Config

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "archbits",
		Short: "Report the word size of executables",
		Long: "archbits inspects executables and reports whether they are 32- or 64-bit,\n" +
			"reading file headers directly or asking file(1).",
		Version:           version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setup,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&rootFlags.configPath, "config", "", "Path to config file, YAML or JSON (default: $"+config.EnvPath+")")
	pf.StringVar(&rootFlags.logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")
	pf.StringVar(&rootFlags.logFormat, "log-format", "", "Log format: text, json (overrides config)")

	root.AddCommand(newResolveCmd())
	root.AddCommand(newHostCmd())
	root.AddCommand(newConfigCmd())
	return root
}

// setup loads the config file and installs the logger.
func setup(cmd *cobra.Command, _ []string) error {
	c, err := config.LoadFromPath(config.Path(rootFlags.configPath))
	if err != nil {
		return err
	}
	if rootFlags.logLevel != "" {
		c.Logging.Level = rootFlags.logLevel
	}
	if rootFlags.logFormat != "" {
		c.Logging.Format = rootFlags.logFormat
	}
	level, err := logging.ParseLevel(c.Logging.Level)
	if err != nil {
		return err
	}
	logging.Init(level, c.Logging.Format, cmd.ErrOrStderr())
	cfg = c
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
