package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"archbits/internal/config"
	"archbits/internal/format"
	"archbits/internal/logging"
	"archbits/internal/resolver"
)

var resolveFlags struct {
	bits          string
	linkage       string
	probe         string
	strictRecover bool
	parallel      int
	format        string
}

func newResolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve [EXECUTABLE...]",
		Short: "Resolve the bit width of executables (default: archbits itself)",
		Long: `Resolve probes each executable and prints its word size: 32, 64, or
unknown (-1) when the probe fails or reports something unparseable.

Failures are reported as unknown and do not affect the exit status, unless
--strict-recover is set: then only argument errors are swallowed and any
other failure makes the command exit non-zero.`,
		RunE: runResolve,
	}

	f := cmd.Flags()
	f.StringVar(&resolveFlags.bits, "bits", "", "Expected word size hint, e.g. 64bit (default: config, then host pointer width)")
	f.StringVar(&resolveFlags.linkage, "linkage", "", "Linkage format hint, e.g. ELF or WindowsPE (passed to the probe unchanged)")
	f.StringVar(&resolveFlags.probe, "probe", "", "Probe: auto, header, file (default: config)")
	f.BoolVar(&resolveFlags.strictRecover, "strict-recover", false, "Only recover invalid-argument errors; report all others")
	f.IntVar(&resolveFlags.parallel, "parallel", 0, "Concurrent probes (default: config)")
	f.StringVar(&resolveFlags.format, "format", "table", "Output format: table, markdown, json")
	return cmd
}

func runResolve(cmd *cobra.Command, args []string) error {
	mode, err := format.ParseMode(resolveFlags.format)
	if err != nil {
		return err
	}

	rc := cfg.Resolve
	if cmd.Flags().Changed("bits") {
		rc.Bits = resolveFlags.bits
	}
	if cmd.Flags().Changed("linkage") {
		rc.Linkage = resolveFlags.linkage
	}
	if resolveFlags.strictRecover {
		rc.Recover = config.RecoverInvalidArgument
	}
	if resolveFlags.parallel > 0 {
		rc.Parallel = resolveFlags.parallel
	}

	p, err := buildProbe(cfg.Probe, resolveFlags.probe)
	if err != nil {
		return err
	}

	if len(args) == 0 {
		self, err := os.Executable()
		if err != nil {
			return fmt.Errorf("locate own executable: %w", err)
		}
		args = []string{self}
	}
	targets := make([]resolver.Target, len(args))
	for i, a := range args {
		targets[i] = resolver.Target{Executable: a, Bits: rc.Bits, Linkage: rc.Linkage}
	}

	logger := logging.New("cli")
	logger.Debug("resolving", "targets", len(targets), "recover", rc.Recover, "parallel", rc.Parallel)

	outcomes := resolver.ResolveAll(cmd.Context(), p, targets, resolver.BatchOptions{
		Parallel: rc.Parallel,
		Filter:   errorFilter(rc.Recover),
	})
	if err := format.WriteOutcomes(cmd.OutOrStdout(), mode, outcomes); err != nil {
		return err
	}

	failed := 0
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
			logger.Warn("resolution failed", "executable", o.Executable, "error", o.Err)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d executable(s) could not be resolved", failed, len(outcomes))
	}
	return nil
}
