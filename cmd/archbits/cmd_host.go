package main

import (
	"github.com/spf13/cobra"

	"archbits/internal/format"
	"archbits/internal/hostarch"
)

var hostFlags struct {
	format string
}

func newHostCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "host",
		Short: "Show the host machine, pointer width and default linkage",
		Args:  cobra.NoArgs,
		RunE:  runHost,
	}
	cmd.Flags().StringVar(&hostFlags.format, "format", "table", "Output format: table, markdown, json")
	return cmd
}

func runHost(cmd *cobra.Command, _ []string) error {
	mode, err := format.ParseMode(hostFlags.format)
	if err != nil {
		return err
	}
	return format.WriteHost(cmd.OutOrStdout(), mode, hostarch.Describe())
}
