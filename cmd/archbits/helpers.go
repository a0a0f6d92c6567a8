package main

import (
	"archbits/internal/config"
	"archbits/internal/probe"
	"archbits/internal/resolver"
)

// buildProbe creates the probe named by override, or by the config when
// override is empty.
func buildProbe(pc config.ProbeConfig, override string) (probe.Probe, error) {
	name := pc.Mode
	if override != "" {
		name = override
	}
	c := config.Config{Probe: pc}
	timeout, err := c.ProbeTimeout()
	if err != nil {
		return nil, err
	}
	return probe.New(name, probe.Options{FileCommand: pc.FileCommand, Timeout: timeout})
}

// errorFilter maps a config recover mode to a resolver error filter.
func errorFilter(mode string) resolver.ErrorFilter {
	if mode == config.RecoverInvalidArgument {
		return resolver.RecoverOnly(probe.ErrInvalidArgument)
	}
	return resolver.RecoverAll
}
