package resolver

import (
	"context"

	"golang.org/x/sync/errgroup"

	"archbits/internal/probe"
)

// Target is one executable to resolve, with its hints.
type Target struct {
	Executable string
	Bits       string
	Linkage    string
}

// Outcome is the result for one Target. Err holds only failures the error
// filter did not recover, or the context error if the batch was cancelled
// before the target ran.
type Outcome struct {
	Executable string `json:"executable"`
	Bits       int    `json:"bits"`
	Linkage    string `json:"linkage,omitempty"`
	Err        error  `json:"-"`
}

// BatchOptions configures ResolveAll.
type BatchOptions struct {
	// Parallel bounds concurrent probes. Values below 1 mean 1.
	Parallel int
	Filter   ErrorFilter
}

// ResolveAll resolves every target with its own Resolver on a bounded
// worker pool. Outcomes are returned in target order.
func ResolveAll(ctx context.Context, p probe.Probe, targets []Target, opts BatchOptions) []Outcome {
	out := make([]Outcome, len(targets))
	limit := opts.Parallel
	if limit < 1 {
		limit = 1
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, t := range targets {
		out[i] = Outcome{Executable: t.Executable, Bits: Unknown}
		if err := ctx.Err(); err != nil {
			out[i].Err = err
			continue
		}
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				out[i].Err = err
				return nil
			}
			r := New(p, WithErrorFilter(opts.Filter))
			bits, err := r.Resolve(gCtx, t.Executable, t.Bits, t.Linkage)
			out[i].Bits = bits
			out[i].Linkage = r.LastLinkage()
			out[i].Err = err
			return nil
		})
	}
	_ = g.Wait() // errors captured per outcome
	return out
}
