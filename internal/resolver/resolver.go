// Package resolver turns a probe's word-size label into a bit width.
//
// A Resolver asks its probe about an executable, strips the "bit" suffix
// from the word-size label ("64bit" -> 64) and remembers the result. Any
// failure along the way resolves to Unknown (-1); an ErrorFilter decides
// which failures are swallowed and which are also returned to the caller.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"archbits/internal/logging"
	"archbits/internal/probe"
)

// Unknown is the width reported when resolution fails.
const Unknown = -1

// ErrMalformedLabel marks a word-size label that is not "<digits>bit" for a
// supported width.
var ErrMalformedLabel = errors.New("malformed word-size label")

// ErrorFilter reports whether a resolution failure is recoverable. A
// recoverable failure resolves to Unknown without an error.
type ErrorFilter func(err error) bool

// RecoverAll treats every failure as recoverable.
func RecoverAll(error) bool { return true }

// RecoverOnly treats failures matching one of targets (via errors.Is) as
// recoverable and lets everything else propagate.
func RecoverOnly(targets ...error) ErrorFilter {
	return func(err error) bool {
		for _, t := range targets {
			if errors.Is(err, t) {
				return true
			}
		}
		return false
	}
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithErrorFilter replaces the default RecoverAll filter.
func WithErrorFilter(f ErrorFilter) Option {
	return func(r *Resolver) {
		if f != nil {
			r.recoverable = f
		}
	}
}

// WithLogger replaces the default "resolver" component logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) { r.logger = l }
}

// Resolver resolves executables to bit widths and keeps the last result.
// It is meant for use by one goroutine at a time.
type Resolver struct {
	probe       probe.Probe
	recoverable ErrorFilter
	logger      *slog.Logger

	bits    int
	linkage string
}

// New returns a Resolver backed by p. It starts out at Unknown.
func New(p probe.Probe, opts ...Option) *Resolver {
	r := &Resolver{
		probe:       p,
		recoverable: RecoverAll,
		bits:        Unknown,
	}
	for _, o := range opts {
		o(r)
	}
	if r.logger == nil {
		r.logger = logging.New("resolver")
	}
	return r
}

// Resolve asks the probe about executable, passing the bits and linkage
// hints through unchanged, and returns the width: 32, 64 or Unknown.
//
// The stored last result is updated before returning in every case. err is
// non-nil only for failures the error filter does not recover.
func (r *Resolver) Resolve(ctx context.Context, executable, bits, linkage string) (int, error) {
	width, lk, err := r.resolve(ctx, executable, bits, linkage)
	if err != nil {
		r.bits, r.linkage = Unknown, ""
		if r.recoverable(err) {
			r.logger.Debug("architecture unresolved",
				"executable", executable, "bits_hint", bits, "linkage_hint", linkage, "error", err)
			return Unknown, nil
		}
		return Unknown, err
	}
	r.bits, r.linkage = width, lk
	return width, nil
}

func (r *Resolver) resolve(ctx context.Context, executable, bits, linkage string) (int, string, error) {
	if r.probe == nil {
		return Unknown, "", fmt.Errorf("%w: no probe configured", probe.ErrInvalidArgument)
	}
	res, err := r.probe.Architecture(ctx, executable, bits, linkage)
	if err != nil {
		return Unknown, "", fmt.Errorf("probe %s: %w", executable, err)
	}
	width, err := ParseWordSize(res.Bits)
	if err != nil {
		return Unknown, "", fmt.Errorf("probe %s: %w", executable, err)
	}
	return width, res.Linkage, nil
}

// Last returns the most recently resolved width, Unknown if none.
func (r *Resolver) Last() int { return r.bits }

// LastLinkage returns the linkage label that came with the last successful
// resolution, empty after a failure.
func (r *Resolver) LastLinkage() string { return r.linkage }

// ParseWordSize converts a word-size label such as "64bit" to its width.
// The label must be decimal digits followed by a single "bit" suffix, and
// the width must be 32 or 64.
func ParseWordSize(label string) (int, error) {
	digits, ok := strings.CutSuffix(label, "bit")
	if !ok || digits == "" || strings.TrimLeft(digits, "0123456789") != "" {
		return Unknown, fmt.Errorf("%w: %q", ErrMalformedLabel, label)
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return Unknown, fmt.Errorf("%w: %q: %w", ErrMalformedLabel, label, err)
	}
	if n != 32 && n != 64 {
		return Unknown, fmt.Errorf("%w: unsupported width %d", ErrMalformedLabel, n)
	}
	return n, nil
}
