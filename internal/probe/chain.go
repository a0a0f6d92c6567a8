package probe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"archbits/internal/logging"
)

// Probe names accepted by New.
const (
	NameAuto   = "auto"
	NameHeader = "header"
	NameFile   = "file"
)

// Chain tries each probe in order and returns the first answer. Argument
// errors stop the chain; other failures are joined if no probe succeeds.
type Chain []Probe

// Architecture implements Probe.
func (c Chain) Architecture(ctx context.Context, executable, bits, linkage string) (Result, error) {
	var errs []error
	for _, p := range c {
		r, err := p.Architecture(ctx, executable, bits, linkage)
		if err == nil {
			return r, nil
		}
		if errors.Is(err, ErrInvalidArgument) {
			return Result{}, err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Result{}, ctxErr
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return Result{}, fmt.Errorf("%w: empty probe chain", ErrInvalidArgument)
	}
	return Result{}, errors.Join(errs...)
}

// Options configures probes built by New.
type Options struct {
	FileCommand string
	Timeout     time.Duration
	// Logger is shared by every probe New builds. Nil means the "probe"
	// component logger.
	Logger *slog.Logger
}

// New returns the probe registered under name. "auto" reads headers first
// and asks file(1) about anything it does not recognize.
func New(name string, opts Options) (Probe, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.New("probe")
	}
	fc := &FileCommand{Command: opts.FileCommand, Timeout: opts.Timeout, Logger: logger}
	switch name {
	case NameAuto, "":
		return Chain{&Header{Strict: true, Logger: logger}, fc}, nil
	case NameHeader:
		return &Header{Logger: logger}, nil
	case NameFile:
		return fc, nil
	default:
		return nil, fmt.Errorf("unknown probe %q (want %s, %s or %s)", name, NameAuto, NameHeader, NameFile)
	}
}
