package probe

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"archbits/internal/logging"
)

// DefaultFileCommand is the file(1) binary looked up on PATH.
const DefaultFileCommand = "file"

// FileCommand asks file(1) to describe the executable and classifies its
// output.
type FileCommand struct {
	// Command is the file(1) binary name or path. Empty means "file".
	Command string
	// Timeout bounds a single invocation. Zero means no extra bound beyond ctx.
	Timeout time.Duration
	// Strict makes output that does not describe an executable an error.
	Strict bool
	// Logger receives the raw file(1) output at debug level. Nil means the
	// "probe" component logger.
	Logger *slog.Logger
}

// Architecture implements Probe.
func (p *FileCommand) Architecture(ctx context.Context, executable, bits, linkage string) (Result, error) {
	if err := checkExecutable(executable); err != nil {
		return Result{}, err
	}
	if _, err := os.Stat(executable); err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrUnreadable, err)
	}

	name := p.Command
	if name == "" {
		name = DefaultFileCommand
	}
	path, err := exec.LookPath(name)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrNoCommand, err)
	}

	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, path, "-b", executable)
	cmd.Env = append(os.Environ(), "LC_ALL=C")
	out, err := cmd.Output()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Result{}, fmt.Errorf("%s -b %s: %w", name, executable, ctxErr)
		}
		return Result{}, fmt.Errorf("%w: %s -b %s: %w", ErrUnreadable, name, executable, err)
	}
	logger := p.Logger
	if logger == nil {
		logger = logging.New("probe")
	}
	logger.Debug("file output", "executable", executable, "output", strings.TrimSpace(string(out)))

	r, ok := ParseFileOutput(string(out), bits, linkage)
	if !ok && p.Strict {
		return Result{}, fmt.Errorf("%w: %s", ErrUnrecognized, executable)
	}
	return r, nil
}

// ParseFileOutput classifies a "file -b" description. ok is false when the
// output does not describe an executable or shared object, in which case
// the result carries the defaults.
func ParseFileOutput(out, bits, linkage string) (r Result, ok bool) {
	if !strings.Contains(out, "executable") && !strings.Contains(out, "shared object") {
		return defaults(bits, linkage), false
	}

	r = Result{Bits: DefaultBits(bits), Linkage: linkage}
	switch {
	case strings.Contains(out, "32-bit"):
		r.Bits = BitsLabel(32)
	case strings.Contains(out, "64-bit"), strings.Contains(out, "PE32+"):
		r.Bits = BitsLabel(64)
	case strings.Contains(out, "PE32"):
		r.Bits = BitsLabel(32)
	}

	switch {
	case strings.Contains(out, "ELF"):
		r.Linkage = LinkageELF
	case strings.Contains(out, "Mach-O"):
		r.Linkage = LinkageMachO
	case strings.Contains(out, "PE"):
		if strings.Contains(out, "Windows") {
			r.Linkage = LinkageWindowsPE
		} else {
			r.Linkage = LinkagePE
		}
	case strings.Contains(out, "COFF"):
		r.Linkage = LinkageCOFF
	case strings.Contains(out, "MS-DOS"):
		r.Linkage = LinkageMSDOS
	}
	return r, true
}
