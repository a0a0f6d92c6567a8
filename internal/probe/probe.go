// Package probe reports the word size and linkage format of an executable.
//
// A probe answers with a pair of labels, e.g. ("64bit", "ELF"). When a probe
// cannot tell, it falls back to the caller's hints: an empty bits hint
// becomes the host pointer width, and the linkage hint is returned as-is.
package probe

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"archbits/internal/hostarch"
)

// Linkage format tags.
const (
	LinkageELF       = "ELF"
	LinkageWindowsPE = hostarch.LinkageWindowsPE
	LinkagePE        = "PE"
	LinkageCOFF      = "COFF"
	LinkageMSDOS     = "MSDOS"
	LinkageMachO     = "Mach-O"
)

var (
	// ErrInvalidArgument marks arguments a probe cannot work with at all.
	ErrInvalidArgument = errors.New("invalid probe argument")
	// ErrUnreadable marks an executable that could not be opened or read.
	ErrUnreadable = errors.New("executable unreadable")
	// ErrNoCommand marks a missing file(1) command.
	ErrNoCommand = errors.New("file command unavailable")
	// ErrUnrecognized is returned by strict probes for non-executables.
	ErrUnrecognized = errors.New("not a recognized executable")
)

// Result is the probe's answer: a word-size label such as "64bit" and a
// linkage format tag.
type Result struct {
	Bits    string `json:"bits"`
	Linkage string `json:"linkage"`
}

// Probe inspects an executable. bits and linkage are hints used when the
// executable itself does not say.
type Probe interface {
	Architecture(ctx context.Context, executable, bits, linkage string) (Result, error)
}

// Func adapts a plain function to the Probe interface.
type Func func(ctx context.Context, executable, bits, linkage string) (Result, error)

// Architecture calls f.
func (f Func) Architecture(ctx context.Context, executable, bits, linkage string) (Result, error) {
	return f(ctx, executable, bits, linkage)
}

// DefaultBits turns a bits hint into a word-size label: "" becomes the host
// pointer width, a bare number such as "64" gains the "bit" suffix, and
// anything else is returned unchanged.
func DefaultBits(bits string) string {
	if bits == "" {
		return BitsLabel(hostarch.PointerBits())
	}
	if strings.TrimLeft(bits, "0123456789") == "" {
		return bits + "bit"
	}
	return bits
}

// BitsLabel formats a width as a word-size label ("32bit", "64bit").
func BitsLabel(width int) string {
	return strconv.Itoa(width) + "bit"
}

// defaults is the answer every probe gives when the executable is silent.
func defaults(bits, linkage string) Result {
	if linkage == "" {
		linkage = hostarch.DefaultLinkage()
	}
	return Result{Bits: DefaultBits(bits), Linkage: linkage}
}

func checkExecutable(executable string) error {
	if executable == "" {
		return fmt.Errorf("%w: empty executable path", ErrInvalidArgument)
	}
	if strings.IndexByte(executable, 0) >= 0 {
		return fmt.Errorf("%w: executable path contains NUL", ErrInvalidArgument)
	}
	return nil
}
