package probe

import (
	"bufio"
	"bytes"
	"context"
	"debug/elf"
	"debug/macho"
	"debug/pe"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"archbits/internal/logging"
)

const (
	headerSize = 512

	// Fat Mach-O headers share 0xcafebabe with Java class files; a real
	// universal binary never carries this many slices.
	maxFatArches = 20

	defaultInterpreterDepth = 4
)

// Header reads the executable's own header: ELF, PE, MS-DOS and Mach-O are
// recognized directly, and "#!" scripts are followed to their interpreter.
type Header struct {
	// Strict makes unrecognized files an error instead of falling back to
	// the hints.
	Strict bool
	// MaxInterpreterDepth bounds shebang chains. Zero means 4.
	MaxInterpreterDepth int
	// LookPath resolves "#!/usr/bin/env NAME" interpreters. Nil means
	// exec.LookPath.
	LookPath func(file string) (string, error)
	// Logger receives interpreter-following traces. Nil means the "probe"
	// component logger.
	Logger *slog.Logger
}

// Architecture implements Probe.
func (h *Header) Architecture(ctx context.Context, executable, bits, linkage string) (Result, error) {
	if err := checkExecutable(executable); err != nil {
		return Result{}, err
	}
	return h.inspect(ctx, executable, bits, linkage, 0)
}

func (h *Header) inspect(ctx context.Context, path, bits, linkage string, depth int) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrUnreadable, err)
	}
	defer f.Close()

	buf := make([]byte, headerSize)
	n, err := io.ReadFull(f, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return Result{}, fmt.Errorf("%w: %s: %w", ErrUnreadable, path, err)
	}
	buf = buf[:n]

	switch {
	case bytes.HasPrefix(buf, []byte(elf.ELFMAG)):
		return identifyELF(buf, bits), nil
	case bytes.HasPrefix(buf, []byte("MZ")):
		return identifyDOS(f, bits), nil
	case bytes.HasPrefix(buf, []byte("#!")):
		interp := h.interpreter(buf)
		if interp != "" && depth < h.maxDepth() {
			h.logger().Debug("following interpreter", "script", path, "interpreter", interp)
			return h.inspect(ctx, interp, bits, linkage, depth+1)
		}
	default:
		if r, ok := identifyMachO(buf, bits); ok {
			return r, nil
		}
	}

	if h.Strict {
		return Result{}, fmt.Errorf("%w: %s", ErrUnrecognized, path)
	}
	return defaults(bits, linkage), nil
}

func (h *Header) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return logging.New("probe")
}

func (h *Header) maxDepth() int {
	if h.MaxInterpreterDepth > 0 {
		return h.MaxInterpreterDepth
	}
	return defaultInterpreterDepth
}

// interpreter returns the program named on a shebang line, or "" if none
// can be determined.
func (h *Header) interpreter(buf []byte) string {
	line, _, _ := bufio.NewReader(bytes.NewReader(buf)).ReadLine()
	fields := strings.Fields(strings.TrimPrefix(string(line), "#!"))
	if len(fields) == 0 {
		return ""
	}
	if filepath.Base(fields[0]) != "env" {
		return fields[0]
	}
	for _, arg := range fields[1:] {
		if strings.HasPrefix(arg, "-") || strings.Contains(arg, "=") {
			continue
		}
		lookPath := h.LookPath
		if lookPath == nil {
			lookPath = exec.LookPath
		}
		p, err := lookPath(arg)
		if err != nil {
			return ""
		}
		return p
	}
	return ""
}

func identifyELF(buf []byte, bits string) Result {
	r := Result{Bits: DefaultBits(bits), Linkage: LinkageELF}
	if len(buf) <= elf.EI_CLASS {
		return r
	}
	switch elf.Class(buf[elf.EI_CLASS]) {
	case elf.ELFCLASS32:
		r.Bits = BitsLabel(32)
	case elf.ELFCLASS64:
		r.Bits = BitsLabel(64)
	}
	return r
}

// identifyDOS handles "MZ" files: PE images when debug/pe accepts them,
// plain MS-DOS executables otherwise.
func identifyDOS(ra io.ReaderAt, bits string) Result {
	f, err := pe.NewFile(ra)
	if err != nil {
		return Result{Bits: DefaultBits(bits), Linkage: LinkageMSDOS}
	}
	r := Result{Bits: DefaultBits(bits), Linkage: LinkageWindowsPE}
	switch f.OptionalHeader.(type) {
	case *pe.OptionalHeader32:
		r.Bits = BitsLabel(32)
	case *pe.OptionalHeader64:
		r.Bits = BitsLabel(64)
	}
	return r
}

func identifyMachO(buf []byte, bits string) (Result, bool) {
	if len(buf) < 8 {
		return Result{}, false
	}
	be := binary.BigEndian.Uint32(buf)
	le := binary.LittleEndian.Uint32(buf)
	switch {
	case be == macho.Magic32 || le == macho.Magic32:
		return Result{Bits: BitsLabel(32), Linkage: LinkageMachO}, true
	case be == macho.Magic64 || le == macho.Magic64:
		return Result{Bits: BitsLabel(64), Linkage: LinkageMachO}, true
	case be == macho.MagicFat:
		if n := binary.BigEndian.Uint32(buf[4:]); n > 0 && n < maxFatArches {
			return Result{Bits: DefaultBits(bits), Linkage: LinkageMachO}, true
		}
	}
	return Result{}, false
}
