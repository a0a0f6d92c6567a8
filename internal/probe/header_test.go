package probe

import (
	"bytes"
	"context"
	"debug/pe"
	"encoding/binary"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func elfHeader(class byte) []byte {
	buf := make([]byte, 64)
	copy(buf, "\x7fELF")
	buf[4] = class
	buf[5] = 1 // little endian
	buf[6] = 1 // EV_CURRENT
	return buf
}

// peImage lays out a DOS stub, PE signature, COFF file header and an
// optional header of optSize bytes starting with magic.
func peImage(machine, magic, optSize uint16) []byte {
	const lfanew = 0x80
	buf := make([]byte, 0x200)
	copy(buf, "MZ")
	binary.LittleEndian.PutUint32(buf[0x3c:], lfanew)
	copy(buf[lfanew:], "PE\x00\x00")
	coff := buf[lfanew+4:]
	binary.LittleEndian.PutUint16(coff[0:], machine)
	binary.LittleEndian.PutUint16(coff[16:], optSize)
	binary.LittleEndian.PutUint16(coff[20:], magic)
	return buf
}

func machoHeader(order binary.ByteOrder, magic uint32, next uint32) []byte {
	buf := make([]byte, 32)
	order.PutUint32(buf, magic)
	order.PutUint32(buf[4:], next)
	return buf
}

func TestHeader_Formats(t *testing.T) {
	host := BitsLabel(strconv.IntSize)
	cases := []struct {
		name string
		data []byte
		want Result
	}{
		{"elf64", elfHeader(2), Result{Bits: "64bit", Linkage: LinkageELF}},
		{"elf32", elfHeader(1), Result{Bits: "32bit", Linkage: LinkageELF}},
		{"elf-bad-class", elfHeader(9), Result{Bits: host, Linkage: LinkageELF}},
		{"pe32plus", peImage(pe.IMAGE_FILE_MACHINE_AMD64, 0x20b, 240), Result{Bits: "64bit", Linkage: LinkageWindowsPE}},
		{"pe32", peImage(pe.IMAGE_FILE_MACHINE_I386, 0x10b, 224), Result{Bits: "32bit", Linkage: LinkageWindowsPE}},
		{"pe-no-optional", peImage(pe.IMAGE_FILE_MACHINE_AMD64, 0, 0), Result{Bits: host, Linkage: LinkageWindowsPE}},
		{"pe-bad-magic", peImage(pe.IMAGE_FILE_MACHINE_AMD64, 0x1234, 240), Result{Bits: host, Linkage: LinkageMSDOS}},
		{"msdos", append([]byte("MZ"), make([]byte, 0x40)...), Result{Bits: host, Linkage: LinkageMSDOS}},
		{"msdos-short", []byte("MZ\x90\x00"), Result{Bits: host, Linkage: LinkageMSDOS}},
		{"macho64", machoHeader(binary.LittleEndian, 0xfeedfacf, 0x0100000c), Result{Bits: "64bit", Linkage: LinkageMachO}},
		{"macho32-be", machoHeader(binary.BigEndian, 0xfeedface, 18), Result{Bits: "32bit", Linkage: LinkageMachO}},
		{"macho-fat", machoHeader(binary.BigEndian, 0xcafebabe, 2), Result{Bits: host, Linkage: LinkageMachO}},
	}
	h := &Header{Strict: true}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeFile(t, tc.name, tc.data)
			got, err := h.Architecture(context.Background(), path, "", "")
			if err != nil {
				t.Fatalf("Architecture: %v", err)
			}
			if got != tc.want {
				t.Errorf("Architecture = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestHeader_UnrecognizedFallsBackToHints(t *testing.T) {
	java := machoHeader(binary.BigEndian, 0xcafebabe, 52)
	for name, data := range map[string][]byte{
		"text":  []byte("just some text\n"),
		"empty": nil,
		"java":  java,
	} {
		t.Run(name, func(t *testing.T) {
			path := writeFile(t, name, data)

			got, err := (&Header{}).Architecture(context.Background(), path, "32bit", "ELF")
			if err != nil {
				t.Fatalf("Architecture: %v", err)
			}
			if want := (Result{Bits: "32bit", Linkage: "ELF"}); got != want {
				t.Errorf("Architecture = %+v, want %+v", got, want)
			}

			_, err = (&Header{Strict: true}).Architecture(context.Background(), path, "32bit", "ELF")
			if !errors.Is(err, ErrUnrecognized) {
				t.Errorf("strict: expected ErrUnrecognized, got %v", err)
			}
		})
	}
}

func TestHeader_RunningBinary(t *testing.T) {
	exe, err := os.Executable()
	if err != nil {
		t.Skipf("os.Executable: %v", err)
	}
	got, err := (&Header{Strict: true}).Architecture(context.Background(), exe, "", "")
	if err != nil {
		t.Fatalf("Architecture(%s): %v", exe, err)
	}
	if want := BitsLabel(strconv.IntSize); got.Bits != want {
		t.Errorf("Bits = %q, want %q", got.Bits, want)
	}
	if got.Linkage == "" {
		t.Error("expected a linkage for the running binary")
	}
}

func TestHeader_Shebang(t *testing.T) {
	interp := writeFile(t, "interp32", elfHeader(1))

	direct := writeFile(t, "direct.sh", []byte("#! "+interp+" -x\necho hi\n"))
	got, err := (&Header{Strict: true}).Architecture(context.Background(), direct, "", "")
	if err != nil {
		t.Fatalf("direct: %v", err)
	}
	if want := (Result{Bits: "32bit", Linkage: LinkageELF}); got != want {
		t.Errorf("direct: got %+v, want %+v", got, want)
	}

	var looked string
	h := &Header{Strict: true, LookPath: func(name string) (string, error) {
		looked = name
		return interp, nil
	}}
	viaEnv := writeFile(t, "env.sh", []byte("#!/usr/bin/env -S PYTHONPATH=x python3 -u\n"))
	got, err = h.Architecture(context.Background(), viaEnv, "", "")
	if err != nil {
		t.Fatalf("env: %v", err)
	}
	if looked != "python3" {
		t.Errorf("LookPath called with %q, want python3", looked)
	}
	if got.Bits != "32bit" {
		t.Errorf("env: Bits = %q, want 32bit", got.Bits)
	}
}

func TestHeader_ShebangLoopStops(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "self.sh")
	if err := os.WriteFile(path, []byte("#!"+path+"\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	got, err := (&Header{MaxInterpreterDepth: 2}).Architecture(context.Background(), path, "64", "")
	if err != nil {
		t.Fatalf("Architecture: %v", err)
	}
	if got.Bits != "64bit" {
		t.Errorf("Bits = %q, want the normalized hint 64bit", got.Bits)
	}
	_, err = (&Header{Strict: true, MaxInterpreterDepth: 2}).Architecture(context.Background(), path, "64", "")
	if !errors.Is(err, ErrUnrecognized) {
		t.Errorf("strict: expected ErrUnrecognized, got %v", err)
	}
}

func TestHeader_Errors(t *testing.T) {
	h := &Header{}
	if _, err := h.Architecture(context.Background(), "", "", ""); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("empty path: expected ErrInvalidArgument, got %v", err)
	}
	if _, err := h.Architecture(context.Background(), "a\x00b", "", ""); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("NUL path: expected ErrInvalidArgument, got %v", err)
	}
	missing := filepath.Join(t.TempDir(), "nope")
	if _, err := h.Architecture(context.Background(), missing, "", ""); !errors.Is(err, ErrUnreadable) {
		t.Errorf("missing file: expected ErrUnreadable, got %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := h.Architecture(ctx, missing, "", ""); !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled: expected context.Canceled, got %v", err)
	}
}

func TestHeader_LogsInterpreter(t *testing.T) {
	interp := writeFile(t, "interp64", elfHeader(2))
	script := writeFile(t, "run.sh", []byte("#!"+interp+"\n"))

	var buf bytes.Buffer
	h := &Header{Logger: slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))}
	if _, err := h.Architecture(context.Background(), script, "", ""); err != nil {
		t.Fatalf("Architecture: %v", err)
	}
	if out := buf.String(); !strings.Contains(out, "following interpreter") || !strings.Contains(out, interp) {
		t.Errorf("expected interpreter trace in log, got: %s", out)
	}
}
