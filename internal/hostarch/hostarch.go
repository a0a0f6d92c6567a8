// Package hostarch describes the machine archbits is running on.
package hostarch

import (
	"runtime"
	"strconv"
	"strings"
)

// PointerBits is the pointer width of the running binary.
func PointerBits() int {
	return strconv.IntSize
}

// LinkageWindowsPE is the linkage tag for Windows PE images. The probe
// package re-exports it so both packages name the same tag.
const LinkageWindowsPE = "WindowsPE"

// DefaultLinkage is the linkage format assumed for executables on this OS
// when nothing more specific is known.
func DefaultLinkage() string {
	if runtime.GOOS == "windows" {
		return LinkageWindowsPE
	}
	return ""
}

var machineBits = map[string]int{
	"i386": 32, "i486": 32, "i586": 32, "i686": 32, "386": 32, "x86": 32,
	"x86_64": 64, "amd64": 64, "x86_64h": 64,
	"arm": 32, "armv6l": 32, "armv7l": 32, "armv8l": 32,
	"aarch64": 64, "arm64": 64, "aarch64_be": 64,
	"riscv32": 32, "riscv64": 64,
	"ppc": 32, "ppc64": 64, "ppc64le": 64,
	"mips": 32, "mipsle": 32, "mips64": 64, "mips64le": 64,
	"s390": 32, "s390x": 64,
	"loong64": 64, "loongarch64": 64,
	"sparc": 32, "sparc64": 64,
}

// MachineBits maps a kernel machine name (as printed by "uname -m") or a
// GOARCH value to its word size. Unknown names yield -1.
func MachineBits(machine string) int {
	if w, ok := machineBits[strings.ToLower(machine)]; ok {
		return w
	}
	return -1
}

// Info summarizes the host.
type Info struct {
	Machine     string `json:"machine" yaml:"machine"`
	MachineBits int    `json:"machine_bits" yaml:"machine_bits"`
	PointerBits int    `json:"pointer_bits" yaml:"pointer_bits"`
	OS          string `json:"os" yaml:"os"`
	Linkage     string `json:"linkage,omitempty" yaml:"linkage,omitempty"`
}

// Describe collects Info for the running host. A 32-bit build on a 64-bit
// kernel reports MachineBits 64 and PointerBits 32.
func Describe() Info {
	m := Machine()
	return Info{
		Machine:     m,
		MachineBits: MachineBits(m),
		PointerBits: PointerBits(),
		OS:          runtime.GOOS,
		Linkage:     DefaultLinkage(),
	}
}
