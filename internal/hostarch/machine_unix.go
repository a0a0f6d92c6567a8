//go:build linux || freebsd || openbsd || netbsd || darwin || solaris

package hostarch

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// Machine returns the kernel's machine name, falling back to GOARCH if
// uname fails.
func Machine() string {
	var uts unix.Utsname
	if err := unix.Uname(&uts); err != nil {
		return runtime.GOARCH
	}
	if m := unix.ByteSliceToString(uts.Machine[:]); m != "" {
		return m
	}
	return runtime.GOARCH
}
