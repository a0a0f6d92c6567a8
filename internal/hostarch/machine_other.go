//go:build !(linux || freebsd || openbsd || netbsd || darwin || solaris)

package hostarch

import "runtime"

// Machine returns GOARCH; there is no uname on this platform.
func Machine() string {
	return runtime.GOARCH
}
