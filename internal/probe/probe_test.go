package probe

import (
	"strconv"
	"testing"

	"archbits/internal/hostarch"
)

func TestDefaultBits(t *testing.T) {
	cases := []struct {
		hint string
		want string
	}{
		{"", BitsLabel(strconv.IntSize)},
		{"64", "64bit"},
		{"32", "32bit"},
		{"32bit", "32bit"},
		{"bit64", "bit64"},
	}
	for _, tc := range cases {
		if got := DefaultBits(tc.hint); got != tc.want {
			t.Errorf("DefaultBits(%q) = %q, want %q", tc.hint, got, tc.want)
		}
	}
}

func TestDefaults_HostLinkageIsKnownTag(t *testing.T) {
	switch got := defaults("", "").Linkage; got {
	case "", LinkageWindowsPE:
	default:
		t.Errorf("host default linkage %q is not a known linkage tag", got)
	}
	if hostarch.LinkageWindowsPE != LinkageWindowsPE {
		t.Errorf("hostarch tag %q differs from package tag %q", hostarch.LinkageWindowsPE, LinkageWindowsPE)
	}
}
