package display

import "testing"

func TestLinkage(t *testing.T) {
	cases := []struct {
		code, want string
	}{
		{"ELF", "ELF"},
		{"WindowsPE", "Windows PE"},
		{"MSDOS", "MS-DOS"},
		{"Mach-O", "Mach-O"},
		{"a.out", "a.out"},
		{"", "-"},
	}
	for _, tc := range cases {
		if got := Linkage(tc.code); got != tc.want {
			t.Errorf("Linkage(%q) = %q, want %q", tc.code, got, tc.want)
		}
	}
}

func TestWidth(t *testing.T) {
	cases := []struct {
		bits int
		want string
	}{
		{64, "64-bit"},
		{32, "32-bit"},
		{-1, "unknown"},
		{0, "unknown"},
	}
	for _, tc := range cases {
		if got := Width(tc.bits); got != tc.want {
			t.Errorf("Width(%d) = %q, want %q", tc.bits, got, tc.want)
		}
	}
}
