// Package display provides human-readable names for machine codes.
//
// Use these in CLI tables and logs. Keep raw codes for JSON fields and
// comparisons.
package display

import "strconv"

var linkages = map[string]string{
	"ELF":       "ELF",
	"WindowsPE": "Windows PE",
	"PE":        "PE",
	"COFF":      "COFF",
	"MSDOS":     "MS-DOS",
	"Mach-O":    "Mach-O",
}

// Linkage returns the display name for a linkage tag. Unknown tags are
// returned as-is; the empty tag is "-".
func Linkage(code string) string {
	if code == "" {
		return "-"
	}
	if name, ok := linkages[code]; ok {
		return name
	}
	return code
}

// Width renders a resolved bit width: "64-bit", or "unknown" for anything
// that is not positive.
func Width(bits int) string {
	if bits <= 0 {
		return "unknown"
	}
	return strconv.Itoa(bits) + "-bit"
}
