package format

import (
	"encoding/json"
	"fmt"
	"io"

	"archbits/internal/display"
	"archbits/internal/hostarch"
	"archbits/internal/resolver"
)

type jsonOutcome struct {
	resolver.Outcome
	Error string `json:"error,omitempty"`
}

// WriteOutcomes renders batch results. Failed rows show the error text.
func WriteOutcomes(w io.Writer, m Mode, outcomes []resolver.Outcome) error {
	if m == JSON {
		rows := make([]jsonOutcome, len(outcomes))
		for i, o := range outcomes {
			rows[i] = jsonOutcome{Outcome: o}
			if o.Err != nil {
				rows[i].Error = o.Err.Error()
			}
		}
		return writeJSON(w, rows)
	}

	tb := NewTable(m)
	tb.Header("Executable", "Bits", "Linkage", "Error")
	for _, o := range outcomes {
		errText := ""
		if o.Err != nil {
			errText = o.Err.Error()
		}
		tb.Row(o.Executable, display.Width(o.Bits), display.Linkage(o.Linkage), errText)
	}
	tb.Align(2, AlignRight)
	_, err := fmt.Fprintln(w, tb.String())
	return err
}

// WriteHost renders the host summary.
func WriteHost(w io.Writer, m Mode, info hostarch.Info) error {
	if m == JSON {
		return writeJSON(w, info)
	}
	tb := NewTable(m)
	tb.Header("Field", "Value")
	tb.Row("Machine", info.Machine)
	tb.Row("Machine bits", display.Width(info.MachineBits))
	tb.Row("Pointer bits", display.Width(info.PointerBits))
	tb.Row("OS", info.OS)
	tb.Row("Default linkage", display.Linkage(info.Linkage))
	_, err := fmt.Fprintln(w, tb.String())
	return err
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
